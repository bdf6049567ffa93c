package frames

import (
	"browser-agent/internal/entity"
	"browser-agent/internal/ports"
	"browser-agent/pkg/apperr"
	"browser-agent/pkg/logg"
	"browser-agent/pkg/tracing"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const DefaultMaxContentLength = 10000

// Find looks a frame up by "main", a decimal index, a frame name or an
// aria-label, in that order. Name and aria-label compare case-insensitively.
func (s *Snapshot) Find(identifier string) (entity.FrameContext, bool) {
	id := strings.TrimSpace(identifier)

	if id == "" || strings.EqualFold(id, "main") {
		return s.Main(), true
	}

	if idx, err := strconv.Atoi(id); err == nil {
		for _, fc := range s.Frames {
			if fc.Index == idx {
				return fc, true
			}
		}

		return entity.FrameContext{}, false
	}

	for _, fc := range s.Frames {
		if fc.Name != "" && strings.EqualFold(fc.Name, id) {
			return fc, true
		}
	}

	for _, fc := range s.Frames {
		if fc.AriaLabel != "" && strings.EqualFold(fc.AriaLabel, id) {
			return fc, true
		}
	}

	return entity.FrameContext{}, false
}

// Available renders the frames of the snapshot for error messages.
func (s *Snapshot) Available() string {
	parts := make([]string, 0, len(s.Frames))

	for _, fc := range s.Frames {
		label := fc.Label()
		if fc.IsMain() {
			label = "main"
		} else if label == "" {
			label = "unnamed"
		}

		parts = append(parts, fmt.Sprintf("%d:%s", fc.Index, label))
	}

	return strings.Join(parts, ", ")
}

// FrameContent reads the text and/or HTML of one frame. Content longer than
// maxLength characters is truncated with a notice; maxLength <= 0 selects
// DefaultMaxContentLength.
func (r *Registry) FrameContent(
	ctx context.Context,
	page ports.Page,
	identifier string,
	kind entity.FrameContentKind,
	maxLength int,
) (content *entity.FrameContent, err error) {
	const op = "FrameContent"
	logger := r.logger.With(zap.String(logg.Operation, op))

	ctx, step := tracing.StartSpan(ctx, r.tracer, logger, op,
		attribute.String("frame.identifier", identifier),
		attribute.String("content.kind", string(kind)),
	)
	defer func() {
		step.End(err)
	}()

	if kind == "" {
		kind = entity.FrameContentText
	}

	switch kind {
	case entity.FrameContentText, entity.FrameContentHTML, entity.FrameContentBoth:
	default:
		return nil, apperr.InvalidReqError(op, "content_type", fmt.Errorf("unknown content type %q", kind))
	}

	if maxLength <= 0 {
		maxLength = DefaultMaxContentLength
	}

	snap, err := r.Enumerate(ctx, page, true)
	if err != nil {
		return nil, err
	}

	fc, ok := snap.Find(identifier)
	if !ok {
		return nil, apperr.NotFoundError(op,
			fmt.Errorf("frame %q not found; available frames: %s", identifier, snap.Available()))
	}

	if !fc.Accessible {
		return nil, apperr.Wrap(op, apperr.CodeFrameInaccessible,
			errors.New("frame content is not readable across origins"), map[string]any{
				apperr.MetaReason:     "cross_origin",
				apperr.MetaStage:      apperr.StageFrames,
				apperr.MetaFrameIndex: fc.Index,
			})
	}

	handle, _ := snap.Handle(fc.Index)

	content = &entity.FrameContent{FrameContext: fc, ContentType: kind}

	if kind == entity.FrameContentText || kind == entity.FrameContentBoth {
		text, err := handle.TextContent(ctx)
		if err != nil {
			return nil, readFailed(op, fc, err)
		}

		content.Text = Truncate(text, maxLength)
	}

	if kind == entity.FrameContentHTML || kind == entity.FrameContentBoth {
		html, err := handle.HTML(ctx)
		if err != nil {
			return nil, readFailed(op, fc, err)
		}

		content.HTML = Truncate(html, maxLength)
	}

	switch kind {
	case entity.FrameContentText:
		content.Content, content.Text = content.Text, ""
	case entity.FrameContentHTML:
		content.Content, content.HTML = content.HTML, ""
	}

	return content, nil
}

func readFailed(op string, fc entity.FrameContext, err error) error {
	return apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
		apperr.MetaReason:     "frame_read_failed",
		apperr.MetaStage:      apperr.StageFrames,
		apperr.MetaFrameIndex: fc.Index,
	})
}

// Truncate cuts s to maxLength characters and appends a notice with the
// original length.
func Truncate(s string, maxLength int) string {
	runes := []rune(s)
	if len(runes) <= maxLength {
		return s
	}

	return fmt.Sprintf("%s\n\n[Content truncated: %d of %d characters shown]",
		string(runes[:maxLength]), maxLength, len(runes))
}
