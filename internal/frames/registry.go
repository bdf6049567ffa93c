package frames

import (
	"browser-agent/internal/entity"
	"browser-agent/internal/ports"
	"browser-agent/pkg/apperr"
	"browser-agent/pkg/logg"
	"browser-agent/pkg/tracing"
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	registryName   = "FrameRegistry"
	registryTracer = "frames.registry"

	// MaxFrameDepth is the deepest nesting level visited; the main frame is
	// depth 0.
	MaxFrameDepth = 3
)

type Registry struct {
	logger *zap.Logger
	tracer trace.Tracer
}

type Params struct {
	fx.In

	Logger *zap.Logger
}

func NewRegistry(params Params) *Registry {
	return &Registry{
		logger: params.Logger.With(zap.String(logg.Layer, registryName)),
		tracer: otel.Tracer(registryTracer),
	}
}

// Snapshot is one immutable enumeration of the page's frames. Frames[0] is
// always the main frame.
type Snapshot struct {
	Frames       []entity.FrameContext
	Total        int
	Inaccessible int
	DepthSkipped int

	handles map[int]ports.Frame
}

func (s *Snapshot) Main() entity.FrameContext {
	return s.Frames[0]
}

// Handle returns the driver frame captured for the given index.
func (s *Snapshot) Handle(index int) (ports.Frame, bool) {
	f, ok := s.handles[index]
	return f, ok
}

func (s *Snapshot) Listing() *entity.FrameListing {
	return &entity.FrameListing{
		Frames:       append([]entity.FrameContext(nil), s.Frames...),
		Total:        s.Total,
		Inaccessible: s.Inaccessible,
		DepthSkipped: s.DepthSkipped,
	}
}

// Enumerate walks the page's frames up to MaxFrameDepth. Cross-origin frames
// are reported with Accessible=false; when includeInaccessible is false they
// are left out of Frames but still counted.
func (r *Registry) Enumerate(ctx context.Context, page ports.Page, includeInaccessible bool) (snap *Snapshot, err error) {
	const op = "Enumerate"
	logger := r.logger.With(zap.String(logg.Operation, op))

	ctx, step := tracing.StartSpan(ctx, r.tracer, logger, op,
		attribute.Bool("include_inaccessible", includeInaccessible),
	)
	defer func() {
		step.End(err)
	}()

	raw, err := page.Frames(ctx)
	if err != nil {
		return nil, apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
			apperr.MetaReason: "frames_list_failed",
			apperr.MetaStage:  apperr.StageFrames,
		})
	}

	if len(raw) == 0 {
		return nil, apperr.WrapErrorWithReason(op, apperr.CodeBrowserNotReady, "page has no main frame")
	}

	indexOf := make(map[ports.Frame]int, len(raw))
	for i, f := range raw {
		indexOf[f] = i
	}

	snap = &Snapshot{handles: make(map[int]ports.Frame, len(raw))}

	snap.Frames = append(snap.Frames, r.describeMain(ctx, raw[0]))
	snap.handles[0] = raw[0]
	snap.Total = 1

	for i := 1; i < len(raw); i++ {
		f := raw[i]

		depth := frameDepth(f, len(raw))
		if depth > MaxFrameDepth {
			snap.DepthSkipped++
			logger.Debug("Frame beyond depth limit skipped",
				zap.Int(logg.FrameIndex, i),
				zap.Int("depth", depth),
			)

			continue
		}

		parentIndex := 0
		if parent := f.ParentFrame(); parent != nil {
			if idx, ok := indexOf[parent]; ok {
				parentIndex = idx
			}
		}

		fc := r.describeChild(ctx, f, i, parentIndex, depth)
		snap.Total++

		if !fc.Accessible {
			snap.Inaccessible++
			logger.Warn("Cross-origin frame is not accessible",
				zap.Int(logg.FrameIndex, i),
				zap.String(logg.FrameName, fc.Name),
				zap.String(logg.URL, fc.SourceURL),
			)

			if !includeInaccessible {
				continue
			}
		}

		snap.Frames = append(snap.Frames, fc)
		snap.handles[i] = f
	}

	step.SetAttributes(
		attribute.Int("frames.total", snap.Total),
		attribute.Int("frames.inaccessible", snap.Inaccessible),
		attribute.Int("frames.depth_skipped", snap.DepthSkipped),
	)

	logger.Debug("Frames enumerated",
		zap.Int("total", snap.Total),
		zap.Int("inaccessible", snap.Inaccessible),
		zap.Int("depth_skipped", snap.DepthSkipped),
	)

	return snap, nil
}

func (r *Registry) describeMain(ctx context.Context, f ports.Frame) entity.FrameContext {
	fc := entity.FrameContext{
		Name:       f.Name(),
		Index:      0,
		SourceURL:  f.URL(),
		Accessible: true,
	}

	if title, err := f.Title(ctx); err == nil {
		fc.Title = title
	}

	return fc
}

func (r *Registry) describeChild(ctx context.Context, f ports.Frame, index, parentIndex, depth int) entity.FrameContext {
	fc := entity.FrameContext{
		Name:        f.Name(),
		Index:       index,
		SourceURL:   f.URL(),
		Accessible:  true,
		ParentIndex: &parentIndex,
		Depth:       depth,
	}

	// The owner <iframe> lives in the parent document, so its attributes are
	// readable even when the frame itself is cross-origin.
	if owner, err := f.OwnerAttributes(ctx); err == nil {
		fc.AriaLabel = owner.AriaLabel
		fc.Title = owner.Title

		if fc.Name == "" {
			fc.Name = owner.Name
		}
	}

	if err := f.Ping(ctx); err != nil {
		fc.Accessible = false
		return fc
	}

	if fc.Title == "" {
		if title, err := f.Title(ctx); err == nil {
			fc.Title = title
		}
	}

	return fc
}

// frameDepth counts parent hops up to the main frame. limit guards against
// a driver reporting a parent cycle.
func frameDepth(f ports.Frame, limit int) int {
	depth := 0

	for parent := f.ParentFrame(); parent != nil; parent = parent.ParentFrame() {
		depth++

		if depth > limit {
			break
		}
	}

	return depth
}
