package executor

import (
	"browser-agent/internal/entity"
	"browser-agent/internal/ports"
	"browser-agent/pkg/apperr"
	"browser-agent/pkg/logg"
	"browser-agent/pkg/tracing"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	executorName   = "ActionExecutor"
	executorTracer = "executor"

	hitTestTimeout = 2 * time.Second
	// hitTestShare is the fraction of the remaining deadline held back from
	// the driver call so a timed-out action can still be hit-tested.
	hitTestShare = 4
	selectAllKey = "ControlOrMeta+A"
)

var errNoBoundingBox = errors.New("no bounding box (hidden element)")

type Executor struct {
	logger *zap.Logger
	tracer trace.Tracer
}

type Params struct {
	fx.In

	Logger *zap.Logger
}

func NewExecutor(params Params) *Executor {
	return &Executor{
		logger: params.Logger.With(zap.String(logg.Layer, executorName)),
		tracer: otel.Tracer(executorTracer),
	}
}

// Perform runs the requested interaction against a resolved element.
func (e *Executor) Perform(ctx context.Context, el ports.Element, req entity.InteractionRequest) error {
	switch req.Kind {
	case entity.InteractionClick:
		return e.Click(ctx, el, req.Click)
	case entity.InteractionType:
		return e.Type(ctx, el, req.Type)
	case entity.InteractionHover:
		return e.Hover(ctx, el)
	case entity.InteractionSelect:
		return e.Select(ctx, el, req.Select)
	case entity.InteractionScroll:
		return e.ScrollTo(ctx, el)
	default:
		return apperr.InvalidReqError("Perform", "kind", fmt.Errorf("unknown interaction %q", req.Kind))
	}
}

// PerformAtCoordinates runs the requested interaction through raw pointer
// and keyboard input at the element's bounding box centre.
func (e *Executor) PerformAtCoordinates(ctx context.Context, page ports.Page, el ports.Element, req entity.InteractionRequest) error {
	switch req.Kind {
	case entity.InteractionClick:
		return e.CoordinateClick(ctx, page, el, req.Click)
	case entity.InteractionType:
		return e.CoordinateType(ctx, page, el, req.Type)
	case entity.InteractionHover:
		return e.CoordinateHover(ctx, page, el)
	case entity.InteractionSelect:
		return e.CoordinateSelect(ctx, page, el, req.Select)
	case entity.InteractionScroll:
		return e.CoordinateScroll(ctx, el)
	default:
		return apperr.InvalidReqError("PerformAtCoordinates", "kind", fmt.Errorf("unknown interaction %q", req.Kind))
	}
}

func (e *Executor) Click(ctx context.Context, el ports.Element, opts entity.ClickOptions) (err error) {
	const op = "Click"
	logger := e.logger.With(zap.String(logg.Operation, op))

	ctx, step := tracing.StartSpan(ctx, e.tracer, logger, op,
		attribute.Bool("click.double", opts.DoubleClick),
		attribute.Bool("click.right", opts.RightClick),
	)
	defer func() {
		step.End(err)
	}()

	actionCtx, cancel := actionContext(ctx)
	defer cancel()

	if err := el.Click(actionCtx, opts); err != nil {
		return e.classify(ctx, op, el, err)
	}

	return nil
}

func (e *Executor) Type(ctx context.Context, el ports.Element, opts entity.TypeOptions) (err error) {
	const op = "Type"
	logger := e.logger.With(zap.String(logg.Operation, op))

	ctx, step := tracing.StartSpan(ctx, e.tracer, logger, op,
		attribute.Bool("type.clear_first", opts.ClearFirst),
		attribute.Bool("type.press_enter", opts.PressEnter),
	)
	defer func() {
		step.End(err)
	}()

	actionCtx, cancel := actionContext(ctx)
	defer cancel()

	if opts.ClearFirst {
		if err := el.Clear(actionCtx); err != nil {
			return e.classify(ctx, op, el, err)
		}

		if err := el.Fill(actionCtx, opts.Text); err != nil {
			return e.classify(ctx, op, el, err)
		}
	} else if err := el.PressSequentially(actionCtx, opts.Text); err != nil {
		return e.classify(ctx, op, el, err)
	}

	if opts.PressEnter {
		if err := el.Press(actionCtx, "Enter"); err != nil {
			return e.classify(ctx, op, el, err)
		}
	}

	return nil
}

func (e *Executor) Hover(ctx context.Context, el ports.Element) (err error) {
	const op = "Hover"
	logger := e.logger.With(zap.String(logg.Operation, op))

	ctx, step := tracing.StartSpan(ctx, e.tracer, logger, op)
	defer func() {
		step.End(err)
	}()

	actionCtx, cancel := actionContext(ctx)
	defer cancel()

	if err := el.Hover(actionCtx); err != nil {
		return e.classify(ctx, op, el, err)
	}

	return nil
}

// Select picks a <select> option by its visible label.
func (e *Executor) Select(ctx context.Context, el ports.Element, opts entity.SelectOptions) (err error) {
	const op = "Select"
	logger := e.logger.With(zap.String(logg.Operation, op))

	ctx, step := tracing.StartSpan(ctx, e.tracer, logger, op, attribute.String("select.option", opts.Option))
	defer func() {
		step.End(err)
	}()

	actionCtx, cancel := actionContext(ctx)
	defer cancel()

	values, err := el.SelectOption(actionCtx, opts.Option)
	if err != nil {
		return e.classify(ctx, op, el, err)
	}

	if len(values) == 0 {
		return apperr.Wrap(op, apperr.CodeActionFailed, fmt.Errorf("option %q was not selected", opts.Option), map[string]any{
			apperr.MetaReason: "option_not_selected",
			apperr.MetaStage:  apperr.StageInteraction,
		})
	}

	logger.Debug("Option selected", zap.Strings("values", values))

	return nil
}

// ScrollTo scrolls the element into the viewport.
func (e *Executor) ScrollTo(ctx context.Context, el ports.Element) (err error) {
	const op = "ScrollTo"
	logger := e.logger.With(zap.String(logg.Operation, op))

	ctx, step := tracing.StartSpan(ctx, e.tracer, logger, op)
	defer func() {
		step.End(err)
	}()

	actionCtx, cancel := actionContext(ctx)
	defer cancel()

	if err := el.ScrollIntoView(actionCtx); err != nil {
		return e.classify(ctx, op, el, err)
	}

	return nil
}

// CoordinateClick clicks the page at the element's bounding box centre,
// bypassing whatever layer sits on top of the element.
func (e *Executor) CoordinateClick(ctx context.Context, page ports.Page, el ports.Element, opts entity.ClickOptions) (err error) {
	const op = "CoordinateClick"
	logger := e.logger.With(zap.String(logg.Operation, op))

	ctx, step := tracing.StartSpan(ctx, e.tracer, logger, op)
	defer func() {
		step.End(err)
	}()

	x, y, err := e.centre(ctx, op, el)
	if err != nil {
		return err
	}

	step.SetAttributes(attribute.Float64("click.x", x), attribute.Float64("click.y", y))
	logger.Debug("Clicking at coordinates", zap.Float64("x", x), zap.Float64("y", y))

	if err := page.Mouse().Click(ctx, x, y, opts); err != nil {
		return apperr.Wrap(op, apperr.CodeActionFailed, err, map[string]any{
			apperr.MetaReason: "mouse_click_failed",
			apperr.MetaStage:  apperr.StageFallback,
		})
	}

	return nil
}

// CoordinateType focuses the element with a coordinate click and types
// through the keyboard.
func (e *Executor) CoordinateType(ctx context.Context, page ports.Page, el ports.Element, opts entity.TypeOptions) (err error) {
	const op = "CoordinateType"
	logger := e.logger.With(zap.String(logg.Operation, op))

	ctx, step := tracing.StartSpan(ctx, e.tracer, logger, op)
	defer func() {
		step.End(err)
	}()

	if err := e.CoordinateClick(ctx, page, el, entity.ClickOptions{}); err != nil {
		return err
	}

	kb := page.Keyboard()

	if opts.ClearFirst {
		if err := kb.Press(ctx, selectAllKey); err != nil {
			return keyboardFailed(op, err)
		}

		if err := kb.Press(ctx, "Backspace"); err != nil {
			return keyboardFailed(op, err)
		}
	}

	if err := kb.Type(ctx, opts.Text); err != nil {
		return keyboardFailed(op, err)
	}

	if opts.PressEnter {
		if err := kb.Press(ctx, "Enter"); err != nil {
			return keyboardFailed(op, err)
		}
	}

	return nil
}

func (e *Executor) CoordinateHover(ctx context.Context, page ports.Page, el ports.Element) (err error) {
	const op = "CoordinateHover"
	logger := e.logger.With(zap.String(logg.Operation, op))

	ctx, step := tracing.StartSpan(ctx, e.tracer, logger, op)
	defer func() {
		step.End(err)
	}()

	x, y, err := e.centre(ctx, op, el)
	if err != nil {
		return err
	}

	if err := page.Mouse().Move(ctx, x, y); err != nil {
		return apperr.Wrap(op, apperr.CodeActionFailed, err, map[string]any{
			apperr.MetaReason: "mouse_move_failed",
			apperr.MetaStage:  apperr.StageFallback,
		})
	}

	return nil
}

// CoordinateSelect focuses the element with a coordinate click, then types
// the option label and confirms it with Enter.
func (e *Executor) CoordinateSelect(ctx context.Context, page ports.Page, el ports.Element, opts entity.SelectOptions) (err error) {
	const op = "CoordinateSelect"
	logger := e.logger.With(zap.String(logg.Operation, op))

	ctx, step := tracing.StartSpan(ctx, e.tracer, logger, op)
	defer func() {
		step.End(err)
	}()

	if err := e.CoordinateClick(ctx, page, el, entity.ClickOptions{}); err != nil {
		return err
	}

	kb := page.Keyboard()

	if err := kb.Type(ctx, opts.Option); err != nil {
		return keyboardFailed(op, err)
	}

	if err := kb.Press(ctx, "Enter"); err != nil {
		return keyboardFailed(op, err)
	}

	return nil
}

// CoordinateScroll succeeds when the element ends up with a rendered box
// after scrolling.
func (e *Executor) CoordinateScroll(ctx context.Context, el ports.Element) (err error) {
	const op = "CoordinateScroll"
	logger := e.logger.With(zap.String(logg.Operation, op))

	ctx, step := tracing.StartSpan(ctx, e.tracer, logger, op)
	defer func() {
		step.End(err)
	}()

	_, _, err = e.centre(ctx, op, el)

	return err
}

func (e *Executor) centre(ctx context.Context, op string, el ports.Element) (float64, float64, error) {
	if err := el.ScrollIntoView(ctx); err != nil {
		return 0, 0, apperr.Wrap(op, apperr.CodeActionFailed, err, map[string]any{
			apperr.MetaReason: "scroll_failed",
			apperr.MetaStage:  apperr.StageFallback,
		})
	}

	box, err := el.BoundingBox(ctx)
	if err != nil {
		return 0, 0, apperr.Wrap(op, apperr.CodeActionFailed, err, map[string]any{
			apperr.MetaReason: "bounding_box_failed",
			apperr.MetaStage:  apperr.StageFallback,
		})
	}

	if box == nil || box.Empty() {
		return 0, 0, apperr.Wrap(op, apperr.CodeActionFailed, errNoBoundingBox, map[string]any{
			apperr.MetaReason: "no_bounding_box",
			apperr.MetaStage:  apperr.StageFallback,
		})
	}

	x, y := box.Center()

	return x, y, nil
}

// classify turns a driver failure into InterceptionDetected when an overlay
// took the pointer event. Timeouts on an uncovered element become
// StrategyTimeout and everything else ActionFailed. ctx is the caller's
// context, which outlives the shortened action context.
func (e *Executor) classify(ctx context.Context, op string, el ports.Element, err error) error {
	msg := strings.ToLower(err.Error())

	if strings.Contains(msg, "intercepts pointer events") {
		return apperr.Wrap(op, apperr.CodeInterception, err, map[string]any{
			apperr.MetaReason: "pointer_intercepted",
			apperr.MetaStage:  apperr.StageInteraction,
		})
	}

	if !errors.Is(err, context.DeadlineExceeded) && !strings.Contains(msg, "timeout") {
		return apperr.Wrap(op, apperr.CodeActionFailed, err, map[string]any{
			apperr.MetaReason: "interaction_failed",
			apperr.MetaStage:  apperr.StageInteraction,
		})
	}

	hitCtx, cancel := context.WithTimeout(ctx, hitTestTimeout)
	defer cancel()

	hit, hitErr := el.HitTest(hitCtx)
	if hitErr == nil && hit != nil && hit.Covered {
		return apperr.Wrap(op, apperr.CodeInterception, fmt.Errorf("%s: %w", describeCover(hit), err), map[string]any{
			apperr.MetaReason: "element_covered",
			apperr.MetaStage:  apperr.StageInteraction,
		})
	}

	if hitErr != nil {
		e.logger.Debug("Hit test after timeout failed", zap.String(logg.Operation, op), zap.Error(hitErr))
	}

	return apperr.Wrap(op, apperr.CodeStrategyTimeout, err, map[string]any{
		apperr.MetaReason: "action_timeout",
		apperr.MetaStage:  apperr.StageInteraction,
	})
}

// actionContext ends driver calls before ctx does, holding back a share of
// the remaining time (at most hitTestTimeout) for classify.
func actionContext(ctx context.Context) (context.Context, context.CancelFunc) {
	deadline, ok := ctx.Deadline()
	if !ok {
		return context.WithCancel(ctx)
	}

	reserve := time.Until(deadline) / hitTestShare
	if reserve > hitTestTimeout {
		reserve = hitTestTimeout
	}

	return context.WithDeadline(ctx, deadline.Add(-reserve))
}

func describeCover(hit *ports.HitTestResult) string {
	if hit.CoveringFrame != nil {
		name := hit.CoveringFrame.AriaLabel
		if name == "" {
			name = hit.CoveringFrame.Title
		}

		if name == "" {
			name = hit.CoveringFrame.Name
		}

		return fmt.Sprintf("element covered by iframe %q (%s)", name, hit.CoveringSrc)
	}

	if hit.CoveringTag != "" {
		return fmt.Sprintf("element covered by <%s>", hit.CoveringTag)
	}

	return "element covered by another layer"
}

func keyboardFailed(op string, err error) error {
	return apperr.Wrap(op, apperr.CodeActionFailed, err, map[string]any{
		apperr.MetaReason: "keyboard_failed",
		apperr.MetaStage:  apperr.StageFallback,
	})
}
