package usecase

import (
	"browser-agent/internal/config"
	"browser-agent/internal/entity"
	"browser-agent/internal/frames"
	"browser-agent/internal/ports"
	"browser-agent/internal/retry"
	"browser-agent/internal/security"
	"browser-agent/internal/usecase/adapters"
	"browser-agent/pkg/apperr"
	"browser-agent/pkg/logg"
	"browser-agent/pkg/tracing"
	"context"
	"errors"
	"fmt"
	"maps"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	interactionServiceName = "InteractionService"
	interactionTracer      = "usecase.interaction"
)

// InteractionService runs one interaction at a time against the shared
// page: security gate, optional confirmation, frame snapshot, then the retry
// chain driving resolver and executor.
type InteractionService struct {
	config    *config.Config
	logger    *zap.Logger
	tracer    trace.Tracer
	browser   adapters.BrowserService
	registry  adapters.FrameRegistry
	gate      adapters.SecurityGate
	resolver  adapters.ElementResolver
	executor  adapters.ActionExecutor
	runner    adapters.RetryRunner
	confirmer ports.Confirmer

	mu sync.Mutex
}

type InteractionServiceParams struct {
	fx.In

	Config    *config.Config
	Logger    *zap.Logger
	Browser   adapters.BrowserService
	Registry  adapters.FrameRegistry
	Gate      adapters.SecurityGate
	Resolver  adapters.ElementResolver
	Executor  adapters.ActionExecutor
	Runner    adapters.RetryRunner
	Confirmer ports.Confirmer
}

func NewInteractionService(params InteractionServiceParams) *InteractionService {
	return &InteractionService{
		config:    params.Config,
		logger:    params.Logger.With(zap.String(logg.Layer, interactionServiceName)),
		tracer:    otel.Tracer(interactionTracer),
		browser:   params.Browser,
		registry:  params.Registry,
		gate:      params.Gate,
		resolver:  params.Resolver,
		executor:  params.Executor,
		runner:    params.Runner,
		confirmer: params.Confirmer,
	}
}

// Interact executes req against page. Blocked and declined actions, and
// exhausted retry chains, are reported as unsuccessful results; the error
// return is reserved for invalid requests and driver failures outside the
// chain.
func (s *InteractionService) Interact(ctx context.Context, page ports.Page, req entity.InteractionRequest) (result *entity.InteractionResult, err error) {
	const op = "Interact"

	id := uuid.NewString()
	logger := s.logger.With(
		zap.String(logg.Operation, op),
		zap.String(logg.InteractionID, id),
		zap.String(logg.Action, string(req.Kind)),
		zap.String(logg.Description, req.Description),
	)

	ctx, step := tracing.StartSpan(ctx, s.tracer, logger, op,
		attribute.String("interaction.id", id),
		attribute.String("interaction.kind", string(req.Kind)),
		attribute.String("interaction.description", req.Description),
	)
	defer func() {
		step.End(err)
	}()

	if traceID := step.TraceID(); traceID != "" {
		logger = logger.With(zap.String(logg.TraceID, traceID))
	}

	if err := validateRequest(op, req); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	result = &entity.InteractionResult{
		InteractionID: id,
		Action:        string(req.Kind),
		Element:       req.Description,
	}

	pc := pageContext(ctx, page)
	confirmed := make(map[entity.ActionType]bool)

	// Scrolling an element into view changes nothing on the page.
	if req.Kind != entity.InteractionScroll {
		check := s.gate.Check(ctx, req.Description, req.ElementContext, pc)
		result.Security = &check

		if done := s.screen(ctx, logger, step, page, req, check, confirmed, result); done {
			return result, nil
		}
	}

	snap, err := s.snapshot(ctx, page, req)
	if err != nil {
		return nil, err
	}

	// Each rerun follows a confirmation for a category not confirmed before,
	// so the loop ends after at most one pass per category.
	for pass := 0; ; pass++ {
		chain := retry.NewChain(snap.Frames, s.config.InteractionConfig.TimeoutPerFrame())
		if pass == 0 {
			for _, fc := range chain.Skipped() {
				logger.Warn("Skipping inaccessible cross-origin frame",
					zap.Int(logg.FrameIndex, fc.Index),
					zap.String(logg.FrameName, fc.Name),
					zap.String(logg.URL, fc.SourceURL),
				)
			}
		}

		target := &targetTracker{}

		success, err := s.runner.Run(ctx, chain, s.attemptFunc(op, page, snap, req, pc, maps.Clone(confirmed), target))

		var gated *elementGateError
		if errors.As(err, &gated) {
			elementCheck := gated.check
			result.Security = &elementCheck

			logger.Info("Resolved element changed the security classification",
				zap.String("action_type", string(elementCheck.ActionType)),
				zap.Strings("matched", elementCheck.MatchedPatterns),
			)

			if done := s.screen(ctx, logger, step, page, req, elementCheck, confirmed, result); done {
				return result, nil
			}

			continue
		}

		if err != nil {
			return nil, err
		}

		return s.finish(logger, req, result, chain, success, target)
	}
}

// screen applies a security check: blocked and declined actions fill result
// and report done. A confirmed category is remembered in confirmed.
func (s *InteractionService) screen(
	ctx context.Context,
	logger *zap.Logger,
	step *tracing.Span,
	page ports.Page,
	req entity.InteractionRequest,
	check entity.SecurityCheck,
	confirmed map[entity.ActionType]bool,
	result *entity.InteractionResult,
) bool {
	if check.IsBlocked {
		step.AddEvent("action blocked", attribute.String("security.action_type", string(check.ActionType)))
		logger.Warn("Action blocked", zap.String("action_type", string(check.ActionType)), zap.String("reason", check.Reason))

		result.Error = fmt.Sprintf("action blocked: %s", check.Reason)
		result.ErrorCode = apperr.CodeActionBlocked
		result.Suggestion = check.Suggestion

		return true
	}

	if !check.RequiresConfirmation || confirmed[check.ActionType] {
		return false
	}

	decision := s.confirm(ctx, logger, page, req, check)
	step.AddEvent("confirmation", attribute.String("confirmation.result", string(decision)))

	if decision != entity.ConfirmationConfirmed {
		logger.Info("Action not confirmed", zap.String("decision", string(decision)))

		result.Error = fmt.Sprintf("user %s the %s action", decision, check.ActionType)
		result.ErrorCode = apperr.CodeConfirmationDenied

		return true
	}

	confirmed[check.ActionType] = true

	return false
}

// attemptFunc resolves and acts for frame strategies, and reuses the last
// resolved element for the coordinate fallback. Mutating interactions are
// checked again against what the resolved element really is.
func (s *InteractionService) attemptFunc(
	op string,
	page ports.Page,
	snap *frames.Snapshot,
	req entity.InteractionRequest,
	pc map[string]string,
	confirmed map[entity.ActionType]bool,
	target *targetTracker,
) retry.AttemptFunc {
	return func(ctx context.Context, st entity.Strategy) (*entity.FrameContext, error) {
		switch st.Kind {
		case entity.StrategyMainFrame, entity.StrategyIframe:
			handle, ok := snap.Handle(st.Frame.Index)
			if !ok {
				return nil, apperr.WrapErrorWithReason(op, apperr.CodeFrameInaccessible, "frame handle missing from snapshot")
			}

			res, err := s.resolver.Resolve(ctx, handle, req.Description, req.Role)
			if err != nil {
				return nil, err
			}

			if res == nil {
				return nil, apperr.WrapErrorWithReason(op, apperr.CodeElementNotFound,
					fmt.Sprintf("no element matching %q in frame %d", req.Description, st.Frame.Index))
			}

			if req.Kind.Mutating() {
				check := s.gate.Check(ctx, req.Description, security.ElementContext(res.Info, req.ElementContext), pc)
				if err := gateElement(op, check, confirmed); err != nil {
					return nil, err
				}
			}

			target.set(res.Element, res.Info, *st.Frame)

			return nil, s.executor.Perform(ctx, res.Element, req)
		case entity.StrategyCoordinateClick:
			el, _, fc, ok := target.get()
			if !ok {
				return nil, apperr.WrapErrorWithReason(op, apperr.CodeElementNotFound,
					"no element was resolved for the coordinate fallback")
			}

			return &fc, s.executor.PerformAtCoordinates(ctx, page, el, req)
		default:
			return nil, apperr.WrapErrorWithReason(op, apperr.CodeInternal, fmt.Sprintf("unknown strategy %s", st.ID()))
		}
	}
}

func (s *InteractionService) finish(
	logger *zap.Logger,
	req entity.InteractionRequest,
	result *entity.InteractionResult,
	chain *retry.Chain,
	success *entity.InteractionAttempt,
	target *targetTracker,
) (*entity.InteractionResult, error) {
	const op = "Interact"

	if success != nil {
		result.Success = true
		result.FrameContext = success.FrameContext
		result.RetryChain = chain.Report()

		if _, info, _, ok := target.get(); ok {
			result.ElementInfo = summarize(info)
		}

		logger.Info("Interaction succeeded",
			zap.String(logg.Strategy, success.Strategy.ID()),
			zap.Int("attempts", len(result.RetryChain.Attempts)),
		)

		return result, nil
	}

	report, err := chain.ToErrorDict()
	if err != nil {
		return nil, apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
			apperr.MetaReason: "chain_report_failed",
			apperr.MetaStage:  apperr.StageInteraction,
		})
	}

	result.Error = fmt.Sprintf("could not %s %q after %d strategies", req.Kind, req.Description, len(report.Attempts))
	result.ErrorCode = apperr.CodeRetryExhausted
	result.Data = &entity.ResultData{RetryChain: report}

	logger.Warn("Interaction failed, retry chain exhausted", zap.Int("attempts", len(report.Attempts)))

	return result, nil
}

// elementGateError carries the check of a resolved element out of the retry
// chain.
type elementGateError struct {
	check entity.SecurityCheck
}

func (e *elementGateError) Error() string {
	if e.check.IsBlocked {
		return fmt.Sprintf("resolved element is blocked: %s", e.check.Reason)
	}

	return fmt.Sprintf("resolved element needs %s confirmation", e.check.ActionType)
}

func gateElement(op string, check entity.SecurityCheck, confirmed map[entity.ActionType]bool) error {
	switch {
	case check.IsBlocked:
		return apperr.Wrap(op, apperr.CodeActionBlocked, &elementGateError{check: check}, map[string]any{
			apperr.MetaReason: "element_blocked",
			apperr.MetaStage:  apperr.StageResolve,
		})
	case check.RequiresConfirmation && !confirmed[check.ActionType]:
		return apperr.Wrap(op, apperr.CodeConfirmationRequired, &elementGateError{check: check}, map[string]any{
			apperr.MetaReason: "element_needs_confirmation",
			apperr.MetaStage:  apperr.StageResolve,
		})
	default:
		return nil
	}
}

func (s *InteractionService) confirm(
	ctx context.Context,
	logger *zap.Logger,
	page ports.Page,
	req entity.InteractionRequest,
	check entity.SecurityCheck,
) entity.ConfirmationResult {
	details := map[string]string{
		"action": string(req.Kind),
		"url":    page.URL(),
	}
	switch req.Kind {
	case entity.InteractionType:
		details["text"] = req.Type.Text
	case entity.InteractionSelect:
		details["option"] = req.Select.Option
	}

	decision, err := s.confirmer.Confirm(ctx, entity.ConfirmationRequest{
		ActionDescription: req.Description,
		Check:             check,
		Details:           details,
	})
	if err != nil {
		logger.Warn("Confirmation failed, treating as cancelled", zap.Error(err))
		return entity.ConfirmationCancelled
	}

	return decision
}

func (s *InteractionService) snapshot(ctx context.Context, page ports.Page, req entity.InteractionRequest) (*frames.Snapshot, error) {
	if !req.WaitForFrames {
		return s.registry.Enumerate(ctx, page, true)
	}

	ic := s.config.InteractionConfig

	return s.registry.WaitForDynamicFrames(ctx, page, req.ExpectedFrames, ic.FrameWaitTimeout(), ic.FramePollInterval())
}

func (s *InteractionService) Click(ctx context.Context, description, role string, opts entity.ClickOptions) (*entity.InteractionResult, error) {
	return s.Execute(ctx, entity.InteractionRequest{
		Kind:        entity.InteractionClick,
		Description: description,
		Role:        role,
		Click:       opts,
	})
}

func (s *InteractionService) TypeText(ctx context.Context, description string, opts entity.TypeOptions) (*entity.InteractionResult, error) {
	return s.Execute(ctx, entity.InteractionRequest{
		Kind:        entity.InteractionType,
		Description: description,
		Type:        opts,
	})
}

func (s *InteractionService) Hover(ctx context.Context, description, role string) (*entity.InteractionResult, error) {
	return s.Execute(ctx, entity.InteractionRequest{
		Kind:        entity.InteractionHover,
		Description: description,
		Role:        role,
	})
}

// SelectOption picks option in a <select>; the combobox role is tried
// first.
func (s *InteractionService) SelectOption(ctx context.Context, description, option string) (*entity.InteractionResult, error) {
	return s.Execute(ctx, entity.InteractionRequest{
		Kind:        entity.InteractionSelect,
		Description: description,
		Role:        "combobox",
		Select:      entity.SelectOptions{Option: option},
	})
}

// ScrollTo scrolls the described element into view, searching frames like
// any other interaction.
func (s *InteractionService) ScrollTo(ctx context.Context, description string) (*entity.InteractionResult, error) {
	return s.Execute(ctx, entity.InteractionRequest{
		Kind:        entity.InteractionScroll,
		Description: description,
	})
}

// Execute runs req against the browser's current page.
func (s *InteractionService) Execute(ctx context.Context, req entity.InteractionRequest) (*entity.InteractionResult, error) {
	page, err := s.page(ctx, "Interact")
	if err != nil {
		return nil, err
	}

	return s.Interact(ctx, page, req)
}

func (s *InteractionService) ListFrames(ctx context.Context, includeInaccessible bool) (listing *entity.FrameListing, err error) {
	const op = "ListFrames"
	logger := s.logger.With(zap.String(logg.Operation, op))

	ctx, step := tracing.StartSpan(ctx, s.tracer, logger, op,
		attribute.Bool("include_inaccessible", includeInaccessible))
	defer func() {
		step.End(err)
	}()

	page, err := s.page(ctx, op)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.registry.Enumerate(ctx, page, includeInaccessible)
	if err != nil {
		return nil, err
	}

	return snap.Listing(), nil
}

func (s *InteractionService) FrameContent(
	ctx context.Context,
	identifier string,
	kind entity.FrameContentKind,
	maxLength int,
) (content *entity.FrameContent, err error) {
	const op = "FrameContent"
	logger := s.logger.With(zap.String(logg.Operation, op))

	ctx, step := tracing.StartSpan(ctx, s.tracer, logger, op,
		attribute.String("frame.identifier", identifier))
	defer func() {
		step.End(err)
	}()

	page, err := s.page(ctx, op)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.registry.FrameContent(ctx, page, identifier, kind, maxLength)
}

// CheckAction classifies an action without executing it. Page context is
// included when the browser is running.
func (s *InteractionService) CheckAction(ctx context.Context, description string, elementContext map[string]string) (*entity.SecurityCheck, error) {
	const op = "CheckAction"

	if strings.TrimSpace(description) == "" {
		return nil, apperr.InvalidReqError(op, "description", errors.New("action description cannot be empty"))
	}

	var pc map[string]string
	if s.browser.IsReady() {
		if page, err := s.browser.Page(ctx); err == nil {
			pc = pageContext(ctx, page)
		}
	}

	check := s.gate.Check(ctx, description, elementContext, pc)

	return &check, nil
}

func (s *InteractionService) Navigate(ctx context.Context, url string) (info *entity.PageInfo, err error) {
	const op = "Navigate"
	logger := s.logger.With(zap.String(logg.Operation, op), zap.String(logg.URL, url))

	ctx, step := tracing.StartSpan(ctx, s.tracer, logger, op, attribute.String("url", url))
	defer func() {
		step.End(err)
	}()

	if strings.TrimSpace(url) == "" {
		return nil, apperr.InvalidReqError(op, "url", errors.New("url cannot be empty"))
	}

	if !s.browser.IsReady() {
		return nil, apperr.WrapErrorWithReason(op, apperr.CodeBrowserNotReady, "browser_not_ready")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.browser.Navigate(ctx, url); err != nil {
		return nil, err
	}

	return s.pageInfo(ctx, logger)
}

// History goes back, forward or reloads, then reports the resulting page.
func (s *InteractionService) History(ctx context.Context, action entity.HistoryAction) (info *entity.PageInfo, err error) {
	const op = "History"
	logger := s.logger.With(zap.String(logg.Operation, op), zap.String(logg.Action, string(action)))

	ctx, step := tracing.StartSpan(ctx, s.tracer, logger, op, attribute.String("history.action", string(action)))
	defer func() {
		step.End(err)
	}()

	switch action {
	case entity.HistoryBack, entity.HistoryForward, entity.HistoryReload:
	default:
		return nil, apperr.InvalidReqError(op, "action", fmt.Errorf("unknown history action %q", action))
	}

	if !s.browser.IsReady() {
		return nil, apperr.WrapErrorWithReason(op, apperr.CodeBrowserNotReady, "browser_not_ready")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.browser.History(ctx, action); err != nil {
		return nil, err
	}

	return s.pageInfo(ctx, logger)
}

// pageInfo reads the current page and logs page-level security notices.
func (s *InteractionService) pageInfo(ctx context.Context, logger *zap.Logger) (*entity.PageInfo, error) {
	page, err := s.browser.Page(ctx)
	if err != nil {
		return nil, err
	}

	pc := pageContext(ctx, page)
	for _, warning := range s.gate.CheckPage(pc) {
		logger.Warn("Page security notice",
			zap.String("action_type", string(warning.ActionType)),
			zap.String("reason", warning.Reason),
		)
	}

	return &entity.PageInfo{URL: pc[security.PageURL], Title: pc[security.PageTitle]}, nil
}

// ScrollPage scrolls the main window by a pixel delta or to an edge.
func (s *InteractionService) ScrollPage(ctx context.Context, req entity.ScrollRequest) (res *entity.ScrollResult, err error) {
	const op = "ScrollPage"
	logger := s.logger.With(zap.String(logg.Operation, op))

	ctx, step := tracing.StartSpan(ctx, s.tracer, logger, op,
		attribute.Float64("scroll.dx", req.DeltaX),
		attribute.Float64("scroll.dy", req.DeltaY),
		attribute.String("scroll.edge", string(req.Edge)),
	)
	defer func() {
		step.End(err)
	}()

	switch req.Edge {
	case "":
		if req.DeltaX == 0 && req.DeltaY == 0 {
			return nil, apperr.InvalidReqError(op, "dy", errors.New("scroll distance or edge is required"))
		}
	case entity.ScrollEdgeTop, entity.ScrollEdgeBottom:
	default:
		return nil, apperr.InvalidReqError(op, "edge", fmt.Errorf("unknown scroll edge %q", req.Edge))
	}

	page, err := s.page(ctx, op)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err = page.Scroll(ctx, req)
	if err != nil {
		return nil, apperr.Wrap(op, apperr.CodeActionFailed, err, map[string]any{
			apperr.MetaReason: "scroll_failed",
			apperr.MetaStage:  apperr.StageInteraction,
		})
	}

	return res, nil
}

// FindElements lists interactable elements across the accessible frames,
// main frame first, stopping at limit. Frames that fail to read are
// skipped.
func (s *InteractionService) FindElements(ctx context.Context, query string, includeHidden bool, limit int) (listing *entity.ElementListing, err error) {
	const op = "FindElements"
	logger := s.logger.With(zap.String(logg.Operation, op), zap.String(logg.Description, query))

	ctx, step := tracing.StartSpan(ctx, s.tracer, logger, op,
		attribute.String("elements.query", query),
		attribute.Int("elements.limit", limit),
	)
	defer func() {
		step.End(err)
	}()

	if limit <= 0 {
		limit = s.config.InteractionConfig.ElementListLimit
	}

	page, err := s.page(ctx, op)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snap, err := s.registry.Enumerate(ctx, page, false)
	if err != nil {
		return nil, err
	}

	listing = &entity.ElementListing{}

	for _, fc := range snap.Frames {
		handle, ok := snap.Handle(fc.Index)
		if !ok {
			continue
		}

		found, err := s.resolver.Candidates(ctx, handle, query, includeHidden)
		if err != nil {
			logger.Warn("Skipping unreadable frame", zap.Int(logg.FrameIndex, fc.Index), zap.Error(err))
			continue
		}

		if len(found) == 0 {
			continue
		}

		room := limit - listing.Total
		if room <= 0 {
			listing.Truncated = true
			break
		}

		if len(found) > room {
			found = found[:room]
			listing.Truncated = true
		}

		listing.Frames = append(listing.Frames, entity.FrameElements{FrameContext: fc, Elements: found})
		listing.Total += len(found)

		if listing.Truncated {
			break
		}
	}

	step.SetAttributes(attribute.Int("elements.total", listing.Total))

	return listing, nil
}

// Screenshot captures the viewport, or the whole page, as PNG.
func (s *InteractionService) Screenshot(ctx context.Context, fullPage bool) (shot *entity.Screenshot, err error) {
	const op = "Screenshot"
	logger := s.logger.With(zap.String(logg.Operation, op))

	ctx, step := tracing.StartSpan(ctx, s.tracer, logger, op, attribute.Bool("screenshot.full_page", fullPage))
	defer func() {
		step.End(err)
	}()

	page, err := s.page(ctx, op)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := page.Screenshot(ctx, fullPage)
	if err != nil {
		return nil, apperr.Wrap(op, apperr.CodeActionFailed, err, map[string]any{
			apperr.MetaReason: "screenshot_failed",
			apperr.MetaStage:  apperr.StageBrowser,
		})
	}

	return &entity.Screenshot{
		URL:      page.URL(),
		MimeType: "image/png",
		FullPage: fullPage,
		Data:     data,
	}, nil
}

func (s *InteractionService) page(ctx context.Context, op string) (ports.Page, error) {
	if !s.browser.IsReady() {
		return nil, apperr.WrapErrorWithReason(op, apperr.CodeBrowserNotReady, "browser_not_ready")
	}

	return s.browser.Page(ctx)
}

func validateRequest(op string, req entity.InteractionRequest) error {
	if strings.TrimSpace(req.Description) == "" {
		return apperr.InvalidReqError(op, "description", errors.New("element description cannot be empty"))
	}

	switch req.Kind {
	case entity.InteractionClick, entity.InteractionHover, entity.InteractionScroll:
	case entity.InteractionSelect:
		if strings.TrimSpace(req.Select.Option) == "" {
			return apperr.InvalidReqError(op, "option", errors.New("option to select cannot be empty"))
		}
	case entity.InteractionType:
		if req.Type.Text == "" && !req.Type.PressEnter {
			return apperr.InvalidReqError(op, "text", errors.New("text to type cannot be empty"))
		}
	default:
		return apperr.InvalidReqError(op, "kind", fmt.Errorf("unknown interaction %q", req.Kind))
	}

	return nil
}

func pageContext(ctx context.Context, page ports.Page) map[string]string {
	pc := map[string]string{security.PageURL: page.URL()}

	if title, err := page.Title(ctx); err == nil {
		pc[security.PageTitle] = title
	}

	return pc
}

func summarize(info entity.ElementInfo) *entity.ElementSummary {
	text := info.Text
	if text == "" {
		text = info.Name
	}

	return &entity.ElementSummary{Tag: info.Tag, Role: info.Role, Text: text}
}

// targetTracker remembers the last element a frame strategy resolved so the
// coordinate fallback can aim at it.
type targetTracker struct {
	mu      sync.Mutex
	element ports.Element
	info    entity.ElementInfo
	frame   entity.FrameContext
	ok      bool
}

func (t *targetTracker) set(el ports.Element, info entity.ElementInfo, fc entity.FrameContext) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.element, t.info, t.frame, t.ok = el, info, fc, true
}

func (t *targetTracker) get() (ports.Element, entity.ElementInfo, entity.FrameContext, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.element, t.info, t.frame, t.ok
}
