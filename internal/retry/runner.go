package retry

import (
	"browser-agent/internal/entity"
	"browser-agent/pkg/apperr"
	"browser-agent/pkg/logg"
	"browser-agent/pkg/tracing"
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	runnerName   = "RetryRunner"
	runnerTracer = "retry.runner"

	// settleTimeout bounds how long a timed-out attempt may keep running after
	// its context is cancelled before the runner moves on.
	settleTimeout = time.Second
)

var errPreviousInFlight = errors.New("previous attempt is still running")

// abortCodes stop the run instead of moving to the next strategy. Attempts
// failing with them are not recorded.
var abortCodes = []string{
	apperr.CodeActionBlocked,
	apperr.CodeConfirmationRequired,
}

// keptCodes survive a deadline that passed while the attempt was returning.
var keptCodes = append([]string{apperr.CodeInterception}, abortCodes...)

// AttemptFunc executes one strategy. It returns the frame the interaction
// actually happened in when that differs from the strategy's own frame.
type AttemptFunc func(ctx context.Context, s entity.Strategy) (*entity.FrameContext, error)

type Runner struct {
	logger *zap.Logger
	tracer trace.Tracer
	settle time.Duration
}

type Params struct {
	fx.In

	Logger *zap.Logger
}

func NewRunner(params Params) *Runner {
	return &Runner{
		logger: params.Logger.With(zap.String(logg.Layer, runnerName)),
		tracer: otel.Tracer(runnerTracer),
		settle: settleTimeout,
	}
}

// Run drives the chain until one strategy succeeds or all are exhausted.
// Strategy failures are recorded as attempts and never returned. An
// interception failure jumps straight to the coordinate strategy. A failure
// carrying one of abortCodes ends the run and is returned as is. The
// successful attempt is returned, or nil when the chain is exhausted.
//
// An attempt that ignores cancellation past the settle period keeps the
// next strategy waiting; that strategy fails once its own timeout passes.
func (r *Runner) Run(ctx context.Context, chain *Chain, fn AttemptFunc) (success *entity.InteractionAttempt, err error) {
	const op = "Run"
	logger := r.logger.With(zap.String(logg.Operation, op))

	ctx, step := tracing.StartSpan(ctx, r.tracer, logger, op,
		attribute.Int("chain.max_attempts", chain.MaxAttempts()),
		attribute.Int64("chain.timeout_per_frame_ms", chain.TimeoutPerFrame().Milliseconds()),
	)
	defer func() {
		step.End(err)
	}()

	var inflight <-chan struct{}

	for {
		s, ok := chain.Current()
		if !ok {
			break
		}

		start := time.Now()

		out := r.attempt(ctx, chain.TimeoutPerFrame(), s, fn, inflight)
		fc, attemptErr := out.fc, out.err
		inflight = out.inflight

		if isAbort(attemptErr) {
			logger.Info("Strategy aborted the run",
				zap.String(logg.Strategy, s.ID()),
				zap.String(logg.ErrorCode, apperr.CodeOf(attemptErr)),
			)
			step.AddEvent("run aborted", attribute.String("strategy", s.ID()))

			return nil, attemptErr
		}

		if fc == nil {
			fc = s.Frame
		}

		a := entity.InteractionAttempt{
			Strategy:     s,
			FrameContext: fc,
			Success:      attemptErr == nil,
			DurationMs:   time.Since(start).Milliseconds(),
		}
		if attemptErr != nil {
			a.Error = fmt.Sprintf("%s: %v", apperr.CodeOf(attemptErr), attemptErr)
		}

		if err = chain.AddAttempt(a); err != nil {
			return nil, apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
				apperr.MetaReason: "record_attempt_failed",
				apperr.MetaStage:  apperr.StageInteraction,
			})
		}

		step.AddEvent("strategy attempted",
			attribute.String("strategy", s.ID()),
			attribute.Bool("success", a.Success),
			attribute.Int64("duration_ms", a.DurationMs),
		)

		if a.Success {
			logger.Info("Strategy succeeded",
				zap.String(logg.Strategy, s.ID()),
				zap.Int64("duration_ms", a.DurationMs),
			)

			return &a, nil
		}

		logger.Warn("Strategy failed",
			zap.String(logg.Strategy, s.ID()),
			zap.String("error", a.Error),
			zap.Int64("duration_ms", a.DurationMs),
		)

		if apperr.Is(attemptErr, apperr.CodeInterception) {
			err = chain.JumpToFallback()
		} else {
			err = chain.Advance()
		}

		if err != nil {
			return nil, apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
				apperr.MetaReason: "advance_failed",
				apperr.MetaStage:  apperr.StageInteraction,
			})
		}
	}

	logger.Warn("All strategies exhausted", zap.Int("attempts", len(chain.Attempts())))

	return nil, nil
}

// outcome is one attempt's result. inflight is non-nil while fn is still
// running and is closed when it returns.
type outcome struct {
	fc       *entity.FrameContext
	err      error
	inflight <-chan struct{}
}

// attempt runs fn bounded by timeout. When the deadline passes first, the
// attempt is reported as a strategy timeout once fn has returned or the
// settle period is over. Interception and abort failures are kept even when
// they arrive after the deadline.
func (r *Runner) attempt(
	ctx context.Context,
	timeout time.Duration,
	s entity.Strategy,
	fn AttemptFunc,
	inflight <-chan struct{},
) outcome {
	const op = "attempt"

	type result struct {
		fc  *entity.FrameContext
		err error
	}

	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if inflight != nil {
		select {
		case <-inflight:
		case <-attemptCtx.Done():
			if ctx.Err() != nil {
				return outcome{err: cancelledError(op, ctx.Err()), inflight: inflight}
			}

			return outcome{
				err: apperr.Wrap(op, apperr.CodeStrategyTimeout, errPreviousInFlight, map[string]any{
					apperr.MetaReason: "previous_attempt_in_flight",
					apperr.MetaStage:  apperr.StageInteraction,
				}),
				inflight: inflight,
			}
		}
	}

	done := make(chan result, 1)
	finished := make(chan struct{})

	go func() {
		defer close(finished)

		fc, err := fn(attemptCtx, s)
		done <- result{fc: fc, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil && attemptCtx.Err() != nil && ctx.Err() == nil && !hasAny(res.err, keptCodes) {
			return outcome{fc: res.fc, err: timeoutError(op, s, timeout)}
		}

		return outcome{fc: res.fc, err: res.err}
	case <-attemptCtx.Done():
	}

	cancel()

	select {
	case res := <-done:
		if ctx.Err() == nil && hasAny(res.err, keptCodes) {
			return outcome{fc: res.fc, err: res.err}
		}
	case <-time.After(r.settle):
		r.logger.Error("Timed-out strategy is still running, holding back the next strategy",
			zap.String(logg.Strategy, s.ID()),
			zap.Duration("settle", r.settle),
		)

		if ctx.Err() != nil {
			return outcome{err: cancelledError(op, ctx.Err()), inflight: finished}
		}

		return outcome{err: timeoutError(op, s, timeout), inflight: finished}
	}

	if ctx.Err() != nil {
		return outcome{err: cancelledError(op, ctx.Err())}
	}

	return outcome{err: timeoutError(op, s, timeout)}
}

func isAbort(err error) bool {
	return err != nil && hasAny(err, abortCodes)
}

func hasAny(err error, codes []string) bool {
	for _, code := range codes {
		if apperr.Is(err, code) {
			return true
		}
	}

	return false
}

func cancelledError(op string, err error) error {
	return apperr.Wrap(op, apperr.CodeInternal, err, map[string]any{
		apperr.MetaReason: "interaction_cancelled",
		apperr.MetaStage:  apperr.StageInteraction,
	})
}

func timeoutError(op string, s entity.Strategy, timeout time.Duration) error {
	return apperr.Wrap(op, apperr.CodeStrategyTimeout,
		fmt.Errorf("strategy %s exceeded %s", s.ID(), timeout), map[string]any{
			apperr.MetaReason: "strategy_timeout",
			apperr.MetaStage:  apperr.StageInteraction,
		})
}
