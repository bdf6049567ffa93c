package frames

import (
	"browser-agent/internal/ports"
	"browser-agent/pkg/logg"
	"browser-agent/pkg/tracing"
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// WaitForDynamicFrames polls Enumerate every poll interval until the frame
// count reaches expectedMin, or, without an expectation, stays the same for
// two consecutive polls. On timeout it returns the last snapshot observed;
// it fails only when no snapshot could be taken at all.
func (r *Registry) WaitForDynamicFrames(
	ctx context.Context,
	page ports.Page,
	expectedMin *int,
	timeout, poll time.Duration,
) (snap *Snapshot, err error) {
	const op = "WaitForDynamicFrames"
	logger := r.logger.With(zap.String(logg.Operation, op))

	ctx, step := tracing.StartSpan(ctx, r.tracer, logger, op,
		attribute.Int64("timeout_ms", timeout.Milliseconds()),
		attribute.Int64("poll_interval_ms", poll.Milliseconds()),
	)
	defer func() {
		step.End(err)
	}()

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	prevCount := -1
	polls := 0

	for {
		current, enumErr := r.Enumerate(ctx, page, true)
		polls++

		switch {
		case enumErr != nil && snap == nil:
			err = enumErr
		case enumErr != nil:
			logger.Debug("Frame poll failed, keeping last snapshot", zap.Error(enumErr))
		default:
			snap, err = current, nil
			count := len(snap.Frames)

			if expectedMin != nil && count >= *expectedMin {
				logger.Debug("Expected frame count reached", zap.Int("count", count), zap.Int("polls", polls))
				return snap, nil
			}

			if expectedMin == nil && count == prevCount {
				logger.Debug("Frame count stable", zap.Int("count", count), zap.Int("polls", polls))
				return snap, nil
			}

			prevCount = count
		}

		select {
		case <-waitCtx.Done():
			if snap != nil {
				logger.Debug("Frame wait timed out", zap.Int("count", len(snap.Frames)), zap.Int("polls", polls))
				return snap, nil
			}

			return nil, err
		case <-ticker.C:
		}
	}
}
