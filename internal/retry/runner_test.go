package retry

import (
	"browser-agent/internal/entity"
	"browser-agent/pkg/apperr"
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newTestRunner() *Runner {
	return NewRunner(Params{Logger: zap.NewNop()})
}

func notFound() error {
	return apperr.WrapErrorWithReason("resolve", apperr.CodeElementNotFound, "no element matched")
}

func TestRun_SucceedsOnIframe(t *testing.T) {
	chain := NewChain(sampleSnapshot(), time.Second)

	var tried []string
	success, err := newTestRunner().Run(context.Background(), chain, func(_ context.Context, s entity.Strategy) (*entity.FrameContext, error) {
		tried = append(tried, s.ID())
		if s.Kind == entity.StrategyIframe && s.Frame.Name == "search-frame" {
			return nil, nil
		}

		return nil, notFound()
	})
	require.NoError(t, err)
	require.NotNil(t, success)

	assert.Equal(t, []string{"main_frame", "iframe_3_search-frame"}, tried)
	assert.Equal(t, "search-frame", success.FrameContext.Name)
	assert.Equal(t, StateSucceeded, chain.State())

	attempts := chain.Attempts()
	require.Len(t, attempts, 2)
	assert.False(t, attempts[0].Success)
	assert.True(t, strings.HasPrefix(attempts[0].Error, apperr.CodeElementNotFound))
	assert.True(t, attempts[1].Success)
	assert.Empty(t, attempts[1].Error)
}

func TestRun_InterceptionJumpsToFallback(t *testing.T) {
	chain := NewChain(sampleSnapshot(), time.Second)
	main := sampleSnapshot()[0]

	success, err := newTestRunner().Run(context.Background(), chain, func(_ context.Context, s entity.Strategy) (*entity.FrameContext, error) {
		switch s.Kind {
		case entity.StrategyMainFrame:
			return nil, apperr.WrapErrorWithReason("Click", apperr.CodeInterception, "<div> intercepts pointer events")
		case entity.StrategyCoordinateClick:
			return &main, nil
		default:
			t.Errorf("strategy %s must be skipped after interception", s.ID())
			return nil, notFound()
		}
	})
	require.NoError(t, err)
	require.NotNil(t, success)

	attempts := chain.Attempts()
	require.Len(t, attempts, 2)
	assert.Contains(t, attempts[0].Error, apperr.CodeInterception)
	assert.Equal(t, entity.StrategyCoordinateClick, attempts[1].Strategy.Kind)
	assert.Equal(t, 0, attempts[1].FrameContext.Index)
}

func TestRun_Exhausted(t *testing.T) {
	chain := NewChain(sampleSnapshot(), time.Second)

	success, err := newTestRunner().Run(context.Background(), chain, func(context.Context, entity.Strategy) (*entity.FrameContext, error) {
		return nil, notFound()
	})
	require.NoError(t, err)
	assert.Nil(t, success)

	report, err := chain.ToErrorDict()
	require.NoError(t, err)
	assert.Len(t, report.Attempts, report.MaxAttempts)

	for _, a := range report.Attempts {
		assert.False(t, a.Success)
		assert.NotEmpty(t, a.Error)
		assert.GreaterOrEqual(t, a.DurationMs, int64(0))
	}
}

func TestRun_StrategyTimeout(t *testing.T) {
	chain := NewChain([]entity.FrameContext{{Index: 0, Accessible: true}}, 30*time.Millisecond)

	success, err := newTestRunner().Run(context.Background(), chain, func(ctx context.Context, s entity.Strategy) (*entity.FrameContext, error) {
		if s.Kind == entity.StrategyMainFrame {
			<-ctx.Done()
			return nil, ctx.Err()
		}

		return nil, nil
	})
	require.NoError(t, err)
	require.NotNil(t, success)

	attempts := chain.Attempts()
	require.Len(t, attempts, 2)
	assert.True(t, strings.HasPrefix(attempts[0].Error, apperr.CodeStrategyTimeout))
	assert.True(t, attempts[1].Success)
}

func TestRun_TimeoutIgnoredByAttempt(t *testing.T) {
	chain := NewChain([]entity.FrameContext{{Index: 0, Accessible: true}}, 20*time.Millisecond)
	release := make(chan struct{})
	defer close(release)

	core, logs := observer.New(zapcore.ErrorLevel)
	runner := NewRunner(Params{Logger: zap.New(core)})
	runner.settle = 10 * time.Millisecond

	var calls atomic.Int32

	start := time.Now()
	_, err := runner.Run(context.Background(), chain, func(_ context.Context, s entity.Strategy) (*entity.FrameContext, error) {
		calls.Add(1)

		if s.Kind == entity.StrategyMainFrame {
			<-release
		}

		return nil, errors.New("boom")
	})
	require.NoError(t, err)

	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Equal(t, int32(1), calls.Load(), "the fallback never runs next to the hung attempt")

	attempts := chain.Attempts()
	require.Len(t, attempts, 2)
	assert.True(t, strings.HasPrefix(attempts[0].Error, apperr.CodeStrategyTimeout))
	assert.True(t, strings.HasPrefix(attempts[1].Error, apperr.CodeStrategyTimeout))
	assert.Contains(t, attempts[1].Error, errPreviousInFlight.Error())
	assert.True(t, chain.Exhausted())

	require.Equal(t, 1, logs.FilterMessage("Timed-out strategy is still running, holding back the next strategy").Len())
}

func TestRun_NextStrategyWaitsForStraggler(t *testing.T) {
	chain := NewChain([]entity.FrameContext{{Index: 0, Accessible: true}}, 100*time.Millisecond)

	runner := newTestRunner()
	runner.settle = 10 * time.Millisecond

	release := make(chan struct{})
	timer := time.AfterFunc(150*time.Millisecond, func() { close(release) })
	defer timer.Stop()

	var mainReturned atomic.Bool

	success, err := runner.Run(context.Background(), chain, func(_ context.Context, s entity.Strategy) (*entity.FrameContext, error) {
		if s.Kind == entity.StrategyMainFrame {
			<-release
			mainReturned.Store(true)

			return nil, errors.New("late")
		}

		if !mainReturned.Load() {
			t.Errorf("strategy %s started while the main frame attempt was running", s.ID())
		}

		return nil, nil
	})
	require.NoError(t, err)
	require.NotNil(t, success)

	attempts := chain.Attempts()
	require.Len(t, attempts, 2)
	assert.True(t, strings.HasPrefix(attempts[0].Error, apperr.CodeStrategyTimeout))
	assert.True(t, attempts[1].Success)
}

func TestRun_InterceptionAfterDeadlineKept(t *testing.T) {
	chain := NewChain(sampleSnapshot(), 30*time.Millisecond)

	success, err := newTestRunner().Run(context.Background(), chain, func(ctx context.Context, s entity.Strategy) (*entity.FrameContext, error) {
		if s.Kind == entity.StrategyMainFrame {
			<-ctx.Done()
			return nil, apperr.Wrap("Click", apperr.CodeInterception, ctx.Err(), map[string]any{
				apperr.MetaReason: "element_covered",
			})
		}

		return nil, nil
	})
	require.NoError(t, err)
	require.NotNil(t, success)

	attempts := chain.Attempts()
	require.Len(t, attempts, 2)
	assert.True(t, strings.HasPrefix(attempts[0].Error, apperr.CodeInterception))
	assert.Equal(t, entity.StrategyCoordinateClick, attempts[1].Strategy.Kind)
}

func TestRun_AbortCodes(t *testing.T) {
	tests := []struct {
		name string
		code string
	}{
		{name: "blocked element", code: apperr.CodeActionBlocked},
		{name: "element needs confirmation", code: apperr.CodeConfirmationRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chain := NewChain(sampleSnapshot(), time.Second)

			var tried []string
			success, err := newTestRunner().Run(context.Background(), chain, func(_ context.Context, s entity.Strategy) (*entity.FrameContext, error) {
				tried = append(tried, s.ID())
				return nil, apperr.WrapErrorWithReason("Interact", tt.code, "sensitive element")
			})
			require.Error(t, err)
			assert.Nil(t, success)
			assert.Equal(t, tt.code, apperr.CodeOf(err))

			assert.Equal(t, []string{"main_frame"}, tried)
			assert.Empty(t, chain.Attempts())
		})
	}
}
