package executor

import (
	"browser-agent/internal/entity"
	"browser-agent/internal/fakebrowser"
	"browser-agent/internal/ports"
	"browser-agent/pkg/apperr"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestExecutor() *Executor {
	return NewExecutor(Params{Logger: zap.NewNop()})
}

func newButton(page *fakebrowser.Page, box *entity.BoundingBox) *fakebrowser.Element {
	return page.Main().AddElement(entity.ElementInfo{
		Tag:         "button",
		Name:        "Go",
		Visible:     true,
		Enabled:     true,
		BoundingBox: box,
	})
}

func TestClick(t *testing.T) {
	page := fakebrowser.NewPage("https://example.com", "Example")
	btn := newButton(page, nil)

	err := newTestExecutor().Click(context.Background(), btn, entity.ClickOptions{DoubleClick: true})
	require.NoError(t, err)

	require.Len(t, btn.Clicks, 1)
	assert.True(t, btn.Clicks[0].DoubleClick)
}

func TestClick_Classification(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(el *fakebrowser.Element)
		wantCode string
		wantText string
	}{
		{
			name:     "overlay intercepts",
			setup:    func(el *fakebrowser.Element) { el.FailClick(fakebrowser.ErrIntercepted) },
			wantCode: apperr.CodeInterception,
		},
		{
			name: "timeout while covered by iframe",
			setup: func(el *fakebrowser.Element) {
				el.FailClick(errors.New("Timeout 5000ms exceeded."))
				el.CoveredBy(&ports.HitTestResult{
					Covered:       true,
					CoveringTag:   "iframe",
					CoveringFrame: &ports.FrameOwnerAttributes{AriaLabel: "Chat"},
					CoveringSrc:   "https://chat.example.com",
				})
			},
			wantCode: apperr.CodeInterception,
			wantText: `iframe "Chat"`,
		},
		{
			name:     "timeout with nothing on top",
			setup:    func(el *fakebrowser.Element) { el.FailClick(errors.New("Timeout 5000ms exceeded.")) },
			wantCode: apperr.CodeStrategyTimeout,
		},
		{
			name:     "detached",
			setup:    func(el *fakebrowser.Element) { el.FailClick(fakebrowser.ErrDetached) },
			wantCode: apperr.CodeActionFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := fakebrowser.NewPage("https://example.com", "Example")
			btn := newButton(page, nil)
			tt.setup(btn)

			err := newTestExecutor().Click(context.Background(), btn, entity.ClickOptions{})
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, apperr.CodeOf(err))

			if tt.wantText != "" {
				assert.Contains(t, err.Error(), tt.wantText)
			}
		})
	}
}

func TestType(t *testing.T) {
	page := fakebrowser.NewPage("https://example.com", "Example")
	ex := newTestExecutor()

	t.Run("clear first and enter", func(t *testing.T) {
		field := newButton(page, nil)

		err := ex.Type(context.Background(), field, entity.TypeOptions{Text: "shoes", ClearFirst: true, PressEnter: true})
		require.NoError(t, err)

		assert.Equal(t, 1, field.Cleared)
		assert.Equal(t, []string{"shoes"}, field.Filled)
		assert.Equal(t, []string{"Enter"}, field.Pressed)
	})

	t.Run("append", func(t *testing.T) {
		field := newButton(page, nil)

		err := ex.Type(context.Background(), field, entity.TypeOptions{Text: " red"})
		require.NoError(t, err)

		assert.Zero(t, field.Cleared)
		assert.Empty(t, field.Filled)
		assert.Equal(t, []string{" red"}, field.Appended)
		assert.Empty(t, field.Pressed)
	})
}

func TestHover(t *testing.T) {
	page := fakebrowser.NewPage("https://example.com", "Example")
	btn := newButton(page, nil)

	require.NoError(t, newTestExecutor().Hover(context.Background(), btn))
	assert.Equal(t, 1, btn.Hovered)
}

func TestCoordinateClick(t *testing.T) {
	page := fakebrowser.NewPage("https://example.com", "Example")
	btn := newButton(page, &entity.BoundingBox{X: 100, Y: 50, Width: 200, Height: 40})
	btn.FailClick(fakebrowser.ErrIntercepted)

	err := newTestExecutor().CoordinateClick(context.Background(), page, btn, entity.ClickOptions{})
	require.NoError(t, err)

	assert.Equal(t, []fakebrowser.Point{{X: 200, Y: 70}}, page.Clicks())
	assert.Equal(t, 1, btn.Scrolled)
	assert.Empty(t, btn.Clicks, "element click is bypassed")
}

func TestCoordinateClick_Hidden(t *testing.T) {
	page := fakebrowser.NewPage("https://example.com", "Example")
	ex := newTestExecutor()

	for name, box := range map[string]*entity.BoundingBox{
		"no box":   nil,
		"zero box": {X: 10, Y: 10},
	} {
		t.Run(name, func(t *testing.T) {
			btn := newButton(page, box)

			err := ex.CoordinateClick(context.Background(), page, btn, entity.ClickOptions{})
			require.Error(t, err)
			assert.Contains(t, err.Error(), "bounding box")
			assert.Equal(t, apperr.CodeActionFailed, apperr.CodeOf(err))
		})
	}

	assert.Empty(t, page.Clicks())
}

func TestCoordinateType(t *testing.T) {
	page := fakebrowser.NewPage("https://example.com", "Example")
	field := newButton(page, &entity.BoundingBox{X: 0, Y: 0, Width: 20, Height: 10})

	err := newTestExecutor().CoordinateType(context.Background(), page, field,
		entity.TypeOptions{Text: "hello", ClearFirst: true, PressEnter: true})
	require.NoError(t, err)

	assert.Equal(t, []fakebrowser.Point{{X: 10, Y: 5}}, page.Clicks())
	assert.Equal(t, []string{"hello"}, page.Typed)
	assert.Equal(t, []string{selectAllKey, "Backspace", "Enter"}, page.Pressed)
}

func TestPerformAtCoordinates_Hover(t *testing.T) {
	page := fakebrowser.NewPage("https://example.com", "Example")
	btn := newButton(page, &entity.BoundingBox{X: 0, Y: 0, Width: 10, Height: 10})

	err := newTestExecutor().PerformAtCoordinates(context.Background(), page, btn,
		entity.InteractionRequest{Kind: entity.InteractionHover})
	require.NoError(t, err)
	assert.Equal(t, []fakebrowser.Point{{X: 5, Y: 5}}, page.MouseMoves)
}

func TestPerform_HangRespectsContext(t *testing.T) {
	page := fakebrowser.NewPage("https://example.com", "Example")
	btn := newButton(page, nil).HangOnAction()

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	err := newTestExecutor().Perform(ctx, btn, entity.InteractionRequest{Kind: entity.InteractionClick})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, apperr.CodeStrategyTimeout, apperr.CodeOf(err))
	assert.NoError(t, ctx.Err(), "the action gives up before the caller's deadline")
}

func TestPerform_HangWhileCovered(t *testing.T) {
	page := fakebrowser.NewPage("https://example.com", "Example")
	btn := newButton(page, nil).HangOnAction().CoveredBy(&ports.HitTestResult{
		Covered:       true,
		CoveringTag:   "iframe",
		CoveringFrame: &ports.FrameOwnerAttributes{Title: "Cookie banner"},
	})

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	err := newTestExecutor().Perform(ctx, btn, entity.InteractionRequest{Kind: entity.InteractionClick})
	require.Error(t, err)
	assert.Equal(t, apperr.CodeInterception, apperr.CodeOf(err))
	assert.Contains(t, err.Error(), `iframe "Cookie banner"`)
	assert.NoError(t, ctx.Err())
}

func TestActionContext(t *testing.T) {
	t.Run("no deadline", func(t *testing.T) {
		ctx, cancel := actionContext(context.Background())
		defer cancel()

		_, ok := ctx.Deadline()
		assert.False(t, ok)
	})

	tests := []struct {
		name        string
		remaining   time.Duration
		wantReserve time.Duration
	}{
		{name: "short deadline keeps a quarter", remaining: 400 * time.Millisecond, wantReserve: 100 * time.Millisecond},
		{name: "long deadline reserves the hit test budget", remaining: time.Minute, wantReserve: hitTestTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parent, cancel := context.WithTimeout(context.Background(), tt.remaining)
			defer cancel()

			ctx, cancelAction := actionContext(parent)
			defer cancelAction()

			parentDeadline, _ := parent.Deadline()
			deadline, ok := ctx.Deadline()
			require.True(t, ok)
			assert.InDelta(t, tt.wantReserve.Milliseconds(), parentDeadline.Sub(deadline).Milliseconds(), 20)
		})
	}
}

func TestSelect(t *testing.T) {
	page := fakebrowser.NewPage("https://example.com", "Example")
	ex := newTestExecutor()

	tests := []struct {
		name     string
		option   string
		wantCode string
	}{
		{name: "known option", option: "Blue"},
		{name: "missing option", option: "Purple", wantCode: apperr.CodeActionFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel := page.Main().AddElement(entity.ElementInfo{Tag: "select", Role: "combobox", Name: "Colour", Visible: true, Enabled: true}).
				WithOptions("Red", "Blue")

			err := ex.Perform(context.Background(), sel, entity.InteractionRequest{
				Kind:   entity.InteractionSelect,
				Select: entity.SelectOptions{Option: tt.option},
			})

			if tt.wantCode == "" {
				require.NoError(t, err)
				assert.Equal(t, []string{tt.option}, sel.Selected)

				return
			}

			require.Error(t, err)
			assert.Equal(t, tt.wantCode, apperr.CodeOf(err))
			assert.Empty(t, sel.Selected)
		})
	}
}

func TestScrollTo(t *testing.T) {
	page := fakebrowser.NewPage("https://example.com", "Example")
	btn := newButton(page, nil)

	err := newTestExecutor().Perform(context.Background(), btn, entity.InteractionRequest{Kind: entity.InteractionScroll})
	require.NoError(t, err)
	assert.Equal(t, 1, btn.Scrolled)
}

func TestCoordinateSelect(t *testing.T) {
	page := fakebrowser.NewPage("https://example.com", "Example")
	sel := newButton(page, &entity.BoundingBox{X: 0, Y: 0, Width: 40, Height: 20}).WithOptions("Red", "Blue")

	err := newTestExecutor().PerformAtCoordinates(context.Background(), page, sel, entity.InteractionRequest{
		Kind:   entity.InteractionSelect,
		Select: entity.SelectOptions{Option: "Blue"},
	})
	require.NoError(t, err)

	assert.Equal(t, []fakebrowser.Point{{X: 20, Y: 10}}, page.Clicks())
	assert.Equal(t, []string{"Blue"}, page.Typed)
	assert.Equal(t, []string{"Enter"}, page.Pressed)
}

func TestCoordinateScroll(t *testing.T) {
	page := fakebrowser.NewPage("https://example.com", "Example")
	ex := newTestExecutor()

	visible := newButton(page, &entity.BoundingBox{X: 0, Y: 900, Width: 10, Height: 10})
	require.NoError(t, ex.CoordinateScroll(context.Background(), visible))
	assert.Equal(t, 1, visible.Scrolled)

	hidden := newButton(page, nil)
	err := ex.CoordinateScroll(context.Background(), hidden)
	require.Error(t, err)
	assert.Equal(t, apperr.CodeActionFailed, apperr.CodeOf(err))
	assert.Empty(t, page.Clicks())
}

func TestPerform_UnknownKind(t *testing.T) {
	page := fakebrowser.NewPage("https://example.com", "Example")
	btn := newButton(page, nil)

	err := newTestExecutor().Perform(context.Background(), btn, entity.InteractionRequest{Kind: "drag"})
	require.Error(t, err)
	assert.Equal(t, apperr.CodeInvalidArgument, apperr.CodeOf(err))
}
