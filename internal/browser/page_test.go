package browser

import (
	"browser-agent/internal/entity"
	"browser-agent/internal/ports"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeoutFor(t *testing.T) {
	timeout, err := timeoutFor(context.Background(), 30000)
	require.NoError(t, err)
	assert.Equal(t, 30000.0, *timeout)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	timeout, err = timeoutFor(ctx, 30000)
	require.NoError(t, err)
	assert.LessOrEqual(t, *timeout, 2000.0)
	assert.Greater(t, *timeout, 1000.0)

	timeout, err = timeoutFor(ctx, 500)
	require.NoError(t, err)
	assert.Equal(t, 500.0, *timeout)

	cancel()

	_, err = timeoutFor(ctx, 30000)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDecodeElements(t *testing.T) {
	raw := []interface{}{
		map[string]interface{}{
			"ref":          "e1",
			"tag":          "button",
			"role":         "button",
			"name":         "Search",
			"text":         "Search",
			"visible":      true,
			"enabled":      true,
			"bounding_box": map[string]interface{}{"x": 10.0, "y": 20.0, "width": 80.0, "height": 24.0},
		},
		map[string]interface{}{
			"ref":          "e2",
			"tag":          "input",
			"input_type":   "password",
			"placeholder":  "Password",
			"visible":      false,
			"enabled":      true,
			"bounding_box": nil,
		},
	}

	elements, err := decodeElements(raw)
	require.NoError(t, err)
	require.Len(t, elements, 2)

	assert.Equal(t, entity.ElementInfo{
		Ref:         "e1",
		Tag:         "button",
		Role:        "button",
		Name:        "Search",
		Text:        "Search",
		Visible:     true,
		Enabled:     true,
		BoundingBox: &entity.BoundingBox{X: 10, Y: 20, Width: 80, Height: 24},
	}, elements[0])

	assert.Equal(t, "password", elements[1].InputType)
	assert.Nil(t, elements[1].BoundingBox)
	assert.False(t, elements[1].Interactable())
}

func TestDecodeElements_Unexpected(t *testing.T) {
	_, err := decodeElements("not a list")
	assert.Error(t, err)
}

func TestDecodeHitTest(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want *ports.HitTestResult
	}{
		{
			name: "not covered",
			raw:  map[string]interface{}{"covered": false},
			want: &ports.HitTestResult{},
		},
		{
			name: "garbage",
			raw:  "oops",
			want: &ports.HitTestResult{},
		},
		{
			name: "covered by div",
			raw:  map[string]interface{}{"covered": true, "tag": "div"},
			want: &ports.HitTestResult{Covered: true, CoveringTag: "div"},
		},
		{
			name: "covered by iframe",
			raw: map[string]interface{}{
				"covered": true,
				"tag":     "iframe",
				"src":     "https://chat.example.com",
				"frame":   map[string]interface{}{"name": "chat", "aria_label": "Chat", "title": ""},
			},
			want: &ports.HitTestResult{
				Covered:       true,
				CoveringTag:   "iframe",
				CoveringSrc:   "https://chat.example.com",
				CoveringFrame: &ports.FrameOwnerAttributes{Name: "chat", AriaLabel: "Chat"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, decodeHitTest(tt.raw))
		})
	}
}
