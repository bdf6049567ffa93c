package entity

// FrameContext is an immutable description of one frame taken from a single
// registry snapshot. Index 0 is always the main frame.
type FrameContext struct {
	Name        string `json:"name"`
	Index       int    `json:"index"`
	SourceURL   string `json:"src,omitempty"`
	AriaLabel   string `json:"aria_label,omitempty"`
	Title       string `json:"title,omitempty"`
	Accessible  bool   `json:"accessible"`
	ParentIndex *int   `json:"parent_index"`
	Depth       int    `json:"depth"`
}

func (f FrameContext) IsMain() bool {
	return f.ParentIndex == nil
}

// Label is the most descriptive identifier available for logs and prompts.
func (f FrameContext) Label() string {
	switch {
	case f.AriaLabel != "":
		return f.AriaLabel
	case f.Title != "":
		return f.Title
	case f.Name != "":
		return f.Name
	default:
		return ""
	}
}

type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (b BoundingBox) Center() (float64, float64) {
	return b.X + b.Width/2, b.Y + b.Height/2
}

func (b BoundingBox) Empty() bool {
	return b.Width <= 0 || b.Height <= 0
}
