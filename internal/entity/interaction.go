package entity

type InteractionKind string

const (
	InteractionClick  InteractionKind = "click"
	InteractionType   InteractionKind = "type"
	InteractionHover  InteractionKind = "hover"
	InteractionSelect InteractionKind = "select"
	InteractionScroll InteractionKind = "scroll"
)

// Mutating reports whether the interaction can change page state. Mutating
// interactions are checked again once the target element is resolved.
func (k InteractionKind) Mutating() bool {
	switch k {
	case InteractionClick, InteractionType, InteractionSelect:
		return true
	default:
		return false
	}
}

type ClickOptions struct {
	DoubleClick bool `json:"double_click,omitempty"`
	RightClick  bool `json:"right_click,omitempty"`
}

type TypeOptions struct {
	Text       string `json:"text"`
	ClearFirst bool   `json:"clear_first"`
	PressEnter bool   `json:"press_enter,omitempty"`
}

// SelectOptions picks a <select> option by its visible label.
type SelectOptions struct {
	Option string `json:"option"`
}

type InteractionRequest struct {
	Kind           InteractionKind
	Description    string
	Role           string
	Click          ClickOptions
	Type           TypeOptions
	Select         SelectOptions
	ElementContext map[string]string
	WaitForFrames  bool
	ExpectedFrames *int
}

type ElementSummary struct {
	Tag  string `json:"tag,omitempty"`
	Role string `json:"role,omitempty"`
	Text string `json:"text,omitempty"`
}

type ResultData struct {
	RetryChain *ChainReport `json:"retry_chain,omitempty"`
}

// InteractionResult is returned to the orchestrator for every interaction
// call, successful or not.
type InteractionResult struct {
	InteractionID string          `json:"interaction_id"`
	Success       bool            `json:"success"`
	Action        string          `json:"action,omitempty"`
	Element       string          `json:"element,omitempty"`
	ElementInfo   *ElementSummary `json:"element_info,omitempty"`
	FrameContext  *FrameContext   `json:"frame_context,omitempty"`
	RetryChain    *ChainReport    `json:"retry_chain,omitempty"`
	Security      *SecurityCheck  `json:"security,omitempty"`
	Error         string          `json:"error,omitempty"`
	ErrorCode     string          `json:"error_code,omitempty"`
	Suggestion    string          `json:"suggestion,omitempty"`
	Data          *ResultData     `json:"data,omitempty"`
}

type FrameListing struct {
	Frames       []FrameContext `json:"frames"`
	Total        int            `json:"total"`
	Inaccessible int            `json:"inaccessible"`
	DepthSkipped int            `json:"depth_skipped"`
}

type FrameContentKind string

const (
	FrameContentText FrameContentKind = "text"
	FrameContentHTML FrameContentKind = "html"
	FrameContentBoth FrameContentKind = "both"
)

type FrameContent struct {
	FrameContext FrameContext     `json:"frame_context"`
	ContentType  FrameContentKind `json:"content_type"`
	Content      string           `json:"content,omitempty"`
	Text         string           `json:"text,omitempty"`
	HTML         string           `json:"html,omitempty"`
}

type PageInfo struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

type HistoryAction string

const (
	HistoryBack    HistoryAction = "back"
	HistoryForward HistoryAction = "forward"
	HistoryReload  HistoryAction = "reload"
)

type ScrollEdge string

const (
	ScrollEdgeTop    ScrollEdge = "top"
	ScrollEdgeBottom ScrollEdge = "bottom"
)

// ScrollRequest scrolls the main window by (DeltaX, DeltaY) pixels, or to
// Edge when set.
type ScrollRequest struct {
	DeltaX float64    `json:"dx"`
	DeltaY float64    `json:"dy"`
	Edge   ScrollEdge `json:"edge,omitempty"`
}

type ScrollPosition struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type ScrollResult struct {
	From ScrollPosition `json:"scroll_from"`
	To   ScrollPosition `json:"scroll_to"`
}

// FrameElements is the candidate list collected from one frame.
type FrameElements struct {
	FrameContext FrameContext  `json:"frame_context"`
	Elements     []ElementInfo `json:"elements"`
}

type ElementListing struct {
	Frames []FrameElements `json:"frames"`
	Total  int             `json:"total"`
	// Truncated is set when the limit cut the listing short.
	Truncated bool `json:"truncated,omitempty"`
}

type Screenshot struct {
	URL      string `json:"url"`
	MimeType string `json:"mime_type"`
	FullPage bool   `json:"full_page"`
	Data     []byte `json:"-"`
}
