package ports

import (
	"browser-agent/internal/entity"
	"context"
)

// Page is the single shared browser page every interaction runs against.
// Frames returns the page's frame list with the main frame first; the
// ParentFrame values of one call compare equal to entries of the same call.
type Page interface {
	URL() string
	Title(ctx context.Context) (string, error)
	Frames(ctx context.Context) ([]Frame, error)
	Mouse() Mouse
	Keyboard() Keyboard
	// Scroll moves the main window and reports where it started and ended.
	Scroll(ctx context.Context, req entity.ScrollRequest) (*entity.ScrollResult, error)
	// Screenshot returns a PNG of the viewport, or of the whole page.
	Screenshot(ctx context.Context, fullPage bool) ([]byte, error)
}

type Frame interface {
	Name() string
	URL() string
	ParentFrame() Frame
	// Title reads the frame document title; it fails for cross-origin frames.
	Title(ctx context.Context) (string, error)
	// Ping evaluates a trivial script; it fails when the frame is not readable.
	Ping(ctx context.Context) error
	// OwnerAttributes reads attributes of the <iframe> element hosting the
	// frame. The main frame returns zero values.
	OwnerAttributes(ctx context.Context) (FrameOwnerAttributes, error)
	CollectElements(ctx context.Context) ([]entity.ElementInfo, error)
	Element(ref string) Element
	TextContent(ctx context.Context) (string, error)
	HTML(ctx context.Context) (string, error)
}

type FrameOwnerAttributes struct {
	Name      string
	AriaLabel string
	Title     string
}

type Element interface {
	Click(ctx context.Context, opts entity.ClickOptions) error
	Fill(ctx context.Context, text string) error
	// PressSequentially types text key by key without clearing the value.
	PressSequentially(ctx context.Context, text string) error
	Clear(ctx context.Context) error
	Press(ctx context.Context, key string) error
	Hover(ctx context.Context) error
	// SelectOption picks the <select> option with the given label and
	// returns the selected values.
	SelectOption(ctx context.Context, label string) ([]string, error)
	ScrollIntoView(ctx context.Context) error
	// BoundingBox is in main-page coordinates; nil when the element is not
	// rendered.
	BoundingBox(ctx context.Context) (*entity.BoundingBox, error)
	// HitTest reports what receives a pointer event at the element centre.
	HitTest(ctx context.Context) (*HitTestResult, error)
}

type HitTestResult struct {
	Covered       bool
	CoveringTag   string
	CoveringFrame *FrameOwnerAttributes
	CoveringSrc   string
}

type Mouse interface {
	Click(ctx context.Context, x, y float64, opts entity.ClickOptions) error
	Move(ctx context.Context, x, y float64) error
}

type Keyboard interface {
	Type(ctx context.Context, text string) error
	Press(ctx context.Context, key string) error
}

type BrowserManager interface {
	Launch(ctx context.Context) error
	Close(ctx context.Context) error
	Navigate(ctx context.Context, url string) error
	History(ctx context.Context, action entity.HistoryAction) error
	Page(ctx context.Context) (Page, error)
	IsReady() bool
}

// Confirmer is the human-facing confirmation collaborator. Denied and
// Cancelled are final for the action.
type Confirmer interface {
	Confirm(ctx context.Context, req entity.ConfirmationRequest) (entity.ConfirmationResult, error)
}

type InteractionService interface {
	Interact(ctx context.Context, page Page, req entity.InteractionRequest) (*entity.InteractionResult, error)
	Execute(ctx context.Context, req entity.InteractionRequest) (*entity.InteractionResult, error)
	Click(ctx context.Context, description, role string, opts entity.ClickOptions) (*entity.InteractionResult, error)
	TypeText(ctx context.Context, description string, opts entity.TypeOptions) (*entity.InteractionResult, error)
	Hover(ctx context.Context, description, role string) (*entity.InteractionResult, error)
	SelectOption(ctx context.Context, description, option string) (*entity.InteractionResult, error)
	ScrollTo(ctx context.Context, description string) (*entity.InteractionResult, error)
	ScrollPage(ctx context.Context, req entity.ScrollRequest) (*entity.ScrollResult, error)
	ListFrames(ctx context.Context, includeInaccessible bool) (*entity.FrameListing, error)
	FrameContent(ctx context.Context, identifier string, kind entity.FrameContentKind, maxLength int) (*entity.FrameContent, error)
	CheckAction(ctx context.Context, description string, elementContext map[string]string) (*entity.SecurityCheck, error)
	Navigate(ctx context.Context, url string) (*entity.PageInfo, error)
	History(ctx context.Context, action entity.HistoryAction) (*entity.PageInfo, error)
	FindElements(ctx context.Context, query string, includeHidden bool, limit int) (*entity.ElementListing, error)
	Screenshot(ctx context.Context, fullPage bool) (*entity.Screenshot, error)
}
