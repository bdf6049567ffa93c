// Package fakebrowser is an in-memory implementation of the browser driver
// ports. It models a frame tree, cross-origin frames, per-frame element
// lists and scripted interaction failures.
package fakebrowser

import (
	"browser-agent/internal/entity"
	"browser-agent/internal/ports"
	"context"
	"errors"
	"fmt"
	"sync"
)

var (
	ErrCrossOrigin = errors.New("Blocked a frame with origin from accessing a cross-origin frame")
	ErrDetached    = errors.New("element is not attached to the DOM")
)

// ErrIntercepted mimics the driver message for a click swallowed by an overlay.
var ErrIntercepted = errors.New(`<div class="modal-backdrop"></div> intercepts pointer events`)

type Point struct {
	X, Y float64
}

type Page struct {
	mu sync.Mutex

	url   string
	title string

	frames      []*Frame
	framesCalls int
	FramesErr   error

	MouseErr    error
	MouseClicks []Point
	MouseMoves  []Point
	Typed       []string
	Pressed     []string

	// Offset is the window scroll position; ScrollHeight bounds it.
	Offset       entity.ScrollPosition
	ScrollHeight float64
	ScrollErr    error

	ScreenshotErr error
	Shots         []bool

	mouse    *mouse
	keyboard *keyboard
}

func NewPage(url, title string) *Page {
	p := &Page{url: url, title: title}
	p.mouse = &mouse{page: p}
	p.keyboard = &keyboard{page: p}
	p.frames = []*Frame{{page: p, url: url, docTitle: title}}

	return p
}

func (p *Page) Main() *Frame {
	return p.frames[0]
}

// AddFrame attaches a child frame under parent. The owner name defaults to
// the frame name.
func (p *Page) AddFrame(parent *Frame, name, url string) *Frame {
	p.mu.Lock()
	defer p.mu.Unlock()

	f := &Frame{
		page:   p,
		name:   name,
		url:    url,
		parent: parent,
		owner:  ports.FrameOwnerAttributes{Name: name},
	}
	p.frames = append(p.frames, f)

	return f
}

func (p *Page) URL() string {
	return p.url
}

func (p *Page) SetURL(url string) {
	p.url = url
}

func (p *Page) Title(_ context.Context) (string, error) {
	return p.title, nil
}

func (p *Page) Frames(_ context.Context) ([]ports.Frame, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.framesCalls++

	if p.FramesErr != nil {
		return nil, p.FramesErr
	}

	out := make([]ports.Frame, 0, len(p.frames))
	for _, f := range p.frames {
		if f.appearAfter >= p.framesCalls {
			continue
		}

		out = append(out, f)
	}

	return out, nil
}

func (p *Page) FramesCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.framesCalls
}

func (p *Page) Mouse() ports.Mouse {
	return p.mouse
}

func (p *Page) Keyboard() ports.Keyboard {
	return p.keyboard
}

// Scroll moves the window offset, clamped to [0, ScrollHeight] vertically
// and to non-negative values horizontally.
func (p *Page) Scroll(ctx context.Context, req entity.ScrollRequest) (*entity.ScrollResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ScrollErr != nil {
		return nil, p.ScrollErr
	}

	from := p.Offset
	to := from

	switch req.Edge {
	case entity.ScrollEdgeTop:
		to.Y = 0
	case entity.ScrollEdgeBottom:
		to.Y = p.ScrollHeight
	default:
		to.X = max(0, from.X+req.DeltaX)
		to.Y = min(max(0, from.Y+req.DeltaY), p.ScrollHeight)
	}

	p.Offset = to

	return &entity.ScrollResult{From: from, To: to}, nil
}

// PNGHeader is what Screenshot returns.
var PNGHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func (p *Page) Screenshot(ctx context.Context, fullPage bool) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ScreenshotErr != nil {
		return nil, p.ScreenshotErr
	}

	p.Shots = append(p.Shots, fullPage)

	return append([]byte(nil), PNGHeader...), nil
}

func (p *Page) Clicks() []Point {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]Point(nil), p.MouseClicks...)
}

type mouse struct {
	page *Page
}

func (m *mouse) Click(_ context.Context, x, y float64, _ entity.ClickOptions) error {
	m.page.mu.Lock()
	defer m.page.mu.Unlock()

	if m.page.MouseErr != nil {
		return m.page.MouseErr
	}

	m.page.MouseClicks = append(m.page.MouseClicks, Point{X: x, Y: y})

	return nil
}

func (m *mouse) Move(_ context.Context, x, y float64) error {
	m.page.mu.Lock()
	defer m.page.mu.Unlock()

	m.page.MouseMoves = append(m.page.MouseMoves, Point{X: x, Y: y})

	return nil
}

type keyboard struct {
	page *Page
}

func (k *keyboard) Type(_ context.Context, text string) error {
	k.page.mu.Lock()
	defer k.page.mu.Unlock()

	k.page.Typed = append(k.page.Typed, text)

	return nil
}

func (k *keyboard) Press(_ context.Context, key string) error {
	k.page.mu.Lock()
	defer k.page.mu.Unlock()

	k.page.Pressed = append(k.page.Pressed, key)

	return nil
}

type Frame struct {
	page   *Page
	name   string
	url    string
	parent *Frame
	owner  ports.FrameOwnerAttributes

	docTitle    string
	crossOrigin bool
	appearAfter int

	elements []*Element
	text     string
	html     string
	visits   int
}

func (f *Frame) WithOwner(owner ports.FrameOwnerAttributes) *Frame {
	f.owner = owner
	return f
}

func (f *Frame) WithDocTitle(title string) *Frame {
	f.docTitle = title
	return f
}

func (f *Frame) CrossOrigin() *Frame {
	f.crossOrigin = true
	return f
}

// AppearAfter hides the frame from the first n Frames calls.
func (f *Frame) AppearAfter(n int) *Frame {
	f.appearAfter = n
	return f
}

func (f *Frame) WithContent(text, html string) *Frame {
	f.text = text
	f.html = html

	return f
}

// AddElement appends an element in document order and assigns its ref.
func (f *Frame) AddElement(info entity.ElementInfo) *Element {
	f.page.mu.Lock()
	defer f.page.mu.Unlock()

	if info.Ref == "" {
		info.Ref = fmt.Sprintf("e%d", len(f.elements)+1)
	}

	el := &Element{frame: f, Info: info}
	f.elements = append(f.elements, el)

	return el
}

// Visits counts reads of the frame's title, owner attributes or document.
func (f *Frame) Visits() int {
	f.page.mu.Lock()
	defer f.page.mu.Unlock()

	return f.visits
}

func (f *Frame) visit() {
	f.page.mu.Lock()
	defer f.page.mu.Unlock()

	f.visits++
}

func (f *Frame) Name() string {
	return f.name
}

func (f *Frame) URL() string {
	return f.url
}

func (f *Frame) ParentFrame() ports.Frame {
	if f.parent == nil {
		return nil
	}

	return f.parent
}

func (f *Frame) Title(_ context.Context) (string, error) {
	f.visit()

	if f.crossOrigin {
		return "", ErrCrossOrigin
	}

	return f.docTitle, nil
}

func (f *Frame) Ping(_ context.Context) error {
	f.visit()

	if f.crossOrigin {
		return ErrCrossOrigin
	}

	return nil
}

func (f *Frame) OwnerAttributes(_ context.Context) (ports.FrameOwnerAttributes, error) {
	f.visit()

	if f.parent == nil {
		return ports.FrameOwnerAttributes{}, nil
	}

	return f.owner, nil
}

func (f *Frame) CollectElements(_ context.Context) ([]entity.ElementInfo, error) {
	f.visit()

	if f.crossOrigin {
		return nil, ErrCrossOrigin
	}

	f.page.mu.Lock()
	defer f.page.mu.Unlock()

	out := make([]entity.ElementInfo, 0, len(f.elements))
	for _, el := range f.elements {
		out = append(out, el.Info)
	}

	return out, nil
}

func (f *Frame) Element(ref string) ports.Element {
	f.page.mu.Lock()
	defer f.page.mu.Unlock()

	for _, el := range f.elements {
		if el.Info.Ref == ref {
			return el
		}
	}

	return &Element{frame: f, Info: entity.ElementInfo{Ref: ref}, detached: true}
}

func (f *Frame) TextContent(_ context.Context) (string, error) {
	if f.crossOrigin {
		return "", ErrCrossOrigin
	}

	return f.text, nil
}

func (f *Frame) HTML(_ context.Context) (string, error) {
	if f.crossOrigin {
		return "", ErrCrossOrigin
	}

	return f.html, nil
}

type Element struct {
	frame    *Frame
	Info     entity.ElementInfo
	detached bool

	ClickErr error
	FillErr  error
	Hang     bool
	Hit      *ports.HitTestResult

	Clicks   []entity.ClickOptions
	Filled   []string
	Appended []string
	Cleared  int
	Pressed  []string
	Hovered  int
	Scrolled int

	// Options are the labels of a <select>; Selected records picks.
	Options  []string
	Selected []string
}

func (e *Element) FailClick(err error) *Element {
	e.ClickErr = err
	return e
}

func (e *Element) HangOnAction() *Element {
	e.Hang = true
	return e
}

func (e *Element) CoveredBy(hit *ports.HitTestResult) *Element {
	e.Hit = hit
	return e
}

func (e *Element) WithOptions(labels ...string) *Element {
	e.Options = labels
	return e
}

func (e *Element) ClickCount() int {
	e.frame.page.mu.Lock()
	defer e.frame.page.mu.Unlock()

	return len(e.Clicks)
}

func (e *Element) before(ctx context.Context) error {
	if e.detached {
		return ErrDetached
	}

	if e.Hang {
		<-ctx.Done()
		return ctx.Err()
	}

	return nil
}

func (e *Element) Click(ctx context.Context, opts entity.ClickOptions) error {
	if err := e.before(ctx); err != nil {
		return err
	}

	if e.ClickErr != nil {
		return e.ClickErr
	}

	e.frame.page.mu.Lock()
	defer e.frame.page.mu.Unlock()

	e.Clicks = append(e.Clicks, opts)

	return nil
}

func (e *Element) Fill(ctx context.Context, text string) error {
	if err := e.before(ctx); err != nil {
		return err
	}

	if e.FillErr != nil {
		return e.FillErr
	}

	e.frame.page.mu.Lock()
	defer e.frame.page.mu.Unlock()

	e.Filled = append(e.Filled, text)

	return nil
}

func (e *Element) PressSequentially(ctx context.Context, text string) error {
	if err := e.before(ctx); err != nil {
		return err
	}

	if e.FillErr != nil {
		return e.FillErr
	}

	e.frame.page.mu.Lock()
	defer e.frame.page.mu.Unlock()

	e.Appended = append(e.Appended, text)

	return nil
}

func (e *Element) Clear(ctx context.Context) error {
	if err := e.before(ctx); err != nil {
		return err
	}

	e.frame.page.mu.Lock()
	defer e.frame.page.mu.Unlock()

	e.Cleared++

	return nil
}

func (e *Element) Press(ctx context.Context, key string) error {
	if err := e.before(ctx); err != nil {
		return err
	}

	e.frame.page.mu.Lock()
	defer e.frame.page.mu.Unlock()

	e.Pressed = append(e.Pressed, key)

	return nil
}

func (e *Element) Hover(ctx context.Context) error {
	if err := e.before(ctx); err != nil {
		return err
	}

	if e.ClickErr != nil {
		return e.ClickErr
	}

	e.frame.page.mu.Lock()
	defer e.frame.page.mu.Unlock()

	e.Hovered++

	return nil
}

func (e *Element) SelectOption(ctx context.Context, label string) ([]string, error) {
	if err := e.before(ctx); err != nil {
		return nil, err
	}

	if e.ClickErr != nil {
		return nil, e.ClickErr
	}

	e.frame.page.mu.Lock()
	defer e.frame.page.mu.Unlock()

	for i, opt := range e.Options {
		if opt == label {
			e.Selected = append(e.Selected, label)
			return []string{fmt.Sprintf("opt%d", i)}, nil
		}
	}

	return nil, fmt.Errorf("did not find some options: %q", label)
}

func (e *Element) SelectedCount() int {
	e.frame.page.mu.Lock()
	defer e.frame.page.mu.Unlock()

	return len(e.Selected)
}

func (e *Element) ScrollIntoView(_ context.Context) error {
	if e.detached {
		return ErrDetached
	}

	e.frame.page.mu.Lock()
	defer e.frame.page.mu.Unlock()

	e.Scrolled++

	return nil
}

func (e *Element) BoundingBox(_ context.Context) (*entity.BoundingBox, error) {
	if e.detached {
		return nil, ErrDetached
	}

	if e.Info.BoundingBox == nil {
		return nil, nil
	}

	box := *e.Info.BoundingBox

	return &box, nil
}

func (e *Element) HitTest(_ context.Context) (*ports.HitTestResult, error) {
	if e.detached {
		return nil, ErrDetached
	}

	if e.Hit == nil {
		return &ports.HitTestResult{}, nil
	}

	return e.Hit, nil
}
