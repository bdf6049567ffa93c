package browser

import (
	"browser-agent/internal/entity"
	"browser-agent/internal/ports"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
)

// minActionTimeoutMs keeps driver calls from being issued with a zero
// timeout, which playwright reads as "no timeout".
const minActionTimeoutMs = 1

// page adapts a playwright page to ports.Page. Frame wrappers are cached so
// ParentFrame values compare equal to entries returned by Frames.
type page struct {
	pw      playwright.Page
	timeout float64

	mu     sync.Mutex
	frames map[playwright.Frame]*frame
}

func newPage(pw playwright.Page, timeoutMs float64) *page {
	return &page{
		pw:      pw,
		timeout: timeoutMs,
		frames:  make(map[playwright.Frame]*frame),
	}
}

func (p *page) URL() string {
	return p.pw.URL()
}

func (p *page) Title(context.Context) (string, error) {
	return p.pw.Title()
}

// Frames lists the main frame first, then the remaining frames in attach
// order. Wrappers of detached frames are dropped.
func (p *page) Frames(context.Context) ([]ports.Frame, error) {
	main := p.pw.MainFrame()
	if main == nil {
		return nil, fmt.Errorf("page has no main frame")
	}

	all := p.pw.Frames()

	p.mu.Lock()
	defer p.mu.Unlock()

	live := make(map[playwright.Frame]*frame, len(all))
	out := make([]ports.Frame, 0, len(all))

	out = append(out, p.wrapLocked(main, live))

	for _, f := range all {
		if f == main || f.IsDetached() {
			continue
		}

		out = append(out, p.wrapLocked(f, live))
	}

	p.frames = live

	return out, nil
}

func (p *page) wrapLocked(pw playwright.Frame, live map[playwright.Frame]*frame) *frame {
	f, ok := p.frames[pw]
	if !ok {
		f = &frame{page: p, pw: pw}
	}

	live[pw] = f

	return f
}

func (p *page) wrap(pw playwright.Frame) *frame {
	p.mu.Lock()
	defer p.mu.Unlock()

	if f, ok := p.frames[pw]; ok {
		return f
	}

	f := &frame{page: p, pw: pw}
	p.frames[pw] = f

	return f
}

func (p *page) Mouse() ports.Mouse {
	return &mouse{pw: p.pw.Mouse()}
}

func (p *page) Keyboard() ports.Keyboard {
	return &keyboard{pw: p.pw.Keyboard()}
}

func (p *page) Scroll(ctx context.Context, req entity.ScrollRequest) (*entity.ScrollResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := p.pw.Evaluate(windowScrollScript, map[string]any{
		"dx":   req.DeltaX,
		"dy":   req.DeltaY,
		"edge": string(req.Edge),
	})
	if err != nil {
		return nil, err
	}

	return decodeScroll(raw)
}

func (p *page) Screenshot(ctx context.Context, fullPage bool) ([]byte, error) {
	timeout, err := timeoutFor(ctx, p.timeout)
	if err != nil {
		return nil, err
	}

	return p.pw.Screenshot(playwright.PageScreenshotOptions{
		FullPage: playwright.Bool(fullPage),
		Type:     playwright.ScreenshotTypePng,
		Timeout:  timeout,
	})
}

// timeoutFor converts the context deadline into a playwright timeout in
// milliseconds, falling back to def without a deadline.
func timeoutFor(ctx context.Context, def float64) (*float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		return playwright.Float(def), nil
	}

	ms := float64(time.Until(deadline).Milliseconds())
	if ms < minActionTimeoutMs {
		ms = minActionTimeoutMs
	}

	if def > 0 && ms > def {
		ms = def
	}

	return playwright.Float(ms), nil
}

type frame struct {
	page *page
	pw   playwright.Frame
}

func (f *frame) Name() string {
	return f.pw.Name()
}

func (f *frame) URL() string {
	return f.pw.URL()
}

func (f *frame) ParentFrame() ports.Frame {
	parent := f.pw.ParentFrame()
	if parent == nil {
		return nil
	}

	return f.page.wrap(parent)
}

func (f *frame) Title(context.Context) (string, error) {
	return f.pw.Title()
}

func (f *frame) Ping(context.Context) error {
	_, err := f.pw.Evaluate(pingScript)
	return err
}

func (f *frame) OwnerAttributes(context.Context) (ports.FrameOwnerAttributes, error) {
	if f.pw.ParentFrame() == nil {
		return ports.FrameOwnerAttributes{}, nil
	}

	owner, err := f.pw.FrameElement()
	if err != nil {
		return ports.FrameOwnerAttributes{}, fmt.Errorf("frame element: %w", err)
	}
	defer owner.Dispose()

	var attrs ports.FrameOwnerAttributes

	for name, dst := range map[string]*string{
		"name":       &attrs.Name,
		"aria-label": &attrs.AriaLabel,
		"title":      &attrs.Title,
	} {
		v, err := owner.GetAttribute(name)
		if err != nil {
			return ports.FrameOwnerAttributes{}, fmt.Errorf("read %s attribute: %w", name, err)
		}

		*dst = v
	}

	return attrs, nil
}

func (f *frame) CollectElements(context.Context) ([]entity.ElementInfo, error) {
	raw, err := f.pw.Evaluate(collectElementsScript)
	if err != nil {
		return nil, err
	}

	return decodeElements(raw)
}

func (f *frame) Element(ref string) ports.Element {
	return &element{
		page: f.page,
		loc:  f.pw.Locator(fmt.Sprintf(`[%s="%s"]`, refAttribute, ref)).First(),
	}
}

func (f *frame) TextContent(context.Context) (string, error) {
	raw, err := f.pw.Evaluate(textContentScript)
	if err != nil {
		return "", err
	}

	text, _ := raw.(string)

	return text, nil
}

func (f *frame) HTML(context.Context) (string, error) {
	return f.pw.Content()
}

type element struct {
	page *page
	loc  playwright.Locator
}

func (e *element) Click(ctx context.Context, opts entity.ClickOptions) error {
	timeout, err := timeoutFor(ctx, e.page.timeout)
	if err != nil {
		return err
	}

	if opts.DoubleClick {
		return e.loc.Dblclick(playwright.LocatorDblclickOptions{Timeout: timeout})
	}

	click := playwright.LocatorClickOptions{Timeout: timeout}
	if opts.RightClick {
		click.Button = playwright.MouseButtonRight
	}

	return e.loc.Click(click)
}

func (e *element) Fill(ctx context.Context, text string) error {
	timeout, err := timeoutFor(ctx, e.page.timeout)
	if err != nil {
		return err
	}

	return e.loc.Fill(text, playwright.LocatorFillOptions{Timeout: timeout})
}

func (e *element) PressSequentially(ctx context.Context, text string) error {
	timeout, err := timeoutFor(ctx, e.page.timeout)
	if err != nil {
		return err
	}

	return e.loc.PressSequentially(text, playwright.LocatorPressSequentiallyOptions{Timeout: timeout})
}

func (e *element) Clear(ctx context.Context) error {
	timeout, err := timeoutFor(ctx, e.page.timeout)
	if err != nil {
		return err
	}

	return e.loc.Clear(playwright.LocatorClearOptions{Timeout: timeout})
}

func (e *element) Press(ctx context.Context, key string) error {
	timeout, err := timeoutFor(ctx, e.page.timeout)
	if err != nil {
		return err
	}

	return e.loc.Press(key, playwright.LocatorPressOptions{Timeout: timeout})
}

func (e *element) Hover(ctx context.Context) error {
	timeout, err := timeoutFor(ctx, e.page.timeout)
	if err != nil {
		return err
	}

	return e.loc.Hover(playwright.LocatorHoverOptions{Timeout: timeout})
}

func (e *element) SelectOption(ctx context.Context, label string) ([]string, error) {
	timeout, err := timeoutFor(ctx, e.page.timeout)
	if err != nil {
		return nil, err
	}

	return e.loc.SelectOption(
		playwright.SelectOptionValues{Labels: playwright.StringSlice(label)},
		playwright.LocatorSelectOptionOptions{Timeout: timeout},
	)
}

func (e *element) ScrollIntoView(ctx context.Context) error {
	timeout, err := timeoutFor(ctx, e.page.timeout)
	if err != nil {
		return err
	}

	return e.loc.ScrollIntoViewIfNeeded(playwright.LocatorScrollIntoViewIfNeededOptions{Timeout: timeout})
}

func (e *element) BoundingBox(ctx context.Context) (*entity.BoundingBox, error) {
	timeout, err := timeoutFor(ctx, e.page.timeout)
	if err != nil {
		return nil, err
	}

	rect, err := e.loc.BoundingBox(playwright.LocatorBoundingBoxOptions{Timeout: timeout})
	if err != nil {
		return nil, err
	}

	if rect == nil {
		return nil, nil
	}

	return &entity.BoundingBox{X: rect.X, Y: rect.Y, Width: rect.Width, Height: rect.Height}, nil
}

func (e *element) HitTest(ctx context.Context) (*ports.HitTestResult, error) {
	timeout, err := timeoutFor(ctx, e.page.timeout)
	if err != nil {
		return nil, err
	}

	raw, err := e.loc.Evaluate(hitTestScript, nil, playwright.LocatorEvaluateOptions{Timeout: timeout})
	if err != nil {
		return nil, err
	}

	return decodeHitTest(raw), nil
}

type mouse struct {
	pw playwright.Mouse
}

func (m *mouse) Click(ctx context.Context, x, y float64, opts entity.ClickOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	click := playwright.MouseClickOptions{}
	if opts.RightClick {
		click.Button = playwright.MouseButtonRight
	}

	if opts.DoubleClick {
		click.ClickCount = playwright.Int(2)
	}

	return m.pw.Click(x, y, click)
}

func (m *mouse) Move(ctx context.Context, x, y float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return m.pw.Move(x, y)
}

type keyboard struct {
	pw playwright.Keyboard
}

func (k *keyboard) Type(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return k.pw.Type(text)
}

func (k *keyboard) Press(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return k.pw.Press(key)
}

// decodeElements converts the collect script result through its JSON form,
// whose keys match entity.ElementInfo.
func decodeElements(raw any) ([]entity.ElementInfo, error) {
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("encode collected elements: %w", err)
	}

	var elements []entity.ElementInfo
	if err := json.Unmarshal(data, &elements); err != nil {
		return nil, fmt.Errorf("decode collected elements: %w", err)
	}

	return elements, nil
}

func decodeScroll(raw any) (*entity.ScrollResult, error) {
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("encode scroll result: %w", err)
	}

	var res entity.ScrollResult
	if err := json.Unmarshal(data, &struct {
		From *entity.ScrollPosition `json:"from"`
		To   *entity.ScrollPosition `json:"to"`
	}{From: &res.From, To: &res.To}); err != nil {
		return nil, fmt.Errorf("decode scroll result: %w", err)
	}

	return &res, nil
}

func decodeHitTest(raw any) *ports.HitTestResult {
	m, ok := raw.(map[string]interface{})
	if !ok || !getBool(m, "covered") {
		return &ports.HitTestResult{}
	}

	res := &ports.HitTestResult{
		Covered:     true,
		CoveringTag: getString(m, "tag"),
		CoveringSrc: getString(m, "src"),
	}

	if owner, ok := m["frame"].(map[string]interface{}); ok {
		res.CoveringFrame = &ports.FrameOwnerAttributes{
			Name:      getString(owner, "name"),
			AriaLabel: getString(owner, "aria_label"),
			Title:     getString(owner, "title"),
		}
	}

	return res
}

func getString(m map[string]interface{}, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}

	return ""
}

func getBool(m map[string]interface{}, key string) bool {
	if v, ok := m[key].(bool); ok {
		return v
	}

	return false
}
