package console

import (
	"browser-agent/internal/config"
	"browser-agent/internal/entity"
	"browser-agent/internal/usecase"
	"browser-agent/pkg/logg"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

var errExit = errors.New("exit")

// scrollStep is the distance "scroll up" and "scroll down" move the page.
const scrollStep = 600

type Interface struct {
	config   *config.Config
	logger   *zap.Logger
	usecase  *usecase.Service
	term     *Terminal
	ctx      context.Context
	cancel   context.CancelFunc
	stopping atomic.Bool
}

type Params struct {
	fx.In

	Config   *config.Config
	Logger   *zap.Logger
	Usecase  *usecase.Service
	Terminal *Terminal
}

func NewInterface(params Params) *Interface {
	ctx, cancel := context.WithCancel(context.Background())

	return &Interface{
		config:  params.Config,
		logger:  params.Logger.With(zap.String(logg.Layer, "Console")),
		usecase: params.Usecase,
		term:    params.Terminal,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start runs the read-eval loop until exit, end of input or Stop.
func (i *Interface) Start() error {
	i.printBanner()
	i.printHelp()

	for !i.stopping.Load() {
		i.term.Printf("\n> ")

		line, err := i.term.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				i.term.Println()
				return nil
			}

			return err
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		if err := i.handleCommand(input); err != nil {
			if errors.Is(err, errExit) {
				return nil
			}

			i.logger.Error("Command error", zap.Error(err))
			i.term.Printf("Error: %v\n", err)
		}
	}

	return nil
}

func (i *Interface) Stop() error {
	if i.stopping.Swap(true) {
		return nil
	}

	i.logger.Info("Stopping console interface...")
	i.cancel()

	return nil
}

func (i *Interface) handleCommand(input string) error {
	cmd, err := parseCommand(input)
	if err != nil {
		return err
	}

	service := i.usecase.Interaction

	switch cmd.name {
	case "help":
		i.printHelp()
	case "exit":
		i.term.Println("Shutting down...")
		return errExit
	case "goto":
		info, err := service.Navigate(i.ctx, cmd.arg)
		if err != nil {
			return err
		}

		i.term.Printf("%s\n%s\n", info.Title, dimStyle.Render(info.URL))
	case "click":
		return i.printResult(service.Click(i.ctx, cmd.arg, "", entity.ClickOptions{}))
	case "type":
		return i.printResult(service.TypeText(i.ctx, cmd.arg, entity.TypeOptions{Text: cmd.text, ClearFirst: true}))
	case "hover":
		return i.printResult(service.Hover(i.ctx, cmd.arg, ""))
	case "select":
		return i.printResult(service.SelectOption(i.ctx, cmd.arg, cmd.text))
	case "scroll":
		if cmd.arg != "" {
			return i.printResult(service.ScrollTo(i.ctx, cmd.arg))
		}

		moved, err := service.ScrollPage(i.ctx, cmd.scroll)
		if err != nil {
			return err
		}

		i.term.Println(renderScroll(moved))
	case "back", "forward", "reload":
		info, err := service.History(i.ctx, entity.HistoryAction(cmd.name))
		if err != nil {
			return err
		}

		i.term.Printf("%s\n%s\n", info.Title, dimStyle.Render(info.URL))
	case "elements":
		listing, err := service.FindElements(i.ctx, cmd.arg, false, 0)
		if err != nil {
			return err
		}

		i.term.Println(renderElements(listing))
	case "screenshot":
		shot, err := service.Screenshot(i.ctx, cmd.full)
		if err != nil {
			return err
		}

		if err := os.WriteFile(cmd.arg, shot.Data, 0o644); err != nil {
			return fmt.Errorf("save screenshot: %w", err)
		}

		i.term.Printf("Saved %d bytes to %s\n", len(shot.Data), cmd.arg)
	case "frames":
		listing, err := service.ListFrames(i.ctx, true)
		if err != nil {
			return err
		}

		i.term.Println(renderFrames(listing))
	case "content":
		content, err := service.FrameContent(i.ctx, cmd.arg, cmd.kind, 0)
		if err != nil {
			return err
		}

		i.printContent(content)
	case "check":
		check, err := service.CheckAction(i.ctx, cmd.arg, nil)
		if err != nil {
			return err
		}

		i.term.Println(renderCheck(check))
	}

	return nil
}

func (i *Interface) printResult(result *entity.InteractionResult, err error) error {
	if err != nil {
		return err
	}

	i.term.Println(renderResult(result))

	return nil
}

func (i *Interface) printContent(content *entity.FrameContent) {
	i.term.Println(titleStyle.Render(fmt.Sprintf("frame %d %s", content.FrameContext.Index, content.FrameContext.Label())))

	if content.Content != "" {
		i.term.Println(content.Content)
		return
	}

	i.term.Println(content.Text)
	i.term.Println(dimStyle.Render("--- html ---"))
	i.term.Println(content.HTML)
}

type command struct {
	name   string
	arg    string
	text   string
	kind   entity.FrameContentKind
	scroll entity.ScrollRequest
	full   bool
}

// parseCommand splits one REPL line. "type" and "select" separate the
// element description from the text with "=>"; "content" takes an optional
// trailing kind after the frame identifier.
func parseCommand(input string) (command, error) {
	name, rest, _ := strings.Cut(strings.TrimSpace(input), " ")
	name = strings.ToLower(name)
	rest = strings.TrimSpace(rest)

	switch name {
	case "help", "h":
		return command{name: "help"}, nil
	case "exit", "quit", "q":
		return command{name: "exit"}, nil
	case "frames", "back", "forward", "reload":
		return command{name: name}, nil
	case "elements", "find":
		return command{name: "elements", arg: rest}, nil
	case "goto", "click", "hover", "check":
		if rest == "" {
			return command{}, fmt.Errorf("usage: %s <%s>", name, argName(name))
		}

		return command{name: name, arg: rest}, nil
	case "type", "select":
		desc, text, ok := strings.Cut(rest, "=>")
		desc, text = strings.TrimSpace(desc), strings.TrimSpace(text)

		if !ok || desc == "" || text == "" {
			return command{}, fmt.Errorf("usage: %s <description> => <%s>", name, argName(name))
		}

		return command{name: name, arg: desc, text: text}, nil
	case "scroll":
		return parseScroll(rest)
	case "screenshot":
		fields := strings.Fields(rest)
		cmd := command{name: name, arg: "screenshot.png"}

		if n := len(fields); n > 0 && strings.EqualFold(fields[n-1], "full") {
			cmd.full = true
			fields = fields[:n-1]
		}

		if len(fields) > 0 {
			cmd.arg = strings.Join(fields, " ")
		}

		return cmd, nil
	case "content":
		cmd := command{name: name, arg: "main", kind: entity.FrameContentText}

		fields := strings.Fields(rest)
		if n := len(fields); n > 0 {
			switch kind := entity.FrameContentKind(strings.ToLower(fields[n-1])); kind {
			case entity.FrameContentText, entity.FrameContentHTML, entity.FrameContentBoth:
				cmd.kind = kind
				fields = fields[:n-1]
			}
		}

		if len(fields) > 0 {
			cmd.arg = strings.Join(fields, " ")
		}

		return cmd, nil
	default:
		return command{}, fmt.Errorf("unknown command %q, type help", name)
	}
}

// parseScroll reads "up", "down", "top" and "bottom" as page scrolls and
// anything after "to" as an element description.
func parseScroll(rest string) (command, error) {
	cmd := command{name: "scroll"}

	switch strings.ToLower(rest) {
	case "", "down":
		cmd.scroll.DeltaY = scrollStep
	case "up":
		cmd.scroll.DeltaY = -scrollStep
	case "top":
		cmd.scroll.Edge = entity.ScrollEdgeTop
	case "bottom":
		cmd.scroll.Edge = entity.ScrollEdgeBottom
	default:
		target, ok := strings.CutPrefix(rest, "to ")
		if target = strings.TrimSpace(target); !ok || target == "" {
			return command{}, errors.New("usage: scroll [up|down|top|bottom] or scroll to <description>")
		}

		cmd.arg = target
	}

	return cmd, nil
}

func argName(cmd string) string {
	switch cmd {
	case "goto":
		return "url"
	case "type":
		return "text"
	case "select":
		return "option"
	default:
		return "description"
	}
}

func (i *Interface) printBanner() {
	i.term.Println(titleStyle.Render("Browser Agent") + dimStyle.Render(" · frame-aware interactions with a security gate"))
}

func (i *Interface) printHelp() {
	help := `
Available commands:
  goto <url>                        - Open a page
  click <description>               - Click an element described in plain words
  type <description> => <text>      - Type text into an element
  hover <description>               - Hover over an element
  select <description> => <option>  - Choose an option in a dropdown
  scroll [up|down|top|bottom]       - Scroll the page (default: down)
  scroll to <description>           - Scroll an element into view
  back, forward, reload             - Move through the page history
  elements [query]                  - List visible interactive elements across frames
  screenshot [file] [full]          - Save a PNG of the viewport or the full page
  frames                            - List frames on the page
  content [frame] [text|html|both]  - Show frame content (frame: main, index, name or label)
  check <description>               - Classify an action without running it
  help, h                           - Show this help message
  exit, quit, q                     - Exit the application

Sensitive actions (delete, send, payment) ask for confirmation and
password or verification-code entry is refused. The element found on the
page is checked again before anything is clicked or typed.
`
	i.term.Println(help)
}
