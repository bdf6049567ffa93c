package server

import (
	"browser-agent/internal/config"
	"browser-agent/internal/entity"
	"browser-agent/internal/usecase"
	"browser-agent/pkg/logg"
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	serverName    = "browser-agent"
	serverVersion = "1.0.0"

	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// Server exposes the interaction service as MCP tools for an external
// orchestrator.
type Server struct {
	config  *config.Config
	logger  *zap.Logger
	usecase *usecase.Service
	mcp     *mcpserver.MCPServer
	http    *mcpserver.StreamableHTTPServer
}

type Params struct {
	fx.In

	Config  *config.Config
	Logger  *zap.Logger
	Usecase *usecase.Service
}

func NewServer(params Params) *Server {
	s := &Server{
		config:  params.Config,
		logger:  params.Logger.With(zap.String(logg.Layer, "MCPServer")),
		usecase: params.Usecase,
	}

	s.mcp = mcpserver.NewMCPServer(
		serverName,
		serverVersion,
		mcpserver.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// Serve blocks on the configured transport.
func (s *Server) Serve() error {
	switch transport := s.config.ServerConfig.Transport; transport {
	case TransportStdio:
		s.logger.Info("Serving MCP over stdio")
		return mcpserver.ServeStdio(s.mcp)
	case TransportHTTP:
		addr := fmt.Sprintf(":%d", s.config.ServerConfig.Port)
		s.logger.Info("Serving MCP over streamable HTTP", zap.String("addr", addr))

		s.http = mcpserver.NewStreamableHTTPServer(s.mcp)

		err := s.http.Start(addr)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return err
	default:
		return fmt.Errorf("unsupported transport: %s (use %s or %s)", transport, TransportStdio, TransportHTTP)
	}
}

// Shutdown stops the HTTP transport. The stdio transport ends with its
// input stream.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}

	return s.http.Shutdown(ctx)
}

func (s *Server) registerTools() {
	s.mcp.AddTool(
		mcp.NewTool("navigate",
			mcp.WithDescription("Open a URL in the shared browser page. Returns the final URL and title."),
			mcp.WithString("url", mcp.Required(), mcp.Description("Absolute URL to open")),
		),
		s.handleNavigate,
	)

	s.mcp.AddTool(
		mcp.NewTool("click",
			mcp.WithDescription("Click an element described in natural language. Searches the main frame, then iframes by label priority, then falls back to a coordinate click."),
			mcp.WithString("element", mcp.Required(), mcp.Description("Natural-language description of the element, e.g. 'Search button'")),
			mcp.WithString("role", mcp.Description("Preferred ARIA role, e.g. button, link, textbox")),
			mcp.WithBoolean("double_click", mcp.Description("Double-click instead of a single click")),
			mcp.WithBoolean("right_click", mcp.Description("Use the right mouse button")),
			mcp.WithString("element_type", mcp.Description("type attribute of the target element, when known")),
			mcp.WithBoolean("wait_for_frames", mcp.Description("Wait for late-loading iframes before searching")),
			mcp.WithNumber("expected_frames", mcp.Description("Minimum frame count to wait for, main frame included")),
		),
		s.handleClick,
	)

	s.mcp.AddTool(
		mcp.NewTool("type_text",
			mcp.WithDescription("Type text into an element described in natural language"),
			mcp.WithString("element", mcp.Required(), mcp.Description("Natural-language description of the input")),
			mcp.WithString("text", mcp.Required(), mcp.Description("Text to type")),
			mcp.WithBoolean("clear_first", mcp.Description("Replace the current value (default true)")),
			mcp.WithBoolean("press_enter", mcp.Description("Press Enter after typing")),
			mcp.WithString("element_type", mcp.Description("type attribute of the target input, when known")),
			mcp.WithBoolean("wait_for_frames", mcp.Description("Wait for late-loading iframes before searching")),
			mcp.WithNumber("expected_frames", mcp.Description("Minimum frame count to wait for, main frame included")),
		),
		s.handleTypeText,
	)

	s.mcp.AddTool(
		mcp.NewTool("hover",
			mcp.WithDescription("Hover over an element described in natural language"),
			mcp.WithString("element", mcp.Required(), mcp.Description("Natural-language description of the element")),
			mcp.WithString("role", mcp.Description("Preferred ARIA role")),
		),
		s.handleHover,
	)

	s.mcp.AddTool(
		mcp.NewTool("select_option",
			mcp.WithDescription("Pick an option of a dropdown described in natural language"),
			mcp.WithString("element", mcp.Required(), mcp.Description("Natural-language description of the dropdown")),
			mcp.WithString("option", mcp.Required(), mcp.Description("Visible label of the option")),
		),
		s.handleSelectOption,
	)

	s.mcp.AddTool(
		mcp.NewTool("scroll",
			mcp.WithDescription("Scroll an element into view, or scroll the page by a distance or to an edge"),
			mcp.WithString("element", mcp.Description("Element to bring into view; when set, the other arguments are ignored")),
			mcp.WithNumber("dx", mcp.Description("Horizontal distance in pixels")),
			mcp.WithNumber("dy", mcp.Description("Vertical distance in pixels, positive scrolls down")),
			mcp.WithString("edge", mcp.Description("Scroll to the top or bottom of the page"), mcp.Enum("top", "bottom")),
		),
		s.handleScroll,
	)

	for _, h := range []struct {
		name        string
		description string
		action      entity.HistoryAction
	}{
		{name: "go_back", description: "Go back one page in the browser history", action: entity.HistoryBack},
		{name: "go_forward", description: "Go forward one page in the browser history", action: entity.HistoryForward},
		{name: "reload", description: "Reload the current page", action: entity.HistoryReload},
	} {
		s.mcp.AddTool(mcp.NewTool(h.name, mcp.WithDescription(h.description)), s.historyHandler(h.action))
	}

	s.mcp.AddTool(
		mcp.NewTool("find_interactive_elements",
			mcp.WithDescription("List interactive elements across the accessible frames, grouped by frame"),
			mcp.WithString("query", mcp.Description("Only elements whose name, text or label contains this")),
			mcp.WithBoolean("include_hidden", mcp.Description("Include hidden and disabled elements")),
			mcp.WithNumber("limit", mcp.Description("Maximum elements returned (default 100)"), mcp.Min(1)),
		),
		s.handleFindElements,
	)

	s.mcp.AddTool(
		mcp.NewTool("screenshot",
			mcp.WithDescription("Capture the current page as a PNG image"),
			mcp.WithBoolean("full_page", mcp.Description("Capture the whole scrollable page instead of the viewport")),
		),
		s.handleScreenshot,
	)

	s.mcp.AddTool(
		mcp.NewTool("list_frames",
			mcp.WithDescription("List the page's frames with index, name, labels, source and accessibility"),
			mcp.WithBoolean("include_inaccessible", mcp.Description("Include cross-origin frames (default true)")),
		),
		s.handleListFrames,
	)

	s.mcp.AddTool(
		mcp.NewTool("get_frame_content",
			mcp.WithDescription("Read the text or HTML of one frame"),
			mcp.WithString("frame", mcp.Description("'main', a frame index, name or aria-label (default main)")),
			mcp.WithString("content_type", mcp.Description("text, html or both (default text)"), mcp.Enum("text", "html", "both")),
			mcp.WithNumber("max_length", mcp.Description("Maximum characters before truncation (default 10000)")),
		),
		s.handleFrameContent,
	)

	s.mcp.AddTool(
		mcp.NewTool("check_action",
			mcp.WithDescription("Classify an intended action (safe, delete, send, payment, password, mfa) without running it"),
			mcp.WithString("action", mcp.Required(), mcp.Description("Description of the intended action")),
			mcp.WithString("element_type", mcp.Description("type attribute of the target element")),
			mcp.WithString("element_text", mcp.Description("Visible text of the target element")),
		),
		s.handleCheckAction,
	)
}
