package server

import (
	"browser-agent/internal/entity"
	"browser-agent/internal/security"
	"browser-agent/pkg/apperr"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// toText serializes a tool result payload as indented JSON.
func toText(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("encode result: %v", err)
	}

	return string(b)
}

// interactionResult turns failed interactions into tool errors; the text
// leads with the attempt trail when the chain was exhausted.
func interactionResult(result *entity.InteractionResult, err error) (*mcp.CallToolResult, error) {
	if err != nil {
		return toolError(err), nil
	}

	if result.Success {
		return mcp.NewToolResultText(toText(result)), nil
	}

	var b strings.Builder

	fmt.Fprintf(&b, "%s: %s\n", result.ErrorCode, result.Error)

	if result.Suggestion != "" {
		fmt.Fprintf(&b, "suggestion: %s\n", result.Suggestion)
	}

	if result.Data != nil && result.Data.RetryChain != nil {
		b.WriteString("attempts:\n")

		for _, line := range result.Data.RetryChain.Trail() {
			fmt.Fprintf(&b, "  - %s\n", line)
		}
	}

	b.WriteString(toText(result))

	return mcp.NewToolResultError(b.String()), nil
}

// toolError prefixes the error text with its code.
func toolError(err error) *mcp.CallToolResult {
	return mcp.NewToolResultError(fmt.Sprintf("%s: %v", apperr.CodeOf(err), err))
}

func stringParam(params map[string]any, key, def string) string {
	if v, ok := params[key].(string); ok && v != "" {
		return v
	}

	return def
}

func boolParam(params map[string]any, key string, def bool) bool {
	if v, ok := params[key].(bool); ok {
		return v
	}

	return def
}

func intParam(params map[string]any, key string, def int) int {
	switch v := params[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return def
	}
}

func floatParam(params map[string]any, key string) float64 {
	switch v := params[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return 0
	}
}

// elementContext carries the caller's knowledge of the target element to
// the security gate.
func elementContext(params map[string]any) map[string]string {
	v := stringParam(params, "element_type", "")
	if v == "" {
		return nil
	}

	return map[string]string{security.ContextType: v}
}

func frameWait(params map[string]any) (bool, *int) {
	wait := boolParam(params, "wait_for_frames", false)

	if _, ok := params["expected_frames"]; !ok {
		return wait, nil
	}

	expected := intParam(params, "expected_frames", 0)

	return true, &expected
}

func (s *Server) handleNavigate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()

	info, err := s.usecase.Interaction.Navigate(ctx, stringParam(params, "url", ""))
	if err != nil {
		return toolError(err), nil
	}

	return mcp.NewToolResultText(toText(info)), nil
}

func (s *Server) handleClick(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	wait, expected := frameWait(params)

	return interactionResult(s.usecase.Interaction.Execute(ctx, entity.InteractionRequest{
		Kind:        entity.InteractionClick,
		Description: stringParam(params, "element", ""),
		Role:        stringParam(params, "role", ""),
		Click: entity.ClickOptions{
			DoubleClick: boolParam(params, "double_click", false),
			RightClick:  boolParam(params, "right_click", false),
		},
		ElementContext: elementContext(params),
		WaitForFrames:  wait,
		ExpectedFrames: expected,
	}))
}

func (s *Server) handleTypeText(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	wait, expected := frameWait(params)

	opts := entity.TypeOptions{
		Text:       stringParam(params, "text", ""),
		ClearFirst: boolParam(params, "clear_first", true),
		PressEnter: boolParam(params, "press_enter", false),
	}

	return interactionResult(s.usecase.Interaction.Execute(ctx, entity.InteractionRequest{
		Kind:           entity.InteractionType,
		Description:    stringParam(params, "element", ""),
		Type:           opts,
		ElementContext: elementContext(params),
		WaitForFrames:  wait,
		ExpectedFrames: expected,
	}))
}

func (s *Server) handleHover(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()

	return interactionResult(s.usecase.Interaction.Hover(ctx, stringParam(params, "element", ""), stringParam(params, "role", "")))
}

func (s *Server) handleSelectOption(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()

	return interactionResult(s.usecase.Interaction.SelectOption(ctx,
		stringParam(params, "element", ""),
		stringParam(params, "option", ""),
	))
}

func (s *Server) handleScroll(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()

	if element := stringParam(params, "element", ""); element != "" {
		return interactionResult(s.usecase.Interaction.ScrollTo(ctx, element))
	}

	res, err := s.usecase.Interaction.ScrollPage(ctx, entity.ScrollRequest{
		DeltaX: floatParam(params, "dx"),
		DeltaY: floatParam(params, "dy"),
		Edge:   entity.ScrollEdge(stringParam(params, "edge", "")),
	})
	if err != nil {
		return toolError(err), nil
	}

	return mcp.NewToolResultText(toText(res)), nil
}

func (s *Server) historyHandler(action entity.HistoryAction) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		info, err := s.usecase.Interaction.History(ctx, action)
		if err != nil {
			return toolError(err), nil
		}

		return mcp.NewToolResultText(toText(info)), nil
	}
}

func (s *Server) handleFindElements(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()

	listing, err := s.usecase.Interaction.FindElements(ctx,
		stringParam(params, "query", ""),
		boolParam(params, "include_hidden", false),
		intParam(params, "limit", 0),
	)
	if err != nil {
		return toolError(err), nil
	}

	return mcp.NewToolResultText(toText(listing)), nil
}

func (s *Server) handleScreenshot(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()

	shot, err := s.usecase.Interaction.Screenshot(ctx, boolParam(params, "full_page", false))
	if err != nil {
		return toolError(err), nil
	}

	return mcp.NewToolResultImage(toText(shot), base64.StdEncoding.EncodeToString(shot.Data), shot.MimeType), nil
}

func (s *Server) handleListFrames(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()

	listing, err := s.usecase.Interaction.ListFrames(ctx, boolParam(params, "include_inaccessible", true))
	if err != nil {
		return toolError(err), nil
	}

	return mcp.NewToolResultText(toText(listing)), nil
}

func (s *Server) handleFrameContent(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()

	content, err := s.usecase.Interaction.FrameContent(ctx,
		stringParam(params, "frame", "main"),
		entity.FrameContentKind(stringParam(params, "content_type", string(entity.FrameContentText))),
		intParam(params, "max_length", 0),
	)
	if err != nil {
		return toolError(err), nil
	}

	return mcp.NewToolResultText(toText(content)), nil
}

func (s *Server) handleCheckAction(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()

	elementContext := map[string]string{}
	if v := stringParam(params, "element_type", ""); v != "" {
		elementContext[security.ContextType] = v
	}

	if v := stringParam(params, "element_text", ""); v != "" {
		elementContext[security.ContextText] = v
	}

	check, err := s.usecase.Interaction.CheckAction(ctx, stringParam(params, "action", ""), elementContext)
	if err != nil {
		return toolError(err), nil
	}

	return mcp.NewToolResultText(toText(check)), nil
}
