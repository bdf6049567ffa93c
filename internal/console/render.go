package console

import (
	"browser-agent/internal/entity"
	"browser-agent/pkg/apperr"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)

	confirmPanel = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("214")).
			Padding(0, 1)

	blockedPanel = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("196")).
			Padding(0, 1)

	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

func renderConfirmation(req entity.ConfirmationRequest) string {
	lines := []string{
		titleStyle.Render(fmt.Sprintf("Confirm %s action", req.Check.ActionType)),
		"",
		req.Check.ConfirmationPrompt,
		"",
		fmt.Sprintf("Action: %s", req.ActionDescription),
	}

	keys := make([]string, 0, len(req.Details))
	for k := range req.Details {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	for _, k := range keys {
		if req.Details[k] == "" {
			continue
		}

		lines = append(lines, dimStyle.Render(fmt.Sprintf("%s: %s", k, req.Details[k])))
	}

	if len(req.Check.MatchedPatterns) > 0 {
		lines = append(lines, dimStyle.Render("matched: "+strings.Join(req.Check.MatchedPatterns, ", ")))
	}

	return confirmPanel.Render(strings.Join(lines, "\n"))
}

func renderBlocked(check *entity.SecurityCheck) string {
	lines := []string{
		titleStyle.Render(fmt.Sprintf("Blocked: %s", check.ActionType)),
		"",
		check.Reason,
	}

	if check.Suggestion != "" {
		lines = append(lines, "", check.Suggestion)
	}

	return blockedPanel.Render(strings.Join(lines, "\n"))
}

func renderResult(result *entity.InteractionResult) string {
	if result.Success {
		frame := "main"
		if result.FrameContext != nil && !result.FrameContext.IsMain() {
			frame = fmt.Sprintf("%d", result.FrameContext.Index)
			if label := result.FrameContext.Label(); label != "" {
				frame += " (" + label + ")"
			}
		}

		attempts := 0
		if result.RetryChain != nil {
			attempts = len(result.RetryChain.Attempts)
		}

		return okStyle.Render(fmt.Sprintf("✓ %s %q in frame %s after %d attempt(s)",
			result.Action, result.Element, frame, attempts))
	}

	if result.ErrorCode == apperr.CodeActionBlocked && result.Security != nil {
		return renderBlocked(result.Security)
	}

	var b strings.Builder

	b.WriteString(failStyle.Render(fmt.Sprintf("✗ [%s] %s", result.ErrorCode, result.Error)))

	if result.Data != nil && result.Data.RetryChain != nil {
		for _, line := range result.Data.RetryChain.Trail() {
			b.WriteString("\n  ")
			b.WriteString(dimStyle.Render(line))
		}
	}

	return b.String()
}

func renderFrames(listing *entity.FrameListing) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%d frame(s), %d inaccessible, %d beyond depth limit\n",
		listing.Total, listing.Inaccessible, listing.DepthSkipped)

	for _, f := range listing.Frames {
		marker := okStyle.Render("●")
		if !f.Accessible {
			marker = failStyle.Render("○")
		}

		name := f.Name
		if f.IsMain() {
			name = "main"
		}

		fmt.Fprintf(&b, "%s %s%d %s", marker, strings.Repeat("  ", f.Depth), f.Index, name)

		if label := f.Label(); label != "" && label != f.Name {
			fmt.Fprintf(&b, " %q", label)
		}

		if f.SourceURL != "" && !f.IsMain() {
			b.WriteString(" " + dimStyle.Render(f.SourceURL))
		}

		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

func renderCheck(check *entity.SecurityCheck) string {
	switch {
	case check.IsBlocked:
		return renderBlocked(check)
	case check.RequiresConfirmation:
		return fmt.Sprintf("%s (confidence %.2f): %s",
			check.ActionType, check.Confidence, check.ConfirmationPrompt)
	default:
		return okStyle.Render(fmt.Sprintf("%s (confidence %.2f)", check.ActionType, check.Confidence))
	}
}

func renderScroll(moved *entity.ScrollResult) string {
	return fmt.Sprintf("scrolled from (%.0f, %.0f) to (%.0f, %.0f)",
		moved.From.X, moved.From.Y, moved.To.X, moved.To.Y)
}

func renderElements(listing *entity.ElementListing) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%d element(s)", listing.Total)
	if listing.Truncated {
		b.WriteString(dimStyle.Render(" (truncated)"))
	}

	for _, fe := range listing.Frames {
		frame := "main"
		if !fe.FrameContext.IsMain() {
			frame = fmt.Sprintf("frame %d %s", fe.FrameContext.Index, fe.FrameContext.Label())
		}

		b.WriteString("\n" + titleStyle.Render(strings.TrimSpace(frame)))

		for _, el := range fe.Elements {
			kind := el.Role
			if kind == "" {
				kind = el.Tag
			}

			name := ""
			if labels := el.Labels(); len(labels) > 0 {
				name = labels[0]
			}

			fmt.Fprintf(&b, "\n  %s %q", kind, name)

			if !el.Interactable() {
				b.WriteString(dimStyle.Render(" (hidden or disabled)"))
			}
		}
	}

	return b.String()
}
