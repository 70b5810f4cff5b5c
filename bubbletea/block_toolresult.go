package bubbletea

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"
)

var _ MessageBlock = (*ToolResultBlock)(nil)

const maxPreviewWidth = 60

// ToolResultBlock renders a tool result. Successful results start
// collapsed to a one-line preview; errors are always expanded.
type ToolResultBlock struct {
	toolName  string
	content   string
	isError   bool
	auto      bool
	collapsed bool
	styles    Styles
}

// NewToolResultBlock creates a ToolResultBlock. Auto marks invocations
// issued by the driver rather than the model.
func NewToolResultBlock(toolName, content string, isError, auto bool, styles Styles) *ToolResultBlock {
	return &ToolResultBlock{
		toolName:  toolName,
		content:   content,
		isError:   isError,
		auto:      auto,
		collapsed: !isError,
		styles:    styles,
	}
}

// IsError reports whether this tool result represents an error.
func (b *ToolResultBlock) IsError() bool { return b.isError }

func (b *ToolResultBlock) Update(msg tea.Msg) (MessageBlock, tea.Cmd) {
	if _, ok := msg.(ToggleMsg); ok && !b.isError {
		b.collapsed = !b.collapsed
	}
	return b, nil
}

func (b *ToolResultBlock) View(width int) string {
	icon, iconStyle := "✓", b.styles.Success
	if b.isError {
		icon, iconStyle = "✗", b.styles.Error
	}
	indicator := "▼ "
	if b.collapsed {
		indicator = "▶ "
	}
	label := b.toolName
	if b.auto {
		label += " (auto)"
	}
	header := b.styles.ToolCall.Render(indicator+label) + " " + iconStyle.Render(icon)

	body := b.content
	if b.isError {
		body = b.styles.Error.Render(body)
	}
	switch {
	case b.content == "":
		return b.styles.Block.Width(width).Render(header)
	case b.collapsed:
		preview := runewidth.Truncate(firstLine(b.content), maxPreviewWidth, "…")
		return b.styles.Block.Width(width).Render(header + "  " + preview)
	default:
		return b.styles.Block.Width(width).Render(header + "\n" + body)
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
