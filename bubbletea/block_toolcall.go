package bubbletea

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/dataagent"
)

var _ MessageBlock = (*ToolCallBlock)(nil)

// ToolCallBlock renders a tool call requested by the model. The arguments
// are shown when expanded.
type ToolCallBlock struct {
	name      string
	id        string
	args      string
	collapsed bool
	styles    Styles
}

// NewToolCallBlock creates a ToolCallBlock that starts collapsed.
func NewToolCallBlock(name, id string, styles Styles) *ToolCallBlock {
	return &ToolCallBlock{name: name, id: id, collapsed: true, styles: styles}
}

// ID returns the tool call ID for event correlation.
func (b *ToolCallBlock) ID() string { return b.id }

// Finalize applies the arguments of the completed call.
func (b *ToolCallBlock) Finalize(call dataagent.ToolCallBlock) {
	b.args = string(call.Arguments)
}

func (b *ToolCallBlock) Update(msg tea.Msg) (MessageBlock, tea.Cmd) {
	if _, ok := msg.(ToggleMsg); ok {
		b.collapsed = !b.collapsed
	}
	return b, nil
}

func (b *ToolCallBlock) View(width int) string {
	indicator := "▶"
	if !b.collapsed {
		indicator = "▼"
	}
	content := b.styles.ToolCall.Render(indicator + " calling " + b.name)
	if !b.collapsed && b.args != "" {
		content += "\n" + b.styles.Muted.Render(b.args)
	}
	return b.styles.Block.Width(width).Render(content)
}
