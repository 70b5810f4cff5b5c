package bubbletea

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

var _ MessageBlock = (*ErrorBlock)(nil)

// ErrorBlock renders a visible error for an abandoned turn.
type ErrorBlock struct {
	text   string
	styles Styles
}

// NewErrorBlock creates an ErrorBlock. Text not already starting with
// "Error" is prefixed with it.
func NewErrorBlock(text string, styles Styles) *ErrorBlock {
	if !strings.HasPrefix(text, "Error") {
		text = "Error: " + text
	}
	return &ErrorBlock{text: text, styles: styles}
}

func (b *ErrorBlock) Update(msg tea.Msg) (MessageBlock, tea.Cmd) {
	return b, nil
}

func (b *ErrorBlock) View(width int) string {
	return b.styles.Block.Width(width).Render(b.styles.Error.Render(b.text))
}
