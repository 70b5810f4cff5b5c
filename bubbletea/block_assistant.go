package bubbletea

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/dataagent"
	"github.com/fwojciec/dataagent/markdown"
)

var _ MessageBlock = (*AssistantTextBlock)(nil)

// AssistantTextBlock renders streamed model text as markdown. Text up to
// the last paragraph break outside a code fence is rendered once per width
// and cached; only the remainder is re-rendered as deltas arrive.
type AssistantTextBlock struct {
	content strings.Builder
	theme   dataagent.Theme

	stable      string
	stableCache map[int]string
}

// NewAssistantTextBlock creates a new block for streaming assistant text.
func NewAssistantTextBlock(theme dataagent.Theme) *AssistantTextBlock {
	return &AssistantTextBlock{theme: theme, stableCache: make(map[int]string)}
}

// Append adds a text delta from the model stream.
func (b *AssistantTextBlock) Append(text string) {
	b.content.WriteString(text)
	b.advance()
}

// Text returns the raw text received so far.
func (b *AssistantTextBlock) Text() string { return b.content.String() }

func (b *AssistantTextBlock) Update(msg tea.Msg) (MessageBlock, tea.Cmd) {
	return b, nil
}

func (b *AssistantTextBlock) View(width int) string {
	head := b.renderStable(width)
	tail := strings.TrimPrefix(b.content.String(), b.stable)
	tail = strings.TrimLeft(tail, "\n")
	if strings.TrimSpace(tail) == "" {
		return head
	}
	if openFence(tail) {
		tail += "\n```"
	}
	rendered := markdown.Render(tail, width, b.theme)
	if head == "" {
		return rendered
	}
	return strings.TrimRight(head, "\n") + "\n\n" + strings.TrimLeft(rendered, "\n")
}

// advance moves the stable prefix to the last "\n\n" that is not inside
// an open code fence.
func (b *AssistantTextBlock) advance() {
	raw := b.content.String()
	for end := len(raw); ; {
		i := strings.LastIndex(raw[:end], "\n\n")
		if i <= len(b.stable) {
			return
		}
		if !openFence(raw[:i]) {
			b.stable = raw[:i]
			clear(b.stableCache)
			return
		}
		end = i
	}
}

func (b *AssistantTextBlock) renderStable(width int) string {
	if width <= 0 || b.stable == "" {
		return ""
	}
	if s, ok := b.stableCache[width]; ok {
		return s
	}
	s := markdown.Render(b.stable, width, b.theme)
	b.stableCache[width] = s
	return s
}

// openFence reports whether s ends inside a fenced code block. Triple
// backticks inside inline code are counted too.
func openFence(s string) bool {
	return strings.Count(s, "```")%2 == 1
}
