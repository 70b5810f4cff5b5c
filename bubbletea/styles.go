package bubbletea

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/dataagent"
)

// Styles maps a Theme to lipgloss styles for TUI rendering.
type Styles struct {
	UserMsg  lipgloss.Style
	ToolCall lipgloss.Style
	Error    lipgloss.Style
	Success  lipgloss.Style
	Muted    lipgloss.Style
	Accent   lipgloss.Style
	SQL      lipgloss.Style
	Note     lipgloss.Style
	Header   lipgloss.Style
	Border   lipgloss.Style
	Block    lipgloss.Style
}

// NewStyles creates Styles from a Theme.
func NewStyles(t dataagent.Theme) Styles {
	return Styles{
		UserMsg:  lipgloss.NewStyle().Foreground(ansiColor(t.UserMsg)).Bold(true),
		ToolCall: lipgloss.NewStyle().Foreground(ansiColor(t.ToolCall)),
		Error:    lipgloss.NewStyle().Foreground(ansiColor(t.Error)),
		Success:  lipgloss.NewStyle().Foreground(ansiColor(t.Success)),
		Muted:    lipgloss.NewStyle().Foreground(ansiColor(t.Muted)).Faint(true),
		Accent:   lipgloss.NewStyle().Foreground(ansiColor(t.Accent)).Bold(true),
		SQL:      lipgloss.NewStyle().Foreground(ansiColor(t.SQL)).Bold(true),
		Note:     lipgloss.NewStyle().Foreground(ansiColor(t.Muted)).Italic(true),
		Header:   lipgloss.NewStyle().Foreground(ansiColor(t.Accent)).Bold(true).Padding(0, 1),
		Border:   lipgloss.NewStyle().Foreground(ansiColor(t.Muted)),
		Block:    lipgloss.NewStyle().PaddingLeft(1),
	}
}

func ansiColor(index int) lipgloss.TerminalColor {
	if index < 0 {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(strconv.Itoa(index))
}
