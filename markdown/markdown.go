// Package markdown renders model output to ANSI-styled terminal text and
// extracts fenced code blocks. Parsing is done with goldmark, styling with
// lipgloss.
package markdown

import "github.com/fwojciec/dataagent"

// DefaultMaxJSONLines is the number of lines a fenced json block shows
// before it is folded.
const DefaultMaxJSONLines = 20

// Render parses markdown source and returns ANSI-styled terminal output.
// Paragraphs and list items are word-wrapped to width. Code blocks are
// rendered at full width without reflow.
func Render(source string, width int, theme dataagent.Theme) string {
	return RenderFolded(source, width, theme, DefaultMaxJSONLines)
}

// RenderFolded is Render with an explicit fold limit for json blocks.
// A limit of zero or less disables folding.
func RenderFolded(source string, width int, theme dataagent.Theme, maxJSONLines int) string {
	if source == "" {
		return ""
	}
	if width <= 0 {
		width = 80
	}
	r := newRenderer(theme, maxJSONLines)
	return r.render([]byte(source), width)
}
