package bubbletea

import (
	"encoding/json"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/rivo/uniseg"
	"github.com/tidwall/gjson"
)

var _ MessageBlock = (*PreviewBlock)(nil)

// Rows shown by a collapsed preview.
const previewRows = 10

const minCellWidth = 4

// PreviewBlock renders a JSON array of row objects as a table. Collapsed
// previews show the first rows only.
type PreviewBlock struct {
	columns   []string
	rows      [][]string
	collapsed bool
	styles    Styles
}

// NewPreviewBlock creates a PreviewBlock from a JSON array of objects.
// Column order follows first appearance across rows.
func NewPreviewBlock(preview json.RawMessage, styles Styles) *PreviewBlock {
	b := &PreviewBlock{collapsed: true, styles: styles}
	index := make(map[string]int)
	var records []map[string]string
	for _, obj := range gjson.ParseBytes(preview).Array() {
		rec := make(map[string]string)
		obj.ForEach(func(k, v gjson.Result) bool {
			if _, ok := index[k.String()]; !ok {
				index[k.String()] = len(b.columns)
				b.columns = append(b.columns, k.String())
			}
			rec[k.String()] = cell(v)
			return true
		})
		records = append(records, rec)
	}
	for _, rec := range records {
		row := make([]string, len(b.columns))
		for i, c := range b.columns {
			row[i] = rec[c]
		}
		b.rows = append(b.rows, row)
	}
	return b
}

// Len returns the number of rows in the preview.
func (b *PreviewBlock) Len() int { return len(b.rows) }

func (b *PreviewBlock) Update(msg tea.Msg) (MessageBlock, tea.Cmd) {
	if _, ok := msg.(ToggleMsg); ok {
		b.collapsed = !b.collapsed
	}
	return b, nil
}

func (b *PreviewBlock) View(width int) string {
	title := b.styles.Accent.Render(fmt.Sprintf("Preview (%d rows)", len(b.rows)))
	if len(b.columns) == 0 {
		return b.styles.Block.Render(title + "  " + b.styles.Muted.Render("no rows"))
	}

	// Each column costs its cell, two padding cells and a border.
	cellWidth := max((width-1)/len(b.columns)-3, minCellWidth)
	rows := b.rows
	if b.collapsed && len(rows) > previewRows {
		rows = rows[:previewRows]
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(b.styles.Border).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return b.styles.Header
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	headers := make([]string, len(b.columns))
	for i, c := range b.columns {
		headers[i] = truncate(c, cellWidth)
	}
	t.Headers(headers...)
	for _, r := range rows {
		cells := make([]string, len(r))
		for i, c := range r {
			cells[i] = truncate(c, cellWidth)
		}
		t.Row(cells...)
	}

	out := title + "\n" + t.Render()
	if hidden := len(b.rows) - len(rows); hidden > 0 {
		out += "\n" + b.styles.Muted.Render(fmt.Sprintf("… %d more rows", hidden))
	}
	return out
}

func cell(v gjson.Result) string {
	switch v.Type {
	case gjson.Null:
		return ""
	case gjson.String:
		return v.Str
	default:
		return v.Raw
	}
}

// truncate shortens s to at most width terminal cells, cutting on grapheme
// boundaries.
func truncate(s string, width int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if uniseg.StringWidth(s) <= width {
		return s
	}
	var b strings.Builder
	w := 0
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		if w+g.Width() > width-1 {
			break
		}
		b.WriteString(g.Str())
		w += g.Width()
	}
	return b.String() + "…"
}
