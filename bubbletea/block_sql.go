package bubbletea

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/dataagent"
	"github.com/fwojciec/dataagent/markdown"
)

var _ MessageBlock = (*SQLBlock)(nil)

// SQLBlock renders the SQL generated during a turn.
type SQLBlock struct {
	sql    string
	theme  dataagent.Theme
	styles Styles
}

// NewSQLBlock creates a SQLBlock.
func NewSQLBlock(sql string, theme dataagent.Theme, styles Styles) *SQLBlock {
	return &SQLBlock{sql: sql, theme: theme, styles: styles}
}

func (b *SQLBlock) Update(msg tea.Msg) (MessageBlock, tea.Cmd) {
	return b, nil
}

func (b *SQLBlock) View(width int) string {
	title := b.styles.Block.Render(b.styles.SQL.Render("Generated SQL"))
	return title + "\n" + markdown.Render("```sql\n"+b.sql+"\n```", width, b.theme)
}
