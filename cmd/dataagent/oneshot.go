package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fwojciec/dataagent"
	"github.com/fwojciec/dataagent/agent"
	bt "github.com/fwojciec/dataagent/bubbletea"
	"github.com/fwojciec/dataagent/markdown"
)

const outputWidth = 100

// runOnce runs a single turn and writes the rendered transcript, the
// generated SQL and the result preview to w.
func runOnce(ctx context.Context, w io.Writer, d *agent.Driver, prompt string, theme dataagent.Theme) error {
	turn, err := d.Run(ctx, prompt)
	if err := writeTurn(w, turn, theme); err != nil {
		return err
	}
	return err
}

func writeTurn(w io.Writer, turn dataagent.Turn, theme dataagent.Theme) error {
	styles := bt.NewStyles(theme)
	var sections []string
	if turn.Text != "" {
		sections = append(sections, markdown.Render(turn.Text, outputWidth, theme))
	}
	if turn.Err != "" {
		sections = append(sections, bt.NewErrorBlock(turn.Err, styles).View(outputWidth))
	}
	if turn.SQL != "" {
		sections = append(sections, bt.NewSQLBlock(turn.SQL, theme, styles).View(outputWidth))
	}
	if turn.HasPreview() {
		sections = append(sections, bt.NewPreviewBlock(turn.Preview, styles).View(outputWidth))
	}
	if len(sections) == 0 {
		return nil
	}
	_, err := fmt.Fprintln(w, strings.Join(sections, "\n\n"))
	return err
}
