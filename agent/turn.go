package agent

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/fwojciec/dataagent"
	"github.com/fwojciec/dataagent/datatool"
	"github.com/fwojciec/dataagent/markdown"
	"github.com/tidwall/gjson"
)

// turn accumulates the output of one Run.
type turn struct {
	prompt      string
	cfg         *runConfig
	transcript  strings.Builder
	text        strings.Builder // model text only
	invocations []dataagent.Invocation
	issued      []string
	preview     json.RawMessage
}

func (t *turn) write(text string) {
	if text == "" {
		return
	}
	t.text.WriteString(text)
	t.text.WriteString("\n")
	t.separate()
	t.transcript.WriteString(text)
}

func (t *turn) writeNote(text string) {
	t.separate()
	fmt.Fprintf(&t.transcript, "_%s_", text)
}

func (t *turn) separate() {
	if t.transcript.Len() > 0 {
		t.transcript.WriteString("\n\n")
	}
}

// record annotates the transcript with the invocation and emits its result.
func (t *turn) record(inv dataagent.Invocation) {
	t.invocations = append(t.invocations, inv)

	t.separate()
	fmt.Fprintf(&t.transcript, "**Agent calling tool:** `%s` with args `%s`\n\nTool Output:\n```json\n%s\n```",
		inv.Name, compact(inv.Args), inv.Result.Text())

	q := inv.Result.SQL
	if q == "" && inv.Name == datatool.RunSQL {
		q = gjson.GetBytes(inv.Args, "query").String()
	}
	if q = strings.TrimSpace(q); q != "" {
		t.issued = append(t.issued, q)
	}
	if !inv.Result.IsError() && (inv.Name == datatool.RunSQL || inv.Name == datatool.ParseCSV) {
		if r := gjson.Parse(inv.Result.Content); gjson.Valid(inv.Result.Content) && r.IsArray() {
			t.preview = json.RawMessage(inv.Result.Content)
		}
	}

	t.cfg.emit(dataagent.EventToolResult{
		ID:       inv.ID,
		ToolName: inv.Name,
		Content:  inv.Result.Text(),
		Kind:     inv.Result.Kind(),
	})
}

// sql returns the statements the tools issued followed by the sql blocks
// in the model's text, without duplicates.
func (t *turn) sql() string {
	var out []string
	for _, q := range slices.Concat(t.issued, markdown.FencedBlocks(t.text.String(), "sql")) {
		if !slices.Contains(out, q) {
			out = append(out, q)
		}
	}
	return strings.Join(out, "\n\n")
}

func compact(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "{}"
	}
	if !gjson.ValidBytes(raw) {
		return string(raw)
	}
	return gjson.ParseBytes(raw).Get("@ugly").Raw
}
