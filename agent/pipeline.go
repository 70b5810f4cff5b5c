package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/fwojciec/dataagent"
	"github.com/fwojciec/dataagent/datatool"
	"github.com/fwojciec/dataagent/markdown"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

var (
	intoPattern = regexp.MustCompile(`(?i)\binto\s+(?:the\s+)?(?:table\s+)?([A-Za-z_][A-Za-z0-9_]*)`)
	toPattern   = regexp.MustCompile(`(?i)\bto\s+(?:the\s+)?(?:table\s+)?([A-Za-z_][A-Za-z0-9_]*)`)
)

// Destination extracts the target table from a request: the identifier
// after the first "into", else the identifier after the last "to". Text
// inside fenced code blocks is ignored.
func Destination(prompt string) (string, error) {
	prompt = markdown.WithoutFencedBlocks(prompt)
	if m := intoPattern.FindStringSubmatch(prompt); m != nil {
		return m[1], nil
	}
	if all := toPattern.FindAllStringSubmatch(prompt, -1); len(all) > 0 {
		return all[len(all)-1][1], nil
	}
	return "", fmt.Errorf("agent: %w", dataagent.ErrNoDestination)
}

// substituteCSV sets csv_content from, in order: a csv block in the
// prompt, the model's own argument, a sample matched by keyword. It
// reports false when none is available.
func (d *Driver) substituteCSV(prompt string, args json.RawMessage) (json.RawMessage, bool) {
	if len(args) == 0 || !gjson.ValidBytes(args) {
		args = json.RawMessage(`{}`)
	}
	content, ok := markdown.FirstFencedBlock(prompt, "csv")
	if !ok {
		if given := gjson.GetBytes(args, "csv_content").String(); strings.TrimSpace(given) != "" {
			return args, true
		}
		_, content, ok = d.cfg.Sample(prompt)
	}
	if !ok {
		return args, false
	}
	out, err := sjson.SetBytes(args, "csv_content", content)
	if err != nil {
		return args, false
	}
	return out, true
}

// autoInsert writes parsed rows to the destination named in the request,
// or notes why it could not.
func (d *Driver) autoInsert(ctx context.Context, t *turn, rows string) {
	table, err := Destination(t.prompt)
	if err != nil {
		d.logger.InfoContext(ctx, "auto insert skipped", "agent", d.role.Key, "reason", err)
		d.note(t, "Parsed CSV rows were not inserted: no destination table was named in the request (use \"into <table>\").")
		return
	}

	args, err := sjson.SetBytes([]byte(`{}`), "table_name", table)
	if err == nil {
		args, err = sjson.SetRawBytes(args, "data_json", []byte(rows))
	}
	if err != nil {
		d.note(t, fmt.Sprintf("Parsed CSV rows were not inserted into '%s': %v", table, err))
		return
	}
	args = datatool.BindAddress(args, d.cfg.DatabaseURL)

	d.logger.InfoContext(ctx, "auto insert", "agent", d.role.Key, "table", table)
	result := d.execute(ctx, datatool.InsertRows, args)
	t.record(dataagent.Invocation{Name: datatool.InsertRows, Args: args, Result: result, Auto: true})
	d.session.Append(dataagent.NewUserText("Note: the parsed rows were passed to insert_rows automatically. Result: " + result.Text()))
}
