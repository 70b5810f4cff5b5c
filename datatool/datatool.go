// Package datatool provides the SQL and CSV tools the agents expose to the
// model: run_sql, get_schema, create_table, insert_rows and parse_csv.
//
// Handlers never fail past their own boundary. Every fault is reported as a
// dataagent.ToolResult carrying a ToolError whose message begins with
// "Error".
package datatool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fwojciec/dataagent"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Tool names.
const (
	RunSQL      = "run_sql"
	GetSchema   = "get_schema"
	CreateTable = "create_table"
	InsertRows  = "insert_rows"
	ParseCSV    = "parse_csv"
)

// AddressArg is the argument every store tool carries for the database
// address. Its value is always replaced with the configured address.
const AddressArg = "database_url"

// Handler is one statically known tool implementation.
type Handler interface {
	Tool() dataagent.Tool
	Invoke(ctx context.Context, args json.RawMessage) *dataagent.ToolResult
}

// BindAddress returns args with the database_url argument set to address.
// Malformed args are returned unchanged so the handler reports them.
func BindAddress(args json.RawMessage, address string) json.RawMessage {
	if len(args) == 0 {
		args = json.RawMessage(`{}`)
	}
	if !gjson.ValidBytes(args) || !gjson.ParseBytes(args).IsObject() {
		return args
	}
	out, err := sjson.SetBytes(args, AddressArg, address)
	if err != nil {
		return args
	}
	return out
}

// parseArgs checks that args is a JSON object.
func parseArgs(args json.RawMessage) (gjson.Result, error) {
	if len(args) == 0 {
		return gjson.Parse(`{}`), nil
	}
	if !gjson.ValidBytes(args) {
		return gjson.Result{}, errors.New("arguments are not valid JSON")
	}
	r := gjson.ParseBytes(args)
	if !r.IsObject() {
		return gjson.Result{}, fmt.Errorf("arguments must be a JSON object, got %s", r.Type)
	}
	return r, nil
}

// document resolves an argument that carries a JSON document either as an
// embedded value or as a string containing JSON.
func document(arg gjson.Result) (gjson.Result, error) {
	if arg.Type == gjson.String {
		if !gjson.Valid(arg.Str) {
			return gjson.Result{}, errors.New("value is not valid JSON")
		}
		return gjson.Parse(arg.Str), nil
	}
	if !arg.Exists() {
		return gjson.Result{}, errors.New("value is missing")
	}
	return arg, nil
}

// value converts a JSON scalar into the Go value stored in a row.
func value(r gjson.Result) any {
	switch r.Type {
	case gjson.Null:
		return nil
	case gjson.True:
		return true
	case gjson.False:
		return false
	case gjson.String:
		return r.Str
	case gjson.Number:
		if n, err := json.Number(r.Raw).Int64(); err == nil {
			return n
		}
		return r.Num
	default:
		return r.Raw
	}
}

// storeFailure classifies a store error and prefixes its message.
func storeFailure(prefix string, err error) *dataagent.ToolResult {
	kind := dataagent.ToolErrQuery
	switch {
	case errors.Is(err, dataagent.ErrStoreUnavailable):
		kind = dataagent.ToolErrStore
	case errors.Is(err, dataagent.ErrValidation):
		kind = dataagent.ToolErrInvalidArguments
	}
	return dataagent.Failure(kind, prefix+err.Error())
}

func encode(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// addressProperty is the schema fragment shared by every store tool.
const addressProperty = `"database_url": {
	"type": "string",
	"description": "Database connection URL. Always replaced with the configured database."
}`
