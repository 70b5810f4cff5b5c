package datatool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fwojciec/dataagent"
	"github.com/tidwall/gjson"
)

type createTable struct {
	store dataagent.Store
}

func (createTable) Tool() dataagent.Tool {
	return dataagent.Tool{
		Name:        CreateTable,
		Description: "Create a table if it does not already exist. Returns the DDL that was issued.",
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				` + addressProperty + `,
				"table_name": {
					"type": "string",
					"description": "The table to create"
				},
				"schema_json": {
					"type": "string",
					"description": "JSON object mapping column name to SQL type, e.g. {\"id\": \"INTEGER PRIMARY KEY\", \"name\": \"TEXT\"}"
				}
			},
			"required": ["table_name", "schema_json"]
		}`),
		Store: true,
	}
}

func (h createTable) Invoke(ctx context.Context, args json.RawMessage) *dataagent.ToolResult {
	a, err := parseArgs(args)
	if err != nil {
		return dataagent.Failure(dataagent.ToolErrInvalidArguments, "Error creating table DDL: "+err.Error())
	}
	table := a.Get("table_name").String()
	prefix := fmt.Sprintf("Error creating table DDL for '%s': ", table)

	cols, err := columns(a.Get("schema_json"))
	if err != nil {
		return dataagent.Failure(dataagent.ToolErrInvalidArguments, prefix+err.Error())
	}
	ddl, err := h.store.CreateTable(ctx, table, cols)
	if err != nil {
		return storeFailure(prefix, err)
	}
	return dataagent.Success(fmt.Sprintf("Table '%s' created or already exists. DDL: %s", table, ddl)).WithSQL(ddl)
}

// columns reads a column-name to type mapping in document order.
func columns(arg gjson.Result) ([]dataagent.Field, error) {
	doc, err := document(arg)
	if err != nil {
		return nil, fmt.Errorf("schema_json: %w", err)
	}
	if !doc.IsObject() {
		return nil, errors.New("schema_json must be a JSON object")
	}
	var cols []dataagent.Field
	var bad error
	doc.ForEach(func(k, v gjson.Result) bool {
		if v.Type != gjson.String {
			bad = fmt.Errorf("type of column %s must be a string", k.Str)
			return false
		}
		cols = append(cols, dataagent.Field{Name: k.Str, Value: v.Str})
		return true
	})
	if bad != nil {
		return nil, bad
	}
	return cols, nil
}
