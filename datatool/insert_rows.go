package datatool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fwojciec/dataagent"
	"github.com/tidwall/gjson"
)

type insertRows struct {
	store dataagent.Store
}

func (insertRows) Tool() dataagent.Tool {
	return dataagent.Tool{
		Name:        InsertRows,
		Description: "Append rows to a table. The table is created from the row values when it does not exist.",
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				` + addressProperty + `,
				"table_name": {
					"type": "string",
					"description": "The destination table"
				},
				"data_json": {
					"type": "string",
					"description": "JSON array of row objects to insert"
				}
			},
			"required": ["table_name", "data_json"]
		}`),
		Store: true,
	}
}

func (h insertRows) Invoke(ctx context.Context, args json.RawMessage) *dataagent.ToolResult {
	a, err := parseArgs(args)
	if err != nil {
		return dataagent.Failure(dataagent.ToolErrInvalidArguments, "Error inserting data: "+err.Error())
	}
	table := a.Get("table_name").String()
	prefix := fmt.Sprintf("Error inserting data into '%s': ", table)

	rows, err := DecodeRows(a.Get("data_json"))
	if err != nil {
		return dataagent.Failure(dataagent.ToolErrInvalidArguments, prefix+err.Error())
	}
	n, err := h.store.InsertRows(ctx, table, rows)
	if err != nil {
		return storeFailure(prefix, err)
	}
	return dataagent.Success(fmt.Sprintf("Successfully inserted %d rows into '%s'.", n, table))
}

// DecodeRows reads a JSON array of row objects, embedded or as a string,
// keeping the key order of each object.
func DecodeRows(arg gjson.Result) ([]dataagent.Row, error) {
	doc, err := document(arg)
	if err != nil {
		return nil, fmt.Errorf("data_json: %w", err)
	}
	if !doc.IsArray() {
		return nil, errors.New("data_json must be a JSON array of objects")
	}
	var rows []dataagent.Row
	var bad error
	doc.ForEach(func(i, obj gjson.Result) bool {
		if !obj.IsObject() {
			bad = fmt.Errorf("element %d is not an object", i.Int())
			return false
		}
		var row dataagent.Row
		obj.ForEach(func(k, v gjson.Result) bool {
			row = append(row, dataagent.Field{Name: k.Str, Value: value(v)})
			return true
		})
		rows = append(rows, row)
		return true
	})
	if bad != nil {
		return nil, bad
	}
	return rows, nil
}
