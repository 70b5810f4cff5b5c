package datatool

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fwojciec/dataagent"
)

type getSchema struct {
	store dataagent.Store
}

func (getSchema) Tool() dataagent.Tool {
	return dataagent.Tool{
		Name:        GetSchema,
		Description: "Get the schema of a table as a JSON object mapping column name to declared type.",
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				` + addressProperty + `,
				"table_name": {
					"type": "string",
					"description": "The table to describe"
				}
			},
			"required": ["table_name"]
		}`),
		Store: true,
	}
}

func (h getSchema) Invoke(ctx context.Context, args json.RawMessage) *dataagent.ToolResult {
	a, err := parseArgs(args)
	if err != nil {
		return dataagent.Failure(dataagent.ToolErrInvalidArguments, "Error getting table schema: "+err.Error())
	}
	table := a.Get("table_name").String()
	prefix := fmt.Sprintf("Error getting table schema for '%s': ", table)

	cols, err := h.store.Schema(ctx, table)
	if err != nil {
		return storeFailure(prefix, err)
	}
	out, err := encode(dataagent.Row(cols))
	if err != nil {
		return dataagent.Failure(dataagent.ToolErrQuery, prefix+err.Error())
	}
	return dataagent.Success(out)
}
