package datatool

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fwojciec/dataagent"
)

type runSQL struct {
	store dataagent.Store
}

func (runSQL) Tool() dataagent.Tool {
	return dataagent.Tool{
		Name:        RunSQL,
		Description: "Execute a SQL statement (DDL, DML or SELECT) against the database. Returns the result rows as a JSON array of objects, or the number of affected rows.",
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				` + addressProperty + `,
				"query": {
					"type": "string",
					"description": "The SQL statement to execute"
				}
			},
			"required": ["query"]
		}`),
		Store: true,
	}
}

func (h runSQL) Invoke(ctx context.Context, args json.RawMessage) *dataagent.ToolResult {
	const prefix = "Error executing SQL query: "
	a, err := parseArgs(args)
	if err != nil {
		return dataagent.Failure(dataagent.ToolErrInvalidArguments, prefix+err.Error())
	}
	query := a.Get("query").String()
	if query == "" {
		return dataagent.Failure(dataagent.ToolErrInvalidArguments, prefix+"query is required")
	}

	return h.query(ctx, query, prefix).WithSQL(query)
}

func (h runSQL) query(ctx context.Context, query, prefix string) *dataagent.ToolResult {
	res, err := h.store.Query(ctx, query)
	if err != nil {
		return storeFailure(prefix, err)
	}
	if !res.ReturnsRows {
		return dataagent.Success(fmt.Sprintf("Query executed successfully with no rows returned. Rows affected: %d", res.RowsAffected))
	}
	out, err := dataagent.EncodeRows(res.Rows)
	if err != nil {
		return dataagent.Failure(dataagent.ToolErrQuery, prefix+err.Error())
	}
	return dataagent.Success(out)
}
