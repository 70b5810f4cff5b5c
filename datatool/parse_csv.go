package datatool

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/fwojciec/dataagent"
	"github.com/fwojciec/dataagent/csv"
)

type parseCSV struct{}

func (parseCSV) Tool() dataagent.Tool {
	return dataagent.Tool{
		Name:        ParseCSV,
		Description: "Parse CSV text with a header row into a JSON array of row objects.",
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"csv_content": {
					"type": "string",
					"description": "Raw CSV text including the header row"
				}
			},
			"required": ["csv_content"]
		}`),
	}
}

func (parseCSV) Invoke(_ context.Context, args json.RawMessage) *dataagent.ToolResult {
	const prefix = "Error parsing CSV content: "
	a, err := parseArgs(args)
	if err != nil {
		return dataagent.Failure(dataagent.ToolErrInvalidArguments, prefix+err.Error())
	}
	content := a.Get("csv_content").String()
	if strings.TrimSpace(content) == "" {
		return dataagent.Failure(dataagent.ToolErrMissingInput, prefix+"no CSV content provided")
	}
	rows, err := csv.Parse(content)
	if err != nil {
		return dataagent.Failure(dataagent.ToolErrInvalidArguments, prefix+err.Error())
	}
	out, err := dataagent.EncodeRows(rows)
	if err != nil {
		return dataagent.Failure(dataagent.ToolErrInvalidArguments, prefix+err.Error())
	}
	return dataagent.Success(out)
}
