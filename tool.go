package dataagent

import (
	"context"
	"encoding/json"
)

// Tool is the schema sent to the model describing a tool's capabilities.
// Store marks tools that operate on the configured data store; their
// database_url argument is always bound to the configured address.
type Tool struct {
	Name        string
	Description string
	Parameters  json.RawMessage
	Store       bool
}

// ToolExecutor runs tools. Execute returns error only for infrastructure
// failures; tool-reported domain failures are carried in ToolResult.Err.
type ToolExecutor interface {
	Execute(ctx context.Context, name string, args json.RawMessage) (*ToolResult, error)
}

// Toolset is a ToolExecutor that also describes the tools it can run.
type Toolset interface {
	ToolExecutor
	Tools() []Tool
}

// ToolErrorKind classifies a failed tool invocation.
type ToolErrorKind string

const (
	ToolErrInvalidArguments ToolErrorKind = "invalid_arguments"
	ToolErrStore            ToolErrorKind = "store"
	ToolErrQuery            ToolErrorKind = "query"
	ToolErrMissingInput     ToolErrorKind = "missing_input"
	ToolErrUnsupported      ToolErrorKind = "unsupported"
)

// ToolError is a structured tool failure. Message is human readable and
// starts with "Error" for execution faults.
type ToolError struct {
	Kind    ToolErrorKind
	Message string
}

func (e *ToolError) Error() string { return e.Message }

// ToolResult is the outcome of a tool invocation: either a success payload
// (JSON rows or a confirmation) or a ToolError.
type ToolResult struct {
	Content string
	Err     *ToolError
	// SQL is the statement the tool sent to the store, if any.
	SQL string
}

// IsError reports whether the invocation failed.
func (r *ToolResult) IsError() bool { return r.Err != nil }

// Kind returns the error kind, or "" on success.
func (r *ToolResult) Kind() ToolErrorKind {
	if r.Err == nil {
		return ""
	}
	return r.Err.Kind
}

// Text returns the payload on success and the error message on failure.
func (r *ToolResult) Text() string {
	if r.Err != nil {
		return r.Err.Message
	}
	return r.Content
}

// Success builds a successful ToolResult.
func Success(content string) *ToolResult {
	return &ToolResult{Content: content}
}

// WithSQL records the statement the tool issued and returns r.
func (r *ToolResult) WithSQL(sql string) *ToolResult {
	r.SQL = sql
	return r
}

// Failure builds a failed ToolResult.
func Failure(kind ToolErrorKind, msg string) *ToolResult {
	return &ToolResult{Err: &ToolError{Kind: kind, Message: msg}}
}

// Invocation records one dispatched tool call: the name, the arguments
// actually used and the result.
type Invocation struct {
	ID     string
	Name   string
	Args   json.RawMessage
	Result *ToolResult
	Auto   bool // issued by the driver rather than requested by the model
}
