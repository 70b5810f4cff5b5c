package mock

import (
	"context"
	"encoding/json"

	"github.com/fwojciec/dataagent"
)

var _ dataagent.Toolset = (*Toolset)(nil)

// Toolset is a test double for dataagent.Toolset. ToolsValue is returned
// from Tools; ExecuteFn must be set before calling Execute.
type Toolset struct {
	ToolsValue []dataagent.Tool
	ExecuteFn  func(ctx context.Context, name string, args json.RawMessage) (*dataagent.ToolResult, error)
}

// Tools returns ToolsValue.
func (s *Toolset) Tools() []dataagent.Tool {
	return s.ToolsValue
}

// Execute delegates to ExecuteFn.
func (s *Toolset) Execute(ctx context.Context, name string, args json.RawMessage) (*dataagent.ToolResult, error) {
	return s.ExecuteFn(ctx, name, args)
}
