package datatool

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/fwojciec/dataagent"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"
)

// Compile-time interface check.
var _ dataagent.Toolset = (*Registry)(nil)

// Names lists every tool this package implements.
var Names = []string{RunSQL, GetSchema, CreateTable, InsertRows, ParseCSV}

func newHandler(name string, store dataagent.Store) (Handler, bool) {
	switch name {
	case RunSQL:
		return runSQL{store: store}, true
	case GetSchema:
		return getSchema{store: store}, true
	case CreateTable:
		return createTable{store: store}, true
	case InsertRows:
		return insertRows{store: store}, true
	case ParseCSV:
		return parseCSV{}, true
	default:
		return nil, false
	}
}

// Registry is a fixed, ordered set of tools bound to one store. It is
// immutable after construction and safe for concurrent use.
type Registry struct {
	store    dataagent.Store
	handlers []Handler
	byName   map[string]Handler
	schemas  map[string]*jsonschema.Schema
}

// NewRegistry resolves names to handlers bound to store. Unknown or
// duplicate names and invalid parameter schemas are construction errors.
func NewRegistry(store dataagent.Store, names ...string) (*Registry, error) {
	r := &Registry{
		store:   store,
		byName:  make(map[string]Handler, len(names)),
		schemas: make(map[string]*jsonschema.Schema, len(names)),
	}
	for _, name := range names {
		if _, dup := r.byName[name]; dup {
			return nil, fmt.Errorf("datatool: duplicate tool %q: %w", name, dataagent.ErrValidation)
		}
		h, ok := newHandler(name, store)
		if !ok {
			return nil, fmt.Errorf("datatool: %q: %w", name, dataagent.ErrUnknownTool)
		}
		sch, err := compileSchema(h.Tool().Parameters)
		if err != nil {
			return nil, fmt.Errorf("datatool: tool %s: invalid parameter schema: %w", name, err)
		}
		r.handlers = append(r.handlers, h)
		r.byName[name] = h
		r.schemas[name] = sch
	}
	return r, nil
}

// Tools returns the tool descriptors in registration order.
func (r *Registry) Tools() []dataagent.Tool {
	tools := make([]dataagent.Tool, len(r.handlers))
	for i, h := range r.handlers {
		tools[i] = h.Tool()
	}
	return tools
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.byName[name]
	return ok
}

// Address returns the address of the bound store.
func (r *Registry) Address() string { return r.store.Address() }

// Execute invokes the named tool. Store tools have their database_url
// argument bound to the registry's store before the handler runs. The
// returned error is always nil: failures are reported in the result.
func (r *Registry) Execute(ctx context.Context, name string, args json.RawMessage) (*dataagent.ToolResult, error) {
	h, ok := r.byName[name]
	if !ok {
		return dataagent.Failure(dataagent.ToolErrUnsupported, fmt.Sprintf("Tool `%s` not supported", name)), nil
	}
	if h.Tool().Store {
		args = BindAddress(args, r.store.Address())
	}
	return h.Invoke(ctx, args), nil
}

// Conforms checks args against the declared parameters of name. Execute
// does not call it: arguments are passed through as given, and the agent
// driver reports a mismatch without rejecting the call.
func (r *Registry) Conforms(name string, args json.RawMessage) error {
	sch, ok := r.schemas[name]
	if !ok {
		return fmt.Errorf("datatool: %q: %w", name, dataagent.ErrUnknownTool)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(args))
	if err != nil {
		return fmt.Errorf("datatool: %s arguments: %w", name, err)
	}
	return sch.Validate(doc)
}

func compileSchema(schema json.RawMessage) (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schema))
	if err != nil {
		return nil, err
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource("mem://schema.json", doc); err != nil {
		return nil, err
	}
	return c.Compile("mem://schema.json")
}
