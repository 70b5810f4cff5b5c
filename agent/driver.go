// Package agent drives the conversation between a Provider and a Toolset
// on behalf of one agent role.
package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/fwojciec/dataagent"
	"github.com/fwojciec/dataagent/datatool"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DefaultMaxRounds is the number of tool-calling model turns allowed per
// user turn before the driver moves on to the summary.
const DefaultMaxRounds = 8

// SummaryPrompt is sent once the model stops calling tools.
const SummaryPrompt = "Summarize the final result of all operations in detail from the tool outputs received."

const tracerName = "github.com/fwojciec/dataagent/agent"

// Driver holds one agent's dialogue with the model and its display history.
// Turns are serialized: concurrent Run calls wait for each other.
type Driver struct {
	mu        sync.Mutex
	role      Role
	provider  dataagent.Provider
	tools     dataagent.Toolset
	offered   []dataagent.Tool
	store     map[string]bool
	cfg       dataagent.Config
	session   *dataagent.Session
	history   dataagent.History
	logger    *slog.Logger
	tracer    trace.Tracer
	maxRounds int
}

// Option configures a Driver.
type Option func(*Driver)

// WithLogger sets the driver's logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(d *Driver) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithTracer sets the tracer used for turn and tool spans. The default is
// the global tracer provider's.
func WithTracer(t trace.Tracer) Option {
	return func(d *Driver) {
		if t != nil {
			d.tracer = t
		}
	}
}

// WithMaxRounds caps the tool-calling model turns per user turn. Values
// below one are ignored.
func WithMaxRounds(n int) Option {
	return func(d *Driver) {
		if n > 0 {
			d.maxRounds = n
		}
	}
}

// New creates a Driver for role. Only the tools of toolset that role offers
// are declared to the model; the rest stay available to the driver itself.
func New(role Role, provider dataagent.Provider, toolset dataagent.Toolset, cfg dataagent.Config, opts ...Option) *Driver {
	now := time.Now()
	d := &Driver{
		role:     role,
		provider: provider,
		tools:    toolset,
		store:    make(map[string]bool),
		cfg:      cfg,
		session: &dataagent.Session{
			ID:        uuid.NewString(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		logger:    slog.New(slog.DiscardHandler),
		tracer:    otel.Tracer(tracerName),
		maxRounds: DefaultMaxRounds,
	}
	for _, t := range toolset.Tools() {
		d.store[t.Name] = t.Store
		if role.Offers(t.Name) {
			d.offered = append(d.offered, t)
		}
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Role returns the driver's role.
func (d *Driver) Role() Role { return d.role }

// Tools returns the tools declared to the model.
func (d *Driver) Tools() []dataagent.Tool { return d.offered }

// Turns returns the display history.
func (d *Driver) Turns() []dataagent.Turn { return d.history.Turns() }

// Messages returns a copy of the dialogue sent to the model so far.
func (d *Driver) Messages() []dataagent.Message {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]dataagent.Message, len(d.session.Messages))
	copy(out, d.session.Messages)
	return out
}

// RunOption configures a single Run invocation.
type RunOption func(*runConfig)

type runConfig struct {
	onEvent func(dataagent.Event)
	model   string
}

// WithEventHandler sets a callback that receives each streaming event during
// the run. If nil or not set, events are silently discarded.
func WithEventHandler(h func(dataagent.Event)) RunOption {
	return func(c *runConfig) {
		c.onEvent = h
	}
}

// WithModel sets the model ID for provider requests during this run.
// Empty string means the configured model.
func WithModel(model string) RunOption {
	return func(c *runConfig) {
		if model != "" {
			c.model = model
		}
	}
}

func (c *runConfig) emit(evt dataagent.Event) {
	if c.onEvent != nil {
		c.onEvent(evt)
	}
}

// Run executes one user turn: it sends the context message and prompt,
// dispatches every tool call the model makes, asks for a summary and
// records the result in the history.
//
// A fault talking to the model abandons the turn. The dialogue is restored
// to where it was before the turn, the returned Turn carries the visible
// error in Err, and the error is returned. Tool side effects already
// applied are kept, and the model is told about them in a note.
func (d *Driver) Run(ctx context.Context, prompt string, opts ...RunOption) (dataagent.Turn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	cfg := runConfig{model: d.cfg.Model}
	for _, opt := range opts {
		opt(&cfg)
	}

	ctx, span := d.tracer.Start(ctx, "agent.turn", trace.WithAttributes(
		attribute.String("agent.role", d.role.Key),
		attribute.String("agent.session", d.session.ID),
	))
	defer span.End()

	d.history.Append(dataagent.Turn{Speaker: dataagent.SpeakerUser, Text: prompt})
	d.logger.InfoContext(ctx, "turn started", "agent", d.role.Key)
	start := time.Now()

	t := &turn{prompt: prompt, cfg: &cfg}
	checkpoint := d.session.Checkpoint()
	err := d.converse(ctx, t)
	if err != nil {
		d.session.Rollback(checkpoint)
		if note := appliedNote(t.invocations); note != "" {
			d.session.Append(dataagent.NewUserText(note))
		}
		result := dataagent.Turn{
			Speaker:     dataagent.SpeakerAgent,
			Text:        t.transcript.String(),
			Invocations: t.invocations,
			Err:         fmt.Sprintf("Error communicating with %s: %v", d.role.Name, err),
		}
		d.history.Append(result)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		d.logger.ErrorContext(ctx, "turn failed", "agent", d.role.Key, "error", err)
		cfg.emit(dataagent.EventTurnState{State: dataagent.TurnIdle})
		return result, fmt.Errorf("agent: %s: %w", d.role.Key, err)
	}

	result := dataagent.Turn{
		Speaker:     dataagent.SpeakerAgent,
		Text:        t.transcript.String(),
		SQL:         t.sql(),
		Preview:     t.preview,
		Invocations: t.invocations,
	}
	d.history.Append(result)
	span.SetAttributes(attribute.Int("agent.invocations", len(t.invocations)))
	d.logger.InfoContext(ctx, "turn finished",
		"agent", d.role.Key,
		"invocations", len(t.invocations),
		"duration", time.Since(start),
	)
	cfg.emit(dataagent.EventTurnState{State: dataagent.TurnIdle})
	return result, nil
}

func (d *Driver) converse(ctx context.Context, t *turn) error {
	t.cfg.emit(dataagent.EventTurnState{State: dataagent.TurnAwaitingModel})
	d.session.Append(dataagent.NewUserText(d.contextMessage(), t.prompt))

	for rounds := 0; ; {
		msg, err := d.stream(ctx, t, false)
		if err != nil {
			return err
		}
		t.write(msg.Text())
		calls := msg.ToolCalls()
		if len(calls) == 0 {
			break
		}

		t.cfg.emit(dataagent.EventTurnState{State: dataagent.TurnDispatchingTools})
		for _, call := range calls {
			d.dispatch(ctx, t, call)
		}
		rounds++
		if rounds >= d.maxRounds {
			d.note(t, fmt.Sprintf("Stopped after %d rounds of tool calls.", rounds))
			break
		}
		t.cfg.emit(dataagent.EventTurnState{State: dataagent.TurnAwaitingModel})
	}

	t.cfg.emit(dataagent.EventTurnState{State: dataagent.TurnAwaitingSummary})
	d.session.Append(dataagent.NewUserText(SummaryPrompt))
	msg, err := d.stream(ctx, t, true)
	if err != nil {
		return err
	}
	t.write(msg.Text())
	return nil
}

// stream sends the dialogue to the provider, forwards the events and
// appends the assembled reply.
func (d *Driver) stream(ctx context.Context, t *turn, summary bool) (dataagent.AssistantMessage, error) {
	if err := ctx.Err(); err != nil {
		return dataagent.AssistantMessage{}, err
	}
	req := dataagent.Request{
		Model:        t.cfg.model,
		SystemPrompt: d.session.SystemPrompt,
		Messages:     d.session.Messages,
		Tools:        d.offered,
		DisableTools: summary,
	}
	s, err := d.provider.Stream(ctx, req)
	if err != nil {
		return dataagent.AssistantMessage{}, err
	}
	defer s.Close()

	var streamErr error
	for {
		evt, err := s.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			streamErr = err
			break
		}
		t.cfg.emit(evt)
	}
	if streamErr != nil {
		return dataagent.AssistantMessage{}, streamErr
	}
	msg, err := s.Message()
	if err != nil {
		return dataagent.AssistantMessage{}, err
	}
	if msg.StopReason == dataagent.StopError || msg.StopReason == dataagent.StopAborted {
		return dataagent.AssistantMessage{}, fmt.Errorf("model stopped: %s", msg.RawStopReason)
	}
	d.session.Append(msg)
	return msg, nil
}

// dispatch runs one model-requested tool call and queues its result for
// the model.
func (d *Driver) dispatch(ctx context.Context, t *turn, call dataagent.ToolCallBlock) {
	args := call.Arguments
	var result *dataagent.ToolResult
	switch {
	case !d.role.Offers(call.Name):
		result = dataagent.Failure(dataagent.ToolErrUnsupported,
			fmt.Sprintf("Tool `%s` not supported by %s", call.Name, d.role.Name))
	case call.Name == datatool.ParseCSV && d.role.SubstituteCSV:
		var ok bool
		args, ok = d.substituteCSV(t.prompt, args)
		if !ok {
			result = dataagent.Failure(dataagent.ToolErrMissingInput,
				"Error: no CSV content found in the request or in the sample data.")
		}
	}
	if result == nil {
		if d.store[call.Name] {
			args = datatool.BindAddress(args, d.cfg.DatabaseURL)
		}
		result = d.execute(ctx, call.Name, args)
	}

	inv := dataagent.Invocation{ID: call.ID, Name: call.Name, Args: args, Result: result}
	t.record(inv)
	d.session.Append(dataagent.ToolResultMessage{
		ToolCallID: call.ID,
		ToolName:   call.Name,
		Content:    result.Text(),
		IsError:    result.IsError(),
		Timestamp:  time.Now(),
	})

	if call.Name == datatool.ParseCSV && d.role.AutoInsert && !result.IsError() {
		d.autoInsert(ctx, t, result.Content)
	}
}

// conformer is implemented by toolsets that can check arguments against
// the declared parameters of a tool.
type conformer interface {
	Conforms(name string, args json.RawMessage) error
}

// execute invokes the toolset inside a span. Arguments that do not conform
// are logged and passed through unchanged. An executor error is turned into
// a failed result so the turn can continue.
func (d *Driver) execute(ctx context.Context, name string, args json.RawMessage) *dataagent.ToolResult {
	ctx, span := d.tracer.Start(ctx, "agent.tool", trace.WithAttributes(
		attribute.String("tool.name", name),
	))
	defer span.End()

	if c, ok := d.tools.(conformer); ok {
		if err := c.Conforms(name, args); err != nil {
			span.SetAttributes(attribute.String("tool.args_mismatch", err.Error()))
			d.logger.WarnContext(ctx, "tool arguments do not match the declared parameters",
				"agent", d.role.Key,
				"tool", name,
				"error", err,
			)
		}
	}

	start := time.Now()
	result, err := d.tools.Execute(ctx, name, args)
	if err != nil {
		result = dataagent.Failure(dataagent.ToolErrStore, fmt.Sprintf("Error invoking tool `%s`: %v", name, err))
	}
	if result.IsError() {
		span.SetStatus(codes.Error, result.Err.Message)
		span.SetAttributes(attribute.String("tool.error_kind", string(result.Kind())))
	}
	d.logger.InfoContext(ctx, "tool dispatched",
		"agent", d.role.Key,
		"tool", name,
		"duration", time.Since(start),
		"error_kind", string(result.Kind()),
	)
	return result
}

// appliedNote tells the model which tool calls of an abandoned turn took
// effect, since their results are no longer part of the dialogue.
func appliedNote(invocations []dataagent.Invocation) string {
	var b strings.Builder
	for _, inv := range invocations {
		if inv.Result.IsError() {
			continue
		}
		fmt.Fprintf(&b, "\n- `%s` with args `%s`", inv.Name, compact(inv.Args))
	}
	if b.Len() == 0 {
		return ""
	}
	return "Note: the previous request failed before it completed. These tool calls had already been applied:" + b.String()
}

// note records a driver note in the transcript and tells the model about it.
func (d *Driver) note(t *turn, text string) {
	t.writeNote(text)
	d.session.Append(dataagent.NewUserText("Note: " + text))
	t.cfg.emit(dataagent.EventNote{Text: text})
}

func (d *Driver) contextMessage() string {
	names := make([]string, len(d.offered))
	for i, tool := range d.offered {
		names[i] = "`" + tool.Name + "`"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "You are the %s. %s ", d.role.Name, d.role.Purpose)
	fmt.Fprintf(&b, "You have access to a SQL database at '%s'. ", d.cfg.DatabaseURL)
	if len(names) > 0 {
		fmt.Fprintf(&b, "You can use the following tools: %s. ", strings.Join(names, ", "))
	}
	b.WriteString("Always use the provided database URL for all database operations.")
	return b.String()
}
