package dataagent

// Event is a sealed interface representing a streaming event.
// Events are purely semantic. Transport/protocol errors come from
// Next()'s error return, not from events.
type Event interface {
	event()
}

// EventTextDelta represents a text content delta from the model.
type EventTextDelta struct {
	Delta string
}

func (EventTextDelta) event() {}

// EventToolCallBegin signals the start of a tool call.
type EventToolCallBegin struct {
	ID   string
	Name string
}

func (EventToolCallBegin) event() {}

// EventToolCallEnd signals the completion of a tool call with the assembled block.
type EventToolCallEnd struct {
	Call ToolCallBlock
}

func (EventToolCallEnd) event() {}

// EventToolResult carries the outcome of one tool invocation. Auto-issued
// invocations have an empty ID.
type EventToolResult struct {
	ID       string
	ToolName string
	Content  string
	Kind     ToolErrorKind
}

func (EventToolResult) event() {}

// IsError reports whether the invocation failed.
func (e EventToolResult) IsError() bool { return e.Kind != "" }

// EventNote carries an explanatory note produced by the driver itself, such
// as the outcome of an automatic follow-up action.
type EventNote struct {
	Text string
}

func (EventNote) event() {}

// EventTurnState signals a transition of the conversation driver.
type EventTurnState struct {
	State TurnState
}

func (EventTurnState) event() {}

// TurnState is the state of a conversation driver.
type TurnState int

const (
	TurnIdle TurnState = iota
	TurnAwaitingModel
	TurnDispatchingTools
	TurnAwaitingSummary
)

func (s TurnState) String() string {
	switch s {
	case TurnIdle:
		return "idle"
	case TurnAwaitingModel:
		return "awaiting model"
	case TurnDispatchingTools:
		return "dispatching tools"
	case TurnAwaitingSummary:
		return "awaiting summary"
	default:
		return "unknown"
	}
}

// Interface compliance checks.
var (
	_ Event = EventTextDelta{}
	_ Event = EventToolCallBegin{}
	_ Event = EventToolCallEnd{}
	_ Event = EventToolResult{}
	_ Event = EventNote{}
	_ Event = EventTurnState{}
)
