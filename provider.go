package dataagent

import "context"

// StreamState indicates the current state of a Stream.
type StreamState int

const (
	StreamStateNew       StreamState = iota // Before Next() is ever called.
	StreamStateStreaming                    // Mid-stream, receiving deltas.
	StreamStateComplete                     // Next() returned io.EOF.
	StreamStateError                        // Next() returned non-EOF error.
	StreamStateClosed                       // Close() called before terminal state.
)

// Stream is one model turn, delivered as a pull-based iterator of events.
// Streaming and non-streaming backends both implement it: a backend that only
// produces complete responses emits the whole text as a single delta.
// Cancellation flows through the context passed to Provider.Stream().
//
// Message() returns the assembled AssistantMessage. Behavior by stream state:
//   - StreamStateComplete: complete message, nil error.
//   - StreamStateError: partial message, nil error. StopReason is StopError.
//   - StreamStateStreaming: partial message, nil error.
//   - StreamStateNew: zero-value message, ErrStreamNotReady.
//   - StreamStateClosed: partial message with StopReason = StopAborted.
type Stream interface {
	Next() (Event, error)
	State() StreamState
	Message() (AssistantMessage, error)
	Close() error
}

// Provider is the remote model boundary.
type Provider interface {
	Stream(ctx context.Context, req Request) (Stream, error)
}
