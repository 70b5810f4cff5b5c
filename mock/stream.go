package mock

import (
	"io"

	"github.com/fwojciec/dataagent"
)

// Interface compliance check.
var _ dataagent.Stream = (*Stream)(nil)

// Stream is a test double for dataagent.Stream.
// Set the function fields for the methods you need. NextFn and MessageFn
// panic when nil to catch missing setup. CloseFn and StateFn are nil-safe
// (no-op and zero value) because test code commonly calls defer stream.Close()
// and these methods rarely need custom behavior.
type Stream struct {
	NextFn    func() (dataagent.Event, error)
	StateFn   func() dataagent.StreamState
	MessageFn func() (dataagent.AssistantMessage, error)
	CloseFn   func() error
}

// Next delegates to NextFn.
func (s *Stream) Next() (dataagent.Event, error) {
	return s.NextFn()
}

// State delegates to StateFn. Returns StreamStateNew when StateFn is nil.
func (s *Stream) State() dataagent.StreamState {
	if s.StateFn == nil {
		return dataagent.StreamStateNew
	}
	return s.StateFn()
}

// Message delegates to MessageFn.
func (s *Stream) Message() (dataagent.AssistantMessage, error) {
	return s.MessageFn()
}

// Close delegates to CloseFn. Returns nil when CloseFn is not set.
func (s *Stream) Close() error {
	if s.CloseFn == nil {
		return nil
	}
	return s.CloseFn()
}

// Replay returns a Stream that plays msg back as a finished model turn:
// one text delta per text block, a begin/end pair per tool call, then
// io.EOF. Message returns msg once the events are drained.
func Replay(msg dataagent.AssistantMessage) *Stream {
	var events []dataagent.Event
	for _, b := range msg.Content {
		switch b := b.(type) {
		case dataagent.TextBlock:
			if b.Text != "" {
				events = append(events, dataagent.EventTextDelta{Delta: b.Text})
			}
		case dataagent.ToolCallBlock:
			events = append(events,
				dataagent.EventToolCallBegin{ID: b.ID, Name: b.Name},
				dataagent.EventToolCallEnd{Call: b},
			)
		}
	}

	state := dataagent.StreamStateNew
	return &Stream{
		NextFn: func() (dataagent.Event, error) {
			if len(events) == 0 {
				state = dataagent.StreamStateComplete
				return nil, io.EOF
			}
			state = dataagent.StreamStateStreaming
			evt := events[0]
			events = events[1:]
			return evt, nil
		},
		StateFn: func() dataagent.StreamState { return state },
		MessageFn: func() (dataagent.AssistantMessage, error) {
			if state == dataagent.StreamStateNew {
				return dataagent.AssistantMessage{}, dataagent.ErrStreamNotReady
			}
			return msg, nil
		},
	}
}
