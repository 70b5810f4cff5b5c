package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"iter"

	"github.com/fwojciec/dataagent"
	"github.com/google/uuid"
	"google.golang.org/genai"
)

// stream implements [dataagent.Stream] by wrapping the genai SDK's streaming
// iterator. Each pulled chunk is translated into zero or more events which
// are queued and handed out one per Next call.
type stream struct {
	ctx     context.Context
	pull    func() (*genai.GenerateContentResponse, error, bool)
	stop    func()
	state   dataagent.StreamState
	pending []dataagent.Event
	msg     dataagent.AssistantMessage
	finish  genai.FinishReason
	err     error
}

// Interface compliance check.
var _ dataagent.Stream = (*stream)(nil)

// NewStreamFromIter wraps a genai response iterator as a [dataagent.Stream].
// Exported for testing.
func NewStreamFromIter(ctx context.Context, seq iter.Seq2[*genai.GenerateContentResponse, error]) dataagent.Stream {
	next, stop := iter.Pull2(seq)
	return &stream{
		ctx:   ctx,
		pull:  next,
		stop:  stop,
		state: dataagent.StreamStateNew,
	}
}

func (s *stream) Next() (dataagent.Event, error) {
	switch s.state {
	case dataagent.StreamStateComplete:
		return nil, io.EOF
	case dataagent.StreamStateError:
		return nil, s.err
	case dataagent.StreamStateClosed:
		return nil, fmt.Errorf("gemini: %w", dataagent.ErrStreamClosed)
	}
	s.state = dataagent.StreamStateStreaming

	for len(s.pending) == 0 {
		if err := s.ctx.Err(); err != nil {
			s.fail(fmt.Errorf("gemini: %w", err), dataagent.StopAborted)
			return nil, s.err
		}
		resp, err, ok := s.pull()
		if !ok {
			s.complete()
			return nil, io.EOF
		}
		if err != nil {
			s.fail(fmt.Errorf("gemini: %w", err), dataagent.StopError)
			return nil, s.err
		}
		s.handle(resp)
	}

	evt := s.pending[0]
	s.pending = s.pending[1:]
	return evt, nil
}

func (s *stream) handle(resp *genai.GenerateContentResponse) {
	if resp == nil {
		return
	}
	if u := resp.UsageMetadata; u != nil {
		s.msg.Usage = dataagent.Usage{
			InputTokens:  max(int(u.PromptTokenCount), 0),
			OutputTokens: max(int(u.CandidatesTokenCount), 0),
		}
	}
	if len(resp.Candidates) == 0 {
		return
	}
	cand := resp.Candidates[0]
	if cand.FinishReason != "" {
		s.finish = cand.FinishReason
	}
	if cand.Content == nil {
		return
	}
	for _, p := range cand.Content.Parts {
		switch {
		case p == nil || p.Thought:
		case p.FunctionCall != nil:
			s.toolCall(p.FunctionCall)
		case p.Text != "":
			s.text(p.Text)
		}
	}
}

// text appends to the trailing text block, starting one when the previous
// block is a tool call.
func (s *stream) text(delta string) {
	n := len(s.msg.Content)
	if n > 0 {
		if tb, ok := s.msg.Content[n-1].(dataagent.TextBlock); ok {
			tb.Text += delta
			s.msg.Content[n-1] = tb
			s.pending = append(s.pending, dataagent.EventTextDelta{Delta: delta})
			return
		}
	}
	s.msg.Content = append(s.msg.Content, dataagent.TextBlock{Text: delta})
	s.pending = append(s.pending, dataagent.EventTextDelta{Delta: delta})
}

func (s *stream) toolCall(fc *genai.FunctionCall) {
	id := fc.ID
	if id == "" {
		id = "call_" + uuid.NewString()
	}
	args := fc.Args
	if args == nil {
		args = map[string]any{}
	}
	raw, err := json.Marshal(args)
	if err != nil {
		raw = json.RawMessage(`{}`)
	}
	call := dataagent.ToolCallBlock{ID: id, Name: fc.Name, Arguments: raw}
	s.msg.Content = append(s.msg.Content, call)
	s.pending = append(s.pending,
		dataagent.EventToolCallBegin{ID: id, Name: fc.Name},
		dataagent.EventToolCallEnd{Call: call},
	)
}

func (s *stream) complete() {
	s.state = dataagent.StreamStateComplete
	s.msg.RawStopReason = string(s.finish)
	switch {
	case len(s.msg.ToolCalls()) > 0:
		s.msg.StopReason = dataagent.StopToolUse
	case s.finish == "" || s.finish == genai.FinishReasonStop:
		s.msg.StopReason = dataagent.StopEndTurn
	case s.finish == genai.FinishReasonMaxTokens:
		s.msg.StopReason = dataagent.StopLength
	default:
		s.msg.StopReason = dataagent.StopUnknown
	}
}

func (s *stream) fail(err error, reason dataagent.StopReason) {
	s.state = dataagent.StreamStateError
	s.err = err
	s.msg.StopReason = reason
	s.msg.RawStopReason = string(reason)
}

func (s *stream) State() dataagent.StreamState {
	return s.state
}

func (s *stream) Message() (dataagent.AssistantMessage, error) {
	if s.state == dataagent.StreamStateNew {
		return dataagent.AssistantMessage{}, fmt.Errorf("gemini: %w", dataagent.ErrStreamNotReady)
	}
	return s.msg, nil
}

func (s *stream) Close() error {
	if s.state != dataagent.StreamStateComplete && s.state != dataagent.StreamStateError {
		s.state = dataagent.StreamStateClosed
		s.msg.StopReason = dataagent.StopAborted
		s.msg.RawStopReason = "aborted"
	}
	s.stop()
	return nil
}
