package mock_test

import (
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/fwojciec/dataagent"
	"github.com/fwojciec/dataagent/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStream_Delegates(t *testing.T) {
	t.Parallel()

	closed := false
	s := mock.Stream{
		NextFn:  func() (dataagent.Event, error) { return dataagent.EventTextDelta{Delta: "SELECT"}, nil },
		StateFn: func() dataagent.StreamState { return dataagent.StreamStateStreaming },
		MessageFn: func() (dataagent.AssistantMessage, error) {
			return dataagent.AssistantMessage{StopReason: dataagent.StopEndTurn}, nil
		},
		CloseFn: func() error {
			closed = true
			return nil
		},
	}

	evt, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, dataagent.EventTextDelta{Delta: "SELECT"}, evt)
	assert.Equal(t, dataagent.StreamStateStreaming, s.State())
	msg, err := s.Message()
	require.NoError(t, err)
	assert.Equal(t, dataagent.StopEndTurn, msg.StopReason)
	require.NoError(t, s.Close())
	assert.True(t, closed)
}

func TestStream_Defaults(t *testing.T) {
	t.Parallel()

	s := mock.Stream{}
	assert.Equal(t, dataagent.StreamStateNew, s.State())
	assert.NoError(t, s.Close())
	assert.Panics(t, func() { _, _ = s.Next() })
	assert.Panics(t, func() { _, _ = s.Message() })
}

func TestStream_CloseError(t *testing.T) {
	t.Parallel()

	wantErr := errors.New("connection reset")
	s := mock.Stream{CloseFn: func() error { return wantErr }}
	assert.ErrorIs(t, s.Close(), wantErr)
}

func TestReplay(t *testing.T) {
	t.Parallel()

	t.Run("text then tool call", func(t *testing.T) {
		t.Parallel()
		call := dataagent.ToolCallBlock{ID: "c1", Name: "get_schema", Arguments: json.RawMessage(`{"table_name":"stg_sales"}`)}
		msg := dataagent.AssistantMessage{
			Content:    []dataagent.ContentBlock{dataagent.TextBlock{Text: "Checking the schema."}, call},
			StopReason: dataagent.StopToolUse,
		}
		s := mock.Replay(msg)

		_, err := s.Message()
		require.ErrorIs(t, err, dataagent.ErrStreamNotReady)

		var got []dataagent.Event
		for {
			evt, err := s.Next()
			if errors.Is(err, io.EOF) {
				break
			}
			require.NoError(t, err)
			got = append(got, evt)
		}
		assert.Equal(t, []dataagent.Event{
			dataagent.EventTextDelta{Delta: "Checking the schema."},
			dataagent.EventToolCallBegin{ID: "c1", Name: "get_schema"},
			dataagent.EventToolCallEnd{Call: call},
		}, got)
		assert.Equal(t, dataagent.StreamStateComplete, s.State())

		replayed, err := s.Message()
		require.NoError(t, err)
		assert.Equal(t, msg, replayed)
	})

	t.Run("empty message ends immediately", func(t *testing.T) {
		t.Parallel()
		s := mock.Replay(dataagent.AssistantMessage{StopReason: dataagent.StopEndTurn})
		_, err := s.Next()
		assert.ErrorIs(t, err, io.EOF)
		assert.Equal(t, dataagent.StreamStateComplete, s.State())
	})
}
