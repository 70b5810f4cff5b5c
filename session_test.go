package dataagent_test

import (
	"sync"
	"testing"

	"github.com/fwojciec/dataagent"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_Rollback(t *testing.T) {
	t.Parallel()

	var s dataagent.Session
	s.Append(dataagent.NewUserText("first"))
	cp := s.Checkpoint()
	s.Append(dataagent.NewUserText("second"), dataagent.AssistantMessage{})

	s.Rollback(cp)

	require.Len(t, s.Messages, 1)
	assert.Equal(t, dataagent.NewUserText("first").Content, s.Messages[0].(dataagent.UserMessage).Content)
}

func TestSession_RollbackOutOfRange(t *testing.T) {
	t.Parallel()

	var s dataagent.Session
	s.Append(dataagent.NewUserText("only"))
	s.Rollback(5)
	assert.Len(t, s.Messages, 1)
}

func TestHistory_AppendOnly(t *testing.T) {
	t.Parallel()

	var h dataagent.History
	h.Append(dataagent.Turn{Speaker: dataagent.SpeakerUser, Text: "load customers"})
	h.Append(dataagent.Turn{Speaker: dataagent.SpeakerAgent, Text: "done", SQL: "SELECT 1;"})

	turns := h.Turns()
	require.Len(t, turns, 2)
	assert.Equal(t, dataagent.SpeakerUser, turns[0].Speaker)
	assert.Equal(t, "SELECT 1;", turns[1].SQL)
	assert.False(t, turns[0].Timestamp.IsZero())

	// Mutating the returned copy leaves the history untouched.
	turns[0].Text = "changed"
	assert.Equal(t, "load customers", h.Turns()[0].Text)
}

func TestHistory_ConcurrentAppend(t *testing.T) {
	t.Parallel()

	var h dataagent.History
	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.Append(dataagent.Turn{Speaker: dataagent.SpeakerAgent})
		}()
	}
	wg.Wait()
	assert.Equal(t, 20, h.Len())
}

func TestTurn_HasPreview(t *testing.T) {
	t.Parallel()
	assert.False(t, dataagent.Turn{}.HasPreview())
	assert.True(t, dataagent.Turn{Preview: []byte(`[]`)}.HasPreview())
}
