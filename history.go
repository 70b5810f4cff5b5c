package dataagent

import (
	"encoding/json"
	"sync"
	"time"
)

// Turn is one entry of an agent's display history. Turns are never mutated
// after they are appended.
type Turn struct {
	Speaker     Speaker
	Text        string
	SQL         string          // generated or issued SQL, empty when none
	Preview     json.RawMessage // JSON array of row objects, nil when none
	Invocations []Invocation
	Err         string // visible error for an abandoned turn
	Timestamp   time.Time
}

// HasPreview reports whether the turn carries a tabular preview.
func (t Turn) HasPreview() bool { return len(t.Preview) > 0 }

// History is an append-only list of turns for one agent. It is safe for
// concurrent use.
type History struct {
	mu    sync.RWMutex
	turns []Turn
}

// Append adds a turn to the end of the history.
func (h *History) Append(t Turn) {
	if t.Timestamp.IsZero() {
		t.Timestamp = time.Now()
	}
	h.mu.Lock()
	h.turns = append(h.turns, t)
	h.mu.Unlock()
}

// Turns returns a copy of the recorded turns in order.
func (h *History) Turns() []Turn {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]Turn, len(h.turns))
	copy(out, h.turns)
	return out
}

// Len returns the number of recorded turns.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.turns)
}
