package dataagent

import "time"

// Session is the dialogue with the remote model held by one agent.
type Session struct {
	ID           string
	Messages     []Message
	SystemPrompt string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Checkpoint returns the current length of the message list. Rollback
// truncates back to it.
func (s *Session) Checkpoint() int { return len(s.Messages) }

// Rollback discards every message appended after checkpoint n.
func (s *Session) Rollback(n int) {
	if n < 0 || n > len(s.Messages) {
		return
	}
	clear(s.Messages[n:])
	s.Messages = s.Messages[:n]
	s.UpdatedAt = time.Now()
}

// Append adds messages to the dialogue.
func (s *Session) Append(msgs ...Message) {
	s.Messages = append(s.Messages, msgs...)
	s.UpdatedAt = time.Now()
}
