// Package bubbletea provides the chat TUI for the data agents: one tab per
// agent, streamed replies, tool call annotations, generated SQL and a
// tabular preview of the last result.
package bubbletea

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/dataagent"
)

// RunFunc runs one user turn for an agent. The onEvent callback is called
// for each streaming event. It blocks until the turn completes or the
// context is cancelled.
type RunFunc func(ctx context.Context, prompt string, onEvent func(dataagent.Event)) (dataagent.Turn, error)

// Tab is one agent shown in the TUI.
type Tab struct {
	Name string
	Run  RunFunc
	// Turns returns the agent's history, replayed when the TUI starts.
	// Nil means no history.
	Turns func() []dataagent.Turn
}

// Setup prepares the data store. Ready reports whether the prototype
// tables exist; Init creates them. Either may be nil.
type Setup struct {
	Ready func(ctx context.Context) (bool, error)
	Init  func(ctx context.Context) error
}

// Run creates and runs the Bubble Tea TUI program. It blocks until the program
// exits. The context is used for graceful shutdown: when cancelled, the
// program quits.
func Run(ctx context.Context, m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	go func() {
		<-ctx.Done()
		p.Quit()
	}()
	_, err := p.Run()
	return err
}

// StreamEventMsg wraps a streaming event for delivery to the Bubble Tea model.
type StreamEventMsg struct {
	Event dataagent.Event
}

// AgentDoneMsg signals that a turn has completed.
type AgentDoneMsg struct {
	Turn dataagent.Turn
	Err  error
}

// ReadyMsg reports whether the data store is initialized.
type ReadyMsg struct {
	Ready bool
	Err   error
}

// InitDoneMsg signals that database initialization has finished.
type InitDoneMsg struct {
	Err error
}
