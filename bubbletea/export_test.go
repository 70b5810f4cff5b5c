package bubbletea

// RenderContent exports renderContent for testing.
func RenderContent(m Model) string {
	return m.renderContent()
}

// SetRunning puts the model in a running state.
func SetRunning(m Model) Model {
	m.running = true
	return m
}

// Focus returns the focused block index of the current tab.
func Focus(m Model) int {
	if ts := m.current(); ts != nil {
		return ts.focus
	}
	return -1
}

// SetRunningWithCancel puts the model in a running state with a cancel
// function.
func SetRunningWithCancel(m Model, cancel func()) Model {
	m.running = true
	m.cancel = cancel
	return m
}
