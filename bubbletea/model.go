package bubbletea

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/dataagent"
)

var _ tea.Model = Model{}

// InitCommand initializes the prototype database from the input line.
const InitCommand = "/init"

const idleHint = "Enter to send, Ctrl+N/Ctrl+P to switch agent, " + InitCommand + " to set up the database, Ctrl+C to quit"

// Model is the Bubble Tea model for the data agent TUI.
type Model struct {
	// Input is the text input component. Exported for test access.
	Input textinput.Model
	// Viewport is the scrollable output area. Exported for test access.
	Viewport viewport.Model

	tabs   []*tabState
	active int
	setup  Setup
	theme  dataagent.Theme
	styles Styles

	initialized bool
	notice      string
	state       dataagent.TurnState

	running bool
	cancel  context.CancelFunc
	eventCh chan dataagent.Event
	doneCh  chan AgentDoneMsg
	err     error
	ready   bool
}

// tabState is the conversation display of one agent.
type tabState struct {
	tab    Tab
	blocks []MessageBlock
	focus  int // index of focused collapsible block (-1 = none)

	// text receives deltas until a tool call, note or summary starts a
	// new text block.
	text      *AssistantTextBlock
	toolCalls map[string]*ToolCallBlock
}

// New creates a new TUI Model with one tab per agent.
func New(tabs []Tab, setup Setup, theme dataagent.Theme) Model {
	ti := textinput.New()
	ti.Placeholder = "Ask the agent..."
	ti.Prompt = ""
	ti.Focus()
	ti.CharLimit = 0

	m := Model{
		Input:       ti,
		setup:       setup,
		theme:       theme,
		styles:      NewStyles(theme),
		initialized: setup.Ready == nil,
	}
	for _, t := range tabs {
		m.tabs = append(m.tabs, &tabState{tab: t, focus: -1, toolCalls: make(map[string]*ToolCallBlock)})
	}
	return m
}

// Running returns whether an agent turn is in progress.
func (m Model) Running() bool { return m.running }

// Err returns the last error, if any.
func (m Model) Err() error { return m.err }

// Active returns the index of the selected agent tab.
func (m Model) Active() int { return m.active }

// Initialized reports whether the database is known to be initialized.
func (m Model) Initialized() bool { return m.initialized }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	if m.setup.Ready == nil {
		return textinput.Blink
	}
	return tea.Batch(textinput.Blink, checkReady(m.setup.Ready))
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m = m.handleWindowSize(msg)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case ReadyMsg:
		switch {
		case msg.Err != nil:
			m.err = msg.Err
		case !msg.Ready:
			m.notice = "Database not initialized. Run " + InitCommand + " first."
		default:
			m.initialized = true
		}
		return m, nil

	case InitDoneMsg:
		m.running = false
		if msg.Err != nil {
			m.err = msg.Err
		} else {
			m.initialized = true
			m.notice = "Database initialized."
		}
		return m, m.Input.Focus()

	case StreamEventMsg:
		m = m.processEvent(msg.Event)
		m.refresh()
		if m.eventCh != nil {
			return m, listenForEvent(m.eventCh, m.doneCh)
		}
		return m, nil

	case AgentDoneMsg:
		m = m.finishTurn(msg)
		m.refresh()
		cmds = append(cmds, m.Input.Focus())
		return m, tea.Batch(cmds...)
	}

	// Viewport always receives messages for scrolling (keyboard and mouse).
	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	cmds = append(cmds, cmd)

	if !m.running {
		m.Input, cmd = m.Input.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var b strings.Builder
	b.WriteString(m.tabBar())
	b.WriteString("\n")
	b.WriteString(m.Viewport.View())
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.Input.View())
	return b.String()
}

func (m Model) handleWindowSize(msg tea.WindowSizeMsg) Model {
	const chrome = 5 // tab bar, status line, input and separators
	vpHeight := max(msg.Height-chrome, 1)

	if !m.ready {
		m.Viewport = viewport.New(msg.Width, vpHeight)
		for _, ts := range m.tabs {
			m.replay(ts)
		}
		m.ready = true
	} else {
		m.Viewport.Width = msg.Width
		m.Viewport.Height = vpHeight
	}
	m.Input.Width = msg.Width
	m.refresh()
	return m
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		if m.running {
			if m.cancel != nil {
				m.cancel()
			}
			return m, nil
		}
		return m, tea.Quit

	case tea.KeyEnter:
		if m.running {
			return m, nil
		}
		text := strings.TrimSpace(m.Input.Value())
		if text == "" {
			return m, nil
		}
		return m.submitInput(text)

	case tea.KeyCtrlN, tea.KeyCtrlP:
		if m.running || len(m.tabs) == 0 {
			return m, nil
		}
		step := 1
		if msg.Type == tea.KeyCtrlP {
			step = len(m.tabs) - 1
		}
		m.active = (m.active + step) % len(m.tabs)
		m.refresh()
		return m, nil

	case tea.KeyTab:
		if ts := m.current(); !m.running && ts != nil && ts.focus >= 0 {
			block, cmd := ts.blocks[ts.focus].Update(ToggleMsg{})
			ts.blocks[ts.focus] = block
			m.Viewport.SetContent(m.renderContent())
			return m, cmd
		}
		return m, nil

	case tea.KeyShiftTab:
		if ts := m.current(); !m.running && ts != nil {
			ts.cycleFocusPrev()
			m.Viewport.SetContent(m.renderContent())
		}
		return m, nil
	}

	// When idle, pass keys to both input (for typing) and viewport (for
	// scrolling). Character keys go to the input only.
	if !m.running {
		var cmd tea.Cmd
		var cmds []tea.Cmd

		if msg.Type != tea.KeyRunes {
			m.Viewport, cmd = m.Viewport.Update(msg)
			cmds = append(cmds, cmd)
		}

		m.Input, cmd = m.Input.Update(msg)
		cmds = append(cmds, cmd)

		return m, tea.Batch(cmds...)
	}

	return m, nil
}

func (m Model) submitInput(text string) (tea.Model, tea.Cmd) {
	m.Input.SetValue("")
	m.err = nil
	m.notice = ""

	if strings.HasPrefix(text, "/") {
		return m.command(text)
	}
	if !m.initialized {
		m.notice = "Database not initialized. Run " + InitCommand + " first."
		return m, nil
	}
	ts := m.current()
	if ts == nil {
		return m, nil
	}

	ts.blocks = append(ts.blocks, NewUserMessageBlock(text, m.styles))
	ts.text = nil
	ts.toolCalls = make(map[string]*ToolCallBlock)
	m.refresh()

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.eventCh = make(chan dataagent.Event, 256)
	m.doneCh = make(chan AgentDoneMsg, 1)
	m.running = true
	m.Input.Blur()

	return m, tea.Batch(
		startAgent(ts.tab.Run, ctx, text, m.eventCh, m.doneCh),
		listenForEvent(m.eventCh, m.doneCh),
	)
}

func (m Model) command(text string) (tea.Model, tea.Cmd) {
	switch strings.Fields(text)[0] {
	case InitCommand:
		if m.setup.Init == nil {
			m.notice = "Database initialization is not available."
			return m, nil
		}
		m.running = true
		m.notice = "Initializing database..."
		m.Input.Blur()
		return m, runInit(m.setup.Init)
	default:
		m.notice = fmt.Sprintf("Unknown command %s", text)
		return m, nil
	}
}

func (m Model) current() *tabState {
	if len(m.tabs) == 0 {
		return nil
	}
	return m.tabs[m.active]
}

// replay creates blocks from an agent's recorded history.
func (m Model) replay(ts *tabState) {
	if ts.tab.Turns == nil {
		return
	}
	for _, turn := range ts.tab.Turns() {
		if turn.Speaker == dataagent.SpeakerUser {
			ts.blocks = append(ts.blocks, NewUserMessageBlock(turn.Text, m.styles))
			continue
		}
		if turn.Text != "" {
			b := NewAssistantTextBlock(m.theme)
			b.Append(turn.Text)
			ts.blocks = append(ts.blocks, b)
		}
		ts.blocks = m.appendOutcome(ts.blocks, turn)
	}
	ts.updateFocus()
}

// appendOutcome adds the error, SQL and preview blocks of a finished turn.
func (m Model) appendOutcome(blocks []MessageBlock, turn dataagent.Turn) []MessageBlock {
	if turn.Err != "" {
		return append(blocks, NewErrorBlock(turn.Err, m.styles))
	}
	if turn.SQL != "" {
		blocks = append(blocks, NewSQLBlock(turn.SQL, m.theme, m.styles))
	}
	if turn.HasPreview() {
		blocks = append(blocks, NewPreviewBlock(turn.Preview, m.styles))
	}
	return blocks
}

func (m Model) finishTurn(msg AgentDoneMsg) Model {
	m.running = false
	m.cancel = nil
	m.eventCh = nil
	m.doneCh = nil
	m.state = dataagent.TurnIdle

	ts := m.current()
	if ts == nil {
		return m
	}
	switch {
	case msg.Turn.Err != "":
		ts.blocks = m.appendOutcome(ts.blocks, msg.Turn)
	case msg.Err != nil && errors.Is(msg.Err, context.Canceled):
		ts.blocks = append(ts.blocks, NewNoteBlock("turn cancelled", m.styles))
	case msg.Err != nil:
		m.err = msg.Err
		ts.blocks = append(ts.blocks, NewErrorBlock(msg.Err.Error(), m.styles))
	default:
		ts.blocks = m.appendOutcome(ts.blocks, msg.Turn)
	}
	ts.text = nil
	ts.updateFocus()
	return m
}

// processEvent routes a streaming event to the current tab.
func (m Model) processEvent(evt dataagent.Event) Model {
	ts := m.current()
	if ts == nil {
		return m
	}
	switch e := evt.(type) {
	case dataagent.EventTextDelta:
		if ts.text == nil {
			ts.text = NewAssistantTextBlock(m.theme)
			ts.blocks = append(ts.blocks, ts.text)
		}
		ts.text.Append(e.Delta)
	case dataagent.EventToolCallBegin:
		ts.text = nil
		b := NewToolCallBlock(e.Name, e.ID, m.styles)
		ts.blocks = append(ts.blocks, b)
		ts.toolCalls[e.ID] = b
		ts.updateFocus()
	case dataagent.EventToolCallEnd:
		if b, ok := ts.toolCalls[e.Call.ID]; ok {
			b.Finalize(e.Call)
		}
	case dataagent.EventToolResult:
		ts.text = nil
		ts.blocks = append(ts.blocks, NewToolResultBlock(e.ToolName, e.Content, e.IsError(), e.ID == "", m.styles))
		ts.updateFocus()
	case dataagent.EventNote:
		ts.text = nil
		ts.blocks = append(ts.blocks, NewNoteBlock(e.Text, m.styles))
	case dataagent.EventTurnState:
		m.state = e.State
		if e.State == dataagent.TurnAwaitingSummary {
			ts.text = nil
		}
	}
	return m
}

func (m *Model) refresh() {
	if !m.ready {
		return
	}
	m.Viewport.SetContent(m.renderContent())
	m.Viewport.GotoBottom()
}

func (m Model) renderContent() string {
	ts := m.current()
	if ts == nil || len(ts.blocks) == 0 {
		return ""
	}
	var b strings.Builder
	for i, block := range ts.blocks {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(block.View(m.Viewport.Width))
	}
	return b.String()
}

// updateFocus focuses the last collapsible block.
func (ts *tabState) updateFocus() {
	ts.focus = -1
	for i := len(ts.blocks) - 1; i >= 0; i-- {
		if collapsible(ts.blocks[i]) {
			ts.focus = i
			return
		}
	}
}

// cycleFocusPrev moves focus to the previous collapsible block, wrapping around.
func (ts *tabState) cycleFocusPrev() {
	n := len(ts.blocks)
	start := ts.focus - 1
	if start < 0 {
		start = n - 1
	}
	for i := range n {
		idx := (start - i + n) % n
		if collapsible(ts.blocks[idx]) {
			ts.focus = idx
			return
		}
	}
	ts.focus = -1
}

func (m Model) tabBar() string {
	names := make([]string, len(m.tabs))
	for i, ts := range m.tabs {
		if i == m.active {
			names[i] = m.styles.Accent.Render("[" + ts.tab.Name + "]")
		} else {
			names[i] = m.styles.Muted.Render(" " + ts.tab.Name + " ")
		}
	}
	return strings.Join(names, " ")
}

func (m Model) statusLine() string {
	switch {
	case m.err != nil:
		return m.styles.Error.Render(fmt.Sprintf("Error: %v", m.err))
	case m.running && m.state != dataagent.TurnIdle:
		return m.styles.Muted.Render(m.state.String() + "...")
	case m.running:
		return m.styles.Muted.Render("Working...")
	case m.notice != "":
		return m.styles.Accent.Render(m.notice)
	default:
		return m.styles.Muted.Render(idleHint)
	}
}

// startAgent runs one turn in a goroutine and signals completion.
func startAgent(run RunFunc, ctx context.Context, prompt string, eventCh chan<- dataagent.Event, doneCh chan<- AgentDoneMsg) tea.Cmd {
	return func() tea.Msg {
		turn, err := run(ctx, prompt, func(e dataagent.Event) {
			select {
			case eventCh <- e:
			case <-ctx.Done():
			}
		})
		close(eventCh)
		doneCh <- AgentDoneMsg{Turn: turn, Err: err}
		return nil
	}
}

// listenForEvent waits for the next event from the channel.
// When the channel closes, it returns the completion from doneCh.
func listenForEvent(ch <-chan dataagent.Event, doneCh <-chan AgentDoneMsg) tea.Cmd {
	return func() tea.Msg {
		evt, ok := <-ch
		if !ok {
			return <-doneCh
		}
		return StreamEventMsg{Event: evt}
	}
}

func checkReady(ready func(context.Context) (bool, error)) tea.Cmd {
	return func() tea.Msg {
		ok, err := ready(context.Background())
		return ReadyMsg{Ready: ok, Err: err}
	}
}

func runInit(fn func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return InitDoneMsg{Err: fn(context.Background())}
	}
}
