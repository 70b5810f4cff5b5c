package bubbletea_test

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/dataagent"
	bt "github.com/fwojciec/dataagent/bubbletea"
	"github.com/stretchr/testify/require"
)

func testTabs(run bt.RunFunc) []bt.Tab {
	return []bt.Tab{
		{Name: "Data Pipeline Agent", Run: run},
		{Name: "Data Warehouse Agent", Run: run},
		{Name: "Data Mart Agent", Run: run},
	}
}

// initModel creates a model and sends a WindowSizeMsg to initialize the viewport.
func initModel(t *testing.T, run bt.RunFunc) bt.Model {
	t.Helper()
	return initModelWithSize(t, run, 80, 24)
}

// initModelWithSize creates a model with a custom terminal size.
func initModelWithSize(t *testing.T, run bt.RunFunc, width, height int) bt.Model {
	t.Helper()
	m := bt.New(testTabs(run), bt.Setup{}, dataagent.DefaultTheme())
	return updateModel(t, m, tea.WindowSizeMsg{Width: width, Height: height})
}

// updateModel sends a message and returns the updated Model.
func updateModel(t *testing.T, m bt.Model, msg tea.Msg) bt.Model {
	t.Helper()
	updated, _ := m.Update(msg)
	model, ok := updated.(bt.Model)
	require.True(t, ok)
	return model
}

// typeInput sends s to the model one rune at a time.
func typeInput(t *testing.T, m bt.Model, s string) bt.Model {
	t.Helper()
	for _, r := range s {
		m = updateModel(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

// nopRun is a RunFunc that does nothing.
func nopRun(_ context.Context, _ string, _ func(dataagent.Event)) (dataagent.Turn, error) {
	return dataagent.Turn{Speaker: dataagent.SpeakerAgent}, nil
}
