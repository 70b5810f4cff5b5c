package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/fwojciec/dataagent"
	"github.com/fwojciec/dataagent/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteTurn(t *testing.T) {
	t.Parallel()

	t.Run("transcript sql and preview", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		err := writeTurn(&buf, dataagent.Turn{
			Speaker: dataagent.SpeakerAgent,
			Text:    "Created **dim_customer**.",
			SQL:     "SELECT * FROM dim_customer;",
			Preview: json.RawMessage(`[{"customer_id":1,"name":"Alice Smith"}]`),
		}, dataagent.DefaultTheme())
		require.NoError(t, err)
		out := ansi.Strip(buf.String())
		assert.Contains(t, out, "Created dim_customer.")
		assert.Contains(t, out, "Generated SQL")
		assert.Contains(t, out, "SELECT * FROM dim_customer;")
		assert.Contains(t, out, "Preview (1 rows)")
		assert.Contains(t, out, "Alice Smith")
	})

	t.Run("error turn", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		err := writeTurn(&buf, dataagent.Turn{Err: "Error communicating with Data Mart Agent: boom"}, dataagent.DefaultTheme())
		require.NoError(t, err)
		assert.Contains(t, ansi.Strip(buf.String()), "Error communicating with Data Mart Agent: boom")
	})

	t.Run("empty turn writes nothing", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		require.NoError(t, writeTurn(&buf, dataagent.Turn{}, dataagent.DefaultTheme()))
		assert.Empty(t, buf.String())
	})
}

func TestRunOnce(t *testing.T) {
	t.Parallel()

	t.Run("prints the summary", func(t *testing.T) {
		t.Parallel()
		drivers, _ := testDrivers(t, replies("Checking.", "There are no tables yet."))
		d, err := driverByKey(drivers, "mart")
		require.NoError(t, err)

		var buf bytes.Buffer
		require.NoError(t, runOnce(t.Context(), &buf, d, "what tables exist?", dataagent.DefaultTheme()))
		assert.Contains(t, ansi.Strip(buf.String()), "There are no tables yet.")
	})

	t.Run("model fault prints the error and fails", func(t *testing.T) {
		t.Parallel()
		provider := &mock.Provider{
			StreamFn: func(context.Context, dataagent.Request) (dataagent.Stream, error) {
				return nil, errors.New("quota exceeded")
			},
		}
		drivers, _ := testDrivers(t, provider)

		var buf bytes.Buffer
		err := runOnce(t.Context(), &buf, drivers[2], "count rows", dataagent.DefaultTheme())
		require.Error(t, err)
		assert.Contains(t, ansi.Strip(buf.String()), "Error communicating with Data Mart Agent")
	})
}
