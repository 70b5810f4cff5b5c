package main

import (
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/fwojciec/dataagent"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags_Defaults(t *testing.T) {
	t.Parallel()
	o, err := parseFlags(nil, "")
	require.NoError(t, err)
	assert.Equal(t, dataagent.DefaultDatabaseURL, o.db)
	assert.Equal(t, "pipeline", o.agent)
	assert.Equal(t, defaultLogPath, o.logPath)
	assert.False(t, o.init)
	assert.Empty(t, o.prompt)
}

func TestParseFlags_EnvDatabaseURL(t *testing.T) {
	t.Parallel()
	o, err := parseFlags(nil, "sqlite:///tmp/env.db")
	require.NoError(t, err)
	assert.Equal(t, "sqlite:///tmp/env.db", o.db)
}

func TestParseFlags_FlagOverridesEnv(t *testing.T) {
	t.Parallel()
	o, err := parseFlags([]string{"-db", "sqlite:flag.db", "-agent", "mart", "-prompt", "top customers", "-init"}, "sqlite:///tmp/env.db")
	require.NoError(t, err)
	assert.Equal(t, "sqlite:flag.db", o.db)
	assert.Equal(t, "mart", o.agent)
	assert.Equal(t, "top customers", o.prompt)
	assert.True(t, o.init)
}

func TestParseFlags_UnknownFlag(t *testing.T) {
	t.Parallel()
	_, err := parseFlags([]string{"-provider", "anthropic"}, "")
	require.Error(t, err)
}

func TestOpenLogger(t *testing.T) {
	t.Parallel()

	t.Run("empty path discards", func(t *testing.T) {
		t.Parallel()
		logger, closeLog, err := openLogger("")
		require.NoError(t, err)
		defer closeLog()
		assert.False(t, logger.Enabled(t.Context(), slog.LevelError))
	})

	t.Run("creates parent directories", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "logs", "agent.log")
		logger, closeLog, err := openLogger(path)
		require.NoError(t, err)
		logger.Info("hello")
		closeLog()
		assert.FileExists(t, path)
	})
}
