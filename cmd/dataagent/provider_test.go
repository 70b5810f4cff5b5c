package main

import (
	"testing"

	"github.com/fwojciec/dataagent/gemini"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveProvider_FlagKey(t *testing.T) {
	t.Parallel()
	p, err := resolveProvider(t.Context(), "gk-flag", "", "")
	require.NoError(t, err)
	assert.NotNil(t, p)
}

func TestResolveProvider_EnvKey(t *testing.T) {
	t.Parallel()
	p, err := resolveProvider(t.Context(), "", "gk-env", "")
	require.NoError(t, err)
	assert.NotNil(t, p)
}

func TestResolveProvider_Model(t *testing.T) {
	t.Parallel()
	p, err := resolveProvider(t.Context(), "gk-flag", "", "gemini-2.5-flash")
	require.NoError(t, err)
	client, ok := p.(*gemini.Client)
	require.True(t, ok)
	assert.Equal(t, "gemini-2.5-flash", client.Model())
}

func TestResolveProvider_DefaultModel(t *testing.T) {
	t.Parallel()
	p, err := resolveProvider(t.Context(), "gk-flag", "", "")
	require.NoError(t, err)
	assert.Equal(t, gemini.DefaultModel, p.(*gemini.Client).Model())
}

func TestResolveProvider_MissingKey(t *testing.T) {
	t.Parallel()
	_, err := resolveProvider(t.Context(), "", "", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY not set")
}
