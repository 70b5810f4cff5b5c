package main

import (
	"context"
	"fmt"

	"github.com/fwojciec/dataagent"
	"github.com/fwojciec/dataagent/gemini"
)

// resolveProvider constructs the model provider. The env var value is
// passed in as a parameter; env is only read in main().
func resolveProvider(ctx context.Context, apiKeyFlag, geminiEnvKey, model string) (dataagent.Provider, error) {
	key := apiKeyFlag
	if key == "" {
		key = geminiEnvKey
	}
	if key == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY not set (use -api-key flag or environment variable)")
	}
	client, err := gemini.New(ctx, key, gemini.WithModel(model))
	if err != nil {
		return nil, err
	}
	return client, nil
}
