package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fwojciec/dataagent"
	"github.com/fwojciec/dataagent/agent"
	bt "github.com/fwojciec/dataagent/bubbletea"
	"github.com/fwojciec/dataagent/datatool"
	"github.com/fwojciec/dataagent/sqlite"
	"go.opentelemetry.io/otel/trace"
)

// newDrivers builds one driver per role, each with its own registry over
// the shared store.
func newDrivers(store dataagent.Store, provider dataagent.Provider, cfg dataagent.Config, logger *slog.Logger, tracer trace.Tracer) ([]*agent.Driver, error) {
	var drivers []*agent.Driver
	for _, role := range agent.Roles() {
		reg, err := datatool.NewRegistry(store, role.Registry()...)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", role.Key, err)
		}
		d := agent.New(role, provider, reg, cfg,
			agent.WithLogger(logger),
			agent.WithTracer(tracer),
		)
		drivers = append(drivers, d)
	}
	return drivers, nil
}

// driverByKey returns the driver whose role has the given key.
func driverByKey(drivers []*agent.Driver, key string) (*agent.Driver, error) {
	role, err := agent.RoleByKey(key)
	if err != nil {
		return nil, err
	}
	for _, d := range drivers {
		if d.Role().Key == role.Key {
			return d, nil
		}
	}
	return nil, fmt.Errorf("no driver for agent %q: %w", key, dataagent.ErrValidation)
}

// tabs exposes each driver as a TUI tab.
func tabs(drivers []*agent.Driver) []bt.Tab {
	out := make([]bt.Tab, 0, len(drivers))
	for _, d := range drivers {
		out = append(out, bt.Tab{
			Name: d.Role().Name,
			Run: func(ctx context.Context, prompt string, onEvent func(dataagent.Event)) (dataagent.Turn, error) {
				return d.Run(ctx, prompt, agent.WithEventHandler(onEvent))
			},
			Turns: d.Turns,
		})
	}
	return out
}

// setup binds the TUI's /init command and readiness check to the store.
func setup(store dataagent.Store) bt.Setup {
	tables := dataagent.PrototypeTables()
	return bt.Setup{
		Ready: func(ctx context.Context) (bool, error) {
			return sqlite.Initialized(ctx, store, tables)
		},
		Init: func(ctx context.Context) error {
			return sqlite.Init(ctx, store, tables)
		},
	}
}
