// Package mock provides test doubles for dataagent interfaces using function fields.
package mock

import (
	"context"

	"github.com/fwojciec/dataagent"
)

// Interface compliance check.
var _ dataagent.Provider = (*Provider)(nil)

// Provider is a test double for dataagent.Provider.
// Set StreamFn before calling Stream.
type Provider struct {
	StreamFn func(ctx context.Context, req dataagent.Request) (dataagent.Stream, error)
}

// Stream delegates to StreamFn.
func (p *Provider) Stream(ctx context.Context, req dataagent.Request) (dataagent.Stream, error) {
	return p.StreamFn(ctx, req)
}
