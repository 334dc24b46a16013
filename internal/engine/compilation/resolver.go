package compilation

import (
	"context"

	"go.trai.ch/testarc/internal/core/ports"
)

var _ ports.DependencyResolver = NoopResolver{}

// NoopResolver resolves every identifier to nothing.
type NoopResolver struct{}

// Resolve returns an empty set.
func (NoopResolver) Resolve(_ context.Context, _ string) ([]string, error) {
	return nil, nil
}
