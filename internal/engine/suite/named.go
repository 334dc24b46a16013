package suite

import (
	"context"
	"sync"

	"go.trai.ch/testarc/internal/core/ports"
	"go.trai.ch/testarc/internal/engine/compilation"
)

var _ ports.DependencyResolver = (*NamedResolver)(nil)

// NamedResolver resolves the name of an artifact built earlier in the same
// run to its archive followed by its classpath.
type NamedResolver struct {
	mu        sync.RWMutex
	artifacts map[string]*compilation.Artifact
}

// NewNamedResolver creates an empty NamedResolver.
func NewNamedResolver() *NamedResolver {
	return &NamedResolver{artifacts: make(map[string]*compilation.Artifact)}
}

// Add makes an artifact resolvable by name.
func (r *NamedResolver) Add(name string, art *compilation.Artifact) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.artifacts[name] = art
}

// Get returns the artifact registered under name.
func (r *NamedResolver) Get(name string) (*compilation.Artifact, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	art, ok := r.artifacts[name]
	return art, ok
}

// Resolve returns the archive of the named artifact and its classpath.
// Unknown names resolve to nothing.
func (r *NamedResolver) Resolve(_ context.Context, name string) ([]string, error) {
	art, ok := r.Get(name)
	if !ok {
		return nil, nil
	}
	return append([]string{art.Archive()}, art.Classpath()...), nil
}
