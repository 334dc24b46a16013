// Package testarc builds throwaway Go archives from sources and opens
// analysis sessions over their type model, for use in tests.
//
//	m := testarc.New(testarc.WithTempDir(t.TempDir()))
//	t.Cleanup(m.Cleanup)
//
//	art, err := m.NewBuilder().Txtar(src).Build(ctx)
//	...
//	session, err := art.Analyze(ctx)
//	obj, err := session.Lookup("pkg.Type")
package testarc

import (
	"go.trai.ch/testarc/internal/adapters/archive"
	"go.trai.ch/testarc/internal/adapters/fs"
	"go.trai.ch/testarc/internal/adapters/gotypes"
	"go.trai.ch/testarc/internal/adapters/registry"
	"go.trai.ch/testarc/internal/core/domain"
	"go.trai.ch/testarc/internal/core/ports"
	"go.trai.ch/testarc/internal/engine/compilation"
)

type (
	// Manager owns every artifact and session it creates until Cleanup.
	Manager = compilation.Manager
	// Builder accumulates one build request.
	Builder = compilation.Builder
	// Artifact is a built or externally supplied archive.
	Artifact = compilation.Artifact
	// Session is a live view of an artifact's type model.
	Session = compilation.Session
	// Option configures a Manager.
	Option = compilation.Option
	// DependencyResolver maps identifiers to archive paths.
	DependencyResolver = ports.DependencyResolver
	// Logger receives cleanup failures.
	Logger = ports.Logger
)

// Error categories. Resolver failures wrap ErrDependencyResolutionFailed, and
// a cancelled build returns the context's error.
var (
	ErrResourceNotFound     = domain.ErrResourceNotFound
	ErrCompilationFailed    = domain.ErrCompilationFailed
	ErrPackagingFailed      = domain.ErrPackagingFailed
	ErrSessionAborted       = domain.ErrSessionAborted
	ErrIllegalConfiguration = domain.ErrIllegalConfiguration

	ErrDependencyResolutionFailed = domain.ErrDependencyResolutionFailed
)

// Manager options.
var (
	WithResolver = compilation.WithResolver
	WithSourceFS = compilation.WithSourceFS
	WithLogger   = compilation.WithLogger
	WithTempDir  = compilation.WithTempDir
)

// New returns a Manager compiling with go/types and packaging zip archives.
func New(opts ...Option) *Manager {
	packager := archive.NewPackager(fs.NewWalker(), fs.NewHasher())
	return compilation.New(gotypes.NewCompiler(), packager, opts...)
}

// NewRegistryResolver returns a resolver downloading name@version identifiers
// from the registry at baseURL. Downloads are cached in cacheDir, which the
// resolver owns.
func NewRegistryResolver(baseURL, cacheDir string) (DependencyResolver, error) {
	return registry.NewResolver(baseURL, cacheDir)
}
