// Package compilation builds throwaway artifacts and opens analysis sessions on them.
//
// A Manager owns every tree it creates. Builders compile sources into a fresh
// temporary root holding the compiled output and its archive; Analyze opens a
// second pass over an artifact whose worker stays parked until Cleanup.
package compilation

import (
	"fmt"
	iofs "io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.trai.ch/testarc/internal/adapters/telemetry" //nolint:depguard // Default tracer
	"go.trai.ch/testarc/internal/core/ports"
	"golang.org/x/sync/errgroup"
)

// Manager is a compilation service instance.
type Manager struct {
	compiler ports.Compiler
	packager ports.Packager
	resolver ports.DependencyResolver
	sources  iofs.FS
	logger   ports.Logger
	tracer   ports.Tracer
	tempDir  string

	registry registry

	// lifecycle serializes starting probe workers with Cleanup and Detach.
	lifecycle sync.Mutex
	workers   errgroup.Group
}

// Option configures a Manager.
type Option func(*Manager)

// WithResolver sets the resolver used by Builder.Dependencies.
func WithResolver(r ports.DependencyResolver) Option {
	return func(m *Manager) {
		m.resolver = r
	}
}

// WithSourceFS sets the file system classpath sources and resources are read from.
func WithSourceFS(fsys iofs.FS) Option {
	return func(m *Manager) {
		m.sources = fsys
	}
}

// WithLogger sets the logger used to report cleanup failures.
func WithLogger(l ports.Logger) Option {
	return func(m *Manager) {
		m.logger = l
	}
}

// WithTracer sets the tracer.
func WithTracer(t ports.Tracer) Option {
	return func(m *Manager) {
		m.tracer = t
	}
}

// WithTempDir sets the directory temporary roots are created in.
// The default is os.TempDir.
func WithTempDir(dir string) Option {
	return func(m *Manager) {
		m.tempDir = dir
	}
}

// New creates a new Manager.
func New(compiler ports.Compiler, packager ports.Packager, opts ...Option) *Manager {
	m := &Manager{
		compiler: compiler,
		packager: packager,
		resolver: NoopResolver{},
		sources:  os.DirFS("."),
		logger:   discardLogger{},
		tracer:   telemetry.NewNoOpTracer(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// NewBuilder returns a fresh builder bound to this manager.
func (m *Manager) NewBuilder() *Builder {
	return newBuilder(m)
}

// ArtifactFrom wraps an externally supplied archive. The archive is not
// registered for cleanup; use Manage for that.
func (m *Manager) ArtifactFrom(archive string, classpath ...string) (*Artifact, error) {
	entries, err := m.packager.Entries(archive)
	if err != nil {
		return nil, err
	}
	return &Artifact{
		manager:   m,
		archive:   archive,
		classpath: append([]string(nil), classpath...),
		entries:   entries,
	}, nil
}

// Manage registers an externally supplied tree for deletion on Cleanup.
func (m *Manager) Manage(path string) {
	m.registry.register(path, nil)
}

// Registered lists the roots currently scheduled for deletion, in registration order.
func (m *Manager) Registered() []string {
	return m.registry.roots()
}

// Cleanup releases every parked analysis worker, waits for all of them to
// return and deletes every registered tree. Deletion failures are logged.
// Calling Cleanup again only acts on what was registered since. Analyze calls
// made while Cleanup runs start after it returns.
func (m *Manager) Cleanup() {
	m.lifecycle.Lock()
	defer m.lifecycle.Unlock()

	for _, e := range m.release() {
		m.remove(e)
	}
}

// Detach releases every parked analysis worker and deletes its tree like
// Cleanup, but leaves built artifacts on disk. The manager forgets them; the
// returned roots are the caller's to delete.
func (m *Manager) Detach() []string {
	m.lifecycle.Lock()
	defer m.lifecycle.Unlock()

	var kept []string
	for _, e := range m.release() {
		if e.release == nil {
			kept = append(kept, e.root)
			continue
		}
		m.remove(e)
	}
	return kept
}

// release opens every release gate and waits for the parked workers to return.
// The caller holds lifecycle.
func (m *Manager) release() []entry {
	entries := m.registry.drain()
	for _, e := range entries {
		if e.release != nil {
			e.release.open()
		}
	}
	//nolint:errcheck // Workers report through their own channels
	m.workers.Wait()
	return entries
}

func (m *Manager) remove(e entry) {
	if err := os.RemoveAll(e.root); err != nil {
		m.logger.Warn(fmt.Sprintf("failed to remove %s: %v", e.root, err))
		return
	}
	if e.release != nil {
		// The probe directory goes too once its last session is gone.
		_ = os.Remove(filepath.Dir(e.root))
	}
}

type discardLogger struct{}

func (discardLogger) Info(string) {}
func (discardLogger) Warn(string) {}
func (discardLogger) Error(error) {}

var _ ports.Logger = discardLogger{}
