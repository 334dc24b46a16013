// Package app implements the application layer for testarc.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.trai.ch/testarc/internal/adapters/registry"
	"go.trai.ch/testarc/internal/adapters/telemetry"
	"go.trai.ch/testarc/internal/core/domain"
	"go.trai.ch/testarc/internal/core/ports"
	"go.trai.ch/testarc/internal/engine/compilation"
	"go.trai.ch/testarc/internal/engine/suite"
	"go.trai.ch/zerr"
)

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	logger       ports.Logger
	store        ports.RecordStore
	compiler     ports.Compiler
	packager     ports.Packager
	runner       *suite.Runner
	tracer       ports.Tracer
	renderer     ports.Renderer
	now          func() time.Time
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	log ports.Logger,
	store ports.RecordStore,
	compiler ports.Compiler,
	packager ports.Packager,
	runner *suite.Runner,
	tracer ports.Tracer,
	renderer ports.Renderer,
) *App {
	return &App{
		configLoader: loader,
		logger:       log,
		store:        store,
		compiler:     compiler,
		packager:     packager,
		runner:       runner,
		tracer:       tracer,
		renderer:     renderer,
		now:          time.Now,
	}
}

// WithClock replaces the clock used to stamp build records.
// This is primarily used for testing.
func (a *App) WithClock(now func() time.Time) *App {
	a.now = now
	return a
}

// BuildOptions configuration for the Build method.
type BuildOptions struct {
	// Path is the suite file, or a directory to discover it from.
	Path string
	// Targets limits the run to these artifacts and their named dependencies.
	Targets []string
	// Keep leaves the artifacts on disk and records them for inspect and clean.
	Keep bool
}

// ArtifactSummary describes one built artifact.
type ArtifactSummary struct {
	Name      string         `json:"name"`
	Digest    string         `json:"digest"`
	Entries   []string       `json:"entries"`
	Archive   string         `json:"archive,omitempty"`
	Classpath []string       `json:"classpath,omitempty"`
	Lookups   []suite.Lookup `json:"lookups,omitempty"`
}

// Build runs a suite. Unless opts.Keep is set, every artifact is deleted
// before Build returns and summaries carry no paths.
func (a *App) Build(ctx context.Context, opts BuildOptions) ([]ArtifactSummary, error) {
	s, err := a.configLoader.Load(opts.Path)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load suite")
	}

	shutdown := telemetry.Setup(telemetry.NewBridge(a.renderer))
	defer func() {
		_ = shutdown(context.WithoutCancel(ctx))
	}()

	var managerOpts []compilation.Option
	if opts.Keep {
		dir := filepath.Join(s.Root, domain.DefaultArtifactsPath())
		if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrPackagingFailed.Error()), "path", dir)
		}
		managerOpts = append(managerOpts, compilation.WithTempDir(dir))
	}

	m, err := a.newManager(s, managerOpts...)
	if err != nil {
		return nil, err
	}

	report, err := a.runner.Run(ctx, m, s, opts.Targets)
	if err != nil {
		m.Cleanup()
		return nil, errors.Join(domain.ErrSuiteExecutionFailed, err)
	}

	summaries := make([]ArtifactSummary, 0, len(report.Artifacts))
	for _, res := range report.Artifacts {
		summary := ArtifactSummary{
			Name:    res.Name,
			Digest:  res.Artifact.Digest(),
			Entries: res.Artifact.Entries(),
			Lookups: res.Lookups,
		}
		if opts.Keep {
			summary.Archive = res.Artifact.Archive()
			summary.Classpath = res.Artifact.Classpath()
		}
		summaries = append(summaries, summary)
	}

	if !opts.Keep {
		m.Cleanup()
		return summaries, nil
	}

	m.Detach()
	if err := a.record(s.Root, report); err != nil {
		return nil, err
	}
	return summaries, nil
}

// record stores a build record per artifact, replacing and deleting any
// artifact previously kept under the same name.
func (a *App) record(root string, report *suite.Report) error {
	var errs error
	for _, res := range report.Artifacts {
		previous, err := a.store.Get(root, res.Name)
		if err != nil {
			errs = errors.Join(errs, err)
			continue
		}
		if previous != nil && previous.Root != "" {
			a.remove(previous.Root, "artifact "+previous.Name, &errs)
		}

		art := res.Artifact
		errs = errors.Join(errs, a.store.Put(root, domain.BuildRecord{
			Name:      res.Name,
			Archive:   art.Archive(),
			Classes:   art.Classes(),
			Root:      filepath.Dir(art.Archive()),
			Classpath: art.Classpath(),
			Digest:    art.Digest(),
			Entries:   art.Entries(),
			Timestamp: a.now(),
		}))
	}
	return errs
}

// InspectOptions configuration for the Inspect method.
type InspectOptions struct {
	// Path is the suite file, or a directory to discover it from.
	Path string
	// Name is the kept artifact to probe.
	Name string
	// Symbols are the names to look up.
	Symbols []string
}

// Inspect opens an analysis session on a kept artifact and resolves opts.Symbols.
func (a *App) Inspect(ctx context.Context, opts InspectOptions) ([]suite.Lookup, error) {
	s, err := a.configLoader.Load(opts.Path)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load suite")
	}

	rec, err := a.store.Get(s.Root, opts.Name)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, zerr.With(zerr.With(domain.ErrArtifactNotFound, "name", opts.Name), "hint", "run build --keep first")
	}

	m, err := a.newManager(s)
	if err != nil {
		return nil, err
	}
	defer m.Detach()

	art, err := m.ArtifactFrom(rec.Archive, rec.Classpath...)
	if err != nil {
		return nil, zerr.With(err, "archive", rec.Archive)
	}

	ctx, span := a.tracer.Start(ctx, "inspect "+rec.Name)
	defer span.End()

	lookups, err := suite.Lookups(ctx, art, opts.Symbols)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return lookups, nil
}

// List returns the entries of the archive at path in order.
func (a *App) List(_ context.Context, path string) ([]string, error) {
	entries, err := a.packager.Entries(path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to list archive"), "path", path)
	}
	return entries, nil
}

// CleanOptions configuration for the Clean method.
type CleanOptions struct {
	// Path is the suite file, or a directory to discover it from.
	Path string
	// Artifacts removes kept artifacts and their records.
	Artifacts bool
	// Cache removes the registry resolver cache.
	Cache bool
}

// Clean removes kept artifacts and caches based on the provided options.
func (a *App) Clean(_ context.Context, options CleanOptions) error {
	s, err := a.configLoader.Load(options.Path)
	if err != nil {
		return zerr.Wrap(err, "failed to load suite")
	}

	var errs error

	if options.Artifacts {
		records, err := a.store.List(s.Root)
		if err != nil {
			return err
		}
		for _, rec := range records {
			if rec.Root != "" {
				a.remove(rec.Root, "artifact "+rec.Name, &errs)
			}
			errs = errors.Join(errs, a.store.Delete(s.Root, rec.Name))
		}
		a.remove(filepath.Join(s.Root, domain.DefaultArtifactsPath()), "artifacts directory", &errs)
	}

	if options.Cache {
		a.remove(registryCacheDir(s), "registry cache", &errs)
	}

	return errs
}

func (a *App) remove(path, name string, errs *error) {
	a.logger.Info(fmt.Sprintf("removing %s...", name))
	if err := os.RemoveAll(path); err != nil {
		*errs = errors.Join(*errs, zerr.Wrap(err, fmt.Sprintf("failed to remove %s", name)))
		return
	}
	a.logger.Info(fmt.Sprintf("removed %s", name))
}

func (a *App) newManager(s *domain.Suite, opts ...compilation.Option) (*compilation.Manager, error) {
	opts = append([]compilation.Option{
		compilation.WithSourceFS(os.DirFS(s.Root)),
		compilation.WithLogger(a.logger),
		compilation.WithTracer(a.tracer),
	}, opts...)

	if s.Registry != "" {
		resolver, err := registry.NewResolver(s.Registry, registryCacheDir(s))
		if err != nil {
			return nil, err
		}
		opts = append(opts, compilation.WithResolver(resolver))
	}

	return compilation.New(a.compiler, a.packager, opts...), nil
}

func registryCacheDir(s *domain.Suite) string {
	if s.CacheDir != "" {
		return s.CacheDir
	}
	return filepath.Join(s.Root, domain.DefaultRegistryCachePath())
}
