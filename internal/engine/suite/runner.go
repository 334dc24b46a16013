// Package suite builds the artifacts declared by a suite in dependency order.
package suite

import (
	"context"
	"errors"
	"path/filepath"
	"runtime"
	"slices"

	"go.trai.ch/testarc/internal/core/domain"
	"go.trai.ch/testarc/internal/core/ports"
	"go.trai.ch/testarc/internal/engine/compilation"
	"go.trai.ch/zerr"
)

// Runner executes suites.
type Runner struct {
	tracer      ports.Tracer
	parallelism int
}

// NewRunner creates a new Runner building up to one artifact per CPU at once.
func NewRunner(tracer ports.Tracer) *Runner {
	return &Runner{tracer: tracer, parallelism: runtime.NumCPU()}
}

// WithParallelism sets how many artifacts may be built at once.
func (r *Runner) WithParallelism(n int) *Runner {
	r.parallelism = max(n, 1)
	return r
}

// Run builds the targeted artifacts of the suite and their named dependencies
// on m. An empty target list builds every artifact. Named dependency
// problems fail the run before anything is compiled; the first failing
// artifact stops the run. Artifacts stay registered with m.
func (r *Runner) Run(ctx context.Context, m *compilation.Manager, s *domain.Suite, targets []string) (*Report, error) {
	graph, err := s.Graph()
	if err != nil {
		return nil, err
	}

	state, err := r.newRunState(ctx, m, s, graph, targets)
	if err != nil {
		return nil, err
	}
	defer state.cancel()

	planned := make([]string, 0, len(state.specs))
	deps := make(map[string][]string, len(state.specs))
	for spec := range graph.Walk() {
		if _, ok := state.specs[spec.Name]; ok {
			planned = append(planned, spec.Name)
			deps[spec.Name] = slices.Clone(spec.DependsOn)
		}
	}
	r.tracer.EmitPlan(ctx, planned, deps)

	if err := state.runExecutionLoop(); err != nil {
		return nil, err
	}

	report := &Report{}
	for _, name := range planned {
		report.Artifacts = append(report.Artifacts, state.results[name])
	}
	return report, nil
}

type result struct {
	name     string
	artifact ArtifactResult
	err      error
}

type runState struct {
	ctx         context.Context
	cancel      context.CancelFunc
	runner      *Runner
	manager     *compilation.Manager
	suite       *domain.Suite
	graph       *domain.Graph
	named       *NamedResolver
	specs       map[string]domain.ArtifactSpec
	inDegree    map[string]int
	ready       []string
	active      int
	parallelism int
	resultsCh   chan result
	results     map[string]ArtifactResult
	errs        error
}

func (r *Runner) newRunState(
	ctx context.Context,
	m *compilation.Manager,
	s *domain.Suite,
	graph *domain.Graph,
	targets []string,
) (*runState, error) {
	specs, err := selectArtifacts(graph, targets)
	if err != nil {
		return nil, err
	}

	inDegree := make(map[string]int, len(specs))
	for name, spec := range specs {
		inDegree[name] = len(spec.DependsOn)
	}

	// Seed in execution order so independent artifacts start deterministically.
	var ready []string
	for spec := range graph.Walk() {
		if degree, ok := inDegree[spec.Name]; ok && degree == 0 {
			ready = append(ready, spec.Name)
		}
	}

	parallelism := r.parallelism
	ctx, cancel := context.WithCancel(ctx)
	return &runState{
		ctx:         ctx,
		cancel:      cancel,
		runner:      r,
		manager:     m,
		suite:       s,
		graph:       graph,
		named:       NewNamedResolver(),
		specs:       specs,
		inDegree:    inDegree,
		ready:       ready,
		parallelism: parallelism,
		resultsCh:   make(chan result, parallelism),
		results:     make(map[string]ArtifactResult, len(specs)),
	}, nil
}

// selectArtifacts returns the targets and everything they depend on by name.
func selectArtifacts(graph *domain.Graph, targets []string) (map[string]domain.ArtifactSpec, error) {
	specs := make(map[string]domain.ArtifactSpec)
	if len(targets) == 0 {
		for spec := range graph.Walk() {
			specs[spec.Name] = spec
		}
		return specs, nil
	}

	queue := make([]string, 0, len(targets))
	for _, name := range targets {
		if _, ok := graph.Get(name); !ok {
			return nil, zerr.With(domain.ErrArtifactNotFound, "name", name)
		}
		queue = append(queue, name)
	}

	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		if _, seen := specs[name]; seen {
			continue
		}
		spec, _ := graph.Get(name)
		specs[name] = spec
		queue = append(queue, spec.DependsOn...)
	}
	return specs, nil
}

func (state *runState) runExecutionLoop() error {
	// Once cancelled only in-flight results are awaited.
	done := state.ctx.Done()
	for !state.isDone() {
		state.schedule()

		if state.isDone() {
			break
		}

		if state.ctx.Err() != nil && state.active == 0 {
			break
		}

		select {
		case res := <-state.resultsCh:
			state.handleResult(res)
		case <-done:
			done = nil
		}
	}

	if state.errs != nil {
		return state.errs
	}
	return state.ctx.Err()
}

func (state *runState) isDone() bool {
	return state.active == 0 && len(state.ready) == 0
}

func (state *runState) schedule() {
	for len(state.ready) > 0 && state.active < state.parallelism && state.ctx.Err() == nil {
		name := state.ready[0]
		state.ready = state.ready[1:]

		state.active++
		spec := state.specs[name]
		go state.execute(&spec)
	}
}

func (state *runState) execute(spec *domain.ArtifactSpec) {
	// The span ends before the result is sent so renderers see it first.
	res := func() result {
		ctx, span := state.runner.tracer.Start(state.ctx, spec.Name)
		defer span.End()

		art, err := state.build(ctx, spec)
		if err != nil {
			span.RecordError(err)
			return result{name: spec.Name, err: err}
		}
		state.named.Add(spec.Name, art)

		out := ArtifactResult{Name: spec.Name, Artifact: art}
		if spec.Analyze || len(spec.Lookup) > 0 {
			lookups, err := Lookups(ctx, art, spec.Lookup)
			if err != nil {
				span.RecordError(err)
				return result{name: spec.Name, err: err}
			}
			out.Lookups = lookups
		}
		span.SetAttribute("testarc.digest", art.Digest())
		return result{name: spec.Name, artifact: out}
	}()

	state.resultsCh <- res
}

func (state *runState) build(ctx context.Context, spec *domain.ArtifactSpec) (*compilation.Artifact, error) {
	b := state.manager.NewBuilder()
	for _, set := range spec.ClasspathSources {
		b.ClasspathSources(set.Root, set.Paths...)
	}
	for _, set := range spec.FileSources {
		b.FileSources(state.fileRoot(set.Root), set.Paths...)
	}
	for _, set := range spec.ClasspathResources {
		b.ClasspathResources(set.Root, set.Paths...)
	}
	for _, set := range spec.FileResources {
		b.FileResources(state.fileRoot(set.Root), set.Paths...)
	}
	b.DependenciesFrom(state.named, spec.DependsOn...)
	b.Dependencies(spec.Dependencies...)

	files := make([]string, len(spec.DependencyFiles))
	for i, f := range spec.DependencyFiles {
		files[i] = state.fileRoot(f)
	}
	b.DependencyFiles(files...)

	return b.Build(ctx)
}

func (state *runState) fileRoot(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(state.suite.Root, filepath.FromSlash(p))
}

// Lookups opens an analysis session on art and resolves each name in it.
func Lookups(ctx context.Context, art *compilation.Artifact, names []string) ([]Lookup, error) {
	session, err := art.Analyze(ctx)
	if err != nil {
		return nil, err
	}

	lookups := make([]Lookup, 0, len(names))
	for _, name := range names {
		obj, err := session.Lookup(name)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "lookup failed"), "name", name)
		}
		l := Lookup{Name: name}
		if obj != nil {
			l.Found = true
			l.Object = obj.String()
		}
		lookups = append(lookups, l)
	}
	return lookups, nil
}

func (state *runState) handleResult(res result) {
	state.active--

	if res.err != nil {
		state.errs = errors.Join(state.errs, zerr.With(res.err, "artifact", res.name))
		state.cancel()
		return
	}
	state.handleSuccess(res)
}

func (state *runState) handleSuccess(res result) {
	state.results[res.name] = res.artifact

	for _, dep := range state.graph.Dependents(res.name) {
		if _, ok := state.specs[dep]; ok {
			state.inDegree[dep]--
			if state.inDegree[dep] == 0 {
				state.ready = append(state.ready, dep)
			}
		}
	}
}
