package compilation

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	iofs "io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.trai.ch/testarc/internal/core/domain"
	"go.trai.ch/testarc/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/tools/txtar"
)

// Builder accumulates sources, resources and classpath entries for one build.
// It is not safe for concurrent use and builds at most once.
type Builder struct {
	manager *Manager

	sources     map[string]domain.SourceUnit
	sourceOrder []string

	resources     map[string]domain.ResourceEntry
	resourceOrder []string

	deps      []dependency
	goVersion string

	err  error
	used bool
}

// dependency is one classpath contribution, either resolved or a file.
type dependency struct {
	resolver ports.DependencyResolver
	id       string
	file     string
}

func newBuilder(m *Manager) *Builder {
	return &Builder{
		manager:   m,
		sources:   make(map[string]domain.SourceUnit),
		resources: make(map[string]domain.ResourceEntry),
	}
}

// ClasspathSources adds sources read from the manager's source file system.
// Each path is relative to root and becomes the source's logical path.
func (b *Builder) ClasspathSources(root string, paths ...string) *Builder {
	for _, p := range paths {
		logical, open, ok := b.resolveFS(root, p)
		if ok {
			b.addSource(domain.SourceUnit{Path: logical, Open: open})
		}
	}
	return b
}

// FileSources adds sources read from the file system below root.
func (b *Builder) FileSources(root string, files ...string) *Builder {
	for _, f := range files {
		logical, open, ok := b.resolveFile(root, f)
		if ok {
			b.addSource(domain.SourceUnit{Path: logical, Open: open})
		}
	}
	return b
}

// ClasspathResources adds resources read from the manager's source file system.
func (b *Builder) ClasspathResources(root string, paths ...string) *Builder {
	for _, p := range paths {
		logical, open, ok := b.resolveFS(root, p)
		if ok && b.verify(logical, open) {
			b.addResource(domain.ResourceEntry{Path: logical, Open: open})
		}
	}
	return b
}

// FileResources adds resources read from the file system below root.
func (b *Builder) FileResources(root string, files ...string) *Builder {
	for _, f := range files {
		logical, open, ok := b.resolveFile(root, f)
		if ok && b.verify(logical, open) {
			b.addResource(domain.ResourceEntry{Path: logical, Open: open})
		}
	}
	return b
}

// Txtar adds the files of a txtar archive. Go files become sources, every
// other file becomes a resource.
func (b *Builder) Txtar(data []byte) *Builder {
	ar := txtar.Parse(data)
	for _, f := range ar.Files {
		logical, err := domain.LogicalPath(f.Name)
		if err != nil {
			b.fail(err)
			continue
		}
		open := bytesOpener(f.Data)
		if strings.HasSuffix(logical, ".go") {
			b.addSource(domain.SourceUnit{Path: logical, Open: open})
		} else {
			b.addResource(domain.ResourceEntry{Path: logical, Open: open})
		}
	}
	return b
}

// Dependencies resolves identifiers with the manager's resolver at Build.
func (b *Builder) Dependencies(ids ...string) *Builder {
	return b.DependenciesFrom(b.manager.resolver, ids...)
}

// DependenciesFrom resolves identifiers with r at Build.
func (b *Builder) DependenciesFrom(r ports.DependencyResolver, ids ...string) *Builder {
	for _, id := range ids {
		b.deps = append(b.deps, dependency{resolver: r, id: id})
	}
	return b
}

// DependencyFiles appends archives to the classpath as-is.
// The caller supplies a transitively complete set.
func (b *Builder) DependencyFiles(paths ...string) *Builder {
	for _, p := range paths {
		b.deps = append(b.deps, dependency{file: p})
	}
	return b
}

// GoVersion sets the language version the sources are checked against.
func (b *Builder) GoVersion(v string) *Builder {
	b.goVersion = v
	return b
}

// Build compiles and packages the accumulated request.
// On failure the temporary root is removed and nothing is registered.
func (b *Builder) Build(ctx context.Context) (*Artifact, error) {
	if b.used {
		return nil, domain.ErrBuilderReused
	}
	b.used = true

	if b.err != nil {
		return nil, b.err
	}

	ctx, span := b.manager.tracer.Start(ctx, "build",
		ports.WithAttribute("sources", len(b.sourceOrder)),
		ports.WithAttribute("resources", len(b.resourceOrder)),
	)
	defer span.End()

	art, err := b.build(ctx, span)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return art, nil
}

func (b *Builder) build(ctx context.Context, span ports.Span) (*Artifact, error) {
	classpath, err := b.classpath(ctx)
	if err != nil {
		return nil, err
	}

	root, err := os.MkdirTemp(b.manager.tempDir, domain.TempDirPattern)
	if err != nil {
		return nil, errors.Join(domain.ErrPackagingFailed, zerr.Wrap(err, "failed to create build root"))
	}

	art, err := b.buildIn(ctx, span, root, classpath)
	if err != nil {
		_ = os.RemoveAll(root)
		return nil, err
	}

	b.manager.registry.register(root, nil)
	return art, nil
}

func (b *Builder) buildIn(ctx context.Context, span ports.Span, root string, classpath []string) (*Artifact, error) {
	classes := filepath.Join(root, domain.ClassesDirName)
	if err := os.MkdirAll(classes, domain.DirPerm); err != nil {
		return nil, errors.Join(domain.ErrPackagingFailed, zerr.With(zerr.Wrap(err, "failed to create output directory"), "path", classes))
	}

	sources := make([]domain.SourceUnit, 0, len(b.sourceOrder))
	for _, p := range b.sourceOrder {
		sources = append(sources, b.sources[p])
	}

	res, err := b.manager.compiler.Compile(ctx, ports.CompileRequest{
		Sources:   sources,
		Classpath: classpath,
		OutputDir: classes,
		GoVersion: b.goVersion,
	})
	if err != nil {
		return nil, err
	}
	for _, d := range res.Diagnostics {
		_, _ = fmt.Fprintln(span, d.String())
	}
	if !res.Success {
		return nil, compilationError(res.Diagnostics)
	}

	resources := make([]domain.ResourceEntry, 0, len(b.resourceOrder))
	for _, p := range b.resourceOrder {
		resources = append(resources, b.resources[p])
	}
	if err := b.manager.packager.CopyResources(ctx, classes, resources); err != nil {
		return nil, err
	}

	info, err := b.manager.packager.Package(ctx, classes, filepath.Join(root, domain.ArchiveFileName))
	if err != nil {
		return nil, err
	}
	span.SetAttribute("digest", info.Digest)

	return &Artifact{
		manager:   b.manager,
		archive:   info.Path,
		classes:   classes,
		classpath: classpath,
		digest:    info.Digest,
		entries:   info.Entries,
	}, nil
}

// classpath resolves dependencies in the order they were added.
func (b *Builder) classpath(ctx context.Context) ([]string, error) {
	var classpath []string
	for _, dep := range b.deps {
		if dep.resolver == nil {
			classpath = append(classpath, dep.file)
			continue
		}
		files, err := dep.resolver.Resolve(ctx, dep.id)
		if err != nil {
			return nil, errors.Join(domain.ErrDependencyResolutionFailed, zerr.With(err, "identifier", dep.id))
		}
		classpath = append(classpath, files...)
	}
	return classpath, nil
}

func compilationError(diags []domain.Diagnostic) error {
	lines := make([]string, 0, len(diags))
	for _, d := range diags {
		lines = append(lines, d.String())
	}
	return zerr.With(zerr.Wrap(domain.ErrCompilationFailed, "compiler reported errors"), "diagnostics", strings.Join(lines, "\n"))
}

func (b *Builder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

func (b *Builder) addSource(src domain.SourceUnit) {
	if _, ok := b.sources[src.Path]; !ok {
		b.sourceOrder = append(b.sourceOrder, src.Path)
	}
	b.sources[src.Path] = src
}

func (b *Builder) addResource(res domain.ResourceEntry) {
	if _, ok := b.resources[res.Path]; !ok {
		b.resourceOrder = append(b.resourceOrder, res.Path)
	}
	b.resources[res.Path] = res
}

// resolveFS maps a path below root in the source file system to its logical path.
func (b *Builder) resolveFS(root, p string) (string, domain.Opener, bool) {
	logical, err := domain.LogicalPath(p)
	if err != nil {
		b.fail(err)
		return "", nil, false
	}

	name := path.Join(path.Clean(strings.ReplaceAll(root, "\\", "/")), logical)
	if !iofs.ValidPath(name) {
		b.fail(zerr.With(zerr.With(domain.ErrPathOutsideRoot, "path", p), "root", root))
		return "", nil, false
	}

	fsys := b.manager.sources
	return logical, func() (io.ReadCloser, error) { return fsys.Open(name) }, true
}

// resolveFile maps a file below root on disk to its logical path.
func (b *Builder) resolveFile(root, f string) (string, domain.Opener, bool) {
	logical, err := domain.LogicalPath(f)
	if err != nil {
		b.fail(zerr.With(err, "root", root))
		return "", nil, false
	}

	name := filepath.Join(root, filepath.FromSlash(logical))
	//nolint:gosec // Path is a validated logical path below a caller-supplied root
	return logical, func() (io.ReadCloser, error) { return os.Open(name) }, true
}

// verify opens a resource once to check that it is readable.
func (b *Builder) verify(logical string, open domain.Opener) bool {
	rc, err := open()
	if err != nil {
		b.fail(errors.Join(domain.ErrResourceNotFound, zerr.With(zerr.Wrap(err, "failed to open resource"), "path", logical)))
		return false
	}
	_ = rc.Close()
	return true
}

func bytesOpener(data []byte) domain.Opener {
	return func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	}
}
