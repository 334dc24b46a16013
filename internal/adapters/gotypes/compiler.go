// Package gotypes implements the Compiler port on go/parser and go/types.
//
// Each package directory of the request is type-checked and its export data
// is written to <dir>/<name>.gox below the output directory. Packages at the
// root of the source tree use their package name as import path and are
// written to <name>.gox.
package gotypes

import (
	"context"
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/scanner"
	"go/token"
	"go/types"
	"io"
	"os"
	"path"
	"path/filepath"
	"slices"
	"sync"

	"go.trai.ch/testarc/internal/core/domain"
	"go.trai.ch/testarc/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/tools/go/gcexportdata"
)

var _ ports.Compiler = (*Compiler)(nil)

// Compiler type-checks Go sources and writes gc export data.
type Compiler struct {
	// exports caches where the toolchain keeps export data for standard packages.
	exports sync.Map
}

// NewCompiler creates a new Compiler.
func NewCompiler() *Compiler {
	return &Compiler{}
}

// Compile runs one compilation pass.
func (c *Compiler) Compile(ctx context.Context, req ports.CompileRequest) (ports.CompileResult, error) {
	if err := ctx.Err(); err != nil {
		return ports.CompileResult{}, err
	}

	cp, err := OpenClasspath(req.Classpath)
	if err != nil {
		return ports.CompileResult{}, err
	}
	defer cp.Close() //nolint:errcheck // Read-only

	p := newPass(c, req, cp)
	return p.run(ctx)
}

const (
	stateNew = iota
	stateChecking
	stateChecked
)

// unit is one package of the request.
type unit struct {
	importPath string
	dir        string
	name       string
	files      []*ast.File
	pkg        *types.Package
	state      int
}

// pass holds the state of a single compilation.
type pass struct {
	compiler  *Compiler
	req       ports.CompileRequest
	classpath *Classpath
	fset      *token.FileSet
	imports   map[string]*types.Package
	units     map[string]*unit
	order     []string
	info      *types.Info
	diags     []domain.Diagnostic
}

func newPass(c *Compiler, req ports.CompileRequest, cp *Classpath) *pass {
	return &pass{
		compiler:  c,
		req:       req,
		classpath: cp,
		fset:      token.NewFileSet(),
		imports:   make(map[string]*types.Package),
		units:     make(map[string]*unit),
		info: &types.Info{
			Types:      make(map[ast.Expr]types.TypeAndValue),
			Defs:       make(map[*ast.Ident]types.Object),
			Uses:       make(map[*ast.Ident]types.Object),
			Implicits:  make(map[ast.Node]types.Object),
			Selections: make(map[*ast.SelectorExpr]*types.Selection),
			Scopes:     make(map[ast.Node]*types.Scope),
		},
	}
}

func (p *pass) run(ctx context.Context) (ports.CompileResult, error) {
	if err := p.parse(); err != nil {
		return ports.CompileResult{}, err
	}
	if len(p.diags) > 0 {
		return p.result(), nil
	}

	for _, importPath := range p.order {
		if err := ctx.Err(); err != nil {
			return ports.CompileResult{}, err
		}
		if _, err := p.check(p.units[importPath]); err != nil {
			p.report(err)
		}
	}
	if len(p.diags) > 0 {
		return p.result(), nil
	}

	if err := p.process(ctx); err != nil {
		return ports.CompileResult{}, err
	}
	if len(p.diags) > 0 {
		return p.result(), nil
	}

	if err := p.write(); err != nil {
		return ports.CompileResult{}, err
	}
	return p.result(), nil
}

func (p *pass) result() ports.CompileResult {
	return ports.CompileResult{
		Success:     len(p.diags) == 0,
		Diagnostics: p.diags,
	}
}

// parse reads every source unit and groups the files into units.
// Later units with the same logical path replace earlier ones.
func (p *pass) parse() error {
	sources := make(map[string]domain.SourceUnit, len(p.req.Sources))
	var paths []string
	for _, src := range p.req.Sources {
		logical, err := domain.LogicalPath(src.Path)
		if err != nil {
			return err
		}
		if _, seen := sources[logical]; !seen {
			paths = append(paths, logical)
		}
		sources[logical] = src
	}

	for _, logical := range paths {
		content, err := readSource(sources[logical])
		if err != nil {
			return errors.Join(domain.ErrResourceNotFound, zerr.With(err, "path", logical))
		}

		file, err := parser.ParseFile(p.fset, logical, content, parser.ParseComments|parser.SkipObjectResolution)
		if err != nil {
			p.report(err)
			continue
		}
		p.add(logical, file)
	}

	slices.Sort(p.order)
	return nil
}

func readSource(src domain.SourceUnit) ([]byte, error) {
	rc, err := src.Open()
	if err != nil {
		return nil, zerr.Wrap(err, "failed to open source")
	}
	defer rc.Close() //nolint:errcheck // Read-only

	content, err := io.ReadAll(rc)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to read source")
	}
	return content, nil
}

func (p *pass) add(logical string, file *ast.File) {
	dir := path.Dir(logical)
	name := file.Name.Name

	importPath := dir
	if dir == "." {
		dir = ""
		importPath = name
	}

	u, ok := p.units[importPath]
	if !ok {
		u = &unit{importPath: importPath, dir: dir, name: name}
		p.units[importPath] = u
		p.order = append(p.order, importPath)
	}

	if u.name != name {
		p.diags = append(p.diags, domain.Diagnostic{
			Pos:     p.fset.Position(file.Name.Pos()),
			Message: fmt.Sprintf("package %s; expected package %s", name, u.name),
		})
		return
	}
	u.files = append(u.files, file)
}

// check type-checks a unit once, detecting import cycles between units.
func (p *pass) check(u *unit) (*types.Package, error) {
	switch u.state {
	case stateChecking:
		return nil, fmt.Errorf("import cycle not allowed: %s", u.importPath)
	case stateChecked:
		return u.pkg, nil
	}

	u.state = stateChecking
	conf := types.Config{
		Importer:  p,
		Error:     p.report,
		GoVersion: p.req.GoVersion,
	}
	// Errors are collected through conf.Error.
	pkg, _ := conf.Check(u.importPath, p.fset, u.files, p.info)
	u.pkg = pkg
	u.state = stateChecked
	return pkg, nil
}

func (p *pass) report(err error) {
	var typeErr types.Error
	var list scanner.ErrorList
	switch {
	case errors.As(err, &typeErr):
		p.diags = append(p.diags, domain.Diagnostic{
			Pos:     typeErr.Fset.Position(typeErr.Pos),
			Message: typeErr.Msg,
			Soft:    typeErr.Soft,
		})
	case errors.As(err, &list):
		for _, e := range list {
			p.diags = append(p.diags, domain.Diagnostic{Pos: e.Pos, Message: e.Msg})
		}
	default:
		p.diags = append(p.diags, domain.Diagnostic{Message: err.Error()})
	}
}

// Import implements types.Importer.
func (p *pass) Import(importPath string) (*types.Package, error) {
	return p.ImportFrom(importPath, "", 0)
}

// ImportFrom implements types.ImporterFrom. Packages of the pass come first,
// then the classpath, then the standard library.
func (p *pass) ImportFrom(importPath, _ string, _ types.ImportMode) (*types.Package, error) {
	if importPath == "unsafe" {
		return types.Unsafe, nil
	}
	if u, ok := p.units[importPath]; ok {
		return p.check(u)
	}
	if pkg, ok := p.imports[importPath]; ok && pkg.Complete() {
		return pkg, nil
	}
	if f, ok := p.classpath.Lookup(importPath); ok {
		rc, err := f.Open()
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "failed to open export data"), "import_path", importPath)
		}
		defer rc.Close() //nolint:errcheck // Read-only
		return gcexportdata.Read(rc, p.fset, p.imports, importPath)
	}
	return p.importStd(importPath)
}

type exportFile struct {
	filename string
	path     string
}

func (p *pass) importStd(importPath string) (*types.Package, error) {
	var loc exportFile
	if v, ok := p.compiler.exports.Load(importPath); ok {
		loc = v.(exportFile)
	} else {
		//nolint:staticcheck // Single-package lookups; go/packages would load far more than needed
		filename, canonical := gcexportdata.Find(importPath, "")
		if filename == "" {
			return nil, fmt.Errorf("package %s is not in the classpath or the standard library", importPath)
		}
		loc = exportFile{filename: filename, path: canonical}
		p.compiler.exports.Store(importPath, loc)
	}

	if pkg, ok := p.imports[loc.path]; ok && pkg.Complete() {
		return pkg, nil
	}

	f, err := os.Open(loc.filename)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to open export data"), "import_path", importPath)
	}
	defer f.Close() //nolint:errcheck // Read-only

	r, err := gcexportdata.NewReader(f)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to read export data"), "import_path", importPath)
	}
	return gcexportdata.Read(r, p.fset, p.imports, loc.path)
}

// environment returns the live type model of the pass.
func (p *pass) environment() *domain.Environment {
	pkgs := make([]*types.Package, 0, len(p.order))
	for _, importPath := range p.order {
		if pkg := p.units[importPath].pkg; pkg != nil {
			pkgs = append(pkgs, pkg)
		}
	}
	return &domain.Environment{
		Fset:         p.fset,
		Packages:     pkgs,
		Info:         p.info,
		Importer:     p,
		RootPackages: p.classpath.Roots(),
	}
}

// write stores export data for every unit below the output directory.
func (p *pass) write() error {
	for _, importPath := range p.order {
		u := p.units[importPath]
		target := filepath.Join(p.req.OutputDir, filepath.FromSlash(u.dir), u.name+domain.ExportDataExt)
		if err := writeExport(target, p.fset, u.pkg); err != nil {
			return errors.Join(domain.ErrPackagingFailed, zerr.With(err, "path", target))
		}
	}
	return nil
}

func writeExport(target string, fset *token.FileSet, pkg *types.Package) error {
	if err := os.MkdirAll(filepath.Dir(target), domain.DirPerm); err != nil {
		return zerr.Wrap(err, "failed to create output directory")
	}

	//nolint:gosec // Target is derived from validated logical paths
	f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, domain.FilePerm)
	if err != nil {
		return zerr.Wrap(err, "failed to create export data")
	}
	if err := gcexportdata.Write(f, fset, pkg); err != nil {
		_ = f.Close()
		return zerr.Wrap(err, "failed to write export data")
	}
	if err := f.Close(); err != nil {
		return zerr.Wrap(err, "failed to close export data")
	}
	return nil
}
