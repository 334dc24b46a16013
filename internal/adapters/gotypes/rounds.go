package gotypes

import (
	"context"
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"strings"

	"go.trai.ch/testarc/internal/core/domain"
	"go.trai.ch/testarc/internal/core/ports"
	"golang.org/x/tools/go/ast/inspector"
)

// process runs the processing rounds. Round 1 carries the annotated
// objects; the final round goes to every processor that saw round 1.
func (p *pass) process(ctx context.Context) error {
	if len(p.req.Processors) == 0 {
		return nil
	}

	annotated := p.scan()
	if len(p.diags) > 0 {
		return nil
	}

	env := p.environment()
	var invoked []ports.Processor
	for _, proc := range p.req.Processors {
		found := make(map[string][]types.Object)
		for _, marker := range proc.Markers() {
			if objs := annotated[marker]; len(objs) > 0 {
				found[marker] = objs
			}
		}
		if len(found) == 0 {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		invoked = append(invoked, proc)
		round := domain.Round{Number: 1, Annotated: found, Env: env}
		if err := proc.Process(ctx, round); err != nil {
			p.diags = append(p.diags, domain.Diagnostic{Message: fmt.Sprintf("processor: %v", err)})
			return nil
		}
	}

	final := domain.Round{Number: 2, Over: true, Annotated: map[string][]types.Object{}, Env: env}
	for _, proc := range invoked {
		if err := proc.Process(ctx, final); err != nil {
			p.diags = append(p.diags, domain.Diagnostic{Message: fmt.Sprintf("processor: %v", err)})
			return nil
		}
	}
	return nil
}

// scan collects the objects carrying a marker directive, keyed by marker name.
func (p *pass) scan() map[string][]types.Object {
	annotated := make(map[string][]types.Object)

	for _, importPath := range p.order {
		u := p.units[importPath]
		if u.pkg == nil {
			continue
		}

		in := inspector.New(u.files)
		filter := []ast.Node{(*ast.GenDecl)(nil), (*ast.FuncDecl)(nil)}
		in.Preorder(filter, func(n ast.Node) {
			switch decl := n.(type) {
			case *ast.FuncDecl:
				p.annotate(annotated, u.pkg, decl.Doc, []*ast.Ident{decl.Name})
			case *ast.GenDecl:
				for _, spec := range decl.Specs {
					doc, names := specNames(spec)
					if decl.Lparen == token.NoPos {
						doc = decl.Doc
					}
					p.annotate(annotated, u.pkg, doc, names)
				}
			}
		})
	}

	return annotated
}

func specNames(spec ast.Spec) (*ast.CommentGroup, []*ast.Ident) {
	switch s := spec.(type) {
	case *ast.TypeSpec:
		return s.Doc, []*ast.Ident{s.Name}
	case *ast.ValueSpec:
		return s.Doc, s.Names
	default:
		return nil, nil
	}
}

func (p *pass) annotate(annotated map[string][]types.Object, pkg *types.Package, doc *ast.CommentGroup, names []*ast.Ident) {
	if doc == nil {
		return
	}
	for _, c := range doc.List {
		marker, ok := strings.CutPrefix(c.Text, domain.DirectivePrefix)
		if !ok {
			continue
		}
		marker = strings.TrimSpace(marker)

		if _, isType := pkg.Scope().Lookup(marker).(*types.TypeName); !isType {
			p.diags = append(p.diags, domain.Diagnostic{
				Pos:     p.fset.Position(c.Pos()),
				Message: fmt.Sprintf("unknown marker %q", marker),
			})
			continue
		}

		for _, name := range names {
			if obj := p.info.Defs[name]; obj != nil {
				annotated[marker] = append(annotated[marker], obj)
			}
		}
	}
}
