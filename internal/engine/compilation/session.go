package compilation

import (
	"go/types"
	"strings"
	"sync"

	"go.trai.ch/testarc/internal/core/domain"
)

// Session exposes the type model of a parked compilation pass.
// Calls are serialized. After Cleanup the session is stale.
type Session struct {
	mu  sync.Mutex
	env *domain.Environment
}

func newSession(env *domain.Environment) *Session {
	return &Session{env: env}
}

// Environment returns the live type model.
func (s *Session) Environment() *domain.Environment {
	return s.env
}

// Lookup resolves "importpath.Name", or a bare "Name" searched in the packages
// stored at the root of the classpath archives. It returns nil and no error
// when nothing by that name exists.
func (s *Session) Lookup(name string) (types.Object, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	importPath, ident, qualified := splitQualified(name)
	if !qualified {
		for _, root := range s.env.RootPackages {
			pkg, err := s.env.Importer.Import(root)
			if err != nil {
				return nil, err
			}
			if obj := pkg.Scope().Lookup(ident); obj != nil {
				return obj, nil
			}
		}
		return nil, nil
	}

	pkg, err := s.env.Importer.Import(importPath)
	if err != nil {
		//nolint:nilerr // An unknown package means the name does not exist
		return nil, nil
	}
	return pkg.Scope().Lookup(ident), nil
}

// Package loads a package from the classpath or the standard library.
func (s *Session) Package(importPath string) (*types.Package, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.env.Importer.Import(importPath)
}

// AssignableTo reports whether a value of type v is assignable to a variable of type t.
func (s *Session) AssignableTo(v, t types.Type) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return types.AssignableTo(v, t)
}

// Implements reports whether type t implements interface iface.
func (s *Session) Implements(t types.Type, iface *types.Interface) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return types.Implements(t, iface)
}

// Identical reports whether x and y are identical types.
func (s *Session) Identical(x, y types.Type) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return types.Identical(x, y)
}

// splitQualified splits at the last dot after the last slash.
func splitQualified(name string) (importPath, ident string, ok bool) {
	slash := strings.LastIndex(name, "/")
	dot := strings.LastIndex(name[slash+1:], ".")
	if dot < 0 {
		return "", name, false
	}
	dot += slash + 1
	return name[:dot], name[dot+1:], true
}
