package domain

import (
	"fmt"
	"go/token"
	"go/types"
)

// Environment is the type model of a compilation pass.
// It stays usable for as long as the pass that produced it has not returned.
type Environment struct {
	// Fset holds positions for every package loaded by the pass.
	Fset *token.FileSet
	// Packages are the packages compiled from the pass's own sources.
	Packages []*types.Package
	// Info holds type information recorded for the pass's own sources.
	Info *types.Info
	// Importer loads packages from the pass's classpath and the standard library.
	Importer types.Importer
	// RootPackages lists the import paths of classpath packages stored at an archive root.
	RootPackages []string
}

// Round is delivered to a processor after a processing round.
type Round struct {
	// Number is the 1-based round counter.
	Number int
	// Over is true on the final round, after every input has been processed.
	Over bool
	// Annotated maps a marker name to the objects carrying its directive.
	Annotated map[string][]types.Object
	// Env is the live type model.
	Env *Environment
}

// Diagnostic is a single compiler message.
type Diagnostic struct {
	Pos     token.Position
	Message string
	Soft    bool
}

// String formats the diagnostic as file:line:col: message.
func (d Diagnostic) String() string {
	if !d.Pos.IsValid() {
		return d.Message
	}
	return fmt.Sprintf("%s: %s", d.Pos, d.Message)
}
