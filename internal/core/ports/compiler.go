package ports

import (
	"context"

	"go.trai.ch/testarc/internal/core/domain"
)

// CompileRequest describes one compilation pass.
type CompileRequest struct {
	// Sources are compiled in order.
	Sources []domain.SourceUnit
	// Classpath lists archives consulted for imports, first match wins.
	Classpath []string
	// OutputDir receives compiled output mirroring the sources' logical paths.
	OutputDir string
	// Processors receive processing rounds.
	Processors []Processor
	// GoVersion sets the language version, e.g. "go1.22". Empty means the latest.
	GoVersion string
}

// CompileResult reports the outcome of a compilation pass.
type CompileResult struct {
	Success     bool
	Diagnostics []domain.Diagnostic
}

// Compiler runs compilation passes. It must be safe for concurrent use.
//
//go:generate mockgen -source=compiler.go -destination=mocks/mock_compiler.go -package=mocks
type Compiler interface {
	// Compile runs exactly one pass. The error is reserved for failures to run
	// the pass at all; compile errors are reported through CompileResult.
	Compile(ctx context.Context, req CompileRequest) (CompileResult, error)
}

// Processor is a lifecycle callback attached to a compilation pass.
//
// Process is called with every round in which one of its markers appears and
// with the final round once it has been called before. It may block: the pass
// does not return until Process does.
type Processor interface {
	// Markers returns the marker names the processor handles.
	Markers() []string
	// Process handles a round. A returned error fails the pass.
	Process(ctx context.Context, round domain.Round) error
}
