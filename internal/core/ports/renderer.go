package ports

import "time"

// Renderer is the abstraction for progress output.
// It decouples telemetry collection from presentation.
//
//go:generate mockgen -source=renderer.go -destination=mocks/mock_renderer.go -package=mocks
type Renderer interface {
	// OnPlanEmit is called once a suite has been validated.
	// artifacts: artifact names in build order
	// deps: named dependencies per artifact
	OnPlanEmit(artifacts []string, deps map[string][]string)

	// OnTaskStart is called when a unit of work begins.
	// spanID: unique identifier for this unit
	// parentID: spanID of the parent (empty if root)
	// name: human-readable name
	OnTaskStart(spanID, parentID, name string, startTime time.Time)

	// OnTaskLog is called when a unit emits output.
	OnTaskLog(spanID string, data []byte)

	// OnTaskComplete is called when a unit finishes.
	// err: nil if successful, error otherwise
	OnTaskComplete(spanID string, endTime time.Time, err error)

	// Flush writes any buffered output.
	Flush() error
}
