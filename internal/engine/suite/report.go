package suite

import "go.trai.ch/testarc/internal/engine/compilation"

// Report lists the artifacts of a run in execution order.
type Report struct {
	Artifacts []ArtifactResult
}

// ArtifactResult is one built artifact and the lookups performed on it.
type ArtifactResult struct {
	Name     string
	Artifact *compilation.Artifact
	Lookups  []Lookup
}

// Lookup is the outcome of resolving a name in an analysis session.
type Lookup struct {
	Name   string `json:"name"`
	Found  bool   `json:"found"`
	Object string `json:"object,omitempty"`
}
