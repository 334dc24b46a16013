// Package domain contains the core domain models of the compilation service.
package domain

import (
	"iter"
	"strings"

	"go.trai.ch/zerr"
)

// Graph represents the named-dependency graph of a suite's artifacts.
type Graph struct {
	specs          map[string]ArtifactSpec
	order          []string
	dependents     map[string][]string
	executionOrder []string
}

// NewGraph creates a new empty Graph.
func NewGraph() *Graph {
	return &Graph{
		specs:      make(map[string]ArtifactSpec),
		dependents: make(map[string][]string),
	}
}

// AddArtifact adds an artifact spec to the graph.
// It returns an error if the name is invalid or already present.
func (g *Graph) AddArtifact(spec *ArtifactSpec) error {
	if !ValidArtifactName(spec.Name) {
		return zerr.With(ErrInvalidArtifactName, "name", spec.Name)
	}
	if _, exists := g.specs[spec.Name]; exists {
		return zerr.With(ErrDuplicateName, "name", spec.Name)
	}
	g.specs[spec.Name] = *spec
	g.order = append(g.order, spec.Name)
	return nil
}

// Validate checks for missing dependencies and cycles using a topological sort.
// Artifacts are visited in declaration order so the execution order is stable.
func (g *Graph) Validate() error {
	g.executionOrder = make([]string, 0, len(g.specs))
	g.dependents = make(map[string][]string, len(g.specs))
	visited := make(map[string]int) // 0: unvisited, 1: visiting, 2: visited
	var path []string

	var visit func(u string) error
	visit = func(u string) error {
		visited[u] = 1
		path = append(path, u)

		spec := g.specs[u]
		for _, dep := range spec.DependsOn {
			if _, exists := g.specs[dep]; !exists {
				return zerr.With(zerr.With(ErrMissingDependency, "dependency", dep), "name", u)
			}
			if visited[dep] == 1 {
				return g.buildCycleError(path, dep)
			}
			if visited[dep] == 0 {
				if err := visit(dep); err != nil {
					return err
				}
			}
		}

		visited[u] = 2
		path = path[:len(path)-1]
		g.executionOrder = append(g.executionOrder, u)
		return nil
	}

	for _, name := range g.order {
		if visited[name] == 0 {
			if err := visit(name); err != nil {
				return err
			}
		}
	}

	for _, name := range g.order {
		for _, dep := range g.specs[name].DependsOn {
			g.dependents[dep] = append(g.dependents[dep], name)
		}
	}

	return nil
}

// buildCycleError constructs an error with cycle path metadata.
func (g *Graph) buildCycleError(path []string, dep string) error {
	startIdx := 0
	for i, node := range path {
		if node == dep {
			startIdx = i
			break
		}
	}
	cycle := append(append([]string{}, path[startIdx:]...), dep)
	return zerr.With(ErrCycleDetected, "cycle", strings.Join(cycle, " -> "))
}

// Get returns the artifact spec with the given name.
func (g *Graph) Get(name string) (ArtifactSpec, bool) {
	spec, ok := g.specs[name]
	return spec, ok
}

// Dependents returns the names of artifacts that directly depend on name.
func (g *Graph) Dependents(name string) []string {
	return g.dependents[name]
}

// Len returns the number of artifacts in the graph.
func (g *Graph) Len() int {
	return len(g.specs)
}

// Walk returns an iterator that yields artifact specs in execution order.
// It assumes Validate() has been called and returned nil.
func (g *Graph) Walk() iter.Seq[ArtifactSpec] {
	return func(yield func(ArtifactSpec) bool) {
		for _, name := range g.executionOrder {
			if !yield(g.specs[name]) {
				return
			}
		}
	}
}
