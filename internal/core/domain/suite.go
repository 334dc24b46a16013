package domain

import "regexp"

var validArtifactNameRegex = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

// FileSet names files relative to a root.
type FileSet struct {
	Root  string
	Paths []string
}

// ArtifactSpec declares one artifact of a suite.
type ArtifactSpec struct {
	Name               string
	ClasspathSources   []FileSet
	FileSources        []FileSet
	ClasspathResources []FileSet
	FileResources      []FileSet
	// DependsOn names artifacts of the same suite whose archives join the classpath.
	DependsOn []string
	// Dependencies are identifiers handed to the configured dependency resolver.
	Dependencies []string
	// DependencyFiles are archive paths appended to the classpath as-is.
	DependencyFiles []string
	// Analyze opens an analysis session once the artifact is built.
	Analyze bool
	// Lookup lists names to resolve in the analysis session.
	Lookup []string
}

// Suite is a declarative set of artifacts built together.
type Suite struct {
	// Root is the directory classpath roots are resolved against.
	Root string
	// Registry is the base URL of the registry resolver, empty to disable it.
	Registry string
	// CacheDir overrides the registry resolver cache directory.
	CacheDir  string
	Artifacts []ArtifactSpec
}

// ValidArtifactName reports whether name may be used as an artifact name.
func ValidArtifactName(name string) bool {
	return validArtifactNameRegex.MatchString(name)
}

// Graph builds the dependency graph of the suite's artifacts.
func (s *Suite) Graph() (*Graph, error) {
	g := NewGraph()
	for i := range s.Artifacts {
		if err := g.AddArtifact(&s.Artifacts[i]); err != nil {
			return nil, err
		}
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}
