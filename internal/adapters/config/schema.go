package config

// Suitefile represents the structure of the testarc.yaml suite file.
type Suitefile struct {
	Version   string                  `yaml:"version"`
	Root      string                  `yaml:"root"`
	Registry  string                  `yaml:"registry"`
	Cache     string                  `yaml:"cache"`
	Artifacts map[string]*ArtifactDTO `yaml:"artifacts"`
}

// ArtifactDTO represents an artifact definition in testarc.yaml.
type ArtifactDTO struct {
	ClasspathSources   []FileSetDTO `yaml:"classpathSources"`
	FileSources        []FileSetDTO `yaml:"fileSources"`
	ClasspathResources []FileSetDTO `yaml:"classpathResources"`
	FileResources      []FileSetDTO `yaml:"fileResources"`
	DependsOn          []string     `yaml:"dependsOn"`
	Dependencies       []string     `yaml:"dependencies"`
	DependencyFiles    []string     `yaml:"dependencyFiles"`
	Analyze            bool         `yaml:"analyze"`
	Lookup             []string     `yaml:"lookup"`
}

// FileSetDTO represents a root with relative paths.
type FileSetDTO struct {
	Root  string   `yaml:"root"`
	Paths []string `yaml:"paths"`
}

// hclSuitefile represents the structure of the testarc.hcl suite file.
type hclSuitefile struct {
	Version   string         `hcl:"version,optional"`
	Root      string         `hcl:"root,optional"`
	Registry  string         `hcl:"registry,optional"`
	Cache     string         `hcl:"cache,optional"`
	Artifacts []*hclArtifact `hcl:"artifact,block"`
}

type hclArtifact struct {
	Name               string       `hcl:"name,label"`
	ClasspathSources   []hclFileSet `hcl:"classpath_sources,block"`
	FileSources        []hclFileSet `hcl:"file_sources,block"`
	ClasspathResources []hclFileSet `hcl:"classpath_resources,block"`
	FileResources      []hclFileSet `hcl:"file_resources,block"`
	DependsOn          []string     `hcl:"depends_on,optional"`
	Dependencies       []string     `hcl:"dependencies,optional"`
	DependencyFiles    []string     `hcl:"dependency_files,optional"`
	Analyze            bool         `hcl:"analyze,optional"`
	Lookup             []string     `hcl:"lookup,optional"`
}

type hclFileSet struct {
	Root  string   `hcl:"root,optional"`
	Paths []string `hcl:"paths"`
}

func (a *hclArtifact) dto() *ArtifactDTO {
	return &ArtifactDTO{
		ClasspathSources:   fileSetDTOs(a.ClasspathSources),
		FileSources:        fileSetDTOs(a.FileSources),
		ClasspathResources: fileSetDTOs(a.ClasspathResources),
		FileResources:      fileSetDTOs(a.FileResources),
		DependsOn:          a.DependsOn,
		Dependencies:       a.Dependencies,
		DependencyFiles:    a.DependencyFiles,
		Analyze:            a.Analyze,
		Lookup:             a.Lookup,
	}
}

func fileSetDTOs(sets []hclFileSet) []FileSetDTO {
	if len(sets) == 0 {
		return nil
	}
	out := make([]FileSetDTO, len(sets))
	for i, s := range sets {
		out[i] = FileSetDTO(s)
	}
	return out
}
