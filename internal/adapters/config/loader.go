// Package config loads build suites from testarc.yaml or testarc.hcl.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"go.trai.ch/testarc/internal/core/domain"
	"go.trai.ch/testarc/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var _ ports.ConfigLoader = (*Loader)(nil)

// supportedVersion is the only suite file version understood by the loader.
const supportedVersion = "1"

// Loader implements ports.ConfigLoader for YAML and HCL suite files.
type Loader struct {
	Logger ports.Logger
	FS     FileSystem
}

// NewLoader creates a new Loader with the given logger reading from the OS filesystem.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger, FS: NewOSFS()}
}

// Load reads the suite file at path. When path is a directory, the nearest
// testarc.yaml or testarc.hcl in it or one of its parents is used.
// The returned suite has a valid artifact graph.
func (l *Loader) Load(path string) (*domain.Suite, error) {
	configPath, err := l.findConfiguration(path)
	if err != nil {
		return nil, err
	}

	data, err := l.FS.ReadFile(configPath)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "path", configPath)
	}

	var file *Suitefile
	switch filepath.Ext(configPath) {
	case ".yaml", ".yml":
		file, err = parseYAML(data)
	case ".hcl":
		file, err = parseHCL(data, configPath)
	default:
		return nil, zerr.With(domain.ErrUnsupportedConfigFormat, "path", configPath)
	}
	if err != nil {
		return nil, zerr.With(err, "path", configPath)
	}

	return l.buildSuite(configPath, file)
}

func (l *Loader) findConfiguration(path string) (string, error) {
	info, err := l.FS.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", zerr.With(domain.ErrConfigNotFound, "path", path)
		}
		return "", zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "path", path)
	}
	if !info.IsDir() {
		return path, nil
	}

	currentDir := path
	for {
		for _, name := range []string{domain.SuiteFileName, domain.SuiteHCLFileName} {
			candidate := filepath.Join(currentDir, name)
			if _, err := l.FS.Stat(candidate); err == nil {
				return candidate, nil
			}
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root
			break
		}
		currentDir = parentDir
	}

	return "", zerr.With(domain.ErrConfigNotFound, "cwd", path)
}

func parseYAML(data []byte) (*Suitefile, error) {
	var file Suitefile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, zerr.Wrap(err, domain.ErrConfigParseFailed.Error())
	}
	return &file, nil
}

func parseHCL(data []byte, configPath string) (*Suitefile, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, configPath)
	if diags.HasErrors() {
		return nil, zerr.Wrap(diags, domain.ErrConfigParseFailed.Error())
	}

	var parsed hclSuitefile
	if diags := gohcl.DecodeBody(hclFile.Body, nil, &parsed); diags.HasErrors() {
		return nil, zerr.Wrap(diags, domain.ErrConfigParseFailed.Error())
	}

	file := &Suitefile{
		Version:   parsed.Version,
		Root:      parsed.Root,
		Registry:  parsed.Registry,
		Cache:     parsed.Cache,
		Artifacts: make(map[string]*ArtifactDTO, len(parsed.Artifacts)),
	}
	for _, a := range parsed.Artifacts {
		if _, exists := file.Artifacts[a.Name]; exists {
			return nil, zerr.With(domain.ErrDuplicateName, "name", a.Name)
		}
		file.Artifacts[a.Name] = a.dto()
	}
	return file, nil
}

func (l *Loader) buildSuite(configPath string, file *Suitefile) (*domain.Suite, error) {
	if file.Version != "" && file.Version != supportedVersion {
		l.Logger.Warn(fmt.Sprintf("unknown suite file version %q in %s, reading it as version %s",
			file.Version, filepath.Base(configPath), supportedVersion))
	}

	root := resolveRoot(configPath, file.Root)
	suite := &domain.Suite{
		Root:     root,
		Registry: strings.TrimSuffix(file.Registry, "/"),
	}
	if file.Cache != "" {
		suite.CacheDir = resolvePath(root, file.Cache)
	}

	// Map iteration order is random; sort so the suite is deterministic.
	names := make([]string, 0, len(file.Artifacts))
	for name := range file.Artifacts {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		dto := file.Artifacts[name]
		if dto == nil {
			dto = &ArtifactDTO{}
		}
		suite.Artifacts = append(suite.Artifacts, buildArtifact(name, dto))
	}

	if _, err := suite.Graph(); err != nil {
		return nil, zerr.With(err, "path", configPath)
	}
	return suite, nil
}

func buildArtifact(name string, dto *ArtifactDTO) domain.ArtifactSpec {
	return domain.ArtifactSpec{
		Name:               name,
		ClasspathSources:   fileSets(dto.ClasspathSources),
		FileSources:        fileSets(dto.FileSources),
		ClasspathResources: fileSets(dto.ClasspathResources),
		FileResources:      fileSets(dto.FileResources),
		DependsOn:          dto.DependsOn,
		Dependencies:       dto.Dependencies,
		DependencyFiles:    dto.DependencyFiles,
		Analyze:            dto.Analyze,
		Lookup:             dto.Lookup,
	}
}

func fileSets(dtos []FileSetDTO) []domain.FileSet {
	if len(dtos) == 0 {
		return nil
	}
	sets := make([]domain.FileSet, len(dtos))
	for i, dto := range dtos {
		sets[i] = domain.FileSet{Root: dto.Root, Paths: dto.Paths}
	}
	return sets
}

// resolveRoot resolves configuredRoot against the directory holding configPath.
func resolveRoot(configPath, configuredRoot string) string {
	return resolvePath(filepath.Dir(configPath), configuredRoot)
}

func resolvePath(base, p string) string {
	if p == "" {
		return filepath.Clean(base)
	}
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Clean(filepath.Join(base, p))
}
