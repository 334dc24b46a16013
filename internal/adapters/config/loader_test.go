package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/testarc/internal/adapters/config"
	"go.trai.ch/testarc/internal/core/domain"
	"go.trai.ch/testarc/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

const yamlSuite = `version: "1"
root: project
registry: https://registry.example.com/
cache: .cache
artifacts:
  base:
    fileSources:
      - root: src
        paths: [greet/greet.go]
    fileResources:
      - root: res
        paths: [greeting.txt]
  app:
    fileSources:
      - root: src
        paths: [app/app.go]
    dependsOn: [base]
    dependencies: [logging@1.0.0]
    dependencyFiles: [libs/extra.zip]
    analyze: true
    lookup: [App, greet.Greeter]
`

const hclSuite = `version  = "1"
root     = "project"
registry = "https://registry.example.com/"
cache    = ".cache"

artifact "base" {
  file_sources {
    root  = "src"
    paths = ["greet/greet.go"]
  }
  file_resources {
    root  = "res"
    paths = ["greeting.txt"]
  }
}

artifact "app" {
  file_sources {
    root  = "src"
    paths = ["app/app.go"]
  }
  depends_on       = ["base"]
  dependencies     = ["logging@1.0.0"]
  dependency_files = ["libs/extra.zip"]
  analyze          = true
  lookup           = ["App", "greet.Greeter"]
}
`

func newLoader(t *testing.T, root string, files fstest.MapFS) *config.Loader {
	t.Helper()
	ctrl := gomock.NewController(t)
	return &config.Loader{
		Logger: mocks.NewMockLogger(ctrl),
		FS:     config.NewMountedFS(root, files),
	}
}

func expectedSuite(root string) *domain.Suite {
	project := filepath.Join(root, "project")
	return &domain.Suite{
		Root:     project,
		Registry: "https://registry.example.com",
		CacheDir: filepath.Join(project, ".cache"),
		Artifacts: []domain.ArtifactSpec{
			{
				Name:            "app",
				FileSources:     []domain.FileSet{{Root: "src", Paths: []string{"app/app.go"}}},
				DependsOn:       []string{"base"},
				Dependencies:    []string{"logging@1.0.0"},
				DependencyFiles: []string{"libs/extra.zip"},
				Analyze:         true,
				Lookup:          []string{"App", "greet.Greeter"},
			},
			{
				Name:          "base",
				FileSources:   []domain.FileSet{{Root: "src", Paths: []string{"greet/greet.go"}}},
				FileResources: []domain.FileSet{{Root: "res", Paths: []string{"greeting.txt"}}},
			},
		},
	}
}

func TestLoader_Formats(t *testing.T) {
	root := "/work"
	tests := []struct {
		name string
		file string
		data string
	}{
		{name: "yaml", file: domain.SuiteFileName, data: yamlSuite},
		{name: "hcl", file: domain.SuiteHCLFileName, data: hclSuite},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newLoader(t, root, fstest.MapFS{
				tt.file: {Data: []byte(tt.data)},
			})

			suite, err := l.Load(filepath.Join(root, tt.file))
			require.NoError(t, err)
			assert.Equal(t, expectedSuite(root), suite)
		})
	}
}

func TestLoader_Discovery(t *testing.T) {
	root := "/work"
	l := newLoader(t, root, fstest.MapFS{
		domain.SuiteHCLFileName:           {Data: []byte(`artifact "outer" {}`)},
		"nested/deeper/keep.txt":          {Data: []byte("x")},
		"sibling/" + domain.SuiteFileName: {Data: []byte("artifacts:\n  sibling: {}\n")},
	})

	suite, err := l.Load(filepath.Join(root, "nested", "deeper"))
	require.NoError(t, err)
	require.Len(t, suite.Artifacts, 1)
	assert.Equal(t, "outer", suite.Artifacts[0].Name)
	assert.Equal(t, root, suite.Root)

	suite, err = l.Load(filepath.Join(root, "sibling"))
	require.NoError(t, err)
	assert.Equal(t, "sibling", suite.Artifacts[0].Name)
	assert.Equal(t, filepath.Join(root, "sibling"), suite.Root)
}

func TestLoader_PrefersYAML(t *testing.T) {
	root := "/work"
	l := newLoader(t, root, fstest.MapFS{
		domain.SuiteFileName:    {Data: []byte("artifacts:\n  from-yaml: {}\n")},
		domain.SuiteHCLFileName: {Data: []byte(`artifact "from-hcl" {}`)},
	})

	suite, err := l.Load(root)
	require.NoError(t, err)
	assert.Equal(t, "from-yaml", suite.Artifacts[0].Name)
}

func TestLoader_Errors(t *testing.T) {
	root := "/work"
	tests := []struct {
		name     string
		files    fstest.MapFS
		path     string
		category error
		message  string
	}{
		{
			name:    "not found",
			files:   fstest.MapFS{"empty/keep.txt": {Data: []byte("x")}},
			path:    "/elsewhere",
			message: domain.ErrConfigNotFound.Error(),
		},
		{
			name:    "unsupported format",
			files:   fstest.MapFS{"suite.toml": {Data: []byte("")}},
			path:    "suite.toml",
			message: domain.ErrUnsupportedConfigFormat.Error(),
		},
		{
			name:    "invalid yaml",
			files:   fstest.MapFS{domain.SuiteFileName: {Data: []byte("artifacts: [unclosed")}},
			path:    domain.SuiteFileName,
			message: domain.ErrConfigParseFailed.Error(),
		},
		{
			name:    "invalid hcl",
			files:   fstest.MapFS{domain.SuiteHCLFileName: {Data: []byte(`artifact "a" {`)}},
			path:    domain.SuiteHCLFileName,
			message: domain.ErrConfigParseFailed.Error(),
		},
		{
			name:    "unknown hcl attribute",
			files:   fstest.MapFS{domain.SuiteHCLFileName: {Data: []byte("artifact \"a\" {\n  command = \"x\"\n}\n")}},
			path:    domain.SuiteHCLFileName,
			message: domain.ErrConfigParseFailed.Error(),
		},
		{
			name:     "duplicate hcl artifact",
			files:    fstest.MapFS{domain.SuiteHCLFileName: {Data: []byte("artifact \"a\" {}\nartifact \"a\" {}\n")}},
			path:     domain.SuiteHCLFileName,
			category: domain.ErrIllegalConfiguration,
			message:  "duplicate artifact name",
		},
		{
			name: "cycle",
			files: fstest.MapFS{domain.SuiteFileName: {Data: []byte(
				"artifacts:\n  a:\n    dependsOn: [b]\n  b:\n    dependsOn: [a]\n")}},
			path:     domain.SuiteFileName,
			category: domain.ErrIllegalConfiguration,
			message:  "cycle detected",
		},
		{
			name: "missing dependency",
			files: fstest.MapFS{domain.SuiteFileName: {Data: []byte(
				"artifacts:\n  a:\n    dependsOn: [ghost]\n")}},
			path:     domain.SuiteFileName,
			category: domain.ErrIllegalConfiguration,
			message:  "missing dependency",
		},
		{
			name: "invalid name",
			files: fstest.MapFS{domain.SuiteFileName: {Data: []byte(
				"artifacts:\n  \"a b\": {}\n")}},
			path:     domain.SuiteFileName,
			category: domain.ErrIllegalConfiguration,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newLoader(t, root, tt.files)

			_, err := l.Load(tt.path)
			require.Error(t, err)
			if tt.category != nil {
				assert.True(t, errors.Is(err, tt.category))
			}
			if tt.message != "" {
				assert.ErrorContains(t, err, tt.message)
			}
		})
	}
}

func TestLoader_UnknownVersionWarns(t *testing.T) {
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Warn(`unknown suite file version "2" in testarc.yaml, reading it as version 1`)

	l := &config.Loader{
		Logger: log,
		FS: config.NewMountedFS("/work", fstest.MapFS{
			domain.SuiteFileName: {Data: []byte("version: \"2\"\nartifacts:\n  a: {}\n")},
		}),
	}

	suite, err := l.Load("/work/" + domain.SuiteFileName)
	require.NoError(t, err)
	assert.Len(t, suite.Artifacts, 1)
}

func TestLoader_OSFS(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, domain.SuiteFileName)
	require.NoError(t, os.WriteFile(path, []byte("artifacts:\n  a: {}\n"), domain.PrivateFilePerm))

	ctrl := gomock.NewController(t)
	suite, err := config.NewLoader(mocks.NewMockLogger(ctrl)).Load(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, suite.Root)
	assert.Equal(t, "a", suite.Artifacts[0].Name)
}
