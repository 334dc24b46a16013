package commands_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/testarc/cmd/testarc/commands"
	"go.trai.ch/testarc/internal/app"
	"go.trai.ch/testarc/internal/build"
	"go.trai.ch/testarc/internal/engine/suite"
)

type mockApp struct {
	buildFunc   func(ctx context.Context, opts app.BuildOptions) ([]app.ArtifactSummary, error)
	inspectFunc func(ctx context.Context, opts app.InspectOptions) ([]suite.Lookup, error)
	listFunc    func(ctx context.Context, path string) ([]string, error)
	cleanFunc   func(ctx context.Context, opts app.CleanOptions) error
}

func (m *mockApp) Build(ctx context.Context, opts app.BuildOptions) ([]app.ArtifactSummary, error) {
	if m.buildFunc != nil {
		return m.buildFunc(ctx, opts)
	}
	return nil, nil
}

func (m *mockApp) Inspect(ctx context.Context, opts app.InspectOptions) ([]suite.Lookup, error) {
	if m.inspectFunc != nil {
		return m.inspectFunc(ctx, opts)
	}
	return nil, nil
}

func (m *mockApp) List(ctx context.Context, path string) ([]string, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, path)
	}
	return nil, nil
}

func (m *mockApp) Clean(ctx context.Context, opts app.CleanOptions) error {
	if m.cleanFunc != nil {
		return m.cleanFunc(ctx, opts)
	}
	return nil
}

var summaries = []app.ArtifactSummary{
	{
		Name:    "base",
		Digest:  "0123456789abcdef",
		Entries: []string{"greet/", "greet/greet.gox"},
		Archive: "/work/.testarc/artifacts/testarc-1/compiled.zip",
	},
	{
		Name:      "app",
		Digest:    "fedcba9876543210",
		Entries:   []string{"app/", "app/app.gox"},
		Archive:   "/work/.testarc/artifacts/testarc-2/compiled.zip",
		Classpath: []string{"/work/.testarc/artifacts/testarc-1/compiled.zip"},
		Lookups: []suite.Lookup{
			{Name: "greet.Greeter", Found: true, Object: "type greet.Greeter struct{}"},
			{Name: "Missing"},
		},
	},
}

func execute(t *testing.T, a commands.Application, args ...string) (string, error) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")

	cli := commands.New(a)
	buf := new(bytes.Buffer)
	cli.SetOutput(buf, buf)
	cli.SetArgs(args)
	err := cli.Execute(context.Background())
	return buf.String(), err
}

func TestCommands_Build(t *testing.T) {
	t.Run("wires flags correctly", func(t *testing.T) {
		var captured app.BuildOptions
		mock := &mockApp{
			buildFunc: func(_ context.Context, opts app.BuildOptions) ([]app.ArtifactSummary, error) {
				captured = opts
				return nil, nil
			},
		}

		_, err := execute(t, mock, "build", "suites/testarc.hcl", "--keep", "-t", "app", "--target", "base")
		require.NoError(t, err)
		assert.Equal(t, app.BuildOptions{
			Path:    "suites/testarc.hcl",
			Targets: []string{"app", "base"},
			Keep:    true,
		}, captured)
	})

	t.Run("defaults to the current directory", func(t *testing.T) {
		var captured app.BuildOptions
		mock := &mockApp{
			buildFunc: func(_ context.Context, opts app.BuildOptions) ([]app.ArtifactSummary, error) {
				captured = opts
				return nil, nil
			},
		}

		_, err := execute(t, mock, "build")
		require.NoError(t, err)
		assert.Equal(t, ".", captured.Path)
		assert.False(t, captured.Keep)
	})

	t.Run("prints a report", func(t *testing.T) {
		mock := &mockApp{
			buildFunc: func(context.Context, app.BuildOptions) ([]app.ArtifactSummary, error) {
				return summaries, nil
			},
		}

		out, err := execute(t, mock, "build", "--keep")
		require.NoError(t, err)

		g := goldie.New(t)
		g.Assert(t, "build_report", []byte(out))
	})

	t.Run("prints json", func(t *testing.T) {
		mock := &mockApp{
			buildFunc: func(context.Context, app.BuildOptions) ([]app.ArtifactSummary, error) {
				return summaries, nil
			},
		}

		out, err := execute(t, mock, "build", "--json")
		require.NoError(t, err)

		var decoded []app.ArtifactSummary
		require.NoError(t, json.Unmarshal([]byte(out), &decoded))
		assert.Equal(t, summaries, decoded)
	})

	t.Run("returns error on build failure", func(t *testing.T) {
		mock := &mockApp{
			buildFunc: func(context.Context, app.BuildOptions) ([]app.ArtifactSummary, error) {
				return nil, errors.New("simulated error")
			},
		}

		_, err := execute(t, mock, "build")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "simulated error")
	})
}

func TestCommands_JSONHook(t *testing.T) {
	var enabled []bool
	cli := commands.New(&mockApp{}, commands.WithJSONHook(func(on bool) {
		enabled = append(enabled, on)
	}))
	cli.SetOutput(new(bytes.Buffer), new(bytes.Buffer))
	cli.SetArgs([]string{"clean", "--json"})

	require.NoError(t, cli.Execute(context.Background()))
	assert.Equal(t, []bool{true}, enabled)
}

func TestCommands_Inspect(t *testing.T) {
	var captured app.InspectOptions
	mock := &mockApp{
		inspectFunc: func(_ context.Context, opts app.InspectOptions) ([]suite.Lookup, error) {
			captured = opts
			return summaries[1].Lookups, nil
		},
	}

	out, err := execute(t, mock, "inspect", "app", "greet.Greeter", "Missing", "-f", "testarc.yaml")
	require.NoError(t, err)
	assert.Equal(t, app.InspectOptions{
		Path:    "testarc.yaml",
		Name:    "app",
		Symbols: []string{"greet.Greeter", "Missing"},
	}, captured)
	assert.Equal(t, "greet.Greeter: type greet.Greeter struct{}\nMissing: not found\n", out)

	_, err = execute(t, mock, "inspect", "app")
	require.Error(t, err, "at least one symbol is required")
}

func TestCommands_List(t *testing.T) {
	mock := &mockApp{
		listFunc: func(_ context.Context, path string) ([]string, error) {
			assert.Equal(t, "compiled.zip", path)
			return []string{"META-INF/", "META-INF/MANIFEST.MF", "pkg/", "pkg/pkg.gox"}, nil
		},
	}

	out, err := execute(t, mock, "list", "compiled.zip")
	require.NoError(t, err)
	assert.Equal(t, "META-INF/\nMETA-INF/MANIFEST.MF\npkg/\npkg/pkg.gox\n", out)
}

func TestCommands_Clean(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected app.CleanOptions
	}{
		{
			name:     "default",
			args:     []string{"clean"},
			expected: app.CleanOptions{Path: ".", Artifacts: true},
		},
		{
			name:     "cache",
			args:     []string{"clean", "--cache"},
			expected: app.CleanOptions{Path: ".", Cache: true},
		},
		{
			name:     "all",
			args:     []string{"clean", "-a", "-f", "dir"},
			expected: app.CleanOptions{Path: "dir", Artifacts: true, Cache: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var captured app.CleanOptions
			mock := &mockApp{
				cleanFunc: func(_ context.Context, opts app.CleanOptions) error {
					captured = opts
					return nil
				},
			}

			_, err := execute(t, mock, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, captured)
		})
	}
}

func TestCommands_Version(t *testing.T) {
	out, err := execute(t, &mockApp{}, "version")
	require.NoError(t, err)
	assert.Contains(t, out, build.Version)
}
