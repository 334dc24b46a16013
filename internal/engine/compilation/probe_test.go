package compilation_test

import (
	"context"
	"errors"
	"go/token"
	"go/types"
	"path/filepath"
	"testing"
	"testing/synctest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/testarc/internal/core/domain"
	"go.trai.ch/testarc/internal/core/ports"
	"go.trai.ch/testarc/internal/core/ports/mocks"
	"go.trai.ch/testarc/internal/engine/compilation"
	"go.uber.org/mock/gomock"
)

// stagedCompiler delivers round 1 at once and the final round once final is closed.
type stagedCompiler struct {
	final chan struct{}
	env   *domain.Environment
	res   ports.CompileResult
	err   error
}

func newStagedCompiler(env *domain.Environment) *stagedCompiler {
	return &stagedCompiler{
		final: make(chan struct{}),
		env:   env,
		res:   ports.CompileResult{Success: true},
	}
}

func (c *stagedCompiler) Compile(ctx context.Context, req ports.CompileRequest) (ports.CompileResult, error) {
	for _, p := range req.Processors {
		annotated := map[string][]types.Object{p.Markers()[0]: nil}
		if err := p.Process(ctx, domain.Round{Number: 1, Annotated: annotated, Env: c.env}); err != nil {
			return ports.CompileResult{}, err
		}
	}
	<-c.final
	if c.err != nil || !c.res.Success {
		return c.res, c.err
	}
	for _, p := range req.Processors {
		if err := p.Process(ctx, domain.Round{Number: 2, Over: true, Env: c.env}); err != nil {
			return ports.CompileResult{}, err
		}
	}
	return c.res, nil
}

// modelEnv returns an environment holding a single root package "root" with type Root.
func modelEnv() *domain.Environment {
	pkg := types.NewPackage("root", "root")
	obj := types.NewTypeName(token.NoPos, pkg, "Root", nil)
	types.NewNamed(obj, types.NewStruct(nil, nil), nil)
	pkg.Scope().Insert(obj)
	pkg.MarkComplete()

	return &domain.Environment{
		Fset:         token.NewFileSet(),
		Importer:     mapImporter{"root": pkg},
		RootPackages: []string{"root"},
	}
}

type mapImporter map[string]*types.Package

func (m mapImporter) Import(path string) (*types.Package, error) {
	if pkg, ok := m[path]; ok {
		return pkg, nil
	}
	return nil, errors.New("package not found: " + path)
}

func externalArtifact(t *testing.T, m *compilation.Manager, packager *mocks.MockPackager) *compilation.Artifact {
	t.Helper()
	archive := filepath.Join(t.TempDir(), domain.ArchiveFileName)
	packager.EXPECT().Entries(archive).Return([]string{"root.gox"}, nil)
	art, err := m.ArtifactFrom(archive)
	require.NoError(t, err)
	return art
}

func TestProbe_WaitsForFinalRound(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		packager := mocks.NewMockPackager(ctrl)
		compiler := newStagedCompiler(modelEnv())
		m := compilation.New(compiler, packager)
		art := externalArtifact(t, m, packager)

		var session *compilation.Session
		done := make(chan error, 1)
		go func() {
			var err error
			session, err = art.Analyze(context.Background())
			done <- err
		}()

		synctest.Wait()
		select {
		case <-done:
			t.Fatal("session returned before the final round")
		default:
		}

		close(compiler.final)
		synctest.Wait()
		require.NoError(t, <-done)

		obj, err := session.Lookup("Root")
		require.NoError(t, err)
		require.NotNil(t, obj)

		missing, err := session.Lookup("Unrelated")
		require.NoError(t, err)
		assert.Nil(t, missing)

		m.Cleanup()
		assert.Empty(t, m.Registered())
	})
}

func TestProbe_IndependentSessions(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		packager := mocks.NewMockPackager(ctrl)
		slow := newStagedCompiler(modelEnv())
		fast := newStagedCompiler(modelEnv())
		close(fast.final)

		slowManager := compilation.New(slow, packager)
		fastManager := compilation.New(fast, packager)
		slowArt := externalArtifact(t, slowManager, packager)
		fastArt := externalArtifact(t, fastManager, packager)

		slowDone := make(chan error, 1)
		go func() {
			_, err := slowArt.Analyze(context.Background())
			slowDone <- err
		}()

		_, err := fastArt.Analyze(context.Background())
		require.NoError(t, err)

		synctest.Wait()
		select {
		case <-slowDone:
			t.Fatal("slow session finished before its final round")
		default:
		}

		close(slow.final)
		require.NoError(t, <-slowDone)

		fastManager.Cleanup()
		slowManager.Cleanup()
	})
}

func TestProbe_Aborted(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		packager := mocks.NewMockPackager(ctrl)
		compiler := newStagedCompiler(modelEnv())
		m := compilation.New(compiler, packager)
		art := externalArtifact(t, m, packager)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() {
			_, err := art.Analyze(ctx)
			done <- err
		}()

		synctest.Wait()
		cancel()

		err := <-done
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrSessionAborted))
		assert.ErrorIs(t, err, context.Canceled)
		assert.Len(t, m.Registered(), 1, "the worker stays registered")

		close(compiler.final)
		m.Cleanup()
		assert.Empty(t, m.Registered())
	})
}

func TestProbe_PassEndsWithoutModel(t *testing.T) {
	tests := []struct {
		name     string
		res      ports.CompileResult
		err      error
		category error
	}{
		{
			name:     "compile errors",
			res:      ports.CompileResult{Diagnostics: []domain.Diagnostic{{Message: "undefined: x"}}},
			category: domain.ErrCompilationFailed,
		},
		{
			name:     "pass failed to run",
			err:      errors.Join(domain.ErrResourceNotFound, errors.New("missing archive")),
			category: domain.ErrResourceNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			synctest.Test(t, func(t *testing.T) {
				ctrl := gomock.NewController(t)
				packager := mocks.NewMockPackager(ctrl)
				compiler := newStagedCompiler(modelEnv())
				compiler.res = tt.res
				compiler.err = tt.err
				close(compiler.final)

				m := compilation.New(compiler, packager)
				art := externalArtifact(t, m, packager)

				_, err := art.Analyze(context.Background())
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.category))
				m.Cleanup()
			})
		})
	}
}

func TestProbe_Incomplete(t *testing.T) {
	ctrl := gomock.NewController(t)
	packager := mocks.NewMockPackager(ctrl)
	compiler := mocks.NewMockCompiler(ctrl)
	compiler.EXPECT().Compile(gomock.Any(), gomock.Any()).Return(ports.CompileResult{Success: true}, nil)

	m := compilation.New(compiler, packager)
	t.Cleanup(m.Cleanup)
	art := externalArtifact(t, m, packager)

	_, err := art.Analyze(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrCompilationFailed))
	assert.Contains(t, err.Error(), "compilation ended before the model was ready")
}

func TestProbe_Request(t *testing.T) {
	ctrl := gomock.NewController(t)
	packager := mocks.NewMockPackager(ctrl)
	compiler := mocks.NewMockCompiler(ctrl)

	m := compilation.New(compiler, packager)
	t.Cleanup(m.Cleanup)

	archive := filepath.Join(t.TempDir(), domain.ArchiveFileName)
	packager.EXPECT().Entries(archive).Return(nil, nil)
	art, err := m.ArtifactFrom(archive, "/deps/a.zip", "/deps/b.zip")
	require.NoError(t, err)

	compiler.EXPECT().Compile(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req ports.CompileRequest) (ports.CompileResult, error) {
			assert.Equal(t, []string{archive, "/deps/a.zip", "/deps/b.zip"}, req.Classpath)
			assert.Len(t, req.Sources, 2)
			require.Len(t, req.Processors, 1)
			assert.Equal(t, []string{"ProbeMarker"}, req.Processors[0].Markers())
			assert.Equal(t,
				filepath.Join(filepath.Dir(archive), domain.ProbeDirName),
				filepath.Dir(filepath.Dir(req.OutputDir)))
			return ports.CompileResult{Success: true}, nil
		})

	_, err = art.Analyze(context.Background())
	assert.Error(t, err)
}

func TestSplitQualified(t *testing.T) {
	tests := []struct {
		name       string
		importPath string
		ident      string
		ok         bool
	}{
		{name: "Root", ident: "Root"},
		{name: "root.Root", importPath: "root", ident: "Root", ok: true},
		{name: "example.com/a.b/pkg.Type", importPath: "example.com/a.b/pkg", ident: "Type", ok: true},
		{name: "example.com/pkg", ident: "example.com/pkg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			importPath, ident, ok := compilation.SplitQualified(tt.name)
			assert.Equal(t, tt.importPath, importPath)
			assert.Equal(t, tt.ident, ident)
			assert.Equal(t, tt.ok, ok)
		})
	}
}
