package archive_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/testarc/internal/adapters/archive"
	"go.trai.ch/testarc/internal/adapters/fs"
	"go.trai.ch/testarc/internal/core/domain"
)

func newPackager() *archive.Packager {
	return archive.NewPackager(fs.NewWalker(), fs.NewHasher())
}

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), domain.DirPerm))
		require.NoError(t, os.WriteFile(path, []byte(content), domain.PrivateFilePerm))
	}
}

func stringResource(path, content string) domain.ResourceEntry {
	return domain.ResourceEntry{
		Path: path,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(content)), nil
		},
	}
}

func listing(entries []string) []byte {
	return []byte(strings.Join(entries, "\n") + "\n")
}

func TestPackager_Package_Layout(t *testing.T) {
	tests := []struct {
		name  string
		files map[string]string
	}{
		{
			name: "no_manifest",
			files: map[string]string{
				"root.gox":        "root",
				"pkg/pkg.gox":     "pkg",
				"pkg/sub/sub.gox": "sub",
				"data/values.txt": "values",
			},
		},
		{
			name: "manifest_first",
			files: map[string]string{
				"A/x.txt":              "x",
				"LICENSE":              "license",
				"META-INF/MANIFEST.MF": "Manifest-Version: 1.0\n",
				"pkg/pkg.gox":          "pkg",
				"z.txt":                "z",
			},
		},
		{
			name: "nested_manifest",
			files: map[string]string{
				"nested/META-INF/MANIFEST.MF": "Manifest-Version: 1.0\n",
				"x.txt":                       "x",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			classes := filepath.Join(tmpDir, "classes")
			writeTree(t, classes, tt.files)

			info, err := newPackager().Package(context.Background(), classes, filepath.Join(tmpDir, "compiled.zip"))
			require.NoError(t, err)

			entries, err := newPackager().Entries(info.Path)
			require.NoError(t, err)
			assert.Equal(t, info.Entries, entries)

			g := goldie.New(t)
			g.Assert(t, tt.name, listing(entries))
		})
	}
}

func TestPackager_Package_OneEntryPerPath(t *testing.T) {
	tmpDir := t.TempDir()
	classes := filepath.Join(tmpDir, "classes")
	files := map[string]string{
		"a/b/c.gox": "c",
		"a/b/d.gox": "d",
		"a/e.gox":   "e",
		"f.txt":     "f",
	}
	writeTree(t, classes, files)

	info, err := newPackager().Package(context.Background(), classes, filepath.Join(tmpDir, "compiled.zip"))
	require.NoError(t, err)

	dirs := map[string]struct{}{}
	for p := range files {
		for d := filepath.ToSlash(filepath.Dir(p)); d != "."; d = filepath.ToSlash(filepath.Dir(d)) {
			dirs[d+"/"] = struct{}{}
		}
	}

	assert.Len(t, info.Entries, len(files)+len(dirs))
	for p := range files {
		assert.Contains(t, info.Entries, p)
	}
	for d := range dirs {
		assert.Contains(t, info.Entries, d)
	}
}

func TestPackager_Package_Deterministic(t *testing.T) {
	tmpDir := t.TempDir()
	classes := filepath.Join(tmpDir, "classes")
	writeTree(t, classes, map[string]string{
		"META-INF/MANIFEST.MF": "Manifest-Version: 1.0\n",
		"pkg/pkg.gox":          strings.Repeat("export data ", 64),
	})

	first, err := newPackager().Package(context.Background(), classes, filepath.Join(tmpDir, "first.zip"))
	require.NoError(t, err)
	second, err := newPackager().Package(context.Background(), classes, filepath.Join(tmpDir, "second.zip"))
	require.NoError(t, err)

	assert.Equal(t, first.Digest, second.Digest)
	assert.Len(t, first.Digest, 16)
}

func TestPackager_Package_AmbiguousManifest(t *testing.T) {
	tmpDir := t.TempDir()
	classes := filepath.Join(tmpDir, "classes")
	writeTree(t, classes, map[string]string{
		"META-INF/MANIFEST.MF":     "one",
		"sub/META-INF/MANIFEST.MF": "two",
	})

	archivePath := filepath.Join(tmpDir, "compiled.zip")
	_, err := newPackager().Package(context.Background(), classes, archivePath)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrIllegalConfiguration))
	assert.NoFileExists(t, archivePath)
}

func TestPackager_Package_MissingTree(t *testing.T) {
	tmpDir := t.TempDir()
	archivePath := filepath.Join(tmpDir, "compiled.zip")

	_, err := newPackager().Package(context.Background(), filepath.Join(tmpDir, "missing"), archivePath)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrPackagingFailed))
	assert.NoFileExists(t, archivePath)
}

func TestPackager_CopyResources(t *testing.T) {
	t.Run("copies into logical paths", func(t *testing.T) {
		dir := t.TempDir()
		err := newPackager().CopyResources(context.Background(), dir, []domain.ResourceEntry{
			stringResource("META-INF/MANIFEST.MF", "Manifest-Version: 1.0\n"),
			stringResource("data/values.txt", "values"),
		})
		require.NoError(t, err)

		content, err := os.ReadFile(filepath.Join(dir, "META-INF", "MANIFEST.MF"))
		require.NoError(t, err)
		assert.Equal(t, "Manifest-Version: 1.0\n", string(content))
		assert.FileExists(t, filepath.Join(dir, "data", "values.txt"))
	})

	t.Run("refuses to overwrite compiled output", func(t *testing.T) {
		dir := t.TempDir()
		writeTree(t, dir, map[string]string{"pkg/pkg.gox": "compiled"})

		err := newPackager().CopyResources(context.Background(), dir, []domain.ResourceEntry{
			stringResource("pkg/pkg.gox", "resource"),
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrPackagingFailed))

		content, readErr := os.ReadFile(filepath.Join(dir, "pkg", "pkg.gox"))
		require.NoError(t, readErr)
		assert.Equal(t, "compiled", string(content))
	})

	t.Run("unreadable resource", func(t *testing.T) {
		dir := t.TempDir()
		err := newPackager().CopyResources(context.Background(), dir, []domain.ResourceEntry{{
			Path: "gone.txt",
			Open: func() (io.ReadCloser, error) { return nil, os.ErrNotExist },
		}})
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrResourceNotFound))
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := newPackager().CopyResources(ctx, t.TempDir(), []domain.ResourceEntry{stringResource("a.txt", "a")})
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestPackager_Entries_Missing(t *testing.T) {
	_, err := newPackager().Entries(filepath.Join(t.TempDir(), "missing.zip"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrResourceNotFound))
}
