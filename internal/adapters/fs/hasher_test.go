package fs_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/testarc/internal/adapters/fs"
	"go.trai.ch/testarc/internal/core/domain"
)

// Digests are part of stored build records and published registry indexes.
// If these change, previously written records no longer verify.
func TestHasher_ComputeFileHash_Golden(t *testing.T) {
	tests := []struct {
		content string
		want    string
	}{
		{content: "", want: "ef46db3751d8e999"},
		{content: "abc", want: "44bc2cf5ad770999"},
		{content: "compiled output", want: "59c872559f5f30c9"},
	}

	hasher := fs.NewHasher()
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "file")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), domain.PrivateFilePerm))

			got, err := hasher.ComputeFileHash(path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			fromReader, err := fs.HashReader(strings.NewReader(tt.content), "inline")
			require.NoError(t, err)
			assert.Equal(t, got, fromReader)
		})
	}
}

func TestHasher_ComputeFileHash_Missing(t *testing.T) {
	_, err := fs.NewHasher().ComputeFileHash(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open file")
}
