package fs

import (
	"fmt"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/testarc/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Hasher = (*Hasher)(nil)

// Hasher computes XXHash digests of files.
type Hasher struct{}

// NewHasher creates a new Hasher.
func NewHasher() *Hasher {
	return &Hasher{}
}

// ComputeFileHash computes the XXHash of a file's content.
func (h *Hasher) ComputeFileHash(path string) (string, error) {
	f, err := os.Open(path) //nolint:gosec // Path is controlled by caller
	if err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to open file"), "path", path)
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	return HashReader(f, path)
}

// HashReader computes the XXHash of everything read from r.
func HashReader(r io.Reader, name string) (string, error) {
	digest := xxhash.New()
	if _, err := io.Copy(digest, r); err != nil {
		return "", zerr.With(zerr.Wrap(err, "failed to hash file content"), "path", name)
	}
	return Format(digest.Sum64()), nil
}

// Format renders a digest the way every digest in testarc is written.
func Format(sum uint64) string {
	return fmt.Sprintf("%016x", sum)
}
