package domain

import (
	"io"
	"path"
	"strings"

	"go.trai.ch/zerr"
)

// Opener returns a fresh reader over the content of a source unit or resource.
type Opener func() (io.ReadCloser, error)

// SourceUnit is a source file at a logical path inside the compiled-output tree.
// Its identity is the logical path.
type SourceUnit struct {
	Path string
	Open Opener
}

// ResourceEntry is a file copied verbatim into the compiled-output tree.
// Its identity is the logical path.
type ResourceEntry struct {
	Path string
	Open Opener
}

// LogicalPath cleans a slash-separated relative path and rejects paths that
// are absolute, empty or escape their root.
func LogicalPath(p string) (string, error) {
	p = strings.ReplaceAll(p, "\\", "/")
	if p == "" || strings.HasPrefix(p, "/") {
		return "", zerr.With(ErrPathOutsideRoot, "path", p)
	}

	cleaned := path.Clean(p)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", zerr.With(ErrPathOutsideRoot, "path", p)
	}

	return cleaned, nil
}
