package gotypes

import (
	"errors"
	"path"
	"strings"

	"github.com/klauspost/compress/zip"
	"go.trai.ch/testarc/internal/core/domain"
	"go.trai.ch/zerr"
)

// Classpath indexes the export data held by a list of archives.
// The first archive providing an import path wins.
type Classpath struct {
	readers []*zip.ReadCloser
	index   map[string]*zip.File
	roots   []string
}

// OpenClasspath opens every archive and indexes its export data entries.
func OpenClasspath(archives []string) (*Classpath, error) {
	cp := &Classpath{index: make(map[string]*zip.File)}

	for _, archive := range archives {
		r, err := zip.OpenReader(archive)
		if err != nil {
			_ = cp.Close()
			return nil, errors.Join(domain.ErrResourceNotFound,
				zerr.With(zerr.Wrap(err, "failed to open classpath entry"), "path", archive))
		}
		cp.readers = append(cp.readers, r)

		for _, f := range r.File {
			importPath, root, ok := ImportPathOf(f.Name)
			if !ok {
				continue
			}
			if _, exists := cp.index[importPath]; exists {
				continue
			}
			cp.index[importPath] = f
			if root {
				cp.roots = append(cp.roots, importPath)
			}
		}
	}

	return cp, nil
}

// ImportPathOf maps an archive entry name to the import path it provides.
// Export data at the archive root provides the package named by the file.
func ImportPathOf(entry string) (importPath string, root, ok bool) {
	if !strings.HasSuffix(entry, domain.ExportDataExt) || strings.HasSuffix(entry, "/") {
		return "", false, false
	}
	dir := path.Dir(entry)
	if dir == "." {
		return strings.TrimSuffix(entry, domain.ExportDataExt), true, true
	}
	return dir, false, true
}

// Lookup returns the export data entry for an import path.
func (c *Classpath) Lookup(importPath string) (*zip.File, bool) {
	f, ok := c.index[importPath]
	return f, ok
}

// Roots returns the import paths stored at an archive root, in classpath order.
func (c *Classpath) Roots() []string {
	return append([]string(nil), c.roots...)
}

// Close closes every archive.
func (c *Classpath) Close() error {
	var errs error
	for _, r := range c.readers {
		errs = errors.Join(errs, r.Close())
	}
	c.readers = nil
	return errs
}
