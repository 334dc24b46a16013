// Package archive implements the Packager port on zip archives.
package archive

import (
	"context"
	"errors"
	"io"
	iofs "io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/klauspost/compress/zip"
	"go.trai.ch/testarc/internal/adapters/fs"
	"go.trai.ch/testarc/internal/core/domain"
	"go.trai.ch/testarc/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Packager = (*Packager)(nil)

// modTime is stamped on every entry so identical trees produce identical archives.
var modTime = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

// Packager writes compiled-output trees to zip archives.
type Packager struct {
	walker *fs.Walker
	hasher ports.Hasher
}

// NewPackager creates a new Packager.
func NewPackager(walker *fs.Walker, hasher ports.Hasher) *Packager {
	return &Packager{walker: walker, hasher: hasher}
}

// CopyResources copies resources into dir in logical path order.
// A resource that would overwrite an existing file fails the copy.
func (p *Packager) CopyResources(ctx context.Context, dir string, resources []domain.ResourceEntry) error {
	sorted := slices.Clone(resources)
	slices.SortFunc(sorted, func(a, b domain.ResourceEntry) int {
		return strings.Compare(a.Path, b.Path)
	})

	for _, res := range sorted {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := copyResource(dir, res); err != nil {
			return err
		}
	}
	return nil
}

func copyResource(dir string, res domain.ResourceEntry) error {
	logical, err := domain.LogicalPath(res.Path)
	if err != nil {
		return err
	}

	src, err := res.Open()
	if err != nil {
		return errors.Join(domain.ErrResourceNotFound, zerr.With(zerr.Wrap(err, "failed to open resource"), "path", logical))
	}
	defer src.Close() //nolint:errcheck // Best effort close in defer

	target := filepath.Join(dir, filepath.FromSlash(logical))
	if err := os.MkdirAll(filepath.Dir(target), domain.DirPerm); err != nil {
		return packagingError(err, "failed to create resource directory", logical)
	}

	//nolint:gosec // Target is a validated logical path below dir
	dst, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, domain.FilePerm)
	if err != nil {
		if errors.Is(err, iofs.ErrExist) {
			return zerr.With(domain.ErrResourceCollision, "path", logical)
		}
		return packagingError(err, "failed to create resource", logical)
	}

	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return packagingError(err, "failed to copy resource", logical)
	}
	if err := dst.Close(); err != nil {
		return packagingError(err, "failed to close resource", logical)
	}
	return nil
}

// Package writes the tree under dir to a new archive at archivePath.
//
// A manifest found anywhere in the tree (MANIFEST.MF inside a META-INF
// directory) is written first as META-INF/ followed by META-INF/MANIFEST.MF.
// Every other directory and file follows in depth-first order, each directory
// before its descendants, without duplicates.
func (p *Packager) Package(ctx context.Context, dir, archivePath string) (*domain.ArchiveInfo, error) {
	manifest, err := p.findManifest(dir)
	if err != nil {
		return nil, err
	}

	//nolint:gosec // Archive path is chosen by the caller
	f, err := os.OpenFile(archivePath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, domain.FilePerm)
	if err != nil {
		return nil, packagingError(err, "failed to create archive", archivePath)
	}

	w := &entryWriter{zw: zip.NewWriter(f), seen: make(map[string]struct{})}
	err = p.writeEntries(ctx, w, dir, manifest)
	if closeErr := w.zw.Close(); err == nil && closeErr != nil {
		err = packagingError(closeErr, "failed to finish archive", archivePath)
	}
	if closeErr := f.Close(); err == nil && closeErr != nil {
		err = packagingError(closeErr, "failed to close archive", archivePath)
	}
	if err != nil {
		_ = os.Remove(archivePath)
		return nil, err
	}

	digest, err := p.hasher.ComputeFileHash(archivePath)
	if err != nil {
		return nil, errors.Join(domain.ErrPackagingFailed, err)
	}

	return &domain.ArchiveInfo{
		Path:    archivePath,
		Entries: w.entries,
		Digest:  digest,
	}, nil
}

func (p *Packager) writeEntries(ctx context.Context, w *entryWriter, dir, manifest string) error {
	if manifest != "" {
		if err := w.dir(domain.ManifestDirName + "/"); err != nil {
			return err
		}
		if err := w.file(domain.ManifestPath, manifest); err != nil {
			return err
		}
	}

	for entry, err := range p.walker.WalkTree(dir) {
		if err != nil {
			return packagingError(err, "failed to walk output tree", dir)
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		if entry.Dir {
			err = w.dir(entry.Path + "/")
		} else {
			err = w.file(entry.Path, entry.Abs)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// findManifest returns the path of the single manifest candidate below dir,
// or "" when there is none.
func (p *Packager) findManifest(dir string) (string, error) {
	var candidates []string
	var paths []string
	for entry, err := range p.walker.FindFiles(dir, domain.ManifestFileName) {
		if err != nil {
			return "", packagingError(err, "failed to scan output tree", dir)
		}
		if path.Base(path.Dir(entry.Path)) != domain.ManifestDirName {
			continue
		}
		candidates = append(candidates, entry.Abs)
		paths = append(paths, entry.Path)
	}

	switch len(candidates) {
	case 0:
		return "", nil
	case 1:
		return candidates[0], nil
	default:
		return "", zerr.With(domain.ErrAmbiguousManifest, "candidates", strings.Join(paths, ", "))
	}
}

// Entries lists the entry names of the archive at path in order.
func (p *Packager) Entries(path string) ([]string, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, errors.Join(domain.ErrResourceNotFound, zerr.With(zerr.Wrap(err, "failed to open archive"), "path", path))
	}
	defer r.Close() //nolint:errcheck // Read-only

	names := make([]string, 0, len(r.File))
	for _, f := range r.File {
		names = append(names, f.Name)
	}
	return names, nil
}

// entryWriter writes zip entries at most once per name.
type entryWriter struct {
	zw      *zip.Writer
	seen    map[string]struct{}
	entries []string
}

func (w *entryWriter) dir(name string) error {
	if !w.claim(name) {
		return nil
	}
	hdr := &zip.FileHeader{Name: name, Method: zip.Store, Modified: modTime}
	hdr.SetMode(iofs.ModeDir | domain.DirPerm)
	if _, err := w.zw.CreateHeader(hdr); err != nil {
		return packagingError(err, "failed to write directory entry", name)
	}
	return nil
}

func (w *entryWriter) file(name, src string) error {
	if !w.claim(name) {
		return nil
	}

	//nolint:gosec // Source comes from walking the output tree
	in, err := os.Open(src)
	if err != nil {
		return packagingError(err, "failed to open entry source", name)
	}
	defer in.Close() //nolint:errcheck // Read-only

	hdr := &zip.FileHeader{Name: name, Method: zip.Deflate, Modified: modTime}
	hdr.SetMode(domain.FilePerm)
	out, err := w.zw.CreateHeader(hdr)
	if err != nil {
		return packagingError(err, "failed to write file entry", name)
	}
	if _, err := io.Copy(out, in); err != nil {
		return packagingError(err, "failed to copy file entry", name)
	}
	return nil
}

func (w *entryWriter) claim(name string) bool {
	if _, ok := w.seen[name]; ok {
		return false
	}
	w.seen[name] = struct{}{}
	w.entries = append(w.entries, name)
	return true
}

func packagingError(err error, msg, path string) error {
	return errors.Join(domain.ErrPackagingFailed, zerr.With(zerr.Wrap(err, msg), "path", path))
}
