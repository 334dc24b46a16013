package config

import (
	"io/fs"
	"os"
	"path/filepath"
)

// FileSystem is the file access the loader needs to find and read suite files.
type FileSystem interface {
	Stat(path string) (fs.FileInfo, error)
	ReadFile(path string) ([]byte, error)
}

// OSFS reads from the host file system.
type OSFS struct{}

// NewOSFS creates a new OSFS instance.
func NewOSFS() *OSFS {
	return &OSFS{}
}

// Stat returns file info for path.
func (OSFS) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

// ReadFile reads the suite file at path.
func (OSFS) ReadFile(path string) ([]byte, error) {
	// #nosec G304 -- suite paths come from the command line
	return os.ReadFile(path)
}

// MountedFS serves an fs.FS as if it were mounted at Root, so absolute host
// paths under Root resolve inside it.
type MountedFS struct {
	FS   fs.FS
	Root string
}

// NewMountedFS mounts fsys at root.
func NewMountedFS(root string, fsys fs.FS) *MountedFS {
	return &MountedFS{FS: fsys, Root: root}
}

// Stat returns file info for path.
func (m *MountedFS) Stat(path string) (fs.FileInfo, error) {
	return fs.Stat(m.FS, m.name(path))
}

// ReadFile reads the file at path.
func (m *MountedFS) ReadFile(path string) ([]byte, error) {
	return fs.ReadFile(m.FS, m.name(path))
}

// name maps a host path to a name in FS. Paths outside Root map to an
// invalid name, so lookups fail with fs.ErrInvalid or fs.ErrNotExist.
func (m *MountedFS) name(path string) string {
	if !filepath.IsAbs(path) {
		return filepath.ToSlash(filepath.Clean(path))
	}
	rel, err := filepath.Rel(m.Root, path)
	if err != nil || !filepath.IsLocal(rel) && rel != "." {
		return path
	}
	return filepath.ToSlash(rel)
}
