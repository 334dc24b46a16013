// Package fs provides file system adapters for walking and hashing files.
package fs

import (
	"io/fs"
	"iter"
	"path/filepath"
)

// Entry is a directory or file found by a walk.
type Entry struct {
	// Path is slash-separated and relative to the walk root.
	Path string
	// Abs is the path on disk.
	Abs string
	Dir bool
}

// Walker provides tree walking functionality.
type Walker struct{}

// NewWalker creates a new Walker.
func NewWalker() *Walker {
	return &Walker{}
}

// WalkTree yields every directory and file below root in depth-first,
// lexical order. A directory is always yielded before its descendants.
// The root itself is not yielded. Walk errors are yielded and stop the walk.
func (w *Walker) WalkTree(root string) iter.Seq2[Entry, error] {
	return func(yield func(Entry, error) bool) {
		stopped := false
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if path == root {
				return nil
			}

			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}

			if !yield(Entry{Path: filepath.ToSlash(rel), Abs: path, Dir: d.IsDir()}, nil) {
				stopped = true
				return filepath.SkipAll
			}
			return nil
		})
		if err != nil && !stopped {
			yield(Entry{}, err)
		}
	}
}

// FindFiles yields the files below root whose base name is name.
func (w *Walker) FindFiles(root, name string) iter.Seq2[Entry, error] {
	return func(yield func(Entry, error) bool) {
		for entry, err := range w.WalkTree(root) {
			if err != nil {
				yield(Entry{}, err)
				return
			}
			if entry.Dir || filepath.Base(entry.Abs) != name {
				continue
			}
			if !yield(entry, nil) {
				return
			}
		}
	}
}
