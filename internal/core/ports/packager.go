package ports

import (
	"context"

	"go.trai.ch/testarc/internal/core/domain"
)

// Packager lays out resources and writes archives.
//
//go:generate mockgen -source=packager.go -destination=mocks/mock_packager.go -package=mocks
type Packager interface {
	// CopyResources copies resources into dir at their logical paths.
	// It never overwrites existing files.
	CopyResources(ctx context.Context, dir string, resources []domain.ResourceEntry) error

	// Package writes the tree under dir to the archive at path.
	Package(ctx context.Context, dir, path string) (*domain.ArchiveInfo, error)

	// Entries lists the entries of an existing archive in order.
	Entries(path string) ([]string, error)
}
