package ports

import "go.trai.ch/testarc/internal/core/domain"

// RecordStore defines the interface for storing records of kept artifacts.
//
//go:generate mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type RecordStore interface {
	// Get retrieves the record for a given artifact name.
	// Returns nil, nil if not found.
	Get(root, name string) (*domain.BuildRecord, error)

	// Put stores the record.
	Put(root string, record domain.BuildRecord) error

	// List returns every stored record.
	List(root string) ([]domain.BuildRecord, error)

	// Delete removes the record for a given artifact name. Missing records are ignored.
	Delete(root, name string) error
}
