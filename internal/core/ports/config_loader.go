package ports

import "go.trai.ch/testarc/internal/core/domain"

// ConfigLoader defines the interface for loading build suites.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads the suite file at path, or discovers one when path is a directory.
	Load(path string) (*domain.Suite, error)
}
