package ports

// Hasher defines the interface for computing content digests.
//
//go:generate mockgen -source=hasher.go -destination=mocks/mock_hasher.go -package=mocks
type Hasher interface {
	// ComputeFileHash returns the hex-encoded digest of a file's content.
	ComputeFileHash(path string) (string, error)
}
