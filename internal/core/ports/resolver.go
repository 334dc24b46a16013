package ports

import "context"

// DependencyResolver maps a textual identifier to archive paths.
//
// Resolve must be safe to call repeatedly with the same identifier. An unknown
// identifier resolves to an empty set without error. Implementations own the
// files they return: callers never delete them.
//
//go:generate mockgen -source=resolver.go -destination=mocks/mock_resolver.go -package=mocks
type DependencyResolver interface {
	Resolve(ctx context.Context, identifier string) ([]string, error)
}
