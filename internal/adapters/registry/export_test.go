package registry

import "go.trai.ch/testarc/internal/core/ports"

var NewResolverWithClient = newResolverWithClient

// SetHasher replaces the hasher used to verify cached archives.
func SetHasher(r *Resolver, h ports.Hasher) {
	r.hasher = h
}
