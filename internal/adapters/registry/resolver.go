// Package registry implements the DependencyResolver port against an artifact
// registry serving pre-built archives.
//
// Identifiers have the form name@version. The registry answers
// GET <base>/v1/artifacts/<name>/<version> with the transitive archive set:
//
//	{"archives": [{"url": "https://.../greet.zip", "xxh64": "0123456789abcdef"}]}
//
// Index responses and archives are cached under the cache directory, which the
// resolver owns: callers must not delete returned files.
package registry

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	digests "go.trai.ch/testarc/internal/adapters/fs"
	"go.trai.ch/testarc/internal/core/domain"
	"go.trai.ch/testarc/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

var _ ports.DependencyResolver = (*Resolver)(nil)

const (
	httpClientTimeout = 30 * time.Second
	maxDownloads      = 4
)

// Resolver implements ports.DependencyResolver using a registry with local caching.
type Resolver struct {
	baseURL    *url.URL
	cacheDir   string
	httpClient *http.Client
	hasher     ports.Hasher
}

// NewResolver creates a Resolver for the registry at baseURL caching into cacheDir.
func NewResolver(baseURL, cacheDir string) (*Resolver, error) {
	return newResolverWithClient(baseURL, cacheDir, &http.Client{Timeout: httpClientTimeout})
}

func newResolverWithClient(baseURL, cacheDir string, client *http.Client) (*Resolver, error) {
	base, err := url.Parse(strings.TrimSuffix(baseURL, "/") + "/")
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "invalid registry url"), "url", baseURL)
	}

	cleanPath := filepath.Clean(cacheDir)
	if err := os.MkdirAll(cleanPath, domain.DirPerm); err != nil {
		return nil, zerr.Wrap(err, domain.ErrRegistryCacheCreateFailed.Error())
	}

	return &Resolver{
		baseURL:    base,
		cacheDir:   cleanPath,
		httpClient: client,
		hasher:     digests.NewHasher(),
	}, nil
}

// Resolve returns the cached archive paths for identifier, downloading them if
// needed. An identifier unknown to the registry resolves to nothing.
func (r *Resolver) Resolve(ctx context.Context, identifier string) ([]string, error) {
	name, version, ok := strings.Cut(identifier, "@")
	if !ok || name == "" || version == "" {
		return nil, zerr.With(domain.ErrInvalidIdentifier, "identifier", identifier)
	}

	idx, err := r.index(ctx, identifier, name, version)
	if err != nil || idx == nil {
		return nil, err
	}

	paths := make([]string, len(idx.Archives))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxDownloads)
	for i, a := range idx.Archives {
		g.Go(func() error {
			path, err := r.archive(gctx, a)
			if err != nil {
				return zerr.With(err, "identifier", identifier)
			}
			paths[i] = path
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}

// index returns the archive index for identifier, or nil when the registry does not know it.
func (r *Resolver) index(ctx context.Context, identifier, name, version string) (*indexResponse, error) {
	cachePath := filepath.Join(r.cacheDir, hashOf(identifier)+".json")
	if idx, err := loadIndex(cachePath); err == nil {
		return idx, nil
	}

	endpoint := r.baseURL.JoinPath("v1", "artifacts", name, version)
	resp, err := r.get(ctx, endpoint.String())
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, nil
	default:
		apiErr := zerr.With(domain.ErrRegistryRequestFailed, "status_code", resp.StatusCode)
		return nil, zerr.With(apiErr, "identifier", identifier)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Join(domain.ErrRegistryRequestFailed, zerr.With(err, "identifier", identifier))
	}

	var idx indexResponse
	if err := json.Unmarshal(body, &idx); err != nil {
		return nil, errors.Join(domain.ErrRegistryParseFailed, zerr.With(err, "identifier", identifier))
	}
	for i, a := range idx.Archives {
		ref, err := url.Parse(a.URL)
		if err != nil || a.URL == "" || len(a.XXH64) != 16 {
			return nil, zerr.With(zerr.With(domain.ErrRegistryParseFailed, "identifier", identifier), "archive", a.URL)
		}
		idx.Archives[i].URL = endpoint.ResolveReference(ref).String()
	}

	// A failed cache write only costs a later request.
	_ = atomicWriteFile(cachePath, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(idx)
	})
	return &idx, nil
}

func loadIndex(path string) (*indexResponse, error) {
	//nolint:gosec // Path is constructed from trusted directory and hashed filename
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var idx indexResponse
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, err
	}
	return &idx, nil
}

// archive returns the cached copy of a, downloading it when missing or stale.
func (r *Resolver) archive(ctx context.Context, a archiveRef) (string, error) {
	path := filepath.Join(r.cacheDir, hashOf(a.URL)+".zip")
	if digest, err := r.hasher.ComputeFileHash(path); err == nil && digest == a.XXH64 {
		return path, nil
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", zerr.With(zerr.Wrap(err, "failed to read cached archive"), "path", path)
	}

	resp, err := r.get(ctx, a.URL)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", zerr.With(zerr.With(domain.ErrRegistryRequestFailed, "status_code", resp.StatusCode), "url", a.URL)
	}

	err = atomicWriteFile(path, func(w io.Writer) error {
		got, err := digests.HashReader(io.TeeReader(resp.Body, w), a.URL)
		if err != nil {
			return errors.Join(domain.ErrRegistryRequestFailed, err)
		}
		if got != a.XXH64 {
			err := zerr.With(domain.ErrRegistryDigestMismatch, "url", a.URL)
			err = zerr.With(err, "expected", a.XXH64)
			return zerr.With(err, "actual", got)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return path, nil
}

func (r *Resolver) get(ctx context.Context, target string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return nil, errors.Join(domain.ErrRegistryRequestFailed, zerr.With(err, "url", target))
	}
	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, errors.Join(domain.ErrRegistryRequestFailed, zerr.With(err, "url", target))
	}
	return resp, nil
}

func hashOf(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// atomicWriteFile writes through a temp file renamed into place once write succeeds.
func atomicWriteFile(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	tmpFile, err := os.CreateTemp(dir, ".download-*")
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrRegistryCacheCreateFailed.Error()), "path", dir)
	}
	tmpName := tmpFile.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if err := write(tmpFile); err != nil {
		_ = tmpFile.Close()
		return err
	}
	if err := tmpFile.Close(); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to write cache file"), "path", path)
	}
	if err := os.Chmod(tmpName, domain.FilePerm); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to write cache file"), "path", path)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to write cache file"), "path", path)
	}
	return nil
}
