// Package cas stores records of artifacts kept on disk after a suite run.
package cas

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/testarc/internal/core/domain"
	"go.trai.ch/testarc/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.RecordStore = (*Store)(nil)

// Store implements ports.RecordStore using a file-per-artifact strategy.
// Records live under <root>/.testarc/store/<sha256(name)>.json.
type Store struct{}

// NewStore creates a new Store.
func NewStore() *Store {
	return &Store{}
}

// Get retrieves the record for a given artifact name.
func (s *Store) Get(root, name string) (*domain.BuildRecord, error) {
	return s.read(s.filename(root, name))
}

// Put stores the record, replacing any record with the same name.
func (s *Store) Put(root string, record domain.BuildRecord) error {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return zerr.Wrap(err, domain.ErrStoreMarshalFailed.Error())
	}

	filename := s.filename(root, record.Name)
	if err := os.MkdirAll(filepath.Dir(filename), domain.DirPerm); err != nil {
		return zerr.Wrap(err, domain.ErrStoreCreateFailed.Error())
	}

	// Write to a sibling and rename so readers never see a partial record.
	tmp, err := os.CreateTemp(filepath.Dir(filename), ".record-*")
	if err != nil {
		return zerr.Wrap(err, domain.ErrStoreWriteFailed.Error())
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return zerr.Wrap(err, domain.ErrStoreWriteFailed.Error())
	}
	if err := tmp.Close(); err != nil {
		return zerr.Wrap(err, domain.ErrStoreWriteFailed.Error())
	}
	if err := os.Rename(tmp.Name(), filename); err != nil {
		return zerr.Wrap(err, domain.ErrStoreWriteFailed.Error())
	}
	return nil
}

// List returns every stored record sorted by name.
func (s *Store) List(root string) ([]domain.BuildRecord, error) {
	dir := filepath.Join(root, domain.DefaultStorePath())
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.Wrap(err, domain.ErrStoreReadFailed.Error())
	}

	var records []domain.BuildRecord
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		record, err := s.read(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		if record != nil {
			records = append(records, *record)
		}
	}

	slices.SortFunc(records, func(a, b domain.BuildRecord) int {
		return strings.Compare(a.Name, b.Name)
	})
	return records, nil
}

// Delete removes the record for a given artifact name.
func (s *Store) Delete(root, name string) error {
	err := os.Remove(s.filename(root, name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return zerr.Wrap(err, domain.ErrStoreWriteFailed.Error())
	}
	return nil
}

func (s *Store) read(filename string) (*domain.BuildRecord, error) {
	//nolint:gosec // Path is constructed from trusted directory and hashed filename
	data, err := os.ReadFile(filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.Wrap(err, domain.ErrStoreReadFailed.Error())
	}

	var record domain.BuildRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrStoreUnmarshalFailed.Error()), "file", filename)
	}
	return &record, nil
}

func (s *Store) filename(root, name string) string {
	hash := sha256.Sum256([]byte(name))
	storeDir := filepath.Join(root, domain.DefaultStorePath())
	return filepath.Join(storeDir, hex.EncodeToString(hash[:])+".json")
}
