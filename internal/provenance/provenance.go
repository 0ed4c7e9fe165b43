// Package provenance tracks which source files have already been processed,
// so the same statement export is not silently imported twice.
//
// Each processed file is reduced to a fingerprint of its name, byte size and
// last-modified time, and fingerprints live in a flat persisted set. Entries
// never expire automatically; the caller clears the history explicitly. The
// store makes no attempt to detect partial overlap between different files.
package provenance

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"transaction-dedup-service/pkg/errors"
)

// Fingerprint derives the provenance fingerprint for a source file from its
// name, byte size and last-modified time. The same triple always produces
// the same fingerprint.
func Fingerprint(name string, size int64, modTime time.Time) string {
	return fmt.Sprintf("%s|%d|%d", name, size, modTime.Unix())
}

// FingerprintFile stats a file on disk and derives its fingerprint
func FingerprintFile(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.FileError(errors.CodeFileNotFound, path, err)
		}
		return "", errors.FileError(errors.CodeFilePermission, path, err)
	}

	if info.IsDir() {
		return "", errors.FileError(errors.CodeDirectoryError, path, nil)
	}

	return Fingerprint(filepath.Base(path), info.Size(), info.ModTime()), nil
}

// Store is the persisted fingerprint set behind a Tracker. Implementations
// must be safe for use from a single goroutine; lookups are expected to be
// synchronous and inexpensive.
type Store interface {
	// Has reports whether the fingerprint is present in the set.
	Has(fingerprint string) (bool, error)

	// Add inserts the fingerprint into the set. Adding an existing
	// fingerprint is a no-op.
	Add(fingerprint string) error

	// Remove deletes a single fingerprint from the set.
	Remove(fingerprint string) error

	// Clear removes every fingerprint from the set.
	Clear() error

	// List returns all fingerprints in the set, sorted for stable output.
	List() ([]string, error)

	// Close releases any resources held by the store.
	Close() error
}

// Tracker answers whether a source file has been imported before. The store
// is injected at construction so tests can substitute an in-memory
// implementation for the persisted one.
type Tracker struct {
	store Store
}

// NewTracker creates a tracker over the given store
func NewTracker(store Store) (*Tracker, error) {
	if store == nil {
		return nil, errors.ValidationError(errors.CodeMissingField, "store", nil, nil).
			WithSuggestion("Provide a provenance store implementation")
	}

	return &Tracker{store: store}, nil
}

// HasBeenImported reports whether a file with this name, size and
// modification time has been marked imported before.
func (t *Tracker) HasBeenImported(name string, size int64, modTime time.Time) (bool, error) {
	return t.store.Has(Fingerprint(name, size, modTime))
}

// MarkImported records that the file has been processed
func (t *Tracker) MarkImported(name string, size int64, modTime time.Time) error {
	return t.store.Add(Fingerprint(name, size, modTime))
}

// Forget removes a single file's import record
func (t *Tracker) Forget(name string, size int64, modTime time.Time) error {
	return t.store.Remove(Fingerprint(name, size, modTime))
}

// Clear removes the entire import history
func (t *Tracker) Clear() error {
	return t.store.Clear()
}

// History returns all recorded fingerprints, sorted
func (t *Tracker) History() ([]string, error) {
	return t.store.List()
}

// MemoryStore is an ephemeral in-memory fingerprint set, used in tests and
// when persistence is not configured.
type MemoryStore struct {
	mu           sync.RWMutex
	fingerprints map[string]struct{}
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		fingerprints: make(map[string]struct{}),
	}
}

// Has reports whether the fingerprint is present
func (m *MemoryStore) Has(fingerprint string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.fingerprints[fingerprint]
	return ok, nil
}

// Add inserts the fingerprint
func (m *MemoryStore) Add(fingerprint string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.fingerprints[fingerprint] = struct{}{}
	return nil
}

// Remove deletes a single fingerprint
func (m *MemoryStore) Remove(fingerprint string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.fingerprints, fingerprint)
	return nil
}

// Clear removes every fingerprint
func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.fingerprints = make(map[string]struct{})
	return nil
}

// List returns all fingerprints, sorted
func (m *MemoryStore) List() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]string, 0, len(m.fingerprints))
	for fp := range m.fingerprints {
		result = append(result, fp)
	}
	sort.Strings(result)
	return result, nil
}

// Close is a no-op for the in-memory store
func (m *MemoryStore) Close() error {
	return nil
}
