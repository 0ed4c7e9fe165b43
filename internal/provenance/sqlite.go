package provenance

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"transaction-dedup-service/pkg/errors"
)

const schema = `
CREATE TABLE IF NOT EXISTS imported_files (
	fingerprint TEXT PRIMARY KEY,
	imported_at TIMESTAMP NOT NULL
);
`

// SQLiteStore persists fingerprints in a SQLite database so import history
// survives across runs.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if necessary) the history database at the
// given path and ensures the schema exists. The caller owns the store and
// must Close it.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.StorageError(errors.CodeStoreUnavailable, path, err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.StorageError(errors.CodeStoreUnavailable, path, err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.StorageError(errors.CodeStoreCorrupted, path, err)
	}

	return &SQLiteStore{db: db}, nil
}

// Has reports whether the fingerprint is present
func (s *SQLiteStore) Has(fingerprint string) (bool, error) {
	var exists int
	err := s.db.QueryRow(
		"SELECT 1 FROM imported_files WHERE fingerprint = ?", fingerprint,
	).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, errors.StorageError(errors.CodeStoreUnavailable, "history", err)
	}
	return true, nil
}

// Add inserts the fingerprint, ignoring duplicates
func (s *SQLiteStore) Add(fingerprint string) error {
	_, err := s.db.Exec(
		"INSERT OR IGNORE INTO imported_files (fingerprint, imported_at) VALUES (?, ?)",
		fingerprint, time.Now().UTC(),
	)
	if err != nil {
		return errors.StorageError(errors.CodeStoreUnavailable, "history", err)
	}
	return nil
}

// Remove deletes a single fingerprint
func (s *SQLiteStore) Remove(fingerprint string) error {
	_, err := s.db.Exec("DELETE FROM imported_files WHERE fingerprint = ?", fingerprint)
	if err != nil {
		return errors.StorageError(errors.CodeStoreUnavailable, "history", err)
	}
	return nil
}

// Clear removes every fingerprint
func (s *SQLiteStore) Clear() error {
	_, err := s.db.Exec("DELETE FROM imported_files")
	if err != nil {
		return errors.StorageError(errors.CodeStoreUnavailable, "history", err)
	}
	return nil
}

// List returns all fingerprints, oldest import first, ties broken by
// fingerprint for stable output.
func (s *SQLiteStore) List() ([]string, error) {
	rows, err := s.db.Query(
		"SELECT fingerprint FROM imported_files ORDER BY imported_at, fingerprint",
	)
	if err != nil {
		return nil, errors.StorageError(errors.CodeStoreUnavailable, "history", err)
	}
	defer rows.Close()

	var result []string
	for rows.Next() {
		var fp string
		if err := rows.Scan(&fp); err != nil {
			return nil, errors.StorageError(errors.CodeStoreCorrupted, "history", err)
		}
		result = append(result, fp)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.StorageError(errors.CodeStoreUnavailable, "history", err)
	}
	return result, nil
}

// Close closes the underlying database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
