// Package localdb persists application state in a single SQLite table, one
// opaque payload per bucket. It behaves like an embedded key-value store:
// callers never see SQL, only buckets and blobs.
package localdb

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

// Store is a durable bucket-to-payload mapping backed by SQLite. It assumes a
// single writer; concurrent processes writing the same file are an unhandled
// hazard, exactly like two tabs sharing one browser store.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates the database file (and parent directories) if needed and
// ensures the state table exists.
func Open(path string) (*Store, error) {
	if path == "" {
		path = "herdlog.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create state table: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Get returns the payload stored under the bucket. The boolean reports
// whether the bucket exists at all.
func (s *Store) Get(bucket string) ([]byte, bool, error) {
	var payload []byte
	err := s.db.QueryRow(`SELECT payload FROM state WHERE bucket = ?`, bucket).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("select %s: %w", bucket, err)
	}
	return payload, true, nil
}

// Put upserts the payload under the bucket.
func (s *Store) Put(bucket string, payload []byte) error {
	if _, err := s.db.Exec(
		`INSERT INTO state(bucket, payload) VALUES(?, ?) ON CONFLICT(bucket) DO UPDATE SET payload = excluded.payload`,
		bucket, payload,
	); err != nil {
		return fmt.Errorf("upsert %s: %w", bucket, err)
	}
	return nil
}

// Delete removes the bucket. Deleting an absent bucket is not an error.
func (s *Store) Delete(bucket string) error {
	if _, err := s.db.Exec(`DELETE FROM state WHERE bucket = ?`, bucket); err != nil {
		return fmt.Errorf("delete %s: %w", bucket, err)
	}
	return nil
}

// Reset wipes the given buckets in one transaction.
func (s *Store) Reset(buckets ...string) (retErr error) {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin reset: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	for _, bucket := range buckets {
		if _, err := tx.Exec(`DELETE FROM state WHERE bucket = ?`, bucket); err != nil {
			retErr = fmt.Errorf("reset %s: %w", bucket, err)
			return retErr
		}
	}
	return tx.Commit()
}

// Path returns the configured database path.
func (s *Store) Path() string { return s.path }

// Close closes the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }
