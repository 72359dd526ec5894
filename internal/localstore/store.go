// Package localstore is the device-local persistence backing the
// storefront client: session token, user profile, cart and wishlist
// survive restarts in a single SQLite file.
package localstore

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS kv (
	key   TEXT PRIMARY KEY,
	value BLOB NOT NULL
);`

// SQLite is a key-value store over a single SQLite file. Values are
// JSON-serialized and overwritten whole on every write.
type SQLite struct {
	db *sqlx.DB
}

// Open opens (creating if needed) the store at path. Use ":memory:" for an
// ephemeral store.
func Open(path string) (*SQLite, error) {
	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open local store %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize local store schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Get reads the value under key into v. The boolean reports whether the
// key was present; an error means the stored value could not be decoded.
func (s *SQLite) Get(key string, v any) (bool, error) {
	var raw []byte
	err := s.db.Get(&raw, `SELECT value FROM kv WHERE key = ?`, key)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read key %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("failed to decode stored value for %s: %w", key, err)
	}
	return true, nil
}

// Put serializes v and overwrites the value under key.
func (s *SQLite) Put(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode value for %s: %w", key, err)
	}
	_, err = s.db.Exec(
		`INSERT INTO kv (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, raw)
	if err != nil {
		return fmt.Errorf("failed to write key %s: %w", key, err)
	}
	return nil
}

// Delete removes the key if present.
func (s *SQLite) Delete(key string) error {
	if _, err := s.db.Exec(`DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}
	return nil
}

// Reset removes every key. Used at logout, where all locally persisted
// state is scoped to the authenticated identity.
func (s *SQLite) Reset() error {
	if _, err := s.db.Exec(`DELETE FROM kv`); err != nil {
		return fmt.Errorf("failed to reset local store: %w", err)
	}
	return nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
