// Package prefs persists small per-user key/value preferences in a local
// SQLite database. The file survives restarts so group selection and device
// registration flags behave like the persistent storage of a mobile client.
package prefs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// Well-known preference keys.
const (
	KeyCurrentGroup     = "current_group"
	KeyNotifyPermission = "notify_permission_asked"
	KeyDeviceRegistered = "device_registered"
)

const schema = `
CREATE TABLE IF NOT EXISTS user_prefs (
	user_id TEXT NOT NULL,
	key     TEXT NOT NULL,
	value   TEXT NOT NULL,
	PRIMARY KEY (user_id, key)
);
`

// Store is a SQLite-backed preference store.
type Store struct {
	db *sql.DB
}

// Open opens (and creates, if absent) the preference database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open prefs db: %w", err)
	}
	// SQLite allows a single writer; serializing through one connection
	// avoids SQLITE_BUSY under concurrent handlers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init prefs schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Get returns the stored value for (userID, key). Missing keys report
// ("", false) with a nil error.
func (s *Store) Get(ctx context.Context, userID, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM user_prefs WHERE user_id = ? AND key = ?`,
		userID, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read pref %s: %w", key, err)
	}
	return value, true, nil
}

// Set writes (userID, key) = value, replacing any previous value.
func (s *Store) Set(ctx context.Context, userID, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO user_prefs (user_id, key, value) VALUES (?, ?, ?)
		 ON CONFLICT (user_id, key) DO UPDATE SET value = excluded.value`,
		userID, key, value,
	)
	if err != nil {
		return fmt.Errorf("write pref %s: %w", key, err)
	}
	return nil
}

// Delete removes (userID, key). Deleting an absent key is not an error.
func (s *Store) Delete(ctx context.Context, userID, key string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM user_prefs WHERE user_id = ? AND key = ?`,
		userID, key,
	)
	if err != nil {
		return fmt.Errorf("delete pref %s: %w", key, err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
