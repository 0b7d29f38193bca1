// Package cache is the on-device store: one JSON blob per namespace, kept in
// a small SQLite database under the app's data directory. It survives process
// restarts and is the authoritative copy of all state between syncs.
package cache

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Namespace keys, one per data category.
const (
	NSUser          = "user"
	NSWorkouts      = "workouts"
	NSExercises     = "exercises"
	NSBodyWeights   = "body_weights"
	NSMeasurements  = "measurements"
	NSPhotos        = "photos"
	NSRecords       = "records"
	NSGoals         = "goals"
	NSTemplates     = "templates"
	NSNotifications = "notifications"
	NSOnboarded     = "onboarded"
	NSTheme         = "theme"
)

// AllNamespaces lists every namespace, in no particular order. Sign-out
// removes each of them.
var AllNamespaces = []string{
	NSUser, NSWorkouts, NSExercises, NSBodyWeights, NSMeasurements,
	NSPhotos, NSRecords, NSGoals, NSTemplates, NSNotifications,
	NSOnboarded, NSTheme,
}

// ErrNotFound is returned by Get when a namespace has no stored value.
var ErrNotFound = errors.New("cache: namespace not set")

// Cache is the local key-value store of JSON-serialized records.
type Cache struct {
	db *sql.DB
}

// Open opens (or creates) the cache database at dir/cache.db.
func Open(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache dir %s: %w", dir, err)
	}

	dbPath := filepath.Join(dir, "cache.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening cache db: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS blobs (
		namespace  TEXT PRIMARY KEY,
		value      BLOB NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating blobs table: %w", err)
	}

	return &Cache{db: db}, nil
}

// Get returns the stored blob for a namespace, or ErrNotFound.
func (c *Cache) Get(namespace string) ([]byte, error) {
	var value []byte
	err := c.db.QueryRow(
		`SELECT value FROM blobs WHERE namespace = ?`, namespace,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading namespace %s: %w", namespace, err)
	}
	return value, nil
}

// Set stores a blob for a namespace, replacing any previous value.
func (c *Cache) Set(namespace string, value []byte) error {
	_, err := c.db.Exec(
		`INSERT INTO blobs (namespace, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT(namespace) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		namespace, value,
	)
	if err != nil {
		return fmt.Errorf("writing namespace %s: %w", namespace, err)
	}
	return nil
}

// Remove deletes the given namespaces. Missing namespaces are not an error.
func (c *Cache) Remove(namespaces ...string) error {
	for _, ns := range namespaces {
		if _, err := c.db.Exec(`DELETE FROM blobs WHERE namespace = ?`, ns); err != nil {
			return fmt.Errorf("removing namespace %s: %w", ns, err)
		}
	}
	return nil
}

// RemoveAll clears every known namespace.
func (c *Cache) RemoveAll() error {
	return c.Remove(AllNamespaces...)
}

// Close closes the cache database.
func (c *Cache) Close() error {
	return c.db.Close()
}
