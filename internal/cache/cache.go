// Package cache provides a SQLite-backed cache of rendered API responses,
// keyed by the content digest of the files they were derived from.
//
// Rendering is a pure function of the input snapshot, so entries never go
// stale while their key is reachable: a changed input produces a new digest
// and the old row is simply never looked up again.
package cache

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// RenderCache caches rendered response bodies keyed by input digest.
type RenderCache struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS render_cache (
	digest TEXT PRIMARY KEY,
	body BLOB NOT NULL,
	created_at INTEGER NOT NULL
);
`

// Open opens or creates the cache database under baseDir. The database is
// stored at {baseDir}/.langref/cache/render.db.
func Open(baseDir string) (*RenderCache, error) {
	cacheDir := filepath.Join(baseDir, ".langref", "cache")
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	db, err := sql.Open("sqlite", filepath.Join(cacheDir, "render.db"))
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying cache schema: %w", err)
	}

	return &RenderCache{db: db}, nil
}

// Close closes the cache database.
func (c *RenderCache) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Get returns the cached body for a digest, or nil when absent.
func (c *RenderCache) Get(digest string) ([]byte, error) {
	var body []byte
	err := c.db.QueryRow(
		"SELECT body FROM render_cache WHERE digest = ?", digest,
	).Scan(&body)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying render cache: %w", err)
	}
	return body, nil
}

// Put stores a rendered body under its input digest.
func (c *RenderCache) Put(digest string, body []byte, createdAt int64) error {
	_, err := c.db.Exec(
		`INSERT OR REPLACE INTO render_cache (digest, body, created_at)
		 VALUES (?, ?, ?)`,
		digest, body, createdAt,
	)
	if err != nil {
		return fmt.Errorf("storing render cache entry: %w", err)
	}
	return nil
}

// Clear removes all entries.
func (c *RenderCache) Clear() error {
	_, err := c.db.Exec("DELETE FROM render_cache")
	return err
}

// Stats reports the number of cached entries.
func (c *RenderCache) Stats() (int64, error) {
	var count int64
	if err := c.db.QueryRow("SELECT COUNT(*) FROM render_cache").Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
