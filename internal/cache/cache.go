// Package cache provides SQLite-backed storage for build state: the
// per-file content index used for up-to-date detection, and the build
// history shown by the status command. The database lives in
// .rbxc/cache.db.
package cache

import (
	"database/sql"
	"fmt"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Cache manages the .rbxc/cache.db SQLite database.
type Cache struct {
	db     *sql.DB
	dbPath string
}

// Open opens or creates the cache database in the specified .rbxc
// directory. It initializes the schema if the database is new.
func Open(rbxcDir string) (*Cache, error) {
	dbPath := filepath.Join(rbxcDir, "cache.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open cache db: %w", err)
	}

	// Enable WAL mode for better concurrent access
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	cache := &Cache{db: db, dbPath: dbPath}

	if err := cache.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return cache, nil
}

// Close closes the database connection.
func (c *Cache) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Clear removes all build state from both tables.
func (c *Cache) Clear() error {
	_, err := c.db.Exec("DELETE FROM file_index; DELETE FROM builds;")
	if err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	return nil
}

// Path returns the database file path.
func (c *Cache) Path() string {
	return c.dbPath
}

// Stats returns cache statistics.
type Stats struct {
	FileCount  int64
	BuildCount int64
}

// GetStats returns statistics about the cache contents.
func (c *Cache) GetStats() (*Stats, error) {
	var stats Stats

	err := c.db.QueryRow("SELECT COUNT(*) FROM file_index").Scan(&stats.FileCount)
	if err != nil {
		return nil, fmt.Errorf("count file index: %w", err)
	}

	err = c.db.QueryRow("SELECT COUNT(*) FROM builds").Scan(&stats.BuildCount)
	if err != nil {
		return nil, fmt.Errorf("count builds: %w", err)
	}

	return &stats, nil
}
