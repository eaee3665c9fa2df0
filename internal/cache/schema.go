package cache

// schemaSQL defines the SQLite schema for the cache database.
// Tables:
//   - file_index: content hash per source file, for up-to-date checks
//   - builds: one row per completed build, newest first by id
const schemaSQL = `
CREATE TABLE IF NOT EXISTS file_index (
    file_path TEXT PRIMARY KEY,
    content_hash TEXT NOT NULL,
    built_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS builds (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    root_path TEXT NOT NULL,
    node_count INTEGER NOT NULL,
    file_count INTEGER NOT NULL,
    outputs TEXT NOT NULL,
    duration_ms INTEGER NOT NULL,
    built_at TEXT NOT NULL
);
`

// initSchema creates the database tables if they don't exist.
func (c *Cache) initSchema() error {
	_, err := c.db.Exec(schemaSQL)
	return err
}
