package cache

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// BuildRecord is one completed build.
type BuildRecord struct {
	ID         int64
	RootPath   string
	NodeCount  int
	FileCount  int
	Outputs    []string
	DurationMs int64
	BuiltAt    time.Time
}

// RecordBuild appends a build to the history.
func (c *Cache) RecordBuild(rec *BuildRecord) error {
	_, err := c.db.Exec(`
		INSERT INTO builds (root_path, node_count, file_count, outputs, duration_ms, built_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		rec.RootPath, rec.NodeCount, rec.FileCount,
		strings.Join(rec.Outputs, "\n"), rec.DurationMs,
		time.Now().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("record build: %w", err)
	}
	return nil
}

// LastBuild returns the most recent build record.
// Returns sql.ErrNoRows if no build has been recorded.
func (c *Cache) LastBuild() (*BuildRecord, error) {
	var rec BuildRecord
	var outputs, builtAt string

	err := c.db.QueryRow(`
		SELECT id, root_path, node_count, file_count, outputs, duration_ms, built_at
		FROM builds ORDER BY id DESC LIMIT 1`).
		Scan(&rec.ID, &rec.RootPath, &rec.NodeCount, &rec.FileCount,
			&outputs, &rec.DurationMs, &builtAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("query last build: %w", err)
	}

	if outputs != "" {
		rec.Outputs = strings.Split(outputs, "\n")
	}
	rec.BuiltAt, _ = time.Parse(time.RFC3339, builtAt)
	return &rec, nil
}
