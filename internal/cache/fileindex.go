package cache

import (
	"fmt"
	"time"
)

// FileEntry holds the recorded build state for one source file.
type FileEntry struct {
	FilePath    string
	ContentHash string
	BuiltAt     time.Time
}

// ReplaceFileIndex replaces the whole file index with the given
// hashes in a single transaction. Called after a successful build so
// removed files disappear from the index too.
func (c *Cache) ReplaceFileIndex(hashes map[string]string) error {
	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("begin file index update: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM file_index"); err != nil {
		return fmt.Errorf("clear file index: %w", err)
	}

	now := time.Now().Format(time.RFC3339)
	stmt, err := tx.Prepare(
		"INSERT INTO file_index (file_path, content_hash, built_at) VALUES (?, ?, ?)")
	if err != nil {
		return fmt.Errorf("prepare file index insert: %w", err)
	}
	defer stmt.Close()

	for path, hash := range hashes {
		if _, err := stmt.Exec(path, hash, now); err != nil {
			return fmt.Errorf("index %s: %w", path, err)
		}
	}

	return tx.Commit()
}

// GetFileIndex returns the recorded hash for every indexed file.
func (c *Cache) GetFileIndex() (map[string]string, error) {
	rows, err := c.db.Query("SELECT file_path, content_hash FROM file_index")
	if err != nil {
		return nil, fmt.Errorf("query file index: %w", err)
	}
	defer rows.Close()

	index := make(map[string]string)
	for rows.Next() {
		var path, hash string
		if err := rows.Scan(&path, &hash); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		index[path] = hash
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return index, nil
}

// IsUpToDate reports whether the given hashes exactly match the
// recorded index: same files, same content. Any added, removed, or
// changed file makes the build stale.
func (c *Cache) IsUpToDate(hashes map[string]string) (bool, error) {
	index, err := c.GetFileIndex()
	if err != nil {
		return false, err
	}

	if len(index) != len(hashes) {
		return false, nil
	}
	for path, hash := range hashes {
		if index[path] != hash {
			return false, nil
		}
	}
	return true, nil
}
