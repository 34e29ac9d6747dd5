// Package store provides a SQLite-backed cache of session metadata and
// token stats. The transcript engine itself is pure; caching lives on the
// caller's side of that boundary and is keyed by file mtime and size.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jovezhong/claude-code-history-viewer/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

// Cache provides SQLite-backed session caching.
type Cache struct {
	db *sql.DB
}

// Entry is one cached session: metadata plus token stats.
type Entry struct {
	Session model.Session
	Stats   model.SessionTokenStats
}

// FileInfo holds the tracked mtime and size for a file.
type FileInfo struct {
	MtimeNs   int64
	SizeBytes int64
}

// Open opens or creates the cache database at the given path.
func Open(dbPath string) (*Cache, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)")
	if err != nil {
		return nil, fmt.Errorf("opening cache db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Cache{db: db}, nil
}

// Close closes the cache database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// GetTrackedFiles returns a map of file_path -> FileInfo for all tracked files.
func (c *Cache) GetTrackedFiles() (map[string]FileInfo, error) {
	rows, err := c.db.Query("SELECT file_path, mtime_ns, size_bytes FROM file_tracker")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	result := make(map[string]FileInfo)
	for rows.Next() {
		var path string
		var fi FileInfo
		if err := rows.Scan(&path, &fi.MtimeNs, &fi.SizeBytes); err != nil {
			return nil, err
		}
		result[path] = fi
	}
	return result, rows.Err()
}

// SaveSession stores one session's metadata and stats plus its file
// tracking info.
func (c *Cache) SaveSession(e Entry, mtimeNs, sizeBytes int64) error {
	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(time.RFC3339)
	var summary sql.NullString
	if e.Session.Summary != nil {
		summary = sql.NullString{String: *e.Session.Summary, Valid: true}
	}

	_, err = tx.Exec(`INSERT OR REPLACE INTO sessions
		(session_id, actual_session_id, project, file_path, message_count,
		 first_message_time, last_message_time, last_modified,
		 has_tool_use, has_errors, summary,
		 input_tokens, output_tokens, cache_creation_tokens, cache_read_tokens,
		 total_tokens, cost_usd, duration_ms, file_mtime_ns, file_size, parsed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Session.SessionID, e.Session.ActualSessionID, e.Session.ProjectName,
		e.Session.FilePath, e.Session.MessageCount,
		e.Session.FirstMessageTime, e.Session.LastMessageTime, e.Session.LastModified,
		boolInt(e.Session.HasToolUse), boolInt(e.Session.HasErrors), summary,
		e.Stats.TotalInputTokens, e.Stats.TotalOutputTokens,
		e.Stats.TotalCacheCreationTokens, e.Stats.TotalCacheReadTokens,
		e.Stats.TotalTokens, e.Stats.TotalCostUSD, e.Stats.TotalDurationMs,
		mtimeNs, sizeBytes, now,
	)
	if err != nil {
		return err
	}

	_, err = tx.Exec(`INSERT OR REPLACE INTO file_tracker (file_path, mtime_ns, size_bytes)
		VALUES (?, ?, ?)`, e.Session.FilePath, mtimeNs, sizeBytes)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// LoadAllSessions reads all cached session entries.
func (c *Cache) LoadAllSessions() ([]Entry, error) {
	rows, err := c.db.Query(`SELECT
		session_id, actual_session_id, project, file_path, message_count,
		first_message_time, last_message_time, last_modified,
		has_tool_use, has_errors, summary,
		input_tokens, output_tokens, cache_creation_tokens, cache_read_tokens,
		total_tokens, cost_usd, duration_ms
		FROM sessions`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var hasToolUse, hasErrors int
		var summary sql.NullString

		err := rows.Scan(
			&e.Session.SessionID, &e.Session.ActualSessionID, &e.Session.ProjectName,
			&e.Session.FilePath, &e.Session.MessageCount,
			&e.Session.FirstMessageTime, &e.Session.LastMessageTime, &e.Session.LastModified,
			&hasToolUse, &hasErrors, &summary,
			&e.Stats.TotalInputTokens, &e.Stats.TotalOutputTokens,
			&e.Stats.TotalCacheCreationTokens, &e.Stats.TotalCacheReadTokens,
			&e.Stats.TotalTokens, &e.Stats.TotalCostUSD, &e.Stats.TotalDurationMs,
		)
		if err != nil {
			return nil, err
		}

		e.Session.HasToolUse = hasToolUse != 0
		e.Session.HasErrors = hasErrors != 0
		if summary.Valid {
			s := summary.String
			e.Session.Summary = &s
		}
		e.Stats.SessionID = e.Session.SessionID
		e.Stats.ProjectName = e.Session.ProjectName
		e.Stats.MessageCount = e.Session.MessageCount
		e.Stats.FirstMessageTime = e.Session.FirstMessageTime
		e.Stats.LastMessageTime = e.Session.LastMessageTime

		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// DeleteFileTracker removes a file tracking entry.
func (c *Cache) DeleteFileTracker(filePath string) error {
	_, err := c.db.Exec("DELETE FROM file_tracker WHERE file_path = ?", filePath)
	return err
}

// SessionCount returns the number of cached sessions.
func (c *Cache) SessionCount() (int, error) {
	var count int
	err := c.db.QueryRow("SELECT COUNT(*) FROM sessions").Scan(&count)
	return count, err
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
