// Copyright © 2026 Plato contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: term/history/history.go
// Summary: SQLite-backed store for lines that scroll off the terminal.
// Usage: The emulator appends evicted lines; callers may list or search
// them. The store is bounded: oldest rows are pruned past the limit.

package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS scrollback (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    timestamp INTEGER NOT NULL,
    content TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_scrollback_timestamp ON scrollback(timestamp);
`

// Line is one stored scrollback line.
type Line struct {
	ID        int64
	Timestamp time.Time
	Content   string
}

// Store persists scrolled-off terminal lines.
type Store struct {
	db    *sql.DB
	limit int
}

// Open creates or opens a scrollback store at path, keeping at most
// limit lines.
func Open(path string, limit int) (*Store, error) {
	if limit <= 0 {
		limit = 1000
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to history database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create history schema: %w", err)
	}
	return &Store{db: db, limit: limit}, nil
}

// Append stores one line and prunes past the limit.
func (s *Store) Append(text string) error {
	_, err := s.db.Exec(
		"INSERT INTO scrollback (timestamp, content) VALUES (?, ?)",
		time.Now().UnixNano(), text,
	)
	if err != nil {
		return fmt.Errorf("failed to append history line: %w", err)
	}
	_, err = s.db.Exec(
		`DELETE FROM scrollback WHERE id <= (
		    SELECT id FROM scrollback ORDER BY id DESC LIMIT 1 OFFSET ?
		)`, s.limit,
	)
	if err != nil {
		return fmt.Errorf("failed to prune history: %w", err)
	}
	return nil
}

// Recent returns up to n lines, oldest first.
func (s *Store) Recent(n int) ([]Line, error) {
	rows, err := s.db.Query(
		`SELECT id, timestamp, content FROM (
		    SELECT id, timestamp, content FROM scrollback ORDER BY id DESC LIMIT ?
		) ORDER BY id ASC`, n,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()
	return scanLines(rows)
}

// Search returns lines containing substr, newest first, up to limit.
func (s *Store) Search(substr string, limit int) ([]Line, error) {
	rows, err := s.db.Query(
		`SELECT id, timestamp, content FROM scrollback
		 WHERE content LIKE '%' || ? || '%'
		 ORDER BY id DESC LIMIT ?`, substr, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search history: %w", err)
	}
	defer rows.Close()
	return scanLines(rows)
}

// Count returns the number of stored lines.
func (s *Store) Count() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM scrollback").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count history: %w", err)
	}
	return n, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func scanLines(rows *sql.Rows) ([]Line, error) {
	var out []Line
	for rows.Next() {
		var l Line
		var ts int64
		if err := rows.Scan(&l.ID, &ts, &l.Content); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		l.Timestamp = time.Unix(0, ts)
		out = append(out, l)
	}
	return out, rows.Err()
}
