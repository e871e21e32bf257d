package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/muurk/tourguide/internal/tour"
	_ "modernc.org/sqlite"
)

// Schema for the tour_completions table. Applied by NewSQLite.
const Schema = `
CREATE TABLE IF NOT EXISTS tour_completions (
	key TEXT PRIMARY KEY,
	outcome TEXT NOT NULL,
	finished_at INTEGER NOT NULL,
	runs INTEGER NOT NULL DEFAULT 1
);
`

// SQLite is a completion store in a SQLite database.
type SQLite struct {
	db  *sql.DB
	own bool
	now func() time.Time
}

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(path string) (*SQLite, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	s, err := NewSQLite(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	s.own = true
	return s, nil
}

// NewSQLite uses an existing connection and applies the schema. Close does not
// close a connection passed in here.
func NewSQLite(db *sql.DB) (*SQLite, error) {
	if _, err := db.Exec(Schema); err != nil {
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &SQLite{db: db, now: time.Now}, nil
}

// IsCompleted implements tour.Store.
func (s *SQLite) IsCompleted(key string) (bool, error) {
	var one int
	err := s.db.QueryRow(`SELECT 1 FROM tour_completions WHERE key = ?`, key).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query completion for %q: %w", key, err)
	}
	return true, nil
}

// MarkCompleted implements tour.Store. Repeated marks bump the run counter.
func (s *SQLite) MarkCompleted(key string, outcome tour.Outcome) error {
	_, err := s.db.Exec(`INSERT INTO tour_completions (key, outcome, finished_at, runs)
		VALUES (?, ?, ?, 1)
		ON CONFLICT(key) DO UPDATE SET
			outcome = excluded.outcome,
			finished_at = excluded.finished_at,
			runs = tour_completions.runs + 1`,
		key, string(outcome), s.now().UnixMilli())
	if err != nil {
		return fmt.Errorf("record completion for %q: %w", key, err)
	}
	return nil
}

// Records returns every finished tour, sorted by key.
func (s *SQLite) Records() ([]Record, error) {
	rows, err := s.db.Query(`SELECT key, outcome, finished_at, runs FROM tour_completions ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list completions: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			r  Record
			ms int64
		)
		if err := rows.Scan(&r.Key, &r.Outcome, &ms, &r.Runs); err != nil {
			return nil, fmt.Errorf("scan completion: %w", err)
		}
		r.FinishedAt = time.UnixMilli(ms).UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}

// Reset deletes a tour's record.
func (s *SQLite) Reset(key string) (bool, error) {
	res, err := s.db.Exec(`DELETE FROM tour_completions WHERE key = ?`, key)
	if err != nil {
		return false, fmt.Errorf("reset %q: %w", key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Close closes the database if OpenSQLite opened it.
func (s *SQLite) Close() error {
	if !s.own {
		return nil
	}
	return s.db.Close()
}
