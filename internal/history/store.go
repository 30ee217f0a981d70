// Package history records completed build passes in a SQLite database so the
// CLI can answer "what did recent builds do".
package history

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Pass is one recorded build pass.
type Pass struct {
	ID            string
	Kind          string
	Rendered      int
	RemovedOutput int
	NoOp          bool
	Error         string
	Duration      time.Duration
	StartedAt     time.Time
}

// Store persists build passes in SQLite.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// Open creates a store at dbPath. Use ":memory:" for an in-memory database.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	s := &Store{db: db}
	if err := s.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS passes (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		rendered INTEGER NOT NULL,
		removed_output INTEGER NOT NULL,
		noop INTEGER NOT NULL,
		error TEXT NOT NULL DEFAULT '',
		duration_ms INTEGER NOT NULL,
		started_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_passes_started_at ON passes(started_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Record appends one pass.
func (s *Store) Record(ctx context.Context, p Pass) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	noop := 0
	if p.NoOp {
		noop = 1
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO passes (id, kind, rendered, removed_output, noop, error, duration_ms, started_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		p.ID, p.Kind, p.Rendered, p.RemovedOutput, noop, p.Error, p.Duration.Milliseconds(), p.StartedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert pass: %w", err)
	}
	return nil
}

// Recent returns the most recent passes, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Pass, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, kind, rendered, removed_output, noop, error, duration_ms, started_at FROM passes ORDER BY started_at DESC, id LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query passes: %w", err)
	}
	defer rows.Close()

	var passes []Pass
	for rows.Next() {
		var p Pass
		var noop int
		var durationMS, startedAt int64
		if err := rows.Scan(&p.ID, &p.Kind, &p.Rendered, &p.RemovedOutput, &noop, &p.Error, &durationMS, &startedAt); err != nil {
			return nil, fmt.Errorf("scan pass: %w", err)
		}
		p.NoOp = noop != 0
		p.Duration = time.Duration(durationMS) * time.Millisecond
		p.StartedAt = time.Unix(startedAt, 0)
		passes = append(passes, p)
	}
	return passes, rows.Err()
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }
