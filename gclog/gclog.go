// Package gclog persists per-collection statistics to SQLite for
// offline diagnostics: one row per collection, appended as they happen.
package gclog

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/chazu/slide/heap"
)

// Recorder appends collection statistics to a SQLite database.
// Record is safe to use as a heap observer; the recorder serializes
// writes internally.
type Recorder struct {
	db *sql.DB
	mu sync.Mutex
}

// Open creates (or opens) the database at path and ensures the schema
// exists.
func Open(path string) (*Recorder, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Set busy timeout for concurrent access
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS collections (
		sequence        INTEGER NOT NULL,
		timestamp       TEXT    NOT NULL,
		live            INTEGER NOT NULL,
		reclaimed       INTEGER NOT NULL,
		capacity_before INTEGER NOT NULL,
		capacity_after  INTEGER NOT NULL,
		duration_us     INTEGER NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating table: %w", err)
	}

	return &Recorder{db: db}, nil
}

// Record appends one collection's statistics.
func (r *Recorder) Record(stats heap.CollectionStats) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(
		`INSERT INTO collections
		 (sequence, timestamp, live, reclaimed, capacity_before, capacity_after, duration_us)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		stats.Sequence,
		stats.Timestamp.UTC().Format(time.RFC3339Nano),
		stats.Live,
		stats.Reclaimed,
		stats.CapacityBefore,
		stats.CapacityAfter,
		stats.Duration.Microseconds(),
	)
	if err != nil {
		return fmt.Errorf("recording collection %d: %w", stats.Sequence, err)
	}
	return nil
}

// Count returns the number of recorded collections.
func (r *Recorder) Count() (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM collections").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting collections: %w", err)
	}
	return n, nil
}

// Close closes the database connection.
func (r *Recorder) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}
