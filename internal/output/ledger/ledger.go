// Package ledger journals every emitted event to SQLite, one run at a time.
// PostHog has no idempotency key, so the ledger is how a re-import finds
// out which events it is sending twice.
package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"github.com/crimson-sun/babylog/internal/model"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		started_at TEXT NOT NULL,
		finished_at TEXT NULL,
		events INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(run_id),
		event TEXT NOT NULL,
		distinct_id TEXT NOT NULL,
		occurred_at TEXT NOT NULL,
		properties TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS events_identity ON events(event, distinct_id, occurred_at)`,
}

// Ledger is an output that records events instead of delivering them.
type Ledger struct {
	db      *sql.DB
	runID   string
	written int
	resent  int
}

// Run summarizes one recorded run.
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt *time.Time
	Events     int
}

// Open opens (creating if needed) the ledger at path and starts a run.
func Open(ctx context.Context, path, runID string) (*Ledger, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("ledger: open %s: %w", path, err)
	}
	// One connection keeps writes serialized and :memory: databases shared.
	db.SetMaxOpenConns(1)

	for _, stmt := range migrations {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("ledger: migrate: %w", err)
		}
	}
	if _, err := db.ExecContext(ctx,
		`INSERT INTO runs (run_id, started_at) VALUES (?, ?)`,
		runID, time.Now().UTC().Format(time.RFC3339Nano),
	); err != nil {
		db.Close()
		return nil, fmt.Errorf("ledger: start run %s: %w", runID, err)
	}
	return &Ledger{db: db, runID: runID}, nil
}

// Write records the event under the current run.
func (l *Ledger) Write(ctx context.Context, event model.Event) error {
	props, err := json.Marshal(event.Properties)
	if err != nil {
		return fmt.Errorf("ledger: marshal %s: %w", event.Name, err)
	}
	at := event.Timestamp.UTC().Format(time.RFC3339Nano)

	seen, err := l.seen(ctx, event.Name, event.DistinctID, at)
	if err != nil {
		return err
	}
	if seen {
		l.resent++
	}

	if _, err := l.db.ExecContext(ctx,
		`INSERT INTO events (run_id, event, distinct_id, occurred_at, properties) VALUES (?, ?, ?, ?, ?)`,
		l.runID, event.Name, event.DistinctID, at, string(props),
	); err != nil {
		return fmt.Errorf("ledger: insert %s: %w", event.Name, err)
	}
	l.written++
	return nil
}

// seen reports whether an earlier run already recorded the same event.
func (l *Ledger) seen(ctx context.Context, name, distinctID, at string) (bool, error) {
	var n int
	err := l.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM events WHERE event = ? AND distinct_id = ? AND occurred_at = ? AND run_id <> ?`,
		name, distinctID, at, l.runID,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("ledger: lookup %s: %w", name, err)
	}
	return n > 0, nil
}

// Resent returns how many events of this run were recorded by an earlier run.
func (l *Ledger) Resent() int { return l.resent }

// Runs lists recorded runs, oldest first.
func (l *Ledger) Runs(ctx context.Context) ([]Run, error) {
	rows, err := l.db.QueryContext(ctx, `SELECT run_id, started_at, finished_at, events FROM runs ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("ledger: list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r        Run
			started  string
			finished sql.NullString
		)
		if err := rows.Scan(&r.ID, &started, &finished, &r.Events); err != nil {
			return nil, fmt.Errorf("ledger: scan run: %w", err)
		}
		r.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		if finished.Valid {
			t, _ := time.Parse(time.RFC3339Nano, finished.String)
			r.FinishedAt = &t
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Close marks the run finished and closes the database.
func (l *Ledger) Close() error {
	_, err := l.db.Exec(
		`UPDATE runs SET finished_at = ?, events = ? WHERE run_id = ?`,
		time.Now().UTC().Format(time.RFC3339Nano), l.written, l.runID,
	)
	if l.resent > 0 {
		slog.Warn("events already sent by an earlier run", "run_id", l.runID, "count", l.resent)
	}
	if cerr := l.db.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("ledger: close run %s: %w", l.runID, err)
	}
	return nil
}
