// Package ledger records trace run outcomes in a SQLite database.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/gogpu/ggtest"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	title       TEXT    NOT NULL,
	started_at  INTEGER NOT NULL,
	duration_us INTEGER NOT NULL,
	events      INTEGER NOT NULL,
	applied     INTEGER NOT NULL,
	passed      INTEGER NOT NULL,
	error       TEXT    NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS captures (
	run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	idx    INTEGER NOT NULL,
	kind   TEXT    NOT NULL,
	name   TEXT    NOT NULL,
	digest TEXT    NOT NULL
);
CREATE INDEX IF NOT EXISTS captures_run ON captures(run_id);
`

// Run is a recorded trace run.
type Run struct {
	ID        int64
	Title     string
	StartedAt time.Time
	Duration  time.Duration
	Events    int
	Applied   int
	Passed    bool
	Error     string
	Captures  []ggtest.CaptureRecord
}

// Ledger stores runs. It implements ggtest.Reporter so it can be passed to
// ggtest.WithReporter directly.
type Ledger struct {
	db *sql.DB

	mu      sync.Mutex
	started time.Time
	err     error
}

var _ ggtest.Reporter = (*Ledger)(nil)

// Open opens or creates the ledger database at path. Use ":memory:" for a
// throwaway ledger.
func Open(path string) (*Ledger, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("ledger: open %s: %w", path, err)
	}
	// One connection keeps :memory: databases and pragmas consistent.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA foreign_keys=ON",
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=10000",
		"PRAGMA synchronous=NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("ledger: %s: %w", p, err)
		}
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ledger: ping: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ledger: create schema: %w", err)
	}
	return &Ledger{db: db}, nil
}

// Close closes the database.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// Record stores a finished run and returns its id.
func (l *Ledger) Record(ctx context.Context, started time.Time, r ggtest.RunResult) (int64, error) {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("ledger: begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	errText := ""
	if r.Err != nil {
		errText = r.Err.Error()
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (title, started_at, duration_us, events, applied, passed, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.Title, started.UnixMicro(), r.Duration.Microseconds(), r.Events, r.Applied, r.Passed(), errText)
	if err != nil {
		return 0, fmt.Errorf("ledger: insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("ledger: run id: %w", err)
	}
	for _, c := range r.Captures {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO captures (run_id, idx, kind, name, digest) VALUES (?, ?, ?, ?, ?)`,
			id, c.Index, c.Kind, c.Name, c.Digest); err != nil {
			return 0, fmt.Errorf("ledger: insert capture: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("ledger: commit: %w", err)
	}
	return id, nil
}

// List returns up to limit runs, newest first.
func (l *Ledger) List(ctx context.Context, limit int) ([]Run, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, title, started_at, duration_us, events, applied, passed, error
		 FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("ledger: list runs: %w", err)
	}
	var runs []Run
	for rows.Next() {
		var (
			r          Run
			startedUs  int64
			durationUs int64
		)
		if err := rows.Scan(&r.ID, &r.Title, &startedUs, &durationUs, &r.Events, &r.Applied, &r.Passed, &r.Error); err != nil {
			rows.Close()
			return nil, fmt.Errorf("ledger: scan run: %w", err)
		}
		r.StartedAt = time.UnixMicro(startedUs)
		r.Duration = time.Duration(durationUs) * time.Microsecond
		runs = append(runs, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ledger: list runs: %w", err)
	}

	for i := range runs {
		caps, err := l.captures(ctx, runs[i].ID)
		if err != nil {
			return nil, err
		}
		runs[i].Captures = caps
	}
	return runs, nil
}

func (l *Ledger) captures(ctx context.Context, runID int64) ([]ggtest.CaptureRecord, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT idx, kind, name, digest FROM captures WHERE run_id = ? ORDER BY idx`, runID)
	if err != nil {
		return nil, fmt.Errorf("ledger: list captures: %w", err)
	}
	defer rows.Close()
	var out []ggtest.CaptureRecord
	for rows.Next() {
		var c ggtest.CaptureRecord
		if err := rows.Scan(&c.Index, &c.Kind, &c.Name, &c.Digest); err != nil {
			return nil, fmt.Errorf("ledger: scan capture: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// LastDigest returns the digest most recently recorded for a capture name.
// ok is false if the name was never captured.
func (l *Ledger) LastDigest(ctx context.Context, name string) (digest string, ok bool, err error) {
	err = l.db.QueryRowContext(ctx,
		`SELECT digest FROM captures WHERE name = ? ORDER BY run_id DESC, idx DESC LIMIT 1`, name).Scan(&digest)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("ledger: last digest: %w", err)
	}
	return digest, true, nil
}

// EventStarted implements ggtest.Reporter. The first event marks the run
// start time.
func (l *Ledger) EventStarted(index int, _ string) {
	if index != 0 {
		return
	}
	l.mu.Lock()
	l.started = time.Now()
	l.mu.Unlock()
}

// EventFinished implements ggtest.Reporter.
func (l *Ledger) EventFinished(int, string, error, time.Duration) {}

// RunFinished implements ggtest.Reporter by recording the run. A failure
// to record is kept and returned by Err.
func (l *Ledger) RunFinished(r ggtest.RunResult) {
	l.mu.Lock()
	started := l.started
	l.started = time.Time{}
	l.mu.Unlock()
	if started.IsZero() {
		started = time.Now().Add(-r.Duration)
	}

	_, err := l.Record(context.Background(), started, r)
	if err != nil {
		ggtest.Logger().Warn("ledger: record run failed", "err", err)
	}
	l.mu.Lock()
	l.err = err
	l.mu.Unlock()
}

// Err returns the error of the last recording done through RunFinished.
func (l *Ledger) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}
