// Package history records harness runs in a SQLite database so past results
// can be listed and inspected. Recording is opt-in; nothing reads history
// back into a run.
package history

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/neznayu/harness/internal/models"
)

//go:embed schema.sql
var schemaSQL string

// ErrRunNotFound is returned by GetRun when no run matches the given ID.
var ErrRunNotFound = errors.New("run not found")

// RunRecord is one recorded harness run
type RunRecord struct {
	ID          string
	StartedAt   time.Time
	FinishedAt  time.Time
	FixtureRoot string
	Executable  string
	BuildOK     bool
	Total       int
	Passed      int
	Failed      int
	Duration    time.Duration
}

// ResultRecord is one recorded fixture outcome
type ResultRecord struct {
	RunID      string
	Key        string
	Path       string
	ExitStatus int
	Passed     bool
	Output     string
	Duration   time.Duration
}

// Store manages the SQLite history database
type Store struct {
	db     *sql.DB
	dbPath string
}

// NewStore opens (creating if needed) the history database at dbPath.
// ":memory:" opens a private in-memory database.
func NewStore(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Each pooled connection would otherwise see its own empty database
		db.SetMaxOpenConns(1)
	}

	pragmas := []string{
		"PRAGMA busy_timeout=5000", // Must be first
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if err := execWithRetry(db, pragma, 5, 10*time.Millisecond); err != nil {
			db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	store := &Store{db: db, dbPath: dbPath}
	if err := store.ApplyMigrations(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return store, nil
}

// execWithRetry executes a SQL statement with exponential backoff retry on lock errors.
func execWithRetry(db *sql.DB, stmt string, maxRetries int, baseDelay time.Duration) error {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		_, err := db.Exec(stmt)
		if err == nil {
			return nil
		}
		if !strings.Contains(err.Error(), "database is locked") {
			return err
		}
		lastErr = err
		time.Sleep(baseDelay * time.Duration(1<<attempt))
	}
	return lastErr
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Path returns the database location.
func (s *Store) Path() string {
	return s.dbPath
}

// RecordRun stores a finished run and all of its fixture results in one transaction.
func (s *Store) RecordRun(ctx context.Context, summary models.RunSummary) error {
	if summary.ID == "" {
		return errors.New("run summary has no ID")
	}

	total, passed, failed := 0, 0, 0
	var results []models.TestResult
	if summary.Results != nil {
		results = summary.Results.Results()
		total = len(results)
		passed, failed = summary.Results.Counts()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	finished := summary.StartedAt.Add(summary.Duration)
	_, err = tx.ExecContext(ctx, `INSERT INTO runs
		(id, started_at, finished_at, fixture_root, executable, build_ok, total, passed, failed, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		summary.ID,
		formatTime(summary.StartedAt),
		formatTime(finished),
		summary.FixtureRoot,
		summary.Executable,
		summary.BuildOK,
		total,
		passed,
		failed,
		summary.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO results
		(run_id, key, path, exit_status, passed, output, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare result insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range results {
		if _, err := stmt.ExecContext(ctx,
			summary.ID,
			r.Key,
			r.File.RelPath,
			r.ExitStatus,
			r.Passed,
			r.Output,
			r.Duration.Milliseconds(),
		); err != nil {
			return fmt.Errorf("insert result %s: %w", r.Key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

const runColumns = `id, started_at, finished_at, fixture_root, executable, build_ok, total, passed, failed, duration_ms`

// ListRuns returns the most recent runs first. limit <= 0 returns every run.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]*RunRecord, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC, id`
	var args []interface{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []*RunRecord
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// GetRun returns one run and its results ordered by key.
// id may be a full run ID or an unambiguous prefix of one.
func (s *Store) GetRun(ctx context.Context, id string) (*RunRecord, []*ResultRecord, error) {
	if id == "" {
		return nil, nil, ErrRunNotFound
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE id = ? OR substr(id, 1, ?) = ? ORDER BY id = ? DESC LIMIT 2`,
		id, len(id), id, id)
	if err != nil {
		return nil, nil, fmt.Errorf("query run: %w", err)
	}
	var matches []*RunRecord
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			rows.Close()
			return nil, nil, err
		}
		matches = append(matches, run)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate run: %w", err)
	}

	switch {
	case len(matches) == 0:
		return nil, nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	case len(matches) > 1 && matches[0].ID != id:
		return nil, nil, fmt.Errorf("run id prefix %q is ambiguous", id)
	}
	run := matches[0]

	results, err := s.getResults(ctx, run.ID)
	if err != nil {
		return nil, nil, err
	}
	return run, results, nil
}

func (s *Store) getResults(ctx context.Context, runID string) ([]*ResultRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT run_id, key, path, exit_status, passed, output, duration_ms
		FROM results WHERE run_id = ? ORDER BY key`, runID)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	var results []*ResultRecord
	for rows.Next() {
		r := &ResultRecord{}
		var output sql.NullString
		var durationMs int64
		if err := rows.Scan(&r.RunID, &r.Key, &r.Path, &r.ExitStatus, &r.Passed, &output, &durationMs); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		r.Output = output.String
		r.Duration = time.Duration(durationMs) * time.Millisecond
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate results: %w", err)
	}
	return results, nil
}

func scanRun(rows *sql.Rows) (*RunRecord, error) {
	run := &RunRecord{}
	var started, finished string
	var durationMs int64
	if err := rows.Scan(
		&run.ID,
		&started,
		&finished,
		&run.FixtureRoot,
		&run.Executable,
		&run.BuildOK,
		&run.Total,
		&run.Passed,
		&run.Failed,
		&durationMs,
	); err != nil {
		return nil, fmt.Errorf("scan run: %w", err)
	}
	run.StartedAt = parseTime(started)
	run.FinishedAt = parseTime(finished)
	run.Duration = time.Duration(durationMs) * time.Millisecond
	return run, nil
}

// Times are stored as fixed-width UTC text so lexical order is chronological.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
