package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"nudge/internal/services"
)

// Run is one job invocation.
type Run struct {
	ID             int64
	RunID          string
	Job            string
	StartedAt      time.Time
	Duration       time.Duration
	Outcome        string
	Artifact       string
	Degraded       bool
	DegradedReason string
	Error          string
}

// Succeeded reports whether the run finished without error.
func (r Run) Succeeded() bool {
	return r.Outcome == "ok"
}

// timestampLayout is fixed width so started_at sorts lexically.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

const runColumns = "id, run_id, job, started_at, duration_ms, outcome, artifact, degraded, degraded_reason, error_message"

// Store persists job runs in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the history database at path and applies
// migrations.
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, services.Wrap(services.ErrConfiguration, "history", "open", "database path is empty", nil)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record appends run and returns its row identifier.
func (s *Store) Record(ctx context.Context, run Run) (int64, error) {
	if strings.TrimSpace(run.Job) == "" {
		return 0, services.Wrap(services.ErrValidation, "history", "record", "job name is required", nil)
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	if run.Outcome == "" {
		run.Outcome = "ok"
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO job_runs (
            run_id, job, started_at, duration_ms, outcome, artifact, degraded, degraded_reason, error_message
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		nullableString(run.RunID),
		run.Job,
		run.StartedAt.UTC().Format(timestampLayout),
		run.Duration.Milliseconds(),
		run.Outcome,
		nullableString(run.Artifact),
		boolToInt(run.Degraded),
		nullableString(run.DegradedReason),
		nullableString(run.Error),
	)
	if err != nil {
		return 0, services.Wrap(services.ErrPersistence, "history", "record", run.Job, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// List returns the most recent runs, newest first. A non-positive limit
// returns every run.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM job_runs ORDER BY started_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// LastRun returns the newest run of job. ok is false when the job never ran.
func (s *Store) LastRun(ctx context.Context, job string) (Run, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+runColumns+` FROM job_runs WHERE job = ? ORDER BY started_at DESC, id DESC LIMIT 1`, job)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, false, nil
	}
	if err != nil {
		return Run{}, false, fmt.Errorf("last run: %w", err)
	}
	return run, true, nil
}

// Prune removes runs that started before cutoff and reports how many were
// deleted.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM job_runs WHERE started_at < ?`, cutoff.UTC().Format(timestampLayout))
	if err != nil {
		return 0, services.Wrap(services.ErrPersistence, "history", "prune", "", err)
	}
	return res.RowsAffected()
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (Run, error) {
	var (
		run            Run
		runID          sql.NullString
		startedRaw     string
		durationMS     int64
		artifact       sql.NullString
		degraded       int64
		degradedReason sql.NullString
		errorMessage   sql.NullString
	)
	if err := scanner.Scan(
		&run.ID,
		&runID,
		&run.Job,
		&startedRaw,
		&durationMS,
		&run.Outcome,
		&artifact,
		&degraded,
		&degradedReason,
		&errorMessage,
	); err != nil {
		return Run{}, err
	}
	started, err := time.Parse(timestampLayout, startedRaw)
	if err != nil {
		return Run{}, fmt.Errorf("parse started_at %q: %w", startedRaw, err)
	}
	run.RunID = runID.String
	run.StartedAt = started.Local()
	run.Duration = time.Duration(durationMS) * time.Millisecond
	run.Artifact = artifact.String
	run.Degraded = degraded != 0
	run.DegradedReason = degradedReason.String
	run.Error = errorMessage.String
	return run, nil
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
