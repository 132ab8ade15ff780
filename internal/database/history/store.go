package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"hex/internal/runner"
)

// SchemaSQL creates the run table.
const SchemaSQL = `
CREATE TABLE IF NOT EXISTS task_runs (
	run_id      VARCHAR PRIMARY KEY,
	task_id     VARCHAR NOT NULL,
	started_at  TIMESTAMP NOT NULL,
	duration_ms BIGINT NOT NULL,
	exit_code   INTEGER NOT NULL,
	output      VARCHAR
);
CREATE INDEX IF NOT EXISTS idx_task_runs_task ON task_runs (task_id, started_at);
`

// Run is one recorded execution.
type Run struct {
	ID string
	runner.Result
}

// TaskStats aggregates the runs of one task.
type TaskStats struct {
	TaskID      string
	Runs        int64
	Failures    int64
	AvgDuration time.Duration
	LastRun     time.Time
}

// Store records runs. It implements runner.Recorder.
type Store struct {
	db *sql.DB
}

// Open opens the store at path, in memory when path is empty, and creates
// its schema.
func Open(ctx context.Context, path string, opts ...Option) (*Store, error) {
	var cfg DatabaseConfig
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	db, err := openDuckDB(path, cfg)
	if err != nil {
		return nil, err
	}
	s := &Store{db: db}
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate history: %w", err)
	}
	return s, nil
}

// Migrate creates the schema if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, SchemaSQL)
	return err
}

// Close releases database resources.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// RecordRun stores r under a fresh run id.
func (s *Store) RecordRun(ctx context.Context, r runner.Result) error {
	if r.TaskID == "" {
		return errors.New("task id required")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO task_runs (run_id, task_id, started_at, duration_ms, exit_code, output)
		VALUES (?, ?, ?, ?, ?, ?)
	`, uuid.NewString(), r.TaskID, r.StartedAt.UTC(), r.Duration.Milliseconds(), r.ExitCode, r.Output)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// RecentRuns returns up to limit runs of a task, newest first.
func (s *Store) RecentRuns(ctx context.Context, taskID string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, task_id, started_at, duration_ms, exit_code, COALESCE(output, '')
		FROM task_runs
		WHERE task_id = ?
		ORDER BY started_at DESC
		LIMIT ?
	`, taskID, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			run      Run
			duration int64
		)
		if err := rows.Scan(&run.ID, &run.TaskID, &run.StartedAt, &duration, &run.ExitCode, &run.Output); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.Duration = time.Duration(duration) * time.Millisecond
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Stats aggregates every task's runs, ordered by task id.
func (s *Store) Stats(ctx context.Context) ([]TaskStats, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT task_id,
		       COUNT(*),
		       COUNT(*) FILTER (WHERE exit_code <> 0),
		       CAST(AVG(duration_ms) AS BIGINT),
		       MAX(started_at)
		FROM task_runs
		GROUP BY task_id
		ORDER BY task_id
	`)
	if err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}
	defer rows.Close()

	var stats []TaskStats
	for rows.Next() {
		var (
			st  TaskStats
			avg int64
		)
		if err := rows.Scan(&st.TaskID, &st.Runs, &st.Failures, &avg, &st.LastRun); err != nil {
			return nil, fmt.Errorf("scan stats: %w", err)
		}
		st.AvgDuration = time.Duration(avg) * time.Millisecond
		stats = append(stats, st)
	}
	return stats, rows.Err()
}
