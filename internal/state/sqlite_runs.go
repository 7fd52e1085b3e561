package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// RecordRun stores a run with its files and errors. An empty ID is filled
// in, and ErrorCount is set from Errors.
func (s *SQLiteStore) RecordRun(ctx context.Context, run *Run) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}
	if run.ID == "" {
		run.ID = generateID()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}
	if run.FinishedAt.IsZero() {
		run.FinishedAt = run.StartedAt
	}
	run.ErrorCount = len(run.Errors)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, label, name, version, policy, status, error_count, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Label, run.Name, run.Version, run.Policy, string(run.Status), run.ErrorCount,
		run.StartedAt.UnixNano(), run.FinishedAt.UnixNano(),
	); err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for i, path := range run.Files {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO run_files (run_id, position, path) VALUES (?, ?, ?)`,
			run.ID, i, path,
		); err != nil {
			return fmt.Errorf("failed to insert run file: %w", err)
		}
	}

	for i, e := range run.Errors {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO run_errors (run_id, position, kind, document, path, message) VALUES (?, ?, ?, ?, ?, ?)`,
			run.ID, i, e.Kind, e.Document, e.Path, e.Message,
		); err != nil {
			return fmt.Errorf("failed to insert run error: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	s.logger.Debug("recorded run", "id", run.ID, "label", run.Label, "status", run.Status, "errors", run.ErrorCount)
	return nil
}

// ListRuns returns the most recent runs first, without their errors.
// A limit of zero or less returns every run.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, label, name, version, policy, status, error_count, started_at, finished_at
		 FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			_ = rows.Close()
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	_ = rows.Close()

	for _, run := range runs {
		if run.Files, err = s.runFiles(ctx, run.ID); err != nil {
			return nil, err
		}
	}
	return runs, nil
}

// GetRun returns a run with its files and errors. id may be a unique
// prefix of the full run ID.
func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*Run, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}
	if id == "" {
		return nil, ErrRunNotFound
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, label, name, version, policy, status, error_count, started_at, finished_at
		 FROM runs WHERE id = ? OR id LIKE ? ORDER BY id = ? DESC LIMIT 2`,
		id, id+"%", id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	var matches []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			_ = rows.Close()
			return nil, err
		}
		matches = append(matches, run)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	_ = rows.Close()

	switch {
	case len(matches) == 0:
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	case len(matches) > 1 && matches[0].ID != id:
		return nil, fmt.Errorf("run id prefix %q is ambiguous", id)
	}

	run := matches[0]
	if run.Files, err = s.runFiles(ctx, run.ID); err != nil {
		return nil, err
	}
	if run.Errors, err = s.runErrors(ctx, run.ID); err != nil {
		return nil, err
	}
	return run, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*Run, error) {
	run := &Run{}
	var status string
	var started, finished int64
	if err := row.Scan(&run.ID, &run.Label, &run.Name, &run.Version, &run.Policy,
		&status, &run.ErrorCount, &started, &finished); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRunNotFound
		}
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}
	run.Status = RunStatus(status)
	run.StartedAt = time.Unix(0, started).UTC()
	run.FinishedAt = time.Unix(0, finished).UTC()
	return run, nil
}

func (s *SQLiteStore) runFiles(ctx context.Context, runID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT path FROM run_files WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get run files: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var files []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return nil, fmt.Errorf("failed to scan run file: %w", err)
		}
		files = append(files, path)
	}
	return files, rows.Err()
}

func (s *SQLiteStore) runErrors(ctx context.Context, runID string) ([]RunError, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT kind, document, path, message FROM run_errors WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get run errors: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var errs []RunError
	for rows.Next() {
		var e RunError
		if err := rows.Scan(&e.Kind, &e.Document, &e.Path, &e.Message); err != nil {
			return nil, fmt.Errorf("failed to scan run error: %w", err)
		}
		errs = append(errs, e)
	}
	return errs, rows.Err()
}
