// Package state records validation runs in a SQLite history database.
package state

import (
	"context"
	"errors"
	"time"
)

// RunStatus is the outcome of one validation run.
type RunStatus string

// Run statuses.
const (
	RunStatusPassed RunStatus = "passed"
	RunStatusFailed RunStatus = "failed" // the documents had validation errors
	RunStatusError  RunStatus = "error"  // the documents could not be loaded
)

// ErrRunNotFound is returned when no run matches an ID.
var ErrRunNotFound = errors.New("run not found")

// Run is one recorded validation of a model: a definition, an environment
// or both.
type Run struct {
	ID         string
	Label      string
	Name       string
	Version    string
	Policy     string
	Files      []string
	Status     RunStatus
	ErrorCount int
	StartedAt  time.Time
	FinishedAt time.Time
	// Errors is only populated by GetRun.
	Errors []RunError
}

// Duration returns how long the run took.
func (r *Run) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// RunError is one error reported by a run.
type RunError struct {
	Kind     string
	Document string
	Path     string
	Message  string
}

// Store persists validation runs.
type Store interface {
	RecordRun(ctx context.Context, run *Run) error
	ListRuns(ctx context.Context, limit int) ([]*Run, error)
	GetRun(ctx context.Context, id string) (*Run, error)
	Close() error
}
