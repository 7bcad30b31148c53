// Package store keeps a local history of scrape runs.
package store

import (
	"context"
	"time"
)

// RunStatus is the lifecycle state of one scraper run.
type RunStatus string

// Run statuses.
const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Run is one recorded execution of a named scraper.
type Run struct {
	ID           string     `json:"id"`
	Source       string     `json:"source"`
	Status       RunStatus  `json:"status"`
	Rows         int64      `json:"rows"`
	UsedFallback bool       `json:"used_fallback"`
	Error        string     `json:"error,omitempty"`
	ErrorType    string     `json:"error_type,omitempty"`
	StartedAt    time.Time  `json:"started_at"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
}

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Source string    `json:"source,omitempty"`
	Status RunStatus `json:"status,omitempty"`
	Limit  int       `json:"limit,omitempty"`
}

// RunStore defines the persistence interface for run history.
type RunStore interface {
	Migrate(ctx context.Context) error
	StartRun(ctx context.Context, source string) (string, error)
	CompleteRun(ctx context.Context, id string, rows int64, usedFallback bool) error
	FailRun(ctx context.Context, id string, runErr error) error
	GetRun(ctx context.Context, id string) (*Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]Run, error)
	Close() error
}
