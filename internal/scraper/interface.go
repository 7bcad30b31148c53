// Package scraper runs the named data collectors (highway projects,
// gazette notifications, court judgments, news) and records each run.
package scraper

import "context"

// Scraper is one named data collector.
type Scraper interface {
	// Name returns the unique identifier used on the command line.
	Name() string
	// Scrape collects and persists one batch.
	Scrape(ctx context.Context) (*Result, error)
}

// Result summarizes one successful scrape.
type Result struct {
	Rows         int64
	Files        []string
	UsedFallback bool
	Metadata     map[string]any
}
