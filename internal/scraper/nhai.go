package scraper

import (
	"context"

	"github.com/Hem1234567/laras-07/internal/pipeline"
)

// NHAI collects highway authority projects through the project pipeline.
// The pipeline writes fixed output paths, so callers must not run one NHAI
// concurrently with itself.
type NHAI struct {
	Pipeline *pipeline.Pipeline
}

// Name implements Scraper.
func (n *NHAI) Name() string { return "nhai" }

// Scrape implements Scraper.
func (n *NHAI) Scrape(ctx context.Context) (*Result, error) {
	report, err := n.Pipeline.Run(ctx)
	if err != nil {
		return nil, err
	}

	meta := map[string]any{
		"state":     report.State.String(),
		"extracted": report.Extracted,
		"dropped":   report.Dropped,
		"skipped":   report.Skipped,
	}
	if report.FetchErr != nil {
		meta["fetch_error"] = report.FetchErr.Error()
	}
	if report.Upsert != nil {
		meta["upserted"] = report.Upsert.Succeeded
		meta["upsert_failed"] = report.Upsert.Failed
	}
	if len(report.SinkErrs) > 0 {
		meta["sink_errors"] = len(report.SinkErrs)
	}

	return &Result{
		Rows:         int64(len(report.Records)),
		Files:        report.Files,
		UsedFallback: report.UsedFallback,
		Metadata:     meta,
	}, nil
}
