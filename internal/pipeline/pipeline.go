// Package pipeline runs one project scrape end to end: fetch, extract,
// normalize and geocode, fall back to curated data when nothing usable
// came back, then persist.
package pipeline

import (
	"context"
	"net/url"
	"time"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/Hem1234567/laras-07/internal/extract"
	"github.com/Hem1234567/laras-07/internal/fallback"
	"github.com/Hem1234567/laras-07/internal/fetcher"
	"github.com/Hem1234567/laras-07/internal/model"
	"github.com/Hem1234567/laras-07/internal/normalize"
	"github.com/Hem1234567/laras-07/internal/sink"
)

// MinNameLength is the shortest project name kept from a listing; shorter
// cells are navigation or footnote rows.
const MinNameLength = 5

// RowExtractor pulls data rows out of a fetched page.
type RowExtractor interface {
	ExtractCounted(body []byte) ([]extract.RawRow, int, error)
}

// Geocoder resolves a project name, retrying once with a broader place.
// *geocode.Locator implements it.
type Geocoder interface {
	LocateWithFallback(ctx context.Context, name, broader string) (*model.Point, bool)
}

// Pipeline wires the stages for one source. Fetcher, Extractor and
// Normalizer are required; every other collaborator is optional.
type Pipeline struct {
	Source     string
	SourceURL  string
	Params     url.Values
	Fetcher    fetcher.Fetcher
	Extractor  RowExtractor
	Normalizer *normalize.Normalizer
	Locator    Geocoder
	Fallback   fallback.Supplier

	// FallbackOnFetchError substitutes curated data when the page cannot be
	// fetched or parsed. When false such a run ends Aborted without writes.
	FallbackOnFetchError bool

	CSVPath  string
	SQLPath  string
	XLSXPath string
	Upserter sink.Upserter

	Now func() time.Time
}

func (p *Pipeline) validate() error {
	if p.Fetcher == nil || p.Extractor == nil || p.Normalizer == nil {
		return eris.New("pipeline: fetcher, extractor and normalizer are required")
	}
	if p.SourceURL == "" {
		return eris.New("pipeline: source url is required")
	}
	return nil
}

func (p *Pipeline) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

// Run executes one pass. The returned report is never nil. A non-nil error
// means the run ended Aborted: the context was cancelled, or the source
// failed with fallback disabled.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	report := &Report{Source: p.Source, State: StateStart}
	if err := p.validate(); err != nil {
		report.State = StateAborted
		return report, err
	}

	log := zap.L().With(zap.String("component", "pipeline"), zap.String("source", p.Source))
	t := &tracker{log: log, report: report, started: time.Now()}
	t.enter(StateStart)

	records, sourceErr := p.collect(ctx, t)
	if err := ctx.Err(); err != nil {
		return t.abort(eris.Wrap(err, "pipeline: cancelled"))
	}
	if sourceErr != nil {
		report.FetchErr = sourceErr
		log.Warn("pipeline: source failed", zap.Error(sourceErr))
		if !p.FallbackOnFetchError {
			return t.abort(eris.Wrapf(sourceErr, "pipeline: %s source unavailable", p.Source))
		}
	}

	if len(records) == 0 {
		t.enter(StateFallback)
		if p.Fallback != nil {
			records = p.Fallback.Fallback()
		}
		report.UsedFallback = true
		log.Info("pipeline: using curated fallback records", zap.Int("records", len(records)))
	}
	report.Records = records

	t.enter(StateSink)
	if err := p.persist(ctx, report); err != nil {
		return t.abort(err)
	}

	t.enter(StateDone)
	log.Info("pipeline: run complete",
		zap.Int("records", len(report.Records)),
		zap.Int("extracted", report.Extracted),
		zap.Int("dropped", report.Dropped),
		zap.Int("skipped", report.Skipped),
		zap.Bool("used_fallback", report.UsedFallback),
		zap.Int("sink_errors", len(report.SinkErrs)),
		zap.Duration("elapsed", time.Since(t.started)),
	)
	return report, nil
}

// collect fetches, extracts and normalizes. The returned error is a
// source failure (fetch or parse); cancellation is checked by the caller.
func (p *Pipeline) collect(ctx context.Context, t *tracker) ([]model.ProjectRecord, error) {
	t.enter(StateFetch)
	resp, err := p.Fetcher.Fetch(ctx, p.SourceURL, p.Params)
	if err != nil {
		return nil, err
	}

	t.enter(StateExtract)
	rows, dropped, err := p.Extractor.ExtractCounted(resp.Body)
	if err != nil {
		return nil, err
	}
	t.report.Extracted = len(rows)
	t.report.Dropped = dropped

	t.enter(StateNormalize)
	codes := normalize.NewCodeRegistry()
	records := make([]model.ProjectRecord, 0, len(rows))
	for _, row := range rows {
		if ctx.Err() != nil {
			return records, nil
		}
		name := row.CellOr(normalize.ColName, "")
		if utf8.RuneCountInString(name) < MinNameLength {
			t.report.Skipped++
			continue
		}

		rec := p.Normalizer.Normalize(row)
		rec.ProjectCode = codes.Claim(rec.ProjectCode)
		if p.Locator != nil {
			if pt, ok := p.Locator.LocateWithFallback(ctx, rec.ProjectName, rec.State); ok {
				rec.AlignmentGeoJSON = pt
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

// persist writes every configured sink. File failures are collected in the
// report and do not block the remote sink; only cancellation is returned.
func (p *Pipeline) persist(ctx context.Context, report *Report) error {
	log := zap.L().With(zap.String("component", "pipeline"), zap.String("source", p.Source))

	file := func(path string, write func() error) {
		if path == "" {
			return
		}
		if err := write(); err != nil {
			log.Error("pipeline: sink write failed", zap.String("path", path), zap.Error(err))
			report.SinkErrs = append(report.SinkErrs, err)
			return
		}
		report.Files = append(report.Files, path)
		log.Info("pipeline: wrote file", zap.String("path", path), zap.Int("records", len(report.Records)))
	}

	file(p.CSVPath, func() error { return sink.WriteProjectsCSV(p.CSVPath, report.Records) })
	file(p.SQLPath, func() error { return sink.WriteSeedSQL(p.SQLPath, report.Records, p.now()) })
	file(p.XLSXPath, func() error { return sink.WriteXLSX(p.XLSXPath, "projects", report.Records) })

	if p.Upserter == nil {
		return nil
	}
	stats, err := sink.UpsertAll(ctx, p.Upserter, report.Records)
	report.Upsert = &stats
	return err
}
