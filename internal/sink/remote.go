package sink

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/Hem1234567/laras-07/internal/config"
	"github.com/Hem1234567/laras-07/internal/model"
)

// ConflictKey is the column remote upserts merge on.
const ConflictKey = "project_code"

// Upserter writes project records to a remote table, merging on
// project_code. Implementations are chosen at construction time.
type Upserter interface {
	// Name identifies the backend in logs ("rest", "postgres", "sqlite").
	Name() string
	// Upsert inserts rec or overwrites the non-key fields of the existing
	// row with the same project_code.
	Upsert(ctx context.Context, rec model.ProjectRecord) error
	// Count returns the number of rows in the table.
	Count(ctx context.Context) (int64, error)
	Close() error
}

// Failure records one record that could not be upserted.
type Failure struct {
	ProjectCode string
	Err         error
}

// UpsertStats summarizes a batch.
type UpsertStats struct {
	Attempted int
	Succeeded int
	Failed    int
	Failures  []Failure
}

// UpsertAll upserts records one at a time in input order. A failure on one
// record is logged and counted and the batch continues. Only context
// cancellation stops the batch early; its error is returned.
func UpsertAll(ctx context.Context, u Upserter, records []model.ProjectRecord) (UpsertStats, error) {
	var stats UpsertStats
	log := zap.L().With(zap.String("component", "sink"), zap.String("remote", u.Name()))

	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return stats, eris.Wrap(err, "sink: upsert cancelled")
		}
		stats.Attempted++

		err := rec.Validate()
		if err == nil {
			err = u.Upsert(ctx, rec)
		}
		if err != nil {
			stats.Failed++
			stats.Failures = append(stats.Failures, Failure{ProjectCode: rec.ProjectCode, Err: err})
			log.Warn("sink: upsert failed",
				zap.String("project_code", rec.ProjectCode),
				zap.Error(err),
			)
			continue
		}
		stats.Succeeded++
		log.Debug("sink: upserted", zap.String("project_code", rec.ProjectCode))
	}

	log.Info("sink: upsert batch complete",
		zap.Int("attempted", stats.Attempted),
		zap.Int("succeeded", stats.Succeeded),
		zap.Int("failed", stats.Failed),
	)
	return stats, nil
}

// NewUpserter builds the remote sink selected by cfg.Driver. It returns
// (nil, nil) when the driver's credentials are absent: the remote sink is
// then skipped while local files are still written.
func NewUpserter(ctx context.Context, cfg config.RemoteConfig) (Upserter, error) {
	if !cfg.Enabled() {
		zap.L().Info("sink: remote credentials not configured, remote sink disabled",
			zap.String("driver", cfg.Driver),
		)
		return nil, nil
	}

	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	switch cfg.Driver {
	case config.DriverREST:
		return NewREST(RESTOptions{
			BaseURL: cfg.URL,
			Key:     cfg.Key,
			Table:   cfg.Table,
			Timeout: timeout,
		}), nil
	case config.DriverPostgres:
		return ConnectPostgres(ctx, cfg.DatabaseURL, cfg.Table)
	case config.DriverSQLite:
		return OpenSQLite(ctx, cfg.SQLitePath, cfg.Table)
	default:
		return nil, eris.Errorf("sink: unknown remote driver %q", cfg.Driver)
	}
}
