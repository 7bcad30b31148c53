package sink

import (
	"context"

	"github.com/Hem1234567/laras-07/internal/model"
	"github.com/Hem1234567/laras-07/internal/resilience"
)

// RetryingUpserter retries transient Upsert and Count failures of the
// wrapped sink. Upserts merge on project_code, so repeating one is safe.
type RetryingUpserter struct {
	Upserter
	backoff resilience.Backoff
}

// WithRetry wraps u. A nil u stays nil.
func WithRetry(u Upserter, b resilience.Backoff) Upserter {
	if u == nil {
		return nil
	}
	return &RetryingUpserter{Upserter: u, backoff: b}
}

// Unwrap returns the wrapped sink.
func (r *RetryingUpserter) Unwrap() Upserter { return r.Upserter }

// Upsert implements Upserter.
func (r *RetryingUpserter) Upsert(ctx context.Context, rec model.ProjectRecord) error {
	return resilience.Retry(ctx, r.backoff, r.Name()+" upsert "+rec.ProjectCode, func(ctx context.Context) error {
		return r.Upserter.Upsert(ctx, rec)
	})
}

// Count implements Upserter.
func (r *RetryingUpserter) Count(ctx context.Context) (int64, error) {
	var n int64
	err := resilience.Retry(ctx, r.backoff, r.Name()+" count", func(ctx context.Context) error {
		var err error
		n, err = r.Upserter.Count(ctx)
		return err
	})
	return n, err
}
