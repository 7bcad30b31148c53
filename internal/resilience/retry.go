package resilience

import (
	"context"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"
)

// Backoff controls how often a transient failure is attempted again.
type Backoff struct {
	// Attempts is the total number of calls, including the first. Values
	// below 1 are treated as 1 (no retries).
	Attempts int
	// Initial is the delay before the second attempt; it doubles after each
	// retry up to Max.
	Initial time.Duration
	Max     time.Duration
}

// DefaultBackoff returns three attempts starting at 500ms.
func DefaultBackoff() Backoff {
	return Backoff{Attempts: 3, Initial: 500 * time.Millisecond, Max: 10 * time.Second}
}

// Retry calls fn until it succeeds, returns a non-transient error, the
// attempts run out, or ctx is done. The last error is returned. op names
// the operation in retry logs.
func Retry(ctx context.Context, b Backoff, op string, fn func(ctx context.Context) error) error {
	if b.Attempts < 1 {
		b.Attempts = 1
	}

	var err error
	for attempt := 1; ; attempt++ {
		err = fn(ctx)
		if err == nil || attempt >= b.Attempts || ctx.Err() != nil || !IsTransient(err) {
			return err
		}

		delay := b.delay(attempt)
		zap.L().Warn("retrying operation",
			zap.String("operation", op),
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err),
		)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}
	}
}

// delay returns the wait after the given attempt (1-based), with up to 25%
// jitter either way.
func (b Backoff) delay(attempt int) time.Duration {
	d := b.Initial << (attempt - 1)
	if d <= 0 || (b.Max > 0 && d > b.Max) {
		d = b.Max
	}
	if d <= 0 {
		return 0
	}
	jitter := time.Duration((rand.Float64()*0.5 - 0.25) * float64(d))
	return d + jitter
}
