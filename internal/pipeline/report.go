package pipeline

import (
	"time"

	"go.uber.org/zap"

	"github.com/Hem1234567/laras-07/internal/model"
	"github.com/Hem1234567/laras-07/internal/sink"
)

// State is a step of the run state machine:
// Start → Fetch → Extract → Normalize → (Fallback) → Sink → Done | Aborted.
type State int

const (
	StateStart State = iota
	StateFetch
	StateExtract
	StateNormalize
	StateFallback
	StateSink
	StateDone
	StateAborted
)

var stateNames = [...]string{"start", "fetch", "extract", "normalize", "fallback", "sink", "done", "aborted"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Report describes what one run did.
type Report struct {
	State        State
	Source       string
	Records      []model.ProjectRecord
	Extracted    int // rows returned by the extractor
	Dropped      int // rows with too few cells
	Skipped      int // rows whose name was too short
	UsedFallback bool
	FetchErr     error
	Upsert       *sink.UpsertStats
	Files        []string
	SinkErrs     []error
}

// tracker logs state transitions with the time spent in the previous state.
type tracker struct {
	log     *zap.Logger
	report  *Report
	started time.Time
	entered time.Time
}

func (t *tracker) enter(s State) {
	now := time.Now()
	if !t.entered.IsZero() {
		t.log.Debug("pipeline: state complete",
			zap.Stringer("state", t.report.State),
			zap.Int64("duration_ms", now.Sub(t.entered).Milliseconds()),
		)
	}
	t.report.State = s
	t.entered = now
	t.log.Info("pipeline: state", zap.Stringer("state", s))
}

func (t *tracker) abort(err error) (*Report, error) {
	from := t.report.State
	t.report.State = StateAborted
	t.log.Error("pipeline: run aborted", zap.Stringer("from", from), zap.Error(err))
	return t.report, err
}
