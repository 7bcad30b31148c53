package scraper

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Hem1234567/laras-07/internal/store"
)

// Engine runs selected scrapers and records each run in the run store.
type Engine struct {
	reg         *Registry
	runs        store.RunStore
	concurrency int
}

// Outcome is the result of one scraper within an engine run.
type Outcome struct {
	Name   string
	RunID  string
	Result *Result
	Err    error
}

// NewEngine creates an engine. runs may be nil to skip run history.
// concurrency below 1 means sequential.
func NewEngine(reg *Registry, runs store.RunStore, concurrency int) *Engine {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Engine{reg: reg, runs: runs, concurrency: concurrency}
}

// Run executes the named scrapers (all when names is empty). Individual
// failures are recorded in the outcomes and do not stop the others. The
// returned error is non-nil only for an unknown name or a cancelled
// context. Outcomes keep the selection order.
func (e *Engine) Run(ctx context.Context, names []string) ([]Outcome, error) {
	log := zap.L().With(zap.String("component", "scraper.engine"))

	scrapers, err := e.reg.Select(names)
	if err != nil {
		return nil, err
	}
	if len(scrapers) == 0 {
		log.Info("no scrapers selected")
		return nil, nil
	}
	log.Info("selected scrapers", zap.Int("count", len(scrapers)), zap.Int("concurrency", e.concurrency))

	outcomes := make([]Outcome, len(scrapers))
	var succeeded, failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for i, s := range scrapers {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				outcomes[i] = Outcome{Name: s.Name(), Err: err}
				return err
			}
			outcomes[i] = e.runOne(gctx, s, log)
			if outcomes[i].Err != nil {
				failed.Add(1)
			} else {
				succeeded.Add(1)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return outcomes, err
	}
	if err := ctx.Err(); err != nil {
		return outcomes, err
	}

	log.Info("engine run complete",
		zap.Int64("succeeded", succeeded.Load()),
		zap.Int64("failed", failed.Load()),
	)
	return outcomes, nil
}

func (e *Engine) runOne(ctx context.Context, s Scraper, log *zap.Logger) Outcome {
	out := Outcome{Name: s.Name()}
	sLog := log.With(zap.String("scraper", s.Name()))

	if e.runs != nil {
		id, err := e.runs.StartRun(ctx, s.Name())
		if err != nil {
			sLog.Warn("failed to record run start", zap.Error(err))
		}
		out.RunID = id
	}

	sLog.Info("starting scrape")
	start := time.Now()
	result, err := s.Scrape(ctx)
	elapsed := time.Since(start)

	if err != nil {
		sLog.Error("scrape failed", zap.Error(err), zap.Duration("elapsed", elapsed))
		out.Err = err
		if e.runs != nil && out.RunID != "" {
			if logErr := e.runs.FailRun(context.WithoutCancel(ctx), out.RunID, err); logErr != nil {
				sLog.Error("failed to record run failure", zap.Error(logErr))
			}
		}
		return out
	}

	if result == nil {
		result = &Result{}
	}
	out.Result = result
	if e.runs != nil && out.RunID != "" {
		if logErr := e.runs.CompleteRun(ctx, out.RunID, result.Rows, result.UsedFallback); logErr != nil {
			sLog.Error("failed to record run completion", zap.Error(logErr))
		}
	}
	sLog.Info("scrape complete",
		zap.Int64("rows", result.Rows),
		zap.Bool("used_fallback", result.UsedFallback),
		zap.Duration("elapsed", elapsed),
	)
	return out
}

// TotalRows sums rows over successful outcomes.
func TotalRows(outcomes []Outcome) int64 {
	var n int64
	for _, o := range outcomes {
		if o.Result != nil {
			n += o.Result.Rows
		}
	}
	return n
}

// Failed returns the outcomes that ended in error.
func Failed(outcomes []Outcome) []Outcome {
	var out []Outcome
	for _, o := range outcomes {
		if o.Err != nil {
			out = append(out, o)
		}
	}
	return out
}
