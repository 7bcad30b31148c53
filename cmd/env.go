package main

import (
	"context"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/Hem1234567/laras-07/internal/config"
	"github.com/Hem1234567/laras-07/internal/extract"
	"github.com/Hem1234567/laras-07/internal/fallback"
	"github.com/Hem1234567/laras-07/internal/fetcher"
	"github.com/Hem1234567/laras-07/internal/normalize"
	"github.com/Hem1234567/laras-07/internal/pipeline"
	"github.com/Hem1234567/laras-07/internal/resilience"
	"github.com/Hem1234567/laras-07/internal/scraper"
	"github.com/Hem1234567/laras-07/internal/sink"
	"github.com/Hem1234567/laras-07/internal/store"
	"github.com/Hem1234567/laras-07/pkg/geocode"
)

// Output file names, relative to the output directory.
const (
	projectsCSVName = "nhai_projects.csv"
	projectsSQLName = "nhai_scraped_seed.sql"
	projectsXLSName = "nhai_projects.xlsx"
	gazetteCSVName  = "gazette_notifications.csv"
	courtsCSVName   = "court_judgments.csv"
	newsCSVName     = "news_infrastructure.csv"
	pdfDirName      = "pdfs"
)

// scrapeEnv holds everything the scrape and serve commands need.
type scrapeEnv struct {
	Registry *scraper.Registry
	Engine   *scraper.Engine
	Runs     store.RunStore
	Upserter sink.Upserter // nil when the remote sink is disabled
}

// Close releases the run store and the remote sink.
func (e *scrapeEnv) Close() {
	if e.Upserter != nil {
		_ = e.Upserter.Close()
	}
	if e.Runs != nil {
		_ = e.Runs.Close()
	}
}

// envOptions overrides config for a single invocation.
type envOptions struct {
	OutDir   string
	NoRemote bool
}

// initEnv opens the run store and remote sink and registers every scraper.
// Callers should defer env.Close().
func initEnv(ctx context.Context, opts envOptions) (*scrapeEnv, error) {
	outDir := opts.OutDir
	if outDir == "" {
		outDir = cfg.Output.Dir
	}

	runs, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	var up sink.Upserter
	if !opts.NoRemote {
		up, err = sink.NewUpserter(ctx, cfg.Remote)
		if err != nil {
			_ = runs.Close()
			return nil, eris.Wrap(err, "init remote sink")
		}
		up = sink.WithRetry(up, remoteBackoff(cfg.Remote))
	}

	supplier, err := fallback.Open(cfg.Fallback.File)
	if err != nil {
		if up != nil {
			_ = up.Close()
		}
		_ = runs.Close()
		return nil, err
	}

	f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent:    cfg.Source.UserAgent,
		Timeout:      cfg.Source.Timeout(),
		RateLimiters: fetcher.DefaultRateLimiters(),
	})

	reg := buildRegistry(cfg, registryDeps{
		Fetcher:  f,
		Locator:  newGeocoder(cfg.Geocode),
		Fallback: supplier,
		Upserter: up,
		OutDir:   outDir,
	})

	zap.L().Info("scrape environment ready",
		zap.Strings("scrapers", reg.AllNames()),
		zap.String("out_dir", outDir),
		zap.Bool("remote", up != nil),
	)

	return &scrapeEnv{
		Registry: reg,
		Engine:   scraper.NewEngine(reg, runs, cfg.Scrape.Concurrency),
		Runs:     runs,
		Upserter: up,
	}, nil
}

// initStore opens and migrates the run-history database.
func initStore(ctx context.Context) (*store.SQLiteStore, error) {
	st, err := store.NewSQLite(cfg.Store.Path)
	if err != nil {
		return nil, eris.Wrap(err, "open run store")
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate run store")
	}
	return st, nil
}

// remoteBackoff maps the remote retry settings onto a backoff policy.
func remoteBackoff(r config.RemoteConfig) resilience.Backoff {
	b := resilience.DefaultBackoff()
	b.Attempts = r.RetryAttempts
	if r.RetryBackoffMS > 0 {
		b.Initial = time.Duration(r.RetryBackoffMS) * time.Millisecond
	}
	return b
}

// registryDeps are the shared collaborators handed to each scraper.
type registryDeps struct {
	Fetcher  fetcher.Fetcher
	Locator  pipeline.Geocoder
	Fallback fallback.Supplier
	Upserter sink.Upserter
	OutDir   string
}

// buildRegistry registers the nhai, gazette, courts and news scrapers.
func buildRegistry(c *config.Config, d registryDeps) *scraper.Registry {
	out := func(name string) string { return filepath.Join(d.OutDir, name) }

	p := &pipeline.Pipeline{
		Source:               "nhai",
		SourceURL:            c.Source.NHAIURL,
		Fetcher:              d.Fetcher,
		Extractor:            extract.NewTableExtractor(c.Source.TableSelector),
		Normalizer:           normalize.NHAI(),
		Locator:              d.Locator,
		Fallback:             d.Fallback,
		FallbackOnFetchError: c.Source.FallbackOnFetchError,
		CSVPath:              out(projectsCSVName),
		Upserter:             d.Upserter,
	}
	if c.Output.WriteSQL {
		p.SQLPath = out(projectsSQLName)
	}
	if c.Output.WriteXLSX {
		p.XLSXPath = out(projectsXLSName)
	}

	reg := scraper.NewRegistry()
	reg.Register(&scraper.NHAI{Pipeline: p})
	reg.Register(&scraper.Gazette{
		Fetcher:      d.Fetcher,
		URL:          c.Source.GazetteURL,
		OutputPath:   out(gazetteCSVName),
		PDFDir:       out(pdfDirName),
		DownloadPDFs: c.Source.DownloadPDFs,
	})
	reg.Register(&scraper.Courts{
		Fetcher:    d.Fetcher,
		URL:        c.Source.CourtsURL,
		Query:      c.Source.CourtsQuery,
		OutputPath: out(courtsCSVName),
	})

	var sources []scraper.NewsSource
	if c.Source.NewsURL != "" {
		sources = append(sources, scraper.PIBSource(c.Source.NewsURL))
	}
	if c.Source.NewsTOIURL != "" {
		sources = append(sources, scraper.TOISource(c.Source.NewsTOIURL))
	}
	reg.Register(&scraper.News{
		Fetcher:    d.Fetcher,
		Sources:    sources,
		Keywords:   scraper.DefaultKeywords,
		OutputPath: out(newsCSVName),
	})
	return reg
}

// newGeocoder builds the project locator, or nil when geocoding is off.
// The configured provider is tried first and the other one second; Google
// drops out of the cascade when no key is set.
func newGeocoder(g config.GeocodeConfig) pipeline.Geocoder {
	if g.Disabled {
		return nil
	}

	opts := []geocode.Option{geocode.WithUserAgent(g.UserAgent)}
	nominatim := geocode.NewNominatim(append(opts, geocode.WithBaseURL(g.NominatimURL))...)
	google := geocode.NewGoogle(g.GoogleAPIKey, opts...)

	var client *geocode.CascadeClient
	if g.Provider == "google" {
		client = geocode.NewCascade(google, nominatim)
	} else {
		client = geocode.NewCascade(nominatim, google)
	}
	zap.L().Debug("geocoder providers", zap.Strings("providers", client.Providers()))

	return geocode.NewLocator(client, geocode.LocatorOptions{
		Country: g.Country,
		Timeout: g.Timeout(),
		Delay:   g.Delay(),
	})
}
