package geocode

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Hem1234567/laras-07/internal/model"
)

// Locator turns place names into GeoJSON points. Every lookup is
// country-qualified, bounded by a timeout and spaced by a fixed delay.
// Failures never propagate: an unresolved name yields (nil, false).
// Results are not cached, so each call issues a fresh lookup.
type Locator struct {
	client  Client
	country string
	timeout time.Duration
	limiter *rate.Limiter
}

// LocatorOptions configures a Locator.
type LocatorOptions struct {
	// Country is appended to every query as ", <Country>". Empty disables
	// qualification.
	Country string
	// Timeout bounds each lookup. Defaults to 10s.
	Timeout time.Duration
	// Delay is the minimum spacing between lookups. Zero disables pacing.
	Delay time.Duration
}

// NewLocator wraps client.
func NewLocator(client Client, opts LocatorOptions) *Locator {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	limit := rate.Inf
	if opts.Delay > 0 {
		limit = rate.Every(opts.Delay)
	}
	return &Locator{
		client:  client,
		country: opts.Country,
		timeout: opts.Timeout,
		limiter: rate.NewLimiter(limit, 1),
	}
}

// Qualify appends the configured country unless the query already ends
// with it.
func (l *Locator) Qualify(name string) string {
	name = strings.TrimSpace(name)
	if l.country == "" {
		return name
	}
	if strings.HasSuffix(strings.ToLower(name), strings.ToLower(", "+l.country)) {
		return name
	}
	return name + ", " + l.country
}

// Locate resolves name to a point.
func (l *Locator) Locate(ctx context.Context, name string) (*model.Point, bool) {
	if l == nil || l.client == nil || strings.TrimSpace(name) == "" {
		return nil, false
	}
	query := l.Qualify(name)
	log := zap.L().With(zap.String("component", "geocode"), zap.String("query", query))

	if err := l.limiter.Wait(ctx); err != nil {
		log.Debug("geocode: pacing wait aborted", zap.Error(err))
		return nil, false
	}

	cctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	res, err := l.client.Geocode(cctx, query)
	if err != nil {
		log.Warn("geocode: lookup failed", zap.Error(err))
		return nil, false
	}
	if res == nil || !res.Matched {
		log.Debug("geocode: no match")
		return nil, false
	}

	p := model.NewPoint(res.Longitude, res.Latitude)
	if p == nil {
		log.Debug("geocode: provider returned 0,0")
		return nil, false
	}
	return p, true
}

// LocateWithFallback tries name, then broader (typically the state) once
// if name did not resolve.
func (l *Locator) LocateWithFallback(ctx context.Context, name, broader string) (*model.Point, bool) {
	if p, ok := l.Locate(ctx, name); ok {
		return p, true
	}
	if strings.TrimSpace(broader) == "" || ctx.Err() != nil {
		return nil, false
	}
	return l.Locate(ctx, broader)
}
