// Package geocode resolves free-text place names to coordinates via
// OpenStreetMap Nominatim (primary) and Google (optional).
package geocode

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// Client geocodes a free-text place query.
type Client interface {
	// Geocode returns the best match for query. A query with no match is
	// not an error: the result has Matched=false.
	Geocode(ctx context.Context, query string) (*Result, error)
}

// Result holds the geocoding output for one query.
type Result struct {
	Latitude    float64
	Longitude   float64
	Source      string // "nominatim" or "google"
	DisplayName string
	Matched     bool
}

// Option configures a provider.
type Option func(*options)

type options struct {
	httpClient *http.Client
	userAgent  string
	baseURL    string
	limiter    *rate.Limiter
}

func defaultOptions() options {
	return options{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		userAgent:  "laras_scraper_v1",
		limiter:    rate.NewLimiter(rate.Inf, 1),
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) {
		o.httpClient = hc
	}
}

// WithUserAgent sets the User-Agent header. Nominatim's usage policy
// requires an application-identifying value.
func WithUserAgent(ua string) Option {
	return func(o *options) {
		if ua != "" {
			o.userAgent = ua
		}
	}
}

// WithBaseURL overrides the service endpoint (self-hosted Nominatim, tests).
func WithBaseURL(u string) Option {
	return func(o *options) {
		if u != "" {
			o.baseURL = u
		}
	}
}

// WithRateLimit caps requests per second at the provider level.
func WithRateLimit(rps float64) Option {
	return func(o *options) {
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		o.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// getJSON waits on the provider limiter, issues a GET and decodes a 200
// answer into out. Any other status is an error naming the provider.
func (o options) getJSON(ctx context.Context, provider, reqURL string, out any) error {
	if err := o.limiter.Wait(ctx); err != nil {
		return eris.Wrapf(err, "geocode: %s rate limit", provider)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return eris.Wrapf(err, "geocode: %s build request", provider)
	}
	req.Header.Set("User-Agent", o.userAgent)
	req.Header.Set("Accept-Language", "en")

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return eris.Wrapf(err, "geocode: %s request", provider)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return eris.Errorf("geocode: %s returned status %d", provider, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return eris.Wrapf(err, "geocode: %s parse response", provider)
	}
	return nil
}
