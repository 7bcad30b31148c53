package fetcher

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// maxBodyBytes is the default cap on a response buffered by Fetch.
const maxBodyBytes = 32 << 20

// HTTPOptions configures the HTTP fetcher.
type HTTPOptions struct {
	UserAgent    string
	Timeout      time.Duration
	RateLimiters map[string]*rate.Limiter
	// MaxBodyBytes caps a Fetch response; larger bodies are an error.
	// Zero means 32 MiB. DownloadToFile is not capped.
	MaxBodyBytes int64
}

// HTTPFetcher implements Fetcher using one shared net/http client. It never
// retries: a failed request is reported to the caller, which decides whether
// to fall back.
type HTTPFetcher struct {
	client   *http.Client
	opts     HTTPOptions
	limiters map[string]*rate.Limiter
}

// DefaultUserAgent is sent when HTTPOptions.UserAgent is empty.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// DefaultRateLimiters returns the default per-host pacing for government
// portals known to throttle aggressive clients.
func DefaultRateLimiters() map[string]*rate.Limiter {
	return map[string]*rate.Limiter{
		"nhai.gov.in":      rate.NewLimiter(1, 1),
		"egazette.gov.in":  rate.NewLimiter(1, 1),
		"indiankanoon.org": rate.NewLimiter(rate.Every(2*time.Second), 1),
		"pib.gov.in":       rate.NewLimiter(1, 1),
	}
}

// NewHTTPFetcher creates a new HTTPFetcher with the given options.
func NewHTTPFetcher(opts HTTPOptions) *HTTPFetcher {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = maxBodyBytes
	}
	limiters := make(map[string]*rate.Limiter)
	for k, v := range opts.RateLimiters {
		limiters[k] = v
	}
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     90 * time.Second,
	}
	return &HTTPFetcher{
		client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
		opts:     opts,
		limiters: limiters,
	}
}

func (f *HTTPFetcher) limiterFor(rawURL string) *rate.Limiter {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil
	}
	return f.limiters[u.Hostname()]
}

func (f *HTTPFetcher) get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "fetch: create request")
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	if lim := f.limiterFor(rawURL); lim != nil {
		if err := lim.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "fetch: rate limiter wait")
		}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		zap.L().Warn("fetch: request failed",
			zap.String("url", rawURL),
			zap.Error(err),
		)
		return nil, &NetworkError{URL: rawURL, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_ = resp.Body.Close()
		zap.L().Warn("fetch: unexpected status",
			zap.String("url", rawURL),
			zap.Int("status", resp.StatusCode),
		)
		return nil, &HTTPError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	return resp, nil
}

// Fetch retrieves rawURL with params merged into its query string.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string, params url.Values) (*Response, error) {
	target, err := withParams(rawURL, params)
	if err != nil {
		return nil, err
	}

	resp, err := f.get(ctx, target)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck

	limit := f.opts.MaxBodyBytes
	raw, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, &NetworkError{URL: target, Err: err}
	}
	if int64(len(raw)) > limit {
		return nil, eris.Errorf("fetch: response from %s exceeds %d bytes", target, limit)
	}

	ct := resp.Header.Get("Content-Type")
	body, err := decodeBody(raw, ct)
	if err != nil {
		zap.L().Debug("fetch: charset decode failed, using raw bytes",
			zap.String("url", target),
			zap.String("content_type", ct),
			zap.Error(err),
		)
		body = raw
	}

	return &Response{
		URL:         target,
		StatusCode:  resp.StatusCode,
		ContentType: ct,
		Body:        body,
	}, nil
}

// DownloadToFile fetches the URL and writes it to the given path. Parent
// directories are created as needed. On a failed transfer the partial
// file is removed.
func (f *HTTPFetcher) DownloadToFile(ctx context.Context, rawURL string, path string) (int64, error) {
	resp, err := f.get(ctx, rawURL)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close() //nolint:errcheck

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, eris.Wrap(err, "fetch: create directory")
	}
	file, err := os.Create(path)
	if err != nil {
		return 0, eris.Wrap(err, "fetch: create file")
	}

	n, err := io.Copy(file, resp.Body)
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return n, eris.Wrap(err, "fetch: write file")
	}

	return n, nil
}

func withParams(rawURL string, params url.Values) (string, error) {
	if len(params) == 0 {
		return rawURL, nil
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", eris.Wrapf(err, "fetch: parse url %q", rawURL)
	}
	q := u.Query()
	for k, vs := range params {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
