package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/Hem1234567/laras-07/internal/resilience"
)

// Fetcher defines the interface for retrieving documents from source sites.
type Fetcher interface {
	// Fetch performs a GET with the given query parameters and returns the
	// full body. Non-2xx responses are returned as *HTTPError, transport
	// failures as *NetworkError.
	Fetch(ctx context.Context, rawURL string, params url.Values) (*Response, error)

	// DownloadToFile fetches the URL and writes it to the given path. Returns bytes written.
	DownloadToFile(ctx context.Context, rawURL string, path string) (int64, error)
}

// Response is a fully read HTTP response. Body is UTF-8.
type Response struct {
	URL         string
	StatusCode  int
	ContentType string
	Body        []byte
}

// NetworkError reports a connection, DNS or timeout failure.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("fetch %s: network error: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// HTTPError reports a non-success status from the source.
type HTTPError struct {
	URL        string
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
}

// Transient reports whether the status may clear on a later run.
func (e *HTTPError) Transient() bool {
	return resilience.IsTransientHTTPStatus(e.StatusCode)
}

// IsNetworkError reports whether err wraps a *NetworkError.
func IsNetworkError(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// IsHTTPError reports whether err wraps an *HTTPError.
func IsHTTPError(err error) bool {
	var he *HTTPError
	return errors.As(err, &he)
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.StatusCode
	}
	return 0
}
