// Package resilience classifies failures from upstream sources so run
// history can tell a flaky portal from a broken scraper.
package resilience

import (
	"errors"
	"net"
	"strings"
	"syscall"
)

// Error classes recorded with failed runs.
const (
	ClassTransient = "transient"
	ClassPermanent = "permanent"
)

// transienter is implemented by errors that know whether they are worth
// trying again later (e.g. fetcher.HTTPError).
type transienter interface {
	Transient() bool
}

// IsTransient reports whether err (or any error in its chain) is a
// temporary condition: a self-declared transient error, a network timeout,
// a reset or refused connection, or a DNS failure.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var t transienter
	if errors.As(err, &t) {
		return t.Transient()
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) {
		return true
	}

	// Wrapped client errors often only survive as text.
	msg := strings.ToLower(err.Error())
	for _, p := range []string{
		"connection reset by peer",
		"broken pipe",
		"temporary failure in name resolution",
		"no such host",
		"tls handshake timeout",
		"i/o timeout",
		"context deadline exceeded",
	} {
		if strings.Contains(msg, p) {
			return true
		}
	}

	return false
}

// IsTransientHTTPStatus reports whether the status signals a server-side
// condition that may clear on its own.
func IsTransientHTTPStatus(statusCode int) bool {
	switch statusCode {
	case 408, 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

// ClassifyError returns ClassTransient or ClassPermanent.
func ClassifyError(err error) string {
	if IsTransient(err) {
		return ClassTransient
	}
	return ClassPermanent
}
