package geocode

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Provider represents a single geocoding backend.
type Provider interface {
	Name() string
	Geocode(ctx context.Context, query string) (*Result, error)
	Available() bool
}

var (
	_ Provider = (*Nominatim)(nil)
	_ Provider = (*Google)(nil)
)

// CascadeClient tries geocode providers in order until one matches.
type CascadeClient struct {
	providers []Provider
}

// NewCascade builds a Client over the available providers, in order.
func NewCascade(providers ...Provider) *CascadeClient {
	var ps []Provider
	for _, p := range providers {
		if p != nil && p.Available() {
			ps = append(ps, p)
		}
	}
	return &CascadeClient{providers: ps}
}

// Providers returns the names of the providers that will be tried.
func (c *CascadeClient) Providers() []string {
	names := make([]string, len(c.providers))
	for i, p := range c.providers {
		names[i] = p.Name()
	}
	return names
}

// Geocode implements Client. A provider error moves on to the next
// provider; the error is returned only when no provider produced an
// answer at all.
func (c *CascadeClient) Geocode(ctx context.Context, query string) (*Result, error) {
	if len(c.providers) == 0 {
		return nil, eris.New("geocode: no providers available")
	}

	var lastErr error
	answered := false
	for _, p := range c.providers {
		res, err := p.Geocode(ctx, query)
		if err != nil {
			zap.L().Debug("geocode: provider failed",
				zap.String("provider", p.Name()),
				zap.String("query", query),
				zap.Error(err),
			)
			lastErr = err
			if ctx.Err() != nil {
				break
			}
			continue
		}
		answered = true
		if res.Matched {
			return res, nil
		}
	}

	if !answered && lastErr != nil {
		return nil, lastErr
	}
	return &Result{Matched: false}, nil
}
