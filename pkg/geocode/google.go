package geocode

import (
	"context"
	"net/url"
	"strings"

	"github.com/rotisserie/eris"
)

const googleGeocodeURL = "https://maps.googleapis.com/maps/api/geocode/json"

// Google answers with a status string; only OK carries results.
type googleAnswer struct {
	Status  string `json:"status"`
	Results []struct {
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// Google geocodes with the Google Geocoding API, biased to Indian results.
// It is unavailable without a key.
type Google struct {
	key  string
	opts options
}

// NewGoogle creates a Google provider.
func NewGoogle(key string, opts ...Option) *Google {
	o := defaultOptions()
	o.baseURL = googleGeocodeURL
	for _, opt := range opts {
		opt(&o)
	}
	return &Google{key: key, opts: o}
}

// Name implements Provider.
func (g *Google) Name() string { return "google" }

// Available implements Provider.
func (g *Google) Available() bool { return g.key != "" }

// Geocode implements Client. ZERO_RESULTS is a miss; any other non-OK
// status (REQUEST_DENIED, OVER_QUERY_LIMIT, ...) is an error.
func (g *Google) Geocode(ctx context.Context, query string) (*Result, error) {
	if !g.Available() {
		return nil, eris.New("geocode: google api key not configured")
	}
	miss := &Result{Source: g.Name()}
	if query = strings.TrimSpace(query); query == "" {
		return miss, nil
	}

	q := url.Values{"address": {query}, "region": {"in"}, "key": {g.key}}
	var ans googleAnswer
	if err := g.opts.getJSON(ctx, g.Name(), g.opts.baseURL+"?"+q.Encode(), &ans); err != nil {
		return nil, err
	}

	switch {
	case ans.Status == "ZERO_RESULTS", ans.Status == "OK" && len(ans.Results) == 0:
		return miss, nil
	case ans.Status != "OK":
		return nil, eris.Errorf("geocode: google status %s", ans.Status)
	}

	best := ans.Results[0]
	return &Result{
		Latitude:    best.Geometry.Location.Lat,
		Longitude:   best.Geometry.Location.Lng,
		Source:      g.Name(),
		DisplayName: best.FormattedAddress,
		Matched:     true,
	}, nil
}
