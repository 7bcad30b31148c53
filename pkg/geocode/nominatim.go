package geocode

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

const nominatimBaseURL = "https://nominatim.openstreetmap.org"

type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Nominatim geocodes against the OpenStreetMap search API.
type Nominatim struct {
	opts options
}

// NewNominatim creates a Nominatim provider.
func NewNominatim(opts ...Option) *Nominatim {
	o := defaultOptions()
	o.baseURL = nominatimBaseURL
	for _, opt := range opts {
		opt(&o)
	}
	return &Nominatim{opts: o}
}

// Name implements Provider.
func (n *Nominatim) Name() string { return "nominatim" }

// Available implements Provider.
func (n *Nominatim) Available() bool { return true }

// Geocode implements Client.
func (n *Nominatim) Geocode(ctx context.Context, query string) (*Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return &Result{Matched: false, Source: "nominatim"}, nil
	}

	params := url.Values{
		"q":      {query},
		"format": {"json"},
		"limit":  {"1"},
	}
	var places []nominatimPlace
	reqURL := strings.TrimRight(n.opts.baseURL, "/") + "/search?" + params.Encode()
	if err := n.opts.getJSON(ctx, n.Name(), reqURL, &places); err != nil {
		return nil, err
	}
	if len(places) == 0 {
		return &Result{Matched: false, Source: "nominatim"}, nil
	}

	lat, err := strconv.ParseFloat(places[0].Lat, 64)
	if err != nil {
		return nil, eris.Wrapf(err, "geocode: nominatim lat %q", places[0].Lat)
	}
	lon, err := strconv.ParseFloat(places[0].Lon, 64)
	if err != nil {
		return nil, eris.Wrapf(err, "geocode: nominatim lon %q", places[0].Lon)
	}

	return &Result{
		Latitude:    lat,
		Longitude:   lon,
		Source:      "nominatim",
		DisplayName: places[0].DisplayName,
		Matched:     true,
	}, nil
}
