package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedClient answers queries from a map and records what it was asked.
type scriptedClient struct {
	mu      sync.Mutex
	answers map[string]*Result
	errs    map[string]error
	queries []string
}

func (s *scriptedClient) Geocode(_ context.Context, q string) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = append(s.queries, q)
	if err := s.errs[q]; err != nil {
		return nil, err
	}
	if r, ok := s.answers[q]; ok {
		return r, nil
	}
	return &Result{Matched: false}, nil
}

func TestLocate_AppendsCountry(t *testing.T) {
	c := &scriptedClient{answers: map[string]*Result{
		"Chenab Bridge, India": {Matched: true, Latitude: 33.1525, Longitude: 74.8805},
	}}
	l := NewLocator(c, LocatorOptions{Country: "India"})

	p, ok := l.Locate(context.Background(), "Chenab Bridge")
	require.True(t, ok)
	assert.InDelta(t, 74.8805, p.Lon, 1e-9)
	assert.InDelta(t, 33.1525, p.Lat, 1e-9)
	assert.Equal(t, []string{"Chenab Bridge, India"}, c.queries)
}

func TestQualify(t *testing.T) {
	l := NewLocator(&scriptedClient{}, LocatorOptions{Country: "India"})
	assert.Equal(t, "Pune, India", l.Qualify(" Pune "))
	assert.Equal(t, "Pune, india", l.Qualify("Pune, india"))

	bare := NewLocator(&scriptedClient{}, LocatorOptions{})
	assert.Equal(t, "Pune", bare.Qualify("Pune"))
}

func TestLocate_ErrorYieldsNil(t *testing.T) {
	c := &scriptedClient{errs: map[string]error{"X, India": errors.New("service down")}}
	l := NewLocator(c, LocatorOptions{Country: "India"})

	p, ok := l.Locate(context.Background(), "X")
	assert.False(t, ok)
	assert.Nil(t, p)
}

func TestLocate_ZeroZeroIsUnresolved(t *testing.T) {
	c := &scriptedClient{answers: map[string]*Result{"Null Island, India": {Matched: true}}}
	l := NewLocator(c, LocatorOptions{Country: "India"})

	p, ok := l.Locate(context.Background(), "Null Island")
	assert.False(t, ok)
	assert.Nil(t, p)
}

func TestLocate_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
		_, _ = io.WriteString(w, `[{"lat":"1","lon":"2"}]`)
	}))
	defer srv.Close()

	l := NewLocator(NewNominatim(WithBaseURL(srv.URL)), LocatorOptions{Country: "India", Timeout: 50 * time.Millisecond})

	start := time.Now()
	p, ok := l.Locate(context.Background(), "Slow Place")
	assert.False(t, ok)
	assert.Nil(t, p)
	assert.Less(t, time.Since(start), 900*time.Millisecond)
}

func TestLocate_NoCaching(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_ = json.NewEncoder(w).Encode([]map[string]string{{"lat": "12.97", "lon": "77.59"}})
	}))
	defer srv.Close()

	l := NewLocator(NewNominatim(WithBaseURL(srv.URL)), LocatorOptions{Country: "India"})

	_, ok := l.Locate(context.Background(), "Bangalore")
	require.True(t, ok)
	_, ok = l.Locate(context.Background(), "Bangalore")
	require.True(t, ok)

	assert.Equal(t, int32(2), hits.Load())
}

func TestLocate_Pacing(t *testing.T) {
	c := &scriptedClient{}
	l := NewLocator(c, LocatorOptions{Country: "India", Delay: 100 * time.Millisecond})

	start := time.Now()
	l.Locate(context.Background(), "A")
	l.Locate(context.Background(), "B")
	l.Locate(context.Background(), "C")

	assert.GreaterOrEqual(t, time.Since(start), 180*time.Millisecond)
	assert.Len(t, c.queries, 3)
}

func TestLocate_CancelledDuringPacing(t *testing.T) {
	c := &scriptedClient{}
	l := NewLocator(c, LocatorOptions{Delay: time.Hour})
	l.Locate(context.Background(), "first")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, ok := l.Locate(ctx, "second")
	assert.False(t, ok)
	assert.Len(t, c.queries, 1)
}

func TestLocateWithFallback(t *testing.T) {
	c := &scriptedClient{answers: map[string]*Result{
		"Tamil Nadu, India": {Matched: true, Latitude: 11.1, Longitude: 78.6},
	}}
	l := NewLocator(c, LocatorOptions{Country: "India"})

	p, ok := l.LocateWithFallback(context.Background(), "NH-44 Widening", "Tamil Nadu")
	require.True(t, ok)
	assert.InDelta(t, 78.6, p.Lon, 1e-9)
	assert.Equal(t, []string{"NH-44 Widening, India", "Tamil Nadu, India"}, c.queries)
}

func TestLocateWithFallback_BothMiss(t *testing.T) {
	c := &scriptedClient{}
	l := NewLocator(c, LocatorOptions{Country: "India"})

	p, ok := l.LocateWithFallback(context.Background(), "A", "B")
	assert.False(t, ok)
	assert.Nil(t, p)
	assert.Len(t, c.queries, 2)
}

func TestLocateWithFallback_NoBroader(t *testing.T) {
	c := &scriptedClient{}
	l := NewLocator(c, LocatorOptions{Country: "India"})

	_, ok := l.LocateWithFallback(context.Background(), "A", "")
	assert.False(t, ok)
	assert.Len(t, c.queries, 1)
}

func TestLocate_NilLocator(t *testing.T) {
	var l *Locator
	_, ok := l.Locate(context.Background(), "A")
	assert.False(t, ok)
}
