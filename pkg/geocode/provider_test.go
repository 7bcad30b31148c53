package geocode

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockProvider implements Provider for testing cascade behavior.
type mockProvider struct {
	name      string
	available bool
	result    *Result
	err       error
	calls     atomic.Int32
}

func (m *mockProvider) Name() string    { return m.name }
func (m *mockProvider) Available() bool { return m.available }
func (m *mockProvider) Geocode(_ context.Context, _ string) (*Result, error) {
	m.calls.Add(1)
	return m.result, m.err
}

func TestCascade_FirstMatchWins(t *testing.T) {
	first := &mockProvider{name: "nominatim", available: true, result: &Result{Matched: true, Latitude: 1, Longitude: 2, Source: "nominatim"}}
	second := &mockProvider{name: "google", available: true, result: &Result{Matched: true, Source: "google"}}

	res, err := NewCascade(first, second).Geocode(context.Background(), "Pune, India")
	require.NoError(t, err)
	assert.Equal(t, "nominatim", res.Source)
	assert.Equal(t, int32(0), second.calls.Load())
}

func TestCascade_FallsThroughOnMissAndError(t *testing.T) {
	miss := &mockProvider{name: "a", available: true, result: &Result{Matched: false}}
	broken := &mockProvider{name: "b", available: true, err: errors.New("boom")}
	hit := &mockProvider{name: "c", available: true, result: &Result{Matched: true, Source: "c"}}

	res, err := NewCascade(miss, broken, hit).Geocode(context.Background(), "Pune, India")
	require.NoError(t, err)
	assert.Equal(t, "c", res.Source)
}

func TestCascade_SkipsUnavailable(t *testing.T) {
	off := &mockProvider{name: "google", available: false}
	on := &mockProvider{name: "nominatim", available: true, result: &Result{Matched: false}}

	c := NewCascade(off, on)
	assert.Equal(t, []string{"nominatim"}, c.Providers())

	res, err := c.Geocode(context.Background(), "x")
	require.NoError(t, err)
	assert.False(t, res.Matched)
	assert.Equal(t, int32(0), off.calls.Load())
}

func TestCascade_AllErrored(t *testing.T) {
	a := &mockProvider{name: "a", available: true, err: errors.New("a down")}
	b := &mockProvider{name: "b", available: true, err: errors.New("b down")}

	_, err := NewCascade(a, b).Geocode(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "b down")
}

func TestCascade_MissAfterErrorIsNotError(t *testing.T) {
	a := &mockProvider{name: "a", available: true, err: errors.New("a down")}
	b := &mockProvider{name: "b", available: true, result: &Result{Matched: false}}

	res, err := NewCascade(a, b).Geocode(context.Background(), "x")
	require.NoError(t, err)
	assert.False(t, res.Matched)
}

func TestCascade_NoProviders(t *testing.T) {
	_, err := NewCascade().Geocode(context.Background(), "x")
	assert.Error(t, err)
}
