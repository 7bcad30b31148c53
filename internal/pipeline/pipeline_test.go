package pipeline

import (
	"context"
	"encoding/csv"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hem1234567/laras-07/internal/extract"
	"github.com/Hem1234567/laras-07/internal/fallback"
	"github.com/Hem1234567/laras-07/internal/fetcher"
	"github.com/Hem1234567/laras-07/internal/model"
	"github.com/Hem1234567/laras-07/internal/normalize"
	"github.com/Hem1234567/laras-07/internal/sink"
)

type fakeFetcher struct {
	body  string
	err   error
	calls int
}

func (f *fakeFetcher) Fetch(_ context.Context, rawURL string, _ url.Values) (*fetcher.Response, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &fetcher.Response{URL: rawURL, StatusCode: 200, Body: []byte(f.body)}, nil
}

func (f *fakeFetcher) DownloadToFile(context.Context, string, string) (int64, error) {
	return 0, errors.New("not implemented")
}

type fakeGeocoder struct {
	points  map[string]*model.Point
	queries []string
	cancel  context.CancelFunc
}

func (g *fakeGeocoder) LocateWithFallback(_ context.Context, name, broader string) (*model.Point, bool) {
	g.queries = append(g.queries, name)
	if g.cancel != nil {
		g.cancel()
	}
	if p, ok := g.points[name]; ok {
		return p, true
	}
	g.queries = append(g.queries, broader)
	if p, ok := g.points[broader]; ok {
		return p, true
	}
	return nil, false
}

type recordingUpserter struct {
	got []model.ProjectRecord
}

func (r *recordingUpserter) Name() string { return "recording" }
func (r *recordingUpserter) Upsert(_ context.Context, rec model.ProjectRecord) error {
	r.got = append(r.got, rec)
	return nil
}
func (r *recordingUpserter) Count(context.Context) (int64, error) { return int64(len(r.got)), nil }
func (r *recordingUpserter) Close() error                         { return nil }

const listingPage = `<html><body>
<table class="project-table">
<tr><th>Name</th><th>Code</th><th>Length</th><th>State</th><th>Cost</th></tr>
<tr><td>Chennai Bypass Widening</td><td>NH-44</td><td>120.5 km</td><td>Tamil Nadu</td><td>1500</td></tr>
<tr><td>Kota Ring Road</td><td>NH-44</td><td>35</td><td>Rajasthan</td><td>n/a</td></tr>
<tr><td>Map</td><td>X-1</td><td>1</td><td>Goa</td><td>1</td></tr>
<tr><td>Short row</td><td>X-2</td></tr>
</table></body></html>`

func newPipeline(t *testing.T, f *fakeFetcher) *Pipeline {
	t.Helper()
	dir := t.TempDir()
	n := normalize.NHAI()
	n.Now = func() time.Time { return time.Unix(1700000000, 0) }
	return &Pipeline{
		Source:               "nhai",
		SourceURL:            "https://nhai.example/project-information.htm",
		Fetcher:              f,
		Extractor:            extract.NewTableExtractor(""),
		Normalizer:           n,
		Fallback:             fallback.Default(),
		FallbackOnFetchError: true,
		CSVPath:              filepath.Join(dir, "nhai_projects.csv"),
		Now:                  func() time.Time { return time.Unix(1700000000, 0) },
	}
}

func TestRun_ScrapedRecords(t *testing.T) {
	geo := &fakeGeocoder{points: map[string]*model.Point{
		"Chennai Bypass Widening": model.NewPoint(80.27, 13.08),
	}}
	up := &recordingUpserter{}
	p := newPipeline(t, &fakeFetcher{body: listingPage})
	p.Locator = geo
	p.Upserter = up

	report, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StateDone, report.State)
	assert.False(t, report.UsedFallback)
	assert.Equal(t, 3, report.Extracted)
	assert.Equal(t, 1, report.Dropped)
	assert.Equal(t, 1, report.Skipped)
	require.Len(t, report.Records, 2)

	first := report.Records[0]
	assert.Equal(t, "Chennai Bypass Widening", first.ProjectName)
	assert.Equal(t, "NH-44", first.ProjectCode)
	assert.Equal(t, 120.5, first.TotalLengthKM)
	assert.Equal(t, 1500.0, first.BudgetCrores)
	assert.Equal(t, model.StringList{"Tamil Nadu"}, first.DistrictsCovered)
	require.NotNil(t, first.AlignmentGeoJSON)
	assert.Equal(t, 80.27, first.AlignmentGeoJSON.Lon)

	second := report.Records[1]
	assert.Equal(t, "NH-44-2", second.ProjectCode, "codes are unique within a run")
	assert.Equal(t, 0.0, second.BudgetCrores)
	assert.Nil(t, second.AlignmentGeoJSON)
	assert.Equal(t, []string{"Chennai Bypass Widening", "Kota Ring Road", "Rajasthan"}, geo.queries)

	assert.Len(t, up.got, 2)
	require.NotNil(t, report.Upsert)
	assert.Equal(t, 2, report.Upsert.Succeeded)
	assert.Equal(t, []string{p.CSVPath}, report.Files)
}

func TestRun_EmptyExtractionUsesFallback(t *testing.T) {
	p := newPipeline(t, &fakeFetcher{body: "<html><body><p>maintenance</p></body></html>"})

	report, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StateDone, report.State)
	assert.True(t, report.UsedFallback)
	assert.Nil(t, report.FetchErr)
	assert.Equal(t, fallback.Records(), report.Records)
	for _, r := range report.Records {
		assert.Equal(t, fallback.DataSource, r.DataSource)
	}
}

func TestRun_FetchErrorFallsBack(t *testing.T) {
	fetchErr := &fetcher.HTTPError{URL: "https://nhai.example", StatusCode: 503}
	p := newPipeline(t, &fakeFetcher{err: fetchErr})

	report, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StateDone, report.State)
	assert.True(t, report.UsedFallback)
	assert.True(t, fetcher.IsHTTPError(report.FetchErr))
	assert.Len(t, report.Records, fallback.Default().Len())

	rows := readCSV(t, p.CSVPath)
	assert.Len(t, rows, fallback.Default().Len()+1)
}

func TestRun_FetchErrorAbortsWhenFallbackDisabled(t *testing.T) {
	p := newPipeline(t, &fakeFetcher{err: &fetcher.NetworkError{URL: "u", Err: errors.New("no route")}})
	p.FallbackOnFetchError = false
	up := &recordingUpserter{}
	p.Upserter = up

	report, err := p.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, StateAborted, report.State)
	assert.True(t, fetcher.IsNetworkError(err))
	assert.Empty(t, up.got)
	_, statErr := os.Stat(p.CSVPath)
	assert.True(t, os.IsNotExist(statErr), "no files written on abort")
}

func TestRun_CancelledDuringNormalize(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := newPipeline(t, &fakeFetcher{body: listingPage})
	p.Locator = &fakeGeocoder{cancel: cancel}

	report, err := p.Run(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateAborted, report.State)
}

func TestRun_NullGeometryInCSV(t *testing.T) {
	p := newPipeline(t, &fakeFetcher{body: listingPage})

	report, err := p.Run(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, report.Records)

	rows := readCSV(t, p.CSVPath)
	require.Len(t, rows, 3)
	geoCol := indexOf(model.ProjectColumns, "alignment_geojson")
	assert.Equal(t, "", rows[1][geoCol])
}

func TestRun_SinkErrorDoesNotStopRemote(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	up := &recordingUpserter{}
	p := newPipeline(t, &fakeFetcher{body: listingPage})
	p.CSVPath = filepath.Join(blocker, "nested", "out.csv")
	p.Upserter = up

	report, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, report.SinkErrs, 1)
	assert.Empty(t, report.Files)
	assert.Len(t, up.got, 2)
}

func TestRun_AllSinks(t *testing.T) {
	dir := t.TempDir()
	p := newPipeline(t, &fakeFetcher{body: listingPage})
	p.SQLPath = filepath.Join(dir, "seed.sql")
	p.XLSXPath = filepath.Join(dir, "projects.xlsx")

	report, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, report.Files, 3)

	sql, err := os.ReadFile(p.SQLPath)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(sql), "'NH-44-2'"))
}

func TestRun_RequiresCollaborators(t *testing.T) {
	report, err := (&Pipeline{}).Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, StateAborted, report.State)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "fallback", StateFallback.String())
	assert.Equal(t, "aborted", StateAborted.String())
	assert.Equal(t, "unknown", State(42).String())
}

func TestRun_UpserterSeesFallbackRecords(t *testing.T) {
	u, err := sink.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "p.db"), "infrastructure_projects")
	require.NoError(t, err)
	defer u.Close() //nolint:errcheck

	p := newPipeline(t, &fakeFetcher{err: errors.New("boom")})
	p.Upserter = u

	for i := 0; i < 2; i++ {
		_, err := p.Run(context.Background())
		require.NoError(t, err)
	}
	n, err := u.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(fallback.Default().Len()), n)
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close() //nolint:errcheck
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}
