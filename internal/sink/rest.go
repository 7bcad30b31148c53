package sink

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rotisserie/eris"

	"github.com/Hem1234567/laras-07/internal/model"
	"github.com/Hem1234567/laras-07/internal/resilience"
)

// RESTOptions configures a RESTUpserter.
type RESTOptions struct {
	BaseURL string // project URL, e.g. https://xyz.supabase.co
	Key     string // service-role or anon key
	Table   string
	Timeout time.Duration
}

// RESTUpserter upserts through a PostgREST-style endpoint
// ({base}/rest/v1/{table}) with merge-duplicates resolution.
type RESTUpserter struct {
	client *resty.Client
	table  string
}

// NewREST creates a REST upserter. The key is sent both as the apikey
// header and as a bearer token.
func NewREST(opts RESTOptions) *RESTUpserter {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(opts.BaseURL, "/")).
		SetTimeout(opts.Timeout).
		SetHeader("apikey", opts.Key).
		SetAuthToken(opts.Key).
		SetHeader("Content-Type", "application/json")

	return &RESTUpserter{client: client, table: opts.Table}
}

// Name implements Upserter.
func (u *RESTUpserter) Name() string { return "rest" }

func (u *RESTUpserter) path() string { return "/rest/v1/" + u.table }

// Upsert implements Upserter.
func (u *RESTUpserter) Upsert(ctx context.Context, rec model.ProjectRecord) error {
	res, err := u.client.R().
		SetContext(ctx).
		SetQueryParam("on_conflict", ConflictKey).
		SetHeader("Prefer", "resolution=merge-duplicates").
		SetBody([]model.ProjectRecord{rec}).
		Post(u.path())
	if err != nil {
		return eris.Wrapf(err, "sink: rest upsert %s", rec.ProjectCode)
	}
	if res.IsError() {
		return &StatusError{
			Op:         "rest upsert " + rec.ProjectCode,
			StatusCode: res.StatusCode(),
			Body:       strings.TrimSpace(res.String()),
		}
	}
	return nil
}

// Count implements Upserter. It asks for an exact count and reads the
// total from the Content-Range header ("0-9/42" or "*/42").
func (u *RESTUpserter) Count(ctx context.Context) (int64, error) {
	res, err := u.client.R().
		SetContext(ctx).
		SetQueryParam("select", ConflictKey).
		SetHeader("Prefer", "count=exact").
		Head(u.path())
	if err != nil {
		return 0, eris.Wrap(err, "sink: rest count")
	}
	if res.IsError() {
		return 0, &StatusError{Op: "rest count", StatusCode: res.StatusCode()}
	}
	return parseContentRange(res.Header().Get("Content-Range"))
}

// Close implements Upserter.
func (u *RESTUpserter) Close() error { return nil }

// StatusError reports a non-2xx answer from the REST endpoint.
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("sink: %s: status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("sink: %s: status %d: %s", e.Op, e.StatusCode, e.Body)
}

// Transient reports whether the status may clear on a later attempt.
func (e *StatusError) Transient() bool {
	return resilience.IsTransientHTTPStatus(e.StatusCode)
}

func parseContentRange(v string) (int64, error) {
	i := strings.LastIndex(v, "/")
	if i < 0 {
		return 0, eris.Errorf("sink: malformed Content-Range %q", v)
	}
	total := v[i+1:]
	if total == "*" {
		return 0, eris.Errorf("sink: Content-Range %q has no total", v)
	}
	n, err := strconv.ParseInt(total, 10, 64)
	if err != nil {
		return 0, eris.Wrapf(err, "sink: parse Content-Range %q", v)
	}
	return n, nil
}
