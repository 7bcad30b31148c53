package sink

import (
	"context"
	"fmt"
	"time"

	"github.com/rotisserie/eris"

	"github.com/Hem1234567/laras-07/internal/db"
	"github.com/Hem1234567/laras-07/internal/model"
)

// PostgresUpserter writes straight to the projects table over a pgx pool.
type PostgresUpserter struct {
	pool  db.Pool
	table string
	sql   string
}

// projectCasts aligns with model.ProjectColumns; geometry is bound as text
// and cast to jsonb.
var projectCasts = []string{"", "", "", "", "", "", "", "", "", "", "", "", "::jsonb", ""}

func postgresUpsertConfig(table string) db.UpsertConfig {
	return db.UpsertConfig{
		Table:        table,
		Columns:      model.ProjectColumns,
		ConflictKeys: []string{ConflictKey},
		Casts:        projectCasts,
		Touch:        []string{`"updated_at" = now()`},
	}
}

// ConnectPostgres dials dsn and returns an upserter for table.
func ConnectPostgres(ctx context.Context, dsn, table string) (*PostgresUpserter, error) {
	pool, err := db.Connect(ctx, dsn)
	if err != nil {
		return nil, err
	}
	u, err := NewPostgres(pool, table)
	if err != nil {
		pool.Close()
		return nil, err
	}
	return u, nil
}

// NewPostgres wraps an existing pool.
func NewPostgres(pool db.Pool, table string) (*PostgresUpserter, error) {
	stmt, err := db.BuildUpsertSQL(postgresUpsertConfig(table))
	if err != nil {
		return nil, err
	}
	return &PostgresUpserter{pool: pool, table: table, sql: stmt}, nil
}

// Name implements Upserter.
func (u *PostgresUpserter) Name() string { return "postgres" }

// Upsert implements Upserter.
func (u *PostgresUpserter) Upsert(ctx context.Context, rec model.ProjectRecord) error {
	if _, err := u.pool.Exec(ctx, u.sql, projectArgs(rec)...); err != nil {
		return eris.Wrapf(err, "sink: postgres upsert %s", rec.ProjectCode)
	}
	return nil
}

// UpsertBatch loads records in one transaction through a COPY into a temp
// table. Unlike UpsertAll, a single bad row fails the whole batch.
func (u *PostgresUpserter) UpsertBatch(ctx context.Context, records []model.ProjectRecord) (int64, error) {
	rows := make([][]any, 0, len(records))
	for _, rec := range records {
		if err := rec.Validate(); err != nil {
			return 0, err
		}
		rows = append(rows, projectArgs(rec))
	}
	n, err := db.BulkUpsert(ctx, u.pool, postgresUpsertConfig(u.table), rows)
	if err != nil {
		return 0, eris.Wrap(err, "sink: postgres batch upsert")
	}
	return n, nil
}

// Count implements Upserter.
func (u *PostgresUpserter) Count(ctx context.Context) (int64, error) {
	var n int64
	q := fmt.Sprintf("SELECT count(*) FROM %s", db.SanitizeTable(u.table))
	if err := u.pool.QueryRow(ctx, q).Scan(&n); err != nil {
		return 0, eris.Wrap(err, "sink: postgres count")
	}
	return n, nil
}

// Close implements Upserter.
func (u *PostgresUpserter) Close() error {
	u.pool.Close()
	return nil
}

// projectArgs binds a record in model.ProjectColumns order. Empty strings,
// missing dates and missing geometry become NULL.
func projectArgs(rec model.ProjectRecord) []any {
	return []any{
		rec.ProjectName,
		rec.ProjectCode,
		nullString(string(rec.ProjectType)),
		nullString(rec.State),
		[]string(nonNil(rec.DistrictsCovered)),
		[]string(nonNil(rec.CitiesAffected)),
		nullString(string(rec.ProjectPhase)),
		rec.BudgetCrores,
		rec.TotalLengthKM,
		nullDate(rec.NotificationDate),
		nullDate(rec.ExpectedCompletionDate),
		nullString(rec.ImplementingAgency),
		nullGeoJSON(rec.AlignmentGeoJSON),
		nullString(rec.DataSource),
	}
}

func nonNil(l model.StringList) model.StringList {
	if l == nil {
		return model.StringList{}
	}
	return l
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullDate(d *model.Date) any {
	if d == nil {
		return nil
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

func nullGeoJSON(p *model.Point) any {
	if p == nil || p.IsOrigin() {
		return nil
	}
	b, err := p.MarshalJSON()
	if err != nil {
		return nil
	}
	return string(b)
}
