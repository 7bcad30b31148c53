package sink

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/Hem1234567/laras-07/internal/db"
	"github.com/Hem1234567/laras-07/internal/model"
)

// SQLiteUpserter keeps the projects table in a local SQLite file. It backs
// offline runs and tests with the same merge-on-code semantics as the
// hosted table.
type SQLiteUpserter struct {
	db    *sql.DB
	table string
	sql   string
}

const sqliteProjectsDDL = `
CREATE TABLE IF NOT EXISTS %[1]s (
	project_code             TEXT PRIMARY KEY,
	project_name             TEXT NOT NULL,
	project_type             TEXT,
	state                    TEXT,
	districts_covered        TEXT NOT NULL DEFAULT '[]',
	cities_affected          TEXT NOT NULL DEFAULT '[]',
	project_phase            TEXT,
	budget_crores            REAL NOT NULL DEFAULT 0,
	total_length_km          REAL NOT NULL DEFAULT 0,
	notification_date        TEXT,
	expected_completion_date TEXT,
	implementing_agency      TEXT,
	alignment_geojson        TEXT,
	data_source              TEXT,
	created_at               DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at               DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);`

// OpenSQLite opens (creating if needed) the database at path and ensures
// the projects table exists. A schema qualifier on table is ignored.
func OpenSQLite(ctx context.Context, path, table string) (*SQLiteUpserter, error) {
	if i := strings.LastIndex(table, "."); i >= 0 {
		table = table[i+1:]
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, eris.Wrapf(err, "sink: create directory for %s", path)
		}
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "sink: sqlite open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := conn.ExecContext(ctx, pragma); err != nil {
			conn.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sink: sqlite exec %s", pragma)
		}
	}

	if _, err := conn.ExecContext(ctx, fmt.Sprintf(sqliteProjectsDDL, db.SanitizeTable(table))); err != nil {
		conn.Close() //nolint:errcheck
		return nil, eris.Wrap(err, "sink: sqlite create table")
	}

	stmt, err := db.BuildUpsertSQL(db.UpsertConfig{
		Table:        table,
		Columns:      model.ProjectColumns,
		ConflictKeys: []string{ConflictKey},
		Placeholder:  db.Question,
		Touch:        []string{`"updated_at" = CURRENT_TIMESTAMP`},
	})
	if err != nil {
		conn.Close() //nolint:errcheck
		return nil, err
	}

	return &SQLiteUpserter{db: conn, table: table, sql: stmt}, nil
}

// Name implements Upserter.
func (u *SQLiteUpserter) Name() string { return "sqlite" }

// Upsert implements Upserter.
func (u *SQLiteUpserter) Upsert(ctx context.Context, rec model.ProjectRecord) error {
	args, err := sqliteArgs(rec)
	if err != nil {
		return err
	}
	if _, err := u.db.ExecContext(ctx, u.sql, args...); err != nil {
		return eris.Wrapf(err, "sink: sqlite upsert %s", rec.ProjectCode)
	}
	return nil
}

// Count implements Upserter.
func (u *SQLiteUpserter) Count(ctx context.Context) (int64, error) {
	var n int64
	q := fmt.Sprintf("SELECT count(*) FROM %s", db.SanitizeTable(u.table))
	if err := u.db.QueryRowContext(ctx, q).Scan(&n); err != nil {
		return 0, eris.Wrap(err, "sink: sqlite count")
	}
	return n, nil
}

// List returns every stored record ordered by project_code.
func (u *SQLiteUpserter) List(ctx context.Context) ([]model.ProjectRecord, error) {
	q := fmt.Sprintf(`SELECT project_name, project_code, COALESCE(project_type, ''), COALESCE(state, ''),
		districts_covered, cities_affected, COALESCE(project_phase, ''), budget_crores, total_length_km,
		notification_date, expected_completion_date, COALESCE(implementing_agency, ''),
		alignment_geojson, COALESCE(data_source, '')
		FROM %s ORDER BY project_code`, db.SanitizeTable(u.table))

	rows, err := u.db.QueryContext(ctx, q)
	if err != nil {
		return nil, eris.Wrap(err, "sink: sqlite list")
	}
	defer rows.Close() //nolint:errcheck

	var out []model.ProjectRecord
	for rows.Next() {
		var (
			rec                model.ProjectRecord
			ptype, phase       string
			districts, cities  string
			notified, complete sql.NullString
			geo                sql.NullString
		)
		if err := rows.Scan(&rec.ProjectName, &rec.ProjectCode, &ptype, &rec.State,
			&districts, &cities, &phase, &rec.BudgetCrores, &rec.TotalLengthKM,
			&notified, &complete, &rec.ImplementingAgency, &geo, &rec.DataSource); err != nil {
			return nil, eris.Wrap(err, "sink: sqlite scan")
		}
		rec.ProjectType = model.ProjectType(ptype)
		rec.ProjectPhase = model.Phase(phase)
		if err := json.Unmarshal([]byte(districts), &rec.DistrictsCovered); err != nil {
			return nil, eris.Wrapf(err, "sink: decode districts of %s", rec.ProjectCode)
		}
		if err := json.Unmarshal([]byte(cities), &rec.CitiesAffected); err != nil {
			return nil, eris.Wrapf(err, "sink: decode cities of %s", rec.ProjectCode)
		}
		if rec.NotificationDate, err = storedDate(notified); err != nil {
			return nil, err
		}
		if rec.ExpectedCompletionDate, err = storedDate(complete); err != nil {
			return nil, err
		}
		if geo.Valid {
			var p model.Point
			if err := p.UnmarshalJSON([]byte(geo.String)); err != nil {
				return nil, eris.Wrapf(err, "sink: decode geometry of %s", rec.ProjectCode)
			}
			rec.AlignmentGeoJSON = &p
		}
		out = append(out, rec)
	}
	return out, eris.Wrap(rows.Err(), "sink: sqlite rows")
}

// Close implements Upserter.
func (u *SQLiteUpserter) Close() error {
	return u.db.Close()
}

func sqliteArgs(rec model.ProjectRecord) ([]any, error) {
	districts, err := rec.DistrictsCovered.MarshalJSON()
	if err != nil {
		return nil, eris.Wrap(err, "sink: encode districts")
	}
	cities, err := rec.CitiesAffected.MarshalJSON()
	if err != nil {
		return nil, eris.Wrap(err, "sink: encode cities")
	}
	return []any{
		rec.ProjectName,
		rec.ProjectCode,
		nullString(string(rec.ProjectType)),
		nullString(rec.State),
		string(districts),
		string(cities),
		nullString(string(rec.ProjectPhase)),
		rec.BudgetCrores,
		rec.TotalLengthKM,
		sqliteDate(rec.NotificationDate),
		sqliteDate(rec.ExpectedCompletionDate),
		nullString(rec.ImplementingAgency),
		nullGeoJSON(rec.AlignmentGeoJSON),
		nullString(rec.DataSource),
	}, nil
}

func storedDate(v sql.NullString) (*model.Date, error) {
	if !v.Valid {
		return nil, nil
	}
	t, err := time.Parse(model.DateLayout, v.String)
	if err != nil {
		return nil, eris.Wrapf(err, "sink: parse stored date %q", v.String)
	}
	return &model.Date{Time: t}, nil
}

func sqliteDate(d *model.Date) any {
	if d == nil {
		return nil
	}
	return d.String()
}
