package db

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildUpsertSQL(t *testing.T) {
	sql, err := BuildUpsertSQL(UpsertConfig{
		Table:        "public.infrastructure_projects",
		Columns:      []string{"project_code", "project_name", "alignment_geojson"},
		ConflictKeys: []string{"project_code"},
		Casts:        []string{"", "", "::jsonb"},
		Touch:        []string{"updated_at = now()"},
	})
	require.NoError(t, err)
	assert.Equal(t,
		`INSERT INTO "public"."infrastructure_projects" ("project_code", "project_name", "alignment_geojson") `+
			`VALUES ($1, $2, $3::jsonb) ON CONFLICT ("project_code") DO UPDATE SET `+
			`"project_name" = EXCLUDED."project_name", "alignment_geojson" = EXCLUDED."alignment_geojson", updated_at = now()`,
		sql)
}

func TestBuildUpsertSQL_QuestionPlaceholders(t *testing.T) {
	sql, err := BuildUpsertSQL(UpsertConfig{
		Table:        "projects",
		Columns:      []string{"code", "name"},
		ConflictKeys: []string{"code"},
		Placeholder:  Question,
	})
	require.NoError(t, err)
	assert.Equal(t,
		`INSERT INTO "projects" ("code", "name") VALUES (?, ?) ON CONFLICT ("code") DO UPDATE SET "name" = EXCLUDED."name"`,
		sql)
}

func TestBuildUpsertSQL_OnlyKeys(t *testing.T) {
	sql, err := BuildUpsertSQL(UpsertConfig{
		Table:        "codes",
		Columns:      []string{"code"},
		ConflictKeys: []string{"code"},
	})
	require.NoError(t, err)
	assert.Contains(t, sql, "DO NOTHING")
}

func TestBuildUpsertSQL_Invalid(t *testing.T) {
	tests := []struct {
		name string
		cfg  UpsertConfig
		want string
	}{
		{"no table", UpsertConfig{Columns: []string{"a"}, ConflictKeys: []string{"a"}}, "no table specified"},
		{"no columns", UpsertConfig{Table: "t", ConflictKeys: []string{"a"}}, "no columns specified"},
		{"no keys", UpsertConfig{Table: "t", Columns: []string{"a"}}, "no conflict keys specified"},
		{"cast mismatch", UpsertConfig{Table: "t", Columns: []string{"a", "b"}, ConflictKeys: []string{"a"}, Casts: []string{""}}, "casts for 2 columns"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildUpsertSQL(tt.cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestBulkUpsert_EmptyRows(t *testing.T) {
	n, err := BulkUpsert(context.Background(), nil, UpsertConfig{
		Table:        "public.test",
		Columns:      []string{"id", "name"},
		ConflictKeys: []string{"id"},
	}, nil)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestBulkUpsert_NoConflictKeys(t *testing.T) {
	_, err := BulkUpsert(context.Background(), nil, UpsertConfig{
		Table:   "public.test",
		Columns: []string{"id", "name"},
	}, [][]any{{1, "a"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no conflict keys specified")
}

func TestBulkUpsert(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	cols := []string{"project_code", "project_name"}
	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TEMP TABLE "_tmp_upsert_public_infrastructure_projects"`).
		WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"_tmp_upsert_public_infrastructure_projects"}, cols).
		WillReturnResult(2)
	mock.ExpectExec(`INSERT INTO "public"."infrastructure_projects"`).
		WillReturnResult(pgxmock.NewResult("INSERT", 2))
	mock.ExpectCommit()

	n, err := BulkUpsert(context.Background(), mock, UpsertConfig{
		Table:        "public.infrastructure_projects",
		Columns:      cols,
		ConflictKeys: []string{"project_code"},
	}, [][]any{{"A", "Alpha"}, {"B", "Beta"}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBulkUpsert_CopyFailsRollsBack(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TEMP TABLE`).WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"_tmp_upsert_projects"}, []string{"code"}).
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	_, err = BulkUpsert(context.Background(), mock, UpsertConfig{
		Table:        "projects",
		Columns:      []string{"code"},
		ConflictKeys: []string{"code"},
		UpdateCols:   []string{},
	}, [][]any{{"A"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "COPY into temp table")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSanitizeTable(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"simple", `"simple"`},
		{"public.infrastructure_projects", `"public"."infrastructure_projects"`},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeTable(tt.input))
		})
	}
}

func TestQuoteAndJoin(t *testing.T) {
	result := quoteAndJoin([]string{"id", "name", "value"})
	assert.Equal(t, `"id", "name", "value"`, result)
}
