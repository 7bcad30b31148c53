package sink

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/Hem1234567/laras-07/internal/db"
	"github.com/Hem1234567/laras-07/internal/model"
)

// SeedTable is the fully qualified table the seed script targets.
const SeedTable = "public.infrastructure_projects"

// RenderSeedSQL renders one multi-row INSERT ... ON CONFLICT statement that
// loads records into the hosted projects table. Re-running the script
// refreshes budget and phase of existing rows.
func RenderSeedSQL(records []model.ProjectRecord, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "-- Infrastructure projects seed - %s\n", now.UTC().Format(time.RFC3339))
	if len(records) == 0 {
		b.WriteString("-- no records\n")
		return b.String()
	}

	fmt.Fprintf(&b, "INSERT INTO %s (\n    %s\n) VALUES\n",
		db.SanitizeTable(SeedTable), strings.Join(model.ProjectColumns, ", "))

	values := make([]string, len(records))
	for i, r := range records {
		values[i] = "(" + strings.Join([]string{
			sqlString(r.ProjectName),
			sqlString(r.ProjectCode),
			sqlString(string(r.ProjectType)),
			sqlString(r.State),
			sqlArray(r.DistrictsCovered),
			sqlArray(r.CitiesAffected),
			sqlString(string(r.ProjectPhase)),
			model.FormatFloat(r.BudgetCrores),
			model.FormatFloat(r.TotalLengthKM),
			sqlDate(r.NotificationDate),
			sqlDate(r.ExpectedCompletionDate),
			sqlString(r.ImplementingAgency),
			sqlGeoJSON(r.AlignmentGeoJSON),
			sqlString(r.DataSource),
		}, ", ") + ")"
	}
	b.WriteString(strings.Join(values, ",\n"))
	b.WriteString("\nON CONFLICT (project_code) DO UPDATE SET updated_at = now(), " +
		"budget_crores = EXCLUDED.budget_crores, project_phase = EXCLUDED.project_phase;\n")
	return b.String()
}

// WriteSeedSQL overwrites path with RenderSeedSQL output.
func WriteSeedSQL(path string, records []model.ProjectRecord, now time.Time) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrapf(err, "sink: create directory for %s", path)
	}
	if err := os.WriteFile(path, []byte(RenderSeedSQL(records, now)), 0o644); err != nil {
		return eris.Wrapf(err, "sink: write %s", path)
	}
	return nil
}

func sqlString(s string) string {
	if s == "" {
		return "NULL"
	}
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func sqlArray(list []string) string {
	if len(list) == 0 {
		return "NULL"
	}
	quoted := make([]string, len(list))
	for i, v := range list {
		quoted[i] = "'" + strings.ReplaceAll(v, "'", "''") + "'"
	}
	return "ARRAY[" + strings.Join(quoted, ",") + "]"
}

func sqlDate(d *model.Date) string {
	if d == nil {
		return "NULL"
	}
	return "'" + d.String() + "'"
}

func sqlGeoJSON(p *model.Point) string {
	if p == nil || p.IsOrigin() {
		return "NULL"
	}
	b, err := p.MarshalJSON()
	if err != nil {
		return "NULL"
	}
	return "'" + strings.ReplaceAll(string(b), "'", "''") + "'::jsonb"
}
