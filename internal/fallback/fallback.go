// Package fallback supplies hand-verified project records used when a live
// scrape yields nothing.
package fallback

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/Hem1234567/laras-07/internal/model"
)

// DataSource tags every record this package produces.
const DataSource = "Fallback"

// Supplier returns the curated records to persist in place of an empty
// scrape.
type Supplier interface {
	Fallback() []model.ProjectRecord
}

// Static is a Supplier over a fixed list. Each call returns a fresh deep
// copy so callers may mutate the result.
type Static struct {
	records []model.ProjectRecord
}

// Fallback implements Supplier.
func (s *Static) Fallback() []model.ProjectRecord {
	out := make([]model.ProjectRecord, len(s.records))
	for i, r := range s.records {
		out[i] = r.Clone()
		out[i].DataSource = DataSource
	}
	return out
}

// Len returns the number of curated records.
func (s *Static) Len() int {
	return len(s.records)
}

// Default returns the built-in Supplier.
func Default() *Static {
	return &Static{records: builtin}
}

// Records returns a fresh copy of the built-in list.
func Records() []model.ProjectRecord {
	return Default().Fallback()
}

// Load reads a YAML list of curated records and validates each entry.
func Load(path string) (*Static, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "fallback: read %s", path)
	}

	var recs []model.ProjectRecord
	if err := yaml.Unmarshal(data, &recs); err != nil {
		return nil, eris.Wrapf(err, "fallback: parse %s", path)
	}
	if len(recs) == 0 {
		return nil, eris.Errorf("fallback: %s contains no records", path)
	}

	seen := make(map[string]bool, len(recs))
	for i := range recs {
		// [0, 0] in a curated file means the location is unknown.
		if recs[i].AlignmentGeoJSON.IsOrigin() {
			recs[i].AlignmentGeoJSON = nil
		}
		if err := recs[i].Validate(); err != nil {
			return nil, eris.Wrapf(err, "fallback: record %d in %s", i, path)
		}
		if seen[recs[i].ProjectCode] {
			return nil, eris.Errorf("fallback: duplicate project_code %q in %s", recs[i].ProjectCode, path)
		}
		seen[recs[i].ProjectCode] = true
	}
	return &Static{records: recs}, nil
}

// Open returns the curated list from path, or the built-in list when path
// is empty.
func Open(path string) (*Static, error) {
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}
