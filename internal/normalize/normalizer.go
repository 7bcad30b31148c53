// Package normalize turns raw table rows into typed project records.
package normalize

import (
	"fmt"
	"time"

	"github.com/Hem1234567/laras-07/internal/extract"
	"github.com/Hem1234567/laras-07/internal/model"
)

// UnknownState is used when a row carries no state column.
const UnknownState = "Unknown"

// Column positions on the highway authority listing.
const (
	ColName = iota
	ColCode
	ColLength
	ColState
	ColBudget
)

// Normalizer maps positional rows to ProjectRecord using per-source
// defaults for the fields listing pages never carry.
type Normalizer struct {
	SourcePrefix string
	DataSource   string
	Agency       string
	ProjectType  model.ProjectType
	Phase        model.Phase
	Now          func() time.Time
}

// NHAI returns the normalizer for the highway authority project listing.
func NHAI() *Normalizer {
	return &Normalizer{
		SourcePrefix: "NHAI",
		DataSource:   "NHAI Website",
		Agency:       "NHAI",
		ProjectType:  model.TypeHighway,
		Phase:        model.PhaseOngoing,
		Now:          time.Now,
	}
}

// SynthesizeCode builds "<prefix>-<unix seconds>".
func (n *Normalizer) SynthesizeCode() string {
	now := time.Now
	if n.Now != nil {
		now = n.Now
	}
	return fmt.Sprintf("%s-%d", n.SourcePrefix, now().Unix())
}

// Normalize maps name, code, length, state and budget by position. Missing
// cells take defaults; numeric cells that do not parse become 0.
// Coordinates are left nil for the geocoding step.
func (n *Normalizer) Normalize(row extract.RawRow) model.ProjectRecord {
	state := row.CellOr(ColState, UnknownState)

	code := row.CellOr(ColCode, "")
	if code == "" {
		code = n.SynthesizeCode()
	}

	length, _ := row.Cell(ColLength)
	budget, _ := row.Cell(ColBudget)

	return model.ProjectRecord{
		ProjectName:        row.CellOr(ColName, ""),
		ProjectCode:        code,
		ProjectType:        n.ProjectType,
		State:              state,
		DistrictsCovered:   model.StringList{state},
		CitiesAffected:     model.StringList{},
		ProjectPhase:       n.Phase,
		BudgetCrores:       ParseNumber(budget),
		TotalLengthKM:      ParseLength(length),
		ImplementingAgency: n.Agency,
		DataSource:         n.DataSource,
	}
}
