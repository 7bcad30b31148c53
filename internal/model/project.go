package model

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// ProjectType classifies an infrastructure project. Values match the
// project_type enum of the remote table.
type ProjectType string

const (
	TypeHighway    ProjectType = "highway"
	TypeMetro      ProjectType = "metro"
	TypeRailway    ProjectType = "railway"
	TypeAirport    ProjectType = "airport"
	TypeIndustrial ProjectType = "industrial"
	TypeSmartCity  ProjectType = "smart_city"
	TypePort       ProjectType = "port"
	TypePowerPlant ProjectType = "power_plant"
)

// ProjectTypes lists every valid project type.
var ProjectTypes = []ProjectType{
	TypeHighway, TypeMetro, TypeRailway, TypeAirport,
	TypeIndustrial, TypeSmartCity, TypePort, TypePowerPlant,
}

// Valid reports whether t is a known project type.
func (t ProjectType) Valid() bool {
	for _, v := range ProjectTypes {
		if t == v {
			return true
		}
	}
	return false
}

// ParseProjectType converts free text ("Smart City", "power-plant") into a
// ProjectType.
func ParseProjectType(s string) (ProjectType, error) {
	t := ProjectType(enumKey(s))
	if !t.Valid() {
		return "", eris.Errorf("model: unknown project type %q", s)
	}
	return t, nil
}

// Phase is the lifecycle stage of a project. Values match the project_phase
// enum of the remote table.
type Phase string

const (
	PhaseProposed            Phase = "proposed"
	PhaseFeasibilityStudy    Phase = "feasibility_study"
	PhaseDPRPreparation      Phase = "dpr_preparation"
	PhaseApproved            Phase = "approved"
	PhaseLandNotification    Phase = "land_notification"
	PhaseTenderFloated       Phase = "tender_floated"
	PhaseConstructionStarted Phase = "construction_started"
	PhaseOngoing             Phase = "ongoing"
	PhaseCompleted           Phase = "completed"
)

// Phases lists every valid phase in lifecycle order.
var Phases = []Phase{
	PhaseProposed, PhaseFeasibilityStudy, PhaseDPRPreparation, PhaseApproved,
	PhaseLandNotification, PhaseTenderFloated, PhaseConstructionStarted,
	PhaseOngoing, PhaseCompleted,
}

// phaseAliases maps labels seen on source pages to canonical phases.
var phaseAliases = map[string]Phase{
	"under_construction": PhaseConstructionStarted,
	"in_progress":        PhaseOngoing,
	"land_acquisition":   PhaseLandNotification,
	"dpr":                PhaseDPRPreparation,
	"tendered":           PhaseTenderFloated,
	"sanctioned":         PhaseApproved,
}

// Valid reports whether p is a known phase.
func (p Phase) Valid() bool {
	for _, v := range Phases {
		if p == v {
			return true
		}
	}
	return false
}

// ParsePhase converts free text into a Phase, accepting common aliases.
func ParsePhase(s string) (Phase, error) {
	key := enumKey(s)
	if p := Phase(key); p.Valid() {
		return p, nil
	}
	if p, ok := phaseAliases[key]; ok {
		return p, nil
	}
	return "", eris.Errorf("model: unknown project phase %q", s)
}

func enumKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(s)
}

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// Date is a calendar date without time of day.
type Date struct {
	time.Time
}

// NewDate builds a Date from year, month and day.
func NewDate(year int, month time.Month, day int) *Date {
	return &Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// MustDate parses a YYYY-MM-DD literal and panics on failure. Intended for
// package-level fixtures.
func MustDate(s string) *Date {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return &Date{t}
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Format(DateLayout)
}

// MarshalJSON encodes the date as "YYYY-MM-DD".
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON decodes "YYYY-MM-DD".
func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return eris.Wrap(err, "model: decode date")
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return eris.Wrapf(err, "model: parse date %q", s)
	}
	d.Time = t
	return nil
}

// UnmarshalYAML decodes "YYYY-MM-DD" from a YAML scalar.
func (d *Date) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return eris.Wrapf(err, "model: parse date %q", s)
	}
	d.Time = t
	return nil
}

// StringList is an ordered list of names that always encodes as a JSON
// array, never null.
type StringList []string

// MarshalJSON encodes nil as [].
func (l StringList) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(l))
}

// ProjectColumns is the column order shared by the CSV sink, the SQL seed
// and the database upserts.
var ProjectColumns = []string{
	"project_name",
	"project_code",
	"project_type",
	"state",
	"districts_covered",
	"cities_affected",
	"project_phase",
	"budget_crores",
	"total_length_km",
	"notification_date",
	"expected_completion_date",
	"implementing_agency",
	"alignment_geojson",
	"data_source",
}

// ProjectRecord is one normalized infrastructure project.
type ProjectRecord struct {
	ProjectName            string      `json:"project_name" yaml:"project_name"`
	ProjectCode            string      `json:"project_code" yaml:"project_code"`
	ProjectType            ProjectType `json:"project_type" yaml:"project_type"`
	State                  string      `json:"state" yaml:"state"`
	DistrictsCovered       StringList  `json:"districts_covered" yaml:"districts_covered"`
	CitiesAffected         StringList  `json:"cities_affected" yaml:"cities_affected"`
	ProjectPhase           Phase       `json:"project_phase" yaml:"project_phase"`
	BudgetCrores           float64     `json:"budget_crores" yaml:"budget_crores"`
	TotalLengthKM          float64     `json:"total_length_km" yaml:"total_length_km"`
	NotificationDate       *Date       `json:"notification_date" yaml:"notification_date"`
	ExpectedCompletionDate *Date       `json:"expected_completion_date" yaml:"expected_completion_date"`
	ImplementingAgency     string      `json:"implementing_agency" yaml:"implementing_agency"`
	AlignmentGeoJSON       *Point      `json:"alignment_geojson" yaml:"alignment_geojson"`
	DataSource             string      `json:"data_source" yaml:"data_source"`
}

// Validate checks the fields every persisted record must carry.
func (r ProjectRecord) Validate() error {
	if strings.TrimSpace(r.ProjectName) == "" {
		return eris.New("model: project_name is required")
	}
	if strings.TrimSpace(r.ProjectCode) == "" {
		return eris.Errorf("model: project_code is required (project %q)", r.ProjectName)
	}
	if r.ProjectType != "" && !r.ProjectType.Valid() {
		return eris.Errorf("model: project %s has invalid type %q", r.ProjectCode, r.ProjectType)
	}
	if r.ProjectPhase != "" && !r.ProjectPhase.Valid() {
		return eris.Errorf("model: project %s has invalid phase %q", r.ProjectCode, r.ProjectPhase)
	}
	if r.BudgetCrores < 0 || r.TotalLengthKM < 0 {
		return eris.Errorf("model: project %s has negative budget or length", r.ProjectCode)
	}
	if r.AlignmentGeoJSON.IsOrigin() {
		return eris.Errorf("model: project %s has a 0,0 location; leave alignment_geojson null", r.ProjectCode)
	}
	return nil
}

// Clone returns a deep copy of r.
func (r ProjectRecord) Clone() ProjectRecord {
	out := r
	out.DistrictsCovered = append(StringList(nil), r.DistrictsCovered...)
	out.CitiesAffected = append(StringList(nil), r.CitiesAffected...)
	if r.NotificationDate != nil {
		d := *r.NotificationDate
		out.NotificationDate = &d
	}
	if r.ExpectedCompletionDate != nil {
		d := *r.ExpectedCompletionDate
		out.ExpectedCompletionDate = &d
	}
	if r.AlignmentGeoJSON != nil {
		p := *r.AlignmentGeoJSON
		out.AlignmentGeoJSON = &p
	}
	return out
}

// CSVHeader implements Row.
func (r ProjectRecord) CSVHeader() []string {
	return ProjectColumns
}

// CSVRecord implements Row. Lists and GeoJSON are written as JSON text;
// missing dates and coordinates are empty cells.
func (r ProjectRecord) CSVRecord() []string {
	districts, _ := r.DistrictsCovered.MarshalJSON()
	cities, _ := r.CitiesAffected.MarshalJSON()
	return []string{
		r.ProjectName,
		r.ProjectCode,
		string(r.ProjectType),
		r.State,
		string(districts),
		string(cities),
		string(r.ProjectPhase),
		FormatFloat(r.BudgetCrores),
		FormatFloat(r.TotalLengthKM),
		dateCell(r.NotificationDate),
		dateCell(r.ExpectedCompletionDate),
		r.ImplementingAgency,
		pointCell(r.AlignmentGeoJSON),
		r.DataSource,
	}
}

// FormatFloat renders f with the fewest digits that round-trip.
func FormatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func dateCell(d *Date) string {
	if d == nil {
		return ""
	}
	return d.String()
}

func pointCell(p *Point) string {
	if p == nil || p.IsOrigin() {
		return ""
	}
	b, err := p.MarshalJSON()
	if err != nil {
		return ""
	}
	return string(b)
}
