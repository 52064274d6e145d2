// Package api defines the mass-balance result model shared by the engine,
// the costing layer, storage, and the HTTP API.
package api

// StageType identifies a unit operation in a treatment or digestion train.
// The set is closed: per-stage transforms dispatch over these values in one
// place, so adding a stage type means extending that switch.
type StageType string

const (
	// Liquid train.
	StagePreliminary     StageType = "preliminary"
	StageEqualization    StageType = "equalization"
	StagePrimary         StageType = "primary"
	StageActivatedSludge StageType = "activated_sludge"
	StageMBR             StageType = "mbr"
	StageTricklingFilter StageType = "trickling_filter"
	StageTertiaryFilter  StageType = "tertiary_filter"
	StageNitrification   StageType = "nitrification"
	StageDenitrification StageType = "denitrification"
	StagePhosRemoval     StageType = "phosphorus_removal"
	StageDisinfection    StageType = "disinfection"

	// Liquid-train sink for wasted solids; not a modeled unit operation.
	StageSolidsHandling StageType = "solids_handling"

	// Digestion train.
	StageReceiving  StageType = "receiving"
	StageDigester   StageType = "digester"
	StageDewatering StageType = "dewatering"
	StageFiltrate   StageType = "filtrate_treatment"

	// Gas train.
	StageConditioning StageType = "gas_conditioning"
	StageUpgrading    StageType = "gas_upgrading"
)

// Stream is a snapshot of a flow at one point in a train. Concentration and
// composition fields are sparse: a liquid stream carries mg/L constituents,
// a gas stream carries composition percentages, a solids stream carries
// tons/day and solids fractions. Units are explicit per stream.
type Stream struct {
	Flow     float64 `json:"flow"`
	FlowUnit string  `json:"flow_unit"`

	// Liquid constituents, mg/L.
	BOD float64 `json:"bod,omitempty"`
	COD float64 `json:"cod,omitempty"`
	TSS float64 `json:"tss,omitempty"`
	TKN float64 `json:"tkn,omitempty"`
	TP  float64 `json:"tp,omitempty"`
	FOG float64 `json:"fog,omitempty"`
	NH3 float64 `json:"nh3,omitempty"`
	NO3 float64 `json:"no3,omitempty"`

	// Solids stream properties.
	TotalSolidsPct    float64 `json:"total_solids_pct,omitempty"`
	VolatileSolidsPct float64 `json:"volatile_solids_pct,omitempty"` // fraction of TS

	// Gas composition.
	CH4Pct       float64 `json:"ch4_pct,omitempty"`
	CO2Pct       float64 `json:"co2_pct,omitempty"`
	H2SPPM       float64 `json:"h2s_ppm,omitempty"`
	SiloxanesPPB float64 `json:"siloxanes_ppb,omitempty"`
	HeatingValue float64 `json:"heating_value_btu_scf,omitempty"`
}

// Criterion is one named design parameter applied at a stage, with its unit
// and the standard it came from.
type Criterion struct {
	Name   string  `json:"name"`
	Value  float64 `json:"value"`
	Unit   string  `json:"unit"`
	Source string  `json:"source"`
}

// Stage is one unit-operation step: an influent, an effluent, the removal or
// transformation coefficients applied, and the design criteria used.
type Stage struct {
	Type     StageType `json:"type"`
	Name     string    `json:"name"`
	Influent Stream    `json:"influent"`
	Effluent Stream    `json:"effluent"`

	// Removals holds the fractional removal applied per constituent.
	Removals map[string]float64 `json:"removals,omitempty"`
	Criteria []Criterion        `json:"criteria,omitempty"`
	Notes    string             `json:"notes,omitempty"`
}

// RecycleStream is an internal flow returned from a downstream stage to an
// upstream one. Recomputed every convergence iteration, never persisted
// between runs.
type RecycleStream struct {
	Name      string             `json:"name"`
	FromStage StageType          `json:"from_stage"`
	ToStage   StageType          `json:"to_stage"`
	Flow      float64            `json:"flow"`
	FlowUnit  string             `json:"flow_unit"`
	Loads     map[string]float64 `json:"loads,omitempty"` // constituent -> lb/day
}

// SpecEntry is a named equipment spec with its unit.
type SpecEntry struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// EquipmentItem is one physical unit (or a count of identical units) derived
// from a stage's design criteria. The override/lock flags belong to the
// downstream review UI; the engine writes them false and never reads them.
type EquipmentItem struct {
	ID          int                  `json:"id"`
	ProcessArea string               `json:"process_area"`
	Type        string               `json:"type"`
	Description string               `json:"description"`
	Quantity    int                  `json:"quantity"`
	Specs       map[string]SpecEntry `json:"specs"`
	DesignBasis string               `json:"design_basis"`
	Notes       string               `json:"notes,omitempty"`
	Overridden  bool                 `json:"overridden"`
	Locked      bool                 `json:"locked"`
}

// Assumption records a defaulted parameter: what was assumed, the value
// used, and where the default comes from.
type Assumption struct {
	Parameter string `json:"parameter"`
	Value     string `json:"value"`
	Source    string `json:"source"`
}

// Severity grades a warning.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Warning is an advisory attached to the results record. Degraded conditions
// are represented this way rather than as errors: downstream consumers
// always receive a structured record.
type Warning struct {
	Field    string   `json:"field"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// Convergence describes the liquid-train recycle iteration outcome.
type Convergence struct {
	Achieved   bool    `json:"achieved"`
	Iterations int     `json:"iterations"`
	MaxDelta   float64 `json:"max_delta"`
}

// Results is the root output of a calculator run. It is constructed once per
// invocation and returned whole; every collection is non-nil even when the
// run exits early.
type Results struct {
	ProjectType ProjectType `json:"project_type"`

	LiquidStages []Stage         `json:"liquid_stages"`
	ADStages     []Stage         `json:"ad_stages"`
	Recycles     []RecycleStream `json:"recycles"`
	Equipment    []EquipmentItem `json:"equipment"`

	Convergence Convergence `json:"convergence"`

	Assumptions []Assumption `json:"assumptions"`
	Warnings    []Warning    `json:"warnings"`

	// Summary holds headline metrics (e.g. "rng_mmbtu_day") for report
	// surfaces and the costing layer.
	Summary map[string]float64 `json:"summary,omitempty"`
}

// NewResults returns a fully initialized, empty results record for the given
// project type.
func NewResults(pt ProjectType) *Results {
	return &Results{
		ProjectType:  pt,
		LiquidStages: []Stage{},
		ADStages:     []Stage{},
		Recycles:     []RecycleStream{},
		Equipment:    []EquipmentItem{},
		Assumptions:  []Assumption{},
		Warnings:     []Warning{},
		Summary:      map[string]float64{},
	}
}

// AddAssumption appends an assumption entry.
func (r *Results) AddAssumption(parameter, value, source string) {
	r.Assumptions = append(r.Assumptions, Assumption{Parameter: parameter, Value: value, Source: source})
}

// AddWarning appends a warning entry.
func (r *Results) AddWarning(field, message string, sev Severity) {
	r.Warnings = append(r.Warnings, Warning{Field: field, Message: message, Severity: sev})
}
