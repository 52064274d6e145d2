// Package api defines the shared contracts between the intake layer, the
// mass-balance engine, and its downstream consumers.
package api

// ProjectType selects which process calculator runs for a scenario.
type ProjectType string

const (
	// ProjectWastewater is a liquid-train treatment plant.
	ProjectWastewater ProjectType = "wastewater"
	// ProjectDigestion is an anaerobic digestion + gas upgrading facility.
	ProjectDigestion ProjectType = "digestion"
	// ProjectGasUpgrading upgrades an existing biogas stream with no digester.
	ProjectGasUpgrading ProjectType = "gas_upgrading"
)

// SpecValue is a single named parameter captured during intake, with its
// display unit and extraction provenance.
type SpecValue struct {
	DisplayName string  `json:"display_name"`
	Value       string  `json:"value"`
	Unit        string  `json:"unit"`
	Confidence  float64 `json:"confidence"`
	Provenance  string  `json:"provenance,omitempty"` // document, chat, default
}

// Feedstock is one feed entry on a project: a material label, a volume with
// its declared unit, and whatever spec values intake managed to extract.
type Feedstock struct {
	TypeLabel string               `json:"type_label"`
	Volume    string               `json:"volume"`
	Unit      string               `json:"unit"`
	Specs     map[string]SpecValue `json:"specs,omitempty"`
}

// Intake is the unified project-intake record (UPIF) consumed by the engine.
// It is treated as immutable for the duration of a calculation.
type Intake struct {
	ProjectType ProjectType `json:"project_type"`
	ProjectName string      `json:"project_name,omitempty"`

	Feedstocks []Feedstock `json:"feedstocks"`

	Location           string   `json:"location,omitempty"`
	OutputRequirements string   `json:"output_requirements,omitempty"`
	Constraints        []string `json:"constraints,omitempty"`

	// OutputAcceptance holds named acceptance criteria keyed by output
	// profile (e.g. "surface_discharge" -> {"BOD": "10 mg/L"}). The liquid
	// train derives effluent targets from it.
	OutputAcceptance map[string]map[string]string `json:"output_acceptance,omitempty"`
}
