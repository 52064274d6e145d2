// Package engine is the top-level entry point: it selects the calculator for
// an intake record's project type, runs it, and wraps the results with run
// metadata for callers that archive or report on runs.
package engine

import (
	"time"

	"github.com/google/uuid"

	"massbal/internal/criteria"
	"massbal/internal/digestion"
	"massbal/internal/gas"
	"massbal/internal/liquid"
	"massbal/pkg/api"
	"massbal/pkg/units"
)

// Calculator is the per-project-type computation behind the engine. All three
// implementations are pure: no I/O, no shared mutable state, one results
// record per call.
type Calculator interface {
	Run(intake *api.Intake) *api.Results
}

// Engine dispatches intakes to calculators. It is safe for concurrent use:
// the design tables are immutable and every run's state is local to the call.
type Engine struct {
	design     *criteria.Design
	wastewater Calculator
	digestion  Calculator
	gas        Calculator
}

// New builds an engine over the supplied design standard.
func New(design *criteria.Design) *Engine {
	return &Engine{
		design:     design,
		wastewater: liquid.NewCalculator(design),
		digestion:  digestion.NewCalculator(design),
		gas:        gas.NewCalculator(design),
	}
}

// Run is one completed calculation with its metadata, the shape archived by
// the run store and returned by the API.
type Run struct {
	ID          string          `json:"id"`
	ProjectType api.ProjectType `json:"project_type"`
	ProjectName string          `json:"project_name,omitempty"`
	StartedAt   time.Time       `json:"started_at"`
	ElapsedMS   int64           `json:"elapsed_ms"`
	Results     *api.Results    `json:"results"`
}

// Calculate resolves the project type, runs the matching calculator, and
// returns the run record. An unresolvable project type yields a fully
// populated empty results record with one error warning, never an error.
func (e *Engine) Calculate(intake *api.Intake) *Run {
	start := time.Now()
	pt := resolveProjectType(intake)

	var res *api.Results
	switch pt {
	case api.ProjectWastewater:
		res = e.wastewater.Run(intake)
	case api.ProjectDigestion:
		res = e.digestion.Run(intake)
	case api.ProjectGasUpgrading:
		res = e.gas.Run(intake)
	default:
		res = api.NewResults(intake.ProjectType)
		res.AddWarning("ProjectType",
			"Project type is missing and could not be inferred from the feedstock units; no calculation was run",
			api.SeverityError)
	}

	if pt != intake.ProjectType && pt != "" {
		res.AddAssumption("project type", string(pt), "inferred from feedstock units")
	}

	return &Run{
		ID:          uuid.New().String(),
		ProjectType: pt,
		ProjectName: intake.ProjectName,
		StartedAt:   start.UTC(),
		ElapsedMS:   time.Since(start).Milliseconds(),
		Results:     res,
	}
}

// resolveProjectType returns the declared type when present, otherwise infers
// one from the unit family of the feedstock volumes: gas flow selects the
// upgrading train, a solids rate selects digestion, a liquid flow selects the
// wastewater train. Empty when nothing matches.
func resolveProjectType(intake *api.Intake) api.ProjectType {
	switch intake.ProjectType {
	case api.ProjectWastewater, api.ProjectDigestion, api.ProjectGasUpgrading:
		return intake.ProjectType
	}
	for _, fs := range intake.Feedstocks {
		switch units.UnitFamily(fs.Unit) {
		case units.FamilyGasFlow:
			return api.ProjectGasUpgrading
		case units.FamilySolidsRate:
			return api.ProjectDigestion
		case units.FamilyLiquidFlow:
			return api.ProjectWastewater
		}
	}
	return ""
}
