// Package liquid implements the liquid-train calculator: it selects a
// treatment train from the intake record, runs stage-wise removals with
// recycle-stream feedback to a converged steady state, and sizes the
// equipment for each stage.
package liquid

import (
	"fmt"
	"sort"

	"massbal/internal/criteria"
	"massbal/pkg/api"
	"massbal/pkg/units"
)

// Calculator runs the liquid-train mass balance against an injected design
// standard. It holds no per-run state; concurrent Run calls are independent.
type Calculator struct {
	design *criteria.Design
}

// NewCalculator creates a liquid-train calculator.
func NewCalculator(design *criteria.Design) *Calculator {
	return &Calculator{design: design}
}

// Run executes the full calculation and returns a fully populated results
// record. Missing-input conditions return an otherwise-empty record with a
// single error-severity warning; they never return an error.
func (c *Calculator) Run(intake *api.Intake) *api.Results {
	res := api.NewResults(api.ProjectWastewater)

	influent, ok := c.buildInfluent(intake, res)
	if !ok {
		return res
	}

	targets := parseTargets(intake)
	train := selectTrain(intake, targets)

	stages, recycles, conv := c.converge(influent, train)
	res.LiquidStages = stages
	res.Recycles = recycles
	res.Convergence = conv
	if !conv.Achieved {
		res.AddWarning("convergence",
			fmt.Sprintf("Recycle streams did not converge within %d iterations (max relative change %.3f)",
				conv.Iterations, conv.MaxDelta),
			api.SeverityWarning)
	}

	c.checkTargets(stages, targets, res)

	res.Equipment = c.sizeEquipment(stages, influent, res)

	final := stages[len(stages)-1].Effluent
	res.Summary["plant_flow_mgd"] = units.Round(influent.Flow, 3)
	res.Summary["effluent_bod_mg_l"] = units.Round(final.BOD, 2)
	res.Summary["effluent_tss_mg_l"] = units.Round(final.TSS, 2)
	res.Summary["effluent_tkn_mg_l"] = units.Round(final.TKN, 2)

	return res
}

// buildInfluent extracts the nominal influent stream from the intake record.
// Flow is required; concentrations fall back to medium-strength domestic
// defaults with an assumption entry apiece.
func (c *Calculator) buildInfluent(intake *api.Intake, res *api.Results) (api.Stream, bool) {
	fields := intakeFields(intake)

	flowMGD := 0.0
	found := false
	for _, fs := range intake.Feedstocks {
		if v, ok := units.ParseNumber(fs.Volume); ok {
			if mgd, ok := units.NormalizeLiquidFlow(v, fs.Unit); ok {
				flowMGD += mgd
				found = true
			}
		}
	}
	if !found {
		if v, unit, ok := units.Extract(fields, "flow", units.FamilyLiquidFlow); ok {
			if mgd, ok := units.NormalizeLiquidFlow(v, unit); ok {
				flowMGD = mgd
				found = true
			}
		}
	}
	if !found || flowMGD <= 0 {
		res.AddWarning("Flow", "No influent flow found in the project intake; the liquid train cannot be calculated", api.SeverityError)
		return api.Stream{}, false
	}

	def := c.design.Influent
	s := api.Stream{Flow: flowMGD, FlowUnit: "MGD"}
	s.BOD = c.concentration(fields, "bod", def.BODMgL, res)
	s.COD = c.concentration(fields, "cod", def.CODMgL, res)
	s.TSS = c.concentration(fields, "tss", def.TSSMgL, res)
	s.TKN = c.concentration(fields, "tkn", def.TKNMgL, res)
	s.TP = c.concentration(fields, "tp", def.TPMgL, res)
	s.FOG = c.concentration(fields, "fog", def.FOGMgL, res)
	if v, _, ok := units.Extract(fields, "nh3", units.FamilyConcentration); ok {
		s.NH3 = v
	}
	if v, _, ok := units.Extract(fields, "no3", units.FamilyConcentration); ok {
		s.NO3 = v
	}
	return s, true
}

func (c *Calculator) concentration(fields []units.Field, key string, def float64, res *api.Results) float64 {
	if v, _, ok := units.Extract(fields, key, units.FamilyConcentration); ok && v >= 0 {
		return v
	}
	res.AddAssumption("influent "+key,
		fmt.Sprintf("%.0f mg/L", def),
		criteria.SourceMetcalfEddy+" (medium-strength domestic)")
	return def
}

// checkTargets compares predicted effluent against requested targets and
// flags exceedances. Advisory only; the calculation always completes.
func (c *Calculator) checkTargets(stages []api.Stage, t targets, res *api.Results) {
	final := stages[len(stages)-1].Effluent
	check := func(name string, predicted float64, target *float64) {
		if target == nil {
			return
		}
		if predicted > *target {
			res.AddWarning(name,
				fmt.Sprintf("Predicted effluent %s %.1f mg/L exceeds the requested target of %.1f mg/L",
					name, predicted, *target),
				api.SeverityWarning)
		}
	}
	check("BOD", final.BOD, t.BOD)
	check("TSS", final.TSS, t.TSS)
	check("TKN", final.TKN, t.TKN)
	check("NH3", final.NH3, t.NH3)
	check("TP", final.TP, t.TP)
	if t.TN != nil {
		check("TN", final.TKN+final.NO3, t.TN)
	}
}

// intakeFields flattens every spec value on the intake into loose fields for
// keyword extraction.
func intakeFields(intake *api.Intake) []units.Field {
	var fields []units.Field
	for _, fs := range intake.Feedstocks {
		for name, sv := range fs.Specs {
			display := sv.DisplayName
			if display == "" {
				display = name
			}
			fields = append(fields, units.Field{Name: display, Value: sv.Value, Unit: sv.Unit})
		}
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i].Name < fields[j].Name })
	return fields
}
