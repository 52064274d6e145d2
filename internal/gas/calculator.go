package gas

import (
	"fmt"
	"sort"

	"massbal/internal/criteria"
	"massbal/internal/equip"
	"massbal/pkg/api"
	"massbal/pkg/units"
)

// Calculator upgrades an already-existing biogas stream: no digester, only
// conditioning, upgrading, compression, and flare.
type Calculator struct {
	design *criteria.Design
}

// NewCalculator creates a gas-only calculator.
func NewCalculator(design *criteria.Design) *Calculator {
	return &Calculator{design: design}
}

// Run conditions and upgrades the supplied biogas stream to pipeline
// quality. Missing flow returns an empty record with one error warning.
func (c *Calculator) Run(intake *api.Intake) *api.Results {
	res := api.NewResults(api.ProjectGasUpgrading)
	gc := c.design.Gas

	raw, ok := c.buildRawGas(intake, res)
	if !ok {
		return res
	}

	conditioning := Condition(gc, raw)
	upgrading, detail := Upgrade(gc, conditioning.Effluent, raw.Flow)
	res.ADStages = append(res.ADStages, conditioning, upgrading)

	b := equip.NewBuilder()
	AddEquipment(b, gc, detail)
	res.Equipment = b.Items()

	res.Convergence = api.Convergence{Achieved: true, Iterations: 1}

	res.Summary["raw_biogas_scfm"] = units.Round(detail.RawSCFM, 1)
	res.Summary["rng_scfm"] = units.Round(detail.ProductSCFM, 1)
	res.Summary["rng_mmbtu_day"] = units.Round(detail.RNGMMBtuDay, 1)
	res.Summary["upgrading_power_kw"] = units.Round(detail.PowerKW, 1)

	return res
}

// buildRawGas extracts the biogas flow and composition from intake. Flow is
// required; composition falls back to typical digester gas with assumption
// entries.
func (c *Calculator) buildRawGas(intake *api.Intake, res *api.Results) (api.Stream, bool) {
	gc := c.design.Gas
	dc := c.design.Digestion

	var fields []units.Field
	flowSCFM := 0.0
	found := false
	for _, fs := range intake.Feedstocks {
		if v, ok := units.ParseNumber(fs.Volume); ok {
			if scfm, ok := units.NormalizeGasFlow(v, fs.Unit); ok {
				flowSCFM += scfm
				found = true
			}
		}
		for name, sv := range fs.Specs {
			display := sv.DisplayName
			if display == "" {
				display = name
			}
			fields = append(fields, units.Field{Name: display, Value: sv.Value, Unit: sv.Unit})
		}
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i].Name < fields[j].Name })
	if !found {
		if v, unit, ok := units.Extract(fields, "flow", units.FamilyGasFlow); ok {
			if scfm, ok := units.NormalizeGasFlow(v, unit); ok {
				flowSCFM = scfm
				found = true
			}
		}
	}
	if !found || flowSCFM <= 0 {
		res.AddWarning("Flow", "No biogas flow found in the project intake; the upgrading train cannot be calculated", api.SeverityError)
		return api.Stream{}, false
	}

	raw := api.Stream{Flow: flowSCFM, FlowUnit: "scfm"}

	if v, _, ok := units.Extract(fields, "ch4", units.FamilyPercent); ok && v > 0 {
		raw.CH4Pct = v
	} else {
		raw.CH4Pct = gc.DefaultCH4Pct
		res.AddAssumption("biogas methane content", fmt.Sprintf("%.0f%%", gc.DefaultCH4Pct), criteria.SourceWEF57)
	}
	if v, _, ok := units.Extract(fields, "co2", units.FamilyPercent); ok && v > 0 {
		raw.CO2Pct = v
	} else {
		raw.CO2Pct = gc.DefaultCO2Pct
	}
	if v, _, ok := units.Extract(fields, "h2s", units.FamilyConcentration); ok {
		raw.H2SPPM = v
	} else {
		raw.H2SPPM = dc.RawH2SPPM
		res.AddAssumption("biogas H2S", fmt.Sprintf("%.0f ppmv", dc.RawH2SPPM), criteria.SourceWEF57)
	}
	if v, _, ok := units.Extract(fields, "siloxanes", units.FamilyConcentration); ok {
		raw.SiloxanesPPB = v
	} else {
		raw.SiloxanesPPB = dc.RawSiloxanesPPB
		res.AddAssumption("biogas siloxanes", fmt.Sprintf("%.0f ppbv", dc.RawSiloxanesPPB), criteria.SourceWEF57)
	}
	raw.HeatingValue = raw.CH4Pct / 100.0 * units.MethaneHHVBtu

	return raw, true
}
