package digestion

import (
	"massbal/internal/criteria"
	"massbal/internal/equip"
	"massbal/internal/gas"
	"massbal/pkg/api"
	"massbal/pkg/units"
)

// Calculator runs the solids-to-gas mass balance: blend, digest, upgrade,
// dewater. It holds no per-run state.
type Calculator struct {
	design *criteria.Design
}

// NewCalculator creates a solids-to-gas calculator.
func NewCalculator(design *criteria.Design) *Calculator {
	return &Calculator{design: design}
}

// Run executes the full calculation. Zero feedstocks (or zero total feed
// rate) returns an otherwise-empty record with a single error-severity
// warning.
func (c *Calculator) Run(intake *api.Intake) *api.Results {
	res := api.NewResults(api.ProjectDigestion)
	dc := c.design.Digestion
	gc := c.design.Gas

	blend, ok := c.blendFeedstocks(intake, res)
	if !ok {
		return res
	}

	sizing := c.sizeDigester(blend, res)
	stages := c.digesterStages(blend, sizing)

	rawGas := api.Stream{
		Flow:         sizing.BiogasSCFM,
		FlowUnit:     "scfm",
		CH4Pct:       dc.MethaneFraction * 100,
		CO2Pct:       (1 - dc.MethaneFraction) * 100,
		H2SPPM:       dc.RawH2SPPM,
		SiloxanesPPB: dc.RawSiloxanesPPB,
		HeatingValue: dc.MethaneFraction * units.MethaneHHVBtu,
	}
	conditioning := gas.Condition(gc, rawGas)
	upgrading, detail := gas.Upgrade(gc, conditioning.Effluent, rawGas.Flow)
	stages = append(stages, conditioning, upgrading)

	dewStages, dew := c.dewateringStages(stages[1].Effluent)
	stages = append(stages, dewStages...)
	res.ADStages = stages

	b := equip.NewBuilder()
	c.addEquipment(b, blend, sizing, dew, res)
	gas.AddEquipment(b, gc, detail)
	res.Equipment = b.Items()

	// Single forward pass; there is no recycle feedback loop to iterate.
	res.Convergence = api.Convergence{Achieved: true, Iterations: 1}

	res.Summary["total_feed_tpd"] = units.Round(blend.TotalTPD, 1)
	res.Summary["digester_volume_m3"] = units.Round(sizing.TotalVolumeM3, 0)
	res.Summary["biogas_scfm"] = units.Round(sizing.BiogasSCFM, 1)
	res.Summary["rng_scfm"] = units.Round(detail.ProductSCFM, 1)
	res.Summary["rng_mmbtu_day"] = units.Round(detail.RNGMMBtuDay, 1)
	res.Summary["cake_tpd"] = units.Round(dew.CakeTPD, 1)

	return res
}
