package digestion

import (
	"fmt"

	"massbal/internal/criteria"
	"massbal/pkg/api"
	"massbal/pkg/units"
)

// DewateringResult carries the solids/liquids split derived from the
// digestate stream.
type DewateringResult struct {
	CakeTPD         float64
	CakeSolidsTPD   float64
	FiltrateMGD     float64
	FiltrateBODMgL  float64
	FiltrateTSSMgL  float64
}

// dewateringStages splits the digestate into cake and filtrate and runs the
// filtrate through a cleanup step before discharge. All inputs come from the
// digester effluent, never from raw feedstock data.
func (c *Calculator) dewateringStages(digestate api.Stream) ([]api.Stage, DewateringResult) {
	dc := c.design.Digestion

	solidsTPD := digestate.Flow * digestate.TotalSolidsPct / 100
	capturedTPD := solidsTPD * dc.SolidsCapture
	cakeTPD := 0.0
	if dc.CakeSolidsPct > 0 {
		cakeTPD = capturedTPD / (dc.CakeSolidsPct / 100)
	}

	filtrateTPD := digestate.Flow - cakeTPD
	if filtrateTPD < 0 {
		filtrateTPD = 0
	}
	filtrateMGD := filtrateTPD * units.LbPerTon / units.LbPerGallon / units.GallonsPerMG

	d := DewateringResult{
		CakeTPD:        cakeTPD,
		CakeSolidsTPD:  capturedTPD,
		FiltrateMGD:    filtrateMGD,
		FiltrateBODMgL: dc.DigestateBODMgL,
		FiltrateTSSMgL: dc.DigestateTSSMgL,
	}

	cake := api.Stream{Flow: cakeTPD, FlowUnit: "tons/day", TotalSolidsPct: dc.CakeSolidsPct}
	dewatering := api.Stage{
		Type:     api.StageDewatering,
		Name:     "Digestate Dewatering",
		Influent: digestate,
		Effluent: cake,
		Criteria: []api.Criterion{
			{Name: "cake solids", Value: dc.CakeSolidsPct, Unit: "%", Source: criteria.SourceMOP8},
			{Name: "solids capture", Value: dc.SolidsCapture * 100, Unit: "%", Source: criteria.SourceMOP8},
		},
		Notes: fmt.Sprintf("%.2f MGD filtrate to the liquid cleanup step.", filtrateMGD),
	}

	filtrateIn := api.Stream{
		Flow:     filtrateMGD,
		FlowUnit: "MGD",
		BOD:      dc.DigestateBODMgL,
		TSS:      dc.DigestateTSSMgL,
	}
	filtrateOut := filtrateIn
	filtrateOut.BOD *= 1 - dc.FiltrateBODRem
	filtrateOut.TSS *= 1 - dc.FiltrateTSSRem

	filtrate := api.Stage{
		Type:     api.StageFiltrate,
		Name:     "Filtrate Treatment",
		Influent: filtrateIn,
		Effluent: filtrateOut,
		Removals: map[string]float64{"bod": dc.FiltrateBODRem, "tss": dc.FiltrateTSSRem},
		Notes:    "Filtrate polished ahead of sewer discharge.",
	}

	return []api.Stage{dewatering, filtrate}, d
}
