// Package gas implements biogas conditioning and upgrading to
// pipeline-quality renewable natural gas. The stage math here is shared: the
// solids-to-gas calculator routes digester gas through it, and the gas-only
// calculator applies it directly to a supplied biogas stream.
package gas

import (
	"fmt"

	"massbal/internal/criteria"
	"massbal/pkg/api"
	"massbal/pkg/units"
)

// UpgradeDetail carries the derived quantities the equipment sizing and
// summary layers need beyond the stage records themselves.
type UpgradeDetail struct {
	RawSCFM       float64
	ConditionedSCFM float64
	ProductSCFM   float64
	TailGasSCFM   float64
	PowerKW       float64
	RNGMMBtuDay   float64
}

// Condition applies fixed-efficiency H2S and siloxane removal and moisture
// removal to the raw biogas stream, with a small total volume loss. Methane
// content is carried through unchanged in percentage terms: the lost volume
// is moisture and purge, not product gas.
func Condition(gc criteria.GasCriteria, raw api.Stream) api.Stage {
	out := raw
	out.Flow = raw.Flow * (1 - gc.ConditioningLoss)
	out.H2SPPM = raw.H2SPPM * (1 - gc.H2SRemoval)
	out.SiloxanesPPB = raw.SiloxanesPPB * (1 - gc.SiloxaneRemoval)

	return api.Stage{
		Type:     api.StageConditioning,
		Name:     "Gas Conditioning",
		Influent: raw,
		Effluent: out,
		Removals: map[string]float64{
			"h2s":       gc.H2SRemoval,
			"siloxanes": gc.SiloxaneRemoval,
		},
		Criteria: []api.Criterion{
			{Name: "H2S removal", Value: gc.H2SRemoval * 100, Unit: "%", Source: criteria.SourceWEF57},
			{Name: "siloxane removal", Value: gc.SiloxaneRemoval * 100, Unit: "%", Source: criteria.SourceWEF57},
			{Name: "moisture dewpoint", Value: gc.DewpointF, Unit: "degF", Source: criteria.SourceWEF57},
			{Name: "volume loss", Value: gc.ConditioningLoss * 100, Unit: "%", Source: criteria.SourceDefault},
		},
		Notes: fmt.Sprintf("Moisture removed to %.0f degF dewpoint ahead of upgrading.", gc.DewpointF),
	}
}

// Upgrade recovers methane from the conditioned stream into a product stream
// at the target purity. Product volume is recovered methane divided by the
// purity fraction; the volumetric remainder is tail gas routed to the
// thermal oxidizer. Electrical demand applies the per-scf coefficient to the
// raw, pre-conditioning flow.
func Upgrade(gc criteria.GasCriteria, conditioned api.Stream, rawSCFM float64) (api.Stage, UpgradeDetail) {
	methaneIn := conditioned.Flow * conditioned.CH4Pct / 100.0
	recovered := methaneIn * gc.MethaneRecovery
	productFlow := recovered / gc.ProductPurity
	tail := conditioned.Flow - productFlow
	if tail < 0 {
		tail = 0
	}

	product := api.Stream{
		Flow:         productFlow,
		FlowUnit:     "scfm",
		CH4Pct:       gc.ProductPurity * 100,
		CO2Pct:       (1 - gc.ProductPurity) * 100,
		H2SPPM:       conditioned.H2SPPM,
		HeatingValue: gc.ProductPurity * units.MethaneHHVBtu,
	}

	powerKW := rawSCFM * gc.UpgradingKWhPerSCF * 60.0
	detail := UpgradeDetail{
		RawSCFM:         rawSCFM,
		ConditionedSCFM: conditioned.Flow,
		ProductSCFM:     productFlow,
		TailGasSCFM:     tail,
		PowerKW:         powerKW,
		RNGMMBtuDay:     units.SCFMToSCFD(productFlow) * product.HeatingValue / 1e6,
	}

	stage := api.Stage{
		Type:     api.StageUpgrading,
		Name:     "Gas Upgrading",
		Influent: conditioned,
		Effluent: product,
		Removals: map[string]float64{"ch4_slip": 1 - gc.MethaneRecovery},
		Criteria: []api.Criterion{
			{Name: "methane recovery", Value: gc.MethaneRecovery * 100, Unit: "%", Source: criteria.SourceWEF57},
			{Name: "product purity", Value: gc.ProductPurity * 100, Unit: "% CH4", Source: criteria.SourceWEF57},
			{Name: "specific power", Value: gc.UpgradingKWhPerSCF, Unit: "kWh/scf raw gas", Source: criteria.SourceDefault},
		},
		Notes: fmt.Sprintf("%.0f scfm tail gas to thermal oxidizer.", tail),
	}
	return stage, detail
}
