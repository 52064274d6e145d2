package gas

import (
	"fmt"

	"massbal/internal/criteria"
	"massbal/internal/equip"
	"massbal/pkg/api"
	"massbal/pkg/units"
)

const processArea = "Gas Train"

// AddEquipment sizes the conditioning, upgrading, compression, and flare
// equipment for a gas train and appends it to the builder. Both the
// solids-to-gas and gas-only calculators call this with their own flows.
func AddEquipment(b *equip.Builder, gc criteria.GasCriteria, d UpgradeDetail) {
	mediaFt3 := d.RawSCFM * gc.MediaEBCTMin
	b.Add(api.EquipmentItem{
		ProcessArea: processArea,
		Type:        "H2S Removal Vessel",
		Description: "Iron-sponge media vessels, lead/lag",
		Quantity:    2,
		Specs: map[string]api.SpecEntry{
			"media_volume_each": {Value: units.Round(mediaFt3/2, 0), Unit: "ft3"},
			"gas_flow":          {Value: units.Round(d.RawSCFM, 0), Unit: "scfm"},
		},
		DesignBasis: fmt.Sprintf("%.0f min empty-bed contact time at %.0f scfm raw biogas; %s",
			gc.MediaEBCTMin, d.RawSCFM, criteria.SourceWEF57),
	})

	b.Add(api.EquipmentItem{
		ProcessArea: processArea,
		Type:        "Siloxane Removal Vessel",
		Description: "Activated-carbon polishing vessels, lead/lag",
		Quantity:    2,
		Specs: map[string]api.SpecEntry{
			"gas_flow": {Value: units.Round(d.RawSCFM, 0), Unit: "scfm"},
		},
		DesignBasis: fmt.Sprintf("Carbon polishing to %.0f%% siloxane removal at %.0f scfm; %s",
			gc.SiloxaneRemoval*100, d.RawSCFM, criteria.SourceWEF57),
	})

	b.Add(api.EquipmentItem{
		ProcessArea: processArea,
		Type:        "Gas Drying Skid",
		Description: "Refrigerated dryer with reheat",
		Quantity:    1,
		Specs: map[string]api.SpecEntry{
			"gas_flow": {Value: units.Round(d.RawSCFM, 0), Unit: "scfm"},
			"dewpoint": {Value: gc.DewpointF, Unit: "degF"},
		},
		DesignBasis: fmt.Sprintf("Moisture removal to %.0f degF dewpoint at %.0f scfm; %s",
			gc.DewpointF, d.RawSCFM, criteria.SourceWEF57),
	})

	b.Add(api.EquipmentItem{
		ProcessArea: processArea,
		Type:        "Membrane Upgrading Skid",
		Description: "Multi-stage membrane methane separation",
		Quantity:    1,
		Specs: map[string]api.SpecEntry{
			"inlet_flow":   {Value: units.Round(d.ConditionedSCFM, 0), Unit: "scfm"},
			"product_flow": {Value: units.Round(d.ProductSCFM, 0), Unit: "scfm"},
			"power":        {Value: units.Round(d.PowerKW, 0), Unit: "kW"},
		},
		DesignBasis: fmt.Sprintf("%.1f%% methane recovery to %.0f%% purity; %.4f kWh/scf on %.0f scfm raw gas; %s",
			gc.MethaneRecovery*100, gc.ProductPurity*100, gc.UpgradingKWhPerSCF, d.RawSCFM, criteria.SourceWEF57),
	})

	compKW := units.SCFMToSCFD(d.ProductSCFM) / 1000.0 * gc.CompressionKWhKscf / 24.0
	b.Add(api.EquipmentItem{
		ProcessArea: processArea,
		Type:        "Product Gas Compressor",
		Description: "Reciprocating compressors to pipeline pressure, duty + standby",
		Quantity:    2,
		Specs: map[string]api.SpecEntry{
			"capacity": {Value: units.Round(d.ProductSCFM, 0), Unit: "scfm"},
			"power":    {Value: units.Round(compKW, 1), Unit: "kW"},
		},
		DesignBasis: fmt.Sprintf("%.1f kWh/1,000 scf product gas at %.0f scfm; %s",
			gc.CompressionKWhKscf, d.ProductSCFM, criteria.SourceDefault),
	})

	b.Add(api.EquipmentItem{
		ProcessArea: processArea,
		Type:        "Enclosed Flare / Thermal Oxidizer",
		Description: "Tail gas destruction, rated for full raw biogas flow",
		Quantity:    1,
		Specs: map[string]api.SpecEntry{
			"tail_gas_flow": {Value: units.Round(d.TailGasSCFM, 0), Unit: "scfm"},
			"rated_flow":    {Value: units.Round(d.RawSCFM, 0), Unit: "scfm"},
		},
		DesignBasis: fmt.Sprintf("Continuous duty on %.0f scfm tail gas; rated for the full %.0f scfm raw stream during upgrading outages; %s",
			d.TailGasSCFM, d.RawSCFM, criteria.SourceWEF57),
	})
}
