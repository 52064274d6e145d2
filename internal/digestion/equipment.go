package digestion

import (
	"fmt"

	"massbal/internal/criteria"
	"massbal/internal/equip"
	"massbal/pkg/api"
	"massbal/pkg/units"
)

const processArea = "Digestion"

// addEquipment sizes the solids-side equipment. Gas-side equipment is added
// separately by the shared gas package.
func (c *Calculator) addEquipment(b *equip.Builder, blend Blend, s DigesterSizing, dew DewateringResult, res *api.Results) {
	dc := c.design.Digestion

	hopperTons := blend.TotalTPD * dc.ReceivingDays
	b.Add(api.EquipmentItem{
		ProcessArea: processArea,
		Type:        "Receiving & Feed System",
		Description: "Receiving hopper with feed pumps, duty + standby",
		Quantity:    1,
		Specs: map[string]api.SpecEntry{
			"storage":   {Value: units.Round(hopperTons, 0), Unit: "tons"},
			"feed_rate": {Value: units.Round(blend.TotalTPD, 1), Unit: "tons/day"},
		},
		DesignBasis: fmt.Sprintf("%.0f days of feed storage at %.1f tons/day; %s",
			dc.ReceivingDays, blend.TotalTPD, criteria.SourceMOP8),
	})

	eachM3 := s.TotalVolumeM3 / float64(s.Vessels)
	b.Add(api.EquipmentItem{
		ProcessArea: processArea,
		Type:        "Anaerobic Digester",
		Description: "Mesophilic CSTR digester vessels with gas holder covers",
		Quantity:    s.Vessels,
		Specs: map[string]api.SpecEntry{
			"volume_each": {Value: units.Round(eachM3, 0), Unit: "m3"},
			"heating":     {Value: units.Round(s.HeatingKW, 0), Unit: "kW"},
			"mixing":      {Value: units.Round(s.MixingKW, 1), Unit: "kW"},
		},
		DesignBasis: fmt.Sprintf("%s governs: max of HRT volume (%.0f m3 at %.0f d) and OLR volume (%.0f m3 at %.1f kg VS/m3-d), plus %.0f%% headspace; heat to %.0f degC with %.0f%% losses, mixing at %.0f W/m3; %s",
			s.Governing, s.VolumeHRTM3, dc.HRTDays, s.VolumeOLRM3, dc.OLRKgVSM3Day,
			dc.HeadspaceFraction*100, dc.OperatingTempC, dc.HeatLossFraction*100, dc.MixingWPerM3,
			criteria.SourceMOP8),
	})
	if s.Vessels > 1 {
		res.AddAssumption("digester vessel count", fmt.Sprintf("%d (active volume above %.0f m3)", s.Vessels, dc.TwoVesselThreshM3), criteria.SourceDefault)
	}

	solidsLbHr := dew.CakeSolidsTPD * units.LbPerTon / 24.0
	b.Add(api.EquipmentItem{
		ProcessArea: processArea,
		Type:        "Dewatering Centrifuge",
		Description: "Decanter centrifuges, duty + standby",
		Quantity:    2,
		Specs: map[string]api.SpecEntry{
			"solids_loading": {Value: units.Round(solidsLbHr, 0), Unit: "lb/hr"},
			"cake_solids":    {Value: dc.CakeSolidsPct, Unit: "%"},
		},
		DesignBasis: fmt.Sprintf("%.0f%% capture to %.0f%% cake on %.0f lb/hr dry solids; %s",
			dc.SolidsCapture*100, dc.CakeSolidsPct, solidsLbHr, criteria.SourceMOP8),
	})

	filtrateGPM := units.MGDToGPM(dew.FiltrateMGD)
	b.Add(api.EquipmentItem{
		ProcessArea: processArea,
		Type:        "Filtrate Treatment System",
		Description: "Packaged biological filtrate polishing unit",
		Quantity:    1,
		Specs: map[string]api.SpecEntry{
			"capacity": {Value: units.Round(filtrateGPM, 1), Unit: "gpm"},
		},
		DesignBasis: fmt.Sprintf("%.0f%% BOD and %.0f%% TSS removal on %.1f gpm filtrate ahead of sewer discharge; %s",
			dc.FiltrateBODRem*100, dc.FiltrateTSSRem*100, filtrateGPM, criteria.SourceMOP8),
	})
}
