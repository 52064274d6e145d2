package digestion

import (
	"fmt"

	"massbal/internal/criteria"
	"massbal/pkg/api"
	"massbal/pkg/units"
)

// DigesterSizing is the digester design derived from the blend. Volume is
// governed by whichever of hydraulic retention time or organic loading rate
// demands more volume.
type DigesterSizing struct {
	FeedVolumeM3Day  float64
	VolumeHRTM3      float64
	VolumeOLRM3      float64
	ActiveVolumeM3   float64
	TotalVolumeM3    float64 // active + headspace
	Vessels          int
	Governing        string // "HRT" or "OLR"

	VSDestroyedKgDay float64
	BiogasM3Day      float64
	BiogasSCFM       float64
	MethaneSCFM      float64

	HeatingKW float64
	MixingKW  float64
}

// sizeDigester applies the HRT and OLR criteria independently and takes the
// larger required volume.
func (c *Calculator) sizeDigester(blend Blend, res *api.Results) DigesterSizing {
	dc := c.design.Digestion
	fd := c.design.Feedstock

	feedMassKgDay := blend.TotalTPD * units.LbPerTon / units.LbPerKg
	s := DigesterSizing{
		FeedVolumeM3Day: feedMassKgDay / (fd.SpecificGravity * 1000.0),
	}

	s.VolumeHRTM3 = s.FeedVolumeM3Day * dc.HRTDays
	s.VolumeOLRM3 = blend.VSMassKgDay / dc.OLRKgVSM3Day

	if s.VolumeHRTM3 >= s.VolumeOLRM3 {
		s.ActiveVolumeM3 = s.VolumeHRTM3
		s.Governing = "HRT"
	} else {
		s.ActiveVolumeM3 = s.VolumeOLRM3
		s.Governing = "OLR"
	}

	s.Vessels = 1
	if s.ActiveVolumeM3 > dc.TwoVesselThreshM3 {
		s.Vessels = 2
	}
	s.TotalVolumeM3 = s.ActiveVolumeM3 * (1 + dc.HeadspaceFraction)

	s.VSDestroyedKgDay = blend.VSMassKgDay * dc.VSDestruction
	s.BiogasM3Day = s.VSDestroyedKgDay * dc.GasYieldM3PerKgVSd
	s.BiogasSCFM = units.M3PerDayToSCFM(s.BiogasM3Day)
	s.MethaneSCFM = s.BiogasSCFM * dc.MethaneFraction

	// Heating raises the feed to operating temperature; mixing scales with
	// active volume.
	deltaT := dc.OperatingTempC - dc.FeedTempC
	s.HeatingKW = feedMassKgDay * 4.186 * deltaT / 86400.0 * (1 + dc.HeatLossFraction)
	s.MixingKW = s.ActiveVolumeM3 * dc.MixingWPerM3 / 1000.0

	res.AddAssumption("VS destruction", fmt.Sprintf("%.0f%%", dc.VSDestruction*100), criteria.SourceMOP8)
	res.AddAssumption("specific biogas yield", fmt.Sprintf("%.2f m3/kg VS destroyed", dc.GasYieldM3PerKgVSd), criteria.SourceWEF57)
	res.AddAssumption("biogas methane fraction", fmt.Sprintf("%.0f%%", dc.MethaneFraction*100), criteria.SourceWEF57)

	return s
}

// digesterStages builds the receiving and digester stage records. Downstream
// stages derive their inputs from the digester effluent alone.
func (c *Calculator) digesterStages(blend Blend, s DigesterSizing) []api.Stage {
	dc := c.design.Digestion

	feed := api.Stream{
		Flow:              blend.TotalTPD,
		FlowUnit:          "tons/day",
		TotalSolidsPct:    blend.TSPct,
		VolatileSolidsPct: blend.VSOfTSPct,
	}

	receiving := api.Stage{
		Type:     api.StageReceiving,
		Name:     "Feedstock Receiving & Blending",
		Influent: feed,
		Effluent: feed,
		Criteria: []api.Criterion{
			{Name: "blended C:N ratio", Value: units.Round(blend.CN, 1), Unit: "", Source: criteria.SourceMOP8},
			{Name: "blended BMP", Value: units.Round(blend.BMP, 3), Unit: "m3 CH4/kg VS", Source: criteria.SourceMOP8},
		},
		Notes: fmt.Sprintf("%d feedstock(s) blended to %.1f tons/day at %.1f%% TS.",
			len(blend.Feeds), blend.TotalTPD, blend.TSPct),
	}

	// Digestate loses the destroyed VS mass; the remainder carries through.
	destroyedTPD := s.VSDestroyedKgDay * units.LbPerKg / units.LbPerTon
	digestateTPD := blend.TotalTPD - destroyedTPD
	solidsTPD := blend.TotalTPD*blend.TSPct/100 - destroyedTPD
	digestate := api.Stream{
		Flow:     digestateTPD,
		FlowUnit: "tons/day",
	}
	if digestateTPD > 0 {
		digestate.TotalSolidsPct = solidsTPD / digestateTPD * 100
	}

	digester := api.Stage{
		Type:     api.StageDigester,
		Name:     "Anaerobic Digestion",
		Influent: feed,
		Effluent: digestate,
		Criteria: []api.Criterion{
			{Name: "HRT", Value: dc.HRTDays, Unit: "days", Source: criteria.SourceMOP8},
			{Name: "OLR", Value: dc.OLRKgVSM3Day, Unit: "kg VS/m3-d", Source: criteria.SourceMOP8},
			{Name: "operating temperature", Value: dc.OperatingTempC, Unit: "degC", Source: criteria.SourceMOP8},
			{Name: "active volume", Value: units.Round(s.ActiveVolumeM3, 0), Unit: "m3", Source: criteria.SourceMOP8},
		},
		Notes: fmt.Sprintf("%s governs sizing (%.0f m3 vs %.0f m3); %.0f m3/d biogas at %.0f%% CH4.",
			s.Governing, s.VolumeHRTM3, s.VolumeOLRM3, s.BiogasM3Day, dc.MethaneFraction*100),
	}

	return []api.Stage{receiving, digester}
}
