package liquid

import (
	"fmt"
	"math"

	"massbal/internal/criteria"
	"massbal/internal/equip"
	"massbal/pkg/api"
	"massbal/pkg/units"
)

const processArea = "Liquid Train"

// sizeEquipment derives the equipment list from the converged stage states.
// Each item applies the stage's design criterion to its flow or load and
// records the governing formula in the design basis.
func (c *Calculator) sizeEquipment(stages []api.Stage, influent api.Stream, res *api.Results) []api.EquipmentItem {
	b := equip.NewBuilder()
	lc := c.design.Liquid

	avgMGD := influent.Flow
	peakMGD := avgMGD * lc.PeakingFactor
	peakGPM := units.MGDToGPM(peakMGD)
	res.AddAssumption("peaking factor", fmt.Sprintf("%.1f", lc.PeakingFactor), criteria.SourceTenState)

	for _, s := range stages {
		switch s.Type {
		case api.StagePreliminary:
			b.Add(api.EquipmentItem{
				ProcessArea: processArea,
				Type:        "Mechanical Fine Screen",
				Description: "Influent screening, duty + standby",
				Quantity:    2,
				Specs: map[string]api.SpecEntry{
					"capacity": {Value: units.Round(peakGPM, 0), Unit: "gpm"},
				},
				DesignBasis: fmt.Sprintf("Each unit rated for peak hour flow of %.0f gpm (%.1f x average); %s",
					peakGPM, lc.PeakingFactor, criteria.SourceTenState),
			})
			gritGal := peakGPM * lc.GritDetentionMin
			b.Add(api.EquipmentItem{
				ProcessArea: processArea,
				Type:        "Vortex Grit Chamber",
				Description: "Grit removal downstream of screening",
				Quantity:    1,
				Specs: map[string]api.SpecEntry{
					"volume": {Value: units.Round(gritGal, 0), Unit: "gal"},
				},
				DesignBasis: fmt.Sprintf("%.0f min detention at peak flow %.0f gpm; %s",
					lc.GritDetentionMin, peakGPM, criteria.SourceMetcalfEddy),
			})

		case api.StageEqualization:
			eqGal := units.MGDToGPD(avgMGD) * lc.EqualizationHours / 24.0
			b.Add(api.EquipmentItem{
				ProcessArea: processArea,
				Type:        "Equalization Basin",
				Description: "Flow equalization with submersible mixers",
				Quantity:    1,
				Specs: map[string]api.SpecEntry{
					"volume": {Value: units.Round(eqGal, 0), Unit: "gal"},
					"mixing": {Value: units.Round(eqGal/1000*0.03, 1), Unit: "hp"},
				},
				DesignBasis: fmt.Sprintf("%.0f h detention at average flow %.2f MGD; mixing at 0.03 hp/1,000 gal; %s",
					lc.EqualizationHours, avgMGD, criteria.SourceMetcalfEddy),
			})

		case api.StagePrimary:
			areaFt2 := units.MGDToGPD(s.Influent.Flow) / lc.PrimarySORGpdFt2
			b.Add(api.EquipmentItem{
				ProcessArea: processArea,
				Type:        "Primary Clarifier",
				Description: "Circular primary clarifiers",
				Quantity:    2,
				Specs: map[string]api.SpecEntry{
					"surface_area_each": {Value: units.Round(areaFt2/2, 0), Unit: "ft2"},
					"diameter_each":     {Value: units.Round(math.Sqrt(4*areaFt2/2/math.Pi), 1), Unit: "ft"},
				},
				DesignBasis: fmt.Sprintf("Surface overflow rate %.0f gpd/ft2 at %.2f MGD; two units in parallel; %s",
					lc.PrimarySORGpdFt2, s.Influent.Flow, criteria.SourceTenState),
			})

		case api.StageActivatedSludge, api.StageNitrification:
			c.addAerationEquipment(b, s, lc)

		case api.StageMBR:
			c.addAerationEquipment(b, s, lc)
			memFt2 := units.MGDToGPD(s.Influent.Flow) / lc.MBRFluxGFD
			b.Add(api.EquipmentItem{
				ProcessArea: processArea,
				Type:        "Membrane Cassette System",
				Description: "Submerged ultrafiltration membranes, two trains",
				Quantity:    2,
				Specs: map[string]api.SpecEntry{
					"membrane_area": {Value: units.Round(memFt2, 0), Unit: "ft2"},
				},
				DesignBasis: fmt.Sprintf("Design flux %.0f gfd at %.2f MGD; %s",
					lc.MBRFluxGFD, s.Influent.Flow, criteria.SourceMOP8),
			})

		case api.StageTricklingFilter:
			bodLb := units.MassLoadLbPerDay(s.Influent.Flow, s.Influent.BOD)
			mediaKcf := bodLb / lc.TFLoadingLbPerKcfD
			b.Add(api.EquipmentItem{
				ProcessArea: processArea,
				Type:        "Trickling Filter",
				Description: "Plastic-media trickling filter with rotary distributor",
				Quantity:    1,
				Specs: map[string]api.SpecEntry{
					"media_volume": {Value: units.Round(mediaKcf*1000, 0), Unit: "ft3"},
				},
				DesignBasis: fmt.Sprintf("Organic loading %.0f lb BOD/1,000 ft3-d on a %.0f lb/d BOD load; %s",
					lc.TFLoadingLbPerKcfD, bodLb, criteria.SourceMetcalfEddy),
			})

		case api.StageTertiaryFilter:
			filterFt2 := peakGPM / lc.FilterLoadingGpmFt2
			b.Add(api.EquipmentItem{
				ProcessArea: processArea,
				Type:        "Tertiary Disk Filter",
				Description: "Cloth-media disk filters, duty + standby",
				Quantity:    2,
				Specs: map[string]api.SpecEntry{
					"filter_area": {Value: units.Round(filterFt2, 0), Unit: "ft2"},
				},
				DesignBasis: fmt.Sprintf("Hydraulic loading %.1f gpm/ft2 at peak flow %.0f gpm; %s",
					lc.FilterLoadingGpmFt2, peakGPM, criteria.SourceTenState),
			})

		case api.StageDenitrification:
			anoxGal := units.MGDToGPD(s.Influent.Flow) * 2.0 / 24.0
			b.Add(api.EquipmentItem{
				ProcessArea: processArea,
				Type:        "Anoxic Basin",
				Description: "Post-anoxic denitrification with carbon feed",
				Quantity:    1,
				Specs: map[string]api.SpecEntry{
					"volume": {Value: units.Round(anoxGal, 0), Unit: "gal"},
				},
				DesignBasis: fmt.Sprintf("2 h anoxic detention at %.2f MGD with supplemental carbon; %s",
					s.Influent.Flow, criteria.SourceMetcalfEddy),
			})

		case api.StagePhosRemoval:
			pRemovedLb := units.MassLoadLbPerDay(s.Influent.Flow, s.Influent.TP-s.Effluent.TP)
			alumLb := pRemovedLb * lc.AlumLbPerLbP
			b.Add(api.EquipmentItem{
				ProcessArea: processArea,
				Type:        "Alum Feed System",
				Description: "Chemical phosphorus removal, duty + standby metering pumps",
				Quantity:    2,
				Specs: map[string]api.SpecEntry{
					"alum_feed": {Value: units.Round(alumLb, 0), Unit: "lb/day"},
				},
				DesignBasis: fmt.Sprintf("%.1f lb alum per lb P removed on %.0f lb/d P removed; %s",
					lc.AlumLbPerLbP, pRemovedLb, criteria.SourceMOP8),
			})

		case api.StageDisinfection:
			b.Add(api.EquipmentItem{
				ProcessArea: processArea,
				Type:        "UV Disinfection System",
				Description: "Open-channel UV banks",
				Quantity:    1,
				Specs: map[string]api.SpecEntry{
					"capacity": {Value: units.Round(peakGPM, 0), Unit: "gpm"},
					"dose":     {Value: lc.UVDoseMJCm2, Unit: "mJ/cm2"},
				},
				DesignBasis: fmt.Sprintf("Validated dose %.0f mJ/cm2 at peak flow %.0f gpm; %s",
					lc.UVDoseMJCm2, peakGPM, criteria.SourceTenState),
			})
		}

		if isSuspendedGrowth(s.Type) {
			sorFt2 := units.MGDToGPD(s.Influent.Flow) / lc.SecondarySORGpdFt2
			if s.Type == api.StageActivatedSludge {
				b.Add(api.EquipmentItem{
					ProcessArea: processArea,
					Type:        "Secondary Clarifier",
					Description: "Circular secondary clarifiers",
					Quantity:    2,
					Specs: map[string]api.SpecEntry{
						"surface_area_each": {Value: units.Round(sorFt2/2, 0), Unit: "ft2"},
					},
					DesignBasis: fmt.Sprintf("Surface overflow rate %.0f gpd/ft2 at %.2f MGD; two units; %s",
						lc.SecondarySORGpdFt2, s.Influent.Flow, criteria.SourceTenState),
				})
			}
			rasGPM := units.MGDToGPM(lc.RASFraction * avgMGD)
			b.Add(api.EquipmentItem{
				ProcessArea: processArea,
				Type:        "RAS/WAS Pump Station",
				Description: "Return and waste sludge pumps, duty + standby",
				Quantity:    2,
				Specs: map[string]api.SpecEntry{
					"ras_capacity": {Value: units.Round(rasGPM, 0), Unit: "gpm"},
				},
				DesignBasis: fmt.Sprintf("Return sludge at %.0f%% of plant flow (%.0f gpm); %s",
					lc.RASFraction*100, rasGPM, criteria.SourceMOP8),
			})
		}
	}

	return b.Items()
}

// addAerationEquipment emits the basin and blower items for a suspended
// growth or nitrifying stage.
func (c *Calculator) addAerationEquipment(b *equip.Builder, s api.Stage, lc criteria.LiquidCriteria) {
	basinGal := units.MGDToGPD(s.Influent.Flow) * lc.AerationHRTHours / 24.0

	bodRemovedLb := units.MassLoadLbPerDay(s.Influent.Flow, s.Influent.BOD-s.Effluent.BOD)
	o2Lb := bodRemovedLb * lc.O2LbPerLbBOD
	if s.Type == api.StageNitrification || s.Type == api.StageMBR {
		tknRemovedLb := units.MassLoadLbPerDay(s.Influent.Flow, s.Influent.TKN-s.Effluent.TKN)
		o2Lb += tknRemovedLb * lc.O2LbPerLbTKN
	}
	o2KgPerH := o2Lb / units.LbPerKg / 24.0
	blowerKW := o2KgPerH / lc.AerationKgO2PerKWh

	basinName := "Aeration Basin"
	if s.Type == api.StageNitrification {
		basinName = "Nitrification Basin"
	}
	b.Add(api.EquipmentItem{
		ProcessArea: processArea,
		Type:        basinName,
		Description: "Fine-bubble aerated biological reactor",
		Quantity:    1,
		Specs: map[string]api.SpecEntry{
			"volume": {Value: units.Round(basinGal, 0), Unit: "gal"},
		},
		DesignBasis: fmt.Sprintf("%.0f h hydraulic retention at %.2f MGD; %s",
			lc.AerationHRTHours, s.Influent.Flow, criteria.SourceMetcalfEddy),
	})
	b.Add(api.EquipmentItem{
		ProcessArea: processArea,
		Type:        "Aeration Blower",
		Description: "Turbo blowers, duty + standby",
		Quantity:    2,
		Specs: map[string]api.SpecEntry{
			"oxygen_demand": {Value: units.Round(o2Lb, 0), Unit: "lb O2/day"},
			"power":         {Value: units.Round(blowerKW, 1), Unit: "kW"},
		},
		DesignBasis: fmt.Sprintf("%.1f lb O2/lb BOD removed at %.1f kg O2/kWh transfer efficiency; %s",
			lc.O2LbPerLbBOD, lc.AerationKgO2PerKWh, criteria.SourceMOP8),
	})
}
