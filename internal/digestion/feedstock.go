// Package digestion implements the solids-to-gas calculator: feedstock
// blending, digester sizing and gas generation, the digestate dewatering and
// filtrate cleanup sub-train, and the hand-off of digester gas to the
// shared conditioning/upgrading stages.
package digestion

import (
	"fmt"
	"sort"

	"massbal/internal/criteria"
	"massbal/pkg/api"
	"massbal/pkg/units"
)

// Feed is one normalized feedstock: tons/day plus its (possibly defaulted)
// characterization.
type Feed struct {
	Label     string
	TonsDay   float64
	TSPct     float64
	VSOfTSPct float64
	BMP       float64 // m3 CH4 per kg VS
	CN        float64
}

// Blend is the mass-weighted combination of all feedstocks.
type Blend struct {
	Feeds       []Feed
	TotalTPD    float64
	TSPct       float64
	VSOfTSPct   float64
	BMP         float64
	CN          float64
	VSMassKgDay float64 // blended VS load
}

// blendFeedstocks normalizes every feedstock to tons/day and mass-weights
// the blend properties. TS, VS/TS, and C:N weight by tons/day; BMP weights
// by each feed's volatile-solids mass, since methane yield scales with VS,
// not with wet tonnage.
func (c *Calculator) blendFeedstocks(intake *api.Intake, res *api.Results) (Blend, bool) {
	fd := c.design.Feedstock

	var blend Blend
	for _, fs := range intake.Feedstocks {
		v, ok := units.ParseNumber(fs.Volume)
		if !ok {
			res.AddWarning("Feedstock",
				fmt.Sprintf("Feedstock %q has no parseable volume (%q); it was skipped", fs.TypeLabel, fs.Volume),
				api.SeverityWarning)
			continue
		}

		sg := fd.SpecificGravity
		fields := specFields(fs)
		if sv, _, ok := units.Extract(fields, "sg", units.FamilyRatio); ok && sv > 0 {
			sg = sv
		}

		tpd, ok := units.NormalizeSolidsRate(v, fs.Unit, sg)
		if !ok {
			res.AddWarning("Feedstock",
				fmt.Sprintf("Feedstock %q has unit %q, which is not a recognized feed-rate unit; it was skipped", fs.TypeLabel, fs.Unit),
				api.SeverityWarning)
			continue
		}

		feed := Feed{Label: fs.TypeLabel, TonsDay: tpd}
		feed.TSPct = c.feedSpec(fields, "ts", units.FamilyPercent, fd.TotalSolidsPct, fs.TypeLabel+" total solids", "%", res)
		feed.VSOfTSPct = c.feedSpec(fields, "vs", units.FamilyPercent, fd.VSOfTSPct, fs.TypeLabel+" VS/TS", "%", res)
		feed.BMP = c.feedSpec(fields, "bmp", units.FamilyRatio, fd.BMPM3PerKgVS, fs.TypeLabel+" BMP", "m3 CH4/kg VS", res)
		feed.CN = c.feedSpec(fields, "cn", units.FamilyRatio, fd.CNRatio, fs.TypeLabel+" C:N ratio", "", res)
		blend.Feeds = append(blend.Feeds, feed)
	}

	if len(blend.Feeds) == 0 || totalTPD(blend.Feeds) <= 0 {
		res.AddWarning("Feedstock", "No feedstocks with a nonzero feed rate were found; the digestion train cannot be calculated", api.SeverityError)
		return Blend{}, false
	}

	blend.TotalTPD = totalTPD(blend.Feeds)
	var vsMassTotal float64
	for _, f := range blend.Feeds {
		w := f.TonsDay / blend.TotalTPD
		blend.TSPct += w * f.TSPct
		blend.VSOfTSPct += w * f.VSOfTSPct
		blend.CN += w * f.CN

		vsMass := f.TonsDay * units.LbPerTon / units.LbPerKg * f.TSPct / 100 * f.VSOfTSPct / 100
		blend.BMP += vsMass * f.BMP
		vsMassTotal += vsMass
	}
	if vsMassTotal > 0 {
		blend.BMP /= vsMassTotal
	}
	blend.VSMassKgDay = vsMassTotal

	dc := c.design.Digestion
	if blend.CN < dc.CNLow {
		res.AddWarning("C:N ratio",
			fmt.Sprintf("Blended C:N ratio %.1f is below %.0f; ammonia inhibition risk in the digester", blend.CN, dc.CNLow),
			api.SeverityWarning)
	} else if blend.CN > dc.CNHigh {
		res.AddWarning("C:N ratio",
			fmt.Sprintf("Blended C:N ratio %.1f is above %.0f; digestion may be nitrogen limited", blend.CN, dc.CNHigh),
			api.SeverityWarning)
	}

	return blend, true
}

func (c *Calculator) feedSpec(fields []units.Field, key string, fam units.Family, def float64, name, unit string, res *api.Results) float64 {
	if v, _, ok := units.Extract(fields, key, fam); ok && v > 0 {
		return v
	}
	value := fmt.Sprintf("%g", def)
	if unit != "" {
		value += " " + unit
	}
	res.AddAssumption(name, value, criteria.SourceMOP8)
	return def
}

func specFields(fs api.Feedstock) []units.Field {
	var fields []units.Field
	for name, sv := range fs.Specs {
		display := sv.DisplayName
		if display == "" {
			display = name
		}
		fields = append(fields, units.Field{Name: display, Value: sv.Value, Unit: sv.Unit})
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i].Name < fields[j].Name })
	return fields
}

func totalTPD(feeds []Feed) float64 {
	var t float64
	for _, f := range feeds {
		t += f.TonsDay
	}
	return t
}
