package digestion

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"massbal/internal/criteria"
	"massbal/pkg/api"
)

func potatoIntake() *api.Intake {
	return &api.Intake{
		ProjectType: api.ProjectDigestion,
		Feedstocks: []api.Feedstock{{
			TypeLabel: "potato waste",
			Volume:    "100,000",
			Unit:      "tons/year",
			Specs: map[string]api.SpecValue{
				"ts":  {DisplayName: "Total Solids", Value: "15", Unit: "%"},
				"vs":  {DisplayName: "VS/TS", Value: "85", Unit: "%"},
				"bmp": {DisplayName: "BMP", Value: "0.30", Unit: "m3/kg VS"},
				"cn":  {DisplayName: "C:N Ratio", Value: "25", Unit: ""},
			},
		}},
	}
}

func TestPotatoWasteScenario(t *testing.T) {
	calc := NewCalculator(criteria.DefaultDesign())
	res := calc.Run(potatoIntake())

	var digester, upgrading *api.Stage
	for i := range res.ADStages {
		switch res.ADStages[i].Type {
		case api.StageDigester:
			digester = &res.ADStages[i]
		case api.StageUpgrading:
			upgrading = &res.ADStages[i]
		}
	}
	require.NotNil(t, digester)
	require.NotNil(t, upgrading)

	// 100,000 tons/year at 15% TS and 85% VS/TS puts about 31,700 kg VS/day
	// into the digester: OLR at 3.0 kg VS/m3-d demands more volume than
	// 25 days of hydraulic retention.
	assert.Contains(t, digester.Notes, "OLR governs")

	assert.Greater(t, upgrading.Effluent.Flow, 0.0)
	assert.Greater(t, res.Summary["rng_scfm"], 0.0)
	assert.Greater(t, res.Summary["rng_mmbtu_day"], 0.0)

	for _, w := range res.Warnings {
		assert.NotEqual(t, "C:N ratio", w.Field, "C:N of 25 is inside the advisory range")
	}
}

func TestDigesterSizingGoverningConstraint(t *testing.T) {
	calc := NewCalculator(criteria.DefaultDesign())

	// Dilute feed: low TS means high hydraulic volume per unit VS, so HRT
	// governs.
	dilute := Blend{TotalTPD: 100, TSPct: 3, VSOfTSPct: 80}
	dilute.VSMassKgDay = 100 * 907.185 * 0.03 * 0.80
	res := api.NewResults(api.ProjectDigestion)
	s := calc.sizeDigester(dilute, res)
	assert.Equal(t, "HRT", s.Governing)
	assert.Equal(t, s.VolumeHRTM3, s.ActiveVolumeM3)

	// Thick feed: high VS mass in little volume, so OLR governs.
	thick := Blend{TotalTPD: 100, TSPct: 30, VSOfTSPct: 90}
	thick.VSMassKgDay = 100 * 907.185 * 0.30 * 0.90
	s = calc.sizeDigester(thick, res)
	assert.Equal(t, "OLR", s.Governing)
	assert.Equal(t, s.VolumeOLRM3, s.ActiveVolumeM3)
}

func TestVesselCountThreshold(t *testing.T) {
	calc := NewCalculator(criteria.DefaultDesign())
	res := api.NewResults(api.ProjectDigestion)

	small := Blend{TotalTPD: 20, TSPct: 15, VSOfTSPct: 80}
	small.VSMassKgDay = 20 * 907.185 * 0.15 * 0.80
	s := calc.sizeDigester(small, res)
	assert.Equal(t, 1, s.Vessels)

	large := Blend{TotalTPD: 300, TSPct: 15, VSOfTSPct: 85}
	large.VSMassKgDay = 300 * 907.185 * 0.15 * 0.85
	s = calc.sizeDigester(large, res)
	assert.Equal(t, 2, s.Vessels)
}

func TestZeroFeedstocks(t *testing.T) {
	calc := NewCalculator(criteria.DefaultDesign())
	res := calc.Run(&api.Intake{ProjectType: api.ProjectDigestion})

	assert.Empty(t, res.ADStages)
	assert.Empty(t, res.Equipment)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, api.SeverityError, res.Warnings[0].Severity)
	assert.Contains(t, res.Warnings[0].Field, "Feedstock")
}

func TestBlendedPropertiesBoundedByInputs(t *testing.T) {
	intake := &api.Intake{
		ProjectType: api.ProjectDigestion,
		Feedstocks: []api.Feedstock{
			{
				TypeLabel: "food waste",
				Volume:    "50",
				Unit:      "tons/day",
				Specs: map[string]api.SpecValue{
					"ts": {DisplayName: "Total Solids", Value: "25", Unit: "%"},
					"vs": {DisplayName: "VS/TS", Value: "90", Unit: "%"},
					"cn": {DisplayName: "C:N", Value: "18", Unit: ""},
				},
			},
			{
				TypeLabel: "manure",
				Volume:    "30",
				Unit:      "tons/day",
				Specs: map[string]api.SpecValue{
					"ts": {DisplayName: "Total Solids", Value: "8", Unit: "%"},
					"vs": {DisplayName: "VS/TS", Value: "75", Unit: "%"},
					"cn": {DisplayName: "C:N", Value: "22", Unit: ""},
				},
			},
		},
	}

	calc := NewCalculator(criteria.DefaultDesign())
	res := api.NewResults(api.ProjectDigestion)
	blend, ok := calc.blendFeedstocks(intake, res)
	require.True(t, ok)

	assert.InDelta(t, 80.0, blend.TotalTPD, 1e-9)
	assert.GreaterOrEqual(t, blend.TSPct, 8.0)
	assert.LessOrEqual(t, blend.TSPct, 25.0)
	assert.GreaterOrEqual(t, blend.VSOfTSPct, 75.0)
	assert.LessOrEqual(t, blend.VSOfTSPct, 90.0)
	assert.GreaterOrEqual(t, blend.CN, 18.0)
	assert.LessOrEqual(t, blend.CN, 22.0)
}

func TestCNWarnings(t *testing.T) {
	calc := NewCalculator(criteria.DefaultDesign())

	mk := func(cn string) *api.Intake {
		return &api.Intake{
			ProjectType: api.ProjectDigestion,
			Feedstocks: []api.Feedstock{{
				TypeLabel: "slurry",
				Volume:    "40",
				Unit:      "tons/day",
				Specs: map[string]api.SpecValue{
					"cn": {DisplayName: "C:N Ratio", Value: cn, Unit: ""},
				},
			}},
		}
	}

	res := calc.Run(mk("10"))
	assert.True(t, hasWarning(res, "C:N ratio", "ammonia"))

	res = calc.Run(mk("45"))
	assert.True(t, hasWarning(res, "C:N ratio", "nitrogen limited"))
}

func hasWarning(res *api.Results, field, fragment string) bool {
	for _, w := range res.Warnings {
		if w.Field == field && w.Severity == api.SeverityWarning &&
			strings.Contains(strings.ToLower(w.Message), strings.ToLower(fragment)) {
			return true
		}
	}
	return false
}

func TestDefaultedSpecsRecordAssumptions(t *testing.T) {
	intake := &api.Intake{
		ProjectType: api.ProjectDigestion,
		Feedstocks:  []api.Feedstock{{TypeLabel: "green waste", Volume: "25", Unit: "tons/day"}},
	}

	calc := NewCalculator(criteria.DefaultDesign())
	res := calc.Run(intake)

	params := map[string]bool{}
	for _, a := range res.Assumptions {
		params[a.Parameter] = true
	}
	assert.True(t, params["green waste total solids"])
	assert.True(t, params["green waste VS/TS"])
	assert.True(t, params["green waste BMP"])
	assert.True(t, params["green waste C:N ratio"])
}

func TestMethaneConservationThroughUpgrading(t *testing.T) {
	calc := NewCalculator(criteria.DefaultDesign())
	res := calc.Run(potatoIntake())

	var conditioning, upgrading *api.Stage
	for i := range res.ADStages {
		switch res.ADStages[i].Type {
		case api.StageConditioning:
			conditioning = &res.ADStages[i]
		case api.StageUpgrading:
			upgrading = &res.ADStages[i]
		}
	}
	require.NotNil(t, conditioning)
	require.NotNil(t, upgrading)

	methaneIn := upgrading.Influent.Flow * upgrading.Influent.CH4Pct / 100
	methaneOut := upgrading.Effluent.Flow * upgrading.Effluent.CH4Pct / 100
	assert.LessOrEqual(t, methaneOut, methaneIn)
}
