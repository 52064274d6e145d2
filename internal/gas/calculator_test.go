package gas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"massbal/internal/criteria"
	"massbal/pkg/api"
)

func gasIntake() *api.Intake {
	return &api.Intake{
		ProjectType: api.ProjectGasUpgrading,
		Feedstocks: []api.Feedstock{{
			TypeLabel: "landfill gas",
			Volume:    "600",
			Unit:      "scfm",
			Specs: map[string]api.SpecValue{
				"ch4": {DisplayName: "Methane content", Value: "55", Unit: "%"},
				"h2s": {DisplayName: "H2S", Value: "800", Unit: "ppm"},
			},
		}},
	}
}

func TestGasOnlyRun(t *testing.T) {
	calc := NewCalculator(criteria.DefaultDesign())
	res := calc.Run(gasIntake())

	require.Len(t, res.ADStages, 2)
	assert.Equal(t, api.StageConditioning, res.ADStages[0].Type)
	assert.Equal(t, api.StageUpgrading, res.ADStages[1].Type)
	assert.Empty(t, res.LiquidStages)

	assert.Greater(t, res.Summary["rng_scfm"], 0.0)
	assert.Greater(t, res.Summary["rng_mmbtu_day"], 0.0)
	assert.NotEmpty(t, res.Equipment)
}

func TestConditioningReducesContaminants(t *testing.T) {
	gc := criteria.DefaultDesign().Gas
	raw := api.Stream{Flow: 600, FlowUnit: "scfm", CH4Pct: 60, H2SPPM: 1500, SiloxanesPPB: 5000}

	stage := Condition(gc, raw)
	assert.Less(t, stage.Effluent.H2SPPM, raw.H2SPPM*0.01)
	assert.Less(t, stage.Effluent.SiloxanesPPB, raw.SiloxanesPPB*0.05)
	assert.InDelta(t, raw.Flow*(1-gc.ConditioningLoss), stage.Effluent.Flow, 1e-9)
	assert.Equal(t, raw.CH4Pct, stage.Effluent.CH4Pct)
}

func TestUpgradeRecoveryNeverExceedsMethaneIn(t *testing.T) {
	gc := criteria.DefaultDesign().Gas
	conditioned := api.Stream{Flow: 588, FlowUnit: "scfm", CH4Pct: 60}

	stage, detail := Upgrade(gc, conditioned, 600)

	methaneIn := conditioned.Flow * conditioned.CH4Pct / 100.0
	methaneOut := stage.Effluent.Flow * stage.Effluent.CH4Pct / 100.0
	assert.LessOrEqual(t, methaneOut, methaneIn)

	assert.InDelta(t, conditioned.Flow, detail.ProductSCFM+detail.TailGasSCFM, 1e-9)
	assert.InDelta(t, 97.0, stage.Effluent.CH4Pct, 1e-9)
	assert.Greater(t, detail.PowerKW, 0.0)
}

func TestGasOnlyMissingFlow(t *testing.T) {
	calc := NewCalculator(criteria.DefaultDesign())
	res := calc.Run(&api.Intake{ProjectType: api.ProjectGasUpgrading})

	assert.Empty(t, res.ADStages)
	assert.Empty(t, res.Equipment)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, api.SeverityError, res.Warnings[0].Severity)
}

func TestCompositionDefaultsRecordAssumptions(t *testing.T) {
	intake := &api.Intake{
		ProjectType: api.ProjectGasUpgrading,
		Feedstocks:  []api.Feedstock{{TypeLabel: "digester gas", Volume: "400", Unit: "scfm"}},
	}

	calc := NewCalculator(criteria.DefaultDesign())
	res := calc.Run(intake)

	params := map[string]bool{}
	for _, a := range res.Assumptions {
		params[a.Parameter] = true
	}
	assert.True(t, params["biogas methane content"])
	assert.True(t, params["biogas H2S"])
}
