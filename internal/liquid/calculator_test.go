package liquid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"massbal/internal/criteria"
	"massbal/pkg/api"
)

func defaultIntake() *api.Intake {
	return &api.Intake{
		ProjectType: api.ProjectWastewater,
		Feedstocks: []api.Feedstock{{
			TypeLabel: "municipal wastewater",
			Volume:    "1.0",
			Unit:      "MGD",
			Specs: map[string]api.SpecValue{
				"bod": {DisplayName: "BOD5", Value: "250", Unit: "mg/L"},
				"cod": {DisplayName: "COD", Value: "500", Unit: "mg/L"},
				"tss": {DisplayName: "TSS", Value: "250", Unit: "mg/L"},
			},
		}},
	}
}

func TestDefaultTrainSelection(t *testing.T) {
	calc := NewCalculator(criteria.DefaultDesign())
	res := calc.Run(defaultIntake())

	var sequence []api.StageType
	for _, s := range res.LiquidStages {
		sequence = append(sequence, s.Type)
	}
	assert.Equal(t, []api.StageType{
		api.StagePreliminary,
		api.StageEqualization,
		api.StagePrimary,
		api.StageActivatedSludge,
		api.StageDisinfection,
	}, sequence)

	assert.True(t, res.Convergence.Achieved)
	assert.LessOrEqual(t, res.Convergence.Iterations, 10)
}

func TestEffluentNeverExceedsInfluent(t *testing.T) {
	calc := NewCalculator(criteria.DefaultDesign())
	res := calc.Run(defaultIntake())
	require.NotEmpty(t, res.LiquidStages)

	for _, s := range res.LiquidStages {
		assert.LessOrEqual(t, s.Effluent.BOD, s.Influent.BOD, s.Type)
		assert.LessOrEqual(t, s.Effluent.COD, s.Influent.COD, s.Type)
		assert.LessOrEqual(t, s.Effluent.TSS, s.Influent.TSS, s.Type)
		assert.LessOrEqual(t, s.Effluent.TKN, s.Influent.TKN, s.Type)
		assert.LessOrEqual(t, s.Effluent.TP, s.Influent.TP, s.Type)
		assert.LessOrEqual(t, s.Effluent.FOG, s.Influent.FOG, s.Type)
	}
}

func TestEqualizationPassThrough(t *testing.T) {
	calc := NewCalculator(criteria.DefaultDesign())
	res := calc.Run(defaultIntake())

	for _, s := range res.LiquidStages {
		if s.Type == api.StageEqualization {
			assert.Equal(t, s.Influent, s.Effluent)
			return
		}
	}
	t.Fatal("equalization stage missing")
}

func TestMembraneKeywordSelectsMBR(t *testing.T) {
	intake := defaultIntake()
	intake.OutputRequirements = "Compact footprint, membrane bioreactor preferred"

	calc := NewCalculator(criteria.DefaultDesign())
	res := calc.Run(intake)

	found := false
	for _, s := range res.LiquidStages {
		require.NotEqual(t, api.StageNitrification, s.Type, "MBR train must not add a separate nitrification stage")
		if s.Type == api.StageMBR {
			found = true
		}
	}
	assert.True(t, found)
}

func TestTightTargetsAppendTertiaryAndNutrientStages(t *testing.T) {
	intake := defaultIntake()
	intake.OutputAcceptance = map[string]map[string]string{
		"surface_discharge": {
			"BOD":              "5 mg/L",
			"Total Phosphorus": "0.5 mg/L",
			"Total Nitrogen":   "8 mg/L",
		},
	}

	calc := NewCalculator(criteria.DefaultDesign())
	res := calc.Run(intake)

	types := map[api.StageType]bool{}
	for _, s := range res.LiquidStages {
		types[s.Type] = true
	}
	assert.True(t, types[api.StageTertiaryFilter])
	assert.True(t, types[api.StageNitrification])
	assert.True(t, types[api.StageDenitrification])
	assert.True(t, types[api.StagePhosRemoval])
	assert.Equal(t, api.StageDisinfection, res.LiquidStages[len(res.LiquidStages)-1].Type)
}

func TestMissingFlowReturnsErrorWarning(t *testing.T) {
	intake := &api.Intake{ProjectType: api.ProjectWastewater}

	calc := NewCalculator(criteria.DefaultDesign())
	res := calc.Run(intake)

	assert.Empty(t, res.LiquidStages)
	assert.Empty(t, res.Equipment)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, api.SeverityError, res.Warnings[0].Severity)
	assert.NotNil(t, res.Assumptions)
	assert.NotNil(t, res.Recycles)
}

func TestDefaultedInfluentRecordsAssumptions(t *testing.T) {
	intake := &api.Intake{
		ProjectType: api.ProjectWastewater,
		Feedstocks:  []api.Feedstock{{TypeLabel: "wastewater", Volume: "1.0", Unit: "MGD"}},
	}

	calc := NewCalculator(criteria.DefaultDesign())
	res := calc.Run(intake)

	params := map[string]bool{}
	for _, a := range res.Assumptions {
		params[a.Parameter] = true
	}
	for _, key := range []string{"influent bod", "influent cod", "influent tss", "influent tkn", "influent tp", "influent fog"} {
		assert.True(t, params[key], key)
	}
}

func TestEquipmentGeneratedForEveryStage(t *testing.T) {
	calc := NewCalculator(criteria.DefaultDesign())
	res := calc.Run(defaultIntake())

	types := map[string]bool{}
	for _, e := range res.Equipment {
		types[e.Type] = true
		assert.Greater(t, e.ID, 0)
		assert.NotEmpty(t, e.DesignBasis)
		assert.NotEmpty(t, e.Specs)
	}
	for _, want := range []string{
		"Mechanical Fine Screen", "Vortex Grit Chamber", "Equalization Basin",
		"Primary Clarifier", "Aeration Basin", "Aeration Blower",
		"Secondary Clarifier", "RAS/WAS Pump Station", "UV Disinfection System",
	} {
		assert.True(t, types[want], want)
	}
}

func TestTargetExceedanceWarns(t *testing.T) {
	intake := defaultIntake()
	intake.OutputAcceptance = map[string]map[string]string{
		"reuse": {"TSS": "1 mg/L"},
	}

	calc := NewCalculator(criteria.DefaultDesign())
	res := calc.Run(intake)

	found := false
	for _, w := range res.Warnings {
		if w.Field == "TSS" && w.Severity == api.SeverityWarning {
			found = true
		}
	}
	assert.True(t, found, "expected a TSS exceedance warning")
}
