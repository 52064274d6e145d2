package costing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"massbal/internal/criteria"
	"massbal/internal/engine"
	"massbal/pkg/api"
)

func item(id int, typ, specKey string, size float64, qty int) api.EquipmentItem {
	return api.EquipmentItem{
		ID:       id,
		Type:     typ,
		Quantity: qty,
		Specs:    map[string]api.SpecEntry{specKey: {Value: size}},
	}
}

func TestEstimatePowerLawScaling(t *testing.T) {
	e := NewEstimator()
	res := api.NewResults(api.ProjectWastewater)

	// At exactly the base size the curve returns the base cost per unit.
	res.Equipment = append(res.Equipment, item(1, "Primary Clarifier", "surface_area_each", 1000, 2))

	est := e.Estimate(res)
	require.Len(t, est.Drivers, 1)
	assert.False(t, est.IsIncomplete)
	assert.True(t, est.Drivers[0].CapitalCost.Equal(decimal.NewFromInt(1200000)),
		"2 units at base size should cost 2x the base cost, got %s", est.Drivers[0].CapitalCost)

	// A larger unit costs more, but sub-linearly.
	bigger := api.NewResults(api.ProjectWastewater)
	bigger.Equipment = append(bigger.Equipment, item(1, "Primary Clarifier", "surface_area_each", 2000, 1))
	bigEst := e.Estimate(bigger)
	perUnit := est.Drivers[0].CapitalCost.Div(decimal.NewFromInt(2))
	assert.True(t, bigEst.TotalCapital.GreaterThan(perUnit))
	assert.True(t, bigEst.TotalCapital.LessThan(perUnit.Mul(decimal.NewFromInt(2))),
		"doubling size should less than double cost (exponent < 1)")
}

func TestEstimateSymbolicWhenCurveMissing(t *testing.T) {
	e := NewEstimator()
	res := api.NewResults(api.ProjectWastewater)
	res.Equipment = append(res.Equipment,
		item(1, "Primary Clarifier", "surface_area_each", 1000, 1),
		item(2, "Moving Bed Bioreactor", "volume", 5000, 1),
	)

	est := e.Estimate(res)
	require.Len(t, est.Drivers, 2)
	assert.True(t, est.IsIncomplete)
	assert.Zero(t, est.Confidence)
	assert.Len(t, est.Warnings, 1)
	assert.Equal(t, 1, est.ItemsEstimated)

	var symbolic *CostDriver
	for i := range est.Drivers {
		if est.Drivers[i].IsSymbolic {
			symbolic = &est.Drivers[i]
		}
	}
	require.NotNil(t, symbolic)
	assert.True(t, symbolic.CapitalCost.IsZero())
	assert.NotEmpty(t, symbolic.Reason)
}

func TestEstimateMissingSizingSpec(t *testing.T) {
	e := NewEstimator()
	res := api.NewResults(api.ProjectWastewater)
	res.Equipment = append(res.Equipment, api.EquipmentItem{
		ID: 1, Type: "Primary Clarifier", Quantity: 2,
		Specs: map[string]api.SpecEntry{"diameter_each": {Value: 36}},
	})

	est := e.Estimate(res)
	require.Len(t, est.Drivers, 1)
	assert.True(t, est.Drivers[0].IsSymbolic)
	assert.True(t, est.IsIncomplete)
}

func TestEstimateDriversSortedByCost(t *testing.T) {
	e := NewEstimator()
	res := api.NewResults(api.ProjectWastewater)
	res.Equipment = append(res.Equipment,
		item(1, "Alum Feed System", "alum_feed", 100, 1),
		item(2, "Anaerobic Digester", "volume_each", 3000, 1),
		item(3, "UV Disinfection System", "capacity", 1000, 1),
	)

	est := e.Estimate(res)
	require.Len(t, est.Drivers, 3)
	for i := 1; i < len(est.Drivers); i++ {
		assert.True(t, est.Drivers[i-1].CapitalCost.GreaterThanOrEqual(est.Drivers[i].CapitalCost),
			"drivers must be sorted largest capital first")
	}
	assert.Equal(t, "Anaerobic Digester", est.Drivers[0].Type)
}

// Every equipment type the calculators emit must have a curve, so a full
// engine run always prices completely.
func TestEstimateCoversCalculatorOutput(t *testing.T) {
	eng := engine.New(criteria.DefaultDesign())
	est := NewEstimator()

	intakes := []*api.Intake{
		{
			ProjectType: api.ProjectWastewater,
			Feedstocks: []api.Feedstock{{
				TypeLabel: "municipal wastewater", Volume: "1.0", Unit: "MGD",
			}},
			OutputRequirements: "reuse quality effluent, total nitrogen below 3 mg/L, phosphorus below 1 mg/L",
		},
		{
			ProjectType: api.ProjectDigestion,
			Feedstocks: []api.Feedstock{{
				TypeLabel: "food waste", Volume: "200", Unit: "tons/day",
			}},
		},
		{
			ProjectType: api.ProjectGasUpgrading,
			Feedstocks: []api.Feedstock{{
				TypeLabel: "digester gas", Volume: "800", Unit: "scfm",
			}},
		},
	}

	for _, intake := range intakes {
		run := eng.Calculate(intake)
		require.NotEmpty(t, run.Results.Equipment)

		out := est.Estimate(run.Results)
		assert.False(t, out.IsIncomplete,
			"%s equipment should all be priceable: %v", intake.ProjectType, out.Warnings)
		assert.True(t, out.TotalCapital.GreaterThan(decimal.Zero))
		assert.True(t, out.TotalAnnualOM.GreaterThan(decimal.Zero))
	}
}
