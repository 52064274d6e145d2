package liquid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"massbal/internal/criteria"
	"massbal/pkg/api"
)

func testInfluent() api.Stream {
	return api.Stream{
		Flow: 1.0, FlowUnit: "MGD",
		BOD: 250, COD: 500, TSS: 250, TKN: 40, TP: 7, FOG: 50,
	}
}

func TestConvergedStateIsFixedPoint(t *testing.T) {
	calc := NewCalculator(criteria.DefaultDesign())
	train := []api.StageType{
		api.StagePreliminary, api.StageEqualization, api.StagePrimary,
		api.StageActivatedSludge, api.StageTertiaryFilter, api.StageDisinfection,
	}

	_, recycles, conv := calc.converge(testInfluent(), train)
	require.True(t, conv.Achieved)

	// One more iteration from the converged state moves every recycle flow
	// by less than the tolerance.
	_, next := calc.step(testInfluent(), train, recycles)
	delta := maxRelativeDelta(recycles, next)
	assert.Less(t, delta, calc.design.Liquid.ConvergenceTolerance)
}

func TestZeroToNonzeroRecycleForcesIteration(t *testing.T) {
	prev := []api.RecycleStream{}
	next := []api.RecycleStream{{Name: recycleRAS, Flow: 0.5}}
	assert.Equal(t, 1.0, maxRelativeDelta(prev, next))
}

func TestRecycleStreamsForDefaultTrain(t *testing.T) {
	calc := NewCalculator(criteria.DefaultDesign())
	train := []api.StageType{
		api.StagePreliminary, api.StageEqualization, api.StagePrimary,
		api.StageActivatedSludge, api.StageTertiaryFilter, api.StageDisinfection,
	}

	_, recycles, _ := calc.converge(testInfluent(), train)

	flows := map[string]float64{}
	for _, r := range recycles {
		flows[r.Name] = r.Flow
	}
	assert.InDelta(t, 0.50, flows[recycleRAS], 1e-9)
	assert.InDelta(t, 0.01, flows[recycleWAS], 1e-9)
	assert.InDelta(t, 0.03, flows[recycleBackwash], 1e-9)
}

func TestWASDoesNotBlendIntoInfluent(t *testing.T) {
	nominal := testInfluent()
	recycles := []api.RecycleStream{
		{Name: recycleWAS, ToStage: api.StageSolidsHandling, Flow: 0.01, Loads: map[string]float64{"tss": 500}},
	}
	blended := blendRecycles(nominal, recycles)
	assert.Equal(t, nominal, blended)
}

func TestBlendDilutesConcentrations(t *testing.T) {
	nominal := testInfluent()
	recycles := []api.RecycleStream{
		{Name: recycleBackwash, ToStage: api.StagePreliminary, Flow: 0.1, Loads: map[string]float64{"tss": 0}},
	}
	blended := blendRecycles(nominal, recycles)
	assert.InDelta(t, 1.1, blended.Flow, 1e-9)
	assert.InDelta(t, 250*(1.0/1.1), blended.BOD, 1e-9)
	assert.Less(t, blended.TSS, nominal.TSS)
}

func TestNoRecyclesWithoutApplicableProcesses(t *testing.T) {
	calc := NewCalculator(criteria.DefaultDesign())
	train := []api.StageType{
		api.StagePreliminary, api.StageEqualization, api.StagePrimary,
		api.StageTricklingFilter, api.StageDisinfection,
	}

	_, recycles, conv := calc.converge(testInfluent(), train)
	assert.Empty(t, recycles)
	assert.True(t, conv.Achieved)
	assert.Equal(t, 1, conv.Iterations)
}
