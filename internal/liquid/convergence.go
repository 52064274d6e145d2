package liquid

import (
	"gonum.org/v1/gonum/floats"

	"massbal/pkg/api"
	"massbal/pkg/units"
)

// recycle stream names.
const (
	recycleRAS      = "return_activated_sludge"
	recycleWAS      = "waste_activated_sludge"
	recycleBackwash = "filter_backwash"
)

// step runs one convergence iteration as a pure function: blend the previous
// iteration's returning recycles into the nominal influent, rerun the train,
// and derive fresh recycle streams from the new stage states.
func (c *Calculator) step(nominal api.Stream, train []api.StageType, prev []api.RecycleStream) ([]api.Stage, []api.RecycleStream) {
	adjusted := blendRecycles(nominal, prev)
	stages := runTrain(c.design, adjusted, train)
	return stages, c.deriveRecycles(nominal, train, stages)
}

// converge drives step to a fixed point: stop when the largest relative
// change across all recycle flows drops below the design tolerance, or at
// the iteration cap. A stream that was zero and becomes nonzero counts as a
// relative change of 1.0, which forces at least one more pass.
func (c *Calculator) converge(nominal api.Stream, train []api.StageType) ([]api.Stage, []api.RecycleStream, api.Convergence) {
	var (
		stages []api.Stage
		prev   []api.RecycleStream
		conv   api.Convergence
	)

	for i := 1; i <= c.design.Liquid.MaxIterations; i++ {
		var next []api.RecycleStream
		stages, next = c.step(nominal, train, prev)

		conv.Iterations = i
		conv.MaxDelta = maxRelativeDelta(prev, next)
		prev = next

		if conv.MaxDelta < c.design.Liquid.ConvergenceTolerance {
			conv.Achieved = true
			break
		}
	}

	return stages, prev, conv
}

// blendRecycles mass-blends the returning recycle flows into the nominal
// influent: flows add, and every concentration dilutes by flow-weighted
// average. Streams routed to solids handling leave the liquid train and do
// not blend.
func blendRecycles(nominal api.Stream, recycles []api.RecycleStream) api.Stream {
	totalRecycle := 0.0
	tssLoad := 0.0
	for _, r := range recycles {
		if r.ToStage == api.StageSolidsHandling {
			continue
		}
		totalRecycle += r.Flow
		tssLoad += r.Loads["tss"]
	}
	if totalRecycle <= 0 {
		return nominal
	}

	blended := nominal
	blended.Flow = nominal.Flow + totalRecycle
	dilute := nominal.Flow / blended.Flow
	blended.BOD = nominal.BOD * dilute
	blended.COD = nominal.COD * dilute
	blended.TKN = nominal.TKN * dilute
	blended.TP = nominal.TP * dilute
	blended.FOG = nominal.FOG * dilute
	blended.NH3 = nominal.NH3 * dilute
	blended.NO3 = nominal.NO3 * dilute
	// TSS carries the recycle solids load on top of the diluted background.
	blended.TSS = (units.MassLoadLbPerDay(nominal.Flow, nominal.TSS) + tssLoad) /
		(blended.Flow * units.LbPerGallon)
	return blended
}

// deriveRecycles recomputes the recycle streams from the current stage
// states. They are derived values, not independent entities.
func (c *Calculator) deriveRecycles(nominal api.Stream, train []api.StageType, stages []api.Stage) []api.RecycleStream {
	var recycles []api.RecycleStream
	lc := c.design.Liquid

	var secondary api.StageType
	for _, st := range train {
		if isBiological(st) {
			secondary = st
		}
	}

	if isSuspendedGrowth(secondary) {
		rasFlow := lc.RASFraction * nominal.Flow
		recycles = append(recycles, api.RecycleStream{
			Name:      recycleRAS,
			FromStage: secondary,
			ToStage:   secondary,
			Flow:      rasFlow,
			FlowUnit:  "MGD",
			Loads:     map[string]float64{"tss": units.MassLoadLbPerDay(rasFlow, lc.MLSSMgL)},
		})

		wasFlow := lc.WASFraction * nominal.Flow
		recycles = append(recycles, api.RecycleStream{
			Name:      recycleWAS,
			FromStage: secondary,
			ToStage:   api.StageSolidsHandling,
			Flow:      wasFlow,
			FlowUnit:  "MGD",
			Loads:     map[string]float64{"tss": units.MassLoadLbPerDay(wasFlow, lc.MLSSMgL)},
		})
	}

	if hasStage(train, api.StageTertiaryFilter) {
		bwFlow := lc.BackwashFraction * nominal.Flow
		captured := 0.0
		for _, s := range stages {
			if s.Type == api.StageTertiaryFilter {
				captured = units.MassLoadLbPerDay(s.Influent.Flow, s.Influent.TSS-s.Effluent.TSS)
			}
		}
		recycles = append(recycles, api.RecycleStream{
			Name:      recycleBackwash,
			FromStage: api.StageTertiaryFilter,
			ToStage:   api.StagePreliminary,
			Flow:      bwFlow,
			FlowUnit:  "MGD",
			Loads:     map[string]float64{"tss": captured},
		})
	}

	return recycles
}

// maxRelativeDelta compares recycle flows between iterations by stream name.
// A previously-zero stream that is now nonzero scores 1.0; this inherited
// comparison is kept for compatibility even though it is not a principled
// tolerance check.
func maxRelativeDelta(prev, next []api.RecycleStream) float64 {
	prevFlows := make(map[string]float64, len(prev))
	for _, r := range prev {
		prevFlows[r.Name] = r.Flow
	}

	deltas := make([]float64, 0, len(next))
	for _, r := range next {
		before := prevFlows[r.Name]
		switch {
		case before == 0 && r.Flow == 0:
			deltas = append(deltas, 0)
		case before == 0:
			deltas = append(deltas, 1.0)
		default:
			d := (r.Flow - before) / before
			if d < 0 {
				d = -d
			}
			deltas = append(deltas, d)
		}
	}
	if len(deltas) == 0 {
		return 0
	}
	return floats.Max(deltas)
}
