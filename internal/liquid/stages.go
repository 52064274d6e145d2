package liquid

import (
	"massbal/internal/criteria"
	"massbal/pkg/api"
)

// stageNames gives the display name per liquid stage type.
var stageNames = map[api.StageType]string{
	api.StagePreliminary:     "Preliminary Treatment",
	api.StageEqualization:    "Flow Equalization",
	api.StagePrimary:         "Primary Clarification",
	api.StageActivatedSludge: "Activated Sludge",
	api.StageMBR:             "Membrane Bioreactor",
	api.StageTricklingFilter: "Trickling Filter",
	api.StageTertiaryFilter:  "Tertiary Filtration",
	api.StageNitrification:   "Nitrification",
	api.StageDenitrification: "Denitrification",
	api.StagePhosRemoval:     "Chemical Phosphorus Removal",
	api.StageDisinfection:    "Disinfection",
}

// runTrain applies the stage sequence to the given influent. Each stage's
// effluent is the next stage's influent; recycle feedback is handled by the
// caller adjusting the influent between iterations, not inside the train.
func runTrain(design *criteria.Design, influent api.Stream, train []api.StageType) []api.Stage {
	stages := make([]api.Stage, 0, len(train))
	current := influent
	for _, st := range train {
		stage := transform(design, st, current)
		stages = append(stages, stage)
		current = stage.Effluent
	}
	return stages
}

// transform applies one stage to its influent. The switch is the single
// dispatch point over the closed set of liquid stage types; extending the
// train means adding a case here.
func transform(design *criteria.Design, st api.StageType, in api.Stream) api.Stage {
	stage := api.Stage{
		Type:     st,
		Name:     stageNames[st],
		Influent: in,
	}

	switch st {
	case api.StageEqualization:
		// Pass-through: equalization attenuates peaks but removes nothing.
		stage.Effluent = in
		stage.Notes = "Flow and load pass through unchanged; basin attenuates diurnal peaks."
	case api.StageDisinfection:
		stage.Effluent = in
		stage.Notes = "Pathogen inactivation only; constituent concentrations unchanged."
	case api.StageNitrification, api.StageMBR:
		removals := design.Removal[st]
		stage.Removals = removals
		out := applyRemovals(in, removals)
		// Nitrified TKN appears as nitrate, it is not lost from the stream.
		out.NO3 += (in.TKN - out.TKN)
		stage.Effluent = out
	case api.StagePreliminary, api.StagePrimary,
		api.StageActivatedSludge, api.StageTricklingFilter,
		api.StageTertiaryFilter,
		api.StageDenitrification, api.StagePhosRemoval:
		removals := design.Removal[st]
		stage.Removals = removals
		stage.Effluent = applyRemovals(in, removals)
	}

	return stage
}

// applyRemovals computes effluent = influent x (1 - efficiency) per
// constituent. Flow is unchanged: sludge and backwash withdrawals are
// modeled as recycle streams, not as stage flow losses.
func applyRemovals(in api.Stream, removals criteria.Removals) api.Stream {
	out := in
	out.BOD = in.BOD * (1 - removals["bod"])
	out.COD = in.COD * (1 - removals["cod"])
	out.TSS = in.TSS * (1 - removals["tss"])
	out.TKN = in.TKN * (1 - removals["tkn"])
	out.TP = in.TP * (1 - removals["tp"])
	out.FOG = in.FOG * (1 - removals["fog"])
	out.NH3 = in.NH3 * (1 - removals["nh3"])
	out.NO3 = in.NO3 * (1 - removals["no3"])
	return out
}
