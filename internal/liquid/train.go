package liquid

import (
	"strings"

	"massbal/pkg/api"
)

// selectTrain decides the ordered stage sequence before any numeric work.
// The sequence is fixed once chosen: convergence iterations rerun the same
// stages against adjusted influents and never reorder them.
func selectTrain(intake *api.Intake, t targets) []api.StageType {
	text := requirementText(intake)

	train := []api.StageType{
		api.StagePreliminary,
		api.StageEqualization,
		api.StagePrimary,
	}

	secondary := api.StageActivatedSludge
	switch {
	case strings.Contains(text, "membrane") || strings.Contains(text, "mbr"):
		secondary = api.StageMBR
	case strings.Contains(text, "trickling") || strings.Contains(text, "rotating"):
		secondary = api.StageTricklingFilter
	}
	train = append(train, secondary)

	if wantsTertiary(text, t) {
		train = append(train, api.StageTertiaryFilter)
	}

	// Membrane trains nitrify in the bioreactor, so a separate
	// nitrification stage is only appended for the other secondaries.
	if wantsNitrification(t) && secondary != api.StageMBR {
		train = append(train, api.StageNitrification)
	}
	if wantsDenitrification(t) {
		train = append(train, api.StageDenitrification)
	}

	if t.TP != nil && *t.TP <= 1.0 {
		train = append(train, api.StagePhosRemoval)
	}

	return append(train, api.StageDisinfection)
}

func wantsTertiary(text string, t targets) bool {
	if t.BOD != nil && *t.BOD <= 10 {
		return true
	}
	if t.TSS != nil && *t.TSS <= 10 {
		return true
	}
	return strings.Contains(text, "filtration") || strings.Contains(text, "tertiary") ||
		strings.Contains(text, "reuse")
}

func wantsNitrification(t targets) bool {
	if t.NH3 != nil {
		return true
	}
	if t.TKN != nil && *t.TKN <= 15 {
		return true
	}
	return t.TN != nil
}

func wantsDenitrification(t targets) bool {
	if t.TN != nil {
		return true
	}
	return t.TKN != nil && *t.TKN <= 3
}

// hasStage reports whether the train contains the given stage type.
func hasStage(train []api.StageType, st api.StageType) bool {
	for _, s := range train {
		if s == st {
			return true
		}
	}
	return false
}

// isBiological reports whether a stage type is a secondary biological
// process.
func isBiological(st api.StageType) bool {
	switch st {
	case api.StageActivatedSludge, api.StageMBR, api.StageTricklingFilter:
		return true
	}
	return false
}

// isSuspendedGrowth reports whether a stage type carries a mixed-liquor
// inventory (and therefore return and waste sludge streams).
func isSuspendedGrowth(st api.StageType) bool {
	return st == api.StageActivatedSludge || st == api.StageMBR
}
