package liquid

import (
	"strings"

	"massbal/pkg/api"
	"massbal/pkg/units"
)

// targets holds the effluent concentration targets parsed from the intake's
// output-acceptance criteria, in mg/L. Nil means no target was requested.
type targets struct {
	BOD *float64
	TSS *float64
	TKN *float64
	TN  *float64
	NH3 *float64
	TP  *float64
}

// parseTargets scans every output-acceptance profile for named limits. When
// two profiles request the same constituent the stricter (lower) target
// wins, since the train must satisfy every profile.
func parseTargets(intake *api.Intake) targets {
	var t targets
	for _, profile := range intake.OutputAcceptance {
		for name, raw := range profile {
			v, ok := units.ParseNumber(raw)
			if !ok || v < 0 {
				continue
			}
			switch {
			case units.KeyMatches("bod", name):
				t.BOD = lower(t.BOD, v)
			case units.KeyMatches("tss", name):
				t.TSS = lower(t.TSS, v)
			case units.KeyMatches("tkn", name):
				t.TKN = lower(t.TKN, v)
			case units.KeyMatches("tn", name):
				t.TN = lower(t.TN, v)
			case units.KeyMatches("nh3", name):
				t.NH3 = lower(t.NH3, v)
			case units.KeyMatches("tp", name):
				t.TP = lower(t.TP, v)
			}
		}
	}
	return t
}

func lower(cur *float64, v float64) *float64 {
	if cur == nil || v < *cur {
		return &v
	}
	return cur
}

// requirementText joins the free-text surfaces keyword heuristics look at.
func requirementText(intake *api.Intake) string {
	parts := []string{intake.OutputRequirements, intake.Location}
	parts = append(parts, intake.Constraints...)
	return strings.ToLower(strings.Join(parts, " "))
}
