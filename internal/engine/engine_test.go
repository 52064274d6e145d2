package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"massbal/internal/criteria"
	"massbal/pkg/api"
)

func TestCalculateDispatchesByProjectType(t *testing.T) {
	e := New(criteria.DefaultDesign())

	liquidRun := e.Calculate(&api.Intake{
		ProjectType: api.ProjectWastewater,
		Feedstocks: []api.Feedstock{{
			TypeLabel: "municipal wastewater",
			Volume:    "1.0",
			Unit:      "MGD",
		}},
	})
	require.NotNil(t, liquidRun.Results)
	assert.Equal(t, api.ProjectWastewater, liquidRun.ProjectType)
	assert.NotEmpty(t, liquidRun.Results.LiquidStages)
	assert.Empty(t, liquidRun.Results.ADStages)

	gasRun := e.Calculate(&api.Intake{
		ProjectType: api.ProjectGasUpgrading,
		Feedstocks: []api.Feedstock{{
			TypeLabel: "landfill gas",
			Volume:    "500",
			Unit:      "scfm",
		}},
	})
	require.NotNil(t, gasRun.Results)
	assert.NotEmpty(t, gasRun.Results.ADStages)
	assert.Empty(t, gasRun.Results.LiquidStages)
}

func TestCalculateInfersTypeFromUnits(t *testing.T) {
	e := New(criteria.DefaultDesign())

	run := e.Calculate(&api.Intake{
		Feedstocks: []api.Feedstock{{
			TypeLabel: "food waste",
			Volume:    "50",
			Unit:      "tons/day",
		}},
	})
	assert.Equal(t, api.ProjectDigestion, run.ProjectType)
	assert.NotEmpty(t, run.Results.ADStages)

	found := false
	for _, a := range run.Results.Assumptions {
		if a.Parameter == "project type" {
			found = true
		}
	}
	assert.True(t, found, "inferred project type should be recorded as an assumption")
}

func TestCalculateUnknownProjectType(t *testing.T) {
	e := New(criteria.DefaultDesign())

	run := e.Calculate(&api.Intake{ProjectName: "mystery project"})
	require.NotNil(t, run.Results)

	assert.Empty(t, run.Results.LiquidStages)
	assert.Empty(t, run.Results.ADStages)
	assert.Empty(t, run.Results.Equipment)

	require.Len(t, run.Results.Warnings, 1)
	assert.Equal(t, api.SeverityError, run.Results.Warnings[0].Severity)
	assert.Equal(t, "ProjectType", run.Results.Warnings[0].Field)

	// Collections stay non-nil on the early-exit path.
	assert.NotNil(t, run.Results.Recycles)
	assert.NotNil(t, run.Results.Assumptions)
	assert.NotNil(t, run.Results.Summary)
}

func TestCalculateRunMetadata(t *testing.T) {
	e := New(criteria.DefaultDesign())

	run := e.Calculate(&api.Intake{
		ProjectType: api.ProjectWastewater,
		ProjectName: "northside wrf",
		Feedstocks: []api.Feedstock{{
			TypeLabel: "municipal wastewater",
			Volume:    "2.5",
			Unit:      "MGD",
		}},
	})

	assert.NotEmpty(t, run.ID)
	assert.Equal(t, "northside wrf", run.ProjectName)
	assert.False(t, run.StartedAt.IsZero())
	assert.GreaterOrEqual(t, run.ElapsedMS, int64(0))
}
