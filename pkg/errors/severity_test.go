package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlatformErrorString(t *testing.T) {
	err := NewScenarioNotFoundError("abc-123")
	assert.Contains(t, err.Error(), "SCENARIO_NOT_FOUND")
	assert.Contains(t, err.Error(), "abc-123")
	assert.True(t, err.Recoverable)

	intake := NewInvalidIntakeError("no feedstocks")
	assert.Contains(t, intake.Error(), "no feedstocks")
	assert.NotContains(t, intake.Error(), "scenario:")
}

func TestSeverityString(t *testing.T) {
	assert.Equal(t, "info", SeverityInfo.String())
	assert.Equal(t, "warning", SeverityWarning.String())
	assert.Equal(t, "error", SeverityError.String())
	assert.Equal(t, "fatal", SeverityFatal.String())
	assert.Equal(t, "unknown", Severity(42).String())
}
