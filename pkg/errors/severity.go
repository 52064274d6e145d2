// Package errors provides severity-aware structured errors for the platform
// boundary (API, CLI, storage). Degraded conditions inside the calculation
// path are represented as warning records on the results record instead.
package errors

import "fmt"

// Severity indicates error impact level.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
	SeverityFatal
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// PlatformError is a structured error with context.
type PlatformError struct {
	Code        string   `json:"code"`
	Message     string   `json:"message"`
	Severity    Severity `json:"severity"`
	ScenarioID  string   `json:"scenario_id,omitempty"`
	Recoverable bool     `json:"recoverable"`
}

func (e *PlatformError) Error() string {
	if e.ScenarioID != "" {
		return fmt.Sprintf("[%s] %s: %s (scenario: %s)", e.Severity, e.Code, e.Message, e.ScenarioID)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Severity, e.Code, e.Message)
}

// Error codes
const (
	ErrCodeInvalidIntake      = "INVALID_INTAKE"
	ErrCodeUnknownProjectType = "UNKNOWN_PROJECT_TYPE"
	ErrCodeScenarioNotFound   = "SCENARIO_NOT_FOUND"
	ErrCodeStoreUnavailable   = "STORE_UNAVAILABLE"
)

// NewInvalidIntakeError creates an error for an intake record the engine
// cannot accept.
func NewInvalidIntakeError(message string) *PlatformError {
	return &PlatformError{
		Code:        ErrCodeInvalidIntake,
		Message:     message,
		Severity:    SeverityError,
		Recoverable: false,
	}
}

// NewUnknownProjectTypeError creates an error for an unroutable project type.
func NewUnknownProjectTypeError(projectType string) *PlatformError {
	return &PlatformError{
		Code:        ErrCodeUnknownProjectType,
		Message:     fmt.Sprintf("No calculator registered for project type: %s", projectType),
		Severity:    SeverityError,
		Recoverable: false,
	}
}

// NewScenarioNotFoundError creates an error for a missing scenario record.
func NewScenarioNotFoundError(id string) *PlatformError {
	return &PlatformError{
		Code:        ErrCodeScenarioNotFound,
		Message:     "Scenario not found",
		Severity:    SeverityError,
		ScenarioID:  id,
		Recoverable: true,
	}
}

// NewStoreUnavailableError creates an error for a storage backend that is
// not configured or not reachable.
func NewStoreUnavailableError(store string) *PlatformError {
	return &PlatformError{
		Code:        ErrCodeStoreUnavailable,
		Message:     fmt.Sprintf("%s is not configured", store),
		Severity:    SeverityError,
		Recoverable: true,
	}
}
