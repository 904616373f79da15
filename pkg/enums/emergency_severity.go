package enums

import "fmt"

// EmergencySeverity maps to the emergency_severity enum in Postgres.
type EmergencySeverity string

const (
	EmergencySeverityLow      EmergencySeverity = "low"
	EmergencySeverityMedium   EmergencySeverity = "medium"
	EmergencySeverityHigh     EmergencySeverity = "high"
	EmergencySeverityCritical EmergencySeverity = "critical"
)

var validEmergencySeverities = []EmergencySeverity{
	EmergencySeverityLow,
	EmergencySeverityMedium,
	EmergencySeverityHigh,
	EmergencySeverityCritical,
}

// String implements fmt.Stringer.
func (e EmergencySeverity) String() string {
	return string(e)
}

// IsValid reports whether the value matches the canonical emergency_severity enum.
func (e EmergencySeverity) IsValid() bool {
	for _, candidate := range validEmergencySeverities {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseEmergencySeverity converts raw input into EmergencySeverity.
func ParseEmergencySeverity(value string) (EmergencySeverity, error) {
	for _, candidate := range validEmergencySeverities {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid emergency severity %q", value)
}
