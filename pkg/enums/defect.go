package enums

import "fmt"

// DefectStatus maps to the defect_status enum in Postgres.
type DefectStatus string

const (
	DefectStatusOpen       DefectStatus = "open"
	DefectStatusInProgress DefectStatus = "in_progress"
	DefectStatusResolved   DefectStatus = "resolved"
	DefectStatusClosed     DefectStatus = "closed"
)

var validDefectStatuses = []DefectStatus{
	DefectStatusOpen,
	DefectStatusInProgress,
	DefectStatusResolved,
	DefectStatusClosed,
}

// IsOpen reports whether the defect counts toward the defect load evaluator.
func (s DefectStatus) IsOpen() bool {
	return s == DefectStatusOpen || s == DefectStatusInProgress
}

func (s DefectStatus) IsValid() bool {
	for _, candidate := range validDefectStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

func ParseDefectStatus(value string) (DefectStatus, error) {
	for _, candidate := range validDefectStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid defect status %q", value)
}

// DefectSeverity maps to the defect_severity enum in Postgres.
type DefectSeverity string

const (
	DefectSeverityLow      DefectSeverity = "low"
	DefectSeverityMedium   DefectSeverity = "medium"
	DefectSeverityHigh     DefectSeverity = "high"
	DefectSeverityCritical DefectSeverity = "critical"
)

var validDefectSeverities = []DefectSeverity{
	DefectSeverityLow,
	DefectSeverityMedium,
	DefectSeverityHigh,
	DefectSeverityCritical,
}

func (s DefectSeverity) IsValid() bool {
	for _, candidate := range validDefectSeverities {
		if candidate == s {
			return true
		}
	}
	return false
}

func ParseDefectSeverity(value string) (DefectSeverity, error) {
	for _, candidate := range validDefectSeverities {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid defect severity %q", value)
}
