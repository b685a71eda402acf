package enums

import "fmt"

// RiskLevel maps to the risk_level enum in Postgres. Levels above medium count
// toward the high risk load evaluator.
type RiskLevel string

const (
	RiskLevelLow      RiskLevel = "low"
	RiskLevelMedium   RiskLevel = "medium"
	RiskLevelHigh     RiskLevel = "high"
	RiskLevelCritical RiskLevel = "critical"
)

var validRiskLevels = []RiskLevel{
	RiskLevelLow,
	RiskLevelMedium,
	RiskLevelHigh,
	RiskLevelCritical,
}

// IsElevated reports whether the risk counts toward the risk load evaluator.
func (l RiskLevel) IsElevated() bool {
	return l == RiskLevelHigh || l == RiskLevelCritical
}

func (l RiskLevel) IsValid() bool {
	for _, candidate := range validRiskLevels {
		if candidate == l {
			return true
		}
	}
	return false
}

func ParseRiskLevel(value string) (RiskLevel, error) {
	for _, candidate := range validRiskLevels {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid risk level %q", value)
}

// RiskProbability maps to the risk_probability enum in Postgres.
type RiskProbability string

const (
	RiskProbabilityLow      RiskProbability = "low"
	RiskProbabilityMedium   RiskProbability = "medium"
	RiskProbabilityHigh     RiskProbability = "high"
	RiskProbabilityVeryHigh RiskProbability = "very_high"
)

var validRiskProbabilities = []RiskProbability{
	RiskProbabilityLow,
	RiskProbabilityMedium,
	RiskProbabilityHigh,
	RiskProbabilityVeryHigh,
}

// IsElevated reports whether the probability counts toward the combined
// probability/impact rule of the risk load evaluator.
func (p RiskProbability) IsElevated() bool {
	return p == RiskProbabilityHigh || p == RiskProbabilityVeryHigh
}

func (p RiskProbability) IsValid() bool {
	for _, candidate := range validRiskProbabilities {
		if candidate == p {
			return true
		}
	}
	return false
}

func ParseRiskProbability(value string) (RiskProbability, error) {
	for _, candidate := range validRiskProbabilities {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid risk probability %q", value)
}

// RiskImpact maps to the risk_impact enum in Postgres.
type RiskImpact string

const (
	RiskImpactLow      RiskImpact = "low"
	RiskImpactMedium   RiskImpact = "medium"
	RiskImpactHigh     RiskImpact = "high"
	RiskImpactVeryHigh RiskImpact = "very_high"
)

var validRiskImpacts = []RiskImpact{
	RiskImpactLow,
	RiskImpactMedium,
	RiskImpactHigh,
	RiskImpactVeryHigh,
}

// IsElevated reports whether the impact counts toward the combined
// probability/impact rule of the risk load evaluator.
func (i RiskImpact) IsElevated() bool {
	return i == RiskImpactHigh || i == RiskImpactVeryHigh
}

func (i RiskImpact) IsValid() bool {
	for _, candidate := range validRiskImpacts {
		if candidate == i {
			return true
		}
	}
	return false
}

func ParseRiskImpact(value string) (RiskImpact, error) {
	for _, candidate := range validRiskImpacts {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid risk impact %q", value)
}

// RiskItemStatus maps to the risk_item_status enum in Postgres.
type RiskItemStatus string

const (
	RiskItemStatusOpen      RiskItemStatus = "open"
	RiskItemStatusMitigated RiskItemStatus = "mitigated"
	RiskItemStatusClosed    RiskItemStatus = "closed"
)

var validRiskItemStatuses = []RiskItemStatus{
	RiskItemStatusOpen,
	RiskItemStatusMitigated,
	RiskItemStatusClosed,
}

func (s RiskItemStatus) IsValid() bool {
	for _, candidate := range validRiskItemStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

func ParseRiskItemStatus(value string) (RiskItemStatus, error) {
	for _, candidate := range validRiskItemStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid risk item status %q", value)
}
