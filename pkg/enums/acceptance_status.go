package enums

import "fmt"

// AcceptanceStatus maps to the acceptance_status enum in Postgres. Stages
// advance pending -> supervisor_approved -> project_manager_approved ->
// customer_approved, with rejected reachable from any non-terminal status.
type AcceptanceStatus string

const (
	AcceptancePending                AcceptanceStatus = "pending"
	AcceptanceSupervisorApproved     AcceptanceStatus = "supervisor_approved"
	AcceptanceProjectManagerApproved AcceptanceStatus = "project_manager_approved"
	AcceptanceCustomerApproved       AcceptanceStatus = "customer_approved"
	AcceptanceRejected               AcceptanceStatus = "rejected"
)

var validAcceptanceStatuses = []AcceptanceStatus{
	AcceptancePending,
	AcceptanceSupervisorApproved,
	AcceptanceProjectManagerApproved,
	AcceptanceCustomerApproved,
	AcceptanceRejected,
}

// Next returns the status that follows s in the approval chain, or false when
// s is terminal.
func (s AcceptanceStatus) Next() (AcceptanceStatus, bool) {
	switch s {
	case AcceptancePending:
		return AcceptanceSupervisorApproved, true
	case AcceptanceSupervisorApproved:
		return AcceptanceProjectManagerApproved, true
	case AcceptanceProjectManagerApproved:
		return AcceptanceCustomerApproved, true
	default:
		return "", false
	}
}

// IsTerminal reports whether no further transitions are allowed.
func (s AcceptanceStatus) IsTerminal() bool {
	return s == AcceptanceCustomerApproved || s == AcceptanceRejected
}

func (s AcceptanceStatus) IsValid() bool {
	for _, candidate := range validAcceptanceStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

func ParseAcceptanceStatus(value string) (AcceptanceStatus, error) {
	for _, candidate := range validAcceptanceStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid acceptance status %q", value)
}
