package enums

import "fmt"

// CostStatus maps to the cost_status enum in Postgres. Costs advance
// draft -> pending_management_approval -> pending_accountant_approval ->
// approved, with rejected reachable from either pending status.
type CostStatus string

const (
	CostDraft                     CostStatus = "draft"
	CostPendingManagementApproval CostStatus = "pending_management_approval"
	CostPendingAccountantApproval CostStatus = "pending_accountant_approval"
	CostApproved                  CostStatus = "approved"
	CostRejected                  CostStatus = "rejected"
)

var validCostStatuses = []CostStatus{
	CostDraft,
	CostPendingManagementApproval,
	CostPendingAccountantApproval,
	CostApproved,
	CostRejected,
}

// Next returns the status that follows s in the approval chain, or false when
// s is terminal or still a draft. Drafts advance through Submit, not Approve.
func (s CostStatus) Next() (CostStatus, bool) {
	switch s {
	case CostPendingManagementApproval:
		return CostPendingAccountantApproval, true
	case CostPendingAccountantApproval:
		return CostApproved, true
	default:
		return "", false
	}
}

// IsPending reports whether the cost is waiting on an approver.
func (s CostStatus) IsPending() bool {
	return s == CostPendingManagementApproval || s == CostPendingAccountantApproval
}

// IsTerminal reports whether no further transitions are allowed.
func (s CostStatus) IsTerminal() bool {
	return s == CostApproved || s == CostRejected
}

func (s CostStatus) IsValid() bool {
	for _, candidate := range validCostStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

func ParseCostStatus(value string) (CostStatus, error) {
	for _, candidate := range validCostStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid cost status %q", value)
}
