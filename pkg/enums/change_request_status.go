package enums

import "fmt"

// ChangeRequestStatus maps to the change_request_status enum in Postgres.
type ChangeRequestStatus string

const (
	ChangeRequestPending  ChangeRequestStatus = "pending"
	ChangeRequestApproved ChangeRequestStatus = "approved"
	ChangeRequestRejected ChangeRequestStatus = "rejected"
)

var validChangeRequestStatuses = []ChangeRequestStatus{
	ChangeRequestPending,
	ChangeRequestApproved,
	ChangeRequestRejected,
}

func (s ChangeRequestStatus) IsValid() bool {
	for _, candidate := range validChangeRequestStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

func ParseChangeRequestStatus(value string) (ChangeRequestStatus, error) {
	for _, candidate := range validChangeRequestStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid change request status %q", value)
}
