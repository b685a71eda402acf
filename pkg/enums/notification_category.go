package enums

import "fmt"

// NotificationCategory identifies what triggered a notification. The dedup key
// convention in internal/notifications builds on these values.
type NotificationCategory string

const (
	CategoryStatusChange     NotificationCategory = "status_change"
	CategoryWorkflowApproval NotificationCategory = "workflow_approval"
	CategoryDelayRisk        NotificationCategory = "delay_risk"
	CategoryBudgetOverrun    NotificationCategory = "budget_overrun"
	CategoryDeadline         NotificationCategory = "deadline"
	CategoryOverdueTask      NotificationCategory = "overdue_task"
	CategoryHighDefects      NotificationCategory = "high_defects"
	CategoryHighRisks        NotificationCategory = "high_risks"
	CategoryUserAssigned     NotificationCategory = "user_assigned"
	CategoryPendingApprovals NotificationCategory = "pending_approvals"
)

var validNotificationCategories = []NotificationCategory{
	CategoryStatusChange,
	CategoryWorkflowApproval,
	CategoryDelayRisk,
	CategoryBudgetOverrun,
	CategoryDeadline,
	CategoryOverdueTask,
	CategoryHighDefects,
	CategoryHighRisks,
	CategoryUserAssigned,
	CategoryPendingApprovals,
}

func (c NotificationCategory) IsValid() bool {
	for _, candidate := range validNotificationCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

func ParseNotificationCategory(value string) (NotificationCategory, error) {
	for _, candidate := range validNotificationCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification category %q", value)
}
