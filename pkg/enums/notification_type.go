package enums

import "fmt"

// NotificationType maps to the notification_type enum in Postgres.
type NotificationType string

const (
	NotificationTypeSystem             NotificationType = "system"
	NotificationTypeWorkflow           NotificationType = "workflow"
	NotificationTypeAssignment         NotificationType = "assignment"
	NotificationTypeProjectPerformance NotificationType = "project_performance"
	NotificationTypeMention            NotificationType = "mention"
	NotificationTypeFileUpload         NotificationType = "file_upload"
)

var validNotificationTypes = []NotificationType{
	NotificationTypeSystem,
	NotificationTypeWorkflow,
	NotificationTypeAssignment,
	NotificationTypeProjectPerformance,
	NotificationTypeMention,
	NotificationTypeFileUpload,
}

// IsValid checks whether the given type matches the canonical enum.
func (n NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationType converts raw strings into NotificationType.
func ParseNotificationType(value string) (NotificationType, error) {
	for _, candidate := range validNotificationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification type %q", value)
}
