package payloads

import (
	"time"

	"github.com/google/uuid"

	"github.com/Betech-JSC/bed-app-annha-sub010/pkg/enums"
)

// NotificationCreatedEvent tells delivery channels a notification row exists.
type NotificationCreatedEvent struct {
	NotificationID uuid.UUID                  `json:"notification_id"`
	RecipientID    uuid.UUID                  `json:"recipient_id"`
	Type           enums.NotificationType     `json:"type"`
	Category       enums.NotificationCategory `json:"category"`
	Priority       enums.NotificationPriority `json:"priority"`
	Title          string                     `json:"title"`
	CreatedAt      time.Time                  `json:"created_at"`
}

// AcceptanceAdvancedEvent reports an acceptance stage transition.
type AcceptanceAdvancedEvent struct {
	StageID    uuid.UUID              `json:"stage_id"`
	ProjectID  uuid.UUID              `json:"project_id"`
	FromStatus enums.AcceptanceStatus `json:"from_status"`
	ToStatus   enums.AcceptanceStatus `json:"to_status"`
	DecidedBy  uuid.UUID              `json:"decided_by"`
}

// CostStatusChangedEvent reports a cost approval transition.
type CostStatusChangedEvent struct {
	CostID     uuid.UUID        `json:"cost_id"`
	ProjectID  uuid.UUID        `json:"project_id"`
	FromStatus enums.CostStatus `json:"from_status"`
	ToStatus   enums.CostStatus `json:"to_status"`
	DecidedBy  uuid.UUID        `json:"decided_by"`
}
