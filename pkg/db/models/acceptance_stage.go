package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/Betech-JSC/bed-app-annha-sub010/pkg/enums"
)

// AcceptanceStage is a handover milestone moving through the three-tier
// approval chain. Version backs optimistic locking so concurrent approvals
// cannot both win.
type AcceptanceStage struct {
	ID           uuid.UUID              `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ProjectID    uuid.UUID              `gorm:"column:project_id;type:uuid;not null;index"`
	Name         string                 `gorm:"type:text;not null"`
	Status       enums.AcceptanceStatus `gorm:"column:status;type:acceptance_status;not null;default:'pending'"`
	SubmittedBy  *uuid.UUID             `gorm:"column:submitted_by;type:uuid"`
	DecidedByID  *uuid.UUID             `gorm:"column:decided_by_id;type:uuid"`
	DecidedAt    *time.Time             `gorm:"column:decided_at"`
	RejectReason *string                `gorm:"column:reject_reason;type:text"`
	Version      int64                  `gorm:"column:version;not null;default:0"`
	CreatedAt    time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
