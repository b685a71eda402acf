package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Betech-JSC/bed-app-annha-sub010/pkg/enums"
)

// ChangeRequest records a scope or budget amendment raised against a project.
type ChangeRequest struct {
	ID            uuid.UUID                 `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ProjectID     uuid.UUID                 `gorm:"column:project_id;type:uuid;not null;index"`
	Title         string                    `gorm:"type:text;not null"`
	Description   *string                   `gorm:"column:description;type:text"`
	Status        enums.ChangeRequestStatus `gorm:"column:status;type:change_request_status;not null;default:'pending'"`
	CostImpact    *decimal.Decimal          `gorm:"column:cost_impact;type:numeric(18,2)"`
	RequestedByID uuid.UUID                 `gorm:"column:requested_by_id;type:uuid;not null"`
	DecidedByID   *uuid.UUID                `gorm:"column:decided_by_id;type:uuid"`
	DecidedAt     *time.Time                `gorm:"column:decided_at"`
	CreatedAt     time.Time                 `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time                 `gorm:"column:updated_at;autoUpdateTime"`
}
