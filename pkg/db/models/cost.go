package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Betech-JSC/bed-app-annha-sub010/pkg/enums"
)

// Cost is a spend entry subject to the two-step approval workflow. Version
// backs optimistic locking so concurrent approvals cannot both win.
type Cost struct {
	ID          uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ProjectID   uuid.UUID        `gorm:"column:project_id;type:uuid;not null;index"`
	Title       string           `gorm:"type:text;not null"`
	Amount      decimal.Decimal  `gorm:"column:amount;type:numeric(18,2);not null"`
	Status      enums.CostStatus `gorm:"column:status;type:cost_status;not null;default:'draft'"`
	CreatedByID uuid.UUID        `gorm:"column:created_by_id;type:uuid;not null"`
	DecidedByID *uuid.UUID       `gorm:"column:decided_by_id;type:uuid"`
	DecidedAt   *time.Time       `gorm:"column:decided_at"`
	RejectNote  *string          `gorm:"column:reject_note;type:text"`
	Version     int64            `gorm:"column:version;not null;default:0"`
	CreatedAt   time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time        `gorm:"column:updated_at;autoUpdateTime"`

	CreatedBy *User `gorm:"foreignKey:CreatedByID"`
}
