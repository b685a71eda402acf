package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/Betech-JSC/bed-app-annha-sub010/pkg/enums"
)

// RiskItem is a tracked project risk from the risk register.
type RiskItem struct {
	ID          uuid.UUID            `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ProjectID   uuid.UUID            `gorm:"column:project_id;type:uuid;not null;index"`
	Title       string               `gorm:"type:text;not null"`
	Level       enums.RiskLevel       `gorm:"column:level;type:risk_level;not null;default:'low'"`
	Probability enums.RiskProbability `gorm:"column:probability;type:risk_probability;not null;default:'low'"`
	Impact      enums.RiskImpact      `gorm:"column:impact;type:risk_impact;not null;default:'low'"`
	Status      enums.RiskItemStatus  `gorm:"column:status;type:risk_item_status;not null;default:'open'"`
	OwnerID     *uuid.UUID            `gorm:"column:owner_id;type:uuid"`
	Mitigation  *string               `gorm:"column:mitigation;type:text"`
	MitigatedAt *time.Time            `gorm:"column:mitigated_at"`
	CreatedAt   time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
