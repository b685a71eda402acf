package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProjectBudget holds the approved budget for a project. Multiple rows may
// exist over time; the row with the latest effective date wins.
type ProjectBudget struct {
	ID            uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ProjectID     uuid.UUID       `gorm:"column:project_id;type:uuid;not null;index"`
	Total         decimal.Decimal `gorm:"column:total;type:numeric(18,2);not null"`
	EffectiveDate time.Time       `gorm:"column:effective_date;type:date;not null"`
	Note          *string         `gorm:"column:note;type:text"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
}
