package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/Betech-JSC/bed-app-annha-sub010/pkg/enums"
)

// Defect is a quality finding raised during inspections.
type Defect struct {
	ID           uuid.UUID            `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ProjectID    uuid.UUID            `gorm:"column:project_id;type:uuid;not null;index"`
	Title        string               `gorm:"type:text;not null"`
	Status       enums.DefectStatus   `gorm:"column:status;type:defect_status;not null;default:'open'"`
	Severity     enums.DefectSeverity `gorm:"column:severity;type:defect_severity;not null;default:'medium'"`
	ReportedByID *uuid.UUID           `gorm:"column:reported_by_id;type:uuid"`
	AssignedToID *uuid.UUID           `gorm:"column:assigned_to_id;type:uuid"`
	ResolvedAt   *time.Time           `gorm:"column:resolved_at"`
	CreatedAt    time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
