package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/Betech-JSC/bed-app-annha-sub010/pkg/enums"
)

// Project is the root aggregate the monitoring sweep evaluates.
type Project struct {
	ID              uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name            string              `gorm:"type:text;not null"`
	Code            string              `gorm:"type:text;not null;uniqueIndex"`
	Status          enums.ProjectStatus `gorm:"column:status;type:project_status;not null;default:'planning'"`
	ManagerID       *uuid.UUID          `gorm:"column:manager_id;type:uuid"`
	CustomerID      *uuid.UUID          `gorm:"column:customer_id;type:uuid"`
	StartDate       *time.Time          `gorm:"column:start_date;type:date"`
	EndDate         *time.Time          `gorm:"column:end_date;type:date"`
	ProgressPercent float64             `gorm:"column:progress_percent;not null;default:0"`
	Address         *string             `gorm:"column:address;type:text"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time           `gorm:"column:updated_at;autoUpdateTime"`

	Manager  *User `gorm:"foreignKey:ManagerID"`
	Customer *User `gorm:"foreignKey:CustomerID"`

	Budgets   []ProjectBudget `gorm:"foreignKey:ProjectID"`
	Costs     []Cost          `gorm:"foreignKey:ProjectID"`
	Tasks     []Task          `gorm:"foreignKey:ProjectID"`
	Defects   []Defect        `gorm:"foreignKey:ProjectID"`
	RiskItems []RiskItem      `gorm:"foreignKey:ProjectID"`
}
