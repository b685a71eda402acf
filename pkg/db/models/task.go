package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/Betech-JSC/bed-app-annha-sub010/pkg/enums"
)

// Task is a unit of scheduled work inside a project.
type Task struct {
	ID           uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ProjectID    uuid.UUID        `gorm:"column:project_id;type:uuid;not null;index"`
	Title        string           `gorm:"type:text;not null"`
	Status       enums.TaskStatus `gorm:"column:status;type:task_status;not null;default:'pending'"`
	AssigneeID   *uuid.UUID       `gorm:"column:assignee_id;type:uuid"`
	DueDate      *time.Time       `gorm:"column:due_date;type:date"`
	CompletedAt  *time.Time       `gorm:"column:completed_at"`
	WeightPoints int              `gorm:"column:weight_points;not null;default:1"`
	CreatedAt    time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time        `gorm:"column:updated_at;autoUpdateTime"`

	Assignee *User `gorm:"foreignKey:AssigneeID"`
}
