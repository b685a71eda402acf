package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/Betech-JSC/bed-app-annha-sub010/pkg/enums"
)

// PersonnelAssignment links a user to a project with a project-scoped role.
// Workflow notifications resolve their recipients through these rows.
type PersonnelAssignment struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ProjectID  uuid.UUID  `gorm:"column:project_id;type:uuid;not null;index:ux_personnel_project_user,unique"`
	UserID     uuid.UUID  `gorm:"column:user_id;type:uuid;not null;index:ux_personnel_project_user,unique"`
	Role       enums.Role `gorm:"column:role;type:user_role;not null"`
	AssignedAt time.Time  `gorm:"column:assigned_at;autoCreateTime"`
	RemovedAt  *time.Time `gorm:"column:removed_at"`

	User *User `gorm:"foreignKey:UserID"`
}
