package enums

import "fmt"

// Role maps to the user_role enum in Postgres. Roles gate the approval
// workflows and choose recipients for workflow notifications.
type Role string

const (
	RoleSupervisor     Role = "supervisor"
	RoleProjectManager Role = "project_manager"
	RoleCustomer       Role = "customer"
	RoleManagement     Role = "management"
	RoleAccountant     Role = "accountant"
	RoleEngineer       Role = "engineer"
)

var validRoles = []Role{
	RoleSupervisor,
	RoleProjectManager,
	RoleCustomer,
	RoleManagement,
	RoleAccountant,
	RoleEngineer,
}

func (r Role) IsValid() bool {
	for _, candidate := range validRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

func ParseRole(value string) (Role, error) {
	for _, candidate := range validRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid role %q", value)
}
