package workflow

import (
	"github.com/google/uuid"

	"github.com/Betech-JSC/bed-app-annha-sub010/pkg/enums"
)

// Actor identifies who is attempting a workflow transition.
type Actor struct {
	UserID uuid.UUID
	Role   enums.Role
}
