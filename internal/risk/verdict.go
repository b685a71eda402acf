package risk

import (
	"time"

	"github.com/google/uuid"

	"github.com/Betech-JSC/bed-app-annha-sub010/pkg/enums"
)

// Suppression windows per category family. Deadline checkpoints re-fire twice
// a day at most; performance categories at most once a day.
const (
	WindowDeadline    = 12 * time.Hour
	WindowPerformance = 24 * time.Hour
)

// Verdict is the stateless output of one evaluator for one entity at one
// point in time. DedupKey identifies "this risk for this entity" independent
// of when it was detected.
type Verdict struct {
	Category enums.NotificationCategory
	Severity enums.NotificationPriority
	DedupKey string
	Window   time.Duration
	Title    string
	Body     string
	Payload  map[string]any

	// Recipient overrides the project-level manager/customer fallback when
	// set, e.g. overdue tasks go to the assignee.
	Recipient *uuid.UUID
}
