package risk

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Betech-JSC/bed-app-annha-sub010/pkg/enums"
)

// ProjectSnapshot is the read-only projection the evaluators work on. It is
// assembled by the projects read port so evaluators stay pure.
type ProjectSnapshot struct {
	ID              uuid.UUID
	Name            string
	Status          enums.ProjectStatus
	ManagerID       *uuid.UUID
	CustomerID      *uuid.UUID
	StartDate       *time.Time
	EndDate         *time.Time
	ProgressPercent float64

	BudgetTotal        decimal.Decimal
	ApprovedCostsTotal decimal.Decimal
	HasBudget          bool

	Defects []DefectSnapshot
	Risks   []RiskSnapshot
	Tasks   []TaskSnapshot
}

// DefectSnapshot carries the fields the defect load evaluator reads.
type DefectSnapshot struct {
	ID       uuid.UUID
	Status   enums.DefectStatus
	Severity enums.DefectSeverity
}

// RiskSnapshot carries the fields the risk load evaluator reads.
type RiskSnapshot struct {
	ID          uuid.UUID
	Level       enums.RiskLevel
	Probability enums.RiskProbability
	Impact      enums.RiskImpact
	Status      enums.RiskItemStatus
}

// TaskSnapshot carries the fields the overdue task evaluator reads.
type TaskSnapshot struct {
	ID         uuid.UUID
	ProjectID  uuid.UUID
	Title      string
	Status     enums.TaskStatus
	AssigneeID *uuid.UUID
	DueDate    *time.Time
}

// Recipient resolves who performance notifications for this project go to:
// the manager when present, otherwise the customer.
func (p ProjectSnapshot) Recipient() (uuid.UUID, bool) {
	if p.ManagerID != nil && *p.ManagerID != uuid.Nil {
		return *p.ManagerID, true
	}
	if p.CustomerID != nil && *p.CustomerID != uuid.Nil {
		return *p.CustomerID, true
	}
	return uuid.Nil, false
}
