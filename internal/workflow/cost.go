package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Betech-JSC/bed-app-annha-sub010/internal/notifications"
	"github.com/Betech-JSC/bed-app-annha-sub010/internal/projects"
	"github.com/Betech-JSC/bed-app-annha-sub010/internal/risk"
	"github.com/Betech-JSC/bed-app-annha-sub010/pkg/db/models"
	"github.com/Betech-JSC/bed-app-annha-sub010/pkg/enums"
	pkgerrors "github.com/Betech-JSC/bed-app-annha-sub010/pkg/errors"
	"github.com/Betech-JSC/bed-app-annha-sub010/pkg/logger"
	"github.com/Betech-JSC/bed-app-annha-sub010/pkg/outbox"
	"github.com/Betech-JSC/bed-app-annha-sub010/pkg/outbox/payloads"
)

// CostService drives the two-step cost approval machine.
type CostService interface {
	Create(ctx context.Context, params CreateCostParams) (*models.Cost, error)
	// Submit moves a draft into the approval pipeline and notifies the
	// management group.
	Submit(ctx context.Context, costID uuid.UUID, actor Actor) (*models.Cost, error)
	AttemptTransition(ctx context.Context, costID uuid.UUID, target enums.CostStatus, actor Actor, note *string) (*models.Cost, error)
}

// CreateCostParams describes a new draft cost.
type CreateCostParams struct {
	ProjectID uuid.UUID
	Title     string
	Amount    decimal.Decimal
	CreatedBy uuid.UUID
}

var costApproverRoles = map[enums.CostStatus]enums.Role{
	enums.CostPendingAccountantApproval: enums.RoleManagement,
	enums.CostApproved:                  enums.RoleAccountant,
}

// CostServiceParams wires the cost workflow dependencies.
type CostServiceParams struct {
	DB         txRunner
	Repo       CostRepository
	Projects   projects.ReadPort
	Dispatcher notifications.Dispatcher
	Outbox     acceptanceOutboxEmitter
	Logger     *logger.Logger
	Now        func() time.Time
}

type costService struct {
	db         txRunner
	repo       CostRepository
	projects   projects.ReadPort
	dispatcher notifications.Dispatcher
	outbox     acceptanceOutboxEmitter
	logg       *logger.Logger
	now        func() time.Time
}

// NewCostService validates dependencies and returns the service.
func NewCostService(params CostServiceParams) (CostService, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "database client required")
	}
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "cost repository required")
	}
	if params.Projects == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "projects read port required")
	}
	if params.Dispatcher == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notification dispatcher required")
	}
	if params.Outbox == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "outbox service required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &costService{
		db:         params.DB,
		repo:       params.Repo,
		projects:   params.Projects,
		dispatcher: params.Dispatcher,
		outbox:     params.Outbox,
		logg:       params.Logger,
		now:        now,
	}, nil
}

func (s *costService) Create(ctx context.Context, params CreateCostParams) (*models.Cost, error) {
	if params.ProjectID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "project id required")
	}
	if params.Title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cost title required")
	}
	if params.Amount.Sign() <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cost amount must be positive")
	}
	if params.CreatedBy == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "creator id required")
	}

	cost := &models.Cost{
		ProjectID:   params.ProjectID,
		Title:       params.Title,
		Amount:      params.Amount,
		Status:      enums.CostDraft,
		CreatedByID: params.CreatedBy,
	}
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.CreateTx(tx, cost); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cost")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cost, nil
}

// Submit moves draft -> pending_management_approval and notifies the
// management group, excluding the creator.
func (s *costService) Submit(ctx context.Context, costID uuid.UUID, actor Actor) (*models.Cost, error) {
	cost, err := s.repo.Get(ctx, costID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "cost not found")
	}
	if cost.Status != enums.CostDraft {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("only drafts can be submitted, cost is %s", cost.Status))
	}

	managers, err := s.projects.GlobalRoleIDs(ctx, enums.RoleManagement)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve management group")
	}
	recipients := excludeUser(managers, cost.CreatedByID)

	from := cost.Status
	now := s.now().UTC()
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		applied, err := s.repo.TransitionTx(tx, cost, enums.CostPendingManagementApproval, actor.UserID, nil, now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "submit cost")
		}
		if !applied {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "cost was modified concurrently, retry")
		}
		if _, err := s.dispatcher.SendToUsersTx(ctx, tx, recipients, costCascadeInput(cost, from, cost.Status)); err != nil {
			return err
		}
		return s.emitStatusChanged(ctx, tx, cost, from, actor)
	})
	if err != nil {
		return nil, err
	}
	return cost, nil
}

// AttemptTransition validates the target against the current state, applies
// it atomically, fires the cascade, and on first approval re-checks the
// project budget eagerly.
func (s *costService) AttemptTransition(ctx context.Context, costID uuid.UUID, target enums.CostStatus, actor Actor, note *string) (*models.Cost, error) {
	if costID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cost id required")
	}
	if !target.IsValid() || target == enums.CostDraft || target == enums.CostPendingManagementApproval {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid target status %q", target))
	}

	cost, err := s.repo.Get(ctx, costID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "cost not found")
	}

	if err := validateCostTransition(cost.Status, target, actor); err != nil {
		return nil, err
	}

	from := cost.Status
	recipients, err := s.cascadeRecipients(ctx, cost, target)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		applied, err := s.repo.TransitionTx(tx, cost, target, actor.UserID, note, now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "apply transition")
		}
		if !applied {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "cost was modified concurrently, retry")
		}
		if _, err := s.dispatcher.SendToUsersTx(ctx, tx, recipients, costCascadeInput(cost, from, target)); err != nil {
			return err
		}
		return s.emitStatusChanged(ctx, tx, cost, from, actor)
	})
	if err != nil {
		return nil, err
	}

	// First approval re-checks the budget immediately instead of waiting
	// for the next sweep. Same evaluator and dedup key as the sweep, so
	// the two paths never double-notify. Failure here must not fail the
	// approval that already committed.
	if target == enums.CostApproved {
		if err := s.checkBudgetAfterApproval(ctx, cost.ProjectID); err != nil {
			logCtx := s.logg.WithField(ctx, "project_id", cost.ProjectID.String())
			s.logg.Error(logCtx, "eager budget check failed", err)
		}
	}
	return cost, nil
}

func (s *costService) checkBudgetAfterApproval(ctx context.Context, projectID uuid.UUID) error {
	snapshot, err := s.projects.ProjectSnapshot(ctx, projectID)
	if err != nil {
		return err
	}
	verdict, ok := risk.EvaluateBudgetOverrun(snapshot)
	if !ok {
		return nil
	}
	recipient, ok := snapshot.Recipient()
	if !ok {
		return nil
	}
	_, err = s.dispatcher.DispatchVerdict(ctx, recipient, verdict)
	return err
}

func (s *costService) emitStatusChanged(ctx context.Context, tx *gorm.DB, cost *models.Cost, from enums.CostStatus, actor Actor) error {
	return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventCostStatusChanged,
		AggregateType: enums.AggregateCost,
		AggregateID:   cost.ID,
		Actor:         &outbox.ActorRef{UserID: actor.UserID, Role: string(actor.Role)},
		Data: payloads.CostStatusChangedEvent{
			CostID:     cost.ID,
			ProjectID:  cost.ProjectID,
			FromStatus: from,
			ToStatus:   cost.Status,
			DecidedBy:  actor.UserID,
		},
		Version: 1,
	})
}

func validateCostTransition(current, target enums.CostStatus, actor Actor) error {
	if current.IsTerminal() {
		return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("cost is already %s", current))
	}
	if target == enums.CostRejected {
		if !current.IsPending() {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("only pending costs can be rejected, cost is %s", current))
		}
		return nil
	}
	next, ok := current.Next()
	if !ok || next != target {
		return pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("%s is not a valid successor of %s", target, current))
	}
	if required, gated := costApproverRoles[target]; gated && actor.Role != required {
		return pkgerrors.New(pkgerrors.CodeForbidden,
			fmt.Sprintf("transition to %s requires the %s role", target, required))
	}
	return nil
}

// cascadeRecipients resolves who is notified for the target state:
// management approval hands off to the accountants, final approval and
// rejection alert the creator.
func (s *costService) cascadeRecipients(ctx context.Context, cost *models.Cost, target enums.CostStatus) ([]uuid.UUID, error) {
	switch target {
	case enums.CostPendingAccountantApproval:
		accountants, err := s.projects.GlobalRoleIDs(ctx, enums.RoleAccountant)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve accountants")
		}
		return accountants, nil
	case enums.CostApproved, enums.CostRejected:
		return []uuid.UUID{cost.CreatedByID}, nil
	default:
		return nil, nil
	}
}

func costCascadeInput(cost *models.Cost, from, target enums.CostStatus) notifications.Input {
	title := "Cost awaiting approval"
	priority := enums.PriorityHigh
	switch target {
	case enums.CostApproved:
		title = "Cost approved"
		priority = enums.PriorityMedium
	case enums.CostRejected:
		title = "Cost rejected"
	}
	return notifications.Input{
		Type:     enums.NotificationTypeWorkflow,
		Category: enums.CategoryWorkflowApproval,
		Priority: priority,
		Title:    title,
		Body: fmt.Sprintf("Cost %q (%s) moved from %s to %s.",
			cost.Title, cost.Amount.StringFixed(2), from, target),
		Payload: map[string]any{
			"project_id": cost.ProjectID.String(),
			"cost_id":    cost.ID.String(),
			"amount":     cost.Amount.String(),
			"status":     string(target),
		},
		RelatedType: relatedType("cost"),
		RelatedID:   &cost.ID,
	}
}

func excludeUser(ids []uuid.UUID, excluded uuid.UUID) []uuid.UUID {
	filtered := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == excluded {
			continue
		}
		filtered = append(filtered, id)
	}
	return filtered
}
