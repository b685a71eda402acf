package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Betech-JSC/bed-app-annha-sub010/internal/notifications"
	"github.com/Betech-JSC/bed-app-annha-sub010/internal/projects"
	"github.com/Betech-JSC/bed-app-annha-sub010/pkg/db/models"
	"github.com/Betech-JSC/bed-app-annha-sub010/pkg/enums"
	pkgerrors "github.com/Betech-JSC/bed-app-annha-sub010/pkg/errors"
	"github.com/Betech-JSC/bed-app-annha-sub010/pkg/logger"
	"github.com/Betech-JSC/bed-app-annha-sub010/pkg/outbox"
	"github.com/Betech-JSC/bed-app-annha-sub010/pkg/outbox/payloads"
)

// AcceptanceService drives the three-tier acceptance sign-off machine.
type AcceptanceService interface {
	Create(ctx context.Context, params CreateStageParams) (*models.AcceptanceStage, error)
	AttemptTransition(ctx context.Context, stageID uuid.UUID, target enums.AcceptanceStatus, actor Actor, reason *string) (*models.AcceptanceStage, error)
}

// CreateStageParams describes a new acceptance stage.
type CreateStageParams struct {
	ProjectID   uuid.UUID
	Name        string
	SubmittedBy uuid.UUID
}

// approverRoles maps each forward transition to the role allowed to make it.
var acceptanceApproverRoles = map[enums.AcceptanceStatus]enums.Role{
	enums.AcceptanceSupervisorApproved:     enums.RoleSupervisor,
	enums.AcceptanceProjectManagerApproved: enums.RoleProjectManager,
	enums.AcceptanceCustomerApproved:       enums.RoleCustomer,
}

type acceptanceOutboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// AcceptanceServiceParams wires the acceptance workflow dependencies.
type AcceptanceServiceParams struct {
	DB         txRunner
	Repo       StageRepository
	Projects   projects.ReadPort
	Dispatcher notifications.Dispatcher
	Outbox     acceptanceOutboxEmitter
	Logger     *logger.Logger
	Now        func() time.Time
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type acceptanceService struct {
	db         txRunner
	repo       StageRepository
	projects   projects.ReadPort
	dispatcher notifications.Dispatcher
	outbox     acceptanceOutboxEmitter
	logg       *logger.Logger
	now        func() time.Time
}

// NewAcceptanceService validates dependencies and returns the service.
func NewAcceptanceService(params AcceptanceServiceParams) (AcceptanceService, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "database client required")
	}
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "stage repository required")
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
	return &acceptanceService{
		db:         params.DB,
		repo:       params.Repo,
		projects:   params.Projects,
		dispatcher: params.Dispatcher,
		outbox:     params.Outbox,
		logg:       params.Logger,
		now:        now,
	}, nil
}

// Create persists a new stage in pending state and notifies the project's
// supervisors, treated as a transition from a virtual absent state.
func (s *acceptanceService) Create(ctx context.Context, params CreateStageParams) (*models.AcceptanceStage, error) {
	if params.ProjectID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "project id required")
	}
	if params.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stage name required")
	}

	supervisors, err := s.projects.RoleMemberIDs(ctx, params.ProjectID, enums.RoleSupervisor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve supervisors")
	}

	submittedBy := params.SubmittedBy
	stage := &models.AcceptanceStage{
		ProjectID: params.ProjectID,
		Name:      params.Name,
		Status:    enums.AcceptancePending,
	}
	if submittedBy != uuid.Nil {
		stage.SubmittedBy = &submittedBy
	}

	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.CreateTx(tx, stage); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create acceptance stage")
		}
		_, err := s.dispatcher.SendToUsersTx(ctx, tx, supervisors, notifications.Input{
			Type:        enums.NotificationTypeWorkflow,
			Category:    enums.CategoryWorkflowApproval,
			Priority:    enums.PriorityHigh,
			Title:       "Acceptance stage awaiting review",
			Body:        fmt.Sprintf("Stage %q is pending supervisor approval.", stage.Name),
			Payload:     stagePayload(stage),
			RelatedType: relatedType("acceptance_stage"),
			RelatedID:   &stage.ID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return stage, nil
}

// AttemptTransition validates the target against the current state, applies
// it atomically, and fires the cascade notification for the new state.
func (s *acceptanceService) AttemptTransition(ctx context.Context, stageID uuid.UUID, target enums.AcceptanceStatus, actor Actor, reason *string) (*models.AcceptanceStage, error) {
	if stageID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stage id required")
	}
	if !target.IsValid() || target == enums.AcceptancePending {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid target status %q", target))
	}

	stage, err := s.repo.Get(ctx, stageID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "acceptance stage not found")
	}

	if err := validateAcceptanceTransition(stage.Status, target, actor); err != nil {
		return nil, err
	}

	from := stage.Status
	recipients, err := s.cascadeRecipients(ctx, stage, target)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		applied, err := s.repo.TransitionTx(tx, stage, target, actor.UserID, reason, now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "apply transition")
		}
		if !applied {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "stage was modified concurrently, retry")
		}

		input := acceptanceCascadeInput(stage, from, target)
		if _, err := s.dispatcher.SendToUsersTx(ctx, tx, recipients, input); err != nil {
			return err
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventAcceptanceAdvanced,
			AggregateType: enums.AggregateAcceptance,
			AggregateID:   stage.ID,
			Actor:         &outbox.ActorRef{UserID: actor.UserID, Role: string(actor.Role)},
			Data: payloads.AcceptanceAdvancedEvent{
				StageID:    stage.ID,
				ProjectID:  stage.ProjectID,
				FromStatus: from,
				ToStatus:   target,
				DecidedBy:  actor.UserID,
			},
			Version: 1,
		})
	})
	if err != nil {
		return nil, err
	}
	return stage, nil
}

// validateAcceptanceTransition enforces the successor rule: the target must
// be the immediate next status, or rejected from any non-terminal status.
func validateAcceptanceTransition(current, target enums.AcceptanceStatus, actor Actor) error {
	if current.IsTerminal() {
		return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("stage is already %s", current))
	}
	if target == enums.AcceptanceRejected {
		return nil
	}
	next, ok := current.Next()
	if !ok || next != target {
		return pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("%s is not a valid successor of %s", target, current))
	}
	if required, gated := acceptanceApproverRoles[target]; gated && actor.Role != required {
		return pkgerrors.New(pkgerrors.CodeForbidden,
			fmt.Sprintf("transition to %s requires the %s role", target, required))
	}
	return nil
}

// cascadeRecipients resolves who is notified for the given target state:
// supervisor approval alerts the manager, manager approval alerts the
// customer, customer approval alerts the whole team, rejection alerts the
// submitter.
func (s *acceptanceService) cascadeRecipients(ctx context.Context, stage *models.AcceptanceStage, target enums.AcceptanceStatus) ([]uuid.UUID, error) {
	switch target {
	case enums.AcceptanceSupervisorApproved, enums.AcceptanceProjectManagerApproved:
		snapshot, err := s.projects.ProjectSnapshot(ctx, stage.ProjectID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load project")
		}
		if target == enums.AcceptanceSupervisorApproved {
			if snapshot.ManagerID != nil {
				return []uuid.UUID{*snapshot.ManagerID}, nil
			}
			return nil, nil
		}
		if snapshot.CustomerID != nil {
			return []uuid.UUID{*snapshot.CustomerID}, nil
		}
		return nil, nil
	case enums.AcceptanceCustomerApproved:
		team, err := s.projects.TeamMemberIDs(ctx, stage.ProjectID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve project team")
		}
		return team, nil
	case enums.AcceptanceRejected:
		if stage.SubmittedBy != nil {
			return []uuid.UUID{*stage.SubmittedBy}, nil
		}
		return nil, nil
	default:
		return nil, nil
	}
}

func acceptanceCascadeInput(stage *models.AcceptanceStage, from, target enums.AcceptanceStatus) notifications.Input {
	title := "Acceptance stage updated"
	body := fmt.Sprintf("Stage %q moved from %s to %s.", stage.Name, from, target)
	priority := enums.PriorityHigh
	switch target {
	case enums.AcceptanceCustomerApproved:
		title = "Acceptance stage fully approved"
		body = fmt.Sprintf("Stage %q was approved by the customer.", stage.Name)
	case enums.AcceptanceRejected:
		title = "Acceptance stage rejected"
		body = fmt.Sprintf("Stage %q was rejected.", stage.Name)
		priority = enums.PriorityUrgent
	}
	return notifications.Input{
		Type:        enums.NotificationTypeWorkflow,
		Category:    enums.CategoryWorkflowApproval,
		Priority:    priority,
		Title:       title,
		Body:        body,
		Payload:     stagePayload(stage),
		RelatedType: relatedType("acceptance_stage"),
		RelatedID:   &stage.ID,
	}
}

func stagePayload(stage *models.AcceptanceStage) map[string]any {
	return map[string]any{
		"project_id": stage.ProjectID.String(),
		"stage_id":   stage.ID.String(),
		"status":     string(stage.Status),
	}
}

func relatedType(value string) *string {
	return &value
}
