package events

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Betech-JSC/bed-app-annha-sub010/internal/notifications"
	"github.com/Betech-JSC/bed-app-annha-sub010/internal/projects"
	"github.com/Betech-JSC/bed-app-annha-sub010/internal/risk"
	"github.com/Betech-JSC/bed-app-annha-sub010/pkg/db/models"
	"github.com/Betech-JSC/bed-app-annha-sub010/pkg/enums"
	pkgerrors "github.com/Betech-JSC/bed-app-annha-sub010/pkg/errors"
	"github.com/Betech-JSC/bed-app-annha-sub010/pkg/logger"
)

// Observer reacts to domain entity writes and emits the assignment and
// status-change notifications that do not go through the approval machines.
// Date and status changes additionally re-run the affected evaluator so the
// team hears about a new deadline or overdue task before the next sweep.
type Observer interface {
	ProjectUpdated(ctx context.Context, before, after models.Project) error
	TaskCreated(ctx context.Context, task models.Task) error
	TaskUpdated(ctx context.Context, before, after models.Task) error
	DefectCreated(ctx context.Context, defect models.Defect) error
	DefectUpdated(ctx context.Context, before, after models.Defect) error
	ChangeRequestCreated(ctx context.Context, request models.ChangeRequest) error
	ChangeRequestUpdated(ctx context.Context, before, after models.ChangeRequest) error
	PersonnelAssigned(ctx context.Context, assignment models.PersonnelAssignment) error
	PersonnelRoleChanged(ctx context.Context, before, after models.PersonnelAssignment) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ObserverParams wires the observer dependencies.
type ObserverParams struct {
	DB         txRunner
	Projects   projects.ReadPort
	Dispatcher notifications.Dispatcher
	Logger     *logger.Logger
	Now        func() time.Time
}

type observer struct {
	db         txRunner
	projects   projects.ReadPort
	dispatcher notifications.Dispatcher
	logg       *logger.Logger
	now        func() time.Time
}

// NewObserver validates dependencies and returns an Observer.
func NewObserver(params ObserverParams) (Observer, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "database client required")
	}
	if params.Projects == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "projects read port required")
	}
	if params.Dispatcher == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notification dispatcher required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "logger required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &observer{
		db:         params.DB,
		projects:   params.Projects,
		dispatcher: params.Dispatcher,
		logg:       params.Logger,
		now:        now,
	}, nil
}

func (o *observer) ProjectUpdated(ctx context.Context, before, after models.Project) error {
	if before.Status != after.Status {
		team, err := o.projects.TeamMemberIDs(ctx, after.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve project team")
		}
		err = o.sendToUsers(ctx, team, notifications.Input{
			Type:     enums.NotificationTypeSystem,
			Category: enums.CategoryStatusChange,
			Priority: enums.PriorityMedium,
			Title:    "Project status changed",
			Body:     fmt.Sprintf("Project %q moved from %s to %s.", after.Name, before.Status, after.Status),
			Payload: map[string]any{
				"project_id": after.ID.String(),
				"from":       string(before.Status),
				"to":         string(after.Status),
			},
			RelatedType: related("project"),
			RelatedID:   &after.ID,
		})
		if err != nil {
			return err
		}
	}

	if !equalDates(before.EndDate, after.EndDate) {
		if err := o.recheckDeadline(ctx, after.ID); err != nil {
			return err
		}
	}
	return nil
}

// recheckDeadline re-runs the deadline evaluator for one project so a newly
// introduced or moved end date alerts immediately.
func (o *observer) recheckDeadline(ctx context.Context, projectID uuid.UUID) error {
	snapshot, err := o.projects.ProjectSnapshot(ctx, projectID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load project")
	}
	verdict, ok := risk.EvaluateDeadlineProximity(snapshot, o.now())
	if !ok {
		return nil
	}
	recipient, ok := snapshot.Recipient()
	if !ok {
		return nil
	}
	_, err = o.dispatcher.DispatchVerdict(ctx, recipient, verdict)
	return err
}

func (o *observer) TaskCreated(ctx context.Context, task models.Task) error {
	if task.AssigneeID == nil {
		return nil
	}
	return o.sendToUsers(ctx, []uuid.UUID{*task.AssigneeID}, taskAssignedInput(task))
}

func (o *observer) TaskUpdated(ctx context.Context, before, after models.Task) error {
	reassigned := after.AssigneeID != nil &&
		(before.AssigneeID == nil || *before.AssigneeID != *after.AssigneeID)
	if reassigned {
		if err := o.sendToUsers(ctx, []uuid.UUID{*after.AssigneeID}, taskAssignedInput(after)); err != nil {
			return err
		}
	}

	statusChanged := before.Status != after.Status
	if statusChanged {
		recipients := make([]uuid.UUID, 0, 2)
		if after.AssigneeID != nil {
			recipients = append(recipients, *after.AssigneeID)
		}
		snapshot, err := o.projects.ProjectSnapshot(ctx, after.ProjectID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load project")
		}
		if snapshot.ManagerID != nil {
			recipients = append(recipients, *snapshot.ManagerID)
		}
		err = o.sendToUsers(ctx, recipients, notifications.Input{
			Type:     enums.NotificationTypeSystem,
			Category: enums.CategoryStatusChange,
			Priority: enums.PriorityMedium,
			Title:    "Task status changed",
			Body:     fmt.Sprintf("Task %q moved from %s to %s.", after.Title, before.Status, after.Status),
			Payload: map[string]any{
				"project_id": after.ProjectID.String(),
				"task_id":    after.ID.String(),
				"from":       string(before.Status),
				"to":         string(after.Status),
			},
			RelatedType: related("task"),
			RelatedID:   &after.ID,
		})
		if err != nil {
			return err
		}
	}

	if (statusChanged || !equalDates(before.DueDate, after.DueDate)) && after.Status.IsOpen() {
		return o.recheckOverdue(ctx, after)
	}
	return nil
}

// recheckOverdue re-runs the overdue evaluator for one task so a slipped due
// date alerts the assignee immediately.
func (o *observer) recheckOverdue(ctx context.Context, task models.Task) error {
	verdicts := risk.EvaluateOverdueTasks([]risk.TaskSnapshot{{
		ID:         task.ID,
		ProjectID:  task.ProjectID,
		Title:      task.Title,
		Status:     task.Status,
		AssigneeID: task.AssigneeID,
		DueDate:    task.DueDate,
	}}, o.now())
	for _, verdict := range verdicts {
		if verdict.Recipient == nil {
			continue
		}
		if _, err := o.dispatcher.DispatchVerdict(ctx, *verdict.Recipient, verdict); err != nil {
			return err
		}
	}
	return nil
}

func (o *observer) DefectCreated(ctx context.Context, defect models.Defect) error {
	team, err := o.projects.TeamMemberIDs(ctx, defect.ProjectID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve project team")
	}
	if defect.ReportedByID != nil {
		team = exclude(team, *defect.ReportedByID)
	}

	priority := enums.PriorityHigh
	if defect.Severity == enums.DefectSeverityCritical {
		priority = enums.PriorityUrgent
	}
	return o.sendToUsers(ctx, team, notifications.Input{
		Type:     enums.NotificationTypeSystem,
		Category: enums.CategoryStatusChange,
		Priority: priority,
		Title:    "New defect reported",
		Body:     fmt.Sprintf("Defect %q (%s severity) was reported.", defect.Title, defect.Severity),
		Payload: map[string]any{
			"project_id": defect.ProjectID.String(),
			"defect_id":  defect.ID.String(),
			"severity":   string(defect.Severity),
		},
		RelatedType: related("defect"),
		RelatedID:   &defect.ID,
	})
}

func (o *observer) DefectUpdated(ctx context.Context, before, after models.Defect) error {
	if before.Status == after.Status {
		return nil
	}

	recipients := make([]uuid.UUID, 0, 3)
	if after.ReportedByID != nil {
		recipients = append(recipients, *after.ReportedByID)
	}
	if after.AssignedToID != nil {
		recipients = append(recipients, *after.AssignedToID)
	}
	snapshot, err := o.projects.ProjectSnapshot(ctx, after.ProjectID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load project")
	}
	if snapshot.ManagerID != nil {
		recipients = append(recipients, *snapshot.ManagerID)
	}
	return o.sendToUsers(ctx, recipients, notifications.Input{
		Type:     enums.NotificationTypeSystem,
		Category: enums.CategoryStatusChange,
		Priority: enums.PriorityMedium,
		Title:    "Defect status changed",
		Body:     fmt.Sprintf("Defect %q moved from %s to %s.", after.Title, before.Status, after.Status),
		Payload: map[string]any{
			"project_id": after.ProjectID.String(),
			"defect_id":  after.ID.String(),
			"from":       string(before.Status),
			"to":         string(after.Status),
		},
		RelatedType: related("defect"),
		RelatedID:   &after.ID,
	})
}

func (o *observer) ChangeRequestCreated(ctx context.Context, request models.ChangeRequest) error {
	team, err := o.projects.TeamMemberIDs(ctx, request.ProjectID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve project team")
	}
	team = exclude(team, request.RequestedByID)

	return o.sendToUsers(ctx, team, notifications.Input{
		Type:     enums.NotificationTypeSystem,
		Category: enums.CategoryStatusChange,
		Priority: enums.PriorityMedium,
		Title:    "New change request",
		Body:     fmt.Sprintf("Change request %q was raised.", request.Title),
		Payload: map[string]any{
			"project_id":        request.ProjectID.String(),
			"change_request_id": request.ID.String(),
		},
		RelatedType: related("change_request"),
		RelatedID:   &request.ID,
	})
}

func (o *observer) ChangeRequestUpdated(ctx context.Context, before, after models.ChangeRequest) error {
	if before.Status == after.Status {
		return nil
	}

	recipients := []uuid.UUID{after.RequestedByID}
	if after.DecidedByID != nil {
		recipients = append(recipients, *after.DecidedByID)
	}
	snapshot, err := o.projects.ProjectSnapshot(ctx, after.ProjectID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load project")
	}
	if snapshot.ManagerID != nil {
		recipients = append(recipients, *snapshot.ManagerID)
	}
	return o.sendToUsers(ctx, recipients, notifications.Input{
		Type:     enums.NotificationTypeSystem,
		Category: enums.CategoryStatusChange,
		Priority: enums.PriorityMedium,
		Title:    "Change request status changed",
		Body:     fmt.Sprintf("Change request %q moved from %s to %s.", after.Title, before.Status, after.Status),
		Payload: map[string]any{
			"project_id":        after.ProjectID.String(),
			"change_request_id": after.ID.String(),
			"from":              string(before.Status),
			"to":                string(after.Status),
		},
		RelatedType: related("change_request"),
		RelatedID:   &after.ID,
	})
}

func (o *observer) PersonnelAssigned(ctx context.Context, assignment models.PersonnelAssignment) error {
	return o.sendToUsers(ctx, []uuid.UUID{assignment.UserID}, notifications.Input{
		Type:     enums.NotificationTypeAssignment,
		Category: enums.CategoryUserAssigned,
		Priority: enums.PriorityMedium,
		Title:    "Added to project",
		Body:     fmt.Sprintf("You were added to the project as %s.", assignment.Role),
		Payload: map[string]any{
			"project_id": assignment.ProjectID.String(),
			"role":       string(assignment.Role),
		},
		RelatedType: related("project"),
		RelatedID:   &assignment.ProjectID,
	})
}

func (o *observer) PersonnelRoleChanged(ctx context.Context, before, after models.PersonnelAssignment) error {
	if before.Role == after.Role {
		return nil
	}
	return o.sendToUsers(ctx, []uuid.UUID{after.UserID}, notifications.Input{
		Type:     enums.NotificationTypeAssignment,
		Category: enums.CategoryUserAssigned,
		Priority: enums.PriorityMedium,
		Title:    "Project role changed",
		Body:     fmt.Sprintf("Your project role changed from %s to %s.", before.Role, after.Role),
		Payload: map[string]any{
			"project_id": after.ProjectID.String(),
			"from":       string(before.Role),
			"to":         string(after.Role),
		},
		RelatedType: related("project"),
		RelatedID:   &after.ProjectID,
	})
}

func (o *observer) sendToUsers(ctx context.Context, recipients []uuid.UUID, input notifications.Input) error {
	if len(recipients) == 0 {
		return nil
	}
	return o.db.WithTx(ctx, func(tx *gorm.DB) error {
		_, err := o.dispatcher.SendToUsersTx(ctx, tx, recipients, input)
		return err
	})
}

func taskAssignedInput(task models.Task) notifications.Input {
	return notifications.Input{
		Type:     enums.NotificationTypeAssignment,
		Category: enums.CategoryUserAssigned,
		Priority: enums.PriorityMedium,
		Title:    "Task assigned to you",
		Body:     fmt.Sprintf("You were assigned task %q.", task.Title),
		Payload: map[string]any{
			"project_id": task.ProjectID.String(),
			"task_id":    task.ID.String(),
		},
		RelatedType: related("task"),
		RelatedID:   &task.ID,
	}
}

func exclude(ids []uuid.UUID, excluded uuid.UUID) []uuid.UUID {
	filtered := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == excluded {
			continue
		}
		filtered = append(filtered, id)
	}
	return filtered
}

func equalDates(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func related(value string) *string {
	return &value
}
