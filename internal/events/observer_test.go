package events

import (
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Betech-JSC/bed-app-annha-sub010/internal/notifications"
	"github.com/Betech-JSC/bed-app-annha-sub010/internal/risk"
	"github.com/Betech-JSC/bed-app-annha-sub010/pkg/db/models"
	"github.com/Betech-JSC/bed-app-annha-sub010/pkg/enums"
	pkgerrors "github.com/Betech-JSC/bed-app-annha-sub010/pkg/errors"
	"github.com/Betech-JSC/bed-app-annha-sub010/pkg/logger"
)

type fakeTxRunner struct{}

func (f *fakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

type sentBatch struct {
	recipients []uuid.UUID
	input      notifications.Input
}

type fakeDispatcher struct {
	sent              []sentBatch
	verdicts          []risk.Verdict
	verdictRecipients []uuid.UUID
}

func (f *fakeDispatcher) SendTx(ctx context.Context, tx *gorm.DB, recipientID uuid.UUID, input notifications.Input) (bool, error) {
	f.sent = append(f.sent, sentBatch{recipients: []uuid.UUID{recipientID}, input: input})
	return true, nil
}

func (f *fakeDispatcher) SendToUsersTx(ctx context.Context, tx *gorm.DB, recipientIDs []uuid.UUID, input notifications.Input) (int, error) {
	f.sent = append(f.sent, sentBatch{recipients: recipientIDs, input: input})
	return len(recipientIDs), nil
}

func (f *fakeDispatcher) DispatchVerdict(ctx context.Context, recipientID uuid.UUID, verdict risk.Verdict) (bool, error) {
	f.verdicts = append(f.verdicts, verdict)
	f.verdictRecipients = append(f.verdictRecipients, recipientID)
	return true, nil
}

type fakeReadPort struct {
	snapshot risk.ProjectSnapshot
	team     []uuid.UUID
}

func (f *fakeReadPort) ActiveProjects(ctx context.Context) ([]risk.ProjectSnapshot, error) {
	return nil, nil
}

func (f *fakeReadPort) ProjectSnapshot(ctx context.Context, projectID uuid.UUID) (risk.ProjectSnapshot, error) {
	return f.snapshot, nil
}

func (f *fakeReadPort) TeamMemberIDs(ctx context.Context, projectID uuid.UUID) ([]uuid.UUID, error) {
	return f.team, nil
}

func (f *fakeReadPort) RoleMemberIDs(ctx context.Context, projectID uuid.UUID, role enums.Role) ([]uuid.UUID, error) {
	return nil, nil
}

func (f *fakeReadPort) GlobalRoleIDs(ctx context.Context, role enums.Role) ([]uuid.UUID, error) {
	return nil, nil
}

func fixedNow() time.Time {
	return time.Date(2026, 6, 10, 15, 30, 0, 0, time.UTC)
}

func newTestObserver(t *testing.T, port *fakeReadPort, dispatcher *fakeDispatcher) Observer {
	t.Helper()
	obs, err := NewObserver(ObserverParams{
		DB:         &fakeTxRunner{},
		Projects:   port,
		Dispatcher: dispatcher,
		Logger:     logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
		Now:        fixedNow,
	})
	if err != nil {
		t.Fatalf("NewObserver returned error: %v", err)
	}
	return obs
}

func datePtr(t time.Time) *time.Time {
	return &t
}

func TestProjectUpdated_StatusChangeNotifiesTeam(t *testing.T) {
	team := []uuid.UUID{uuid.New(), uuid.New()}
	dispatcher := &fakeDispatcher{}
	obs := newTestObserver(t, &fakeReadPort{team: team}, dispatcher)

	before := models.Project{ID: uuid.New(), Name: "Tower A", Status: enums.ProjectStatusPlanning}
	after := before
	after.Status = enums.ProjectStatusInProgress

	if err := obs.ProjectUpdated(context.Background(), before, after); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(dispatcher.sent) != 1 {
		t.Fatalf("expected 1 batch, got %d", len(dispatcher.sent))
	}
	if len(dispatcher.sent[0].recipients) != len(team) {
		t.Fatalf("expected team recipients, got %v", dispatcher.sent[0].recipients)
	}
	if dispatcher.sent[0].input.Category != enums.CategoryStatusChange {
		t.Fatalf("unexpected category %s", dispatcher.sent[0].input.Category)
	}
}

func TestProjectUpdated_EndDateChangeRechecksDeadline(t *testing.T) {
	managerID := uuid.New()
	projectID := uuid.New()
	// End date exactly 7 days out lands on a deadline checkpoint.
	endDate := fixedNow().AddDate(0, 0, 7)
	port := &fakeReadPort{snapshot: risk.ProjectSnapshot{
		ID:        projectID,
		Name:      "Tower A",
		ManagerID: &managerID,
		EndDate:   &endDate,
	}}
	dispatcher := &fakeDispatcher{}
	obs := newTestObserver(t, port, dispatcher)

	before := models.Project{ID: projectID, Status: enums.ProjectStatusInProgress}
	after := before
	after.EndDate = datePtr(endDate)

	if err := obs.ProjectUpdated(context.Background(), before, after); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(dispatcher.verdicts) != 1 {
		t.Fatalf("expected 1 deadline verdict, got %d", len(dispatcher.verdicts))
	}
	if dispatcher.verdicts[0].Category != enums.CategoryDeadline {
		t.Fatalf("unexpected category %s", dispatcher.verdicts[0].Category)
	}
	if dispatcher.verdictRecipients[0] != managerID {
		t.Fatalf("deadline alert must go to the manager")
	}
	if len(dispatcher.sent) != 0 {
		t.Fatal("no status notification expected without a status change")
	}
}

func TestTaskCreated_NotifiesAssignee(t *testing.T) {
	assignee := uuid.New()
	dispatcher := &fakeDispatcher{}
	obs := newTestObserver(t, &fakeReadPort{}, dispatcher)

	task := models.Task{ID: uuid.New(), ProjectID: uuid.New(), Title: "Pour slab", AssigneeID: &assignee}
	if err := obs.TaskCreated(context.Background(), task); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(dispatcher.sent) != 1 || dispatcher.sent[0].recipients[0] != assignee {
		t.Fatalf("expected assignee notification, got %v", dispatcher.sent)
	}
	if dispatcher.sent[0].input.Category != enums.CategoryUserAssigned {
		t.Fatalf("unexpected category %s", dispatcher.sent[0].input.Category)
	}
}

func TestTaskCreated_UnassignedIsSilent(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	obs := newTestObserver(t, &fakeReadPort{}, dispatcher)

	if err := obs.TaskCreated(context.Background(), models.Task{ID: uuid.New()}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(dispatcher.sent) != 0 {
		t.Fatal("no notification expected for an unassigned task")
	}
}

func TestTaskUpdated_ReassignmentNotifiesNewAssignee(t *testing.T) {
	oldAssignee := uuid.New()
	newAssignee := uuid.New()
	dispatcher := &fakeDispatcher{}
	obs := newTestObserver(t, &fakeReadPort{}, dispatcher)

	before := models.Task{ID: uuid.New(), ProjectID: uuid.New(), Title: "Pour slab", Status: enums.TaskStatusInProgress, AssigneeID: &oldAssignee}
	after := before
	after.AssigneeID = &newAssignee

	if err := obs.TaskUpdated(context.Background(), before, after); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(dispatcher.sent) != 1 || dispatcher.sent[0].recipients[0] != newAssignee {
		t.Fatalf("expected new assignee notification, got %v", dispatcher.sent)
	}
}

func TestTaskUpdated_StatusChangeNotifiesAssigneeAndManager(t *testing.T) {
	assignee := uuid.New()
	managerID := uuid.New()
	port := &fakeReadPort{snapshot: risk.ProjectSnapshot{ManagerID: &managerID}}
	dispatcher := &fakeDispatcher{}
	obs := newTestObserver(t, port, dispatcher)

	before := models.Task{ID: uuid.New(), ProjectID: uuid.New(), Title: "Pour slab", Status: enums.TaskStatusPending, AssigneeID: &assignee}
	after := before
	after.Status = enums.TaskStatusCompleted

	if err := obs.TaskUpdated(context.Background(), before, after); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(dispatcher.sent) != 1 {
		t.Fatalf("expected 1 batch, got %d", len(dispatcher.sent))
	}
	got := dispatcher.sent[0].recipients
	if len(got) != 2 || got[0] != assignee || got[1] != managerID {
		t.Fatalf("expected assignee and manager, got %v", got)
	}
}

func TestTaskUpdated_DueDateSlipRechecksOverdue(t *testing.T) {
	assignee := uuid.New()
	dispatcher := &fakeDispatcher{}
	obs := newTestObserver(t, &fakeReadPort{}, dispatcher)

	oldDue := fixedNow().AddDate(0, 0, 5)
	newDue := fixedNow().AddDate(0, 0, -3)
	before := models.Task{ID: uuid.New(), ProjectID: uuid.New(), Title: "Pour slab", Status: enums.TaskStatusInProgress, AssigneeID: &assignee, DueDate: &oldDue}
	after := before
	after.DueDate = &newDue

	if err := obs.TaskUpdated(context.Background(), before, after); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(dispatcher.verdicts) != 1 {
		t.Fatalf("expected 1 overdue verdict, got %d", len(dispatcher.verdicts))
	}
	if dispatcher.verdicts[0].Category != enums.CategoryOverdueTask {
		t.Fatalf("unexpected category %s", dispatcher.verdicts[0].Category)
	}
	if dispatcher.verdictRecipients[0] != assignee {
		t.Fatal("overdue alert must go to the assignee")
	}
}

func TestDefectCreated_CriticalSeverityIsUrgentAndExcludesReporter(t *testing.T) {
	reporter := uuid.New()
	other := uuid.New()
	port := &fakeReadPort{team: []uuid.UUID{reporter, other}}
	dispatcher := &fakeDispatcher{}
	obs := newTestObserver(t, port, dispatcher)

	defect := models.Defect{
		ID:           uuid.New(),
		ProjectID:    uuid.New(),
		Title:        "Crack in load-bearing wall",
		Severity:     enums.DefectSeverityCritical,
		ReportedByID: &reporter,
	}
	if err := obs.DefectCreated(context.Background(), defect); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	batch := dispatcher.sent[0]
	if len(batch.recipients) != 1 || batch.recipients[0] != other {
		t.Fatalf("reporter must be excluded, got %v", batch.recipients)
	}
	if batch.input.Priority != enums.PriorityUrgent {
		t.Fatalf("critical defect must be urgent, got %s", batch.input.Priority)
	}
}

func TestDefectUpdated_StatusChangeNotifiesReporterFixerManager(t *testing.T) {
	reporter := uuid.New()
	fixer := uuid.New()
	managerID := uuid.New()
	port := &fakeReadPort{snapshot: risk.ProjectSnapshot{ManagerID: &managerID}}
	dispatcher := &fakeDispatcher{}
	obs := newTestObserver(t, port, dispatcher)

	before := models.Defect{ID: uuid.New(), ProjectID: uuid.New(), Title: "Leak", Status: enums.DefectStatusOpen, ReportedByID: &reporter, AssignedToID: &fixer}
	after := before
	after.Status = enums.DefectStatusResolved

	if err := obs.DefectUpdated(context.Background(), before, after); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := dispatcher.sent[0].recipients
	if len(got) != 3 {
		t.Fatalf("expected reporter, fixer and manager, got %v", got)
	}
}

func TestPersonnelRoleChanged_NotifiesUser(t *testing.T) {
	userID := uuid.New()
	dispatcher := &fakeDispatcher{}
	obs := newTestObserver(t, &fakeReadPort{}, dispatcher)

	before := models.PersonnelAssignment{ProjectID: uuid.New(), UserID: userID, Role: enums.RoleEngineer}
	after := before
	after.Role = enums.RoleSupervisor

	if err := obs.PersonnelRoleChanged(context.Background(), before, after); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(dispatcher.sent) != 1 || dispatcher.sent[0].recipients[0] != userID {
		t.Fatalf("expected user notification, got %v", dispatcher.sent)
	}
}

func TestDispatch_RoutesTaskCreated(t *testing.T) {
	assignee := uuid.New()
	dispatcher := &fakeDispatcher{}
	obs := newTestObserver(t, &fakeReadPort{}, dispatcher)

	payload, err := json.Marshal(map[string]any{
		"after": models.Task{ID: uuid.New(), ProjectID: uuid.New(), Title: "Pour slab", AssigneeID: &assignee},
	})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	if err := Dispatch(context.Background(), obs, EntityTask, EventCreated, payload); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(dispatcher.sent) != 1 {
		t.Fatalf("expected routed notification, got %d batches", len(dispatcher.sent))
	}
}

func TestDispatch_UpdateRequiresBeforeSnapshot(t *testing.T) {
	obs := newTestObserver(t, &fakeReadPort{}, &fakeDispatcher{})

	payload := json.RawMessage(`{"after":{}}`)
	err := Dispatch(context.Background(), obs, EntityTask, EventUpdated, payload)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation code, got %s", pkgerrors.As(err).Code())
	}
}

func TestDispatch_RejectsUnknownEntityKind(t *testing.T) {
	obs := newTestObserver(t, &fakeReadPort{}, &fakeDispatcher{})

	err := Dispatch(context.Background(), obs, EntityKind("invoice"), EventCreated, json.RawMessage(`{}`))
	if err == nil {
		t.Fatal("expected validation error")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation code, got %s", pkgerrors.As(err).Code())
	}
}
