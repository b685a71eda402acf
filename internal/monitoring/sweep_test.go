package monitoring

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Betech-JSC/bed-app-annha-sub010/internal/notifications"
	"github.com/Betech-JSC/bed-app-annha-sub010/internal/risk"
	"github.com/Betech-JSC/bed-app-annha-sub010/pkg/enums"
	"github.com/Betech-JSC/bed-app-annha-sub010/pkg/logger"
)

type fakeReadPort struct {
	snapshots []risk.ProjectSnapshot
	err       error
}

func (f *fakeReadPort) ActiveProjects(ctx context.Context) ([]risk.ProjectSnapshot, error) {
	return f.snapshots, f.err
}

func (f *fakeReadPort) ProjectSnapshot(ctx context.Context, projectID uuid.UUID) (risk.ProjectSnapshot, error) {
	return risk.ProjectSnapshot{}, nil
}

func (f *fakeReadPort) TeamMemberIDs(ctx context.Context, projectID uuid.UUID) ([]uuid.UUID, error) {
	return nil, nil
}

func (f *fakeReadPort) RoleMemberIDs(ctx context.Context, projectID uuid.UUID, role enums.Role) ([]uuid.UUID, error) {
	return nil, nil
}

func (f *fakeReadPort) GlobalRoleIDs(ctx context.Context, role enums.Role) ([]uuid.UUID, error) {
	return nil, nil
}

type dispatched struct {
	recipient uuid.UUID
	verdict   risk.Verdict
}

type fakeDispatcher struct {
	mu         sync.Mutex
	calls      []dispatched
	suppress   bool
	failPrefix string
}

func (f *fakeDispatcher) SendTx(ctx context.Context, tx *gorm.DB, recipientID uuid.UUID, input notifications.Input) (bool, error) {
	return true, nil
}

func (f *fakeDispatcher) SendToUsersTx(ctx context.Context, tx *gorm.DB, recipientIDs []uuid.UUID, input notifications.Input) (int, error) {
	return len(recipientIDs), nil
}

func (f *fakeDispatcher) DispatchVerdict(ctx context.Context, recipientID uuid.UUID, verdict risk.Verdict) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failPrefix != "" && strings.HasPrefix(verdict.DedupKey, f.failPrefix) {
		return false, errors.New("store unavailable")
	}
	f.calls = append(f.calls, dispatched{recipient: recipientID, verdict: verdict})
	if f.suppress {
		return false, nil
	}
	return true, nil
}

func fixedNow() time.Time {
	return time.Date(2026, 6, 10, 15, 30, 0, 0, time.UTC)
}

// highDefectSnapshot trips exactly one evaluator: the open defect count.
func highDefectSnapshot(managerID *uuid.UUID) risk.ProjectSnapshot {
	snapshot := risk.ProjectSnapshot{
		ID:        uuid.New(),
		Name:      "Tower A",
		Status:    enums.ProjectStatusInProgress,
		ManagerID: managerID,
	}
	for i := 0; i < 11; i++ {
		snapshot.Defects = append(snapshot.Defects, risk.DefectSnapshot{
			ID:     uuid.New(),
			Status: enums.DefectStatusOpen,
		})
	}
	return snapshot
}

func newTestService(t *testing.T, port *fakeReadPort, dispatcher *fakeDispatcher) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Projects:   port,
		Dispatcher: dispatcher,
		Logger:     logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
		Now:        fixedNow,
		Workers:    2,
	})
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}
	return svc
}

func TestRunSweep_NotifiesManagerPerPositiveVerdict(t *testing.T) {
	managerID := uuid.New()
	port := &fakeReadPort{snapshots: []risk.ProjectSnapshot{highDefectSnapshot(&managerID)}}
	dispatcher := &fakeDispatcher{}
	svc := newTestService(t, port, dispatcher)

	result, err := svc.RunSweep(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Evaluated != 1 {
		t.Fatalf("evaluated %d, want 1", result.Evaluated)
	}
	if result.Notified != 1 {
		t.Fatalf("notified %d, want 1", result.Notified)
	}
	if len(dispatcher.calls) != 1 {
		t.Fatalf("expected 1 dispatch, got %d", len(dispatcher.calls))
	}
	call := dispatcher.calls[0]
	if call.recipient != managerID {
		t.Fatal("verdict must go to the project manager")
	}
	if call.verdict.Category != enums.CategoryHighDefects {
		t.Fatalf("unexpected category %s", call.verdict.Category)
	}
}

func TestRunSweep_SuppressedVerdictsCountedSeparately(t *testing.T) {
	managerID := uuid.New()
	port := &fakeReadPort{snapshots: []risk.ProjectSnapshot{highDefectSnapshot(&managerID)}}
	dispatcher := &fakeDispatcher{suppress: true}
	svc := newTestService(t, port, dispatcher)

	result, err := svc.RunSweep(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Notified != 0 {
		t.Fatalf("notified %d, want 0", result.Notified)
	}
	if result.Suppressed != 1 {
		t.Fatalf("suppressed %d, want 1", result.Suppressed)
	}
}

func TestRunSweep_FailureIsIsolatedPerProject(t *testing.T) {
	managerA := uuid.New()
	managerB := uuid.New()
	failing := highDefectSnapshot(&managerA)
	healthy := highDefectSnapshot(&managerB)
	port := &fakeReadPort{snapshots: []risk.ProjectSnapshot{failing, healthy}}
	dispatcher := &fakeDispatcher{failPrefix: "project:" + failing.ID.String()}
	svc := newTestService(t, port, dispatcher)

	result, err := svc.RunSweep(context.Background())
	if err != nil {
		t.Fatalf("the sweep itself must not fail: %v", err)
	}
	if result.Evaluated != 2 {
		t.Fatalf("evaluated %d, want 2", result.Evaluated)
	}
	if result.Failed != 1 {
		t.Fatalf("failed %d, want 1", result.Failed)
	}
	if result.Notified != 1 {
		t.Fatalf("notified %d, want 1", result.Notified)
	}
	if result.Err == nil {
		t.Fatal("isolated failures must be surfaced in the result")
	}
}

func TestRunSweep_SkipsProjectWithoutRecipient(t *testing.T) {
	port := &fakeReadPort{snapshots: []risk.ProjectSnapshot{highDefectSnapshot(nil)}}
	dispatcher := &fakeDispatcher{}
	svc := newTestService(t, port, dispatcher)

	result, err := svc.RunSweep(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Evaluated != 1 {
		t.Fatalf("evaluated %d, want 1", result.Evaluated)
	}
	if len(dispatcher.calls) != 0 {
		t.Fatal("no recipient means no dispatch")
	}
}

func TestRunSweep_OverdueTaskGoesToAssignee(t *testing.T) {
	managerID := uuid.New()
	assignee := uuid.New()
	due := fixedNow().AddDate(0, 0, -3)
	snapshot := risk.ProjectSnapshot{
		ID:        uuid.New(),
		Name:      "Tower A",
		Status:    enums.ProjectStatusInProgress,
		ManagerID: &managerID,
		Tasks: []risk.TaskSnapshot{{
			ID:         uuid.New(),
			Title:      "Pour slab",
			Status:     enums.TaskStatusInProgress,
			AssigneeID: &assignee,
			DueDate:    &due,
		}},
	}
	port := &fakeReadPort{snapshots: []risk.ProjectSnapshot{snapshot}}
	dispatcher := &fakeDispatcher{}
	svc := newTestService(t, port, dispatcher)

	if _, err := svc.RunSweep(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, call := range dispatcher.calls {
		if call.verdict.Category == enums.CategoryOverdueTask && call.recipient != assignee {
			t.Fatalf("overdue verdict went to %s, want assignee %s", call.recipient, assignee)
		}
	}
}

func TestRunSweep_LoadFailure(t *testing.T) {
	port := &fakeReadPort{err: errors.New("connection refused")}
	svc := newTestService(t, port, &fakeDispatcher{})

	if _, err := svc.RunSweep(context.Background()); err == nil {
		t.Fatal("expected error when active projects cannot be loaded")
	}
}

func TestRunSweep_CancelledContextStopsEarly(t *testing.T) {
	managerID := uuid.New()
	port := &fakeReadPort{snapshots: []risk.ProjectSnapshot{
		highDefectSnapshot(&managerID),
		highDefectSnapshot(&managerID),
	}}
	dispatcher := &fakeDispatcher{}
	svc := newTestService(t, port, dispatcher)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result, err := svc.RunSweep(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Err == nil {
		t.Fatal("cancelled sweeps must report the cancellation")
	}
}
