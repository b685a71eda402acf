package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/Betech-JSC/bed-app-annha-sub010/pkg/db/models"
)

type recordingObserver struct {
	taskCreated    int
	taskUpdated    int
	defectCreated  int
	projectUpdated int
}

func (o *recordingObserver) ProjectUpdated(ctx context.Context, before, after models.Project) error {
	o.projectUpdated++
	return nil
}

func (o *recordingObserver) TaskCreated(ctx context.Context, task models.Task) error {
	o.taskCreated++
	return nil
}

func (o *recordingObserver) TaskUpdated(ctx context.Context, before, after models.Task) error {
	o.taskUpdated++
	return nil
}

func (o *recordingObserver) DefectCreated(ctx context.Context, defect models.Defect) error {
	o.defectCreated++
	return nil
}

func (o *recordingObserver) DefectUpdated(ctx context.Context, before, after models.Defect) error {
	return nil
}

func (o *recordingObserver) ChangeRequestCreated(ctx context.Context, request models.ChangeRequest) error {
	return nil
}

func (o *recordingObserver) ChangeRequestUpdated(ctx context.Context, before, after models.ChangeRequest) error {
	return nil
}

func (o *recordingObserver) PersonnelAssigned(ctx context.Context, assignment models.PersonnelAssignment) error {
	return nil
}

func (o *recordingObserver) PersonnelRoleChanged(ctx context.Context, before, after models.PersonnelAssignment) error {
	return nil
}

func postEvent(t *testing.T, observer *recordingObserver, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/events", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	EntityEvent(observer, testLogger())(resp, req)
	return resp
}

func TestEntityEventRoutesTaskCreated(t *testing.T) {
	observer := &recordingObserver{}
	body := `{"entity_kind":"task","event_kind":"created","payload":{"after":{"id":"` + uuid.NewString() + `","title":"Pour slab"}}}`
	resp := postEvent(t, observer, body)

	if resp.Code != http.StatusAccepted {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if observer.taskCreated != 1 {
		t.Fatalf("task created calls %d, want 1", observer.taskCreated)
	}
}

func TestEntityEventRoutesTaskUpdated(t *testing.T) {
	observer := &recordingObserver{}
	id := uuid.NewString()
	body := `{"entity_kind":"task","event_kind":"updated","payload":{"before":{"id":"` + id + `"},"after":{"id":"` + id + `"}}}`
	resp := postEvent(t, observer, body)

	if resp.Code != http.StatusAccepted {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if observer.taskUpdated != 1 {
		t.Fatalf("task updated calls %d, want 1", observer.taskUpdated)
	}
}

func TestEntityEventRejectsUnknownEntity(t *testing.T) {
	resp := postEvent(t, &recordingObserver{}, `{"entity_kind":"invoice","event_kind":"created","payload":{"after":{}}}`)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestEntityEventRejectsUpdateWithoutBefore(t *testing.T) {
	observer := &recordingObserver{}
	body := `{"entity_kind":"task","event_kind":"updated","payload":{"after":{"id":"` + uuid.NewString() + `"}}}`
	resp := postEvent(t, observer, body)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if observer.taskUpdated != 0 {
		t.Fatal("observer must not run without a before snapshot")
	}
}
