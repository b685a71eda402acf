package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/Betech-JSC/bed-app-annha-sub010/api/middleware"
	"github.com/Betech-JSC/bed-app-annha-sub010/internal/workflow"
	"github.com/Betech-JSC/bed-app-annha-sub010/pkg/db/models"
	"github.com/Betech-JSC/bed-app-annha-sub010/pkg/enums"
)

type testAcceptanceService struct {
	createFn     func(ctx context.Context, params workflow.CreateStageParams) (*models.AcceptanceStage, error)
	transitionFn func(ctx context.Context, stageID uuid.UUID, target enums.AcceptanceStatus, actor workflow.Actor, reason *string) (*models.AcceptanceStage, error)
}

func (s *testAcceptanceService) Create(ctx context.Context, params workflow.CreateStageParams) (*models.AcceptanceStage, error) {
	if s.createFn != nil {
		return s.createFn(ctx, params)
	}
	return &models.AcceptanceStage{}, nil
}

func (s *testAcceptanceService) AttemptTransition(ctx context.Context, stageID uuid.UUID, target enums.AcceptanceStatus, actor workflow.Actor, reason *string) (*models.AcceptanceStage, error) {
	if s.transitionFn != nil {
		return s.transitionFn(ctx, stageID, target, actor, reason)
	}
	return &models.AcceptanceStage{}, nil
}

type testCostService struct {
	createFn     func(ctx context.Context, params workflow.CreateCostParams) (*models.Cost, error)
	submitFn     func(ctx context.Context, costID uuid.UUID, actor workflow.Actor) (*models.Cost, error)
	transitionFn func(ctx context.Context, costID uuid.UUID, target enums.CostStatus, actor workflow.Actor, note *string) (*models.Cost, error)
}

func (s *testCostService) Create(ctx context.Context, params workflow.CreateCostParams) (*models.Cost, error) {
	if s.createFn != nil {
		return s.createFn(ctx, params)
	}
	return &models.Cost{}, nil
}

func (s *testCostService) Submit(ctx context.Context, costID uuid.UUID, actor workflow.Actor) (*models.Cost, error) {
	if s.submitFn != nil {
		return s.submitFn(ctx, costID, actor)
	}
	return &models.Cost{}, nil
}

func (s *testCostService) AttemptTransition(ctx context.Context, costID uuid.UUID, target enums.CostStatus, actor workflow.Actor, note *string) (*models.Cost, error) {
	if s.transitionFn != nil {
		return s.transitionFn(ctx, costID, target, actor, note)
	}
	return &models.Cost{}, nil
}

func authedRequest(method, path, body string, userID uuid.UUID, role enums.Role) *http.Request {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	ctx := middleware.WithUserID(req.Context(), userID.String())
	ctx = middleware.WithRole(ctx, string(role))
	return req.WithContext(ctx)
}

func TestAcceptanceCreate(t *testing.T) {
	userID := uuid.New()
	projectID := uuid.New()
	var got workflow.CreateStageParams
	svc := &testAcceptanceService{
		createFn: func(ctx context.Context, params workflow.CreateStageParams) (*models.AcceptanceStage, error) {
			got = params
			return &models.AcceptanceStage{ID: uuid.New()}, nil
		},
	}

	body := `{"project_id":"` + projectID.String() + `","name":"Foundation handover"}`
	req := authedRequest(http.MethodPost, "/api/v1/acceptance-stages", body, userID, enums.RoleSupervisor)
	resp := httptest.NewRecorder()
	AcceptanceCreate(svc, testLogger())(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if got.ProjectID != projectID {
		t.Fatalf("project %s, want %s", got.ProjectID, projectID)
	}
	if got.SubmittedBy != userID {
		t.Fatalf("submitter %s, want %s", got.SubmittedBy, userID)
	}
	if got.Name != "Foundation handover" {
		t.Fatalf("name %q", got.Name)
	}
}

func TestAcceptanceCreateRejectsMissingName(t *testing.T) {
	body := `{"project_id":"` + uuid.NewString() + `"}`
	req := authedRequest(http.MethodPost, "/api/v1/acceptance-stages", body, uuid.New(), enums.RoleSupervisor)
	resp := httptest.NewRecorder()
	AcceptanceCreate(&testAcceptanceService{}, testLogger())(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAcceptanceTransitionParsesTarget(t *testing.T) {
	userID := uuid.New()
	stageID := uuid.New()
	var gotTarget enums.AcceptanceStatus
	var gotActor workflow.Actor
	svc := &testAcceptanceService{
		transitionFn: func(ctx context.Context, sid uuid.UUID, target enums.AcceptanceStatus, actor workflow.Actor, reason *string) (*models.AcceptanceStage, error) {
			if sid != stageID {
				t.Fatalf("stage %s, want %s", sid, stageID)
			}
			gotTarget = target
			gotActor = actor
			return &models.AcceptanceStage{ID: stageID, Status: target}, nil
		},
	}

	body := `{"target":"supervisor_approved"}`
	req := authedRequest(http.MethodPost, "/api/v1/acceptance-stages/"+stageID.String()+"/transition", body, userID, enums.RoleSupervisor)
	req = addRouteParam(req, "stageId", stageID.String())
	resp := httptest.NewRecorder()
	AcceptanceTransition(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if gotTarget != enums.AcceptanceSupervisorApproved {
		t.Fatalf("target %s", gotTarget)
	}
	if gotActor.UserID != userID || gotActor.Role != enums.RoleSupervisor {
		t.Fatalf("unexpected actor %+v", gotActor)
	}
}

func TestAcceptanceTransitionRejectsUnknownTarget(t *testing.T) {
	stageID := uuid.New()
	body := `{"target":"shipped"}`
	req := authedRequest(http.MethodPost, "/api/v1/acceptance-stages/"+stageID.String()+"/transition", body, uuid.New(), enums.RoleSupervisor)
	req = addRouteParam(req, "stageId", stageID.String())
	resp := httptest.NewRecorder()
	AcceptanceTransition(&testAcceptanceService{}, testLogger())(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCostCreateParsesAmount(t *testing.T) {
	userID := uuid.New()
	projectID := uuid.New()
	var got workflow.CreateCostParams
	svc := &testCostService{
		createFn: func(ctx context.Context, params workflow.CreateCostParams) (*models.Cost, error) {
			got = params
			return &models.Cost{ID: uuid.New()}, nil
		},
	}

	body := `{"project_id":"` + projectID.String() + `","title":"Rebar order","amount":"12500.50"}`
	req := authedRequest(http.MethodPost, "/api/v1/costs", body, userID, enums.RoleEngineer)
	resp := httptest.NewRecorder()
	CostCreate(svc, testLogger())(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if got.Amount.String() != "12500.5" {
		t.Fatalf("amount %s", got.Amount)
	}
	if got.CreatedBy != userID {
		t.Fatalf("creator %s, want %s", got.CreatedBy, userID)
	}
}

func TestCostCreateRejectsBadAmount(t *testing.T) {
	body := `{"project_id":"` + uuid.NewString() + `","title":"Rebar order","amount":"a lot"}`
	req := authedRequest(http.MethodPost, "/api/v1/costs", body, uuid.New(), enums.RoleEngineer)
	resp := httptest.NewRecorder()
	CostCreate(&testCostService{}, testLogger())(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCostSubmit(t *testing.T) {
	userID := uuid.New()
	costID := uuid.New()
	called := false
	svc := &testCostService{
		submitFn: func(ctx context.Context, cid uuid.UUID, actor workflow.Actor) (*models.Cost, error) {
			called = true
			if cid != costID {
				t.Fatalf("cost %s, want %s", cid, costID)
			}
			return &models.Cost{ID: costID, Status: enums.CostPendingManagementApproval}, nil
		},
	}

	req := authedRequest(http.MethodPost, "/api/v1/costs/"+costID.String()+"/submit", "", userID, enums.RoleEngineer)
	req = addRouteParam(req, "costId", costID.String())
	resp := httptest.NewRecorder()
	CostSubmit(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if !called {
		t.Fatal("expected submit called")
	}
}

func TestCostTransitionRequiresRole(t *testing.T) {
	costID := uuid.New()
	body := `{"target":"approved"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/costs/"+costID.String()+"/transition", strings.NewReader(body))
	req = req.WithContext(middleware.WithUserID(req.Context(), uuid.NewString()))
	req = addRouteParam(req, "costId", costID.String())
	resp := httptest.NewRecorder()
	CostTransition(&testCostService{}, testLogger())(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestCostTransitionParsesTarget(t *testing.T) {
	userID := uuid.New()
	costID := uuid.New()
	var gotTarget enums.CostStatus
	svc := &testCostService{
		transitionFn: func(ctx context.Context, cid uuid.UUID, target enums.CostStatus, actor workflow.Actor, note *string) (*models.Cost, error) {
			gotTarget = target
			return &models.Cost{ID: cid, Status: target}, nil
		},
	}

	body := `{"target":"pending_accountant_approval"}`
	req := authedRequest(http.MethodPost, "/api/v1/costs/"+costID.String()+"/transition", body, userID, enums.RoleManagement)
	req = addRouteParam(req, "costId", costID.String())
	resp := httptest.NewRecorder()
	CostTransition(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if gotTarget != enums.CostPendingAccountantApproval {
		t.Fatalf("target %s", gotTarget)
	}
}
