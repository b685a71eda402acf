package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Betech-JSC/bed-app-annha-sub010/internal/monitoring"
)

type testMonitorService struct {
	result monitoring.SweepResult
	err    error
	runs   int
}

func (s *testMonitorService) RunSweep(ctx context.Context) (monitoring.SweepResult, error) {
	s.runs++
	return s.result, s.err
}

type testRateLimiter struct {
	allowed bool
	err     error
}

func (l *testRateLimiter) FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error) {
	if l.err != nil {
		return false, 0, l.err
	}
	return l.allowed, 1, nil
}

func TestTriggerSweepReturnsCounts(t *testing.T) {
	svc := &testMonitorService{result: monitoring.SweepResult{Evaluated: 5, Notified: 2, Suppressed: 3}}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/monitoring/sweep", nil)
	resp := httptest.NewRecorder()
	TriggerSweep(svc, &testRateLimiter{allowed: true}, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if svc.runs != 1 {
		t.Fatalf("sweep runs %d, want 1", svc.runs)
	}
	var envelope struct {
		Data map[string]any `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data["evaluated"] != float64(5) {
		t.Fatalf("evaluated %v, want 5", envelope.Data["evaluated"])
	}
}

func TestTriggerSweepRateLimited(t *testing.T) {
	svc := &testMonitorService{}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/monitoring/sweep", nil)
	resp := httptest.NewRecorder()
	TriggerSweep(svc, &testRateLimiter{allowed: false}, testLogger())(resp, req)

	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 got %d", resp.Code)
	}
	if svc.runs != 0 {
		t.Fatal("sweep must not run when rate limited")
	}
}

func TestTriggerSweepSurfacesPartialFailures(t *testing.T) {
	svc := &testMonitorService{result: monitoring.SweepResult{
		Evaluated: 3,
		Failed:    1,
		Err:       errors.New("project x: store unavailable"),
	}}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/monitoring/sweep", nil)
	resp := httptest.NewRecorder()
	TriggerSweep(svc, &testRateLimiter{allowed: true}, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	var envelope struct {
		Data map[string]any `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data["failures"] == nil {
		t.Fatal("expected failure detail in response")
	}
}
