package reassign

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/skyops/fleetmatch/core/assignment"
	"github.com/skyops/fleetmatch/core/conflict"
	"github.com/skyops/fleetmatch/core/decision"
	"github.com/skyops/fleetmatch/core/model"
	corereassign "github.com/skyops/fleetmatch/core/reassign"
	"github.com/skyops/fleetmatch/core/reassign/logging"
	"github.com/skyops/fleetmatch/core/store"
	"github.com/skyops/fleetmatch/infra/logger"
)

func date(s string) time.Time {
	t, err := time.Parse(model.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func newTestService(t *testing.T) (*corereassign.Service, *assignment.Manager) {
	t.Helper()
	st := store.NewMemoryStore()
	st.Seed(
		[]model.Pilot{
			{ID: "P001", Name: "Arjun", Location: "Bangalore", Skills: []string{"mapping"}, Status: model.PilotAvailable, DailyRate: 100},
			{ID: "P002", Name: "Meera", Location: "Bangalore", Skills: []string{"mapping"}, Status: model.PilotAvailable, DailyRate: 150},
		},
		[]model.Drone{
			{ID: "D001", Location: "Bangalore", Status: model.DroneAvailable, WeatherResistance: model.RatingIP67},
			{ID: "D002", Location: "Bangalore", Status: model.DroneAvailable, WeatherResistance: model.RatingIP67},
		},
		[]model.Mission{
			{ID: "PRJ001", Location: "Bangalore", RequiredSkills: []string{"mapping"}, StartDate: date("2025-06-01"), EndDate: date("2025-06-10"), Priority: model.PriorityUrgent, Budget: 5000, WeatherForecast: "Clear", Status: model.MissionUnassigned},
		},
	)
	conflicts := conflict.NewEngine()
	mgr, err := assignment.NewManager(context.Background(), st, conflicts, logger.NopLogger{})
	if err != nil {
		t.Fatalf("manager: %v", err)
	}
	svc, err := corereassign.NewService(mgr, decision.NewEngine(conflicts, decision.DefaultWeights()), conflicts, logging.NewMemoryStore(), logger.NopLogger{})
	if err != nil {
		t.Fatalf("service: %v", err)
	}
	return svc, mgr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return body
}

func TestProcessHandler(t *testing.T) {
	svc, mgr := newTestService(t)
	h := NewProcessHandler(svc)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/reassign/process",
		strings.NewReader(`{"mission_id":"PRJ001"}`)))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	body := decode(t, rr)
	if body["outcome"] != string(corereassign.OutcomeReassigned) {
		t.Errorf("outcome = %v, want Reassigned", body["outcome"])
	}
	if _, ok := mgr.ActiveAssignment("PRJ001"); !ok {
		t.Error("mission should be assigned after processing")
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/reassign/process",
		strings.NewReader(`{"mission_id":"nope"}`)))
	if rr.Code != http.StatusNotFound {
		t.Errorf("unknown mission status = %d, want 404", rr.Code)
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/reassign/process", strings.NewReader(`{}`)))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("missing mission_id status = %d, want 400", rr.Code)
	}
}

func TestSweepHandler(t *testing.T) {
	svc, _ := newTestService(t)
	h := NewSweepHandler(svc, logger.NopLogger{})

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/reassign/sweep", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	body := decode(t, rr)
	outcomes, ok := body["outcomes"].(map[string]any)
	if !ok || outcomes["PRJ001"] != string(corereassign.OutcomeReassigned) {
		t.Errorf("unexpected outcomes: %v", body["outcomes"])
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/reassign/sweep", nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET status = %d, want 405", rr.Code)
	}
}

func TestLogHandler(t *testing.T) {
	svc, _ := newTestService(t)
	if _, err := svc.ProcessOne(context.Background(), "PRJ001"); err != nil {
		t.Fatalf("process: %v", err)
	}
	h := NewLogHandler(svc)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/reassign/log?mission_id=PRJ001", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	body := decode(t, rr)
	entries, ok := body["entries"].([]any)
	if !ok || len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %v", body["entries"])
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/reassign/log?mission_id=other", nil))
	if body := decode(t, rr); len(body["entries"].([]any)) != 0 {
		t.Errorf("filter should exclude other missions: %v", body["entries"])
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/reassign/log?start=bogus", nil))
	if rr.Code != http.StatusBadRequest {
		t.Errorf("bad start status = %d, want 400", rr.Code)
	}
}
