package conflicts

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/skyops/fleetmatch/core/assignment"
	"github.com/skyops/fleetmatch/core/conflict"
	"github.com/skyops/fleetmatch/core/model"
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

func TestScanHandler(t *testing.T) {
	st := store.NewMemoryStore()
	st.Seed(
		[]model.Pilot{{ID: "P001", Name: "Arjun", Location: "Bangalore", Skills: []string{"mapping"}, Status: model.PilotAvailable, DailyRate: 100}},
		[]model.Drone{{ID: "D001", Location: "Bangalore", Status: model.DroneAvailable, WeatherResistance: model.RatingIP67}},
		[]model.Mission{{ID: "PRJ001", Location: "Bangalore", RequiredSkills: []string{"mapping"}, StartDate: date("2025-06-01"), EndDate: date("2025-06-10"), Priority: model.PriorityHigh, Budget: 5000, WeatherForecast: "Clear", Status: model.MissionUnassigned}},
	)
	engine := conflict.NewEngine()
	mgr, err := assignment.NewManager(context.Background(), st, engine, logger.NopLogger{})
	if err != nil {
		t.Fatalf("manager: %v", err)
	}
	h := NewScanHandler(mgr, engine)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/conflicts", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
	}
	var body struct {
		Status    string                 `json:"status"`
		Conflicts []model.ConflictReport `json:"conflicts"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Conflicts) != 0 {
		t.Errorf("clean fleet should report no conflicts: %v", body.Conflicts)
	}

	// Break the committed assignment and scan again.
	if _, err := mgr.Assign(context.Background(), "PRJ001", "P001", "D001"); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if err := mgr.UpdatePilotStatus(context.Background(), "P001", model.PilotOnLeave); err != nil {
		t.Fatalf("status: %v", err)
	}
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/conflicts", nil))
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Conflicts) != 1 || body.Conflicts[0].MissionID != "PRJ001" {
		t.Fatalf("expected one conflict for PRJ001, got %v", body.Conflicts)
	}

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/conflicts", nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST status = %d, want 405", rr.Code)
	}
}
