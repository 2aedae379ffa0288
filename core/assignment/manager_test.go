package assignment

import (
	"context"
	"errors"
	"testing"
	"time"

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

func seedStore() *store.MemoryStore {
	st := store.NewMemoryStore()
	st.Seed(
		[]model.Pilot{
			{ID: "P001", Name: "Arjun", Location: "Bangalore", Skills: []string{"thermal imaging"}, Certifications: []string{"DGCA-Advanced"}, Status: model.PilotAvailable, DailyRate: 100},
			{ID: "P002", Name: "Meera", Location: "Bangalore", Skills: []string{"thermal imaging"}, Certifications: []string{"DGCA-Advanced"}, Status: model.PilotAvailable, DailyRate: 150},
		},
		[]model.Drone{
			{ID: "D001", Model: "Falcon X", Location: "Bangalore", Status: model.DroneAvailable, WeatherResistance: model.RatingIP67},
			{ID: "D002", Model: "Falcon X", Location: "Bangalore", Status: model.DroneAvailable, WeatherResistance: model.RatingIP67},
		},
		[]model.Mission{
			{ID: "PRJ001", Location: "Bangalore", RequiredSkills: []string{"thermal imaging"}, RequiredCerts: []string{"DGCA-Advanced"}, StartDate: date("2025-06-01"), EndDate: date("2025-06-10"), Priority: model.PriorityHigh, Budget: 5000, WeatherForecast: "Clear", Status: model.MissionUnassigned},
			{ID: "PRJ002", Location: "Bangalore", RequiredSkills: []string{"thermal imaging"}, RequiredCerts: []string{"DGCA-Advanced"}, StartDate: date("2025-06-05"), EndDate: date("2025-06-15"), Priority: model.PriorityNormal, Budget: 5000, WeatherForecast: "Clear", Status: model.MissionUnassigned},
		},
	)
	return st
}

func newTestManager(t *testing.T, st store.Store) *Manager {
	t.Helper()
	mgr, err := NewManager(context.Background(), st, conflict.NewEngine(), logger.NopLogger{})
	if err != nil {
		t.Fatalf("manager: %v", err)
	}
	return mgr
}

func TestAssignCommitsAndOccupies(t *testing.T) {
	st := seedStore()
	mgr := newTestManager(t, st)
	ctx := context.Background()

	rec, err := mgr.Assign(ctx, "PRJ001", "P001", "D001")
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if !rec.Active || rec.MissionID != "PRJ001" {
		t.Fatalf("unexpected record: %#v", rec)
	}

	p, _ := mgr.Pilot("P001")
	if p.Status != model.PilotUnavailable || p.CurrentAssignment != "PRJ001" {
		t.Errorf("pilot not occupied: %#v", p)
	}
	d, _ := mgr.Drone("D001")
	if d.Status != model.DroneUnavailable || d.CurrentAssignment != "PRJ001" {
		t.Errorf("drone not occupied: %#v", d)
	}
	m, _ := mgr.Mission("PRJ001")
	if m.Status != model.MissionAssigned || m.AssignedPilot != "P001" || m.AssignedDrone != "D001" {
		t.Errorf("mission not updated: %#v", m)
	}

	// The store saw the same state.
	saved, err := st.LoadMissions(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if saved[0].Status != model.MissionAssigned {
		t.Errorf("mission not persisted: %#v", saved[0])
	}
}

func TestAssignRejectsBusyResource(t *testing.T) {
	mgr := newTestManager(t, seedStore())
	ctx := context.Background()
	if _, err := mgr.Assign(ctx, "PRJ001", "P001", "D001"); err != nil {
		t.Fatalf("assign: %v", err)
	}
	_, err := mgr.Assign(ctx, "PRJ002", "P001", "D002")
	var cv ConstraintViolationError
	if !errors.As(err, &cv) {
		t.Fatalf("expected constraint violation, got %v", err)
	}
	if !cv.Report.Involves(model.ResourcePilot) {
		t.Errorf("violation should point at the pilot: %s", cv.Report.Reason())
	}
	// The second mission stays clean after the rejection.
	m, _ := mgr.Mission("PRJ002")
	if m.Status != model.MissionUnassigned {
		t.Errorf("rejected mission mutated: %#v", m)
	}
}

func TestAssignRejectsDroneInMaintenanceWindow(t *testing.T) {
	st := seedStore()
	ctx := context.Background()
	if err := st.SaveDrone(ctx, model.Drone{ID: "D001", Model: "Falcon X", Location: "Bangalore", Status: model.DroneAvailable, WeatherResistance: model.RatingIP67, MaintenanceDue: date("2025-06-05")}); err != nil {
		t.Fatalf("seed drone: %v", err)
	}
	mgr := newTestManager(t, st)

	_, err := mgr.Assign(ctx, "PRJ001", "P001", "D001")
	var cv ConstraintViolationError
	if !errors.As(err, &cv) {
		t.Fatalf("expected constraint violation, got %v", err)
	}
	found := false
	for _, v := range cv.Report.Violations {
		if v.Kind == model.ViolationMaintenance {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a maintenance violation: %s", cv.Report.Reason())
	}

	d, _ := mgr.Drone("D001")
	if d.Status != model.DroneAvailable || d.CurrentAssignment != "" {
		t.Errorf("drone mutated despite rejection: %#v", d)
	}
	m, _ := mgr.Mission("PRJ001")
	if m.Status != model.MissionUnassigned {
		t.Errorf("mission mutated despite rejection: %#v", m)
	}
}

func TestAssignUnknownIDs(t *testing.T) {
	mgr := newTestManager(t, seedStore())
	ctx := context.Background()
	for _, tc := range []struct{ mission, pilot, drone, kind string }{
		{"nope", "P001", "D001", "mission"},
		{"PRJ001", "nope", "D001", "pilot"},
		{"PRJ001", "P001", "nope", "drone"},
	} {
		_, err := mgr.Assign(ctx, tc.mission, tc.pilot, tc.drone)
		var nf NotFoundError
		if !errors.As(err, &nf) || nf.Kind != tc.kind {
			t.Errorf("expected %s not found, got %v", tc.kind, err)
		}
	}
}

// failingStore wraps a working store and fails saves on demand.
type failingStore struct {
	*store.MemoryStore
	failSaves bool
}

func (f *failingStore) SavePilot(ctx context.Context, p model.Pilot) error {
	if f.failSaves {
		return errors.New("disk full")
	}
	return f.MemoryStore.SavePilot(ctx, p)
}

func (f *failingStore) SaveMission(ctx context.Context, m model.Mission) error {
	if f.failSaves {
		return errors.New("disk full")
	}
	return f.MemoryStore.SaveMission(ctx, m)
}

func TestAssignRollsBackOnStoreFailure(t *testing.T) {
	fs := &failingStore{MemoryStore: seedStore()}
	mgr := newTestManager(t, fs)
	ctx := context.Background()

	fs.failSaves = true
	_, err := mgr.Assign(ctx, "PRJ001", "P001", "D001")
	var io IOFailureError
	if !errors.As(err, &io) {
		t.Fatalf("expected IO failure, got %v", err)
	}

	// Nothing moved: the same assignment succeeds once the store recovers.
	p, _ := mgr.Pilot("P001")
	if p.Status != model.PilotAvailable || p.CurrentAssignment != "" {
		t.Errorf("pilot mutated despite failed commit: %#v", p)
	}
	m, _ := mgr.Mission("PRJ001")
	if m.Status != model.MissionUnassigned {
		t.Errorf("mission mutated despite failed commit: %#v", m)
	}
	if _, ok := mgr.ActiveAssignment("PRJ001"); ok {
		t.Error("no assignment should be active after a failed commit")
	}

	fs.failSaves = false
	if _, err := mgr.Assign(ctx, "PRJ001", "P001", "D001"); err != nil {
		t.Fatalf("assign after recovery: %v", err)
	}
}

func TestReleaseFreesResources(t *testing.T) {
	mgr := newTestManager(t, seedStore())
	ctx := context.Background()
	if _, err := mgr.Assign(ctx, "PRJ001", "P001", "D001"); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if err := mgr.Release(ctx, "PRJ001"); err != nil {
		t.Fatalf("release: %v", err)
	}
	p, _ := mgr.Pilot("P001")
	if p.Status != model.PilotAvailable || p.CurrentAssignment != "" {
		t.Errorf("pilot not released: %#v", p)
	}
	m, _ := mgr.Mission("PRJ001")
	if m.Status != model.MissionUnassigned || m.AssignedPilot != "" {
		t.Errorf("mission not reset: %#v", m)
	}
	var nf NotFoundError
	if err := mgr.Release(ctx, "PRJ001"); !errors.As(err, &nf) {
		t.Errorf("double release should report not found, got %v", err)
	}
}

func TestReassignReleasesReplacedResources(t *testing.T) {
	mgr := newTestManager(t, seedStore())
	ctx := context.Background()
	if _, err := mgr.Assign(ctx, "PRJ001", "P001", "D001"); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if _, err := mgr.Assign(ctx, "PRJ001", "P002", "D002"); err != nil {
		t.Fatalf("reassign: %v", err)
	}
	p, _ := mgr.Pilot("P001")
	if p.Status != model.PilotAvailable || p.CurrentAssignment != "" {
		t.Errorf("replaced pilot not released: %#v", p)
	}
	m, _ := mgr.Mission("PRJ001")
	if m.Status != model.MissionReassigned || m.AssignedPilot != "P002" {
		t.Errorf("mission not reassigned: %#v", m)
	}
	if rec, ok := mgr.ActiveAssignment("PRJ001"); !ok || rec.PilotID != "P002" {
		t.Errorf("active assignment not replaced: %#v", rec)
	}
}

func TestHistoryNewestFirst(t *testing.T) {
	mgr := newTestManager(t, seedStore())
	ctx := context.Background()
	if _, err := mgr.Assign(ctx, "PRJ001", "P001", "D001"); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if _, err := mgr.Assign(ctx, "PRJ001", "P002", "D002"); err != nil {
		t.Fatalf("reassign: %v", err)
	}
	hist := mgr.History()
	if len(hist) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(hist))
	}
	if hist[0].PilotID != "P002" || !hist[0].Active {
		t.Errorf("newest entry wrong: %#v", hist[0])
	}
	if hist[1].PilotID != "P001" || hist[1].Active {
		t.Errorf("replaced entry should be inactive: %#v", hist[1])
	}
}

func TestReloadRebuildsActiveAssignments(t *testing.T) {
	st := seedStore()
	mgr := newTestManager(t, st)
	ctx := context.Background()
	if _, err := mgr.Assign(ctx, "PRJ001", "P001", "D001"); err != nil {
		t.Fatalf("assign: %v", err)
	}

	// A fresh manager over the same store picks the commitment back up.
	fresh := newTestManager(t, st)
	rec, ok := fresh.ActiveAssignment("PRJ001")
	if !ok || rec.PilotID != "P001" || rec.DroneID != "D001" {
		t.Fatalf("assignment not rebuilt from store: %#v", rec)
	}
	snap := fresh.Snapshot()
	if len(snap.Assignments) != 1 {
		t.Errorf("snapshot should carry the rebuilt assignment, got %d", len(snap.Assignments))
	}
}

func TestMarkMissionFailed(t *testing.T) {
	mgr := newTestManager(t, seedStore())
	ctx := context.Background()
	if err := mgr.MarkMissionFailed(ctx, "PRJ001"); err != nil {
		t.Fatalf("mark failed: %v", err)
	}
	m, _ := mgr.Mission("PRJ001")
	if m.Status != model.MissionFailed {
		t.Errorf("mission status = %s, want Failed", m.Status)
	}
}
