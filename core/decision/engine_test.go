package decision

import (
	"testing"
	"time"

	"github.com/skyops/fleetmatch/core/conflict"
	"github.com/skyops/fleetmatch/core/model"
)

func date(s string) time.Time {
	t, err := time.Parse(model.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func mission() model.Mission {
	return model.Mission{
		ID:              "PRJ001",
		Location:        "Bangalore",
		RequiredSkills:  []string{"mapping"},
		StartDate:       date("2025-06-01"),
		EndDate:         date("2025-06-10"),
		Budget:          5000,
		WeatherForecast: "Clear",
	}
}

func pilot(id string, rate float64) model.Pilot {
	return model.Pilot{
		ID:        id,
		Name:      id,
		Location:  "Bangalore",
		Skills:    []string{"mapping"},
		Status:    model.PilotAvailable,
		DailyRate: rate,
	}
}

func drone(id string) model.Drone {
	return model.Drone{
		ID:                id,
		Location:          "Bangalore",
		Status:            model.DroneAvailable,
		WeatherResistance: model.RatingIP45,
	}
}

func newTestEngine() *Engine {
	return NewEngine(conflict.NewEngine(), DefaultWeights())
}

func TestRankFiltersIneligible(t *testing.T) {
	e := newTestEngine()
	bad := pilot("P-bad", 100)
	bad.Skills = nil
	ranked := e.Rank(mission(), []model.Pilot{pilot("P1", 100), bad}, []model.Drone{drone("D1")}, conflict.Snapshot{})
	if len(ranked) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(ranked))
	}
	if ranked[0].Pilot.ID != "P1" {
		t.Errorf("wrong candidate: %s", ranked[0].Pilot.ID)
	}
}

func TestRankEmptyResultIsNotAnError(t *testing.T) {
	e := newTestEngine()
	ranked := e.Rank(mission(), nil, nil, conflict.Snapshot{})
	if len(ranked) != 0 {
		t.Fatalf("expected empty ranking, got %d", len(ranked))
	}
	if _, ok := e.Best(mission(), nil, nil, conflict.Snapshot{}); ok {
		t.Fatal("Best should report no candidate")
	}
}

func TestRankCheaperPilotWinsOnCost(t *testing.T) {
	e := newTestEngine()
	cheap := pilot("P-cheap", 100)
	pricey := pilot("P-pricey", 400)
	best, ok := e.Best(mission(), []model.Pilot{pricey, cheap}, []model.Drone{drone("D1")}, conflict.Snapshot{})
	if !ok {
		t.Fatal("expected a candidate")
	}
	if best.Pilot.ID != "P-cheap" {
		t.Errorf("expected the cheaper pilot to rank first, got %s", best.Pilot.ID)
	}
}

func TestRankDeterministicTieBreaks(t *testing.T) {
	e := newTestEngine()
	pilots := []model.Pilot{pilot("P2", 100), pilot("P1", 100)}
	drones := []model.Drone{drone("D2"), drone("D1")}
	for i := 0; i < 3; i++ {
		ranked := e.Rank(mission(), pilots, drones, conflict.Snapshot{})
		if len(ranked) != 4 {
			t.Fatalf("expected 4 candidates, got %d", len(ranked))
		}
		if ranked[0].Pilot.ID != "P1" || ranked[0].Drone.ID != "D1" {
			t.Fatalf("tie should break on pilot then drone ID, got %s/%s", ranked[0].Pilot.ID, ranked[0].Drone.ID)
		}
	}
}

func TestRankTieBreaksOnDailyRate(t *testing.T) {
	// Same score except for cost is impossible, so pin the cost weight to
	// zero and vary only the rate.
	w := DefaultWeights()
	w.Cost = 0
	e := NewEngine(conflict.NewEngine(), w)
	expensive := pilot("P1", 400)
	cheap := pilot("P2", 100)
	ranked := e.Rank(mission(), []model.Pilot{expensive, cheap}, []model.Drone{drone("D1")}, conflict.Snapshot{})
	if len(ranked) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(ranked))
	}
	if ranked[0].Pilot.ID != "P2" {
		t.Errorf("equal scores should prefer the lower daily rate, got %s", ranked[0].Pilot.ID)
	}
}

func TestLocationScoreDecay(t *testing.T) {
	e := newTestEngine()
	m := mission()
	colocated := drone("D-near")
	remote := drone("D-far")
	remote.Location = "Chennai"

	local := e.score(pilot("P1", 100), colocated, m)
	half := e.score(pilot("P1", 100), remote, m)
	if local <= half {
		t.Errorf("co-located pair should outscore a split pair: %f <= %f", local, half)
	}
}

func TestCoverageBonusCapped(t *testing.T) {
	if got := coverage([]string{"a", "b", "c"}, []string{"a"}); got != 1 {
		t.Errorf("coverage with extras = %f, want capped at 1", got)
	}
	if got := coverage([]string{"a"}, []string{"a", "b"}); got != 0.5 {
		t.Errorf("half coverage = %f, want 0.5", got)
	}
	if got := coverage(nil, nil); got != 1 {
		t.Errorf("no requirement coverage = %f, want 1", got)
	}
}

func TestWeightsValidate(t *testing.T) {
	w := Weights{Skill: -1}
	if err := w.Validate(); err == nil {
		t.Error("negative weight should fail validation")
	}
	w = Weights{}
	if err := w.Validate(); err == nil {
		t.Error("all-zero weights should fail validation")
	}
	w = DefaultWeights()
	if err := w.Validate(); err != nil {
		t.Errorf("default weights should validate: %v", err)
	}
}
