package sheet

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/skyops/fleetmatch/core/model"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoadPilotsHeaderNormalization(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, pilotsFile,
		"Pilot_ID , NAME ,location,Skills,certifications,Status,daily_rate\n"+
			"P001,Arjun,Bangalore,\"thermal imaging, mapping\",DGCA-Advanced,Available,450\n"+
			",ghost,Chennai,,,,\n")
	s, err := NewStore(dir)
	require.NoError(t, err)

	pilots, err := s.LoadPilots(context.Background())
	require.NoError(t, err)
	require.Len(t, pilots, 1, "rows without an ID are skipped")

	p := pilots[0]
	require.Equal(t, "P001", p.ID)
	require.Equal(t, []string{"thermal imaging", "mapping"}, p.Skills)
	require.Equal(t, model.PilotAvailable, p.Status)
	require.Equal(t, 450.0, p.DailyRate)
	require.Empty(t, p.CurrentAssignment, "absent column reads as empty")
}

func TestLoadDronesDefaults(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, dronesFile,
		"drone_id,model,location\n"+
			"D001,Falcon X,Bangalore\n")
	s, err := NewStore(dir)
	require.NoError(t, err)

	drones, err := s.LoadDrones(context.Background())
	require.NoError(t, err)
	require.Len(t, drones, 1)
	require.Equal(t, model.DroneAvailable, drones[0].Status)
	require.Equal(t, model.RatingIP20, drones[0].WeatherResistance)
	require.True(t, drones[0].MaintenanceDue.IsZero())
}

func TestLoadMissingFileIsEmpty(t *testing.T) {
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)
	missions, err := s.LoadMissions(context.Background())
	require.NoError(t, err)
	require.Empty(t, missions)
}

func TestSaveMissionRoundTrip(t *testing.T) {
	s, err := NewStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	m := model.Mission{
		ID:              "PRJ001",
		Client:          "AgriCo",
		Location:        "Bangalore",
		RequiredSkills:  []string{"thermal imaging"},
		StartDate:       mustDate(t, "2025-06-01"),
		EndDate:         mustDate(t, "2025-06-10"),
		Priority:        model.PriorityHigh,
		Budget:          5000,
		WeatherForecast: "Clear",
		Status:          model.MissionAssigned,
		AssignedPilot:   "P001",
		AssignedDrone:   "D001",
	}
	require.NoError(t, s.SaveMission(ctx, m))

	loaded, err := s.LoadMissions(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	require.Equal(t, m.ID, loaded[0].ID)
	require.Equal(t, m.Priority, loaded[0].Priority)
	require.Equal(t, m.Budget, loaded[0].Budget)
	require.Equal(t, m.AssignedPilot, loaded[0].AssignedPilot)
	require.True(t, m.StartDate.Equal(loaded[0].StartDate))

	// A second save for the same ID replaces the row.
	m.Status = model.MissionReassigned
	require.NoError(t, s.SaveMission(ctx, m))
	loaded, err = s.LoadMissions(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	require.Equal(t, model.MissionReassigned, loaded[0].Status)
}

func TestSaveUpgradesOldSchema(t *testing.T) {
	dir := t.TempDir()
	// An older sheet without the assignment columns.
	writeFile(t, dir, missionsFile,
		"mission_id,location,priority\n"+
			"PRJ001,Bangalore,High\n"+
			"PRJ002,Chennai,Low\n")
	s, err := NewStore(dir)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.SaveMission(ctx, model.Mission{
		ID:       "PRJ001",
		Location: "Bangalore",
		Priority: model.PriorityHigh,
		Status:   model.MissionAssigned,
	}))

	data, err := os.ReadFile(filepath.Join(dir, missionsFile))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Equal(t, strings.Join(missionHeader, ","), lines[0], "header is rewritten with the full schema")
	require.Len(t, lines, 3)

	// The untouched row survives the projection.
	loaded, err := s.LoadMissions(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 2)
	var other model.Mission
	for _, m := range loaded {
		if m.ID == "PRJ002" {
			other = m
		}
	}
	require.Equal(t, "Chennai", other.Location)
	require.Equal(t, model.PriorityLow, other.Priority)
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	parsed, err := time.Parse(model.DateLayout, s)
	require.NoError(t, err)
	return parsed
}
