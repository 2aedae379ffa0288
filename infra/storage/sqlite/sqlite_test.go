package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/skyops/fleetmatch/core/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "fleet.db"))
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, s.Close()) })
	return s
}

func TestPilotRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := model.Pilot{
		ID:             "P001",
		Name:           "Arjun",
		Location:       "Bangalore",
		Skills:         []string{"thermal imaging", "mapping"},
		Certifications: []string{"DGCA-Advanced"},
		Status:         model.PilotAvailable,
		AvailableFrom:  time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		DailyRate:      450,
	}
	require.NoError(t, s.SavePilot(ctx, p))

	loaded, err := s.LoadPilots(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	require.Equal(t, p.Skills, loaded[0].Skills)
	require.Equal(t, p.DailyRate, loaded[0].DailyRate)
	require.True(t, p.AvailableFrom.Equal(loaded[0].AvailableFrom))

	// Saving the same ID upserts.
	p.Status = model.PilotOnLeave
	p.CurrentAssignment = "PRJ001"
	require.NoError(t, s.SavePilot(ctx, p))
	loaded, err = s.LoadPilots(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	require.Equal(t, model.PilotOnLeave, loaded[0].Status)
	require.Equal(t, "PRJ001", loaded[0].CurrentAssignment)
}

func TestDroneZeroMaintenance(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.SaveDrone(ctx, model.Drone{
		ID:                "D001",
		Model:             "Falcon X",
		Status:            model.DroneAvailable,
		WeatherResistance: model.RatingIP67,
	}))
	loaded, err := s.LoadDrones(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	require.True(t, loaded[0].MaintenanceDue.IsZero(), "empty maintenance column reads as zero time")
}

func TestMissionsOrderedByID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	for _, id := range []string{"PRJ003", "PRJ001", "PRJ002"} {
		require.NoError(t, s.SaveMission(ctx, model.Mission{
			ID:        id,
			Location:  "Bangalore",
			StartDate: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
			Priority:  model.PriorityHigh,
			Status:    model.MissionUnassigned,
		}))
	}
	loaded, err := s.LoadMissions(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 3)
	require.Equal(t, "PRJ001", loaded[0].ID)
	require.Equal(t, "PRJ003", loaded[2].ID)
}
