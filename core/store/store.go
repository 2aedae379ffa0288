package store

import (
	"context"

	"github.com/skyops/fleetmatch/core/model"
)

// Store is the persistence collaborator. Implementations load full entity
// collections and persist individual records. The engine treats its in-memory
// state as authoritative; a failed save surfaces as a commit failure so that
// memory and store never silently diverge.
type Store interface {
	LoadPilots(ctx context.Context) ([]model.Pilot, error)
	LoadDrones(ctx context.Context) ([]model.Drone, error)
	LoadMissions(ctx context.Context) ([]model.Mission, error)
	SavePilot(ctx context.Context, p model.Pilot) error
	SaveDrone(ctx context.Context, d model.Drone) error
	SaveMission(ctx context.Context, m model.Mission) error
	Close() error
}
