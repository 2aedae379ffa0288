package store

import (
	"context"
	"sort"
	"sync"

	"github.com/skyops/fleetmatch/core/model"
)

// MemoryStore keeps all records in memory. It backs tests and the "memory"
// store backend.
type MemoryStore struct {
	mu       sync.RWMutex
	pilots   map[string]model.Pilot
	drones   map[string]model.Drone
	missions map[string]model.Mission
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		pilots:   map[string]model.Pilot{},
		drones:   map[string]model.Drone{},
		missions: map[string]model.Mission{},
	}
}

// Seed replaces the store contents with the given records.
func (s *MemoryStore) Seed(pilots []model.Pilot, drones []model.Drone, missions []model.Mission) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pilots = make(map[string]model.Pilot, len(pilots))
	for _, p := range pilots {
		s.pilots[p.ID] = p
	}
	s.drones = make(map[string]model.Drone, len(drones))
	for _, d := range drones {
		s.drones[d.ID] = d
	}
	s.missions = make(map[string]model.Mission, len(missions))
	for _, m := range missions {
		s.missions[m.ID] = m
	}
}

func (s *MemoryStore) LoadPilots(ctx context.Context) ([]model.Pilot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]model.Pilot, 0, len(s.pilots))
	for _, p := range s.pilots {
		res = append(res, p)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}

func (s *MemoryStore) LoadDrones(ctx context.Context) ([]model.Drone, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]model.Drone, 0, len(s.drones))
	for _, d := range s.drones {
		res = append(res, d)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}

func (s *MemoryStore) LoadMissions(ctx context.Context) ([]model.Mission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]model.Mission, 0, len(s.missions))
	for _, m := range s.missions {
		res = append(res, m)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}

func (s *MemoryStore) SavePilot(ctx context.Context, p model.Pilot) error {
	s.mu.Lock()
	s.pilots[p.ID] = p
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) SaveDrone(ctx context.Context, d model.Drone) error {
	s.mu.Lock()
	s.drones[d.ID] = d
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) SaveMission(ctx context.Context, m model.Mission) error {
	s.mu.Lock()
	s.missions[m.ID] = m
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Close() error { return nil }
