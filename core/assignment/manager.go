package assignment

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/skyops/fleetmatch/core/conflict"
	"github.com/skyops/fleetmatch/core/events"
	"github.com/skyops/fleetmatch/core/logger"
	"github.com/skyops/fleetmatch/core/metrics"
	"github.com/skyops/fleetmatch/core/model"
	"github.com/skyops/fleetmatch/core/store"
	"github.com/skyops/fleetmatch/internal/eventbus"
)

// Manager owns the authoritative in-memory view of pilots, drones, missions
// and active assignments. It is the sole mutator of the occupancy index: all
// Assign and Release calls run inside a single critical section, so two
// concurrent commits for the same mission or resource cannot both succeed.
//
// Persistence is optimistic: a commit validates and stages in memory first,
// writes to the store second, and only then becomes visible. A failed save
// surfaces as IOFailureError with no in-memory mutation applied.
type Manager struct {
	mu        sync.Mutex
	store     store.Store
	conflicts *conflict.Engine
	log       logger.Logger
	bus       eventbus.EventBus
	sink      metrics.Sink
	clock     func() time.Time
	newID     func() string

	pilots   map[string]model.Pilot
	drones   map[string]model.Drone
	missions map[string]model.Mission
	active   map[string]*model.Assignment
	history  []*model.Assignment
}

// NewManager loads the domain state from the store and builds a manager.
// Missions already marked assigned in the store are rebuilt into active
// assignments.
func NewManager(ctx context.Context, st store.Store, conflicts *conflict.Engine, log logger.Logger) (*Manager, error) {
	if st == nil || conflicts == nil {
		return nil, fmt.Errorf("assignment: nil parameter provided to NewManager")
	}
	m := &Manager{
		store:     st,
		conflicts: conflicts,
		log:       log,
		clock:     time.Now,
		newID:     uuid.NewString,
		pilots:    map[string]model.Pilot{},
		drones:    map[string]model.Drone{},
		missions:  map[string]model.Mission{},
		active:    map[string]*model.Assignment{},
	}
	if err := m.reload(ctx); err != nil {
		return nil, err
	}
	return m, nil
}

// SetBus configures an optional event bus for assignment events.
func (m *Manager) SetBus(bus eventbus.EventBus) {
	m.mu.Lock()
	m.bus = bus
	m.mu.Unlock()
}

// SetMetricsSink configures an optional sink recording committed assignments.
func (m *Manager) SetMetricsSink(sink metrics.Sink) {
	m.mu.Lock()
	m.sink = sink
	m.mu.Unlock()
}

// SetClock overrides the time source. Intended for tests.
func (m *Manager) SetClock(clock func() time.Time) {
	m.mu.Lock()
	m.clock = clock
	m.mu.Unlock()
}

func (m *Manager) reload(ctx context.Context) error {
	pilots, err := m.store.LoadPilots(ctx)
	if err != nil {
		return IOFailureError{Op: "load pilots", Err: err}
	}
	drones, err := m.store.LoadDrones(ctx)
	if err != nil {
		return IOFailureError{Op: "load drones", Err: err}
	}
	missions, err := m.store.LoadMissions(ctx)
	if err != nil {
		return IOFailureError{Op: "load missions", Err: err}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range pilots {
		m.pilots[p.ID] = p
	}
	for _, d := range drones {
		m.drones[d.ID] = d
	}
	now := m.clock()
	for _, ms := range missions {
		m.missions[ms.ID] = ms
		if (ms.Status == model.MissionAssigned || ms.Status == model.MissionReassigned) &&
			ms.AssignedPilot != "" && ms.AssignedDrone != "" {
			rec := &model.Assignment{
				ID:        m.newID(),
				MissionID: ms.ID,
				PilotID:   ms.AssignedPilot,
				DroneID:   ms.AssignedDrone,
				CreatedAt: now,
				Active:    true,
			}
			m.active[ms.ID] = rec
			m.history = append(m.history, rec)
		}
	}
	return nil
}

// Assign validates and commits the triple. See AssignScored.
func (m *Manager) Assign(ctx context.Context, missionID, pilotID, droneID string) (model.Assignment, error) {
	return m.AssignScored(ctx, missionID, pilotID, droneID, 0)
}

// AssignScored validates the triple at commit time and, on success, replaces
// any prior assignment for the mission, updates resource occupancy, sets the
// mission status and persists every touched record. The score is recorded on
// the assignment for reporting.
func (m *Manager) AssignScored(ctx context.Context, missionID, pilotID, droneID string, score float64) (model.Assignment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	mission, ok := m.missions[missionID]
	if !ok {
		return model.Assignment{}, NotFoundError{Kind: "mission", ID: missionID}
	}
	pilot, ok := m.pilots[pilotID]
	if !ok {
		return model.Assignment{}, NotFoundError{Kind: "pilot", ID: pilotID}
	}
	drone, ok := m.drones[droneID]
	if !ok {
		return model.Assignment{}, NotFoundError{Kind: "drone", ID: droneID}
	}

	// Commit-time re-validation guards against staleness between ranking and
	// commit.
	if rep := m.conflicts.Validate(pilot, drone, mission, m.snapshotLocked()); !rep.OK() {
		return model.Assignment{}, ConstraintViolationError{Report: rep}
	}

	prior := m.active[missionID]
	reassigned := prior != nil

	pilot.Status = model.PilotUnavailable
	pilot.CurrentAssignment = missionID
	drone.Status = model.DroneUnavailable
	drone.CurrentAssignment = missionID

	mission.AssignedPilot = pilotID
	mission.AssignedDrone = droneID
	if reassigned {
		mission.Status = model.MissionReassigned
	} else {
		mission.Status = model.MissionAssigned
	}

	// Release the replaced resources unless the new pair reuses them.
	var prevPilot *model.Pilot
	var prevDrone *model.Drone
	if prior != nil {
		if prior.PilotID != pilotID {
			if pp, ok := m.pilots[prior.PilotID]; ok {
				released := releasePilot(pp)
				prevPilot = &released
			}
		}
		if prior.DroneID != droneID {
			if pd, ok := m.drones[prior.DroneID]; ok {
				released := releaseDrone(pd)
				prevDrone = &released
			}
		}
	}

	// Persist before mutating the authoritative maps so a failed save leaves
	// memory untouched.
	if err := m.store.SaveMission(ctx, mission); err != nil {
		return model.Assignment{}, IOFailureError{Op: "save mission", Err: err}
	}
	if err := m.store.SavePilot(ctx, pilot); err != nil {
		return model.Assignment{}, IOFailureError{Op: "save pilot", Err: err}
	}
	if err := m.store.SaveDrone(ctx, drone); err != nil {
		return model.Assignment{}, IOFailureError{Op: "save drone", Err: err}
	}
	if prevPilot != nil {
		if err := m.store.SavePilot(ctx, *prevPilot); err != nil {
			return model.Assignment{}, IOFailureError{Op: "save released pilot", Err: err}
		}
	}
	if prevDrone != nil {
		if err := m.store.SaveDrone(ctx, *prevDrone); err != nil {
			return model.Assignment{}, IOFailureError{Op: "save released drone", Err: err}
		}
	}

	m.missions[missionID] = mission
	m.pilots[pilotID] = pilot
	m.drones[droneID] = drone
	if prevPilot != nil {
		m.pilots[prevPilot.ID] = *prevPilot
	}
	if prevDrone != nil {
		m.drones[prevDrone.ID] = *prevDrone
	}
	if prior != nil {
		prior.Active = false
	}

	rec := &model.Assignment{
		ID:        m.newID(),
		MissionID: missionID,
		PilotID:   pilotID,
		DroneID:   droneID,
		Score:     score,
		CreatedAt: m.clock(),
		Active:    true,
	}
	m.active[missionID] = rec
	m.history = append(m.history, rec)

	if m.log != nil {
		m.log.Infof("assigned pilot %s and drone %s to mission %s", pilotID, droneID, missionID)
	}
	if m.bus != nil {
		m.bus.Publish(events.AssignmentEvent{MissionID: missionID, PilotID: pilotID, DroneID: droneID, Reassigned: reassigned})
	}
	if m.sink != nil {
		if err := m.sink.RecordAssignment(metrics.AssignmentRecord{
			MissionID:  missionID,
			PilotID:    pilotID,
			DroneID:    droneID,
			Score:      score,
			Reassigned: reassigned,
			Timestamp:  rec.CreatedAt,
		}); err != nil && m.log != nil {
			m.log.Errorf("metrics error: %v", err)
		}
	}
	return *rec, nil
}

// Release deactivates the mission's assignment, frees both resources and
// persists the changes. The mission returns to Unassigned.
func (m *Manager) Release(ctx context.Context, missionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec := m.active[missionID]
	if rec == nil {
		return NotFoundError{Kind: "assignment", ID: missionID}
	}
	mission, ok := m.missions[missionID]
	if !ok {
		return NotFoundError{Kind: "mission", ID: missionID}
	}

	mission.AssignedPilot = ""
	mission.AssignedDrone = ""
	mission.Status = model.MissionUnassigned

	var pilot *model.Pilot
	if p, ok := m.pilots[rec.PilotID]; ok {
		released := releasePilot(p)
		pilot = &released
	}
	var drone *model.Drone
	if d, ok := m.drones[rec.DroneID]; ok {
		released := releaseDrone(d)
		drone = &released
	}

	if err := m.store.SaveMission(ctx, mission); err != nil {
		return IOFailureError{Op: "save mission", Err: err}
	}
	if pilot != nil {
		if err := m.store.SavePilot(ctx, *pilot); err != nil {
			return IOFailureError{Op: "save pilot", Err: err}
		}
	}
	if drone != nil {
		if err := m.store.SaveDrone(ctx, *drone); err != nil {
			return IOFailureError{Op: "save drone", Err: err}
		}
	}

	m.missions[missionID] = mission
	if pilot != nil {
		m.pilots[pilot.ID] = *pilot
	}
	if drone != nil {
		m.drones[drone.ID] = *drone
	}
	rec.Active = false
	delete(m.active, missionID)

	if m.log != nil {
		m.log.Infof("released assignment for mission %s", missionID)
	}
	if m.bus != nil {
		m.bus.Publish(events.ReleaseEvent{MissionID: missionID, Previous: model.ResourcePair{PilotID: rec.PilotID, DroneID: rec.DroneID}})
	}
	return nil
}

// MarkMissionFailed sets the mission status to Failed and persists it. The
// current assignment, if any, is left untouched.
func (m *Manager) MarkMissionFailed(ctx context.Context, missionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	mission, ok := m.missions[missionID]
	if !ok {
		return NotFoundError{Kind: "mission", ID: missionID}
	}
	mission.Status = model.MissionFailed
	if err := m.store.SaveMission(ctx, mission); err != nil {
		return IOFailureError{Op: "save mission", Err: err}
	}
	m.missions[missionID] = mission
	return nil
}

// UpdatePilotStatus applies an external pilot status change.
func (m *Manager) UpdatePilotStatus(ctx context.Context, pilotID string, status model.PilotStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.pilots[pilotID]
	if !ok {
		return NotFoundError{Kind: "pilot", ID: pilotID}
	}
	p.Status = status
	if err := m.store.SavePilot(ctx, p); err != nil {
		return IOFailureError{Op: "save pilot", Err: err}
	}
	m.pilots[pilotID] = p
	return nil
}

// UpdateDroneStatus applies an external drone status change.
func (m *Manager) UpdateDroneStatus(ctx context.Context, droneID string, status model.DroneStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.drones[droneID]
	if !ok {
		return NotFoundError{Kind: "drone", ID: droneID}
	}
	d.Status = status
	if err := m.store.SaveDrone(ctx, d); err != nil {
		return IOFailureError{Op: "save drone", Err: err}
	}
	m.drones[droneID] = d
	return nil
}

// History returns every assignment record, newest first.
func (m *Manager) History() []model.Assignment {
	m.mu.Lock()
	defer m.mu.Unlock()
	res := make([]model.Assignment, 0, len(m.history))
	for i := len(m.history) - 1; i >= 0; i-- {
		res = append(res, *m.history[i])
	}
	return res
}

// ActiveAssignment returns the active assignment for the mission, if any.
func (m *Manager) ActiveAssignment(missionID string) (model.Assignment, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.active[missionID]
	if !ok {
		return model.Assignment{}, false
	}
	return *rec, true
}

// Snapshot returns a consistent read-only view of the domain state for
// validation and ranking.
func (m *Manager) Snapshot() conflict.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *Manager) snapshotLocked() conflict.Snapshot {
	snap := conflict.Snapshot{
		Pilots:   make(map[string]model.Pilot, len(m.pilots)),
		Drones:   make(map[string]model.Drone, len(m.drones)),
		Missions: make(map[string]model.Mission, len(m.missions)),
	}
	for id, p := range m.pilots {
		snap.Pilots[id] = p
	}
	for id, d := range m.drones {
		snap.Drones[id] = d
	}
	for id, ms := range m.missions {
		snap.Missions[id] = ms
	}
	snap.Assignments = make([]model.Assignment, 0, len(m.active))
	for _, rec := range m.active {
		snap.Assignments = append(snap.Assignments, *rec)
	}
	sort.Slice(snap.Assignments, func(i, j int) bool {
		return snap.Assignments[i].MissionID < snap.Assignments[j].MissionID
	})
	return snap
}

// Pilot returns the pilot record for the given ID.
func (m *Manager) Pilot(id string) (model.Pilot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.pilots[id]
	return p, ok
}

// Drone returns the drone record for the given ID.
func (m *Manager) Drone(id string) (model.Drone, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.drones[id]
	return d, ok
}

// Mission returns the mission record for the given ID.
func (m *Manager) Mission(id string) (model.Mission, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ms, ok := m.missions[id]
	return ms, ok
}

// Pilots returns all pilots ordered by ID.
func (m *Manager) Pilots() []model.Pilot {
	m.mu.Lock()
	defer m.mu.Unlock()
	res := make([]model.Pilot, 0, len(m.pilots))
	for _, p := range m.pilots {
		res = append(res, p)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res
}

// Drones returns all drones ordered by ID.
func (m *Manager) Drones() []model.Drone {
	m.mu.Lock()
	defer m.mu.Unlock()
	res := make([]model.Drone, 0, len(m.drones))
	for _, d := range m.drones {
		res = append(res, d)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res
}

// Missions returns all missions ordered by ID.
func (m *Manager) Missions() []model.Mission {
	m.mu.Lock()
	defer m.mu.Unlock()
	res := make([]model.Mission, 0, len(m.missions))
	for _, ms := range m.missions {
		res = append(res, ms)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res
}

func releasePilot(p model.Pilot) model.Pilot {
	p.Status = model.PilotAvailable
	p.CurrentAssignment = ""
	return p
}

func releaseDrone(d model.Drone) model.Drone {
	d.Status = model.DroneAvailable
	d.CurrentAssignment = ""
	return d
}
