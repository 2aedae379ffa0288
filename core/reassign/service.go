package reassign

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/skyops/fleetmatch/core/assignment"
	"github.com/skyops/fleetmatch/core/conflict"
	"github.com/skyops/fleetmatch/core/decision"
	"github.com/skyops/fleetmatch/core/events"
	"github.com/skyops/fleetmatch/core/logger"
	"github.com/skyops/fleetmatch/core/metrics"
	"github.com/skyops/fleetmatch/core/model"
	"github.com/skyops/fleetmatch/core/reassign/logging"
	"github.com/skyops/fleetmatch/internal/eventbus"
)

// ErrSweepInProgress is returned when ProcessAll is called while another
// sweep is still running.
var ErrSweepInProgress = errors.New("reassignment sweep already in progress")

// Outcome is the terminal state of processing one mission.
type Outcome string

const (
	OutcomeSkipped    Outcome = "Skipped"
	OutcomeOK         Outcome = "OK"
	OutcomeReassigned Outcome = "Reassigned"
	OutcomeFailed     Outcome = "Failed"
)

// Service is the urgent-reassignment control loop. For High and Urgent
// missions it re-validates the current assignment and, on conflict or when no
// assignment exists, replaces it with the best ranked candidate. Every
// replacement or failure is recorded in the append-only reassignment log.
type Service struct {
	mgr       *assignment.Manager
	decisions *decision.Engine
	conflicts *conflict.Engine
	store     logging.LogStore
	log       logger.Logger
	bus       eventbus.EventBus
	sink      metrics.Sink
	clock     func() time.Time
	newID     func() string

	// sweepMu serializes ProcessAll: a new sweep request while one is in
	// flight is rejected, not run in parallel.
	sweepMu sync.Mutex
}

// NewService creates the reassignment service. The log store defaults to an
// in-memory one when nil.
func NewService(mgr *assignment.Manager, decisions *decision.Engine, conflicts *conflict.Engine, store logging.LogStore, log logger.Logger) (*Service, error) {
	if mgr == nil || decisions == nil || conflicts == nil {
		return nil, fmt.Errorf("reassign: nil parameter provided to NewService")
	}
	if store == nil {
		store = logging.NewMemoryStore()
	}
	return &Service{
		mgr:       mgr,
		decisions: decisions,
		conflicts: conflicts,
		store:     store,
		log:       log,
		clock:     time.Now,
		newID:     uuid.NewString,
	}, nil
}

// SetBus configures an optional event bus for conflict and sweep events.
func (s *Service) SetBus(bus eventbus.EventBus) { s.bus = bus }

// SetMetricsSink configures an optional sink recording sweep summaries.
func (s *Service) SetMetricsSink(sink metrics.Sink) { s.sink = sink }

// SetClock overrides the time source. Intended for tests.
func (s *Service) SetClock(clock func() time.Time) { s.clock = clock }

// Log queries the reassignment log.
func (s *Service) Log(ctx context.Context, q logging.LogQuery) ([]model.ReassignmentLogEntry, error) {
	return s.store.Query(ctx, q)
}

// ProcessOne runs the reassignment state machine for a single mission.
// Missions below High priority return Skipped. A valid current assignment
// returns OK without a log entry, so repeated calls with no underlying state
// change are idempotent. Errors during the replacement cycle are converted
// into a Failed outcome with a log entry carrying the original reason.
func (s *Service) ProcessOne(ctx context.Context, missionID string) (Outcome, error) {
	mission, ok := s.mgr.Mission(missionID)
	if !ok {
		return "", assignment.NotFoundError{Kind: "mission", ID: missionID}
	}
	out := s.process(ctx, mission)
	missionsChecked.WithLabelValues(string(out)).Inc()
	return out, nil
}

// ProcessAll applies ProcessOne to every High/Urgent mission independently
// and returns a per-mission outcome map. One mission's failure never blocks
// the others. Only one sweep may be in flight at a time.
func (s *Service) ProcessAll(ctx context.Context) (map[string]Outcome, error) {
	if !s.sweepMu.TryLock() {
		sweepsRejected.Inc()
		return nil, ErrSweepInProgress
	}
	defer s.sweepMu.Unlock()

	start := s.clock()
	outcomes := make(map[string]Outcome)
	var reassigned, failed, skipped int
	for _, mission := range s.mgr.Missions() {
		if !mission.IsUrgentPriority() {
			continue
		}
		out := s.process(ctx, mission)
		outcomes[mission.ID] = out
		missionsChecked.WithLabelValues(string(out)).Inc()
		switch out {
		case OutcomeReassigned:
			reassigned++
		case OutcomeFailed:
			failed++
		case OutcomeSkipped:
			skipped++
		}
	}
	dur := s.clock().Sub(start)
	sweepDuration.Observe(dur.Seconds())
	if s.log != nil {
		s.log.Infof("sweep checked %d missions: %d reassigned, %d failed", len(outcomes), reassigned, failed)
	}
	if s.bus != nil {
		s.bus.Publish(events.SweepEvent{Checked: len(outcomes), Reassigned: reassigned, Failed: failed})
	}
	if s.sink != nil {
		if err := s.sink.RecordSweep(metrics.SweepRecord{
			Checked:    len(outcomes),
			Reassigned: reassigned,
			Failed:     failed,
			Skipped:    skipped,
			Duration:   dur,
			Timestamp:  start,
		}); err != nil && s.log != nil {
			s.log.Errorf("metrics error: %v", err)
		}
	}
	return outcomes, nil
}

func (s *Service) process(ctx context.Context, mission model.Mission) Outcome {
	if !mission.IsUrgentPriority() {
		return OutcomeSkipped
	}

	snap := s.mgr.Snapshot()
	current, hasCurrent := s.mgr.ActiveAssignment(mission.ID)

	var report model.ConflictReport
	if hasCurrent {
		report = s.conflicts.ValidateAssignment(current, mission, snap)
		if report.OK() {
			return OutcomeOK
		}
		if s.log != nil {
			s.log.Warnf("mission %s assignment invalid: %s", mission.ID, report.Reason())
		}
		if s.bus != nil {
			s.bus.Publish(events.ConflictEvent{Report: report})
		}
	}

	var previous *model.ResourcePair
	if hasCurrent {
		previous = &model.ResourcePair{PilotID: current.PilotID, DroneID: current.DroneID}
	}
	reason := report.Reason()
	if !hasCurrent {
		reason = "no current assignment"
	}

	// A conflicted resource is excluded from ranking; its partner stays
	// eligible when the conflict was not about it.
	pilots, drones := s.eligibleResources(current, hasCurrent, report)

	cand, found := s.decisions.Best(mission, pilots, drones, snap)
	if !found {
		return s.fail(ctx, mission, previous, fmt.Sprintf("%s: %v", reason, assignment.ErrNoEligibleCandidate))
	}

	if _, err := s.mgr.AssignScored(ctx, mission.ID, cand.Pilot.ID, cand.Drone.ID, cand.Score); err != nil {
		return s.fail(ctx, mission, previous, fmt.Sprintf("%s: reassignment commit failed: %v", reason, err))
	}

	s.append(ctx, model.ReassignmentLogEntry{
		ID:        s.newID(),
		Timestamp: s.clock(),
		MissionID: mission.ID,
		Previous:  previous,
		New:       &model.ResourcePair{PilotID: cand.Pilot.ID, DroneID: cand.Drone.ID},
		Outcome:   model.OutcomeReassigned,
		Reason:    reason,
	})
	if s.log != nil {
		s.log.Infof("mission %s reassigned to pilot %s, drone %s", mission.ID, cand.Pilot.ID, cand.Drone.ID)
	}
	return OutcomeReassigned
}

func (s *Service) eligibleResources(current model.Assignment, hasCurrent bool, report model.ConflictReport) ([]model.Pilot, []model.Drone) {
	excludePilot := hasCurrent && report.Involves(model.ResourcePilot)
	excludeDrone := hasCurrent && report.Involves(model.ResourceDrone)

	var pilots []model.Pilot
	for _, p := range s.mgr.Pilots() {
		if excludePilot && p.ID == current.PilotID {
			continue
		}
		pilots = append(pilots, p)
	}
	var drones []model.Drone
	for _, d := range s.mgr.Drones() {
		if excludeDrone && d.ID == current.DroneID {
			continue
		}
		drones = append(drones, d)
	}
	return pilots, drones
}

func (s *Service) fail(ctx context.Context, mission model.Mission, previous *model.ResourcePair, reason string) Outcome {
	if err := s.mgr.MarkMissionFailed(ctx, mission.ID); err != nil && s.log != nil {
		s.log.Errorf("marking mission %s failed: %v", mission.ID, err)
	}
	s.append(ctx, model.ReassignmentLogEntry{
		ID:        s.newID(),
		Timestamp: s.clock(),
		MissionID: mission.ID,
		Previous:  previous,
		Outcome:   model.OutcomeFailed,
		Reason:    reason,
	})
	if s.log != nil {
		s.log.Warnf("mission %s could not be reassigned: %s", mission.ID, reason)
	}
	return OutcomeFailed
}

func (s *Service) append(ctx context.Context, entry model.ReassignmentLogEntry) {
	if err := s.store.Append(ctx, entry); err != nil && s.log != nil {
		s.log.Errorf("reassignment log append: %v", err)
	}
}
