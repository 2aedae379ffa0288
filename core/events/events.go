package events

import "github.com/skyops/fleetmatch/core/model"

// AssignmentEvent is published after a commit succeeds.
type AssignmentEvent struct {
	MissionID  string
	PilotID    string
	DroneID    string
	Reassigned bool
}

// ReleaseEvent is published after an assignment is released.
type ReleaseEvent struct {
	MissionID string
	Previous  model.ResourcePair
}

// ConflictEvent is published when validation of an existing assignment fails.
type ConflictEvent struct {
	Report model.ConflictReport
}

// SweepEvent summarizes one urgent-reassignment sweep.
type SweepEvent struct {
	Checked    int
	Reassigned int
	Failed     int
}
