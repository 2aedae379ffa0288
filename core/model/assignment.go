package model

import "time"

// Assignment binds a pilot and a drone to a mission. Records are kept after
// deactivation to form the assignment history.
type Assignment struct {
	ID        string    `json:"id"`
	MissionID string    `json:"mission_id"`
	PilotID   string    `json:"pilot_id"`
	DroneID   string    `json:"drone_id"`
	Score     float64   `json:"score"`
	CreatedAt time.Time `json:"created_at"`
	Active    bool      `json:"active"`
}

// ResourcePair identifies the two halves of an assignment.
type ResourcePair struct {
	PilotID string `json:"pilot_id"`
	DroneID string `json:"drone_id"`
}

// ReassignmentOutcome is the terminal state of one reassignment attempt.
type ReassignmentOutcome string

const (
	OutcomeReassigned ReassignmentOutcome = "Reassigned"
	OutcomeFailed     ReassignmentOutcome = "Failed"
)

// ReassignmentLogEntry records one urgent-reassignment decision. Entries are
// append-only.
type ReassignmentLogEntry struct {
	ID        string              `json:"id"`
	Timestamp time.Time           `json:"timestamp"`
	MissionID string              `json:"mission_id"`
	Previous  *ResourcePair       `json:"previous,omitempty"`
	New       *ResourcePair       `json:"new,omitempty"`
	Outcome   ReassignmentOutcome `json:"outcome"`
	Reason    string              `json:"reason"`
}
