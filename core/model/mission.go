package model

import "time"

// MissionPriority orders missions by urgency.
type MissionPriority string

const (
	PriorityLow    MissionPriority = "Low"
	PriorityNormal MissionPriority = "Normal"
	PriorityHigh   MissionPriority = "High"
	PriorityUrgent MissionPriority = "Urgent"
)

// MissionStatus tracks the assignment lifecycle of a mission.
type MissionStatus string

const (
	MissionUnassigned MissionStatus = "Unassigned"
	MissionAssigned   MissionStatus = "Assigned"
	MissionReassigned MissionStatus = "Reassigned"
	MissionFailed     MissionStatus = "Failed"
)

// Mission is a time-bounded job requiring one pilot and one drone.
type Mission struct {
	ID              string
	Client          string
	Location        string
	RequiredSkills  []string
	RequiredCerts   []string
	StartDate       time.Time
	EndDate         time.Time
	Priority        MissionPriority
	Budget          float64
	WeatherForecast string

	// Assignment fields, zero until the first commit.
	AssignedPilot string
	AssignedDrone string
	Status        MissionStatus
}

// DurationDays returns the mission length in days, inclusive of both ends.
func (m Mission) DurationDays() int {
	return DurationDays(m.StartDate, m.EndDate)
}

// Overlaps reports whether two missions occupy overlapping date ranges.
func (m Mission) Overlaps(other Mission) bool {
	return DatesOverlap(m.StartDate, m.EndDate, other.StartDate, other.EndDate)
}

// IsUrgentPriority reports whether the mission qualifies for the urgent
// reassignment loop.
func (m Mission) IsUrgentPriority() bool {
	return m.Priority == PriorityHigh || m.Priority == PriorityUrgent
}
