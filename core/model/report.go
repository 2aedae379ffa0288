package model

import "strings"

// ViolationKind names a failed constraint check.
type ViolationKind string

const (
	ViolationAvailability  ViolationKind = "availability"
	ViolationSkills        ViolationKind = "skills"
	ViolationCerts         ViolationKind = "certifications"
	ViolationWeather       ViolationKind = "weather"
	ViolationBudget        ViolationKind = "budget"
	ViolationMaintenance   ViolationKind = "maintenance"
	ViolationLocation      ViolationKind = "location"
	ViolationDoubleBooking ViolationKind = "double_booking"
	ViolationMissing       ViolationKind = "missing_resource"
)

// ConflictResource attributes a violation to one half of the pair, or to the
// pair as a whole.
type ConflictResource string

const (
	ResourcePilot ConflictResource = "pilot"
	ResourceDrone ConflictResource = "drone"
	ResourceBoth  ConflictResource = "pair"
)

// Violation is a single failed constraint check.
type Violation struct {
	Kind     ViolationKind    `json:"kind"`
	Resource ConflictResource `json:"resource"`
	Detail   string           `json:"detail"`
}

// ConflictReport lists every violated constraint for a (pilot, drone,
// mission) triple. An empty violation list means the triple is valid.
type ConflictReport struct {
	MissionID  string      `json:"mission_id"`
	Violations []Violation `json:"violations"`
}

// OK reports whether the triple passed every check.
func (r ConflictReport) OK() bool { return len(r.Violations) == 0 }

// Involves reports whether any violation is attributable to the given
// resource.
func (r ConflictReport) Involves(res ConflictResource) bool {
	for _, v := range r.Violations {
		if v.Resource == res || v.Resource == ResourceBoth {
			return true
		}
	}
	return false
}

// Reason joins all violation details into a single human-readable string.
func (r ConflictReport) Reason() string {
	if len(r.Violations) == 0 {
		return ""
	}
	parts := make([]string, 0, len(r.Violations))
	for _, v := range r.Violations {
		parts = append(parts, v.Detail)
	}
	return strings.Join(parts, "; ")
}
