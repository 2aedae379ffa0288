package model

import "time"

// PilotStatus describes a pilot's availability for new missions.
type PilotStatus string

const (
	PilotAvailable   PilotStatus = "Available"
	PilotUnavailable PilotStatus = "Unavailable"
	PilotOnLeave     PilotStatus = "OnLeave"
)

// Pilot represents a mobile-resource operator.
type Pilot struct {
	ID                string
	Name              string
	Location          string
	Skills            []string
	Certifications    []string
	Status            PilotStatus
	CurrentAssignment string // mission ID when committed, empty otherwise
	AvailableFrom     time.Time
	DailyRate         float64
}

// IsAvailable reports whether the pilot can take on a new mission.
func (p Pilot) IsAvailable() bool {
	return p.Status == PilotAvailable
}

// HasAllSkills reports whether the pilot covers every required skill.
func (p Pilot) HasAllSkills(required []string) bool {
	return containsAll(p.Skills, required)
}

// HasAllCertifications reports whether the pilot holds every required certification.
func (p Pilot) HasAllCertifications(required []string) bool {
	return containsAll(p.Certifications, required)
}

func containsAll(have, want []string) bool {
	for _, w := range want {
		found := false
		for _, h := range have {
			if h == w {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
