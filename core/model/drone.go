package model

import "time"

// DroneStatus describes an equipment unit's availability.
type DroneStatus string

const (
	DroneAvailable   DroneStatus = "Available"
	DroneUnavailable DroneStatus = "Unavailable"
	DroneMaintenance DroneStatus = "Maintenance"
)

// WeatherRating is an ingress-protection rating ordered from least to most
// weather resistant: IP20 < IP45 < IP54 < IP67 < Waterproof.
type WeatherRating string

const (
	RatingIP20       WeatherRating = "IP20"
	RatingIP45       WeatherRating = "IP45"
	RatingIP54       WeatherRating = "IP54"
	RatingIP67       WeatherRating = "IP67"
	RatingWaterproof WeatherRating = "Waterproof"
)

var ratingRank = map[WeatherRating]int{
	RatingIP20:       1,
	RatingIP45:       2,
	RatingIP54:       3,
	RatingIP67:       4,
	RatingWaterproof: 5,
}

// AtLeast reports whether the rating meets or exceeds min. Unknown ratings
// rank below IP20.
func (r WeatherRating) AtLeast(min WeatherRating) bool {
	return ratingRank[r] >= ratingRank[min]
}

// Drone represents an equipment unit.
type Drone struct {
	ID                string
	Model             string
	Location          string
	Status            DroneStatus
	Capabilities      []string
	WeatherResistance WeatherRating
	MaintenanceDue    time.Time // zero when no maintenance is scheduled
	CurrentAssignment string    // mission ID when committed, empty otherwise
}

// IsAvailable reports whether the drone can be committed to a new mission.
func (d Drone) IsAvailable() bool {
	return d.Status == DroneAvailable
}

// MaintenanceWithin reports whether scheduled maintenance falls inside the
// given window.
func (d Drone) MaintenanceWithin(start, end time.Time) bool {
	if d.MaintenanceDue.IsZero() {
		return false
	}
	return !d.MaintenanceDue.Before(start) && !d.MaintenanceDue.After(end)
}
