package decision

import "fmt"

// Weights tunes the candidate score. Each sub-score is normalized to [0,1]
// before weighting. The defaults are a reasonable balance and can be
// overridden from configuration.
type Weights struct {
	Skill    float64 `json:"skill"`
	Cert     float64 `json:"cert"`
	Cost     float64 `json:"cost"`
	Location float64 `json:"location"`
	// LocationDecay is the location sub-score applied when pilot or drone
	// are not co-located with the mission.
	LocationDecay float64 `json:"location_decay"`
}

// DefaultWeights returns the standard scoring weights.
func DefaultWeights() Weights {
	return Weights{
		Skill:         0.35,
		Cert:          0.25,
		Cost:          0.20,
		Location:      0.20,
		LocationDecay: 0.5,
	}
}

// SetDefaults fills zero-valued weights with the defaults. A fully zero
// struct becomes DefaultWeights.
func (w *Weights) SetDefaults() {
	if w.Skill == 0 && w.Cert == 0 && w.Cost == 0 && w.Location == 0 {
		*w = DefaultWeights()
		return
	}
	if w.LocationDecay == 0 {
		w.LocationDecay = 0.5
	}
}

// Validate checks that the weights can produce a meaningful ranking.
func (w Weights) Validate() error {
	if w.Skill < 0 || w.Cert < 0 || w.Cost < 0 || w.Location < 0 {
		return fmt.Errorf("weights must be non-negative")
	}
	if w.Skill+w.Cert+w.Cost+w.Location <= 0 {
		return fmt.Errorf("at least one weight must be positive")
	}
	if w.LocationDecay < 0 || w.LocationDecay > 1 {
		return fmt.Errorf("location_decay must be in [0,1]")
	}
	return nil
}
