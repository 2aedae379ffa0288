package decision

import (
	"sort"
	"strings"

	"github.com/skyops/fleetmatch/core/conflict"
	"github.com/skyops/fleetmatch/core/model"
)

// Candidate is one eligible (pilot, drone) pair with its weighted score.
type Candidate struct {
	Pilot model.Pilot
	Drone model.Drone
	Score float64
}

// Engine filters and ranks candidate pairs for a mission. Ranking is a pure
// function of its inputs: identical inputs always produce the same order.
type Engine struct {
	conflicts *conflict.Engine
	weights   Weights
}

// NewEngine creates a decision engine validating pairs through the given
// conflict engine.
func NewEngine(conflicts *conflict.Engine, w Weights) *Engine {
	w.SetDefaults()
	return &Engine{conflicts: conflicts, weights: w}
}

// Weights returns the configured scoring weights.
func (e *Engine) Weights() Weights { return e.weights }

// Rank returns every (pilot, drone) pair that passes conflict validation,
// ordered by descending score. Ties break on lower daily rate, then pilot ID,
// then drone ID. An empty result means no eligible candidate and is not an
// error.
func (e *Engine) Rank(m model.Mission, pilots []model.Pilot, drones []model.Drone, snap conflict.Snapshot) []Candidate {
	var out []Candidate
	for _, p := range pilots {
		for _, d := range drones {
			if rep := e.conflicts.Validate(p, d, m, snap); !rep.OK() {
				continue
			}
			out = append(out, Candidate{Pilot: p, Drone: d, Score: e.score(p, d, m)})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Pilot.DailyRate != b.Pilot.DailyRate {
			return a.Pilot.DailyRate < b.Pilot.DailyRate
		}
		if a.Pilot.ID != b.Pilot.ID {
			return a.Pilot.ID < b.Pilot.ID
		}
		return a.Drone.ID < b.Drone.ID
	})
	return out
}

// Best returns the top-ranked candidate, if any.
func (e *Engine) Best(m model.Mission, pilots []model.Pilot, drones []model.Drone, snap conflict.Snapshot) (Candidate, bool) {
	ranked := e.Rank(m, pilots, drones, snap)
	if len(ranked) == 0 {
		return Candidate{}, false
	}
	return ranked[0], true
}

// score computes the weighted sum of normalized sub-scores. Candidates have
// already passed filtering, so skill and cert coverage reward breadth beyond
// the required minimum.
func (e *Engine) score(p model.Pilot, d model.Drone, m model.Mission) float64 {
	w := e.weights
	s := coverage(p.Skills, m.RequiredSkills)*w.Skill +
		coverage(p.Certifications, m.RequiredCerts)*w.Cert +
		e.costScore(p, m)*w.Cost +
		e.locationScore(p, d, m)*w.Location
	return s
}

// coverage is the matched fraction of required entries, with a small bonus
// for each extra entry beyond the requirement, capped at 1.
func coverage(have, required []string) float64 {
	if len(required) == 0 {
		return 1
	}
	matched := 0
	for _, r := range required {
		for _, h := range have {
			if h == r {
				matched++
				break
			}
		}
	}
	frac := float64(matched) / float64(len(required))
	if extra := len(have) - matched; extra > 0 {
		frac += 0.05 * float64(extra)
	}
	if frac > 1 {
		frac = 1
	}
	return frac
}

// costScore is the unused fraction of the budget, so cheaper pilots rank
// higher.
func (e *Engine) costScore(p model.Pilot, m model.Mission) float64 {
	if m.Budget <= 0 {
		return 0
	}
	cost := p.DailyRate * float64(m.DurationDays())
	s := 1 - cost/m.Budget
	if s < 0 {
		return 0
	}
	return s
}

func (e *Engine) locationScore(p model.Pilot, d model.Drone, m model.Mission) float64 {
	pilotMatch := strings.EqualFold(strings.TrimSpace(p.Location), strings.TrimSpace(m.Location))
	droneMatch := strings.EqualFold(strings.TrimSpace(d.Location), strings.TrimSpace(m.Location))
	switch {
	case pilotMatch && droneMatch:
		return 1
	case pilotMatch || droneMatch:
		return (1 + e.weights.LocationDecay) / 2
	default:
		return e.weights.LocationDecay
	}
}
