package conflict

import (
	"fmt"
	"sort"
	"strings"

	"github.com/skyops/fleetmatch/core/model"
)

// Snapshot is a read-only view of the domain state used for validation. The
// assignment manager produces snapshots under its own lock; the engine never
// mutates one.
type Snapshot struct {
	Pilots      map[string]model.Pilot
	Drones      map[string]model.Drone
	Missions    map[string]model.Mission
	Assignments []model.Assignment
}

// LocationPolicy decides whether a resource location serves a mission
// location. The default is case-insensitive, whitespace-trimmed equality.
type LocationPolicy func(resource, mission string) bool

// WeatherPolicy maps a mission weather forecast to the minimum drone rating
// able to fly it.
type WeatherPolicy func(forecast string) model.WeatherRating

// Engine validates (pilot, drone, mission) triples against every constraint
// and scans active assignments for violations. Policies are pluggable; zero
// values fall back to the defaults.
type Engine struct {
	SameLocation LocationPolicy
	MinRating    WeatherPolicy
}

// NewEngine returns an Engine with default policies.
func NewEngine() *Engine {
	return &Engine{
		SameLocation: DefaultLocationPolicy,
		MinRating:    DefaultWeatherPolicy,
	}
}

// DefaultLocationPolicy treats locations as equal ignoring case and
// surrounding whitespace.
func DefaultLocationPolicy(resource, mission string) bool {
	return strings.EqualFold(strings.TrimSpace(resource), strings.TrimSpace(mission))
}

// DefaultWeatherPolicy maps forecast severity to the minimum ingress rating.
// Unknown or empty forecasts require no more than IP20.
func DefaultWeatherPolicy(forecast string) model.WeatherRating {
	switch strings.ToLower(strings.TrimSpace(forecast)) {
	case "light rain":
		return model.RatingIP45
	case "moderate rain":
		return model.RatingIP54
	case "heavy rain":
		return model.RatingIP67
	case "storm":
		return model.RatingWaterproof
	default:
		return model.RatingIP20
	}
}

// Validate checks every constraint for the triple and returns a report
// listing all violations, not just the first. An empty report means the pair
// may be committed to the mission.
func (e *Engine) Validate(p model.Pilot, d model.Drone, m model.Mission, snap Snapshot) model.ConflictReport {
	rep := model.ConflictReport{MissionID: m.ID}
	add := func(kind model.ViolationKind, res model.ConflictResource, format string, args ...any) {
		rep.Violations = append(rep.Violations, model.Violation{
			Kind:     kind,
			Resource: res,
			Detail:   fmt.Sprintf(format, args...),
		})
	}

	// Availability. A resource marked Unavailable only because it is bound to
	// this mission stays valid so committed assignments re-validate cleanly.
	// Any other status (OnLeave, Maintenance) is a violation even for the
	// bound resource.
	if !p.IsAvailable() && !(p.Status == model.PilotUnavailable && p.CurrentAssignment == m.ID) {
		add(model.ViolationAvailability, model.ResourcePilot, "pilot %s is %s", p.Name, p.Status)
	}
	if !d.IsAvailable() && !(d.Status == model.DroneUnavailable && d.CurrentAssignment == m.ID) {
		add(model.ViolationAvailability, model.ResourceDrone, "drone %s is %s", d.ID, d.Status)
	}

	if missing := missingFrom(p.Skills, m.RequiredSkills); len(missing) > 0 {
		add(model.ViolationSkills, model.ResourcePilot, "pilot %s missing skills: %s", p.Name, strings.Join(missing, ", "))
	}
	if missing := missingFrom(p.Certifications, m.RequiredCerts); len(missing) > 0 {
		add(model.ViolationCerts, model.ResourcePilot, "pilot %s missing certifications: %s", p.Name, strings.Join(missing, ", "))
	}

	if min := e.minRating(m.WeatherForecast); !d.WeatherResistance.AtLeast(min) {
		add(model.ViolationWeather, model.ResourceDrone, "drone %s rated %s, forecast %q requires %s", d.ID, d.WeatherResistance, m.WeatherForecast, min)
	}

	if cost := p.DailyRate * float64(m.DurationDays()); cost > m.Budget {
		add(model.ViolationBudget, model.ResourcePilot, "pilot %s costs %.0f, mission budget %.0f", p.Name, cost, m.Budget)
	}

	if d.MaintenanceWithin(m.StartDate, m.EndDate) {
		add(model.ViolationMaintenance, model.ResourceDrone, "drone %s maintenance due %s falls inside mission window", d.ID, d.MaintenanceDue.Format(model.DateLayout))
	}

	if !e.sameLocation(p.Location, m.Location) {
		add(model.ViolationLocation, model.ResourcePilot, "pilot %s in %s, mission in %s", p.Name, p.Location, m.Location)
	}
	if !e.sameLocation(d.Location, m.Location) {
		add(model.ViolationLocation, model.ResourceDrone, "drone %s in %s, mission in %s", d.ID, d.Location, m.Location)
	}

	e.checkDoubleBooking(&rep, p, d, m, snap, add)
	return rep
}

func (e *Engine) checkDoubleBooking(rep *model.ConflictReport, p model.Pilot, d model.Drone, m model.Mission, snap Snapshot,
	add func(model.ViolationKind, model.ConflictResource, string, ...any)) {
	for _, a := range snap.Assignments {
		if !a.Active || a.MissionID == m.ID {
			continue
		}
		other, ok := snap.Missions[a.MissionID]
		if !ok || !m.Overlaps(other) {
			continue
		}
		if a.PilotID == p.ID {
			add(model.ViolationDoubleBooking, model.ResourcePilot, "pilot %s already committed to mission %s over overlapping dates", p.Name, a.MissionID)
		}
		if a.DroneID == d.ID {
			add(model.ViolationDoubleBooking, model.ResourceDrone, "drone %s already committed to mission %s over overlapping dates", d.ID, a.MissionID)
		}
	}
}

// ScanAll re-validates every active assignment in the snapshot and returns
// only non-empty reports, ordered by mission ID. Assignments referencing
// unknown resources produce a missing_resource violation.
func (e *Engine) ScanAll(snap Snapshot) []model.ConflictReport {
	var reports []model.ConflictReport
	for _, a := range snap.Assignments {
		if !a.Active {
			continue
		}
		m, ok := snap.Missions[a.MissionID]
		if !ok {
			continue
		}
		rep := e.ValidateAssignment(a, m, snap)
		if !rep.OK() {
			reports = append(reports, rep)
		}
	}
	sort.Slice(reports, func(i, j int) bool { return reports[i].MissionID < reports[j].MissionID })
	return reports
}

// ValidateAssignment resolves the assignment's resources and validates the
// triple. Missing resources are reported rather than treated as errors.
func (e *Engine) ValidateAssignment(a model.Assignment, m model.Mission, snap Snapshot) model.ConflictReport {
	rep := model.ConflictReport{MissionID: m.ID}
	p, pok := snap.Pilots[a.PilotID]
	if !pok {
		rep.Violations = append(rep.Violations, model.Violation{
			Kind:     model.ViolationMissing,
			Resource: model.ResourcePilot,
			Detail:   fmt.Sprintf("assigned pilot %s not found", a.PilotID),
		})
	}
	d, dok := snap.Drones[a.DroneID]
	if !dok {
		rep.Violations = append(rep.Violations, model.Violation{
			Kind:     model.ViolationMissing,
			Resource: model.ResourceDrone,
			Detail:   fmt.Sprintf("assigned drone %s not found", a.DroneID),
		})
	}
	if !pok || !dok {
		return rep
	}
	return e.Validate(p, d, m, snap)
}

func (e *Engine) sameLocation(resource, mission string) bool {
	if e.SameLocation == nil {
		return DefaultLocationPolicy(resource, mission)
	}
	return e.SameLocation(resource, mission)
}

func (e *Engine) minRating(forecast string) model.WeatherRating {
	if e.MinRating == nil {
		return DefaultWeatherPolicy(forecast)
	}
	return e.MinRating(forecast)
}

func missingFrom(have, want []string) []string {
	var missing []string
	for _, w := range want {
		found := false
		for _, h := range have {
			if h == w {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, w)
		}
	}
	return missing
}
