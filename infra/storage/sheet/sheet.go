// Package sheet implements the Store contract over per-entity CSV files,
// mirroring a spreadsheet backend. Column headers are resolved
// case-insensitively with surrounding whitespace trimmed, absent optional
// columns read as empty values, and every save rewrites the file with the
// full schema so assignment columns exist after the first write.
package sheet

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/skyops/fleetmatch/core/model"
)

const (
	pilotsFile   = "pilots.csv"
	dronesFile   = "drones.csv"
	missionsFile = "missions.csv"
)

var (
	pilotHeader   = []string{"pilot_id", "name", "location", "skills", "certifications", "status", "current_assignment", "available_from", "daily_rate"}
	droneHeader   = []string{"drone_id", "model", "location", "status", "capabilities", "weather_resistance", "maintenance_due", "current_assignment"}
	missionHeader = []string{"mission_id", "client", "location", "required_skills", "required_certs", "start_date", "end_date", "priority", "budget", "weather_forecast", "status", "assigned_pilot", "assigned_drone"}
)

// Store reads and writes domain records as CSV rows in a directory.
type Store struct {
	dir string
	mu  sync.Mutex
}

// NewStore creates the directory if needed and returns the store.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &Store{dir: dir}, nil
}

func (s *Store) LoadPilots(ctx context.Context) ([]model.Pilot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, err := readRows(filepath.Join(s.dir, pilotsFile))
	if err != nil {
		return nil, err
	}
	pilots := make([]model.Pilot, 0, len(rows))
	for _, r := range rows {
		p := model.Pilot{
			ID:                r.get("pilot_id"),
			Name:              r.get("name"),
			Location:          r.get("location"),
			Skills:            r.getList("skills"),
			Certifications:    r.getList("certifications"),
			Status:            model.PilotStatus(defaultStr(r.get("status"), string(model.PilotAvailable))),
			CurrentAssignment: r.get("current_assignment"),
			AvailableFrom:     r.getDate("available_from"),
			DailyRate:         r.getFloat("daily_rate"),
		}
		if p.ID == "" {
			continue
		}
		pilots = append(pilots, p)
	}
	return pilots, nil
}

func (s *Store) LoadDrones(ctx context.Context) ([]model.Drone, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, err := readRows(filepath.Join(s.dir, dronesFile))
	if err != nil {
		return nil, err
	}
	drones := make([]model.Drone, 0, len(rows))
	for _, r := range rows {
		d := model.Drone{
			ID:                r.get("drone_id"),
			Model:             r.get("model"),
			Location:          r.get("location"),
			Status:            model.DroneStatus(defaultStr(r.get("status"), string(model.DroneAvailable))),
			Capabilities:      r.getList("capabilities"),
			WeatherResistance: model.WeatherRating(defaultStr(r.get("weather_resistance"), string(model.RatingIP20))),
			MaintenanceDue:    r.getDate("maintenance_due"),
			CurrentAssignment: r.get("current_assignment"),
		}
		if d.ID == "" {
			continue
		}
		drones = append(drones, d)
	}
	return drones, nil
}

func (s *Store) LoadMissions(ctx context.Context) ([]model.Mission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, err := readRows(filepath.Join(s.dir, missionsFile))
	if err != nil {
		return nil, err
	}
	missions := make([]model.Mission, 0, len(rows))
	for _, r := range rows {
		m := model.Mission{
			ID:              r.get("mission_id"),
			Client:          r.get("client"),
			Location:        r.get("location"),
			RequiredSkills:  r.getList("required_skills"),
			RequiredCerts:   r.getList("required_certs"),
			StartDate:       r.getDate("start_date"),
			EndDate:         r.getDate("end_date"),
			Priority:        model.MissionPriority(defaultStr(r.get("priority"), string(model.PriorityNormal))),
			Budget:          r.getFloat("budget"),
			WeatherForecast: r.get("weather_forecast"),
			Status:          model.MissionStatus(defaultStr(r.get("status"), string(model.MissionUnassigned))),
			AssignedPilot:   r.get("assigned_pilot"),
			AssignedDrone:   r.get("assigned_drone"),
		}
		if m.ID == "" {
			continue
		}
		missions = append(missions, m)
	}
	return missions, nil
}

func (s *Store) SavePilot(ctx context.Context, p model.Pilot) error {
	if p.ID == "" {
		return fmt.Errorf("sheet: pilot ID is empty")
	}
	row := []string{
		p.ID, p.Name, p.Location,
		joinList(p.Skills), joinList(p.Certifications),
		string(p.Status), p.CurrentAssignment,
		formatDate(p.AvailableFrom), formatFloat(p.DailyRate),
	}
	return s.upsert(filepath.Join(s.dir, pilotsFile), pilotHeader, "pilot_id", p.ID, row)
}

func (s *Store) SaveDrone(ctx context.Context, d model.Drone) error {
	if d.ID == "" {
		return fmt.Errorf("sheet: drone ID is empty")
	}
	row := []string{
		d.ID, d.Model, d.Location, string(d.Status),
		joinList(d.Capabilities), string(d.WeatherResistance),
		formatDate(d.MaintenanceDue), d.CurrentAssignment,
	}
	return s.upsert(filepath.Join(s.dir, dronesFile), droneHeader, "drone_id", d.ID, row)
}

func (s *Store) SaveMission(ctx context.Context, m model.Mission) error {
	if m.ID == "" {
		return fmt.Errorf("sheet: mission ID is empty")
	}
	row := []string{
		m.ID, m.Client, m.Location,
		joinList(m.RequiredSkills), joinList(m.RequiredCerts),
		formatDate(m.StartDate), formatDate(m.EndDate),
		string(m.Priority), formatFloat(m.Budget), m.WeatherForecast,
		string(m.Status), m.AssignedPilot, m.AssignedDrone,
	}
	return s.upsert(filepath.Join(s.dir, missionsFile), missionHeader, "mission_id", m.ID, row)
}

func (s *Store) Close() error { return nil }

// upsert rewrites the file with the canonical header, replacing the row whose
// key column matches id, or appending it. Rows from older schemas are
// re-projected onto the canonical columns.
func (s *Store) upsert(path string, header []string, keyCol, id string, row []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, err := readRows(path)
	if err != nil {
		return err
	}
	out := [][]string{header}
	replaced := false
	for _, r := range existing {
		if r.get(keyCol) == id {
			out = append(out, row)
			replaced = true
			continue
		}
		projected := make([]string, len(header))
		for i, col := range header {
			projected[i] = r.get(col)
		}
		out = append(out, projected)
	}
	if !replaced {
		out = append(out, row)
	}
	return writeRows(path, out)
}

func writeRows(path string, rows [][]string) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
