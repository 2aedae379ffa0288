// Package sqlite implements the Store contract on a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/skyops/fleetmatch/core/model"
)

// Store persists domain records in a SQLite database.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the database at path and ensures schema.
func NewStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	schema := `
    CREATE TABLE IF NOT EXISTS pilots (
        id TEXT PRIMARY KEY,
        name TEXT,
        location TEXT,
        skills TEXT,
        certifications TEXT,
        status TEXT,
        current_assignment TEXT,
        available_from TEXT,
        daily_rate REAL
    );
    CREATE TABLE IF NOT EXISTS drones (
        id TEXT PRIMARY KEY,
        model TEXT,
        location TEXT,
        status TEXT,
        capabilities TEXT,
        weather_resistance TEXT,
        maintenance_due TEXT,
        current_assignment TEXT
    );
    CREATE TABLE IF NOT EXISTS missions (
        id TEXT PRIMARY KEY,
        client TEXT,
        location TEXT,
        required_skills TEXT,
        required_certs TEXT,
        start_date TEXT,
        end_date TEXT,
        priority TEXT,
        budget REAL,
        weather_forecast TEXT,
        status TEXT,
        assigned_pilot TEXT,
        assigned_drone TEXT
    );`
	if _, err := db.Exec(schema); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("close db: %v (schema err: %w)", cerr, err)
		}
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) LoadPilots(ctx context.Context) ([]model.Pilot, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, location, skills, certifications, status, current_assignment, available_from, daily_rate FROM pilots ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var pilots []model.Pilot
	for rows.Next() {
		var p model.Pilot
		var skills, certs, status, availableFrom string
		if err := rows.Scan(&p.ID, &p.Name, &p.Location, &skills, &certs, &status, &p.CurrentAssignment, &availableFrom, &p.DailyRate); err != nil {
			return nil, err
		}
		p.Skills = splitList(skills)
		p.Certifications = splitList(certs)
		p.Status = model.PilotStatus(status)
		p.AvailableFrom = parseDate(availableFrom)
		pilots = append(pilots, p)
	}
	return pilots, rows.Err()
}

func (s *Store) LoadDrones(ctx context.Context) ([]model.Drone, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, model, location, status, capabilities, weather_resistance, maintenance_due, current_assignment FROM drones ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var drones []model.Drone
	for rows.Next() {
		var d model.Drone
		var status, caps, rating, due string
		if err := rows.Scan(&d.ID, &d.Model, &d.Location, &status, &caps, &rating, &due, &d.CurrentAssignment); err != nil {
			return nil, err
		}
		d.Status = model.DroneStatus(status)
		d.Capabilities = splitList(caps)
		d.WeatherResistance = model.WeatherRating(rating)
		d.MaintenanceDue = parseDate(due)
		drones = append(drones, d)
	}
	return drones, rows.Err()
}

func (s *Store) LoadMissions(ctx context.Context) ([]model.Mission, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, client, location, required_skills, required_certs, start_date, end_date, priority, budget, weather_forecast, status, assigned_pilot, assigned_drone FROM missions ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var missions []model.Mission
	for rows.Next() {
		var m model.Mission
		var skills, certs, start, end, priority, status string
		if err := rows.Scan(&m.ID, &m.Client, &m.Location, &skills, &certs, &start, &end, &priority, &m.Budget, &m.WeatherForecast, &status, &m.AssignedPilot, &m.AssignedDrone); err != nil {
			return nil, err
		}
		m.RequiredSkills = splitList(skills)
		m.RequiredCerts = splitList(certs)
		m.StartDate = parseDate(start)
		m.EndDate = parseDate(end)
		m.Priority = model.MissionPriority(priority)
		m.Status = model.MissionStatus(status)
		missions = append(missions, m)
	}
	return missions, rows.Err()
}

func (s *Store) SavePilot(ctx context.Context, p model.Pilot) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO pilots (id, name, location, skills, certifications, status, current_assignment, available_from, daily_rate)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET
            name=excluded.name, location=excluded.location, skills=excluded.skills,
            certifications=excluded.certifications, status=excluded.status,
            current_assignment=excluded.current_assignment,
            available_from=excluded.available_from, daily_rate=excluded.daily_rate`,
		p.ID, p.Name, p.Location, joinList(p.Skills), joinList(p.Certifications),
		string(p.Status), p.CurrentAssignment, formatDate(p.AvailableFrom), p.DailyRate)
	return err
}

func (s *Store) SaveDrone(ctx context.Context, d model.Drone) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO drones (id, model, location, status, capabilities, weather_resistance, maintenance_due, current_assignment)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET
            model=excluded.model, location=excluded.location, status=excluded.status,
            capabilities=excluded.capabilities, weather_resistance=excluded.weather_resistance,
            maintenance_due=excluded.maintenance_due, current_assignment=excluded.current_assignment`,
		d.ID, d.Model, d.Location, string(d.Status), joinList(d.Capabilities),
		string(d.WeatherResistance), formatDate(d.MaintenanceDue), d.CurrentAssignment)
	return err
}

func (s *Store) SaveMission(ctx context.Context, m model.Mission) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO missions (id, client, location, required_skills, required_certs, start_date, end_date, priority, budget, weather_forecast, status, assigned_pilot, assigned_drone)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET
            client=excluded.client, location=excluded.location,
            required_skills=excluded.required_skills, required_certs=excluded.required_certs,
            start_date=excluded.start_date, end_date=excluded.end_date,
            priority=excluded.priority, budget=excluded.budget,
            weather_forecast=excluded.weather_forecast, status=excluded.status,
            assigned_pilot=excluded.assigned_pilot, assigned_drone=excluded.assigned_drone`,
		m.ID, m.Client, m.Location, joinList(m.RequiredSkills), joinList(m.RequiredCerts),
		formatDate(m.StartDate), formatDate(m.EndDate), string(m.Priority), m.Budget,
		m.WeatherForecast, string(m.Status), m.AssignedPilot, m.AssignedDrone)
	return err
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func joinList(vals []string) string { return strings.Join(vals, ", ") }

func parseDate(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	t, err := time.Parse(model.DateLayout, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(model.DateLayout)
}
