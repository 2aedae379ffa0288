package assignments

import (
	"encoding/json"
	"net/http"

	"github.com/skyops/fleetmatch/api"
	"github.com/skyops/fleetmatch/core/assignment"
	"github.com/skyops/fleetmatch/core/decision"
)

type assignRequest struct {
	MissionID string `json:"mission_id"`
	PilotID   string `json:"pilot_id"`
	DroneID   string `json:"drone_id"`
}

// NewAssignHandler returns an HTTP handler committing an assignment via
// POST /api/assignments.
func NewAssignHandler(mgr *assignment.Manager) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			api.MethodNotAllowed(w)
			return
		}
		var req assignRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.BadRequest(w, "invalid request body")
			return
		}
		if req.MissionID == "" || req.PilotID == "" || req.DroneID == "" {
			api.BadRequest(w, "mission_id, pilot_id and drone_id are required")
			return
		}
		rec, err := mgr.Assign(r.Context(), req.MissionID, req.PilotID, req.DroneID)
		if err != nil {
			api.Fail(w, err)
			return
		}
		api.OK(w, map[string]any{"assignment": rec})
	})
}

type releaseRequest struct {
	MissionID string `json:"mission_id"`
}

// NewReleaseHandler returns an HTTP handler releasing a mission's assignment
// via POST /api/assignments/release.
func NewReleaseHandler(mgr *assignment.Manager) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			api.MethodNotAllowed(w)
			return
		}
		var req releaseRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.BadRequest(w, "invalid request body")
			return
		}
		if req.MissionID == "" {
			api.BadRequest(w, "mission_id is required")
			return
		}
		if err := mgr.Release(r.Context(), req.MissionID); err != nil {
			api.Fail(w, err)
			return
		}
		api.OK(w, map[string]any{"mission_id": req.MissionID})
	})
}

// NewHistoryHandler returns an HTTP handler exposing the assignment history,
// newest first, via GET /api/assignments/history.
func NewHistoryHandler(mgr *assignment.Manager) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			api.MethodNotAllowed(w)
			return
		}
		api.OK(w, map[string]any{"history": mgr.History()})
	})
}

type candidateView struct {
	PilotID string  `json:"pilot_id"`
	DroneID string  `json:"drone_id"`
	Score   float64 `json:"score"`
}

// NewCandidatesHandler returns an HTTP handler listing ranked candidates for
// a mission via GET /api/assignments/candidates?mission_id=....
func NewCandidatesHandler(mgr *assignment.Manager, decisions *decision.Engine) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			api.MethodNotAllowed(w)
			return
		}
		missionID := r.URL.Query().Get("mission_id")
		if missionID == "" {
			api.BadRequest(w, "mission_id is required")
			return
		}
		mission, ok := mgr.Mission(missionID)
		if !ok {
			api.Fail(w, assignment.NotFoundError{Kind: "mission", ID: missionID})
			return
		}
		ranked := decisions.Rank(mission, mgr.Pilots(), mgr.Drones(), mgr.Snapshot())
		views := make([]candidateView, 0, len(ranked))
		for _, c := range ranked {
			views = append(views, candidateView{PilotID: c.Pilot.ID, DroneID: c.Drone.ID, Score: c.Score})
		}
		api.OK(w, map[string]any{"mission_id": missionID, "candidates": views})
	})
}
