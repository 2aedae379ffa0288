package reassign

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/skyops/fleetmatch/api"
	"github.com/skyops/fleetmatch/core/logger"
	"github.com/skyops/fleetmatch/core/model"
	"github.com/skyops/fleetmatch/core/reassign"
	"github.com/skyops/fleetmatch/core/reassign/logging"
)

// NewSweepHandler returns an HTTP handler triggering a full reassignment
// sweep via POST /api/reassign/sweep.
func NewSweepHandler(svc *reassign.Service, log logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			api.MethodNotAllowed(w)
			return
		}
		outcomes, err := svc.ProcessAll(r.Context())
		if err != nil {
			if log != nil {
				log.Warnf("sweep rejected: %v", err)
			}
			api.Fail(w, err)
			return
		}
		api.OK(w, map[string]any{"outcomes": outcomes})
	})
}

// NewProcessHandler returns an HTTP handler running the reassignment state
// machine for one mission via POST /api/reassign/process.
func NewProcessHandler(svc *reassign.Service) http.Handler {
	type request struct {
		MissionID string `json:"mission_id"`
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			api.MethodNotAllowed(w)
			return
		}
		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.BadRequest(w, "invalid JSON body")
			return
		}
		if req.MissionID == "" {
			api.BadRequest(w, "mission_id is required")
			return
		}
		outcome, err := svc.ProcessOne(r.Context(), req.MissionID)
		if err != nil {
			api.Fail(w, err)
			return
		}
		api.OK(w, map[string]any{"mission_id": req.MissionID, "outcome": outcome})
	})
}

// NewLogHandler returns an HTTP handler querying the reassignment log via
// GET /api/reassign/log. Filters: start, end (RFC 3339), mission_id, outcome.
func NewLogHandler(svc *reassign.Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			api.MethodNotAllowed(w)
			return
		}
		q := logging.LogQuery{
			MissionID: r.URL.Query().Get("mission_id"),
			Outcome:   model.ReassignmentOutcome(r.URL.Query().Get("outcome")),
		}
		if v := r.URL.Query().Get("start"); v != "" {
			t, err := time.Parse(time.RFC3339, v)
			if err != nil {
				api.BadRequest(w, "start must be RFC 3339")
				return
			}
			q.Start = t
		}
		if v := r.URL.Query().Get("end"); v != "" {
			t, err := time.Parse(time.RFC3339, v)
			if err != nil {
				api.BadRequest(w, "end must be RFC 3339")
				return
			}
			q.End = t
		}
		entries, err := svc.Log(r.Context(), q)
		if err != nil {
			api.Fail(w, err)
			return
		}
		if entries == nil {
			entries = []model.ReassignmentLogEntry{}
		}
		api.OK(w, map[string]any{"entries": entries})
	})
}
