package fleet

import (
	"net/http"

	"github.com/skyops/fleetmatch/api"
	"github.com/skyops/fleetmatch/core/assignment"
)

// NewFleetHandler returns an HTTP handler exposing the current pilots,
// drones and missions via GET /api/fleet.
func NewFleetHandler(mgr *assignment.Manager) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			api.MethodNotAllowed(w)
			return
		}
		api.OK(w, map[string]any{
			"pilots":   mgr.Pilots(),
			"drones":   mgr.Drones(),
			"missions": mgr.Missions(),
		})
	})
}
