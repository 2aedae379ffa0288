package conflicts

import (
	"net/http"

	"github.com/skyops/fleetmatch/api"
	"github.com/skyops/fleetmatch/core/assignment"
	"github.com/skyops/fleetmatch/core/conflict"
	"github.com/skyops/fleetmatch/core/model"
)

// NewScanHandler returns an HTTP handler re-validating every active
// assignment via GET /api/conflicts. Only non-empty reports are returned.
func NewScanHandler(mgr *assignment.Manager, engine *conflict.Engine) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			api.MethodNotAllowed(w)
			return
		}
		reports := engine.ScanAll(mgr.Snapshot())
		if reports == nil {
			reports = []model.ConflictReport{}
		}
		api.OK(w, map[string]any{"conflicts": reports})
	})
}
