// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	service "github.com/okian/salaryexplorer/internal/app"
	"github.com/okian/salaryexplorer/internal/domain/dataset"
)

// DashboardDependencies defines the read operations behind the dashboard.
type DashboardDependencies interface {
	Options(ctx context.Context) (service.OptionsView, error)
	Dashboard(ctx context.Context, spec dataset.FilterSpec) (service.DashboardView, error)
}

// DashboardHandler handles dashboard and selector requests.
type DashboardHandler struct {
	deps DashboardDependencies
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(deps DashboardDependencies) *DashboardHandler {
	return &DashboardHandler{deps: deps}
}

// HandleOptions handles GET /api/options requests.
func (h *DashboardHandler) HandleOptions(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_options"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	view, err := h.deps.Options(r.Context())
	if err != nil {
		writeServiceError(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleDashboard handles GET /api/dashboard?<column>=<values> requests.
func (h *DashboardHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_dashboard"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	spec, err := filterSpec(r)
	if err != nil {
		writeServiceError(w, r, op, err)
		return
	}
	view, err := h.deps.Dashboard(r.Context(), spec)
	if err != nil {
		writeServiceError(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
