// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	service "github.com/okian/salaryexplorer/internal/app"
	"github.com/okian/salaryexplorer/internal/domain/model"
)

// CompareDependencies defines the comparator operation.
type CompareDependencies interface {
	Compare(ctx context.Context, titles []string) (service.ComparisonView, error)
}

// CompareHandler handles job comparison requests.
type CompareHandler struct {
	deps CompareDependencies
}

// NewCompareHandler creates a new compare handler.
func NewCompareHandler(deps CompareDependencies) *CompareHandler {
	return &CompareHandler{deps: deps}
}

// HandleCompare handles GET /api/compare?job_title=A&job_title=B requests.
func (h *CompareHandler) HandleCompare(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_compare"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	titles := splitValues(r.URL.Query()[string(model.ColJobTitle)])
	if len(titles) == 0 {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, service.ErrNoJobsSelected))
		return
	}
	view, err := h.deps.Compare(r.Context(), titles)
	if err != nil {
		writeServiceError(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
