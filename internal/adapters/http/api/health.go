// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/okian/salaryexplorer/pkg/metrics"
)

// ReadinessChecker reports whether the service can answer queries.
type ReadinessChecker interface {
	Ready() bool
}

// HealthHandler handles health and readiness requests.
type HealthHandler struct {
	readiness ReadinessChecker
	metrics   http.Handler
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(readiness ReadinessChecker) *HealthHandler {
	return &HealthHandler{
		readiness: readiness,
		metrics:   promhttp.HandlerFor(metrics.GetRegistry(), promhttp.HandlerOpts{}),
	}
}

// HandleHealth handles GET /healthz requests by serving the custom metrics
// registry in the Prometheus exposition format.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.metrics.ServeHTTP(w, r)
}

type readyResponse struct {
	Ready bool `json:"ready"`
}

// HandleReady handles GET /readyz: 200 once the dataset is loaded, 503 before.
func (h *HealthHandler) HandleReady(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	if h.readiness == nil || !h.readiness.Ready() {
		writeJSON(w, http.StatusServiceUnavailable, readyResponse{Ready: false})
		return
	}
	writeJSON(w, http.StatusOK, readyResponse{Ready: true})
}
