// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"

	"github.com/okian/salaryexplorer/internal/adapters/export"
	"github.com/okian/salaryexplorer/internal/adapters/repository"
	service "github.com/okian/salaryexplorer/internal/app"
	"github.com/okian/salaryexplorer/internal/domain/aggregate"
	"github.com/okian/salaryexplorer/internal/domain/dataset"
	"github.com/okian/salaryexplorer/internal/domain/model"
	"github.com/okian/salaryexplorer/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Ready reports whether the dataset is loaded.
	Ready() bool

	Options(ctx context.Context) (service.OptionsView, error)
	Dashboard(ctx context.Context, spec dataset.FilterSpec) (service.DashboardView, error)
	Predict(ctx context.Context, inputs dataset.ExactFilter) (service.PredictionView, error)
	Compare(ctx context.Context, titles []string) (service.ComparisonView, error)
	Export(ctx context.Context, spec dataset.FilterSpec, format export.Format, w io.Writer) (int, error)
	Chart(ctx context.Context, name string, spec dataset.FilterSpec, w io.Writer) error
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	dashboardHandler *DashboardHandler
	estimateHandler  *EstimateHandler
	compareHandler   *CompareHandler
	exportHandler    *ExportHandler
	chartHandler     *ChartHandler
	limiter          *RateLimiter
}

// Option configures a Server.
type Option func(*Server)

// WithRateLimit throttles the /api routes to rps requests per second with
// the given burst. A non-positive rps disables throttling.
func WithRateLimit(rps float64, burst int) Option {
	return func(s *Server) {
		s.limiter = NewRateLimiter(rps, burst)
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		healthHandler:    NewHealthHandler(deps),
		statsHandler:     NewStatsHandler(statsProvider),
		dashboardHandler: NewDashboardHandler(deps),
		estimateHandler:  NewEstimateHandler(deps),
		compareHandler:   NewCompareHandler(deps),
		exportHandler:    NewExportHandler(deps),
		chartHandler:     NewChartHandler(deps),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}

	// Operational endpoints are never throttled.
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/readyz", MetricsMiddleware(s.healthHandler.HandleReady, "readyz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("/api/options", s.route(s.dashboardHandler.HandleOptions, "options"))
	mux.HandleFunc("/api/dashboard", s.route(s.dashboardHandler.HandleDashboard, "dashboard"))
	mux.HandleFunc("/api/estimate", s.route(s.estimateHandler.HandleEstimate, "estimate"))
	mux.HandleFunc("/api/compare", s.route(s.compareHandler.HandleCompare, "compare"))
	mux.HandleFunc("/api/export.csv", s.route(s.exportHandler.Handle(export.FormatCSV), "export_csv"))
	mux.HandleFunc("/api/export.xlsx", s.route(s.exportHandler.Handle(export.FormatXLSX), "export_xlsx"))
	mux.HandleFunc("/api/charts/", s.route(s.chartHandler.HandleChart, "charts"))
}

func (s *Server) route(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	return MetricsMiddleware(s.limiter.Middleware(next, endpoint), endpoint)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// emptyResponse is returned with 200 when a view has nothing to show.
type emptyResponse struct {
	Empty   bool               `json:"empty"`
	Message string             `json:"message"`
	Filters dataset.FilterSpec `json:"filters,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError translates view errors into responses.
func writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, service.ErrNoEstimate):
		writeJSON(w, http.StatusNotFound, errorResponse{Code: "no_estimate", Message: service.ErrNoEstimate.Error()})
	case errors.Is(err, service.ErrNoMatchingRecords):
		writeJSON(w, http.StatusOK, emptyResponse{Empty: true, Message: service.ErrNoMatchingRecords.Error()})
	case errors.Is(err, service.ErrUnknownChart):
		writeError(w, http.StatusNotFound, "not_found", Wrap(op, err))
	case errors.Is(err, service.ErrNoJobsSelected),
		errors.Is(err, dataset.ErrUnknownColumn),
		errors.Is(err, aggregate.ErrUnknownColumn),
		errors.Is(err, export.ErrUnknownFormat):
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
	case errors.Is(err, service.ErrNotStarted), errors.Is(err, repository.ErrDataUnavailable):
		writeError(w, http.StatusServiceUnavailable, "not_ready", WrapKind(op, ErrNotReady, err))
	case errors.Is(err, context.Canceled):
		// Client went away.
	default:
		logger.Get().Error(r.Context(), "request failed",
			logger.String("op", op), logger.String("request_id", RequestIDFrom(r.Context())), logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
	}
}

// filterSpec reads a FilterSpec from the query string. A key may be repeated
// or carry comma-separated values; skip names parameters that are not
// filters.
func filterSpec(r *http.Request, skip ...string) (dataset.FilterSpec, error) {
	q := r.URL.Query()
	spec := dataset.FilterSpec{}
	for key, values := range q {
		if slices.Contains(skip, key) {
			continue
		}
		col := model.Column(key)
		if !col.Valid() {
			return nil, fmt.Errorf("filter %s: %w", key, dataset.ErrUnknownColumn)
		}
		spec[col] = splitValues(values)
	}
	return spec, nil
}

func splitValues(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
