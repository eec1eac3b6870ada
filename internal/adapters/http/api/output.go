// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/salaryexplorer/internal/adapters/export"
	"github.com/okian/salaryexplorer/internal/domain/dataset"
)

// ExportDependencies defines the export operation.
type ExportDependencies interface {
	Export(ctx context.Context, spec dataset.FilterSpec, format export.Format, w io.Writer) (int, error)
}

// ExportHandler handles filtered data downloads.
type ExportHandler struct {
	deps ExportDependencies
}

// NewExportHandler creates a new export handler.
func NewExportHandler(deps ExportDependencies) *ExportHandler {
	return &ExportHandler{deps: deps}
}

// Handle returns the handler for GET /api/export.<format>.
func (h *ExportHandler) Handle(format export.Format) http.HandlerFunc {
	op := "api.get_export_" + string(format)
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.NotFound(w, r)
			return
		}
		spec, err := filterSpec(r)
		if err != nil {
			writeServiceError(w, r, op, err)
			return
		}
		// Buffered so a failed export still yields a JSON error.
		var buf bytes.Buffer
		n, err := h.deps.Export(r.Context(), spec, format, &buf)
		if err != nil {
			writeServiceError(w, r, op, err)
			return
		}
		w.Header().Set("Content-Type", format.ContentType())
		w.Header().Set("Content-Disposition", `attachment; filename="`+format.Filename()+`"`)
		w.Header().Set("X-Record-Count", strconv.Itoa(n))
		w.WriteHeader(http.StatusOK)
		_, _ = buf.WriteTo(w)
	}
}

// ChartDependencies defines the chart rendering operation.
type ChartDependencies interface {
	Chart(ctx context.Context, name string, spec dataset.FilterSpec, w io.Writer) error
}

// ChartHandler handles chart requests.
type ChartHandler struct {
	deps ChartDependencies
}

// NewChartHandler creates a new chart handler.
func NewChartHandler(deps ChartDependencies) *ChartHandler {
	return &ChartHandler{deps: deps}
}

// HandleChart handles GET /api/charts/{name}.svg requests.
func (h *ChartHandler) HandleChart(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_chart"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	// Extract path parameter after /api/charts/
	name, ok := strings.CutSuffix(strings.TrimPrefix(r.URL.Path, "/api/charts/"), ".svg")
	if !ok || name == "" || strings.Contains(name, "/") {
		writeError(w, http.StatusNotFound, "not_found", NewKind(op, ErrBadRequest))
		return
	}
	spec, err := filterSpec(r)
	if err != nil {
		writeServiceError(w, r, op, err)
		return
	}
	var buf bytes.Buffer
	if err := h.deps.Chart(r.Context(), name, spec, &buf); err != nil {
		writeServiceError(w, r, op, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
