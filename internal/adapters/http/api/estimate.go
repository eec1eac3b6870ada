// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	service "github.com/okian/salaryexplorer/internal/app"
	"github.com/okian/salaryexplorer/internal/domain/dataset"
	"github.com/okian/salaryexplorer/internal/domain/model"
)

const maxEstimateBody = 1 << 16

// EstimateDependencies defines the predictor operation.
type EstimateDependencies interface {
	Predict(ctx context.Context, inputs dataset.ExactFilter) (service.PredictionView, error)
}

// estimateRequest mirrors the OpenAPI schema for POST /api/estimate.
type estimateRequest struct {
	JobTitle        string `json:"job_title" validate:"required,max=200"`
	ExperienceLevel string `json:"experience_level" validate:"required,oneof=EN MI SE EX"`
	EmploymentType  string `json:"employment_type" validate:"required,oneof=FT PT CT FL"`
	RemoteRatio     *int   `json:"remote_ratio" validate:"required,oneof=0 50 100"`
	CompanyLocation string `json:"company_location" validate:"required,len=2,alpha"`
	CompanySize     string `json:"company_size" validate:"required,oneof=S M L"`
}

func (e estimateRequest) filter() dataset.ExactFilter {
	return dataset.ExactFilter{
		model.ColJobTitle:        e.JobTitle,
		model.ColExperienceLevel: e.ExperienceLevel,
		model.ColEmploymentType:  e.EmploymentType,
		model.ColRemoteRatio:     strconv.Itoa(*e.RemoteRatio),
		model.ColCompanyLocation: e.CompanyLocation,
		model.ColCompanySize:     e.CompanySize,
	}
}

// EstimateHandler handles salary estimate requests.
type EstimateHandler struct {
	deps     EstimateDependencies
	validate *validator.Validate
}

// NewEstimateHandler creates a new estimate handler.
func NewEstimateHandler(deps EstimateDependencies) *EstimateHandler {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &EstimateHandler{deps: deps, validate: v}
}

// HandleEstimate handles POST /api/estimate requests.
func (h *EstimateHandler) HandleEstimate(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_estimate"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req estimateRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxEstimateBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := h.check(req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	view, err := h.deps.Predict(r.Context(), req.filter())
	if err != nil {
		writeServiceError(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// check validates req and reports every failing field by its JSON name.
func (h *EstimateHandler) check(req estimateRequest) error {
	err := h.validate.Struct(req)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, "missing "+fe.Field())
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("invalid %s; must be one of %s", fe.Field(), fe.Param()))
		default:
			msgs = append(msgs, "invalid "+fe.Field())
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}
