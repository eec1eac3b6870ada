// Package probe is a concurrent smoke-test client for a running salary
// explorer. It fires estimate and dashboard requests built from the
// server's own selector options and checks every answer for consistency.
package probe

import (
	"errors"
	"time"

	service "github.com/okian/salaryexplorer/internal/app"
)

// Sentinel kinds for probe failures.
var (
	ErrNotReady  = errors.New("service not ready")
	ErrViolation = errors.New("invariant violated")
)

// Config holds configuration for a probe run.
type Config struct {
	BaseURL    string        // Base URL of the service
	Requests   int           // Number of estimate requests to send
	Dashboards int           // Number of dashboard requests to send
	Workers    int           // Number of concurrent workers
	Timeout    time.Duration // HTTP request timeout
	Seed       uint64        // Seed for input generation; 0 picks one
	OutputFile string        // Output file for the run report
	Verbose    bool          // Enable verbose logging
}

// EstimateRequest is the body of POST /api/estimate.
type EstimateRequest struct {
	JobTitle        string `json:"job_title"`
	ExperienceLevel string `json:"experience_level"`
	EmploymentType  string `json:"employment_type"`
	RemoteRatio     int    `json:"remote_ratio"`
	CompanyLocation string `json:"company_location"`
	CompanySize     string `json:"company_size"`
}

// Outcome is one estimate request and what came back.
type Outcome struct {
	Request    EstimateRequest         `json:"request"`
	RequestID  string                  `json:"request_id"`
	Status     int                     `json:"status"`
	Code       string                  `json:"code,omitempty"`
	Prediction *service.PredictionView `json:"prediction,omitempty"`
	Err        string                  `json:"error,omitempty"`
	Latency    time.Duration           `json:"latency_ns"`
}

// Stats holds run statistics.
type Stats struct {
	RunID          string        `json:"run_id"`
	Sent           int           `json:"sent"`
	Exact          int           `json:"exact"`
	Relaxed        int           `json:"relaxed"`
	NoEstimate     int           `json:"no_estimate"`
	Failed         int           `json:"failed"`
	Dashboards     int           `json:"dashboards"`
	EmptyDashboard int           `json:"empty_dashboards"`
	Violations     []string      `json:"violations"`
	StartTime      time.Time     `json:"start_time"`
	EndTime        time.Time     `json:"end_time"`
	Duration       time.Duration `json:"duration_ns"`
}
