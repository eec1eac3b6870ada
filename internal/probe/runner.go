package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	service "github.com/okian/salaryexplorer/internal/app"
	"github.com/okian/salaryexplorer/pkg/logger"
)

const directoryPermission = 0o750

// Report is what a run writes to Config.OutputFile.
type Report struct {
	Stats    Stats     `json:"stats"`
	Outcomes []Outcome `json:"outcomes"`
}

// Run executes a probe against config.BaseURL. It returns ErrViolation when
// any response breaks an invariant.
func Run(ctx context.Context, config *Config) (*Report, error) {
	log := logger.Named("probe")
	stats := Stats{RunID: uuid.NewString(), StartTime: time.Now()}
	c := newClient(config.BaseURL, config.Timeout)

	seed := config.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	log.Info(ctx, "starting salary explorer probe",
		logger.String("runID", stats.RunID),
		logger.String("baseURL", config.BaseURL),
		logger.Int("requests", config.Requests),
		logger.Int("dashboards", config.Dashboards),
		logger.Int("workers", config.Workers),
		logger.Any("seed", seed))

	// Step 1: Check readiness
	if err := checkReady(ctx, c); err != nil {
		return nil, err
	}

	// Step 2: Learn the input space and the relaxation threshold
	var opts service.OptionsView
	if err := c.getJSON(ctx, "/api/options", &opts); err != nil {
		return nil, fmt.Errorf("fetch options: %w", err)
	}
	var serverStats map[string]any
	if err := c.getJSON(ctx, "/stats", &serverStats); err != nil {
		return nil, fmt.Errorf("fetch stats: %w", err)
	}
	minSample := 3
	if v, ok := serverStats["estimateMinSample"].(float64); ok {
		minSample = int(v)
	}

	// Step 3: Fire requests concurrently
	gen := newGenerator(seed, opts)
	estimates := gen.estimates(config.Requests)
	queries := gen.dashboardQueries(config.Dashboards)
	outcomes := make([]Outcome, len(estimates))

	var mu sync.Mutex
	violate := func(v []string) {
		if len(v) == 0 {
			return
		}
		mu.Lock()
		stats.Violations = append(stats.Violations, v...)
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, config.Workers))
	for i, req := range estimates {
		g.Go(func() error {
			outcomes[i] = estimate(gctx, c, req)
			violate(checkEstimate(outcomes[i], minSample))
			return nil
		})
	}
	for _, q := range queries {
		g.Go(func() error {
			var d dashboardResponse
			if err := c.getJSON(gctx, "/api/dashboard?"+q, &d); err != nil {
				violate([]string{err.Error()})
				return nil
			}
			mu.Lock()
			stats.Dashboards++
			if d.Empty {
				stats.EmptyDashboard++
			}
			mu.Unlock()
			violate(checkDashboard(q, d))
			return nil
		})
	}
	_ = g.Wait()

	for _, o := range outcomes {
		stats.Sent++
		switch {
		case o.Status == http.StatusOK && o.Prediction != nil && o.Prediction.Relaxed:
			stats.Relaxed++
		case o.Status == http.StatusOK:
			stats.Exact++
		case o.Status == http.StatusNotFound:
			stats.NoEstimate++
		default:
			stats.Failed++
			if config.Verbose {
				log.Warn(ctx, "estimate failed", logger.String("requestID", o.RequestID),
					logger.Int("status", o.Status), logger.String("error", o.Err))
			}
		}
	}
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	report := &Report{Stats: stats, Outcomes: outcomes}
	displayFinalStats(ctx, log, stats)

	// Step 4: Save the report
	if config.OutputFile != "" {
		if err := saveReport(config.OutputFile, report); err != nil {
			log.Warn(ctx, "failed to save report", logger.Error(err))
		}
	}

	if err := ctx.Err(); err != nil {
		return report, err
	}
	if len(stats.Violations) > 0 {
		for _, v := range stats.Violations {
			log.Error(ctx, "violation", logger.String("detail", v))
		}
		return report, fmt.Errorf("%w: %d violations", ErrViolation, len(stats.Violations))
	}
	return report, nil
}

func checkReady(ctx context.Context, c *client) error {
	status, _, _, err := c.do(ctx, http.MethodGet, "/readyz", nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNotReady, err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("%w: readyz status %d", ErrNotReady, status)
	}
	return nil
}

func estimate(ctx context.Context, c *client, req EstimateRequest) Outcome {
	start := time.Now()
	status, id, data, err := c.do(ctx, http.MethodPost, "/api/estimate", req)
	o := Outcome{Request: req, RequestID: id, Status: status, Latency: time.Since(start)}
	if err != nil {
		o.Err = err.Error()
		return o
	}
	switch status {
	case http.StatusOK:
		var p service.PredictionView
		if err := json.Unmarshal(data, &p); err != nil {
			o.Err = err.Error()
			return o
		}
		o.Prediction = &p
	default:
		var e struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		if json.Unmarshal(data, &e) == nil {
			o.Code, o.Err = e.Code, e.Message
		}
	}
	return o
}

func saveReport(filename string, report *Report) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(filename, data, 0o600); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

func displayFinalStats(ctx context.Context, log logger.Logger, stats Stats) {
	var perSecond float64
	if stats.Duration > 0 {
		perSecond = float64(stats.Sent+stats.Dashboards) / stats.Duration.Seconds()
	}
	log.Info(ctx, "final statistics",
		logger.String("runID", stats.RunID),
		logger.Int("sent", stats.Sent),
		logger.Int("exact", stats.Exact),
		logger.Int("relaxed", stats.Relaxed),
		logger.Int("noEstimate", stats.NoEstimate),
		logger.Int("failed", stats.Failed),
		logger.Int("dashboards", stats.Dashboards),
		logger.Int("emptyDashboards", stats.EmptyDashboard),
		logger.Int("violations", len(stats.Violations)),
		logger.Duration("duration", stats.Duration),
		logger.Float64("requestsPerSecond", perSecond))
}
