// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"runtime"
	"slices"
	"sync"
	"time"

	repository "github.com/okian/salaryexplorer/internal/adapters/repository"
	"github.com/okian/salaryexplorer/internal/domain/dataset"
	"github.com/okian/salaryexplorer/internal/domain/estimate"
	"github.com/okian/salaryexplorer/pkg/logger"
	"github.com/okian/salaryexplorer/pkg/metrics"
)

// Service implements the API dependencies for the salary explorer.
type Service struct {
	mu sync.RWMutex

	// Core components
	store     repository.Store
	estimator *estimate.Engine

	// Configuration
	dataPath             string
	loadTimeout          time.Duration
	minSample            int
	popularJobMinRecords int
	topJobLimit          int
	topJobTitles         []string
	systemMetricsEvery   time.Duration

	// State
	started   bool
	startedAt time.Time
	stopCh    chan struct{}
	wg        sync.WaitGroup

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the dataset store. When unset, Start builds a cached CSV store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithDataPath sets the CSV file used by the default store.
func WithDataPath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.dataPath = path
		}
	}
}

// WithLoadTimeout bounds the dataset load of the default store.
func WithLoadTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		if timeout > 0 {
			s.loadTimeout = timeout
		}
	}
}

// WithEstimateMinSample sets the exact-match size below which estimates relax.
func WithEstimateMinSample(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.minSample = n
		}
	}
}

// WithPopularJobMinRecords sets how many records a title needs to be popular.
func WithPopularJobMinRecords(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.popularJobMinRecords = n
		}
	}
}

// WithTopJobLimit caps the salary-by-job table.
func WithTopJobLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.topJobLimit = n
		}
	}
}

// WithTopJobTitles sets the default job title selection.
func WithTopJobTitles(titles []string) Option {
	return func(s *Service) {
		if len(titles) > 0 {
			s.topJobTitles = slices.Clone(titles)
		}
	}
}

// WithSystemMetricsInterval sets how often runtime metrics are sampled.
func WithSystemMetricsInterval(every time.Duration) Option {
	return func(s *Service) {
		if every > 0 {
			s.systemMetricsEvery = every
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		dataPath:             "data/ds_salaries.csv",
		loadTimeout:          30 * time.Second,
		minSample:            estimate.DefaultMinSample,
		popularJobMinRecords: 10,
		topJobLimit:          15,
		topJobTitles: []string{
			"Data Engineer",
			"Data Scientist",
			"Data Analyst",
			"Machine Learning Engineer",
			"Analytics Engineer",
			"Data Architect",
		},
		systemMetricsEvery: 10 * time.Second,
		stopCh:             make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}
	s.estimator = estimate.New(estimate.WithMinSample(s.minSample))

	return s
}

// Start loads the dataset and starts background metrics sampling. A load
// failure is returned and leaves the service stopped.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting salary explorer service...", logger.String("dataPath", s.dataPath))

	if s.store == nil {
		s.store = repository.NewCachedStore(
			repository.NewCSVSource(s.dataPath),
			repository.WithLoadTimeout(s.loadTimeout),
			repository.WithLogger(s.logger.Named("repository")),
		)
	}
	ds, err := s.store.EnsureLoaded(ctx)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}

	s.stopCh = make(chan struct{})
	s.wg.Add(1)
	go s.sampleSystemMetrics()

	s.started = true
	s.startedAt = time.Now()
	s.logger.Info(ctx, "salary explorer service started",
		logger.Int("records", ds.Len()),
		logger.Int("minSample", s.minSample),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping salary explorer service...")

	select {
	case <-s.stopCh:
	default:
		close(s.stopCh)
	}
	s.wg.Wait()

	s.started = false
	s.logger.Info(context.Background(), "salary explorer service stopped")
}

// Ready reports whether the dataset is loaded.
func (s *Service) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store != nil && s.store.Loaded()
}

// dataset returns the loaded dataset.
func (s *Service) dataset(ctx context.Context) (*dataset.Dataset, error) {
	s.mu.RLock()
	store := s.store
	s.mu.RUnlock()
	if store == nil {
		return nil, ErrNotStarted
	}
	return store.EnsureLoaded(ctx)
}

// filtered applies spec to the dataset.
func (s *Service) filtered(ctx context.Context, spec dataset.FilterSpec) (*dataset.Dataset, error) {
	ds, err := s.dataset(ctx)
	if err != nil {
		return nil, err
	}
	out, err := ds.Filter(spec)
	if err != nil {
		return nil, err
	}
	metrics.RecordFilterQuery(out.Len())
	return out, nil
}

// observe records the latency of a view computation.
func observe(view string, start time.Time) {
	metrics.RecordViewLatency(view, metrics.Milliseconds(time.Since(start)))
}

func (s *Service) sampleSystemMetrics() {
	defer s.wg.Done()
	ticker := time.NewTicker(s.systemMetricsEvery)
	defer ticker.Stop()

	var lastNumGC uint32
	sample := func() {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)
		metrics.UpdateSystemMemoryUsage(m.Alloc)
		metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
		if m.NumGC > lastNumGC {
			// Most recent pause.
			pause := m.PauseNs[(m.NumGC+255)%256]
			metrics.RecordSystemGCPauseTime(metrics.Milliseconds(time.Duration(pause)))
			lastNumGC = m.NumGC
		}
	}

	sample()
	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			sample()
		}
	}
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":              s.started,
		"dataPath":             s.dataPath,
		"estimateMinSample":    s.minSample,
		"popularJobMinRecords": s.popularJobMinRecords,
		"topJobLimit":          s.topJobLimit,
		"loaded":               false,
	}

	if s.store != nil {
		records := s.store.Count(context.Background())
		stats["loaded"] = s.store.Loaded()
		stats["records"] = records
		metrics.UpdateDatasetRecords(records)
		if cs, ok := s.store.(*repository.CachedStore); ok {
			stats["lastLoadMs"] = metrics.Milliseconds(cs.LastLoadDuration())
			stats["sourceReads"] = cs.Reads()
		}
	}
	if s.started {
		stats["uptimeSeconds"] = time.Since(s.startedAt).Seconds()
	}
	if families, err := metrics.Snapshot(); err != nil {
		stats["metricsError"] = err.Error()
	} else {
		stats["metricFamilies"] = len(families)
	}

	return stats
}
