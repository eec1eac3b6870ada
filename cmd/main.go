package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/okian/salaryexplorer/internal/adapters/http/api"
	"github.com/okian/salaryexplorer/internal/adapters/http/site"
	"github.com/okian/salaryexplorer/internal/adapters/http/swagger"
	"github.com/okian/salaryexplorer/internal/adapters/repository"
	app "github.com/okian/salaryexplorer/internal/app"
	"github.com/okian/salaryexplorer/internal/config"
	"github.com/okian/salaryexplorer/pkg/logger"
	"github.com/okian/salaryexplorer/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

// Process exit codes.
const (
	exitOK              = 0
	exitConfig          = 1
	exitDataUnavailable = 2
	exitStart           = 3
	exitServe           = 4
)

func main() {
	os.Exit(run())
}

func run() int {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		// Logger isn't configured yet
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return exitConfig
	}

	if err := logger.InitWithOptions(cfg.LogFormat, os.Stdout); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return exitConfig
	}
	defer func() { _ = logger.Sync() }()

	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	metrics.Configure(metricsOptions(cfg)...)

	svc := newService(cfg, log)
	if err := svc.Start(ctx); err != nil {
		log.Error(ctx, "failed to start service", logger.String("data_path", cfg.DataPath), logger.Error(err))
		if errors.Is(err, repository.ErrDataUnavailable) || errors.Is(err, repository.ErrDataIntegrity) {
			return exitDataUnavailable
		}
		return exitStart
	}
	defer svc.Stop()

	srv := newHTTPServer(cfg.Addr, newHandler(ctx, svc, cfg))

	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// Wait for shutdown signal or a listener failure
	code := exitOK
	select {
	case <-ctx.Done():
	case err, ok := <-serveErr:
		if ok {
			log.Error(ctx, "HTTP server failed", logger.Error(err))
			code = exitServe
		}
	}
	log.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
	return code
}

// newService builds the salary service from configuration.
func newService(cfg *config.Config, log logger.Logger) *app.Service {
	return app.New(
		app.WithLogger(log),
		app.WithDataPath(cfg.DataPath),
		app.WithLoadTimeout(cfg.LoadTimeout()),
		app.WithEstimateMinSample(cfg.EstimateMinSample),
		app.WithPopularJobMinRecords(cfg.PopularJobMinRecords),
		app.WithTopJobLimit(cfg.TopJobLimit),
		app.WithTopJobTitles(cfg.TopJobTitles),
	)
}

// metricsOptions maps the metrics keys of cfg to manager options. Empty keys
// keep the manager defaults.
func metricsOptions(cfg *config.Config) []metrics.Option {
	return []metrics.Option{
		metrics.WithMetricPrefix(cfg.MetricsPrefix),
		metrics.WithCustomLabels(cfg.MetricsLabels),
		metrics.WithHistogramBuckets(cfg.MetricsLatencyBucketsMS),
	}
}

// newHandler registers every route on a fresh mux.
func newHandler(ctx context.Context, svc *app.Service, cfg *config.Config) http.Handler {
	mux := http.NewServeMux()

	// API reference at /api-docs and /openapi.yaml
	swagger.Register(ctx, mux)

	// Business API routes with the service dependency.
	api.NewServer(svc, svc, api.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst)).Register(ctx, mux)

	// UI shell catches everything else.
	site.Register(ctx, mux)

	return api.RequestID(mux)
}

func newHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}
