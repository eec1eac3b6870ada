package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/okian/salaryexplorer/internal/probe"
)

// Default configuration constants.
const (
	defaultRequests    = 500
	defaultDashboards  = 50
	defaultWorkers     = 2 // multiplier for runtime.NumCPU()
	defaultTimeout     = 30 * time.Second
	defaultProbeBudget = 10 * time.Minute
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:9080", "Base URL of the service")
		requests   = flag.Int("requests", defaultRequests, "Number of estimate requests")
		dashboards = flag.Int("dashboards", defaultDashboards, "Number of dashboard requests")
		workers    = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		seed       = flag.Uint64("seed", 0, "Input generation seed; 0 picks one")
		outputFile = flag.String("output", "", "Write a JSON report to this file")
		logFile    = flag.String("log", "", "Also write logs to this file")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		probe.ShowHelp(os.Stdout)
		return
	}

	if err := probe.SetupLogging(*logFile, *verbose); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, defaultProbeBudget)
	defer cancel()

	_, err := probe.Run(ctx, &probe.Config{
		BaseURL:    *baseURL,
		Requests:   *requests,
		Dashboards: *dashboards,
		Workers:    *workers,
		Timeout:    *timeout,
		Seed:       *seed,
		OutputFile: *outputFile,
		Verbose:    *verbose,
	})
	switch {
	case err == nil:
	case errors.Is(err, probe.ErrNotReady):
		os.Stderr.WriteString("Probe failed: " + err.Error() + "\n")
		os.Exit(2)
	default:
		os.Stderr.WriteString("Probe failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
