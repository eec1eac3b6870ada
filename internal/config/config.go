// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() initializer to build a Config with defaults.
// - Load layers a YAML file and environment variables over the defaults.
// - External errors are wrapped with this package's sentinel kinds.
package config

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var metricNameRE = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DataPath is the CSV file the dataset is loaded from.
	DataPath string `koanf:"data_path"`

	// LoadTimeoutMS bounds the dataset load.
	LoadTimeoutMS int `koanf:"load_timeout_ms"`

	// EstimateMinSample is the exact-match count below which the estimator relaxes.
	EstimateMinSample int `koanf:"estimate_min_sample"`

	// PopularJobMinRecords is the record count a title needs to be listed as popular.
	PopularJobMinRecords int `koanf:"popular_job_min_records"`

	// TopJobLimit caps the salary-by-job table on the dashboard.
	TopJobLimit int `koanf:"top_job_limit"`

	// TopJobTitles are the default selections offered by the UI.
	TopJobTitles []string `koanf:"top_job_titles"`

	// RateLimitRPS and RateLimitBurst configure the API token bucket. Zero disables it.
	RateLimitRPS   float64 `koanf:"rate_limit_rps"`
	RateLimitBurst int     `koanf:"rate_limit_burst"`

	// MetricsPrefix is prepended to every metric name after the namespace.
	MetricsPrefix string `koanf:"metrics_prefix"`

	// MetricsLabels are constant labels attached to every metric.
	MetricsLabels map[string]string `koanf:"metrics_labels"`

	// MetricsLatencyBucketsMS are the histogram buckets for latency metrics.
	MetricsLatencyBucketsMS []float64 `koanf:"metrics_latency_buckets_ms"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		LogFormat:            "text",
		Addr:                 ":9080",
		DataPath:             "data/ds_salaries.csv",
		LoadTimeoutMS:        30_000,
		EstimateMinSample:    3,
		PopularJobMinRecords: 10,
		TopJobLimit:          15,
		TopJobTitles: []string{
			"Data Engineer",
			"Data Scientist",
			"Data Analyst",
			"Machine Learning Engineer",
			"Analytics Engineer",
			"Data Architect",
		},
		RateLimitRPS:   50,
		RateLimitBurst: 100,
	}
}

// LoadTimeout returns LoadTimeoutMS as a duration.
func (c *Config) LoadTimeout() time.Duration {
	return time.Duration(c.LoadTimeoutMS) * time.Millisecond
}

// Validate checks the values Load cannot default.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case strings.TrimSpace(c.DataPath) == "":
		return fmt.Errorf("%w: data_path must not be empty", ErrInvalidConfig)
	case c.EstimateMinSample < 1:
		return fmt.Errorf("%w: estimate_min_sample must be at least 1", ErrInvalidConfig)
	case c.TopJobLimit < 1:
		return fmt.Errorf("%w: top_job_limit must be at least 1", ErrInvalidConfig)
	case c.RateLimitRPS < 0 || c.RateLimitBurst < 0:
		return fmt.Errorf("%w: rate limits must not be negative", ErrInvalidConfig)
	}
	if err := c.validateMetrics(); err != nil {
		return err
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log_format %q is not text or json", ErrInvalidConfig, c.LogFormat)
	}
	return nil
}

func (c *Config) validateMetrics() error {
	if c.MetricsPrefix != "" && !metricNameRE.MatchString(c.MetricsPrefix) {
		return fmt.Errorf("%w: metrics_prefix %q is not a valid metric name", ErrInvalidConfig, c.MetricsPrefix)
	}
	for name := range c.MetricsLabels {
		if !metricNameRE.MatchString(name) || strings.HasPrefix(name, "__") {
			return fmt.Errorf("%w: metrics_labels key %q is not a valid label name", ErrInvalidConfig, name)
		}
	}
	for i, b := range c.MetricsLatencyBucketsMS {
		if b <= 0 || (i > 0 && b <= c.MetricsLatencyBucketsMS[i-1]) {
			return fmt.Errorf("%w: metrics_latency_buckets_ms must be positive and strictly increasing", ErrInvalidConfig)
		}
	}
	return nil
}
