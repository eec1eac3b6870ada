// Package estimate implements the historical-lookup salary estimate: the
// median of matching records, with a single relaxation step when the exact
// sample is too small.
package estimate

import (
	"github.com/okian/salaryexplorer/internal/domain/dataset"
	"github.com/okian/salaryexplorer/internal/domain/model"
	"github.com/okian/salaryexplorer/internal/domain/stats"
)

// DefaultMinSample is the exact-match count below which the filter is relaxed.
const DefaultMinSample = 3

// RelaxedColumns are the only keys kept when relaxing.
var RelaxedColumns = []model.Column{model.ColJobTitle, model.ColExperienceLevel}

// Result is a successful estimate.
type Result struct {
	stats.Summary
	// Relaxed is set when the exact match had fewer than the minimum sample.
	Relaxed bool
	// Applied is the filter that produced the sample.
	Applied dataset.ExactFilter
}

// Estimate is the point estimate, the sample median.
func (r Result) Estimate() float64 { return r.Median }

// Engine computes estimates.
type Engine struct {
	minSample int
}

// Option configures an Engine.
type Option func(*Engine)

// WithMinSample sets the relaxation threshold.
func WithMinSample(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.minSample = n
		}
	}
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{minSample: DefaultMinSample}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// MinSample returns the relaxation threshold.
func (e *Engine) MinSample() int { return e.minSample }

// Estimate matches ds exactly on every key of f. If fewer than the minimum
// sample match, it retries with only job_title and experience_level (those
// present in f). It reports false when nothing matches. A relaxed sample of
// any non-zero size is accepted. A filter naming an unknown column is an
// error, not a missing estimate.
func (e *Engine) Estimate(ds *dataset.Dataset, f dataset.ExactFilter) (Result, bool, error) {
	sample, err := ds.Match(f)
	if err != nil {
		return Result{}, false, err
	}
	applied, relaxed := f, false
	if sample.Len() < e.minSample {
		applied, relaxed = f.Only(RelaxedColumns...), true
		if sample, err = ds.Match(applied); err != nil {
			return Result{}, false, err
		}
	}
	if sample.Empty() {
		return Result{}, false, nil
	}
	return Result{
		Summary: stats.Summarize(sample.Salaries()),
		Relaxed: relaxed,
		Applied: applied,
	}, true, nil
}
