package service

import (
	"context"
	"math"
	"time"

	"github.com/okian/salaryexplorer/internal/domain/aggregate"
	"github.com/okian/salaryexplorer/internal/domain/dataset"
	"github.com/okian/salaryexplorer/internal/domain/estimate"
	"github.com/okian/salaryexplorer/internal/domain/model"
	"github.com/okian/salaryexplorer/internal/domain/stats"
	"github.com/okian/salaryexplorer/pkg/logger"
	"github.com/okian/salaryexplorer/pkg/metrics"
)

const (
	topPredictionLocations = 5
	relaxedMessage         = "Limited data for the exact combination; estimate based on job title and experience level only."
)

// SalarySummary is the distribution behind an estimate. StdDev is null for a
// single-record sample.
type SalarySummary struct {
	Count  int      `json:"count"`
	Mean   float64  `json:"mean"`
	Median float64  `json:"median"`
	Min    float64  `json:"min"`
	Max    float64  `json:"max"`
	Q25    float64  `json:"q25"`
	Q75    float64  `json:"q75"`
	StdDev *float64 `json:"std_dev"`
}

// GaugeRange is the axis range of the estimate gauge.
type GaugeRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// MarketPosition compares the estimate with the overall mean salary.
type MarketPosition struct {
	OverallMean   float64 `json:"overall_mean"`
	DifferencePct float64 `json:"difference_pct"`
	Position      string  `json:"position"`
}

// PredictionView is the predictor page for one set of inputs.
type PredictionView struct {
	Inputs         dataset.ExactFilter `json:"inputs"`
	Estimate       float64             `json:"estimate"`
	Summary        SalarySummary       `json:"summary"`
	Relaxed        bool                `json:"relaxed"`
	Applied        dataset.ExactFilter `json:"applied"`
	Message        string              `json:"message,omitempty"`
	Gauge          GaugeRange          `json:"gauge"`
	Comparison     []NamedValue        `json:"comparison"`
	MarketPosition MarketPosition      `json:"market_position"`
	TopLocations   []LocationSalary    `json:"top_locations"`
}

// Predict estimates a salary for the inputs. ErrNoEstimate is returned when
// no record matches even the relaxed filter.
func (s *Service) Predict(ctx context.Context, inputs dataset.ExactFilter) (PredictionView, error) {
	defer observe("predict", time.Now())

	ds, err := s.dataset(ctx)
	if err != nil {
		return PredictionView{}, err
	}
	res, ok, err := s.estimator.Estimate(ds, inputs)
	if err != nil {
		return PredictionView{}, err
	}
	if !ok {
		metrics.RecordEstimate("none", 0)
		s.log().Debug(ctx, "no estimate", logger.Any("inputs", inputs))
		return PredictionView{}, ErrNoEstimate
	}
	metrics.RecordEstimate(outcome(res), res.Count)

	view := PredictionView{
		Inputs:   inputs,
		Estimate: res.Estimate(),
		Summary:  summary(res.Summary),
		Relaxed:  res.Relaxed,
		Applied:  res.Applied,
		Gauge: GaugeRange{
			Min: math.Max(0, res.Min*0.8),
			Max: res.Max * 1.1,
		},
		Comparison: []NamedValue{
			{Label: "Min", Value: res.Min},
			{Label: "25th %ile", Value: res.Q25},
			{Label: "Median", Value: res.Median},
			{Label: "Your Estimate", Value: res.Estimate()},
			{Label: "75th %ile", Value: res.Q75},
			{Label: "Max", Value: res.Max},
		},
	}
	if res.Relaxed {
		view.Message = relaxedMessage
	}

	overall := stats.Mean(ds.Salaries())
	view.MarketPosition = position(res.Estimate(), overall)

	if title, ok := inputs[model.ColJobTitle]; ok {
		if view.TopLocations, err = s.topLocationsFor(ds, title); err != nil {
			return PredictionView{}, err
		}
	}
	return view, nil
}

func (s *Service) topLocationsFor(ds *dataset.Dataset, title string) ([]LocationSalary, error) {
	sub, err := ds.Match(dataset.ExactFilter{model.ColJobTitle: title})
	if err != nil {
		return nil, err
	}
	res, err := aggregate.Aggregate(sub, []model.Column{model.ColCompanyLocation}, model.ColSalaryInUSD, aggregate.Mean)
	if err != nil {
		return nil, err
	}
	res = aggregate.Top(aggregate.SortByValue(res, aggregate.Mean, true), topPredictionLocations)
	out := make([]LocationSalary, 0, res.Len())
	for _, g := range res.Groups {
		out = append(out, LocationSalary{Location: g.Key[0], Mean: g.Value(aggregate.Mean), Count: g.Count})
	}
	return out, nil
}

func summary(s stats.Summary) SalarySummary {
	return SalarySummary{
		Count: s.Count, Mean: s.Mean, Median: s.Median, Min: s.Min, Max: s.Max,
		Q25: s.Q25, Q75: s.Q75, StdDev: stats.Ptr(s.StdDev),
	}
}

func position(value, overall float64) MarketPosition {
	mp := MarketPosition{OverallMean: overall, Position: "at"}
	if overall == 0 || stats.IsUndefined(overall) {
		return mp
	}
	mp.DifferencePct = (value - overall) / overall * 100
	switch {
	case mp.DifferencePct > 0:
		mp.Position = "above"
	case mp.DifferencePct < 0:
		mp.Position = "below"
	}
	return mp
}

func outcome(r estimate.Result) string {
	if r.Relaxed {
		return "relaxed"
	}
	return "exact"
}

func (s *Service) log() logger.Logger {
	s.mu.RLock()
	l := s.logger
	s.mu.RUnlock()
	if l == nil {
		return logger.Get()
	}
	return l
}
