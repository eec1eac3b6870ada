package service

import (
	"context"
	"io"
	"time"

	"github.com/okian/salaryexplorer/internal/adapters/chart"
	"github.com/okian/salaryexplorer/internal/adapters/export"
	"github.com/okian/salaryexplorer/internal/domain/dataset"
	"github.com/okian/salaryexplorer/pkg/logger"
	"github.com/okian/salaryexplorer/pkg/metrics"
)

// Chart names served by Chart.
const (
	ChartSalaryByJob        = "salary-by-job"
	ChartSalaryTrend        = "salary-trend"
	ChartRemoteDistribution = "remote-distribution"
	ChartSalaryByExperience = "salary-by-experience"
)

// ChartNames lists every chart Chart can render.
var ChartNames = []string{ChartSalaryByJob, ChartSalaryTrend, ChartRemoteDistribution, ChartSalaryByExperience}

// Export writes the records matching spec to w and returns the row count.
func (s *Service) Export(ctx context.Context, spec dataset.FilterSpec, format export.Format, w io.Writer) (int, error) {
	defer observe("export", time.Now())

	ds, err := s.filtered(ctx, spec)
	if err != nil {
		return 0, err
	}
	n, err := export.Write(w, format, ds)
	if err != nil {
		metrics.RecordErrorByComponent("export", string(format))
		return n, err
	}
	metrics.RecordExport(string(format), n)
	s.log().Debug(ctx, "exported records", logger.String("format", string(format)), logger.Int("rows", n))
	return n, nil
}

// Chart renders the named dashboard chart for spec as SVG.
func (s *Service) Chart(ctx context.Context, name string, spec dataset.FilterSpec, w io.Writer) error {
	defer observe("chart", time.Now())

	draw, ok := chartRenderers[name]
	if !ok {
		return ErrUnknownChart
	}
	view, err := s.Dashboard(ctx, spec)
	if err != nil {
		return err
	}
	if err := draw(w, view); err != nil {
		metrics.RecordErrorByComponent("chart", name)
		return err
	}
	metrics.RecordChartRendered(name)
	return nil
}

var chartRenderers = map[string]func(io.Writer, DashboardView) error{
	ChartSalaryByJob: func(w io.Writer, v DashboardView) error {
		bars := make([]chart.Bar, 0, len(v.SalaryByJob))
		for _, j := range v.SalaryByJob {
			bars = append(bars, chart.Bar{Label: j.JobTitle, Value: j.Mean})
		}
		return chart.Bars(w, "Average Salary by Job Title", bars)
	},
	ChartSalaryTrend: func(w io.Writer, v DashboardView) error {
		mean := chart.Line{Name: "Mean"}
		median := chart.Line{Name: "Median"}
		for _, t := range v.YearlyTrend {
			mean.Points = append(mean.Points, chart.Point{X: float64(t.Year), Y: t.Mean})
			median.Points = append(median.Points, chart.Point{X: float64(t.Year), Y: t.Median})
		}
		return chart.Lines(w, "Salary Trend Over Years", "Year", "Salary (USD)", []chart.Line{mean, median})
	},
	ChartRemoteDistribution: func(w io.Writer, v DashboardView) error {
		slices := make([]chart.Bar, 0, len(v.RemoteDistribution))
		for _, r := range v.RemoteDistribution {
			slices = append(slices, chart.Bar{Label: r.Label, Value: float64(r.Count)})
		}
		return chart.Pie(w, "Remote Work Distribution", slices)
	},
	ChartSalaryByExperience: func(w io.Writer, v DashboardView) error {
		bars := make([]chart.Bar, 0, len(v.SalaryByExperience))
		for _, e := range v.SalaryByExperience {
			bars = append(bars, chart.Bar{Label: e.Label, Value: e.Median})
		}
		return chart.Bars(w, "Median Salary by Experience Level", bars)
	},
}
