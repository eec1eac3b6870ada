package service

import (
	"context"
	"time"

	"github.com/okian/salaryexplorer/internal/domain/aggregate"
	"github.com/okian/salaryexplorer/internal/domain/dataset"
	"github.com/okian/salaryexplorer/internal/domain/model"
)

// KPIs are the headline numbers of the filtered set.
type KPIs struct {
	TotalRecords    int     `json:"total_records"`
	MeanSalary      float64 `json:"mean_salary"`
	MedianSalary    float64 `json:"median_salary"`
	UniqueJobTitles int     `json:"unique_job_titles"`
}

// ExperienceSalary is the five-number summary of one experience level.
type ExperienceSalary struct {
	Code   string  `json:"code"`
	Label  string  `json:"label"`
	Count  int     `json:"count"`
	Min    float64 `json:"min"`
	Q25    float64 `json:"q25"`
	Median float64 `json:"median"`
	Q75    float64 `json:"q75"`
	Max    float64 `json:"max"`
}

// YearTrend is the salary level of one work year.
type YearTrend struct {
	Year   int     `json:"year"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Count  int     `json:"count"`
}

// DashboardView is every table shown on the dashboard for one filter.
type DashboardView struct {
	Filters            dataset.FilterSpec `json:"filters"`
	KPIs               KPIs               `json:"kpis"`
	SalaryByJob        []JobSalary        `json:"salary_by_job"`
	SalaryByExperience []ExperienceSalary `json:"salary_by_experience"`
	SizeByExperience   []Cell             `json:"size_by_experience"`
	YearlyTrend        []YearTrend        `json:"yearly_trend"`
	EmploymentByYear   []Cell             `json:"employment_by_year"`
	RemoteDistribution []CategoryCount    `json:"remote_distribution"`
	Geography          []LocationSalary   `json:"geography"`
	Records            []model.Record     `json:"records"`
}

// Dashboard computes the dashboard for the records matching spec. An empty
// selection returns ErrNoMatchingRecords instead of zero-valued statistics.
func (s *Service) Dashboard(ctx context.Context, spec dataset.FilterSpec) (DashboardView, error) {
	defer observe("dashboard", time.Now())

	ds, err := s.filtered(ctx, spec)
	if err != nil {
		return DashboardView{}, err
	}
	if ds.Empty() {
		return DashboardView{}, ErrNoMatchingRecords
	}
	return s.dashboard(ds, spec)
}

func (s *Service) dashboard(ds *dataset.Dataset, spec dataset.FilterSpec) (DashboardView, error) {
	salary := model.ColSalaryInUSD
	view := DashboardView{Filters: spec, Records: ds.Records()}

	overall, err := aggregate.Aggregate(ds, nil, salary, aggregate.Mean, aggregate.Median)
	if err != nil {
		return DashboardView{}, err
	}
	titles, err := ds.Distinct(model.ColJobTitle)
	if err != nil {
		return DashboardView{}, err
	}
	view.KPIs = KPIs{
		TotalRecords:    ds.Len(),
		MeanSalary:      overall.Groups[0].Value(aggregate.Mean),
		MedianSalary:    overall.Groups[0].Value(aggregate.Median),
		UniqueJobTitles: len(titles),
	}

	byJob, err := aggregate.Aggregate(ds, []model.Column{model.ColJobTitle}, salary, aggregate.Mean)
	if err != nil {
		return DashboardView{}, err
	}
	byJob = aggregate.Top(aggregate.SortByValue(byJob, aggregate.Mean, true), s.topJobLimit)
	for _, g := range byJob.Groups {
		view.SalaryByJob = append(view.SalaryByJob, JobSalary{JobTitle: g.Key[0], Mean: g.Value(aggregate.Mean), Count: g.Count})
	}

	q25, q75 := aggregate.Quantile(0.25), aggregate.Quantile(0.75)
	byExp, err := aggregate.Aggregate(ds, []model.Column{model.ColExperienceLevel}, salary,
		aggregate.Min, q25, aggregate.Median, q75, aggregate.Max)
	if err != nil {
		return DashboardView{}, err
	}
	for _, lvl := range model.ExperienceLevels {
		g, ok := byExp.Find(lvl.Code)
		if !ok {
			continue
		}
		view.SalaryByExperience = append(view.SalaryByExperience, ExperienceSalary{
			Code: lvl.Code, Label: lvl.Label, Count: g.Count,
			Min: g.Value(aggregate.Min), Q25: g.Value(q25), Median: g.Value(aggregate.Median),
			Q75: g.Value(q75), Max: g.Value(aggregate.Max),
		})
	}

	sizeExp, err := aggregate.Aggregate(ds, []model.Column{model.ColSizeLabel, model.ColExperienceLabel}, salary, aggregate.Mean)
	if err != nil {
		return DashboardView{}, err
	}
	for _, size := range model.CompanySizes {
		for _, lvl := range model.ExperienceLevels {
			if g, ok := sizeExp.Find(size.Label, lvl.Label); ok {
				view.SizeByExperience = append(view.SizeByExperience, Cell{
					Row: size.Label, Column: lvl.Label, Value: g.Value(aggregate.Mean), Count: g.Count,
				})
			}
		}
	}

	byYear, err := aggregate.Aggregate(ds, []model.Column{model.ColWorkYear}, salary, aggregate.Mean, aggregate.Median)
	if err != nil {
		return DashboardView{}, err
	}
	for _, g := range aggregate.SortByKey(byYear).Groups {
		view.YearlyTrend = append(view.YearlyTrend, YearTrend{
			Year: atoi(g.Key[0]), Mean: g.Value(aggregate.Mean), Median: g.Value(aggregate.Median), Count: g.Count,
		})
	}

	empYear, err := aggregate.Aggregate(ds, []model.Column{model.ColEmploymentLabel, model.ColWorkYear}, salary, aggregate.Mean)
	if err != nil {
		return DashboardView{}, err
	}
	view.EmploymentByYear = cells(aggregate.SortByKey(empYear), aggregate.Mean)

	remote, err := ds.ValueCounts(model.ColRemoteLabel)
	if err != nil {
		return DashboardView{}, err
	}
	for _, vc := range remote {
		view.RemoteDistribution = append(view.RemoteDistribution, CategoryCount{Label: vc.Value, Count: vc.Count})
	}

	geo, err := aggregate.Aggregate(ds, []model.Column{model.ColCompanyLocation}, salary, aggregate.Mean)
	if err != nil {
		return DashboardView{}, err
	}
	for _, g := range aggregate.SortByValue(geo, aggregate.Mean, true).Groups {
		view.Geography = append(view.Geography, LocationSalary{Location: g.Key[0], Mean: g.Value(aggregate.Mean), Count: g.Count})
	}

	return view, nil
}
