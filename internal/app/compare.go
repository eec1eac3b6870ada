package service

import (
	"context"
	"slices"
	"strconv"
	"time"

	"github.com/okian/salaryexplorer/internal/domain/aggregate"
	"github.com/okian/salaryexplorer/internal/domain/dataset"
	"github.com/okian/salaryexplorer/internal/domain/model"
	"github.com/okian/salaryexplorer/internal/domain/stats"
)

const (
	heatmapLocations = 10
	singleJobMessage = "Select at least two job titles to see the comparison table."
)

// TitleSummary is the salary distribution of one job title.
type TitleSummary struct {
	JobTitle string   `json:"job_title"`
	Mean     float64  `json:"mean"`
	Median   float64  `json:"median"`
	Min      float64  `json:"min"`
	Q25      float64  `json:"q25"`
	Q75      float64  `json:"q75"`
	Max      float64  `json:"max"`
	Count    int      `json:"count"`
	StdDev   *float64 `json:"std_dev"`
}

// GrowthPoint is the mean salary of a title in one year and its change from
// the previous year. YoYPct is null when the previous year is missing or its
// mean is zero.
type GrowthPoint struct {
	JobTitle string   `json:"job_title"`
	Year     int      `json:"year"`
	Mean     float64  `json:"mean"`
	Count    int      `json:"count"`
	YoYPct   *float64 `json:"yoy_pct"`
}

// ComparisonView compares the selected job titles.
type ComparisonView struct {
	JobTitles        []string       `json:"job_titles"`
	Summary          []TitleSummary `json:"summary,omitempty"`
	Message          string         `json:"message,omitempty"`
	ByExperience     []Cell         `json:"by_experience"`
	Growth           []GrowthPoint  `json:"growth"`
	DemandByYear     []Cell         `json:"demand_by_year"`
	RemoteMix        []Cell         `json:"remote_mix"`
	HeatmapLocations []string       `json:"heatmap_locations"`
	Heatmap          []Cell         `json:"heatmap"`
}

// Compare builds the side-by-side view of titles.
func (s *Service) Compare(ctx context.Context, titles []string) (ComparisonView, error) {
	defer observe("compare", time.Now())

	titles = dedupe(titles)
	if len(titles) == 0 {
		return ComparisonView{}, ErrNoJobsSelected
	}
	ds, err := s.filtered(ctx, dataset.FilterSpec{model.ColJobTitle: titles})
	if err != nil {
		return ComparisonView{}, err
	}
	if ds.Empty() {
		return ComparisonView{}, ErrNoMatchingRecords
	}

	view := ComparisonView{JobTitles: titles}
	salary := model.ColSalaryInUSD

	if len(titles) >= 2 {
		q25, q75 := aggregate.Quantile(0.25), aggregate.Quantile(0.75)
		res, err := aggregate.Aggregate(ds, []model.Column{model.ColJobTitle}, salary,
			aggregate.Mean, aggregate.Median, aggregate.Min, q25, q75, aggregate.Max, aggregate.Std)
		if err != nil {
			return ComparisonView{}, err
		}
		for _, g := range aggregate.SortByValue(res, aggregate.Mean, true).Groups {
			view.Summary = append(view.Summary, TitleSummary{
				JobTitle: g.Key[0],
				Mean:     g.Value(aggregate.Mean),
				Median:   g.Value(aggregate.Median),
				Min:      g.Value(aggregate.Min),
				Q25:      g.Value(q25),
				Q75:      g.Value(q75),
				Max:      g.Value(aggregate.Max),
				Count:    g.Count,
				StdDev:   stats.Ptr(g.Value(aggregate.Std)),
			})
		}
	} else {
		view.Message = singleJobMessage
	}

	byExp, err := aggregate.Aggregate(ds, []model.Column{model.ColJobTitle, model.ColExperienceLevel}, salary, aggregate.Mean)
	if err != nil {
		return ComparisonView{}, err
	}
	for _, t := range titles {
		for _, lvl := range model.ExperienceLevels {
			if g, ok := byExp.Find(t, lvl.Code); ok {
				view.ByExperience = append(view.ByExperience, Cell{
					Row: t, Column: lvl.Label, Value: g.Value(aggregate.Mean), Count: g.Count,
				})
			}
		}
	}

	if view.Growth, err = growth(ds, titles); err != nil {
		return ComparisonView{}, err
	}

	demand, err := aggregate.Aggregate(ds, []model.Column{model.ColWorkYear, model.ColJobTitle}, salary, aggregate.Count)
	if err != nil {
		return ComparisonView{}, err
	}
	view.DemandByYear = cells(aggregate.SortByKey(demand), aggregate.Count)

	mix, err := aggregate.Aggregate(ds, []model.Column{model.ColJobTitle, model.ColRemoteLabel}, salary, aggregate.Count)
	if err != nil {
		return ComparisonView{}, err
	}
	view.RemoteMix = cells(mix, aggregate.Count)

	if view.HeatmapLocations, err = mostFrequent(ds, model.ColCompanyLocation, heatmapLocations, 1); err != nil {
		return ComparisonView{}, err
	}
	local, err := ds.Filter(dataset.FilterSpec{model.ColCompanyLocation: view.HeatmapLocations})
	if err != nil {
		return ComparisonView{}, err
	}
	heat, err := aggregate.Aggregate(local, []model.Column{model.ColJobTitle, model.ColCompanyLocation}, salary, aggregate.Mean)
	if err != nil {
		return ComparisonView{}, err
	}
	view.Heatmap = cells(heat, aggregate.Mean)

	return view, nil
}

// growth returns the mean per (title, year) with the change against the
// previous year present in ds.
func growth(ds *dataset.Dataset, titles []string) ([]GrowthPoint, error) {
	res, err := aggregate.Aggregate(ds, []model.Column{model.ColJobTitle, model.ColWorkYear}, model.ColSalaryInUSD, aggregate.Mean)
	if err != nil {
		return nil, err
	}
	rawYears, err := ds.Distinct(model.ColWorkYear)
	if err != nil {
		return nil, err
	}
	years := make([]int, 0, len(rawYears))
	for _, y := range rawYears {
		years = append(years, atoi(y))
	}
	slices.Sort(years)

	var out []GrowthPoint
	for _, t := range titles {
		for i, y := range years {
			g, ok := res.Find(t, strconv.Itoa(y))
			if !ok {
				continue
			}
			p := GrowthPoint{JobTitle: t, Year: y, Mean: g.Value(aggregate.Mean), Count: g.Count}
			if i > 0 {
				if prev, ok := res.Find(t, strconv.Itoa(years[i-1])); ok {
					if pm := prev.Value(aggregate.Mean); pm != 0 {
						p.YoYPct = stats.Ptr((p.Mean - pm) / pm * 100)
					}
				}
			}
			out = append(out, p)
		}
	}
	return out, nil
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
