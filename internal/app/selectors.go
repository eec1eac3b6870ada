package service

import (
	"context"
	"slices"
	"time"

	"github.com/okian/salaryexplorer/internal/domain/dataset"
	"github.com/okian/salaryexplorer/internal/domain/model"
)

const topLocations = 20

// OptionsView lists the values the UI offers in its selectors.
type OptionsView struct {
	Years              []int        `json:"years"`
	JobTitles          []string     `json:"job_titles"`
	ExperienceLevels   []model.Code `json:"experience_levels"`
	EmploymentTypes    []model.Code `json:"employment_types"`
	CompanySizes       []model.Code `json:"company_sizes"`
	RemoteRatios       []model.Code `json:"remote_ratios"`
	CompanyLocations   []string     `json:"company_locations"`
	EmployeeResidences []string     `json:"employee_residences"`
	PopularJobTitles   []string     `json:"popular_job_titles"`
	DefaultJobTitles   []string     `json:"default_job_titles"`
}

// Options returns selector values drawn from the full dataset.
func (s *Service) Options(ctx context.Context) (OptionsView, error) {
	defer observe("options", time.Now())

	ds, err := s.dataset(ctx)
	if err != nil {
		return OptionsView{}, err
	}

	view := OptionsView{
		ExperienceLevels: model.ExperienceLevels,
		EmploymentTypes:  model.EmploymentTypes,
		CompanySizes:     model.CompanySizes,
		RemoteRatios:     model.RemoteRatios,
	}

	years, err := ds.Distinct(model.ColWorkYear)
	if err != nil {
		return OptionsView{}, err
	}
	for _, y := range years {
		view.Years = append(view.Years, atoi(y))
	}
	slices.Sort(view.Years)

	if view.JobTitles, err = ds.Distinct(model.ColJobTitle); err != nil {
		return OptionsView{}, err
	}
	slices.Sort(view.JobTitles)

	if view.CompanyLocations, err = mostFrequent(ds, model.ColCompanyLocation, topLocations, 1); err != nil {
		return OptionsView{}, err
	}
	if view.EmployeeResidences, err = mostFrequent(ds, model.ColEmployeeResidence, topLocations, 1); err != nil {
		return OptionsView{}, err
	}
	if view.PopularJobTitles, err = mostFrequent(ds, model.ColJobTitle, -1, s.popularJobMinRecords); err != nil {
		return OptionsView{}, err
	}

	for _, t := range s.topJobTitles {
		if _, found := slices.BinarySearch(view.JobTitles, t); found {
			view.DefaultJobTitles = append(view.DefaultJobTitles, t)
		}
	}

	return view, nil
}

// mostFrequent returns values of c by descending frequency that occur at
// least minCount times, capped at limit when limit is non-negative.
func mostFrequent(ds *dataset.Dataset, c model.Column, limit, minCount int) ([]string, error) {
	counts, err := ds.ValueCounts(c)
	if err != nil {
		return nil, err
	}
	out := []string{}
	for _, vc := range counts {
		if vc.Count < minCount || (limit >= 0 && len(out) >= limit) {
			break
		}
		out = append(out, vc.Value)
	}
	return out, nil
}
