package probe

import (
	"fmt"
	"net/http"

	service "github.com/okian/salaryexplorer/internal/app"
	"github.com/okian/salaryexplorer/internal/domain/model"
)

// checkEstimate returns the invariants an estimate outcome breaks.
func checkEstimate(o Outcome, minSample int) []string {
	var bad []string
	fail := func(format string, args ...any) {
		bad = append(bad, fmt.Sprintf("%s: ", o.RequestID)+fmt.Sprintf(format, args...))
	}

	switch o.Status {
	case http.StatusNotFound:
		if o.Code != "no_estimate" {
			fail("404 with code %q", o.Code)
		}
		return bad
	case http.StatusOK:
	default:
		return bad
	}

	p := o.Prediction
	if p == nil {
		fail("200 without a prediction")
		return bad
	}
	s := p.Summary
	if s.Count < 1 {
		fail("estimate from %d records", s.Count)
	}
	if !(s.Min <= s.Q25 && s.Q25 <= s.Median && s.Median <= s.Q75 && s.Q75 <= s.Max) {
		fail("unordered summary min=%v q25=%v median=%v q75=%v max=%v", s.Min, s.Q25, s.Median, s.Q75, s.Max)
	}
	if p.Estimate != s.Median {
		fail("estimate %v is not the median %v", p.Estimate, s.Median)
	}
	if (s.StdDev == nil) != (s.Count == 1) {
		fail("std_dev presence does not match count %d", s.Count)
	}
	if p.Gauge.Min > s.Min || p.Gauge.Max < s.Max {
		fail("gauge [%v, %v] does not cover [%v, %v]", p.Gauge.Min, p.Gauge.Max, s.Min, s.Max)
	}

	if p.Relaxed {
		for c := range p.Applied {
			if c != model.ColJobTitle && c != model.ColExperienceLevel {
				fail("relaxed filter keeps %s", c)
			}
		}
		if p.Message == "" {
			fail("relaxed estimate without a notice")
		}
	} else {
		if s.Count < minSample {
			fail("exact estimate from %d records, minimum is %d", s.Count, minSample)
		}
		if len(p.Applied) != 6 {
			fail("exact estimate applied %d filters", len(p.Applied))
		}
	}
	return bad
}

// dashboardResponse is a dashboard or the empty state.
type dashboardResponse struct {
	Empty bool `json:"empty"`
	service.DashboardView
}

// checkDashboard returns the invariants a dashboard response breaks.
func checkDashboard(query string, d dashboardResponse) []string {
	if d.Empty {
		return nil
	}
	var bad []string
	fail := func(format string, args ...any) {
		bad = append(bad, fmt.Sprintf("dashboard?%s: ", query)+fmt.Sprintf(format, args...))
	}

	total := d.KPIs.TotalRecords
	if total < 1 {
		fail("non-empty dashboard with %d records", total)
	}
	if len(d.Records) != total {
		fail("%d detail rows for %d records", len(d.Records), total)
	}
	remote := 0
	for _, c := range d.RemoteDistribution {
		remote += c.Count
	}
	if remote != total {
		fail("remote distribution counts %d of %d records", remote, total)
	}
	exp := 0
	for _, e := range d.SalaryByExperience {
		exp += e.Count
	}
	if exp != total {
		fail("experience summary counts %d of %d records", exp, total)
	}
	if len(d.SalaryByJob) > d.KPIs.UniqueJobTitles {
		fail("%d job rows for %d titles", len(d.SalaryByJob), d.KPIs.UniqueJobTitles)
	}
	for i := 1; i < len(d.YearlyTrend); i++ {
		if d.YearlyTrend[i-1].Year >= d.YearlyTrend[i].Year {
			fail("yearly trend out of order at %d", d.YearlyTrend[i].Year)
		}
	}
	return bad
}
