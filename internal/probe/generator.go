package probe

import (
	"math/rand/v2"
	"net/url"
	"strconv"

	service "github.com/okian/salaryexplorer/internal/app"
	"github.com/okian/salaryexplorer/internal/domain/model"
)

// generator draws request inputs from the server's selector options.
type generator struct {
	rnd  *rand.Rand
	opts service.OptionsView
}

func newGenerator(seed uint64, opts service.OptionsView) *generator {
	return &generator{rnd: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)), opts: opts}
}

func pick[T any](g *generator, xs []T) T {
	return xs[g.rnd.IntN(len(xs))]
}

// estimates returns n estimate requests. Popular titles are preferred so
// most requests hit populated combinations.
func (g *generator) estimates(n int) []EstimateRequest {
	titles := g.opts.PopularJobTitles
	if len(titles) == 0 {
		titles = g.opts.JobTitles
	}
	out := make([]EstimateRequest, n)
	for i := range out {
		ratio, _ := strconv.Atoi(pick(g, g.opts.RemoteRatios).Code)
		out[i] = EstimateRequest{
			JobTitle:        pick(g, titles),
			ExperienceLevel: pick(g, g.opts.ExperienceLevels).Code,
			EmploymentType:  pick(g, g.opts.EmploymentTypes).Code,
			RemoteRatio:     ratio,
			CompanyLocation: pick(g, g.opts.CompanyLocations),
			CompanySize:     pick(g, g.opts.CompanySizes).Code,
		}
	}
	return out
}

// dashboardQueries returns n query strings, each filtering on a random
// subset of years and experience levels.
func (g *generator) dashboardQueries(n int) []string {
	out := make([]string, n)
	for i := range out {
		q := url.Values{}
		for _, y := range g.opts.Years {
			if g.rnd.IntN(2) == 0 {
				q.Add(string(model.ColWorkYear), strconv.Itoa(y))
			}
		}
		for _, lvl := range g.opts.ExperienceLevels {
			if g.rnd.IntN(3) == 0 {
				q.Add(string(model.ColExperienceLevel), lvl.Code)
			}
		}
		out[i] = q.Encode()
	}
	return out
}
