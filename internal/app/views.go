package service

import (
	"strconv"

	"github.com/okian/salaryexplorer/internal/domain/aggregate"
)

// JobSalary is the mean salary of a job title.
type JobSalary struct {
	JobTitle string  `json:"job_title"`
	Mean     float64 `json:"mean"`
	Count    int     `json:"count"`
}

// LocationSalary is the mean salary at a company location.
type LocationSalary struct {
	Location string  `json:"location"`
	Mean     float64 `json:"mean"`
	Count    int     `json:"count"`
}

// Cell is one entry of a two-way table.
type Cell struct {
	Row    string  `json:"row"`
	Column string  `json:"column"`
	Value  float64 `json:"value"`
	Count  int     `json:"count"`
}

// CategoryCount is a category and how many records fall in it.
type CategoryCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// NamedValue is a labelled number, used for comparison bars.
type NamedValue struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// cells flattens a two-column aggregate into table cells for op.
func cells(res aggregate.Result, op aggregate.Op) []Cell {
	out := make([]Cell, 0, res.Len())
	for _, g := range res.Groups {
		out = append(out, Cell{Row: g.Key[0], Column: g.Key[1], Value: g.Value(op), Count: g.Count})
	}
	return out
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
