// Package aggregate groups records by one or more columns and computes
// summary statistics of a numeric metric per group.
package aggregate

import (
	"fmt"
	"strings"

	"github.com/okian/salaryexplorer/internal/domain/dataset"
	"github.com/okian/salaryexplorer/internal/domain/model"
	"github.com/okian/salaryexplorer/internal/domain/stats"
)

// Group is one distinct key tuple with its statistics.
type Group struct {
	Key    []string
	Count  int
	Values map[string]float64
}

// Value returns the value computed for op, or Undefined if op was not requested.
func (g Group) Value(op Op) float64 {
	if v, ok := g.Values[op.Name()]; ok {
		return v
	}
	return stats.Undefined
}

// Label joins the key tuple for display.
func (g Group) Label() string {
	return strings.Join(g.Key, " / ")
}

// Result is a grouped table. Groups are in first-seen order of their keys.
type Result struct {
	GroupBy []model.Column
	Metric  model.Column
	Ops     []Op
	Groups  []Group
}

// Len returns the number of groups.
func (r Result) Len() int { return len(r.Groups) }

// Find returns the group with the given key tuple.
func (r Result) Find(key ...string) (Group, bool) {
	want := strings.Join(key, keySep)
	for _, g := range r.Groups {
		if strings.Join(g.Key, keySep) == want {
			return g, true
		}
	}
	return Group{}, false
}

const keySep = "\x1f"

// Aggregate groups ds by groupBy and applies ops to metric within each group.
// Only key tuples present in ds produce groups. An empty dataset yields an
// empty Result.
func Aggregate(ds *dataset.Dataset, groupBy []model.Column, metric model.Column, ops ...Op) (Result, error) {
	for _, c := range groupBy {
		if !c.Valid() {
			return Result{}, fmt.Errorf("group by %s: %w", c, ErrUnknownColumn)
		}
	}
	if !metric.Valid() {
		return Result{}, fmt.Errorf("metric %s: %w", metric, ErrUnknownColumn)
	}
	if !metric.Numeric() {
		return Result{}, fmt.Errorf("metric %s: %w", metric, ErrNotNumeric)
	}
	for _, op := range ops {
		if err := op.validate(); err != nil {
			return Result{}, err
		}
	}

	res := Result{GroupBy: groupBy, Metric: metric, Ops: ops}
	idx := make(map[string]int)
	var samples [][]float64
	key := make([]string, len(groupBy))
	for _, r := range ds.All() {
		for i, c := range groupBy {
			key[i], _ = r.Value(c)
		}
		k := strings.Join(key, keySep)
		i, ok := idx[k]
		if !ok {
			i = len(res.Groups)
			idx[k] = i
			res.Groups = append(res.Groups, Group{Key: append([]string(nil), key...)})
			samples = append(samples, nil)
		}
		v, _ := r.Number(metric)
		samples[i] = append(samples[i], v)
	}

	for i := range res.Groups {
		g := &res.Groups[i]
		g.Count = len(samples[i])
		g.Values = make(map[string]float64, len(ops))
		for _, op := range ops {
			g.Values[op.Name()] = op.apply(samples[i])
		}
	}
	return res, nil
}
