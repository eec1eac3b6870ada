// Package dataset holds the immutable record collection and its filter engine.
package dataset

import (
	"cmp"
	"fmt"
	"iter"
	"slices"

	"github.com/okian/salaryexplorer/internal/domain/model"
)

// Dataset is an immutable ordered collection of records. Filtering returns a
// new Dataset and never mutates the receiver.
type Dataset struct {
	records []model.Record
}

// New builds a Dataset from records. The slice is copied.
func New(records []model.Record) *Dataset {
	return &Dataset{records: slices.Clone(records)}
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.records)
}

// Empty reports whether the dataset has no records.
func (d *Dataset) Empty() bool { return d.Len() == 0 }

// At returns the i-th record by value.
func (d *Dataset) At(i int) model.Record {
	return d.records[i]
}

// All iterates over the records in order.
func (d *Dataset) All() iter.Seq2[int, model.Record] {
	return func(yield func(int, model.Record) bool) {
		if d == nil {
			return
		}
		for i, r := range d.records {
			if !yield(i, r) {
				return
			}
		}
	}
}

// Records returns a copy of the records.
func (d *Dataset) Records() []model.Record {
	if d == nil {
		return nil
	}
	return slices.Clone(d.records)
}

// Numbers returns the values of a numeric column in record order.
func (d *Dataset) Numbers(c model.Column) ([]float64, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%s: %w", c, ErrUnknownColumn)
	}
	out := make([]float64, 0, d.Len())
	for _, r := range d.All() {
		v, ok := r.Number(c)
		if !ok {
			return nil, fmt.Errorf("column %s is not numeric", c)
		}
		out = append(out, v)
	}
	return out, nil
}

// Salaries returns salary_in_usd for every record in order.
func (d *Dataset) Salaries() []float64 {
	out := make([]float64, 0, d.Len())
	for _, r := range d.All() {
		out = append(out, r.SalaryInUSD)
	}
	return out
}

// Distinct returns the distinct canonical values of column c in first-seen order.
func (d *Dataset) Distinct(c model.Column) ([]string, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%s: %w", c, ErrUnknownColumn)
	}
	seen := make(map[string]struct{})
	var out []string
	for _, r := range d.All() {
		v, _ := r.Value(c)
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out, nil
}

// ValueCount is a value and how many records carry it.
type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// ValueCounts counts records per value of column c, most frequent first.
// Ties keep first-seen order.
func (d *Dataset) ValueCounts(c model.Column) ([]ValueCount, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%s: %w", c, ErrUnknownColumn)
	}
	idx := make(map[string]int)
	var out []ValueCount
	for _, r := range d.All() {
		v, _ := r.Value(c)
		i, ok := idx[v]
		if !ok {
			i = len(out)
			idx[v] = i
			out = append(out, ValueCount{Value: v})
		}
		out[i].Count++
	}
	slices.SortStableFunc(out, func(a, b ValueCount) int {
		return cmp.Compare(b.Count, a.Count)
	})
	return out, nil
}
