package dataset

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/okian/salaryexplorer/internal/domain/model"
)

// FilterSpec constrains columns to sets of allowed canonical values. An
// absent column or an empty set places no constraint.
type FilterSpec map[model.Column][]string

// ExactFilter requires each named column to equal one value.
type ExactFilter map[model.Column]string

// Validate checks that every column in the spec exists.
func (s FilterSpec) Validate() error {
	for _, c := range slices.Sorted(maps.Keys(s)) {
		if !c.Valid() {
			return fmt.Errorf("filter %s: %w", c, ErrUnknownColumn)
		}
	}
	return nil
}

// String renders the spec deterministically, for logs.
func (s FilterSpec) String() string {
	var b strings.Builder
	for i, c := range slices.Sorted(maps.Keys(s)) {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(string(c))
		b.WriteByte('=')
		b.WriteString(strings.Join(s[c], ","))
	}
	return b.String()
}

// Spec widens an exact filter into a set-membership spec.
func (f ExactFilter) Spec() FilterSpec {
	s := make(FilterSpec, len(f))
	for c, v := range f {
		s[c] = []string{v}
	}
	return s
}

// Only returns the subset of f restricted to the given columns.
func (f ExactFilter) Only(cols ...model.Column) ExactFilter {
	out := make(ExactFilter, len(cols))
	for _, c := range cols {
		if v, ok := f[c]; ok {
			out[c] = v
		}
	}
	return out
}

type constraint struct {
	col    model.Column
	values map[string]struct{}
}

// Filter returns the records that satisfy every non-empty constraint, in
// their original order. Zero matches is a valid result.
func (d *Dataset) Filter(spec FilterSpec) (*Dataset, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	var cs []constraint
	for c, vals := range spec {
		if len(vals) == 0 {
			continue
		}
		set := make(map[string]struct{}, len(vals))
		for _, v := range vals {
			set[v] = struct{}{}
		}
		cs = append(cs, constraint{col: c, values: set})
	}

	out := make([]model.Record, 0, d.Len())
	for _, r := range d.All() {
		if matches(&r, cs) {
			out = append(out, r)
		}
	}
	return &Dataset{records: out}, nil
}

// Match applies an exact-equality filter.
func (d *Dataset) Match(f ExactFilter) (*Dataset, error) {
	return d.Filter(f.Spec())
}

func matches(r *model.Record, cs []constraint) bool {
	for _, c := range cs {
		v, _ := r.Value(c.col)
		if _, ok := c.values[v]; !ok {
			return false
		}
	}
	return true
}
