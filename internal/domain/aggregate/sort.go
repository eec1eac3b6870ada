package aggregate

import (
	"cmp"
	"slices"
	"strconv"

	"github.com/okian/salaryexplorer/internal/domain/stats"
)

// SortByValue orders groups by op, descending when desc is set. Undefined
// values sort last. The sort is stable and returns a new Result.
func SortByValue(r Result, op Op, desc bool) Result {
	out := r
	out.Groups = slices.Clone(r.Groups)
	slices.SortStableFunc(out.Groups, func(a, b Group) int {
		av, bv := a.Value(op), b.Value(op)
		switch au, bu := stats.IsUndefined(av), stats.IsUndefined(bv); {
		case au && bu:
			return 0
		case au:
			return 1
		case bu:
			return -1
		}
		if desc {
			return cmp.Compare(bv, av)
		}
		return cmp.Compare(av, bv)
	})
	return out
}

// SortByKey orders groups by their key tuple ascending. Keys that parse as
// numbers compare numerically.
func SortByKey(r Result) Result {
	out := r
	out.Groups = slices.Clone(r.Groups)
	slices.SortStableFunc(out.Groups, func(a, b Group) int {
		for i := range min(len(a.Key), len(b.Key)) {
			if c := compareKey(a.Key[i], b.Key[i]); c != 0 {
				return c
			}
		}
		return cmp.Compare(len(a.Key), len(b.Key))
	})
	return out
}

func compareKey(a, b string) int {
	af, aerr := strconv.ParseFloat(a, 64)
	bf, berr := strconv.ParseFloat(b, 64)
	if aerr == nil && berr == nil {
		return cmp.Compare(af, bf)
	}
	return cmp.Compare(a, b)
}

// Top keeps the first n groups.
func Top(r Result, n int) Result {
	out := r
	if n >= 0 && n < len(r.Groups) {
		out.Groups = slices.Clone(r.Groups[:n])
	}
	return out
}
