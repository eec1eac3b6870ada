// Package stats provides the descriptive statistics used by the aggregation
// and estimate engines.
package stats

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Undefined is the sentinel for a statistic that has no value, such as the
// sample standard deviation of a single observation.
var Undefined = math.NaN()

// IsUndefined reports whether v is the Undefined sentinel.
func IsUndefined(v float64) bool {
	return math.IsNaN(v)
}

// Mean returns the arithmetic mean, or Undefined for an empty sample.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return Undefined
	}
	return stat.Mean(xs, nil)
}

// Sum returns the total of xs.
func Sum(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return floats.Sum(xs)
}

// Min returns the smallest value, or Undefined for an empty sample.
func Min(xs []float64) float64 {
	if len(xs) == 0 {
		return Undefined
	}
	return floats.Min(xs)
}

// Max returns the largest value, or Undefined for an empty sample.
func Max(xs []float64) float64 {
	if len(xs) == 0 {
		return Undefined
	}
	return floats.Max(xs)
}

// StdDev returns the sample standard deviation (n-1 denominator). Fewer than
// two observations yield Undefined.
func StdDev(xs []float64) float64 {
	if len(xs) < 2 {
		return Undefined
	}
	return stat.StdDev(xs, nil)
}

// Median is Quantile(xs, 0.5).
func Median(xs []float64) float64 {
	return Quantile(xs, 0.5)
}

// Quantile returns the p-quantile using linear interpolation between the
// closest ranks: h = (n-1)p, q = x[floor(h)] + (h-floor(h))(x[floor(h)+1]-x[floor(h)]).
// xs is not modified. An empty sample or p outside [0,1] yields Undefined.
func Quantile(xs []float64, p float64) float64 {
	if len(xs) == 0 || p < 0 || p > 1 || math.IsNaN(p) {
		return Undefined
	}
	sorted := slices.Clone(xs)
	slices.Sort(sorted)
	return quantileSorted(sorted, p)
}

func quantileSorted(sorted []float64, p float64) float64 {
	h := float64(len(sorted)-1) * p
	lo := int(math.Floor(h))
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[lo+1]-sorted[lo])
}

// Summary is the set of statistics reported for a salary sample.
type Summary struct {
	Count  int
	Mean   float64
	Median float64
	Min    float64
	Max    float64
	Q25    float64
	Q75    float64
	StdDev float64
}

// Summarize computes a Summary over xs. An empty sample returns a zero
// count with every statistic Undefined; callers check Count first.
func Summarize(xs []float64) Summary {
	if len(xs) == 0 {
		return Summary{
			Mean: Undefined, Median: Undefined, Min: Undefined, Max: Undefined,
			Q25: Undefined, Q75: Undefined, StdDev: Undefined,
		}
	}
	sorted := slices.Clone(xs)
	slices.Sort(sorted)
	return Summary{
		Count:  len(sorted),
		Mean:   stat.Mean(sorted, nil),
		Median: quantileSorted(sorted, 0.5),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		Q25:    quantileSorted(sorted, 0.25),
		Q75:    quantileSorted(sorted, 0.75),
		StdDev: StdDev(sorted),
	}
}

// Ptr converts v to a pointer, mapping Undefined to nil. It is used by JSON
// views, since encoding/json cannot encode NaN.
func Ptr(v float64) *float64 {
	if IsUndefined(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
