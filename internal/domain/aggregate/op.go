package aggregate

import (
	"fmt"
	"math"
	"strconv"

	"github.com/okian/salaryexplorer/internal/domain/stats"
)

type opKind uint8

const (
	kindMean opKind = iota + 1
	kindMedian
	kindMin
	kindMax
	kindCount
	kindStd
	kindSum
	kindQuantile
)

// Op is a summary statistic applied to each group.
type Op struct {
	kind opKind
	p    float64
}

// Supported ops.
var (
	Mean   = Op{kind: kindMean}
	Median = Op{kind: kindMedian}
	Min    = Op{kind: kindMin}
	Max    = Op{kind: kindMax}
	Count  = Op{kind: kindCount}
	Std    = Op{kind: kindStd}
	Sum    = Op{kind: kindSum}
)

// Quantile returns the p-quantile op. p must be within [0,1].
func Quantile(p float64) Op {
	return Op{kind: kindQuantile, p: p}
}

// Name is the key the op's value is stored under in a Group.
func (o Op) Name() string {
	switch o.kind {
	case kindMean:
		return "mean"
	case kindMedian:
		return "median"
	case kindMin:
		return "min"
	case kindMax:
		return "max"
	case kindCount:
		return "count"
	case kindStd:
		return "std"
	case kindSum:
		return "sum"
	case kindQuantile:
		return "q" + strconv.FormatFloat(o.p*100, 'f', -1, 64)
	}
	return "invalid"
}

func (o Op) String() string { return o.Name() }

func (o Op) validate() error {
	switch o.kind {
	case kindMean, kindMedian, kindMin, kindMax, kindCount, kindStd, kindSum:
		return nil
	case kindQuantile:
		if o.p < 0 || o.p > 1 || math.IsNaN(o.p) {
			return fmt.Errorf("quantile %v: %w", o.p, ErrInvalidOp)
		}
		return nil
	}
	return ErrInvalidOp
}

func (o Op) apply(xs []float64) float64 {
	switch o.kind {
	case kindMean:
		return stats.Mean(xs)
	case kindMedian:
		return stats.Median(xs)
	case kindMin:
		return stats.Min(xs)
	case kindMax:
		return stats.Max(xs)
	case kindCount:
		return float64(len(xs))
	case kindStd:
		return stats.StdDev(xs)
	case kindSum:
		return stats.Sum(xs)
	case kindQuantile:
		return stats.Quantile(xs, o.p)
	}
	return stats.Undefined
}
