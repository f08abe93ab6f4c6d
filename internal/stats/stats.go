// Package stats provides the summary statistics used by comparables and
// simulation. Missing, non-finite and non-positive observations are excluded
// rather than treated as zero.
package stats

import (
	"math"
	"sort"
)

// Positive returns the present, finite, strictly positive values in order.
func Positive(vals []*float64) []float64 {
	out := make([]float64, 0, len(vals))
	for _, v := range vals {
		if v == nil {
			continue
		}
		if isPositive(*v) {
			out = append(out, *v)
		}
	}
	return out
}

// PositiveValues is Positive for plain float slices.
func PositiveValues(vals []float64) []float64 {
	out := make([]float64, 0, len(vals))
	for _, v := range vals {
		if isPositive(v) {
			out = append(out, v)
		}
	}
	return out
}

func isPositive(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}

// Median returns the median of the positive finite subset of vals.
func Median(vals []float64) (float64, bool) {
	xs := PositiveValues(vals)
	if len(xs) == 0 {
		return 0, false
	}
	sort.Float64s(xs)
	mid := len(xs) / 2
	if len(xs)%2 == 0 {
		return (xs[mid-1] + xs[mid]) / 2, true
	}
	return xs[mid], true
}

// Mean returns the arithmetic mean of the positive finite subset of vals.
func Mean(vals []float64) (float64, bool) {
	xs := PositiveValues(vals)
	if len(xs) == 0 {
		return 0, false
	}
	sum := 0.0
	for _, v := range xs {
		sum += v
	}
	return sum / float64(len(xs)), true
}

// PercentileRank returns the share of peers strictly below target, in [0,100].
// Only positive finite peer values count towards the denominator.
func PercentileRank(target float64, peers []float64) (float64, bool) {
	if math.IsNaN(target) || math.IsInf(target, 0) {
		return 0, false
	}
	xs := PositiveValues(peers)
	if len(xs) == 0 {
		return 0, false
	}
	below := 0
	for _, v := range xs {
		if v < target {
			below++
		}
	}
	return float64(below) / float64(len(xs)) * 100, true
}

// Percentile returns the p-th percentile (0-100) of the finite values using
// linear interpolation between closest ranks.
func Percentile(vals []float64, p float64) (float64, bool) {
	xs := make([]float64, 0, len(vals))
	for _, v := range vals {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			xs = append(xs, v)
		}
	}
	if len(xs) == 0 || p < 0 || p > 100 {
		return 0, false
	}
	sort.Float64s(xs)
	return percentileSorted(xs, p), true
}

// Percentiles computes several percentiles with a single sort.
func Percentiles(vals []float64, ps ...float64) map[float64]float64 {
	xs := make([]float64, 0, len(vals))
	for _, v := range vals {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			xs = append(xs, v)
		}
	}
	out := make(map[float64]float64, len(ps))
	if len(xs) == 0 {
		return out
	}
	sort.Float64s(xs)
	for _, p := range ps {
		if p < 0 || p > 100 {
			continue
		}
		out[p] = percentileSorted(xs, p)
	}
	return out
}

func percentileSorted(xs []float64, p float64) float64 {
	if len(xs) == 1 {
		return xs[0]
	}
	rank := p / 100 * float64(len(xs)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return xs[lo]
	}
	frac := rank - float64(lo)
	return xs[lo] + (xs[hi]-xs[lo])*frac
}
