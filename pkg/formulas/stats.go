// Package formulas holds the statistical primitives shared by the analytics modules.
package formulas

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Mean(data, nil)
}

// StdDev calculates the sample standard deviation (N-1) of a slice of float64 values
func StdDev(data []float64) float64 {
	if len(data) < 2 {
		return 0
	}
	return stat.StdDev(data, nil)
}

// Variance calculates the sample variance (N-1) of a slice of float64 values
func Variance(data []float64) float64 {
	if len(data) < 2 {
		return 0
	}
	return stat.Variance(data, nil)
}

// Covariance calculates the sample covariance between two datasets
func Covariance(x, y []float64) float64 {
	if len(x) < 2 || len(x) != len(y) {
		return 0
	}
	return stat.Covariance(x, y, nil)
}

// Correlation calculates the Pearson correlation coefficient between two datasets.
// Degenerate inputs (constant series) return 0.
func Correlation(x, y []float64) float64 {
	if len(x) < 2 || len(x) != len(y) {
		return 0
	}
	c := stat.Correlation(x, y, nil)
	if math.IsNaN(c) || math.IsInf(c, 0) {
		return 0
	}
	return c
}

// Skewness returns the sample skewness, 0 for fewer than 3 observations.
func Skewness(data []float64) float64 {
	if len(data) < 3 || StdDev(data) == 0 {
		return 0
	}
	return stat.Skew(data, nil)
}

// ExcessKurtosis returns the sample excess kurtosis, 0 for fewer than 4 observations.
func ExcessKurtosis(data []float64) float64 {
	if len(data) < 4 || StdDev(data) == 0 {
		return 0
	}
	return stat.ExKurtosis(data, nil)
}

// Percentile returns the p-th percentile (0..100) using linear interpolation
// between closest ranks, the convention used by numpy.percentile.
//
// gonum's stat.Quantile offers Empirical and LinInterp estimators, neither of which
// matches the (n-1)·p plotting position the reported VaR numbers depend on.
func Percentile(data []float64, p float64) float64 {
	if len(data) == 0 {
		return math.NaN()
	}
	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)
	return PercentileSorted(sorted, p)
}

// PercentileSorted is Percentile for data already sorted ascending.
func PercentileSorted(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if n == 1 {
		return sorted[0]
	}
	p = math.Max(0, math.Min(100, p))

	rank := p / 100 * float64(n-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// SafeDivide returns a/b, or 0 when |b| is below eps or the result is not finite.
func SafeDivide(a, b, eps float64) float64 {
	if math.Abs(b) < eps {
		return 0
	}
	r := a / b
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return r
}

// Finite replaces NaN and ±Inf with fallback so values stay JSON-serializable.
func Finite(v, fallback float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	return v
}
