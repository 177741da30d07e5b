package formulas

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// TailMean returns the mean of every observation at or below threshold, and the
// number of observations in that tail. An empty tail returns (0, 0).
func TailMean(returns []float64, threshold float64) (float64, int) {
	sum := 0.0
	count := 0
	for _, r := range returns {
		if r <= threshold {
			sum += r
			count++
		}
	}
	if count == 0 {
		return 0, 0
	}
	mean := sum / float64(count)
	if math.IsNaN(mean) {
		return 0, 0
	}
	return mean, count
}

// GaussianTailMean returns E[X | X ≤ q] for X ~ N(mu, sigma²), where q is the quantile at
// tail probability 1 − confidence: mu − sigma·φ(z)/(1 − confidence) with z = Φ⁻¹(1 − confidence).
// It returns NaN when confidence is outside (0, 1).
func GaussianTailMean(mu, sigma, confidence float64) float64 {
	alpha := 1 - confidence
	if !(alpha > 0 && alpha < 1) {
		return math.NaN()
	}
	z := distuv.UnitNormal.Quantile(alpha)
	return mu - sigma*distuv.UnitNormal.Prob(z)/alpha
}
