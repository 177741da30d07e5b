package formulas

import (
	"fmt"
	"math"
)

// CorrelationMatrixFromCovariance calculates the correlation matrix from a covariance matrix.
//
// Formula: corr(i,j) = cov(i,j) / sqrt(cov(i,i) * cov(j,j))
//
// A zero-variance asset gets zero correlation with every other asset and 1 on its diagonal.
func CorrelationMatrixFromCovariance(cov [][]float64) ([][]float64, error) {
	n := len(cov)
	if n == 0 {
		return nil, fmt.Errorf("empty covariance matrix")
	}
	for i := 0; i < n; i++ {
		if len(cov[i]) != n {
			return nil, fmt.Errorf("covariance matrix is not square")
		}
	}

	vars := make([]float64, n)
	for i := 0; i < n; i++ {
		v := cov[i][i]
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("invalid variance on diagonal at %d: %v", i, v)
		}
		vars[i] = v
	}

	corr := make([][]float64, n)
	for i := 0; i < n; i++ {
		corr[i] = make([]float64, n)
	}

	for i := 0; i < n; i++ {
		corr[i][i] = 1.0
		for j := i + 1; j < n; j++ {
			den := math.Sqrt(vars[i] * vars[j])
			val := 0.0
			if den > 0 {
				val = cov[i][j] / den
			}
			val = math.Max(-1.0, math.Min(1.0, val))
			corr[i][j] = val
			corr[j][i] = val
		}
	}

	return corr, nil
}

// CorrelationToDistance converts correlation matrix to distance matrix.
// Distance formula: d_ij = sqrt(2 * (1 - ρ_ij))
func CorrelationToDistance(corrMatrix [][]float64) [][]float64 {
	n := len(corrMatrix)
	distMatrix := make([][]float64, n)

	for i := 0; i < n; i++ {
		distMatrix[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			corr := math.Max(-1.0, math.Min(1.0, corrMatrix[i][j]))
			distMatrix[i][j] = math.Sqrt(2.0 * (1.0 - corr))
		}
	}

	return distMatrix
}

// InverseVarianceWeights returns w_i = (1/v_i) / Σ(1/v_j).
// Non-positive variances get zero weight; if every variance is invalid the result is equal weights.
func InverseVarianceWeights(variances []float64) []float64 {
	n := len(variances)
	weights := make([]float64, n)

	var totalInvVariance float64
	for _, v := range variances {
		if v > 0 {
			totalInvVariance += 1.0 / v
		}
	}

	if totalInvVariance == 0 {
		for i := range weights {
			weights[i] = 1.0 / float64(n)
		}
		return weights
	}

	for i, v := range variances {
		if v > 0 {
			weights[i] = (1.0 / v) / totalInvVariance
		}
	}

	return weights
}

// QuadraticForm returns w'Σw.
func QuadraticForm(w []float64, cov [][]float64) float64 {
	total := 0.0
	for i := range w {
		for j := range w {
			total += w[i] * cov[i][j] * w[j]
		}
	}
	return total
}

// MatVec returns Σw.
func MatVec(cov [][]float64, w []float64) []float64 {
	out := make([]float64, len(cov))
	for i := range cov {
		for j := range w {
			out[i] += cov[i][j] * w[j]
		}
	}
	return out
}
