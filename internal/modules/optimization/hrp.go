package optimization

import (
	"fmt"
	"math"

	"github.com/aristath/sentinel-quant/internal/domain"
	"github.com/aristath/sentinel-quant/internal/solver"
	"github.com/aristath/sentinel-quant/pkg/formulas"
)

// hrp performs Hierarchical Risk Parity:
//  1. correlation from covariance
//  2. distance d_ij = √(2(1 − ρ_ij))
//  3. agglomerative clustering with the requested linkage
//  4. quasi-diagonal leaf order
//  5. recursive bisection, splitting by inverse cluster variance
//
// The allocation is then projected onto the weight bounds.
func (o *Optimizer) hrp(m *model, bounds solver.Bounds, req Request) (*domain.OptimizationResult, error) {
	w, err := hrpWeights(m.cov, req.Linkage)
	if err != nil {
		return nil, err
	}
	return m.result(MethodHRP, bounds.Project(w)), nil
}

func hrpWeights(cov [][]float64, linkage formulas.Linkage) ([]float64, error) {
	linkage, err := formulas.ParseLinkage(string(linkage))
	if err != nil {
		return nil, err
	}
	n := len(cov)
	if n == 1 {
		return []float64{1}, nil
	}

	corr, err := formulas.CorrelationMatrixFromCovariance(cov)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate correlation matrix from covariance: %w", err)
	}
	root := formulas.BuildDendrogram(formulas.CorrelationToDistance(corr), linkage)
	order := formulas.QuasiDiagonalOrder(root)
	if len(order) != n {
		return nil, fmt.Errorf("invalid HRP order length %d", len(order))
	}

	weights := make([]float64, n)
	for i := range weights {
		weights[i] = 1.0
	}
	recursiveBisectionAllocate(weights, cov, order)

	sum := 0.0
	for _, w := range weights {
		sum += w
	}
	if sum <= 0 || math.IsNaN(sum) || math.IsInf(sum, 0) {
		return nil, fmt.Errorf("invalid HRP weight sum: %v", sum)
	}
	for i := range weights {
		weights[i] /= sum
	}
	return weights, nil
}

func recursiveBisectionAllocate(weights []float64, cov [][]float64, order []int) {
	if len(order) <= 1 {
		return
	}
	split := len(order) / 2
	left, right := order[:split], order[split:]

	vLeft := clusterVariance(cov, left)
	vRight := clusterVariance(cov, right)

	alpha := 0.5
	if vLeft+vRight > 0 {
		alpha = 1.0 - vLeft/(vLeft+vRight)
	}
	alpha = math.Max(0.0, math.Min(1.0, alpha))

	for _, idx := range left {
		weights[idx] *= alpha
	}
	for _, idx := range right {
		weights[idx] *= 1.0 - alpha
	}

	recursiveBisectionAllocate(weights, cov, left)
	recursiveBisectionAllocate(weights, cov, right)
}

// clusterVariance is the variance of the inverse-variance portfolio of idxs.
func clusterVariance(cov [][]float64, idxs []int) float64 {
	switch len(idxs) {
	case 0:
		return 0.0
	case 1:
		return math.Max(cov[idxs[0]][idxs[0]], 0.0)
	}

	variances := make([]float64, len(idxs))
	for k, i := range idxs {
		variances[k] = math.Max(cov[i][i], 1e-12)
	}
	ivp := formulas.InverseVarianceWeights(variances)

	variance := 0.0
	for a, i := range idxs {
		for b, j := range idxs {
			variance += ivp[a] * cov[i][j] * ivp[b]
		}
	}
	return math.Max(variance, 0.0)
}
