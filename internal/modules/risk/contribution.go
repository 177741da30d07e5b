package risk

import (
	"fmt"
	"math"
	"slices"

	"github.com/aristath/sentinel-quant/internal/domain"
	"github.com/aristath/sentinel-quant/pkg/formulas"
)

// Decomposition is the Euler risk decomposition of a weight vector.
type Decomposition struct {
	Variance   float64
	Volatility float64
	// Marginal is Σw.
	Marginal []float64
	// Component is w·(Σw)/σ; components sum to σ.
	Component []float64
	// Percentage is w·(Σw)/w'Σw; percentages sum to 1 when the variance is positive.
	Percentage []float64
}

// EulerDecomposition splits portfolio risk into per-asset contributions.
// Zero variance yields zero components and percentages.
func EulerDecomposition(weights []float64, cov [][]float64) Decomposition {
	n := len(weights)
	d := Decomposition{
		Marginal:   formulas.MatVec(cov, weights),
		Component:  make([]float64, n),
		Percentage: make([]float64, n),
	}
	d.Variance = formulas.QuadraticForm(weights, cov)
	if d.Variance <= 0 || math.IsNaN(d.Variance) {
		d.Variance = math.Max(0, formulas.Finite(d.Variance, 0))
		return d
	}
	d.Volatility = math.Sqrt(d.Variance)
	for i := 0; i < n; i++ {
		d.Component[i] = weights[i] * d.Marginal[i] / d.Volatility
		d.Percentage[i] = weights[i] * d.Marginal[i] / d.Variance
	}
	return d
}

// ContributionReport is the ticker-keyed form of a Decomposition.
type ContributionReport struct {
	PortfolioVolatility float64            `json:"portfolio_volatility"`
	Marginal            map[string]float64 `json:"marginal_contribution"`
	Component           map[string]float64 `json:"component_contribution"`
	Percentage          map[string]float64 `json:"percentage_contribution"`
}

// RiskContribution decomposes the risk of weights over a covariance matrix ordered by tickers.
// Weights are normalized defensively before decomposition.
func (c *Calculator) RiskContribution(weights domain.WeightMapping, tickers []string, cov [][]float64) (*ContributionReport, error) {
	if len(cov) != len(tickers) {
		return nil, fmt.Errorf("covariance matrix size %d does not match %d tickers", len(cov), len(tickers))
	}
	for i := range cov {
		if len(cov[i]) != len(tickers) {
			return nil, fmt.Errorf("covariance matrix is not square")
		}
	}

	normalized := weights.Normalized()
	for t := range normalized {
		if !slices.Contains(tickers, t) {
			c.log.Warn().Str("ticker", t).Msg("Weight has no covariance row, ignoring")
		}
	}
	d := EulerDecomposition(normalized.Vector(tickers), cov)

	report := &ContributionReport{
		PortfolioVolatility: d.Volatility,
		Marginal:            make(map[string]float64, len(tickers)),
		Component:           make(map[string]float64, len(tickers)),
		Percentage:          make(map[string]float64, len(tickers)),
	}
	for i, t := range tickers {
		report.Marginal[t] = d.Marginal[i]
		report.Component[t] = d.Component[i]
		report.Percentage[t] = d.Percentage[i]
	}
	return report, nil
}
