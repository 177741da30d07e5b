package risk

import (
	"math"
	"math/rand"
	"strings"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/aristath/sentinel-quant/pkg/formulas"
)

// VaRMethod selects the VaR estimator.
type VaRMethod string

const (
	VaRParametric VaRMethod = "parametric"
	VaRHistorical VaRMethod = "historical"
	VaRMonteCarlo VaRMethod = "monte_carlo"
)

// ParseVaRMethod returns the estimator named by s. Unknown values yield historical and ok=false.
func ParseVaRMethod(s string) (VaRMethod, bool) {
	switch VaRMethod(strings.ToLower(strings.TrimSpace(s))) {
	case VaRParametric:
		return VaRParametric, true
	case VaRHistorical, "":
		return VaRHistorical, true
	case VaRMonteCarlo, "montecarlo":
		return VaRMonteCarlo, true
	default:
		return VaRHistorical, false
	}
}

// VaR returns the loss magnitude not expected to be exceeded at confidence over horizon periods.
// The result is never negative.
func (c *Calculator) VaR(returns []float64, confidence, horizon float64, method VaRMethod) float64 {
	if len(returns) == 0 {
		c.log.Warn().Msg("Empty return series, VaR is 0")
		return 0.0
	}
	if horizon <= 0 {
		horizon = 1
	}
	switch method {
	case VaRParametric:
		return c.ParametricVaR(returns, confidence, horizon)
	case VaRMonteCarlo:
		return c.MonteCarloVaR(returns, confidence, horizon)
	default:
		return c.HistoricalVaR(returns, confidence, horizon)
	}
}

// ParametricVaR assumes Gaussian returns: -(μh + zα σ √h) with zα = Φ⁻¹(1 − confidence).
func (c *Calculator) ParametricVaR(returns []float64, confidence, horizon float64) float64 {
	if len(returns) == 0 {
		return 0.0
	}
	mu := formulas.Mean(returns)
	sigma := formulas.StdDev(returns)
	z := distuv.UnitNormal.Quantile(1 - confidence)
	v := -(mu*horizon + z*sigma*math.Sqrt(horizon))
	return clampLoss(v)
}

// HistoricalVaR is -percentile(returns, 100(1 − confidence)) scaled by √horizon.
func (c *Calculator) HistoricalVaR(returns []float64, confidence, horizon float64) float64 {
	if len(returns) == 0 {
		return 0.0
	}
	q := formulas.Percentile(returns, 100*(1-confidence))
	return clampLoss(-q * math.Sqrt(horizon))
}

// MonteCarloVaR draws Gaussian samples N(μh, σ√h) from a generator seeded with the
// calculator seed and takes the same percentile as the historical estimator.
func (c *Calculator) MonteCarloVaR(returns []float64, confidence, horizon float64) float64 {
	if len(returns) == 0 {
		return 0.0
	}
	draws := c.monteCarloDraws(returns, horizon)
	return clampLoss(-formulas.Percentile(draws, 100*(1-confidence)))
}

func (c *Calculator) monteCarloDraws(returns []float64, horizon float64) []float64 {
	mu := formulas.Mean(returns) * horizon
	sigma := formulas.StdDev(returns) * math.Sqrt(horizon)

	rng := rand.New(rand.NewSource(c.seed))
	draws := make([]float64, c.simulations)
	for i := range draws {
		draws[i] = mu + sigma*rng.NormFloat64()
	}
	return draws
}

// CVaR is the expected loss given the loss exceeds VaR, reported as a positive magnitude.
// The historical method averages the observations at or below the VaR quantile and the
// Monte Carlo method averages the simulated tail; an empty tail yields 0. The parametric
// method is the Gaussian expected shortfall and never falls below the parametric VaR.
func (c *Calculator) CVaR(returns []float64, confidence float64, method VaRMethod) float64 {
	if len(returns) == 0 {
		c.log.Warn().Msg("Empty return series, CVaR is 0")
		return 0.0
	}

	var sample []float64
	var threshold float64
	switch method {
	case VaRParametric:
		es := clampLoss(-formulas.GaussianTailMean(formulas.Mean(returns), formulas.StdDev(returns), confidence))
		return math.Max(es, c.ParametricVaR(returns, confidence, 1))
	case VaRMonteCarlo:
		sample = c.monteCarloDraws(returns, 1)
		threshold = formulas.Percentile(sample, 100*(1-confidence))
	default:
		sample = returns
		threshold = formulas.Percentile(returns, 100*(1-confidence))
	}

	tail, count := formulas.TailMean(sample, threshold)
	if count == 0 {
		return 0.0
	}
	return clampLoss(-tail)
}

func clampLoss(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0.0
	}
	return v
}
