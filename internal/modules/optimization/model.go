package optimization

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/aristath/sentinel-quant/internal/domain"
	"github.com/aristath/sentinel-quant/internal/modules/risk"
	"github.com/aristath/sentinel-quant/internal/modules/timeseries"
)

const (
	volatilityFloor = 1e-10
	// sharpeRiskFloor keeps the Sharpe objective finite near zero-risk portfolios.
	sharpeRiskFloor = 1e-8
	// degenerateObjective is returned by objectives undefined at a point.
	degenerateObjective = 1e10
)

// model holds the annualized estimates an objective is evaluated against.
type model struct {
	tickers      []string
	mu           []float64
	cov          [][]float64
	sigma        *mat.SymDense
	observations int
	rf           float64
}

func newModel(est *timeseries.Estimates, rf float64) *model {
	return &model{
		tickers:      est.Tickers,
		mu:           est.Mean,
		cov:          est.Cov,
		sigma:        symmetric(est.Cov),
		observations: est.Observations,
		rf:           rf,
	}
}

func symmetric(cov [][]float64) *mat.SymDense {
	n := len(cov)
	sigma := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			sigma.SetSym(i, j, 0.5*(cov[i][j]+cov[j][i]))
		}
	}
	return sigma
}

func (m *model) n() int {
	return len(m.mu)
}

func (m *model) ret(w []float64) float64 {
	return floats.Dot(m.mu, w)
}

func (m *model) variance(w []float64) float64 {
	v := mat.NewVecDense(len(w), w)
	return mat.Inner(v, m.sigma, v)
}

func (m *model) risk(w []float64) float64 {
	return math.Sqrt(math.Max(m.variance(w), 0))
}

// sharpe reports 0 below the volatility floor.
func (m *model) sharpe(w []float64) float64 {
	r := m.risk(w)
	if r < volatilityFloor {
		return 0.0
	}
	return (m.ret(w) - m.rf) / r
}

func (m *model) negSharpe(w []float64) float64 {
	return -(m.ret(w) - m.rf) / math.Max(m.risk(w), sharpeRiskFloor)
}

// withMean returns a copy of the model with different expected returns.
func (m *model) withMean(mu []float64) *model {
	cp := *m
	cp.mu = mu
	return &cp
}

// volatilities returns √diag(Σ).
func (m *model) volatilities() []float64 {
	out := make([]float64, m.n())
	for i := range out {
		out[i] = math.Sqrt(math.Max(m.sigma.At(i, i), 0))
	}
	return out
}

// result packages weights with the headline statistics and Euler risk contributions.
func (m *model) result(method Method, w []float64) *domain.OptimizationResult {
	decomposition := risk.EulerDecomposition(w, m.cov)
	return &domain.OptimizationResult{
		Method:            string(method),
		OptimalWeights:    domain.WeightsFromVector(m.tickers, w),
		ExpectedReturn:    m.ret(w),
		ExpectedRisk:      m.risk(w),
		SharpeRatio:       m.sharpe(w),
		RiskContributions: domain.WeightsFromVector(m.tickers, decomposition.Percentage),
	}
}
