package simulation

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/aristath/sentinel-quant/internal/utils"
)

// Marginal selects the per-asset return distribution of a copula simulation.
type Marginal string

const (
	MarginalNormal   Marginal = "normal"
	MarginalStudentT Marginal = "student_t"

	// DefaultDegreesOfFreedom is used for Student-t marginals when none is given.
	DefaultDegreesOfFreedom = 5.0
)

// Asset is one holding of a multi-asset simulation.
type Asset struct {
	Ticker string `json:"ticker"`
	// ExpectedReturn and Volatility are annual.
	ExpectedReturn float64 `json:"expected_return"`
	Volatility     float64 `json:"volatility"`
	Weight         float64 `json:"weight"`
}

// CopulaParams describes a multi-asset projection.
type CopulaParams struct {
	Assets []Asset `json:"assets"`
	// Correlation is ordered like Assets; nil means independent assets.
	Correlation        [][]float64 `json:"correlation"`
	Marginal           Marginal    `json:"marginal"`
	DegreesOfFreedom   float64     `json:"degrees_of_freedom"`
	InitialValue       float64     `json:"initial_value"`
	Years              float64     `json:"years"`
	Simulations        int         `json:"simulations"`
	AnnualContribution float64     `json:"annual_contribution"`
}

// copulaModel is the validated, factorized form of CopulaParams.
type copulaModel struct {
	mu      []float64
	sigma   []float64
	weights []float64
	chol    *mat.TriDense
	t       *distuv.StudentsT
	tScale  float64
}

func newCopulaModel(params CopulaParams) (*copulaModel, error) {
	n := len(params.Assets)
	if n == 0 {
		return nil, fmt.Errorf("at least one asset is required")
	}

	m := &copulaModel{
		mu:      make([]float64, n),
		sigma:   make([]float64, n),
		weights: make([]float64, n),
	}
	total := 0.0
	for i, a := range params.Assets {
		if a.Weight < 0 || a.Volatility < 0 {
			return nil, fmt.Errorf("asset %s has a negative weight or volatility", a.Ticker)
		}
		m.mu[i] = a.ExpectedReturn / TradingDaysPerYear
		m.sigma[i] = a.Volatility / math.Sqrt(TradingDaysPerYear)
		m.weights[i] = a.Weight
		total += a.Weight
	}
	if total <= 0 {
		return nil, fmt.Errorf("asset weights sum to zero")
	}
	for i := range m.weights {
		m.weights[i] /= total
	}

	corr := params.Correlation
	if corr == nil {
		corr = identity(n)
	}
	chol, err := choleskyFactor(corr, n)
	if err != nil {
		return nil, err
	}
	m.chol = chol

	switch params.Marginal {
	case "", MarginalNormal:
	case MarginalStudentT:
		nu := params.DegreesOfFreedom
		if nu == 0 {
			nu = DefaultDegreesOfFreedom
		}
		if nu <= 2 {
			return nil, fmt.Errorf("student-t marginals need more than 2 degrees of freedom, got %v", nu)
		}
		m.t = &distuv.StudentsT{Mu: 0, Sigma: 1, Nu: nu}
		m.tScale = math.Sqrt((nu - 2) / nu)
	default:
		return nil, fmt.Errorf("unsupported marginal %q", params.Marginal)
	}
	return m, nil
}

func identity(n int) [][]float64 {
	out := make([][]float64, n)
	for i := range out {
		out[i] = make([]float64, n)
		out[i][i] = 1
	}
	return out
}

// choleskyFactor returns the lower-triangular L with LLᵀ = corr.
func choleskyFactor(corr [][]float64, n int) (*mat.TriDense, error) {
	if len(corr) != n {
		return nil, fmt.Errorf("correlation matrix has %d rows for %d assets", len(corr), n)
	}
	sym := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		if len(corr[i]) != n {
			return nil, fmt.Errorf("correlation row %d has %d entries for %d assets", i, len(corr[i]), n)
		}
		for j := i; j < n; j++ {
			if math.Abs(corr[i][j]-corr[j][i]) > 1e-9 {
				return nil, fmt.Errorf("correlation matrix is not symmetric at (%d, %d)", i, j)
			}
			sym.SetSym(i, j, corr[i][j])
		}
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(sym); !ok {
		return nil, fmt.Errorf("correlation matrix is not positive definite")
	}
	var l mat.TriDense
	chol.LTo(&l)
	return &l, nil
}

// pathModel draws correlated standard normals z = L·ε each day, maps them through the
// marginal and returns the weighted portfolio return.
func (m *copulaModel) pathModel() pathModel {
	n := len(m.mu)
	return func(rng *rand.Rand) dailyReturns {
		eps := mat.NewVecDense(n, nil)
		z := mat.NewVecDense(n, nil)
		return func() float64 {
			for i := 0; i < n; i++ {
				eps.SetVec(i, rng.NormFloat64())
			}
			z.MulVec(m.chol, eps)

			r := 0.0
			for i := 0; i < n; i++ {
				shock := z.AtVec(i)
				if m.t != nil {
					u := distuv.UnitNormal.CDF(shock)
					u = math.Min(math.Max(u, 1e-12), 1-1e-12)
					shock = m.t.Quantile(u) * m.tScale
				}
				r += m.weights[i] * (m.mu[i] + m.sigma[i]*shock)
			}
			return r
		}
	}
}

// Copula projects a multi-asset portfolio with a Gaussian copula. Normal marginals give
// a multivariate normal; Student-t marginals keep the Gaussian dependence but fatten each
// asset's tails, scaled to unit variance.
func (e *Engine) Copula(params CopulaParams) (*Result, error) {
	if params.InitialValue <= 0 {
		return nil, fmt.Errorf("initial value must be positive, got %v", params.InitialValue)
	}
	days, err := horizon(params.Years)
	if err != nil {
		return nil, err
	}
	model, err := newCopulaModel(params)
	if err != nil {
		return nil, err
	}

	p := e.newProjection(params.InitialValue, params.AnnualContribution, params.Years, params.Simulations, days)
	defer utils.OperationTimerWithFields("copula", e.log, map[string]interface{}{
		"simulations": p.simulations,
		"assets":      len(params.Assets),
		"marginal":    string(params.Marginal),
	})()

	return p.summarize(p.finals(e.newRNG(), model.pathModel())), nil
}
