package optimization

import (
	"fmt"
	"math"

	"github.com/aristath/sentinel-quant/internal/domain"
	"github.com/aristath/sentinel-quant/internal/solver"
)

// robust maximizes the Sharpe ratio on pessimistic returns μ − u·σ/√T, where σ is the
// annual volatility and T the number of observations. ExpectedReturn and SharpeRatio
// use the adjusted returns; the unadjusted return is reported alongside.
func (o *Optimizer) robust(m *model, bounds solver.Bounds, req Request) (*domain.OptimizationResult, error) {
	u := DefaultUncertaintyLevel
	if req.UncertaintyLevel != nil {
		u = *req.UncertaintyLevel
	}
	if u < 0 {
		return nil, fmt.Errorf("uncertainty level must be non-negative, got %.4f", u)
	}

	vols := m.volatilities()
	adjusted := make([]float64, m.n())
	for i := range adjusted {
		se := vols[i] / math.Sqrt(float64(m.observations))
		adjusted[i] = m.mu[i] - u*se
	}
	pessimistic := m.withMean(adjusted)

	w, err := solve(solver.Problem{Objective: pessimistic.negSharpe, Bounds: bounds})
	if err != nil {
		return nil, err
	}

	res := pessimistic.result(MethodRobust, w)
	adjustedReturn := pessimistic.ret(w)
	originalReturn := m.ret(w)
	res.AdjustedExpectedReturn = &adjustedReturn
	res.OriginalExpectedReturn = &originalReturn
	return res, nil
}
