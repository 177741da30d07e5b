package optimization

import (
	"math"

	"github.com/aristath/sentinel-quant/internal/domain"
	"github.com/aristath/sentinel-quant/internal/solver"
)

// costAware maximizes the Sharpe ratio of returns net of trading costs
// Σ|w − w_current|·cost_i, starting from the current weights.
func (o *Optimizer) costAware(m *model, bounds solver.Bounds, req Request) (*domain.OptimizationResult, error) {
	current := req.CurrentWeights.Normalized().Vector(m.tickers)
	held := 0.0
	for _, v := range current {
		held += v
	}
	if held <= 0 {
		o.log.Warn().Msg("No current weights for the requested tickers, starting from equal weights")
		current = domain.EqualWeights(m.tickers).Vector(m.tickers)
	} else {
		for i := range current {
			current[i] /= held
		}
	}

	defaultCost := DefaultTransactionCost
	if req.DefaultCost != nil {
		defaultCost = *req.DefaultCost
	}
	costs := make([]float64, m.n())
	for i, t := range m.tickers {
		costs[i] = defaultCost
		if c, ok := req.TransactionCosts[t]; ok {
			costs[i] = c
		}
	}

	tradingCost := func(w []float64) (cost, turnover float64) {
		for i := range w {
			d := math.Abs(w[i] - current[i])
			turnover += d
			cost += d * costs[i]
		}
		return cost, turnover
	}

	w, err := solve(solver.Problem{
		Objective: func(w []float64) float64 {
			cost, _ := tradingCost(w)
			return -(m.ret(w) - cost - m.rf) / math.Max(m.risk(w), sharpeRiskFloor)
		},
		Bounds:  bounds,
		Initial: current,
	})
	if err != nil {
		return nil, err
	}

	res := m.result(MethodCostAware, w)
	cost, turnover := tradingCost(w)
	gross := res.ExpectedReturn
	res.ExpectedReturn = gross - cost
	if res.ExpectedRisk >= volatilityFloor {
		res.SharpeRatio = (res.ExpectedReturn - m.rf) / res.ExpectedRisk
	}
	res.OriginalExpectedReturn = &gross
	res.TransactionCost = &cost
	res.Turnover = &turnover
	return res, nil
}
