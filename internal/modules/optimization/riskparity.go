package optimization

import (
	"github.com/aristath/sentinel-quant/internal/domain"
	"github.com/aristath/sentinel-quant/internal/solver"
	"github.com/aristath/sentinel-quant/pkg/formulas"
)

// riskParity minimizes Σ(rc_i − b_i)² where rc is the percentage Euler contribution
// and b the risk budget.
func (o *Optimizer) riskParity(m *model, bounds solver.Bounds, req Request) (*domain.OptimizationResult, error) {
	budget := o.riskBudget(m.tickers, req.RiskBudget)

	w, err := solve(solver.Problem{
		Objective: func(w []float64) float64 {
			marginal := formulas.MatVec(m.cov, w)
			variance := formulas.QuadraticForm(w, m.cov)
			if variance <= 0 {
				return degenerateObjective
			}
			dev := 0.0
			for i := range w {
				d := w[i]*marginal[i]/variance - budget[i]
				dev += d * d
			}
			return dev
		},
		Bounds: bounds,
	})
	if err != nil {
		return nil, err
	}
	return m.result(MethodRiskParity, w), nil
}

// riskBudget normalizes the requested budgets over tickers; missing tickers get 0.
// An empty or non-positive budget is equal risk.
func (o *Optimizer) riskBudget(tickers []string, requested map[string]float64) []float64 {
	if len(requested) > 0 {
		b := domain.WeightMapping(requested).Normalized().Vector(tickers)
		total := 0.0
		for _, v := range b {
			total += v
		}
		if total > 0 {
			for i := range b {
				b[i] /= total
			}
			return b
		}
		o.log.Warn().Msg("Risk budget has no positive entry for the requested tickers, using equal risk")
	}
	return domain.EqualWeights(tickers).Vector(tickers)
}
