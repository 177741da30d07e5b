package optimization

import (
	"gonum.org/v1/gonum/floats"

	"github.com/aristath/sentinel-quant/internal/domain"
	"github.com/aristath/sentinel-quant/internal/solver"
)

// markowitz solves the mean-variance problem selected by the request targets:
//   - TargetReturn: minimize w'Σw subject to μ'w = target
//   - TargetRisk: maximize μ'w subject to σ(w) = target
//   - neither: maximize the Sharpe ratio
//
// The result always carries the efficient frontier.
func (o *Optimizer) markowitz(m *model, bounds solver.Bounds, req Request) (*domain.OptimizationResult, error) {
	var (
		w   []float64
		err error
	)
	switch {
	case req.TargetReturn != nil:
		w, err = minVarianceForReturn(m, bounds, *req.TargetReturn)
	case req.TargetRisk != nil:
		target := *req.TargetRisk
		w, err = solve(solver.Problem{
			Objective: func(w []float64) float64 { return -m.ret(w) },
			Bounds:    bounds,
			Equalities: []solver.Equality{{
				Name: "target_risk",
				Func: func(w []float64) float64 { return m.risk(w) - target },
			}},
		})
	default:
		w, err = solve(solver.Problem{Objective: m.negSharpe, Bounds: bounds})
	}
	if err != nil {
		return nil, err
	}

	res := m.result(MethodMarkowitz, w)
	res.EfficientFrontier = o.frontier(m, bounds, req.FrontierPoints)
	return res, nil
}

func minVarianceForReturn(m *model, bounds solver.Bounds, target float64) ([]float64, error) {
	return solve(solver.Problem{
		Objective: m.variance,
		Bounds:    bounds,
		Equalities: []solver.Equality{{
			Name: "target_return",
			Func: func(w []float64) float64 { return m.ret(w) - target },
		}},
	})
}

// frontier traces minimum-variance portfolios for target returns spaced evenly between
// the lowest and highest asset expected return. Targets the bounds cannot reach are skipped.
func (o *Optimizer) frontier(m *model, bounds solver.Bounds, points int) []domain.FrontierPoint {
	if points <= 0 {
		points = DefaultFrontierPoints
	}
	lo, hi := floats.Min(m.mu), floats.Max(m.mu)
	targets := []float64{lo}
	if points > 1 && hi-lo > 1e-12 {
		targets = floats.Span(make([]float64, points), lo, hi)
	}

	out := make([]domain.FrontierPoint, 0, len(targets))
	skipped := 0
	for _, target := range targets {
		w, err := minVarianceForReturn(m, bounds, target)
		if err != nil {
			skipped++
			continue
		}
		out = append(out, domain.FrontierPoint{
			Return:  m.ret(w),
			Risk:    m.risk(w),
			Sharpe:  m.sharpe(w),
			Weights: domain.WeightsFromVector(m.tickers, w),
		})
	}
	if skipped > 0 {
		o.log.Debug().Int("skipped", skipped).Int("points", len(targets)).Msg("Skipped unreachable frontier targets")
	}
	return out
}
