package optimization

import (
	"math"

	"github.com/aristath/sentinel-quant/internal/domain"
	"github.com/aristath/sentinel-quant/internal/solver"
)

// esg either maximizes the Sharpe ratio subject to Σw·score = TargetESG, or, without a
// target, minimizes 0.5·(−Sharpe) + 0.5·(−Σw·score / max|score|). The blend is a fixed
// heuristic, not a Pareto frontier. Tickers without a score count as 0.
func (o *Optimizer) esg(m *model, bounds solver.Bounds, req Request) (*domain.OptimizationResult, error) {
	scores := make([]float64, m.n())
	scale := 0.0
	for i, t := range m.tickers {
		s, ok := req.ESGScores[t]
		if !ok {
			o.log.Warn().Str("ticker", t).Msg("No ESG score, treating it as 0")
		}
		scores[i] = s
		scale = math.Max(scale, math.Abs(s))
	}
	if scale == 0 {
		scale = 1
	}
	score := func(w []float64) float64 {
		total := 0.0
		for i := range w {
			total += w[i] * scores[i]
		}
		return total
	}

	problem := solver.Problem{Bounds: bounds}
	if req.TargetESG != nil {
		target := *req.TargetESG
		problem.Objective = m.negSharpe
		problem.Equalities = []solver.Equality{{
			Name: "target_esg",
			// Residual is in units of max|score|.
			Func: func(w []float64) float64 { return (score(w) - target) / scale },
		}}
	} else {
		problem.Objective = func(w []float64) float64 {
			return 0.5*m.negSharpe(w) - 0.5*score(w)/scale
		}
	}

	w, err := solve(problem)
	if err != nil {
		return nil, err
	}
	res := m.result(MethodESG, w)
	achieved := score(w)
	res.ESGScore = &achieved
	return res, nil
}
