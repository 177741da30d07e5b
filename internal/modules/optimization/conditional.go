package optimization

import (
	"fmt"
	"math"

	"github.com/aristath/sentinel-quant/internal/domain"
	"github.com/aristath/sentinel-quant/internal/solver"
)

// BaseScenario names the unshifted state in conditional optimization.
const BaseScenario = "base"

// conditionalStates prepends the base case with probability 1 − Σp.
func conditionalStates(scenarios []Scenario) ([]Scenario, error) {
	total := 0.0
	for _, s := range scenarios {
		if s.Probability < 0 || s.Probability > 1 || math.IsNaN(s.Probability) {
			return nil, fmt.Errorf("scenario %q has invalid probability %.4f", s.Name, s.Probability)
		}
		if s.VolatilityMultiplier < 0 {
			return nil, fmt.Errorf("scenario %q has negative volatility multiplier", s.Name)
		}
		total += s.Probability
	}
	if total > 1+1e-9 {
		return nil, fmt.Errorf("scenario probabilities sum to %.4f, above 1", total)
	}

	states := make([]Scenario, 0, len(scenarios)+1)
	states = append(states, Scenario{Name: BaseScenario, Probability: math.Max(0, 1-total), VolatilityMultiplier: 1})
	for _, s := range scenarios {
		if s.VolatilityMultiplier == 0 {
			s.VolatilityMultiplier = 1
		}
		states = append(states, s)
	}
	return states, nil
}

// conditional maximizes the probability-weighted Sharpe ratio across the base case and
// the requested scenarios. Each scenario shifts every expected return and scales every
// volatility.
func (o *Optimizer) conditional(m *model, bounds solver.Bounds, req Request) (*domain.OptimizationResult, error) {
	states, err := conditionalStates(req.Scenarios)
	if err != nil {
		return nil, err
	}

	blended := func(w []float64) (ret, risk float64) {
		base, sigma := m.ret(w), m.risk(w)
		for _, s := range states {
			ret += s.Probability * (base + s.ReturnShift)
			risk += s.Probability * s.VolatilityMultiplier * sigma
		}
		return ret, risk
	}

	w, err := solve(solver.Problem{
		Objective: func(w []float64) float64 {
			ret, risk := blended(w)
			return -(ret - m.rf) / math.Max(risk, sharpeRiskFloor)
		},
		Bounds: bounds,
	})
	if err != nil {
		return nil, err
	}

	res := m.result(MethodConditional, w)
	ret, risk := blended(w)
	res.ExpectedReturn = ret
	res.ExpectedRisk = risk
	res.SharpeRatio = 0
	if risk >= volatilityFloor {
		res.SharpeRatio = (ret - m.rf) / risk
	}

	base, sigma := m.ret(w), m.risk(w)
	for _, s := range states {
		res.ScenarioBreakdown = append(res.ScenarioBreakdown, domain.ScenarioOutcome{
			Name:           s.Name,
			Probability:    s.Probability,
			ExpectedReturn: base + s.ReturnShift,
			ExpectedRisk:   sigma * s.VolatilityMultiplier,
		})
	}
	return res, nil
}
