package simulation

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/aristath/sentinel-quant/internal/utils"
)

// Regime is a market state that scales the base return and volatility.
type Regime struct {
	Name                 string  `json:"name"`
	MeanMultiplier       float64 `json:"mean_multiplier"`
	VolatilityMultiplier float64 `json:"volatility_multiplier"`
	// Probability is the prior used to draw each path's starting regime.
	Probability float64 `json:"probability"`
}

// DefaultRegimes returns a calm normal regime and a rarer stressed one.
func DefaultRegimes() []Regime {
	return []Regime{
		{Name: "normal", MeanMultiplier: 1.0, VolatilityMultiplier: 1.0, Probability: 0.8},
		{Name: "stressed", MeanMultiplier: -0.5, VolatilityMultiplier: 2.0, Probability: 0.2},
	}
}

// DefaultTransition is the daily Markov transition matrix for DefaultRegimes.
func DefaultTransition() [][]float64 {
	return [][]float64{
		{0.98, 0.02},
		{0.05, 0.95},
	}
}

// normalizeRows checks the transition matrix is square over n regimes and rescales
// every row to sum to 1.
func normalizeRows(transition [][]float64, n int) ([][]float64, error) {
	if len(transition) != n {
		return nil, fmt.Errorf("transition matrix has %d rows for %d regimes", len(transition), n)
	}
	out := make([][]float64, n)
	for i, row := range transition {
		if len(row) != n {
			return nil, fmt.Errorf("transition row %d has %d entries for %d regimes", i, len(row), n)
		}
		total := 0.0
		for _, p := range row {
			if p < 0 || math.IsNaN(p) {
				return nil, fmt.Errorf("transition row %d has invalid probability %v", i, p)
			}
			total += p
		}
		if total <= 0 {
			return nil, fmt.Errorf("transition row %d sums to zero", i)
		}
		out[i] = make([]float64, n)
		for j, p := range row {
			out[i][j] = p / total
		}
	}
	return out, nil
}

// sampleIndex draws an index from a discrete distribution summing to total.
func sampleIndex(rng *rand.Rand, probabilities []float64, total float64) int {
	u := rng.Float64() * total
	acc := 0.0
	for i, p := range probabilities {
		acc += p
		if u < acc {
			return i
		}
	}
	return len(probabilities) - 1
}

// RegimeSwitching projects with a per-path hidden Markov regime. Each path draws its
// starting regime from the priors; every day it draws a return under the current regime
// and then a transition. Nil regimes or transition use the defaults.
func (e *Engine) RegimeSwitching(params Params, regimes []Regime, transition [][]float64) (*Result, error) {
	days, err := params.validate()
	if err != nil {
		return nil, err
	}
	if len(regimes) == 0 {
		regimes = DefaultRegimes()
		if transition == nil {
			transition = DefaultTransition()
		}
	}
	rows, err := normalizeRows(transition, len(regimes))
	if err != nil {
		return nil, err
	}

	priors := make([]float64, len(regimes))
	priorTotal := 0.0
	for i, r := range regimes {
		if r.Probability < 0 || r.VolatilityMultiplier < 0 {
			return nil, fmt.Errorf("regime %q has a negative probability or volatility multiplier", r.Name)
		}
		priors[i] = r.Probability
		priorTotal += r.Probability
	}
	if priorTotal <= 0 {
		return nil, fmt.Errorf("regime priors sum to zero")
	}

	p := e.newProjection(params.InitialValue, params.AnnualContribution, params.Years, params.Simulations, days)
	defer utils.OperationTimerWithFields("regime_switching", e.log, map[string]interface{}{
		"simulations": p.simulations,
		"regimes":     len(regimes),
	})()

	mu := params.ExpectedReturn / TradingDaysPerYear
	sigma := params.Volatility / math.Sqrt(TradingDaysPerYear)
	occupancy := make([]int, len(regimes))

	model := func(rng *rand.Rand) dailyReturns {
		state := sampleIndex(rng, priors, priorTotal)
		return func() float64 {
			occupancy[state]++
			regime := regimes[state]
			r := mu*regime.MeanMultiplier + sigma*regime.VolatilityMultiplier*rng.NormFloat64()
			state = sampleIndex(rng, rows[state], 1)
			return r
		}
	}

	res := p.summarize(p.finals(e.newRNG(), model))
	totalDays := float64(p.simulations * p.days)
	res.RegimeShares = make(map[string]float64, len(regimes))
	for i, r := range regimes {
		res.RegimeShares[r.Name] = float64(occupancy[i]) / totalDays
	}
	return res, nil
}
