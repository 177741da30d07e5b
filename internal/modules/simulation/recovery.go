package simulation

import (
	"fmt"
	"math"
	"sort"

	"github.com/aristath/sentinel-quant/internal/utils"
	"github.com/aristath/sentinel-quant/pkg/formulas"
)

// RecoveryParams describes a recovery-time estimate from a drawdown.
type RecoveryParams struct {
	// ExpectedReturn and Volatility are annual.
	ExpectedReturn float64 `json:"expected_return"`
	Volatility     float64 `json:"volatility"`
	// DrawdownDepth is the loss to recover from, as a positive fraction.
	DrawdownDepth float64 `json:"drawdown_depth"`
	Simulations   int     `json:"simulations"`
	// MaxYears caps each path; 0 uses DefaultRecoveryYears.
	MaxYears float64 `json:"max_years"`
}

// RecoveryResult summarizes simulated recovery times in trading days.
// Day statistics are nil when no path recovered.
type RecoveryResult struct {
	Simulations         int      `json:"simulations"`
	RecoveredPaths      int      `json:"recovered_paths"`
	RecoveryProbability float64  `json:"recovery_probability"`
	MeanDays            *float64 `json:"mean_days"`
	MedianDays          *float64 `json:"median_days"`
	P90Days             *float64 `json:"p90_days"`
	MeanYears           *float64 `json:"mean_years"`
	CapDays             int      `json:"cap_days"`
}

// RecoveryTime simulates each path forward from 1 − depth until it is back to 1 or the
// cap is reached. Every path draws from one generator for the whole call. Unrecovered
// paths are excluded from the day statistics but count against recovery_probability.
func (e *Engine) RecoveryTime(params RecoveryParams) (*RecoveryResult, error) {
	if params.DrawdownDepth < 0 || params.DrawdownDepth >= 1 || math.IsNaN(params.DrawdownDepth) {
		return nil, fmt.Errorf("drawdown depth must be in [0, 1), got %v", params.DrawdownDepth)
	}
	maxYears := params.MaxYears
	if maxYears <= 0 {
		maxYears = DefaultRecoveryYears
	}
	capDays, err := horizon(maxYears)
	if err != nil {
		return nil, err
	}
	simulations := e.guard(params.Simulations, capDays)
	defer utils.OperationTimerWithFields("recovery_time", e.log, map[string]interface{}{
		"simulations": simulations,
		"depth":       params.DrawdownDepth,
	})()

	next := gaussianModel(params.ExpectedReturn, params.Volatility)(e.newRNG())
	recovered := make([]float64, 0, simulations)
	for s := 0; s < simulations; s++ {
		v := 1 - params.DrawdownDepth
		days := 0
		for v < 1 && days < capDays {
			v *= 1 + next()
			days++
		}
		if v >= 1 {
			recovered = append(recovered, float64(days))
		}
	}

	res := &RecoveryResult{
		Simulations:         simulations,
		RecoveredPaths:      len(recovered),
		RecoveryProbability: float64(len(recovered)) / float64(simulations),
		CapDays:             capDays,
	}
	if len(recovered) == 0 {
		e.log.Warn().Float64("depth", params.DrawdownDepth).Msg("No simulated path recovered within the cap")
		return res, nil
	}

	sort.Float64s(recovered)
	mean := formulas.Mean(recovered)
	median := formulas.PercentileSorted(recovered, 50)
	p90 := formulas.PercentileSorted(recovered, 90)
	years := mean / TradingDaysPerYear
	res.MeanDays, res.MedianDays, res.P90Days, res.MeanYears = &mean, &median, &p90, &years
	return res, nil
}
