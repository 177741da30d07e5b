package optimization

import (
	"fmt"

	"github.com/aristath/sentinel-quant/internal/solver"
)

// ConstraintsSummary describes the weight bounds of a request for diagnostics.
type ConstraintsSummary struct {
	Assets             int     `json:"assets"`
	AssetsWithOverride int     `json:"assets_with_override"`
	TotalMinWeight     float64 `json:"total_min_weight"`
	TotalMaxWeight     float64 `json:"total_max_weight"`
}

// buildBounds translates the uniform and per-ticker weight limits into solver bounds.
func buildBounds(tickers []string, req Request) (solver.Bounds, error) {
	lo, hi := req.MinWeight, req.MaxWeight
	if hi <= 0 {
		hi = 1.0
	}
	bounds := solver.UniformBounds(len(tickers), lo, hi)
	for i, t := range tickers {
		if v, ok := req.MinWeights[t]; ok {
			bounds.Lower[i] = v
		}
		if v, ok := req.MaxWeights[t]; ok {
			bounds.Upper[i] = v
		}
	}
	if err := validateBounds(tickers, bounds); err != nil {
		return solver.Bounds{}, err
	}
	return bounds, nil
}

// validateBounds checks that the limits admit a fully invested portfolio.
func validateBounds(tickers []string, bounds solver.Bounds) error {
	totalMin, totalMax := 0.0, 0.0
	for i, t := range tickers {
		lo, hi := bounds.Lower[i], bounds.Upper[i]
		if lo < 0 {
			return fmt.Errorf("ticker %s has negative lower bound %.4f", t, lo)
		}
		if lo > hi {
			return fmt.Errorf("ticker %s has invalid bounds: lower=%.4f > upper=%.4f", t, lo, hi)
		}
		totalMin += lo
		totalMax += hi
	}
	if totalMin > 1.0+solver.FeasibilityTolerance {
		return &solver.InfeasibleError{Reason: fmt.Sprintf("total minimum weights %.2f%% exceed 100%%", totalMin*100)}
	}
	if totalMax < 1.0-solver.FeasibilityTolerance {
		return &solver.InfeasibleError{Reason: fmt.Sprintf("total maximum weights %.2f%% are below 100%%", totalMax*100)}
	}
	return nil
}

// summarizeConstraints reports the bounds a request resolved to.
func summarizeConstraints(tickers []string, req Request, bounds solver.Bounds) ConstraintsSummary {
	summary := ConstraintsSummary{Assets: len(tickers)}
	for i, t := range tickers {
		_, hasMin := req.MinWeights[t]
		_, hasMax := req.MaxWeights[t]
		if hasMin || hasMax {
			summary.AssetsWithOverride++
		}
		summary.TotalMinWeight += bounds.Lower[i]
		summary.TotalMaxWeight += bounds.Upper[i]
	}
	return summary
}
