package simulation

import (
	"fmt"

	"github.com/aristath/sentinel-quant/internal/utils"
	"github.com/aristath/sentinel-quant/internal/workers"
)

// SensitivityParameter names the single input a sensitivity run perturbs.
type SensitivityParameter string

const (
	// SensitivityMean scales every asset's expected return by the value.
	SensitivityMean SensitivityParameter = "mean_return"
	// SensitivityVolatility scales every asset's volatility by the value.
	SensitivityVolatility SensitivityParameter = "volatility"
	// SensitivityCorrelation sets every pairwise correlation to the value, keeping volatilities.
	SensitivityCorrelation SensitivityParameter = "correlation"
)

// ParseSensitivityParameter validates a parameter name.
func ParseSensitivityParameter(s string) (SensitivityParameter, error) {
	switch p := SensitivityParameter(s); p {
	case SensitivityMean, SensitivityVolatility, SensitivityCorrelation:
		return p, nil
	}
	return "", fmt.Errorf("unsupported sensitivity parameter %q", s)
}

// SensitivityRun is the projection for one perturbed value.
type SensitivityRun struct {
	Value  float64 `json:"value"`
	Result *Result `json:"result,omitempty"`
	Error  string  `json:"error,omitempty"`
}

// SensitivityResult pairs the unperturbed projection with one run per value.
type SensitivityResult struct {
	Parameter SensitivityParameter `json:"parameter"`
	Base      *Result              `json:"base"`
	Runs      []SensitivityRun     `json:"runs"`
}

// perturb returns a copy of params with exactly one parameter changed.
func perturb(params CopulaParams, parameter SensitivityParameter, value float64) CopulaParams {
	out := params
	out.Assets = append([]Asset(nil), params.Assets...)
	switch parameter {
	case SensitivityMean:
		for i := range out.Assets {
			out.Assets[i].ExpectedReturn *= value
		}
	case SensitivityVolatility:
		for i := range out.Assets {
			out.Assets[i].Volatility *= value
		}
	case SensitivityCorrelation:
		n := len(out.Assets)
		out.Correlation = make([][]float64, n)
		for i := range out.Correlation {
			out.Correlation[i] = make([]float64, n)
			for j := range out.Correlation[i] {
				out.Correlation[i][j] = value
			}
			out.Correlation[i][i] = 1
		}
	}
	return out
}

// Sensitivity reruns the copula projection once per value, perturbing only parameter.
// Runs execute on the worker pool; each starts its own generator from the engine seed,
// so results equal a sequential run. A value that makes the model invalid (a
// correlation that is not positive definite, say) reports its error in the run.
func (e *Engine) Sensitivity(params CopulaParams, parameter SensitivityParameter, values []float64) (*SensitivityResult, error) {
	if _, err := ParseSensitivityParameter(string(parameter)); err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("at least one sensitivity value is required")
	}
	base, err := e.Copula(params)
	if err != nil {
		return nil, err
	}
	defer utils.OperationTimerWithFields("sensitivity", e.log, map[string]interface{}{
		"parameter": string(parameter),
		"runs":      len(values),
	})()

	runs := workers.Map(e.pool, values, func(_ int, value float64) SensitivityRun {
		res, err := e.Copula(perturb(params, parameter, value))
		if err != nil {
			return SensitivityRun{Value: value, Error: err.Error()}
		}
		return SensitivityRun{Value: value, Result: res}
	})

	return &SensitivityResult{Parameter: parameter, Base: base, Runs: runs}, nil
}
