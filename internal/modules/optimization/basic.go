package optimization

import (
	"fmt"

	"github.com/aristath/sentinel-quant/internal/domain"
	"github.com/aristath/sentinel-quant/internal/solver"
)

// minVariance minimizes w'Σw.
func (o *Optimizer) minVariance(m *model, bounds solver.Bounds) (*domain.OptimizationResult, error) {
	w, err := solve(solver.Problem{Objective: m.variance, Bounds: bounds})
	if err != nil {
		return nil, err
	}
	return m.result(MethodMinVariance, w), nil
}

// maxSharpe maximizes (μ'w − rf) / σ(w).
func (o *Optimizer) maxSharpe(m *model, bounds solver.Bounds) (*domain.OptimizationResult, error) {
	w, err := solve(solver.Problem{Objective: m.negSharpe, Bounds: bounds})
	if err != nil {
		return nil, err
	}
	return m.result(MethodMaxSharpe, w), nil
}

// equalWeight assigns exactly 1/N regardless of the returns. Statistics fall back to
// zero when the matrix is too thin to estimate.
func (o *Optimizer) equalWeight(matrix domain.ReturnMatrix, tickers []string, req Request) (*domain.OptimizationResult, error) {
	if len(tickers) == 0 {
		return nil, fmt.Errorf("no tickers provided: %w", domain.ErrInsufficientData)
	}
	w := make([]float64, len(tickers))
	for i := range w {
		w[i] = 1.0 / float64(len(tickers))
	}

	m, err := o.estimate(matrix, tickers, req)
	if err != nil {
		o.log.Warn().Err(err).Msg("Equal weight statistics unavailable")
		return &domain.OptimizationResult{
			Method:         string(MethodEqualWeight),
			OptimalWeights: domain.WeightsFromVector(tickers, w),
		}, nil
	}
	return m.result(MethodEqualWeight, w), nil
}
