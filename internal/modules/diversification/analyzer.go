package diversification

import (
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/aristath/sentinel-quant/internal/domain"
	"github.com/aristath/sentinel-quant/internal/modules/risk"
	"github.com/aristath/sentinel-quant/internal/modules/timeseries"
	"github.com/aristath/sentinel-quant/internal/solver"
	"github.com/aristath/sentinel-quant/internal/utils"
	"github.com/aristath/sentinel-quant/pkg/formulas"
)

// MethodMaxDiversification tags results of MaximumDiversification.
const MethodMaxDiversification = "max_diversification"

// Options configures estimation, clustering and the maximum-diversification solve.
type Options struct {
	PeriodsPerYear       float64                  `json:"periods_per_year"`
	RiskFreeRate         float64                  `json:"risk_free_rate"`
	MinWeight            float64                  `json:"min_weight"`
	MaxWeight            float64                  `json:"max_weight"`
	Linkage              formulas.Linkage         `json:"linkage"`
	Clusters             int                      `json:"clusters"`
	CorrelationThreshold float64                  `json:"correlation_threshold"`
	Policy               domain.MissingDataPolicy `json:"missing_data_policy"`
}

// DefaultOptions returns long-only bounds, daily annualization and single linkage.
func DefaultOptions() Options {
	return Options{
		PeriodsPerYear:       risk.DefaultPeriodsPerYear,
		RiskFreeRate:         0.02,
		MinWeight:            0.0,
		MaxWeight:            1.0,
		Linkage:              formulas.LinkageSingle,
		CorrelationThreshold: DefaultHighCorrelation,
		Policy:               domain.DropIncomplete,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.PeriodsPerYear <= 0 {
		o.PeriodsPerYear = d.PeriodsPerYear
	}
	if o.MaxWeight <= 0 {
		o.MaxWeight = d.MaxWeight
	}
	if o.Linkage == "" {
		o.Linkage = d.Linkage
	}
	if o.CorrelationThreshold <= 0 {
		o.CorrelationThreshold = d.CorrelationThreshold
	}
	if o.Policy == "" {
		o.Policy = d.Policy
	}
	return o
}

// Report is the composite diversification analysis of a weighted portfolio.
type Report struct {
	Tickers              []string            `json:"tickers"`
	Concentration        Concentration       `json:"concentration"`
	DiversificationRatio float64             `json:"diversification_ratio"`
	PortfolioVolatility  float64             `json:"portfolio_volatility"`
	Correlation          CorrelationSummary  `json:"correlation"`
	Hierarchical         *HierarchicalReport `json:"hierarchical_risk_contribution"`
}

// MaxDiversificationResult is an optimization result that also reports the achieved ratio.
type MaxDiversificationResult struct {
	domain.OptimizationResult
	DiversificationRatio float64 `json:"diversification_ratio"`
}

// Analyzer computes diversification analytics over a return matrix.
type Analyzer struct {
	log zerolog.Logger
}

// NewAnalyzer creates a new diversification analyzer.
func NewAnalyzer(log zerolog.Logger) *Analyzer {
	return &Analyzer{
		log: log.With().Str("component", "diversification").Logger(),
	}
}

// Analyze runs every diversification measure for weights over matrix.
// Weighted tickers without return data are dropped with a warning.
func (a *Analyzer) Analyze(matrix domain.ReturnMatrix, weights domain.WeightMapping, opts Options) (*Report, error) {
	opts = opts.withDefaults()

	held := make(domain.WeightMapping)
	for t, w := range weights.Normalized() {
		if _, ok := matrix[t]; !ok {
			a.log.Warn().Str("ticker", t).Msg("No returns for weighted ticker, dropping it")
			continue
		}
		held[t] = w
	}
	held = held.Normalized()
	tickers := held.Tickers()
	if len(tickers) == 0 {
		return nil, fmt.Errorf("no weighted tickers with returns: %w", domain.ErrInsufficientData)
	}

	est, err := timeseries.Estimate(matrix, tickers, timeseries.CovarianceOptions{
		PeriodsPerYear: opts.PeriodsPerYear,
		Policy:         opts.Policy,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to estimate covariance: %w", err)
	}

	corr, err := formulas.CorrelationMatrixFromCovariance(est.Cov)
	if err != nil {
		return nil, fmt.Errorf("failed to derive correlations: %w", err)
	}

	hier, err := HierarchicalRiskContribution(held, tickers, est.Cov, opts.Linkage, opts.Clusters)
	if err != nil {
		return nil, err
	}

	w := held.Vector(tickers)
	return &Report{
		Tickers:              tickers,
		Concentration:        Concentrations(held),
		DiversificationRatio: DiversificationRatio(w, est.Cov),
		PortfolioVolatility:  math.Sqrt(math.Max(formulas.QuadraticForm(w, est.Cov), 0)),
		Correlation:          SummarizeCorrelations(corr, tickers, opts.CorrelationThreshold),
		Hierarchical:         hier,
	}, nil
}

// MaximumDiversification finds the fully invested weights within bounds that maximize
// the diversification ratio.
func (a *Analyzer) MaximumDiversification(matrix domain.ReturnMatrix, opts Options) (*MaxDiversificationResult, error) {
	opts = opts.withDefaults()
	tickers := matrix.Tickers()
	defer utils.OperationTimerWithFields("max_diversification", a.log, map[string]interface{}{
		"assets": len(tickers),
	})()

	est, err := timeseries.Estimate(matrix, tickers, timeseries.CovarianceOptions{
		PeriodsPerYear: opts.PeriodsPerYear,
		Policy:         opts.Policy,
	})
	if err != nil {
		return nil, &domain.OptimizationError{Method: MethodMaxDiversification, Reason: err.Error(), Err: err}
	}

	res, err := solver.Minimize(solver.Problem{
		Objective: func(w []float64) float64 {
			return -DiversificationRatio(w, est.Cov)
		},
		Bounds: solver.UniformBounds(len(tickers), opts.MinWeight, opts.MaxWeight),
	})
	if err != nil {
		var infeasible *solver.InfeasibleError
		if errors.As(err, &infeasible) {
			a.log.Warn().Err(err).Msg("Maximum diversification constraints are infeasible")
		}
		return nil, &domain.OptimizationError{Method: MethodMaxDiversification, Reason: err.Error(), Err: err}
	}

	w := res.Weights
	decomposition := risk.EulerDecomposition(w, est.Cov)
	expected := 0.0
	for i := range w {
		expected += w[i] * est.Mean[i]
	}
	sharpe := 0.0
	if decomposition.Volatility > 1e-10 {
		sharpe = (expected - opts.RiskFreeRate) / decomposition.Volatility
	}

	return &MaxDiversificationResult{
		OptimizationResult: domain.OptimizationResult{
			Method:            MethodMaxDiversification,
			OptimalWeights:    domain.WeightsFromVector(tickers, w),
			ExpectedReturn:    expected,
			ExpectedRisk:      decomposition.Volatility,
			SharpeRatio:       sharpe,
			RiskContributions: domain.WeightsFromVector(tickers, decomposition.Percentage),
		},
		DiversificationRatio: DiversificationRatio(w, est.Cov),
	}, nil
}
