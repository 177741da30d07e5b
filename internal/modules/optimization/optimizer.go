// Package optimization builds fully invested, box-bounded portfolios: mean-variance,
// risk parity, minimum variance, maximum Sharpe, equal weight, the robust, cost-aware,
// conditional, ESG and grouped variants, and Hierarchical Risk Parity.
package optimization

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/aristath/sentinel-quant/internal/domain"
	"github.com/aristath/sentinel-quant/internal/modules/timeseries"
	"github.com/aristath/sentinel-quant/internal/solver"
	"github.com/aristath/sentinel-quant/internal/utils"
	"github.com/aristath/sentinel-quant/pkg/formulas"
)

// Method names an optimization objective.
type Method string

const (
	MethodMarkowitz    Method = "markowitz"
	MethodRiskParity   Method = "risk_parity"
	MethodMinVariance  Method = "min_variance"
	MethodMaxSharpe    Method = "max_sharpe"
	MethodEqualWeight  Method = "equal_weight"
	MethodRobust       Method = "robust"
	MethodCostAware    Method = "cost_aware"
	MethodConditional  Method = "conditional"
	MethodESG          Method = "esg"
	MethodHierarchical Method = "hierarchical"
	MethodHRP          Method = "hrp"
)

// Methods lists every supported method.
func Methods() []Method {
	return []Method{
		MethodMarkowitz, MethodRiskParity, MethodMinVariance, MethodMaxSharpe, MethodEqualWeight,
		MethodRobust, MethodCostAware, MethodConditional, MethodESG, MethodHierarchical, MethodHRP,
	}
}

// ParseMethod validates a method name. Unknown names wrap domain.ErrUnknownMethod.
func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Methods() {
		if m == known {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %q", domain.ErrUnknownMethod, s)
}

const (
	// DefaultFrontierPoints is the number of target returns traced on the efficient frontier.
	DefaultFrontierPoints = 50
	// DefaultUncertaintyLevel scales the standard-error haircut of the robust method.
	DefaultUncertaintyLevel = 0.1
	// DefaultTransactionCost is the proportional cost per unit of turnover.
	DefaultTransactionCost = 0.001
	// DefaultPeriodsPerYear annualizes daily estimates.
	DefaultPeriodsPerYear = 252.0
	// OtherGroup collects tickers that belong to no group in hierarchical optimization.
	OtherGroup = "other"
)

// Scenario is a conditional-optimization state of the world.
type Scenario struct {
	Name        string  `json:"name"`
	Probability float64 `json:"probability"`
	// ReturnShift is added to every asset's annual expected return.
	ReturnShift float64 `json:"return_shift"`
	// VolatilityMultiplier scales every asset's volatility; 0 means 1.
	VolatilityMultiplier float64 `json:"volatility_multiplier"`
}

// Request carries the inputs of one optimization.
type Request struct {
	Method Method `json:"method"`
	// Tickers restricts the matrix; empty means every ticker.
	Tickers []string `json:"tickers,omitempty"`

	MinWeight float64 `json:"min_weight"`
	// MaxWeight defaults to 1.
	MaxWeight float64 `json:"max_weight"`
	// MinWeights and MaxWeights override the uniform bounds per ticker.
	MinWeights map[string]float64 `json:"min_weights,omitempty"`
	MaxWeights map[string]float64 `json:"max_weights,omitempty"`

	RiskFreeRate *float64                 `json:"risk_free_rate,omitempty"`
	Shrinkage    bool                     `json:"shrinkage"`
	Policy       domain.MissingDataPolicy `json:"missing_data_policy,omitempty"`

	// markowitz
	TargetReturn   *float64 `json:"target_return,omitempty"`
	TargetRisk     *float64 `json:"target_risk,omitempty"`
	FrontierPoints int      `json:"frontier_points,omitempty"`

	// risk_parity
	RiskBudget map[string]float64 `json:"risk_budget,omitempty"`

	// robust
	UncertaintyLevel *float64 `json:"uncertainty_level,omitempty"`

	// cost_aware
	CurrentWeights   domain.WeightMapping `json:"current_weights,omitempty"`
	TransactionCosts map[string]float64   `json:"transaction_costs,omitempty"`
	DefaultCost      *float64             `json:"default_transaction_cost,omitempty"`

	// conditional
	Scenarios []Scenario `json:"scenarios,omitempty"`

	// esg
	ESGScores map[string]float64 `json:"esg_scores,omitempty"`
	TargetESG *float64           `json:"target_esg,omitempty"`

	// hierarchical
	Groups map[string][]string `json:"groups,omitempty"`

	// hrp
	Linkage formulas.Linkage `json:"linkage,omitempty"`
}

// Options configures an Optimizer.
type Options struct {
	PeriodsPerYear float64
	RiskFreeRate   float64
}

// Optimizer runs portfolio optimizations over return matrices.
type Optimizer struct {
	ppy float64
	rf  float64
	log zerolog.Logger
}

// NewOptimizer creates a new optimizer.
func NewOptimizer(opts Options, log zerolog.Logger) *Optimizer {
	if opts.PeriodsPerYear <= 0 {
		opts.PeriodsPerYear = DefaultPeriodsPerYear
	}
	return &Optimizer{
		ppy: opts.PeriodsPerYear,
		rf:  opts.RiskFreeRate,
		log: log.With().Str("component", "optimizer").Logger(),
	}
}

// Optimize runs req.Method over matrix. Every failure is an *domain.OptimizationError;
// unknown methods also match domain.ErrUnknownMethod.
func (o *Optimizer) Optimize(matrix domain.ReturnMatrix, req Request) (*domain.OptimizationResult, error) {
	method, err := ParseMethod(string(req.Method))
	if err != nil {
		return nil, &domain.OptimizationError{Method: string(req.Method), Reason: err.Error(), Err: err}
	}
	req.Method = method

	tickers := req.Tickers
	if len(tickers) == 0 {
		tickers = matrix.Tickers()
	}
	defer utils.OperationTimerWithFields("optimize", o.log, map[string]interface{}{
		"method": string(method),
		"assets": len(tickers),
	})()

	res, err := o.dispatch(matrix, tickers, req)
	if err != nil {
		o.log.Warn().Err(err).Str("method", string(method)).Msg("Optimization failed")
		return nil, asOptimizationError(method, err)
	}
	return res, nil
}

func (o *Optimizer) dispatch(matrix domain.ReturnMatrix, tickers []string, req Request) (*domain.OptimizationResult, error) {
	if req.Method == MethodEqualWeight {
		return o.equalWeight(matrix, tickers, req)
	}
	if req.Method == MethodHierarchical {
		return o.hierarchical(matrix, tickers, req)
	}

	m, err := o.estimate(matrix, tickers, req)
	if err != nil {
		return nil, err
	}
	bounds, err := buildBounds(tickers, req)
	if err != nil {
		return nil, err
	}
	summary := summarizeConstraints(tickers, req, bounds)
	o.log.Debug().
		Int("assets", summary.Assets).
		Int("assets_with_override", summary.AssetsWithOverride).
		Float64("total_min_weight", summary.TotalMinWeight).
		Float64("total_max_weight", summary.TotalMaxWeight).
		Msg("Resolved weight bounds")

	switch req.Method {
	case MethodMarkowitz:
		return o.markowitz(m, bounds, req)
	case MethodRiskParity:
		return o.riskParity(m, bounds, req)
	case MethodMinVariance:
		return o.minVariance(m, bounds)
	case MethodMaxSharpe:
		return o.maxSharpe(m, bounds)
	case MethodRobust:
		return o.robust(m, bounds, req)
	case MethodCostAware:
		return o.costAware(m, bounds, req)
	case MethodConditional:
		return o.conditional(m, bounds, req)
	case MethodESG:
		return o.esg(m, bounds, req)
	case MethodHRP:
		return o.hrp(m, bounds, req)
	}
	return nil, fmt.Errorf("%w: %q", domain.ErrUnknownMethod, req.Method)
}

// Statistics computes expected return, risk and Sharpe ratio of weights over matrix.
// Weights are normalized and restricted to tickers with returns; anything that cannot
// be estimated yields zero statistics with a warning.
func (o *Optimizer) Statistics(matrix domain.ReturnMatrix, weights domain.WeightMapping) domain.PortfolioStatistics {
	held := make(domain.WeightMapping)
	for t, w := range weights.Normalized() {
		if _, ok := matrix[t]; ok {
			held[t] = w
		}
	}
	held = held.Normalized()
	tickers := held.Tickers()
	if len(tickers) == 0 {
		o.log.Warn().Msg("No weighted tickers with returns, statistics are zero")
		return domain.PortfolioStatistics{}
	}

	m, err := o.estimate(matrix, tickers, Request{})
	if err != nil {
		o.log.Warn().Err(err).Msg("Cannot estimate portfolio statistics")
		return domain.PortfolioStatistics{}
	}
	w := held.Vector(tickers)
	return domain.PortfolioStatistics{
		ExpectedReturn: m.ret(w),
		ExpectedRisk:   m.risk(w),
		SharpeRatio:    m.sharpe(w),
	}
}

func (o *Optimizer) riskFree(req Request) float64 {
	if req.RiskFreeRate != nil {
		return *req.RiskFreeRate
	}
	return o.rf
}

func (o *Optimizer) estimate(matrix domain.ReturnMatrix, tickers []string, req Request) (*model, error) {
	est, err := timeseries.Estimate(matrix, tickers, timeseries.CovarianceOptions{
		PeriodsPerYear: o.ppy,
		Shrinkage:      req.Shrinkage,
		Policy:         req.Policy,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to estimate returns: %w", err)
	}
	return newModel(est, o.riskFree(req)), nil
}

func asOptimizationError(method Method, err error) *domain.OptimizationError {
	var optErr *domain.OptimizationError
	if errors.As(err, &optErr) {
		if optErr.Method == "" {
			optErr.Method = string(method)
		}
		return optErr
	}
	return &domain.OptimizationError{Method: string(method), Reason: err.Error(), Err: err}
}

// solve wraps solver.Minimize so constraint failures keep their infeasibility reason.
func solve(p solver.Problem) ([]float64, error) {
	res, err := solver.Minimize(p)
	if err != nil {
		return nil, err
	}
	return res.Weights, nil
}
