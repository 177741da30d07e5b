package domain

// PortfolioStatistics is the (return, risk, Sharpe) triple for a weight mapping.
// It is recomputed whenever inputs change, never mutated.
type PortfolioStatistics struct {
	ExpectedReturn float64 `json:"expected_return"`
	ExpectedRisk   float64 `json:"expected_risk"`
	SharpeRatio    float64 `json:"sharpe_ratio"`
}

// FrontierPoint is one point of an efficient frontier.
type FrontierPoint struct {
	Return  float64       `json:"return"`
	Risk    float64       `json:"risk"`
	Sharpe  float64       `json:"sharpe_ratio"`
	Weights WeightMapping `json:"weights"`
}

// ScenarioOutcome reports portfolio statistics under one conditional scenario.
type ScenarioOutcome struct {
	Name           string  `json:"name"`
	Probability    float64 `json:"probability"`
	ExpectedReturn float64 `json:"expected_return"`
	ExpectedRisk   float64 `json:"expected_risk"`
}

// OptimizationResult is produced once per optimizer call.
// Method-specific extras are nil when they do not apply.
type OptimizationResult struct {
	Method         string        `json:"method"`
	OptimalWeights WeightMapping `json:"optimal_weights"`
	ExpectedReturn float64       `json:"expected_return"`
	ExpectedRisk   float64       `json:"expected_risk"`
	SharpeRatio    float64       `json:"sharpe_ratio"`

	RiskContributions      map[string]float64 `json:"risk_contributions,omitempty"`
	EfficientFrontier      []FrontierPoint    `json:"efficient_frontier,omitempty"`
	ESGScore               *float64           `json:"esg_score,omitempty"`
	AdjustedExpectedReturn *float64           `json:"adjusted_expected_return,omitempty"`
	OriginalExpectedReturn *float64           `json:"original_expected_return,omitempty"`
	TransactionCost        *float64           `json:"transaction_cost,omitempty"`
	Turnover               *float64           `json:"turnover,omitempty"`
	GroupWeights           map[string]float64 `json:"group_weights,omitempty"`
	ScenarioBreakdown      []ScenarioOutcome  `json:"scenario_breakdown,omitempty"`
}

// Statistics returns the headline statistics of the result.
func (r *OptimizationResult) Statistics() PortfolioStatistics {
	return PortfolioStatistics{
		ExpectedReturn: r.ExpectedReturn,
		ExpectedRisk:   r.ExpectedRisk,
		SharpeRatio:    r.SharpeRatio,
	}
}
