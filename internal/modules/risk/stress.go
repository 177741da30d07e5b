package risk

import (
	"fmt"
	"math"
	"sort"

	"github.com/aristath/sentinel-quant/internal/domain"
	"github.com/aristath/sentinel-quant/internal/modules/timeseries"
	"github.com/aristath/sentinel-quant/pkg/formulas"
)

const (
	theoreticalRecoveryWeight = 0.7
	historicalRecoveryWeight  = 0.3
	contagionCoefficient      = 0.1
)

// HistoricalScenario is a parametrized market shock.
type HistoricalScenario struct {
	Key                string  `json:"key"`
	Name               string  `json:"name"`
	Shock              float64 `json:"shock"`
	DurationDays       int     `json:"duration_days"`
	RecoveryMultiplier float64 `json:"recovery_multiplier"`
}

var historicalScenarios = map[string]HistoricalScenario{
	"2008_financial_crisis": {Name: "2008 Financial Crisis", Shock: -0.57, DurationDays: 517, RecoveryMultiplier: 2.9},
	"covid_crash":           {Name: "COVID-19 Crash", Shock: -0.34, DurationDays: 33, RecoveryMultiplier: 4.5},
	"dotcom_bust":           {Name: "Dot-com Bust", Shock: -0.49, DurationDays: 929, RecoveryMultiplier: 2.6},
	"black_monday":          {Name: "Black Monday 1987", Shock: -0.33, DurationDays: 55, RecoveryMultiplier: 7.0},
	"2022_rate_shock":       {Name: "2022 Rate Shock", Shock: -0.25, DurationDays: 282, RecoveryMultiplier: 1.8},
	"flash_crash":           {Name: "2010 Flash Crash", Shock: -0.09, DurationDays: 1, RecoveryMultiplier: 4.0},
	"european_debt_crisis":  {Name: "2011 European Debt Crisis", Shock: -0.19, DurationDays: 157, RecoveryMultiplier: 1.0},
	"oil_crash_2015":        {Name: "2015-2016 Oil Crash", Shock: -0.14, DurationDays: 266, RecoveryMultiplier: 0.6},
}

// HistoricalScenarios lists the built-in scenarios sorted by key.
func HistoricalScenarios() []HistoricalScenario {
	out := make([]HistoricalScenario, 0, len(historicalScenarios))
	for key, s := range historicalScenarios {
		s.Key = key
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// StressTestResult is the outcome of applying a historical scenario.
type StressTestResult struct {
	Scenario                HistoricalScenario `json:"scenario"`
	PortfolioValue          float64            `json:"portfolio_value"`
	Loss                    float64            `json:"loss"`
	StressedValue           float64            `json:"stressed_value"`
	RecoveryDays            float64            `json:"recovery_days"`
	TheoreticalRecoveryDays *float64           `json:"theoretical_recovery_days"`
	HistoricalRecoveryDays  float64            `json:"historical_recovery_days"`
}

// PerformStressTest applies a named historical scenario to a portfolio.
//
// Loss is value × |shock|. Recovery blends the time the portfolio's own mean daily return
// needs to undo the shock, ln(1/(1 − |shock|)) / ln(1 + mean), with the scenario's
// duration × recovery multiplier at 0.7/0.3. A non-positive mean uses the historical
// component alone. Unknown keys return ErrUnknownScenario.
func (c *Calculator) PerformStressTest(returns []float64, portfolioValue float64, key string) (*StressTestResult, error) {
	scenario, ok := historicalScenarios[key]
	if !ok {
		return nil, fmt.Errorf("stress scenario %q: %w", key, domain.ErrUnknownScenario)
	}
	scenario.Key = key

	shock := math.Abs(scenario.Shock)
	historical := float64(scenario.DurationDays) * scenario.RecoveryMultiplier
	result := &StressTestResult{
		Scenario:               scenario,
		PortfolioValue:         portfolioValue,
		Loss:                   portfolioValue * shock,
		StressedValue:          portfolioValue * (1 - shock),
		RecoveryDays:           historical,
		HistoricalRecoveryDays: historical,
	}

	meanDaily := formulas.Mean(returns)
	if meanDaily > 0 && shock < 1 {
		theoretical := math.Log(1/(1-shock)) / math.Log(1+meanDaily)
		if !math.IsNaN(theoretical) && !math.IsInf(theoretical, 0) {
			result.TheoreticalRecoveryDays = &theoretical
			result.RecoveryDays = theoreticalRecoveryWeight*theoretical + historicalRecoveryWeight*historical
		}
	} else {
		c.log.Debug().Float64("mean_daily_return", meanDaily).Msg("Non-positive drift, using historical recovery only")
	}

	return result, nil
}

// CustomStressInput describes a factor shock applied asset by asset.
type CustomStressInput struct {
	Weights        domain.WeightMapping `json:"weights"`
	PortfolioValue float64              `json:"portfolio_value"`
	MarketShock    float64              `json:"market_shock"`
	// Betas default to 1 for tickers without an entry.
	Betas        map[string]float64 `json:"betas,omitempty"`
	Sectors      map[string]string  `json:"sectors,omitempty"`
	SectorShocks map[string]float64 `json:"sector_shocks,omitempty"`
	AssetShocks  map[string]float64 `json:"asset_shocks,omitempty"`
	// Correlations enable the contagion term. When nil and Returns is set,
	// correlations are estimated from Returns.
	Correlations map[string]map[string]float64 `json:"correlations,omitempty"`
	Returns      domain.ReturnMatrix           `json:"returns,omitempty"`
	Contagion    bool                          `json:"contagion"`
}

// AssetStress is the shock applied to one asset.
type AssetStress struct {
	Ticker       string  `json:"ticker"`
	Weight       float64 `json:"weight"`
	Beta         float64 `json:"beta"`
	BaseShock    float64 `json:"base_shock"`
	Contagion    float64 `json:"contagion"`
	TotalShock   float64 `json:"total_shock"`
	Contribution float64 `json:"contribution"`
	Loss         float64 `json:"loss"`
}

// CustomStressResult is the outcome of a custom stress test.
type CustomStressResult struct {
	PortfolioImpact float64       `json:"portfolio_impact"`
	PortfolioValue  float64       `json:"portfolio_value"`
	Loss            float64       `json:"loss"`
	StressedValue   float64       `json:"stressed_value"`
	Assets          []AssetStress `json:"assets"`
}

// PerformAdvancedCustomStressTest shocks each asset by market×β + sector + asset-specific shock.
// With contagion enabled each asset also receives 0.1·ρij·shock_j summed over every other asset,
// computed in one pass from the unadjusted shocks.
func (c *Calculator) PerformAdvancedCustomStressTest(in CustomStressInput) (*CustomStressResult, error) {
	weights := in.Weights.Normalized()
	if len(weights) == 0 {
		return nil, fmt.Errorf("no positive weights supplied")
	}
	tickers := weights.Tickers()

	base := make([]float64, len(tickers))
	betas := make([]float64, len(tickers))
	for i, t := range tickers {
		beta, ok := in.Betas[t]
		if !ok {
			beta = 1.0
		}
		betas[i] = beta
		base[i] = in.MarketShock*beta + in.SectorShocks[in.Sectors[t]] + in.AssetShocks[t]
	}

	contagion := make([]float64, len(tickers))
	if in.Contagion {
		corr := in.Correlations
		if corr == nil && len(in.Returns) > 0 {
			estimated, err := correlationsFromReturns(in.Returns, tickers)
			if err != nil {
				c.log.Warn().Err(err).Msg("Could not estimate correlations, skipping contagion")
			}
			corr = estimated
		}
		contagion = contagionAdjustments(tickers, base, corr)
	}

	result := &CustomStressResult{
		PortfolioValue: in.PortfolioValue,
		Assets:         make([]AssetStress, len(tickers)),
	}
	for i, t := range tickers {
		total := base[i] + contagion[i]
		contribution := weights[t] * total
		result.PortfolioImpact += contribution
		result.Assets[i] = AssetStress{
			Ticker:       t,
			Weight:       weights[t],
			Beta:         betas[i],
			BaseShock:    base[i],
			Contagion:    contagion[i],
			TotalShock:   total,
			Contribution: contribution,
			Loss:         math.Max(0, -contribution) * in.PortfolioValue,
		}
	}
	result.Loss = math.Max(0, -result.PortfolioImpact) * in.PortfolioValue
	result.StressedValue = in.PortfolioValue * (1 + result.PortfolioImpact)
	return result, nil
}

// contagionAdjustments returns 0.1·Σ_{j≠i} ρij·base_j for every asset.
// The base vector is never modified, so the result does not depend on iteration order.
func contagionAdjustments(tickers []string, base []float64, corr map[string]map[string]float64) []float64 {
	out := make([]float64, len(tickers))
	if corr == nil {
		return out
	}
	for i, ti := range tickers {
		for j, tj := range tickers {
			if i == j {
				continue
			}
			rho, ok := corr[ti][tj]
			if !ok {
				rho = corr[tj][ti]
			}
			out[i] += contagionCoefficient * rho * base[j]
		}
	}
	return out
}

func correlationsFromReturns(matrix domain.ReturnMatrix, tickers []string) (map[string]map[string]float64, error) {
	present := make([]string, 0, len(tickers))
	for _, t := range tickers {
		if _, ok := matrix[t]; ok {
			present = append(present, t)
		}
	}
	if len(present) < 2 {
		return nil, fmt.Errorf("need returns for at least 2 assets, got %d", len(present))
	}

	_, rows := timeseries.Align(matrix, present, domain.DropIncomplete)
	if len(rows) < 2 {
		return nil, fmt.Errorf("need at least 2 aligned observations: %w", domain.ErrInsufficientData)
	}
	out := make(map[string]map[string]float64, len(present))
	for i, ti := range present {
		out[ti] = make(map[string]float64, len(present))
		xi := timeseries.Column(rows, i)
		for j, tj := range present {
			out[ti][tj] = formulas.Correlation(xi, timeseries.Column(rows, j))
		}
	}
	return out, nil
}
