// Package comparison puts several candidate portfolios side by side on the same
// return history.
package comparison

import (
	"fmt"
	"math"
	"sort"

	"github.com/rs/zerolog"

	"github.com/aristath/sentinel-quant/internal/domain"
	"github.com/aristath/sentinel-quant/internal/modules/diversification"
	"github.com/aristath/sentinel-quant/internal/modules/performance"
	"github.com/aristath/sentinel-quant/internal/modules/risk"
	"github.com/aristath/sentinel-quant/internal/modules/timeseries"
	"github.com/aristath/sentinel-quant/internal/utils"
)

// Confidence is the VaR/CVaR level reported for every portfolio.
const Confidence = 0.95

// Options configures one comparison.
type Options struct {
	PeriodsPerYear float64 `json:"periods_per_year"`
	RiskFreeRate   float64 `json:"risk_free_rate"`
	// Baseline names the portfolio differences are taken against; empty means the
	// first name alphabetically.
	Baseline string                   `json:"baseline"`
	Policy   domain.MissingDataPolicy `json:"missing_data_policy"`
}

// Metrics are the per-portfolio statistics being compared.
type Metrics struct {
	AnnualReturn float64 `json:"annual_return"`
	Volatility   float64 `json:"volatility"`
	Sharpe       float64 `json:"sharpe_ratio"`
	Sortino      float64 `json:"sortino_ratio"`
	MaxDrawdown  float64 `json:"max_drawdown"`
	VaR95        float64 `json:"var_95"`
	CVaR95       float64 `json:"cvar_95"`
	EffectiveN   float64 `json:"effective_n"`
	HHI          float64 `json:"hhi"`
}

// metric describes how to read and rank one field of Metrics.
type metric struct {
	name           string
	get            func(Metrics) float64
	higherIsBetter bool
}

var metrics = []metric{
	{"annual_return", func(m Metrics) float64 { return m.AnnualReturn }, true},
	{"volatility", func(m Metrics) float64 { return m.Volatility }, false},
	{"sharpe_ratio", func(m Metrics) float64 { return m.Sharpe }, true},
	{"sortino_ratio", func(m Metrics) float64 { return m.Sortino }, true},
	{"max_drawdown", func(m Metrics) float64 { return m.MaxDrawdown }, false},
	{"var_95", func(m Metrics) float64 { return m.VaR95 }, false},
	{"cvar_95", func(m Metrics) float64 { return m.CVaR95 }, false},
	{"effective_n", func(m Metrics) float64 { return m.EffectiveN }, true},
	{"hhi", func(m Metrics) float64 { return m.HHI }, false},
}

// Report is the outcome of a comparison.
type Report struct {
	Baseline   string             `json:"baseline"`
	Portfolios map[string]Metrics `json:"portfolios"`
	// Differences holds each non-baseline portfolio's metrics minus the baseline's.
	Differences map[string]Metrics `json:"differences"`
	// Best maps metric name to the winning portfolio; ties go to the first name alphabetically.
	Best map[string]string `json:"best"`
	// Overlap is Σ min(wa, wb) over normalized weights for every pair.
	Overlap map[string]map[string]float64 `json:"overlap"`
}

// Comparer compares portfolios.
type Comparer struct {
	risk *risk.Calculator
	log  zerolog.Logger
}

// NewComparer creates a new comparer that uses calc for VaR and CVaR.
func NewComparer(calc *risk.Calculator, log zerolog.Logger) *Comparer {
	return &Comparer{
		risk: calc,
		log:  log.With().Str("component", "comparison").Logger(),
	}
}

// Compare evaluates every portfolio over matrix.
func (c *Comparer) Compare(matrix domain.ReturnMatrix, portfolios map[string]domain.WeightMapping, opts Options) (*Report, error) {
	if len(portfolios) == 0 {
		return nil, fmt.Errorf("no portfolios to compare")
	}
	names := make([]string, 0, len(portfolios))
	for name := range portfolios {
		names = append(names, name)
	}
	sort.Strings(names)

	baseline := opts.Baseline
	if baseline == "" {
		baseline = names[0]
	}
	if _, ok := portfolios[baseline]; !ok {
		return nil, fmt.Errorf("baseline portfolio %q not found", baseline)
	}
	if opts.PeriodsPerYear <= 0 {
		opts.PeriodsPerYear = performance.DefaultPeriodsPerYear
	}
	defer utils.OperationTimerWithFields("compare", c.log, map[string]interface{}{
		"portfolios": len(names),
	})()

	report := &Report{
		Baseline:    baseline,
		Portfolios:  make(map[string]Metrics, len(names)),
		Differences: make(map[string]Metrics, len(names)-1),
		Best:        make(map[string]string, len(metrics)),
		Overlap:     make(map[string]map[string]float64, len(names)),
	}
	for _, name := range names {
		report.Portfolios[name] = c.metrics(name, matrix, portfolios[name], opts)
	}

	base := report.Portfolios[baseline]
	for _, name := range names {
		if name != baseline {
			report.Differences[name] = subtract(report.Portfolios[name], base)
		}
	}

	for _, m := range metrics {
		best := names[0]
		for _, name := range names[1:] {
			v, cur := m.get(report.Portfolios[name]), m.get(report.Portfolios[best])
			if (m.higherIsBetter && v > cur) || (!m.higherIsBetter && v < cur) {
				best = name
			}
		}
		report.Best[m.name] = best
	}

	for _, a := range names {
		report.Overlap[a] = make(map[string]float64, len(names))
		for _, b := range names {
			report.Overlap[a][b] = Overlap(portfolios[a], portfolios[b])
		}
	}
	return report, nil
}

func (c *Comparer) metrics(name string, matrix domain.ReturnMatrix, weights domain.WeightMapping, opts Options) Metrics {
	norm := weights.Normalized()
	m := Metrics{
		EffectiveN: diversification.EffectiveN(norm),
		HHI:        diversification.HHI(norm),
	}

	returns := timeseries.PortfolioReturn(matrix, norm, opts.Policy).Values
	if len(returns) == 0 {
		c.log.Warn().Str("portfolio", name).Msg("Portfolio has no return observations, return metrics are zero")
		return m
	}
	perf := performance.Options{PeriodsPerYear: opts.PeriodsPerYear, RiskFreeRate: opts.RiskFreeRate}
	m.AnnualReturn = timeseries.AnnualizedReturn(returns, opts.PeriodsPerYear, false)
	m.Volatility = risk.Volatility(returns, opts.PeriodsPerYear)
	m.Sharpe = performance.SharpeRatio(returns, perf)
	m.Sortino = performance.SortinoRatio(returns, perf)
	m.MaxDrawdown = risk.MaxDrawdown(returns)
	m.VaR95 = c.risk.VaR(returns, Confidence, 1, risk.VaRHistorical)
	m.CVaR95 = c.risk.CVaR(returns, Confidence, risk.VaRHistorical)
	return m
}

func subtract(a, b Metrics) Metrics {
	return Metrics{
		AnnualReturn: a.AnnualReturn - b.AnnualReturn,
		Volatility:   a.Volatility - b.Volatility,
		Sharpe:       a.Sharpe - b.Sharpe,
		Sortino:      a.Sortino - b.Sortino,
		MaxDrawdown:  a.MaxDrawdown - b.MaxDrawdown,
		VaR95:        a.VaR95 - b.VaR95,
		CVaR95:       a.CVaR95 - b.CVaR95,
		EffectiveN:   a.EffectiveN - b.EffectiveN,
		HHI:          a.HHI - b.HHI,
	}
}

// Overlap is Σ min(wa, wb) over the normalized weights: 1 for identical portfolios,
// 0 for portfolios with no holding in common.
func Overlap(a, b domain.WeightMapping) float64 {
	na, nb := a.Normalized(), b.Normalized()
	total := 0.0
	for t, wa := range na {
		if wb, ok := nb[t]; ok {
			total += math.Min(wa, wb)
		}
	}
	return total
}
