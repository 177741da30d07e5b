// Package performance computes risk-adjusted return ratios, benchmark-relative
// statistics and period return breakdowns.
package performance

import (
	"math"

	"github.com/aristath/sentinel-quant/internal/modules/risk"
	"github.com/aristath/sentinel-quant/internal/modules/timeseries"
	"github.com/aristath/sentinel-quant/pkg/formulas"
)

const (
	// UnboundedRatio stands in for an infinite ratio when there is no downside,
	// keeping results JSON-serializable.
	UnboundedRatio = 100.0

	// DefaultPeriodsPerYear is the number of trading days used to annualize.
	DefaultPeriodsPerYear = 252.0
	// DefaultRiskFreeRate is the annual risk-free rate.
	DefaultRiskFreeRate = 0.02

	volatilityFloor = 1e-10
)

// Options carries the annualization convention shared by every ratio.
type Options struct {
	PeriodsPerYear float64 `json:"periods_per_year"`
	// RiskFreeRate is annual, as a decimal.
	RiskFreeRate float64 `json:"risk_free_rate"`
}

// DefaultOptions returns daily periods and a 2% risk-free rate.
func DefaultOptions() Options {
	return Options{PeriodsPerYear: DefaultPeriodsPerYear, RiskFreeRate: DefaultRiskFreeRate}
}

func (o Options) ppy() float64 {
	if o.PeriodsPerYear <= 0 {
		return DefaultPeriodsPerYear
	}
	return o.PeriodsPerYear
}

func (o Options) periodicRiskFree() float64 {
	return o.RiskFreeRate / o.ppy()
}

// AnnualizedMean is the arithmetic mean return × periods per year.
func AnnualizedMean(returns []float64, opts Options) float64 {
	return formulas.Mean(returns) * opts.ppy()
}

// SharpeRatio calculates the annualized Sharpe ratio.
//
// Formula:
//
//	Sharpe = mean(r − rf/ppy) × ppy / (std(r) × √ppy)
//
// Volatility below 1e-10 yields 0.
func SharpeRatio(returns []float64, opts Options) float64 {
	if len(returns) < 2 {
		return 0.0
	}
	vol := formulas.StdDev(returns) * math.Sqrt(opts.ppy())
	if vol < volatilityFloor {
		return 0.0
	}
	excess := (formulas.Mean(returns) - opts.periodicRiskFree()) * opts.ppy()
	return excess / vol
}

// SortinoRatio calculates the annualized Sortino ratio.
//
// Formula:
//
//	Downside = sqrt(mean(e²) over negative excess returns e) × √ppy
//	Sortino  = mean(r − rf/ppy) × ppy / Downside
//
// A series with no negative excess return yields UnboundedRatio.
func SortinoRatio(returns []float64, opts Options) float64 {
	if len(returns) == 0 {
		return 0.0
	}
	rf := opts.periodicRiskFree()
	sumSq := 0.0
	negatives := 0
	for _, r := range returns {
		if e := r - rf; e < 0 {
			sumSq += e * e
			negatives++
		}
	}
	if negatives == 0 {
		return UnboundedRatio
	}
	downside := math.Sqrt(sumSq/float64(negatives)) * math.Sqrt(opts.ppy())
	if downside < volatilityFloor {
		return 0.0
	}
	return (formulas.Mean(returns) - rf) * opts.ppy() / downside
}

// CalmarRatio is the geometric annualized return divided by the maximum drawdown.
// A zero drawdown yields 0.
func CalmarRatio(returns []float64, opts Options) float64 {
	mdd := risk.MaxDrawdown(returns)
	if mdd < volatilityFloor {
		return 0.0
	}
	return timeseries.AnnualizedReturn(returns, opts.ppy(), false) / mdd
}

// OmegaRatio is Σ gains above threshold / Σ losses below it, with threshold per period.
// No losses yields UnboundedRatio.
func OmegaRatio(returns []float64, threshold float64) float64 {
	if len(returns) == 0 {
		return 0.0
	}
	gains, losses := 0.0, 0.0
	for _, r := range returns {
		if r > threshold {
			gains += r - threshold
		} else {
			losses += threshold - r
		}
	}
	if losses == 0 {
		return UnboundedRatio
	}
	return gains / losses
}

// GainPainRatio is Σ returns / |Σ negative returns|. No negative returns yields UnboundedRatio.
func GainPainRatio(returns []float64) float64 {
	if len(returns) == 0 {
		return 0.0
	}
	total, pain := 0.0, 0.0
	for _, r := range returns {
		total += r
		if r < 0 {
			pain += r
		}
	}
	if pain == 0 {
		return UnboundedRatio
	}
	return total / math.Abs(pain)
}

// WinRate is the fraction of periods with a positive return.
func WinRate(returns []float64) float64 {
	if len(returns) == 0 {
		return 0.0
	}
	wins := 0
	for _, r := range returns {
		if r > 0 {
			wins++
		}
	}
	return float64(wins) / float64(len(returns))
}

// BestWorst returns the largest and smallest periodic return.
func BestWorst(returns []float64) (best, worst float64) {
	if len(returns) == 0 {
		return 0, 0
	}
	best, worst = returns[0], returns[0]
	for _, r := range returns[1:] {
		best = math.Max(best, r)
		worst = math.Min(worst, r)
	}
	return best, worst
}
