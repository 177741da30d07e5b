// Package timeseries provides the return, resampling and estimation primitives
// the analytics modules are built on.
package timeseries

import (
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/sentinel-quant/internal/domain"
	"github.com/aristath/sentinel-quant/pkg/formulas"
)

// Calculator exposes the string-typed entry points that fall back to defaults
// with a warning instead of failing.
type Calculator struct {
	log zerolog.Logger
}

// NewCalculator creates a new time series calculator.
func NewCalculator(log zerolog.Logger) *Calculator {
	return &Calculator{
		log: log.With().Str("component", "timeseries").Logger(),
	}
}

// ReturnsFromString parses period and method, falling back to daily and simple returns.
func (c *Calculator) ReturnsFromString(prices domain.PriceSeries, period, method string) domain.ReturnSeries {
	p, ok := domain.ParsePeriod(period)
	if !ok {
		c.log.Warn().Str("period", period).Msg("Unsupported period, falling back to daily")
	}
	m, ok := domain.ParseReturnMethod(method)
	if !ok {
		c.log.Warn().Str("method", method).Msg("Unsupported return method, falling back to simple")
	}
	if prices.IsEmpty() {
		c.log.Warn().Msg("Empty price series, returning empty returns")
	}
	return Returns(prices, p, m)
}

// PortfolioReturn is the package-level PortfolioReturn with a warning for empty results.
func (c *Calculator) PortfolioReturn(matrix domain.ReturnMatrix, weights domain.WeightMapping, policy domain.MissingDataPolicy) domain.ReturnSeries {
	out := PortfolioReturn(matrix, weights, policy)
	if out.IsEmpty() {
		c.log.Warn().
			Int("assets", len(matrix)).
			Int("weights", len(weights)).
			Msg("No overlapping assets or observations, portfolio return is empty")
	}
	return out
}

// Resample keeps the last observation of every period. Daily input is returned as a copy.
func Resample(prices domain.PriceSeries, period domain.Period) domain.PriceSeries {
	if period == domain.PeriodDaily || prices.IsEmpty() {
		return prices.Clone()
	}

	out := domain.PriceSeries{}
	var lastKey int
	for i, d := range prices.Dates {
		key := periodKey(d, period)
		if i > 0 && key == lastKey {
			out.Dates[len(out.Dates)-1] = d
			out.Values[len(out.Values)-1] = prices.Values[i]
			continue
		}
		out.Dates = append(out.Dates, d)
		out.Values = append(out.Values, prices.Values[i])
		lastKey = key
	}
	return out
}

func periodKey(d time.Time, period domain.Period) int {
	switch period {
	case domain.PeriodWeekly:
		y, w := d.ISOWeek()
		return y*100 + w
	case domain.PeriodMonthly:
		return d.Year()*100 + int(d.Month())
	case domain.PeriodAnnual:
		return d.Year()
	default:
		return d.Year()*1000 + d.YearDay()
	}
}

// Returns resamples prices to period-end values and differences them.
// Rows whose previous price is zero (simple) or non-positive (log) are skipped.
func Returns(prices domain.PriceSeries, period domain.Period, method domain.ReturnMethod) domain.ReturnSeries {
	sampled := Resample(prices, period)
	out := domain.ReturnSeries{}
	for i := 1; i < sampled.Len(); i++ {
		prev, cur := sampled.Values[i-1], sampled.Values[i]
		var r float64
		switch method {
		case domain.ReturnMethodLog:
			if prev <= 0 || cur <= 0 {
				continue
			}
			r = math.Log(cur / prev)
		default:
			if prev == 0 {
				continue
			}
			r = cur/prev - 1
		}
		out.Dates = append(out.Dates, sampled.Dates[i])
		out.Values = append(out.Values, r)
	}
	return out
}

// Cumulative compounds returns: Π(1+r) − 1 for simple returns, exp(Σr) − 1 for log returns.
func Cumulative(returns domain.ReturnSeries, isLog bool) domain.ReturnSeries {
	out := domain.ReturnSeries{
		Dates:  append([]time.Time(nil), returns.Dates...),
		Values: make([]float64, returns.Len()),
	}
	wealth := 1.0
	logSum := 0.0
	for i, r := range returns.Values {
		if isLog {
			logSum += r
			out.Values[i] = math.Exp(logSum) - 1
		} else {
			wealth *= 1 + r
			out.Values[i] = wealth - 1
		}
	}
	return out
}

// FromCumulative inverts Cumulative for simple returns.
func FromCumulative(cumulative domain.ReturnSeries) domain.ReturnSeries {
	out := domain.ReturnSeries{
		Dates:  append([]time.Time(nil), cumulative.Dates...),
		Values: make([]float64, cumulative.Len()),
	}
	prev := 1.0
	for i, c := range cumulative.Values {
		wealth := 1 + c
		out.Values[i] = formulas.SafeDivide(wealth, prev, 1e-15) - 1
		prev = wealth
	}
	return out
}

// AnnualizedReturn is the geometric annualized return of the series.
// Returns 0 when the series spans no periods.
func AnnualizedReturn(returns []float64, periodsPerYear float64, isLog bool) float64 {
	if len(returns) == 0 || periodsPerYear <= 0 {
		return 0.0
	}
	years := float64(len(returns)) / periodsPerYear
	if years <= 0 {
		return 0.0
	}

	var growth float64
	if isLog {
		sum := 0.0
		for _, r := range returns {
			sum += r
		}
		growth = math.Exp(sum)
	} else {
		growth = 1.0
		for _, r := range returns {
			growth *= 1 + r
		}
	}
	if growth <= 0 {
		return -1.0
	}
	return formulas.Finite(math.Pow(growth, 1/years)-1, 0)
}

// AnnualizedVolatility is the sample standard deviation scaled by √periodsPerYear.
func AnnualizedVolatility(returns []float64, periodsPerYear float64) float64 {
	if periodsPerYear <= 0 {
		return 0.0
	}
	return formulas.StdDev(returns) * math.Sqrt(periodsPerYear)
}
