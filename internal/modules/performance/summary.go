package performance

import (
	"github.com/rs/zerolog"

	"github.com/aristath/sentinel-quant/internal/domain"
	"github.com/aristath/sentinel-quant/internal/modules/risk"
	"github.com/aristath/sentinel-quant/internal/modules/timeseries"
)

// BenchmarkMetrics are the benchmark-relative statistics of a Report.
type BenchmarkMetrics struct {
	Beta             float64 `json:"beta"`
	Alpha            float64 `json:"alpha"`
	TrackingError    float64 `json:"tracking_error"`
	InformationRatio float64 `json:"information_ratio"`
	UpCapture        float64 `json:"up_capture"`
	DownCapture      float64 `json:"down_capture"`
	TreynorRatio     float64 `json:"treynor_ratio"`
	Correlation      float64 `json:"correlation"`
	Observations     int     `json:"observations"`
}

// Report is the composite performance report of a return series.
type Report struct {
	Observations     int               `json:"observations"`
	TotalReturn      float64           `json:"total_return"`
	AnnualizedReturn float64           `json:"annualized_return"`
	Volatility       float64           `json:"volatility"`
	SharpeRatio      float64           `json:"sharpe_ratio"`
	SortinoRatio     float64           `json:"sortino_ratio"`
	CalmarRatio      float64           `json:"calmar_ratio"`
	OmegaRatio       float64           `json:"omega_ratio"`
	GainPainRatio    float64           `json:"gain_pain_ratio"`
	MaxDrawdown      float64           `json:"max_drawdown"`
	WinRate          float64           `json:"win_rate"`
	BestPeriod       float64           `json:"best_period"`
	WorstPeriod      float64           `json:"worst_period"`
	MonthlyReturns   []PeriodReturn    `json:"monthly_returns"`
	AnnualReturns    []PeriodReturn    `json:"annual_returns"`
	Benchmark        *BenchmarkMetrics `json:"benchmark,omitempty"`
}

// Calculator produces composite performance reports.
type Calculator struct {
	opts Options
	log  zerolog.Logger
}

// NewCalculator creates a new performance calculator.
func NewCalculator(opts Options, log zerolog.Logger) *Calculator {
	if opts.PeriodsPerYear <= 0 {
		opts.PeriodsPerYear = DefaultPeriodsPerYear
	}
	return &Calculator{
		opts: opts,
		log:  log.With().Str("component", "performance").Logger(),
	}
}

// Options returns the calculator's annualization convention.
func (c *Calculator) Options() Options {
	return c.opts
}

// Summary builds the full report; benchmark statistics are included when benchmark is non-nil.
func (c *Calculator) Summary(returns domain.ReturnSeries, benchmark *domain.ReturnSeries) Report {
	values := returns.Values
	if len(values) == 0 {
		c.log.Warn().Msg("Empty return series, performance report is zero")
		return Report{MonthlyReturns: []PeriodReturn{}, AnnualReturns: []PeriodReturn{}}
	}

	best, worst := BestWorst(values)
	cum := timeseries.Cumulative(returns, false)
	report := Report{
		Observations:     len(values),
		TotalReturn:      cum.Values[len(cum.Values)-1],
		AnnualizedReturn: timeseries.AnnualizedReturn(values, c.opts.ppy(), false),
		Volatility:       risk.Volatility(values, c.opts.ppy()),
		SharpeRatio:      SharpeRatio(values, c.opts),
		SortinoRatio:     SortinoRatio(values, c.opts),
		CalmarRatio:      CalmarRatio(values, c.opts),
		OmegaRatio:       OmegaRatio(values, 0),
		GainPainRatio:    GainPainRatio(values),
		MaxDrawdown:      risk.MaxDrawdown(values),
		WinRate:          WinRate(values),
		BestPeriod:       best,
		WorstPeriod:      worst,
		MonthlyReturns:   PeriodReturns(returns, domain.PeriodMonthly),
		AnnualReturns:    PeriodReturns(returns, domain.PeriodAnnual),
	}

	if benchmark != nil {
		report.Benchmark = c.benchmarkMetrics(returns, *benchmark)
	}
	return report
}

func (c *Calculator) benchmarkMetrics(returns, benchmark domain.ReturnSeries) *BenchmarkMetrics {
	p, b := AlignWithBenchmark(returns, benchmark)
	if len(p) < 2 {
		c.log.Warn().Int("common_dates", len(p)).Msg("Too few common dates with benchmark")
		return &BenchmarkMetrics{Observations: len(p)}
	}
	up, down := captureRatios(p, b)
	return &BenchmarkMetrics{
		Beta:             beta(p, b),
		Alpha:            alpha(p, b, c.opts),
		TrackingError:    trackingError(p, b, c.opts),
		InformationRatio: informationRatio(p, b, c.opts),
		UpCapture:        up,
		DownCapture:      down,
		TreynorRatio:     treynor(p, b, c.opts),
		Correlation:      correlation(p, b),
		Observations:     len(p),
	}
}
