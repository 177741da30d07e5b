package performance

import (
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/sentinel-quant/internal/domain"
	"github.com/aristath/sentinel-quant/internal/modules/timeseries"
	"github.com/aristath/sentinel-quant/pkg/formulas"
)

var start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestSharpeRatio(t *testing.T) {
	opts := DefaultOptions()

	t.Run("constant returns have zero volatility", func(t *testing.T) {
		assert.Equal(t, 0.0, SharpeRatio([]float64{0.01, 0.01, 0.01, 0.01}, opts))
	})

	t.Run("too few observations", func(t *testing.T) {
		assert.Equal(t, 0.0, SharpeRatio([]float64{0.01}, opts))
	})

	t.Run("matches formula", func(t *testing.T) {
		returns := []float64{0.01, -0.005, 0.02, 0.003, -0.012}
		mean := (0.01 - 0.005 + 0.02 + 0.003 - 0.012) / 5
		ss := 0.0
		for _, r := range returns {
			ss += (r - mean) * (r - mean)
		}
		std := math.Sqrt(ss / 4)
		expected := (mean - 0.02/252) * 252 / (std * math.Sqrt(252))
		assert.InDelta(t, expected, SharpeRatio(returns, opts), 1e-9)
	})
}

func TestSortinoRatio(t *testing.T) {
	opts := DefaultOptions()

	t.Run("no downside is unbounded", func(t *testing.T) {
		assert.Equal(t, UnboundedRatio, SortinoRatio([]float64{0.01, 0.02, 0.005}, opts))
	})

	t.Run("empty series", func(t *testing.T) {
		assert.Equal(t, 0.0, SortinoRatio(nil, opts))
	})

	t.Run("downside only counts negative excess", func(t *testing.T) {
		opts := Options{PeriodsPerYear: 252}
		returns := []float64{0.02, -0.01, 0.03, -0.03}
		downside := math.Sqrt((0.0001+0.0009)/2) * math.Sqrt(252)
		expected := 0.0025 * 252 / downside
		assert.InDelta(t, expected, SortinoRatio(returns, opts), 1e-9)
	})
}

func TestCalmarRatio(t *testing.T) {
	opts := DefaultOptions()
	returns := []float64{0.1, -0.5, 0.2, 0.1, 0.0}

	expected := timeseries.AnnualizedReturn(returns, 252, false) / 0.5
	assert.InDelta(t, expected, CalmarRatio(returns, opts), 1e-9)
	assert.Equal(t, 0.0, CalmarRatio([]float64{0.01, 0.01, 0.01, 0.01, 0.01}, opts))
}

func TestOmegaAndGainPain(t *testing.T) {
	returns := []float64{0.02, -0.01, 0.03, -0.02}

	tests := []struct {
		name     string
		got      float64
		expected float64
	}{
		{"omega", OmegaRatio(returns, 0), 0.05 / 0.03},
		{"omega no losses", OmegaRatio([]float64{0.01, 0.02}, 0), UnboundedRatio},
		{"omega empty", OmegaRatio(nil, 0), 0},
		{"gain pain", GainPainRatio(returns), 0.02 / 0.03},
		{"gain pain no losses", GainPainRatio([]float64{0.01, 0.0}), UnboundedRatio},
		{"gain pain empty", GainPainRatio(nil), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, tt.got, 1e-12)
		})
	}
}

func TestWinRateAndBestWorst(t *testing.T) {
	returns := []float64{0.02, -0.01, 0.0, 0.03}
	assert.InDelta(t, 0.5, WinRate(returns), 1e-12)

	best, worst := BestWorst(returns)
	assert.Equal(t, 0.03, best)
	assert.Equal(t, -0.01, worst)
}

func TestBenchmarkMetrics_Leveraged(t *testing.T) {
	opts := Options{PeriodsPerYear: 252}
	bench := []float64{0.01, -0.02, 0.015, -0.005, 0.02}
	port := make([]float64, len(bench))
	for i, v := range bench {
		port[i] = 2 * v
	}
	b := domain.DailySeries(start, bench)
	p := domain.DailySeries(start, port)

	assert.InDelta(t, 2.0, Beta(p, b), 1e-9)
	assert.InDelta(t, 0.0, Alpha(p, b, opts), 1e-9)

	up, down := CaptureRatios(p, b)
	assert.InDelta(t, 2.0, up, 1e-9)
	assert.InDelta(t, 2.0, down, 1e-9)

	te := TrackingError(p, b, opts)
	assert.Greater(t, te, 0.0)
	assert.InDelta(t, TreynorRatio(p, b, opts), AnnualizedMean(port, opts)/2, 1e-9)
}

func TestBenchmarkMetrics_Degenerate(t *testing.T) {
	opts := DefaultOptions()
	flat := domain.DailySeries(start, []float64{0.01, 0.01, 0.01})
	p := domain.DailySeries(start, []float64{0.02, -0.01, 0.03})

	assert.Equal(t, 0.0, Beta(p, flat))
	assert.Equal(t, 0.0, TreynorRatio(p, flat, opts))
	assert.Equal(t, 0.0, InformationRatio(p, p, opts))

	up, down := CaptureRatios(p, flat)
	assert.InDelta(t, formulas.Mean([]float64{0.02, -0.01, 0.03})/0.01, up, 1e-9)
	assert.Equal(t, 0.0, down)
}

func TestAlignWithBenchmark_CommonDates(t *testing.T) {
	p := domain.DailySeries(start, []float64{0.01, 0.02, 0.03, 0.04})
	b := domain.DailySeries(start.AddDate(0, 0, 2), []float64{0.05, 0.06, 0.07})

	pa, ba := AlignWithBenchmark(p, b)
	assert.Equal(t, []float64{0.03, 0.04}, pa)
	assert.Equal(t, []float64{0.05, 0.06}, ba)
}

func TestPeriodReturns(t *testing.T) {
	dates := []time.Time{
		time.Date(2024, 1, 30, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
	}
	returns := domain.MustSeries(dates, []float64{0.1, 0.1, -0.5})

	monthly := PeriodReturns(returns, domain.PeriodMonthly)
	require.Len(t, monthly, 2)
	assert.Equal(t, "2024-01", monthly[0].Period)
	assert.InDelta(t, 0.21, monthly[0].Return, 1e-12)
	assert.Equal(t, 2, monthly[0].Observations)
	assert.Equal(t, "2024-02", monthly[1].Period)

	weekly := PeriodReturns(returns, domain.PeriodWeekly)
	require.Len(t, weekly, 1)
	assert.Equal(t, "2024-W05", weekly[0].Period)
	assert.InDelta(t, -0.395, weekly[0].Return, 1e-12)

	annual := PeriodReturns(returns, domain.PeriodAnnual)
	require.Len(t, annual, 1)
	assert.Equal(t, "2024", annual[0].Period)

	assert.Empty(t, PeriodReturns(domain.Series{}, domain.PeriodMonthly))
}

func TestSummary(t *testing.T) {
	c := NewCalculator(DefaultOptions(), zerolog.Nop())
	values := []float64{0.01, -0.02, 0.015, -0.005, 0.02, 0.003, -0.01}
	returns := domain.DailySeries(start, values)

	report := c.Summary(returns, nil)
	assert.Equal(t, len(values), report.Observations)
	assert.Nil(t, report.Benchmark)
	assert.Equal(t, SharpeRatio(values, c.Options()), report.SharpeRatio)
	assert.Equal(t, 0.02, report.BestPeriod)
	assert.Equal(t, -0.02, report.WorstPeriod)
	assert.Len(t, report.MonthlyReturns, 1)
	assert.Greater(t, report.MaxDrawdown, 0.0)

	withBench := c.Summary(returns, &returns)
	require.NotNil(t, withBench.Benchmark)
	assert.InDelta(t, 1.0, withBench.Benchmark.Beta, 1e-9)
	assert.InDelta(t, 1.0, withBench.Benchmark.Correlation, 1e-9)
	assert.InDelta(t, 0.0, withBench.Benchmark.TrackingError, 1e-12)
	assert.Equal(t, len(values), withBench.Benchmark.Observations)

	empty := c.Summary(domain.Series{}, nil)
	assert.Equal(t, 0, empty.Observations)
	assert.NotNil(t, empty.MonthlyReturns)
}
