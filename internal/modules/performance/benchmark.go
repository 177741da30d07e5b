package performance

import (
	"math"

	"github.com/aristath/sentinel-quant/internal/domain"
	"github.com/aristath/sentinel-quant/internal/modules/timeseries"
	"github.com/aristath/sentinel-quant/pkg/formulas"
)

// AlignWithBenchmark returns the portfolio and benchmark returns on their common dates.
func AlignWithBenchmark(portfolio, benchmark domain.ReturnSeries) (p, b []float64) {
	matrix := domain.ReturnMatrix{"portfolio": portfolio, "benchmark": benchmark}
	_, rows := timeseries.Align(matrix, []string{"portfolio", "benchmark"}, domain.DropIncomplete)
	return timeseries.Column(rows, 0), timeseries.Column(rows, 1)
}

// Beta = cov(r, b) / var(b) on common dates. A flat benchmark yields 0.
func Beta(portfolio, benchmark domain.ReturnSeries) float64 {
	p, b := AlignWithBenchmark(portfolio, benchmark)
	return beta(p, b)
}

func beta(p, b []float64) float64 {
	if len(p) < 2 {
		return 0.0
	}
	v := formulas.Variance(b)
	if v < volatilityFloor*volatilityFloor {
		return 0.0
	}
	return formulas.Covariance(p, b) / v
}

// Alpha is the annualized Jensen alpha using the computed beta.
//
// Formula:
//
//	α = R_p − (rf + β(R_b − rf)), with R = mean return × ppy
func Alpha(portfolio, benchmark domain.ReturnSeries, opts Options) float64 {
	p, b := AlignWithBenchmark(portfolio, benchmark)
	return alpha(p, b, opts)
}

func alpha(p, b []float64, opts Options) float64 {
	if len(p) < 2 {
		return 0.0
	}
	return AnnualizedMean(p, opts) - (opts.RiskFreeRate + beta(p, b)*(AnnualizedMean(b, opts)-opts.RiskFreeRate))
}

// TrackingError is the annualized standard deviation of active returns.
func TrackingError(portfolio, benchmark domain.ReturnSeries, opts Options) float64 {
	p, b := AlignWithBenchmark(portfolio, benchmark)
	return trackingError(p, b, opts)
}

func trackingError(p, b []float64, opts Options) float64 {
	return formulas.StdDev(active(p, b)) * math.Sqrt(opts.ppy())
}

// InformationRatio is the annualized mean active return over the tracking error.
// A zero tracking error yields 0.
func InformationRatio(portfolio, benchmark domain.ReturnSeries, opts Options) float64 {
	p, b := AlignWithBenchmark(portfolio, benchmark)
	return informationRatio(p, b, opts)
}

func informationRatio(p, b []float64, opts Options) float64 {
	te := trackingError(p, b, opts)
	if te < volatilityFloor {
		return 0.0
	}
	return formulas.Mean(active(p, b)) * opts.ppy() / te
}

// CaptureRatios returns the up and down capture ratios: mean portfolio return over
// the periods where the benchmark rose (fell), divided by the benchmark's mean over
// the same periods. A side with no such periods yields 0.
func CaptureRatios(portfolio, benchmark domain.ReturnSeries) (up, down float64) {
	p, b := AlignWithBenchmark(portfolio, benchmark)
	return captureRatios(p, b)
}

func captureRatios(p, b []float64) (up, down float64) {
	var upP, upB, downP, downB []float64
	for i := range b {
		switch {
		case b[i] > 0:
			upP = append(upP, p[i])
			upB = append(upB, b[i])
		case b[i] < 0:
			downP = append(downP, p[i])
			downB = append(downB, b[i])
		}
	}
	if len(upB) > 0 {
		up = formulas.SafeDivide(formulas.Mean(upP), formulas.Mean(upB), volatilityFloor)
	}
	if len(downB) > 0 {
		down = formulas.SafeDivide(formulas.Mean(downP), formulas.Mean(downB), volatilityFloor)
	}
	return up, down
}

// TreynorRatio is the annualized excess return per unit of beta. A zero beta yields 0.
func TreynorRatio(portfolio, benchmark domain.ReturnSeries, opts Options) float64 {
	p, b := AlignWithBenchmark(portfolio, benchmark)
	return treynor(p, b, opts)
}

func treynor(p, b []float64, opts Options) float64 {
	bt := beta(p, b)
	if math.Abs(bt) < volatilityFloor {
		return 0.0
	}
	return (AnnualizedMean(p, opts) - opts.RiskFreeRate) / bt
}

// correlation is the Pearson correlation of aligned returns.
func correlation(p, b []float64) float64 {
	return formulas.Correlation(p, b)
}

func active(p, b []float64) []float64 {
	out := make([]float64, len(p))
	for i := range p {
		out[i] = p[i] - b[i]
	}
	return out
}
