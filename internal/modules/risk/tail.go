package risk

import (
	"math"
	"time"

	"github.com/aristath/sentinel-quant/pkg/formulas"
)

// Volatility is the annualized sample standard deviation.
func Volatility(returns []float64, periodsPerYear float64) float64 {
	if periodsPerYear <= 0 {
		periodsPerYear = DefaultPeriodsPerYear
	}
	return formulas.StdDev(returns) * math.Sqrt(periodsPerYear)
}

// DownsideDeviation is sqrt(mean(min(r − threshold, 0)²)) × √periodsPerYear over all observations.
func DownsideDeviation(returns []float64, threshold, periodsPerYear float64) float64 {
	if len(returns) == 0 {
		return 0.0
	}
	if periodsPerYear <= 0 {
		periodsPerYear = DefaultPeriodsPerYear
	}
	sum := 0.0
	for _, r := range returns {
		d := math.Min(r-threshold, 0)
		sum += d * d
	}
	return math.Sqrt(sum/float64(len(returns))) * math.Sqrt(periodsPerYear)
}

// TailStatistics summarizes the shape of the return distribution.
type TailStatistics struct {
	Skewness         float64 `json:"skewness"`
	ExcessKurtosis   float64 `json:"excess_kurtosis"`
	WorstPeriod      float64 `json:"worst_period"`
	BestPeriod       float64 `json:"best_period"`
	NegativeFraction float64 `json:"negative_fraction"`
	// TailRatio is p95 / |p5|; 0 when p5 is 0.
	TailRatio float64 `json:"tail_ratio"`
}

// Tails computes TailStatistics. An empty series yields zero values.
func Tails(returns []float64) TailStatistics {
	if len(returns) == 0 {
		return TailStatistics{}
	}
	worst, best := returns[0], returns[0]
	negative := 0
	for _, r := range returns {
		worst = math.Min(worst, r)
		best = math.Max(best, r)
		if r < 0 {
			negative++
		}
	}
	p95 := formulas.Percentile(returns, 95)
	p5 := formulas.Percentile(returns, 5)

	return TailStatistics{
		Skewness:         formulas.Finite(formulas.Skewness(returns), 0),
		ExcessKurtosis:   formulas.Finite(formulas.ExcessKurtosis(returns), 0),
		WorstPeriod:      worst,
		BestPeriod:       best,
		NegativeFraction: float64(negative) / float64(len(returns)),
		TailRatio:        formulas.SafeDivide(p95, math.Abs(p5), 1e-12),
	}
}

func daysBetween(a, b time.Time) int {
	return int(math.Round(b.Sub(a).Hours() / 24))
}
