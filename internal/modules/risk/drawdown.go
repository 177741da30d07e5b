package risk

import (
	"math"
	"sort"

	"github.com/aristath/sentinel-quant/internal/domain"
)

// DrawdownValues returns wealth/cummax(wealth) − 1 for wealth = cumprod(1 + r).
func DrawdownValues(returns []float64) []float64 {
	out := make([]float64, len(returns))
	wealth := 1.0
	peak := math.Inf(-1)
	for i, r := range returns {
		wealth *= 1 + r
		if wealth > peak {
			peak = wealth
		}
		if peak > 0 {
			out[i] = wealth/peak - 1
		}
	}
	return out
}

// DrawdownSeries is DrawdownValues keyed by the series dates.
func DrawdownSeries(returns domain.ReturnSeries) domain.ReturnSeries {
	return domain.ReturnSeries{
		Dates:  append(returns.Dates[:0:0], returns.Dates...),
		Values: DrawdownValues(returns.Values),
	}
}

// MaxDrawdown returns |min(drawdown)| as a positive magnitude.
// Series shorter than MinDrawdownObservations return 0.
func MaxDrawdown(returns []float64) float64 {
	if len(returns) < MinDrawdownObservations {
		return 0.0
	}
	worst := 0.0
	for _, dd := range DrawdownValues(returns) {
		if dd < worst {
			worst = dd
		}
	}
	return math.Abs(worst)
}

// AnalyzeDrawdowns extracts every drawdown episode, worst first.
//
// An episode starts at the first negative drawdown after a peak, tracks its deepest
// point, and completes on the first observation back at the peak. An episode still
// open at the end of the series is reported with a nil recovery.
// LengthDays runs from start to recovery (or the last date when open);
// RecoveryDays runs from valley to recovery.
func AnalyzeDrawdowns(returns domain.ReturnSeries) []domain.DrawdownPeriod {
	if returns.IsEmpty() || len(returns.Dates) != len(returns.Values) {
		return []domain.DrawdownPeriod{}
	}
	dd := DrawdownValues(returns.Values)
	dates := returns.Dates

	periods := []domain.DrawdownPeriod{}
	inDrawdown := false
	var startIdx, valleyIdx int
	for i, v := range dd {
		switch {
		case v < 0 && !inDrawdown:
			inDrawdown = true
			startIdx, valleyIdx = i, i
		case v < 0 && inDrawdown:
			if v < dd[valleyIdx] {
				valleyIdx = i
			}
		case v >= 0 && inDrawdown:
			recovery := dates[i]
			recoveryDays := daysBetween(dates[valleyIdx], recovery)
			periods = append(periods, domain.DrawdownPeriod{
				Start:        dates[startIdx],
				Valley:       dates[valleyIdx],
				Recovery:     &recovery,
				Depth:        math.Abs(dd[valleyIdx]),
				LengthDays:   daysBetween(dates[startIdx], recovery),
				RecoveryDays: &recoveryDays,
			})
			inDrawdown = false
		}
	}
	if inDrawdown {
		periods = append(periods, domain.DrawdownPeriod{
			Start:      dates[startIdx],
			Valley:     dates[valleyIdx],
			Depth:      math.Abs(dd[valleyIdx]),
			LengthDays: daysBetween(dates[startIdx], dates[len(dates)-1]),
		})
	}

	sort.SliceStable(periods, func(i, j int) bool { return periods[i].Depth > periods[j].Depth })
	return periods
}
