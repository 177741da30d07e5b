package diversification

import (
	"math"
	"sort"
)

// DefaultHighCorrelation is the threshold at which a pair is reported as highly correlated.
const DefaultHighCorrelation = 0.8

// CorrelatedPair is a pair of assets whose correlation meets the threshold.
type CorrelatedPair struct {
	A           string  `json:"a"`
	B           string  `json:"b"`
	Correlation float64 `json:"correlation"`
}

// CorrelationSummary describes the pairwise correlation structure.
type CorrelationSummary struct {
	AverageCorrelation float64          `json:"average_correlation"`
	MinCorrelation     float64          `json:"min_correlation"`
	MaxCorrelation     float64          `json:"max_correlation"`
	HighlyCorrelated   []CorrelatedPair `json:"highly_correlated_pairs"`
	Threshold          float64          `json:"threshold"`
}

// SummarizeCorrelations reports the off-diagonal statistics of corr ordered by tickers.
// Pairs are listed by descending correlation; ties keep ticker order.
func SummarizeCorrelations(corr [][]float64, tickers []string, threshold float64) CorrelationSummary {
	if threshold <= 0 {
		threshold = DefaultHighCorrelation
	}
	summary := CorrelationSummary{Threshold: threshold, HighlyCorrelated: []CorrelatedPair{}}

	pairs := 0
	sum := 0.0
	summary.MinCorrelation = math.Inf(1)
	summary.MaxCorrelation = math.Inf(-1)
	for i := 0; i < len(tickers); i++ {
		for j := i + 1; j < len(tickers); j++ {
			c := corr[i][j]
			if math.IsNaN(c) {
				continue
			}
			pairs++
			sum += c
			summary.MinCorrelation = math.Min(summary.MinCorrelation, c)
			summary.MaxCorrelation = math.Max(summary.MaxCorrelation, c)
			if c >= threshold {
				summary.HighlyCorrelated = append(summary.HighlyCorrelated, CorrelatedPair{
					A: tickers[i], B: tickers[j], Correlation: c,
				})
			}
		}
	}
	if pairs == 0 {
		summary.MinCorrelation, summary.MaxCorrelation = 0, 0
		return summary
	}
	summary.AverageCorrelation = sum / float64(pairs)

	sort.SliceStable(summary.HighlyCorrelated, func(i, j int) bool {
		return summary.HighlyCorrelated[i].Correlation > summary.HighlyCorrelated[j].Correlation
	})
	return summary
}
