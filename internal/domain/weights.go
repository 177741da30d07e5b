package domain

import (
	"math"
	"sort"
)

// WeightMapping maps ticker → portfolio weight. Weights should be non-negative and sum to 1,
// but caller-supplied mappings are not guaranteed to be normalized.
type WeightMapping map[string]float64

// Tickers returns the mapping keys sorted.
func (w WeightMapping) Tickers() []string {
	out := make([]string, 0, len(w))
	for t := range w {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Sum returns the total weight.
func (w WeightMapping) Sum() float64 {
	total := 0.0
	for _, v := range w {
		total += v
	}
	return total
}

// Normalized returns a copy scaled to sum to 1. Negative and non-finite entries are dropped.
// A mapping with no positive weight normalizes to an empty mapping.
func (w WeightMapping) Normalized() WeightMapping {
	total := 0.0
	for _, v := range w {
		if v > 0 && !math.IsInf(v, 0) {
			total += v
		}
	}
	out := make(WeightMapping, len(w))
	if total <= 0 {
		return out
	}
	for t, v := range w {
		if v > 0 && !math.IsInf(v, 0) {
			out[t] = v / total
		}
	}
	return out
}

// Vector returns the weights in tickers order; missing tickers are 0.
func (w WeightMapping) Vector(tickers []string) []float64 {
	out := make([]float64, len(tickers))
	for i, t := range tickers {
		out[i] = w[t]
	}
	return out
}

// WeightsFromVector zips tickers with a weight vector.
func WeightsFromVector(tickers []string, weights []float64) WeightMapping {
	out := make(WeightMapping, len(tickers))
	for i, t := range tickers {
		out[t] = weights[i]
	}
	return out
}

// EqualWeights assigns 1/N to each ticker.
func EqualWeights(tickers []string) WeightMapping {
	out := make(WeightMapping, len(tickers))
	if len(tickers) == 0 {
		return out
	}
	w := 1.0 / float64(len(tickers))
	for _, t := range tickers {
		out[t] = w
	}
	return out
}
