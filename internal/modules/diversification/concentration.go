// Package diversification measures how concentrated a portfolio is and how its
// risk spreads across assets and correlated clusters.
package diversification

import (
	"math"

	"github.com/aristath/sentinel-quant/internal/domain"
	"github.com/aristath/sentinel-quant/pkg/formulas"
)

// Concentration summarizes how evenly weight is spread.
type Concentration struct {
	Assets        int     `json:"assets"`
	EffectiveN    float64 `json:"effective_n"`
	HHI           float64 `json:"hhi"`
	NormalizedHHI float64 `json:"normalized_hhi"`
	MaxWeight     float64 `json:"max_weight"`
}

// HHI is the Herfindahl-Hirschman index Σw² of the normalized weights.
func HHI(weights domain.WeightMapping) float64 {
	sum := 0.0
	for _, w := range weights.Normalized() {
		sum += w * w
	}
	return sum
}

// EffectiveN is 1/HHI, the number of equally weighted assets with the same concentration.
// An empty mapping yields 0.
func EffectiveN(weights domain.WeightMapping) float64 {
	return formulas.SafeDivide(1, HHI(weights), 1e-12)
}

// NormalizedHHI rescales HHI to [0, 1]: (HHI − 1/N) / (1 − 1/N).
// A single asset is fully concentrated.
func NormalizedHHI(weights domain.WeightMapping) float64 {
	n := float64(len(weights.Normalized()))
	switch {
	case n == 0:
		return 0.0
	case n == 1:
		return 1.0
	}
	return math.Max(0, (HHI(weights)-1/n)/(1-1/n))
}

// Concentrations computes every concentration measure at once.
func Concentrations(weights domain.WeightMapping) Concentration {
	norm := weights.Normalized()
	c := Concentration{
		Assets:        len(norm),
		EffectiveN:    EffectiveN(norm),
		HHI:           HHI(norm),
		NormalizedHHI: NormalizedHHI(norm),
	}
	for _, w := range norm {
		c.MaxWeight = math.Max(c.MaxWeight, w)
	}
	return c
}

// DiversificationRatio is Σwσ / √(w'Σw). A ratio above 1 means correlations below 1
// are reducing risk. Zero portfolio variance yields 0.
func DiversificationRatio(weights []float64, cov [][]float64) float64 {
	variance := formulas.QuadraticForm(weights, cov)
	if variance <= 0 || math.IsNaN(variance) {
		return 0.0
	}
	weighted := 0.0
	for i, w := range weights {
		weighted += w * math.Sqrt(math.Max(cov[i][i], 0))
	}
	return weighted / math.Sqrt(variance)
}
