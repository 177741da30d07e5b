package formulas

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/stat/distuv"
)

func TestGaussianTailMean(t *testing.T) {
	tests := []struct {
		name       string
		mu         float64
		sigma      float64
		confidence float64
		want       float64
	}{
		{name: "standard normal at 95 percent", mu: 0, sigma: 1, confidence: 0.95, want: -2.0627128075},
		{name: "standard normal at 99 percent", mu: 0, sigma: 1, confidence: 0.99, want: -2.6652142203},
		{name: "shifted and scaled", mu: 0.001, sigma: 0.02, confidence: 0.95, want: 0.001 - 0.02*2.0627128075},
		{name: "no volatility", mu: 0.01, sigma: 0, confidence: 0.95, want: 0.01},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, GaussianTailMean(tt.mu, tt.sigma, tt.confidence), 1e-8)
		})
	}
}

func TestGaussianTailMean_BelowQuantile(t *testing.T) {
	for _, confidence := range []float64{0.5, 0.9, 0.95, 0.99, 0.999} {
		q := distuv.UnitNormal.Quantile(1 - confidence)
		assert.Less(t, GaussianTailMean(0, 1, confidence), q, "confidence=%v", confidence)
	}
}

func TestGaussianTailMean_InvalidConfidence(t *testing.T) {
	for _, confidence := range []float64{0, 1, -0.5, 1.5, math.NaN()} {
		assert.True(t, math.IsNaN(GaussianTailMean(0, 1, confidence)), "confidence=%v", confidence)
	}
}

func TestTailMean(t *testing.T) {
	mean, count := TailMean([]float64{-0.03, -0.01, 0.02, 0.04}, -0.01)
	assert.Equal(t, 2, count)
	assert.InDelta(t, -0.02, mean, 1e-12)

	mean, count = TailMean([]float64{0.01, 0.02}, -0.05)
	assert.Equal(t, 0, count)
	assert.Equal(t, 0.0, mean)
}
