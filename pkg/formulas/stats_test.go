package formulas

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPercentile(t *testing.T) {
	data := []float64{5, 1, 4, 2, 3}

	tests := []struct {
		name     string
		p        float64
		expected float64
	}{
		{name: "minimum", p: 0, expected: 1},
		{name: "maximum", p: 100, expected: 5},
		{name: "median", p: 50, expected: 3},
		{name: "interpolated 10th", p: 10, expected: 1.4},
		{name: "interpolated 95th", p: 95, expected: 4.8},
		{name: "clamped above", p: 150, expected: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Percentile(data, tt.p), 1e-12)
		})
	}
}

func TestPercentile_DoesNotMutateInput(t *testing.T) {
	data := []float64{3, 1, 2}
	Percentile(data, 50)
	assert.Equal(t, []float64{3, 1, 2}, data)
}

func TestPercentile_Empty(t *testing.T) {
	assert.True(t, math.IsNaN(Percentile(nil, 50)))
}

func TestStdDev(t *testing.T) {
	tests := []struct {
		name     string
		data     []float64
		expected float64
	}{
		{name: "empty", data: nil, expected: 0},
		{name: "single value", data: []float64{1}, expected: 0},
		{name: "sample deviation", data: []float64{2, 4, 4, 4, 5, 5, 7, 9}, expected: 2.138089935299395},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, StdDev(tt.data), 1e-12)
		})
	}
}

func TestCorrelation(t *testing.T) {
	x := []float64{1, 2, 3, 4}
	assert.InDelta(t, 1.0, Correlation(x, []float64{2, 4, 6, 8}), 1e-12)
	assert.InDelta(t, -1.0, Correlation(x, []float64{8, 6, 4, 2}), 1e-12)
	assert.Equal(t, 0.0, Correlation(x, []float64{1, 1, 1, 1}))
	assert.Equal(t, 0.0, Correlation(x, []float64{1, 2}))
}

func TestSafeDivide(t *testing.T) {
	assert.Equal(t, 2.0, SafeDivide(4, 2, 1e-10))
	assert.Equal(t, 0.0, SafeDivide(4, 1e-12, 1e-10))
	assert.Equal(t, 0.0, SafeDivide(math.Inf(1), 1, 1e-10))
}

func TestFinite(t *testing.T) {
	assert.Equal(t, 1.5, Finite(1.5, 0))
	assert.Equal(t, 0.0, Finite(math.NaN(), 0))
	assert.Equal(t, -1.0, Finite(math.Inf(-1), -1))
}
