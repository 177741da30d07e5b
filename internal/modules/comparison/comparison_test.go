package comparison

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/sentinel-quant/internal/domain"
	"github.com/aristath/sentinel-quant/internal/modules/risk"
	"github.com/aristath/sentinel-quant/internal/modules/timeseries"
)

func testMatrix() domain.ReturnMatrix {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	a := make([]float64, 60)
	b := make([]float64, 60)
	for i := range a {
		sign := 1.0
		if i%2 == 1 {
			sign = -1
		}
		a[i] = 0.001 + 0.02*sign
		b[i] = 0.0005 - 0.005*sign
	}
	return domain.ReturnMatrix{
		"A": domain.DailySeries(start, a),
		"B": domain.DailySeries(start, b),
	}
}

func newTestComparer() *Comparer {
	return NewComparer(risk.NewCalculator(risk.Options{}, zerolog.Nop()), zerolog.Nop())
}

func TestCompare(t *testing.T) {
	matrix := testMatrix()
	portfolios := map[string]domain.WeightMapping{
		"all_a":    {"A": 1},
		"all_b":    {"B": 1},
		"balanced": {"A": 0.5, "B": 0.5},
	}

	report, err := newTestComparer().Compare(matrix, portfolios, Options{})
	require.NoError(t, err)

	assert.Equal(t, "all_a", report.Baseline)
	require.Len(t, report.Portfolios, 3)
	assert.Len(t, report.Differences, 2)
	assert.NotContains(t, report.Differences, "all_a")

	allA := report.Portfolios["all_a"]
	assert.InDelta(t, timeseries.AnnualizedReturn(matrix["A"].Values, 252, false), allA.AnnualReturn, 1e-12)
	assert.InDelta(t, 1.0, allA.EffectiveN, 1e-12)
	assert.GreaterOrEqual(t, allA.CVaR95, allA.VaR95)

	balanced := report.Portfolios["balanced"]
	assert.InDelta(t, 2.0, balanced.EffectiveN, 1e-12)
	assert.InDelta(t, balanced.Volatility-allA.Volatility, report.Differences["balanced"].Volatility, 1e-12)

	assert.Equal(t, "all_b", report.Best["volatility"])
	assert.Equal(t, "balanced", report.Best["effective_n"])
	assert.Equal(t, "balanced", report.Best["hhi"])
	assert.Len(t, report.Best, len(metrics))

	assert.InDelta(t, 0.5, report.Overlap["all_a"]["balanced"], 1e-12)
	assert.InDelta(t, 0.0, report.Overlap["all_a"]["all_b"], 1e-12)
	assert.InDelta(t, 1.0, report.Overlap["balanced"]["balanced"], 1e-12)
}

func TestCompare_ExplicitBaseline(t *testing.T) {
	portfolios := map[string]domain.WeightMapping{
		"x": {"A": 1},
		"y": {"B": 1},
	}
	report, err := newTestComparer().Compare(testMatrix(), portfolios, Options{Baseline: "y"})
	require.NoError(t, err)
	assert.Equal(t, "y", report.Baseline)
	assert.Contains(t, report.Differences, "x")
}

func TestCompare_Errors(t *testing.T) {
	c := newTestComparer()

	_, err := c.Compare(testMatrix(), nil, Options{})
	assert.Error(t, err)

	_, err = c.Compare(testMatrix(), map[string]domain.WeightMapping{"x": {"A": 1}}, Options{Baseline: "missing"})
	assert.Error(t, err)
}

func TestCompare_NoReturns(t *testing.T) {
	report, err := newTestComparer().Compare(testMatrix(), map[string]domain.WeightMapping{"ghost": {"Z": 1, "Y": 1}}, Options{})
	require.NoError(t, err)
	m := report.Portfolios["ghost"]
	assert.Zero(t, m.AnnualReturn)
	assert.Zero(t, m.Volatility)
	assert.InDelta(t, 2.0, m.EffectiveN, 1e-12)
}

func TestOverlap(t *testing.T) {
	tests := []struct {
		name     string
		a, b     domain.WeightMapping
		expected float64
	}{
		{"identical", domain.WeightMapping{"A": 0.3, "B": 0.7}, domain.WeightMapping{"A": 0.3, "B": 0.7}, 1},
		{"disjoint", domain.WeightMapping{"A": 1}, domain.WeightMapping{"B": 1}, 0},
		{"partial", domain.WeightMapping{"A": 0.6, "B": 0.4}, domain.WeightMapping{"A": 0.2, "B": 0.8}, 0.6},
		{"unnormalized", domain.WeightMapping{"A": 2, "B": 2}, domain.WeightMapping{"A": 1}, 0.5},
		{"empty", domain.WeightMapping{}, domain.WeightMapping{"A": 1}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Overlap(tt.a, tt.b), 1e-12)
		})
	}
}
