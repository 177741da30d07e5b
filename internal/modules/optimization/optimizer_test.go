package optimization

import (
	"errors"
	"math"
	"math/rand"
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/sentinel-quant/internal/domain"
	"github.com/aristath/sentinel-quant/internal/httputil"
	"github.com/aristath/sentinel-quant/internal/solver"
	"github.com/aristath/sentinel-quant/pkg/formulas"
)

var start = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func newTestOptimizer() *Optimizer {
	return NewOptimizer(Options{RiskFreeRate: 0.02}, zerolog.Nop())
}

// marketMatrix builds four correlated assets with distinct drift and volatility.
func marketMatrix() domain.ReturnMatrix {
	rng := rand.New(rand.NewSource(11))
	drift := []float64{0.0008, 0.0005, 0.0003, 0.0006}
	vol := []float64{0.02, 0.015, 0.008, 0.025}
	tickers := []string{"AAA", "BBB", "CCC", "DDD"}

	values := make([][]float64, len(tickers))
	for t := 0; t < 250; t++ {
		market := rng.NormFloat64()
		for i := range tickers {
			shock := 0.5*market + math.Sqrt(0.75)*rng.NormFloat64()
			values[i] = append(values[i], drift[i]+vol[i]*shock)
		}
	}

	m := make(domain.ReturnMatrix, len(tickers))
	for i, t := range tickers {
		m[t] = domain.DailySeries(start, values[i])
	}
	return m
}

func alternating(scale float64, n int, period int) []float64 {
	out := make([]float64, n)
	for i := range out {
		if (i/period)%2 == 0 {
			out[i] = scale
		} else {
			out[i] = -scale
		}
	}
	return out
}

func TestParseMethod(t *testing.T) {
	for _, m := range Methods() {
		got, err := ParseMethod(string(m))
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}

	got, err := ParseMethod(" Risk_Parity ")
	require.NoError(t, err)
	assert.Equal(t, MethodRiskParity, got)

	_, err = ParseMethod("black_litterman")
	assert.True(t, errors.Is(err, domain.ErrUnknownMethod))
}

func TestOptimize_UnknownMethod(t *testing.T) {
	_, err := newTestOptimizer().Optimize(marketMatrix(), Request{Method: "magic"})

	var optErr *domain.OptimizationError
	require.True(t, errors.As(err, &optErr))
	assert.Equal(t, "magic", optErr.Method)
	assert.True(t, errors.Is(err, domain.ErrUnknownMethod))
}

func TestOptimize_EqualWeight(t *testing.T) {
	o := newTestOptimizer()
	matrix := marketMatrix()

	res, err := o.Optimize(matrix, Request{Method: MethodEqualWeight})
	require.NoError(t, err)

	for _, w := range res.OptimalWeights {
		assert.Equal(t, 0.25, w)
	}

	expected := 0.0
	for _, series := range matrix {
		expected += formulas.Mean(series.Values) * DefaultPeriodsPerYear / 4
	}
	assert.InDelta(t, expected, res.ExpectedReturn, 1e-12)
	assert.Greater(t, res.ExpectedRisk, 0.0)

	thin := domain.ReturnMatrix{
		"A": domain.DailySeries(start, []float64{0.01}),
		"B": domain.DailySeries(start, []float64{0.02}),
	}
	res, err = o.Optimize(thin, Request{Method: MethodEqualWeight})
	require.NoError(t, err)
	assert.Equal(t, domain.WeightMapping{"A": 0.5, "B": 0.5}, res.OptimalWeights)
	assert.Equal(t, 0.0, res.ExpectedRisk)
}

func TestOptimize_AntiCorrelatedMinVariance(t *testing.T) {
	a := alternating(0.01, 40, 1)
	b := make([]float64, len(a))
	for i := range a {
		b[i] = -a[i]
	}
	matrix := domain.ReturnMatrix{
		"A": domain.DailySeries(start, a),
		"B": domain.DailySeries(start, b),
	}

	res, err := newTestOptimizer().Optimize(matrix, Request{Method: MethodMinVariance})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, res.OptimalWeights["A"], 1e-6)
	assert.InDelta(t, 0.5, res.OptimalWeights["B"], 1e-6)
	assert.InDelta(t, 0.0, res.ExpectedRisk, 1e-6)
}

func TestOptimize_AllMethodsRespectBudgetAndBounds(t *testing.T) {
	o := newTestOptimizer()
	matrix := marketMatrix()
	const lo, hi = 0.05, 0.45

	base := Request{
		MinWeight:      lo,
		MaxWeight:      hi,
		CurrentWeights: domain.WeightMapping{"AAA": 0.4, "BBB": 0.3, "CCC": 0.2, "DDD": 0.1},
		Scenarios: []Scenario{
			{Name: "recession", Probability: 0.2, ReturnShift: -0.15, VolatilityMultiplier: 1.8},
		},
		ESGScores: map[string]float64{"AAA": 70, "BBB": 40, "CCC": 85, "DDD": 20},
		Groups:    map[string][]string{"growth": {"AAA", "DDD"}},
	}

	for _, method := range Methods() {
		t.Run(string(method), func(t *testing.T) {
			req := base
			req.Method = method
			res, err := o.Optimize(matrix, req)
			require.NoError(t, err)

			assert.Equal(t, string(method), res.Method)
			assert.InDelta(t, 1.0, res.OptimalWeights.Sum(), 1e-6)
			require.Len(t, res.OptimalWeights, 4)
			for ticker, w := range res.OptimalWeights {
				assert.GreaterOrEqual(t, w, lo-1e-6, ticker)
				assert.LessOrEqual(t, w, hi+1e-6, ticker)
			}
			assert.False(t, math.IsNaN(res.SharpeRatio))
		})
	}
}

func TestOptimize_Markowitz(t *testing.T) {
	o := newTestOptimizer()
	matrix := marketMatrix()

	res, err := o.Optimize(matrix, Request{Method: MethodMarkowitz, FrontierPoints: 10})
	require.NoError(t, err)
	require.NotEmpty(t, res.EfficientFrontier)
	assert.LessOrEqual(t, len(res.EfficientFrontier), 10)
	for _, p := range res.EfficientFrontier {
		assert.InDelta(t, 1.0, p.Weights.Sum(), 1e-6)
	}

	maxSharpe, err := o.Optimize(matrix, Request{Method: MethodMaxSharpe})
	require.NoError(t, err)
	minVar, err := o.Optimize(matrix, Request{Method: MethodMinVariance})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, maxSharpe.SharpeRatio, minVar.SharpeRatio-1e-6)
	assert.LessOrEqual(t, minVar.ExpectedRisk, maxSharpe.ExpectedRisk+1e-6)

	target := (minVar.ExpectedReturn + maxSharpe.ExpectedReturn) / 2
	targeted, err := o.Optimize(matrix, Request{Method: MethodMarkowitz, TargetReturn: &target, FrontierPoints: 2})
	require.NoError(t, err)
	assert.InDelta(t, target, targeted.ExpectedReturn, 1e-4)

	risk := (minVar.ExpectedRisk + maxSharpe.ExpectedRisk) / 2
	atRisk, err := o.Optimize(matrix, Request{Method: MethodMarkowitz, TargetRisk: &risk, FrontierPoints: 2})
	require.NoError(t, err)
	assert.InDelta(t, risk, atRisk.ExpectedRisk, 1e-4)

	unreachable := 10.0
	_, err = o.Optimize(matrix, Request{Method: MethodMarkowitz, TargetReturn: &unreachable, FrontierPoints: 2})
	var optErr *domain.OptimizationError
	require.True(t, errors.As(err, &optErr))
	assert.Equal(t, string(MethodMarkowitz), optErr.Method)
}

func TestOptimize_InfeasibleBounds(t *testing.T) {
	_, err := newTestOptimizer().Optimize(marketMatrix(), Request{Method: MethodMaxSharpe, MaxWeight: 0.1})

	var optErr *domain.OptimizationError
	require.True(t, errors.As(err, &optErr))
	var infeasible *solver.InfeasibleError
	assert.True(t, errors.As(err, &infeasible))

	_, err = newTestOptimizer().Optimize(marketMatrix(), Request{
		Method:     MethodMinVariance,
		MinWeights: map[string]float64{"AAA": 0.6},
		MaxWeights: map[string]float64{"AAA": 0.5},
	})
	require.True(t, errors.As(err, &optErr))
	assert.Contains(t, err.Error(), "AAA")
}

func TestOptimize_InsufficientData(t *testing.T) {
	thin := domain.ReturnMatrix{"A": domain.DailySeries(start, []float64{0.01})}
	_, err := newTestOptimizer().Optimize(thin, Request{Method: MethodMinVariance})

	var optErr *domain.OptimizationError
	require.True(t, errors.As(err, &optErr))
	assert.True(t, errors.Is(err, domain.ErrInsufficientData))
}

func TestOptimize_RiskParity(t *testing.T) {
	matrix := domain.ReturnMatrix{
		"LOW":  domain.DailySeries(start, alternating(0.01, 40, 1)),
		"HIGH": domain.DailySeries(start, alternating(0.02, 40, 2)),
	}
	o := newTestOptimizer()

	res, err := o.Optimize(matrix, Request{Method: MethodRiskParity})
	require.NoError(t, err)
	assert.InDelta(t, 2.0/3.0, res.OptimalWeights["LOW"], 1e-3)
	assert.InDelta(t, 1.0/3.0, res.OptimalWeights["HIGH"], 1e-3)
	assert.InDelta(t, 0.5, res.RiskContributions["LOW"], 1e-3)

	budgeted, err := o.Optimize(matrix, Request{
		Method:     MethodRiskParity,
		RiskBudget: map[string]float64{"LOW": 8, "HIGH": 2},
	})
	require.NoError(t, err)
	assert.InDelta(t, 0.8, budgeted.RiskContributions["LOW"], 1e-3)
}

func TestOptimize_Robust(t *testing.T) {
	u := 1.0
	res, err := newTestOptimizer().Optimize(marketMatrix(), Request{Method: MethodRobust, UncertaintyLevel: &u})
	require.NoError(t, err)
	require.NotNil(t, res.AdjustedExpectedReturn)
	require.NotNil(t, res.OriginalExpectedReturn)
	assert.Less(t, *res.AdjustedExpectedReturn, *res.OriginalExpectedReturn)
	assert.Equal(t, *res.AdjustedExpectedReturn, res.ExpectedReturn)

	negative := -1.0
	_, err = newTestOptimizer().Optimize(marketMatrix(), Request{Method: MethodRobust, UncertaintyLevel: &negative})
	assert.Error(t, err)
}

func TestOptimize_CostAwareStaysNearCurrent(t *testing.T) {
	expensive := 1.0
	current := domain.WeightMapping{"AAA": 0.1, "BBB": 0.2, "CCC": 0.3, "DDD": 0.4}
	res, err := newTestOptimizer().Optimize(marketMatrix(), Request{
		Method:         MethodCostAware,
		CurrentWeights: current,
		DefaultCost:    &expensive,
	})
	require.NoError(t, err)
	require.NotNil(t, res.Turnover)
	require.NotNil(t, res.TransactionCost)
	assert.Less(t, *res.Turnover, 0.05)
	assert.InDelta(t, *res.OriginalExpectedReturn-*res.TransactionCost, res.ExpectedReturn, 1e-12)
}

func TestOptimize_Conditional(t *testing.T) {
	o := newTestOptimizer()
	res, err := o.Optimize(marketMatrix(), Request{
		Method: MethodConditional,
		Scenarios: []Scenario{
			{Name: "crash", Probability: 0.1, ReturnShift: -0.3, VolatilityMultiplier: 2},
			{Name: "boom", Probability: 0.2, ReturnShift: 0.1},
		},
	})
	require.NoError(t, err)
	require.Len(t, res.ScenarioBreakdown, 3)
	assert.Equal(t, BaseScenario, res.ScenarioBreakdown[0].Name)
	assert.InDelta(t, 0.7, res.ScenarioBreakdown[0].Probability, 1e-12)
	assert.InDelta(t, 2*res.ScenarioBreakdown[0].ExpectedRisk, res.ScenarioBreakdown[1].ExpectedRisk, 1e-12)

	_, err = o.Optimize(marketMatrix(), Request{
		Method:    MethodConditional,
		Scenarios: []Scenario{{Name: "a", Probability: 0.7}, {Name: "b", Probability: 0.6}},
	})
	assert.Error(t, err)
}

func TestOptimize_ESG(t *testing.T) {
	o := newTestOptimizer()
	scores := map[string]float64{"AAA": 80, "BBB": 20, "CCC": 60, "DDD": 40}

	target := 50.0
	res, err := o.Optimize(marketMatrix(), Request{Method: MethodESG, ESGScores: scores, TargetESG: &target})
	require.NoError(t, err)
	require.NotNil(t, res.ESGScore)
	assert.InDelta(t, 50.0, *res.ESGScore, 0.01)

	blended, err := o.Optimize(marketMatrix(), Request{Method: MethodESG, ESGScores: scores})
	require.NoError(t, err)
	require.NotNil(t, blended.ESGScore)

	impossible := 95.0
	_, err = o.Optimize(marketMatrix(), Request{Method: MethodESG, ESGScores: scores, TargetESG: &impossible})
	var infeasible *solver.InfeasibleError
	assert.True(t, errors.As(err, &infeasible))
}

func TestOptimize_Hierarchical(t *testing.T) {
	res, err := newTestOptimizer().Optimize(marketMatrix(), Request{
		Method: MethodHierarchical,
		Groups: map[string][]string{"growth": {"AAA", "DDD", "ZZZ"}},
	})
	require.NoError(t, err)

	require.Len(t, res.GroupWeights, 2)
	assert.Contains(t, res.GroupWeights, "growth")
	assert.Contains(t, res.GroupWeights, OtherGroup)
	assert.InDelta(t, 1.0, res.GroupWeights["growth"]+res.GroupWeights[OtherGroup], 1e-6)
	assert.InDelta(t, res.GroupWeights["growth"], res.OptimalWeights["AAA"]+res.OptimalWeights["DDD"], 1e-6)
}

func TestResolveGroups(t *testing.T) {
	groups := resolveGroups(
		[]string{"A", "B", "C", "D"},
		map[string][]string{"y": {"B", "A"}, "x": {"B"}, "empty": {"Q"}},
	)
	require.Len(t, groups, 3)
	assert.Equal(t, tickerGroup{name: "x", members: []string{"B"}}, groups[0])
	assert.Equal(t, tickerGroup{name: "y", members: []string{"A"}}, groups[1])
	assert.Equal(t, tickerGroup{name: OtherGroup, members: []string{"C", "D"}}, groups[2])
}

func TestHRPWeights(t *testing.T) {
	w, err := hrpWeights([][]float64{{1, 0}, {0, 4}}, formulas.LinkageSingle)
	require.NoError(t, err)
	assert.InDelta(t, 0.8, w[0], 1e-12)
	assert.InDelta(t, 0.2, w[1], 1e-12)

	cov := [][]float64{
		{0.04, 0.038, 0.0, 0.0},
		{0.038, 0.04, 0.0, 0.0},
		{0.0, 0.0, 0.09, 0.085},
		{0.0, 0.0, 0.085, 0.09},
	}
	w, err = hrpWeights(cov, formulas.LinkageAverage)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, w[0]+w[1]+w[2]+w[3], 1e-12)
	assert.InDelta(t, w[0], w[1], 1e-12)
	assert.Greater(t, w[0], w[2])
}

func TestHRPWeights_UnknownLinkage(t *testing.T) {
	for _, linkage := range []formulas.Linkage{"ward", "centroid"} {
		_, err := hrpWeights([][]float64{{1, 0}, {0, 4}}, linkage)
		assert.ErrorIs(t, err, formulas.ErrUnknownLinkage, "linkage=%s", linkage)
	}

	_, err := hrpWeights([][]float64{{1}}, "ward")
	assert.ErrorIs(t, err, formulas.ErrUnknownLinkage)
}

func TestOptimize_UnknownLinkageIsBadRequest(t *testing.T) {
	o := newTestOptimizer()
	_, err := o.Optimize(marketMatrix(), Request{Method: MethodHRP, Linkage: "ward"})
	require.Error(t, err)
	assert.ErrorIs(t, err, formulas.ErrUnknownLinkage)
	assert.Equal(t, http.StatusBadRequest, httputil.StatusFor(err))
}

func TestStatistics(t *testing.T) {
	o := newTestOptimizer()
	matrix := marketMatrix()

	eq, err := o.Optimize(matrix, Request{Method: MethodEqualWeight})
	require.NoError(t, err)

	stats := o.Statistics(matrix, domain.WeightMapping{"AAA": 2, "BBB": 2, "CCC": 2, "DDD": 2, "NOPE": 0})
	assert.InDelta(t, eq.ExpectedReturn, stats.ExpectedReturn, 1e-12)
	assert.InDelta(t, eq.ExpectedRisk, stats.ExpectedRisk, 1e-12)
	assert.Equal(t, eq.Statistics(), stats)

	assert.Equal(t, domain.PortfolioStatistics{}, o.Statistics(matrix, domain.WeightMapping{"NOPE": 1}))
}
