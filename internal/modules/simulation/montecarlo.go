package simulation

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/aristath/sentinel-quant/internal/utils"
	"github.com/aristath/sentinel-quant/pkg/formulas"
)

// Params describes a single-asset (or pre-aggregated portfolio) projection.
type Params struct {
	// ExpectedReturn and Volatility are annual.
	ExpectedReturn     float64 `json:"expected_return"`
	Volatility         float64 `json:"volatility"`
	InitialValue       float64 `json:"initial_value"`
	Years              float64 `json:"years"`
	Simulations        int     `json:"simulations"`
	AnnualContribution float64 `json:"annual_contribution"`
}

func (p Params) validate() (int, error) {
	if p.InitialValue <= 0 {
		return 0, fmt.Errorf("initial value must be positive, got %v", p.InitialValue)
	}
	if p.Volatility < 0 {
		return 0, fmt.Errorf("volatility must be non-negative, got %v", p.Volatility)
	}
	return horizon(p.Years)
}

// Percentiles is the ladder reported for simulated final values.
type Percentiles struct {
	Min    float64 `json:"min"`
	P10    float64 `json:"p10"`
	P25    float64 `json:"p25"`
	Median float64 `json:"median"`
	Mean   float64 `json:"mean"`
	P75    float64 `json:"p75"`
	P90    float64 `json:"p90"`
	Max    float64 `json:"max"`
}

// Ladder summarizes values; an empty input yields zeros.
func Ladder(values []float64) Percentiles {
	if len(values) == 0 {
		return Percentiles{}
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return Percentiles{
		Min:    sorted[0],
		P10:    formulas.PercentileSorted(sorted, 10),
		P25:    formulas.PercentileSorted(sorted, 25),
		Median: formulas.PercentileSorted(sorted, 50),
		Mean:   formulas.Mean(sorted),
		P75:    formulas.PercentileSorted(sorted, 75),
		P90:    formulas.PercentileSorted(sorted, 90),
		Max:    sorted[len(sorted)-1],
	}
}

// Result summarizes the final values of a projection.
type Result struct {
	Simulations        int         `json:"simulations"`
	TradingDays        int         `json:"trading_days"`
	InitialValue       float64     `json:"initial_value"`
	TotalContributions float64     `json:"total_contributions"`
	FinalValue         Percentiles `json:"final_value"`
	ProbabilityDouble  float64     `json:"probability_2x"`
	ProbabilityTriple  float64     `json:"probability_3x"`
	ProbabilityQuad    float64     `json:"probability_4x"`
	// ProbabilityOfLoss is the share of paths ending below the capital put in.
	ProbabilityOfLoss float64 `json:"probability_of_loss"`
	// MedianCAGR is the annual growth rate that turns the initial value into the median final value.
	MedianCAGR float64 `json:"median_cagr"`
	// RegimeShares is the fraction of simulated days spent in each regime.
	RegimeShares map[string]float64 `json:"regime_shares,omitempty"`
}

// dailyReturns produces the daily returns of one path.
type dailyReturns func() float64

// pathModel creates the return generator for one path from the call's shared generator.
type pathModel func(rng *rand.Rand) dailyReturns

// projection is the compounding setup shared by every model.
type projection struct {
	initial      float64
	contribution float64 // per day
	days         int
	simulations  int
	years        float64
}

// step compounds one day: v[t+1] = v[t](1 + r) + contribution.
func (p projection) step(v, r float64) float64 {
	return v*(1+r) + p.contribution
}

func (e *Engine) newProjection(initial, annualContribution, years float64, simulations, days int) projection {
	return projection{
		initial:      initial,
		contribution: annualContribution / TradingDaysPerYear,
		days:         days,
		simulations:  e.guard(simulations, days),
		years:        years,
	}
}

// finals runs every path on one generator, paths in order, and returns final values.
func (p projection) finals(rng *rand.Rand, model pathModel) []float64 {
	out := make([]float64, p.simulations)
	for s := range out {
		next := model(rng)
		v := p.initial
		for t := 0; t < p.days; t++ {
			v = p.step(v, next())
		}
		out[s] = v
	}
	return out
}

func (p projection) summarize(finals []float64) *Result {
	res := &Result{
		Simulations:        len(finals),
		TradingDays:        p.days,
		InitialValue:       p.initial,
		TotalContributions: p.contribution * float64(p.days),
		FinalValue:         Ladder(finals),
	}
	if len(finals) == 0 {
		return res
	}

	invested := p.initial + res.TotalContributions
	var double, triple, quad, loss int
	for _, v := range finals {
		if v >= 2*p.initial {
			double++
		}
		if v >= 3*p.initial {
			triple++
		}
		if v >= 4*p.initial {
			quad++
		}
		if v < invested {
			loss++
		}
	}
	n := float64(len(finals))
	res.ProbabilityDouble = float64(double) / n
	res.ProbabilityTriple = float64(triple) / n
	res.ProbabilityQuad = float64(quad) / n
	res.ProbabilityOfLoss = float64(loss) / n

	if res.FinalValue.Median > 0 && p.years > 0 {
		res.MedianCAGR = math.Pow(res.FinalValue.Median/p.initial, 1/p.years) - 1
	} else {
		res.MedianCAGR = -1
	}
	return res
}

// gaussianModel draws daily returns from N(μ/252, σ/√252).
func gaussianModel(annualReturn, annualVolatility float64) pathModel {
	mu := annualReturn / TradingDaysPerYear
	sigma := annualVolatility / math.Sqrt(TradingDaysPerYear)
	return func(rng *rand.Rand) dailyReturns {
		return func() float64 {
			return mu + sigma*rng.NormFloat64()
		}
	}
}

// MonteCarlo projects the portfolio value with Gaussian daily returns.
// Identical params always produce identical output.
func (e *Engine) MonteCarlo(params Params) (*Result, error) {
	days, err := params.validate()
	if err != nil {
		return nil, err
	}
	p := e.newProjection(params.InitialValue, params.AnnualContribution, params.Years, params.Simulations, days)
	defer utils.OperationTimerWithFields("monte_carlo", e.log, map[string]interface{}{
		"simulations":  p.simulations,
		"trading_days": days,
	})()

	return p.summarize(p.finals(e.newRNG(), gaussianModel(params.ExpectedReturn, params.Volatility))), nil
}
