package risk

import (
	"fmt"
	"math"

	"github.com/markcheno/go-talib"

	"github.com/aristath/sentinel-quant/internal/domain"
	"github.com/aristath/sentinel-quant/pkg/formulas"
)

// RollingMetrics holds trailing-window statistics, one row per window end date.
type RollingMetrics struct {
	Window      int       `json:"window"`
	Dates       []string  `json:"dates"`
	Volatility  []float64 `json:"volatility"`
	Mean        []float64 `json:"mean"`
	VaR95       []float64 `json:"var_95"`
	MaxDrawdown []float64 `json:"max_drawdown"`
}

// Rolling computes trailing-window annualized volatility, mean return, historical VaR 95
// and max drawdown. Volatility is the window's population standard deviation
// (go-talib StdDev) scaled by √periodsPerYear.
func (c *Calculator) Rolling(returns domain.ReturnSeries, window int, periodsPerYear float64) (*RollingMetrics, error) {
	if window < 2 {
		return nil, fmt.Errorf("window must be at least 2, got %d", window)
	}
	if returns.Len() < window {
		return nil, fmt.Errorf("series has %d observations, shorter than window %d: %w",
			returns.Len(), window, domain.ErrInsufficientData)
	}
	if periodsPerYear <= 0 {
		periodsPerYear = DefaultPeriodsPerYear
	}

	values := returns.Values
	std := talib.StdDev(values, window, 1.0)
	sma := talib.Sma(values, window)

	n := len(values) - window + 1
	out := &RollingMetrics{
		Window:      window,
		Dates:       make([]string, n),
		Volatility:  make([]float64, n),
		Mean:        make([]float64, n),
		VaR95:       make([]float64, n),
		MaxDrawdown: make([]float64, n),
	}
	for k := 0; k < n; k++ {
		end := k + window - 1
		slice := values[k : end+1]
		out.Dates[k] = returns.Dates[end].Format(domain.DateLayout)
		out.Volatility[k] = formulas.Finite(std[end]*math.Sqrt(periodsPerYear), 0)
		out.Mean[k] = formulas.Finite(sma[end], 0)
		out.VaR95[k] = c.HistoricalVaR(slice, 0.95, 1)
		out.MaxDrawdown[k] = windowMaxDrawdown(slice)
	}
	return out, nil
}

// windowMaxDrawdown is MaxDrawdown without the minimum-length guard.
func windowMaxDrawdown(returns []float64) float64 {
	worst := 0.0
	for _, dd := range DrawdownValues(returns) {
		worst = math.Min(worst, dd)
	}
	return math.Abs(worst)
}
