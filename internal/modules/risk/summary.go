package risk

// SummaryOptions configures Summary.
type SummaryOptions struct {
	PeriodsPerYear float64
	Method         VaRMethod
}

// Summary bundles the headline risk metrics of a return series.
type Summary struct {
	Observations int            `json:"observations"`
	VaR95        float64        `json:"var_95"`
	VaR99        float64        `json:"var_99"`
	CVaR95       float64        `json:"cvar_95"`
	CVaR99       float64        `json:"cvar_99"`
	Volatility   float64        `json:"volatility"`
	Downside     float64        `json:"downside_deviation"`
	MaxDrawdown  float64        `json:"max_drawdown"`
	Tails        TailStatistics `json:"tails"`
	Method       VaRMethod      `json:"method"`
}

// Summary computes VaR and CVaR at 95% and 99%, volatility, downside deviation,
// max drawdown and tail statistics in one call.
func (c *Calculator) Summary(returns []float64, opts SummaryOptions) Summary {
	if opts.PeriodsPerYear <= 0 {
		opts.PeriodsPerYear = DefaultPeriodsPerYear
	}
	if opts.Method == "" {
		opts.Method = VaRHistorical
	}
	if len(returns) == 0 {
		c.log.Warn().Msg("Empty return series, risk summary is zero")
		return Summary{Method: opts.Method}
	}

	return Summary{
		Observations: len(returns),
		VaR95:        c.VaR(returns, 0.95, 1, opts.Method),
		VaR99:        c.VaR(returns, 0.99, 1, opts.Method),
		CVaR95:       c.CVaR(returns, 0.95, opts.Method),
		CVaR99:       c.CVaR(returns, 0.99, opts.Method),
		Volatility:   Volatility(returns, opts.PeriodsPerYear),
		Downside:     DownsideDeviation(returns, 0, opts.PeriodsPerYear),
		MaxDrawdown:  MaxDrawdown(returns),
		Tails:        Tails(returns),
		Method:       opts.Method,
	}
}
