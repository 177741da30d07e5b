// Package risk provides VaR/CVaR estimation, drawdown analysis, tail and rolling
// statistics, Euler risk decomposition and stress testing.
package risk

import (
	"github.com/rs/zerolog"
)

const (
	// DefaultSeed makes Monte Carlo VaR reproducible across calls.
	DefaultSeed int64 = 42
	// DefaultSimulations is the Monte Carlo VaR sample size.
	DefaultSimulations = 10000
	// MinDrawdownObservations is the shortest series MaxDrawdown analyzes.
	MinDrawdownObservations = 5
	// DefaultPeriodsPerYear is the number of trading days used to annualize.
	DefaultPeriodsPerYear = 252.0
)

// Options configures a Calculator.
type Options struct {
	Seed        int64
	Simulations int
}

// Calculator computes risk metrics. It holds no state beyond its configuration,
// so a single instance is safe for concurrent use.
type Calculator struct {
	seed        int64
	simulations int
	log         zerolog.Logger
}

// NewCalculator creates a new risk calculator.
func NewCalculator(opts Options, log zerolog.Logger) *Calculator {
	if opts.Seed == 0 {
		opts.Seed = DefaultSeed
	}
	if opts.Simulations <= 0 {
		opts.Simulations = DefaultSimulations
	}
	return &Calculator{
		seed:        opts.Seed,
		simulations: opts.Simulations,
		log:         log.With().Str("component", "risk").Logger(),
	}
}
