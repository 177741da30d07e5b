// Package simulation projects portfolio values forward with seeded Monte Carlo paths:
// plain Gaussian, regime-switching and multi-asset copula models, plus recovery-time
// and sensitivity analysis.
package simulation

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/aristath/sentinel-quant/internal/workers"
)

const (
	// TradingDaysPerYear converts annual parameters to daily steps.
	TradingDaysPerYear = 252
	// DefaultSeed makes every simulation call reproducible.
	DefaultSeed int64 = 42
	// DefaultSimulations is the path count when a request leaves it unset.
	DefaultSimulations = 1000
	// DefaultMemoryBudget caps simulations × days × 8 bytes.
	DefaultMemoryBudget int64 = 1 << 30
	// ClampedSimulations is the path count used once a request exceeds the memory budget.
	ClampedSimulations = 10000
	// DefaultRecoveryYears caps recovery-time simulations.
	DefaultRecoveryYears = 10.0
	// MaxYears is the longest horizon any simulation accepts.
	MaxYears = 100.0
)

// Options configures an Engine.
type Options struct {
	Seed               int64
	MemoryBudget       int64
	Workers            int
	DefaultSimulations int
}

// Engine runs simulations. Each call creates its own generator from the engine seed,
// so concurrent calls neither share state nor change each other's draws.
type Engine struct {
	seed         int64
	memoryBudget int64
	simulations  int
	pool         *workers.WorkerPool
	log          zerolog.Logger
}

// NewEngine creates a new simulation engine. The configured memory budget is kept
// as is; a host with less available memory is only reported.
func NewEngine(opts Options, log zerolog.Logger) *Engine {
	log = log.With().Str("component", "simulation").Logger()
	if opts.Seed == 0 {
		opts.Seed = DefaultSeed
	}
	if opts.MemoryBudget <= 0 {
		opts.MemoryBudget = DefaultMemoryBudget
	}
	if opts.DefaultSimulations <= 0 {
		opts.DefaultSimulations = DefaultSimulations
	}

	if vm, err := mem.VirtualMemory(); err != nil {
		log.Debug().Err(err).Msg("Failed to read host memory")
	} else if available := int64(vm.Available); available > 0 && available < opts.MemoryBudget {
		log.Warn().
			Int64("configured_bytes", opts.MemoryBudget).
			Int64("available_bytes", available).
			Msg("Simulation memory budget exceeds available host memory")
	}

	return &Engine{
		seed:         opts.Seed,
		memoryBudget: opts.MemoryBudget,
		simulations:  opts.DefaultSimulations,
		pool:         workers.NewWorkerPool(opts.Workers),
		log:          log,
	}
}

// Seed returns the seed every call starts from.
func (e *Engine) Seed() int64 {
	return e.seed
}

// MemoryBudget returns the configured simulation memory budget in bytes.
func (e *Engine) MemoryBudget() int64 {
	return e.memoryBudget
}

func (e *Engine) newRNG() *rand.Rand {
	return rand.New(rand.NewSource(e.seed))
}

// guard resolves the path count and applies the memory guardrail: when
// simulations × days × 8 bytes exceeds the budget, simulations drop to ClampedSimulations.
func (e *Engine) guard(simulations, days int) int {
	if simulations <= 0 {
		simulations = e.simulations
	}
	required := int64(simulations) * int64(days) * 8
	if required > e.memoryBudget && simulations > ClampedSimulations {
		e.log.Warn().
			Int("requested", simulations).
			Int("clamped", ClampedSimulations).
			Int("trading_days", days).
			Int64("required_bytes", required).
			Int64("budget_bytes", e.memoryBudget).
			Msg("Simulation exceeds memory budget, clamping simulations")
		return ClampedSimulations
	}
	return simulations
}

// checkPath rejects a horizon whose single path of days+1 values does not fit the budget.
func (e *Engine) checkPath(days int) error {
	required := (int64(days) + 1) * 8
	if required > e.memoryBudget {
		return fmt.Errorf("a path of %d trading days needs %d bytes, budget is %d", days, required, e.memoryBudget)
	}
	return nil
}

// horizon converts years to trading days.
func horizon(years float64) (int, error) {
	if years <= 0 || math.IsNaN(years) || math.IsInf(years, 0) {
		return 0, fmt.Errorf("years must be positive, got %v", years)
	}
	if years > MaxYears {
		return 0, fmt.Errorf("years must not exceed %v, got %v", MaxYears, years)
	}
	days := int(math.Round(years * TradingDaysPerYear))
	if days < 1 {
		return 0, fmt.Errorf("years %v is shorter than one trading day", years)
	}
	return days, nil
}
