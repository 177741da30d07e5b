package scenarios

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/aristath/sentinel-quant/internal/domain"
)

// DefaultSeed seeds chain simulations.
const DefaultSeed int64 = 42

// Options configures an Engine.
type Options struct {
	Seed int64
	// AssetClasses overrides or extends the built-in ticker → class mapping.
	AssetClasses map[string]string
}

// Engine holds the scenario catalogue and the ticker → asset class mapping.
// It is safe for concurrent use.
type Engine struct {
	mu        sync.RWMutex
	catalogue map[string]Scenario
	classes   map[string]string
	seed      int64
	log       zerolog.Logger
}

// NewEngine creates an engine loaded with the built-in scenarios.
func NewEngine(opts Options, log zerolog.Logger) *Engine {
	if opts.Seed == 0 {
		opts.Seed = DefaultSeed
	}
	e := &Engine{
		catalogue: make(map[string]Scenario),
		classes:   make(map[string]string, len(defaultAssetClasses)+len(opts.AssetClasses)),
		seed:      opts.Seed,
		log:       log.With().Str("component", "scenarios").Logger(),
	}
	for _, s := range builtinScenarios() {
		e.catalogue[s.Key] = s
	}
	for t, c := range defaultAssetClasses {
		e.classes[t] = c
	}
	for t, c := range opts.AssetClasses {
		e.classes[strings.ToUpper(t)] = strings.ToLower(c)
	}
	return e
}

// AddScenario registers a custom scenario. Keys are unique for the engine's lifetime.
func (e *Engine) AddScenario(s Scenario) error {
	if err := s.validate(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.catalogue[s.Key]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateScenario, s.Key)
	}
	e.catalogue[s.Key] = s.clone()
	e.log.Info().Str("scenario", s.Key).Msg("Registered custom scenario")
	return nil
}

// Scenario looks up a scenario. Unknown keys wrap domain.ErrUnknownScenario.
func (e *Engine) Scenario(key string) (Scenario, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	s, ok := e.catalogue[key]
	if !ok {
		return Scenario{}, fmt.Errorf("scenario %q: %w", key, domain.ErrUnknownScenario)
	}
	return s.clone(), nil
}

// ListScenarios returns every scenario sorted by key.
func (e *Engine) ListScenarios() []Scenario {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]Scenario, 0, len(e.catalogue))
	for _, s := range e.catalogue {
		out = append(out, s.clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// AssetClass maps a ticker to its asset class, falling back to DefaultClass.
func (e *Engine) AssetClass(ticker string) string {
	if c, ok := e.classes[strings.ToUpper(ticker)]; ok {
		return c
	}
	return DefaultClass
}

// AssetImpact is one holding's share of a scenario impact.
type AssetImpact struct {
	Ticker       string  `json:"ticker"`
	AssetClass   string  `json:"asset_class"`
	Weight       float64 `json:"weight"`
	Impact       float64 `json:"impact"`
	Contribution float64 `json:"contribution"`
}

// ImpactResult is the outcome of one scenario applied to a portfolio.
type ImpactResult struct {
	Scenario       string  `json:"scenario"`
	Name           string  `json:"name"`
	PortfolioValue float64 `json:"portfolio_value"`
	// Impact is the portfolio return during the scenario, Σ w × impact(class).
	Impact        float64       `json:"impact"`
	ValueChange   float64       `json:"value_change"`
	StressedValue float64       `json:"stressed_value"`
	Severity      string        `json:"severity"`
	RecoveryDays  int           `json:"recovery_days"`
	Breakdown     []AssetImpact `json:"breakdown"`
}

// SimulateScenarioImpact applies a scenario to weights and a portfolio value.
// Weights are normalized; the breakdown is sorted by ticker.
func (e *Engine) SimulateScenarioImpact(weights domain.WeightMapping, key string, value float64) (*ImpactResult, error) {
	s, err := e.Scenario(key)
	if err != nil {
		return nil, err
	}
	return e.apply(s, weights, value), nil
}

func (e *Engine) apply(s Scenario, weights domain.WeightMapping, value float64) *ImpactResult {
	if sum := weights.Sum(); sum > 0 && math.Abs(sum-1) > 1e-6 {
		e.log.Warn().Float64("weight_sum", sum).Str("scenario", s.Key).Msg("Weights do not sum to 1, normalizing")
	}
	norm := weights.Normalized()

	res := &ImpactResult{
		Scenario:       s.Key,
		Name:           s.Name,
		PortfolioValue: value,
		Breakdown:      make([]AssetImpact, 0, len(norm)),
	}
	for _, t := range norm.Tickers() {
		class := e.AssetClass(t)
		impact := s.impact(class)
		contribution := norm[t] * impact
		res.Impact += contribution
		res.Breakdown = append(res.Breakdown, AssetImpact{
			Ticker:       t,
			AssetClass:   class,
			Weight:       norm[t],
			Impact:       impact,
			Contribution: contribution,
		})
	}
	res.ValueChange = value * res.Impact
	res.StressedValue = value + res.ValueChange
	res.Severity, _ = severity(res.Impact)
	res.RecoveryDays = RecoveryDays(s.DurationDays, res.Impact)
	return res
}
