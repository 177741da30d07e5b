package scenarios

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/aristath/sentinel-quant/internal/domain"
	"github.com/aristath/sentinel-quant/internal/utils"
)

// Chain is an ordered sequence of scenarios where each step after the first occurs
// with its scenario's probability.
type Chain struct {
	ID        string    `json:"id"`
	Keys      []string  `json:"keys"`
	CreatedAt time.Time `json:"created_at"`
}

// ChainStep records one step of a simulated chain.
type ChainStep struct {
	Index       int     `json:"index"`
	Scenario    string  `json:"scenario"`
	Name        string  `json:"name"`
	Probability float64 `json:"probability"`
	Occurred    bool    `json:"occurred"`
	// Impact, ValueChange and RecoveryDays are zero for skipped steps.
	Impact       float64 `json:"impact"`
	ValueBefore  float64 `json:"value_before"`
	ValueAfter   float64 `json:"value_after"`
	ValueChange  float64 `json:"value_change"`
	RecoveryDays int     `json:"recovery_days"`
}

// ChainResult is the outcome of a simulated chain.
type ChainResult struct {
	ChainID      string  `json:"chain_id"`
	InitialValue float64 `json:"initial_value"`
	FinalValue   float64 `json:"final_value"`
	// TotalImpact is FinalValue / InitialValue − 1.
	TotalImpact       float64     `json:"total_impact"`
	OccurredSteps     int         `json:"occurred_steps"`
	TotalRecoveryDays int         `json:"total_recovery_days"`
	Steps             []ChainStep `json:"steps"`
}

// CreateScenarioChain validates every key and returns a new chain.
func (e *Engine) CreateScenarioChain(keys []string) (*Chain, error) {
	if len(keys) == 0 {
		return nil, fmt.Errorf("a scenario chain needs at least one scenario")
	}
	for _, k := range keys {
		if _, err := e.Scenario(k); err != nil {
			return nil, err
		}
	}
	chain := &Chain{
		ID:        uuid.New().String(),
		Keys:      append([]string(nil), keys...),
		CreatedAt: time.Now().UTC(),
	}
	e.log.Debug().Str("chain_id", chain.ID).Strs("scenarios", chain.Keys).Msg("Created scenario chain")
	return chain, nil
}

// SimulateScenarioChain walks the chain from value. The first step always occurs; each
// later step occurs when a uniform draw from a generator seeded with the engine seed
// falls below its probability. Occurring steps compound on the surviving value.
func (e *Engine) SimulateScenarioChain(chain *Chain, weights domain.WeightMapping, value float64) (*ChainResult, error) {
	if chain == nil || len(chain.Keys) == 0 {
		return nil, fmt.Errorf("empty scenario chain")
	}
	steps := make([]Scenario, len(chain.Keys))
	for i, k := range chain.Keys {
		s, err := e.Scenario(k)
		if err != nil {
			return nil, err
		}
		steps[i] = s
	}

	defer utils.OperationTimer("scenario_chain", e.log)()

	rng := rand.New(rand.NewSource(e.seed))
	res := &ChainResult{
		ChainID:      chain.ID,
		InitialValue: value,
		Steps:        make([]ChainStep, 0, len(steps)),
	}
	current := value
	for i, s := range steps {
		step := ChainStep{
			Index:       i,
			Scenario:    s.Key,
			Name:        s.Name,
			Probability: s.Probability,
			Occurred:    i == 0 || rng.Float64() < s.Probability,
			ValueBefore: current,
			ValueAfter:  current,
		}
		if step.Occurred {
			impact := e.apply(s, weights, current)
			step.Impact = impact.Impact
			step.ValueChange = impact.ValueChange
			step.ValueAfter = impact.StressedValue
			step.RecoveryDays = impact.RecoveryDays
			current = impact.StressedValue
			res.OccurredSteps++
			res.TotalRecoveryDays += impact.RecoveryDays
		}
		res.Steps = append(res.Steps, step)
	}

	res.FinalValue = current
	if value != 0 {
		res.TotalImpact = current/value - 1
	}
	return res, nil
}
