// Package scenarios applies named market scenarios to a weighted portfolio, alone or as
// probabilistic chains of consecutive shocks.
package scenarios

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Asset classes used by scenario impacts.
const (
	ClassEquity     = "equity"
	ClassBond       = "bond"
	ClassCommodity  = "commodity"
	ClassGold       = "gold"
	ClassRealEstate = "real_estate"
	ClassCash       = "cash"
	ClassCrypto     = "crypto"

	// DefaultClass is assigned to tickers with no known asset class.
	DefaultClass = ClassEquity
)

// ErrDuplicateScenario is returned when a scenario key is already registered.
var ErrDuplicateScenario = errors.New("scenario already exists")

// Scenario is an immutable shock definition.
type Scenario struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description"`
	// Impacts maps asset class to its return during the scenario, e.g. -0.3.
	Impacts      map[string]float64 `json:"impacts"`
	DurationDays int                `json:"duration_days"`
	// Probability is the chance the scenario follows its predecessor in a chain.
	Probability         float64 `json:"probability"`
	CorrelationIncrease float64 `json:"correlation_increase"`
}

// impact returns the scenario return for an asset class; classes the scenario
// does not mention are unaffected.
func (s Scenario) impact(class string) float64 {
	return s.Impacts[class]
}

func (s Scenario) clone() Scenario {
	impacts := make(map[string]float64, len(s.Impacts))
	for k, v := range s.Impacts {
		impacts[k] = v
	}
	s.Impacts = impacts
	return s
}

func (s Scenario) validate() error {
	if strings.TrimSpace(s.Key) == "" {
		return fmt.Errorf("scenario key is required")
	}
	if len(s.Impacts) == 0 {
		return fmt.Errorf("scenario %q has no impacts", s.Key)
	}
	for class, v := range s.Impacts {
		if v < -1 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("scenario %q has invalid impact %v for %s", s.Key, v, class)
		}
	}
	if s.DurationDays < 0 {
		return fmt.Errorf("scenario %q has negative duration", s.Key)
	}
	if s.Probability < 0 || s.Probability > 1 || math.IsNaN(s.Probability) {
		return fmt.Errorf("scenario %q probability must be in [0, 1], got %v", s.Key, s.Probability)
	}
	return nil
}

// builtinScenarios is the catalogue every engine starts with.
func builtinScenarios() []Scenario {
	return []Scenario{
		{
			Key:         "market_crash",
			Name:        "Market Crash",
			Description: "Broad equity sell-off with a flight to quality",
			Impacts: map[string]float64{
				ClassEquity: -0.35, ClassBond: 0.05, ClassCommodity: -0.20, ClassGold: 0.10,
				ClassRealEstate: -0.30, ClassCash: 0, ClassCrypto: -0.60,
			},
			DurationDays: 180, Probability: 0.05, CorrelationIncrease: 0.30,
		},
		{
			Key:         "inflation_spike",
			Name:        "Inflation Spike",
			Description: "Unexpected surge in inflation pushes real yields down and commodities up",
			Impacts: map[string]float64{
				ClassEquity: -0.15, ClassBond: -0.12, ClassCommodity: 0.25, ClassGold: 0.15,
				ClassRealEstate: 0.05, ClassCash: -0.03, ClassCrypto: -0.20,
			},
			DurationDays: 365, Probability: 0.10, CorrelationIncrease: 0.15,
		},
		{
			Key:         "interest_rate_shock",
			Name:        "Interest Rate Shock",
			Description: "Sharp rise in policy rates reprices duration and growth assets",
			Impacts: map[string]float64{
				ClassEquity: -0.20, ClassBond: -0.15, ClassCommodity: -0.05, ClassGold: -0.08,
				ClassRealEstate: -0.25, ClassCash: 0.02, ClassCrypto: -0.40,
			},
			DurationDays: 270, Probability: 0.10, CorrelationIncrease: 0.20,
		},
		{
			Key:         "recession",
			Name:        "Recession",
			Description: "Economic contraction with falling earnings and easing monetary policy",
			Impacts: map[string]float64{
				ClassEquity: -0.25, ClassBond: 0.08, ClassCommodity: -0.30, ClassGold: 0.05,
				ClassRealEstate: -0.20, ClassCash: 0.01, ClassCrypto: -0.45,
			},
			DurationDays: 365, Probability: 0.15, CorrelationIncrease: 0.25,
		},
		{
			Key:         "stagflation",
			Name:        "Stagflation",
			Description: "Stagnant growth combined with persistent inflation",
			Impacts: map[string]float64{
				ClassEquity: -0.22, ClassBond: -0.10, ClassCommodity: 0.15, ClassGold: 0.20,
				ClassRealEstate: -0.10, ClassCash: -0.04, ClassCrypto: -0.35,
			},
			DurationDays: 540, Probability: 0.05, CorrelationIncrease: 0.20,
		},
		{
			Key:         "liquidity_crisis",
			Name:        "Liquidity Crisis",
			Description: "Funding markets seize up and forced selling hits every risky asset",
			Impacts: map[string]float64{
				ClassEquity: -0.30, ClassBond: -0.05, ClassCommodity: -0.25, ClassGold: -0.05,
				ClassRealEstate: -0.35, ClassCash: 0, ClassCrypto: -0.55,
			},
			DurationDays: 90, Probability: 0.05, CorrelationIncrease: 0.40,
		},
		{
			Key:         "geopolitical_crisis",
			Name:        "Geopolitical Crisis",
			Description: "Military or trade conflict triggers risk-off positioning and an energy shock",
			Impacts: map[string]float64{
				ClassEquity: -0.12, ClassBond: 0.03, ClassCommodity: 0.20, ClassGold: 0.12,
				ClassRealEstate: -0.08, ClassCash: 0, ClassCrypto: -0.15,
			},
			DurationDays: 60, Probability: 0.10, CorrelationIncrease: 0.15,
		},
		{
			Key:         "tech_bubble_burst",
			Name:        "Tech Bubble Burst",
			Description: "Collapse of richly valued growth and technology names",
			Impacts: map[string]float64{
				ClassEquity: -0.40, ClassBond: 0.06, ClassCommodity: -0.05, ClassGold: 0.05,
				ClassRealEstate: -0.10, ClassCash: 0, ClassCrypto: -0.70,
			},
			DurationDays: 730, Probability: 0.05, CorrelationIncrease: 0.25,
		},
	}
}

// defaultAssetClasses maps common tickers to asset classes.
var defaultAssetClasses = map[string]string{
	"SPY": ClassEquity, "VOO": ClassEquity, "VTI": ClassEquity, "QQQ": ClassEquity,
	"IWM": ClassEquity, "EFA": ClassEquity, "EEM": ClassEquity, "VEA": ClassEquity,
	"VWO": ClassEquity,
	"TLT": ClassBond, "IEF": ClassBond, "SHY": ClassBond, "AGG": ClassBond,
	"BND": ClassBond, "LQD": ClassBond, "HYG": ClassBond, "TIP": ClassBond,
	"GLD": ClassGold, "IAU": ClassGold,
	"DBC": ClassCommodity, "USO": ClassCommodity, "SLV": ClassCommodity, "PDBC": ClassCommodity,
	"VNQ": ClassRealEstate, "IYR": ClassRealEstate, "SCHH": ClassRealEstate,
	"BIL": ClassCash, "SGOV": ClassCash, "CASH": ClassCash,
	"BTC-USD": ClassCrypto, "ETH-USD": ClassCrypto, "IBIT": ClassCrypto,
}

// Severity tiers of a portfolio impact and their recovery multipliers.
const (
	SeverityMinor    = "minor"
	SeverityModerate = "moderate"
	SeverityMajor    = "major"
	SeveritySevere   = "severe"
)

// severity classifies |impact| at the 10%, 20% and 30% thresholds.
func severity(impact float64) (string, float64) {
	switch a := math.Abs(impact); {
	case a < 0.10:
		return SeverityMinor, 1
	case a < 0.20:
		return SeverityModerate, 2
	case a < 0.30:
		return SeverityMajor, 3
	default:
		return SeveritySevere, 5
	}
}

// RecoveryDays estimates how long a portfolio needs to recover from impact:
// the scenario duration scaled by the severity multiplier.
func RecoveryDays(durationDays int, impact float64) int {
	_, mult := severity(impact)
	return int(float64(durationDays) * mult)
}
