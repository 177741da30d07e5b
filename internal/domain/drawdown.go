package domain

import (
	"encoding/json"
	"time"
)

// DrawdownPeriod is one peak-to-trough-to-recovery episode.
// An open drawdown has nil Recovery and nil RecoveryDays.
type DrawdownPeriod struct {
	Start        time.Time
	Valley       time.Time
	Recovery     *time.Time
	Depth        float64
	LengthDays   int
	RecoveryDays *int
}

// IsOpen reports whether the drawdown has not recovered.
func (p DrawdownPeriod) IsOpen() bool {
	return p.Recovery == nil
}

// MarshalJSON encodes dates as YYYY-MM-DD strings and open recoveries as null.
func (p DrawdownPeriod) MarshalJSON() ([]byte, error) {
	var recovery *string
	if p.Recovery != nil {
		s := p.Recovery.Format(DateLayout)
		recovery = &s
	}
	return json.Marshal(struct {
		Start        string  `json:"start"`
		Valley       string  `json:"valley"`
		Recovery     *string `json:"recovery"`
		Depth        float64 `json:"depth"`
		LengthDays   int     `json:"length_days"`
		RecoveryDays *int    `json:"recovery_days"`
	}{
		Start:        p.Start.Format(DateLayout),
		Valley:       p.Valley.Format(DateLayout),
		Recovery:     recovery,
		Depth:        p.Depth,
		LengthDays:   p.LengthDays,
		RecoveryDays: p.RecoveryDays,
	})
}
