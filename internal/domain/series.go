// Package domain provides the value types shared by the analytics modules.
package domain

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// DateLayout is the ISO-8601 calendar date format used at the JSON boundary.
const DateLayout = "2006-01-02"

// Series is an ordered sequence of (date, value) observations.
// Dates are strictly increasing; Validate reports violations.
type Series struct {
	Dates  []time.Time
	Values []float64
}

// ReturnSeries holds periodic returns as fractions (0.01 = 1%).
type ReturnSeries = Series

// PriceSeries holds prices (adjusted close or close).
type PriceSeries = Series

// NewSeries builds a series from unordered observations.
// Observations are sorted by date; when a date repeats the last observation wins.
func NewSeries(dates []time.Time, values []float64) (Series, error) {
	if len(dates) != len(values) {
		return Series{}, fmt.Errorf("series length mismatch: %d dates, %d values", len(dates), len(values))
	}

	byDate := make(map[time.Time]float64, len(dates))
	for i, d := range dates {
		byDate[truncateDay(d)] = values[i]
	}

	keys := make([]time.Time, 0, len(byDate))
	for d := range byDate {
		keys = append(keys, d)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })

	out := Series{Dates: keys, Values: make([]float64, len(keys))}
	for i, d := range keys {
		out.Values[i] = byDate[d]
	}
	return out, nil
}

// MustSeries is NewSeries for inputs known to be well formed.
func MustSeries(dates []time.Time, values []float64) Series {
	s, err := NewSeries(dates, values)
	if err != nil {
		panic(err)
	}
	return s
}

// DailySeries builds a series of consecutive calendar days starting at start.
func DailySeries(start time.Time, values []float64) Series {
	dates := make([]time.Time, len(values))
	for i := range values {
		dates[i] = truncateDay(start).AddDate(0, 0, i)
	}
	return Series{Dates: dates, Values: append([]float64(nil), values...)}
}

// Len returns the number of observations.
func (s Series) Len() int {
	return len(s.Values)
}

// IsEmpty reports whether the series has no observations.
func (s Series) IsEmpty() bool {
	return len(s.Values) == 0
}

// Validate checks that dates and values line up and dates are strictly increasing.
func (s Series) Validate() error {
	if len(s.Dates) != len(s.Values) {
		return fmt.Errorf("series length mismatch: %d dates, %d values", len(s.Dates), len(s.Values))
	}
	for i := 1; i < len(s.Dates); i++ {
		if !s.Dates[i].After(s.Dates[i-1]) {
			return fmt.Errorf("dates not strictly increasing at index %d (%s)", i, s.Dates[i].Format(DateLayout))
		}
	}
	return nil
}

// Clone returns a deep copy.
func (s Series) Clone() Series {
	return Series{
		Dates:  append([]time.Time(nil), s.Dates...),
		Values: append([]float64(nil), s.Values...),
	}
}

// Index returns a date → position lookup.
func (s Series) Index() map[time.Time]int {
	idx := make(map[time.Time]int, len(s.Dates))
	for i, d := range s.Dates {
		idx[truncateDay(d)] = i
	}
	return idx
}

type seriesJSON struct {
	Dates  []string  `json:"dates"`
	Values []float64 `json:"values"`
}

// MarshalJSON encodes dates as YYYY-MM-DD strings.
func (s Series) MarshalJSON() ([]byte, error) {
	out := seriesJSON{Dates: make([]string, len(s.Dates)), Values: s.Values}
	for i, d := range s.Dates {
		out.Dates[i] = d.Format(DateLayout)
	}
	if out.Values == nil {
		out.Values = []float64{}
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts YYYY-MM-DD or RFC3339 dates and normalizes order.
func (s *Series) UnmarshalJSON(data []byte) error {
	var in seriesJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	dates := make([]time.Time, len(in.Dates))
	for i, raw := range in.Dates {
		d, err := ParseDate(raw)
		if err != nil {
			return err
		}
		dates[i] = d
	}
	parsed, err := NewSeries(dates, in.Values)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseDate parses an ISO-8601 date, with or without a time component.
func ParseDate(raw string) (time.Time, error) {
	if d, err := time.Parse(DateLayout, raw); err == nil {
		return d, nil
	}
	d, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", raw, err)
	}
	return truncateDay(d), nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ReturnMatrix maps ticker → return series. Series are aligned implicitly on dates.
type ReturnMatrix map[string]ReturnSeries

// Tickers returns the matrix keys sorted.
func (m ReturnMatrix) Tickers() []string {
	out := make([]string, 0, len(m))
	for t := range m {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Subset returns the matrix restricted to tickers that are present.
func (m ReturnMatrix) Subset(tickers []string) ReturnMatrix {
	out := make(ReturnMatrix, len(tickers))
	for _, t := range tickers {
		if s, ok := m[t]; ok {
			out[t] = s
		}
	}
	return out
}
