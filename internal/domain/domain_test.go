package domain

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestNewSeries_SortsAndDeduplicates(t *testing.T) {
	s, err := NewSeries(
		[]time.Time{day("2024-01-03"), day("2024-01-01"), day("2024-01-03"), day("2024-01-02")},
		[]float64{0.3, 0.1, 0.33, 0.2},
	)
	require.NoError(t, err)
	require.NoError(t, s.Validate())

	assert.Equal(t, []time.Time{day("2024-01-01"), day("2024-01-02"), day("2024-01-03")}, s.Dates)
	assert.Equal(t, []float64{0.1, 0.2, 0.33}, s.Values)

	_, err = NewSeries([]time.Time{day("2024-01-01")}, nil)
	assert.Error(t, err)
}

func TestSeries_Validate(t *testing.T) {
	tests := []struct {
		name    string
		series  Series
		wantErr bool
	}{
		{name: "empty", series: Series{}},
		{name: "ordered", series: DailySeries(day("2024-01-01"), []float64{1, 2, 3})},
		{
			name:    "duplicate dates",
			series:  Series{Dates: []time.Time{day("2024-01-01"), day("2024-01-01")}, Values: []float64{1, 2}},
			wantErr: true,
		},
		{
			name:    "length mismatch",
			series:  Series{Dates: []time.Time{day("2024-01-01")}, Values: []float64{1, 2}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.series.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSeries_JSONRoundTrip(t *testing.T) {
	s := DailySeries(day("2024-02-28"), []float64{0.01, -0.02})

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{"dates":["2024-02-28","2024-02-29"],"values":[0.01,-0.02]}`, string(data))

	var decoded Series
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, s, decoded)

	var rfc Series
	require.NoError(t, json.Unmarshal([]byte(`{"dates":["2024-02-28T15:04:05Z"],"values":[1]}`), &rfc))
	assert.Equal(t, day("2024-02-28"), rfc.Dates[0])

	assert.Error(t, json.Unmarshal([]byte(`{"dates":["not a date"],"values":[1]}`), &rfc))
}

func TestReturnMatrix_Tickers(t *testing.T) {
	m := ReturnMatrix{"MSFT": Series{}, "AAPL": Series{}, "GOOG": Series{}}
	assert.Equal(t, []string{"AAPL", "GOOG", "MSFT"}, m.Tickers())
	assert.Len(t, m.Subset([]string{"AAPL", "TSLA"}), 1)
}

func TestWeightMapping_Normalized(t *testing.T) {
	tests := []struct {
		name     string
		weights  WeightMapping
		expected WeightMapping
	}{
		{name: "already normalized", weights: WeightMapping{"A": 0.5, "B": 0.5}, expected: WeightMapping{"A": 0.5, "B": 0.5}},
		{name: "scaled", weights: WeightMapping{"A": 2, "B": 6}, expected: WeightMapping{"A": 0.25, "B": 0.75}},
		{name: "negative dropped", weights: WeightMapping{"A": 1, "B": -1}, expected: WeightMapping{"A": 1}},
		{name: "zero sum", weights: WeightMapping{"A": 0}, expected: WeightMapping{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.weights.Normalized()
			require.Len(t, got, len(tt.expected))
			for k, v := range tt.expected {
				assert.InDelta(t, v, got[k], 1e-12)
			}
		})
	}
}

func TestWeightMapping_Helpers(t *testing.T) {
	w := WeightMapping{"B": 0.3, "A": 0.7}
	assert.Equal(t, []string{"A", "B"}, w.Tickers())
	assert.InDelta(t, 1.0, w.Sum(), 1e-12)
	assert.Equal(t, []float64{0.7, 0.3, 0}, w.Vector([]string{"A", "B", "C"}))
	assert.Equal(t, WeightMapping{"A": 0.25, "B": 0.75}, WeightsFromVector([]string{"A", "B"}, []float64{0.25, 0.75}))
	assert.Equal(t, WeightMapping{"A": 0.5, "B": 0.5}, EqualWeights([]string{"A", "B"}))
}

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		input  string
		want   Period
		wantOK bool
	}{
		{"daily", PeriodDaily, true},
		{"Weekly", PeriodWeekly, true},
		{"monthly", PeriodMonthly, true},
		{"annual", PeriodAnnual, true},
		{"yearly", PeriodAnnual, true},
		{"", PeriodDaily, true},
		{"hourly", PeriodDaily, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParsePeriod(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestParseReturnMethod(t *testing.T) {
	m, ok := ParseReturnMethod("log")
	assert.Equal(t, ReturnMethodLog, m)
	assert.True(t, ok)

	m, ok = ParseReturnMethod("arithmetic")
	assert.Equal(t, ReturnMethodSimple, m)
	assert.False(t, ok)
}

func TestParseMissingDataPolicy(t *testing.T) {
	p, ok := ParseMissingDataPolicy("drop_incomplete", ZeroFill)
	assert.Equal(t, DropIncomplete, p)
	assert.True(t, ok)

	p, ok = ParseMissingDataPolicy("", ZeroFill)
	assert.Equal(t, ZeroFill, p)
	assert.True(t, ok)

	p, ok = ParseMissingDataPolicy("interpolate", DropIncomplete)
	assert.Equal(t, DropIncomplete, p)
	assert.False(t, ok)
}

func TestOptimizationError(t *testing.T) {
	cause := errors.New("line search failed")
	err := error(&OptimizationError{Method: "markowitz", Reason: "did not converge", Err: cause})

	assert.Equal(t, "markowitz optimization failed: did not converge", err.Error())
	assert.ErrorIs(t, err, cause)

	var optErr *OptimizationError
	require.ErrorAs(t, err, &optErr)
	assert.Equal(t, "markowitz", optErr.Method)

	assert.Equal(t, "optimization failed: bad bounds", NewOptimizationError("", "bad %s", "bounds").Error())
}

func TestDrawdownPeriod_MarshalJSON(t *testing.T) {
	open := DrawdownPeriod{Start: day("2024-01-01"), Valley: day("2024-01-05"), Depth: 0.1, LengthDays: 4}
	data, err := json.Marshal(open)
	require.NoError(t, err)
	assert.JSONEq(t, `{"start":"2024-01-01","valley":"2024-01-05","recovery":null,"depth":0.1,"length_days":4,"recovery_days":null}`, string(data))
	assert.True(t, open.IsOpen())

	rec := day("2024-01-09")
	days := 4
	closed := open
	closed.Recovery = &rec
	closed.RecoveryDays = &days
	data, err = json.Marshal(closed)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"recovery":"2024-01-09"`)
	assert.False(t, closed.IsOpen())
}
