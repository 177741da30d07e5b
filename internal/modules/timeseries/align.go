package timeseries

import (
	"math"
	"sort"
	"time"

	"github.com/aristath/sentinel-quant/internal/domain"
)

// Align lays the requested series out as rows[t][j] on a shared calendar.
//
// ZeroFill keeps the union of dates and writes 0 for missing or NaN observations.
// DropIncomplete keeps only dates where every series has a finite observation.
// Tickers missing from the matrix are treated as series with no observations.
func Align(matrix domain.ReturnMatrix, tickers []string, policy domain.MissingDataPolicy) ([]time.Time, [][]float64) {
	if len(tickers) == 0 {
		return nil, nil
	}

	indexes := make([]map[time.Time]int, len(tickers))
	seen := make(map[time.Time]int)
	for j, t := range tickers {
		s := matrix[t]
		indexes[j] = s.Index()
		for d := range indexes[j] {
			seen[d]++
		}
	}

	dates := make([]time.Time, 0, len(seen))
	for d := range seen {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(a, b int) bool { return dates[a].Before(dates[b]) })

	outDates := make([]time.Time, 0, len(dates))
	rows := make([][]float64, 0, len(dates))
	for _, d := range dates {
		row := make([]float64, len(tickers))
		complete := true
		for j, t := range tickers {
			i, ok := indexes[j][d]
			if !ok || !isFinite(matrix[t].Values[i]) {
				complete = false
				continue
			}
			row[j] = matrix[t].Values[i]
		}
		if policy == domain.DropIncomplete && !complete {
			continue
		}
		outDates = append(outDates, d)
		rows = append(rows, row)
	}
	return outDates, rows
}

// PortfolioReturn computes the per-date weighted sum of asset returns.
// Only assets present in both the matrix and the weights are used; weights are applied
// as supplied. The default policy for this path is ZeroFill.
func PortfolioReturn(matrix domain.ReturnMatrix, weights domain.WeightMapping, policy domain.MissingDataPolicy) domain.ReturnSeries {
	if policy == "" {
		policy = domain.ZeroFill
	}

	tickers := make([]string, 0, len(weights))
	for _, t := range weights.Tickers() {
		if _, ok := matrix[t]; ok {
			tickers = append(tickers, t)
		}
	}
	if len(tickers) == 0 {
		return domain.ReturnSeries{}
	}

	dates, rows := Align(matrix, tickers, policy)
	w := weights.Vector(tickers)
	out := domain.ReturnSeries{Dates: dates, Values: make([]float64, len(rows))}
	for t, row := range rows {
		total := 0.0
		for j, r := range row {
			total += w[j] * r
		}
		out.Values[t] = total
	}
	return out
}

// Column extracts column j of an aligned row matrix.
func Column(rows [][]float64, j int) []float64 {
	out := make([]float64, len(rows))
	for t, row := range rows {
		out[t] = row[j]
	}
	return out
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
