package timeseries

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/aristath/sentinel-quant/internal/domain"
	"github.com/aristath/sentinel-quant/pkg/formulas"
)

// MinObservations is the fewest aligned rows a covariance estimate accepts.
const MinObservations = 2

// CovarianceOptions controls covariance estimation.
type CovarianceOptions struct {
	// PeriodsPerYear annualizes the estimate when positive.
	PeriodsPerYear float64
	// Shrinkage blends the sample estimate toward a constant-covariance target.
	Shrinkage bool
	// Policy defaults to DropIncomplete.
	Policy domain.MissingDataPolicy
}

// Estimates bundles the per-asset statistics the optimizers and simulators need.
type Estimates struct {
	Tickers []string
	// Mean holds mean periodic returns × periods per year.
	Mean []float64
	// Cov holds the sample covariance × periods per year.
	Cov          [][]float64
	Observations int
	Rows         [][]float64
}

// Volatilities returns √diag(Cov).
func (e *Estimates) Volatilities() []float64 {
	out := make([]float64, len(e.Cov))
	for i := range e.Cov {
		out[i] = math.Sqrt(math.Max(e.Cov[i][i], 0))
	}
	return out
}

// Estimate aligns the matrix and computes annualized means and covariance.
func Estimate(matrix domain.ReturnMatrix, tickers []string, opts CovarianceOptions) (*Estimates, error) {
	if opts.Policy == "" {
		opts.Policy = domain.DropIncomplete
	}
	if len(tickers) == 0 {
		return nil, fmt.Errorf("no tickers provided: %w", domain.ErrInsufficientData)
	}
	for _, t := range tickers {
		if _, ok := matrix[t]; !ok {
			return nil, fmt.Errorf("missing returns for %s: %w", t, domain.ErrInsufficientData)
		}
	}

	_, rows := Align(matrix, tickers, opts.Policy)
	if len(rows) < MinObservations {
		return nil, fmt.Errorf("need at least %d aligned observations, got %d: %w",
			MinObservations, len(rows), domain.ErrInsufficientData)
	}

	cov := sampleCovariance(rows, len(tickers))
	if opts.Shrinkage {
		cov = shrinkCovariance(cov)
	}

	scale := 1.0
	if opts.PeriodsPerYear > 0 {
		scale = opts.PeriodsPerYear
	}
	mean := make([]float64, len(tickers))
	for j := range tickers {
		mean[j] = formulas.Mean(Column(rows, j)) * scale
		for k := range tickers {
			cov[j][k] *= scale
		}
	}

	return &Estimates{
		Tickers:      append([]string(nil), tickers...),
		Mean:         mean,
		Cov:          cov,
		Observations: len(rows),
		Rows:         rows,
	}, nil
}

// Covariance returns the covariance matrix of the requested tickers.
func Covariance(matrix domain.ReturnMatrix, tickers []string, opts CovarianceOptions) ([][]float64, error) {
	est, err := Estimate(matrix, tickers, opts)
	if err != nil {
		return nil, err
	}
	return est.Cov, nil
}

// Correlation returns the correlation matrix derived from the covariance.
func Correlation(matrix domain.ReturnMatrix, tickers []string, policy domain.MissingDataPolicy) ([][]float64, error) {
	cov, err := Covariance(matrix, tickers, CovarianceOptions{Policy: policy})
	if err != nil {
		return nil, err
	}
	return formulas.CorrelationMatrixFromCovariance(cov)
}

// MeanReturns returns mean periodic returns scaled by periodsPerYear.
func MeanReturns(matrix domain.ReturnMatrix, tickers []string, periodsPerYear float64, policy domain.MissingDataPolicy) []float64 {
	if policy == "" {
		policy = domain.DropIncomplete
	}
	_, rows := Align(matrix, tickers, policy)
	out := make([]float64, len(tickers))
	if len(rows) == 0 {
		return out
	}
	for j := range tickers {
		out[j] = formulas.Mean(Column(rows, j)) * periodsPerYear
	}
	return out
}

func sampleCovariance(rows [][]float64, n int) [][]float64 {
	data := mat.NewDense(len(rows), n, nil)
	for t, row := range rows {
		data.SetRow(t, row)
	}
	var sym mat.SymDense
	stat.CovarianceMatrix(&sym, data, nil)

	out := make([][]float64, n)
	for i := 0; i < n; i++ {
		out[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			out[i][j] = sym.At(i, j)
		}
	}
	return out
}

// shrinkCovariance blends the sample covariance toward a target with the average
// variance on the diagonal and the average covariance off it. The intensity is
// estimated from the dispersion of the sample entries and capped at 0.5.
func shrinkCovariance(sample [][]float64) [][]float64 {
	n := len(sample)
	if n < 2 {
		return sample
	}

	var avgVar, avgCov float64
	for i := 0; i < n; i++ {
		avgVar += sample[i][i]
		for j := 0; j < n; j++ {
			if i != j {
				avgCov += sample[i][j]
			}
		}
	}
	avgVar /= float64(n)
	avgCov /= float64(n * (n - 1))

	target := func(i, j int) float64 {
		if i == j {
			return avgVar
		}
		return avgCov
	}

	shrinkage := 0.2
	if n > 2 && avgVar > 0 {
		var sumSqDiff, sum, sumSq float64
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				d := sample[i][j] - target(i, j)
				sumSqDiff += d * d
				sum += sample[i][j]
				sumSq += sample[i][j] * sample[i][j]
			}
		}
		count := float64(n * n)
		meanSqDiff := sumSqDiff / count
		mean := sum / count
		dispersion := sumSq/count - mean*mean
		if dispersion > 0 && meanSqDiff > 0 {
			shrinkage = math.Min(0.5, math.Max(0.0, dispersion/(dispersion+meanSqDiff)))
		}
	}

	out := make([][]float64, n)
	for i := 0; i < n; i++ {
		out[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			out[i][j] = (1-shrinkage)*sample[i][j] + shrinkage*target(i, j)
		}
	}
	return out
}
