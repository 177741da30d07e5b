package simulation

import (
	"fmt"
	"math"

	"github.com/aristath/sentinel-quant/internal/domain"
	"github.com/aristath/sentinel-quant/internal/modules/timeseries"
	"github.com/aristath/sentinel-quant/pkg/formulas"
)

// ParamsFromReturns estimates annual μ and σ of the weighted portfolio return series.
// Only ExpectedReturn and Volatility are filled in.
func ParamsFromReturns(matrix domain.ReturnMatrix, weights domain.WeightMapping, periodsPerYear float64) (Params, error) {
	if periodsPerYear <= 0 {
		periodsPerYear = TradingDaysPerYear
	}
	portfolio := timeseries.PortfolioReturn(matrix, weights.Normalized(), domain.ZeroFill)
	if portfolio.Len() < timeseries.MinObservations {
		return Params{}, fmt.Errorf("portfolio has %d return observations: %w", portfolio.Len(), domain.ErrInsufficientData)
	}
	return Params{
		ExpectedReturn: formulas.Mean(portfolio.Values) * periodsPerYear,
		Volatility:     formulas.StdDev(portfolio.Values) * math.Sqrt(periodsPerYear),
	}, nil
}

// AssetsFromReturns estimates per-asset annual parameters and the correlation matrix
// for a copula simulation. Weighted tickers without returns are an error.
func AssetsFromReturns(matrix domain.ReturnMatrix, weights domain.WeightMapping, periodsPerYear float64) ([]Asset, [][]float64, error) {
	if periodsPerYear <= 0 {
		periodsPerYear = TradingDaysPerYear
	}
	norm := weights.Normalized()
	tickers := norm.Tickers()
	est, err := timeseries.Estimate(matrix, tickers, timeseries.CovarianceOptions{PeriodsPerYear: periodsPerYear})
	if err != nil {
		return nil, nil, err
	}
	corr, err := formulas.CorrelationMatrixFromCovariance(est.Cov)
	if err != nil {
		return nil, nil, err
	}
	vols := est.Volatilities()
	assets := make([]Asset, len(tickers))
	for i, t := range tickers {
		assets[i] = Asset{Ticker: t, ExpectedReturn: est.Mean[i], Volatility: vols[i], Weight: norm[t]}
	}
	return assets, corr, nil
}
