package diversification

import (
	"fmt"
	"math"

	"github.com/aristath/sentinel-quant/internal/domain"
	"github.com/aristath/sentinel-quant/internal/modules/risk"
	"github.com/aristath/sentinel-quant/pkg/formulas"
)

// AssetContribution is one asset's share of portfolio risk.
type AssetContribution struct {
	Ticker       string  `json:"ticker"`
	Weight       float64 `json:"weight"`
	Component    float64 `json:"component_contribution"`
	Contribution float64 `json:"risk_contribution"`
}

// ClusterContribution groups the risk contributions of correlated assets.
type ClusterContribution struct {
	ID           int                 `json:"cluster_id"`
	Tickers      []string            `json:"tickers"`
	Weight       float64             `json:"weight"`
	Contribution float64             `json:"risk_contribution"`
	Assets       []AssetContribution `json:"assets"`
}

// HierarchicalReport is the clustered Euler decomposition of portfolio risk.
type HierarchicalReport struct {
	Linkage             formulas.Linkage      `json:"linkage"`
	PortfolioVolatility float64               `json:"portfolio_volatility"`
	Clusters            []ClusterContribution `json:"clusters"`
	// Order is the quasi-diagonal leaf order of the dendrogram.
	Order []string `json:"dendrogram_order"`
}

// DefaultClusterCount picks ⌈√n⌉ clusters, at least one.
func DefaultClusterCount(n int) int {
	if n <= 1 {
		return 1
	}
	return int(math.Ceil(math.Sqrt(float64(n))))
}

// HierarchicalRiskContribution clusters assets on correlation distance
// d = √(2(1 − ρ)) and sums the percentage Euler contributions inside each cluster.
// clusters ≤ 0 uses DefaultClusterCount.
func HierarchicalRiskContribution(
	weights domain.WeightMapping,
	tickers []string,
	cov [][]float64,
	linkage formulas.Linkage,
	clusters int,
) (*HierarchicalReport, error) {
	if len(tickers) == 0 {
		return nil, fmt.Errorf("no tickers provided: %w", domain.ErrInsufficientData)
	}
	if len(cov) != len(tickers) {
		return nil, fmt.Errorf("covariance matrix size %d does not match %d tickers", len(cov), len(tickers))
	}
	linkage, err := formulas.ParseLinkage(string(linkage))
	if err != nil {
		return nil, err
	}
	if clusters <= 0 {
		clusters = DefaultClusterCount(len(tickers))
	}

	corr, err := formulas.CorrelationMatrixFromCovariance(cov)
	if err != nil {
		return nil, fmt.Errorf("failed to derive correlations: %w", err)
	}
	root := formulas.BuildDendrogram(formulas.CorrelationToDistance(corr), linkage)

	w := weights.Normalized().Vector(tickers)
	decomposition := risk.EulerDecomposition(w, cov)

	report := &HierarchicalReport{
		Linkage:             linkage,
		PortfolioVolatility: decomposition.Volatility,
	}
	for _, idx := range formulas.QuasiDiagonalOrder(root) {
		report.Order = append(report.Order, tickers[idx])
	}

	for id, members := range formulas.CutTree(root, clusters) {
		cluster := ClusterContribution{ID: id}
		for _, idx := range members {
			asset := AssetContribution{
				Ticker:       tickers[idx],
				Weight:       w[idx],
				Component:    decomposition.Component[idx],
				Contribution: decomposition.Percentage[idx],
			}
			cluster.Tickers = append(cluster.Tickers, asset.Ticker)
			cluster.Assets = append(cluster.Assets, asset)
			cluster.Weight += asset.Weight
			cluster.Contribution += asset.Contribution
		}
		report.Clusters = append(report.Clusters, cluster)
	}
	return report, nil
}
