package optimization

import (
	"fmt"
	"sort"

	"github.com/aristath/sentinel-quant/internal/domain"
	"github.com/aristath/sentinel-quant/internal/modules/timeseries"
	"github.com/aristath/sentinel-quant/internal/solver"
)

type tickerGroup struct {
	name    string
	members []string
}

// resolveGroups assigns every ticker to exactly one group. Groups are visited in name
// order, so a ticker listed twice stays in the first group; ungrouped tickers join
// OtherGroup. Empty groups are dropped.
func resolveGroups(tickers []string, requested map[string][]string) []tickerGroup {
	wanted := make(map[string]bool, len(tickers))
	for _, t := range tickers {
		wanted[t] = true
	}

	names := make([]string, 0, len(requested))
	for name := range requested {
		names = append(names, name)
	}
	sort.Strings(names)

	assigned := make(map[string]bool, len(tickers))
	byName := make(map[string]*tickerGroup)
	var groups []*tickerGroup
	add := func(name, ticker string) {
		g, ok := byName[name]
		if !ok {
			g = &tickerGroup{name: name}
			byName[name] = g
			groups = append(groups, g)
		}
		g.members = append(g.members, ticker)
		assigned[ticker] = true
	}

	for _, name := range names {
		for _, t := range requested[name] {
			if wanted[t] && !assigned[t] {
				add(name, t)
			}
		}
	}
	for _, t := range tickers {
		if !assigned[t] {
			add(OtherGroup, t)
		}
	}

	out := make([]tickerGroup, 0, len(groups))
	for _, g := range groups {
		sort.Strings(g.members)
		out = append(out, *g)
	}
	return out
}

// hierarchical allocates in two phases: a maximum-Sharpe solve across equal-weighted
// group return series, then a maximum-Sharpe solve inside each group. Final weights are
// group × within-group, renormalized and projected onto the weight bounds.
func (o *Optimizer) hierarchical(matrix domain.ReturnMatrix, tickers []string, req Request) (*domain.OptimizationResult, error) {
	if len(tickers) == 0 {
		return nil, fmt.Errorf("no tickers provided: %w", domain.ErrInsufficientData)
	}
	bounds, err := buildBounds(tickers, req)
	if err != nil {
		return nil, err
	}
	policy := req.Policy
	if policy == "" {
		policy = domain.DropIncomplete
	}

	groups := resolveGroups(tickers, req.Groups)
	groupMatrix := make(domain.ReturnMatrix, len(groups))
	names := make([]string, len(groups))
	for i, g := range groups {
		names[i] = g.name
		groupMatrix[g.name] = timeseries.PortfolioReturn(matrix.Subset(g.members), domain.EqualWeights(g.members), policy)
	}

	groupWeights, err := o.maxSharpeWeights(groupMatrix, names, req)
	if err != nil {
		return nil, fmt.Errorf("group-level allocation failed: %w", err)
	}

	final := make(domain.WeightMapping, len(tickers))
	for i, g := range groups {
		within, err := o.maxSharpeWeights(matrix, g.members, req)
		if err != nil {
			return nil, fmt.Errorf("allocation within group %s failed: %w", g.name, err)
		}
		for j, t := range g.members {
			final[t] = groupWeights[i] * within[j]
		}
	}

	m, err := o.estimate(matrix, tickers, req)
	if err != nil {
		return nil, err
	}
	w := bounds.Project(final.Normalized().Vector(tickers))
	res := m.result(MethodHierarchical, w)
	res.GroupWeights = make(map[string]float64, len(groups))
	for i, g := range groups {
		res.GroupWeights[g.name] = groupWeights[i]
	}
	return res, nil
}

// maxSharpeWeights solves a long-only maximum-Sharpe problem over tickers.
func (o *Optimizer) maxSharpeWeights(matrix domain.ReturnMatrix, tickers []string, req Request) ([]float64, error) {
	if len(tickers) == 1 {
		return []float64{1}, nil
	}
	m, err := o.estimate(matrix, tickers, Request{RiskFreeRate: req.RiskFreeRate, Shrinkage: req.Shrinkage, Policy: req.Policy})
	if err != nil {
		return nil, err
	}
	return solve(solver.Problem{
		Objective: m.negSharpe,
		Bounds:    solver.UniformBounds(len(tickers), 0, 1),
	})
}
