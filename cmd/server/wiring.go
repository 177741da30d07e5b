package main

import (
	"github.com/rs/zerolog"

	"github.com/aristath/sentinel-quant/internal/config"
	"github.com/aristath/sentinel-quant/internal/domain"
	"github.com/aristath/sentinel-quant/internal/modules/comparison"
	comparisonhandlers "github.com/aristath/sentinel-quant/internal/modules/comparison/handlers"
	"github.com/aristath/sentinel-quant/internal/modules/diversification"
	diversificationhandlers "github.com/aristath/sentinel-quant/internal/modules/diversification/handlers"
	"github.com/aristath/sentinel-quant/internal/modules/optimization"
	optimizationhandlers "github.com/aristath/sentinel-quant/internal/modules/optimization/handlers"
	"github.com/aristath/sentinel-quant/internal/modules/performance"
	performancehandlers "github.com/aristath/sentinel-quant/internal/modules/performance/handlers"
	"github.com/aristath/sentinel-quant/internal/modules/risk"
	riskhandlers "github.com/aristath/sentinel-quant/internal/modules/risk/handlers"
	"github.com/aristath/sentinel-quant/internal/modules/scenarios"
	scenarioshandlers "github.com/aristath/sentinel-quant/internal/modules/scenarios/handlers"
	"github.com/aristath/sentinel-quant/internal/modules/simulation"
	simulationhandlers "github.com/aristath/sentinel-quant/internal/modules/simulation/handlers"
	"github.com/aristath/sentinel-quant/internal/modules/timeseries"
	timeserieshandlers "github.com/aristath/sentinel-quant/internal/modules/timeseries/handlers"
	"github.com/aristath/sentinel-quant/internal/server"
)

// buildRoutes constructs every engine from cfg and returns their handlers.
func buildRoutes(cfg *config.Config, log zerolog.Logger) []server.RouteRegistrar {
	ppy := float64(cfg.PeriodsPerYear)

	riskCalc := risk.NewCalculator(risk.Options{
		Seed:        cfg.SimulationSeed,
		Simulations: cfg.DefaultSimulations,
	}, log)

	perfCalc := performance.NewCalculator(performance.Options{
		PeriodsPerYear: ppy,
		RiskFreeRate:   cfg.RiskFreeRate,
	}, log)

	divDefaults := diversification.DefaultOptions()
	divDefaults.PeriodsPerYear = ppy
	divDefaults.RiskFreeRate = cfg.RiskFreeRate

	optimizer := optimization.NewOptimizer(optimization.Options{
		PeriodsPerYear: ppy,
		RiskFreeRate:   cfg.RiskFreeRate,
	}, log)

	simEngine := simulation.NewEngine(simulation.Options{
		Seed:               cfg.SimulationSeed,
		MemoryBudget:       cfg.SimulationMemoryBudget,
		Workers:            cfg.SimulationWorkers,
		DefaultSimulations: cfg.DefaultSimulations,
	}, log)

	scenarioEngine := scenarios.NewEngine(scenarios.Options{Seed: cfg.SimulationSeed}, log)

	return []server.RouteRegistrar{
		timeserieshandlers.NewHandler(timeseries.NewCalculator(log), log),
		riskhandlers.NewHandler(riskCalc, ppy, log),
		performancehandlers.NewHandler(perfCalc, log),
		diversificationhandlers.NewHandler(diversification.NewAnalyzer(log), divDefaults, log),
		optimizationhandlers.NewHandler(optimizer, log),
		simulationhandlers.NewHandler(simEngine, ppy, log),
		scenarioshandlers.NewHandler(scenarioEngine, log),
		comparisonhandlers.NewHandler(comparison.NewComparer(riskCalc, log), comparison.Options{
			PeriodsPerYear: ppy,
			RiskFreeRate:   cfg.RiskFreeRate,
			Policy:         domain.DropIncomplete,
		}, log),
	}
}
