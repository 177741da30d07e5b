// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port     int
	LogLevel string
	DevMode  bool

	// Analytics defaults applied when a request does not override them
	RiskFreeRate   float64
	PeriodsPerYear int

	// Simulation engine
	SimulationSeed         int64
	SimulationMemoryBudget int64 // bytes
	SimulationWorkers      int
	DefaultSimulations     int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Port:                   getEnvAsInt("PORT", 8001),
		LogLevel:               getEnv("LOG_LEVEL", "info"),
		DevMode:                getEnvAsBool("DEV_MODE", false),
		RiskFreeRate:           getEnvAsFloat("RISK_FREE_RATE", 0.02),
		PeriodsPerYear:         getEnvAsInt("PERIODS_PER_YEAR", 252),
		SimulationSeed:         int64(getEnvAsInt("SIMULATION_SEED", 42)),
		SimulationMemoryBudget: int64(getEnvAsInt("SIMULATION_MEMORY_BUDGET_MB", 1024)) << 20,
		SimulationWorkers:      getEnvAsInt("SIMULATION_WORKERS", 4),
		DefaultSimulations:     getEnvAsInt("DEFAULT_SIMULATIONS", 1000),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that configured values are usable
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Port)
	}
	if c.PeriodsPerYear <= 0 {
		return fmt.Errorf("PERIODS_PER_YEAR must be positive, got %d", c.PeriodsPerYear)
	}
	if c.SimulationMemoryBudget <= 0 {
		return fmt.Errorf("SIMULATION_MEMORY_BUDGET_MB must be positive")
	}
	if c.SimulationWorkers <= 0 {
		return fmt.Errorf("SIMULATION_WORKERS must be positive, got %d", c.SimulationWorkers)
	}
	if c.DefaultSimulations <= 0 {
		return fmt.Errorf("DEFAULT_SIMULATIONS must be positive, got %d", c.DefaultSimulations)
	}
	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
