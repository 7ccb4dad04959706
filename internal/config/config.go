package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
// Values are loaded from environment variables with sensible defaults.
type Config struct {
	// Server
	Port     int
	LogLevel string

	// Static data
	PricingPlanPath     string
	ScenarioPresetsPath string

	// Cache
	CacheTTL time.Duration

	// Engine
	DefaultHorizonMonths int
	MaxHorizonMonths     int
	MaxConcurrency       int

	// Solver
	SolverMaxIterations int
	SolverFeeTolerance  float64
	SolverFeeUpperBound float64

	// Observability
	OTLPEndpoint string
}

// Load reads configuration from environment variables with defaults.
func Load() *Config {
	return &Config{
		Port:     getEnvInt("PORT", 8080),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		PricingPlanPath:     getEnv("PRICING_PLAN_PATH", "data/pricing_plan.json"),
		ScenarioPresetsPath: getEnv("SCENARIO_PRESETS_PATH", "data/scenario_presets.json"),

		CacheTTL: getEnvDuration("CACHE_TTL", 5*time.Minute),

		DefaultHorizonMonths: getEnvInt("DEFAULT_HORIZON_MONTHS", 36),
		MaxHorizonMonths:     getEnvInt("MAX_HORIZON_MONTHS", 120),
		MaxConcurrency:       getEnvInt("MAX_CONCURRENCY", 8),

		SolverMaxIterations: getEnvInt("SOLVER_MAX_ITERATIONS", 64),
		SolverFeeTolerance:  getEnvFloat("SOLVER_FEE_TOLERANCE", 1e-4),
		SolverFeeUpperBound: getEnvFloat("SOLVER_FEE_UPPER_BOUND", 500),

		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
