package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cardsim/cardsim-go/internal/config"
	"github.com/cardsim/cardsim-go/internal/domain"
	"github.com/cardsim/cardsim-go/internal/engine"
	"github.com/cardsim/cardsim-go/internal/handler"
	"github.com/cardsim/cardsim-go/internal/infra/cache"
	"github.com/cardsim/cardsim-go/internal/infra/observability"
	"github.com/cardsim/cardsim-go/internal/infra/pricing"
	"github.com/cardsim/cardsim-go/internal/service"

	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("pricing_plan_path", cfg.PricingPlanPath),
		zap.String("scenario_presets_path", cfg.ScenarioPresetsPath),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Int("default_horizon_months", cfg.DefaultHorizonMonths),
		zap.Int("max_horizon_months", cfg.MaxHorizonMonths),
		zap.Int("max_concurrency", cfg.MaxConcurrency),
		zap.Int("solver_max_iterations", cfg.SolverMaxIterations),
		zap.Float64("solver_fee_tolerance", cfg.SolverFeeTolerance),
		zap.Float64("solver_fee_upper_bound", cfg.SolverFeeUpperBound),
	)

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "cardsim")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Caches ---
	planCache := cache.New[*domain.PricingPlan](cfg.CacheTTL)
	presetCache := cache.New[[]domain.Scenario](cfg.CacheTTL)
	solveCache := cache.New[*domain.SolveResult](cfg.CacheTTL)

	// --- Static data loader ---
	loader := pricing.NewLoader(cfg.PricingPlanPath, cfg.ScenarioPresetsPath, planCache, presetCache, logger)

	// Fail fast on a malformed pricing plan.
	if _, err := loader.Plan(context.Background()); err != nil {
		logger.Fatal("pricing plan unusable", zap.Error(err))
	}

	// --- Services ---
	simSvc := service.NewSimulator(loader, solveCache, metrics, logger, service.SimulatorOptions{
		DefaultHorizonMonths: cfg.DefaultHorizonMonths,
		MaxHorizonMonths:     cfg.MaxHorizonMonths,
		MaxParallel:          cfg.MaxConcurrency,
		Solve: engine.SolveOptions{
			MaxIterations: cfg.SolverMaxIterations,
			FeeTolerance:  cfg.SolverFeeTolerance,
			FeeUpperBound: cfg.SolverFeeUpperBound,
		},
	})
	pricingSvc := service.NewPricing(loader, loader, logger)

	// --- Router ---
	router := handler.NewRouter(simSvc, pricingSvc, metrics, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
