package service

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cardsim/cardsim-go/internal/domain"
	"github.com/cardsim/cardsim-go/internal/engine"
	"github.com/cardsim/cardsim-go/internal/infra/observability"
	"github.com/cardsim/cardsim-go/internal/port"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("service/simulator")

// SimulatorOptions carry the engine knobs from configuration.
type SimulatorOptions struct {
	DefaultHorizonMonths int
	MaxHorizonMonths     int
	MaxParallel          int
	Solve                engine.SolveOptions
}

// Simulator wraps the engine with tracing, metrics, run IDs and a solve
// cache. The engine itself stays pure; everything operational lives here.
type Simulator struct {
	plans      port.PlanSource
	solveCache port.Cache[*domain.SolveResult]
	metrics    *observability.Metrics
	logger     *zap.Logger
	opts       SimulatorOptions
}

// NewSimulator creates the simulator service with all dependencies injected.
func NewSimulator(
	plans port.PlanSource,
	solveCache port.Cache[*domain.SolveResult],
	metrics *observability.Metrics,
	logger *zap.Logger,
	opts SimulatorOptions,
) *Simulator {
	return &Simulator{
		plans:      plans,
		solveCache: solveCache,
		metrics:    metrics,
		logger:     logger,
		opts:       opts,
	}
}

// Run executes a single projection for the scenario.
func (s *Simulator) Run(ctx context.Context, sc *domain.Scenario) (*domain.SimulationResult, error) {
	ctx, span := tracer.Start(ctx, "Simulator.Run")
	defer span.End()
	span.SetAttributes(attribute.String("scenario.name", sc.Name))

	start := time.Now()
	defer func() {
		s.metrics.RecordRequestDuration("run", time.Since(start))
	}()

	sc, err := s.withHorizon(sc)
	if err != nil {
		s.metrics.IncrRun("error")
		return nil, err
	}

	plan, err := s.plans.Plan(ctx)
	if err != nil {
		s.metrics.IncrRun("error")
		return nil, err
	}

	result, err := engine.Run(sc, plan)
	if err != nil {
		s.metrics.IncrRun("error")
		return nil, err
	}

	result.RunID = uuid.NewString()
	s.metrics.IncrRun("success")
	return result, nil
}

// Solve back-calculates the employee fee for the scenario's B2B target.
// Results are memoized: the engine is a pure function of (scenario, plan),
// so identical solve requests can share the converged result.
func (s *Simulator) Solve(ctx context.Context, sc *domain.Scenario) (*domain.SolveResult, error) {
	ctx, span := tracer.Start(ctx, "Simulator.Solve")
	defer span.End()
	span.SetAttributes(
		attribute.String("scenario.name", sc.Name),
		attribute.String("target.type", sc.Commercial.B2B.Target.Type),
	)

	start := time.Now()
	defer func() {
		s.metrics.RecordRequestDuration("solve", time.Since(start))
	}()

	sc, err := s.withHorizon(sc)
	if err != nil {
		return nil, err
	}

	plan, err := s.plans.Plan(ctx)
	if err != nil {
		return nil, err
	}

	key, err := solveCacheKey(plan.ID, sc)
	if err == nil {
		if cached, ok := s.solveCache.Get(key); ok {
			s.metrics.IncrCacheHit("solve")
			return cached, nil
		}
		s.metrics.IncrCacheMiss("solve")
	}

	result, err := engine.SolveEmployeeFee(sc, plan, s.opts.Solve)
	if err != nil {
		s.metrics.IncrSolve("error")
		return nil, err
	}

	result.Simulation.RunID = uuid.NewString()
	s.metrics.IncrSolve(result.Status)
	s.metrics.AddSolverIterations(result.Iterations)

	if result.Status != domain.SolveConverged {
		s.logger.Warn("solver did not converge to target",
			zap.String("scenario", sc.Name),
			zap.String("status", result.Status),
			zap.Int("iterations", result.Iterations),
			zap.Float64("employee_fee", result.EmployeeFee),
		)
	}

	if key != "" {
		s.solveCache.Set(key, result)
	}
	return result, nil
}

// Compare runs the named scenarios independently and tabulates them in
// input order.
func (s *Simulator) Compare(ctx context.Context, scenarios []domain.Scenario) (*domain.ComparisonResult, error) {
	ctx, span := tracer.Start(ctx, "Simulator.Compare")
	defer span.End()
	span.SetAttributes(attribute.Int("scenario.count", len(scenarios)))

	start := time.Now()
	defer func() {
		s.metrics.RecordRequestDuration("compare", time.Since(start))
	}()

	if len(scenarios) == 0 {
		return nil, &domain.ErrInvalidScenario{Field: "scenarios", Message: "at least one scenario is required"}
	}

	// A scenario rejected up front (horizon ceiling) becomes a failed
	// entry like any engine-level failure; it never aborts the batch.
	entries := make([]domain.ComparisonEntry, len(scenarios))
	prepared := make([]domain.Scenario, 0, len(scenarios))
	validIdx := make([]int, 0, len(scenarios))
	for i := range scenarios {
		entries[i].Name = scenarios[i].Name
		sc, err := s.withHorizon(&scenarios[i])
		if err != nil {
			entries[i].Error = err.Error()
			continue
		}
		prepared = append(prepared, *sc)
		validIdx = append(validIdx, i)
	}

	if len(prepared) == 0 {
		return &domain.ComparisonResult{Entries: entries}, nil
	}

	plan, err := s.plans.Plan(ctx)
	if err != nil {
		return nil, err
	}

	res, err := engine.Compare(ctx, prepared, plan, s.analyzerOptions())
	if err != nil {
		return nil, err
	}
	for j, idx := range validIdx {
		entries[idx] = res.Entries[j]
	}
	res.Entries = entries
	return res, nil
}

// Sensitivity sweeps one scenario parameter across the supplied values.
func (s *Simulator) Sensitivity(ctx context.Context, base *domain.Scenario, parameter string, values []float64) (*domain.SensitivityResult, error) {
	ctx, span := tracer.Start(ctx, "Simulator.Sensitivity")
	defer span.End()
	span.SetAttributes(
		attribute.String("parameter", parameter),
		attribute.Int("value.count", len(values)),
	)

	start := time.Now()
	defer func() {
		s.metrics.RecordRequestDuration("sensitivity", time.Since(start))
	}()

	base, err := s.withHorizon(base)
	if err != nil {
		return nil, err
	}

	plan, err := s.plans.Plan(ctx)
	if err != nil {
		return nil, err
	}

	return engine.Sensitivity(ctx, base, plan, parameter, values, s.analyzerOptions())
}

// Template returns a fully-populated scenario clients can start from.
func (s *Simulator) Template() *domain.Scenario {
	return &domain.Scenario{
		Name:          "New Scenario",
		HorizonMonths: s.opts.DefaultHorizonMonths,
		Adoption: domain.AdoptionConfig{
			StartActiveCards: 3000,
			MonthlyNetAdds:   100,
			ChurnRate:        0.02,
		},
		Usage: domain.UsageConfig{
			SpendPerActiveCardMonth: 200,
			InAppShare:              0.5,
			AvgTicket:               50,
			EcomShare:               0.3,
			EEAShare:                0.95,
			ThreeDSAttemptRate:      1.0,
		},
		Issuance: domain.IssuanceConfig{
			PhysicalShareIssued: 0.0,
		},
		Commercial: domain.CommercialConfig{
			PartnerFeePct:  0.02,
			InterchangePct: 0.002,
			B2B: domain.B2BConfig{
				Companies: 1,
				Mode:      domain.B2BModeSolveFee,
				Target: domain.B2BTarget{
					Type:   domain.TargetBreakeven,
					Months: 12,
				},
			},
		},
		Toggles: domain.Toggles{
			FixedFees: map[string]bool{},
			OneOffs:   map[string]bool{},
			EventFees: map[string]bool{},
		},
		Ops: domain.OpsAssumptions{
			KYCAttemptsPerNewUser: 1.0,
		},
	}
}

func (s *Simulator) analyzerOptions() engine.AnalyzerOptions {
	return engine.AnalyzerOptions{
		MaxParallel: s.opts.MaxParallel,
		Solve:       s.opts.Solve,
	}
}

// withHorizon applies the configured default and ceiling without mutating
// the caller's scenario.
func (s *Simulator) withHorizon(sc *domain.Scenario) (*domain.Scenario, error) {
	if s.opts.MaxHorizonMonths > 0 && sc.HorizonMonths > s.opts.MaxHorizonMonths {
		return nil, &domain.ErrInvalidScenario{
			Field:   "horizon_months",
			Message: fmt.Sprintf("must be <= %d", s.opts.MaxHorizonMonths),
		}
	}
	if sc.HorizonMonths == 0 && s.opts.DefaultHorizonMonths > 0 {
		c := sc.Clone()
		c.HorizonMonths = s.opts.DefaultHorizonMonths
		return c, nil
	}
	return sc, nil
}

// solveCacheKey hashes the resolved scenario together with the plan ID.
func solveCacheKey(planID string, sc *domain.Scenario) (string, error) {
	raw, err := json.Marshal(sc)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(raw)
	return fmt.Sprintf("solve:%s:%x", planID, sum), nil
}
