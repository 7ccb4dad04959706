package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cardsim/cardsim-go/internal/domain"
	"github.com/cardsim/cardsim-go/internal/engine"
	"github.com/cardsim/cardsim-go/internal/infra/cache"
	"github.com/cardsim/cardsim-go/internal/infra/observability"
	"github.com/cardsim/cardsim-go/internal/service"

	"go.uber.org/zap"
)

// --- Mocks ---

type mockPlanSource struct {
	plan  *domain.PricingPlan
	err   error
	calls int
}

func (m *mockPlanSource) Plan(_ context.Context) (*domain.PricingPlan, error) {
	m.calls++
	return m.plan, m.err
}

type mockPresetSource struct {
	presets []domain.Scenario
	err     error
}

func (m *mockPresetSource) Presets(_ context.Context) ([]domain.Scenario, error) {
	return m.presets, m.err
}

// --- Fixtures ---

func testPlan() *domain.PricingPlan {
	return &domain.PricingPlan{
		ID:       "plan_test",
		Currency: "EUR",
		FixedMonthly: []domain.FixedMonthlyFee{
			{Key: "program_maintenance", Label: "Program maintenance", Amount: 1000, Mandatory: true},
		},
		TieredMonthly: map[string]domain.TieredPricing{
			domain.MetricActiveCards: {Unit: "card/month", Tiers: []domain.Tier{{UpTo: nil, Price: 0.95}}},
		},
	}
}

func testScenario() *domain.Scenario {
	return &domain.Scenario{
		Name:          "base",
		HorizonMonths: 12,
		Adoption: domain.AdoptionConfig{
			StartActiveCards: 100,
		},
		Commercial: domain.CommercialConfig{
			B2B: domain.B2BConfig{
				EmployeeFeeMonth: 20,
				Mode:             domain.B2BModeGiven,
			},
		},
	}
}

func solveScenario() *domain.Scenario {
	sc := testScenario()
	sc.Commercial.B2B = domain.B2BConfig{
		Mode:   domain.B2BModeSolveFee,
		Target: domain.B2BTarget{Type: domain.TargetBreakeven, Months: 12},
	}
	return sc
}

func newSimulator(plans *mockPlanSource) *service.Simulator {
	return service.NewSimulator(
		plans,
		cache.New[*domain.SolveResult](5*time.Minute),
		observability.NewMetrics(),
		zap.NewNop(),
		service.SimulatorOptions{
			DefaultHorizonMonths: 36,
			MaxHorizonMonths:     120,
			MaxParallel:          4,
			Solve:                engine.SolveOptions{},
		},
	)
}

// --- Tests ---

func TestSimulatorRun_Success(t *testing.T) {
	svc := newSimulator(&mockPlanSource{plan: testPlan()})

	result, err := svc.Run(context.Background(), testScenario())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.RunID == "" {
		t.Error("expected a run ID")
	}
	if len(result.Rows) != 12 {
		t.Errorf("expected 12 rows, got %d", len(result.Rows))
	}
	if result.PricingPlanID != "plan_test" {
		t.Errorf("expected plan id 'plan_test', got '%s'", result.PricingPlanID)
	}
}

func TestSimulatorRun_DefaultHorizon(t *testing.T) {
	svc := newSimulator(&mockPlanSource{plan: testPlan()})

	sc := testScenario()
	sc.HorizonMonths = 0

	result, err := svc.Run(context.Background(), sc)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(result.Rows) != 36 {
		t.Errorf("expected the default 36-month horizon, got %d rows", len(result.Rows))
	}
	if sc.HorizonMonths != 0 {
		t.Error("expected the caller's scenario untouched")
	}
}

func TestSimulatorRun_HorizonCeiling(t *testing.T) {
	svc := newSimulator(&mockPlanSource{plan: testPlan()})

	sc := testScenario()
	sc.HorizonMonths = 121

	_, err := svc.Run(context.Background(), sc)
	var invalid *domain.ErrInvalidScenario
	if !errors.As(err, &invalid) {
		t.Fatalf("expected ErrInvalidScenario, got %v", err)
	}
}

func TestSimulatorRun_PlanSourceError(t *testing.T) {
	svc := newSimulator(&mockPlanSource{err: errors.New("disk gone")})

	_, err := svc.Run(context.Background(), testScenario())
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestSimulatorSolve_Success(t *testing.T) {
	svc := newSimulator(&mockPlanSource{plan: testPlan()})

	result, err := svc.Solve(context.Background(), solveScenario())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Status != domain.SolveConverged {
		t.Fatalf("expected status converged, got %s", result.Status)
	}
	// 100 cards at 0.95 plus 1000 fixed: breakeven fee 10.95
	if result.EmployeeFee < 10.95 || result.EmployeeFee > 10.951 {
		t.Errorf("expected fee within tolerance above 10.95, got %v", result.EmployeeFee)
	}
	if result.Simulation == nil || result.Simulation.RunID == "" {
		t.Error("expected a simulation with a run ID at the solved fee")
	}
}

func TestSimulatorSolve_CachesResult(t *testing.T) {
	svc := newSimulator(&mockPlanSource{plan: testPlan()})

	first, err := svc.Solve(context.Background(), solveScenario())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	second, err := svc.Solve(context.Background(), solveScenario())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if first != second {
		t.Error("expected the cached result on the second identical solve")
	}

	// A different scenario must not reuse the cache entry.
	other := solveScenario()
	other.Adoption.StartActiveCards = 200
	third, err := svc.Solve(context.Background(), other)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if third == first {
		t.Error("expected a fresh solve for a different scenario")
	}
}

func TestSimulatorSolve_GivenModeRejected(t *testing.T) {
	svc := newSimulator(&mockPlanSource{plan: testPlan()})

	_, err := svc.Solve(context.Background(), testScenario())
	var invalid *domain.ErrInvalidScenario
	if !errors.As(err, &invalid) {
		t.Fatalf("expected ErrInvalidScenario, got %v", err)
	}
}

func TestSimulatorCompare(t *testing.T) {
	svc := newSimulator(&mockPlanSource{plan: testPlan()})

	a := testScenario()
	a.Name = "a"
	b := testScenario()
	b.Name = "b"
	b.Commercial.B2B.EmployeeFeeMonth = 50

	result, err := svc.Compare(context.Background(), []domain.Scenario{*a, *b})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(result.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(result.Entries))
	}
	if result.Entries[0].Name != "a" || result.Entries[1].Name != "b" {
		t.Errorf("expected input order preserved, got %s, %s", result.Entries[0].Name, result.Entries[1].Name)
	}
	if result.BestByProfit != "b" {
		t.Errorf("expected best by profit 'b', got '%s'", result.BestByProfit)
	}
}

func TestSimulatorCompare_HorizonCeilingFailsEntryNotBatch(t *testing.T) {
	svc := newSimulator(&mockPlanSource{plan: testPlan()})

	over := testScenario()
	over.Name = "over"
	over.HorizonMonths = 500
	ok := testScenario()
	ok.Name = "ok"

	result, err := svc.Compare(context.Background(), []domain.Scenario{*over, *ok})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(result.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(result.Entries))
	}

	first := result.Entries[0]
	if first.Name != "over" || first.Error == "" {
		t.Errorf("expected a failed entry for 'over', got %+v", first)
	}
	if first.Simulation != nil {
		t.Error("expected no simulation on the failed entry")
	}

	second := result.Entries[1]
	if second.Name != "ok" || second.Error != "" {
		t.Errorf("expected a clean entry for 'ok', got %+v", second)
	}
	if second.Simulation == nil {
		t.Fatal("expected a simulation on the valid entry")
	}
	if result.BestByProfit != "ok" {
		t.Errorf("expected best by profit 'ok', got '%s'", result.BestByProfit)
	}
}

func TestSimulatorCompare_AllEntriesRejected(t *testing.T) {
	svc := newSimulator(&mockPlanSource{plan: testPlan()})

	over := testScenario()
	over.HorizonMonths = 500

	result, err := svc.Compare(context.Background(), []domain.Scenario{*over})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(result.Entries) != 1 || result.Entries[0].Error == "" {
		t.Fatalf("expected a single failed entry, got %+v", result.Entries)
	}
	if result.BestByProfit != "" {
		t.Errorf("expected no best-by-profit winner, got '%s'", result.BestByProfit)
	}
}

func TestSimulatorCompare_Empty(t *testing.T) {
	svc := newSimulator(&mockPlanSource{plan: testPlan()})

	_, err := svc.Compare(context.Background(), nil)
	var invalid *domain.ErrInvalidScenario
	if !errors.As(err, &invalid) {
		t.Fatalf("expected ErrInvalidScenario, got %v", err)
	}
}

func TestSimulatorSensitivity(t *testing.T) {
	svc := newSimulator(&mockPlanSource{plan: testPlan()})

	result, err := svc.Sensitivity(context.Background(), testScenario(), "employee_fee_month", []float64{5, 20})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(result.Points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(result.Points))
	}
	if result.Points[0].Value != 5 || result.Points[1].Value != 20 {
		t.Error("expected value order preserved")
	}
}

func TestSimulatorSensitivity_UnknownParameter(t *testing.T) {
	svc := newSimulator(&mockPlanSource{plan: testPlan()})

	_, err := svc.Sensitivity(context.Background(), testScenario(), "moon_phase", []float64{1})
	var unknown *domain.ErrUnknownParameter
	if !errors.As(err, &unknown) {
		t.Fatalf("expected ErrUnknownParameter, got %v", err)
	}
}

func TestSimulatorTemplate(t *testing.T) {
	svc := newSimulator(&mockPlanSource{plan: testPlan()})

	tmpl := svc.Template()
	if err := tmpl.Validate(); err != nil {
		t.Fatalf("expected a valid template, got %v", err)
	}
	if tmpl.HorizonMonths != 36 {
		t.Errorf("expected the configured default horizon, got %d", tmpl.HorizonMonths)
	}
	if !tmpl.SolveRequested() {
		t.Error("expected the template in solve mode")
	}
}
