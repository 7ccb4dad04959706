package engine

import (
	"context"
	"math"
	"sort"

	"github.com/cardsim/cardsim-go/internal/domain"
	"github.com/cardsim/cardsim-go/internal/infra/resilience"

	"golang.org/x/sync/errgroup"
)

// AnalyzerOptions tune the comparison/sensitivity layer. MaxParallel
// bounds how many constituent simulations run at once; each run is
// side-effect-free so they only share the read-only plan.
type AnalyzerOptions struct {
	MaxParallel int
	Solve       SolveOptions
}

func (o AnalyzerOptions) withDefaults() AnalyzerOptions {
	if o.MaxParallel <= 0 {
		o.MaxParallel = 4
	}
	return o
}

// Compare runs each named scenario independently and returns results in
// the input order. Scenarios in solve mode go through the fee solver; the
// rest are plain runs. A failing entry is recorded on that entry only.
func Compare(ctx context.Context, scenarios []domain.Scenario, plan *domain.PricingPlan, opts AnalyzerOptions) (*domain.ComparisonResult, error) {
	opts = opts.withDefaults()

	entries := make([]domain.ComparisonEntry, len(scenarios))
	bulkhead := resilience.NewBulkhead(opts.MaxParallel)

	g, gctx := errgroup.WithContext(ctx)
	for i := range scenarios {
		i := i
		sc := scenarios[i]
		g.Go(func() error {
			if err := bulkhead.Acquire(gctx); err != nil {
				return err
			}
			defer bulkhead.Release()
			entries[i] = runEntry(&sc, plan, opts.Solve)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &domain.ComparisonResult{Entries: entries}
	summarizeComparison(result)
	return result, nil
}

func runEntry(sc *domain.Scenario, plan *domain.PricingPlan, opts SolveOptions) domain.ComparisonEntry {
	entry := domain.ComparisonEntry{Name: sc.Name}

	if sc.SolveRequested() {
		solve, err := SolveEmployeeFee(sc, plan, opts)
		if err != nil {
			entry.Error = err.Error()
			return entry
		}
		entry.Solve = solve
		return entry
	}

	sim, err := Run(sc, plan)
	if err != nil {
		entry.Error = err.Error()
		return entry
	}
	entry.Simulation = sim
	return entry
}

// summarizeComparison fills the best-by-profit and fastest-breakeven
// names across successful entries.
func summarizeComparison(result *domain.ComparisonResult) {
	bestProfit := math.Inf(-1)
	fastest := math.MaxInt

	for _, e := range result.Entries {
		sim := e.Simulation
		if sim == nil && e.Solve != nil {
			sim = e.Solve.Simulation
		}
		if sim == nil {
			continue
		}
		if sim.KPIs.TotalProfit > bestProfit {
			bestProfit = sim.KPIs.TotalProfit
			result.BestByProfit = e.Name
		}
		if sim.KPIs.BreakevenMonth != nil && *sim.KPIs.BreakevenMonth < fastest {
			fastest = *sim.KPIs.BreakevenMonth
			result.FastestBreakeven = e.Name
		}
	}
}

// sensitivitySetters maps sweepable parameter names onto scenario fields.
var sensitivitySetters = map[string]func(*domain.Scenario, float64){
	"start_active_cards":          func(s *domain.Scenario, v float64) { s.Adoption.StartActiveCards = int(math.Round(v)) },
	"monthly_net_adds":            func(s *domain.Scenario, v float64) { s.Adoption.MonthlyNetAdds = int(math.Round(v)) },
	"churn_rate":                  func(s *domain.Scenario, v float64) { s.Adoption.ChurnRate = v },
	"spend_per_active_card_month": func(s *domain.Scenario, v float64) { s.Usage.SpendPerActiveCardMonth = v },
	"in_app_share":                func(s *domain.Scenario, v float64) { s.Usage.InAppShare = v },
	"avg_ticket":                  func(s *domain.Scenario, v float64) { s.Usage.AvgTicket = v },
	"ecom_share":                  func(s *domain.Scenario, v float64) { s.Usage.EcomShare = v },
	"eea_share":                   func(s *domain.Scenario, v float64) { s.Usage.EEAShare = v },
	"physical_share_issued":       func(s *domain.Scenario, v float64) { s.Issuance.PhysicalShareIssued = v },
	"partner_fee_pct":             func(s *domain.Scenario, v float64) { s.Commercial.PartnerFeePct = v },
	"interchange_pct":             func(s *domain.Scenario, v float64) { s.Commercial.InterchangePct = v },
	"employee_fee_month":          func(s *domain.Scenario, v float64) { s.Commercial.B2B.EmployeeFeeMonth = v },
}

// SensitivityParameters lists the supported sweep parameters, sorted for
// stable error messages and API docs.
func SensitivityParameters() []string {
	names := make([]string, 0, len(sensitivitySetters))
	for name := range sensitivitySetters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Sensitivity substitutes each value into the named field of a cloned base
// scenario and re-runs the simulation. Output preserves the caller's value
// ordering, which need not be sorted.
func Sensitivity(ctx context.Context, base *domain.Scenario, plan *domain.PricingPlan, parameter string, values []float64, opts AnalyzerOptions) (*domain.SensitivityResult, error) {
	setter, ok := sensitivitySetters[parameter]
	if !ok {
		return nil, &domain.ErrUnknownParameter{Name: parameter}
	}
	if len(values) == 0 {
		return nil, &domain.ErrInvalidScenario{Field: "values", Message: "at least one value is required"}
	}

	opts = opts.withDefaults()
	points := make([]domain.SensitivityPoint, len(values))
	bulkhead := resilience.NewBulkhead(opts.MaxParallel)

	g, gctx := errgroup.WithContext(ctx)
	for i := range values {
		i := i
		g.Go(func() error {
			if err := bulkhead.Acquire(gctx); err != nil {
				return err
			}
			defer bulkhead.Release()

			sc := base.Clone()
			setter(sc, values[i])

			point := domain.SensitivityPoint{Value: values[i]}
			sim, err := Run(sc, plan)
			if err != nil {
				point.Error = err.Error()
			} else {
				point.Simulation = sim
			}
			points[i] = point
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &domain.SensitivityResult{Parameter: parameter, Points: points}, nil
}
