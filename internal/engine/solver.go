package engine

import "github.com/cardsim/cardsim-go/internal/domain"

// SolveOptions bound the bisection search. Zero values fall back to the
// defaults below.
type SolveOptions struct {
	MaxIterations int
	FeeTolerance  float64
	FeeUpperBound float64
}

const (
	defaultMaxIterations = 64
	defaultFeeTolerance  = 1e-4
	defaultFeeUpperBound = 500.0
)

func (o SolveOptions) withDefaults() SolveOptions {
	if o.MaxIterations <= 0 {
		o.MaxIterations = defaultMaxIterations
	}
	if o.FeeTolerance <= 0 {
		o.FeeTolerance = defaultFeeTolerance
	}
	if o.FeeUpperBound <= 0 {
		o.FeeUpperBound = defaultFeeUpperBound
	}
	return o
}

// SolveEmployeeFee searches [0, FeeUpperBound] for the per-card employee
// fee that satisfies the scenario's B2B target, re-running the full
// simulation at each probe. Cumulative profit is monotonically
// non-decreasing in the fee, so a bracketing bisection applies.
//
// Infeasibility and non-convergence are reported on the result status,
// never as errors: callers must be able to tell "could not solve" apart
// from a crash. The returned SolveResult always carries the simulation
// re-run at the reported fee.
func SolveEmployeeFee(sc *domain.Scenario, plan *domain.PricingPlan, opts SolveOptions) (*domain.SolveResult, error) {
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	if !sc.SolveRequested() {
		return nil, &domain.ErrInvalidScenario{
			Field:   "commercial.b2b.mode",
			Message: "solve requested on a scenario in given-fee mode",
		}
	}

	opts = opts.withDefaults()
	target := sc.Commercial.B2B.Target
	horizon := target.Months
	if horizon > sc.HorizonMonths {
		horizon = sc.HorizonMonths
	}

	iterations := 0
	// gap returns metric(fee) - target: >= 0 means the target is met.
	// One full simulation per call; this is the system's dominant cost.
	gap := func(fee float64) (float64, *domain.SimulationResult, error) {
		iterations++
		trial := resolvedScenario(sc, fee)
		result, err := Run(trial, plan)
		if err != nil {
			return 0, nil, err
		}
		cum := result.Rows[horizon-1].CumulativeProfit
		switch target.Type {
		case domain.TargetProfit:
			return cum - target.Amount, result, nil
		case domain.TargetMargin:
			var revenue float64
			for _, r := range result.Rows[:horizon] {
				revenue += r.TotalRevenue
			}
			return cum - revenue*target.Amount, result, nil
		default: // breakeven
			return cum, result, nil
		}
	}

	finish := func(status string, fee float64, sim *domain.SimulationResult) *domain.SolveResult {
		return &domain.SolveResult{
			Status:      status,
			EmployeeFee: fee,
			Iterations:  iterations,
			Target:      target,
			Simulation:  sim,
		}
	}

	// A zero fee already meeting the target means no B2B fee is needed;
	// the solver clamps to 0 and reports converged rather than searching
	// for a negative fee.
	gapLo, simLo, err := gap(0)
	if err != nil {
		return nil, err
	}
	if gapLo >= 0 {
		return finish(domain.SolveConverged, 0, simLo), nil
	}

	gapHi, simHi, err := gap(opts.FeeUpperBound)
	if err != nil {
		return nil, err
	}
	if gapHi < 0 {
		// Even the upper bound cannot reach the target within scope.
		return finish(domain.SolveInfeasible, opts.FeeUpperBound, simHi), nil
	}

	// Bracket invariant: gap(lo) < 0 <= gap(hi). The returned fee is the
	// upper end, so the target is met at the reported value.
	lo, hi := 0.0, opts.FeeUpperBound
	hiSim := simHi
	for i := 0; i < opts.MaxIterations; i++ {
		if hi-lo < opts.FeeTolerance {
			return finish(domain.SolveConverged, hi, hiSim), nil
		}
		mid := lo + (hi-lo)/2
		gapMid, simMid, err := gap(mid)
		if err != nil {
			return nil, err
		}
		if gapMid >= 0 {
			hi, hiSim = mid, simMid
		} else {
			lo = mid
		}
	}

	return finish(domain.SolveDidNotConverge, hi, hiSim), nil
}

// resolvedScenario copies the template with the candidate fee filled in
// and the mode flipped to given, producing the scenario the trial run
// simulates.
func resolvedScenario(sc *domain.Scenario, fee float64) *domain.Scenario {
	trial := sc.Clone()
	trial.Commercial.B2B.Mode = domain.B2BModeGiven
	trial.Commercial.B2B.EmployeeFeeMonth = fee
	return trial
}
