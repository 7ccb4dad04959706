package domain

// Simulation and solver output types. Every result is created fresh per
// run and never mutated afterwards; nothing here is shared across runs.

// MonthlyResult is one row of the projection time series.
type MonthlyResult struct {
	Month            int `json:"month"`
	ActiveCardsStart int `json:"active_cards_start"`
	ActiveCardsEnd   int `json:"active_cards_end"`

	IssuedCards     float64 `json:"issued_cards"`
	IssuedPhysical  float64 `json:"issued_physical"`
	IssuedVirtual   float64 `json:"issued_virtual"`
	TotalSpend      float64 `json:"total_spend"`
	InAppSpend      float64 `json:"in_app_spend"`
	TxCount         float64 `json:"tx_count"`
	EEAAuth         float64 `json:"eea_auth"`
	NonEEAAuth      float64 `json:"non_eea_auth"`
	ThreeDSAttempts float64 `json:"three_ds_attempts"`

	RevPartner     float64 `json:"rev_partner"`
	RevInterchange float64 `json:"rev_interchange"`
	RevB2B         float64 `json:"rev_b2b"`

	CostFixed       float64 `json:"cost_fixed"`
	CostOneOff      float64 `json:"cost_oneoff"`
	CostActiveCards float64 `json:"cost_active_cards"`
	CostAuth        float64 `json:"cost_auth"`
	CostThreeDS     float64 `json:"cost_3ds"`
	CostEvents      float64 `json:"cost_events"`
	CostPhysical    float64 `json:"cost_physical"`

	TotalRevenue     float64 `json:"total_revenue"`
	TotalCost        float64 `json:"total_cost"`
	Profit           float64 `json:"profit"`
	CumulativeProfit float64 `json:"cumulative_profit"`
}

// KPIs summarize one simulation run.
type KPIs struct {
	BreakevenMonth   *int     `json:"breakeven_month"`
	ProfitYear1      float64  `json:"profit_year1"`
	ProfitYear2      *float64 `json:"profit_year2"`
	ProfitYear3      *float64 `json:"profit_year3"`
	TotalRevenue     float64  `json:"total_revenue"`
	TotalCost        float64  `json:"total_cost"`
	TotalProfit      float64  `json:"total_profit"`
	AvgMonthlyProfit float64  `json:"avg_monthly_profit"`
	ROIPercent       *float64 `json:"roi_percent"`
}

// SimulationResult is the ordered monthly time series of one run plus its
// summary. Owned solely by the run that produced it.
type SimulationResult struct {
	RunID         string          `json:"run_id,omitempty"`
	ScenarioName  string          `json:"scenario_name"`
	PricingPlanID string          `json:"pricing_plan_id"`
	Rows          []MonthlyResult `json:"rows"`
	KPIs          KPIs            `json:"kpis"`
}

// Solver outcome statuses. Infeasibility and non-convergence are normal,
// reportable outcomes, not errors.
const (
	SolveConverged      = "converged"
	SolveInfeasible     = "infeasible"
	SolveDidNotConverge = "did_not_converge"
)

// SolveResult carries the converged fee (or the last upper bracket for
// non-converged outcomes) and the simulation re-run at that fee.
type SolveResult struct {
	Status      string            `json:"status"`
	EmployeeFee float64           `json:"employee_fee"`
	Iterations  int               `json:"iterations"`
	Target      B2BTarget         `json:"target"`
	Simulation  *SimulationResult `json:"simulation"`
}

// ComparisonEntry is one named scenario's outcome within a comparison.
// Exactly one of Simulation/Solve is set on success; Error records a
// per-entry failure without aborting the batch.
type ComparisonEntry struct {
	Name       string            `json:"name"`
	Simulation *SimulationResult `json:"simulation,omitempty"`
	Solve      *SolveResult      `json:"solve,omitempty"`
	Error      string            `json:"error,omitempty"`
}

// ComparisonResult preserves the input scenario order.
type ComparisonResult struct {
	Entries          []ComparisonEntry `json:"entries"`
	BestByProfit     string            `json:"best_by_profit,omitempty"`
	FastestBreakeven string            `json:"fastest_breakeven,omitempty"`
}

// SensitivityPoint is one (value, outcome) pair of a parameter sweep.
type SensitivityPoint struct {
	Value      float64           `json:"value"`
	Simulation *SimulationResult `json:"simulation,omitempty"`
	Error      string            `json:"error,omitempty"`
}

// SensitivityResult preserves the caller-supplied value ordering.
type SensitivityResult struct {
	Parameter string             `json:"parameter"`
	Points    []SensitivityPoint `json:"points"`
}

// EngineMetrics is the snapshot served by GET /v1/metrics/engine.
type EngineMetrics struct {
	TotalRuns           int64   `json:"total_runs"`
	TotalSolves         int64   `json:"total_solves"`
	ErrorRate           float64 `json:"error_rate"`
	AvgSolverIterations float64 `json:"avg_solver_iterations"`
	CacheHitRate        float64 `json:"cache_hit_rate"`
	Period              string  `json:"period"`
}

// HealthResponse is returned by the health endpoints.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

// SuccessResponse is a generic message envelope.
type SuccessResponse struct {
	Message string `json:"message"`
}
