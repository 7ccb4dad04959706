package engine

import (
	"math"

	"github.com/cardsim/cardsim-go/internal/domain"
)

// Run executes the month-by-month projection for one scenario against one
// pricing plan. Validation happens once up front; after that the loop is
// allocation-light so solver iterations stay cheap.
//
// Each month is billed on its start-of-month active-card count, then the
// adoption transition applies: churn acts on the pre-existing base, net
// adds join afterwards and are not churned in their first month.
func Run(sc *domain.Scenario, plan *domain.PricingPlan) (*domain.SimulationResult, error) {
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}

	pc := newPlanContext(plan, sc)
	churn := sc.Adoption.ChurnRate
	netAdds := sc.Adoption.MonthlyNetAdds

	var issued float64
	if sc.Issuance.IssueNetAdds() {
		issued = float64(netAdds)
	}
	if issued < 0 {
		issued = 0
	}
	issuedPhysical := issued * sc.Issuance.PhysicalShareIssued
	issuedVirtual := issued - issuedPhysical

	rows := make([]domain.MonthlyResult, 0, sc.HorizonMonths)
	active := sc.Adoption.StartActiveCards
	cumulative := 0.0

	for m := 1; m <= sc.HorizonMonths; m++ {
		churned := float64(active) * churn
		next := int(math.Round(float64(active)*(1-churn) + float64(netAdds)))
		if next < 0 {
			next = 0
		}

		row := computeMonth(monthState{
			month:          m,
			activeStart:    active,
			activeEnd:      next,
			issued:         issued,
			issuedPhysical: issuedPhysical,
			issuedVirtual:  issuedVirtual,
			churned:        churned,
		}, pc, sc)

		cumulative += row.Profit
		row.CumulativeProfit = cumulative
		rows = append(rows, row)

		active = next
	}

	return &domain.SimulationResult{
		ScenarioName:  sc.Name,
		PricingPlanID: plan.ID,
		Rows:          rows,
		KPIs:          computeKPIs(rows),
	}, nil
}

// computeKPIs summarizes a completed run. Breakeven is the first month at
// which cumulative profit becomes non-negative.
func computeKPIs(rows []domain.MonthlyResult) domain.KPIs {
	k := domain.KPIs{}

	for _, r := range rows {
		k.TotalRevenue += r.TotalRevenue
		k.TotalCost += r.TotalCost
		k.TotalProfit += r.Profit
		if k.BreakevenMonth == nil && r.CumulativeProfit >= 0 {
			month := r.Month
			k.BreakevenMonth = &month
		}
	}

	k.ProfitYear1 = sumProfit(rows, 0, 12)
	if len(rows) >= 24 {
		y2 := sumProfit(rows, 12, 24)
		k.ProfitYear2 = &y2
	}
	if len(rows) >= 36 {
		y3 := sumProfit(rows, 24, 36)
		k.ProfitYear3 = &y3
	}

	if len(rows) > 0 {
		k.AvgMonthlyProfit = k.TotalProfit / float64(len(rows))
	}
	if k.TotalCost > 0 {
		roi := k.TotalProfit / k.TotalCost * 100
		k.ROIPercent = &roi
	}
	return k
}

func sumProfit(rows []domain.MonthlyResult, from, to int) float64 {
	if to > len(rows) {
		to = len(rows)
	}
	if from >= to {
		return 0
	}
	var total float64
	for _, r := range rows[from:to] {
		total += r.Profit
	}
	return total
}
