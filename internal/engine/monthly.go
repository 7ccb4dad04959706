package engine

import "github.com/cardsim/cardsim-go/internal/domain"

// monthState is the per-month input to the cost/revenue calculator.
// activeStart is the start-of-month card count the month is billed on;
// the adoption transition applies afterwards.
type monthState struct {
	month          int
	activeStart    int
	activeEnd      int
	issued         float64
	issuedPhysical float64
	issuedVirtual  float64
	churned        float64
}

// planContext carries the plan lookups precomputed once per run so the
// monthly calculator stays cheap inside solver loops.
type planContext struct {
	plan           *domain.PricingPlan
	fixedMonthly   float64
	oneOffsByMonth map[int]float64
	activeTiers    []domain.Tier
	authEEATiers   []domain.Tier
	authNonEEA     []domain.Tier
	threeDSTiers   []domain.Tier
}

func newPlanContext(plan *domain.PricingPlan, sc *domain.Scenario) planContext {
	pc := planContext{
		plan:           plan,
		oneOffsByMonth: make(map[int]float64),
		activeTiers:    plan.TiersFor(domain.MetricActiveCards),
		authEEATiers:   plan.TiersFor(domain.MetricAuthEEA),
		authNonEEA:     plan.TiersFor(domain.MetricAuthNonEEA),
		threeDSTiers:   plan.TiersFor(domain.MetricThreeDS),
	}

	for _, fee := range plan.FixedMonthly {
		if fee.Mandatory || toggled(sc.Toggles.FixedFees, fee.Key, fee.EnabledByDefault) {
			pc.fixedMonthly += fee.Amount
		}
	}

	for _, fee := range plan.OneOffs {
		if !toggled(sc.Toggles.OneOffs, fee.Key, fee.EnabledByDefault) {
			continue
		}
		month := fee.ApplyMonth
		if month < 1 {
			month = 1
		}
		pc.oneOffsByMonth[month] += fee.Amount
	}

	return pc
}

// toggled resolves a fee toggle: explicit scenario setting wins, otherwise
// the plan's enabled_by_default.
func toggled(m map[string]bool, key string, fallback bool) bool {
	if v, ok := m[key]; ok {
		return v
	}
	return fallback
}

// computeMonth computes one month's full cost and revenue breakdown from
// the start-of-month state. Pure function of its inputs.
func computeMonth(st monthState, pc planContext, sc *domain.Scenario) domain.MonthlyResult {
	active := float64(st.activeStart)
	usage := sc.Usage
	com := sc.Commercial

	// --- Usage-derived volumes ---
	totalSpend := active * usage.SpendPerActiveCardMonth
	inAppSpend := totalSpend * usage.InAppShare

	var tx float64
	if usage.AvgTicket > 0 {
		tx = totalSpend / usage.AvgTicket * usage.AuthMult()
	}
	eeaAuth := tx * usage.EEAShare
	nonEEAAuth := tx - eeaAuth
	threeDSAttempts := tx * usage.EcomShare * usage.ThreeDSAttemptRate

	// --- Revenue ---
	revPartner := inAppSpend * com.PartnerFeePct
	revInterchange := totalSpend * usage.EEAShare * com.InterchangePct
	revB2B := float64(com.B2B.Companies)*com.B2B.PlatformFeeCompanyMonth +
		active*com.B2B.EmployeeFeeMonth

	// --- Cost ---
	costActive := tierCost(active, pc.activeTiers)
	costAuth := tierCost(eeaAuth, pc.authEEATiers) + tierCost(nonEEAAuth, pc.authNonEEA)
	costThreeDS := tierCost(threeDSAttempts, pc.threeDSTiers)
	costEvents := eventCosts(st, pc, sc, tx, active)
	costPhysical := physicalCosts(st.issuedPhysical, pc.plan, sc)
	costOneOff := pc.oneOffsByMonth[st.month]

	totalCost := pc.fixedMonthly + costOneOff + costActive + costAuth + costThreeDS + costEvents + costPhysical
	totalRev := revPartner + revInterchange + revB2B

	return domain.MonthlyResult{
		Month:            st.month,
		ActiveCardsStart: st.activeStart,
		ActiveCardsEnd:   st.activeEnd,
		IssuedCards:      st.issued,
		IssuedPhysical:   st.issuedPhysical,
		IssuedVirtual:    st.issuedVirtual,
		TotalSpend:       totalSpend,
		InAppSpend:       inAppSpend,
		TxCount:          tx,
		EEAAuth:          eeaAuth,
		NonEEAAuth:       nonEEAAuth,
		ThreeDSAttempts:  threeDSAttempts,
		RevPartner:       revPartner,
		RevInterchange:   revInterchange,
		RevB2B:           revB2B,
		CostFixed:        pc.fixedMonthly,
		CostOneOff:       costOneOff,
		CostActiveCards:  costActive,
		CostAuth:         costAuth,
		CostThreeDS:      costThreeDS,
		CostEvents:       costEvents,
		CostPhysical:     costPhysical,
		TotalRevenue:     totalRev,
		TotalCost:        totalCost,
		Profit:           totalRev - totalCost,
	}
}

// eventCosts sums per-occurrence fees. Event volumes are derived
// deterministically from the scenario's usage and ops assumptions:
// issuance-driven events scale with new cards, transaction-driven events
// with tx count, base-driven events with the active (or churned) base.
func eventCosts(st monthState, pc planContext, sc *domain.Scenario, tx, active float64) float64 {
	var cost float64
	for _, fee := range pc.plan.EventFees {
		if !fee.Mandatory && !toggled(sc.Toggles.EventFees, fee.Key, fee.EnabledByDefault) {
			continue
		}

		var volume float64
		switch fee.Key {
		case domain.EventCardIssue:
			volume = st.issued
		case domain.EventPersonalization:
			// only plastic cards get personalized
			volume = st.issuedPhysical
		case domain.EventKYCAttempt:
			volume = st.issued * sc.Ops.KYCAttemptsPerNewUser
		case domain.EventAccountDocs:
			volume = st.issued * sc.Ops.DocConfirmRatePerNewUser
		case domain.EventDispute:
			volume = tx * sc.Ops.DisputeRatePerTx
		case domain.EventSMS:
			volume = active * sc.Ops.SMSPerActiveUserMonth
		case domain.EventPINChange:
			volume = active * sc.Ops.PINChangesPerActiveMonth
		case domain.EventAccountClosure:
			volume = st.churned * sc.Ops.ClosuresPerChurnedUser
		}

		cost += volume * fee.Amount
	}
	return cost
}

// physicalCosts prices plastic card manufacturing and shipping for the
// month's physical issuance. Plans without a physical_cards section, and
// months without physical issuance, cost nothing.
func physicalCosts(issuedPhysical float64, plan *domain.PricingPlan, sc *domain.Scenario) float64 {
	if issuedPhysical <= 0 || plan.PhysicalCards == nil {
		return 0
	}
	phys := plan.PhysicalCards

	var cost float64
	if toggledPtr(sc.Toggles.PhysicalManufacturing, phys.Manufacturing.EnabledByDefault) {
		cost += issuedPhysical * phys.Manufacturing.UnitPrice(issuedPhysical)
	}
	if toggledPtr(sc.Toggles.PhysicalDelivery, phys.Delivery.EnabledByDefault) {
		key := sc.Toggles.DeliveryMethod
		if key == "" {
			key = phys.Delivery.DefaultMethod
		}
		if method, ok := phys.Delivery.Method(key); ok {
			cost += issuedPhysical * method.Price
		}
	}
	return cost
}

func toggledPtr(v *bool, fallback bool) bool {
	if v != nil {
		return *v
	}
	return fallback
}
