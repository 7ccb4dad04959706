// Package engine implements the month-by-month financial projection model,
// the tiered-pricing lookup, the employee-fee solver and the comparison/
// sensitivity analyses built on repeated projections. Everything in this
// package is a pure function of its inputs: no I/O, no shared state.
package engine

import "github.com/cardsim/cardsim-go/internal/domain"

// ResolveTier returns the applicable unit price and tier index for a
// volume. Bounds are inclusive upper limits scanned in ascending order;
// the final unbounded tier catches everything above the last bound.
func ResolveTier(volume float64, tiers []domain.Tier) (float64, int, error) {
	if volume < 0 {
		return 0, 0, &domain.ErrInvalidScenario{Field: "volume", Message: "must be >= 0"}
	}
	if err := (domain.TieredPricing{Tiers: tiers}).Validate(""); err != nil {
		return 0, 0, err
	}
	price, idx := resolvePrice(volume, tiers)
	return price, idx, nil
}

// TierCost bills the entire volume at the single resolved tier rate.
// This is offer-table pricing, not marginal bracketing: a volume of 8000
// against {<=7500: 0.95, >7500: 0.85} costs 8000*0.85, not a blend.
func TierCost(volume float64, tiers []domain.Tier) (float64, error) {
	price, _, err := ResolveTier(volume, tiers)
	if err != nil {
		return 0, err
	}
	if volume == 0 {
		return 0, nil
	}
	return volume * price, nil
}

// resolvePrice assumes a validated tier table. The simulation loop calls
// this directly after validating the plan once up front.
func resolvePrice(volume float64, tiers []domain.Tier) (float64, int) {
	for i, t := range tiers {
		if t.UpTo == nil || volume <= *t.UpTo {
			return t.Price, i
		}
	}
	// Unreachable on a validated table; the last tier is unbounded.
	last := len(tiers) - 1
	return tiers[last].Price, last
}

// tierCost is the hot-loop variant of TierCost for validated tables.
func tierCost(volume float64, tiers []domain.Tier) float64 {
	if volume <= 0 || len(tiers) == 0 {
		return 0
	}
	price, _ := resolvePrice(volume, tiers)
	return volume * price
}
