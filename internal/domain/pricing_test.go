package domain_test

import (
	"testing"

	"github.com/cardsim/cardsim-go/internal/domain"
)

func fptr(v float64) *float64 { return &v }

func validTiers() []domain.Tier {
	return []domain.Tier{
		{UpTo: fptr(7500), Price: 0.95},
		{UpTo: fptr(15000), Price: 0.85},
		{UpTo: nil, Price: 0.75},
	}
}

func TestTieredPricing_Validate(t *testing.T) {
	cases := []struct {
		name    string
		tiers   []domain.Tier
		wantErr bool
	}{
		{"valid ascending table", validTiers(), false},
		{"single unbounded tier", []domain.Tier{{UpTo: nil, Price: 1}}, false},
		{"empty", nil, true},
		{"bounded last tier", []domain.Tier{{UpTo: fptr(100), Price: 1}}, true},
		{"unbounded before last", []domain.Tier{
			{UpTo: nil, Price: 1},
			{UpTo: nil, Price: 2},
		}, true},
		{"equal bounds", []domain.Tier{
			{UpTo: fptr(100), Price: 1},
			{UpTo: fptr(100), Price: 2},
			{UpTo: nil, Price: 3},
		}, true},
		{"descending bounds", []domain.Tier{
			{UpTo: fptr(200), Price: 1},
			{UpTo: fptr(100), Price: 2},
			{UpTo: nil, Price: 3},
		}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := domain.TieredPricing{Tiers: tc.tiers}.Validate("active_cards")
			if tc.wantErr && err == nil {
				t.Error("expected an error, got nil")
			}
			if !tc.wantErr && err != nil {
				t.Errorf("expected no error, got %v", err)
			}
		})
	}
}

func TestPricingPlan_Validate(t *testing.T) {
	plan := &domain.PricingPlan{
		ID: "p",
		TieredMonthly: map[string]domain.TieredPricing{
			domain.MetricActiveCards: {Tiers: validTiers()},
		},
	}
	if err := plan.Validate(); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	delete(plan.TieredMonthly, domain.MetricActiveCards)
	if err := plan.Validate(); err == nil {
		t.Fatal("expected an error for the missing active-card table")
	}

	plan.TieredMonthly[domain.MetricActiveCards] = domain.TieredPricing{Tiers: validTiers()}
	plan.TieredMonthly[domain.MetricThreeDS] = domain.TieredPricing{Tiers: []domain.Tier{{UpTo: fptr(10), Price: 1}}}
	if err := plan.Validate(); err == nil {
		t.Fatal("expected an error for the malformed optional table")
	}
}

func TestPricingPlan_Lookups(t *testing.T) {
	plan := &domain.PricingPlan{
		TieredMonthly: map[string]domain.TieredPricing{
			domain.MetricActiveCards: {Tiers: validTiers()},
		},
		EventFees: []domain.EventFee{
			{Key: domain.EventCardIssue, Amount: 1.2},
		},
	}

	if tiers := plan.TiersFor(domain.MetricActiveCards); len(tiers) != 3 {
		t.Errorf("expected 3 tiers, got %d", len(tiers))
	}
	if tiers := plan.TiersFor(domain.MetricThreeDS); tiers != nil {
		t.Errorf("expected nil for an unpriced metric, got %v", tiers)
	}

	if fee, ok := plan.Event(domain.EventCardIssue); !ok || fee.Amount != 1.2 {
		t.Errorf("expected the card_issue fee, got %+v (ok=%v)", fee, ok)
	}
	if _, ok := plan.Event("unknown"); ok {
		t.Error("expected no fee for an unknown key")
	}
}

func TestPhysicalManufacturing_UnitPrice(t *testing.T) {
	max1 := 499
	max2 := 1999
	mfg := domain.PhysicalManufacturing{
		Tiers: []domain.ManufacturingTier{
			{MinBatch: 0, MaxBatch: &max1, Price: 2.0},
			{MinBatch: 500, MaxBatch: &max2, Price: 1.5},
			{MinBatch: 2000, Price: 1.0},
		},
	}

	cases := []struct {
		batch float64
		want  float64
	}{
		{100, 2.0},
		{499, 2.0},
		{500, 1.5},
		{1999, 1.5},
		{2000, 1.0},
		{100000, 1.0},
	}
	for _, tc := range cases {
		if got := mfg.UnitPrice(tc.batch); got != tc.want {
			t.Errorf("batch %v: expected price %v, got %v", tc.batch, tc.want, got)
		}
	}

	// a batch below the smallest bracket is billed at the first bracket
	small := domain.PhysicalManufacturing{
		Tiers: []domain.ManufacturingTier{
			{MinBatch: 500, MaxBatch: &max2, Price: 1.5},
			{MinBatch: 2000, Price: 1.0},
		},
	}
	if got := small.UnitPrice(50); got != 1.5 {
		t.Errorf("expected first-bracket fallback 1.5, got %v", got)
	}

	var empty domain.PhysicalManufacturing
	if got := empty.UnitPrice(100); got != 0 {
		t.Errorf("expected 0 without brackets, got %v", got)
	}
}

func TestPhysicalDelivery_Method(t *testing.T) {
	del := domain.PhysicalDelivery{
		DefaultMethod: "dhl_tracked",
		Methods: []domain.DeliveryMethod{
			{Key: "dhl_tracked", Price: 3.2},
			{Key: "standard_post", Price: 1.1},
		},
	}

	if m, ok := del.Method("standard_post"); !ok || m.Price != 1.1 {
		t.Errorf("expected standard_post at 1.1, got %+v (ok=%v)", m, ok)
	}
	// unknown keys fall back to the first configured method
	if m, ok := del.Method("carrier_pigeon"); !ok || m.Key != "dhl_tracked" {
		t.Errorf("expected fallback to the first method, got %+v (ok=%v)", m, ok)
	}

	var empty domain.PhysicalDelivery
	if _, ok := empty.Method("dhl_tracked"); ok {
		t.Error("expected no method without a configured list")
	}
}
