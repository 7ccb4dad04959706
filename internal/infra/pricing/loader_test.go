package pricing_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cardsim/cardsim-go/internal/domain"
	"github.com/cardsim/cardsim-go/internal/infra/cache"
	"github.com/cardsim/cardsim-go/internal/infra/pricing"

	"go.uber.org/zap"
)

const planJSON = `{
	"id": "plan_test",
	"currency": "EUR",
	"fixed_monthly": [
		{"key": "program_maintenance", "label": "Program maintenance", "amount": 2495.0, "mandatory": true}
	],
	"tiered_monthly": {
		"active_cards": {
			"unit": "card/month",
			"tiers": [
				{"up_to": 7500, "price": 0.95},
				{"up_to": 15000, "price": 0.85},
				{"up_to": null, "price": 0.75}
			]
		}
	},
	"event_fees": [
		{"key": "card_issue", "label": "Card issuance", "amount": 1.2, "unit": "card", "mandatory": true}
	]
}`

const presetsJSON = `[
	{
		"name": "pilot",
		"horizon_months": 12,
		"adoption": {"start_active_cards": 500, "monthly_net_adds": 50, "churn_rate": 0.03},
		"usage": {"spend_per_active_card_month": 150, "in_app_share": 0.7, "avg_ticket": 15, "ecom_share": 0.5, "eea_share": 0.9, "three_ds_attempt_rate": 0.5},
		"commercial": {"partner_fee_pct": 0.018, "interchange_pct": 0.002, "b2b": {"companies": 5, "platform_fee_company_month": 29, "mode": "given"}}
	}
]`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func newLoader(t *testing.T, planContent, presetsContent string) *pricing.Loader {
	t.Helper()
	dir := t.TempDir()

	planPath := filepath.Join(dir, "missing_plan.json")
	if planContent != "" {
		planPath = writeFile(t, dir, "plan.json", planContent)
	}
	presetsPath := filepath.Join(dir, "missing_presets.json")
	if presetsContent != "" {
		presetsPath = writeFile(t, dir, "presets.json", presetsContent)
	}

	return pricing.NewLoader(
		planPath, presetsPath,
		cache.New[*domain.PricingPlan](5*time.Minute),
		cache.New[[]domain.Scenario](5*time.Minute),
		zap.NewNop(),
	)
}

func TestLoader_Plan(t *testing.T) {
	loader := newLoader(t, planJSON, "")

	plan, err := loader.Plan(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if plan.ID != "plan_test" {
		t.Errorf("expected plan id 'plan_test', got '%s'", plan.ID)
	}
	if plan.Currency != "EUR" {
		t.Errorf("expected currency 'EUR', got '%s'", plan.Currency)
	}

	tiers := plan.TiersFor(domain.MetricActiveCards)
	if len(tiers) != 3 {
		t.Fatalf("expected 3 active-card tiers, got %d", len(tiers))
	}
	if tiers[0].UpTo == nil || *tiers[0].UpTo != 7500 {
		t.Errorf("expected first bound 7500, got %v", tiers[0].UpTo)
	}
	if tiers[2].UpTo != nil {
		t.Error("expected an unbounded last tier")
	}
}

func TestLoader_PlanCached(t *testing.T) {
	loader := newLoader(t, planJSON, "")

	first, err := loader.Plan(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	second, err := loader.Plan(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if first != second {
		t.Error("expected the cached plan pointer on the second load")
	}
}

func TestLoader_PlanMissingFile(t *testing.T) {
	loader := newLoader(t, "", "")

	if _, err := loader.Plan(context.Background()); err == nil {
		t.Fatal("expected an error for a missing plan file")
	}
}

func TestLoader_PlanMalformed(t *testing.T) {
	loader := newLoader(t, `{"id": `, "")

	if _, err := loader.Plan(context.Background()); err == nil {
		t.Fatal("expected an error for malformed JSON")
	}
}

func TestLoader_PlanInvalidTiers(t *testing.T) {
	loader := newLoader(t, `{
		"id": "bad",
		"tiered_monthly": {
			"active_cards": {"tiers": [{"up_to": 100, "price": 1}]}
		}
	}`, "")

	if _, err := loader.Plan(context.Background()); err == nil {
		t.Fatal("expected a validation error for a bounded last tier")
	}
}

func TestLoader_Presets(t *testing.T) {
	loader := newLoader(t, planJSON, presetsJSON)

	presets, err := loader.Presets(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(presets) != 1 {
		t.Fatalf("expected 1 preset, got %d", len(presets))
	}
	if presets[0].Name != "pilot" {
		t.Errorf("expected preset 'pilot', got '%s'", presets[0].Name)
	}
	if presets[0].Adoption.StartActiveCards != 500 {
		t.Errorf("expected 500 starting cards, got %d", presets[0].Adoption.StartActiveCards)
	}
}

func TestLoader_PresetsMissingFileIsEmpty(t *testing.T) {
	loader := newLoader(t, planJSON, "")

	presets, err := loader.Presets(context.Background())
	if err != nil {
		t.Fatalf("expected no error for a missing presets file, got %v", err)
	}
	if len(presets) != 0 {
		t.Errorf("expected no presets, got %d", len(presets))
	}
}

func TestLoader_PresetsInvalidScenario(t *testing.T) {
	loader := newLoader(t, planJSON, `[{"name": "bad", "horizon_months": 0}]`)

	if _, err := loader.Presets(context.Background()); err == nil {
		t.Fatal("expected a validation error for a zero-horizon preset")
	}
}
