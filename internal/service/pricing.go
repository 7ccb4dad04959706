package service

import (
	"context"

	"github.com/cardsim/cardsim-go/internal/domain"
	"github.com/cardsim/cardsim-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var pricingTracer = otel.Tracer("service/pricing")

// Pricing serves the read-only pricing plan and preset scenarios.
type Pricing struct {
	plans   port.PlanSource
	presets port.PresetSource
	logger  *zap.Logger
}

// NewPricing creates the pricing service.
func NewPricing(plans port.PlanSource, presets port.PresetSource, logger *zap.Logger) *Pricing {
	return &Pricing{plans: plans, presets: presets, logger: logger}
}

// Plan returns the complete pricing plan.
func (p *Pricing) Plan(ctx context.Context) (*domain.PricingPlan, error) {
	ctx, span := pricingTracer.Start(ctx, "Pricing.Plan")
	defer span.End()

	return p.plans.Plan(ctx)
}

// TierInfo returns the tier table for one billed metric.
func (p *Pricing) TierInfo(ctx context.Context, metric string) (domain.TieredPricing, error) {
	ctx, span := pricingTracer.Start(ctx, "Pricing.TierInfo")
	defer span.End()

	plan, err := p.plans.Plan(ctx)
	if err != nil {
		return domain.TieredPricing{}, err
	}
	tp, ok := plan.TieredMonthly[metric]
	if !ok {
		return domain.TieredPricing{}, &domain.ErrNotFound{Resource: "tier metric", ID: metric}
	}
	return tp, nil
}

// FixedFees returns the plan's fixed monthly fees.
func (p *Pricing) FixedFees(ctx context.Context) ([]domain.FixedMonthlyFee, error) {
	plan, err := p.plans.Plan(ctx)
	if err != nil {
		return nil, err
	}
	return plan.FixedMonthly, nil
}

// EventFees returns the plan's event-based fees.
func (p *Pricing) EventFees(ctx context.Context) ([]domain.EventFee, error) {
	plan, err := p.plans.Plan(ctx)
	if err != nil {
		return nil, err
	}
	return plan.EventFees, nil
}

// OneOffFees returns the plan's one-time fees.
func (p *Pricing) OneOffFees(ctx context.Context) ([]domain.OneOffFee, error) {
	plan, err := p.plans.Plan(ctx)
	if err != nil {
		return nil, err
	}
	return plan.OneOffs, nil
}

// Presets returns all preset scenarios.
func (p *Pricing) Presets(ctx context.Context) ([]domain.Scenario, error) {
	ctx, span := pricingTracer.Start(ctx, "Pricing.Presets")
	defer span.End()

	return p.presets.Presets(ctx)
}

// PresetByName returns one preset scenario.
func (p *Pricing) PresetByName(ctx context.Context, name string) (*domain.Scenario, error) {
	ctx, span := pricingTracer.Start(ctx, "Pricing.PresetByName")
	defer span.End()

	presets, err := p.presets.Presets(ctx)
	if err != nil {
		return nil, err
	}
	for i := range presets {
		if presets[i].Name == name {
			return &presets[i], nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "scenario preset", ID: name}
}
