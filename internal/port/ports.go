// Package port defines the interfaces the service layer depends on.
// Infra packages implement them; tests substitute stubs.
package port

import (
	"context"

	"github.com/cardsim/cardsim-go/internal/domain"
)

// PlanSource provides the immutable pricing plan.
type PlanSource interface {
	Plan(ctx context.Context) (*domain.PricingPlan, error)
}

// PresetSource provides the named preset scenarios shipped with the
// deployment.
type PresetSource interface {
	Presets(ctx context.Context) ([]domain.Scenario, error)
}

// Cache abstracts the TTL cache used for plans and solve results.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}
