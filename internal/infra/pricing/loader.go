// Package pricing loads the pricing plan and scenario presets from static
// JSON files. Structural invariants are validated at load time so every
// downstream engine call sees a well-formed plan.
package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/cardsim/cardsim-go/internal/domain"
	"github.com/cardsim/cardsim-go/internal/port"

	"go.uber.org/zap"
)

const (
	planCacheKey    = "pricing_plan"
	presetsCacheKey = "scenario_presets"
)

// Loader reads plan and preset files, caching parsed values so repeated
// requests do not hit the filesystem.
type Loader struct {
	planPath    string
	presetsPath string
	planCache   port.Cache[*domain.PricingPlan]
	presetCache port.Cache[[]domain.Scenario]
	logger      *zap.Logger
}

// NewLoader creates a loader for the given file paths.
func NewLoader(
	planPath, presetsPath string,
	planCache port.Cache[*domain.PricingPlan],
	presetCache port.Cache[[]domain.Scenario],
	logger *zap.Logger,
) *Loader {
	return &Loader{
		planPath:    planPath,
		presetsPath: presetsPath,
		planCache:   planCache,
		presetCache: presetCache,
		logger:      logger,
	}
}

// Plan returns the parsed pricing plan, validating tier tables on load.
func (l *Loader) Plan(_ context.Context) (*domain.PricingPlan, error) {
	if plan, ok := l.planCache.Get(planCacheKey); ok {
		return plan, nil
	}

	raw, err := os.ReadFile(l.planPath)
	if err != nil {
		return nil, fmt.Errorf("read pricing plan %s: %w", l.planPath, err)
	}

	var plan domain.PricingPlan
	if err := json.Unmarshal(raw, &plan); err != nil {
		return nil, fmt.Errorf("parse pricing plan %s: %w", l.planPath, err)
	}
	if err := plan.Validate(); err != nil {
		return nil, err
	}

	l.logger.Info("pricing plan loaded",
		zap.String("path", l.planPath),
		zap.String("plan_id", plan.ID),
		zap.String("currency", plan.Currency),
	)

	l.planCache.Set(planCacheKey, &plan)
	return &plan, nil
}

// Presets returns the preset scenarios. A missing presets file is not an
// error; deployments may ship without presets.
func (l *Loader) Presets(_ context.Context) ([]domain.Scenario, error) {
	if presets, ok := l.presetCache.Get(presetsCacheKey); ok {
		return presets, nil
	}

	raw, err := os.ReadFile(l.presetsPath)
	if err != nil {
		if os.IsNotExist(err) {
			l.logger.Warn("scenario presets file not found, serving none",
				zap.String("path", l.presetsPath),
			)
			return []domain.Scenario{}, nil
		}
		return nil, fmt.Errorf("read scenario presets %s: %w", l.presetsPath, err)
	}

	var presets []domain.Scenario
	if err := json.Unmarshal(raw, &presets); err != nil {
		return nil, fmt.Errorf("parse scenario presets %s: %w", l.presetsPath, err)
	}
	for i := range presets {
		if err := presets[i].Validate(); err != nil {
			return nil, fmt.Errorf("preset %q: %w", presets[i].Name, err)
		}
	}

	l.logger.Info("scenario presets loaded",
		zap.String("path", l.presetsPath),
		zap.Int("count", len(presets)),
	)

	l.presetCache.Set(presetsCacheKey, presets)
	return presets, nil
}
