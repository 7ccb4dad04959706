package domain

import "fmt"

// Error types for consistent error handling across the simulator.

// ErrInvalidPricingTable indicates a malformed pricing plan: empty tier
// tables, non-ascending bounds, or a bounded final tier.
type ErrInvalidPricingTable struct {
	Metric string
	Reason string
}

func (e *ErrInvalidPricingTable) Error() string {
	if e.Metric != "" {
		return fmt.Sprintf("invalid pricing table [%s]: %s", e.Metric, e.Reason)
	}
	return fmt.Sprintf("invalid pricing table: %s", e.Reason)
}

// ErrInvalidScenario indicates an out-of-range or inconsistent scenario
// parameter (bad input).
type ErrInvalidScenario struct {
	Field   string
	Message string
}

func (e *ErrInvalidScenario) Error() string {
	return fmt.Sprintf("invalid scenario field '%s': %s", e.Field, e.Message)
}

// ErrNotFound indicates a resource was not found.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrUnknownParameter indicates a sensitivity sweep over a parameter the
// analyzer does not support.
type ErrUnknownParameter struct {
	Name string
}

func (e *ErrUnknownParameter) Error() string {
	return fmt.Sprintf("unknown sensitivity parameter: %s", e.Name)
}
