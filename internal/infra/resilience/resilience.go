// Package resilience provides a bulkhead that caps how many simulations
// run concurrently. Comparison and sensitivity batches fan out one
// goroutine per scenario; the bulkhead keeps large sweeps from saturating
// the process.
package resilience

import "context"

// Bulkhead limits concurrent access to a resource.
type Bulkhead struct {
	sem chan struct{}
}

// NewBulkhead creates a bulkhead with the given max concurrency.
func NewBulkhead(maxConcurrency int) *Bulkhead {
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}
	return &Bulkhead{sem: make(chan struct{}, maxConcurrency)}
}

// Acquire blocks until a slot is available or the context is cancelled.
func (b *Bulkhead) Acquire(ctx context.Context) error {
	select {
	case b.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release frees a slot.
func (b *Bulkhead) Release() {
	<-b.sem
}
