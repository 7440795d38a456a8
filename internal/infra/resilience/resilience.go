// Package resilience provides the fault-tolerance patterns used by the
// gateway: a circuit breaker and a bulkhead. Calls are never retried.
package resilience

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
)

// BreakerSettings tunes NewCircuitBreaker. Zero values fall back to defaults.
type BreakerSettings struct {
	Interval    time.Duration
	Timeout     time.Duration
	MinRequests uint32
	OnChange    func(name string, from, to gobreaker.State)
}

// NewCircuitBreaker creates a circuit breaker that opens once at least
// MinRequests were seen in the interval and 60% of them failed.
func NewCircuitBreaker(name string, s BreakerSettings) *gobreaker.CircuitBreaker {
	if s.Interval == 0 {
		s.Interval = 30 * time.Second
	}
	if s.Timeout == 0 {
		s.Timeout = 10 * time.Second
	}
	if s.MinRequests == 0 {
		s.MinRequests = 5
	}
	minRequests := s.MinRequests

	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,          // half-open: one probe
		Interval:    s.Interval, // closed: reset counters
		Timeout:     s.Timeout,  // open -> half-open
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= minRequests && failureRatio >= 0.6
		},
		// A caller giving up is not a backend failure.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: s.OnChange,
	})
}

// Bulkhead limits concurrent access to a resource.
type Bulkhead struct {
	sem chan struct{}
}

// NewBulkhead creates a bulkhead with the given max concurrency.
// A non-positive value means one slot.
func NewBulkhead(maxConcurrency int) *Bulkhead {
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}
	return &Bulkhead{sem: make(chan struct{}, maxConcurrency)}
}

// Acquire blocks until a slot is available or context is cancelled.
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

// InFlight reports how many slots are currently held.
func (b *Bulkhead) InFlight() int {
	return len(b.sem)
}
