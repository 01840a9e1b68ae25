package provider

import (
	"context"
	"time"

	"github.com/sells-group/plantcare/internal/resilience"
)

// DefaultTimeout bounds each outbound provider call.
const DefaultTimeout = 10 * time.Second

// Settings configures an adapter.
type Settings struct {
	Descriptor Descriptor
	Timeout    time.Duration
	Breaker    *resilience.CircuitBreaker
}

// base holds what every adapter shares: its descriptor, the per-call
// timeout and an optional circuit breaker.
type base struct {
	desc    Descriptor
	timeout time.Duration
	breaker *resilience.CircuitBreaker
}

func newBase(s Settings) base {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return base{desc: s.Descriptor, timeout: timeout, breaker: s.Breaker}
}

func (b base) Descriptor() Descriptor {
	return b.desc
}

// withTimeout bounds a single outbound request. An adapter that makes two
// requests gives each its own deadline.
func (b base) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, b.timeout)
}

// call runs fn under the circuit breaker and returns any error classified.
// fn bounds each of its requests with withTimeout. The breaker is not
// consulted for no-match results.
func call[T any](ctx context.Context, b base, fn func(ctx context.Context) (T, error)) (T, error) {
	var (
		val T
		err error
	)
	if b.breaker != nil {
		val, err = resilience.ExecuteVal(ctx, b.breaker, fn)
	} else {
		val, err = fn(ctx)
	}
	if err != nil {
		return val, Classify(b.desc.Name, err)
	}
	return val, nil
}

// BreakerConfig returns cfg with tripping restricted to real failures, so
// repeated no-match answers never open a provider's circuit.
func BreakerConfig(cfg resilience.CircuitBreakerConfig) resilience.CircuitBreakerConfig {
	cfg.ShouldTrip = countsAsFailure
	return cfg
}
