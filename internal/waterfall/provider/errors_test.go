package provider

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/plantcare/internal/resilience"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		kind   Kind
		status int
	}{
		{"rate limited", resilience.NewHTTPError("perenual", "species-list", 429), KindRateLimited, 429},
		{"wrapped rate limited", eris.Wrap(resilience.NewHTTPError("trefle", "plants/search", 429), "search"), KindRateLimited, 429},
		{"server error", resilience.NewHTTPError("trefle", "plants/search", 503), KindUnavailable, 503},
		{"network", errors.New("dial tcp: connection refused"), KindUnavailable, 0},
		{"timeout", context.DeadlineExceeded, KindUnavailable, 0},
		{"circuit open", resilience.ErrCircuitOpen, KindUnavailable, 0},
		{"no match passthrough", NoMatch("perenual"), KindNoMatch, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pe := Classify("perenual", tt.err)
			require.NotNil(t, pe)
			assert.Equal(t, tt.kind, pe.Kind)
			assert.Equal(t, tt.status, pe.StatusCode)
			assert.Equal(t, "perenual", pe.Provider)
		})
	}
	assert.Nil(t, Classify("perenual", nil))
}

func TestError_Message(t *testing.T) {
	assert.Equal(t, "provider trefle: no_match", NoMatch("trefle").Error())

	pe := Classify("perenual", errors.New("boom"))
	assert.Equal(t, "provider perenual: unavailable: boom", pe.Error())
	assert.ErrorContains(t, pe, "boom")
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNoMatch, KindOf(eris.Wrap(NoMatch("x"), "wrapped")))
	assert.Equal(t, KindUnavailable, KindOf(errors.New("foreign")))
	assert.Equal(t, "rate_limited", KindRateLimited.String())
	assert.Equal(t, "unknown", Kind(9).String())
}

func TestCall_TimeoutIsUnavailable(t *testing.T) {
	b := newBase(Settings{Descriptor: Descriptor{Name: "slow"}, Timeout: 10 * time.Millisecond})

	_, err := call(context.Background(), b, func(ctx context.Context) (int, error) {
		ctx, cancel := b.withTimeout(ctx)
		defer cancel()
		<-ctx.Done()
		return 0, ctx.Err()
	})
	require.Error(t, err)
	assert.Equal(t, KindUnavailable, KindOf(err))
	assert.True(t, resilience.IsTimeout(err))
}

func TestWithTimeout_EachRequestHasFullBound(t *testing.T) {
	b := newBase(Settings{Timeout: 50 * time.Millisecond})

	first, cancel := b.withTimeout(context.Background())
	defer cancel()
	time.Sleep(30 * time.Millisecond)

	second, cancel2 := b.withTimeout(context.Background())
	defer cancel2()

	d1, _ := first.Deadline()
	d2, _ := second.Deadline()
	assert.True(t, d2.After(d1))
}

func TestCall_BreakerIgnoresNoMatch(t *testing.T) {
	breaker := resilience.NewCircuitBreaker(BreakerConfig(resilience.CircuitBreakerConfig{FailureThreshold: 2, ResetTimeout: time.Hour}))
	b := newBase(Settings{Descriptor: Descriptor{Name: "perenual"}, Breaker: breaker})

	for i := 0; i < 5; i++ {
		_, err := call(context.Background(), b, func(context.Context) (int, error) {
			return 0, NoMatch("perenual")
		})
		assert.Equal(t, KindNoMatch, KindOf(err))
	}
	assert.Equal(t, resilience.CircuitClosed, breaker.State())

	for i := 0; i < 2; i++ {
		_, _ = call(context.Background(), b, func(context.Context) (int, error) {
			return 0, resilience.NewHTTPError("perenual", "species-list", 500)
		})
	}
	assert.Equal(t, resilience.CircuitOpen, breaker.State())

	calls := 0
	_, err := call(context.Background(), b, func(context.Context) (int, error) {
		calls++
		return 1, nil
	})
	assert.Equal(t, 0, calls, "open circuit skips the upstream")
	assert.Equal(t, KindUnavailable, KindOf(err))
	assert.ErrorIs(t, err, resilience.ErrCircuitOpen)
}

func TestNewBase_DefaultTimeout(t *testing.T) {
	b := newBase(Settings{Descriptor: Descriptor{Name: "x"}})
	assert.Equal(t, DefaultTimeout, b.timeout)
	assert.Equal(t, "x", b.Descriptor().Name)
}
