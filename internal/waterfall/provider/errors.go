package provider

import (
	"errors"
	"fmt"

	"github.com/sells-group/plantcare/internal/resilience"
)

// Kind classifies a failed provider call.
type Kind int

const (
	// KindUnavailable covers network errors, timeouts, non-2xx statuses and
	// open circuits.
	KindUnavailable Kind = iota
	// KindNoMatch is a valid response with zero matches.
	KindNoMatch
	// KindRateLimited is an HTTP 429 from the provider.
	KindRateLimited
)

func (k Kind) String() string {
	switch k {
	case KindUnavailable:
		return "unavailable"
	case KindNoMatch:
		return "no_match"
	case KindRateLimited:
		return "rate_limited"
	default:
		return "unknown"
	}
}

// Error is the failure variant of every provider call. The waterfall treats
// any Kind as "advance to the next provider".
type Error struct {
	Provider   string
	Kind       Kind
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("provider %s: %s", e.Provider, e.Kind)
	}
	return fmt.Sprintf("provider %s: %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NoMatch reports a valid empty response.
func NoMatch(provider string) *Error {
	return &Error{Provider: provider, Kind: KindNoMatch}
}

// Classify converts any error from a provider call into an *Error.
func Classify(provider string, err error) *Error {
	if err == nil {
		return nil
	}
	var pe *Error
	if errors.As(err, &pe) {
		return pe
	}

	status := resilience.StatusCode(err)
	kind := KindUnavailable
	if status == 429 {
		kind = KindRateLimited
	}
	return &Error{Provider: provider, Kind: kind, StatusCode: status, Err: err}
}

// KindOf returns the Kind of err, or KindUnavailable for foreign errors.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindUnavailable
}

// countsAsFailure decides which errors trip a provider's circuit breaker.
func countsAsFailure(err error) bool {
	return KindOf(err) != KindNoMatch
}
