// Package limiter provides an adaptive rate limiter for command dispatch.
// The rate increases on success and decreases on rejection, bounded by a
// configured window.
//
// Example usage:
//
//	lim := limiter.NewAdaptive(5, 1, 20, 1, 0.5)
//	if lim.Allow() {
//	    // invoke the command
//	    lim.Success()
//	}
package limiter

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Adaptive manages a rate limit that adjusts automatically based on the
// outcome of invocations. Thread-safe.
type Adaptive struct {
	mu        sync.RWMutex
	limiter   *rate.Limiter
	minLimit  rate.Limit
	maxLimit  rate.Limit
	stepUp    rate.Limit
	stepDown  float64
	lastError time.Time
}

// NewAdaptive creates an Adaptive limiter.
//
// Parameters:
//   - initial: starting invocations per second
//   - min: minimum allowed rate
//   - max: maximum allowed rate
//   - stepUp: increment on success
//   - stepDown: multiplier applied on rejection (e.g. 0.5 to halve)
func NewAdaptive(initial, min, max rate.Limit, stepUp rate.Limit, stepDown float64) *Adaptive {
	if initial < 1 {
		initial = 1
	}
	if min < 1 {
		min = 1
	}
	burst := int(initial)
	if burst < 1 {
		burst = 1
	}
	return &Adaptive{
		limiter:  rate.NewLimiter(initial, burst),
		minLimit: min,
		maxLimit: max,
		stepUp:   stepUp,
		stepDown: stepDown,
	}
}

// Allow reports whether an invocation may proceed now without blocking.
func (a *Adaptive) Allow() bool {
	return a.limiter.Allow()
}

// Wait blocks until a token is available or the context is canceled.
func (a *Adaptive) Wait(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	return a.limiter.Wait(ctx)
}

// Success increases the rate after a successful invocation.
func (a *Adaptive) Success() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if time.Since(a.lastError) > 10*time.Second {
		a.adjustLimit(a.limiter.Limit() + a.stepUp)
	}
}

// RateLimited reduces the rate after an overload signal, such as a 429 from
// the downstream transport.
func (a *Adaptive) RateLimited() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastError = time.Now()
	a.adjustLimit(rate.Limit(float64(a.limiter.Limit()) * a.stepDown))
}

// CurrentLimit returns the current invocations per second.
func (a *Adaptive) CurrentLimit() float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return float64(a.limiter.Limit())
}

// CurrentBurst returns the current burst size.
func (a *Adaptive) CurrentBurst() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.limiter.Burst()
}

// MaxLimit returns the configured maximum rate.
func (a *Adaptive) MaxLimit() rate.Limit { return a.maxLimit }

// MinLimit returns the configured minimum rate.
func (a *Adaptive) MinLimit() rate.Limit { return a.minLimit }

// adjustLimit sets the limiter to a new rate, respecting min/max boundaries.
func (a *Adaptive) adjustLimit(newLimit rate.Limit) {
	oldLimit := a.limiter.Limit()

	if newLimit > a.maxLimit {
		newLimit = a.maxLimit
	} else if newLimit < a.minLimit {
		newLimit = a.minLimit
	}

	if newLimit != oldLimit {
		a.limiter.SetLimit(newLimit)
		burst := int(newLimit)
		if burst < 1 {
			burst = 1
		}
		a.limiter.SetBurst(burst)
	}
}
