package limiter

import (
	"testing"

	"golang.org/x/time/rate"
)

func TestNewAdaptiveClampsInitial(t *testing.T) {
	a := NewAdaptive(0, 0, 20, 1, 0.5)
	if got := a.CurrentLimit(); got != 1 {
		t.Errorf("CurrentLimit() = %v, want clamped to 1", got)
	}
	if got := a.CurrentBurst(); got != 1 {
		t.Errorf("CurrentBurst() = %v, want 1", got)
	}
	if a.MinLimit() != 1 || a.MaxLimit() != 20 {
		t.Errorf("bounds = [%v, %v], want [1, 20]", a.MinLimit(), a.MaxLimit())
	}
}

func TestRateLimitedHalvesRate(t *testing.T) {
	a := NewAdaptive(8, 1, 20, 1, 0.5)
	a.RateLimited()
	if got := a.CurrentLimit(); got != 4 {
		t.Errorf("CurrentLimit() after overload = %v, want 4", got)
	}
	a.RateLimited()
	a.RateLimited()
	if got := a.CurrentLimit(); got != 1 {
		t.Errorf("CurrentLimit() = %v, want floored at min", got)
	}
	a.RateLimited()
	if got := a.CurrentLimit(); got != 1 {
		t.Errorf("CurrentLimit() = %v, must not drop below min", got)
	}
}

func TestSuccessStepsUpToMax(t *testing.T) {
	a := NewAdaptive(9, 1, 10, 1, 0.5)
	// no recent error, so success steps the rate up
	a.Success()
	if got := a.CurrentLimit(); got != 10 {
		t.Errorf("CurrentLimit() = %v, want 10", got)
	}
	a.Success()
	if got := a.CurrentLimit(); got != 10 {
		t.Errorf("CurrentLimit() = %v, must not exceed max", got)
	}
}

func TestSuccessHoldsAfterRecentOverload(t *testing.T) {
	a := NewAdaptive(8, 1, 20, 1, 0.5)
	a.RateLimited()
	limit := a.CurrentLimit()
	// the backoff window is still open, so success must not raise the rate
	a.Success()
	if got := a.CurrentLimit(); got != limit {
		t.Errorf("CurrentLimit() = %v, want unchanged %v within backoff window", got, limit)
	}
}

func TestAllowConsumesBurst(t *testing.T) {
	a := NewAdaptive(rate.Limit(1), 1, 20, 1, 0.5)
	if !a.Allow() {
		t.Fatal("first call must be allowed from the initial burst")
	}
	if a.Allow() {
		t.Error("second immediate call must be rejected at 1/s with burst 1")
	}
}
