package generator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/adsp-prep/backend/internal/models"
)

// fakeClock records requested sleeps instead of waiting them out.
type fakeClock struct {
	slept []time.Duration
}

func (c *fakeClock) sleep(ctx context.Context, d time.Duration) error {
	c.slept = append(c.slept, d)
	return nil
}

func newTestRetrier(jitter float64) (*Retrier, *fakeClock) {
	clock := &fakeClock{}
	r := NewRetrier(DefaultRetryPolicy())
	r.sleep = clock.sleep
	r.rng = func() float64 { return jitter }
	return r, clock
}

func overloadedErr() error {
	return &GenerationError{Kind: FailureOverloaded, Err: errors.New("503 overloaded")}
}

func TestRetrierSucceedsAfterTransientOverload(t *testing.T) {
	// jitter 0.5 means the scale factor is exactly 1.0
	r, clock := newTestRetrier(0.5)

	attempts := 0
	err := r.Do(context.Background(), func(ctx context.Context) error {
		attempts++
		if attempts < 4 {
			return overloadedErr()
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if attempts != 4 {
		t.Errorf("attempts = %d, want 4", attempts)
	}

	want := []time.Duration{2 * time.Second, 4 * time.Second, 8 * time.Second}
	if len(clock.slept) != len(want) {
		t.Fatalf("slept %v, want %v", clock.slept, want)
	}
	for i := range want {
		if clock.slept[i] != want[i] {
			t.Errorf("delay %d = %v, want %v", i, clock.slept[i], want[i])
		}
	}
}

func TestRetrierExhaustsBudget(t *testing.T) {
	r, clock := newTestRetrier(0.5)

	attempts := 0
	err := r.Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return overloadedErr()
	})

	if attempts != 5 {
		t.Errorf("attempts = %d, want 5", attempts)
	}
	var su *models.ServiceUnavailableError
	if !errors.As(err, &su) {
		t.Fatalf("error = %v, want ServiceUnavailableError", err)
	}
	// four backoffs between five attempts, last one capped at 16s
	want := []time.Duration{2 * time.Second, 4 * time.Second, 8 * time.Second, 16 * time.Second}
	if len(clock.slept) != len(want) {
		t.Fatalf("slept %v, want %v", clock.slept, want)
	}
	for i := range want {
		if clock.slept[i] != want[i] {
			t.Errorf("delay %d = %v, want %v", i, clock.slept[i], want[i])
		}
	}
}

func TestRetrierAuthFailureIsTerminal(t *testing.T) {
	r, clock := newTestRetrier(0.5)

	attempts := 0
	err := r.Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return &GenerationError{Kind: FailureAuth, Err: errors.New("401 unauthorized")}
	})

	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
	var ce *models.ConfigurationError
	if !errors.As(err, &ce) {
		t.Fatalf("error = %v, want ConfigurationError", err)
	}
	if len(clock.slept) != 0 {
		t.Errorf("slept %v, want no backoff", clock.slept)
	}
}

func TestRetrierOtherFailurePropagates(t *testing.T) {
	r, clock := newTestRetrier(0.5)

	boom := &GenerationError{Kind: FailureMalformed, Err: errors.New("bad payload")}
	attempts := 0
	err := r.Do(context.Background(), func(ctx context.Context) error {
		attempts++
		return boom
	})

	if attempts != 1 {
		t.Errorf("attempts = %d, want 1", attempts)
	}
	if !errors.Is(err, boom) {
		t.Errorf("error = %v, want the original error", err)
	}
	if len(clock.slept) != 0 {
		t.Errorf("slept %v, want no backoff", clock.slept)
	}
}

func TestRetryPolicyDelayBounds(t *testing.T) {
	p := DefaultRetryPolicy()

	for attempt := 1; attempt <= 6; attempt++ {
		base := float64(2*time.Second) * float64(int(1)<<uint(attempt-1))
		if base > float64(p.MaxDelay) {
			base = float64(p.MaxDelay)
		}
		lo := time.Duration(base * 0.8)
		if lo < p.MinDelay {
			lo = p.MinDelay
		}
		hi := time.Duration(base * 1.2)

		for _, jitter := range []float64{0.0, 0.25, 0.5, 0.75, 0.999} {
			got := p.Delay(attempt, jitter)
			if got < lo || got > hi {
				t.Errorf("Delay(%d, %v) = %v, want within [%v, %v]", attempt, jitter, got, lo, hi)
			}
		}
	}
}

func TestRetryPolicyDelayFloor(t *testing.T) {
	p := RetryPolicy{
		MaxAttempts: 5,
		BaseDelay:   100 * time.Millisecond,
		MaxDelay:    16 * time.Second,
		MinDelay:    500 * time.Millisecond,
		JitterFrac:  0.2,
	}
	if got := p.Delay(1, 0.0); got != p.MinDelay {
		t.Errorf("Delay = %v, want floored to %v", got, p.MinDelay)
	}
}

func TestRetrierCancelledDuringBackoff(t *testing.T) {
	r := NewRetrier(DefaultRetryPolicy())
	r.rng = func() float64 { return 0.5 }
	r.sleep = func(ctx context.Context, d time.Duration) error {
		return context.Canceled
	}

	err := r.Do(context.Background(), func(ctx context.Context) error {
		return overloadedErr()
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}
