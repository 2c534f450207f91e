package generator

import (
	"context"
	"log"
	"math/rand"
	"time"

	"github.com/adsp-prep/backend/internal/models"
)

// RetryPolicy bounds the adapter's retry loop for overloaded upstreams.
type RetryPolicy struct {
	MaxAttempts int           // total attempts including the first
	BaseDelay   time.Duration // delay after the first failed attempt
	MaxDelay    time.Duration // cap before jitter is applied
	MinDelay    time.Duration // floor after jitter is applied
	JitterFrac  float64       // ± fraction of the computed delay
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 5,
		BaseDelay:   2 * time.Second,
		MaxDelay:    16 * time.Second,
		MinDelay:    500 * time.Millisecond,
		JitterFrac:  0.2,
	}
}

// Delay computes the backoff after `attempt` failed attempts (1-based): the
// base delay doubles each attempt, is capped at MaxDelay, then jittered by
// ±JitterFrac using jitter in [0, 1), and finally floored at MinDelay. Jitter
// spreads concurrent callers so they do not retry in lockstep.
func (p RetryPolicy) Delay(attempt int, jitter float64) time.Duration {
	d := p.BaseDelay
	for i := 1; i < attempt && d < p.MaxDelay; i++ {
		d *= 2
	}
	if d > p.MaxDelay {
		d = p.MaxDelay
	}

	scale := 1.0 + p.JitterFrac*(2.0*jitter-1.0)
	d = time.Duration(float64(d) * scale)

	if d < p.MinDelay {
		d = p.MinDelay
	}
	return d
}

// retryState makes the retry loop's control flow explicit so the policy can
// be exercised without real I/O or sleeping.
type retryState int

const (
	stateAttempting retryState = iota
	stateBackingOff
	stateSucceeded
	stateExhaustedRetryable
	stateFailedTerminal
)

// Retrier drives an operation through the retry state machine. The sleep and
// rng hooks exist so tests can observe delays instead of waiting them out.
type Retrier struct {
	policy RetryPolicy
	sleep  func(ctx context.Context, d time.Duration) error
	rng    func() float64
}

func NewRetrier(policy RetryPolicy) *Retrier {
	return &Retrier{
		policy: policy,
		sleep:  sleepCtx,
		rng:    rand.Float64,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Do runs op until it succeeds, exhausts the overloaded-retry budget, or
// fails terminally. Exhaustion surfaces as ServiceUnavailable; an auth
// failure surfaces as ConfigurationError; any other failure propagates
// unmodified.
func (r *Retrier) Do(ctx context.Context, op func(ctx context.Context) error) error {
	state := stateAttempting
	attempt := 0
	var lastErr error

	for {
		switch state {
		case stateAttempting:
			attempt++
			err := op(ctx)
			if err == nil {
				state = stateSucceeded
				break
			}
			lastErr = err
			if Kind(err) != FailureOverloaded {
				state = stateFailedTerminal
				break
			}
			if attempt >= r.policy.MaxAttempts {
				state = stateExhaustedRetryable
				break
			}
			state = stateBackingOff

		case stateBackingOff:
			delay := r.policy.Delay(attempt, r.rng())
			log.Printf("[generator] WARN: upstream overloaded (attempt %d/%d), retrying in %v", attempt, r.policy.MaxAttempts, delay)
			if err := r.sleep(ctx, delay); err != nil {
				return err
			}
			state = stateAttempting

		case stateSucceeded:
			return nil

		case stateExhaustedRetryable:
			log.Printf("[generator] upstream still overloaded after %d attempts, giving up", attempt)
			return &models.ServiceUnavailableError{Err: lastErr}

		case stateFailedTerminal:
			if Kind(lastErr) == FailureAuth {
				return &models.ConfigurationError{Reason: "generation credentials rejected", Err: lastErr}
			}
			return lastErr
		}
	}
}
