// Package retry implements the exponential-backoff-with-jitter policy
// shared by the Forecast Service adapter and the LLM Adapter (spec §4.5,
// §4.6: "base 500 ms, factor 2, max 3 attempts, jitter 20%").
package retry

import (
	"context"
	"math/rand"
	"time"
)

// Policy configures an exponential backoff schedule.
type Policy struct {
	BaseDelay  time.Duration
	Factor     float64
	MaxAttempts int
	JitterPct  float64
}

// DefaultPolicy matches spec §4.5's default weather-adapter backoff.
func DefaultPolicy() Policy {
	return Policy{BaseDelay: 500 * time.Millisecond, Factor: 2, MaxAttempts: 3, JitterPct: 0.2}
}

// Classifier tells Do whether an error is retryable and, for non-retryable
// errors, lets the caller short-circuit immediately (spec: "On 4xx: fail
// immediately").
type Classifier func(err error) (retryable bool)

// Do runs fn up to p.MaxAttempts times, sleeping an exponentially growing,
// jittered delay between attempts. It stops early if classify returns
// false for the latest error, or if ctx is cancelled.
func Do(ctx context.Context, p Policy, classify Classifier, fn func(ctx context.Context, attempt int) error) error {
	var lastErr error
	delay := p.BaseDelay
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		lastErr = fn(ctx, attempt)
		if lastErr == nil {
			return nil
		}
		if classify != nil && !classify(lastErr) {
			return lastErr
		}
		if attempt == p.MaxAttempts {
			break
		}
		sleepWithJitter(ctx, delay, p.JitterPct)
		delay = time.Duration(float64(delay) * p.Factor)
	}
	return lastErr
}

func sleepWithJitter(ctx context.Context, d time.Duration, jitterPct float64) {
	jitter := time.Duration(float64(d) * jitterPct * (rand.Float64()*2 - 1))
	wait := d + jitter
	if wait < 0 {
		wait = 0
	}
	t := time.NewTimer(wait)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
