package resilience

import (
	"context"
	"time"
)

// RetryPolicy describes a bounded retry loop with exponential backoff.
// The wait after the n-th failed attempt is BaseDelay*2^n, multiplied by
// RateLimitMultiplier when IsRateLimit classifies the error as a quota or
// rate-limit rejection.
type RetryPolicy struct {
	MaxAttempts         int
	BaseDelay           time.Duration
	RateLimitMultiplier int
	IsRateLimit         func(error) bool
}

// DefaultRetryPolicy matches the generative-service budget:
// 1 initial attempt + 3 retries with 1s/2s/4s waits, tripled on rate limits.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:         4,
		BaseDelay:           1 * time.Second,
		RateLimitMultiplier: 3,
	}
}

func (p RetryPolicy) normalized() RetryPolicy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 4
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = 1 * time.Second
	}
	if p.RateLimitMultiplier <= 0 {
		p.RateLimitMultiplier = 3
	}
	return p
}

// Do runs fn until it succeeds or the attempt budget is exhausted, waiting
// between attempts. The wait is context-aware; a cancelled context stops
// the loop immediately and returns ctx.Err().
func (p RetryPolicy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	p = p.normalized()

	var lastErr error
	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}

		if attempt == p.MaxAttempts-1 {
			break
		}

		wait := p.BaseDelay << uint(attempt)
		if p.IsRateLimit != nil && p.IsRateLimit(lastErr) {
			wait *= time.Duration(p.RateLimitMultiplier)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}

	return lastErr
}
