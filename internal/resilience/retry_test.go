package resilience_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/noctalia/sleepsense/internal/resilience"
)

func TestRetryPolicy_SucceedsFirstAttempt(t *testing.T) {
	policy := resilience.RetryPolicy{MaxAttempts: 4, BaseDelay: time.Millisecond}

	calls := 0
	err := policy.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryPolicy_RecoversAfterFailures(t *testing.T) {
	policy := resilience.RetryPolicy{MaxAttempts: 4, BaseDelay: time.Millisecond}

	calls := 0
	err := policy.Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls < 4 {
			return errors.New("transient")
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 4, calls)
}

func TestRetryPolicy_ExhaustsBudget(t *testing.T) {
	policy := resilience.RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond}

	failure := errors.New("permanent")
	calls := 0
	err := policy.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return failure
	})

	assert.ErrorIs(t, err, failure)
	assert.Equal(t, 3, calls)
}

func TestRetryPolicy_ContextCancellation(t *testing.T) {
	policy := resilience.RetryPolicy{MaxAttempts: 10, BaseDelay: time.Hour}

	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	done := make(chan error, 1)
	go func() {
		done <- policy.Do(ctx, func(ctx context.Context) error {
			calls++
			return errors.New("fail")
		})
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, calls)
	case <-time.After(time.Second):
		t.Fatal("retry loop did not observe cancellation")
	}
}

func TestRetryPolicy_RateLimitStretchesBackoff(t *testing.T) {
	rateLimited := errors.New("rate limited")
	policy := resilience.RetryPolicy{
		MaxAttempts:         2,
		BaseDelay:           20 * time.Millisecond,
		RateLimitMultiplier: 3,
		IsRateLimit:         func(err error) bool { return errors.Is(err, rateLimited) },
	}

	start := time.Now()
	err := policy.Do(context.Background(), func(ctx context.Context) error {
		return rateLimited
	})
	elapsed := time.Since(start)

	assert.ErrorIs(t, err, rateLimited)
	// One wait of 20ms * 3 between the two attempts
	assert.GreaterOrEqual(t, elapsed, 60*time.Millisecond)
}

func TestDefaultRetryPolicy(t *testing.T) {
	policy := resilience.DefaultRetryPolicy()

	assert.Equal(t, 4, policy.MaxAttempts)
	assert.Equal(t, time.Second, policy.BaseDelay)
	assert.Equal(t, 3, policy.RateLimitMultiplier)
}
