package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestRunner returns a Runner whose clock is driven by the returned
// pointer and whose backoff sleeps are recorded instead of waited out.
func newTestRunner(t *testing.T) (*Runner, *time.Time, *[]time.Duration) {
	t.Helper()
	r := NewRunner(nil)
	cur := time.Date(2025, 6, 2, 9, 30, 0, 0, time.UTC)
	var slept []time.Duration
	r.now = func() time.Time { return cur }
	r.sleep = func(ctx context.Context, d time.Duration) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		slept = append(slept, d)
		return nil
	}
	return r, &cur, &slept
}

func TestDoSucceedsWithoutRetry(t *testing.T) {
	r, _, slept := newTestRunner(t)

	calls := 0
	err := r.Do(context.Background(), "quotes", DefaultPolicy(), func(ctx context.Context) error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, *slept)
}

func TestDoRetriesWithDoublingBackoff(t *testing.T) {
	r, _, slept := newTestRunner(t)

	calls := 0
	err := r.Do(context.Background(), "quotes", DefaultPolicy(), func(ctx context.Context) error {
		calls++
		if calls < 4 {
			return errors.New("upstream 503")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 4, calls)
	assert.Equal(t, []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}, *slept)
}

func TestDoExhaustsRetries(t *testing.T) {
	r, _, _ := newTestRunner(t)

	boom := errors.New("connection refused")
	err := r.Do(context.Background(), "news", DefaultPolicy(), func(ctx context.Context) error {
		return boom
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "max retries exceeded")
	assert.Contains(t, err.Error(), "news")
}

func TestDelayCapsAtMaxDelay(t *testing.T) {
	p := Policy{MaxRetries: 10, BaseDelay: 1 * time.Second, MaxDelay: 5 * time.Second, Multiplier: 2.0}

	assert.Equal(t, 1*time.Second, p.delay(1))
	assert.Equal(t, 4*time.Second, p.delay(3))
	assert.Equal(t, 5*time.Second, p.delay(4))
	assert.Equal(t, 5*time.Second, p.delay(9))
}

func TestDoStopsWhenContextCancelled(t *testing.T) {
	r, _, _ := newTestRunner(t)

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := r.Do(ctx, "quotes", DefaultPolicy(), func(ctx context.Context) error {
		calls++
		cancel()
		return errors.New("slow upstream")
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls, "no further attempts after cancellation")
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	r, _, _ := newTestRunner(t)

	policy := Policy{MaxRetries: 4, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 1.0}
	err := r.Do(context.Background(), "news", policy, func(ctx context.Context) error {
		return errors.New("down")
	})
	require.Error(t, err)

	// Five straight failures tripped the breaker. The next call must be
	// rejected before fn runs.
	calls := 0
	err = r.Do(context.Background(), "news", policy, func(ctx context.Context) error {
		calls++
		return nil
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Zero(t, calls)
}

func TestBreakerIsScopedByName(t *testing.T) {
	r, _, _ := newTestRunner(t)

	policy := Policy{MaxRetries: 4, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 1.0}
	_ = r.Do(context.Background(), "news", policy, func(ctx context.Context) error {
		return errors.New("down")
	})

	err := r.Do(context.Background(), "quotes", DefaultPolicy(), func(ctx context.Context) error {
		return nil
	})
	assert.NoError(t, err, "news outage must not open the quotes breaker")
}

func TestBreakerHalfOpenProbe(t *testing.T) {
	r, cur, _ := newTestRunner(t)

	policy := Policy{MaxRetries: 4, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 1.0}
	_ = r.Do(context.Background(), "news", policy, func(ctx context.Context) error {
		return errors.New("down")
	})

	// Probe before the cooldown has passed is still rejected.
	err := r.Do(context.Background(), "news", Policy{MaxRetries: 0}, func(ctx context.Context) error {
		return nil
	})
	assert.ErrorIs(t, err, ErrCircuitOpen)

	// After the cooldown a single probe is let through; success closes the
	// breaker again.
	*cur = cur.Add(31 * time.Second)
	calls := 0
	err = r.Do(context.Background(), "news", Policy{MaxRetries: 0}, func(ctx context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	err = r.Do(context.Background(), "news", Policy{MaxRetries: 0}, func(ctx context.Context) error {
		return nil
	})
	assert.NoError(t, err)
}

func TestBreakerReopensOnFailedProbe(t *testing.T) {
	r, cur, _ := newTestRunner(t)

	policy := Policy{MaxRetries: 4, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 1.0}
	_ = r.Do(context.Background(), "news", policy, func(ctx context.Context) error {
		return errors.New("down")
	})

	*cur = cur.Add(31 * time.Second)
	err := r.Do(context.Background(), "news", Policy{MaxRetries: 0}, func(ctx context.Context) error {
		return errors.New("still down")
	})
	require.Error(t, err)

	// The failed probe re-opened the breaker for a fresh cooldown.
	err = r.Do(context.Background(), "news", Policy{MaxRetries: 0}, func(ctx context.Context) error {
		return nil
	})
	assert.ErrorIs(t, err, ErrCircuitOpen)
}
