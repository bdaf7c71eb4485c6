// Package resilience guards outbound calls (chat models, data providers)
// with exponential-backoff retry inside a per-dependency circuit breaker.
// Stage bodies use it around their own calls; the orchestrator never does.
package resilience

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrCircuitOpen reports that a dependency's breaker is rejecting calls.
var ErrCircuitOpen = errors.New("circuit open")

// Policy configures retry behavior for one call site.
type Policy struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	Multiplier float64
}

// DefaultPolicy matches the data-provider defaults: three retries on a
// doubling backoff capped at thirty seconds.
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries: 3,
		BaseDelay:  1 * time.Second,
		MaxDelay:   30 * time.Second,
		Multiplier: 2.0,
	}
}

func (p Policy) delay(attempt int) time.Duration {
	d := time.Duration(float64(p.BaseDelay) * math.Pow(p.Multiplier, float64(attempt-1)))
	if d > p.MaxDelay {
		d = p.MaxDelay
	}
	return d
}

type breakerState uint8

const (
	stateClosed breakerState = iota
	stateOpen
	stateHalfOpen
)

// breaker is a classic three-state circuit breaker over consecutive
// failures. Open rejects until the cooldown passes, then a single half-open
// probe decides between closing and re-opening.
type breaker struct {
	mu        sync.Mutex
	state     breakerState
	failures  int
	threshold int
	cooldown  time.Duration
	openedAt  time.Time
}

func (b *breaker) allow(now time.Time) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch b.state {
	case stateOpen:
		if now.Sub(b.openedAt) < b.cooldown {
			return ErrCircuitOpen
		}
		b.state = stateHalfOpen
		return nil
	default:
		return nil
	}
}

func (b *breaker) succeed() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = stateClosed
	b.failures = 0
}

func (b *breaker) fail(now time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == stateHalfOpen {
		b.state = stateOpen
		b.openedAt = now
		return
	}
	b.failures++
	if b.failures >= b.threshold {
		b.state = stateOpen
		b.openedAt = now
	}
}

// Runner executes guarded calls. Breakers are keyed by dependency name so a
// dead news feed cannot open the breaker for the quote API.
type Runner struct {
	log *zap.Logger

	mu       sync.Mutex
	breakers map[string]*breaker

	threshold int
	cooldown  time.Duration

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewRunner builds a Runner with a five-failure threshold and a thirty
// second cooldown per dependency.
func NewRunner(log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{
		log:       log,
		breakers:  make(map[string]*breaker),
		threshold: 5,
		cooldown:  30 * time.Second,
		now:       time.Now,
		sleep:     sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (r *Runner) breakerFor(name string) *breaker {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.breakers[name]
	if !ok {
		b = &breaker{threshold: r.threshold, cooldown: r.cooldown}
		r.breakers[name] = b
	}
	return b
}

// Do runs fn under the named breaker, retrying per the policy until fn
// succeeds, retries run out, the breaker opens, or ctx ends.
func (r *Runner) Do(ctx context.Context, name string, policy Policy, fn func(context.Context) error) error {
	br := r.breakerFor(name)

	var lastErr error
	for attempt := 0; attempt <= policy.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := r.sleep(ctx, policy.delay(attempt)); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
		}
		if err := br.allow(r.now()); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}

		err := fn(ctx)
		if err == nil {
			br.succeed()
			return nil
		}
		lastErr = err
		br.fail(r.now())
		r.log.Warn("guarded call failed",
			zap.String("dependency", name),
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
	}
	return fmt.Errorf("%s: max retries exceeded: %w", name, lastErr)
}
