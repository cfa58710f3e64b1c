package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter paces page loads
type Limiter interface {
	// Allow takes a token if one is available
	Allow() bool
	// Wait blocks until a token is available or ctx is done
	Wait(ctx context.Context) error
	// Reset refills the limiter to capacity
	Reset()
}

// TokenBucket is a token bucket that refills continuously at a fixed rate
type TokenBucket struct {
	capacity float64
	tokens   float64
	interval time.Duration // time to earn one token
	last     time.Time
	now      func() time.Time
	mu       sync.Mutex
}

// NewTokenBucket creates a bucket holding at most capacity tokens that earns
// one token every interval. It starts full.
func NewTokenBucket(capacity int, interval time.Duration) *TokenBucket {
	if capacity < 1 {
		capacity = 1
	}
	return &TokenBucket{
		capacity: float64(capacity),
		tokens:   float64(capacity),
		interval: interval,
		last:     time.Now(),
		now:      time.Now,
	}
}

// PerMinute returns a limiter allowing n page loads per minute with no
// bursts. n <= 0 disables pacing.
func PerMinute(n int) Limiter {
	if n <= 0 {
		return Unlimited{}
	}
	return NewTokenBucket(1, time.Minute/time.Duration(n))
}

// Allow takes a token if one is available
func (tb *TokenBucket) Allow() bool {
	_, ok := tb.take()
	return ok
}

// Wait blocks until a token is available
func (tb *TokenBucket) Wait(ctx context.Context) error {
	for {
		delay, ok := tb.take()
		if ok {
			return nil
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// Reset refills the bucket to capacity
func (tb *TokenBucket) Reset() {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.tokens = tb.capacity
	tb.last = tb.now()
}

// take consumes a token, or reports how long until one is earned
func (tb *TokenBucket) take() (time.Duration, bool) {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill()
	if tb.tokens >= 1 {
		tb.tokens--
		return 0, true
	}

	missing := 1 - tb.tokens
	delay := time.Duration(missing * float64(tb.interval))
	if delay < time.Millisecond {
		delay = time.Millisecond
	}
	return delay, false
}

func (tb *TokenBucket) refill() {
	if tb.interval <= 0 {
		tb.tokens = tb.capacity
		return
	}

	now := tb.now()
	elapsed := now.Sub(tb.last)
	tb.last = now
	if elapsed <= 0 {
		return
	}

	tb.tokens += float64(elapsed) / float64(tb.interval)
	if tb.tokens > tb.capacity {
		tb.tokens = tb.capacity
	}
}

// Unlimited never blocks
type Unlimited struct{}

func (Unlimited) Allow() bool { return true }

func (Unlimited) Wait(ctx context.Context) error { return ctx.Err() }

func (Unlimited) Reset() {}
