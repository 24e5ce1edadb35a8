package responder

import (
	"sync"
	"time"
)

// Breaker defaults.
const (
	DefaultFailureThreshold = 3
	DefaultCooldown         = 60 * time.Second
)

// Breaker counts consecutive failures of the generative service and
// short-circuits calls for a cooldown window once the threshold is reached.
// One Breaker is shared by all sessions of a process; every access goes
// through its mutex so concurrent sessions cannot lose updates.
type Breaker struct {
	threshold int
	cooldown  time.Duration
	now       func() time.Time

	mu                  sync.Mutex
	consecutiveFailures int
	disabledUntil       time.Time
}

// BreakerOption configures a Breaker.
type BreakerOption func(*Breaker)

// WithThreshold sets the consecutive-failure count that opens the breaker.
func WithThreshold(n int) BreakerOption {
	return func(b *Breaker) { b.threshold = n }
}

// WithCooldown sets how long the breaker stays open.
func WithCooldown(d time.Duration) BreakerOption {
	return func(b *Breaker) { b.cooldown = d }
}

// WithBreakerClock injects a clock, for tests.
func WithBreakerClock(now func() time.Time) BreakerOption {
	return func(b *Breaker) { b.now = now }
}

// NewBreaker creates a closed breaker.
func NewBreaker(opts ...BreakerOption) *Breaker {
	b := &Breaker{
		threshold: DefaultFailureThreshold,
		cooldown:  DefaultCooldown,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Allow reports whether a call may go out. When the cooldown has elapsed the
// breaker closes again and the next call is attempted normally; no separate
// half-open probing beyond that transition.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.disabledUntil.IsZero() {
		return true
	}
	if b.now().Before(b.disabledUntil) {
		return false
	}
	b.disabledUntil = time.Time{}
	b.consecutiveFailures = 0
	return true
}

// Success resets the consecutive-failure counter.
func (b *Breaker) Success() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.consecutiveFailures = 0
}

// Failure records a connectivity failure and reports whether the threshold
// has been reached. Reaching the threshold does not open the breaker by
// itself: the caller probes the service's health first and calls Open only
// if the probe fails too.
func (b *Breaker) Failure() (reachedThreshold bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.consecutiveFailures++
	return b.consecutiveFailures >= b.threshold
}

// Open starts the cooldown window.
func (b *Breaker) Open() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.disabledUntil = b.now().Add(b.cooldown)
	b.consecutiveFailures = 0
}

// IsOpen reports whether calls are currently short-circuited. It is a pure
// read: the close-on-cooldown-expiry transition happens only in Allow.
func (b *Breaker) IsOpen() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return !b.disabledUntil.IsZero() && b.now().Before(b.disabledUntil)
}
