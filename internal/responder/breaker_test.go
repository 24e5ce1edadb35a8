package responder_test

import (
	"testing"
	"time"

	"github.com/plumedoc/plume/internal/responder"
	"github.com/stretchr/testify/assert"
)

func TestBreaker_ThresholdAndCooldown(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }
	b := responder.NewBreaker(
		responder.WithThreshold(3),
		responder.WithCooldown(time.Minute),
		responder.WithBreakerClock(clock),
	)

	// 1. Closed by default.
	assert.True(t, b.Allow())
	assert.False(t, b.IsOpen())

	// 2. Failures below the threshold do not report it reached.
	assert.False(t, b.Failure())
	assert.False(t, b.Failure())
	assert.True(t, b.Failure())

	// 3. Reaching the threshold alone does not open; calls still pass.
	assert.True(t, b.Allow())

	// 4. Open starts the cooldown window.
	b.Open()
	assert.False(t, b.Allow())
	assert.True(t, b.IsOpen())

	// 5. Still open just before expiry, closed once it elapses.
	now = now.Add(59 * time.Second)
	assert.False(t, b.Allow())
	now = now.Add(2 * time.Second)
	assert.True(t, b.Allow())
	assert.False(t, b.IsOpen())
}

func TestBreaker_SuccessResetsCounter(t *testing.T) {
	b := responder.NewBreaker(responder.WithThreshold(3))

	assert.False(t, b.Failure())
	assert.False(t, b.Failure())
	b.Success()

	// The streak restarts: two more failures still sit below the threshold.
	assert.False(t, b.Failure())
	assert.False(t, b.Failure())
	assert.True(t, b.Failure())
}

func TestBreaker_ReclosingResetsCounter(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }
	b := responder.NewBreaker(
		responder.WithThreshold(2),
		responder.WithCooldown(time.Second),
		responder.WithBreakerClock(clock),
	)

	b.Failure()
	b.Failure()
	b.Open()
	now = now.Add(2 * time.Second)
	assert.True(t, b.Allow())

	// After reclosing, one failure is not enough to reach the threshold.
	assert.False(t, b.Failure())
}

func TestBreaker_IsOpenDoesNotClose(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }
	b := responder.NewBreaker(
		responder.WithThreshold(1),
		responder.WithCooldown(time.Minute),
		responder.WithBreakerClock(clock),
	)
	b.Open()

	// Reading past the expiry must not discard the cooldown window.
	now = now.Add(61 * time.Second)
	assert.False(t, b.IsOpen())
	now = now.Add(-31 * time.Second)
	assert.True(t, b.IsOpen())

	// Allow performs the actual close.
	now = now.Add(31 * time.Second)
	assert.True(t, b.Allow())
	now = now.Add(-31 * time.Second)
	assert.False(t, b.IsOpen())
}
