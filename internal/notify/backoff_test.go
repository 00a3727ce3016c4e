package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBackoffDelay_DoublesUntilCap(t *testing.T) {
	b := Backoff{
		Base:   1 * time.Second,
		Max:    30 * time.Second,
		Jitter: 0,
	}

	assert.Equal(t, 1*time.Second, b.Delay(0))
	assert.Equal(t, 2*time.Second, b.Delay(1))
	assert.Equal(t, 4*time.Second, b.Delay(2))
	assert.Equal(t, 8*time.Second, b.Delay(3))
	assert.Equal(t, 16*time.Second, b.Delay(4))
	assert.Equal(t, 30*time.Second, b.Delay(5))
	assert.Equal(t, 30*time.Second, b.Delay(6))
	assert.Equal(t, 30*time.Second, b.Delay(100))
}

func TestBackoffDelay_NonDecreasing(t *testing.T) {
	b := Backoff{
		Base:   250 * time.Millisecond,
		Max:    10 * time.Second,
		Jitter: 0,
	}

	prev := time.Duration(0)
	for attempt := 0; attempt < 20; attempt++ {
		delay := b.Delay(attempt)
		assert.GreaterOrEqual(t, delay, prev, "delay decreased at attempt %d", attempt)
		assert.LessOrEqual(t, delay, b.Max)
		prev = delay
	}
}

func TestBackoffDelay_JitterBounded(t *testing.T) {
	b := Backoff{
		Base:   1 * time.Second,
		Max:    30 * time.Second,
		Jitter: 500 * time.Millisecond,
		Rand:   func() float64 { return 0.5 },
	}

	// Exponential component plus exactly half the jitter ceiling.
	assert.Equal(t, 1*time.Second+250*time.Millisecond, b.Delay(0))
	assert.Equal(t, 30*time.Second+250*time.Millisecond, b.Delay(10))
}

func TestBackoffDelay_NegativeAttemptClamped(t *testing.T) {
	b := Backoff{Base: 1 * time.Second, Max: 30 * time.Second}
	assert.Equal(t, b.Delay(0), b.Delay(-5))
}

func TestDefaultBackoff(t *testing.T) {
	b := DefaultBackoff()
	assert.Equal(t, DefaultBackoffBase, b.Base)
	assert.Equal(t, DefaultBackoffMax, b.Max)
	assert.Equal(t, DefaultBackoffJitter, b.Jitter)
}
