// Package notify implements the notification delivery pipeline: templated
// email rendering, a retrying delivery channel, and in-app notifications.
package notify

import (
	"math/rand"
	"time"
)

// Backoff computes capped exponential retry delays with random jitter.
// The delay for attempt n is min(Base * 2^n, Max) plus up to Jitter of
// noise, which smooths transient SMTP failures without amplifying load on
// the downstream mail server or synchronizing retry storms.
type Backoff struct {
	Base   time.Duration // delay before the first retry
	Max    time.Duration // cap on the exponential component
	Jitter time.Duration // ceiling for the random additive jitter

	// Rand returns a value in [0, 1). Defaults to math/rand; injectable so
	// tests can pin jitter to zero.
	Rand func() float64
}

// Default backoff parameters.
const (
	DefaultBackoffBase   = 1000 * time.Millisecond
	DefaultBackoffMax    = 30000 * time.Millisecond
	DefaultBackoffJitter = 500 * time.Millisecond
)

// DefaultBackoff returns the standard delivery backoff configuration.
func DefaultBackoff() Backoff {
	return Backoff{
		Base:   DefaultBackoffBase,
		Max:    DefaultBackoffMax,
		Jitter: DefaultBackoffJitter,
	}
}

// Delay returns the wait before retrying after attempt n (0-based).
func (b Backoff) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}

	delay := b.Base
	for i := 0; i < attempt; i++ {
		delay *= 2
		if delay >= b.Max {
			delay = b.Max
			break
		}
	}
	if delay > b.Max {
		delay = b.Max
	}

	if b.Jitter > 0 {
		random := b.Rand
		if random == nil {
			random = rand.Float64
		}
		delay += time.Duration(random() * float64(b.Jitter))
	}

	return delay
}
