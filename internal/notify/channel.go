package notify

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// DefaultMaxRetries is the number of retries after the initial attempt.
const DefaultMaxRetries = 3

// Sender transmits one rendered email. Implementations must be safe for
// concurrent use.
type Sender interface {
	Send(ctx context.Context, to, subject, htmlBody string) (messageID string, err error)
}

// Result reports the outcome of one delivery, after retries are exhausted.
// Attempts counts every transmission tried, including the successful one.
type Result struct {
	Success   bool
	MessageID string
	Error     string
	Attempts  int
}

// Channel delivers templated emails with retry and capped exponential
// backoff. Send never returns a Go error: every failure is folded into the
// Result so callers are free to fire and forget.
type Channel struct {
	sender     Sender
	maxRetries int
	backoff    Backoff
	sleep      func(ctx context.Context, d time.Duration)
	log        *zap.SugaredLogger
}

// ChannelOption customizes a Channel.
type ChannelOption func(*Channel)

// WithMaxRetries sets how many times a failed send is retried.
func WithMaxRetries(n int) ChannelOption {
	return func(c *Channel) {
		if n >= 0 {
			c.maxRetries = n
		}
	}
}

// WithBackoff replaces the retry backoff configuration.
func WithBackoff(b Backoff) ChannelOption {
	return func(c *Channel) { c.backoff = b }
}

// WithSleep replaces the inter-attempt sleep, letting tests run without
// real delays.
func WithSleep(sleep func(ctx context.Context, d time.Duration)) ChannelOption {
	return func(c *Channel) {
		if sleep != nil {
			c.sleep = sleep
		}
	}
}

// NewChannel creates a delivery channel over the given sender.
func NewChannel(sender Sender, log *zap.SugaredLogger, opts ...ChannelOption) *Channel {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	c := &Channel{
		sender:     sender,
		maxRetries: DefaultMaxRetries,
		backoff:    DefaultBackoff(),
		sleep:      sleepContext,
		log:        log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Send attempts delivery up to maxRetries+1 times. It blocks for the
// duration of the attempts; callers that must not block dispatch it on a
// goroutine and consume the Result asynchronously.
func (c *Channel) Send(ctx context.Context, to, subject, htmlBody string) Result {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if ctx.Err() != nil {
			lastErr = ctx.Err()
			return Result{Success: false, Error: lastErr.Error(), Attempts: attempt}
		}

		messageID, err := c.sender.Send(ctx, to, subject, htmlBody)
		if err == nil {
			return Result{Success: true, MessageID: messageID, Attempts: attempt + 1}
		}
		lastErr = err

		if attempt < c.maxRetries {
			delay := c.backoff.Delay(attempt)
			c.log.Debugw("email send failed, retrying",
				"to", to,
				"attempt", attempt+1,
				"delay", delay,
				"error", err)
			c.sleep(ctx, delay)
		}
	}

	c.log.Warnw("email delivery failed after retries",
		"to", to,
		"subject", subject,
		"attempts", c.maxRetries+1,
		"error", lastErr)

	result := Result{Success: false, Attempts: c.maxRetries + 1}
	if lastErr != nil {
		result.Error = lastErr.Error()
	}
	return result
}

// sleepContext waits for d or until ctx is done, whichever comes first.
func sleepContext(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
