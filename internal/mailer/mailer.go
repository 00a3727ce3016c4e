// Package mailer provides the outbound SMTP transport for notification
// emails.
package mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"
	"golang.org/x/sync/semaphore"
)

// Transport defaults. The connection bound keeps a hung or slow mail server
// from accumulating unbounded SMTP connections; the timeouts keep a hung
// network call from blocking the pool indefinitely.
const (
	DefaultMaxConnections = 5
	DefaultDialTimeout    = 10 * time.Second
	DefaultSocketTimeout  = 30 * time.Second
)

// Config holds the SMTP transport configuration.
type Config struct {
	Host           string
	Port           int
	Username       string
	Password       string
	From           string
	FromName       string
	MaxConnections int64
	DialTimeout    time.Duration
	SocketTimeout  time.Duration
}

// Client sends HTML email over SMTP with a bounded number of concurrent
// connections. It implements notify.Sender.
type Client struct {
	client *mail.Client
	from   string
	sem    *semaphore.Weighted
	dialTO time.Duration
}

// New creates an SMTP client from the given configuration.
func New(cfg Config) (*Client, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("mailer: SMTP host is required")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("mailer: from address is required")
	}
	if cfg.MaxConnections <= 0 {
		cfg.MaxConnections = DefaultMaxConnections
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = DefaultDialTimeout
	}
	if cfg.SocketTimeout <= 0 {
		cfg.SocketTimeout = DefaultSocketTimeout
	}

	opts := []mail.Option{
		mail.WithTimeout(cfg.SocketTimeout),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if cfg.Port > 0 {
		opts = append(opts, mail.WithPort(cfg.Port))
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("mailer: failed to create SMTP client: %w", err)
	}

	from := cfg.From
	if cfg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", cfg.FromName, cfg.From)
	}

	return &Client{
		client: client,
		from:   from,
		sem:    semaphore.NewWeighted(cfg.MaxConnections),
		dialTO: cfg.DialTimeout,
	}, nil
}

// Send transmits one HTML email and returns the generated message ID.
func (c *Client) Send(ctx context.Context, to, subject, htmlBody string) (string, error) {
	// Acquiring the semaphore respects the connection bound; Acquire honors
	// context cancellation while waiting for a slot.
	acquireCtx, cancel := context.WithTimeout(ctx, c.dialTO)
	defer cancel()
	if err := c.sem.Acquire(acquireCtx, 1); err != nil {
		return "", fmt.Errorf("mailer: no SMTP connection available: %w", err)
	}
	defer c.sem.Release(1)

	msg := mail.NewMsg()
	if err := msg.From(c.from); err != nil {
		return "", fmt.Errorf("mailer: invalid from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return "", fmt.Errorf("mailer: invalid recipient address %q: %w", to, err)
	}
	msg.Subject(subject)
	msg.SetMessageID()
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)

	if err := c.client.DialAndSendWithContext(ctx, msg); err != nil {
		return "", fmt.Errorf("mailer: send to %s failed: %w", to, err)
	}

	return msg.GetMessageID(), nil
}
