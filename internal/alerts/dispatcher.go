package alerts

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/jonathan/applyflow/internal/notify"
	"github.com/jonathan/applyflow/internal/types"
)

// Dispatcher defaults: batches of 20 recipients, 100ms between emails
// inside a batch, 3s between batches. A simple fixed-rate limiter rather
// than a token bucket; volumes are moderate and fairness across users is
// not required.
const (
	DefaultBatchSize  = 20
	DefaultEmailEvery = 100 * time.Millisecond
	DefaultBatchDelay = 3000 * time.Millisecond
)

// PreferenceSource lists the users eligible for job alerts.
type PreferenceSource interface {
	ListAlertSubscribers(ctx context.Context) ([]types.AlertPreference, error)
}

// EmailChannel delivers one rendered email, retrying internally.
type EmailChannel interface {
	Send(ctx context.Context, to, subject, htmlBody string) notify.Result
}

// Config tunes the dispatcher's batching and throttling.
type Config struct {
	BatchSize  int
	EmailEvery time.Duration
	BatchDelay time.Duration
}

// Summary reports the outcome of one dispatch run. Individual send failures
// are counted, never escalated.
type Summary struct {
	Total   int
	Sent    int
	Failed  int
	Batches int
}

// Dispatcher sends job-alert emails to matching subscribers in throttled
// batches. It is triggered once per job-creation event, fire-and-forget.
type Dispatcher struct {
	prefs   PreferenceSource
	email   EmailChannel
	cfg     Config
	limiter *rate.Limiter
	sleep   func(ctx context.Context, d time.Duration)
	log     *zap.SugaredLogger
}

// NewDispatcher creates a dispatcher. Zero config fields fall back to the
// package defaults.
func NewDispatcher(prefs PreferenceSource, email EmailChannel, cfg Config, log *zap.SugaredLogger) *Dispatcher {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.EmailEvery <= 0 {
		cfg.EmailEvery = DefaultEmailEvery
	}
	if cfg.BatchDelay <= 0 {
		cfg.BatchDelay = DefaultBatchDelay
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Dispatcher{
		prefs:   prefs,
		email:   email,
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Every(cfg.EmailEvery), 1),
		sleep:   sleepContext,
		log:     log,
	}
}

// Dispatch matches all alert subscribers against the job and sends one
// email per match, in batches, pacing sends inside a batch and pausing
// between batches. Per-recipient failures are counted but never stop the
// run. The returned summary is also logged.
func (d *Dispatcher) Dispatch(ctx context.Context, job types.JobPosting) Summary {
	subscribers, err := d.prefs.ListAlertSubscribers(ctx)
	if err != nil {
		d.log.Errorw("job alert dispatch aborted, could not load subscribers",
			"job_id", job.ID, "error", err)
		return Summary{}
	}

	var matched []types.AlertPreference
	for _, pref := range subscribers {
		if Matches(pref, job) {
			matched = append(matched, pref)
		}
	}

	summary := Summary{Total: len(matched)}
	if len(matched) == 0 {
		d.log.Infow("job alert dispatch complete, no matching subscribers",
			"job_id", job.ID, "subscribers", len(subscribers))
		return summary
	}

	extra := map[string]string{
		notify.FieldJobLocation: job.Location,
		notify.FieldSalaryRange: job.SalaryRange,
	}

	for start := 0; start < len(matched); start += d.cfg.BatchSize {
		end := start + d.cfg.BatchSize
		if end > len(matched) {
			end = len(matched)
		}
		if summary.Batches > 0 {
			d.sleep(ctx, d.cfg.BatchDelay)
		}
		summary.Batches++

		for _, pref := range matched[start:end] {
			if err := d.limiter.Wait(ctx); err != nil {
				// Context cancelled mid-run; count the remainder as failed
				// so sent+failed still accounts for every match.
				summary.Failed = summary.Total - summary.Sent
				d.logSummary(job, summary)
				return summary
			}

			subject, body, err := notify.Render(types.EventJobAlert, notify.TemplateData{
				RecipientName: pref.Name,
				JobTitle:      job.Title,
				CompanyName:   job.CompanyName,
				Extra:         extra,
			})
			if err != nil {
				summary.Failed++
				d.log.Errorw("failed to render job alert", "job_id", job.ID, "error", err)
				continue
			}

			result := d.email.Send(ctx, pref.Email, subject, body)
			if result.Success {
				summary.Sent++
			} else {
				summary.Failed++
				d.log.Debugw("job alert send failed",
					"job_id", job.ID, "to", pref.Email, "error", result.Error)
			}
		}
	}

	d.logSummary(job, summary)
	return summary
}

// DispatchAsync runs Dispatch on a detached goroutine; job creation does
// not wait for alert delivery.
func (d *Dispatcher) DispatchAsync(job types.JobPosting) {
	go d.Dispatch(context.Background(), job)
}

func (d *Dispatcher) logSummary(job types.JobPosting, summary Summary) {
	d.log.Infow("job alert dispatch complete",
		"job_id", job.ID,
		"total", summary.Total,
		"sent", summary.Sent,
		"failed", summary.Failed,
		"batches", summary.Batches)
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
