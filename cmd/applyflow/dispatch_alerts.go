package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/applyflow/internal/alerts"
	"github.com/jonathan/applyflow/internal/config"
	"github.com/jonathan/applyflow/internal/db"
	"github.com/jonathan/applyflow/internal/logging"
	"github.com/jonathan/applyflow/internal/mailer"
	"github.com/jonathan/applyflow/internal/notify"
)

var (
	dispatchConfig  string
	dispatchVerbose bool
)

var dispatchAlertsCmd = &cobra.Command{
	Use:   "dispatch-alerts <job-id>",
	Short: "Send job-alert emails for one job posting",
	Long:  `Match all alert subscribers against a job posting and send alert emails in throttled batches. Normally triggered on job creation; this command re-runs the dispatch manually.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runDispatchAlerts,
}

func init() {
	dispatchAlertsCmd.Flags().StringVar(&dispatchConfig, "config", "", "Path to JSON config file")
	dispatchAlertsCmd.Flags().BoolVar(&dispatchVerbose, "verbose", false, "Enable debug logging")
	rootCmd.AddCommand(dispatchAlertsCmd)
}

func runDispatchAlerts(_ *cobra.Command, args []string) error {
	jobID, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid job id %q: %w", args[0], err)
	}

	cfg, err := loadConfig(dispatchConfig)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.SMTPHost == "" {
		return fmt.Errorf("SMTP_HOST is required to dispatch alerts")
	}

	log, err := logging.New(dispatchVerbose || cfg.Verbose)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx := context.Background()
	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	smtp, err := mailer.New(mailerConfig(cfg))
	if err != nil {
		return err
	}
	var opts []notify.ChannelOption
	if cfg.MaxRetries > 0 {
		opts = append(opts, notify.WithMaxRetries(cfg.MaxRetries))
	}
	channel := notify.NewChannel(smtp, log, opts...)

	job, err := database.GetJobPosting(ctx, jobID)
	if err != nil {
		return err
	}
	if job == nil {
		return fmt.Errorf("job not found: %s", jobID)
	}

	dispatcher := alerts.NewDispatcher(database, channel, alerts.Config{
		BatchSize:  cfg.AlertBatchSize,
		EmailEvery: time.Duration(cfg.AlertEmailDelayMS) * time.Millisecond,
		BatchDelay: time.Duration(cfg.AlertBatchDelayMS) * time.Millisecond,
	}, log)

	summary := dispatcher.Dispatch(ctx, *job)
	fmt.Printf("Dispatched alerts for %q: %d matched, %d sent, %d failed in %d batches\n",
		job.Title, summary.Total, summary.Sent, summary.Failed, summary.Batches)
	return nil
}

// mailerConfig builds the SMTP transport configuration.
func mailerConfig(cfg *config.Config) mailer.Config {
	return mailer.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.EmailFrom,
		FromName: cfg.EmailName,
	}
}
