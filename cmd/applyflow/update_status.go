package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/applyflow/internal/application"
	"github.com/jonathan/applyflow/internal/db"
	"github.com/jonathan/applyflow/internal/logging"
	"github.com/jonathan/applyflow/internal/mailer"
	"github.com/jonathan/applyflow/internal/notify"
	"github.com/jonathan/applyflow/internal/types"
)

var (
	updateStatusConfig  string
	updateStatusVerbose bool
	updateStatusNotes   string
	updateStatusBy      string
	updateStatusNotify  bool
)

var updateStatusCmd = &cobra.Command{
	Use:   "update-status <application-id> <status>",
	Short: "Transition an application to a new status",
	Long: `Transition an application to a new status from the command line,
appending an entry to its status history. With --notify the applicant is
emailed and receives an in-app notification, exactly as for an API-driven
transition.

Known statuses: ` + strings.Join(statusNames(), ", "),
	Args: cobra.ExactArgs(2),
	RunE: runUpdateStatus,
}

func init() {
	updateStatusCmd.Flags().StringVar(&updateStatusConfig, "config", "", "Path to JSON config file")
	updateStatusCmd.Flags().BoolVar(&updateStatusVerbose, "verbose", false, "Enable debug logging")
	updateStatusCmd.Flags().StringVar(&updateStatusNotes, "notes", "", "Notes recorded on the history entry")
	updateStatusCmd.Flags().StringVar(&updateStatusBy, "by", "", "UUID of the acting user")
	updateStatusCmd.Flags().BoolVar(&updateStatusNotify, "notify", false, "Send the applicant a status notification")
	rootCmd.AddCommand(updateStatusCmd)
}

func statusNames() []string {
	names := make([]string, 0, len(types.KnownStatuses))
	for _, s := range types.KnownStatuses {
		names = append(names, string(s))
	}
	return names
}

func runUpdateStatus(_ *cobra.Command, args []string) error {
	applicationID, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid application id %q: %w", args[0], err)
	}
	status := types.Status(args[1])
	if !types.IsKnownStatus(status) {
		return fmt.Errorf("unknown status %q (known: %s)", args[1], strings.Join(statusNames(), ", "))
	}

	var changedBy *uuid.UUID
	if updateStatusBy != "" {
		id, err := uuid.Parse(updateStatusBy)
		if err != nil {
			return fmt.Errorf("invalid --by id %q: %w", updateStatusBy, err)
		}
		changedBy = &id
	}

	cfg, err := loadConfig(updateStatusConfig)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if updateStatusNotify && cfg.SMTPHost == "" {
		return fmt.Errorf("SMTP_HOST is required with --notify")
	}

	log, err := logging.New(updateStatusVerbose || cfg.Verbose)
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

	var emailChannel application.EmailChannel
	if cfg.SMTPHost != "" {
		smtp, err := mailer.New(mailerConfig(cfg))
		if err != nil {
			return err
		}
		var opts []notify.ChannelOption
		if cfg.MaxRetries > 0 {
			opts = append(opts, notify.WithMaxRetries(cfg.MaxRetries))
		}
		emailChannel = notify.NewChannel(smtp, log, opts...)
	}
	inApp := notify.NewInAppNotifier(database, log)

	apps := application.NewService(database, database, emailChannel, inApp, log)
	app, err := apps.Transition(ctx, applicationID, status, application.TransitionOptions{
		Notes:     updateStatusNotes,
		ChangedBy: changedBy,
		Notify:    updateStatusNotify,
	})
	if err != nil {
		return err
	}
	apps.Wait()

	fmt.Printf("Application %s is now %s (%d history entries)\n",
		app.ID, app.Status, len(app.StatusHistory))
	return nil
}
