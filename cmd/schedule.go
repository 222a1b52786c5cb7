package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/auto-time-tracker/internal/schedule"
)

// scheduleTimeout bounds a single scheduled run, device login included.
const scheduleTimeout = 5 * time.Minute

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Submit on the configured cron schedule until interrupted",
	Args:  cobra.NoArgs,
	RunE:  runSchedule,
}

func runSchedule(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	if err := schedule.Validate(cfg.Schedule); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	notifier := newNotifier()
	job := func(ctx context.Context) error {
		// Reload so edits to the config apply on the next tick.
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}
		runner, err := newRunner(ctx, cfg, log)
		if err != nil {
			return err
		}
		res, err := runner.Run(ctx, time.Now())
		journal(log, res, err)
		kind, msg := outcome(err)
		notifier.Notify(kind, msg)
		return err
	}

	s, err := schedule.New(cfg.Schedule, time.Local, scheduleTimeout, log, job)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s.Start()
	log.Info().Str("schedule", cfg.Schedule).Time("next", s.Next()).Msg("scheduler started")
	ui.Info("Submitting on %q, next run %s. Press Ctrl+C to stop.", cfg.Schedule, s.Next().Format("2006-01-02 15:04"))

	<-ctx.Done()
	ui.Info("Stopping scheduler...")
	s.Stop()
	return nil
}
