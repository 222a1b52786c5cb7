package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Tiliavir/auto-time-tracker/internal/autosubmit"
	"github.com/Tiliavir/auto-time-tracker/internal/config"
	"github.com/Tiliavir/auto-time-tracker/internal/jira"
	"github.com/Tiliavir/auto-time-tracker/internal/logger"
	"github.com/Tiliavir/auto-time-tracker/internal/msgraph"
	"github.com/Tiliavir/auto-time-tracker/internal/output"
	"github.com/Tiliavir/auto-time-tracker/internal/timetracker"
)

var (
	ui = output.New()

	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "att",
	Short: "att – automatic daily time tracker entries",
	Long: `att fills in the daily entry of the legacy time tracker from your
assigned Jira tickets and, optionally, your accepted Outlook meetings.
Configuration lives in ~/.att/config.yaml.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default ~/.att/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")

	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(ticketsCmd)
	rootCmd.AddCommand(meetingsCmd)
	rootCmd.AddCommand(scheduleCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(configCmd)
}

func configPath() (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	return config.DefaultPath()
}

// loadConfig reads the configuration and builds the logger for it.
func loadConfig() (config.Config, zerolog.Logger, error) {
	path, err := configPath()
	if err != nil {
		return config.Config{}, zerolog.Nop(), err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, zerolog.Nop(), err
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	return cfg, logger.New(cfg.Log, ui.ErrOut), nil
}

func newTracker(cfg config.Config) (*timetracker.Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return timetracker.NewClient(timetracker.Options{
		BaseURL:  cfg.TimeTracker.BaseURL,
		User:     cfg.TimeTracker.User,
		Password: cfg.TimeTracker.Password,
		Timeout:  cfg.TimeTracker.Timeout,
	})
}

func newJira(cfg config.Config, log zerolog.Logger) (*jira.Client, error) {
	if err := cfg.ValidateJira(); err != nil {
		return nil, err
	}
	return jira.NewClient(cfg.Jira, cfg.TimeTracker.Timeout, log), nil
}

func newCalendar(ctx context.Context, cfg config.Config, log zerolog.Logger) (*msgraph.Client, error) {
	tokenPath, err := msgraph.DefaultTokenPath()
	if err != nil {
		return nil, err
	}
	ts, err := msgraph.Authenticate(ctx, msgraph.AuthOptions{
		TenantID:  cfg.Outlook.TenantID,
		ClientID:  cfg.Outlook.ClientID,
		TokenPath: tokenPath,
		Prompt:    ui.ErrOut,
		Log:       log,
	})
	if err != nil {
		return nil, fmt.Errorf("outlook authentication: %w", err)
	}
	return msgraph.NewClient(ctx, ts, cfg.Outlook.Timezone, log), nil
}

// newRunner wires a runner with a fresh time tracker session. Jira is
// optional: without jira.base_url the description holds no tickets.
func newRunner(ctx context.Context, cfg config.Config, log zerolog.Logger) (*autosubmit.Runner, error) {
	tracker, err := newTracker(cfg)
	if err != nil {
		return nil, err
	}
	r := &autosubmit.Runner{Config: cfg, Tracker: tracker, Log: log}

	if cfg.Jira.BaseURL != "" {
		tickets, err := newJira(cfg, log)
		if err != nil {
			return nil, err
		}
		r.Tickets = tickets
	} else {
		log.Warn().Msg("jira.base_url not set, submitting without tickets")
	}

	if cfg.Outlook.Enabled && cfg.IncludeMeetings {
		events, err := newCalendar(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		r.Events = events
	}
	return r, nil
}
