package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Tiliavir/auto-time-tracker/internal/autosubmit"
	"github.com/Tiliavir/auto-time-tracker/internal/model"
	"github.com/Tiliavir/auto-time-tracker/internal/notify"
	"github.com/Tiliavir/auto-time-tracker/internal/output"
	"github.com/Tiliavir/auto-time-tracker/internal/storage"
	"github.com/Tiliavir/auto-time-tracker/internal/timecalc"
	"github.com/Tiliavir/auto-time-tracker/internal/timetracker"
)

var (
	submitDate   string
	submitDryRun bool
	submitForce  bool
)

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit the daily time tracker entry",
	Long: `Builds the entry description from your assigned tickets (and accepted
meetings when include_meetings is set), submits it and verifies that it
shows up in the listing.`,
	Args: cobra.NoArgs,
	RunE: runSubmit,
}

func init() {
	submitCmd.Flags().StringVar(&submitDate, "date", "", "Day to submit (YYYY-MM-DD); defaults to today")
	submitCmd.Flags().BoolVarP(&submitDryRun, "dry-run", "n", false, "Print the planned entry without submitting")
	submitCmd.Flags().BoolVar(&submitForce, "force", false, "Submit even if an entry with the same assignment exists")
}

func runSubmit(cmd *cobra.Command, args []string) error {
	day := time.Now()
	if submitDate != "" {
		d, err := timecalc.ParseDate(submitDate)
		if err != nil {
			return err
		}
		day = d
	}

	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	runner, err := newRunner(ctx, cfg, log)
	if err != nil {
		return err
	}
	runner.DryRun = submitDryRun
	runner.Force = submitForce

	res, err := runner.Run(ctx, day)
	journal(log, res, err)
	if submitDryRun && err == nil {
		printPlanned(res)
		return nil
	}
	kind, msg := outcome(err)
	newNotifier().Notify(kind, msg)
	return err
}

func newNotifier() notify.Notifier {
	return notify.Terminal{UI: ui}
}

// outcome maps a run result to the notification shown to the user.
func outcome(err error) (notify.Kind, string) {
	var sel *timetracker.SelectionUnavailableError
	var auth *timetracker.AuthenticationError
	switch {
	case err == nil:
		return notify.Success, "Your hard work has been logged ;)"
	case errors.Is(err, autosubmit.ErrNotWorkingDay):
		return notify.Warning, "Today is not a working day, bye bye"
	case errors.Is(err, autosubmit.ErrAlreadySubmitted):
		return notify.Warning, "There is already an entry with the same assignment for this day"
	case errors.Is(err, autosubmit.ErrNotVerified):
		return notify.Error, "The entry does not seem to have been created properly"
	case errors.As(err, &auth):
		return notify.Error, "Login failed, check time_tracker.user and time_tracker.password"
	case errors.As(err, &sel):
		return notify.Error, fmt.Sprintf("The %s %q is not available, check your configuration", sel.Field, sel.Label)
	default:
		return notify.Error, err.Error()
	}
}

func printPlanned(res autosubmit.Result) {
	e := res.Entry
	fmt.Fprintf(ui.Out, "%s %s\n", output.Bold("Day:"), e.Day.Format(timecalc.DateLayout))
	fmt.Fprintf(ui.Out, "%s %s\n", output.Bold("Hours:"), formatHours(e.Hours))
	fmt.Fprintf(ui.Out, "%s %s / %s / %s\n", output.Bold("Target:"), e.Project, e.Assignment, e.FocalPoint)
	fmt.Fprintln(ui.Out, output.Bold("Description:"))
	fmt.Fprintln(ui.Out, e.Description)
	ui.Info("Dry run, nothing submitted (run %s)", res.RunID)
}

// runRecord converts a run result into a journal record.
func runRecord(res autosubmit.Result, err error, now time.Time) model.Run {
	run := model.Run{
		ID:         res.RunID,
		Day:        res.Day.Format(timecalc.DateLayout),
		At:         now,
		Hours:      res.Entry.Hours,
		Assignment: res.Entry.Assignment,
	}
	switch {
	case err == nil && res.Submitted:
		run.Outcome = model.OutcomeSubmitted
	case err == nil:
		run.Outcome = model.OutcomeDryRun
	case errors.Is(err, autosubmit.ErrNotWorkingDay):
		run.Outcome = model.OutcomeSkipped
	case errors.Is(err, autosubmit.ErrAlreadySubmitted):
		run.Outcome = model.OutcomeDuplicate
	default:
		run.Outcome = model.OutcomeFailed
		msg := err.Error()
		run.Error = &msg
	}
	return run
}

// journal records the run; a failing journal only logs.
func journal(log zerolog.Logger, res autosubmit.Result, err error) {
	base, berr := storage.BaseDir()
	if berr == nil {
		berr = storage.Record(base, res.Day, runRecord(res, err, time.Now()))
	}
	if berr != nil {
		log.Warn().Err(berr).Msg("could not record run")
	}
}
