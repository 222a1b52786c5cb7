package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/auto-time-tracker/internal/output"
	"github.com/Tiliavir/auto-time-tracker/internal/storage"
	"github.com/Tiliavir/auto-time-tracker/internal/timecalc"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether today's entry has been submitted",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	now := time.Now()

	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	weekday := timecalc.WeekdayKey(now)
	if !cfg.IsWorkingDay(weekday) {
		fmt.Fprintln(ui.Out, "Today is not a working day.")
		printLastRun(now)
		return nil
	}

	day := timecalc.StartOfDay(now)
	entries, err := fetchEntries(cmd, day, day)
	if err != nil {
		return err
	}

	var logged float64
	submitted := false
	for _, e := range entries {
		if !e.OnDay(day) {
			continue
		}
		logged += e.Hours
		if e.Assignment == cfg.TimeTracker.Assignment {
			submitted = true
		}
	}

	if submitted {
		ui.Success("Today's entry is submitted.")
	} else {
		ui.Warning("No %s entry for today yet.", cfg.TimeTracker.Assignment)
	}
	fmt.Fprintf(ui.Out, "Today: %s of %s hours logged.\n", formatHours(logged), formatHours(cfg.HoursFor(weekday)))
	printLastRun(now)
	return nil
}

func printLastRun(now time.Time) {
	base, err := storage.BaseDir()
	if err != nil {
		return
	}
	last, err := storage.LastRun(base, now)
	if err != nil || last == nil {
		return
	}
	fmt.Fprintf(ui.Out, "Last run: %s for %s, %s\n", last.At.Format("2006-01-02 15:04"), last.Day, output.Cyan(last.Outcome))
	if last.Error != nil {
		fmt.Fprintf(ui.Out, "  %s\n", *last.Error)
	}
}
