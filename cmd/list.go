package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/auto-time-tracker/internal/timecalc"
	"github.com/Tiliavir/auto-time-tracker/internal/timetracker"
)

var (
	listFrom   string
	listTo     string
	listWeek   bool
	listMonth  bool
	listFormat string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List submitted time tracker entries",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	listCmd.Flags().StringVar(&listFrom, "from", "", "Start date (YYYY-MM-DD)")
	listCmd.Flags().StringVar(&listTo, "to", "", "End date (YYYY-MM-DD); defaults to today")
	listCmd.Flags().BoolVar(&listWeek, "week", false, "Show this week's entries")
	listCmd.Flags().BoolVar(&listMonth, "month", false, "Show entries since the end of last month")
	listCmd.Flags().StringVar(&listFormat, "format", formatTable, "Output format: table, csv, json")
}

// entryRange resolves the --from/--to/--week/--month flags. The bare
// command covers today.
func entryRange(now time.Time, from, to string, week, month bool) (time.Time, time.Time, error) {
	switch {
	case from != "" || to != "":
		if from == "" {
			return time.Time{}, time.Time{}, fmt.Errorf("--from is required when --to is specified")
		}
		start, err := timecalc.ParseDate(from)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		end := timecalc.StartOfDay(now)
		if to != "" {
			if end, err = timecalc.ParseDate(to); err != nil {
				return time.Time{}, time.Time{}, err
			}
		}
		if end.Before(start) {
			return time.Time{}, time.Time{}, fmt.Errorf("--to %s is before --from %s", to, from)
		}
		return start, end, nil
	case week:
		monday, sunday := timecalc.WeekRange(now)
		return monday, timecalc.StartOfDay(sunday), nil
	case month:
		start, end := timecalc.MonthToDate(now)
		return start, end, nil
	default:
		day := timecalc.StartOfDay(now)
		return day, day, nil
	}
}

func runList(cmd *cobra.Command, args []string) error {
	if err := checkFormat(listFormat); err != nil {
		return err
	}
	from, to, err := entryRange(time.Now(), listFrom, listTo, listWeek, listMonth)
	if err != nil {
		return err
	}

	entries, err := fetchEntries(cmd, from, to)
	if err != nil {
		return err
	}
	return writeEntries(ui.Out, listFormat, entries)
}

func fetchEntries(cmd *cobra.Command, from, to time.Time) ([]timetracker.TimeEntry, error) {
	cfg, log, err := loadConfig()
	if err != nil {
		return nil, err
	}
	tracker, err := newTracker(cfg)
	if err != nil {
		return nil, err
	}
	log.Debug().
		Str("from", from.Format(timecalc.DateLayout)).
		Str("to", to.Format(timecalc.DateLayout)).
		Msg("listing entries")
	return tracker.ListEntries(cmd.Context(), from, to)
}

// printList groups entries by date and prints them.
func printList(entries []timetracker.TimeEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(ui.Out, "No entries found.")
		return
	}

	table := ui.Table([]string{"Date", "Hours", "Project", "Assignment", "Description"})
	for _, e := range entries {
		date := entryDate(e)
		if date == "" {
			date = "?"
		}
		desc := strings.ReplaceAll(e.Description, "\n", " ")
		_ = table.Append([]string{date, formatHours(e.Hours), e.Project, e.Assignment, desc})
	}
	_ = table.Render()
}
