package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/auto-time-tracker/internal/model"
	"github.com/Tiliavir/auto-time-tracker/internal/timecalc"
)

var (
	meetingsDate string
	meetingsAll  bool
)

var meetingsCmd = &cobra.Command{
	Use:   "meetings",
	Short: "List accepted Outlook meetings for a day",
	Args:  cobra.NoArgs,
	RunE:  runMeetings,
}

func init() {
	meetingsCmd.Flags().StringVar(&meetingsDate, "date", "", "Day (YYYY-MM-DD); defaults to today")
	meetingsCmd.Flags().BoolVar(&meetingsAll, "all", false, "Include meetings you have not accepted")
}

func runMeetings(cmd *cobra.Command, args []string) error {
	day := time.Now()
	if meetingsDate != "" {
		d, err := timecalc.ParseDate(meetingsDate)
		if err != nil {
			return err
		}
		day = d
	}

	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	if !cfg.Outlook.Enabled {
		return errors.New("outlook is disabled; set outlook.enabled: true in the config")
	}

	client, err := newCalendar(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	events, err := client.ListEvents(cmd.Context(), day)
	if err != nil {
		return err
	}
	if !meetingsAll {
		events = model.Confirmed(events)
	}
	if len(events) == 0 {
		fmt.Fprintln(ui.Out, "No meetings found.")
		return nil
	}

	var total time.Duration
	table := ui.Table([]string{"Start", "End", "Duration", "Status", "Summary"})
	for _, e := range events {
		if e.Confirmed() {
			total += e.Duration()
		}
		_ = table.Append([]string{
			e.Start.Format("15:04"),
			e.End.Format("15:04"),
			timecalc.HumanDuration(e.Duration()),
			e.Status,
			e.Summary,
		})
	}
	_ = table.Render()
	fmt.Fprintf(ui.Out, "\nAccepted: %s\n", timecalc.HumanDuration(total))
	return nil
}
