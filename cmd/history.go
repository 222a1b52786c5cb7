package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/auto-time-tracker/internal/storage"
	"github.com/Tiliavir/auto-time-tracker/internal/timecalc"
)

var historyMonth bool

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded submission runs",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().BoolVar(&historyMonth, "month", false, "Show runs since the end of last month instead of this week")
}

func runHistory(cmd *cobra.Command, args []string) error {
	from, to, err := entryRange(time.Now(), "", "", !historyMonth, historyMonth)
	if err != nil {
		return err
	}
	base, err := storage.BaseDir()
	if err != nil {
		return err
	}
	runs, err := storage.LoadRange(base, from, to)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(ui.Out, "No runs recorded.")
		return nil
	}

	table := ui.Table([]string{"Day", "At", "Hours", "Outcome", "Error", "Run"})
	for _, r := range runs {
		msg := ""
		if r.Error != nil {
			msg = *r.Error
		}
		_ = table.Append([]string{r.Day, r.At.Format("15:04"), formatHours(r.Hours), r.Outcome, msg, r.ID})
	}
	_ = table.Render()
	fmt.Fprintf(ui.Out, "\n%s – %s\n", from.Format(timecalc.DateLayout), to.Format(timecalc.DateLayout))
	return nil
}
