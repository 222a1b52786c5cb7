package cmd

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/auto-time-tracker/internal/timecalc"
	"github.com/Tiliavir/auto-time-tracker/internal/timetracker"
)

var (
	reportMonth  bool
	reportFormat string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show hours per project and assignment",
	Args:  cobra.NoArgs,
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().BoolVar(&reportMonth, "month", false, "Report since the end of last month instead of this week")
	reportCmd.Flags().StringVar(&reportFormat, "format", formatTable, "Output format: table, csv, json")
}

// reportLine is the total for one project/assignment pair.
type reportLine struct {
	Project    string  `json:"project"`
	Assignment string  `json:"assignment"`
	Hours      float64 `json:"hours"`
}

type report struct {
	From  string       `json:"from"`
	To    string       `json:"to"`
	Lines []reportLine `json:"lines"`
	Total float64      `json:"total_hours"`
}

// aggregate sums hours by project and assignment, sorted by name.
func aggregate(from, to time.Time, entries []timetracker.TimeEntry) report {
	type key struct{ project, assignment string }
	totals := map[key]float64{}
	var order []key
	var total float64
	for _, e := range entries {
		k := key{e.Project, e.Assignment}
		if _, seen := totals[k]; !seen {
			order = append(order, k)
		}
		totals[k] += e.Hours
		total += e.Hours
	}
	sort.Slice(order, func(i, j int) bool {
		if order[i].project != order[j].project {
			return order[i].project < order[j].project
		}
		return order[i].assignment < order[j].assignment
	})

	r := report{
		From:  from.Format(timecalc.DateLayout),
		To:    to.Format(timecalc.DateLayout),
		Lines: []reportLine{},
		Total: total,
	}
	for _, k := range order {
		r.Lines = append(r.Lines, reportLine{Project: k.project, Assignment: k.assignment, Hours: totals[k]})
	}
	return r
}

func runReport(cmd *cobra.Command, args []string) error {
	if err := checkFormat(reportFormat); err != nil {
		return err
	}
	from, to, err := entryRange(time.Now(), "", "", !reportMonth, reportMonth)
	if err != nil {
		return err
	}

	entries, err := fetchEntries(cmd, from, to)
	if err != nil {
		return err
	}
	return writeReport(ui.Out, reportFormat, aggregate(from, to, entries))
}

func writeReport(w io.Writer, format string, r report) error {
	switch format {
	case formatJSON:
		return writeJSON(w, r)
	case formatCSV:
		fmt.Fprintln(w, "project,assignment,hours")
		for _, l := range r.Lines {
			fmt.Fprintf(w, "%s,%s,%s\n", csvEscape(l.Project), csvEscape(l.Assignment), formatHours(l.Hours))
		}
	default:
		fmt.Fprintf(w, "%s – %s\n", r.From, r.To)
		fmt.Fprintln(w, "--------------------------------------------")
		for _, l := range r.Lines {
			fmt.Fprintf(w, "%-20s%-20s%s\n", l.Project, l.Assignment, formatHours(l.Hours))
		}
		fmt.Fprintln(w, "--------------------------------------------")
		fmt.Fprintf(w, "%-40s%s\n", "Total", formatHours(r.Total))
	}
	return nil
}
