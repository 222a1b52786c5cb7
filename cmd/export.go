package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/Tiliavir/auto-time-tracker/internal/timecalc"
	"github.com/Tiliavir/auto-time-tracker/internal/timetracker"
)

// Output formats shared by list and report.
const (
	formatTable = "table"
	formatCSV   = "csv"
	formatJSON  = "json"
)

func checkFormat(f string) error {
	switch f {
	case formatTable, formatCSV, formatJSON:
		return nil
	}
	return fmt.Errorf("unknown format %q (want table, csv or json)", f)
}

func formatHours(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64)
}

func entryDate(e timetracker.TimeEntry) string {
	if e.Date == nil {
		return ""
	}
	return e.Date.Format(timecalc.DateLayout)
}

func writeEntries(w io.Writer, format string, entries []timetracker.TimeEntry) error {
	switch format {
	case formatJSON:
		return writeJSON(w, entries)
	case formatCSV:
		writeCSV(w, entries)
		return nil
	default:
		printList(entries)
		return nil
	}
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("error encoding JSON: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}

func writeCSV(w io.Writer, entries []timetracker.TimeEntry) {
	fmt.Fprintln(w, "date,hours,project,assignment,description")
	for _, e := range entries {
		fmt.Fprintf(w, "%s,%s,%s,%s,%s\n",
			csvEscape(entryDate(e)),
			formatHours(e.Hours),
			csvEscape(e.Project),
			csvEscape(e.Assignment),
			csvEscape(e.Description),
		)
	}
}

// csvEscape wraps a field in quotes if it contains a comma, quote, or newline.
func csvEscape(s string) string {
	needsQuote := false
	for _, c := range s {
		if c == ',' || c == '"' || c == '\n' || c == '\r' {
			needsQuote = true
			break
		}
	}
	if !needsQuote {
		return s
	}
	// Escape internal double quotes by doubling them.
	escaped := ""
	for _, c := range s {
		if c == '"' {
			escaped += "\""
		}
		escaped += string(c)
	}
	return `"` + escaped + `"`
}
