package timetracker

import (
	"strconv"
	"strings"
	"time"
)

// DateFormat is the dd/mm/yyyy layout the application uses in forms and tables.
const DateFormat = "02/01/2006"

// tableDateLayout reads listing dates with or without zero padding
// ("05/02/2026" and "5/2/2026").
const tableDateLayout = "2/1/2006"

// TimeEntry is one row of the listing table.
type TimeEntry struct {
	// Date is nil when the row's date cell could not be parsed.
	Date        *time.Time `json:"date"`
	Hours       float64    `json:"hours"`
	Project     string     `json:"project"`
	Assignment  string     `json:"assignment"`
	Description string     `json:"description"`
}

// OnDay reports whether the entry has a date and it falls on day's calendar date.
func (e TimeEntry) OnDay(day time.Time) bool {
	if e.Date == nil {
		return false
	}
	ay, am, ad := e.Date.Date()
	by, bm, bd := day.Date()
	return ay == by && am == bm && ad == bd
}

// EntryRequest describes the entry SubmitEntry creates. Project, Assignment
// and FocalPoint are the labels shown in the form, not option values.
type EntryRequest struct {
	Day         time.Time
	Hours       float64
	Description string
	Project     string
	Assignment  string
	FocalPoint  string
}

const entryColumns = 5

// parseEntry decodes a table row positionally. Trailing columns are ignored.
func parseEntry(row int, cells []string) (TimeEntry, error) {
	if len(cells) < entryColumns {
		return TimeEntry{}, &ParseError{Row: row, Column: "row", Value: strings.Join(cells, " | ")}
	}

	hours, err := strconv.ParseFloat(strings.ReplaceAll(cells[1], ",", "."), 64)
	if err != nil {
		return TimeEntry{}, &ParseError{Row: row, Column: "hours", Value: cells[1], Err: err}
	}

	entry := TimeEntry{
		Hours:       hours,
		Project:     cells[2],
		Assignment:  cells[3],
		Description: cells[4],
	}
	if d, err := time.ParseInLocation(tableDateLayout, cells[0], time.Local); err == nil {
		entry.Date = &d
	}
	return entry, nil
}

// parseEntries drops the header row and the trailing totals row, then
// decodes what is left.
func parseEntries(rows [][]string) ([]TimeEntry, error) {
	if len(rows) < 3 {
		return []TimeEntry{}, nil
	}
	data := rows[1 : len(rows)-1]
	entries := make([]TimeEntry, 0, len(data))
	for i, cells := range data {
		e, err := parseEntry(i+1, cells)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func formatHours(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64)
}
