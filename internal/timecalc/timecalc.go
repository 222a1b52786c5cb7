package timecalc

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the layout accepted on the command line.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD date in the local time zone.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", s, err)
	}
	return t, nil
}

// WeekdayKey returns the three-letter lowercase weekday name ("mon", "tue", ...)
// used as key in the configuration.
func WeekdayKey(t time.Time) string {
	return strings.ToLower(t.Weekday().String()[:3])
}

// HumanDuration formats d as "45 minutes", "1 hour" or "1.5 hours".
// Whole numbers are printed without decimals.
func HumanDuration(d time.Duration) string {
	minutes := d.Minutes()
	if minutes < 60 {
		return plural(minutes, "minute")
	}
	return plural(minutes/60, "hour")
}

func plural(n float64, unit string) string {
	s := strconv.FormatFloat(n, 'f', -1, 64)
	if n != 1 {
		unit += "s"
	}
	return s + " " + unit
}

// MonthToDate returns the last day of the previous month and t, the
// default range for listing submitted entries.
func MonthToDate(t time.Time) (time.Time, time.Time) {
	day := StartOfDay(t)
	return day.AddDate(0, 0, -day.Day()), day
}

// WeekRange returns the Monday and Sunday of the ISO week containing t.
func WeekRange(t time.Time) (time.Time, time.Time) {
	// Go's weekday: Sunday=0, Monday=1, …, Saturday=6
	wd := int(t.Weekday())
	if wd == 0 {
		wd = 7 // treat Sunday as 7 (ISO)
	}
	monday := StartOfDay(t.AddDate(0, 0, -(wd - 1)))
	sunday := EndOfDay(monday.AddDate(0, 0, 6))
	return monday, sunday
}

// StartOfDay returns 00:00:00 of the same day.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay returns 23:59:59 of the same day.
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}

// SameDay reports whether two times fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
