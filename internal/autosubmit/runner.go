// Package autosubmit builds the daily time tracker entry from assigned
// tickets and calendar meetings, submits it and verifies it was recorded.
package autosubmit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/Tiliavir/auto-time-tracker/internal/config"
	"github.com/Tiliavir/auto-time-tracker/internal/model"
	"github.com/Tiliavir/auto-time-tracker/internal/timecalc"
	"github.com/Tiliavir/auto-time-tracker/internal/timetracker"
)

var (
	// ErrNotWorkingDay is returned when day is not in working_days.
	ErrNotWorkingDay = errors.New("not a working day")
	// ErrAlreadySubmitted is returned when an entry with the same assignment
	// already exists for the day.
	ErrAlreadySubmitted = errors.New("there is already an entry with the same assignment for this day")
	// ErrNotVerified is returned when the submitted entry is missing from the listing.
	ErrNotVerified = errors.New("the entry does not seem to have been created properly")
)

// TimeTracker is the subset of *timetracker.Client the runner needs.
type TimeTracker interface {
	SubmitEntry(ctx context.Context, req timetracker.EntryRequest) error
	ListEntries(ctx context.Context, start, end time.Time) ([]timetracker.TimeEntry, error)
}

// TicketSource returns the tickets the user is working on.
type TicketSource interface {
	SearchAssigned(ctx context.Context) ([]model.Ticket, error)
}

// EventSource returns the calendar events of a day.
type EventSource interface {
	ListEvents(ctx context.Context, day time.Time) ([]model.CalendarEvent, error)
}

// Runner performs one submission. Tickets and Events may be nil.
type Runner struct {
	Config  config.Config
	Tracker TimeTracker
	Tickets TicketSource
	Events  EventSource
	Log     zerolog.Logger

	// DryRun stops before submitting.
	DryRun bool
	// Force skips the duplicate entry check.
	Force bool
}

// Result describes what a run did or would do.
type Result struct {
	RunID     string
	Day       time.Time
	Entry     timetracker.EntryRequest
	Tickets   []model.Ticket
	Meetings  []model.CalendarEvent
	Submitted bool
}

// Run submits the entry for day.
func (r *Runner) Run(ctx context.Context, day time.Time) (Result, error) {
	res := Result{RunID: ulid.Make().String(), Day: timecalc.StartOfDay(day)}
	log := r.Log.With().Str("run_id", res.RunID).Str("day", day.Format(timecalc.DateLayout)).Logger()

	weekday := timecalc.WeekdayKey(day)
	if !r.Config.IsWorkingDay(weekday) {
		log.Info().Str("weekday", weekday).Msg("not a working day")
		return res, ErrNotWorkingDay
	}

	if r.Tickets != nil {
		tickets, err := r.Tickets.SearchAssigned(ctx)
		if err != nil {
			return res, fmt.Errorf("searching tickets: %w", err)
		}
		res.Tickets = tickets
	}
	if r.Events != nil && r.Config.IncludeMeetings {
		events, err := r.Events.ListEvents(ctx, day)
		if err != nil {
			return res, fmt.Errorf("listing meetings: %w", err)
		}
		res.Meetings = model.Confirmed(events)
	}

	tt := r.Config.TimeTracker
	res.Entry = timetracker.EntryRequest{
		Day:         res.Day,
		Hours:       r.Config.HoursFor(weekday),
		Description: Describe(res.Tickets, res.Meetings, r.Config.TasksAppend[weekday]),
		Project:     tt.Project,
		Assignment:  tt.Assignment,
		FocalPoint:  tt.FocalPoint,
	}
	log.Debug().
		Int("tickets", len(res.Tickets)).
		Int("meetings", len(res.Meetings)).
		Float64("hours", res.Entry.Hours).
		Msg("entry planned")

	if !r.Force {
		entries, err := r.Tracker.ListEntries(ctx, res.Day, res.Day)
		if err != nil {
			return res, fmt.Errorf("listing entries: %w", err)
		}
		if findEntry(entries, res.Day, tt.Assignment, nil) {
			log.Warn().Str("assignment", tt.Assignment).Msg("entry already submitted")
			return res, ErrAlreadySubmitted
		}
	}

	if r.DryRun {
		log.Info().Msg("dry run, not submitting")
		return res, nil
	}

	if err := r.Tracker.SubmitEntry(ctx, res.Entry); err != nil {
		return res, fmt.Errorf("submitting entry: %w", err)
	}
	res.Submitted = true

	entries, err := r.Tracker.ListEntries(ctx, res.Day, res.Day)
	if err != nil {
		return res, fmt.Errorf("verifying entry: %w", err)
	}
	hours := res.Entry.Hours
	if !findEntry(entries, res.Day, tt.Assignment, &hours) {
		log.Error().Msg("submitted entry not found in listing")
		return res, ErrNotVerified
	}

	log.Info().Float64("hours", hours).Msg("entry submitted")
	return res, nil
}

// findEntry reports whether entries has one on day with the given
// assignment and, when hours is non-nil, the given hours.
func findEntry(entries []timetracker.TimeEntry, day time.Time, assignment string, hours *float64) bool {
	for _, e := range entries {
		if !e.OnDay(day) || e.Assignment != assignment {
			continue
		}
		if hours == nil || e.Hours == *hours {
			return true
		}
	}
	return false
}

// Describe renders the entry description, one line per ticket and meeting,
// followed by extra.
func Describe(tickets []model.Ticket, meetings []model.CalendarEvent, extra string) string {
	var lines []string
	for _, t := range tickets {
		lines = append(lines, fmt.Sprintf("-[%s]: %s", t.ID, t.Summary))
	}
	for _, m := range meetings {
		lines = append(lines, fmt.Sprintf("-[meeting]: %s (%s)", m.Summary, timecalc.HumanDuration(m.Duration())))
	}
	if extra = strings.TrimSpace(extra); extra != "" {
		lines = append(lines, extra)
	}
	return strings.Join(lines, "\n")
}
