package msgraph

import (
	"fmt"
	"time"

	"github.com/Tiliavir/auto-time-tracker/internal/model"
)

// parseGraphTime parses a Graph API dateTime string in loc.
// Graph returns times like "2026-02-27T09:00:00.0000000" without a zone suffix
// when a Prefer: outlook.timezone header is set, and UTC otherwise.
func parseGraphTime(dt, zone string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, dt); err == nil {
		return t, nil
	}
	if zone == "UTC" {
		loc = time.UTC
	}

	// Graph returns fractional seconds: "2026-02-27T09:00:00.0000000"
	for _, layout := range []string{
		"2006-01-02T15:04:05.0000000",
		"2006-01-02T15:04:05",
	} {
		if t, err := time.ParseInLocation(layout, dt, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse graph time %q", dt)
}

// shouldSkip returns true if the event never counts as a meeting.
func shouldSkip(event graphEvent) bool {
	if event.IsAllDay {
		return true
	}
	if event.Sensitivity == "private" {
		return true
	}
	if event.ShowAs == "free" {
		return true
	}
	if event.Start.DateTime == "" || event.End.DateTime == "" {
		return true
	}
	return false
}

// eventStatus maps the user's response onto the model statuses.
func eventStatus(event graphEvent) string {
	if event.IsCancelled {
		return model.StatusCancelled
	}
	switch event.ResponseStatus.Response {
	case "organizer", "accepted":
		return model.StatusConfirmed
	case "tentativelyAccepted":
		return model.StatusTentative
	case "declined":
		return model.StatusDeclined
	default:
		return model.StatusNeedsAction
	}
}

// mapEvent converts a Graph event into a model.CalendarEvent.
func mapEvent(event graphEvent, loc *time.Location) (model.CalendarEvent, error) {
	start, err := parseGraphTime(event.Start.DateTime, event.Start.TimeZone, loc)
	if err != nil {
		return model.CalendarEvent{}, fmt.Errorf("parsing start time: %w", err)
	}
	end, err := parseGraphTime(event.End.DateTime, event.End.TimeZone, loc)
	if err != nil {
		return model.CalendarEvent{}, fmt.Errorf("parsing end time: %w", err)
	}
	if end.Before(start) {
		return model.CalendarEvent{}, fmt.Errorf("event ends before it starts")
	}

	return model.CalendarEvent{
		ID:      event.ID,
		Status:  eventStatus(event),
		Summary: event.Subject,
		Start:   start.In(loc),
		End:     end.In(loc),
	}, nil
}
