package model

import "time"

// Calendar event statuses, normalised across calendar providers.
const (
	StatusConfirmed   = "confirmed"
	StatusTentative   = "tentative"
	StatusDeclined    = "declined"
	StatusNeedsAction = "needsAction"
	StatusCancelled   = "cancelled"
)

// CalendarEvent is a meeting on the user's calendar.
type CalendarEvent struct {
	ID      string    `json:"id"`
	Status  string    `json:"status"`
	Summary string    `json:"summary"`
	Start   time.Time `json:"start"`
	End     time.Time `json:"end"`
}

// Duration returns End - Start.
func (e CalendarEvent) Duration() time.Duration {
	return e.End.Sub(e.Start)
}

// Confirmed reports whether the user accepted the event.
func (e CalendarEvent) Confirmed() bool {
	return e.Status == StatusConfirmed
}

// Confirmed returns the accepted events, in order.
func Confirmed(events []CalendarEvent) []CalendarEvent {
	var out []CalendarEvent
	for _, e := range events {
		if e.Confirmed() {
			out = append(out, e)
		}
	}
	return out
}
