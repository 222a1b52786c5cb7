// Package notify reports the outcome of a submission run to the user.
package notify

import "github.com/Tiliavir/auto-time-tracker/internal/output"

// ApplicationName prefixes every notification title.
const ApplicationName = "TimeTracker"

// Kind is the severity of a notification.
type Kind int

const (
	Success Kind = iota
	Warning
	Error
)

func (k Kind) String() string {
	switch k {
	case Warning:
		return "Warning"
	case Error:
		return "Error"
	default:
		return "Success"
	}
}

// Title returns "TimeTracker" for successes and "TimeTracker - <Kind>" otherwise.
func Title(k Kind) string {
	if k == Success {
		return ApplicationName
	}
	return ApplicationName + " - " + k.String()
}

// Notifier delivers a message to the user.
type Notifier interface {
	Notify(kind Kind, message string)
}

// Terminal prints notifications through the output UI.
type Terminal struct {
	UI *output.UI
}

func (t Terminal) Notify(kind Kind, message string) {
	switch kind {
	case Warning:
		t.UI.Warning("%s: %s", Title(kind), message)
	case Error:
		t.UI.Error("%s: %s", Title(kind), message)
	default:
		t.UI.Success("%s: %s", Title(kind), message)
	}
}
