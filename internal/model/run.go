package model

import "time"

// Run outcomes recorded in the journal.
const (
	OutcomeSubmitted = "submitted"
	OutcomeDryRun    = "dry-run"
	OutcomeSkipped   = "skipped"
	OutcomeDuplicate = "duplicate"
	OutcomeFailed    = "failed"
)

// Run is one journal record of a submission attempt.
type Run struct {
	ID         string    `json:"id"`
	Day        string    `json:"day"`
	At         time.Time `json:"at"`
	Hours      float64   `json:"hours"`
	Assignment string    `json:"assignment"`
	Outcome    string    `json:"outcome"`
	Error      *string   `json:"error,omitempty"`
}

// DayFile is the on-disk journal of one calendar day.
type DayFile struct {
	Date string `json:"date"`
	Runs []Run  `json:"runs"`
}
