package cmd

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/auto-time-tracker/internal/timetracker"
)

func TestCsvEscape(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"plain", "plain"},
		{"with space", "with space"},
		{"with,comma", `"with,comma"`},
		{`with"quote`, `"with""quote"`},
		{"with\nnewline", "\"with\nnewline\""},
		{"with\rreturn", "\"with\rreturn\""},
		{"", ""},
	}
	for _, tt := range tests {
		got := csvEscape(tt.input)
		if got != tt.want {
			t.Errorf("csvEscape(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func sampleEntries() []timetracker.TimeEntry {
	day := time.Date(2026, 2, 25, 0, 0, 0, 0, time.Local)
	return []timetracker.TimeEntry{
		{Date: &day, Hours: 8, Project: "AdRoll - AdRoll", Assignment: "Software Development", Description: "-[AR-1]: Fix login\n-[AR-2]: Add export"},
		{Hours: 0.5, Project: "Internal", Assignment: "Meetings", Description: "Retro, planning"},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	writeCSV(&buf, sampleEntries())

	want := "date,hours,project,assignment,description\n" +
		"2026-02-25,8,AdRoll - AdRoll,Software Development,\"-[AR-1]: Fix login\n-[AR-2]: Add export\"\n" +
		",0.5,Internal,Meetings,\"Retro, planning\"\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteEntries_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeEntries(&buf, formatJSON, sampleEntries()))
	assert.Contains(t, buf.String(), `"hours": 0.5`)
	assert.Contains(t, buf.String(), `"date": null`)
}

func TestCheckFormat(t *testing.T) {
	for _, f := range []string{formatTable, formatCSV, formatJSON} {
		assert.NoError(t, checkFormat(f))
	}
	assert.Error(t, checkFormat("md"))
}
