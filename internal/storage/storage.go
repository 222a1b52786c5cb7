// Package storage keeps a journal of submission runs as one JSON file per
// day under ~/.att/runs. Nothing from the time tracker session is stored.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Tiliavir/auto-time-tracker/internal/model"
)

// BaseDir returns the journal directory (~/.att/runs).
func BaseDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".att", "runs"), nil
}

// dayFilePath returns the path for the given date's JSON file.
func dayFilePath(base string, t time.Time) string {
	return filepath.Join(base, t.Format("2006"), t.Format("01"), t.Format("02")+".json")
}

// LoadDay loads the DayFile for the given date. Returns an empty DayFile if not found.
func LoadDay(base string, t time.Time) (model.DayFile, error) {
	path := dayFilePath(base, t)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return model.DayFile{Date: t.Format("2006-01-02"), Runs: []model.Run{}}, nil
	}
	if err != nil {
		return model.DayFile{}, fmt.Errorf("storage error reading %s: %w", path, err)
	}

	var df model.DayFile
	if err := json.Unmarshal(data, &df); err != nil {
		// Back up corrupt file and abort.
		backupPath := path + ".corrupt"
		_ = os.Rename(path, backupPath)
		return model.DayFile{}, fmt.Errorf("corrupt JSON in %s (backed up to %s): %w", path, backupPath, err)
	}
	return df, nil
}

// SaveDay atomically writes a DayFile for the given date.
func SaveDay(base string, t time.Time, df model.DayFile) error {
	path := dayFilePath(base, t)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("storage error creating directories: %w", err)
	}

	data, err := json.MarshalIndent(df, "", "  ")
	if err != nil {
		return fmt.Errorf("storage error marshalling JSON: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("storage error writing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("storage error renaming temp file: %w", err)
	}
	return nil
}

// Record appends run to the journal of day, replacing a record with the same ID.
func Record(base string, day time.Time, run model.Run) error {
	df, err := LoadDay(base, day)
	if err != nil {
		return err
	}
	for i, r := range df.Runs {
		if r.ID == run.ID {
			df.Runs[i] = run
			return SaveDay(base, day, df)
		}
	}
	df.Runs = append(df.Runs, run)
	return SaveDay(base, day, df)
}

// LastRun returns the most recent run recorded within the week before now,
// or nil if there is none.
func LastRun(base string, now time.Time) (*model.Run, error) {
	for i := 0; i < 7; i++ {
		df, err := LoadDay(base, now.AddDate(0, 0, -i))
		if err != nil {
			return nil, err
		}
		if n := len(df.Runs); n > 0 {
			return &df.Runs[n-1], nil
		}
	}
	return nil, nil
}

// LoadRange loads all runs in [from, to] inclusive.
func LoadRange(base string, from, to time.Time) ([]model.Run, error) {
	runs := []model.Run{}
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		df, err := LoadDay(base, d)
		if err != nil {
			return nil, err
		}
		runs = append(runs, df.Runs...)
	}
	return runs, nil
}
