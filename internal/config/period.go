package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// DateLayout is the calendar-date format of activation window bounds.
const DateLayout = "2006-01-02"

// Window is the activation window: events observed outside it are classified
// and coalesced normally but never persisted. A nil *Window means no
// restriction.
type Window struct {
	Start time.Time
	End   time.Time // exclusive; one day past the configured end date
}

// Contains reports whether t falls inside the window. The configured end
// date is inclusive through its whole day.
func (w *Window) Contains(t time.Time) bool {
	if w == nil {
		return true
	}
	return !t.Before(w.Start) && t.Before(w.End)
}

// NewWindow builds a Window from calendar date strings. An unparseable date
// yields an error; callers fall back to no restriction and surface the
// message as a diagnostic.
func NewWindow(startDate, endDate string) (*Window, error) {
	start, err := time.ParseInLocation(DateLayout, startDate, time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid window start date %q: %w", startDate, err)
	}
	end, err := time.ParseInLocation(DateLayout, endDate, time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid window end date %q: %w", endDate, err)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("window end %q precedes start %q", endDate, startDate)
	}
	return &Window{Start: start, End: end.AddDate(0, 0, 1)}, nil
}

// Period is the on-disk training period file written by the setup wizard.
type Period struct {
	UserName    string `json:"user_name"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
	ServerURL   string `json:"server_url,omitempty"`
}

// PeriodPath returns the training period file location.
func PeriodPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "training_period.json"), nil
}

// LoadPeriod reads the training period file. A missing file returns
// (nil, nil): recording simply runs without a window.
func LoadPeriod() (*Period, error) {
	p, err := PeriodPath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading training period: %w", err)
	}
	var period Period
	if err := json.Unmarshal(data, &period); err != nil {
		return nil, &ParseError{Path: p, Err: err}
	}
	return &period, nil
}

// SavePeriod writes the training period file.
func SavePeriod(period *Period) error {
	p, err := PeriodPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	if period.CreatedAt == "" {
		period.CreatedAt = time.Now().Format("2006-01-02 15:04:05")
	}
	data, err := json.MarshalIndent(period, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(p, data, 0o644)
}

// Window converts the period's dates, or returns nil with the parse
// diagnostic when the dates are unusable.
func (p *Period) Window() (*Window, error) {
	if p == nil || (p.StartDate == "" && p.EndDate == "") {
		return nil, nil
	}
	return NewWindow(p.StartDate, p.EndDate)
}
