package booking

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

var timePattern = regexp.MustCompile(`^([0-1]?[0-9]|2[0-3]):([0-5][0-9])$`)

// Accepted date inputs besides plain YYYY-MM-DD. Timestamps are reduced to
// their UTC calendar day.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
}

// Window is a half-open interval [Start, End) on one calendar day for a
// court, optionally also claiming a coach.
type Window struct {
	CourtID string
	Date    string
	Start   string
	End     string
	CoachID string
}

// NormalizeDate reduces any accepted date or timestamp to YYYY-MM-DD.
func NormalizeDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t.Format(DateLayout), nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().Format(DateLayout), nil
		}
	}
	return "", ErrInvalidDate
}

// NormalizeTime accepts H:MM or HH:MM on a 24h clock and returns HH:MM.
func NormalizeTime(s string) (string, error) {
	m := timePattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return "", ErrInvalidTime
	}
	h, _ := strconv.Atoi(m[1])
	return fmt.Sprintf("%02d:%s", h, m[2]), nil
}

// ParseDate parses a normalized date at UTC midnight.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// Validate checks a normalized window. Windows cannot cross midnight, so
// start must sort strictly before end.
func (w Window) Validate() error {
	if w.Start >= w.End {
		return ErrInvalidTimeRange
	}
	return nil
}

// Overlaps reports whether the two intervals share time. Touching endpoints
// do not overlap. Both windows are assumed to be on the same day.
func (w Window) Overlaps(other Window) bool {
	return w.Start < other.End && other.Start < w.End
}

// Normalize returns a copy with canonical date and times.
func (w Window) Normalize() (Window, error) {
	var err error
	if w.Date, err = NormalizeDate(w.Date); err != nil {
		return w, err
	}
	if w.Start, err = NormalizeTime(w.Start); err != nil {
		return w, err
	}
	if w.End, err = NormalizeTime(w.End); err != nil {
		return w, err
	}
	w.CourtID = strings.TrimSpace(w.CourtID)
	w.CoachID = strings.TrimSpace(w.CoachID)
	return w, nil
}

// normalizeDay validates the court and date of an availability query.
func (w Window) normalizeDay() (Window, error) {
	w.CourtID = strings.TrimSpace(w.CourtID)
	if w.CourtID == "" || strings.TrimSpace(w.Date) == "" {
		return w, ErrMissingQuery
	}
	d, err := NormalizeDate(w.Date)
	if err != nil {
		return w, err
	}
	w.Date = d
	return w, nil
}
