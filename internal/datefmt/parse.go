package datefmt

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tartampluch/anniversary-cards/internal/config"
)

// ParseDate interprets "YYYY-MM-DD" as midnight of that calendar day in loc.
// It never goes through a UTC instant, so the day cannot shift across time zones.
func ParseDate(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	parts := strings.Split(strings.TrimSpace(value), "-")
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("%s: %q", config.ErrDateParse, value)
	}

	year, yerr := strconv.Atoi(parts[0])
	month, merr := strconv.Atoi(parts[1])
	day, derr := strconv.Atoi(parts[2])
	if err := errors.Join(yerr, merr, derr); err != nil {
		return time.Time{}, fmt.Errorf("%s: %w", config.ErrDateParse, err)
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
	// time.Date normalizes overflow (2025-02-30 -> March 2); reject it instead.
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return time.Time{}, fmt.Errorf("%s: %q out of range", config.ErrDateParse, value)
	}
	return t, nil
}

// DateKey renders t as the "YYYY-MM-DD" key of its calendar day in t's location.
func DateKey(t time.Time) string {
	return t.Format(config.DateFormatFullDash)
}

// parseAlternate accepts the other full-date layouts seen in the wild.
func parseAlternate(value string, loc *time.Location) (time.Time, error) {
	layouts := []string{
		config.DateFormatFullBasic,
		config.DateFormatRFC3339,
		config.DateFormatFullT,
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, strings.TrimSpace(value)); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc), nil
		}
	}
	return time.Time{}, fmt.Errorf("%s: %q", config.ErrDateParse, value)
}
