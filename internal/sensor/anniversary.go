package sensor

import (
	"slices"
	"time"

	"github.com/tartampluch/anniversary-cards/internal/cards"
	"github.com/tartampluch/anniversary-cards/internal/config"
)

// Anniversary is one recurring date read from an address book.
type Anniversary struct {
	// UID is a stable hash of name, date and category.
	UID string

	// Name is the display name (FN, then N, then a fallback).
	Name string

	// Date is the original date. When YearKnown is false the year is config.DefaultLeapYear.
	Date      time.Time
	YearKnown bool

	Category cards.Category
}

// midnight truncates t to the start of its calendar day in its own location.
func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Next returns the next occurrence on or after today. A known date that still lies
// in the future is its own next occurrence.
func (a Anniversary) Next(today time.Time) time.Time {
	return nextOccurrence(today, a.Date, a.YearKnown)
}

func nextOccurrence(today, date time.Time, yearKnown bool) time.Time {
	loc := today.Location()
	start := midnight(today)

	if yearKnown {
		// Go's time.Date normalizes Feb 29 to March 1 in non-leap years.
		original := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, loc)
		if original.After(start) {
			return original
		}
	}

	candidate := time.Date(today.Year(), date.Month(), date.Day(), 0, 0, 0, 0, loc)
	if candidate.Before(start) {
		candidate = time.Date(today.Year()+1, date.Month(), date.Day(), 0, 0, 0, 0, loc)
	}
	return candidate
}

// daysBetween counts calendar days from a to b, ignoring DST shifts.
func daysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	from := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	to := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours() / 24)
}

// yearsBetween counts the full years elapsed from a to b.
func yearsBetween(a, b time.Time) int {
	years := b.Year() - a.Year()
	if b.Month() < a.Month() || (b.Month() == a.Month() && b.Day() < a.Day()) {
		years--
	}
	return years
}

// DaysRemaining is the number of days until the next occurrence.
func (a Anniversary) DaysRemaining(today time.Time) int {
	return daysBetween(today, a.Next(today))
}

// WeeksRemaining is the number of full weeks until the next occurrence.
func (a Anniversary) WeeksRemaining(today time.Time) int {
	return a.DaysRemaining(today) / config.DaysPerWeek
}

// CurrentYears is the number of full years elapsed today.
func (a Anniversary) CurrentYears(today time.Time) (int, bool) {
	if !a.YearKnown {
		return 0, false
	}
	return max(yearsBetween(a.Date, today), 0), true
}

// YearsAtNext is the number of years completed at the next occurrence.
func (a Anniversary) YearsAtNext(today time.Time) (int, bool) {
	if !a.YearKnown {
		return 0, false
	}
	return max(yearsBetween(a.Date, a.Next(today)), 0), true
}

// IsMilestone reports whether the next occurrence is a round or notable year count.
func (a Anniversary) IsMilestone(today time.Time) bool {
	years, ok := a.YearsAtNext(today)
	if !ok {
		return false
	}
	if slices.Contains(config.Milestones, years) {
		return true
	}
	return years > 0 && years%config.MilestoneEvery == 0
}

// NamedAnniversary returns the traditional name of the next occurrence, if any.
// Birthdays have none.
func (a Anniversary) NamedAnniversary(today time.Time) string {
	if a.Category == cards.Birthday {
		return ""
	}
	years, ok := a.YearsAtNext(today)
	if !ok {
		return ""
	}
	return namedAnniversaries[years]
}

// ZodiacSign returns the western zodiac sign of the date.
func (a Anniversary) ZodiacSign() string {
	return zodiacSign(a.Date.Day(), a.Date.Month())
}

// Birthstone returns the birthstone of the month.
func (a Anniversary) Birthstone() string {
	return birthstones[a.Date.Month()-1]
}

// BirthFlower returns the birth flower of the month.
func (a Anniversary) BirthFlower() string {
	return birthFlowers[a.Date.Month()-1]
}

// Generation returns the generation label of a birthday with a known year.
func (a Anniversary) Generation() string {
	if a.Category != cards.Birthday || !a.YearKnown {
		return ""
	}
	return generationOf(a.Date.Year())
}

// HalfAnniversary returns the next half anniversary, six months after the date.
func (a Anniversary) HalfAnniversary(today time.Time) time.Time {
	return nextOccurrence(today, addMonthsClamped(a.Date, config.HalfYearMonths), true)
}

// addMonthsClamped adds months, clamping the day to the end of the target month
// (Aug 31 + 6 months is Feb 28, not March 3).
func addMonthsClamped(t time.Time, months int) time.Time {
	first := time.Date(t.Year(), t.Month()+time.Month(months), 1, 0, 0, 0, 0, t.Location())
	last := first.AddDate(0, 1, -1).Day()
	return time.Date(first.Year(), first.Month(), min(t.Day(), last), 0, 0, 0, 0, t.Location())
}
