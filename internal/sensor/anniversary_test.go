package sensor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/tartampluch/anniversary-cards/internal/cards"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// TestNextOccurrence covers standard dates, the end of the year and leap days.
func TestNextOccurrence(t *testing.T) {
	// Reference "Now": June 15th, 2025 (non-leap year)
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		date      time.Time
		yearKnown bool
		wantNext  time.Time
		wantYears int
		wantDays  int
	}{
		{"Passed this year", date(1990, 1, 1), true, date(2026, 1, 1), 36, 200},
		{"Later this year", date(1990, 12, 31), true, date(2025, 12, 31), 35, 199},
		{"Today", date(1990, 6, 15), true, date(2025, 6, 15), 35, 0},
		{"Year unknown", date(2000, 1, 1), false, date(2026, 1, 1), 0, 200},
		{"Leapling in a non-leap year", date(2000, 2, 29), true, date(2026, 3, 1), 26, 259},
		{"Known date still ahead", date(2027, 5, 1), true, date(2027, 5, 1), 0, 685},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Anniversary{Date: tt.date, YearKnown: tt.yearKnown, Category: cards.Birthday}
			assert.Equal(t, tt.wantNext, a.Next(now))
			assert.Equal(t, tt.wantDays, a.DaysRemaining(now))

			years, ok := a.YearsAtNext(now)
			assert.Equal(t, tt.yearKnown, ok)
			assert.Equal(t, tt.wantYears, years)
		})
	}
}

// TestNextOccurrence_LeapYearContext keeps Feb 29 when the current year has one.
func TestNextOccurrence_LeapYearContext(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	a := Anniversary{Date: date(2000, 2, 29), YearKnown: true}

	assert.Equal(t, date(2024, 2, 29), a.Next(now))
}

func TestDaysRemaining_LocalCalendarDay(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*3600)
	// Already June 15th in Tokyo, still June 14th in UTC.
	now := time.Date(2025, 6, 15, 1, 0, 0, 0, tokyo)
	a := Anniversary{Date: date(1990, 6, 15), YearKnown: true}

	assert.Equal(t, 0, a.DaysRemaining(now))
	assert.Equal(t, tokyo, a.Next(now).Location())
}

func TestCurrentYears(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		date time.Time
		want int
	}{
		{"Day before", date(1990, 6, 16), 34},
		{"On the day", date(1990, 6, 15), 35},
		{"Future date", date(2027, 1, 1), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			years, ok := Anniversary{Date: tt.date, YearKnown: true}.CurrentYears(now)
			assert.True(t, ok)
			assert.Equal(t, tt.want, years)
		})
	}

	_, ok := Anniversary{Date: date(2000, 6, 15)}.CurrentYears(now)
	assert.False(t, ok, "unknown year has no count")
}

func TestMilestonesAndNames(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		years     int
		milestone bool
		named     string
	}{
		{1, true, "Paper"},
		{2, false, ""},
		{5, true, "Wood"},
		{15, false, "Crystal"},
		{18, true, ""},
		{21, true, ""},
		{30, true, "Pearl"},
		{40, true, "Ruby"},
		{75, true, ""},
		{110, true, ""},
	}
	for _, tt := range tests {
		a := Anniversary{Date: date(2025-tt.years, 6, 1), YearKnown: true, Category: cards.Anniversary}
		assert.Equal(t, tt.milestone, a.IsMilestone(now), "milestone at %d", tt.years)
		assert.Equal(t, tt.named, a.NamedAnniversary(now), "name at %d", tt.years)
	}

	birthday := Anniversary{Date: date(2015, 6, 1), YearKnown: true, Category: cards.Birthday}
	assert.Empty(t, birthday.NamedAnniversary(now), "birthdays carry no traditional name")
	assert.True(t, birthday.IsMilestone(now))

	unknown := Anniversary{Date: date(2000, 6, 1), Category: cards.Anniversary}
	assert.False(t, unknown.IsMilestone(now))
	assert.Empty(t, unknown.NamedAnniversary(now))
}

func TestZodiacBoundaries(t *testing.T) {
	tests := []struct {
		month time.Month
		day   int
		want  string
	}{
		{time.January, 19, "Capricorn"},
		{time.January, 20, "Aquarius"},
		{time.February, 18, "Aquarius"},
		{time.February, 19, "Pisces"},
		{time.March, 21, "Aries"},
		{time.June, 20, "Gemini"},
		{time.June, 21, "Cancer"},
		{time.July, 23, "Leo"},
		{time.October, 22, "Libra"},
		{time.October, 23, "Scorpio"},
		{time.November, 22, "Sagittarius"},
		{time.December, 21, "Sagittarius"},
		{time.December, 22, "Capricorn"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, zodiacSign(tt.day, tt.month), "%s %d", tt.month, tt.day)
	}
}

func TestMonthTables(t *testing.T) {
	a := Anniversary{Date: date(1990, 9, 3)}
	assert.Equal(t, "Sapphire", a.Birthstone())
	assert.Equal(t, "Aster", a.BirthFlower())

	a.Date = date(1990, 1, 3)
	assert.Equal(t, "Garnet", a.Birthstone())
	assert.Equal(t, "Carnation", a.BirthFlower())
}

func TestGeneration(t *testing.T) {
	tests := []struct {
		year int
		want string
	}{
		{1900, ""},
		{1901, "Greatest Generation"},
		{1945, "Silent Generation"},
		{1946, "Baby Boomers"},
		{1980, "Generation X"},
		{1981, "Millennials"},
		{2000, "Generation Z"},
		{2013, "Generation Alpha"},
	}
	for _, tt := range tests {
		a := Anniversary{Date: date(tt.year, 5, 1), YearKnown: true, Category: cards.Birthday}
		assert.Equal(t, tt.want, a.Generation(), "born %d", tt.year)
	}

	assert.Empty(t, Anniversary{Date: date(1990, 5, 1), Category: cards.Birthday}.Generation())
	assert.Empty(t, Anniversary{Date: date(1990, 5, 1), YearKnown: true, Category: cards.Anniversary}.Generation())
}

func TestHalfAnniversary(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	a := Anniversary{Date: date(1990, 8, 31), YearKnown: true}
	assert.Equal(t, date(2025, 2, 28), a.HalfAnniversary(now), "clamped to the end of February")

	a = Anniversary{Date: date(1990, 3, 10), YearKnown: true}
	assert.Equal(t, date(2025, 9, 10), a.HalfAnniversary(now))

	a = Anniversary{Date: date(1990, 12, 25), YearKnown: true}
	assert.Equal(t, date(2025, 6, 25), a.HalfAnniversary(now), "wraps into the next year")
}

func TestCleanName(t *testing.T) {
	tests := map[string]string{
		"John's Birthday":       "johns_birthday",
		"Mom & Dad Anniversary": "mom__dad_anniversary",
		"Wedding Day!!!":        "wedding_day",
		"Simple Name":           "simple_name",
		"Name-with-hyphens":     "name_with_hyphens",
		"!!!":                   "unnamed",
	}
	for in, want := range tests {
		assert.Equal(t, want, cleanName(in), in)
	}
}
