package feed_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/anniversary-cards/internal/cards"
	"github.com/tartampluch/anniversary-cards/internal/config"
	"github.com/tartampluch/anniversary-cards/internal/feed"
	"github.com/tartampluch/anniversary-cards/internal/hass"
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func record(id, name, next string, years any) cards.DisplayRecord {
	attrs := hass.Attributes{}
	if years != nil {
		attrs[config.AttrYearsAtNext] = years
	}
	return cards.DisplayRecord{
		EntityID: id,
		Name:     name,
		NextDate: next,
		Category: cards.Birthday,
		Entity:   hass.Entity{ID: id, Attributes: attrs},
	}
}

func TestBuild_OneEventPerRecord(t *testing.T) {
	ics, err := feed.Build([]cards.DisplayRecord{
		record("sensor.anniversary_ada", "Ada", "2025-06-20", 35),
		record("sensor.anniversary_bob", "Bob", "2025-12-31", nil),
	}, now, "")
	require.NoError(t, err)

	s := string(ics)
	assert.Contains(t, s, "BEGIN:VCALENDAR")
	assert.Contains(t, s, "PRODID:"+config.ICalProdid)
	assert.Contains(t, s, "X-WR-CALNAME:"+config.ICalCalName)
	assert.Equal(t, 2, strings.Count(s, "BEGIN:VEVENT"))

	assert.Contains(t, s, "SUMMARY:Ada")
	assert.Contains(t, s, "DTSTART;VALUE=DATE:20250620")
	assert.Contains(t, s, "DTEND;VALUE=DATE:20250621")
	assert.Contains(t, s, "DESCRIPTION:Happy 35th anniversary!")
	assert.Contains(t, s, "CATEGORIES:birthday")

	assert.Contains(t, s, "DTSTART;VALUE=DATE:20251231")
	assert.Contains(t, s, "DTEND;VALUE=DATE:20260101", "the end date rolls into the next year")
	assert.Contains(t, s, "DESCRIPTION:Bob", "unknown years fall back to the name")
	assert.NotContains(t, s, "BEGIN:VALARM")
}

func TestBuild_StableUIDs(t *testing.T) {
	recs := []cards.DisplayRecord{record("sensor.anniversary_ada", "Ada", "2025-06-20", 35)}

	a, err := feed.Build(recs, now, "")
	require.NoError(t, err)
	b, err := feed.Build(recs, now.Add(time.Hour), "")
	require.NoError(t, err)

	uidLine := func(ics []byte) string {
		for line := range strings.SplitSeq(string(ics), "\r\n") {
			if strings.HasPrefix(line, "UID:") {
				return line
			}
		}
		return ""
	}
	require.NotEmpty(t, uidLine(a))
	assert.Equal(t, uidLine(a), uidLine(b))
	assert.Contains(t, uidLine(a), "-2025@"+config.ICalDomain)
}

func TestBuild_Reminder(t *testing.T) {
	ics, err := feed.Build([]cards.DisplayRecord{record("sensor.anniversary_ada", "Ada", "2025-06-20", 35)}, now, "-P1D")
	require.NoError(t, err)

	s := string(ics)
	assert.Contains(t, s, "BEGIN:VALARM")
	assert.Contains(t, s, "TRIGGER:-P1D")
	assert.Contains(t, s, "ACTION:DISPLAY")
}

func TestBuild_EmptyAndInvalid(t *testing.T) {
	ics, err := feed.Build(nil, now, "")
	require.NoError(t, err)
	assert.Equal(t, config.StubVCalendar, string(ics))

	ics, err = feed.Build([]cards.DisplayRecord{record("sensor.x", "X", "soon", 3)}, now, "")
	require.NoError(t, err)
	assert.Equal(t, config.StubVCalendar, string(ics), "unparseable dates are skipped")
}

func TestOrdinal(t *testing.T) {
	tests := map[int]string{
		1: "1st", 2: "2nd", 3: "3rd", 4: "4th", 10: "10th",
		11: "11th", 12: "12th", 13: "13th", 21: "21st", 22: "22nd",
		101: "101st", 111: "111th", 112: "112th",
	}
	for n, want := range tests {
		assert.Equal(t, want, feed.Ordinal(n))
	}
}
