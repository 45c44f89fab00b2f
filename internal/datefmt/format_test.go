package datefmt_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/anniversary-cards/internal/datefmt"
)

func TestFormat_Styles(t *testing.T) {
	tests := []struct {
		name  string
		opts  datefmt.Options
		input string
		want  string
	}{
		{"Long en-US", datefmt.Options{Style: datefmt.Long, Locale: "en-US"}, "2025-03-01", "March 1, 2025"},
		{"Long with weekday", datefmt.Options{Style: datefmt.Long, Locale: "en-US", ShowDayOfWeek: true}, "2025-03-01", "Saturday, March 1, 2025"},
		{"Short en", datefmt.Options{Style: datefmt.Short, Locale: "en"}, "2025-03-01", "Mar 1, 2025"},
		{"Numeric en", datefmt.Options{Style: datefmt.Numeric, Locale: "en-US"}, "2025-03-01", "3/1/2025"},
		{"Full en already has weekday", datefmt.Options{Style: datefmt.Full, Locale: "en-US", ShowDayOfWeek: true}, "2025-03-01", "Saturday, March 1, 2025"},
		{"Custom pattern owns the weekday", datefmt.Options{Style: datefmt.Custom, Pattern: "YYYY-MM-DD", Locale: "en-US", ShowDayOfWeek: true}, "2025-03-01", "2025-03-01"},
		{"Long fr", datefmt.Options{Style: datefmt.Long, Locale: "fr-FR"}, "2025-03-01", "1 mars 2025"},
		{"Numeric fr", datefmt.Options{Style: datefmt.Numeric, Locale: "fr"}, "2025-03-01", "01/03/2025"},
		{"Long fr with weekday", datefmt.Options{Style: datefmt.Long, Locale: "fr_CA", ShowDayOfWeek: true}, "2025-03-01", "samedi, 1 mars 2025"},
		{"Long de", datefmt.Options{Style: datefmt.Long, Locale: "de-DE"}, "2025-03-01", "1. März 2025"},
		{"Numeric de", datefmt.Options{Style: datefmt.Numeric, Locale: "de"}, "2025-12-24", "24.12.2025"},
		{"Full es", datefmt.Options{Style: datefmt.Full, Locale: "es-ES"}, "2025-03-01", "sábado, 1 de marzo de 2025"},
		{"Unsupported locale uses English", datefmt.Options{Style: datefmt.Long, Locale: "pt-BR"}, "2025-03-01", "March 1, 2025"},
		{"Empty style defaults to long", datefmt.Options{Locale: "en"}, "2025-03-01", "March 1, 2025"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := datefmt.New(tt.opts).Format(tt.input)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormat_CustomTokens(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		locale  string
		want    string
	}{
		{"ISO layout is unchanged", "YYYY-MM-DD", "en-US", "2025-03-01"},
		{"Day first", "DD/MM/YYYY", "en-US", "01/03/2025"},
		{"Unpadded", "D.M.YY", "en-US", "1.3.25"},
		{"Names", "dddd D MMMM YYYY", "en-US", "Saturday 1 March 2025"},
		{"Short names", "ddd, MMM D", "en-US", "Sat, Mar 1"},
		{"Min weekday", "dd", "en-US", "Sa"},
		{"Localized names", "dddd D MMMM", "fr", "samedi 1 mars"},
		{"Bracket escapes literal text", "[Due] D MMM", "en", "Due 1 Mar"},
		{"Unclosed bracket is literal", "[D", "en", "[1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := datefmt.New(datefmt.Options{
				Style:         datefmt.Custom,
				Pattern:       tt.pattern,
				Locale:        tt.locale,
				ShowDayOfWeek: true, // ignored for custom patterns
			})
			assert.Equal(t, tt.want, f.Format("2025-03-01"))
		})
	}
}

func TestFormat_FallbackChain(t *testing.T) {
	long := datefmt.New(datefmt.Options{Style: datefmt.Long, Locale: "en-US", ShowDayOfWeek: true})

	// Tier 2: nothing parses, the raw value is returned.
	assert.Equal(t, "not-a-date", long.Format("not-a-date"))
	assert.Equal(t, "2025-02-30", long.Format("2025-02-30"))

	// Tier 1: alternate layouts render as basic English long format.
	assert.Equal(t, "March 1, 2025", long.Format("20250301"))
	assert.Equal(t, "March 1, 2025", long.Format("2025-03-01T10:00:00Z"))

	// Empty custom pattern cannot render, fall back to the basic format.
	custom := datefmt.New(datefmt.Options{Style: datefmt.Custom, Locale: "fr"})
	assert.Equal(t, "March 1, 2025", custom.Format("2025-03-01"))

	assert.Equal(t, "", long.Format(""))
}

func TestParseDate_LocalCalendarDay(t *testing.T) {
	zones := []*time.Location{
		time.UTC,
		time.FixedZone("UTC-10", -10*3600),
		time.FixedZone("UTC+14", 14*3600),
	}

	for _, loc := range zones {
		t.Run(loc.String(), func(t *testing.T) {
			got, err := datefmt.ParseDate("2025-06-15", loc)
			require.NoError(t, err)
			assert.Equal(t, 2025, got.Year())
			assert.Equal(t, time.June, got.Month())
			assert.Equal(t, 15, got.Day())
			assert.Equal(t, loc, got.Location())
			assert.Equal(t, "2025-06-15", datefmt.DateKey(got))
		})
	}
}

func TestParseDate_Rejects(t *testing.T) {
	for _, input := range []string{"", "2025-13-01", "2025-02-29", "2025/03/01", "2025-03", "abcd-ef-gh"} {
		t.Run(input, func(t *testing.T) {
			_, err := datefmt.ParseDate(input, time.UTC)
			assert.Error(t, err)
		})
	}
}

func TestParseStyle(t *testing.T) {
	assert.Equal(t, datefmt.Short, datefmt.ParseStyle("SHORT"))
	assert.Equal(t, datefmt.Custom, datefmt.ParseStyle(" custom "))
	assert.Equal(t, datefmt.Long, datefmt.ParseStyle("fancy"))
	assert.Equal(t, datefmt.Long, datefmt.ParseStyle(""))
}

func TestMatch(t *testing.T) {
	assert.Equal(t, "en", datefmt.Match("en-US").String())
	assert.Equal(t, "fr", datefmt.Match("fr_CA").String())
	assert.Equal(t, "de", datefmt.Match("de-AT").String())
	assert.Equal(t, "en", datefmt.Match("").String())
	assert.Equal(t, "en", datefmt.Match("!!").String())
	assert.Equal(t, "en", datefmt.Languages()[0])
}
