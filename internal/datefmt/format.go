// Package datefmt renders anniversary dates for display.
//
// Dates arrive as "YYYY-MM-DD" strings and are always interpreted as local
// calendar dates. Month and weekday names come from embedded go-i18n message
// files; a failing localized render degrades to a fixed English long format and
// finally to the raw input, so callers never see an error.
package datefmt

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tartampluch/anniversary-cards/internal/config"
)

// Style selects one of the supported output formats.
type Style string

const (
	Long    Style = "long"
	Short   Style = "short"
	Numeric Style = "numeric"
	Full    Style = "full"
	Custom  Style = "custom"
)

// ParseStyle normalizes a configured format name. Unknown names map to Long.
func ParseStyle(s string) Style {
	switch Style(strings.ToLower(strings.TrimSpace(s))) {
	case Short:
		return Short
	case Numeric:
		return Numeric
	case Full:
		return Full
	case Custom:
		return Custom
	default:
		return Long
	}
}

// Options configures a Formatter.
type Options struct {
	Style         Style
	Pattern       string // token pattern used by the Custom style
	ShowDayOfWeek bool   // prepend the weekday unless Style is Full or Custom
	Locale        string // BCP 47 locale, e.g. "en-US"
	Location      *time.Location
}

// Formatter renders date strings according to Options. It is safe for concurrent use.
type Formatter struct {
	opts Options
}

// New creates a Formatter. A nil Location means time.Local.
func New(opts Options) *Formatter {
	if opts.Style == "" {
		opts.Style = Long
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	return &Formatter{opts: opts}
}

// Format renders value, never failing: a localized render is tried first, then
// a basic English long format, then the raw value is returned unchanged.
func (f *Formatter) Format(value string) string {
	if value == "" {
		return ""
	}

	t, err := ParseDate(value, f.opts.Location)
	if err == nil {
		out, ferr := f.FormatTime(t)
		if ferr == nil {
			return out
		}
		err = ferr
	}

	slog.Debug(config.MsgDateFallback,
		config.LogKeyComponent, config.CompDateFmt,
		config.LogKeyValue, value,
		config.LogKeyError, err,
	)

	if basic, ok := basicLong(value, f.opts.Location); ok {
		return basic
	}
	return value
}

// FormatTime renders an already parsed date in the configured locale.
func (f *Formatter) FormatTime(t time.Time) (string, error) {
	n, err := loadCatalog().lookup(Match(f.opts.Locale))
	if err != nil {
		return "", err
	}

	var out string
	switch f.opts.Style {
	case Custom:
		if strings.TrimSpace(f.opts.Pattern) == "" {
			return "", errors.New(config.ErrPatternEmpty)
		}
		out = n.apply(f.opts.Pattern, t)
	case Short:
		out, err = n.render(config.TKeyLayoutShort, n.data(t))
	case Numeric:
		out, err = n.render(config.TKeyLayoutNumeric, n.data(t))
	case Full:
		out, err = n.render(config.TKeyLayoutFull, n.data(t))
	default:
		out, err = n.render(config.TKeyLayoutLong, n.data(t))
	}
	if err != nil {
		return "", err
	}

	// Full already embeds the weekday; a custom pattern owns its whole layout.
	if f.opts.ShowDayOfWeek && f.opts.Style != Full && f.opts.Style != Custom {
		out = n.weekdays[t.Weekday()] + ", " + out
	}
	return out, nil
}

// data exposes the date components to the layout templates.
func (n *names) data(t time.Time) map[string]any {
	return map[string]any{
		"Year":         t.Year(),
		"Day":          t.Day(),
		"Day2":         fmt.Sprintf("%02d", t.Day()),
		"MonthNum":     int(t.Month()),
		"Month2":       fmt.Sprintf("%02d", int(t.Month())),
		"Month":        n.months[t.Month()-1],
		"MonthShort":   n.monthsShort[t.Month()-1],
		"Weekday":      n.weekdays[t.Weekday()],
		"WeekdayShort": n.weekdaysShort[t.Weekday()],
	}
}

// basicLong is the first fallback tier: fixed English long format.
func basicLong(value string, loc *time.Location) (string, bool) {
	t, err := ParseDate(value, loc)
	if err != nil {
		if t, err = parseAlternate(value, loc); err != nil {
			return "", false
		}
	}
	return t.Format(config.DateLayoutBasicLong), true
}
