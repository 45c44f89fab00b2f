// Package feed encodes display records as an iCalendar feed of all-day events.
package feed

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/emersion/go-ical"
	"github.com/tartampluch/anniversary-cards/internal/cards"
	"github.com/tartampluch/anniversary-cards/internal/config"
	"github.com/tartampluch/anniversary-cards/internal/datefmt"
)

// Build returns one VEVENT per record, on its next date. Records whose next date
// does not parse are skipped. An empty feed is the stub calendar.
func Build(records []cards.DisplayRecord, now time.Time, reminderTrigger string) ([]byte, error) {
	cal := ical.NewCalendar()
	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	cal.Props.SetText(config.PropXWRCalName, config.ICalCalName)
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)

	refresh := ical.NewProp(config.PropRefresh)
	refresh.SetDuration(config.DefaultICalRefresh)
	cal.Props.Set(refresh)

	stamp := ical.NewProp(config.PropDTStamp)
	stamp.SetDateTime(now.UTC())

	for _, rec := range records {
		// All-day events: the calendar day is all that matters.
		day, err := datefmt.ParseDate(rec.NextDate, time.UTC)
		if err != nil {
			slog.Debug(config.MsgSkippedDate,
				config.LogKeyComponent, config.CompFeed,
				config.LogKeyEntity, rec.EntityID,
				config.LogKeyValue, rec.NextDate)
			continue
		}
		event := newEvent(rec, day, reminderTrigger)
		event.Props.Set(stamp)
		cal.Children = append(cal.Children, event.Component)
	}

	if len(cal.Children) == 0 {
		return []byte(config.StubVCalendar), nil
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}

	slog.Debug(config.MsgFeedBuilt,
		config.LogKeyComponent, config.CompFeed,
		config.LogKeyRecords, len(cal.Children),
		config.LogKeySizeBytes, buf.Len(),
	)
	return buf.Bytes(), nil
}

func newEvent(rec cards.DisplayRecord, day time.Time, reminderTrigger string) *ical.Event {
	event := ical.NewEvent()
	event.Props.SetText(config.PropUID, uid(rec.EntityID, day.Year()))
	event.Props.SetText(config.PropSummary, rec.Name)

	description := Description(rec)
	event.Props.SetText(config.PropDescription, description)
	if rec.Category != "" {
		event.Props.SetText(config.PropCategories, string(rec.Category))
	}

	start := ical.NewProp(config.PropDTStart)
	start.SetDate(day)
	event.Props.Set(start)

	end := ical.NewProp(config.PropDTEnd)
	end.SetDate(day.AddDate(0, 0, 1))
	event.Props.Set(end)

	if reminderTrigger != "" {
		addAlarm(event, reminderTrigger, description)
	}
	return event
}

// Description congratulates on the year count at the next date, or falls back to
// the name when the count is unknown.
func Description(rec cards.DisplayRecord) string {
	years, ok := rec.Entity.Attributes.Int(config.AttrYearsAtNext)
	if !ok || years <= 0 {
		return rec.Name
	}
	return fmt.Sprintf(config.FormatDescription, Ordinal(years))
}

// Ordinal renders 1 as "1st", 12 as "12th", 23 as "23rd".
func Ordinal(n int) string {
	suffix := "th"
	switch n % 100 {
	case 11, 12, 13:
	default:
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return strconv.Itoa(n) + suffix
}

// uid is stable across syncs for the same entity and year.
func uid(entityID string, year int) string {
	hash := sha256.Sum256([]byte(config.UIDSalt + entityID))
	return fmt.Sprintf(config.FormatUID, fmt.Sprintf("%x", hash[:config.UIDHashLength]), year, config.ICalDomain)
}

// addAlarm appends a DISPLAY alarm to the event.
func addAlarm(event *ical.Event, trigger, description string) {
	alarm := ical.NewComponent(config.ICalComponent)
	alarm.Props.SetText(config.PropAction, config.ICalAction)
	alarm.Props.SetText(config.PropDescription, description)

	// Raw value: SetText would add VALUE=TEXT.
	triggerProp := ical.NewProp(config.PropTrigger)
	triggerProp.Value = trigger
	alarm.Props.Set(triggerProp)

	event.Children = append(event.Children, alarm)
}
