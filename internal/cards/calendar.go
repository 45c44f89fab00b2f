package cards

import (
	"time"

	"github.com/tartampluch/anniversary-cards/internal/datefmt"
	"github.com/tartampluch/anniversary-cards/internal/hass"
)

// ForDate returns the records whose next_date is exactly the local calendar day of date.
func ForDate(snap hass.Snapshot, cfg WidgetConfig, policy VariantPolicy, date time.Time) []DisplayRecord {
	return matchDate(Project(snap, cfg, policy), date)
}

func matchDate(records []DisplayRecord, date time.Time) []DisplayRecord {
	key := datefmt.DateKey(date)
	var out []DisplayRecord
	for _, r := range records {
		if r.NextDate == key {
			out = append(out, r)
		}
	}
	return out
}

// MonthView groups one month's records by day of month, for calendar grids.
type MonthView struct {
	Year  int                     `json:"year"`
	Month time.Month              `json:"month"`
	Days  map[int][]DisplayRecord `json:"days"`
}

// MonthIndex builds the MonthView of the given month.
func MonthIndex(snap hass.Snapshot, cfg WidgetConfig, policy VariantPolicy, year int, month time.Month) MonthView {
	return IndexMonth(Project(snap, cfg, policy), year, month, cfg.Location)
}

// IndexMonth groups already projected records by day.
func IndexMonth(records []DisplayRecord, year int, month time.Month, loc *time.Location) MonthView {
	if loc == nil {
		loc = time.Local
	}
	view := MonthView{Year: year, Month: month, Days: make(map[int][]DisplayRecord)}
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	for d := first; d.Month() == month; d = d.AddDate(0, 0, 1) {
		if matches := matchDate(records, d); len(matches) > 0 {
			view.Days[d.Day()] = matches
		}
	}
	return view
}
