package cards

import (
	"cmp"
	"slices"

	"github.com/tartampluch/anniversary-cards/internal/config"
	"github.com/tartampluch/anniversary-cards/internal/hass"
)

// Count is one row of a frequency table.
type Count struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Frequency is a frequency table ordered by first occurrence.
type Frequency []Count

func (f Frequency) add(value string) Frequency {
	for i := range f {
		if f[i].Value == value {
			f[i].Count++
			return f
		}
	}
	return append(f, Count{Value: value, Count: 1})
}

// Top returns up to n rows by descending count; equal counts keep first-occurrence order.
// A non-positive n returns every row.
func (f Frequency) Top(n int) Frequency {
	out := slices.Clone(f)
	slices.SortStableFunc(out, func(a, b Count) int { return cmp.Compare(b.Count, a.Count) })
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Stats aggregates a card's filtered records.
type Stats struct {
	Total      int             `json:"total"`
	Today      int             `json:"today"`
	ThisWeek   int             `json:"this_week"`
	ThisMonth  int             `json:"this_month"`
	Milestones int             `json:"milestones"`
	Zodiac     Frequency       `json:"zodiac_signs"`
	Generation Frequency       `json:"generations"`
	Birthstone Frequency       `json:"birthstones"`
	Category   Frequency       `json:"categories"`
	Next       []DisplayRecord `json:"next"`
}

// ComputeStats runs the pipeline and aggregates the result.
func ComputeStats(snap hass.Snapshot, cfg WidgetConfig, policy VariantPolicy) Stats {
	return Aggregate(Project(snap, cfg, policy))
}

// Aggregate computes the counters and frequency tables of records.
func Aggregate(records []DisplayRecord) Stats {
	s := Stats{Total: len(records)}
	for _, r := range records {
		switch {
		case r.DaysRemaining == 0:
			s.Today++
			s.ThisWeek++
			s.ThisMonth++
		case r.DaysRemaining <= config.BucketWeekMaxDays:
			s.ThisWeek++
			s.ThisMonth++
		case r.DaysRemaining <= config.BucketMonthMaxDays:
			s.ThisMonth++
		}
		if r.IsMilestone {
			s.Milestones++
		}

		attrs := r.Entity.Attributes
		if v, ok := attrs.String(config.AttrZodiacSign); ok && v != "" {
			s.Zodiac = s.Zodiac.add(v)
		}
		if v, ok := attrs.String(config.AttrGeneration); ok && v != "" {
			s.Generation = s.Generation.add(v)
		}
		if v, ok := attrs.String(config.AttrBirthstone); ok && v != "" {
			s.Birthstone = s.Birthstone.add(v)
		}
		s.Category = s.Category.add(string(r.Category))
	}

	n := min(config.StatsNextCount, len(records))
	s.Next = slices.Clone(records[:n])
	return s
}

// Ranked returns the statistics as presented: every frequency table by descending
// count, the zodiac table cut to zodiacTop rows.
func (s Stats) Ranked(zodiacTop int) Stats {
	s.Zodiac = s.Zodiac.Top(zodiacTop)
	s.Generation = s.Generation.Top(0)
	s.Birthstone = s.Birthstone.Top(0)
	s.Category = s.Category.Top(0)
	return s
}
