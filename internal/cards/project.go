// Package cards classifies anniversary entities and projects them into display records.
//
// Every card variant runs the same pipeline, parameterized by a VariantPolicy:
//
//  1. candidate selection (allow-list, or sensor prefix minus the summary sensor),
//  2. classification by the policy predicate and category narrowing,
//  3. derivation of days, category, icon, colour, formatted date and badges,
//  4. priority-then-days ordering and truncation.
//
// The pipeline is pure: the same snapshot and config always yield the same records,
// and malformed input only ever shrinks the result.
package cards

import (
	"cmp"
	"slices"
	"strings"

	"github.com/tartampluch/anniversary-cards/internal/config"
	"github.com/tartampluch/anniversary-cards/internal/datefmt"
	"github.com/tartampluch/anniversary-cards/internal/hass"
)

// DisplayRecord is one projected entity. Records are built once per render and never mutated.
type DisplayRecord struct {
	EntityID      string      `json:"entity_id"`
	Name          string      `json:"name"`
	DaysRemaining int         `json:"days_remaining"`
	Category      Category    `json:"category"`
	NextDate      string      `json:"next_date"`
	FormattedDate string      `json:"formatted_date"`
	Icon          string      `json:"icon"`
	Color         string      `json:"color"`
	Badges        []string    `json:"badges"`
	IsMilestone   bool        `json:"is_milestone"`
	Years         *int        `json:"years,omitempty"`
	Entity        hass.Entity `json:"entity"`
}

// Project runs the pipeline and returns the ordered records.
func Project(snap hass.Snapshot, cfg WidgetConfig, policy VariantPolicy) []DisplayRecord {
	records, _ := run(snap, cfg, policy)
	return records
}

// Diagnose runs the pipeline and returns its filter decisions.
func Diagnose(snap hass.Snapshot, cfg WidgetConfig, policy VariantPolicy) Diagnostics {
	_, diag := run(snap, cfg, policy)
	return diag
}

type candidate struct {
	entity hass.Entity
	days   int
	cat    Category
	rank   int
}

func run(snap hass.Snapshot, cfg WidgetConfig, policy VariantPolicy) ([]DisplayRecord, Diagnostics) {
	diag := Diagnostics{}
	ids := selectCandidates(snap, cfg, &diag)

	filter := map[Category]struct{}(nil)
	if policy.UseConfigFilter {
		filter = cfg.categoryFilter()
	}
	classify := policy.Classify
	if classify == nil {
		classify = Strict
	}

	var kept []candidate
	for _, id := range ids {
		e, _ := snap.Get(id)
		if ok, reason := classify(e); !ok {
			diag.reject(id, reason)
			continue
		}
		cat := categoryOf(e)
		if policy.RequiredCategory != "" && cat != policy.RequiredCategory {
			diag.reject(id, config.ReasonCategory)
			continue
		}
		if filter != nil {
			if _, ok := filter[cat]; !ok {
				diag.reject(id, config.ReasonCategory)
				continue
			}
		}
		days, _ := e.DaysRemaining()
		kept = append(kept, candidate{entity: e, days: days, cat: cat})
	}

	sortCandidates(kept, cfg.PriorityCategories)

	if policy.Truncate && len(kept) > cfg.limit() {
		for _, c := range kept[cfg.limit():] {
			diag.reject(c.entity.ID, config.ReasonTruncated)
		}
		kept = kept[:cfg.limit()]
	}

	f := cfg.formatter()
	records := make([]DisplayRecord, 0, len(kept))
	for _, c := range kept {
		diag.accept(c.entity.ID)
		records = append(records, derive(c, cfg, policy, f))
	}
	return records, diag
}

// selectCandidates returns the ids to classify, in snapshot order.
func selectCandidates(snap hass.Snapshot, cfg WidgetConfig, diag *Diagnostics) []string {
	var ids []string
	if len(cfg.Entities) > 0 {
		allowed := make(map[string]struct{}, len(cfg.Entities))
		for _, id := range cfg.Entities {
			allowed[id] = struct{}{}
		}
		for _, id := range snap.IDs() {
			if _, ok := allowed[id]; ok {
				ids = append(ids, id)
			}
		}
		for _, id := range cfg.Entities {
			if _, ok := snap.Get(id); !ok {
				diag.reject(id, config.ReasonNotFound)
			}
		}
	} else {
		for _, id := range snap.IDs() {
			if strings.HasPrefix(id, config.SensorPrefix) && !strings.Contains(id, config.SummaryMarker) {
				ids = append(ids, id)
			}
		}
	}
	diag.Candidates = ids
	return ids
}

// sortCandidates orders by priority rank then days, keeping snapshot order on ties.
func sortCandidates(list []candidate, priority []string) {
	rank := make(map[Category]int, len(priority))
	for i, c := range priority {
		if _, dup := rank[Category(c)]; !dup {
			rank[Category(c)] = i
		}
	}
	for i := range list {
		r, ok := rank[list[i].cat]
		if !ok {
			r = len(priority)
		}
		list[i].rank = r
	}
	slices.SortStableFunc(list, func(a, b candidate) int {
		return cmp.Or(cmp.Compare(a.rank, b.rank), cmp.Compare(a.days, b.days))
	})
}

// derive computes the display fields of a classified entity.
func derive(c candidate, cfg WidgetConfig, policy VariantPolicy, f *datefmt.Formatter) DisplayRecord {
	attrs := c.entity.Attributes
	theme := policy.themeFor(c.cat)
	nextDate, _ := attrs.String(config.AttrNextDate)

	rec := DisplayRecord{
		EntityID:      c.entity.ID,
		Name:          c.entity.FriendlyName(),
		DaysRemaining: c.days,
		Category:      c.cat,
		NextDate:      nextDate,
		FormattedDate: f.Format(nextDate),
		Icon:          resolveIcon(c, cfg, policy, theme),
		Color:         resolveColor(c.days, cfg, policy, theme),
		Badges:        badges(attrs, policy.attributesFor(cfg, c.cat)),
		IsMilestone:   attrs.Bool(config.AttrIsMilestone),
		Entity:        c.entity,
	}
	if years, ok := attrs.Int(config.AttrCurrentYears); ok {
		rec.Years = &years
	}
	return rec
}

// resolveIcon applies custom emoji, then today/this week/milestone, then the category emoji.
func resolveIcon(c candidate, cfg WidgetConfig, policy VariantPolicy, theme Theme) string {
	if !cfg.ShowIcons {
		return policy.IconFallback
	}
	if custom, ok := c.entity.Attributes.String(config.AttrCustomEmoji); ok && custom != "" {
		return custom
	}
	switch {
	case c.days == 0:
		return config.IconToday
	case c.days <= config.BucketWeekMaxDays:
		return config.IconThisWeek
	case c.entity.Attributes.Bool(config.AttrIsMilestone):
		return config.IconMilestone
	case theme.Emoji != "":
		return theme.Emoji
	default:
		return config.IconGeneric
	}
}

func resolveColor(days int, cfg WidgetConfig, policy VariantPolicy, theme Theme) string {
	switch {
	case !cfg.ColorCoding && policy.DisabledColor != "":
		return policy.DisabledColor
	case !cfg.ColorCoding:
		return config.ColorDefault
	case cfg.CategoryColors:
		return theme.Buckets.For(days)
	default:
		return Universal.For(days)
	}
}
