package sensor

import (
	"cmp"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/tartampluch/anniversary-cards/internal/cards"
	"github.com/tartampluch/anniversary-cards/internal/config"
	"github.com/tartampluch/anniversary-cards/internal/hass"
)

// Options selects the optional sensors and attributes.
type Options struct {
	SummarySensor   bool
	HalfAnniversary bool
}

var unsafeIDChars = regexp.MustCompile(`[^a-z0-9_]`)

// cleanName turns a display name into an entity id fragment.
func cleanName(name string) string {
	s := strings.ToLower(name)
	s = strings.NewReplacer(" ", "_", "-", "_").Replace(s)
	s = unsafeIDChars.ReplaceAllString(s, "")
	if s == "" {
		return config.FallbackCleanName
	}
	return s
}

// entityID derives the sensor id of an anniversary. Anniversaries share names with
// birthdays, so every non-birthday entry gets a suffix.
func entityID(a Anniversary) string {
	id := config.EntityIDPrefix + cleanName(a.Name)
	if a.Category != cards.Birthday {
		id += config.EntityIDAnnivSuffix
	}
	return id
}

// Entities converts anniversaries into sensor entities, in input order. The summary
// sensor, when enabled, comes last.
func Entities(list []Anniversary, today time.Time, opts Options) hass.Snapshot {
	used := make(map[string]int, len(list))
	entities := make([]hass.Entity, 0, len(list)+1)

	for _, a := range list {
		id := entityID(a)
		used[id]++
		if n := used[id]; n > 1 {
			id = fmt.Sprintf(config.EntityIDCollisionFmt, id, n)
		}
		entities = append(entities, hass.Entity{
			ID:         id,
			State:      strconv.Itoa(a.DaysRemaining(today)),
			Attributes: attributes(a, today, opts),
		})
	}

	if opts.SummarySensor {
		entities = append(entities, summary(entities))
	}
	return hass.NewSnapshot(entities...)
}

func attributes(a Anniversary, today time.Time, opts Options) hass.Attributes {
	attrs := hass.Attributes{
		config.AttrFriendlyName:   a.Name,
		config.AttrCategory:       string(a.Category),
		config.AttrNextDate:       a.Next(today).Format(config.DateFormatFullDash),
		config.AttrWeeksRemaining: a.WeeksRemaining(today),
		config.AttrZodiacSign:     a.ZodiacSign(),
		config.AttrBirthstone:     a.Birthstone(),
		config.AttrBirthFlower:    a.BirthFlower(),
		config.AttrIsMilestone:    a.IsMilestone(today),
	}
	if gen := a.Generation(); gen != "" {
		attrs[config.AttrGeneration] = gen
	}
	if named := a.NamedAnniversary(today); named != "" {
		attrs[config.AttrNamedAnniversary] = named
	}
	if years, ok := a.CurrentYears(today); ok {
		attrs[config.AttrCurrentYears] = years
	}
	if years, ok := a.YearsAtNext(today); ok {
		attrs[config.AttrYearsAtNext] = years
	}
	if a.YearKnown {
		attrs[config.AttrDate] = a.Date.Format(config.DateFormatFullDash)
	}
	if opts.HalfAnniversary {
		half := a.HalfAnniversary(today)
		attrs[config.AttrHalfDate] = half.Format(config.DateFormatFullDash)
		attrs[config.AttrDaysUntilHalf] = daysBetween(today, half)
	}
	return attrs
}

// summary builds the upcoming-anniversaries sensor from the generated entities.
func summary(entities []hass.Entity) hass.Entity {
	type upcoming struct {
		entity hass.Entity
		days   int
	}
	list := make([]upcoming, 0, len(entities))
	for _, e := range entities {
		days, ok := e.DaysRemaining()
		if !ok {
			continue
		}
		list = append(list, upcoming{entity: e, days: days})
	}
	slices.SortStableFunc(list, func(a, b upcoming) int { return cmp.Compare(a.days, b.days) })
	list = list[:min(len(list), config.SummaryUpcomingLength)]

	e := hass.Entity{
		ID:         config.SummaryEntityID,
		State:      config.SummaryStateNothing,
		Attributes: hass.Attributes{config.AttrFriendlyName: config.SummaryFriendlyName},
	}
	if len(list) == 0 {
		return e
	}

	e.State = list[0].entity.FriendlyName()
	items := make([]any, 0, len(list))
	for _, u := range list {
		item := map[string]any{
			config.AttrUpcomingEntityID: u.entity.ID,
			config.AttrUpcomingName:     u.entity.FriendlyName(),
			config.AttrUpcomingDays:     u.days,
		}
		if next, ok := u.entity.Attributes.String(config.AttrNextDate); ok {
			item[config.AttrUpcomingNextDate] = next
		}
		if years, ok := u.entity.Attributes.Int(config.AttrYearsAtNext); ok {
			item[config.AttrUpcomingYears] = years
		}
		items = append(items, item)
	}
	e.Attributes[config.AttrUpcoming] = items
	return e
}
