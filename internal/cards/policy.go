package cards

import (
	"fmt"

	"github.com/tartampluch/anniversary-cards/internal/config"
	"github.com/tartampluch/anniversary-cards/internal/hass"
)

// Classifier decides whether an entity belongs to a card. A rejection carries the
// reason shown by the diagnostics view.
type Classifier func(e hass.Entity) (ok bool, reason string)

// VariantPolicy parameterizes the pipeline for one card variant.
type VariantPolicy struct {
	Type         string
	DefaultTitle string
	Classify     Classifier

	// RequiredCategory narrows the card to one category; empty accepts all.
	RequiredCategory Category

	// UseConfigFilter applies the category/categories options.
	UseConfigFilter bool

	// DefaultAttributes are the badges shown when show_attributes is unset.
	// AttributesByCategory overrides them per record category.
	DefaultAttributes    []string
	AttributesByCategory map[Category][]string

	// Theme, when set, replaces the category theme for colours and icons.
	Theme *Theme

	// IconFallback is shown when show_icons is off; empty shows no icon.
	// DisabledColor is used when color_coding is off; empty means ColorDefault.
	IconFallback  string
	DisabledColor string

	// Truncate bounds the result to max_items.
	Truncate bool

	// RequireEntity makes the entity option mandatory.
	RequireEntity bool
}

var (
	descriptiveAttrs = []string{
		config.AttrZodiacSign,
		config.AttrNamedAnniversary,
		config.AttrBirthFlower,
		config.AttrBirthstone,
	}

	// Birthdays carry no named anniversary.
	birthdayDescriptiveAttrs = []string{
		config.AttrZodiacSign,
		config.AttrBirthstone,
		config.AttrBirthFlower,
	}
)

// validState checks the state is a usable day count.
func validState(e hass.Entity) (bool, string) {
	if e.Unavailable() {
		return false, config.ReasonUnavailable
	}
	if _, ok := e.DaysRemaining(); !ok {
		return false, config.ReasonBadState
	}
	return true, ""
}

// structural checks the state, next_date, current_years and category, then looks for
// at least one of the descriptive attributes.
func structural(e hass.Entity, descriptive []string) (bool, string) {
	if ok, reason := validState(e); !ok {
		return false, reason
	}
	for _, attr := range []string{config.AttrNextDate, config.AttrCurrentYears, config.AttrCategory} {
		if !e.Attributes.Has(attr) {
			return false, fmt.Sprintf(config.ReasonMissingAttr, attr)
		}
	}
	for _, attr := range descriptive {
		if e.Attributes.Has(attr) {
			return true, ""
		}
	}
	return false, config.ReasonMissingDescr
}

// Strict is the structural test: a valid state, next_date, current_years, category
// and at least one descriptive attribute.
func Strict(e hass.Entity) (bool, string) {
	return structural(e, descriptiveAttrs)
}

// BirthdayClassifier is Strict restricted to the birthday descriptors: zodiac sign,
// birthstone or birth flower.
func BirthdayClassifier(e hass.Entity) (bool, string) {
	return structural(e, birthdayDescriptiveAttrs)
}

// Relaxed only needs a valid state, next_date and the holiday category.
func Relaxed(e hass.Entity) (bool, string) {
	if ok, reason := validState(e); !ok {
		return false, reason
	}
	for _, attr := range []string{config.AttrNextDate, config.AttrCategory} {
		if !e.Attributes.Has(attr) {
			return false, fmt.Sprintf(config.ReasonMissingAttr, attr)
		}
	}
	if categoryOf(e) != Holiday {
		return false, config.ReasonCategory
	}
	return true, ""
}

var (
	birthdayBadges    = []string{config.AttrZodiacSign, config.AttrBirthstone, config.AttrGeneration}
	anniversaryBadges = []string{config.AttrCurrentYears, config.AttrNamedAnniversary}
	holidayBadges     = []string{config.AttrGeneration, config.AttrNamedAnniversary, config.AttrCurrentYears}
	detailsBadges     = []string{
		config.AttrZodiacSign,
		config.AttrBirthstone,
		config.AttrBirthFlower,
		config.AttrGeneration,
		config.AttrNamedAnniversary,
		config.AttrCurrentYears,
		config.AttrWeeksRemaining,
	}

	badgesByCategory = map[Category][]string{
		Birthday:    birthdayBadges,
		Anniversary: anniversaryBadges,
		Memorial:    anniversaryBadges,
		Holiday:     holidayBadges,
		Work:        anniversaryBadges,
	}
)

// TimelinePolicy is the general timeline: strict test plus the configured category filter.
func TimelinePolicy() VariantPolicy {
	return VariantPolicy{
		Type:                 config.CardTimeline,
		DefaultTitle:         config.TitleTimeline,
		Classify:             Strict,
		UseConfigFilter:      true,
		DefaultAttributes:    []string{config.AttrZodiacSign, config.AttrNamedAnniversary},
		AttributesByCategory: badgesByCategory,
		Truncate:             true,
		IconFallback:         config.IconGeneric,
		DisabledColor:        config.ColorTimelineFlat,
	}
}

// BirthdayPolicy keeps birthdays that carry a birthday descriptor.
func BirthdayPolicy() VariantPolicy {
	return VariantPolicy{
		Type:              config.CardBirthday,
		DefaultTitle:      config.TitleBirthday,
		Classify:          BirthdayClassifier,
		RequiredCategory:  Birthday,
		DefaultAttributes: birthdayBadges,
		Truncate:          true,
	}
}

// HolidayPolicy keeps holidays under the relaxed test, with the festive colour scheme.
func HolidayPolicy() VariantPolicy {
	theme := ThemeFor(Holiday)
	return VariantPolicy{
		Type:              config.CardHoliday,
		DefaultTitle:      config.TitleHoliday,
		Classify:          Relaxed,
		RequiredCategory:  Holiday,
		DefaultAttributes: holidayBadges,
		Theme:             &theme,
		Truncate:          true,
	}
}

// StatsPolicy feeds the statistics card; it never truncates.
func StatsPolicy() VariantPolicy {
	return VariantPolicy{
		Type:                 config.CardStats,
		DefaultTitle:         config.TitleStats,
		Classify:             Strict,
		UseConfigFilter:      true,
		DefaultAttributes:    []string{config.AttrZodiacSign, config.AttrNamedAnniversary},
		AttributesByCategory: badgesByCategory,
	}
}

// CalendarPolicy feeds the calendar card; it never truncates.
func CalendarPolicy() VariantPolicy {
	p := StatsPolicy()
	p.Type = config.CardCalendar
	p.DefaultTitle = config.TitleCalendar
	return p
}

// DetailsPolicy focuses on the single configured entity.
func DetailsPolicy() VariantPolicy {
	return VariantPolicy{
		Type:              config.CardDetails,
		DefaultTitle:      config.TitleDetails,
		Classify:          Strict,
		DefaultAttributes: detailsBadges,
		RequireEntity:     true,
	}
}

// attributesFor picks the badge list of a record.
func (p VariantPolicy) attributesFor(cfg WidgetConfig, c Category) []string {
	if len(cfg.ShowAttributes) > 0 {
		return cfg.ShowAttributes
	}
	if attrs, ok := p.AttributesByCategory[c]; ok {
		return attrs
	}
	return p.DefaultAttributes
}

// themeFor returns the policy theme override or the category theme.
func (p VariantPolicy) themeFor(c Category) Theme {
	if p.Theme != nil {
		return *p.Theme
	}
	return ThemeFor(c)
}
