package cards

import (
	"strings"

	"github.com/tartampluch/anniversary-cards/internal/config"
	"github.com/tartampluch/anniversary-cards/internal/hass"
)

// Category classifies an anniversary. Values outside the known set are kept as-is
// on the record but themed like Other.
type Category string

const (
	Birthday    Category = config.CategoryBirthday
	Anniversary Category = config.CategoryAnniversary
	Memorial    Category = config.CategoryMemorial
	Holiday     Category = config.CategoryHoliday
	Work        Category = config.CategoryWork
	Achievement Category = config.CategoryAchievement
	Event       Category = config.CategoryEvent
	Other       Category = config.CategoryOther
)

// Categories lists the known categories in display order.
var Categories = []Category{Birthday, Anniversary, Memorial, Holiday, Work, Achievement, Event, Other}

// Known reports whether c is one of the fixed categories.
func (c Category) Known() bool {
	_, ok := themes[c]
	return ok
}

// Buckets holds the colour of each day-count bucket.
type Buckets struct {
	Today  string `json:"today"`
	Week   string `json:"week"`
	Month  string `json:"month"`
	Future string `json:"future"`
}

// For picks the bucket colour: 0 is today, up to 7 is this week, up to 30 is this month.
func (b Buckets) For(days int) string {
	switch {
	case days == 0:
		return b.Today
	case days <= config.BucketWeekMaxDays:
		return b.Week
	case days <= config.BucketMonthMaxDays:
		return b.Month
	default:
		return b.Future
	}
}

// Universal is the category-agnostic red/orange/green/blue scheme.
var Universal = Buckets{
	Today:  config.ColorToday,
	Week:   config.ColorWeek,
	Month:  config.ColorMonth,
	Future: config.ColorFuture,
}

// Theme is the fixed presentation of a category.
type Theme struct {
	Color     string  `json:"color"`
	Emoji     string  `json:"emoji"`
	Label     string  `json:"label"`
	ThemeName string  `json:"theme_name"`
	Buckets   Buckets `json:"buckets"`
}

var themes = map[Category]Theme{
	Birthday: {
		Color: "#E91E63", Emoji: "🎂", Label: "Birthday", ThemeName: "pink",
		Buckets: Buckets{Today: "#C2185B", Week: "#E91E63", Month: "#F06292", Future: "#F8BBD0"},
	},
	Anniversary: {
		Color: "#F44336", Emoji: "💕", Label: "Anniversary", ThemeName: "red",
		Buckets: Buckets{Today: "#D32F2F", Week: "#F44336", Month: "#E57373", Future: "#FFCDD2"},
	},
	Memorial: {
		Color: "#607D8B", Emoji: "🕯️", Label: "Memorial", ThemeName: "blue-grey",
		Buckets: Buckets{Today: "#455A64", Week: "#607D8B", Month: "#90A4AE", Future: "#CFD8DC"},
	},
	Holiday: {
		Color: "#FF9800", Emoji: "🎉", Label: "Holiday", ThemeName: "orange",
		Buckets: Buckets{Today: "#FF5722", Week: "#FF9800", Month: "#FFB74D", Future: "#FFCC02"},
	},
	Work: {
		Color: "#3F51B5", Emoji: "💼", Label: "Work", ThemeName: "indigo",
		Buckets: Buckets{Today: "#303F9F", Week: "#3F51B5", Month: "#7986CB", Future: "#C5CAE9"},
	},
	Achievement: {
		Color: "#FFC107", Emoji: "🏆", Label: "Achievement", ThemeName: "amber",
		Buckets: Buckets{Today: "#FFA000", Week: "#FFC107", Month: "#FFD54F", Future: "#FFECB3"},
	},
	Event: {
		Color: "#9C27B0", Emoji: "📌", Label: "Event", ThemeName: "purple",
		Buckets: Buckets{Today: "#7B1FA2", Week: "#9C27B0", Month: "#BA68C8", Future: "#E1BEE7"},
	},
	Other: {
		Color: "#2196F3", Emoji: "📅", Label: "Other", ThemeName: "blue",
		Buckets: Universal,
	},
}

// ThemeFor returns the theme of c, or the Other theme for unknown categories.
func ThemeFor(c Category) Theme {
	if t, ok := themes[c]; ok {
		return t
	}
	return themes[Other]
}

// categoryOf reads the category attribute, defaulting to Other.
func categoryOf(e hass.Entity) Category {
	if v, ok := e.Attributes.String(config.AttrCategory); ok {
		if v = strings.TrimSpace(v); v != "" {
			return Category(v)
		}
	}
	return Other
}
