package cards

import (
	"time"

	"github.com/tartampluch/anniversary-cards/internal/config"
	"github.com/tartampluch/anniversary-cards/internal/datefmt"
)

// WidgetConfig is the resolved configuration of one card. Every field is defined:
// options the user did not set carry the values of DefaultConfig.
type WidgetConfig struct {
	Title              string   `koanf:"title" json:"title"`
	Entities           []string `koanf:"entities" json:"entities,omitempty"`
	Entity             string   `koanf:"entity" json:"entity,omitempty"`
	Category           string   `koanf:"category" json:"category,omitempty"`
	Categories         []string `koanf:"categories" json:"categories,omitempty"`
	MaxItems           int      `koanf:"max_items" json:"max_items"`
	ShowIcons          bool     `koanf:"show_icons" json:"show_icons"`
	ColorCoding        bool     `koanf:"color_coding" json:"color_coding"`
	CategoryColors     bool     `koanf:"category_color_scheme" json:"category_color_scheme"`
	ShowCategoryBadges bool     `koanf:"show_category_badges" json:"show_category_badges"`
	DateFormat         string   `koanf:"date_format" json:"date_format"`
	ShowDayOfWeek      bool     `koanf:"show_day_of_week" json:"show_day_of_week"`
	CustomDateFormat   string   `koanf:"custom_date_format" json:"custom_date_format,omitempty"`
	Locale             string   `koanf:"locale" json:"locale"`
	ShowAttributes     []string `koanf:"show_attributes" json:"show_attributes,omitempty"`
	PriorityCategories []string `koanf:"priority_categories" json:"priority_categories,omitempty"`

	// Presentation toggles, passed through to the view.
	GroupByCategory      bool `koanf:"group_by_category" json:"group_by_category"`
	ShowCategoryHeaders  bool `koanf:"show_category_headers" json:"show_category_headers"`
	ShowCategoryStats    bool `koanf:"show_category_stats" json:"show_category_stats"`
	ShowCategoryFilter   bool `koanf:"show_category_filter" json:"show_category_filter"`
	ExpandableCategories bool `koanf:"expandable_categories" json:"expandable_categories"`

	DebugFiltering bool `koanf:"debug_filtering" json:"debug_filtering"`
	Debug          bool `koanf:"debug" json:"debug"`

	// Location interprets next_date; nil means time.Local.
	Location *time.Location `koanf:"-" json:"-"`
}

// DefaultConfig returns the option defaults shared by every card.
func DefaultConfig() WidgetConfig {
	return WidgetConfig{
		MaxItems:            config.DefaultMaxItems,
		ShowIcons:           true,
		ColorCoding:         true,
		CategoryColors:      true,
		ShowCategoryBadges:  true,
		DateFormat:          config.DefaultDateFormat,
		ShowDayOfWeek:       true,
		Locale:              config.DefaultLocale,
		ShowCategoryHeaders: true,
	}
}

// Diagnostic reports whether the filter decisions should be exposed.
func (c WidgetConfig) Diagnostic() bool {
	return c.Debug || c.DebugFiltering
}

// limit returns the truncation bound, treating unset or non-positive values as the default.
func (c WidgetConfig) limit() int {
	if c.MaxItems <= 0 {
		return config.DefaultMaxItems
	}
	return c.MaxItems
}

// formatter builds the date formatter described by the config.
func (c WidgetConfig) formatter() *datefmt.Formatter {
	locale := c.Locale
	if locale == "" {
		locale = config.DefaultLocale
	}
	return datefmt.New(datefmt.Options{
		Style:         datefmt.ParseStyle(c.DateFormat),
		Pattern:       c.CustomDateFormat,
		ShowDayOfWeek: c.ShowDayOfWeek,
		Locale:        locale,
		Location:      c.Location,
	})
}

// categoryFilter returns the accepted categories, or nil when every category passes.
func (c WidgetConfig) categoryFilter() map[Category]struct{} {
	if c.Category == "" && len(c.Categories) == 0 {
		return nil
	}
	set := make(map[Category]struct{}, len(c.Categories)+1)
	if c.Category != "" {
		set[Category(c.Category)] = struct{}{}
	}
	for _, cat := range c.Categories {
		set[Category(cat)] = struct{}{}
	}
	return set
}
