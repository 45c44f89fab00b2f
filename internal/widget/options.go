package widget

import (
	"errors"
	"fmt"
	"strings"

	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/v2"
	"github.com/tartampluch/anniversary-cards/internal/cards"
	"github.com/tartampluch/anniversary-cards/internal/config"
	"github.com/tartampluch/anniversary-cards/internal/datefmt"
)

// Configuration errors returned by SetConfig.
var (
	ErrInvalidConfig  = errors.New(config.ErrInvalidConfig)
	ErrEntityRequired = errors.New(config.ErrEntityRequired)
)

// ParseOptions coerces raw card options onto base. Options of the wrong shape are
// converted where possible ("3" for max_items, a single string for a list).
func ParseOptions(raw map[string]any, policy cards.VariantPolicy, base cards.WidgetConfig) (cards.WidgetConfig, error) {
	if raw == nil {
		return cards.WidgetConfig{}, ErrInvalidConfig
	}

	k := koanf.New(config.KoanfDelimiter)
	if err := k.Load(confmap.Provider(raw, config.KoanfDelimiter), nil); err != nil {
		return cards.WidgetConfig{}, fmt.Errorf("%s: %w", config.ErrCardOptions, err)
	}

	cfg := base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: config.KoanfTag}); err != nil {
		return cards.WidgetConfig{}, fmt.Errorf("%s: %w", config.ErrCardOptions, err)
	}

	cfg.Entity = strings.TrimSpace(cfg.Entity)
	if policy.RequireEntity && cfg.Entity == "" {
		return cards.WidgetConfig{}, ErrEntityRequired
	}
	if cfg.Title == "" {
		cfg.Title = policy.DefaultTitle
	}
	if cfg.MaxItems <= 0 {
		cfg.MaxItems = config.DefaultMaxItems
	}
	cfg.DateFormat = string(datefmt.ParseStyle(cfg.DateFormat))
	if cfg.Locale == "" {
		cfg.Locale = base.Locale
	}
	return cfg, nil
}
