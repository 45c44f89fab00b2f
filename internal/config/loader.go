package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// CardInstance declares one card to run: a unique id, a registered card type and its
// raw options (the same keys a dashboard would pass to the card).
type CardInstance struct {
	ID      string         `koanf:"id" json:"id"`
	Type    string         `koanf:"type" json:"type"`
	Options map[string]any `koanf:"options" json:"options,omitempty"`
}

// App is the runtime configuration of the service.
type App struct {
	LogLevel        string         `koanf:"log_level"`
	Port            string         `koanf:"port"`
	BindAddress     string         `koanf:"bind_address"`
	Locale          string         `koanf:"locale"`
	SourceMode      string         `koanf:"source_mode"`
	LocalPath       string         `koanf:"local_path"`
	WebURL          string         `koanf:"web_url"`
	WebUser         string         `koanf:"web_user"`
	StatesPath      string         `koanf:"states_path"`
	StatesURL       string         `koanf:"states_url"`
	RefreshMinutes  int            `koanf:"refresh_interval_min"`
	ReminderTrigger string         `koanf:"reminder_trigger"`
	ReminderValue   int            `koanf:"reminder_value"`
	ReminderUnit    string         `koanf:"reminder_unit"`
	ReminderAfter   bool           `koanf:"reminder_after"`
	SummarySensor   bool           `koanf:"summary_sensor"`
	HalfAnniversary bool           `koanf:"half_anniversary"`
	Cards           []CardInstance `koanf:"cards"`
}

// Defaults returns the built-in configuration: a local source and one timeline card.
func Defaults() *App {
	return &App{
		LogLevel:       DefaultLogLevel,
		Port:           DefaultPort,
		BindAddress:    LocalhostBindAddr,
		Locale:         DefaultLocale,
		SourceMode:     SourceModeLocal,
		RefreshMinutes: DefaultRefreshMin,
		SummarySensor:  true,
		Cards: []CardInstance{
			{ID: CardTimeline, Type: CardTimeline},
		},
	}
}

// Load builds an App by layering defaults, an optional YAML file and env vars.
// Order of precedence (low -> high):
//  1. Defaults()
//  2. file (YAML): path, or ANNIVERSARY_CONFIG when path is empty
//  3. env (prefix ANNIVERSARY_)
func Load(path string) (*App, error) {
	base := Defaults()
	k := koanf.New(KoanfDelimiter)

	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%s: %w", ErrConfigFile, err)
		}
	}

	// ANNIVERSARY_SOURCE_MODE -> source_mode (flat keys, underscores preserved).
	envPrefix := strings.ToLower(EnvPrefix)
	envProvider := env.Provider(EnvPrefix, KoanfDelimiter, func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), envPrefix)
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrConfigEnv, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: KoanfTag}); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrConfigLoad, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Watch reloads the file at path on every change and hands the result to fn.
// Edits that fail to load are logged and skipped. The returned function stops
// watching.
func Watch(path string, fn func(*App)) (func() error, error) {
	log := slog.With(LogKeyComponent, CompConfig)
	f := file.Provider(path)
	err := f.Watch(func(_ any, err error) {
		if err != nil {
			log.Error(ErrConfigWatch, LogKeyError, err)
			return
		}
		cfg, err := Load(path)
		if err != nil {
			log.Warn(ErrConfigLoad, LogKeyFile, path, LogKeyError, err)
			return
		}
		fn(cfg)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrConfigWatch, err)
	}
	return f.Unwatch, nil
}

// Trigger returns the VALARM trigger of the calendar feed: reminder_trigger
// verbatim when set, else an ISO 8601 duration built from reminder_value and
// reminder_unit. Empty means no alarm.
func (a *App) Trigger() string {
	if a.ReminderTrigger != "" {
		return a.ReminderTrigger
	}
	if a.ReminderValue <= 0 {
		return ""
	}

	sign := ISONegativePrefix
	if a.ReminderAfter {
		sign = ISOPeriodPrefix
	}
	switch a.ReminderUnit {
	case UnitHours:
		return fmt.Sprintf("%sT%d%s", sign, a.ReminderValue, ISOHour)
	case UnitMinutes:
		return fmt.Sprintf("%sT%d%s", sign, a.ReminderValue, ISOMinute)
	default:
		return fmt.Sprintf("%s%d%s", sign, a.ReminderValue, ISODay)
	}
}

// Validate checks the fields that cannot be defaulted sensibly.
func (a *App) Validate() error {
	if err := ValidatePort(a.Port); err != nil {
		return err
	}
	if _, err := ParseLogLevel(a.LogLevel); err != nil {
		return err
	}
	switch a.SourceMode {
	case SourceModeLocal, SourceModeWeb, SourceModeStates:
	default:
		return fmt.Errorf("%s: %q", ErrModeUnsupport, a.SourceMode)
	}

	seen := make(map[string]struct{}, len(a.Cards))
	for _, c := range a.Cards {
		if c.ID == "" {
			return errors.New(ErrCardIDEmpty)
		}
		if _, dup := seen[c.ID]; dup {
			return fmt.Errorf("%s: %q", ErrCardIDDuplicate, c.ID)
		}
		seen[c.ID] = struct{}{}
	}
	return nil
}

// ValidatePort checks that p is a TCP port number.
func ValidatePort(p string) error {
	if p == "" {
		return errors.New(ErrPortRequired)
	}
	n, err := strconv.Atoi(p)
	if err != nil {
		return errors.New(ErrPortNumber)
	}
	if n < MinPort || n > MaxPort {
		return errors.New(ErrPortRange)
	}
	return nil
}

// ParseLogLevel maps debug/info/warn/error to a slog level.
func ParseLogLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("%s: %q", ErrLogLevel, s)
	}
	return lvl, nil
}
