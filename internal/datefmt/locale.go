package datefmt

import (
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/tartampluch/anniversary-cards/internal/config"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

// names holds the calendar vocabulary of one language.
type names struct {
	tag           language.Tag
	months        [12]string
	monthsShort   [12]string
	weekdays      [7]string
	weekdaysShort [7]string
	weekdaysMin   [7]string
	localizer     *i18n.Localizer
}

// catalog is the process-wide set of embedded locales.
type catalog struct {
	bundle  *i18n.Bundle
	tags    []language.Tag
	matcher language.Matcher

	mu    sync.RWMutex
	cache map[language.Tag]*names
}

var (
	catalogOnce sync.Once
	shared      *catalog
)

// loadCatalog parses the embedded locale files exactly once.
func loadCatalog() *catalog {
	catalogOnce.Do(func() {
		bundle := i18n.NewBundle(language.English)
		bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

		entries, err := localeFS.ReadDir("locales")
		if err != nil {
			slog.Error(config.ErrLocalesAccess,
				config.LogKeyComponent, config.CompDateFmt,
				config.LogKeyError, err,
			)
		}

		for _, entry := range entries {
			name := entry.Name()
			if !strings.HasPrefix(name, "active.") || !strings.HasSuffix(name, ".json") {
				slog.Debug(config.MsgLocaleSkip,
					config.LogKeyComponent, config.CompDateFmt,
					config.LogKeyFile, name,
				)
				continue
			}
			if _, err := bundle.LoadMessageFileFS(localeFS, "locales/"+name); err != nil {
				slog.Error(config.ErrLocaleLoad,
					config.LogKeyComponent, config.CompDateFmt,
					config.LogKeyFile, name,
					config.LogKeyError, err,
				)
			}
		}

		// English first so the matcher falls back to it.
		tags := []language.Tag{language.English}
		for _, t := range bundle.LanguageTags() {
			if t.String() != language.English.String() {
				tags = append(tags, t)
			}
		}

		shared = &catalog{
			bundle:  bundle,
			tags:    tags,
			matcher: language.NewMatcher(tags),
			cache:   make(map[language.Tag]*names),
		}
	})
	return shared
}

// Languages lists the embedded languages, English first.
func Languages() []string {
	c := loadCatalog()
	out := make([]string, len(c.tags))
	for i, t := range c.tags {
		out[i] = t.String()
	}
	return out
}

// Match resolves a BCP 47 locale such as "en-US" or "fr_CA" to an embedded language.
// Unparsable or unsupported locales resolve to English.
func Match(locale string) language.Tag {
	c := loadCatalog()
	locale = strings.ReplaceAll(strings.TrimSpace(locale), "_", "-")
	if locale == "" {
		return language.English
	}
	requested, err := language.Parse(locale)
	if err != nil {
		return language.English
	}
	_, idx, confidence := c.matcher.Match(requested)
	if confidence == language.No {
		return language.English
	}
	return c.tags[idx]
}

// lookup returns the vocabulary of the given language, loading it on first use.
func (c *catalog) lookup(tag language.Tag) (*names, error) {
	c.mu.RLock()
	n, ok := c.cache[tag]
	c.mu.RUnlock()
	if ok {
		return n, nil
	}

	n = &names{tag: tag, localizer: i18n.NewLocalizer(c.bundle, tag.String())}
	var err error
	for i := 0; i < 12; i++ {
		if n.months[i], err = n.msg(fmt.Sprintf(config.TKeyMonth, i+1)); err != nil {
			return nil, err
		}
		if n.monthsShort[i], err = n.msg(fmt.Sprintf(config.TKeyMonthShort, i+1)); err != nil {
			return nil, err
		}
	}
	for i := 0; i < 7; i++ {
		if n.weekdays[i], err = n.msg(fmt.Sprintf(config.TKeyWeekday, i)); err != nil {
			return nil, err
		}
		if n.weekdaysShort[i], err = n.msg(fmt.Sprintf(config.TKeyWeekdayShort, i)); err != nil {
			return nil, err
		}
		if n.weekdaysMin[i], err = n.msg(fmt.Sprintf(config.TKeyWeekdayMin, i)); err != nil {
			return nil, err
		}
	}

	c.mu.Lock()
	c.cache[tag] = n
	c.mu.Unlock()
	return n, nil
}

// msg localizes a plain message id.
func (n *names) msg(id string) (string, error) {
	return n.render(id, nil)
}

// render localizes a message id with template data.
// A message missing from the selected language is an error, not an English fallback.
func (n *names) render(id string, data map[string]any) (string, error) {
	out, tag, err := n.localizer.LocalizeWithTag(&i18n.LocalizeConfig{
		MessageID:    id,
		TemplateData: data,
	})
	if err != nil {
		slog.Debug(config.MsgTransMissing,
			config.LogKeyComponent, config.CompDateFmt,
			config.LogKeyKey, id,
			config.LogKeyLang, n.tag.String(),
			config.LogKeyError, err,
		)
		return "", err
	}
	if tag.String() != n.tag.String() {
		return "", fmt.Errorf("%s: %s (%s)", config.ErrLocaleIncomplete, id, n.tag)
	}
	return out, nil
}
