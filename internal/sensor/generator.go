// Package sensor builds anniversary sensor entities from vCard address books, or
// loads them from a recorded state dump.
package sensor

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/emersion/go-vcard"
	"github.com/tartampluch/anniversary-cards/internal/cards"
	"github.com/tartampluch/anniversary-cards/internal/config"
	"github.com/tartampluch/anniversary-cards/internal/hass"
)

// SyncConfig contains all parameters of one synchronization.
type SyncConfig struct {
	Mode       string // config.SourceModeLocal, SourceModeWeb or SourceModeStates
	LocalPath  string // path to the .vcf file
	WebURL     string // CardDAV or WebDAV URL
	WebUser    string
	WebPass    string
	StatesPath string // JSON state dump, states mode only
	StatesURL  string // Home Assistant /api/states endpoint; wins over StatesPath
	StatesAuth string // long-lived access token for StatesURL

	Options
}

// Result is the output of one synchronization.
type Result struct {
	Snapshot hass.Snapshot

	// Anniversaries is empty in states mode.
	Anniversaries []Anniversary

	// Today counts the anniversaries occurring today.
	Today int
}

// Generator reads address books and turns them into sensor entities.
type Generator struct {
	Clock   Clock
	Fetcher Fetcher
}

// RunSync acquires the source and builds the snapshot.
func (g *Generator) RunSync(ctx context.Context, cfg SyncConfig) (Result, error) {
	start := time.Now()
	log := slog.With(
		config.LogKeyComponent, config.CompSensor,
		config.LogKeyMode, cfg.Mode,
	)
	log.InfoContext(ctx, config.MsgSyncStarted)

	if cfg.Mode == config.SourceModeStates {
		return g.loadStates(ctx, cfg)
	}

	reader, err := g.acquireStream(ctx, cfg)
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		return Result{}, fmt.Errorf("%s: %w", config.ErrVCardParse, err)
	}
	defer func() { _ = reader.Close() }()

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	list, err := g.parse(ctx, reader)
	if err != nil {
		return Result{}, err
	}

	today := g.Clock.Now()
	res := Result{
		Snapshot:      Entities(list, today, cfg.Options),
		Anniversaries: list,
	}
	for _, a := range list {
		if a.DaysRemaining(today) == 0 {
			res.Today++
			log.Info(config.MsgToday,
				config.LogKeyName, a.Name,
				config.LogKeyDate, a.Date.Format(config.DateFormatFullDash))
		}
	}

	log.Info(config.MsgGenSuccess,
		slog.Group(config.LogKeyStats,
			slog.Int(config.LogKeyFound, len(list)),
			slog.Int(config.LogKeyToday, res.Today),
		),
	)
	log.Debug(config.MsgSyncFinished, config.LogKeyDuration, time.Since(start).Milliseconds())
	return res, nil
}

// acquireStream opens the address book named by the configuration.
func (g *Generator) acquireStream(ctx context.Context, cfg SyncConfig) (io.ReadCloser, error) {
	switch cfg.Mode {
	case config.SourceModeLocal:
		if cfg.LocalPath == "" {
			return nil, errors.New(config.ErrLocalPathEmpty)
		}
		return os.Open(cfg.LocalPath)
	case config.SourceModeWeb:
		if cfg.WebURL == "" {
			return nil, errors.New(config.ErrWebURLEmpty)
		}
		if g.Fetcher == nil {
			return nil, errors.New(config.ErrFetcherMissing)
		}
		return g.Fetcher.Fetch(ctx, Request{
			URL:      cfg.WebURL,
			User:     cfg.WebUser,
			Password: cfg.WebPass,
			Accept:   config.MimeVCard,
		})
	default:
		return nil, fmt.Errorf("%s: %q", config.ErrModeUnsupport, cfg.Mode)
	}
}

// loadStates reads a snapshot from a Home Assistant instance or a recorded dump
// instead of generating one.
func (g *Generator) loadStates(ctx context.Context, cfg SyncConfig) (Result, error) {
	r, source, err := g.openStates(ctx, cfg)
	if err != nil {
		return Result{}, err
	}
	defer func() { _ = r.Close() }()

	snap, err := hass.DecodeSnapshot(r)
	if err != nil {
		return Result{}, err
	}

	res := Result{Snapshot: snap}
	for e := range snap.All() {
		if days, ok := e.DaysRemaining(); ok && days == 0 && !strings.Contains(e.ID, config.SummaryMarker) {
			res.Today++
		}
	}
	slog.Info(config.MsgStatesLoaded,
		config.LogKeyComponent, config.CompSensor,
		config.LogKeyFile, source,
		config.LogKeyCount, snap.Len(),
	)
	return res, nil
}

func (g *Generator) openStates(ctx context.Context, cfg SyncConfig) (io.ReadCloser, string, error) {
	if cfg.StatesURL != "" {
		if g.Fetcher == nil {
			return nil, "", errors.New(config.ErrFetcherMissing)
		}
		r, err := g.Fetcher.Fetch(ctx, Request{
			URL:    cfg.StatesURL,
			Token:  cfg.StatesAuth,
			Accept: config.MimeStates,
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil, "", ctx.Err()
			}
			return nil, "", fmt.Errorf("%s: %w", config.ErrStateOpen, err)
		}
		return r, cfg.StatesURL, nil
	}

	if cfg.StatesPath == "" {
		return nil, "", errors.New(config.ErrStatesPathEmpty)
	}
	f, err := os.Open(cfg.StatesPath)
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", config.ErrStateOpen, err)
	}
	return f, cfg.StatesPath, nil
}

// parse decodes every card and extracts its BDAY and ANNIVERSARY dates.
// Malformed cards and unparseable dates are skipped.
func (g *Generator) parse(ctx context.Context, r io.Reader) ([]Anniversary, error) {
	decoder := vcard.NewDecoder(r)
	var list []Anniversary

	for {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		card, err := decoder.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if errors.Is(err, ErrTooLarge) {
			return nil, fmt.Errorf("%s: %w", config.ErrVCardParse, err)
		}
		if err != nil {
			slog.Warn(config.MsgSkippedCard,
				config.LogKeyComponent, config.CompSensor,
				config.LogKeyError, err)
			continue
		}

		name := config.FallbackName
		if fn := card.Get(config.VCardFN); fn != nil && fn.Value != "" {
			name = fn.Value
		} else if n := card.Get(config.VCardN); n != nil && n.Value != "" {
			name = n.Value
		}

		if a, ok := fromField(card.Get(config.VCardBDAY), name, cards.Birthday); ok {
			list = append(list, a)
		}
		if a, ok := fromField(card.Get(config.VCardAnniversary), name, anniversaryCategory(card)); ok {
			list = append(list, a)
		}
	}
	return list, nil
}

// anniversaryCategory reads the category of an ANNIVERSARY date from CATEGORIES,
// defaulting to anniversary.
func anniversaryCategory(card vcard.Card) cards.Category {
	for _, field := range card[config.VCardCategories] {
		for c := range strings.SplitSeq(field.Value, ",") {
			cat := cards.Category(strings.ToLower(strings.TrimSpace(c)))
			if cat.Known() && cat != cards.Birthday {
				return cat
			}
		}
	}
	return cards.Anniversary
}

func fromField(field *vcard.Field, name string, cat cards.Category) (Anniversary, bool) {
	if field == nil || field.Value == "" {
		return Anniversary{}, false
	}
	date, yearKnown, err := parseDate(field.Value)
	if err != nil {
		slog.Debug(config.MsgSkippedDate,
			config.LogKeyComponent, config.CompSensor,
			config.LogKeyValue, field.Value)
		return Anniversary{}, false
	}

	input := fmt.Sprintf(config.FormatHashInput, name, date.Format(time.RFC3339), cat, config.UIDSalt)
	hash := sha256.Sum256([]byte(input))

	return Anniversary{
		UID:       fmt.Sprintf("%x", hash[:config.UIDHashLength]),
		Name:      name,
		Date:      date,
		YearKnown: yearKnown,
		Category:  cat,
	}, true
}

// parseDate handles full and year-less vCard dates.
func parseDate(value string) (time.Time, bool, error) {
	formatsWithYear := []string{
		config.DateFormatFullDash,
		config.DateFormatFullBasic,
		config.DateFormatRFC3339,
		config.DateFormatFullT,
	}
	for _, f := range formatsWithYear {
		if t, err := time.Parse(f, value); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true, nil
		}
	}

	// Year-less dates land in a leap year so --02-29 survives.
	for _, f := range []string{config.DateFormatNoYearD, config.DateFormatNoYearB} {
		if t, err := time.Parse(f, value); err == nil {
			return time.Date(config.DefaultLeapYear, t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), false, nil
		}
	}

	return time.Time{}, false, errors.New(config.ErrDateParse)
}
