// Package app wires the service: the sensor generator feeds every card of the board
// and the calendar feed, rendered views go to the push hub, and a background worker
// resynchronizes on a ticker.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/tartampluch/anniversary-cards/internal/cards"
	"github.com/tartampluch/anniversary-cards/internal/config"
	"github.com/tartampluch/anniversary-cards/internal/feed"
	"github.com/tartampluch/anniversary-cards/internal/metrics"
	"github.com/tartampluch/anniversary-cards/internal/sensor"
	"github.com/tartampluch/anniversary-cards/internal/server"
	"github.com/tartampluch/anniversary-cards/internal/websocket"
	"github.com/tartampluch/anniversary-cards/internal/widget"
	"github.com/zalando/go-keyring"
)

// App holds the running service.
type App struct {
	Board     *widget.Board
	Hub       *websocket.Hub
	Metrics   *metrics.Manager
	Server    *server.Server
	Generator *sensor.Generator

	mu         sync.RWMutex
	cfg        *config.App
	configChan chan struct{}
	log        *slog.Logger
}

type options struct {
	clock     sensor.Clock
	fetcher   sensor.Fetcher
	cardOpts  []widget.CardOption
	noRuntime bool
}

// Option customizes New.
type Option func(*options)

// WithClock sets the clock used for "today" and render timestamps.
func WithClock(c sensor.Clock) Option { return func(o *options) { o.clock = c } }

// WithFetcher replaces the HTTP fetcher of the web and states sources.
func WithFetcher(f sensor.Fetcher) Option { return func(o *options) { o.fetcher = f } }

// WithCardOptions appends options to every card, e.g. a debounce delay.
func WithCardOptions(opts ...widget.CardOption) Option {
	return func(o *options) { o.cardOpts = append(o.cardOpts, opts...) }
}

// WithoutRuntimeMetrics leaves the Go runtime collectors out of the registry.
func WithoutRuntimeMetrics() Option { return func(o *options) { o.noRuntime = true } }

// New builds the service from a validated configuration.
func New(cfg *config.App, opts ...Option) (*App, error) {
	o := options{clock: sensor.RealClock{}}
	for _, opt := range opts {
		opt(&o)
	}
	if o.fetcher == nil {
		o.fetcher = sensor.NewHTTPFetcher()
	}

	var mopts []metrics.Option
	if !o.noRuntime {
		mopts = append(mopts, metrics.WithRuntimeCollectors())
	}
	m, err := metrics.NewManager(mopts...)
	if err != nil {
		return nil, err
	}

	hub := websocket.NewHub(websocket.WithClientObserver(m.SetClients))

	base := cards.DefaultConfig()
	base.Locale = cfg.Locale
	cardOpts := append([]widget.CardOption{
		widget.WithSink(hub),
		widget.WithRecorder(m),
		widget.WithClock(o.clock.Now),
		widget.WithDefaults(base),
	}, o.cardOpts...)

	board, err := buildBoard(cfg.Cards, cardOpts)
	if err != nil {
		return nil, err
	}

	a := &App{
		Board:     board,
		Hub:       hub,
		Metrics:   m,
		Generator: &sensor.Generator{Clock: o.clock, Fetcher: o.fetcher},
		Server: server.New(cfg.Port,
			server.WithBindAddr(cfg.BindAddress),
			server.WithCards(board),
			server.WithPush(websocket.HandleWebSocket(hub)),
			server.WithMetrics(m.Handler()),
		),
		cfg:        cfg,
		configChan: make(chan struct{}, config.ChannelBufferSize),
		log:        slog.With(config.LogKeyComponent, config.CompApp),
	}
	return a, nil
}

func buildBoard(instances []config.CardInstance, opts []widget.CardOption) (*widget.Board, error) {
	reg := widget.NewRegistry()
	if err := widget.RegisterDefaults(reg); err != nil {
		return nil, err
	}

	board := widget.NewBoard()
	for _, in := range instances {
		c, err := reg.NewCard(in.ID, in.Type, opts...)
		if err != nil {
			return nil, fmt.Errorf("%s %q: %w", config.ErrCardSetup, in.ID, err)
		}
		if err := c.SetConfig(cardOptions(in)); err != nil {
			return nil, fmt.Errorf("%s %q: %w", config.ErrCardSetup, in.ID, err)
		}
		if err := board.Add(c); err != nil {
			return nil, err
		}
	}
	return board, nil
}

// cardOptions returns the raw options of an instance. Omitted options mean defaults.
func cardOptions(in config.CardInstance) map[string]any {
	if in.Options == nil {
		return map[string]any{}
	}
	return in.Options
}

// Config returns the current configuration.
func (a *App) Config() *config.App {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.cfg
}

// Run starts the background worker and serves HTTP until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	defer a.Board.Close()
	go a.backgroundWorker(ctx)
	return a.Server.Start(ctx)
}

// Reload applies a new configuration. Card options and the refresh interval change
// live; new or retyped cards need a restart.
func (a *App) Reload(cfg *config.App) {
	a.mu.Lock()
	a.cfg = cfg
	a.mu.Unlock()

	for _, in := range cfg.Cards {
		c, ok := a.Board.Card(in.ID)
		if !ok || c.Type() != in.Type {
			a.log.Warn(config.MsgCardRestart, config.LogKeyCard, in.ID, config.LogKeyCardType, in.Type)
			continue
		}
		if err := c.SetConfig(cardOptions(in)); err != nil {
			a.log.Warn(config.MsgCardRejected, config.LogKeyCard, in.ID, config.LogKeyError, err)
		}
	}

	a.log.Info(config.MsgConfigReloaded)
	select {
	case a.configChan <- struct{}{}:
	default:
	}
}

func (a *App) interval() time.Duration {
	val := a.Config().RefreshMinutes
	if val <= 0 {
		val = config.DefaultRefreshMin
	}
	return time.Duration(val) * time.Minute
}

// backgroundWorker manages the periodic synchronization schedule.
func (a *App) backgroundWorker(ctx context.Context) {
	log := slog.With(config.LogKeyComponent, config.CompWorker)

	_ = a.Sync(ctx)

	currentDuration := a.interval()
	ticker := time.NewTicker(currentDuration)
	defer ticker.Stop()

	log.Info(config.MsgWorkerStart, config.LogKeyInterval, currentDuration)

	for {
		select {
		case <-ctx.Done():
			log.Info(config.MsgWorkerStop)
			return

		case <-a.configChan:
			newDuration := a.interval()
			if newDuration != currentDuration {
				log.Info(config.MsgUpdateSync, config.LogKeyOld, currentDuration, config.LogKeyNew, newDuration)
				currentDuration = newDuration
				ticker.Reset(currentDuration)
			}
			_ = a.Sync(ctx)

		case <-ticker.C:
			_ = a.Sync(ctx)
		}
	}
}

// Sync runs the pipeline once: generate the snapshot, push it to every card and
// rebuild the calendar feed. Failures are logged and counted; the previous snapshot
// and feed stay in place.
func (a *App) Sync(ctx context.Context) error {
	cfg := a.Config()
	a.log.Info(config.MsgSyncReq, config.LogKeyMode, cfg.SourceMode)

	res, err := a.Generator.RunSync(ctx, a.syncConfig(cfg))
	if err != nil {
		a.Metrics.RecordSync(err, 0)
		a.log.Error(config.MsgSyncFailed, config.LogKeyError, err)
		return err
	}

	a.Board.SetState(res.Snapshot)

	fc := cards.DefaultConfig()
	fc.Locale = cfg.Locale
	records := cards.Project(res.Snapshot, fc, cards.StatsPolicy())
	ics, err := feed.Build(records, a.Generator.Clock.Now(), cfg.Trigger())
	if err != nil {
		a.Metrics.RecordSync(err, 0)
		a.log.Error(config.MsgSyncFailed, config.LogKeyError, err)
		return err
	}
	a.Server.Update(ics)

	a.Metrics.RecordSync(nil, res.Snapshot.Len())
	a.log.Info(config.MsgSyncFinished,
		config.LogKeyFound, res.Snapshot.Len(),
		config.LogKeyRecords, len(records),
		config.LogKeyToday, res.Today,
	)
	return nil
}

// syncConfig assembles the generator configuration, reading the CardDAV password or
// the Home Assistant token from the OS keyring.
func (a *App) syncConfig(cfg *config.App) sensor.SyncConfig {
	sc := sensor.SyncConfig{
		Mode:       cfg.SourceMode,
		LocalPath:  cfg.LocalPath,
		WebURL:     cfg.WebURL,
		WebUser:    cfg.WebUser,
		StatesPath: cfg.StatesPath,
		StatesURL:  cfg.StatesURL,
		Options: sensor.Options{
			SummarySensor:   cfg.SummarySensor,
			HalfAnniversary: cfg.HalfAnniversary,
		},
	}

	switch {
	case sc.Mode == config.SourceModeWeb && sc.WebUser != "":
		if p, err := keyring.Get(config.KeyringService, sc.WebUser); err == nil {
			sc.WebPass = p
		} else {
			a.log.Debug(config.MsgPassFail,
				config.LogKeyUser, sc.WebUser,
				config.LogKeyError, err)
		}
	case sc.Mode == config.SourceModeStates && sc.StatesURL != "":
		if tok, err := keyring.Get(config.KeyringService, config.KeyringTokenUser); err == nil {
			sc.StatesAuth = tok
		} else {
			a.log.Debug(config.MsgTokenFail, config.LogKeyError, err)
		}
	}
	return sc
}

// StorePassword saves the CardDAV password of user in the OS keyring.
func StorePassword(user, password string) error {
	return keyring.Set(config.KeyringService, user, password)
}

// StoreToken saves the Home Assistant access token in the OS keyring.
func StoreToken(token string) error {
	return keyring.Set(config.KeyringService, config.KeyringTokenUser, token)
}
