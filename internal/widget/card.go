// Package widget turns the cards pipeline into card instances: each Card owns a
// resolved configuration and the latest snapshot, renders through its variant
// descriptor when either changes, and hands the view to a Sink.
package widget

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/tartampluch/anniversary-cards/internal/cards"
	"github.com/tartampluch/anniversary-cards/internal/config"
	"github.com/tartampluch/anniversary-cards/internal/hass"
)

// Card is one configured card instance. It renders once both a configuration and a
// snapshot have been set, and again after every change of either, debounced.
type Card struct {
	id     string
	desc   Descriptor
	policy cards.VariantPolicy
	base   cards.WidgetConfig

	sink     Sink
	recorder Recorder
	now      func() time.Time
	sched    *Scheduler
	log      *slog.Logger

	mu     sync.RWMutex
	cfg    *cards.WidgetConfig
	snap   *hass.Snapshot
	latest *View
}

// CardOption customizes a Card.
type CardOption func(*Card)

// WithSink sets the destination of rendered views.
func WithSink(s Sink) CardOption { return func(c *Card) { c.sink = s } }

// WithRecorder sets the render observer.
func WithRecorder(r Recorder) CardOption { return func(c *Card) { c.recorder = r } }

// WithClock sets the time source used for calendar months and timestamps.
func WithClock(now func() time.Time) CardOption { return func(c *Card) { c.now = now } }

// WithDefaults sets the option defaults, e.g. the host locale.
func WithDefaults(base cards.WidgetConfig) CardOption { return func(c *Card) { c.base = base } }

// WithDelay sets the debounce delay.
func WithDelay(d time.Duration) CardOption {
	return func(c *Card) { c.sched = NewScheduler(d) }
}

// NewCard creates an unconfigured card of a registered type.
func (r *Registry) NewCard(id, typ string, opts ...CardOption) (*Card, error) {
	d, ok := r.Lookup(typ)
	if !ok {
		return nil, fmt.Errorf("%s: %q", config.ErrCardType, typ)
	}
	c := &Card{
		id:     id,
		desc:   d,
		policy: d.Policy(),
		base:   cards.DefaultConfig(),
		now:    time.Now,
		sched:  NewScheduler(config.RenderDelay),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = slog.With(
		config.LogKeyComponent, config.CompWidget,
		config.LogKeyCard, id,
		config.LogKeyCardType, typ,
	)
	return c, nil
}

// ID returns the card instance id.
func (c *Card) ID() string { return c.id }

// Type returns the card type.
func (c *Card) Type() string { return c.desc.Type }

// Policy returns the variant policy of the card.
func (c *Card) Policy() cards.VariantPolicy { return c.policy }

// SetConfig validates and stores the card options. A nil map is rejected, as is a
// details card without an entity. The previous configuration stays on error.
func (c *Card) SetConfig(raw map[string]any) error {
	cfg, err := ParseOptions(raw, c.policy, c.base)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.cfg = &cfg
	ready := c.snap != nil
	c.mu.Unlock()

	if ready {
		c.sched.Schedule(c.render)
	}
	return nil
}

// SetState stores the latest snapshot.
func (c *Card) SetState(snap hass.Snapshot) {
	c.mu.Lock()
	c.snap = &snap
	ready := c.cfg != nil
	c.mu.Unlock()

	if ready {
		c.sched.Schedule(c.render)
	}
}

// Config returns the resolved configuration, if set.
func (c *Card) Config() (cards.WidgetConfig, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.cfg == nil {
		return cards.WidgetConfig{}, false
	}
	return *c.cfg, true
}

// Latest returns the last rendered view.
func (c *Card) Latest() (View, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.latest == nil {
		return View{}, false
	}
	return *c.latest, true
}

// Flush runs a pending render synchronously. It reports whether one ran.
func (c *Card) Flush() bool { return c.sched.Flush() }

// Close drops any pending render.
func (c *Card) Close() { c.sched.Cancel() }

// render reads the current config and snapshot together and publishes one view.
func (c *Card) render() {
	c.mu.RLock()
	if c.cfg == nil || c.snap == nil {
		c.mu.RUnlock()
		c.log.Debug(config.MsgRenderSkipped)
		return
	}
	cfg, snap := *c.cfg, *c.snap
	c.mu.RUnlock()

	start := time.Now()
	now := c.now()
	v := c.desc.Build(snap, cfg, c.policy, now)
	v.CardID = c.id
	v.Type = c.desc.Type
	v.Title = cfg.Title
	v.Config = cfg
	v.RenderedAt = now
	if v.Records == nil {
		v.Records = []cards.DisplayRecord{}
	}
	elapsed := time.Since(start)

	c.mu.Lock()
	c.latest = &v
	c.mu.Unlock()

	if c.recorder != nil {
		c.recorder.ObserveRender(c.id, c.desc.Type, elapsed, len(v.Records))
	}
	c.log.Debug(config.MsgRenderDone,
		config.LogKeyRecords, len(v.Records),
		config.LogKeyDuration, elapsed.Milliseconds(),
	)

	if c.sink != nil {
		if err := c.sink.Publish(context.Background(), v); err != nil {
			c.log.Warn(config.MsgPublishFailed, config.LogKeyError, err)
		}
	}
}
