package widget_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/anniversary-cards/internal/cards"
	"github.com/tartampluch/anniversary-cards/internal/config"
	"github.com/tartampluch/anniversary-cards/internal/hass"
	"github.com/tartampluch/anniversary-cards/internal/widget"
)

// -----------------------------------------------------------------------------
// Mocks
// -----------------------------------------------------------------------------

// recordingSink keeps every published view.
type recordingSink struct {
	mu    sync.Mutex
	views []widget.View
	err   error
}

func (s *recordingSink) Publish(_ context.Context, v widget.View) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.views = append(s.views, v)
	return s.err
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.views)
}

// MockRecorder observes renders through testify/mock.
type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) ObserveRender(cardID, cardType string, d time.Duration, records int) {
	m.Called(cardID, cardType, d, records)
}

// -----------------------------------------------------------------------------
// Fixtures
// -----------------------------------------------------------------------------

func entity(id, state, category, nextDate string) hass.Entity {
	return hass.Entity{
		ID:    id,
		State: state,
		Attributes: hass.Attributes{
			"friendly_name": id,
			"next_date":     nextDate,
			"current_years": 7,
			"category":      category,
			"zodiac_sign":   "Leo",
			"is_milestone":  false,
		},
	}
}

func fixture() hass.Snapshot {
	return hass.NewSnapshot(
		entity("sensor.ada", "0", "birthday", "2025-06-15"),
		entity("sensor.wedding", "5", "anniversary", "2025-06-20"),
		entity("sensor.xmas", "193", "holiday", "2025-12-25"),
	)
}

func newRegistry(t *testing.T) *widget.Registry {
	t.Helper()
	reg := widget.NewRegistry()
	require.NoError(t, widget.RegisterDefaults(reg))
	return reg
}

var fixedNow = time.Date(2025, time.June, 15, 9, 0, 0, 0, time.UTC)

func newCard(t *testing.T, typ string, sink widget.Sink, opts ...widget.CardOption) *widget.Card {
	t.Helper()
	base := cards.DefaultConfig()
	base.Location = time.UTC
	opts = append([]widget.CardOption{
		widget.WithSink(sink),
		widget.WithDelay(time.Hour), // renders only happen on Flush
		widget.WithClock(func() time.Time { return fixedNow }),
		widget.WithDefaults(base),
	}, opts...)
	c, err := newRegistry(t).NewCard("test-"+typ, typ, opts...)
	require.NoError(t, err)
	return c
}

// -----------------------------------------------------------------------------
// Test Cases
// -----------------------------------------------------------------------------

func TestRegistry_ExplicitRegistration(t *testing.T) {
	reg := widget.NewRegistry()
	_, ok := reg.Lookup(config.CardTimeline)
	assert.False(t, ok, "nothing is registered before the host asks")

	require.NoError(t, widget.RegisterDefaults(reg))
	var types []string
	for _, d := range reg.Descriptors() {
		types = append(types, d.Type)
	}
	assert.Equal(t, []string{"timeline", "birthday", "holiday", "stats", "calendar", "details"}, types)

	err := reg.Register(widget.Descriptor{Type: config.CardTimeline})
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.ErrCardDuplicate)

	_, err = reg.NewCard("x", "carousel")
	assert.ErrorContains(t, err, config.ErrCardType)
}

func TestCard_SetConfigValidation(t *testing.T) {
	sink := &recordingSink{}

	timeline := newCard(t, config.CardTimeline, sink)
	assert.ErrorIs(t, timeline.SetConfig(nil), widget.ErrInvalidConfig)

	details := newCard(t, config.CardDetails, sink)
	err := details.SetConfig(map[string]any{"title": "Ada"})
	require.ErrorIs(t, err, widget.ErrEntityRequired)
	assert.Equal(t, "you need to define an entity", err.Error())
	require.NoError(t, details.SetConfig(map[string]any{"entity": "sensor.ada"}))

	err = timeline.SetConfig(map[string]any{"max_items": "many"})
	assert.ErrorContains(t, err, config.ErrCardOptions)
	_, set := timeline.Config()
	assert.False(t, set, "a rejected config is not stored")
}

func TestParseOptions_Coercion(t *testing.T) {
	base := cards.DefaultConfig()
	base.Locale = "fr-FR"

	cfg, err := widget.ParseOptions(map[string]any{
		"max_items":        "3",
		"entities":         "sensor.ada",
		"show_icons":       "false",
		"date_format":      "FANCY",
		"show_attributes":  []any{"generation", "zodiac_sign"},
		"categories":       []string{"work"},
		"debug_filtering":  true,
		"unknown_toggle":   1,
		"show_day_of_week": false,
	}, cards.BirthdayPolicy(), base)
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.MaxItems)
	assert.Equal(t, []string{"sensor.ada"}, cfg.Entities)
	assert.False(t, cfg.ShowIcons)
	assert.Equal(t, "long", cfg.DateFormat)
	assert.Equal(t, []string{"generation", "zodiac_sign"}, cfg.ShowAttributes)
	assert.Equal(t, []string{"work"}, cfg.Categories)
	assert.True(t, cfg.Diagnostic())
	assert.False(t, cfg.ShowDayOfWeek)
	assert.Equal(t, config.TitleBirthday, cfg.Title)
	assert.Equal(t, "fr-FR", cfg.Locale, "host locale is the default")

	// Untouched options keep their defaults.
	assert.True(t, cfg.ColorCoding)
	assert.True(t, cfg.CategoryColors)
	assert.True(t, cfg.ShowCategoryBadges)

	cfg, err = widget.ParseOptions(map[string]any{"max_items": 0, "locale": "de"}, cards.TimelinePolicy(), base)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultMaxItems, cfg.MaxItems)
	assert.Equal(t, "de", cfg.Locale)
}

func TestCard_RendersOnlyWhenReady(t *testing.T) {
	sink := &recordingSink{}
	c := newCard(t, config.CardTimeline, sink)

	require.NoError(t, c.SetConfig(map[string]any{}))
	assert.False(t, c.Flush(), "no snapshot yet")

	c.SetState(fixture())
	assert.True(t, c.Flush())
	require.Equal(t, 1, sink.count())

	v := sink.views[0]
	assert.Equal(t, "test-timeline", v.CardID)
	assert.Equal(t, config.CardTimeline, v.Type)
	assert.Equal(t, config.TitleTimeline, v.Title)
	assert.Equal(t, fixedNow, v.RenderedAt)
	require.Len(t, v.Records, 3)
	assert.Equal(t, "sensor.ada", v.Records[0].EntityID)
	assert.Nil(t, v.Diagnostics)

	latest, ok := c.Latest()
	require.True(t, ok)
	assert.Equal(t, v.Records, latest.Records)
}

func TestCard_BurstCoalescesIntoOneRender(t *testing.T) {
	sink := &recordingSink{}
	c := newCard(t, config.CardTimeline, sink)

	c.SetState(fixture())
	require.NoError(t, c.SetConfig(map[string]any{"max_items": 1}))
	c.SetState(fixture())
	require.NoError(t, c.SetConfig(map[string]any{"max_items": 2}))

	assert.True(t, c.Flush())
	assert.False(t, c.Flush())
	require.Equal(t, 1, sink.count())
	assert.Len(t, sink.views[0].Records, 2, "the render sees the latest config")
}

func TestCard_DefaultDelayRendersAsynchronously(t *testing.T) {
	sink := &recordingSink{}
	c, err := newRegistry(t).NewCard("async", config.CardTimeline, widget.WithSink(sink))
	require.NoError(t, err)

	require.NoError(t, c.SetConfig(map[string]any{}))
	c.SetState(fixture())

	require.Eventually(t, func() bool { return sink.count() == 1 }, 2*time.Second, 5*time.Millisecond)
}

func TestCard_RecorderAndSinkErrors(t *testing.T) {
	rec := &MockRecorder{}
	rec.On("ObserveRender", "test-birthday", config.CardBirthday, mock.AnythingOfType("time.Duration"), 1).Once()

	sink := &recordingSink{err: errors.New("client gone")}
	c := newCard(t, config.CardBirthday, sink, widget.WithRecorder(rec))
	require.NoError(t, c.SetConfig(map[string]any{}))
	c.SetState(fixture())

	assert.True(t, c.Flush())
	rec.AssertExpectations(t)
	_, ok := c.Latest()
	assert.True(t, ok, "a failing sink does not lose the view")
}

func TestCard_VariantViews(t *testing.T) {
	t.Run("Holiday placeholder", func(t *testing.T) {
		sink := &recordingSink{}
		c := newCard(t, config.CardHoliday, sink)
		require.NoError(t, c.SetConfig(map[string]any{"debug": true}))
		c.SetState(hass.NewSnapshot(entity("sensor.ada", "0", "birthday", "2025-06-15")))
		c.Flush()

		v := sink.views[0]
		assert.Empty(t, v.Records)
		assert.NotNil(t, v.Records)
		assert.Equal(t, config.PlaceholderNoUpcoming, v.Placeholder)
		require.NotNil(t, v.Diagnostics)
		assert.Equal(t, []string{"sensor.ada"}, v.Diagnostics.Candidates)
	})

	t.Run("Stats", func(t *testing.T) {
		sink := &recordingSink{}
		c := newCard(t, config.CardStats, sink)
		require.NoError(t, c.SetConfig(map[string]any{"max_items": 1}))
		c.SetState(fixture())
		c.Flush()

		v := sink.views[0]
		require.NotNil(t, v.Stats)
		assert.Equal(t, 3, v.Stats.Total)
		assert.Equal(t, 1, v.Stats.Today)
		assert.Equal(t, 2, v.Stats.ThisWeek)
		assert.Len(t, v.Records, 3, "statistics ignore max_items")
	})

	t.Run("Stats ranking", func(t *testing.T) {
		signs := []string{"Leo", "Aries", "Aries", "Virgo", "Cancer", "Pisces", "Taurus", "Taurus"}
		var entities []hass.Entity
		for i, sign := range signs {
			e := entity(fmt.Sprintf("sensor.p%d", i), fmt.Sprint(i+1), "birthday", "2025-06-20")
			e.Attributes["zodiac_sign"] = sign
			entities = append(entities, e)
		}

		sink := &recordingSink{}
		c := newCard(t, config.CardStats, sink)
		require.NoError(t, c.SetConfig(map[string]any{}))
		c.SetState(hass.NewSnapshot(entities...))
		c.Flush()

		v := sink.views[0]
		require.NotNil(t, v.Stats)
		assert.Equal(t, cards.Frequency{{Value: "Aries", Count: 2}, {Value: "Taurus", Count: 2}, {Value: "Leo", Count: 1}, {Value: "Virgo", Count: 1}, {Value: "Cancer", Count: 1}}, v.Stats.Zodiac)
		assert.Len(t, v.Stats.Zodiac, config.StatsTopZodiac)
		assert.Equal(t, cards.Frequency{{Value: "birthday", Count: 8}}, v.Stats.Category)
	})

	t.Run("Calendar", func(t *testing.T) {
		sink := &recordingSink{}
		c := newCard(t, config.CardCalendar, sink)
		require.NoError(t, c.SetConfig(map[string]any{}))
		c.SetState(fixture())
		c.Flush()

		v := sink.views[0]
		require.NotNil(t, v.Month)
		assert.Equal(t, time.June, v.Month.Month)
		assert.Len(t, v.Month.Days, 2)
		require.Len(t, v.Today, 1)
		assert.Equal(t, "sensor.ada", v.Today[0].EntityID)
	})

	t.Run("Details", func(t *testing.T) {
		sink := &recordingSink{}
		c := newCard(t, config.CardDetails, sink)
		require.NoError(t, c.SetConfig(map[string]any{"entity": "sensor.missing"}))
		c.SetState(fixture())
		c.Flush()

		v := sink.views[0]
		require.NotNil(t, v.Details)
		assert.False(t, v.Details.Found)
		assert.Equal(t, config.PlaceholderNotFound, v.Placeholder)

		require.NoError(t, c.SetConfig(map[string]any{"entity": "sensor.wedding"}))
		c.Flush()
		v = sink.views[1]
		require.Len(t, v.Records, 1)
		assert.Equal(t, 5, v.Records[0].DaysRemaining)
	})
}

func TestBoard(t *testing.T) {
	sink := &recordingSink{}
	board := widget.NewBoard()
	timeline := newCard(t, config.CardTimeline, sink)
	stats := newCard(t, config.CardStats, sink)
	require.NoError(t, board.Add(timeline))
	require.NoError(t, board.Add(stats))
	assert.ErrorContains(t, board.Add(newCard(t, config.CardTimeline, sink)), config.ErrCardIDDuplicate)

	require.NoError(t, timeline.SetConfig(map[string]any{"title": "Family"}))
	require.NoError(t, stats.SetConfig(map[string]any{}))

	_, found, rendered := board.View("test-timeline")
	assert.True(t, found)
	assert.False(t, rendered)

	board.SetState(fixture())
	board.Flush()
	assert.Equal(t, 2, sink.count())

	v, found, rendered := board.View("test-timeline")
	assert.True(t, found)
	assert.True(t, rendered)
	assert.Equal(t, "Family", v.Title)

	_, found, _ = board.View("nope")
	assert.False(t, found)

	info := board.Info()
	require.Len(t, info, 2)
	assert.Equal(t, widget.CardInfo{ID: "test-timeline", Type: "timeline", Title: "Family", Rendered: true}, info[0])
}
