package widget

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/tartampluch/anniversary-cards/internal/cards"
	"github.com/tartampluch/anniversary-cards/internal/config"
	"github.com/tartampluch/anniversary-cards/internal/hass"
)

// BuildFunc fills the variant-specific part of a view.
type BuildFunc func(snap hass.Snapshot, cfg cards.WidgetConfig, policy cards.VariantPolicy, now time.Time) View

// Descriptor describes a card type.
type Descriptor struct {
	Type        string
	Name        string
	Description string
	Policy      func() cards.VariantPolicy
	Build       BuildFunc
}

// Registry holds the card types a host application has registered.
// Nothing registers itself: the host calls Register or RegisterDefaults.
type Registry struct {
	mu    sync.RWMutex
	order []string
	types map[string]Descriptor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{types: make(map[string]Descriptor)}
}

// Register adds a card type. Registering the same type twice is an error.
func (r *Registry) Register(d Descriptor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, dup := r.types[d.Type]; dup {
		return fmt.Errorf("%s: %q", config.ErrCardDuplicate, d.Type)
	}
	r.types[d.Type] = d
	r.order = append(r.order, d.Type)

	slog.Debug(config.MsgCardRegistered,
		config.LogKeyComponent, config.CompWidget,
		config.LogKeyCardType, d.Type,
	)
	return nil
}

// Lookup returns the descriptor of a card type.
func (r *Registry) Lookup(typ string) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.types[typ]
	return d, ok
}

// Descriptors lists the registered types in registration order.
func (r *Registry) Descriptors() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Descriptor, 0, len(r.order))
	for _, t := range r.order {
		out = append(out, r.types[t])
	}
	return out
}

// RegisterDefaults registers the six built-in card types.
func RegisterDefaults(r *Registry) error {
	for _, d := range Defaults() {
		if err := r.Register(d); err != nil {
			return err
		}
	}
	return nil
}

// Defaults returns the built-in card descriptors.
func Defaults() []Descriptor {
	return []Descriptor{
		{
			Type:        config.CardTimeline,
			Name:        "Anniversary Timeline",
			Description: "Upcoming anniversaries of every category",
			Policy:      cards.TimelinePolicy,
			Build:       buildList,
		},
		{
			Type:        config.CardBirthday,
			Name:        "Birthday Timeline",
			Description: "Upcoming birthdays only",
			Policy:      cards.BirthdayPolicy,
			Build:       buildList,
		},
		{
			Type:        config.CardHoliday,
			Name:        "Holiday Timeline",
			Description: "Upcoming holidays only",
			Policy:      cards.HolidayPolicy,
			Build:       buildList,
		},
		{
			Type:        config.CardStats,
			Name:        "Anniversary Statistics",
			Description: "Counters and frequency tables",
			Policy:      cards.StatsPolicy,
			Build:       buildStats,
		},
		{
			Type:        config.CardCalendar,
			Name:        "Anniversary Calendar",
			Description: "Current month grid",
			Policy:      cards.CalendarPolicy,
			Build:       buildCalendar,
		},
		{
			Type:        config.CardDetails,
			Name:        "Anniversary Details",
			Description: "A single anniversary with all attributes",
			Policy:      cards.DetailsPolicy,
			Build:       buildDetails,
		},
	}
}

func buildList(snap hass.Snapshot, cfg cards.WidgetConfig, policy cards.VariantPolicy, _ time.Time) View {
	v := View{Records: cards.Project(snap, cfg, policy)}
	if len(v.Records) == 0 {
		v.Placeholder = config.PlaceholderNoUpcoming
	}
	withDiagnostics(&v, snap, cfg, policy)
	return v
}

func buildStats(snap hass.Snapshot, cfg cards.WidgetConfig, policy cards.VariantPolicy, _ time.Time) View {
	records := cards.Project(snap, cfg, policy)
	stats := cards.Aggregate(records).Ranked(config.StatsTopZodiac)
	v := View{Records: records, Stats: &stats}
	if len(records) == 0 {
		v.Placeholder = config.PlaceholderNoData
	}
	withDiagnostics(&v, snap, cfg, policy)
	return v
}

func buildCalendar(snap hass.Snapshot, cfg cards.WidgetConfig, policy cards.VariantPolicy, now time.Time) View {
	records := cards.Project(snap, cfg, policy)
	if cfg.Location != nil {
		now = now.In(cfg.Location)
	}
	month := cards.IndexMonth(records, now.Year(), now.Month(), now.Location())
	v := View{Records: records, Month: &month, Today: month.Days[now.Day()]}
	withDiagnostics(&v, snap, cfg, policy)
	return v
}

func buildDetails(snap hass.Snapshot, cfg cards.WidgetConfig, policy cards.VariantPolicy, _ time.Time) View {
	details := cards.Details(snap, cfg, policy)
	v := View{Details: &details, Placeholder: details.Placeholder}
	if details.Record != nil {
		v.Records = []cards.DisplayRecord{*details.Record}
	}
	return v
}

func withDiagnostics(v *View, snap hass.Snapshot, cfg cards.WidgetConfig, policy cards.VariantPolicy) {
	if cfg.Diagnostic() {
		d := cards.Diagnose(snap, cfg, policy)
		v.Diagnostics = &d
	}
}
