package cards

import (
	"github.com/tartampluch/anniversary-cards/internal/config"
	"github.com/tartampluch/anniversary-cards/internal/hass"
)

// DetailsView is the single-entity projection. A missing entity or an unusable state
// is a placeholder, not an error.
type DetailsView struct {
	EntityID    string         `json:"entity_id"`
	Found       bool           `json:"found"`
	Placeholder string         `json:"placeholder,omitempty"`
	Record      *DisplayRecord `json:"record,omitempty"`
	YearsAtNext *int           `json:"years_at_anniversary,omitempty"`
}

// Details projects cfg.Entity. The entity is shown even when it would fail the
// list classification, as long as its state is a day count.
func Details(snap hass.Snapshot, cfg WidgetConfig, policy VariantPolicy) DetailsView {
	view := DetailsView{EntityID: cfg.Entity}
	e, ok := snap.Get(cfg.Entity)
	if !ok {
		view.Placeholder = config.PlaceholderNotFound
		return view
	}
	view.Found = true

	days, ok := e.DaysRemaining()
	if !ok {
		view.Placeholder = config.PlaceholderNoData
		return view
	}

	rec := derive(candidate{entity: e, days: days, cat: categoryOf(e)}, cfg, policy, cfg.formatter())
	view.Record = &rec
	if years, ok := e.Attributes.Int(config.AttrYearsAtNext); ok {
		view.YearsAtNext = &years
	}
	return view
}
