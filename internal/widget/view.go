package widget

import (
	"context"
	"time"

	"github.com/tartampluch/anniversary-cards/internal/cards"
)

// View is the rendered output of one card, handed to the sink and served to clients.
type View struct {
	CardID      string                `json:"card_id"`
	Type        string                `json:"type"`
	Title       string                `json:"title"`
	Config      cards.WidgetConfig    `json:"config"`
	Records     []cards.DisplayRecord `json:"records"`
	Placeholder string                `json:"placeholder,omitempty"`
	Stats       *cards.Stats          `json:"stats,omitempty"`
	Month       *cards.MonthView      `json:"month,omitempty"`
	Today       []cards.DisplayRecord `json:"today,omitempty"`
	Details     *cards.DetailsView    `json:"details,omitempty"`
	Diagnostics *cards.Diagnostics    `json:"diagnostics,omitempty"`
	RenderedAt  time.Time             `json:"rendered_at"`
}

// Sink receives every view a card renders.
type Sink interface {
	Publish(ctx context.Context, v View) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, v View) error

// Publish calls f.
func (f SinkFunc) Publish(ctx context.Context, v View) error { return f(ctx, v) }

// Recorder observes renders, e.g. for metrics.
type Recorder interface {
	ObserveRender(cardID, cardType string, d time.Duration, records int)
}
