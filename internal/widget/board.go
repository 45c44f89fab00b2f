package widget

import (
	"fmt"
	"sync"

	"github.com/tartampluch/anniversary-cards/internal/config"
	"github.com/tartampluch/anniversary-cards/internal/hass"
)

// CardInfo summarizes a card instance for listings.
type CardInfo struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Title    string `json:"title"`
	Rendered bool   `json:"rendered"`
}

// Board is the set of card instances of one dashboard. Snapshots are fanned out to
// every card.
type Board struct {
	mu    sync.RWMutex
	order []*Card
	byID  map[string]*Card
}

// NewBoard creates an empty board.
func NewBoard() *Board {
	return &Board{byID: make(map[string]*Card)}
}

// Add appends a card. Card ids are unique within a board.
func (b *Board) Add(c *Card) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, dup := b.byID[c.ID()]; dup {
		return fmt.Errorf("%s: %q", config.ErrCardIDDuplicate, c.ID())
	}
	b.order = append(b.order, c)
	b.byID[c.ID()] = c
	return nil
}

// Cards returns the cards in insertion order.
func (b *Board) Cards() []*Card {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]*Card, len(b.order))
	copy(out, b.order)
	return out
}

// Card looks up a card by id.
func (b *Board) Card(id string) (*Card, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	c, ok := b.byID[id]
	return c, ok
}

// SetState pushes a snapshot to every card.
func (b *Board) SetState(snap hass.Snapshot) {
	for _, c := range b.Cards() {
		c.SetState(snap)
	}
}

// Flush renders every card with a pending render.
func (b *Board) Flush() {
	for _, c := range b.Cards() {
		c.Flush()
	}
}

// Close drops pending renders.
func (b *Board) Close() {
	for _, c := range b.Cards() {
		c.Close()
	}
}

// Info lists the cards.
func (b *Board) Info() []CardInfo {
	cards := b.Cards()
	out := make([]CardInfo, 0, len(cards))
	for _, c := range cards {
		info := CardInfo{ID: c.ID(), Type: c.Type()}
		if cfg, ok := c.Config(); ok {
			info.Title = cfg.Title
		}
		_, info.Rendered = c.Latest()
		out = append(out, info)
	}
	return out
}

// View returns the latest view of a card. found is false for an unknown id,
// rendered is false before the first render.
func (b *Board) View(id string) (v View, found, rendered bool) {
	c, ok := b.Card(id)
	if !ok {
		return View{}, false, false
	}
	v, rendered = c.Latest()
	return v, true, rendered
}
