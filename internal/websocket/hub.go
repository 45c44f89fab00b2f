// Package websocket pushes rendered card views to dashboard clients.
package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/tartampluch/anniversary-cards/internal/config"
	"github.com/tartampluch/anniversary-cards/internal/widget"
)

// Message is one card update sent to every client.
type Message struct {
	Type string      `json:"type"`
	Card string      `json:"card"`
	View widget.View `json:"view"`
}

// NewMessage wraps a rendered view.
func NewMessage(v widget.View) Message {
	return Message{Type: config.WSMsgCardView, Card: v.CardID, View: v}
}

// Hub maintains the connected clients. It also keeps the last message of every
// card so late joiners start with a full dashboard.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	order   []string
	last    map[string][]byte

	onCount func(int)
	log     *slog.Logger
}

// HubOption customizes a Hub.
type HubOption func(*Hub)

// WithClientObserver is called with the client count after every change.
func WithClientObserver(fn func(int)) HubOption {
	return func(h *Hub) { h.onCount = fn }
}

// NewHub creates an empty hub.
func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		clients: make(map[*Client]struct{}),
		last:    make(map[string][]byte),
		log:     slog.With(config.LogKeyComponent, config.CompHub),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register adds a client and queues the latest message of every card.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	for _, id := range h.order {
		select {
		case c.send <- h.last[id]:
		default:
		}
	}
	n := len(h.clients)
	h.mu.Unlock()
	h.notify(n)
}

// Unregister removes a client and closes its send channel. Unregistering twice is a no-op.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
		close(c.send)
	}
	n := len(h.clients)
	h.mu.Unlock()
	if ok {
		h.notify(n)
	}
}

func (h *Hub) notify(n int) {
	if h.onCount != nil {
		h.onCount(n)
	}
}

// Broadcast sends a message to every client. A client whose buffer is full misses
// the message instead of blocking the others.
func (h *Hub) Broadcast(msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrRenderEncode, err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, seen := h.last[msg.Card]; !seen {
		h.order = append(h.order, msg.Card)
	}
	h.last[msg.Card] = data

	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.log.Warn(config.MsgWSDropped, config.LogKeyCard, msg.Card)
		}
	}
	return nil
}

// Publish implements widget.Sink.
func (h *Hub) Publish(_ context.Context, v widget.View) error {
	return h.Broadcast(NewMessage(v))
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
