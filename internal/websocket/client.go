package websocket

import (
	"context"
	"net/http"
	"time"

	ws "github.com/coder/websocket"
	"github.com/tartampluch/anniversary-cards/internal/config"
)

// Client is a single WebSocket connection.
type Client struct {
	hub  *Hub
	conn *ws.Conn
	send chan []byte
}

// NewClient creates a Client tied to the given hub and connection.
func NewClient(hub *Hub, conn *ws.Conn) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, config.WSSendBuffer),
	}
}

// Run registers the client, starts the write pump and runs the read pump until the
// connection closes.
func (c *Client) Run(ctx context.Context) {
	c.hub.Register(c)
	defer c.hub.Unregister(c)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go c.writePump(ctx)
	c.readPump(ctx)
}

// readPump discards incoming messages; the channel is push-only.
func (c *Client) readPump(ctx context.Context) {
	c.conn.SetReadLimit(config.WSReadLimit)
	for {
		if _, _, err := c.conn.Read(ctx); err != nil {
			return
		}
	}
}

// writePump drains the send channel and pings to detect stale connections.
func (c *Client) writePump(ctx context.Context) {
	ticker := time.NewTicker(config.WSPingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.write(ctx, msg); err != nil {
				c.hub.log.Debug(config.ErrWSWrite, config.LogKeyError, err)
				return
			}
		case <-ticker.C:
			if err := c.conn.Ping(ctx); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func (c *Client) write(ctx context.Context, msg []byte) error {
	ctx, cancel := context.WithTimeout(ctx, config.WSWriteTimeout)
	defer cancel()
	return c.conn.Write(ctx, ws.MessageText, msg)
}

// HandleWebSocket upgrades connections and runs them as hub clients.
func HandleWebSocket(hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := ws.Accept(w, r, &ws.AcceptOptions{
			// Dashboards are served from other origins on the LAN.
			InsecureSkipVerify: true,
		})
		if err != nil {
			hub.log.Warn(config.ErrWSAccept, config.LogKeyError, err)
			return
		}
		defer func() { _ = conn.CloseNow() }()

		hub.log.Info(config.MsgWSConnected, config.LogKeyRemote, r.RemoteAddr)
		NewClient(hub, conn).Run(r.Context())
		hub.log.Info(config.MsgWSClosed, config.LogKeyRemote, r.RemoteAddr)
	}
}
