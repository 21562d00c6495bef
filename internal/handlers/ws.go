package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/logger"
	"github.com/Billy-Davies-2/fbb-draft-assistant/internal/pubsub"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Clients only send control frames
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// CORS is enforced by the router; the stream itself is read-only
	CheckOrigin: func(r *http.Request) bool { return true },
}

// eventClient is one websocket subscriber
type eventClient struct {
	id     string
	conn   *websocket.Conn
	events chan pubsub.Event
	league string
}

// wants reports whether the client's league filter admits e. Events without
// a league (tuning reloads) go to everyone.
func (c *eventClient) wants(e pubsub.Event) bool {
	return c.league == "" || e.LeagueID == "" || e.LeagueID == c.league
}

// readPump drains the connection so pongs and close frames are processed
func (c *eventClient) readPump() {
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("WebSocket client closed unexpectedly", "client_id", c.id, "error", err)
			}
			return
		}
	}
}

// writePump forwards events until the subscription closes or a write fails
func (c *eventClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.events:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if !c.wants(event) {
				continue
			}
			if err := c.conn.WriteJSON(event); err != nil {
				logger.Debug("WebSocket write failed", "client_id", c.id, "error", err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Events streams draft events over a websocket. ?league= limits the stream to one league.
func (h *APIHandlers) Events(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("WebSocket upgrade failed", "error", err)
		return
	}

	c := &eventClient{
		id:     uuid.NewString(),
		conn:   conn,
		events: h.pubsub.Subscribe(),
		league: r.URL.Query().Get("league"),
	}
	logger.Info("WebSocket client connected", "client_id", c.id, "league_id", c.league, "subscribers", h.pubsub.SubscriberCount())

	go c.writePump()
	c.readPump()

	// closing the subscription stops the write pump
	h.pubsub.Unsubscribe(c.events)
	logger.Info("WebSocket client disconnected", "client_id", c.id)
}
