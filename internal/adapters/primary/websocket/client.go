package websocket

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/cuelight/engage-backend/internal/core/domain"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096

	// Outbound buffer per connection.
	sendBufferSize = 256
)

// ConnectionKind distinguishes authenticated connections from anonymous
// event-audience connections.
type ConnectionKind string

const (
	KindAuthenticated ConnectionKind = "authenticated"
	KindAnonymous     ConnectionKind = "anonymous"
)

// Client is the per-connection session state, keyed by a stable connection
// id. The transport object itself is never mutated; everything the hub needs
// to know about a connection lives here.
type Client struct {
	// ID is the stable connection id.
	ID string

	hub  *Hub
	conn *websocket.Conn

	// send is the buffered outbound queue drained by WritePump.
	send chan domain.Envelope

	// identity is nil for anonymous connections.
	identity *domain.Identity

	mu         sync.RWMutex
	eventID    string
	subscribed bool
	closed     bool

	closeOnce sync.Once

	logger *slog.Logger
}

// NewClient creates the session state for a freshly accepted connection.
func NewClient(hub *Hub, conn *websocket.Conn, identity *domain.Identity, logger *slog.Logger) *Client {
	id := uuid.NewString()
	return &Client{
		ID:       id,
		hub:      hub,
		conn:     conn,
		send:     make(chan domain.Envelope, sendBufferSize),
		identity: identity,
		logger:   logger.With("connection_id", id, "user_id", userLabel(identity)),
	}
}

func userLabel(identity *domain.Identity) string {
	if identity == nil {
		return domain.AnonymousUserID
	}
	return identity.UserID
}

// IsAuthenticated reports whether the connection carries a verified identity.
func (c *Client) IsAuthenticated() bool {
	return c.identity != nil
}

// Identity returns the verified identity, or nil for anonymous connections.
func (c *Client) Identity() *domain.Identity {
	return c.identity
}

// UserID returns the verified user id, or the anonymous label.
func (c *Client) UserID() string {
	return userLabel(c.identity)
}

// Kind reports the connection type.
func (c *Client) Kind() ConnectionKind {
	if c.identity != nil {
		return KindAuthenticated
	}
	return KindAnonymous
}

// EventID returns the event the connection has joined, or "".
func (c *Client) EventID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.eventID
}

func (c *Client) setEventID(eventID string) {
	c.mu.Lock()
	c.eventID = eventID
	c.mu.Unlock()
}

func (c *Client) isSubscribed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.subscribed
}

func (c *Client) setSubscribed(v bool) {
	c.mu.Lock()
	c.subscribed = v
	c.mu.Unlock()
}

func (c *Client) isClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

// trySend queues an envelope for delivery. It reports false instead of
// erroring when the connection is already closed or its buffer is full,
// which guards the send-after-close race on disconnect.
func (c *Client) trySend(env domain.Envelope) bool {
	c.mu.RLock()
	closed := c.closed
	c.mu.RUnlock()
	if closed {
		return false
	}

	select {
	case c.send <- env:
		return true
	default:
		c.logger.Warn("send buffer full, dropping message", "message_type", env.Type)
		return false
	}
}

// closeSend marks the client closed and closes the send channel exactly once.
func (c *Client) closeSend() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()
		close(c.send)
	})
}

// ReadPump pumps inbound messages into the router.
// This method runs in its own goroutine.
func (c *Client) ReadPump(router *Router) {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.logger.Error("failed to set read deadline", "error", err)
		return
	}

	c.conn.SetPongHandler(func(string) error {
		if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			c.logger.Error("failed to set read deadline in pong handler", "error", err)
		}
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.logger.Warn("websocket read error", "error", err)
			}
			break
		}

		router.HandleMessage(c, message)
	}
}

// WritePump drains the send queue onto the wire and keeps the transport
// alive with protocol-level pings.
// This method runs in its own goroutine.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case env, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error("failed to set write deadline", "error", err)
				return
			}

			if !ok {
				// The hub closed the channel. Send close message.
				if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
					c.logger.Debug("failed to send close message", "error", err)
				}
				return
			}

			if err := c.conn.WriteJSON(env); err != nil {
				c.logger.Error("failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error("failed to set write deadline for ping", "error", err)
				return
			}

			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Debug("failed to send ping", "error", err)
				return
			}
		}
	}
}
