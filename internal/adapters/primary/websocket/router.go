package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/cuelight/engage-backend/internal/core/domain"
	apperrors "github.com/cuelight/engage-backend/internal/core/errors"
	"github.com/cuelight/engage-backend/internal/core/ports"
)

// inboundMessage is the wire shape of client messages. Payload stays raw
// until the type-specific handler decodes it.
type inboundMessage struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp int64           `json:"timestamp"`
}

type joinEventPayload struct {
	EventID string `json:"eventId"`
}

type subscribePayload struct {
	Type string `json:"type"`
}

type sendCuePayload struct {
	EventID string          `json:"eventId"`
	Cue     json.RawMessage `json:"cue"`
}

type updateTimecodePayload struct {
	EventID  string `json:"eventId"`
	Timecode *int64 `json:"timecode"`
}

// Router classifies inbound envelopes by type and privilege and dispatches
// to handlers. It holds no per-connection state; everything it needs lives
// on the Client.
type Router struct {
	hub    *Hub
	access ports.EventAccessPolicy
	logger *slog.Logger
}

// NewRouter creates a router dispatching into the hub, with privileged
// messages gated by the access policy.
func NewRouter(hub *Hub, access ports.EventAccessPolicy, logger *slog.Logger) *Router {
	return &Router{
		hub:    hub,
		access: access,
		logger: logger.With("component", "realtime_router"),
	}
}

// HandleMessage processes one raw inbound frame. Malformed or unknown
// messages never close the connection.
func (r *Router) HandleMessage(c *Client, raw []byte) {
	var msg inboundMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		r.logger.Warn("failed to decode client message",
			"connection_id", c.ID,
			"error", err,
		)
		c.trySend(domain.NewErrorMessage("malformed message", apperrors.CodeValidationError))
		return
	}

	switch msg.Type {
	case domain.MsgPing:
		c.trySend(domain.NewPongMessage())

	case domain.MsgJoinEvent:
		r.handleJoinEvent(c, msg.Payload)

	case domain.MsgHeartbeatRequest:
		r.handleHeartbeatRequest(c)

	case domain.MsgSubscribe:
		r.handleSubscribe(c, msg.Payload)

	case domain.MsgSendCue:
		r.handleSendCue(c, msg.Payload)

	case domain.MsgUpdateTimecode:
		r.handleUpdateTimecode(c, msg.Payload)

	default:
		r.logger.Debug("received unknown message type",
			"connection_id", c.ID,
			"message_type", msg.Type,
		)
	}
}

// handleJoinEvent puts the connection into an event room and replies with a
// session_start carrying the room's current timecode. Open to anonymous
// connections.
func (r *Router) handleJoinEvent(c *Client, payload json.RawMessage) {
	var p joinEventPayload
	if err := json.Unmarshal(payload, &p); err != nil || p.EventID == "" {
		r.sendValidationError(c, apperrors.ErrEventIDRequired)
		return
	}

	timecode := r.hub.JoinRoom(c, p.EventID)
	sessionLabel := uuid.NewString()

	c.trySend(domain.NewSessionStartMessage(p.EventID, timecode, sessionLabel, c.UserID()))
}

// handleHeartbeatRequest replies with a snapshot of the current room's
// clock without advancing it.
func (r *Router) handleHeartbeatRequest(c *Client) {
	eventID := c.EventID()
	if eventID == "" {
		r.sendValidationError(c, apperrors.ErrNotInRoom)
		return
	}

	timecode := r.hub.CurrentTimecode(eventID)
	c.trySend(domain.NewHeartbeatMessage(timecode, time.Now()))
}

// handleSubscribe adds an authenticated connection to the notification
// registry. Duplicate subscribes are harmless.
func (r *Router) handleSubscribe(c *Client, payload json.RawMessage) {
	if !c.IsAuthenticated() {
		c.trySend(domain.NewErrorMessage("authentication required to subscribe", apperrors.CodeAuthenticationRequired))
		return
	}

	var p subscribePayload
	if err := json.Unmarshal(payload, &p); err != nil || p.Type != "notifications" {
		r.sendValidationError(c, apperrors.ErrBadSubscription)
		return
	}

	r.hub.SubscribeNotifications(c)
	c.trySend(domain.NewSubscribedMessage())
}

// handleSendCue validates then fans an opaque cue out to the target room.
// Privileged: requires an authenticated admin or the event's owner.
func (r *Router) handleSendCue(c *Client, payload json.RawMessage) {
	var p sendCuePayload
	if err := json.Unmarshal(payload, &p); err != nil || p.EventID == "" {
		r.sendValidationError(c, apperrors.ErrEventIDRequired)
		return
	}
	if len(p.Cue) == 0 || string(p.Cue) == "null" {
		r.sendValidationError(c, apperrors.ErrCueRequired)
		return
	}

	if !r.authorize(c, p.EventID, domain.MsgSendCue) {
		return
	}

	r.hub.SendCueToEvent(p.EventID, p.Cue)
}

// handleUpdateTimecode validates then sets the event clock. There is no
// immediate broadcast; the next tick or heartbeat_request reflects the new
// value. Privileged like send_cue.
func (r *Router) handleUpdateTimecode(c *Client, payload json.RawMessage) {
	var p updateTimecodePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		r.sendValidationError(c, apperrors.ErrTimecodeRequired)
		return
	}
	if p.EventID == "" {
		r.sendValidationError(c, apperrors.ErrEventIDRequired)
		return
	}
	if p.Timecode == nil {
		r.sendValidationError(c, apperrors.ErrTimecodeRequired)
		return
	}
	if *p.Timecode < 0 {
		r.sendValidationError(c, apperrors.ErrTimecodeNegative)
		return
	}

	if !r.authorize(c, p.EventID, domain.MsgUpdateTimecode) {
		return
	}

	r.hub.SetEventTimecode(p.EventID, *p.Timecode)
}

// authorize gates privileged messages. Denials get a stable
// INSUFFICIENT_PERMISSIONS code and an audit log line naming the acting
// identity and target event.
func (r *Router) authorize(c *Client, eventID, msgType string) bool {
	if !c.IsAuthenticated() {
		r.logger.Warn("privileged message from anonymous connection",
			"connection_id", c.ID,
			"event_id", eventID,
			"message_type", msgType,
		)
		c.trySend(domain.NewErrorMessage("insufficient permissions", apperrors.CodeInsufficientPermissions))
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	allowed, err := r.access.CanControlEvent(ctx, c.Identity(), eventID)
	if err != nil {
		r.logger.Error("authorization lookup failed",
			"connection_id", c.ID,
			"user_id", c.UserID(),
			"event_id", eventID,
			"error", err,
		)
		allowed = false
	}

	// The ownership lookup may have suspended; the connection can have
	// closed in the meantime.
	if c.isClosed() {
		return false
	}

	if !allowed {
		r.logger.Warn("privileged message denied",
			"connection_id", c.ID,
			"user_id", c.UserID(),
			"event_id", eventID,
			"message_type", msgType,
		)
		c.trySend(domain.NewErrorMessage("insufficient permissions", apperrors.CodeInsufficientPermissions))
		return false
	}

	return true
}

func (r *Router) sendValidationError(c *Client, err error) {
	c.trySend(domain.NewErrorMessage(err.Error(), apperrors.CodeValidationError))
}
