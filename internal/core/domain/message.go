package domain

import (
	"time"
)

// Message types sent by clients.
const (
	MsgPing             = "ping"
	MsgSubscribe        = "subscribe"
	MsgJoinEvent        = "join_event"
	MsgHeartbeatRequest = "heartbeat_request"
	MsgSendCue          = "send_cue"
	MsgUpdateTimecode   = "update_timecode"
)

// Message types sent by the server.
const (
	MsgConnected    = "connected"
	MsgPong         = "pong"
	MsgSubscribed   = "subscribed"
	MsgSessionStart = "session_start"
	MsgHeartbeat    = "heartbeat"
	MsgCue          = "cue"
	MsgNotification = "notification"
	MsgError        = "error"
)

// AnonymousUserID is the user id reported to anonymous event audience members.
const AnonymousUserID = "anonymous"

// Envelope is the wire format for every realtime message, in both directions.
// Payload is nil for messages that carry no data (e.g. pong).
type Envelope struct {
	Type      string `json:"type"`
	Payload   any    `json:"payload,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// NewEnvelope builds an outbound envelope stamped with the current time.
func NewEnvelope(msgType string, payload any) Envelope {
	return Envelope{
		Type:      msgType,
		Payload:   payload,
		Timestamp: time.Now().UnixMilli(),
	}
}

// ConnectedPayload greets a freshly upgraded connection.
type ConnectedPayload struct {
	UserID        string `json:"userId"`
	Authenticated bool   `json:"authenticated"`
}

// SessionStartPayload is the reply to a successful join_event.
type SessionStartPayload struct {
	EventID         string `json:"eventId"`
	CurrentTimecode int64  `json:"currentTimecode"`
	SessionID       string `json:"sessionId"`
	UserID          string `json:"userId"`
}

// HeartbeatPayload carries the server clock for an event room.
type HeartbeatPayload struct {
	ServerTimecode int64  `json:"serverTimecode"`
	ServerTime     string `json:"serverTime"`
}

// ErrorPayload is the body of an error envelope. Code is machine-readable
// and distinguishes authorization denials from validation failures.
type ErrorPayload struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

func NewConnectedMessage(userID string, authenticated bool) Envelope {
	return NewEnvelope(MsgConnected, ConnectedPayload{UserID: userID, Authenticated: authenticated})
}

func NewPongMessage() Envelope {
	return NewEnvelope(MsgPong, nil)
}

func NewSubscribedMessage() Envelope {
	return NewEnvelope(MsgSubscribed, nil)
}

func NewSessionStartMessage(eventID string, timecode int64, sessionID, userID string) Envelope {
	return NewEnvelope(MsgSessionStart, SessionStartPayload{
		EventID:         eventID,
		CurrentTimecode: timecode,
		SessionID:       sessionID,
		UserID:          userID,
	})
}

func NewHeartbeatMessage(timecode int64, serverTime time.Time) Envelope {
	return NewEnvelope(MsgHeartbeat, HeartbeatPayload{
		ServerTimecode: timecode,
		ServerTime:     serverTime.UTC().Format(time.RFC3339),
	})
}

func NewCueMessage(cue any) Envelope {
	return NewEnvelope(MsgCue, cue)
}

func NewErrorMessage(message, code string) Envelope {
	return NewEnvelope(MsgError, ErrorPayload{Message: message, Code: code})
}
