package websocket

import (
	"log/slog"
	"sync"
	"time"

	"github.com/cuelight/engage-backend/internal/core/domain"
	"github.com/cuelight/engage-backend/internal/core/ports"
)

// DefaultHeartbeatInterval is the cadence of the per-room event clock.
const DefaultHeartbeatInterval = time.Second

// Hub owns every realtime registry: the full connection set, the per-user
// notification registry, the per-event rooms with their clocks, and the
// persisted timecodes. All state is private; external collaborators reach
// live connections only through the facade methods.
type Hub struct {
	// notify maps user IDs to their notification-subscribed connections.
	// A single user can have multiple connections (multiple tabs/devices).
	notify map[string]map[*Client]bool

	// rooms maps event IDs to their member sets and clock timers.
	rooms map[string]*room

	// timecodes maps event IDs to the current clock value. Entries outlive
	// room teardown so a re-opened room resumes where it left off.
	timecodes map[string]int64

	// clients tracks every live connection by connection id.
	clients map[string]*Client

	heartbeatInterval time.Duration

	// mu protects all four maps.
	mu sync.RWMutex

	logger *slog.Logger
}

// Ensure Hub implements the facade interface.
var _ ports.RealtimePublisher = (*Hub)(nil)

// NewHub creates an empty hub ticking rooms at the given interval.
func NewHub(heartbeatInterval time.Duration, logger *slog.Logger) *Hub {
	if heartbeatInterval <= 0 {
		heartbeatInterval = DefaultHeartbeatInterval
	}
	return &Hub{
		notify:            make(map[string]map[*Client]bool),
		rooms:             make(map[string]*room),
		timecodes:         make(map[string]int64),
		clients:           make(map[string]*Client),
		heartbeatInterval: heartbeatInterval,
		logger:            logger.With("component", "realtime_hub"),
	}
}

// Register adds a freshly accepted connection to the hub.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	h.clients[client.ID] = client
	total := len(h.clients)
	h.mu.Unlock()

	h.logger.Info("connection registered",
		"connection_id", client.ID,
		"user_id", client.UserID(),
		"kind", client.Kind(),
		"total_connections", total,
	)
}

// Unregister removes a connection from every registry and closes its send
// queue. Removing the last member of a room stops that room's clock.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()

	delete(h.clients, client.ID)

	if userClients, ok := h.notify[client.UserID()]; ok {
		delete(userClients, client)
		if len(userClients) == 0 {
			delete(h.notify, client.UserID())
		}
	}

	h.removeFromRoomLocked(client)

	h.mu.Unlock()

	client.closeSend()

	h.logger.Info("connection unregistered",
		"connection_id", client.ID,
		"user_id", client.UserID(),
	)
}

// Welcome greets a freshly registered connection with its resolved identity.
func (h *Hub) Welcome(client *Client) {
	client.trySend(domain.NewConnectedMessage(client.UserID(), client.IsAuthenticated()))
}

// SubscribeNotifications adds the connection to the notification registry.
// Idempotent; only authenticated connections may subscribe.
func (h *Hub) SubscribeNotifications(client *Client) {
	if !client.IsAuthenticated() || client.isSubscribed() {
		return
	}

	h.mu.Lock()
	if h.notify[client.UserID()] == nil {
		h.notify[client.UserID()] = make(map[*Client]bool)
	}
	h.notify[client.UserID()][client] = true
	h.mu.Unlock()

	client.setSubscribed(true)

	h.logger.Debug("connection subscribed to notifications",
		"connection_id", client.ID,
		"user_id", client.UserID(),
	)
}

// JoinRoom adds the connection to the event's room, creating the room and
// starting its clock if this is the first member. A connection belongs to at
// most one room: joining a new event leaves the previous room first.
// Returns the room's current timecode.
func (h *Hub) JoinRoom(client *Client, eventID string) int64 {
	h.mu.Lock()

	if prev := client.EventID(); prev != "" && prev != eventID {
		h.removeFromRoomLocked(client)
	}

	r, exists := h.rooms[eventID]
	if !exists {
		r = newRoom()
		r.timer = NewRoomTimer(h.heartbeatInterval)
		h.rooms[eventID] = r
		r.timer.Start(func() { h.tick(eventID) })
	}
	r.clients[client] = true

	timecode := h.timecodes[eventID]
	size := len(r.clients)
	h.mu.Unlock()

	client.setEventID(eventID)

	h.logger.Info("connection joined event room",
		"connection_id", client.ID,
		"user_id", client.UserID(),
		"event_id", eventID,
		"room_size", size,
	)
	return timecode
}

// removeFromRoomLocked detaches the client from its current room, tearing
// down the room and stopping its clock when the last member leaves.
// Callers must hold h.mu.
func (h *Hub) removeFromRoomLocked(client *Client) {
	eventID := client.EventID()
	if eventID == "" {
		return
	}

	r, ok := h.rooms[eventID]
	if ok {
		delete(r.clients, client)
		if len(r.clients) == 0 {
			r.timer.Stop()
			delete(h.rooms, eventID)
			h.logger.Info("event room closed", "event_id", eventID)
		}
	}
	client.setEventID("")
}

// tick advances one event clock and broadcasts a heartbeat to the room.
// Runs on the room's timer goroutine; a tick racing room teardown is a no-op.
func (h *Hub) tick(eventID string) {
	h.mu.Lock()
	r, ok := h.rooms[eventID]
	if !ok {
		h.mu.Unlock()
		return
	}
	h.timecodes[eventID]++
	timecode := h.timecodes[eventID]
	members := snapshotRoom(r)
	h.mu.Unlock()

	env := domain.NewHeartbeatMessage(timecode, time.Now())
	for _, client := range members {
		client.trySend(env)
	}
}

// CurrentTimecode returns the event's clock value. Values persist after a
// room empties, so this also answers for idle events.
func (h *Hub) CurrentTimecode(eventID string) int64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.timecodes[eventID]
}

// --- Facade (ports.RealtimePublisher) ---

// SendNotificationToUser fans the payload out to every open connection the
// user has subscribed to notifications. Reports whether any were reached.
func (h *Hub) SendNotificationToUser(userID string, payload any) bool {
	h.mu.RLock()
	userClients, ok := h.notify[userID]
	if !ok {
		h.mu.RUnlock()
		return false
	}
	targets := make([]*Client, 0, len(userClients))
	for client := range userClients {
		targets = append(targets, client)
	}
	h.mu.RUnlock()

	env := domain.NewEnvelope(domain.MsgNotification, payload)
	delivered := false
	for _, client := range targets {
		if client.trySend(env) {
			delivered = true
		} else {
			h.logger.Debug("notification skipped closed connection",
				"connection_id", client.ID,
				"user_id", userID,
			)
		}
	}
	return delivered
}

// SendNotificationToUsers applies SendNotificationToUser per id and returns
// how many users were reached.
func (h *Hub) SendNotificationToUsers(userIDs []string, payload any) int {
	reached := 0
	for _, userID := range userIDs {
		if h.SendNotificationToUser(userID, payload) {
			reached++
		}
	}
	return reached
}

// SendCueToEvent broadcasts a cue envelope to every member of the event's
// room. Used for externally triggered cues and socket-path cues alike.
func (h *Hub) SendCueToEvent(eventID string, payload any) {
	h.mu.RLock()
	r, ok := h.rooms[eventID]
	if !ok {
		h.mu.RUnlock()
		h.logger.Debug("cue for event with no active room", "event_id", eventID)
		return
	}
	members := snapshotRoom(r)
	h.mu.RUnlock()

	env := domain.NewCueMessage(payload)
	for _, client := range members {
		if !client.trySend(env) {
			h.logger.Debug("cue skipped closed connection",
				"connection_id", client.ID,
				"event_id", eventID,
			)
		}
	}

	h.logger.Debug("cue broadcast", "event_id", eventID, "room_size", len(members))
}

// SetEventTimecode overrides the event clock. The running tick keeps its
// cadence and increments from the new value; the next heartbeat reflects it.
func (h *Hub) SetEventTimecode(eventID string, timecode int64) {
	h.mu.Lock()
	h.timecodes[eventID] = timecode
	h.mu.Unlock()

	h.logger.Info("event timecode set", "event_id", eventID, "timecode", timecode)
}

// ConnectionStats returns aggregate registry counts for operational
// visibility.
func (h *Hub) ConnectionStats() domain.ConnectionStats {
	h.mu.RLock()
	defer h.mu.RUnlock()

	stats := domain.ConnectionStats{
		TotalConnections: len(h.clients),
		SubscribedUsers:  len(h.notify),
		ActiveRooms:      len(h.rooms),
		RoomSizes:        make(map[string]int, len(h.rooms)),
	}

	for _, client := range h.clients {
		if client.IsAuthenticated() {
			stats.AuthenticatedConnections++
		} else {
			stats.AnonymousConnections++
		}
	}
	for _, userClients := range h.notify {
		stats.NotificationSubscribers += len(userClients)
	}
	for eventID, r := range h.rooms {
		stats.RoomSizes[eventID] = len(r.clients)
	}

	return stats
}

// RoomTimerRunning reports whether the event's room clock is ticking.
func (h *Hub) RoomTimerRunning(eventID string) bool {
	h.mu.RLock()
	r, ok := h.rooms[eventID]
	h.mu.RUnlock()
	return ok && r.timer.IsRunning()
}

// Shutdown stops every room clock and closes every connection's send queue.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for _, client := range h.clients {
		clients = append(clients, client)
	}
	for eventID, r := range h.rooms {
		r.timer.Stop()
		delete(h.rooms, eventID)
	}
	h.mu.Unlock()

	for _, client := range clients {
		client.closeSend()
	}

	h.logger.Info("hub shut down", "connections_closed", len(clients))
}

func snapshotRoom(r *room) []*Client {
	members := make([]*Client, 0, len(r.clients))
	for client := range r.clients {
		members = append(members, client)
	}
	return members
}
