package ports

import (
	"context"

	"github.com/cuelight/engage-backend/internal/core/domain"
)

// CredentialVerifier turns a raw session token into a verified identity.
// Verification covers signature/expiry, server-side session existence, and
// the account still being active. Any failure returns an error; callers
// degrade the connection to anonymous rather than rejecting it.
type CredentialVerifier interface {
	Verify(ctx context.Context, token string) (*domain.Identity, error)
}

// EventAccessPolicy decides whether an identity may send privileged control
// messages (cues, timecode updates) for an event.
type EventAccessPolicy interface {
	CanControlEvent(ctx context.Context, identity *domain.Identity, eventID string) (bool, error)
}

// RealtimePublisher is the facade external collaborators use to reach live
// connections. Delivery is best effort: closed or saturated connections are
// skipped, never errors.
type RealtimePublisher interface {
	// SendNotificationToUser fans a payload out to every open connection the
	// user has subscribed to notifications. Reports whether any were reached.
	SendNotificationToUser(userID string, payload any) bool

	// SendNotificationToUsers applies SendNotificationToUser per id and
	// returns how many users were reached.
	SendNotificationToUsers(userIDs []string, payload any) int

	// SendCueToEvent broadcasts a cue envelope to every member of the
	// event's room.
	SendCueToEvent(eventID string, payload any)

	// SetEventTimecode overrides the event clock. The running tick, if any,
	// keeps its cadence and increments from the new value.
	SetEventTimecode(eventID string, timecode int64)

	// ConnectionStats returns aggregate registry counts.
	ConnectionStats() domain.ConnectionStats
}
