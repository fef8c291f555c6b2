package domain

import "time"

// LiveEvent is a scheduled live experience that clients join as a room.
// Only the owner (or a system admin) may push cues or move its clock.
type LiveEvent struct {
	ID        string
	OwnerID   string
	Title     string
	StartsAt  time.Time
	CreatedAt time.Time
}
