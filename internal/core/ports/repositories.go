package ports

import (
	"context"

	"github.com/cuelight/engage-backend/internal/core/domain"
)

// SessionRepository looks up server-side session records. A token is only
// trusted while its session row still exists.
type SessionRepository interface {
	GetByID(ctx context.Context, sessionID string) (*domain.Session, error)
}

// UserRepository looks up platform accounts.
type UserRepository interface {
	GetByID(ctx context.Context, userID string) (*domain.User, error)
}

// EventRepository resolves live events and their ownership.
type EventRepository interface {
	GetByID(ctx context.Context, eventID string) (*domain.LiveEvent, error)
	GetOwnerID(ctx context.Context, eventID string) (string, error)
}
