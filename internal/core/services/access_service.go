package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/cuelight/engage-backend/internal/core/domain"
	apperrors "github.com/cuelight/engage-backend/internal/core/errors"
	"github.com/cuelight/engage-backend/internal/core/ports"
)

// AccessService decides whether an identity may send privileged control
// messages for an event: system admins always may, otherwise the identity
// must be the event's owner.
type AccessService struct {
	events ports.EventRepository
	logger *slog.Logger
}

// Ensure implementation matches the interface.
var _ ports.EventAccessPolicy = (*AccessService)(nil)

// NewAccessService creates a new event access policy.
func NewAccessService(events ports.EventRepository, logger *slog.Logger) *AccessService {
	return &AccessService{
		events: events,
		logger: logger.With("component", "event_access"),
	}
}

// CanControlEvent reports whether the identity may push cues or move the
// clock for the event. Unknown events and lookup failures deny.
func (s *AccessService) CanControlEvent(ctx context.Context, identity *domain.Identity, eventID string) (bool, error) {
	if identity == nil {
		return false, apperrors.ErrNotAuthenticated
	}
	if identity.IsAdmin {
		return true, nil
	}

	ownerID, err := s.events.GetOwnerID(ctx, eventID)
	if err != nil {
		if errors.Is(err, apperrors.ErrEventNotFound) {
			s.logger.Warn("authorization check against unknown event",
				"user_id", identity.UserID,
				"event_id", eventID,
			)
			return false, nil
		}
		// Lookup failure denies access rather than guessing.
		return false, err
	}

	return ownerID == identity.UserID, nil
}
