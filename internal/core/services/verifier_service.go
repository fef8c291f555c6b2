package services

import (
	"context"
	"errors"
	"time"

	"github.com/cuelight/engage-backend/internal/auth"
	"github.com/cuelight/engage-backend/internal/core/domain"
	apperrors "github.com/cuelight/engage-backend/internal/core/errors"
	"github.com/cuelight/engage-backend/internal/core/ports"
)

// VerifierService implements credential verification for realtime
// connections. A token is trusted only if its signature and expiry check
// out, the server-side session row still exists and has not expired, and
// the account behind it is still active.
type VerifierService struct {
	tokens   *auth.TokenManager
	sessions ports.SessionRepository
	users    ports.UserRepository
	now      func() time.Time
}

// Ensure implementation matches the interface.
var _ ports.CredentialVerifier = (*VerifierService)(nil)

// NewVerifierService creates a new credential verifier.
func NewVerifierService(tokens *auth.TokenManager, sessions ports.SessionRepository, users ports.UserRepository) *VerifierService {
	return &VerifierService{
		tokens:   tokens,
		sessions: sessions,
		users:    users,
		now:      time.Now,
	}
}

// Verify resolves a raw token into an identity, or an error describing which
// check failed. Callers treat every failure the same way: the connection
// falls back to anonymous.
func (s *VerifierService) Verify(ctx context.Context, token string) (*domain.Identity, error) {
	if token == "" {
		return nil, apperrors.ErrInvalidToken
	}

	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return nil, apperrors.ErrInvalidToken
	}

	session, err := s.sessions.GetByID(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrSessionNotFound) {
			return nil, apperrors.ErrSessionNotFound
		}
		return nil, err
	}
	if session.UserID != claims.UserID || session.Expired(s.now()) {
		return nil, apperrors.ErrSessionNotFound
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, apperrors.ErrUserInactive
	}

	return &domain.Identity{
		UserID:    user.ID,
		SessionID: session.ID,
		IsAdmin:   user.IsAdmin,
	}, nil
}
