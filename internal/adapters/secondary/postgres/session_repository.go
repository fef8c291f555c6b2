package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cuelight/engage-backend/internal/core/domain"
	apperrors "github.com/cuelight/engage-backend/internal/core/errors"
	"github.com/cuelight/engage-backend/internal/core/ports"
)

// SessionRepository handles database lookups for server-side sessions.
// Logging out deletes the row, which is what revokes an otherwise valid
// token.
type SessionRepository struct {
	pool *pgxpool.Pool
}

var _ ports.SessionRepository = (*SessionRepository)(nil)

// NewSessionRepository creates a new session repository.
func NewSessionRepository(pool *pgxpool.Pool) ports.SessionRepository {
	return &SessionRepository{pool: pool}
}

// GetByID fetches a session by id.
func (r *SessionRepository) GetByID(ctx context.Context, sessionID string) (*domain.Session, error) {
	query := `
		SELECT id, user_id, created_at, expires_at
		FROM sessions
		WHERE id = $1
	`

	var session domain.Session
	err := r.pool.QueryRow(ctx, query, sessionID).Scan(
		&session.ID,
		&session.UserID,
		&session.CreatedAt,
		&session.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrSessionNotFound
		}
		return nil, err
	}

	return &session, nil
}
