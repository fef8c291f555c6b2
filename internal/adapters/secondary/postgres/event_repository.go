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

// EventRepository handles database lookups for live events.
type EventRepository struct {
	pool *pgxpool.Pool
}

var _ ports.EventRepository = (*EventRepository)(nil)

// NewEventRepository creates a new event repository.
func NewEventRepository(pool *pgxpool.Pool) ports.EventRepository {
	return &EventRepository{pool: pool}
}

// GetByID fetches a live event by id.
func (r *EventRepository) GetByID(ctx context.Context, eventID string) (*domain.LiveEvent, error) {
	query := `
		SELECT id, owner_id, title, starts_at, created_at
		FROM live_events
		WHERE id = $1
	`

	var event domain.LiveEvent
	err := r.pool.QueryRow(ctx, query, eventID).Scan(
		&event.ID,
		&event.OwnerID,
		&event.Title,
		&event.StartsAt,
		&event.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrEventNotFound
		}
		return nil, err
	}

	return &event, nil
}

// GetOwnerID fetches only the owner of a live event. The authorization path
// calls this on every privileged message, so it avoids loading the full row.
func (r *EventRepository) GetOwnerID(ctx context.Context, eventID string) (string, error) {
	query := `SELECT owner_id FROM live_events WHERE id = $1`

	var ownerID string
	err := r.pool.QueryRow(ctx, query, eventID).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperrors.ErrEventNotFound
		}
		return "", err
	}

	return ownerID, nil
}
