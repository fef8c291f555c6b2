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

// UserRepository handles database lookups for platform accounts.
type UserRepository struct {
	pool *pgxpool.Pool
}

var _ ports.UserRepository = (*UserRepository)(nil)

// NewUserRepository creates a new user repository.
func NewUserRepository(pool *pgxpool.Pool) ports.UserRepository {
	return &UserRepository{pool: pool}
}

// GetByID fetches a user by id.
func (r *UserRepository) GetByID(ctx context.Context, userID string) (*domain.User, error) {
	query := `
		SELECT id, display_name, email, is_admin, is_active, created_at, last_active_at
		FROM users
		WHERE id = $1
	`

	var user domain.User
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&user.ID,
		&user.DisplayName,
		&user.Email,
		&user.IsAdmin,
		&user.IsActive,
		&user.CreatedAt,
		&user.LastActiveAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}

	return &user, nil
}
