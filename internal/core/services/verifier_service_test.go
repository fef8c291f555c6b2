package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cuelight/engage-backend/internal/auth"
	"github.com/cuelight/engage-backend/internal/core/domain"
	apperrors "github.com/cuelight/engage-backend/internal/core/errors"
)

type fakeSessionRepo struct {
	sessions map[string]*domain.Session
}

func (f *fakeSessionRepo) GetByID(_ context.Context, id string) (*domain.Session, error) {
	s, ok := f.sessions[id]
	if !ok {
		return nil, apperrors.ErrSessionNotFound
	}
	return s, nil
}

type fakeUserRepo struct {
	users map[string]*domain.User
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return u, nil
}

func issueToken(t *testing.T, tm *auth.TokenManager, userID string, isAdmin bool) (string, string) {
	t.Helper()
	token, sessionID, err := tm.GenerateToken(userID, isAdmin, time.Hour)
	require.NoError(t, err)
	return token, sessionID
}

func TestVerifierService_HappyPath(t *testing.T) {
	tm := auth.NewTokenManager("test-secret")
	token, sessionID := issueToken(t, tm, "u1", true)

	svc := NewVerifierService(tm,
		&fakeSessionRepo{sessions: map[string]*domain.Session{
			sessionID: {ID: sessionID, UserID: "u1", ExpiresAt: time.Now().Add(time.Hour)},
		}},
		&fakeUserRepo{users: map[string]*domain.User{
			"u1": {ID: "u1", IsActive: true, IsAdmin: true},
		}},
	)

	identity, err := svc.Verify(context.Background(), token)
	require.NoError(t, err)
	require.Equal(t, "u1", identity.UserID)
	require.Equal(t, sessionID, identity.SessionID)
	require.True(t, identity.IsAdmin)
}

func TestVerifierService_EmptyToken(t *testing.T) {
	tm := auth.NewTokenManager("test-secret")
	svc := NewVerifierService(tm, &fakeSessionRepo{}, &fakeUserRepo{})

	_, err := svc.Verify(context.Background(), "")
	require.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestVerifierService_BadSignature(t *testing.T) {
	issuer := auth.NewTokenManager("other-secret")
	token, _ := issueToken(t, issuer, "u1", false)

	svc := NewVerifierService(auth.NewTokenManager("test-secret"), &fakeSessionRepo{}, &fakeUserRepo{})

	_, err := svc.Verify(context.Background(), token)
	require.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestVerifierService_SessionRevoked(t *testing.T) {
	tm := auth.NewTokenManager("test-secret")
	token, _ := issueToken(t, tm, "u1", false)

	svc := NewVerifierService(tm,
		&fakeSessionRepo{sessions: map[string]*domain.Session{}},
		&fakeUserRepo{users: map[string]*domain.User{"u1": {ID: "u1", IsActive: true}}},
	)

	_, err := svc.Verify(context.Background(), token)
	require.ErrorIs(t, err, apperrors.ErrSessionNotFound)
}

func TestVerifierService_SessionExpired(t *testing.T) {
	tm := auth.NewTokenManager("test-secret")
	token, sessionID := issueToken(t, tm, "u1", false)

	svc := NewVerifierService(tm,
		&fakeSessionRepo{sessions: map[string]*domain.Session{
			sessionID: {ID: sessionID, UserID: "u1", ExpiresAt: time.Now().Add(-time.Minute)},
		}},
		&fakeUserRepo{users: map[string]*domain.User{"u1": {ID: "u1", IsActive: true}}},
	)

	_, err := svc.Verify(context.Background(), token)
	require.ErrorIs(t, err, apperrors.ErrSessionNotFound)
}

func TestVerifierService_InactiveUser(t *testing.T) {
	tm := auth.NewTokenManager("test-secret")
	token, sessionID := issueToken(t, tm, "u1", false)

	svc := NewVerifierService(tm,
		&fakeSessionRepo{sessions: map[string]*domain.Session{
			sessionID: {ID: sessionID, UserID: "u1", ExpiresAt: time.Now().Add(time.Hour)},
		}},
		&fakeUserRepo{users: map[string]*domain.User{"u1": {ID: "u1", IsActive: false}}},
	)

	_, err := svc.Verify(context.Background(), token)
	require.ErrorIs(t, err, apperrors.ErrUserInactive)
}
