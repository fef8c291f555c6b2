package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cuelight/engage-backend/internal/core/domain"
	apperrors "github.com/cuelight/engage-backend/internal/core/errors"
)

type fakeEventRepo struct {
	owners    map[string]string
	lookupErr error
}

func (f *fakeEventRepo) GetByID(_ context.Context, eventID string) (*domain.LiveEvent, error) {
	owner, ok := f.owners[eventID]
	if !ok {
		return nil, apperrors.ErrEventNotFound
	}
	return &domain.LiveEvent{ID: eventID, OwnerID: owner}, nil
}

func (f *fakeEventRepo) GetOwnerID(_ context.Context, eventID string) (string, error) {
	if f.lookupErr != nil {
		return "", f.lookupErr
	}
	owner, ok := f.owners[eventID]
	if !ok {
		return "", apperrors.ErrEventNotFound
	}
	return owner, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAccessService_AdminAlwaysAllowed(t *testing.T) {
	svc := NewAccessService(&fakeEventRepo{owners: map[string]string{}}, testLogger())

	allowed, err := svc.CanControlEvent(context.Background(), &domain.Identity{UserID: "u9", IsAdmin: true}, "e1")
	require.NoError(t, err)
	require.True(t, allowed)
}

func TestAccessService_OwnerAllowed(t *testing.T) {
	svc := NewAccessService(&fakeEventRepo{owners: map[string]string{"e1": "u1"}}, testLogger())

	allowed, err := svc.CanControlEvent(context.Background(), &domain.Identity{UserID: "u1"}, "e1")
	require.NoError(t, err)
	require.True(t, allowed)
}

func TestAccessService_NonOwnerDenied(t *testing.T) {
	svc := NewAccessService(&fakeEventRepo{owners: map[string]string{"e1": "u1"}}, testLogger())

	allowed, err := svc.CanControlEvent(context.Background(), &domain.Identity{UserID: "u2"}, "e1")
	require.NoError(t, err)
	require.False(t, allowed)
}

func TestAccessService_UnknownEventFailsClosed(t *testing.T) {
	svc := NewAccessService(&fakeEventRepo{owners: map[string]string{}}, testLogger())

	allowed, err := svc.CanControlEvent(context.Background(), &domain.Identity{UserID: "u1"}, "missing")
	require.NoError(t, err)
	require.False(t, allowed)
}

func TestAccessService_LookupFailureDenies(t *testing.T) {
	svc := NewAccessService(&fakeEventRepo{lookupErr: errors.New("db down")}, testLogger())

	allowed, err := svc.CanControlEvent(context.Background(), &domain.Identity{UserID: "u1"}, "e1")
	require.Error(t, err)
	require.False(t, allowed)
}

func TestAccessService_NilIdentityDenied(t *testing.T) {
	svc := NewAccessService(&fakeEventRepo{owners: map[string]string{"e1": "u1"}}, testLogger())

	allowed, err := svc.CanControlEvent(context.Background(), nil, "e1")
	require.ErrorIs(t, err, apperrors.ErrNotAuthenticated)
	require.False(t, allowed)
}
