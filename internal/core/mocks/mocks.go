package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/cuelight/engage-backend/internal/core/domain"
	"github.com/cuelight/engage-backend/internal/core/ports"
)

// MockSessionRepository is a mock implementation of ports.SessionRepository
type MockSessionRepository struct {
	mock.Mock
}

func NewMockSessionRepository() *MockSessionRepository {
	return &MockSessionRepository{}
}

func (m *MockSessionRepository) GetByID(ctx context.Context, sessionID string) (*domain.Session, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

// MockUserRepository is a mock implementation of ports.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{}
}

func (m *MockUserRepository) GetByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// MockEventRepository is a mock implementation of ports.EventRepository
type MockEventRepository struct {
	mock.Mock
}

func NewMockEventRepository() *MockEventRepository {
	return &MockEventRepository{}
}

func (m *MockEventRepository) GetByID(ctx context.Context, eventID string) (*domain.LiveEvent, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LiveEvent), args.Error(1)
}

func (m *MockEventRepository) GetOwnerID(ctx context.Context, eventID string) (string, error) {
	args := m.Called(ctx, eventID)
	return args.String(0), args.Error(1)
}

// MockCredentialVerifier is a mock implementation of ports.CredentialVerifier
type MockCredentialVerifier struct {
	mock.Mock
}

func NewMockCredentialVerifier() *MockCredentialVerifier {
	return &MockCredentialVerifier{}
}

func (m *MockCredentialVerifier) Verify(ctx context.Context, token string) (*domain.Identity, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Identity), args.Error(1)
}

// MockEventAccessPolicy is a mock implementation of ports.EventAccessPolicy
type MockEventAccessPolicy struct {
	mock.Mock
}

func NewMockEventAccessPolicy() *MockEventAccessPolicy {
	return &MockEventAccessPolicy{}
}

func (m *MockEventAccessPolicy) CanControlEvent(ctx context.Context, identity *domain.Identity, eventID string) (bool, error) {
	args := m.Called(ctx, identity, eventID)
	return args.Bool(0), args.Error(1)
}

// MockRealtimePublisher is a mock implementation of ports.RealtimePublisher
type MockRealtimePublisher struct {
	mock.Mock
}

func NewMockRealtimePublisher() *MockRealtimePublisher {
	return &MockRealtimePublisher{}
}

func (m *MockRealtimePublisher) SendNotificationToUser(userID string, payload any) bool {
	args := m.Called(userID, payload)
	return args.Bool(0)
}

func (m *MockRealtimePublisher) SendNotificationToUsers(userIDs []string, payload any) int {
	args := m.Called(userIDs, payload)
	return args.Int(0)
}

func (m *MockRealtimePublisher) SendCueToEvent(eventID string, payload any) {
	m.Called(eventID, payload)
}

func (m *MockRealtimePublisher) SetEventTimecode(eventID string, timecode int64) {
	m.Called(eventID, timecode)
}

func (m *MockRealtimePublisher) ConnectionStats() domain.ConnectionStats {
	args := m.Called()
	return args.Get(0).(domain.ConnectionStats)
}

var _ ports.SessionRepository = (*MockSessionRepository)(nil)
var _ ports.UserRepository = (*MockUserRepository)(nil)
var _ ports.EventRepository = (*MockEventRepository)(nil)
var _ ports.CredentialVerifier = (*MockCredentialVerifier)(nil)
var _ ports.EventAccessPolicy = (*MockEventAccessPolicy)(nil)
var _ ports.RealtimePublisher = (*MockRealtimePublisher)(nil)
