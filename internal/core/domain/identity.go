package domain

import "time"

// Identity is a verified principal behind an authenticated connection.
// A nil *Identity on a connection means the audience member is anonymous.
type Identity struct {
	UserID    string
	SessionID string
	IsAdmin   bool
}

// User is the platform account record backing an identity.
type User struct {
	ID           string
	DisplayName  string
	Email        string
	IsAdmin      bool
	IsActive     bool
	CreatedAt    time.Time
	LastActiveAt *time.Time
}

// Session is the server-side record for an issued session token.
// Verification requires the row to still exist and not be expired.
type Session struct {
	ID        string
	UserID    string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session has passed its expiry.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}
