package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTokenManager_RoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret")

	token, sessionID, err := tm.GenerateToken("u1", true, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, sessionID)

	claims, err := tm.ValidateToken(token)
	require.NoError(t, err)
	require.Equal(t, "u1", claims.UserID)
	require.Equal(t, sessionID, claims.SessionID)
	require.True(t, claims.IsAdmin)
}

func TestTokenManager_RejectsWrongSecret(t *testing.T) {
	tm := NewTokenManager("test-secret")
	other := NewTokenManager("other-secret")

	token, _, err := tm.GenerateToken("u1", false, time.Hour)
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	require.Error(t, err)
}

func TestTokenManager_RejectsExpired(t *testing.T) {
	tm := NewTokenManager("test-secret")

	token, _, err := tm.GenerateToken("u1", false, -time.Minute)
	require.NoError(t, err)

	_, err = tm.ValidateToken(token)
	require.Error(t, err)
}
