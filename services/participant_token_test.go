package services

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParticipantTokenRoundTrip(t *testing.T) {
	svc := NewParticipantTokenService("test-secret")

	token, err := svc.Issue(42, "ABC123")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, ok := svc.Verify(token)
	require.True(t, ok)
	assert.Equal(t, uint(42), claims.GroupID)
	assert.Equal(t, "ABC123", claims.PollCode)
	assert.NotEmpty(t, claims.SessionID)
}

func TestParticipantTokenSessionIDsDiffer(t *testing.T) {
	svc := NewParticipantTokenService("test-secret")

	first, err := svc.Issue(1, "ABC123")
	require.NoError(t, err)
	second, err := svc.Issue(1, "ABC123")
	require.NoError(t, err)

	firstClaims, ok := svc.Verify(first)
	require.True(t, ok)
	secondClaims, ok := svc.Verify(second)
	require.True(t, ok)

	assert.NotEqual(t, firstClaims.SessionID, secondClaims.SessionID)
}

func TestParticipantTokenRejectsTampering(t *testing.T) {
	svc := NewParticipantTokenService("test-secret")

	token, err := svc.Issue(7, "ABC123")
	require.NoError(t, err)

	// Flip a byte in the signature segment.
	altered := []byte(token)
	last := len(altered) - 1
	if altered[last] == 'A' {
		altered[last] = 'B'
	} else {
		altered[last] = 'A'
	}

	_, ok := svc.Verify(string(altered))
	assert.False(t, ok)
}

func TestParticipantTokenRejectsWrongSecret(t *testing.T) {
	token, err := NewParticipantTokenService("secret-one").Issue(7, "ABC123")
	require.NoError(t, err)

	_, ok := NewParticipantTokenService("secret-two").Verify(token)
	assert.False(t, ok)
}

func TestParticipantTokenRejectsMissing(t *testing.T) {
	svc := NewParticipantTokenService("test-secret")

	_, ok := svc.Verify("")
	assert.False(t, ok)
}

func TestParticipantTokenRejectsExpired(t *testing.T) {
	secret := "test-secret"
	now := time.Now()
	claims := ParticipantClaims{
		SessionID: "session",
		PollCode:  "ABC123",
		GroupID:   1,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now.Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(now.Add(-time.Hour)),
		},
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)

	_, ok := NewParticipantTokenService(secret).Verify(expired)
	assert.False(t, ok)
}
