package services

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Prem30-jr/Hack-Tracker/apperr"
)

const testSecret = "test-secret-at-least-32-characters-long"

func TestJWTTokenService_RoundTrip(t *testing.T) {
	svc := NewJWTTokenService(testSecret, time.Hour)

	token, err := svc.Issue(Identity{
		UID:     "uid-123",
		Email:   "alice@example.com",
		Name:    "Alice",
		Picture: "https://img/alice.png",
	})
	require.NoError(t, err)

	identity, err := svc.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "uid-123", identity.UID)
	assert.Equal(t, "alice@example.com", identity.Email)
	assert.Equal(t, "Alice", identity.Name)
	assert.Equal(t, "https://img/alice.png", identity.Picture)
}

func TestJWTTokenService_RejectsGarbage(t *testing.T) {
	svc := NewJWTTokenService(testSecret, time.Hour)

	_, err := svc.Verify(context.Background(), "not-a-token")
	require.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

func TestJWTTokenService_RejectsWrongSecret(t *testing.T) {
	issuer := NewJWTTokenService("another-secret-also-32-characters-xx", time.Hour)
	verifier := NewJWTTokenService(testSecret, time.Hour)

	token, err := issuer.Issue(Identity{UID: "uid-123"})
	require.NoError(t, err)

	_, err = verifier.Verify(context.Background(), token)
	require.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

func TestJWTTokenService_RejectsExpired(t *testing.T) {
	svc := NewJWTTokenService(testSecret, time.Hour)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"uid": "uid-123",
		"iat": time.Now().Add(-2 * time.Hour).Unix(),
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	token, err := expired.SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = svc.Verify(context.Background(), token)
	require.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

func TestJWTTokenService_RejectsMissingUID(t *testing.T) {
	svc := NewJWTTokenService(testSecret, time.Hour)

	token, err := svc.Issue(Identity{Email: "no-uid@example.com"})
	require.NoError(t, err)

	_, err = svc.Verify(context.Background(), token)
	require.ErrorIs(t, err, apperr.ErrUnauthenticated)
}
