package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mahmoud1ghareeb1/Al-Ebdaa-Platform/internal/session"
)

func TestAuthService_RoundTrip(t *testing.T) {
	auth := NewAuthService(testConfig())
	id := uuid.New()

	token, err := auth.GenerateLearnerToken(id, time.Hour)
	require.NoError(t, err)

	claims, err := auth.ValidateToken(token)
	require.NoError(t, err)
	got, err := claims.LearnerID()
	require.NoError(t, err)
	assert.Equal(t, id, got)
	assert.Equal(t, RoleLearner, claims.Role)
}

func TestAuthService_Rejects(t *testing.T) {
	auth := NewAuthService(testConfig())
	id := uuid.New()

	expired, err := auth.GenerateLearnerToken(id, -time.Minute)
	require.NoError(t, err)
	_, err = auth.ValidateToken(expired)
	assert.ErrorIs(t, err, ErrTokenExpired)

	other := NewAuthService(&testConfigOtherSecret)
	forged, err := other.GenerateLearnerToken(id, time.Hour)
	require.NoError(t, err)
	_, err = auth.ValidateToken(forged)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	admin := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: id.String(), ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		Role:             "admin",
	})
	signed, err := admin.SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, err = auth.ValidateToken(signed)
	assert.ErrorIs(t, err, ErrNotLearner)

	badSubject := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "42", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
		Role:             RoleLearner,
	})
	signed, err = badSubject.SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, err = auth.ValidateToken(signed)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	_, err = auth.ValidateToken("not.a.token")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestClaimsIdentity(t *testing.T) {
	auth := NewAuthService(testConfig())
	now := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)

	id := uuid.New()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: id.String(), ExpiresAt: jwt.NewNumericDate(now.Add(15 * time.Minute))},
		Role:             RoleLearner,
	}
	identity := auth.Identity(claims)

	got, err := identity.CurrentUserID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, id, got)

	// The start token expiring does not unbind the session.
	auth.now = func() time.Time { return now.Add(2 * time.Hour) }
	got, err = identity.CurrentUserID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, id, got)

	fresh := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: id.String(), ExpiresAt: jwt.NewNumericDate(now.Add(3 * time.Hour))},
		Role:             RoleLearner,
	}
	got, err = identity.CurrentUserID(ContextWithClaims(context.Background(), fresh))
	require.NoError(t, err)
	assert.Equal(t, id, got)

	stranger := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: uuid.NewString(), ExpiresAt: jwt.NewNumericDate(now.Add(3 * time.Hour))},
		Role:             RoleLearner,
	}
	_, err = identity.CurrentUserID(ContextWithClaims(context.Background(), stranger))
	assert.ErrorIs(t, err, session.ErrUnauthenticated)

	_, err = auth.Identity(nil).CurrentUserID(context.Background())
	assert.ErrorIs(t, err, session.ErrUnauthenticated)
}
