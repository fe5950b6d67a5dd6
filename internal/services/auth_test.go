package services

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/roadmap-backend/internal/platform/ctxutil"
	"github.com/yungbote/roadmap-backend/internal/platform/logger"
)

func TestAuthServiceRoundTrip(t *testing.T) {
	svc := NewAuthService(logger.Nop(), "secret", time.Hour)
	userID := uuid.New()

	token, err := svc.MintToken(userID, 0)
	require.NoError(t, err)

	ctx, err := svc.SetContextFromToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, userID, ctxutil.UserID(ctx))
}

func TestAuthServiceRejects(t *testing.T) {
	svc := NewAuthService(logger.Nop(), "secret", time.Hour)
	other := NewAuthService(logger.Nop(), "other-secret", time.Hour)
	userID := uuid.New()

	foreign, err := other.MintToken(userID, time.Minute)
	require.NoError(t, err)
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, JWTClaims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   userID.String(),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	}}).SignedString([]byte("secret"))
	require.NoError(t, err)
	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, JWTClaims{RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}).SignedString([]byte("secret"))
	require.NoError(t, err)
	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, JWTClaims{RegisteredClaims: jwt.RegisteredClaims{
		Subject: userID.String(),
	}}).SignedString([]byte("secret"))
	require.NoError(t, err)

	for name, token := range map[string]string{
		"empty":      "",
		"garbage":    "not-a-token",
		"foreign":    foreign,
		"expired":    expired,
		"no subject": noSubject,
		"no expiry":  noExpiry,
	} {
		t.Run(name, func(t *testing.T) {
			ctx, err := svc.SetContextFromToken(context.Background(), token)
			assert.Error(t, err)
			assert.Equal(t, uuid.Nil, ctxutil.UserID(ctx))
		})
	}
}
