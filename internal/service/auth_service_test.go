package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/tuwir2002/maligo-backend/internal/config"
)

func newAuthService(t *testing.T) *AuthService {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cfg := &config.Config{
		JWTSecret:  "test-secret",
		JWTExpiry:  time.Hour,
		BcryptCost: 4, // minimum cost, keeps tests fast
	}
	return NewAuthService(cfg, rdb)
}

func TestPasswordHashRoundTrip(t *testing.T) {
	svc := newAuthService(t)

	hash, err := svc.HashPassword("rahasia123")
	require.NoError(t, err)
	require.NotEqual(t, "rahasia123", hash)

	require.NoError(t, svc.CheckPassword(hash, "rahasia123"))
	require.ErrorIs(t, svc.CheckPassword(hash, "salah"), ErrInvalidCredentials)
}

func TestStudentTokenSingleDevice(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	token, err := svc.GenerateStudentToken(ctx, 42, "231000042")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	// Second login while the session lives must be rejected.
	_, err = svc.GenerateStudentToken(ctx, 42, "231000042")
	require.ErrorIs(t, err, ErrSessionAlreadyActive)

	// A different student is unaffected.
	_, err = svc.GenerateStudentToken(ctx, 43, "231000043")
	require.NoError(t, err)

	// After a reset the original student can log in again.
	require.NoError(t, svc.ResetStudentSession(ctx, 42))
	_, err = svc.GenerateStudentToken(ctx, 42, "231000042")
	require.NoError(t, err)
}

func TestStudentTokenClaims(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	token, err := svc.GenerateStudentToken(ctx, 7, "231000007")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	require.Equal(t, TokenTypeStudent, claims.TokenType)
	require.Equal(t, 7, claims.UserID)
	require.Equal(t, "231000007", claims.NIM)
	require.NotEmpty(t, claims.ID)

	// The JTI registered in Redis matches the token's.
	require.NoError(t, svc.ValidateStudentSession(ctx, 7, claims.ID))
	require.Error(t, svc.ValidateStudentSession(ctx, 7, "stale-jti"))
}

func TestValidateStudentSessionExpired(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	token, err := svc.GenerateStudentToken(ctx, 9, "231000009")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)

	// Once the session is gone from Redis, the token no longer counts.
	require.NoError(t, svc.ResetStudentSession(ctx, 9))
	require.Error(t, svc.ValidateStudentSession(ctx, 9, claims.ID))
}

func TestLecturerTokenMultiDevice(t *testing.T) {
	svc := newAuthService(t)

	// Lecturers carry no Redis session, so repeated logins succeed.
	t1, err := svc.GenerateLecturerToken(3, "0012345678")
	require.NoError(t, err)
	t2, err := svc.GenerateLecturerToken(3, "0012345678")
	require.NoError(t, err)
	require.NotEqual(t, t1, t2)

	claims, err := svc.ValidateToken(t1)
	require.NoError(t, err)
	require.Equal(t, TokenTypeLecturer, claims.TokenType)
	require.Equal(t, "0012345678", claims.NIDN)
}

func TestValidateTokenRejectsForgedSignature(t *testing.T) {
	svc := newAuthService(t)

	other := newAuthService(t)
	other.cfg.JWTSecret = "another-secret"

	token, err := other.GenerateLecturerToken(1, "0011223344")
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.Error(t, err)
}
