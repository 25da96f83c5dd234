package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "pedant-server/pkg/errors"
)

func newTestService(now time.Time) *jwtService {
	s := NewJWTService("secret", 15*time.Minute, 24*time.Hour, zap.NewNop()).(*jwtService)
	s.now = func() time.Time { return now }
	return s
}

func TestGenerateAndValidate(t *testing.T) {
	now := time.Now()
	s := newTestService(now)

	access, refresh, err := s.GenerateTokens(42, "sess-1")
	require.NoError(t, err)

	claims, err := s.ValidateToken(access)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), claims.UserID)
	assert.Equal(t, "sess-1", claims.SessionID)
	assert.False(t, claims.IsRefreshToken)

	claims, err = s.ValidateToken(refresh)
	require.NoError(t, err)
	assert.True(t, claims.IsRefreshToken)
}

func TestValidate_Expired(t *testing.T) {
	issued := time.Now()
	access, _, err := newTestService(issued).GenerateTokens(42, "")
	require.NoError(t, err)

	_, err = newTestService(issued.Add(time.Hour)).ValidateToken(access)
	assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
}

func TestValidate_WrongSecret(t *testing.T) {
	access, _, err := newTestService(time.Now()).GenerateTokens(42, "")
	require.NoError(t, err)

	other := NewJWTService("other", time.Minute, time.Hour, zap.NewNop())
	_, err = other.ValidateToken(access)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)

	_, err = other.ValidateToken("garbage")
	assert.Error(t, err)
}
