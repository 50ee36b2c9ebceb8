package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/productivitybrain/core/internal/infrastructure/config"
	"github.com/productivitybrain/core/internal/infrastructure/logger"
)

func dispatchConfig(key string) config.DispatchConfig {
	return config.DispatchConfig{
		APIKey:   key,
		TokenTTL: time.Hour,
		Issuer:   "productivity-brain",
		Audience: "dispatch-host",
	}
}

func TestIssueAndValidateToken(t *testing.T) {
	svc := NewAuthService(dispatchConfig("shared-secret"), logger.NewNop())
	require.True(t, svc.Enabled())

	token, expires, err := svc.IssueToken("assistant")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, 5*time.Second)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "assistant", claims.Subject)
	assert.WithinDuration(t, expires, claims.ExpiresAt, time.Second)
}

func TestValidateTokenRejects(t *testing.T) {
	issuer := NewAuthService(dispatchConfig("shared-secret"), logger.NewNop())
	token, _, err := issuer.IssueToken("")
	require.NoError(t, err)

	t.Run("wrong key", func(t *testing.T) {
		other := NewAuthService(dispatchConfig("another-secret"), logger.NewNop())
		_, err := other.ValidateToken(token)
		assert.Error(t, err)
	})

	t.Run("wrong audience", func(t *testing.T) {
		cfg := dispatchConfig("shared-secret")
		cfg.Audience = "someone-else"
		_, err := NewAuthService(cfg, logger.NewNop()).ValidateToken(token)
		assert.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		later := NewAuthService(dispatchConfig("shared-secret"), logger.NewNop())
		later.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err := later.ValidateToken(token)
		assert.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := issuer.ValidateToken("not-a-token")
		assert.Error(t, err)
	})
}

func TestAuthDisabled(t *testing.T) {
	svc := NewAuthService(dispatchConfig(""), logger.NewNop())
	assert.False(t, svc.Enabled())

	_, _, err := svc.IssueToken("x")
	assert.ErrorIs(t, err, ErrAuthDisabled)
	_, err = svc.ValidateToken("x")
	assert.ErrorIs(t, err, ErrAuthDisabled)
}
