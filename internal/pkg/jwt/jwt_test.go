package jwt

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestControlToken(t *testing.T) {
	svc := NewJWTService("test-secret", "1h", 0)

	token, expiresAt, err := svc.GenerateControlToken("inst-1")
	require.NoError(t, err)
	assert.InDelta(t, time.Now().Add(time.Hour).Unix(), expiresAt, 5)

	decoded, err := svc.JWTAuth().Decode(token)
	require.NoError(t, err)
	claims, err := decoded.AsMap(context.Background())
	require.NoError(t, err)
	assert.Equal(t, TokenTypeControl, claims["type"])
	assert.Equal(t, "inst-1", claims["installation_id"])

	_, _, err = NewJWTService("s", "not-a-duration", 0).GenerateControlToken("inst-1")
	assert.Error(t, err)
}

func TestStreamToken(t *testing.T) {
	svc := NewJWTService("test-secret", "1h", 2*time.Minute)

	token, expiresIn, err := svc.GenerateStreamToken("inst-1")
	require.NoError(t, err)
	assert.Equal(t, 120, expiresIn)

	id, err := svc.ValidateStreamToken(token)
	require.NoError(t, err)
	assert.Equal(t, "inst-1", id)

	control, _, err := svc.GenerateControlToken("inst-1")
	require.NoError(t, err)
	_, err = svc.ValidateStreamToken(control)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = NewJWTService("other-secret", "1h", 0).ValidateStreamToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRevokeToken(t *testing.T) {
	svc := NewJWTService("test-secret", "1h", 0)

	assert.False(t, svc.IsTokenRevoked("abc"))
	svc.RevokeToken("abc")
	assert.True(t, svc.IsTokenRevoked("abc"))
}
