package auth

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenService_GenerateAndParse(t *testing.T) {
	ts := NewTokenService([]byte("super-secret"), time.Hour)

	token, err := ts.GenerateToken(42)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, err := ts.UserIDFromToken(token)
	require.NoError(t, err)
	assert.Equal(t, 42, userID)
}

func TestTokenService_Expired(t *testing.T) {
	ts := NewTokenService([]byte("super-secret"), time.Hour)
	ts.ttl = -time.Second

	token, err := ts.GenerateToken(42)
	require.NoError(t, err)

	_, err = ts.UserIDFromToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_WrongSecret(t *testing.T) {
	ts := NewTokenService([]byte("right-secret"), time.Hour)
	token, err := ts.GenerateToken(42)
	require.NoError(t, err)

	other := NewTokenService([]byte("wrong-secret"), time.Hour)
	_, err = other.UserIDFromToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_Malformed(t *testing.T) {
	ts := NewTokenService([]byte("super-secret"), time.Hour)
	_, err := ts.UserIDFromToken("not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_DefaultTTL(t *testing.T) {
	ts := NewTokenService([]byte("super-secret"), 0)
	assert.Equal(t, DefaultTTL, ts.ttl)
}

func TestContextRoundTrip(t *testing.T) {
	ctx := ContextWithUserID(t.Context(), 13)
	userID, ok := UserIDFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, 13, userID)

	_, ok = UserIDFromContext(t.Context())
	assert.False(t, ok)
}

func TestBearerToken(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	assert.Empty(t, BearerToken(req))

	req.Header.Set("Authorization", "Bearer abc.def.ghi")
	assert.Equal(t, "abc.def.ghi", BearerToken(req))

	// raw token without the scheme prefix still works
	req.Header.Set("Authorization", "abc.def.ghi")
	assert.Equal(t, "abc.def.ghi", BearerToken(req))
}
