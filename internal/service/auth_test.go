package service

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionJWT(t *testing.T) {
	auth := NewAuthService("test-secret", "svc-token", false, time.Hour)

	token, expiresAt, err := auth.GenerateJWT("idp|alice")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	subject, err := auth.VerifyJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "idp|alice", subject)

	other := NewAuthService("other-secret", "", false, time.Hour)
	_, err = other.VerifyJWT(token)
	assert.ErrorIs(t, err, ErrInvalidSession)

	expired := NewAuthService("test-secret", "", false, -time.Minute)
	stale, _, err := expired.GenerateJWT("idp|alice")
	require.NoError(t, err)
	_, err = auth.VerifyJWT(stale)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestSessionCookies(t *testing.T) {
	auth := NewAuthService("test-secret", "", true, time.Hour)

	rec := httptest.NewRecorder()
	auth.SetJWTCookie(rec, "tok", time.Now().Add(time.Hour))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, SessionCookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.True(t, cookies[0].Secure)

	rec = httptest.NewRecorder()
	auth.ClearJWTCookie(rec)
	cookies = rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Empty(t, cookies[0].Value)
}

func TestServiceToken(t *testing.T) {
	assert.True(t, NewAuthService("s", "svc", false, time.Hour).ValidServiceToken("svc"))
	assert.False(t, NewAuthService("s", "svc", false, time.Hour).ValidServiceToken("nope"))
	assert.False(t, NewAuthService("s", "", false, time.Hour).ValidServiceToken(""))
}

func TestGenerateState(t *testing.T) {
	auth := NewAuthService("s", "", false, time.Hour)
	a, err := auth.GenerateState()
	require.NoError(t, err)
	b, err := auth.GenerateState()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.Len(t, a, 43)
}
