package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-jwt-secret-at-least-32-characters-long"

func TestTokenService_MintValidate(t *testing.T) {
	svc := NewTokenService(testSecret, 24*time.Hour)

	token, err := svc.Mint("user@test.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	email, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "user@test.com", email)
}

func TestTokenService_Expired(t *testing.T) {
	svc := NewTokenService(testSecret, -time.Second)

	token, err := svc.Mint("user@test.com")
	require.NoError(t, err)

	_, err = svc.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_WrongSecret(t *testing.T) {
	minter := NewTokenService(testSecret, time.Hour)
	validator := NewTokenService("a-completely-different-signing-secret", time.Hour)

	token, err := minter.Mint("user@test.com")
	require.NoError(t, err)

	_, err = validator.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_Malformed(t *testing.T) {
	svc := NewTokenService(testSecret, time.Hour)

	for _, token := range []string{"", "garbage", "a.b.c"} {
		_, err := svc.Validate(token)
		assert.ErrorIs(t, err, ErrInvalidToken, "token %q", token)
	}
}

func TestTokenFromRequest_HeaderWinsOverCookie(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer header-token")
	r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "cookie-token"})

	assert.Equal(t, "header-token", TokenFromRequest(r))
}

func TestTokenFromRequest_CookieFallback(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "cookie-token"})

	assert.Equal(t, "cookie-token", TokenFromRequest(r))
}

func TestTokenFromRequest_Anonymous(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Equal(t, "", TokenFromRequest(r))

	// A non-bearer Authorization header is ignored, not an error.
	r.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	assert.Equal(t, "", TokenFromRequest(r))
}
