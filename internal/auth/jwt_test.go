package auth

import (
	"testing"
	"time"

	"leisuretimez/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testJWT() *config.JWTConfig {
	return &config.JWTConfig{
		AccessSecret:  "access",
		RefreshSecret: "refresh",
		AccessExpiry:  time.Minute,
		RefreshExpiry: time.Hour,
		Issuer:        "leisuretimez",
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	cfg := testJWT()
	tok, err := GenerateAccessToken(cfg, 42, "ada@example.com", RoleStaff)
	require.NoError(t, err)

	claims, err := ParseAccessToken(cfg, tok)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "ada@example.com", claims.Email)
	assert.Equal(t, RoleStaff, claims.Role)
	assert.Equal(t, "leisuretimez", claims.Issuer)

	other := testJWT()
	other.AccessSecret = "someone-else"
	_, err = ParseAccessToken(other, tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRefreshTokenIsNotAnAccessToken(t *testing.T) {
	cfg := testJWT()
	refresh, err := GenerateRefreshToken(cfg, 7)
	require.NoError(t, err)

	id, err := ParseRefreshToken(cfg, refresh)
	require.NoError(t, err)
	assert.Equal(t, uint(7), id)

	_, err = ParseAccessToken(cfg, refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)

	access, err := GenerateAccessToken(cfg, 7, "", RoleCustomer)
	require.NoError(t, err)
	_, err = ParseRefreshToken(cfg, access)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExpiredAccessToken(t *testing.T) {
	cfg := testJWT()
	cfg.AccessExpiry = -time.Minute
	tok, err := GenerateAccessToken(cfg, 1, "", RoleCustomer)
	require.NoError(t, err)
	_, err = ParseAccessToken(cfg, tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestActionToken(t *testing.T) {
	cfg := testJWT()
	stamp := PasswordStamp("$2a$10$hash")
	tok, err := GenerateActionToken(cfg, PurposeReset, 5, stamp, ResetExpiry)
	require.NoError(t, err)

	claims, err := ParseActionToken(cfg, tok, PurposeReset, 5)
	require.NoError(t, err)
	assert.Equal(t, stamp, claims.Stamp)

	_, err = ParseActionToken(cfg, tok, PurposeActivate, 5)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = ParseActionToken(cfg, tok, PurposeReset, 6)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = ParseActionToken(cfg, "not-a-token", PurposeReset, 5)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, err := GenerateActionToken(cfg, PurposeActivate, 5, "", -time.Minute)
	require.NoError(t, err)
	_, err = ParseActionToken(cfg, expired, PurposeActivate, 5)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestPasswordStampChangesWithHash(t *testing.T) {
	a := PasswordStamp("hash-one")
	assert.Len(t, a, 16)
	assert.Equal(t, a, PasswordStamp("hash-one"))
	assert.NotEqual(t, a, PasswordStamp("hash-two"))
}
