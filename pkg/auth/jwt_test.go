package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateParse(t *testing.T) {
	t.Setenv("GUARD_JWT_SECRET", "test-secret")
	tok, err := Generate("owner", "Owner", true, time.Hour)
	require.NoError(t, err)

	claims, err := Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "owner", claims.UserID)
	assert.Equal(t, "Owner", claims.Username)
	assert.True(t, claims.Admin)
}

func TestParseRejectsExpired(t *testing.T) {
	t.Setenv("GUARD_JWT_SECRET", "test-secret")
	tok, err := Generate("owner", "Owner", true, -time.Minute)
	require.NoError(t, err)
	_, err = Parse(tok)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestParseRejectsOtherSecret(t *testing.T) {
	t.Setenv("GUARD_JWT_SECRET", "one")
	tok, err := Generate("owner", "Owner", true, time.Hour)
	require.NoError(t, err)

	t.Setenv("GUARD_JWT_SECRET", "two")
	_, err = Parse(tok)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestParseRejectsUnsignedToken(t *testing.T) {
	tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: "x"}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = Parse(tok)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestParseGarbage(t *testing.T) {
	_, err := Parse("not-a-token")
	assert.ErrorIs(t, err, ErrInvalid)
}
