package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenService_CreateAndValidate(t *testing.T) {
	svc := NewTokenService("secret", time.Hour)

	token, err := svc.CreateToken("ops", "admin")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "ops", claims.Subject)
	assert.Equal(t, "admin", claims.Role)
}

func TestTokenService_RejectsEmptyToken(t *testing.T) {
	svc := NewTokenService("secret", time.Hour)

	_, err := svc.ValidateToken("")
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestTokenService_RejectsWrongSecret(t *testing.T) {
	other := NewTokenService("other-secret", time.Hour)
	token, err := other.CreateToken("ops", "admin")
	require.NoError(t, err)

	svc := NewTokenService("secret", time.Hour)
	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenService_RejectsExpiredToken(t *testing.T) {
	svc := NewTokenService("secret", time.Hour)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Subject: "ops",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})
	token, err := expired.SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestTokenService_RejectsWrongSigningMethod(t *testing.T) {
	svc := NewTokenService("secret", time.Hour)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{Subject: "ops"})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
