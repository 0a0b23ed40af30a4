package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	InitJWT("unit-test-secret", time.Hour)

	token, err := GenerateJWT(42, "estimator@example.com")
	require.NoError(t, err)

	claims, err := ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, 42, claims.UserID)
	assert.Equal(t, "estimator@example.com", claims.Email)
}

func TestValidateJWT_Rejects(t *testing.T) {
	InitJWT("unit-test-secret", time.Hour)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Email: "estimator@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	expiredToken, err := expired.SignedString([]byte("unit-test-secret"))
	require.NoError(t, err)

	otherKey := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{Email: "estimator@example.com"})
	forged, err := otherKey.SignedString([]byte("someone-else"))
	require.NoError(t, err)

	for name, tok := range map[string]string{
		"garbage": "not.a.token",
		"expired": expiredToken,
		"forged":  forged,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ValidateJWT(tok)
			assert.True(t, errors.Is(err, ErrInvalidToken), "got %v", err)
		})
	}
}
