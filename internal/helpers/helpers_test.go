package helpers

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signHS256(t *testing.T, secret, subject string, expiresIn time.Duration) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestValidateTokenHMAC(t *testing.T) {
	t.Setenv("AUTH_JWKS_URL", "")
	t.Setenv("JWT_SECRET", "unit-test-secret")

	claims, err := ValidateToken(signHS256(t, "unit-test-secret", "user-123", time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.Subject)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	t.Setenv("AUTH_JWKS_URL", "")
	t.Setenv("JWT_SECRET", "unit-test-secret")

	_, err := ValidateToken(signHS256(t, "other-secret", "user-123", time.Hour))
	assert.Error(t, err)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	t.Setenv("AUTH_JWKS_URL", "")
	t.Setenv("JWT_SECRET", "unit-test-secret")

	_, err := ValidateToken(signHS256(t, "unit-test-secret", "user-123", -time.Minute))
	assert.Error(t, err)
}

func TestValidateTokenNeedsSecret(t *testing.T) {
	t.Setenv("AUTH_JWKS_URL", "")
	t.Setenv("JWT_SECRET", "")

	_, err := ValidateToken("whatever")
	assert.Error(t, err)
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", BearerToken("Bearer abc"))
	assert.Equal(t, "", BearerToken(""))
	assert.Equal(t, "", BearerToken("abc"))
	assert.Equal(t, "", BearerToken("Basic abc"))
}

func TestStringTrim(t *testing.T) {
	assert.Equal(t, "hello", StringTrim("  hello \n"))
}
