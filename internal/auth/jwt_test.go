package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService() *JWTService {
	return NewJWTService("test-secret-key-for-testing-purposes", time.Hour)
}

func TestNewJWTService(t *testing.T) {
	service := newTestJWTService()
	assert.NotNil(t, service)
	assert.Equal(t, time.Hour, service.TokenExpiry())
}

func TestJWTService_GenerateToken_Success(t *testing.T) {
	service := newTestJWTService()

	token, expiresAt, err := service.GenerateToken("tok-1", "user-123", "jane@example.com", "Jane Doe")

	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.True(t, expiresAt.After(time.Now()))
	assert.True(t, expiresAt.Before(time.Now().Add(61*time.Minute)))
}

func TestJWTService_ValidateToken_Valid(t *testing.T) {
	service := newTestJWTService()

	token, _, err := service.GenerateToken("tok-1", "user-456", "jane@example.com", "Jane Doe")
	require.NoError(t, err)

	claims, err := service.ValidateToken(token)

	require.NoError(t, err)
	assert.Equal(t, "user-456", claims.UserID)
	assert.Equal(t, "jane@example.com", claims.Email)
	assert.Equal(t, "Jane Doe", claims.Name)
	assert.Equal(t, "user-456", claims.Subject)
	assert.Equal(t, "tok-1", claims.ID)
}

func TestJWTService_ValidateToken_Expired(t *testing.T) {
	service := NewJWTService("test-secret", -time.Minute)

	token, _, err := service.GenerateToken("tok-1", "user-123", "jane@example.com", "")
	require.NoError(t, err)

	claims, err := service.ValidateToken(token)

	assert.ErrorIs(t, err, ErrExpiredToken)
	assert.Nil(t, claims)
}

func TestJWTService_ValidateToken_Invalid(t *testing.T) {
	service := newTestJWTService()

	tests := []struct {
		name  string
		token string
	}{
		{"empty token", ""},
		{"random string", "not-a-valid-token"},
		{"malformed JWT", "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9.invalid.signature"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := service.ValidateToken(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
			assert.Nil(t, claims)
		})
	}
}

func TestJWTService_ValidateToken_WrongSignature(t *testing.T) {
	service1 := NewJWTService("secret-key-1", time.Hour)
	service2 := NewJWTService("secret-key-2", time.Hour)

	token, _, err := service1.GenerateToken("tok-1", "user-123", "jane@example.com", "")
	require.NoError(t, err)

	claims, err := service2.ValidateToken(token)

	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Nil(t, claims)
}

func TestJWTService_ValidateToken_WrongAlgorithm(t *testing.T) {
	service := newTestJWTService()

	token := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		UserID: "user-123",
		Email:  "jane@example.com",
	})
	tokenString, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	claims, err := service.ValidateToken(tokenString)

	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Nil(t, claims)
}

func TestJWTService_TokensAreUniquePerID(t *testing.T) {
	service := newTestJWTService()

	first, _, err := service.GenerateToken("tok-1", "user-123", "jane@example.com", "")
	require.NoError(t, err)
	second, _, err := service.GenerateToken("tok-2", "user-123", "jane@example.com", "")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

// ============================================
// PeekClaims Tests
// ============================================

func TestPeekClaims_ReadsWithoutSecret(t *testing.T) {
	service := newTestJWTService()
	token, expiresAt, err := service.GenerateToken("tok-1", "user-123", "jane@example.com", "Jane Doe")
	require.NoError(t, err)

	claims, err := PeekClaims(token)

	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "Jane Doe", claims.Name)
	assert.False(t, claims.ExpiredAt(time.Now()))
	assert.True(t, claims.ExpiredAt(expiresAt.Add(time.Second)))
}

func TestPeekClaims_ExpiredTokenStillDecodes(t *testing.T) {
	service := NewJWTService("test-secret", -time.Minute)
	token, _, err := service.GenerateToken("tok-1", "user-123", "jane@example.com", "")
	require.NoError(t, err)

	claims, err := PeekClaims(token)

	require.NoError(t, err)
	assert.True(t, claims.ExpiredAt(time.Now()))
}

func TestPeekClaims_OpaqueCredential(t *testing.T) {
	for _, token := range []string{"", "opaque-session-token", "a.b.c"} {
		claims, err := PeekClaims(token)
		assert.ErrorIs(t, err, ErrNotJWT)
		assert.Nil(t, claims)
	}
}

func TestClaims_ExpiredAt_NoExpiry(t *testing.T) {
	claims := &Claims{UserID: "user-123"}

	assert.False(t, claims.ExpiredAt(time.Now().Add(100*365*24*time.Hour)))
}
