package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestResolveValidToken(t *testing.T) {
	resolver := NewTokenResolver("test-secret")
	tokenString := signToken(t, "test-secret", jwt.MapClaims{
		"sub":  "u1",
		"name": "Alice",
		"exp":  time.Now().Add(time.Hour).Unix(),
	})

	identity, err := resolver.Resolve(tokenString)
	require.NoError(t, err)
	assert.Equal(t, "u1", identity.UserID)
	assert.Equal(t, "Alice", identity.UserName)
}

func TestResolveFallsBackToSubjectForName(t *testing.T) {
	resolver := NewTokenResolver("test-secret")
	tokenString := signToken(t, "test-secret", jwt.MapClaims{"sub": "u1"})

	identity, err := resolver.Resolve(tokenString)
	require.NoError(t, err)
	assert.Equal(t, "u1", identity.UserName)
}

func TestResolveRejectsBadTokens(t *testing.T) {
	resolver := NewTokenResolver("test-secret")

	tests := []struct {
		name        string
		tokenString string
	}{
		{"empty token", ""},
		{"garbage token", "not.a.jwt"},
		{"wrong secret", signToken(t, "other-secret", jwt.MapClaims{"sub": "u1"})},
		{"missing subject", signToken(t, "test-secret", jwt.MapClaims{"name": "Alice"})},
		{"expired token", signToken(t, "test-secret", jwt.MapClaims{
			"sub": "u1",
			"exp": time.Now().Add(-time.Hour).Unix(),
		})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := resolver.Resolve(tt.tokenString)
			assert.Error(t, err)
		})
	}
}

func TestMiddleware(t *testing.T) {
	resolver := NewTokenResolver("test-secret")
	var got *Identity
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = FromRequest(r)
		w.WriteHeader(http.StatusOK)
	})
	protected := resolver.Middleware(next)

	t.Run("missing header", func(t *testing.T) {
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("invalid token", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", "Bearer nope")
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("valid token", func(t *testing.T) {
		tokenString := signToken(t, "test-secret", jwt.MapClaims{"sub": "u1", "name": "Alice"})
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", "Bearer "+tokenString)
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, got)
		assert.Equal(t, "u1", got.UserID)
	})
}
