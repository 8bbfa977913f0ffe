package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingToken = errors.New("missing token")
	ErrInvalidToken = errors.New("invalid token")
)

// Identity is the already-authenticated user handed to the chat core.
type Identity struct {
	UserID   string
	UserName string
}

// TokenResolver verifies HMAC-signed JWTs issued by the user service
// and extracts the caller's identity from the 'sub' and 'name' claims.
type TokenResolver struct {
	secret []byte
}

// NewTokenResolver creates a resolver for the given shared secret.
func NewTokenResolver(secret string) *TokenResolver {
	return &TokenResolver{secret: []byte(secret)}
}

// Resolve parses and verifies a token string.
func (r *TokenResolver) Resolve(tokenString string) (*Identity, error) {
	if tokenString == "" {
		return nil, ErrMissingToken
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return r.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	name, _ := claims["name"].(string)
	if name == "" {
		name = sub
	}

	return &Identity{UserID: sub, UserName: name}, nil
}

type contextKey struct{}

// identityKey stores the resolved Identity on the request context.
var identityKey = contextKey{}

func withIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// FromRequest returns the Identity attached by Middleware, if any.
func FromRequest(r *http.Request) (*Identity, bool) {
	id, ok := r.Context().Value(identityKey).(*Identity)
	return id, ok
}

// Middleware rejects requests without a valid bearer token and attaches
// the resolved Identity to the request context.
func (r *TokenResolver) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		header := req.Header.Get("Authorization")
		if header == "" {
			http.Error(w, "Access denied", http.StatusUnauthorized)
			return
		}

		tokenString := strings.TrimPrefix(header, "Bearer ")
		identity, err := r.Resolve(tokenString)
		if err != nil {
			http.Error(w, "Invalid token", http.StatusBadRequest)
			return
		}

		ctx := withIdentity(req.Context(), identity)
		next.ServeHTTP(w, req.WithContext(ctx))
	})
}
