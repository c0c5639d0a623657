package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/example/storefront/internal/auth"
)

// respondError writes a JSON error response
func respondError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
}

// ExtractToken extracts the bearer token from the Authorization header
func ExtractToken(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	return ""
}

// Revocations reports tokens invalidated by logout
type Revocations interface {
	IsRevoked(tokenID string) bool
}

type contextKey string

const UserContextKey contextKey = "user"

func authenticate(r *http.Request, jwtService *auth.JWTService, revoked Revocations) (*auth.Claims, string) {
	tokenString := ExtractToken(r)
	if tokenString == "" {
		return nil, "Authentication required"
	}

	claims, err := jwtService.ValidateToken(tokenString)
	if err != nil {
		if errors.Is(err, auth.ErrExpiredToken) {
			return nil, "Token has expired"
		}
		return nil, "Invalid token"
	}
	if revoked != nil && revoked.IsRevoked(claims.ID) {
		return nil, "Token has been revoked"
	}
	return claims, ""
}

// AuthMiddleware validates bearer tokens and adds user claims to context
func AuthMiddleware(jwtService *auth.JWTService, revoked Revocations) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, reason := authenticate(r, jwtService, revoked)
			if claims == nil {
				respondError(w, reason, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserFromContext retrieves user claims from the request context
func GetUserFromContext(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(UserContextKey).(*auth.Claims)
	return claims, ok
}

// GetUserID is a helper to get just the user ID from context
func GetUserID(ctx context.Context) string {
	claims, ok := GetUserFromContext(ctx)
	if !ok {
		return ""
	}
	return claims.UserID
}

// RequestLogger logs each request with its X-Request-ID and echoes the ID
// back on the response.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID != "" {
			w.Header().Set("X-Request-ID", requestID)
		}
		log.Printf("[Sandbox] %s %s request_id=%s", r.Method, r.URL.Path, requestID)
		next.ServeHTTP(w, r)
	})
}
