package middleware

import (
	"context"
	"net/http"
	"strings"

	"shop-backend/internal/auth"
)

type contextKey string

const StoreIDKey contextKey = "store_id"
const EmailKey contextKey = "email"

// AuthMiddleware resolves the tenant for every request. Handlers and services
// receive the store ID explicitly; nothing downstream performs its own
// session lookup.
type AuthMiddleware struct {
	jwtManager *auth.JWTManager
}

func NewAuthMiddleware(jwtManager *auth.JWTManager) *AuthMiddleware {
	return &AuthMiddleware{jwtManager: jwtManager}
}

// Authenticate validates the bearer token and puts the store identity on the
// request context.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Authorization header required", http.StatusUnauthorized)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			http.Error(w, "Invalid authorization format", http.StatusUnauthorized)
			return
		}

		claims, err := m.jwtManager.ValidateToken(parts[1])
		if err != nil {
			http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), StoreIDKey, claims.StoreID)
		ctx = context.WithValue(ctx, EmailKey, claims.Email)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetStoreIDFromContext extracts the resolved store ID from request context
func GetStoreIDFromContext(ctx context.Context) (int, bool) {
	storeID, ok := ctx.Value(StoreIDKey).(int)
	return storeID, ok
}

// GetEmailFromContext extracts the store email from request context
func GetEmailFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(EmailKey).(string)
	return email, ok
}
