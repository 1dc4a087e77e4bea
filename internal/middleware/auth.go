package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"authsync-service/internal/whitelist"
)

// unexported, collision-proof context key
type operatorIDContextKeyType struct{}

var operatorIDKey = operatorIDContextKeyType{}

// OperatorFromContext extracts the authenticated operator ID from context.
// The admin token authenticates as the literal operator "admin".
func OperatorFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(operatorIDKey).(string)
	return id, ok
}

// AuthMiddleware gates the command endpoints. A request is an operator
// when it presents the configured admin token, or an X-Operator-ID that
// is on the whitelist. Whitelist management itself is admin-only.
type AuthMiddleware struct {
	AdminToken string
	Whitelist  whitelist.Store
}

func NewAuthMiddleware(adminToken string, wl whitelist.Store) *AuthMiddleware {
	return &AuthMiddleware{AdminToken: adminToken, Whitelist: wl}
}

func (a *AuthMiddleware) isAdmin(r *http.Request) bool {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if a.AdminToken == "" || token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(a.AdminToken)) == 1
}

func (a *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.isAdmin(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), operatorIDKey, "admin")
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *AuthMiddleware) RequireOperator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.isAdmin(r) {
			ctx := context.WithValue(r.Context(), operatorIDKey, "admin")
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		operatorID := r.Header.Get("X-Operator-ID")
		if operatorID == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		listed, err := a.Whitelist.Contains(r.Context(), operatorID)
		if err != nil || !listed {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), operatorIDKey, operatorID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
