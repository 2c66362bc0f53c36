package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/dhairyajangir/CuraLink/internal/auth"
	"github.com/dhairyajangir/CuraLink/internal/transport"
)

type Identity struct {
	UserID string
	Role   string
}

type identityKey struct{}

// RequireAuth validates the bearer token and stores the caller's identity on
// the request context.
func RequireAuth(manager *auth.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if manager == nil {
				transport.WriteError(w, http.StatusServiceUnavailable, "auth not configured", nil)
				return
			}

			header := r.Header.Get("Authorization")
			token, found := strings.CutPrefix(header, "Bearer ")
			if !found || token == "" {
				transport.WriteError(w, http.StatusUnauthorized, "missing bearer token", nil)
				return
			}

			claims, err := manager.Parse(token)
			if err != nil {
				transport.WriteError(w, http.StatusUnauthorized, "invalid token", nil)
				return
			}

			identity := Identity{UserID: claims.Subject, Role: claims.Role}
			ctx := context.WithValue(r.Context(), identityKey{}, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole guards a route to callers whose token carries one of the roles.
// Must be mounted after RequireAuth.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFromContext(r.Context())
			if !ok {
				transport.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
				return
			}
			for _, role := range roles {
				if identity.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			transport.WriteError(w, http.StatusForbidden, "forbidden", nil)
		})
	}
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	v := ctx.Value(identityKey{})
	if v == nil {
		return Identity{}, false
	}
	identity, ok := v.(Identity)
	return identity, ok
}
