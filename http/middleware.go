package http

import (
	"context"
	"net/http"
)

// IdentityGate validates a request's identity assertion, returning the
// principal identifier or "" when there is none.
type IdentityGate interface {
	Principal(r *http.Request) string
}

type principalKey struct{}

// PrincipalFromContext returns the verified admin principal, if any.
func PrincipalFromContext(ctx context.Context) string {
	principal, _ := ctx.Value(principalKey{}).(string)
	return principal
}

// AuthMiddleware creates middleware that enforces the identity gate and
// stores the verified principal in the request context. A nil gate denies
// every request: admin access fails closed unless a gate explicitly
// admits the caller.
func AuthMiddleware(gate IdentityGate) func(http.Handler) http.Handler {
	if gate == nil {
		return func(http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				WriteError(w, http.StatusUnauthorized, "Unauthorized")
			})
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := gate.Principal(r)
			if principal == "" {
				WriteError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			ctx := context.WithValue(r.Context(), principalKey{}, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
