package middleware

import (
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/manhour-hq/manhour-backend-go/internal/handler/http/response"
)

const (
	roleOwner   = "owner"
	roleManager = "manager"
)

// RequireManager admits manager and owner roles. Approval decisions and the
// manual aggregate refresh are restricted to these roles.
func RequireManager(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			response.Forbidden(w, "Manager access required")
			return
		}

		role, ok := claims["role"].(string)
		if !ok || (role != roleManager && role != roleOwner) {
			response.Forbidden(w, "Manager access required")
			return
		}

		next.ServeHTTP(w, r)
	})
}
