package auth

import (
	"net/http"

	"github.com/pitetris/backend/internal/response"
)

// RequireAdmin gates admin routes. It is strategy-agnostic: whoever the
// session principal is, the users table decides whether they are an admin.
// Missing principal yields 401; a non-admin (or missing) row yields 403.
func RequireAdmin(users UserDirectory) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFromContext(r.Context())
			if !ok {
				response.Unauthorized(w, "unauthorized")
				return
			}

			u, err := users.GetByID(r.Context(), p.ID)
			if err != nil {
				if users.IsNotFound(err) {
					response.Forbidden(w, "admin access required")
					return
				}
				response.InternalError(w)
				return
			}
			if !u.IsAdmin {
				response.Forbidden(w, "admin access required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
