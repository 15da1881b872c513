// Package auth implements the authentication gate: two interchangeable
// login strategies (direct admin login and federated OIDC) behind one
// contract, plus the strategy-agnostic admin check.
package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pitetris/backend/internal/response"
	"github.com/pitetris/backend/internal/session"
)

// Strategy is selected once during bootstrap and injected into the router.
// Setup mounts the strategy's login routes; IsAuthenticated gates everything
// that requires a logged-in principal.
type Strategy interface {
	Setup(r chi.Router)
	IsAuthenticated(next http.Handler) http.Handler
}

type ctxKey int

const principalKey ctxKey = iota

// ContextWithPrincipal attaches the authenticated principal to the context.
func ContextWithPrincipal(ctx context.Context, p *session.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext returns the authenticated principal, if any.
func PrincipalFromContext(ctx context.Context) (*session.Principal, bool) {
	p, ok := ctx.Value(principalKey).(*session.Principal)
	return p, ok && p != nil
}

// requireSession is the shared gate implementation: a request passes only
// when its session holds a live principal of either shape. Unauthenticated
// access yields 401, never a silent pass-through.
func requireSession(sessions *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, data, err := sessions.Load(r)
			if err != nil {
				if !errors.Is(err, session.ErrNoSession) {
					response.InternalError(w)
					return
				}
				response.Unauthorized(w, "unauthorized")
				return
			}
			p := data.Principal()
			if p == nil {
				response.Unauthorized(w, "unauthorized")
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithPrincipal(r.Context(), p)))
		})
	}
}
