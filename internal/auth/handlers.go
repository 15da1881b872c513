package auth

import (
	"log"
	"net/http"

	"github.com/pitetris/backend/internal/response"
	"github.com/pitetris/backend/internal/session"
)

// Handler holds the strategy-agnostic auth endpoints.
type Handler struct {
	sessions *session.Manager
}

// NewHandler creates the shared auth Handler.
func NewHandler(sessions *session.Manager) *Handler {
	return &Handler{sessions: sessions}
}

// CurrentUser godoc
//
//	@Summary		Current principal
//	@Description	Returns the authenticated principal held by the session.
//	@Tags			auth
//	@Produce		json
//	@Success		200	{object}	response.Envelope{data=session.Principal}
//	@Failure		401	{object}	response.Envelope
//	@Router			/api/auth/user [get]
func (h *Handler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	p, ok := PrincipalFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}
	response.OK(w, p)
}

// Logout godoc
//
//	@Summary		Logout
//	@Description	Clears the session. Idempotent: always answers 200.
//	@Tags			auth
//	@Produce		json
//	@Success		200	{object}	response.Envelope
//	@Router			/api/auth/logout [post]
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Destroy(r.Context(), w, r); err != nil {
		// Logout cannot fail from the caller's perspective.
		log.Printf("auth: destroy session: %v", err)
	}
	response.OK(w, map[string]string{"message": "logged out"})
}
