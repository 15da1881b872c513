package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/pitetris/backend/internal/middleware"
	"github.com/pitetris/backend/internal/response"
	"github.com/pitetris/backend/internal/session"
	"github.com/pitetris/backend/internal/user"
)

// UserDirectory is the slice of the user service the gate needs.
type UserDirectory interface {
	GetByID(ctx context.Context, id string) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	IsNotFound(err error) bool
}

// DirectStrategy authenticates admins against a locally stored credential:
// email plus bcrypt-verified password, with the principal kept in the session
// as directAdminUser. Used outside the federated identity provider.
type DirectStrategy struct {
	sessions *session.Manager
	users    UserDirectory
}

// NewDirectStrategy creates the direct login strategy.
func NewDirectStrategy(sessions *session.Manager, users UserDirectory) *DirectStrategy {
	return &DirectStrategy{sessions: sessions, users: users}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Setup mounts the login route, rate-limited per client IP.
func (s *DirectStrategy) Setup(r chi.Router) {
	r.With(middleware.RateLimit(1, 5)).Post("/api/admin/login", s.handleLogin)
}

// IsAuthenticated gates routes on a live session principal.
func (s *DirectStrategy) IsAuthenticated(next http.Handler) http.Handler {
	return requireSession(s.sessions)(next)
}

// handleLogin godoc
//
//	@Summary		Direct admin login
//	@Description	Validates email and password against the stored admin credential and opens a session.
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		loginRequest	true	"Credentials"
//	@Success		200		{object}	response.Envelope{data=session.Principal}
//	@Failure		400		{object}	response.Envelope
//	@Failure		401		{object}	response.Envelope
//	@Router			/api/admin/login [post]
func (s *DirectStrategy) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Password == "" {
		response.BadRequest(w, "email and password are required")
		return
	}

	u, err := s.users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if s.users.IsNotFound(err) {
			// Same answer as a wrong password: no account enumeration.
			response.Unauthorized(w, "invalid credentials")
			return
		}
		response.InternalError(w)
		return
	}
	if !u.IsAdmin || !user.VerifyPassword(u, req.Password) {
		response.Unauthorized(w, "invalid credentials")
		return
	}

	principal := &session.Principal{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: deref(u.FirstName),
		LastName:  deref(u.LastName),
	}
	if _, err := s.sessions.Save(r.Context(), w, "", &session.Data{DirectAdminUser: principal}); err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, principal)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
