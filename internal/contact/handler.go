package contact

import (
	"encoding/json"
	"net/http"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/pitetris/backend/internal/response"
)

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Handler holds HTTP handlers for the contact endpoints.
type Handler struct {
	svc *Service
}

// NewHandler creates a new contact Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type submitRequest struct {
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Company *string `json:"company"`
	Budget  *string `json:"budget"`
	Message string  `json:"message"`
}

func (req *submitRequest) validate() error {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Message = strings.TrimSpace(req.Message)
	switch {
	case req.Name == "":
		return errRequired("name")
	case req.Email == "":
		return errRequired("email")
	case !emailRegex.MatchString(req.Email):
		return errInvalid("email")
	case req.Message == "":
		return errRequired("message")
	}
	return nil
}

type fieldError string

func (e fieldError) Error() string { return string(e) }

func errRequired(field string) error { return fieldError(field + " is required") }
func errInvalid(field string) error  { return fieldError(field + " is not valid") }

// Submit godoc
//
//	@Summary		Submit the contact form
//	@Description	Stores a contact-form submission and returns its reference code.
//	@Tags			contact
//	@Accept			json
//	@Produce		json
//	@Param			request	body		submitRequest	true	"Submission"
//	@Success		201		{object}	response.Envelope{data=Submission}
//	@Failure		400		{object}	response.Envelope
//	@Failure		500		{object}	response.Envelope
//	@Router			/api/contact [post]
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if err := req.validate(); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	created, err := h.svc.Submit(r.Context(), &Submission{
		Name:    req.Name,
		Email:   req.Email,
		Company: req.Company,
		Budget:  req.Budget,
		Message: req.Message,
	})
	if err != nil {
		response.InternalError(w)
		return
	}
	response.Created(w, created)
}

// AdminList returns all submissions for the admin dashboard.
func (h *Handler) AdminList(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.List(r.Context())
	if err != nil {
		response.InternalError(w)
		return
	}
	response.OK(w, items)
}

// AdminMarkRead flags a submission as handled.
func (h *Handler) AdminMarkRead(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.MarkRead(r.Context(), chi.URLParam(r, "id")); err != nil {
		if h.svc.IsNotFound(err) {
			response.NotFound(w, "submission not found")
			return
		}
		response.InternalError(w)
		return
	}
	response.OK(w, map[string]bool{"read": true})
}

// AdminDelete removes a submission.
func (h *Handler) AdminDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		if h.svc.IsNotFound(err) {
			response.NotFound(w, "submission not found")
			return
		}
		response.InternalError(w)
		return
	}
	response.NoContent(w)
}
