package content

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pitetris/backend/internal/response"
)

// Handler holds HTTP handlers for the content endpoints. Public listing
// endpoints filter to published rows; the admin variants see everything.
type Handler struct {
	repo *Repository
}

// NewHandler creates a new content Handler.
func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// decodeBody parses a JSON request body, answering 400 on malformed input.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.BadRequest(w, "invalid request body")
		return false
	}
	return true
}

// writeRepoError maps repository failures onto HTTP statuses. Validation
// never reaches here; it is handled before any repository call.
func writeRepoError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		response.NotFound(w, "not found")
	case errors.Is(err, ErrSlugTaken):
		response.Conflict(w, "identifier already in use")
	default:
		log.Printf("content: %v", err)
		response.InternalError(w)
	}
}

// ---- services ----

// ListServices godoc
//
//	@Summary	List published services
//	@Tags		content
//	@Produce	json
//	@Success	200	{object}	response.Envelope{data=[]Service}
//	@Router		/api/services [get]
func (h *Handler) ListServices(w http.ResponseWriter, r *http.Request) {
	items, err := h.repo.ListServices(r.Context(), false)
	if err != nil {
		writeRepoError(w, err)
		return
	}
	response.OK(w, items)
}

func (h *Handler) AdminListServices(w http.ResponseWriter, r *http.Request) {
	items, err := h.repo.ListServices(r.Context(), true)
	if err != nil {
		writeRepoError(w, err)
		return
	}
	response.OK(w, items)
}

func (h *Handler) GetService(w http.ResponseWriter, r *http.Request) {
	s, err := h.repo.GetService(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeRepoError(w, err)
		return
	}
	response.OK(w, s)
}

func (h *Handler) CreateService(w http.ResponseWriter, r *http.Request) {
	var in ServiceInput
	if !decodeBody(w, r, &in) {
		return
	}
	if err := in.Validate(); err != nil {
		response.BadRequest(w, err.Error())
		return
	}
	s, err := h.repo.CreateService(r.Context(), &in)
	if err != nil {
		writeRepoError(w, err)
		return
	}
	response.Created(w, s)
}

func (h *Handler) UpdateService(w http.ResponseWriter, r *http.Request) {
	var in ServiceInput
	if !decodeBody(w, r, &in) {
		return
	}
	if err := in.Validate(); err != nil {
		response.BadRequest(w, err.Error())
		return
	}
	s, err := h.repo.UpdateService(r.Context(), chi.URLParam(r, "id"), &in)
	if err != nil {
		writeRepoError(w, err)
		return
	}
	response.OK(w, s)
}

func (h *Handler) DeleteService(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.DeleteService(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeRepoError(w, err)
		return
	}
	response.NoContent(w)
}

// ---- case studies ----

// ListCaseStudies godoc
//
//	@Summary	List published case studies
//	@Tags		content
//	@Produce	json
//	@Success	200	{object}	response.Envelope{data=[]CaseStudy}
//	@Router		/api/case-studies [get]
func (h *Handler) ListCaseStudies(w http.ResponseWriter, r *http.Request) {
	items, err := h.repo.ListCaseStudies(r.Context(), false)
	if err != nil {
		writeRepoError(w, err)
		return
	}
	response.OK(w, items)
}

func (h *Handler) AdminListCaseStudies(w http.ResponseWriter, r *http.Request) {
	items, err := h.repo.ListCaseStudies(r.Context(), true)
	if err != nil {
		writeRepoError(w, err)
		return
	}
	response.OK(w, items)
}

func (h *Handler) GetCaseStudy(w http.ResponseWriter, r *http.Request) {
	c, err := h.repo.GetCaseStudy(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeRepoError(w, err)
		return
	}
	response.OK(w, c)
}

func (h *Handler) CreateCaseStudy(w http.ResponseWriter, r *http.Request) {
	var in CaseStudyInput
	if !decodeBody(w, r, &in) {
		return
	}
	if err := in.Validate(); err != nil {
		response.BadRequest(w, err.Error())
		return
	}
	c, err := h.repo.CreateCaseStudy(r.Context(), &in)
	if err != nil {
		writeRepoError(w, err)
		return
	}
	response.Created(w, c)
}

func (h *Handler) UpdateCaseStudy(w http.ResponseWriter, r *http.Request) {
	var in CaseStudyInput
	if !decodeBody(w, r, &in) {
		return
	}
	if err := in.Validate(); err != nil {
		response.BadRequest(w, err.Error())
		return
	}
	c, err := h.repo.UpdateCaseStudy(r.Context(), chi.URLParam(r, "id"), &in)
	if err != nil {
		writeRepoError(w, err)
		return
	}
	response.OK(w, c)
}

func (h *Handler) DeleteCaseStudy(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.DeleteCaseStudy(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeRepoError(w, err)
		return
	}
	response.NoContent(w)
}

// ---- testimonials ----

func (h *Handler) ListTestimonials(w http.ResponseWriter, r *http.Request) {
	items, err := h.repo.ListTestimonials(r.Context(), false)
	if err != nil {
		writeRepoError(w, err)
		return
	}
	response.OK(w, items)
}

func (h *Handler) AdminListTestimonials(w http.ResponseWriter, r *http.Request) {
	items, err := h.repo.ListTestimonials(r.Context(), true)
	if err != nil {
		writeRepoError(w, err)
		return
	}
	response.OK(w, items)
}

func (h *Handler) CreateTestimonial(w http.ResponseWriter, r *http.Request) {
	var in TestimonialInput
	if !decodeBody(w, r, &in) {
		return
	}
	if err := in.Validate(); err != nil {
		response.BadRequest(w, err.Error())
		return
	}
	t, err := h.repo.CreateTestimonial(r.Context(), &in)
	if err != nil {
		writeRepoError(w, err)
		return
	}
	response.Created(w, t)
}

func (h *Handler) UpdateTestimonial(w http.ResponseWriter, r *http.Request) {
	var in TestimonialInput
	if !decodeBody(w, r, &in) {
		return
	}
	if err := in.Validate(); err != nil {
		response.BadRequest(w, err.Error())
		return
	}
	t, err := h.repo.UpdateTestimonial(r.Context(), chi.URLParam(r, "id"), &in)
	if err != nil {
		writeRepoError(w, err)
		return
	}
	response.OK(w, t)
}

func (h *Handler) DeleteTestimonial(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.DeleteTestimonial(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeRepoError(w, err)
		return
	}
	response.NoContent(w)
}

// ---- team members ----

func (h *Handler) ListTeamMembers(w http.ResponseWriter, r *http.Request) {
	items, err := h.repo.ListTeamMembers(r.Context(), false)
	if err != nil {
		writeRepoError(w, err)
		return
	}
	response.OK(w, items)
}

func (h *Handler) AdminListTeamMembers(w http.ResponseWriter, r *http.Request) {
	items, err := h.repo.ListTeamMembers(r.Context(), true)
	if err != nil {
		writeRepoError(w, err)
		return
	}
	response.OK(w, items)
}

func (h *Handler) CreateTeamMember(w http.ResponseWriter, r *http.Request) {
	var in TeamMemberInput
	if !decodeBody(w, r, &in) {
		return
	}
	if err := in.Validate(); err != nil {
		response.BadRequest(w, err.Error())
		return
	}
	m, err := h.repo.CreateTeamMember(r.Context(), &in)
	if err != nil {
		writeRepoError(w, err)
		return
	}
	response.Created(w, m)
}

func (h *Handler) UpdateTeamMember(w http.ResponseWriter, r *http.Request) {
	var in TeamMemberInput
	if !decodeBody(w, r, &in) {
		return
	}
	if err := in.Validate(); err != nil {
		response.BadRequest(w, err.Error())
		return
	}
	m, err := h.repo.UpdateTeamMember(r.Context(), chi.URLParam(r, "id"), &in)
	if err != nil {
		writeRepoError(w, err)
		return
	}
	response.OK(w, m)
}

func (h *Handler) DeleteTeamMember(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.DeleteTeamMember(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeRepoError(w, err)
		return
	}
	response.NoContent(w)
}

// ---- clients ----

func (h *Handler) ListClients(w http.ResponseWriter, r *http.Request) {
	items, err := h.repo.ListClients(r.Context())
	if err != nil {
		writeRepoError(w, err)
		return
	}
	response.OK(w, items)
}

// AdminListClients mirrors ListClients; clients carry no published flag, but
// the admin surface stays uniform across entities.
func (h *Handler) AdminListClients(w http.ResponseWriter, r *http.Request) {
	h.ListClients(w, r)
}

func (h *Handler) CreateClient(w http.ResponseWriter, r *http.Request) {
	var in ClientInput
	if !decodeBody(w, r, &in) {
		return
	}
	if err := in.Validate(); err != nil {
		response.BadRequest(w, err.Error())
		return
	}
	c, err := h.repo.CreateClient(r.Context(), &in)
	if err != nil {
		writeRepoError(w, err)
		return
	}
	response.Created(w, c)
}

func (h *Handler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	var in ClientInput
	if !decodeBody(w, r, &in) {
		return
	}
	if err := in.Validate(); err != nil {
		response.BadRequest(w, err.Error())
		return
	}
	c, err := h.repo.UpdateClient(r.Context(), chi.URLParam(r, "id"), &in)
	if err != nil {
		writeRepoError(w, err)
		return
	}
	response.OK(w, c)
}

func (h *Handler) DeleteClient(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.DeleteClient(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeRepoError(w, err)
		return
	}
	response.NoContent(w)
}

// ---- technologies ----

func (h *Handler) ListTechnologies(w http.ResponseWriter, r *http.Request) {
	items, err := h.repo.ListTechnologies(r.Context())
	if err != nil {
		writeRepoError(w, err)
		return
	}
	response.OK(w, items)
}

func (h *Handler) AdminListTechnologies(w http.ResponseWriter, r *http.Request) {
	h.ListTechnologies(w, r)
}

func (h *Handler) CreateTechnology(w http.ResponseWriter, r *http.Request) {
	var in TechnologyInput
	if !decodeBody(w, r, &in) {
		return
	}
	if err := in.Validate(); err != nil {
		response.BadRequest(w, err.Error())
		return
	}
	t, err := h.repo.CreateTechnology(r.Context(), &in)
	if err != nil {
		writeRepoError(w, err)
		return
	}
	response.Created(w, t)
}

func (h *Handler) UpdateTechnology(w http.ResponseWriter, r *http.Request) {
	var in TechnologyInput
	if !decodeBody(w, r, &in) {
		return
	}
	if err := in.Validate(); err != nil {
		response.BadRequest(w, err.Error())
		return
	}
	t, err := h.repo.UpdateTechnology(r.Context(), chi.URLParam(r, "id"), &in)
	if err != nil {
		writeRepoError(w, err)
		return
	}
	response.OK(w, t)
}

func (h *Handler) DeleteTechnology(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.DeleteTechnology(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeRepoError(w, err)
		return
	}
	response.NoContent(w)
}

// ---- categories ----

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	items, err := h.repo.ListCategories(r.Context())
	if err != nil {
		writeRepoError(w, err)
		return
	}
	response.OK(w, items)
}

func (h *Handler) AdminListCategories(w http.ResponseWriter, r *http.Request) {
	h.ListCategories(w, r)
}

func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var in CategoryInput
	if !decodeBody(w, r, &in) {
		return
	}
	if err := in.Validate(); err != nil {
		response.BadRequest(w, err.Error())
		return
	}
	c, err := h.repo.CreateCategory(r.Context(), &in)
	if err != nil {
		writeRepoError(w, err)
		return
	}
	response.Created(w, c)
}

func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var in CategoryInput
	if !decodeBody(w, r, &in) {
		return
	}
	if err := in.Validate(); err != nil {
		response.BadRequest(w, err.Error())
		return
	}
	c, err := h.repo.UpdateCategory(r.Context(), chi.URLParam(r, "id"), &in)
	if err != nil {
		writeRepoError(w, err)
		return
	}
	response.OK(w, c)
}

func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.DeleteCategory(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeRepoError(w, err)
		return
	}
	response.NoContent(w)
}
