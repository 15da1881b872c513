// Package media composes the object storage client, the ACL codec and the
// auth gate into the upload and serve HTTP routes.
package media

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pitetris/backend/internal/auth"
	"github.com/pitetris/backend/internal/objectacl"
	"github.com/pitetris/backend/internal/objectstore"
	"github.com/pitetris/backend/internal/response"
)

// cacheTTLSeconds is the Cache-Control max-age applied to served objects.
const cacheTTLSeconds = 3600

// Handler holds the upload and serve endpoints.
type Handler struct {
	store *objectstore.Client
	acl   *objectacl.Manager
}

// NewHandler creates the media Handler.
func NewHandler(store *objectstore.Client, acl *objectacl.Manager) *Handler {
	return &Handler{store: store, acl: acl}
}

// UploadURL godoc
//
//	@Summary		Allocate an upload URL
//	@Description	Allocates a fresh object key and returns a presigned PUT URL. The client uploads bytes directly to storage.
//	@Tags			media
//	@Produce		json
//	@Success		200	{object}	response.Envelope
//	@Failure		500	{object}	response.Envelope
//	@Router			/api/objects/upload [post]
func (h *Handler) UploadURL(w http.ResponseWriter, r *http.Request) {
	uploadURL, err := h.store.NewEntityUploadURL(r.Context())
	if err != nil {
		// ErrNoPrivateDir is a deployment misconfiguration, not a client fault.
		log.Printf("media: allocate upload url: %v", err)
		response.InternalError(w)
		return
	}
	response.OK(w, map[string]string{"uploadURL": uploadURL})
}

type finalizeImageRequest struct {
	ImageURL string `json:"imageURL"`
}

// FinalizeImage godoc
//
//	@Summary		Finalize an uploaded image
//	@Description	Stamps the ACL policy onto a freshly uploaded object (owner = current admin, public visibility) and returns its logical path.
//	@Tags			media
//	@Accept			json
//	@Produce		json
//	@Param			request	body		finalizeImageRequest	true	"Raw upload URL"
//	@Success		200		{object}	response.Envelope
//	@Failure		400		{object}	response.Envelope
//	@Failure		404		{object}	response.Envelope
//	@Router			/api/admin/images [put]
func (h *Handler) FinalizeImage(w http.ResponseWriter, r *http.Request) {
	var req finalizeImageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if req.ImageURL == "" {
		response.BadRequest(w, "imageURL is required")
		return
	}

	p, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	objectPath, err := h.acl.SetEntityPolicy(r.Context(), req.ImageURL, objectacl.Policy{
		Owner:      p.ID,
		Visibility: objectacl.VisibilityPublic,
	})
	if err != nil {
		switch {
		case errors.Is(err, objectacl.ErrNotEntityPath):
			response.BadRequest(w, "imageURL does not address an uploaded object")
		case errors.Is(err, objectstore.ErrObjectNotFound):
			response.NotFound(w, "object not found")
		default:
			log.Printf("media: finalize image: %v", err)
			response.InternalError(w)
		}
		return
	}
	response.OK(w, map[string]string{"objectPath": objectPath})
}

// ServeObject streams an uploaded entity to an authenticated user, subject to
// the object's ACL policy. Access denial answers 401 without revealing
// whether the object exists.
func (h *Handler) ServeObject(w http.ResponseWriter, r *http.Request) {
	handle, err := h.store.EntityFile(r.Context(), r.URL.Path)
	if err != nil {
		if errors.Is(err, objectstore.ErrObjectNotFound) {
			response.NotFound(w, "object not found")
			return
		}
		log.Printf("media: resolve object: %v", err)
		response.InternalError(w)
		return
	}

	var userID string
	if p, ok := auth.PrincipalFromContext(r.Context()); ok {
		userID = p.ID
	}
	if !h.acl.CanAccess(handle, userID, objectacl.PermRead) {
		response.Unauthorized(w, "unauthorized")
		return
	}

	policy := objectacl.FromMetadata(handle.Info.UserMetadata)
	isPublic := policy != nil && policy.Visibility == objectacl.VisibilityPublic
	h.store.Download(r.Context(), handle, w, cacheTTLSeconds, isPublic)
}

// ServePublicObject streams an asset from the public search directories.
// No auth: absence is a plain 404.
func (h *Handler) ServePublicObject(w http.ResponseWriter, r *http.Request) {
	filePath := chi.URLParam(r, "*")
	if filePath == "" {
		response.NotFound(w, "file not found")
		return
	}

	handle, err := h.store.SearchPublicObject(r.Context(), filePath)
	if err != nil {
		log.Printf("media: search public object: %v", err)
		response.InternalError(w)
		return
	}
	if handle == nil {
		response.NotFound(w, "file not found")
		return
	}
	h.store.Download(r.Context(), handle, w, cacheTTLSeconds, true)
}
