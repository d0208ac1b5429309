package projects

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/lumina-cms/lumina-cms/internal/authz"
	"github.com/lumina-cms/lumina-cms/internal/platform/httpx"
	"github.com/lumina-cms/lumina-cms/internal/shared"
)

// Handler wires project endpoints.
type Handler struct {
	logger    *slog.Logger
	repo      *Repository
	authz     authz.Middleware
	validator *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, repo *Repository, authz authz.Middleware) *Handler {
	return &Handler{logger: logger, repo: repo, authz: authz, validator: validator.New()}
}

// MountPublic registers unauthenticated reads: published projects only.
func (h *Handler) MountPublic(r chi.Router) {
	r.Get("/projects", h.listPublished)
	r.Get("/projects/{slug}", h.getBySlug)
}

// MountAdmin registers the management routes. Admin list includes drafts.
func (h *Handler) MountAdmin(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.authz.RequirePermissions(shared.PermProjectCreate))
		r.Get("/", h.listAll)
		r.Post("/", h.create)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.authz.RequirePermissions(shared.PermProjectUpdate))
		r.Put("/{id}", h.update)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.authz.RequirePermissions(shared.PermProjectDelete))
		r.Delete("/{id}", h.delete)
	})
}

func (h *Handler) listPublished(w http.ResponseWriter, r *http.Request) {
	h.respondList(w, r, true)
}

func (h *Handler) listAll(w http.ResponseWriter, r *http.Request) {
	h.respondList(w, r, false)
}

func (h *Handler) respondList(w http.ResponseWriter, r *http.Request, publishedOnly bool) {
	list, err := h.repo.List(r.Context(), publishedOnly)
	if err != nil {
		h.logger.Error("list projects", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) getBySlug(w http.ResponseWriter, r *http.Request) {
	project, err := h.repo.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, project)
}

type projectRequest struct {
	Title       string `json:"title" validate:"required,max=160"`
	Slug        string `json:"slug" validate:"required,max=160,lowercase"`
	Description string `json:"description"`
	Client      string `json:"client" validate:"max=160"`
	Year        int    `json:"year" validate:"gte=1900,lte=2100"`
	ImagePath   string `json:"image_path" validate:"max=255"`
	Published   bool   `json:"published"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if !h.decode(w, r, &req) {
		return
	}
	identity := shared.IdentityFromContext(r.Context())
	created, err := h.repo.Create(r.Context(), Project{
		Title:       req.Title,
		Slug:        req.Slug,
		Description: req.Description,
		Client:      req.Client,
		Year:        req.Year,
		ImagePath:   req.ImagePath,
		Published:   req.Published,
		CreatedBy:   identity.UserID,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid id")
		return
	}
	var req projectRequest
	if !h.decode(w, r, &req) {
		return
	}
	updated, err := h.repo.Update(r.Context(), Project{
		ID:          id,
		Title:       req.Title,
		Slug:        req.Slug,
		Description: req.Description,
		Client:      req.Client,
		Year:        req.Year,
		ImagePath:   req.ImagePath,
		Published:   req.Published,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid id")
		return
	}
	if err := h.repo.Delete(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := httpx.DecodeJSON(r, target); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return false
	}
	if err := h.validator.Struct(target); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return false
	}
	return true
}
