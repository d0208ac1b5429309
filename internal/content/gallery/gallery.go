// Package gallery manages the photo gallery.
package gallery

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lumina-cms/lumina-cms/internal/authz"
	"github.com/lumina-cms/lumina-cms/internal/platform/httpx"
	"github.com/lumina-cms/lumina-cms/internal/shared"
)

// Item is a single gallery photo.
type Item struct {
	ID        int64     `json:"id"`
	Caption   string    `json:"caption"`
	ImagePath string    `json:"image_path"`
	CreatedBy int64     `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List returns all gallery items, newest first.
func (r *Repository) List(ctx context.Context) ([]Item, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, caption, image_path, created_by, created_at FROM gallery_items ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []Item
	for rows.Next() {
		var item Item
		if err := rows.Scan(&item.ID, &item.Caption, &item.ImagePath, &item.CreatedBy, &item.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, item)
	}
	return list, rows.Err()
}

// Create inserts a gallery item.
func (r *Repository) Create(ctx context.Context, item Item) (Item, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO gallery_items (caption, image_path, created_by, created_at)
		VALUES ($1, $2, $3, now())
		RETURNING id, caption, image_path, created_by, created_at`,
		item.Caption, item.ImagePath, item.CreatedBy,
	).Scan(&item.ID, &item.Caption, &item.ImagePath, &item.CreatedBy, &item.CreatedAt)
	return item, err
}

// Delete removes a gallery item.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM gallery_items WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Handler wires gallery endpoints.
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

// MountPublic registers the unauthenticated read route.
func (h *Handler) MountPublic(r chi.Router) {
	r.Get("/gallery", h.list)
}

// MountAdmin registers the write routes.
func (h *Handler) MountAdmin(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.authz.RequirePermissions(shared.PermGalleryCreate))
		r.Post("/", h.create)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.authz.RequirePermissions(shared.PermGalleryDelete))
		r.Delete("/{id}", h.delete)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	list, err := h.repo.List(r.Context())
	if err != nil {
		h.logger.Error("list gallery", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

type itemRequest struct {
	Caption   string `json:"caption" validate:"max=255"`
	ImagePath string `json:"image_path" validate:"required,max=255"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	identity := shared.IdentityFromContext(r.Context())
	created, err := h.repo.Create(r.Context(), Item{
		Caption:   req.Caption,
		ImagePath: req.ImagePath,
		CreatedBy: identity.UserID,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
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
