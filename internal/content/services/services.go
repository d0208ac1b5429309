// Package services manages the company service catalogue.
package services

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lumina-cms/lumina-cms/internal/authz"
	"github.com/lumina-cms/lumina-cms/internal/platform/httpx"
	"github.com/lumina-cms/lumina-cms/internal/shared"
)

// Service is a company service listed on the public site.
type Service struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Summary   string    `json:"summary"`
	Body      string    `json:"body"`
	Icon      string    `json:"icon"`
	SortOrder int       `json:"sort_order"`
	CreatedBy int64     `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const columns = `id, title, summary, body, icon, sort_order, created_by, created_at, updated_at`

// List returns all services in display order.
func (r *Repository) List(ctx context.Context) ([]Service, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+columns+` FROM services ORDER BY sort_order, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []Service
	for rows.Next() {
		var s Service
		if err := rows.Scan(&s.ID, &s.Title, &s.Summary, &s.Body, &s.Icon, &s.SortOrder, &s.CreatedBy, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// Create inserts a service.
func (r *Repository) Create(ctx context.Context, s Service) (Service, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO services (title, summary, body, icon, sort_order, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now(), now())
		RETURNING `+columns,
		s.Title, s.Summary, s.Body, s.Icon, s.SortOrder, s.CreatedBy,
	).Scan(&s.ID, &s.Title, &s.Summary, &s.Body, &s.Icon, &s.SortOrder, &s.CreatedBy, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

// Update modifies an existing service.
func (r *Repository) Update(ctx context.Context, s Service) (Service, error) {
	err := r.pool.QueryRow(ctx, `
		UPDATE services SET title = $2, summary = $3, body = $4, icon = $5, sort_order = $6, updated_at = now()
		WHERE id = $1
		RETURNING `+columns,
		s.ID, s.Title, s.Summary, s.Body, s.Icon, s.SortOrder,
	).Scan(&s.ID, &s.Title, &s.Summary, &s.Body, &s.Icon, &s.SortOrder, &s.CreatedBy, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Service{}, shared.ErrNotFound
	}
	return s, err
}

// Delete removes a service.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM services WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Handler wires service endpoints.
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
	r.Get("/services", h.list)
}

// MountAdmin registers the write routes.
func (h *Handler) MountAdmin(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.authz.RequirePermissions(shared.PermServiceCreate))
		r.Post("/", h.create)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.authz.RequirePermissions(shared.PermServiceUpdate))
		r.Put("/{id}", h.update)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.authz.RequirePermissions(shared.PermServiceDelete))
		r.Delete("/{id}", h.delete)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	list, err := h.repo.List(r.Context())
	if err != nil {
		h.logger.Error("list services", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

type serviceRequest struct {
	Title     string `json:"title" validate:"required,max=160"`
	Summary   string `json:"summary" validate:"max=255"`
	Body      string `json:"body"`
	Icon      string `json:"icon" validate:"max=64"`
	SortOrder int    `json:"sort_order" validate:"gte=0"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req serviceRequest
	if !h.decode(w, r, &req) {
		return
	}
	identity := shared.IdentityFromContext(r.Context())
	created, err := h.repo.Create(r.Context(), Service{
		Title:     req.Title,
		Summary:   req.Summary,
		Body:      req.Body,
		Icon:      req.Icon,
		SortOrder: req.SortOrder,
		CreatedBy: identity.UserID,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req serviceRequest
	if !h.decode(w, r, &req) {
		return
	}
	updated, err := h.repo.Update(r.Context(), Service{
		ID:        id,
		Title:     req.Title,
		Summary:   req.Summary,
		Body:      req.Body,
		Icon:      req.Icon,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
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

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid id")
		return 0, false
	}
	return id, true
}
