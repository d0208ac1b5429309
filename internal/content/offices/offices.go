// Package offices manages office locations and contact details.
package offices

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

// Office is a company office location.
type Office struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	City      string    `json:"city"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email"`
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

const columns = `id, name, address, city, phone, email, created_by, created_at, updated_at`

// List returns all offices.
func (r *Repository) List(ctx context.Context) ([]Office, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+columns+` FROM offices ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []Office
	for rows.Next() {
		var o Office
		if err := rows.Scan(&o.ID, &o.Name, &o.Address, &o.City, &o.Phone, &o.Email, &o.CreatedBy, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, o)
	}
	return list, rows.Err()
}

// Create inserts an office.
func (r *Repository) Create(ctx context.Context, o Office) (Office, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO offices (name, address, city, phone, email, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now(), now())
		RETURNING `+columns,
		o.Name, o.Address, o.City, o.Phone, o.Email, o.CreatedBy,
	).Scan(&o.ID, &o.Name, &o.Address, &o.City, &o.Phone, &o.Email, &o.CreatedBy, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

// Update modifies an existing office.
func (r *Repository) Update(ctx context.Context, o Office) (Office, error) {
	err := r.pool.QueryRow(ctx, `
		UPDATE offices SET name = $2, address = $3, city = $4, phone = $5, email = $6, updated_at = now()
		WHERE id = $1
		RETURNING `+columns,
		o.ID, o.Name, o.Address, o.City, o.Phone, o.Email,
	).Scan(&o.ID, &o.Name, &o.Address, &o.City, &o.Phone, &o.Email, &o.CreatedBy, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Office{}, shared.ErrNotFound
	}
	return o, err
}

// Delete removes an office.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM offices WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Handler wires office endpoints.
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
	r.Get("/offices", h.list)
}

// MountAdmin registers the write routes.
func (h *Handler) MountAdmin(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.authz.RequirePermissions(shared.PermOfficeCreate))
		r.Post("/", h.create)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.authz.RequirePermissions(shared.PermOfficeUpdate))
		r.Put("/{id}", h.update)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.authz.RequirePermissions(shared.PermOfficeDelete))
		r.Delete("/{id}", h.delete)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	list, err := h.repo.List(r.Context())
	if err != nil {
		h.logger.Error("list offices", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

type officeRequest struct {
	Name    string `json:"name" validate:"required,max=160"`
	Address string `json:"address" validate:"required,max=255"`
	City    string `json:"city" validate:"required,max=96"`
	Phone   string `json:"phone" validate:"max=32"`
	Email   string `json:"email" validate:"omitempty,email"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req officeRequest
	if !h.decode(w, r, &req) {
		return
	}
	identity := shared.IdentityFromContext(r.Context())
	created, err := h.repo.Create(r.Context(), Office{
		Name:      req.Name,
		Address:   req.Address,
		City:      req.City,
		Phone:     req.Phone,
		Email:     req.Email,
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
	var req officeRequest
	if !h.decode(w, r, &req) {
		return
	}
	updated, err := h.repo.Update(r.Context(), Office{
		ID:      id,
		Name:    req.Name,
		Address: req.Address,
		City:    req.City,
		Phone:   req.Phone,
		Email:   req.Email,
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
