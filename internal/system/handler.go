package system

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lumina-cms/lumina-cms/internal/authz"
	"github.com/lumina-cms/lumina-cms/internal/platform/httpx"
	"github.com/lumina-cms/lumina-cms/internal/shared"
)

// Handler wires HTTP endpoints for system administration.
type Handler struct {
	logger  *slog.Logger
	service *Service
	authz   authz.Middleware
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, authz authz.Middleware) *Handler {
	return &Handler{logger: logger, service: service, authz: authz}
}

// MountRoutes registers system routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/system", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(h.authz.RequirePermissions(shared.PermSystemInfo))
			r.Get("/info", h.handleInfo)
		})
		r.Group(func(r chi.Router) {
			r.Use(h.authz.RequirePermissions(shared.PermSystemBackup))
			r.Get("/backups", h.handleListBackups)
			r.Post("/backups", h.handleStartBackup)
		})
		r.Group(func(r chi.Router) {
			r.Use(h.authz.RequirePermissions(shared.PermSystemRestore))
			r.Post("/backups/{id}/restore", h.handleRestore)
		})
	})
}

func (h *Handler) handleInfo(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, h.service.Info(r.Context()))
}

func (h *Handler) handleListBackups(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListBackups(r.Context())
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if list == nil {
		list = []Backup{}
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) handleStartBackup(w http.ResponseWriter, r *http.Request) {
	var requestedBy int64
	if id := shared.IdentityFromContext(r.Context()); id != nil {
		requestedBy = id.UserID
	}
	b, err := h.service.StartBackup(r.Context(), requestedBy)
	if err != nil {
		h.logger.Error("start backup", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusAccepted, b)
}

func (h *Handler) handleRestore(w http.ResponseWriter, r *http.Request) {
	backupID := chi.URLParam(r, "id")
	if backupID == "" {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid backup id")
		return
	}
	if err := h.service.StartRestore(r.Context(), backupID); err != nil {
		if errors.Is(err, ErrBackupNotReady) {
			httpx.Problem(w, http.StatusConflict, "Conflict", "backup has not completed")
			return
		}
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}
