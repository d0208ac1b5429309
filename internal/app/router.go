package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/lumina-cms/lumina-cms/internal/auth"
	"github.com/lumina-cms/lumina-cms/internal/content/gallery"
	"github.com/lumina-cms/lumina-cms/internal/content/offices"
	"github.com/lumina-cms/lumina-cms/internal/content/projects"
	"github.com/lumina-cms/lumina-cms/internal/content/services"
	"github.com/lumina-cms/lumina-cms/internal/content/sliders"
	"github.com/lumina-cms/lumina-cms/internal/content/team"
	"github.com/lumina-cms/lumina-cms/internal/messages"
	"github.com/lumina-cms/lumina-cms/internal/observability"
	"github.com/lumina-cms/lumina-cms/internal/rbac"
	"github.com/lumina-cms/lumina-cms/internal/system"
	"github.com/lumina-cms/lumina-cms/internal/users"
	"github.com/lumina-cms/lumina-cms/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger          *slog.Logger
	Config          *Config
	AuthHandler     *auth.Handler
	UsersHandler    *users.Handler
	RBACHandler     *rbac.Handler
	SlidersHandler  *sliders.Handler
	ProjectsHandler *projects.Handler
	ServicesHandler *services.Handler
	GalleryHandler  *gallery.Handler
	OfficesHandler  *offices.Handler
	TeamHandler     *team.Handler
	MessagesHandler *messages.Handler
	SystemHandler   *system.Handler
	JobHandler      *jobs.Handler
	Metrics         *observability.Metrics
}

// NewRouter constructs the chi.Router. Public site content lives under
// /api, the authenticated management surface under /api/v1/admin.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		params.SlidersHandler.MountPublic(r)
		params.ProjectsHandler.MountPublic(r)
		params.ServicesHandler.MountPublic(r)
		params.GalleryHandler.MountPublic(r)
		params.OfficesHandler.MountPublic(r)
		params.TeamHandler.MountPublic(r)
		params.MessagesHandler.MountPublic(r)

		r.Route("/v1", func(r chi.Router) {
			r.Route("/auth", params.AuthHandler.MountRoutes)

			r.Route("/admin", func(r chi.Router) {
				r.Route("/users", func(r chi.Router) {
					params.UsersHandler.MountRoutes(r)
					params.RBACHandler.MountAssignments(r)
				})
				params.RBACHandler.MountRoutes(r)
				params.MessagesHandler.MountAdmin(r)
				params.SystemHandler.MountRoutes(r)

				r.Route("/sliders", params.SlidersHandler.MountAdmin)
				r.Route("/projects", params.ProjectsHandler.MountAdmin)
				r.Route("/services", params.ServicesHandler.MountAdmin)
				r.Route("/gallery", params.GalleryHandler.MountAdmin)
				r.Route("/offices", params.OfficesHandler.MountAdmin)
				r.Route("/team", params.TeamHandler.MountAdmin)

				if params.JobHandler != nil {
					r.Route("/jobs", params.JobHandler.MountRoutes)
				}
			})
		})
	})

	return r
}
