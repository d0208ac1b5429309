package authz

import (
	"log/slog"
	"net/http"

	"github.com/lumina-cms/lumina-cms/internal/platform/httpx"
	"github.com/lumina-cms/lumina-cms/internal/shared"
)

// Middleware adapts the Engine to chi handler chains. On allow it stores the
// resolved identity in the request context so handlers can stamp CreatedBy
// without re-resolving.
type Middleware struct {
	Engine  *Engine
	Logger  *slog.Logger
	Observe func(outcome string)
}

// RequirePermissions gates a route on ALL of the given permissions. With no
// permissions it still requires a valid token and an active account.
func (m Middleware) RequirePermissions(perms ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, denial, err := m.Engine.AuthorizePermissions(r.Context(), r.Header.Get("Authorization"), perms)
			m.finish(w, r, next, principal, denial, err)
		})
	}
}

// RequireRoles gates a route on ANY of the given roles.
func (m Middleware) RequireRoles(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, denial, err := m.Engine.AuthorizeRoles(r.Context(), r.Header.Get("Authorization"), roles)
			m.finish(w, r, next, principal, denial, err)
		})
	}
}

func (m Middleware) finish(w http.ResponseWriter, r *http.Request, next http.Handler, principal *Principal, denial *Denial, err error) {
	if err != nil {
		// Store fault: could not determine authorization. Not a deny.
		if m.Logger != nil {
			m.Logger.Error("authz resolve", slog.String("path", r.URL.Path), slog.Any("error", err))
		}
		m.observe("error")
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	if denial != nil {
		m.observe("deny")
		title := http.StatusText(denial.Status)
		httpx.JSON(w, denial.Status, httpx.ProblemDetail{
			Title:    title,
			Status:   denial.Status,
			Detail:   denial.Message,
			Required: denial.Required,
			Missing:  denial.Missing,
		})
		return
	}

	m.observe("allow")
	identity := &shared.Identity{
		UserID:      principal.UserID,
		Name:        principal.Name,
		Email:       principal.Email,
		Roles:       principal.RoleNames(),
		Permissions: principal.PermissionList(),
	}
	next.ServeHTTP(w, r.WithContext(shared.ContextWithIdentity(r.Context(), identity)))
}

func (m Middleware) observe(outcome string) {
	if m.Observe != nil {
		m.Observe(outcome)
	}
}
