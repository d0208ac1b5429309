package authz_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumina-cms/lumina-cms/internal/authz"
	"github.com/lumina-cms/lumina-cms/internal/platform/httpx"
	"github.com/lumina-cms/lumina-cms/internal/shared"
)

func TestMiddlewareAllowInjectsIdentity(t *testing.T) {
	store := &mockStore{principals: map[int64]*authz.Principal{1: activeAdmin()}}
	engine, codec := newEngine(t, store)
	mw := authz.Middleware{Engine: engine}

	var seen *shared.Identity
	handler := mw.RequirePermissions("user:list")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = shared.IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	req.Header.Set("Authorization", bearer(t, codec, 1))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	require.Equal(t, http.StatusNoContent, res.Code)
	require.NotNil(t, seen)
	assert.Equal(t, int64(1), seen.UserID)
	assert.Equal(t, []string{"admin"}, seen.Roles)
	assert.Equal(t, []string{"user:create", "user:list"}, seen.Permissions)
	assert.Equal(t, 1, store.calls, "identity must come from the single resolution")
}

func TestMiddlewareDenialBody(t *testing.T) {
	p := activeAdmin()
	p.Roles[0].Permissions = []string{"user:list"}
	store := &mockStore{principals: map[int64]*authz.Principal{1: p}}
	engine, codec := newEngine(t, store)
	mw := authz.Middleware{Engine: engine}

	handler := mw.RequirePermissions("user:create", "user:list")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run on deny")
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users", nil)
	req.Header.Set("Authorization", bearer(t, codec, 1))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	require.Equal(t, http.StatusForbidden, res.Code)
	var problem httpx.ProblemDetail
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &problem))
	assert.Equal(t, "insufficient permissions", problem.Detail)
	assert.Equal(t, []string{"user:create"}, problem.Missing)
	assert.ElementsMatch(t, []string{"user:create", "user:list"}, problem.Required)
}

func TestMiddlewareNoTokenIs401(t *testing.T) {
	engine, _ := newEngine(t, &mockStore{})
	mw := authz.Middleware{Engine: engine}

	handler := mw.RequireRoles("admin")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/api/v1/users", nil))
	assert.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestMiddlewareStoreFaultIs500(t *testing.T) {
	engine, codec := newEngine(t, &mockStore{err: assert.AnError})
	outcomes := make([]string, 0, 1)
	mw := authz.Middleware{Engine: engine, Observe: func(o string) { outcomes = append(outcomes, o) }}

	handler := mw.RequirePermissions("user:list")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	req.Header.Set("Authorization", bearer(t, codec, 1))
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	assert.Equal(t, http.StatusInternalServerError, res.Code)
	assert.Equal(t, []string{"error"}, outcomes)
}
