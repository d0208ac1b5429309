package authz_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumina-cms/lumina-cms/internal/authz"
	"github.com/lumina-cms/lumina-cms/internal/token"
)

type mockStore struct {
	principals map[int64]*authz.Principal
	err        error
	calls      int
}

func (m *mockStore) Resolve(ctx context.Context, userID int64) (*authz.Principal, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.principals[userID]
	if !ok {
		return nil, authz.ErrPrincipalNotFound
	}
	return p, nil
}

func activeAdmin() *authz.Principal {
	return &authz.Principal{
		UserID: 1,
		Name:   "Admin",
		Email:  "admin@lumina.local",
		Active: true,
		Roles: []authz.Role{
			{ID: 1, Name: "admin", Permissions: []string{"user:create", "user:list"}},
		},
	}
}

func newEngine(t *testing.T, store authz.Store) (*authz.Engine, *token.Codec) {
	t.Helper()
	codec := token.NewCodec("test-secret", time.Hour)
	return authz.NewEngine(codec, store), codec
}

func bearer(t *testing.T, codec *token.Codec, userID int64) string {
	t.Helper()
	signed, err := codec.Issue(userID, nil)
	require.NoError(t, err)
	return "Bearer " + signed
}

func TestAuthorizePermissionsAllow(t *testing.T) {
	store := &mockStore{principals: map[int64]*authz.Principal{1: activeAdmin()}}
	engine, codec := newEngine(t, store)

	principal, denial, err := engine.AuthorizePermissions(context.Background(), bearer(t, codec, 1), []string{"user:create"})
	require.NoError(t, err)
	require.Nil(t, denial)
	require.NotNil(t, principal)
	assert.Equal(t, int64(1), principal.UserID)
}

func TestAuthorizePermissionsANDSemantics(t *testing.T) {
	p := activeAdmin()
	p.Roles[0].Permissions = []string{"user:list"}
	store := &mockStore{principals: map[int64]*authz.Principal{1: p}}
	engine, codec := newEngine(t, store)

	_, denial, err := engine.AuthorizePermissions(context.Background(), bearer(t, codec, 1), []string{"user:create", "user:list"})
	require.NoError(t, err)
	require.NotNil(t, denial)
	assert.Equal(t, http.StatusForbidden, denial.Status)
	assert.Equal(t, []string{"user:create"}, denial.Missing)
	assert.ElementsMatch(t, []string{"user:create", "user:list"}, denial.Required)
}

func TestAuthorizeRolesORSemantics(t *testing.T) {
	p := activeAdmin()
	p.Roles = []authz.Role{{ID: 2, Name: "editor"}}
	store := &mockStore{principals: map[int64]*authz.Principal{1: p}}
	engine, codec := newEngine(t, store)

	principal, denial, err := engine.AuthorizeRoles(context.Background(), bearer(t, codec, 1), []string{"admin", "editor"})
	require.NoError(t, err)
	require.Nil(t, denial)
	require.NotNil(t, principal)

	_, denial, err = engine.AuthorizeRoles(context.Background(), bearer(t, codec, 1), []string{"admin"})
	require.NoError(t, err)
	require.NotNil(t, denial)
	assert.Equal(t, http.StatusForbidden, denial.Status)
}

func TestInactiveAccountDeniedBeforePermissions(t *testing.T) {
	p := activeAdmin()
	p.Active = false
	store := &mockStore{principals: map[int64]*authz.Principal{1: p}}
	engine, codec := newEngine(t, store)

	// Even though the role grants the permission, status wins.
	_, denial, err := engine.AuthorizePermissions(context.Background(), bearer(t, codec, 1), []string{"user:create"})
	require.NoError(t, err)
	require.NotNil(t, denial)
	assert.Equal(t, http.StatusForbidden, denial.Status)
	assert.Equal(t, "account inactive", denial.Message)
	assert.Empty(t, denial.Missing)

	// Same ordering holds for role mode.
	_, denial, err = engine.AuthorizeRoles(context.Background(), bearer(t, codec, 1), []string{"admin"})
	require.NoError(t, err)
	require.NotNil(t, denial)
	assert.Equal(t, "account inactive", denial.Message)
}

func TestNoToken(t *testing.T) {
	engine, _ := newEngine(t, &mockStore{})

	for _, header := range []string{"", "Basic abc123", "Bearer", "Bearer   "} {
		_, denial, err := engine.AuthorizePermissions(context.Background(), header, []string{"user:list"})
		require.NoError(t, err)
		require.NotNil(t, denial, "header %q", header)
		assert.Equal(t, http.StatusUnauthorized, denial.Status)
		assert.Equal(t, "no token", denial.Message)
	}
}

func TestInvalidToken(t *testing.T) {
	store := &mockStore{principals: map[int64]*authz.Principal{1: activeAdmin()}}
	engine, _ := newEngine(t, store)

	other := token.NewCodec("other-secret", time.Hour)
	signed, err := other.Issue(1, nil)
	require.NoError(t, err)

	_, denial, err := engine.AuthorizePermissions(context.Background(), "Bearer "+signed, []string{"user:list"})
	require.NoError(t, err)
	require.NotNil(t, denial)
	assert.Equal(t, http.StatusUnauthorized, denial.Status)
	assert.Equal(t, "invalid token", denial.Message)
	assert.Zero(t, store.calls, "invalid token must short-circuit before the store")
}

func TestUserNotFound(t *testing.T) {
	engine, codec := newEngine(t, &mockStore{principals: map[int64]*authz.Principal{}})

	_, denial, err := engine.AuthorizePermissions(context.Background(), bearer(t, codec, 99), []string{"user:list"})
	require.NoError(t, err)
	require.NotNil(t, denial)
	assert.Equal(t, http.StatusUnauthorized, denial.Status)
	assert.Equal(t, "user not found", denial.Message)
}

func TestStoreFaultIsNotADenial(t *testing.T) {
	engine, codec := newEngine(t, &mockStore{err: errors.New("connection refused")})

	_, denial, err := engine.AuthorizePermissions(context.Background(), bearer(t, codec, 1), []string{"user:list"})
	require.Error(t, err)
	assert.Nil(t, denial)
}

func TestEmptyRequirementStillChecksIdentity(t *testing.T) {
	store := &mockStore{principals: map[int64]*authz.Principal{1: activeAdmin()}}
	engine, codec := newEngine(t, store)

	principal, denial, err := engine.AuthorizePermissions(context.Background(), bearer(t, codec, 1), nil)
	require.NoError(t, err)
	require.Nil(t, denial)
	require.NotNil(t, principal)

	_, denial, err = engine.AuthorizePermissions(context.Background(), "", nil)
	require.NoError(t, err)
	require.NotNil(t, denial)
	assert.Equal(t, http.StatusUnauthorized, denial.Status)
}

func TestAggregateCollapsesDuplicates(t *testing.T) {
	p := activeAdmin()
	p.Roles = append(p.Roles, authz.Role{ID: 2, Name: "editor", Permissions: []string{"user:list", "project:update"}})

	set := p.Permissions()
	assert.Len(t, set, 3)
	assert.Equal(t, []string{"project:update", "user:create", "user:list"}, p.PermissionList())
}

func TestAggregateZeroRoles(t *testing.T) {
	p := &authz.Principal{UserID: 5, Active: true}
	assert.Empty(t, p.Permissions())
	assert.Empty(t, p.PermissionList())
}
