package users_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/lumina-cms/lumina-cms/internal/shared"
	"github.com/lumina-cms/lumina-cms/internal/users"
	_ "github.com/lumina-cms/lumina-cms/testing"
)

type mockRepo struct {
	users       map[int64]*users.User
	hashes      map[int64]string
	emails      map[string]int64
	nextID      int64
	deleted     []int64
	createError error
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		users:  make(map[int64]*users.User),
		hashes: make(map[int64]string),
		emails: make(map[string]int64),
		nextID: 1,
	}
}

func (m *mockRepo) List(ctx context.Context) ([]users.User, error) {
	out := make([]users.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, *u)
	}
	return out, nil
}

func (m *mockRepo) Get(ctx context.Context, id int64) (*users.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return u, nil
}

func (m *mockRepo) Create(ctx context.Context, name, email, passwordHash string) (*users.User, error) {
	if m.createError != nil {
		return nil, m.createError
	}
	if _, exists := m.emails[email]; exists {
		return nil, shared.ErrConflict
	}
	id := m.nextID
	m.nextID++
	u := &users.User{ID: id, Name: name, Email: email, IsActive: true}
	m.users[id] = u
	m.hashes[id] = passwordHash
	m.emails[email] = id
	return u, nil
}

func (m *mockRepo) Update(ctx context.Context, id int64, name, email, avatar string) (*users.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	u.Name, u.Email, u.Avatar = name, email, avatar
	return u, nil
}

func (m *mockRepo) SetActive(ctx context.Context, id int64, active bool) error {
	u, ok := m.users[id]
	if !ok {
		return shared.ErrNotFound
	}
	u.IsActive = active
	return nil
}

func (m *mockRepo) DeleteCascade(ctx context.Context, id int64) error {
	if _, ok := m.users[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.users, id)
	m.deleted = append(m.deleted, id)
	return nil
}

type recordingInvalidator struct {
	evicted []int64
}

func (r *recordingInvalidator) Invalidate(ctx context.Context, userIDs ...int64) {
	r.evicted = append(r.evicted, userIDs...)
}

func TestCreateHashesPasswordAndNormalizesEmail(t *testing.T) {
	repo := newMockRepo()
	service := users.NewService(repo, nil)

	user, err := service.Create(context.Background(), " Jane ", " Jane@Lumina.Local ", "supersecret")
	require.NoError(t, err)
	assert.Equal(t, "Jane", user.Name)
	assert.Equal(t, "jane@lumina.local", user.Email)

	hashed := repo.hashes[user.ID]
	require.NotEmpty(t, hashed)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hashed), []byte("supersecret")))
}

func TestCreateDuplicateEmailConflicts(t *testing.T) {
	repo := newMockRepo()
	service := users.NewService(repo, nil)
	ctx := context.Background()

	_, err := service.Create(ctx, "Jane", "jane@lumina.local", "supersecret")
	require.NoError(t, err)
	_, err = service.Create(ctx, "Other", "jane@lumina.local", "supersecret")
	assert.ErrorIs(t, err, shared.ErrConflict)
}

func TestSetActiveInvalidatesPrincipal(t *testing.T) {
	repo := newMockRepo()
	inv := &recordingInvalidator{}
	service := users.NewService(repo, inv)
	ctx := context.Background()

	user, err := service.Create(ctx, "Jane", "jane@lumina.local", "supersecret")
	require.NoError(t, err)

	require.NoError(t, service.SetActive(ctx, user.ID, false))
	assert.False(t, repo.users[user.ID].IsActive)
	assert.Equal(t, []int64{user.ID}, inv.evicted)
}

func TestDeleteCascadesAndInvalidates(t *testing.T) {
	repo := newMockRepo()
	inv := &recordingInvalidator{}
	service := users.NewService(repo, inv)
	ctx := context.Background()

	user, err := service.Create(ctx, "Jane", "jane@lumina.local", "supersecret")
	require.NoError(t, err)

	require.NoError(t, service.Delete(ctx, user.ID))
	assert.Equal(t, []int64{user.ID}, repo.deleted)
	assert.Equal(t, []int64{user.ID}, inv.evicted)

	assert.ErrorIs(t, service.Delete(ctx, user.ID), shared.ErrNotFound)
}
