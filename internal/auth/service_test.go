package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/lumina-cms/lumina-cms/internal/auth"
	"github.com/lumina-cms/lumina-cms/internal/shared"
	"github.com/lumina-cms/lumina-cms/internal/token"
	_ "github.com/lumina-cms/lumina-cms/testing"
)

type stubRepo struct {
	user *auth.User
}

func (s *stubRepo) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	if s.user == nil || s.user.Email != email {
		return nil, shared.ErrNotFound
	}
	return s.user, nil
}

func newService(t *testing.T, user *auth.User) (*auth.Service, *token.Codec) {
	t.Helper()
	codec := token.NewCodec("test-secret", time.Hour)
	return auth.NewService(&stubRepo{user: user}, codec), codec
}

func hash(t *testing.T, password string) string {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hashed)
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	service, codec := newService(t, &auth.User{
		ID:           3,
		Email:        "admin@lumina.local",
		PasswordHash: hash(t, "correcthorse"),
		IsActive:     true,
	})

	user, signed, err := service.Login(context.Background(), "Admin@Lumina.local ", "correcthorse")
	require.NoError(t, err)
	assert.Equal(t, int64(3), user.ID)

	res := codec.Verify(signed)
	require.True(t, res.Valid())
	assert.Equal(t, int64(3), res.Claims.UserID)
	assert.Empty(t, res.Claims.Roles, "token must not embed a role snapshot")
}

func TestLoginWrongPassword(t *testing.T) {
	service, _ := newService(t, &auth.User{
		ID:           3,
		Email:        "admin@lumina.local",
		PasswordHash: hash(t, "correcthorse"),
		IsActive:     true,
	})

	_, _, err := service.Login(context.Background(), "admin@lumina.local", "wrongpass1")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestLoginUnknownEmail(t *testing.T) {
	service, _ := newService(t, nil)

	_, _, err := service.Login(context.Background(), "ghost@lumina.local", "whatever12")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestLoginInactiveAccount(t *testing.T) {
	service, _ := newService(t, &auth.User{
		ID:           3,
		Email:        "admin@lumina.local",
		PasswordHash: hash(t, "correcthorse"),
		IsActive:     false,
	})

	_, _, err := service.Login(context.Background(), "admin@lumina.local", "correcthorse")
	assert.ErrorIs(t, err, shared.ErrAccountInactive)
}
