package users

import (
	"context"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Invalidator evicts cached principals after a write that changes a user's
// authorization state.
type Invalidator interface {
	Invalidate(ctx context.Context, userIDs ...int64)
}

// Service handles user management business logic.
type Service struct {
	repo        RepositoryPort
	invalidator Invalidator
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, invalidator Invalidator) *Service {
	return &Service{repo: repo, invalidator: invalidator}
}

// List returns all users.
func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

// Get returns one user.
func (s *Service) Get(ctx context.Context, id int64) (*User, error) {
	return s.repo.Get(ctx, id)
}

// Create hashes the password and inserts an active user.
func (s *Service) Create(ctx context.Context, name, email, password string) (*User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, strings.TrimSpace(name), normalizeEmail(email), string(hashed))
}

// Update modifies profile fields.
func (s *Service) Update(ctx context.Context, id int64, name, email, avatar string) (*User, error) {
	user, err := s.repo.Update(ctx, id, strings.TrimSpace(name), normalizeEmail(email), strings.TrimSpace(avatar))
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)
	return user, nil
}

// SetActive toggles account status and evicts the cached principal so a
// deactivation denies on the very next request.
func (s *Service) SetActive(ctx context.Context, id int64, active bool) error {
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

// Delete cascades the removal of the user's role links and authored content.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.DeleteCascade(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *Service) invalidate(ctx context.Context, id int64) {
	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx, id)
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
