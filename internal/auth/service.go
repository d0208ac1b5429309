package auth

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/lumina-cms/lumina-cms/internal/shared"
	"github.com/lumina-cms/lumina-cms/internal/token"
)

// Service wraps authentication business rules: credential verification and
// token issuance.
type Service struct {
	repo  Repository
	codec *token.Codec
}

// NewService constructs a new Service.
func NewService(repo Repository, codec *token.Codec) *Service {
	return &Service{repo: repo, codec: codec}
}

// Login validates email/password credentials and issues an identity token.
// The token carries only the user ID; roles are re-resolved from storage on
// every authorized request.
func (s *Service) Login(ctx context.Context, email, password string) (*User, string, error) {
	user, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, "", shared.ErrInvalidCredentials
		}
		return nil, "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", shared.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, "", shared.ErrAccountInactive
	}

	signed, err := s.codec.Issue(user.ID, nil)
	if err != nil {
		return nil, "", err
	}
	return user, signed, nil
}
