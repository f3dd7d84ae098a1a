package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/eduventure/auth-service/internal/core/domain"
	"github.com/eduventure/auth-service/internal/core/ports"
)

// PasswordCost is the bcrypt work factor applied to every stored password.
const PasswordCost = 10

// CredentialStore owns identity records and password checks.
type CredentialStore struct {
	repo ports.UserRepository
	cost int
}

func NewCredentialStore(repo ports.UserRepository) *CredentialStore {
	return &CredentialStore{repo: repo, cost: PasswordCost}
}

// HashPassword returns the bcrypt hash of password.
func (s *CredentialStore) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Register creates an unverified identity with the default role. The
// repository's unique email index is the authoritative conflict signal.
func (s *CredentialStore) Register(ctx context.Context, username, email, passwordHash string) (*domain.User, error) {
	now := time.Now().UTC()
	return s.repo.Create(ctx, &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Verified:     false,
		Role:         domain.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

// Exists reports whether an identity is registered under email.
func (s *CredentialStore) Exists(ctx context.Context, email string) (bool, error) {
	_, err := s.repo.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, domain.ErrUserNotFound):
		return false, nil
	default:
		return false, err
	}
}

// Authenticate returns the identity for email when password matches.
// Unknown email and wrong password both yield domain.ErrInvalidCredentials.
func (s *CredentialStore) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}

func (s *CredentialStore) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.repo.FindByEmail(ctx, email)
}

func (s *CredentialStore) MarkVerified(ctx context.Context, email string) (*domain.User, error) {
	return s.repo.SetVerified(ctx, email)
}

func (s *CredentialStore) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *CredentialStore) RenameUser(ctx context.Context, id, username string) (*domain.User, error) {
	return s.repo.UpdateUsername(ctx, id, username)
}

// ListByRole lists identities not holding excludedRole, role omitted.
func (s *CredentialStore) ListByRole(ctx context.Context, excludedRole string) ([]*domain.User, error) {
	return s.repo.ListExcludingRole(ctx, excludedRole)
}
