package ports

import (
	"context"

	"github.com/eduventure/auth-service/internal/core/domain"
)

// UserRepository defines identity persistence. Create must report
// domain.ErrUserExists when the email is already taken.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	SetVerified(ctx context.Context, email string) (*domain.User, error)
	UpdateUsername(ctx context.Context, id, username string) (*domain.User, error)
	// ListExcludingRole returns every user whose role differs from role,
	// with the role field left empty.
	ListExcludingRole(ctx context.Context, role string) ([]*domain.User, error)
}
