package ports

import (
	"context"

	"github.com/eduventure/auth-service/internal/core/domain"
)

// SessionRepository persists refresh tokens by owner.
type SessionRepository interface {
	Insert(ctx context.Context, session *domain.RefreshSession) error
	// Find returns nil, nil when no record matches both fields.
	Find(ctx context.Context, userID, token string) (*domain.RefreshSession, error)
	DeleteByToken(ctx context.Context, token string) error
}
