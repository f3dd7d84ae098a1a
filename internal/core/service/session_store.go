package service

import (
	"context"
	"fmt"
	"time"

	"github.com/eduventure/auth-service/internal/core/domain"
	"github.com/eduventure/auth-service/internal/core/ports"
)

// SessionStore tracks issued refresh tokens. Every call to Put adds a record;
// a user may hold any number of sessions.
type SessionStore struct {
	repo ports.SessionRepository
}

func NewSessionStore(repo ports.SessionRepository) *SessionStore {
	return &SessionStore{repo: repo}
}

func (s *SessionStore) Put(ctx context.Context, userID, refreshToken string) error {
	err := s.repo.Insert(ctx, &domain.RefreshSession{
		UserID:    userID,
		Token:     refreshToken,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("store refresh token: %w", err)
	}
	return nil
}

// Find returns nil when no session matches both owner and token.
func (s *SessionStore) Find(ctx context.Context, userID, refreshToken string) (*domain.RefreshSession, error) {
	return s.repo.Find(ctx, userID, refreshToken)
}

// RemoveByToken deletes at most one session. A missing token is not an error.
func (s *SessionStore) RemoveByToken(ctx context.Context, refreshToken string) error {
	if err := s.repo.DeleteByToken(ctx, refreshToken); err != nil {
		return fmt.Errorf("delete refresh token: %w", err)
	}
	return nil
}
