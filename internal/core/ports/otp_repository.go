package ports

import (
	"context"

	"github.com/eduventure/auth-service/internal/core/domain"
)

// OTPRepository stores one challenge per email.
type OTPRepository interface {
	// Save stores challenge as the only one for its email, replacing any
	// existing challenge. The last writer wins.
	Save(ctx context.Context, challenge *domain.OTPChallenge) error
	// FindByEmail returns domain.ErrOTPNotFound when no challenge exists.
	FindByEmail(ctx context.Context, email string) (*domain.OTPChallenge, error)
	// DeleteByEmail reports whether a challenge was removed.
	DeleteByEmail(ctx context.Context, email string) (bool, error)
}
