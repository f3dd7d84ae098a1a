package ports

import (
	"context"

	"github.com/eduventure/auth-service/internal/core/domain"
)

// SignupInput carries the raw, unsanitized signup fields.
type SignupInput struct {
	Username string
	Email    string
	Password string
}

// AuthResult is returned by Signup and Login.
type AuthResult struct {
	Tokens domain.TokenPair
	User   *domain.User
}

// AuthService is the authentication and session lifecycle entry point.
type AuthService interface {
	Signup(ctx context.Context, in SignupInput) (*AuthResult, error)
	ValidateOTP(ctx context.Context, email, code string) error
	ResendOTP(ctx context.Context, email string) error
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Logout(ctx context.Context, refreshToken string) error
	RefreshAccessToken(ctx context.Context, refreshToken string) (string, error)
	GetUserDetails(ctx context.Context, accessToken string) (*domain.User, error)
	UpdateUsername(ctx context.Context, userID, newUsername string) (*domain.User, error)
	ListUsers(ctx context.Context) ([]*domain.User, error)
}
