package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/eduventure/auth-service/internal/core/domain"
	"github.com/eduventure/auth-service/internal/core/ports"
	"github.com/eduventure/auth-service/internal/core/token"
	"github.com/eduventure/auth-service/internal/metrics"
)

// AuthService drives an identity from signup through verification and owns
// the token/session lifecycle. It is the only writer of users, OTP challenges
// and refresh sessions.
type AuthService struct {
	credentials *CredentialStore
	sessions    *SessionStore
	otps        *OTPManager
	tokens      *token.Issuer
	mailer      ports.Mailer
	log         zerolog.Logger
}

func NewAuthService(
	credentials *CredentialStore,
	sessions *SessionStore,
	otps *OTPManager,
	tokens *token.Issuer,
	mailer ports.Mailer,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		credentials: credentials,
		sessions:    sessions,
		otps:        otps,
		tokens:      tokens,
		mailer:      mailer,
		log:         log,
	}
}

// Signup registers an unverified identity, opens a session for it and mails
// a passcode. The session write and the passcode issue+delivery run
// concurrently; the call fails if either does. The identity is not rolled
// back on failure: the client recovers through ResendOTP and Login.
func (s *AuthService) Signup(ctx context.Context, in ports.SignupInput) (*ports.AuthResult, error) {
	if in.Username == "" || in.Email == "" || in.Password == "" {
		metrics.SignupsTotal.WithLabelValues("invalid").Inc()
		return nil, domain.NewValidationError("username, email, and password are required")
	}
	email, err := sanitizeEmail(in.Email)
	if err != nil {
		metrics.SignupsTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}
	username := sanitize(in.Username)

	exists, err := s.credentials.Exists(ctx, email)
	if err != nil {
		return nil, s.signupFailed(fmt.Errorf("signup: lookup user: %w", err))
	}
	if exists {
		metrics.SignupsTotal.WithLabelValues("conflict").Inc()
		return nil, domain.ErrUserExists
	}

	hash, err := s.credentials.HashPassword(in.Password)
	if err != nil {
		return nil, s.signupFailed(fmt.Errorf("signup: %w", err))
	}

	user, err := s.credentials.Register(ctx, username, email, hash)
	if err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			metrics.SignupsTotal.WithLabelValues("conflict").Inc()
			return nil, domain.ErrUserExists
		}
		return nil, s.signupFailed(fmt.Errorf("signup: create user: %w", err))
	}

	pair, err := s.tokens.IssuePair(user.ID, user.Role)
	if err != nil {
		return nil, s.signupFailed(fmt.Errorf("signup: %w", err))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.sessions.Put(gctx, user.ID, pair.RefreshToken)
	})
	g.Go(func() error {
		return s.deliverOTP(gctx, email, "signup")
	})
	if err := g.Wait(); err != nil {
		return nil, s.signupFailed(fmt.Errorf("signup: %w", err))
	}

	metrics.SignupsTotal.WithLabelValues(metrics.ResultSuccess).Inc()
	s.log.Info().Str("user_id", user.ID).Msg("user signed up")

	return &ports.AuthResult{Tokens: pair, User: user}, nil
}

func (s *AuthService) signupFailed(err error) error {
	metrics.SignupsTotal.WithLabelValues(metrics.ResultFailure).Inc()
	return err
}

// ValidateOTP consumes the passcode for email and marks the identity verified.
func (s *AuthService) ValidateOTP(ctx context.Context, email, code string) error {
	if email == "" || code == "" {
		return domain.NewValidationError("email and OTP are required")
	}
	email, err := requireEmail(email)
	if err != nil {
		return err
	}

	if err := s.otps.Validate(ctx, email, code); err != nil {
		switch {
		case errors.Is(err, domain.ErrOTPNotFound):
			metrics.OTPValidationsTotal.WithLabelValues("not_found").Inc()
		case errors.Is(err, domain.ErrOTPExpired):
			metrics.OTPValidationsTotal.WithLabelValues("expired").Inc()
		case errors.Is(err, domain.ErrOTPMismatch):
			metrics.OTPValidationsTotal.WithLabelValues("mismatch").Inc()
		default:
			metrics.OTPValidationsTotal.WithLabelValues(metrics.ResultFailure).Inc()
			return fmt.Errorf("validate otp: %w", err)
		}
		s.log.Warn().Err(err).Msg("otp rejected")
		return err
	}

	user, err := s.credentials.MarkVerified(ctx, email)
	if err != nil {
		metrics.OTPValidationsTotal.WithLabelValues(metrics.ResultFailure).Inc()
		return fmt.Errorf("validate otp: %w", err)
	}

	metrics.OTPValidationsTotal.WithLabelValues(metrics.ResultSuccess).Inc()
	s.log.Info().Str("user_id", user.ID).Msg("email verified")
	return nil
}

// ResendOTP replaces the challenge for a registered email and mails the new
// passcode. Verified identities may also request one.
func (s *AuthService) ResendOTP(ctx context.Context, email string) error {
	email, err := requireEmail(email)
	if err != nil {
		return err
	}

	if _, err := s.credentials.FindByEmail(ctx, email); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return err
		}
		return fmt.Errorf("resend otp: lookup user: %w", err)
	}

	if err := s.deliverOTP(ctx, email, "resend"); err != nil {
		return fmt.Errorf("resend otp: %w", err)
	}
	return nil
}

// Login checks credentials and opens a new session. Verification is not
// required.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	if email == "" || password == "" {
		return nil, domain.NewValidationError("email and password are required")
	}
	email, err := requireEmail(email)
	if err != nil {
		return nil, err
	}

	user, err := s.credentials.Authenticate(ctx, email, password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
			return nil, err
		}
		metrics.LoginsTotal.WithLabelValues(metrics.ResultFailure).Inc()
		return nil, fmt.Errorf("login: %w", err)
	}

	pair, err := s.tokens.IssuePair(user.ID, user.Role)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues(metrics.ResultFailure).Inc()
		return nil, fmt.Errorf("login: %w", err)
	}
	if err := s.sessions.Put(ctx, user.ID, pair.RefreshToken); err != nil {
		metrics.LoginsTotal.WithLabelValues(metrics.ResultFailure).Inc()
		return nil, fmt.Errorf("login: %w", err)
	}

	metrics.LoginsTotal.WithLabelValues(metrics.ResultSuccess).Inc()
	s.log.Info().Str("user_id", user.ID).Msg("user logged in")

	return &ports.AuthResult{Tokens: pair, User: user}, nil
}

// Logout deletes the session holding refreshToken. It succeeds whether or not
// a session matched.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return domain.NewValidationError("refresh token is required")
	}
	if err := s.sessions.RemoveByToken(ctx, refreshToken); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	s.log.Info().Msg("session closed")
	return nil
}

// RefreshAccessToken mints a new access token while refreshToken is both
// correctly signed and unexpired and still backed by a stored session. The
// refresh token itself is not rotated.
func (s *AuthService) RefreshAccessToken(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		metrics.TokenRefreshesTotal.WithLabelValues("invalid").Inc()
		return "", domain.ErrInvalidRefreshToken
	}

	claims, err := s.tokens.Verify(refreshToken)
	if err != nil {
		metrics.TokenRefreshesTotal.WithLabelValues("invalid").Inc()
		s.log.Warn().Err(err).Msg("refresh token rejected")
		return "", domain.ErrInvalidRefreshToken
	}

	session, err := s.sessions.Find(ctx, claims.UserID, refreshToken)
	if err != nil {
		metrics.TokenRefreshesTotal.WithLabelValues(metrics.ResultFailure).Inc()
		return "", fmt.Errorf("refresh: %w", err)
	}
	if session == nil {
		metrics.TokenRefreshesTotal.WithLabelValues("revoked").Inc()
		s.log.Warn().Str("user_id", claims.UserID).Msg("refresh token has no session")
		return "", domain.ErrInvalidRefreshToken
	}

	user, err := s.credentials.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			metrics.TokenRefreshesTotal.WithLabelValues("revoked").Inc()
			return "", domain.ErrInvalidRefreshToken
		}
		metrics.TokenRefreshesTotal.WithLabelValues(metrics.ResultFailure).Inc()
		return "", fmt.Errorf("refresh: %w", err)
	}

	access, err := s.tokens.IssueAccessToken(user.ID, user.Role)
	if err != nil {
		metrics.TokenRefreshesTotal.WithLabelValues(metrics.ResultFailure).Inc()
		return "", fmt.Errorf("refresh: %w", err)
	}

	metrics.TokenRefreshesTotal.WithLabelValues(metrics.ResultSuccess).Inc()
	return access, nil
}

// GetUserDetails resolves the identity named by a valid access token.
func (s *AuthService) GetUserDetails(ctx context.Context, accessToken string) (*domain.User, error) {
	if accessToken == "" {
		return nil, domain.ErrTokenMissing
	}
	claims, err := s.tokens.Verify(accessToken)
	if err != nil {
		return nil, err
	}
	return s.credentials.FindByID(ctx, claims.UserID)
}

// UpdateUsername renames the identity userID.
func (s *AuthService) UpdateUsername(ctx context.Context, userID, newUsername string) (*domain.User, error) {
	if userID == "" || newUsername == "" {
		return nil, domain.NewValidationError("user ID and new username are required")
	}
	user, err := s.credentials.RenameUser(ctx, userID, sanitize(newUsername))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update username: %w", err)
	}
	s.log.Info().Str("user_id", user.ID).Msg("username updated")
	return user, nil
}

// ListUsers returns every non-admin identity for the dashboard.
func (s *AuthService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	users, err := s.credentials.ListByRole(ctx, domain.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *AuthService) deliverOTP(ctx context.Context, email, reason string) error {
	code, err := s.otps.Issue(ctx, email)
	if err != nil {
		return err
	}
	metrics.OTPIssuedTotal.WithLabelValues(reason).Inc()

	if err := s.mailer.SendOTP(ctx, email, code); err != nil {
		return fmt.Errorf("send otp email: %w", err)
	}
	return nil
}
