package handler

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/eduventure/auth-service/internal/core/domain"
	"github.com/eduventure/auth-service/internal/core/ports"
)

type stubAuthService struct {
	signupFn         func(ctx context.Context, in ports.SignupInput) (*ports.AuthResult, error)
	validateOTPFn    func(ctx context.Context, email, code string) error
	resendOTPFn      func(ctx context.Context, email string) error
	loginFn          func(ctx context.Context, email, password string) (*ports.AuthResult, error)
	logoutFn         func(ctx context.Context, refreshToken string) error
	refreshFn        func(ctx context.Context, refreshToken string) (string, error)
	userDetailsFn    func(ctx context.Context, accessToken string) (*domain.User, error)
	updateUsernameFn func(ctx context.Context, userID, newUsername string) (*domain.User, error)
	listUsersFn      func(ctx context.Context) ([]*domain.User, error)
}

func (s *stubAuthService) Signup(ctx context.Context, in ports.SignupInput) (*ports.AuthResult, error) {
	return s.signupFn(ctx, in)
}

func (s *stubAuthService) ValidateOTP(ctx context.Context, email, code string) error {
	return s.validateOTPFn(ctx, email, code)
}

func (s *stubAuthService) ResendOTP(ctx context.Context, email string) error {
	return s.resendOTPFn(ctx, email)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) Logout(ctx context.Context, refreshToken string) error {
	return s.logoutFn(ctx, refreshToken)
}

func (s *stubAuthService) RefreshAccessToken(ctx context.Context, refreshToken string) (string, error) {
	return s.refreshFn(ctx, refreshToken)
}

func (s *stubAuthService) GetUserDetails(ctx context.Context, accessToken string) (*domain.User, error) {
	return s.userDetailsFn(ctx, accessToken)
}

func (s *stubAuthService) UpdateUsername(ctx context.Context, userID, newUsername string) (*domain.User, error) {
	return s.updateUsernameFn(ctx, userID, newUsername)
}

func (s *stubAuthService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return s.listUsersFn(ctx)
}

// newJSONContext builds an echo context with the package validator installed.
func newJSONContext(method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func expectHTTPError(t *testing.T, err error, code int) {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != code {
		t.Fatalf("expected HTTP %d, got %v", code, err)
	}
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, code int) {
	t.Helper()
	if rec.Code != code {
		t.Fatalf("expected %d, got %d (%s)", code, rec.Code, rec.Body.String())
	}
}

