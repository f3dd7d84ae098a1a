package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/eduventure/auth-service/internal/api/handler"
	"github.com/eduventure/auth-service/internal/api/middleware"
	"github.com/eduventure/auth-service/internal/core/domain"
	"github.com/eduventure/auth-service/internal/core/ports"
	"github.com/eduventure/auth-service/internal/core/token"
)

const testSecret = "router-secret"

// routerAuthService is a fixed-behaviour AuthService for routing tests.
type routerAuthService struct {
	tokens *token.Issuer
}

func (s *routerAuthService) Signup(ctx context.Context, in ports.SignupInput) (*ports.AuthResult, error) {
	if in.Email == "taken@example.com" {
		return nil, domain.ErrUserExists
	}
	pair, err := s.tokens.IssuePair("u1", domain.RoleUser)
	if err != nil {
		return nil, err
	}
	return &ports.AuthResult{Tokens: pair, User: &domain.User{ID: "u1", Username: in.Username, Email: in.Email, Role: domain.RoleUser}}, nil
}

func (s *routerAuthService) ValidateOTP(ctx context.Context, email, code string) error {
	if code != "1234" {
		return domain.ErrOTPMismatch
	}
	return nil
}

func (s *routerAuthService) ResendOTP(ctx context.Context, email string) error { return nil }

func (s *routerAuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	return nil, domain.ErrInvalidCredentials
}

func (s *routerAuthService) Logout(ctx context.Context, refreshToken string) error { return nil }

func (s *routerAuthService) RefreshAccessToken(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken != "live" {
		return "", domain.ErrInvalidRefreshToken
	}
	return s.tokens.IssueAccessToken("u1", domain.RoleUser)
}

func (s *routerAuthService) GetUserDetails(ctx context.Context, accessToken string) (*domain.User, error) {
	claims, err := s.tokens.Verify(accessToken)
	if err != nil {
		return nil, err
	}
	return &domain.User{ID: claims.UserID, Username: "alice", Role: claims.Role}, nil
}

func (s *routerAuthService) UpdateUsername(ctx context.Context, userID, newUsername string) (*domain.User, error) {
	return &domain.User{ID: userID, Username: newUsername}, nil
}

func (s *routerAuthService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return []*domain.User{{ID: "u1", Username: "alice"}}, nil
}

var (
	routerOnce sync.Once
	testRouter *echo.Echo
)

// sharedRouter builds the router once; its prometheus collectors live in the
// default registry.
func sharedRouter() *echo.Echo {
	routerOnce.Do(func() {
		tokens := token.NewIssuer(testSecret)
		testRouter = NewRouter(Deps{
			AuthService: &routerAuthService{tokens: tokens},
			Tokens:      tokens,
			Health: map[string]handler.Pinger{
				"mongodb": handler.PingerFunc(func(context.Context) error { return nil }),
			},
			AllowedOrigins: []string{"http://localhost:3000"},
			Log:            zerolog.Nop(),
		})
	})
	return testRouter
}

func do(method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	sharedRouter().ServeHTTP(rec, req)
	return rec
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	return body.Error
}

func TestRouter_PublicRoutes(t *testing.T) {
	cases := []struct {
		name   string
		method string
		path   string
		body   string
		code   int
	}{
		{"signup", http.MethodPost, "/signup", `{"username":"a","email":"a@example.com","password":"pw"}`, http.StatusCreated},
		{"signup conflict", http.MethodPost, "/signup", `{"username":"a","email":"taken@example.com","password":"pw"}`, http.StatusConflict},
		{"signup missing field", http.MethodPost, "/signup", `{"username":"a"}`, http.StatusBadRequest},
		{"validate otp", http.MethodPost, "/validateOtp", `{"email":"a@example.com","otp":"1234"}`, http.StatusOK},
		{"validate otp mismatch", http.MethodPost, "/validateOtp", `{"email":"a@example.com","otp":"9999"}`, http.StatusBadRequest},
		{"resend otp", http.MethodPost, "/resendOtp", `{"email":"a@example.com"}`, http.StatusOK},
		{"login rejected", http.MethodPost, "/login", `{"email":"a@example.com","password":"pw"}`, http.StatusUnauthorized},
		{"logout", http.MethodPost, "/logout", `{"refreshToken":"x"}`, http.StatusOK},
		{"refresh", http.MethodPost, "/refresh", `{"refreshToken":"live"}`, http.StatusOK},
		{"refresh revoked", http.MethodPost, "/refresh", `{"refreshToken":"gone"}`, http.StatusUnauthorized},
		{"health", http.MethodGet, "/health", "", http.StatusOK},
		{"ready", http.MethodGet, "/health/ready", "", http.StatusOK},
		{"metrics", http.MethodGet, "/metrics", "", http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(tc.method, tc.path, tc.body, nil)
			if rec.Code != tc.code {
				t.Fatalf("expected %d, got %d (%s)", tc.code, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestRouter_ProtectedRoutes(t *testing.T) {
	tokens := token.NewIssuer(testSecret)
	userToken, _ := tokens.IssueAccessToken("u1", domain.RoleUser)
	adminToken, _ := tokens.IssueAccessToken("u9", domain.RoleAdmin)
	forged, _ := token.NewIssuer("forged").IssueAccessToken("u9", domain.RoleAdmin)

	t.Run("missing token", func(t *testing.T) {
		rec := do(http.MethodGet, "/user", "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		if errorBody(t, rec) == "" {
			t.Fatalf("expected error message")
		}
	})

	t.Run("forged token", func(t *testing.T) {
		rec := do(http.MethodGet, "/user", "", map[string]string{middleware.HeaderAccessToken: forged})
		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
	})

	t.Run("user", func(t *testing.T) {
		rec := do(http.MethodGet, "/user", "", map[string]string{middleware.HeaderAccessToken: userToken})
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
		}
	})

	t.Run("update username", func(t *testing.T) {
		rec := do(http.MethodPut, "/update-username", `{"newUsername":"alicia"}`, map[string]string{middleware.HeaderAccessToken: userToken})
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
		}
	})

	t.Run("dashboard as user", func(t *testing.T) {
		rec := do(http.MethodGet, "/dashboard", "", map[string]string{
			middleware.HeaderAccessToken: userToken,
			"userRole":                   domain.RoleAdmin,
		})
		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
	})

	t.Run("dashboard as admin", func(t *testing.T) {
		rec := do(http.MethodGet, "/dashboard", "", map[string]string{middleware.HeaderAccessToken: adminToken})
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
		}
		var users []domain.User
		if err := json.Unmarshal(rec.Body.Bytes(), &users); err != nil {
			t.Fatalf("expected a JSON array: %v", err)
		}
		if len(users) != 1 {
			t.Fatalf("expected 1 user, got %d", len(users))
		}
	})
}

func TestRouter_TransparentRefresh(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	expired, _ := token.NewIssuer(testSecret, token.WithClock(func() time.Time { return past })).IssueAccessToken("u1", domain.RoleUser)

	rec := do(http.MethodGet, "/user", "", map[string]string{
		middleware.HeaderAccessToken:  expired,
		middleware.HeaderRefreshToken: "live",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	if rec.Header().Get(middleware.HeaderNewAccessToken) == "" {
		t.Fatalf("expected refreshed token header")
	}

	rec = do(http.MethodGet, "/user", "", map[string]string{
		middleware.HeaderAccessToken:  expired,
		middleware.HeaderRefreshToken: "gone",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
