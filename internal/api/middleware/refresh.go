package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eduventure/auth-service/internal/core/domain"
	"github.com/eduventure/auth-service/internal/core/token"
)

const (
	// HeaderAccessToken carries the raw access token, without a scheme.
	HeaderAccessToken = echo.HeaderAuthorization
	// HeaderRefreshToken carries the refresh token used when the access
	// token has expired.
	HeaderRefreshToken = "X-Refresh-Token"
	// HeaderNewAccessToken returns a transparently refreshed access token.
	HeaderNewAccessToken = "X-Access-Token"
)

// Context keys set for downstream handlers.
const (
	CtxAccessToken = "access_token"
	CtxUserID      = "user_id"
	CtxRole        = "role"
)

// TokenVerifier checks an access token's signature and expiry.
type TokenVerifier interface {
	Verify(tokenString string) (*token.Claims, error)
}

// Refresher mints a new access token from a refresh token.
type Refresher interface {
	RefreshAccessToken(ctx context.Context, refreshToken string) (string, error)
}

// Refresh gates protected routes. A valid access token passes through. An
// expired one is replaced using the request's refresh token; the new token is
// stored in the context and echoed in the X-Access-Token response header.
// Missing tokens and failed refreshes get 401, a bad signature gets 403.
func Refresh(verifier TokenVerifier, refresher Refresher) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := c.Request().Header.Get(HeaderAccessToken)
			if raw == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "access token not provided")
			}

			claims, err := verifier.Verify(raw)
			switch {
			case err == nil:
			case errors.Is(err, domain.ErrTokenExpired):
				fresh, rerr := refresher.RefreshAccessToken(c.Request().Context(), c.Request().Header.Get(HeaderRefreshToken))
				if rerr != nil {
					if errors.Is(rerr, domain.ErrInvalidRefreshToken) {
						return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired refresh token")
					}
					return rerr
				}
				if claims, err = verifier.Verify(fresh); err != nil {
					return err
				}
				raw = fresh
				c.Response().Header().Set(HeaderNewAccessToken, fresh)
			default:
				return echo.NewHTTPError(http.StatusForbidden, "invalid access token")
			}
			if !domain.IsValidRole(claims.Role) {
				return echo.NewHTTPError(http.StatusForbidden, "invalid access token")
			}

			c.Set(CtxAccessToken, raw)
			c.Set(CtxUserID, claims.UserID)
			c.Set(CtxRole, claims.Role)

			return next(c)
		}
	}
}
