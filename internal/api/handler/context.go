package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eduventure/auth-service/internal/api/middleware"
)

// ctxIdentity reads what the Refresh middleware attached to the request.
// An empty user ID means the middleware did not run.
func ctxIdentity(c echo.Context) (userID, accessToken string, err error) {
	userID, _ = c.Get(middleware.CtxUserID).(string)
	accessToken, _ = c.Get(middleware.CtxAccessToken).(string)
	if userID == "" || accessToken == "" {
		return "", "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return userID, accessToken, nil
}
