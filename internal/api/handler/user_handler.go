package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eduventure/auth-service/internal/core/domain"
	"github.com/eduventure/auth-service/internal/core/ports"
)

// UserHandler serves the routes behind the Refresh middleware.
type UserHandler struct {
	authService ports.AuthService
}

func NewUserHandler(authService ports.AuthService) *UserHandler {
	return &UserHandler{authService: authService}
}

// GetUser returns the identity behind the access token.
//
// @Summary      Current user
// @Tags         users
// @Produce      json
// @Security     AccessToken
// @Success      200  {object}  domain.User
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /user [get]
func (h *UserHandler) GetUser(c echo.Context) error {
	_, accessToken, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	user, err := h.authService.GetUserDetails(c.Request().Context(), accessToken)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, user)
}

// Dashboard lists every non-admin identity. Admin only.
//
// @Summary      Dashboard
// @Tags         users
// @Produce      json
// @Security     AccessToken
// @Success      200  {array}   domain.User
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /dashboard [get]
func (h *UserHandler) Dashboard(c echo.Context) error {
	users, err := h.authService.ListUsers(c.Request().Context())
	if err != nil {
		return err
	}

	if users == nil {
		users = []*domain.User{}
	}
	return c.JSON(http.StatusOK, users)
}

// UpdateUsername renames the caller. The target comes from the token.
//
// @Summary      Update username
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     AccessToken
// @Param        body  body      updateUsernameRequest  true  "New username"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /update-username [put]
func (h *UserHandler) UpdateUsername(c echo.Context) error {
	userID, _, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req updateUsernameRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	if _, err := h.authService.UpdateUsername(c.Request().Context(), userID, req.NewUsername); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, messageResponse{Message: "Username updated successfully"})
}
