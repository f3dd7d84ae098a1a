package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/eduventure/auth-service/internal/core/domain"
)

// RBAC enforces role-based access control on the role claim placed in the
// context by Refresh. It must run after Refresh.
func RBAC(allowedRoles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(CtxRole).(string)
			if _, ok := allowed[role]; !ok {
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}
