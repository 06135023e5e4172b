package middleware

import (
	"garagehub/internal/common"

	"github.com/labstack/echo/v4"
)

// RequireRole rejects requests whose authenticated principal does not hold
// one of the given roles. Must run after ExtractPrincipal.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, ok := common.GetPrincipalFromContext(c.Request().Context())
			if !ok {
				return common.SendUnauthorizedError(c)
			}
			if !allowed[p.Role] {
				return common.SendForbiddenError(c)
			}
			return next(c)
		}
	}
}
