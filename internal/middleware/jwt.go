package middleware

import (
	"garagehub/internal/common"
	"garagehub/internal/models"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JWT returns the echo-jwt middleware configured for HS256 tokens.
func JWT(secret string) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey:    []byte(secret),
		SigningMethod: "HS256",
	})
}

// ExtractPrincipal turns the validated token claims into a
// models.Principal and stores it on the request context for the services.
// Must run after JWT.
func ExtractPrincipal() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := c.Get("user").(*jwt.Token)
			if !ok {
				return common.SendUnauthorizedError(c)
			}
			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				return common.SendUnauthorizedError(c)
			}

			sub, _ := claims["sub"].(string)
			id, err := uuid.Parse(sub)
			if err != nil {
				return common.SendUnauthorizedError(c)
			}
			role, _ := claims["role"].(string)
			if role == "" {
				return common.SendUnauthorizedError(c)
			}

			p := models.Principal{ID: id, Role: role}
			ctx := common.WithPrincipal(c.Request().Context(), p)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}
