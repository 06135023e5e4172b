package handlers

import (
	"net/http"

	"garagehub/internal/common"
	"garagehub/internal/models"
	"garagehub/internal/repositories"

	"github.com/labstack/echo/v4"
)

type UserHandler struct {
	userRepo repositories.UserRepository
}

func NewUserHandler(userRepo repositories.UserRepository) *UserHandler {
	return &UserHandler{userRepo: userRepo}
}

// ListByRole returns users of a given role, e.g. the mechanics available
// for assignment. Admin only.
func (h *UserHandler) ListByRole(c echo.Context) error {
	role := c.QueryParam("role")
	switch role {
	case models.RoleAdmin, models.RoleMechanic, models.RoleCustomer:
	default:
		return common.SendValidationError(c, "role", "must be one of admin, mechanic, customer")
	}
	limit, offset := paginationParams(c)
	users, err := h.userRepo.ListByRole(c.Request().Context(), role, limit, offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, users)
}
