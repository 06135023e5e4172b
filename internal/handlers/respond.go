package handlers

import (
	"errors"
	"strconv"

	"garagehub/internal/common"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"
)

// respondServiceError translates the service error taxonomy into HTTP
// responses. Anything unrecognized is logged and reported as a server
// error without leaking detail.
func respondServiceError(c echo.Context, err error) error {
	if ve, ok := common.IsValidationError(err); ok {
		return common.SendValidationError(c, ve.Field, ve.Reason)
	}
	if errors.Is(err, common.ErrNotFound) {
		return common.SendNotFoundError(c, "resource")
	}
	if errors.Is(err, common.ErrForbidden) {
		return common.SendForbiddenError(c)
	}
	if errors.Is(err, common.ErrInsufficientStock) {
		return common.SendConflictError(c, "insufficient stock")
	}
	log.WithError(err).Error("request failed")
	return common.SendServerError(c, "internal error")
}

func paginationParams(c echo.Context) (int, int) {
	limit := intQueryParam(c, "limit", 10)
	offset := intQueryParam(c, "offset", 0)
	return common.ValidatePaginationParams(limit, offset)
}

func intQueryParam(c echo.Context, name string, fallback int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
