package handlers

import (
	"net/http"

	"garagehub/internal/common"
	"garagehub/internal/models"
	"garagehub/internal/services"

	"github.com/labstack/echo/v4"
)

type PartHandler struct {
	partService services.PartService
}

func NewPartHandler(partService services.PartService) *PartHandler {
	return &PartHandler{partService: partService}
}

type partRequest struct {
	Name         string  `json:"name"`
	PartNumber   string  `json:"part_number"`
	Price        float64 `json:"price"`
	Quantity     int     `json:"quantity"`
	ReorderLevel int     `json:"reorder_level"`
}

func (h *PartHandler) Create(c echo.Context) error {
	var req partRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "invalid request body")
	}
	part, err := h.partService.Create(c.Request().Context(), &models.Part{
		Name:         req.Name,
		PartNumber:   req.PartNumber,
		Price:        req.Price,
		Quantity:     req.Quantity,
		ReorderLevel: req.ReorderLevel,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, part)
}

func (h *PartHandler) Get(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return respondServiceError(c, err)
	}
	part, err := h.partService.GetByID(c.Request().Context(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, part)
}

func (h *PartHandler) Update(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return respondServiceError(c, err)
	}
	var req partRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "invalid request body")
	}
	part, err := h.partService.Update(c.Request().Context(), &models.Part{
		ID:           id,
		Name:         req.Name,
		PartNumber:   req.PartNumber,
		Price:        req.Price,
		Quantity:     req.Quantity,
		ReorderLevel: req.ReorderLevel,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, part)
}

func (h *PartHandler) Delete(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return respondServiceError(c, err)
	}
	if err := h.partService.Delete(c.Request().Context(), id); err != nil {
		return respondServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *PartHandler) List(c echo.Context) error {
	limit, offset := paginationParams(c)
	parts, err := h.partService.List(c.Request().Context(), limit, offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, parts)
}

func (h *PartHandler) Search(c echo.Context) error {
	limit, offset := paginationParams(c)
	filter := &models.PartSearchFilter{
		Query:        c.QueryParam("q"),
		SortBy:       c.QueryParam("sort_by"),
		SortOrder:    c.QueryParam("sort_order"),
		BelowReorder: c.QueryParam("below_reorder") == "true",
		Limit:        limit,
		Offset:       offset,
	}
	parts, err := h.partService.Search(c.Request().Context(), filter)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, parts)
}

func (h *PartHandler) LowStock(c echo.Context) error {
	parts, err := h.partService.ListBelowReorderLevel(c.Request().Context())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, parts)
}
