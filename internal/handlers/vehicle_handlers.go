package handlers

import (
	"net/http"

	"garagehub/internal/common"
	"garagehub/internal/models"
	"garagehub/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type VehicleHandler struct {
	vehicleService services.VehicleService
}

func NewVehicleHandler(vehicleService services.VehicleService) *VehicleHandler {
	return &VehicleHandler{vehicleService: vehicleService}
}

type vehicleRequest struct {
	CustomerID   *string `json:"customer_id"`
	Make         string  `json:"make"`
	Model        string  `json:"model"`
	Year         int     `json:"year"`
	LicensePlate string  `json:"license_plate"`
}

func (h *VehicleHandler) Create(c echo.Context) error {
	var req vehicleRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "invalid request body")
	}
	var customerID *uuid.UUID
	if req.CustomerID != nil && *req.CustomerID != "" {
		id, err := common.ValidateUUID(*req.CustomerID, "customer_id")
		if err != nil {
			return respondServiceError(c, err)
		}
		customerID = &id
	}
	vehicle, err := h.vehicleService.Create(c.Request().Context(), &models.Vehicle{
		CustomerID:   customerID,
		Make:         req.Make,
		Model:        req.Model,
		Year:         req.Year,
		LicensePlate: req.LicensePlate,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, vehicle)
}

func (h *VehicleHandler) Get(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return respondServiceError(c, err)
	}
	vehicle, err := h.vehicleService.GetByID(c.Request().Context(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, vehicle)
}

func (h *VehicleHandler) List(c echo.Context) error {
	if raw := c.QueryParam("customer_id"); raw != "" {
		customerID, err := common.ValidateUUID(raw, "customer_id")
		if err != nil {
			return respondServiceError(c, err)
		}
		vehicles, err := h.vehicleService.ListByCustomer(c.Request().Context(), customerID)
		if err != nil {
			return respondServiceError(c, err)
		}
		return c.JSON(http.StatusOK, vehicles)
	}

	limit, offset := paginationParams(c)
	vehicles, err := h.vehicleService.List(c.Request().Context(), limit, offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, vehicles)
}

func (h *VehicleHandler) Update(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return respondServiceError(c, err)
	}
	var req vehicleRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "invalid request body")
	}
	vehicle, err := h.vehicleService.Update(c.Request().Context(), &models.Vehicle{
		ID:           id,
		Make:         req.Make,
		Model:        req.Model,
		Year:         req.Year,
		LicensePlate: req.LicensePlate,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, vehicle)
}

func (h *VehicleHandler) Delete(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return respondServiceError(c, err)
	}
	if err := h.vehicleService.Delete(c.Request().Context(), id); err != nil {
		return respondServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
