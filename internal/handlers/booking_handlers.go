package handlers

import (
	"net/http"
	"time"

	"garagehub/internal/common"
	"garagehub/internal/models"
	"garagehub/internal/services"

	"github.com/labstack/echo/v4"
)

type BookingHandler struct {
	bookingService services.BookingService
}

func NewBookingHandler(bookingService services.BookingService) *BookingHandler {
	return &BookingHandler{bookingService: bookingService}
}

type createBookingRequest struct {
	CustomerID  string    `json:"customer_id"`
	VehicleID   string    `json:"vehicle_id"`
	ServiceType string    `json:"service_type"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Notes       *string   `json:"notes"`
}

func (h *BookingHandler) Create(c echo.Context) error {
	var req createBookingRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "invalid request body")
	}
	customerID, err := common.ValidateUUID(req.CustomerID, "customer_id")
	if err != nil {
		return respondServiceError(c, err)
	}
	vehicleID, err := common.ValidateUUID(req.VehicleID, "vehicle_id")
	if err != nil {
		return respondServiceError(c, err)
	}
	booking, err := h.bookingService.Create(c.Request().Context(), &models.Booking{
		CustomerID:  customerID,
		VehicleID:   vehicleID,
		ServiceType: req.ServiceType,
		ScheduledAt: req.ScheduledAt,
		Notes:       req.Notes,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, booking)
}

func (h *BookingHandler) Get(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return respondServiceError(c, err)
	}
	booking, err := h.bookingService.GetByID(c.Request().Context(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, booking)
}

func (h *BookingHandler) List(c echo.Context) error {
	limit, offset := paginationParams(c)

	if raw := c.QueryParam("customer_id"); raw != "" {
		customerID, err := common.ValidateUUID(raw, "customer_id")
		if err != nil {
			return respondServiceError(c, err)
		}
		bookings, err := h.bookingService.ListByCustomer(c.Request().Context(), customerID, limit, offset)
		if err != nil {
			return respondServiceError(c, err)
		}
		return c.JSON(http.StatusOK, bookings)
	}

	bookings, err := h.bookingService.List(c.Request().Context(), limit, offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, bookings)
}

type bookingStatusRequest struct {
	Status string `json:"status"`
}

func (h *BookingHandler) UpdateStatus(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return respondServiceError(c, err)
	}
	var req bookingStatusRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "invalid request body")
	}
	if err := h.bookingService.UpdateStatus(c.Request().Context(), id, req.Status); err != nil {
		return respondServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *BookingHandler) Delete(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return respondServiceError(c, err)
	}
	if err := h.bookingService.Delete(c.Request().Context(), id); err != nil {
		return respondServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
