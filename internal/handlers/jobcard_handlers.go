package handlers

import (
	"net/http"

	"garagehub/internal/common"
	"garagehub/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type JobCardHandler struct {
	jobcardService services.JobCardService
}

func NewJobCardHandler(jobcardService services.JobCardService) *JobCardHandler {
	return &JobCardHandler{jobcardService: jobcardService}
}

type createJobCardRequest struct {
	CustomerID     *string  `json:"customer_id"`
	VehicleID      string   `json:"vehicle_id"`
	BookingID      *string  `json:"booking_id"`
	Priority       string   `json:"priority"`
	Notes          *string  `json:"notes"`
	EstimatedHours *float64 `json:"estimated_hours"`
}

func parseOptionalUUID(raw *string, fieldName string) (*uuid.UUID, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	id, err := common.ValidateUUID(*raw, fieldName)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func (h *JobCardHandler) Create(c echo.Context) error {
	p, ok := common.GetPrincipalFromContext(c.Request().Context())
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	var req createJobCardRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "invalid request body")
	}

	vehicleID, err := common.ValidateUUID(req.VehicleID, "vehicle_id")
	if err != nil {
		return respondServiceError(c, err)
	}
	customerID, err := parseOptionalUUID(req.CustomerID, "customer_id")
	if err != nil {
		return respondServiceError(c, err)
	}
	bookingID, err := parseOptionalUUID(req.BookingID, "booking_id")
	if err != nil {
		return respondServiceError(c, err)
	}

	jobcard, err := h.jobcardService.Create(c.Request().Context(), p, &services.CreateJobCardInput{
		CustomerID:     customerID,
		VehicleID:      vehicleID,
		BookingID:      bookingID,
		Priority:       req.Priority,
		Notes:          req.Notes,
		EstimatedHours: req.EstimatedHours,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, jobcard)
}

func (h *JobCardHandler) Get(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return respondServiceError(c, err)
	}
	detail, err := h.jobcardService.GetByID(c.Request().Context(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, detail)
}

// List returns all job cards for admins; mechanics only see their own.
func (h *JobCardHandler) List(c echo.Context) error {
	p, ok := common.GetPrincipalFromContext(c.Request().Context())
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	limit, offset := paginationParams(c)

	if p.IsMechanic() {
		jobcards, err := h.jobcardService.ListByMechanic(c.Request().Context(), p.ID, limit, offset)
		if err != nil {
			return respondServiceError(c, err)
		}
		return c.JSON(http.StatusOK, jobcards)
	}

	if status := c.QueryParam("status"); status != "" {
		jobcards, err := h.jobcardService.ListByStatus(c.Request().Context(), status, limit, offset)
		if err != nil {
			return respondServiceError(c, err)
		}
		return c.JSON(http.StatusOK, jobcards)
	}

	jobcards, err := h.jobcardService.List(c.Request().Context(), limit, offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, jobcards)
}

type addTaskRequest struct {
	TaskName string  `json:"task_name"`
	TaskCost float64 `json:"task_cost"`
}

func (h *JobCardHandler) AddTask(c echo.Context) error {
	p, ok := common.GetPrincipalFromContext(c.Request().Context())
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return respondServiceError(c, err)
	}
	var req addTaskRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "invalid request body")
	}
	task, err := h.jobcardService.AddTask(c.Request().Context(), p, id, req.TaskName, req.TaskCost)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, task)
}

type addSparePartRequest struct {
	PartID   string `json:"part_id"`
	Quantity int    `json:"quantity"`
}

func (h *JobCardHandler) AddSparePart(c echo.Context) error {
	p, ok := common.GetPrincipalFromContext(c.Request().Context())
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return respondServiceError(c, err)
	}
	var req addSparePartRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "invalid request body")
	}
	partID, err := common.ValidateUUID(req.PartID, "part_id")
	if err != nil {
		return respondServiceError(c, err)
	}
	usage, err := h.jobcardService.AddSparePart(c.Request().Context(), p, id, partID, req.Quantity)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, usage)
}

type assignMechanicRequest struct {
	MechanicID string `json:"mechanic_id"`
}

func (h *JobCardHandler) AssignMechanic(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return respondServiceError(c, err)
	}
	var req assignMechanicRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "invalid request body")
	}
	mechanicID, err := common.ValidateUUID(req.MechanicID, "mechanic_id")
	if err != nil {
		return respondServiceError(c, err)
	}
	jobcard, err := h.jobcardService.AssignMechanic(c.Request().Context(), id, mechanicID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, jobcard)
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h *JobCardHandler) UpdateStatus(c echo.Context) error {
	p, ok := common.GetPrincipalFromContext(c.Request().Context())
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return respondServiceError(c, err)
	}
	var req updateStatusRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "invalid request body")
	}
	jobcard, err := h.jobcardService.UpdateStatus(c.Request().Context(), p, id, req.Status)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, jobcard)
}

type updateProgressRequest struct {
	PercentComplete int     `json:"percent_complete"`
	ProgressNotes   *string `json:"progress_notes"`
}

func (h *JobCardHandler) UpdateProgress(c echo.Context) error {
	p, ok := common.GetPrincipalFromContext(c.Request().Context())
	if !ok {
		return common.SendUnauthorizedError(c)
	}
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return respondServiceError(c, err)
	}
	var req updateProgressRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "invalid request body")
	}
	jobcard, err := h.jobcardService.UpdateProgress(c.Request().Context(), p, id, req.PercentComplete, req.ProgressNotes)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, jobcard)
}

func (h *JobCardHandler) Delete(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return respondServiceError(c, err)
	}
	if err := h.jobcardService.Delete(c.Request().Context(), id); err != nil {
		return respondServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
