package handlers

import (
	"net/http"

	"garagehub/internal/common"
	"garagehub/internal/services"

	"github.com/labstack/echo/v4"
)

type InvoiceHandler struct {
	billingService  services.BillingService
	jobcardService  services.JobCardService
	documentService services.InvoiceDocumentService
}

func NewInvoiceHandler(billingService services.BillingService, jobcardService services.JobCardService, documentService services.InvoiceDocumentService) *InvoiceHandler {
	return &InvoiceHandler{
		billingService:  billingService,
		jobcardService:  jobcardService,
		documentService: documentService,
	}
}

func (h *InvoiceHandler) List(c echo.Context) error {
	limit, offset := paginationParams(c)

	if raw := c.QueryParam("customer_id"); raw != "" {
		customerID, err := common.ValidateUUID(raw, "customer_id")
		if err != nil {
			return respondServiceError(c, err)
		}
		invoices, err := h.billingService.ListInvoicesByCustomer(c.Request().Context(), customerID, limit, offset)
		if err != nil {
			return respondServiceError(c, err)
		}
		return c.JSON(http.StatusOK, invoices)
	}

	if status := c.QueryParam("status"); status != "" {
		invoices, err := h.billingService.ListInvoicesByStatus(c.Request().Context(), status, limit, offset)
		if err != nil {
			return respondServiceError(c, err)
		}
		return c.JSON(http.StatusOK, invoices)
	}

	invoices, err := h.billingService.ListInvoices(c.Request().Context(), limit, offset)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, invoices)
}

func (h *InvoiceHandler) Get(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return respondServiceError(c, err)
	}
	invoice, err := h.billingService.GetInvoice(c.Request().Context(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, invoice)
}

func (h *InvoiceHandler) ListByJobCard(c echo.Context) error {
	jobcardID, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return respondServiceError(c, err)
	}
	invoices, err := h.billingService.ListInvoicesByJobCard(c.Request().Context(), jobcardID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, invoices)
}

type invoiceStatusRequest struct {
	Status string `json:"status"`
}

func (h *InvoiceHandler) UpdateStatus(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return respondServiceError(c, err)
	}
	var req invoiceStatusRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "invalid request body")
	}
	invoice, err := h.billingService.UpdateInvoiceStatus(c.Request().Context(), id, req.Status)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, invoice)
}

// Download renders the invoice to PDF, stores it, and returns a short-lived
// download link.
func (h *InvoiceHandler) Download(c echo.Context) error {
	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return respondServiceError(c, err)
	}
	invoice, err := h.billingService.GetInvoice(c.Request().Context(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	detail, err := h.jobcardService.GetByID(c.Request().Context(), invoice.JobCardID)
	if err != nil {
		return respondServiceError(c, err)
	}
	url, err := h.documentService.GenerateAndStore(c.Request().Context(), invoice, detail)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"url": url})
}
