package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"garagehub/internal/models"

	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"
)

const (
	invoiceBucket      = "invoices"
	presignedURLExpiry = 15 * time.Minute
)

// InvoiceDocumentService renders invoices to PDF, stores them in object
// storage, and hands out short-lived download links.
type InvoiceDocumentService interface {
	GenerateAndStore(ctx context.Context, invoice *models.Invoice, detail *JobCardDetail) (string, error)
}

type invoiceDocumentService struct {
	storage MinioService
}

func NewInvoiceDocumentService(storage MinioService) InvoiceDocumentService {
	return &invoiceDocumentService{storage: storage}
}

func invoiceObjectName(invoiceID uuid.UUID) string {
	return fmt.Sprintf("invoice-%s.pdf", invoiceID)
}

func (s *invoiceDocumentService) GenerateAndStore(ctx context.Context, invoice *models.Invoice, detail *JobCardDetail) (string, error) {
	pdfBytes, err := renderInvoicePDF(invoice, detail)
	if err != nil {
		return "", err
	}

	if err := s.storage.EnsureBucketExists(ctx, invoiceBucket); err != nil {
		return "", err
	}

	objectName := invoiceObjectName(invoice.ID)
	reader := bytes.NewReader(pdfBytes)
	if err := s.storage.UploadDocument(ctx, invoiceBucket, objectName, reader, int64(len(pdfBytes))); err != nil {
		return "", err
	}

	return s.storage.GetPresignedURL(invoiceBucket, objectName, presignedURLExpiry)
}

func renderInvoicePDF(invoice *models.Invoice, detail *JobCardDetail) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(0, 12, "Service Invoice")
	pdf.Ln(14)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Invoice ID: %s", invoice.ID))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Job Card: %s", invoice.JobCardID))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Date: %s", invoice.CreatedAt.Format("02 Jan 2006")))
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Status: %s", invoice.Status))
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(0, 8, "Labor")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 10)
	for _, task := range detail.Tasks {
		pdf.CellFormat(130, 6, task.TaskName, "", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, fmt.Sprintf("%.2f", task.TaskCost), "", 1, "R", false, 0, "")
	}
	if len(detail.Tasks) == 0 {
		pdf.Cell(0, 6, "No labor items")
		pdf.Ln(6)
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(0, 8, "Parts")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 10)
	for _, usage := range detail.SpareParts {
		line := fmt.Sprintf("%s  x%d @ %.2f", usage.PartID, usage.Quantity, usage.UnitPrice)
		pdf.CellFormat(130, 6, line, "", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, fmt.Sprintf("%.2f", usage.TotalPrice), "", 1, "R", false, 0, "")
	}
	if len(detail.SpareParts) == 0 {
		pdf.Cell(0, 6, "No parts used")
		pdf.Ln(6)
	}
	pdf.Ln(6)

	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(130, 7, "Parts Total", "T", 0, "L", false, 0, "")
	pdf.CellFormat(40, 7, fmt.Sprintf("%.2f", invoice.PartsTotal), "T", 1, "R", false, 0, "")
	pdf.CellFormat(130, 7, "Labor Total", "", 0, "L", false, 0, "")
	pdf.CellFormat(40, 7, fmt.Sprintf("%.2f", invoice.LaborTotal), "", 1, "R", false, 0, "")
	pdf.SetFont("Arial", "B", 13)
	pdf.CellFormat(130, 9, "Grand Total", "T", 0, "L", false, 0, "")
	pdf.CellFormat(40, 9, fmt.Sprintf("%.2f", invoice.GrandTotal), "T", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
