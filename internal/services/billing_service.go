package services

import (
	"context"
	"time"

	"garagehub/internal/common"
	"garagehub/internal/models"
	"garagehub/internal/repositories"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// BillingService turns completed job cards into invoices and manages the
// invoice lifecycle afterwards.
type BillingService interface {
	// GenerateForJobCard creates an unpaid invoice from the job card's
	// current cost lines and, when the card came from a booking, marks the
	// booking completed. Invoice and booking sync commit atomically.
	GenerateForJobCard(ctx context.Context, jobcard *models.JobCard) (*models.Invoice, error)

	GetInvoice(ctx context.Context, id uuid.UUID) (*models.Invoice, error)
	ListInvoices(ctx context.Context, limit, offset int) ([]*models.Invoice, error)
	ListInvoicesByJobCard(ctx context.Context, jobcardID uuid.UUID) ([]*models.Invoice, error)
	ListInvoicesByStatus(ctx context.Context, status string, limit, offset int) ([]*models.Invoice, error)
	ListInvoicesByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]*models.Invoice, error)
	UpdateInvoiceStatus(ctx context.Context, id uuid.UUID, status string) (*models.Invoice, error)
	MarkOverdueInvoices(ctx context.Context, olderThan time.Duration) (int64, error)
}

type billingService struct {
	db          repositories.DB
	invoiceRepo repositories.InvoiceRepository
	jobcardRepo repositories.JobCardRepository
	bookingRepo repositories.BookingRepository
}

func NewBillingService(db repositories.DB, invoiceRepo repositories.InvoiceRepository, jobcardRepo repositories.JobCardRepository, bookingRepo repositories.BookingRepository) BillingService {
	return &billingService{
		db:          db,
		invoiceRepo: invoiceRepo,
		jobcardRepo: jobcardRepo,
		bookingRepo: bookingRepo,
	}
}

// invoiceTransitions is the guarded lifecycle for invoices. Unlike job
// cards, invoice status changes only move forward: paid and cancelled are
// terminal.
var invoiceTransitions = map[string]map[string]bool{
	models.InvoiceStatusUnpaid: {
		models.InvoiceStatusPaid:      true,
		models.InvoiceStatusOverdue:   true,
		models.InvoiceStatusCancelled: true,
	},
	models.InvoiceStatusOverdue: {
		models.InvoiceStatusPaid:      true,
		models.InvoiceStatusCancelled: true,
	},
}

func (s *billingService) GenerateForJobCard(ctx context.Context, jobcard *models.JobCard) (*models.Invoice, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	partsTotal, err := s.jobcardRepo.SumSparePartTotals(ctx, tx, jobcard.ID)
	if err != nil {
		return nil, err
	}

	invoice := &models.Invoice{
		ID:         uuid.New(),
		JobCardID:  jobcard.ID,
		CustomerID: jobcard.CustomerID,
		PartsTotal: partsTotal,
		LaborTotal: jobcard.LaborCost,
		GrandTotal: partsTotal + jobcard.LaborCost,
		Status:     models.InvoiceStatusUnpaid,
	}
	if err := s.invoiceRepo.Create(ctx, tx, invoice); err != nil {
		return nil, err
	}

	if jobcard.BookingID != nil {
		rows, err := s.bookingRepo.UpdateStatus(ctx, tx, *jobcard.BookingID, models.BookingStatusCompleted)
		if err != nil {
			return nil, err
		}
		if rows == 0 {
			log.WithField("booking_id", *jobcard.BookingID).Warn("job card references a booking that no longer exists, skipping sync")
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return invoice, nil
}

func (s *billingService) GetInvoice(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, common.MapPostgresError(err, "invoice")
	}
	return invoice, nil
}

func (s *billingService) ListInvoices(ctx context.Context, limit, offset int) ([]*models.Invoice, error) {
	limit, offset = common.ValidatePaginationParams(limit, offset)
	return s.invoiceRepo.List(ctx, limit, offset)
}

func (s *billingService) ListInvoicesByJobCard(ctx context.Context, jobcardID uuid.UUID) ([]*models.Invoice, error) {
	return s.invoiceRepo.ListByJobCard(ctx, jobcardID)
}

func (s *billingService) ListInvoicesByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]*models.Invoice, error) {
	limit, offset = common.ValidatePaginationParams(limit, offset)
	return s.invoiceRepo.ListByCustomer(ctx, customerID, limit, offset)
}

func (s *billingService) ListInvoicesByStatus(ctx context.Context, status string, limit, offset int) ([]*models.Invoice, error) {
	valid := map[string]bool{
		models.InvoiceStatusUnpaid:    true,
		models.InvoiceStatusPaid:      true,
		models.InvoiceStatusOverdue:   true,
		models.InvoiceStatusCancelled: true,
	}
	if !valid[status] {
		return nil, common.NewValidationError("status", "unknown status "+status)
	}
	limit, offset = common.ValidatePaginationParams(limit, offset)
	return s.invoiceRepo.ListByStatus(ctx, status, limit, offset)
}

func (s *billingService) UpdateInvoiceStatus(ctx context.Context, id uuid.UUID, status string) (*models.Invoice, error) {
	invoice, err := s.invoiceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, common.MapPostgresError(err, "invoice")
	}

	if !invoiceTransitions[invoice.Status][status] {
		return nil, common.NewValidationError("status", "cannot move invoice from "+invoice.Status+" to "+status)
	}

	var paidAt *time.Time
	if status == models.InvoiceStatusPaid {
		now := time.Now()
		paidAt = &now
	}
	rows, err := s.invoiceRepo.UpdateStatus(ctx, id, status, paidAt)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, common.NotFoundf("invoice")
	}

	invoice.Status = status
	invoice.PaidAt = paidAt
	return invoice, nil
}

// MarkOverdueInvoices is the background sweep: any invoice still unpaid
// after the grace period becomes overdue.
func (s *billingService) MarkOverdueInvoices(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)
	return s.invoiceRepo.MarkOverdueBefore(ctx, cutoff)
}
