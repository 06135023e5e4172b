package repositories

import (
	"context"
	"time"

	"garagehub/internal/models"

	"github.com/google/uuid"
)

type InvoiceRepository interface {
	Create(ctx context.Context, q Querier, invoice *models.Invoice) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error)
	List(ctx context.Context, limit, offset int) ([]*models.Invoice, error)
	ListByJobCard(ctx context.Context, jobcardID uuid.UUID) ([]*models.Invoice, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]*models.Invoice, error)
	ListByStatus(ctx context.Context, status string, limit, offset int) ([]*models.Invoice, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, paidAt *time.Time) (int64, error)
	MarkOverdueBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type invoiceRepo struct {
	db Querier
}

func NewInvoiceRepo(db Querier) InvoiceRepository {
	return &invoiceRepo{db: db}
}

const invoiceColumns = `id, jobcard_id, customer_id, parts_total, labor_total, grand_total, status, paid_at, created_at, updated_at`

func scanInvoice(row interface{ Scan(dest ...any) error }) (*models.Invoice, error) {
	inv := &models.Invoice{}
	err := row.Scan(&inv.ID, &inv.JobCardID, &inv.CustomerID, &inv.PartsTotal, &inv.LaborTotal, &inv.GrandTotal, &inv.Status, &inv.PaidAt, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return inv, nil
}

func (r *invoiceRepo) Create(ctx context.Context, q Querier, invoice *models.Invoice) error {
	query := `
		INSERT INTO invoices (id, jobcard_id, customer_id, parts_total, labor_total, grand_total, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	`
	_, err := q.Exec(ctx, query, invoice.ID, invoice.JobCardID, invoice.CustomerID, invoice.PartsTotal, invoice.LaborTotal, invoice.GrandTotal, invoice.Status)
	return err
}

func (r *invoiceRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1`
	return scanInvoice(r.db.QueryRow(ctx, query, id))
}

func (r *invoiceRepo) List(ctx context.Context, limit, offset int) ([]*models.Invoice, error) {
	query := `
		SELECT ` + invoiceColumns + `
		FROM invoices
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	return r.queryInvoices(ctx, query, limit, offset)
}

func (r *invoiceRepo) ListByJobCard(ctx context.Context, jobcardID uuid.UUID) ([]*models.Invoice, error) {
	query := `
		SELECT ` + invoiceColumns + `
		FROM invoices
		WHERE jobcard_id = $1
		ORDER BY created_at ASC
	`
	return r.queryInvoices(ctx, query, jobcardID)
}

func (r *invoiceRepo) ListByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]*models.Invoice, error) {
	query := `
		SELECT ` + invoiceColumns + `
		FROM invoices
		WHERE customer_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	return r.queryInvoices(ctx, query, customerID, limit, offset)
}

func (r *invoiceRepo) ListByStatus(ctx context.Context, status string, limit, offset int) ([]*models.Invoice, error) {
	query := `
		SELECT ` + invoiceColumns + `
		FROM invoices
		WHERE status = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	return r.queryInvoices(ctx, query, status, limit, offset)
}

func (r *invoiceRepo) queryInvoices(ctx context.Context, query string, args ...any) ([]*models.Invoice, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invoices []*models.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}

func (r *invoiceRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string, paidAt *time.Time) (int64, error) {
	query := `
		UPDATE invoices
		SET status = $1, paid_at = COALESCE($2, paid_at), updated_at = NOW()
		WHERE id = $3
	`
	tag, err := r.db.Exec(ctx, query, status, paidAt, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// MarkOverdueBefore flips unpaid invoices created before the cutoff to
// overdue in a single statement. Used by the background sweep.
func (r *invoiceRepo) MarkOverdueBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		UPDATE invoices
		SET status = $1, updated_at = NOW()
		WHERE status = $2 AND created_at < $3
	`
	tag, err := r.db.Exec(ctx, query, models.InvoiceStatusOverdue, models.InvoiceStatusUnpaid, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
