package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	InvoiceStatusUnpaid    = "unpaid"
	InvoiceStatusPaid      = "paid"
	InvoiceStatusOverdue   = "overdue"
	InvoiceStatusCancelled = "cancelled"
)

// Invoice is the billing artifact produced when a job card completes.
// GrandTotal = PartsTotal + LaborTotal at creation time.
type Invoice struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	JobCardID  uuid.UUID  `json:"jobcard_id" db:"jobcard_id"`
	CustomerID *uuid.UUID `json:"customer_id" db:"customer_id"`
	PartsTotal float64    `json:"parts_total" db:"parts_total"`
	LaborTotal float64    `json:"labor_total" db:"labor_total"`
	GrandTotal float64    `json:"grand_total" db:"grand_total"`
	Status     string     `json:"status" db:"status"`
	PaidAt     *time.Time `json:"paid_at" db:"paid_at"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" db:"updated_at"`
}
