package models

import (
	"time"

	"github.com/google/uuid"
)

// Job card lifecycle states. Any state may be set from any other state:
// the lifecycle is a whitelist of valid values, not a guarded transition
// table. See services.JobCardService.UpdateStatus.
const (
	JobCardStatusPending    = "pending"
	JobCardStatusAssigned   = "assigned"
	JobCardStatusInProgress = "in_progress"
	JobCardStatusCompleted  = "completed"
	JobCardStatusCancelled  = "cancelled"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// ValidJobCardStatuses is the whitelist used by status updates.
var ValidJobCardStatuses = map[string]bool{
	JobCardStatusPending:    true,
	JobCardStatusAssigned:   true,
	JobCardStatusInProgress: true,
	JobCardStatusCompleted:  true,
	JobCardStatusCancelled:  true,
}

// ValidPriorities is the whitelist used at job card creation.
var ValidPriorities = map[string]bool{
	PriorityLow:    true,
	PriorityMedium: true,
	PriorityHigh:   true,
}

// JobCard is the record of one repair engagement for one vehicle.
// Invariant: TotalCost == LaborCost + sum of all spare part usage totals
// after any completed write.
type JobCard struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	CustomerID      *uuid.UUID `json:"customer_id" db:"customer_id"`
	VehicleID       uuid.UUID  `json:"vehicle_id" db:"vehicle_id"`
	BookingID       *uuid.UUID `json:"booking_id" db:"booking_id"`
	MechanicID      *uuid.UUID `json:"mechanic_id" db:"mechanic_id"`
	Status          string     `json:"status" db:"status"`
	Priority        string     `json:"priority" db:"priority"`
	Notes           *string    `json:"notes" db:"notes"`
	ProgressNotes   *string    `json:"progress_notes" db:"progress_notes"`
	PercentComplete int        `json:"percent_complete" db:"percent_complete"`
	EstimatedHours  *float64   `json:"estimated_hours" db:"estimated_hours"`
	LaborCost       float64    `json:"labor_cost" db:"labor_cost"`
	TotalCost       float64    `json:"total_cost" db:"total_cost"`
	StartedAt       *time.Time `json:"started_at" db:"started_at"`
	CompletedAt     *time.Time `json:"completed_at" db:"completed_at"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}

// JobCardTask is a billable labor line item. Immutable once created except
// through deletion of the parent job card.
type JobCardTask struct {
	ID        uuid.UUID `json:"id" db:"id"`
	JobCardID uuid.UUID `json:"jobcard_id" db:"jobcard_id"`
	TaskName  string    `json:"task_name" db:"task_name"`
	TaskCost  float64   `json:"task_cost" db:"task_cost"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// SparePartUsage is a billable parts-consumption line item. UnitPrice is a
// snapshot of the part's price at time of use; creating a usage row is
// always paired with the matching stock decrement in the same transaction.
type SparePartUsage struct {
	ID         uuid.UUID `json:"id" db:"id"`
	JobCardID  uuid.UUID `json:"jobcard_id" db:"jobcard_id"`
	PartID     uuid.UUID `json:"part_id" db:"part_id"`
	Quantity   int       `json:"quantity" db:"quantity"`
	UnitPrice  float64   `json:"unit_price" db:"unit_price"`
	TotalPrice float64   `json:"total_price" db:"total_price"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
