package models

import (
	"time"

	"github.com/google/uuid"
)

type Vehicle struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	CustomerID   *uuid.UUID `json:"customer_id" db:"customer_id"`
	Make         string     `json:"make" db:"make"`
	Model        string     `json:"model" db:"model"`
	Year         int        `json:"year" db:"year"`
	LicensePlate string     `json:"license_plate" db:"license_plate"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}
