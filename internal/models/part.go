package models

import (
	"time"

	"github.com/google/uuid"
)

// PartSearchFilter holds search and filter criteria for part queries
type PartSearchFilter struct {
	Query        string   `json:"query,omitempty"`         // Full-text search across name, part_number
	MinQuantity  *int     `json:"min_quantity,omitempty"`  // Minimum stock quantity
	MaxQuantity  *int     `json:"max_quantity,omitempty"`  // Maximum stock quantity
	MinPrice     *float64 `json:"min_price,omitempty"`     // Minimum unit price
	MaxPrice     *float64 `json:"max_price,omitempty"`     // Maximum unit price
	BelowReorder bool     `json:"below_reorder,omitempty"` // Only parts at/below reorder level
	SortBy       string   `json:"sort_by,omitempty"`       // Sort field: name, quantity, price
	SortOrder    string   `json:"sort_order,omitempty"`    // Sort order: asc, desc
	Limit        int      `json:"limit,omitempty"`         // Page size (default: 50)
	Offset       int      `json:"offset,omitempty"`        // Page offset
}

type Part struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	PartNumber   string    `json:"part_number" db:"part_number"`
	Price        float64   `json:"price" db:"price"`
	Quantity     int       `json:"quantity" db:"quantity"`
	ReorderLevel int       `json:"reorder_level" db:"reorder_level"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}
