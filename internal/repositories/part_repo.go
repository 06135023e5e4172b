package repositories

import (
	"context"
	"fmt"
	"strings"

	"garagehub/internal/models"

	"github.com/google/uuid"
)

type PartRepository interface {
	Create(ctx context.Context, part *models.Part) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Part, error)
	Update(ctx context.Context, part *models.Part) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*models.Part, error)
	Search(ctx context.Context, filter *models.PartSearchFilter) ([]*models.Part, error)
	ListBelowReorderLevel(ctx context.Context) ([]*models.Part, error)

	// GetByIDForUpdate reads a part inside the caller's transaction with a
	// row-level lock, so a concurrent reservation against the same part
	// blocks until this transaction finishes.
	GetByIDForUpdate(ctx context.Context, q Querier, id uuid.UUID) (*models.Part, error)
	// DecrementStock subtracts quantity inside the caller's transaction.
	// The statement itself refuses to go below zero; the returned row count
	// is 0 when stock was insufficient.
	DecrementStock(ctx context.Context, q Querier, id uuid.UUID, quantity int) (int64, error)
}

type partRepo struct {
	db Querier
}

func NewPartRepo(db Querier) PartRepository {
	return &partRepo{db: db}
}

const partColumns = `id, name, part_number, price, quantity, reorder_level, created_at, updated_at`

func scanPart(row interface{ Scan(dest ...any) error }) (*models.Part, error) {
	part := &models.Part{}
	err := row.Scan(&part.ID, &part.Name, &part.PartNumber, &part.Price, &part.Quantity, &part.ReorderLevel, &part.CreatedAt, &part.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return part, nil
}

func (r *partRepo) Create(ctx context.Context, part *models.Part) error {
	query := `
		INSERT INTO parts (id, name, part_number, price, quantity, reorder_level, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, part.ID, part.Name, part.PartNumber, part.Price, part.Quantity, part.ReorderLevel)
	return err
}

func (r *partRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Part, error) {
	query := `SELECT ` + partColumns + ` FROM parts WHERE id = $1`
	return scanPart(r.db.QueryRow(ctx, query, id))
}

func (r *partRepo) GetByIDForUpdate(ctx context.Context, q Querier, id uuid.UUID) (*models.Part, error) {
	query := `SELECT ` + partColumns + ` FROM parts WHERE id = $1 FOR UPDATE`
	return scanPart(q.QueryRow(ctx, query, id))
}

func (r *partRepo) Update(ctx context.Context, part *models.Part) error {
	query := `
		UPDATE parts
		SET name = $1, part_number = $2, price = $3, quantity = $4, reorder_level = $5, updated_at = NOW()
		WHERE id = $6
	`
	_, err := r.db.Exec(ctx, query, part.Name, part.PartNumber, part.Price, part.Quantity, part.ReorderLevel, part.ID)
	return err
}

func (r *partRepo) DecrementStock(ctx context.Context, q Querier, id uuid.UUID, quantity int) (int64, error) {
	query := `
		UPDATE parts
		SET quantity = quantity - $2, updated_at = NOW()
		WHERE id = $1 AND quantity >= $2
	`
	tag, err := q.Exec(ctx, query, id, quantity)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *partRepo) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM parts WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

func (r *partRepo) List(ctx context.Context, limit, offset int) ([]*models.Part, error) {
	query := `
		SELECT ` + partColumns + `
		FROM parts
		ORDER BY name ASC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var parts []*models.Part
	for rows.Next() {
		part, err := scanPart(rows)
		if err != nil {
			return nil, err
		}
		parts = append(parts, part)
	}
	return parts, rows.Err()
}

func (r *partRepo) ListBelowReorderLevel(ctx context.Context) ([]*models.Part, error) {
	query := `
		SELECT ` + partColumns + `
		FROM parts
		WHERE quantity <= reorder_level
		ORDER BY quantity ASC
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var parts []*models.Part
	for rows.Next() {
		part, err := scanPart(rows)
		if err != nil {
			return nil, err
		}
		parts = append(parts, part)
	}
	return parts, rows.Err()
}

// Search performs filtered part lookup with dynamic conditions
func (r *partRepo) Search(ctx context.Context, filter *models.PartSearchFilter) ([]*models.Part, error) {
	if filter.Limit == 0 {
		filter.Limit = 50
	}

	queryBase := `SELECT ` + partColumns + ` FROM parts WHERE 1=1`
	args := []interface{}{}
	conditionCount := 0

	if filter.Query != "" {
		conditionCount++
		queryBase += fmt.Sprintf(` AND (name ILIKE $%d OR part_number ILIKE $%d)`, conditionCount, conditionCount)
		args = append(args, "%"+filter.Query+"%")
	}
	if filter.MinQuantity != nil {
		conditionCount++
		queryBase += fmt.Sprintf(` AND quantity >= $%d`, conditionCount)
		args = append(args, *filter.MinQuantity)
	}
	if filter.MaxQuantity != nil {
		conditionCount++
		queryBase += fmt.Sprintf(` AND quantity <= $%d`, conditionCount)
		args = append(args, *filter.MaxQuantity)
	}
	if filter.MinPrice != nil {
		conditionCount++
		queryBase += fmt.Sprintf(` AND price >= $%d`, conditionCount)
		args = append(args, *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		conditionCount++
		queryBase += fmt.Sprintf(` AND price <= $%d`, conditionCount)
		args = append(args, *filter.MaxPrice)
	}
	if filter.BelowReorder {
		queryBase += ` AND quantity <= reorder_level`
	}

	validSortFields := map[string]bool{"name": true, "quantity": true, "price": true}
	sortField := "name"
	if validSortFields[filter.SortBy] {
		sortField = filter.SortBy
	}
	sortOrder := "ASC"
	if strings.ToLower(filter.SortOrder) == "desc" {
		sortOrder = "DESC"
	}
	queryBase += fmt.Sprintf(` ORDER BY %s %s`, sortField, sortOrder)

	conditionCount++
	queryBase += fmt.Sprintf(` LIMIT $%d`, conditionCount)
	args = append(args, filter.Limit)
	if filter.Offset > 0 {
		conditionCount++
		queryBase += fmt.Sprintf(` OFFSET $%d`, conditionCount)
		args = append(args, filter.Offset)
	}

	rows, err := r.db.Query(ctx, queryBase, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var parts []*models.Part
	for rows.Next() {
		part, err := scanPart(rows)
		if err != nil {
			return nil, err
		}
		parts = append(parts, part)
	}
	return parts, rows.Err()
}
