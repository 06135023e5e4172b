package repositories

import (
	"context"

	"garagehub/internal/models"

	"github.com/google/uuid"
)

type VehicleRepository interface {
	Create(ctx context.Context, vehicle *models.Vehicle) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Vehicle, error)
	List(ctx context.Context, limit, offset int) ([]*models.Vehicle, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*models.Vehicle, error)
	Update(ctx context.Context, vehicle *models.Vehicle) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
}

type vehicleRepo struct {
	db Querier
}

func NewVehicleRepo(db Querier) VehicleRepository {
	return &vehicleRepo{db: db}
}

const vehicleColumns = `id, customer_id, make, model, year, license_plate, created_at, updated_at`

func scanVehicle(row interface{ Scan(dest ...any) error }) (*models.Vehicle, error) {
	v := &models.Vehicle{}
	err := row.Scan(&v.ID, &v.CustomerID, &v.Make, &v.Model, &v.Year, &v.LicensePlate, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (r *vehicleRepo) Create(ctx context.Context, vehicle *models.Vehicle) error {
	query := `
		INSERT INTO vehicles (id, customer_id, make, model, year, license_plate, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, vehicle.ID, vehicle.CustomerID, vehicle.Make, vehicle.Model, vehicle.Year, vehicle.LicensePlate)
	return err
}

func (r *vehicleRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE id = $1`
	return scanVehicle(r.db.QueryRow(ctx, query, id))
}

func (r *vehicleRepo) List(ctx context.Context, limit, offset int) ([]*models.Vehicle, error) {
	query := `
		SELECT ` + vehicleColumns + `
		FROM vehicles
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	return r.queryVehicles(ctx, query, limit, offset)
}

func (r *vehicleRepo) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*models.Vehicle, error) {
	query := `
		SELECT ` + vehicleColumns + `
		FROM vehicles
		WHERE customer_id = $1
		ORDER BY created_at DESC
	`
	return r.queryVehicles(ctx, query, customerID)
}

func (r *vehicleRepo) queryVehicles(ctx context.Context, query string, args ...any) ([]*models.Vehicle, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vehicles []*models.Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, rows.Err()
}

func (r *vehicleRepo) Update(ctx context.Context, vehicle *models.Vehicle) (int64, error) {
	query := `
		UPDATE vehicles
		SET make = $1, model = $2, year = $3, license_plate = $4, updated_at = NOW()
		WHERE id = $5
	`
	tag, err := r.db.Exec(ctx, query, vehicle.Make, vehicle.Model, vehicle.Year, vehicle.LicensePlate, vehicle.ID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *vehicleRepo) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	query := `DELETE FROM vehicles WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
