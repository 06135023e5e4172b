package repositories

import (
	"context"

	"garagehub/internal/models"

	"github.com/google/uuid"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, q Querier, id uuid.UUID) (*models.Booking, error)
	List(ctx context.Context, limit, offset int) ([]*models.Booking, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]*models.Booking, error)
	UpdateStatus(ctx context.Context, q Querier, id uuid.UUID, status string) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
}

type bookingRepo struct {
	db Querier
}

func NewBookingRepo(db Querier) BookingRepository {
	return &bookingRepo{db: db}
}

const bookingColumns = `id, customer_id, vehicle_id, service_type, scheduled_at, status, notes, created_at, updated_at`

func scanBooking(row interface{ Scan(dest ...any) error }) (*models.Booking, error) {
	b := &models.Booking{}
	err := row.Scan(&b.ID, &b.CustomerID, &b.VehicleID, &b.ServiceType, &b.ScheduledAt, &b.Status, &b.Notes, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *bookingRepo) Create(ctx context.Context, booking *models.Booking) error {
	query := `
		INSERT INTO bookings (id, customer_id, vehicle_id, service_type, scheduled_at, status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, booking.ID, booking.CustomerID, booking.VehicleID, booking.ServiceType, booking.ScheduledAt, booking.Status, booking.Notes)
	return err
}

func (r *bookingRepo) GetByID(ctx context.Context, q Querier, id uuid.UUID) (*models.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	return scanBooking(q.QueryRow(ctx, query, id))
}

func (r *bookingRepo) List(ctx context.Context, limit, offset int) ([]*models.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		ORDER BY scheduled_at DESC
		LIMIT $1 OFFSET $2
	`
	return r.queryBookings(ctx, query, limit, offset)
}

func (r *bookingRepo) ListByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]*models.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE customer_id = $1
		ORDER BY scheduled_at DESC
		LIMIT $2 OFFSET $3
	`
	return r.queryBookings(ctx, query, customerID, limit, offset)
}

func (r *bookingRepo) queryBookings(ctx context.Context, query string, args ...any) ([]*models.Booking, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []*models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

func (r *bookingRepo) UpdateStatus(ctx context.Context, q Querier, id uuid.UUID, status string) (int64, error) {
	query := `UPDATE bookings SET status = $1, updated_at = NOW() WHERE id = $2`
	tag, err := q.Exec(ctx, query, status, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *bookingRepo) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	query := `DELETE FROM bookings WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
