package services

import (
	"context"
	"strings"
	"time"

	"garagehub/internal/common"
	"garagehub/internal/models"
	"garagehub/internal/repositories"

	"github.com/google/uuid"
)

var validBookingStatuses = map[string]bool{
	models.BookingStatusPending:   true,
	models.BookingStatusConfirmed: true,
	models.BookingStatusCompleted: true,
	models.BookingStatusCancelled: true,
}

type BookingService interface {
	Create(ctx context.Context, booking *models.Booking) (*models.Booking, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	List(ctx context.Context, limit, offset int) ([]*models.Booking, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]*models.Booking, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type bookingService struct {
	db          repositories.DB
	repo        repositories.BookingRepository
	vehicleRepo repositories.VehicleRepository
	userRepo    repositories.UserRepository
}

func NewBookingService(db repositories.DB, repo repositories.BookingRepository, vehicleRepo repositories.VehicleRepository, userRepo repositories.UserRepository) BookingService {
	return &bookingService{db: db, repo: repo, vehicleRepo: vehicleRepo, userRepo: userRepo}
}

func (s *bookingService) Create(ctx context.Context, booking *models.Booking) (*models.Booking, error) {
	booking.ServiceType = strings.TrimSpace(booking.ServiceType)
	if booking.ServiceType == "" {
		return nil, common.NewValidationError("service_type", "is required")
	}
	if booking.ScheduledAt.Before(time.Now()) {
		return nil, common.NewValidationError("scheduled_at", "must be in the future")
	}
	if _, err := s.vehicleRepo.GetByID(ctx, booking.VehicleID); err != nil {
		return nil, common.MapPostgresError(err, "vehicle")
	}
	if _, err := s.userRepo.GetByID(ctx, s.db, booking.CustomerID); err != nil {
		return nil, common.MapPostgresError(err, "customer")
	}

	booking.ID = uuid.New()
	booking.Status = models.BookingStatusPending
	if err := s.repo.Create(ctx, booking); err != nil {
		return nil, err
	}
	return booking, nil
}

func (s *bookingService) GetByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	booking, err := s.repo.GetByID(ctx, s.db, id)
	if err != nil {
		return nil, common.MapPostgresError(err, "booking")
	}
	return booking, nil
}

func (s *bookingService) List(ctx context.Context, limit, offset int) ([]*models.Booking, error) {
	limit, offset = common.ValidatePaginationParams(limit, offset)
	return s.repo.List(ctx, limit, offset)
}

func (s *bookingService) ListByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]*models.Booking, error) {
	limit, offset = common.ValidatePaginationParams(limit, offset)
	return s.repo.ListByCustomer(ctx, customerID, limit, offset)
}

func (s *bookingService) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	if !validBookingStatuses[status] {
		return common.NewValidationError("status", "unknown status "+status)
	}
	rows, err := s.repo.UpdateStatus(ctx, s.db, id, status)
	if err != nil {
		return err
	}
	if rows == 0 {
		return common.NotFoundf("booking")
	}
	return nil
}

func (s *bookingService) Delete(ctx context.Context, id uuid.UUID) error {
	rows, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if rows == 0 {
		return common.NotFoundf("booking")
	}
	return nil
}
