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

type VehicleService interface {
	Create(ctx context.Context, vehicle *models.Vehicle) (*models.Vehicle, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Vehicle, error)
	List(ctx context.Context, limit, offset int) ([]*models.Vehicle, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*models.Vehicle, error)
	Update(ctx context.Context, vehicle *models.Vehicle) (*models.Vehicle, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type vehicleService struct {
	repo repositories.VehicleRepository
}

func NewVehicleService(repo repositories.VehicleRepository) VehicleService {
	return &vehicleService{repo: repo}
}

func validateVehicle(vehicle *models.Vehicle) error {
	vehicle.Make = strings.TrimSpace(vehicle.Make)
	vehicle.Model = strings.TrimSpace(vehicle.Model)
	vehicle.LicensePlate = strings.TrimSpace(vehicle.LicensePlate)
	if vehicle.Make == "" {
		return common.NewValidationError("make", "is required")
	}
	if vehicle.Model == "" {
		return common.NewValidationError("model", "is required")
	}
	if vehicle.LicensePlate == "" {
		return common.NewValidationError("license_plate", "is required")
	}
	if vehicle.Year < 1900 || vehicle.Year > time.Now().Year()+1 {
		return common.NewValidationError("year", "is out of range")
	}
	return nil
}

func (s *vehicleService) Create(ctx context.Context, vehicle *models.Vehicle) (*models.Vehicle, error) {
	if err := validateVehicle(vehicle); err != nil {
		return nil, err
	}
	vehicle.ID = uuid.New()
	if err := s.repo.Create(ctx, vehicle); err != nil {
		return nil, common.MapPostgresError(err, "customer")
	}
	return vehicle, nil
}

func (s *vehicleService) GetByID(ctx context.Context, id uuid.UUID) (*models.Vehicle, error) {
	vehicle, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, common.MapPostgresError(err, "vehicle")
	}
	return vehicle, nil
}

func (s *vehicleService) List(ctx context.Context, limit, offset int) ([]*models.Vehicle, error) {
	limit, offset = common.ValidatePaginationParams(limit, offset)
	return s.repo.List(ctx, limit, offset)
}

func (s *vehicleService) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*models.Vehicle, error) {
	return s.repo.ListByCustomer(ctx, customerID)
}

func (s *vehicleService) Update(ctx context.Context, vehicle *models.Vehicle) (*models.Vehicle, error) {
	if err := validateVehicle(vehicle); err != nil {
		return nil, err
	}
	rows, err := s.repo.Update(ctx, vehicle)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, common.NotFoundf("vehicle")
	}
	return vehicle, nil
}

func (s *vehicleService) Delete(ctx context.Context, id uuid.UUID) error {
	rows, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if rows == 0 {
		return common.NotFoundf("vehicle")
	}
	return nil
}
