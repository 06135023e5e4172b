package services

import (
	"context"
	"strings"
	"time"

	"garagehub/internal/caching"
	"garagehub/internal/common"
	"garagehub/internal/models"
	"garagehub/internal/repositories"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// CreateJobCardInput carries the fields accepted when opening a job card.
// The creating principal is always the assigned mechanic; there is no
// unassigned creation path.
type CreateJobCardInput struct {
	CustomerID     *uuid.UUID
	VehicleID      uuid.UUID
	BookingID      *uuid.UUID
	Priority       string
	Notes          *string
	EstimatedHours *float64
}

// JobCardDetail is a job card with its line items resolved.
type JobCardDetail struct {
	JobCard    *models.JobCard          `json:"jobcard"`
	Tasks      []*models.JobCardTask    `json:"tasks"`
	SpareParts []*models.SparePartUsage `json:"spare_parts"`
}

// JobCardService is the lifecycle engine: it owns every mutation of a job
// card and its line items, runs each one in a transaction, and triggers
// invoice generation when a card completes.
type JobCardService interface {
	Create(ctx context.Context, p models.Principal, input *CreateJobCardInput) (*models.JobCard, error)
	GetByID(ctx context.Context, id uuid.UUID) (*JobCardDetail, error)
	List(ctx context.Context, limit, offset int) ([]*models.JobCard, error)
	ListByMechanic(ctx context.Context, mechanicID uuid.UUID, limit, offset int) ([]*models.JobCard, error)
	ListByStatus(ctx context.Context, status string, limit, offset int) ([]*models.JobCard, error)

	AddTask(ctx context.Context, p models.Principal, jobcardID uuid.UUID, taskName string, taskCost float64) (*models.JobCardTask, error)
	AddSparePart(ctx context.Context, p models.Principal, jobcardID, partID uuid.UUID, quantity int) (*models.SparePartUsage, error)
	AssignMechanic(ctx context.Context, jobcardID, mechanicID uuid.UUID) (*models.JobCard, error)
	UpdateStatus(ctx context.Context, p models.Principal, jobcardID uuid.UUID, status string) (*models.JobCard, error)
	UpdateProgress(ctx context.Context, p models.Principal, jobcardID uuid.UUID, percentComplete int, progressNotes *string) (*models.JobCard, error)
	Delete(ctx context.Context, jobcardID uuid.UUID) error
}

type jobCardService struct {
	db          repositories.DB
	jobcardRepo repositories.JobCardRepository
	partRepo    repositories.PartRepository
	vehicleRepo repositories.VehicleRepository
	bookingRepo repositories.BookingRepository
	userRepo    repositories.UserRepository
	billing     BillingService
	cache       *caching.CacheService
}

func NewJobCardService(
	db repositories.DB,
	jobcardRepo repositories.JobCardRepository,
	partRepo repositories.PartRepository,
	vehicleRepo repositories.VehicleRepository,
	bookingRepo repositories.BookingRepository,
	userRepo repositories.UserRepository,
	billing BillingService,
	cache *caching.CacheService,
) JobCardService {
	return &jobCardService{
		db:          db,
		jobcardRepo: jobcardRepo,
		partRepo:    partRepo,
		vehicleRepo: vehicleRepo,
		bookingRepo: bookingRepo,
		userRepo:    userRepo,
		billing:     billing,
		cache:       cache,
	}
}

// Create opens a job card assigned to the creating principal, already
// in_progress. Validation order: vehicle, customer, booking, estimated
// hours, priority; any failure returns before a write happens.
func (s *jobCardService) Create(ctx context.Context, p models.Principal, input *CreateJobCardInput) (*models.JobCard, error) {
	if input.VehicleID == uuid.Nil {
		return nil, common.NewValidationError("vehicle_id", "is required")
	}
	if _, err := s.vehicleRepo.GetByID(ctx, input.VehicleID); err != nil {
		return nil, common.MapPostgresError(err, "vehicle")
	}

	if input.CustomerID != nil {
		customer, err := s.userRepo.GetByID(ctx, s.db, *input.CustomerID)
		if err != nil {
			return nil, common.MapPostgresError(err, "customer")
		}
		if customer.Role != models.RoleCustomer {
			return nil, common.NewValidationError("customer_id", "user is not a customer")
		}
	}

	if input.BookingID != nil {
		if _, err := s.bookingRepo.GetByID(ctx, s.db, *input.BookingID); err != nil {
			return nil, common.MapPostgresError(err, "booking")
		}
	}

	if input.EstimatedHours != nil && *input.EstimatedHours < 0 {
		return nil, common.NewValidationError("estimated_hours", "cannot be negative")
	}

	priority := input.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !models.ValidPriorities[priority] {
		return nil, common.NewValidationError("priority", "must be one of low, medium, high")
	}

	mechanicID := p.ID
	jobcard := &models.JobCard{
		ID:             uuid.New(),
		CustomerID:     input.CustomerID,
		VehicleID:      input.VehicleID,
		BookingID:      input.BookingID,
		MechanicID:     &mechanicID,
		Status:         models.JobCardStatusInProgress,
		Priority:       priority,
		Notes:          input.Notes,
		EstimatedHours: input.EstimatedHours,
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := s.jobcardRepo.Create(ctx, tx, jobcard); err != nil {
		return nil, common.MapPostgresError(err, "job card reference")
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"jobcard_id": jobcard.ID,
		"vehicle_id": jobcard.VehicleID,
		"status":     jobcard.Status,
	}).Info("job card created")
	return jobcard, nil
}

func (s *jobCardService) GetByID(ctx context.Context, id uuid.UUID) (*JobCardDetail, error) {
	jobcard, err := s.jobcardRepo.GetByID(ctx, s.db, id)
	if err != nil {
		return nil, common.MapPostgresError(err, "job card")
	}
	tasks, err := s.jobcardRepo.ListTasks(ctx, id)
	if err != nil {
		return nil, err
	}
	spareParts, err := s.jobcardRepo.ListSparePartUsages(ctx, id)
	if err != nil {
		return nil, err
	}
	return &JobCardDetail{JobCard: jobcard, Tasks: tasks, SpareParts: spareParts}, nil
}

func (s *jobCardService) List(ctx context.Context, limit, offset int) ([]*models.JobCard, error) {
	limit, offset = common.ValidatePaginationParams(limit, offset)
	return s.jobcardRepo.List(ctx, limit, offset)
}

func (s *jobCardService) ListByMechanic(ctx context.Context, mechanicID uuid.UUID, limit, offset int) ([]*models.JobCard, error) {
	limit, offset = common.ValidatePaginationParams(limit, offset)
	return s.jobcardRepo.ListByMechanic(ctx, mechanicID, limit, offset)
}

func (s *jobCardService) ListByStatus(ctx context.Context, status string, limit, offset int) ([]*models.JobCard, error) {
	if !models.ValidJobCardStatuses[status] {
		return nil, common.NewValidationError("status", "unknown status "+status)
	}
	limit, offset = common.ValidatePaginationParams(limit, offset)
	return s.jobcardRepo.ListByStatus(ctx, status, limit, offset)
}

// AddTask appends a labor line item and folds its cost into both labor_cost
// and total_cost in the same transaction.
func (s *jobCardService) AddTask(ctx context.Context, p models.Principal, jobcardID uuid.UUID, taskName string, taskCost float64) (*models.JobCardTask, error) {
	taskName = strings.TrimSpace(taskName)
	if taskName == "" {
		return nil, common.NewValidationError("task_name", "is required")
	}
	if taskCost < 0 {
		return nil, common.NewValidationError("task_cost", "cannot be negative")
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	jobcard, err := s.jobcardRepo.GetByID(ctx, tx, jobcardID)
	if err != nil {
		return nil, common.MapPostgresError(err, "job card")
	}
	if err := canMutateJobCard(p, jobcard); err != nil {
		return nil, err
	}

	task := &models.JobCardTask{
		ID:        uuid.New(),
		JobCardID: jobcardID,
		TaskName:  taskName,
		TaskCost:  taskCost,
	}
	if err := s.jobcardRepo.InsertTask(ctx, tx, task); err != nil {
		return nil, common.MapPostgresError(err, "job card")
	}
	if err := s.jobcardRepo.IncrementCosts(ctx, tx, jobcardID, taskCost, taskCost); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return task, nil
}

// AddSparePart consumes stock and records the usage atomically: the part
// row is locked, the decrement refuses to oversell, and the usage row plus
// the cost roll-up commit together or not at all.
func (s *jobCardService) AddSparePart(ctx context.Context, p models.Principal, jobcardID, partID uuid.UUID, quantity int) (*models.SparePartUsage, error) {
	if err := common.ValidatePositiveInteger(quantity, "quantity"); err != nil {
		return nil, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	jobcard, err := s.jobcardRepo.GetByID(ctx, tx, jobcardID)
	if err != nil {
		return nil, common.MapPostgresError(err, "job card")
	}
	if err := canMutateJobCard(p, jobcard); err != nil {
		return nil, err
	}

	part, err := s.partRepo.GetByIDForUpdate(ctx, tx, partID)
	if err != nil {
		return nil, common.MapPostgresError(err, "part")
	}

	rows, err := s.partRepo.DecrementStock(ctx, tx, partID, quantity)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, common.ErrInsufficientStock
	}

	usage := &models.SparePartUsage{
		ID:         uuid.New(),
		JobCardID:  jobcardID,
		PartID:     partID,
		Quantity:   quantity,
		UnitPrice:  part.Price,
		TotalPrice: part.Price * float64(quantity),
	}
	if err := s.jobcardRepo.InsertSparePartUsage(ctx, tx, usage); err != nil {
		return nil, common.MapPostgresError(err, "job card")
	}
	if err := s.jobcardRepo.IncrementCosts(ctx, tx, jobcardID, 0, usage.TotalPrice); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.DeletePart(ctx, partID)
		s.cache.InvalidatePartListings(ctx)
	}

	log.WithFields(log.Fields{
		"jobcard_id": jobcardID,
		"part_id":    partID,
		"quantity":   quantity,
	}).Info("spare part consumed")
	return usage, nil
}

// AssignMechanic hands the card to a mechanic, moving it to in_progress and
// stamping started_at. Admin-only, enforced at the route.
func (s *jobCardService) AssignMechanic(ctx context.Context, jobcardID, mechanicID uuid.UUID) (*models.JobCard, error) {
	if err := s.checkMechanic(ctx, mechanicID); err != nil {
		return nil, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	now := time.Now()
	rows, err := s.jobcardRepo.UpdateAssignment(ctx, tx, jobcardID, mechanicID, now)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, common.NotFoundf("job card")
	}

	jobcard, err := s.jobcardRepo.GetByID(ctx, tx, jobcardID)
	if err != nil {
		return nil, common.MapPostgresError(err, "job card")
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return jobcard, nil
}

// UpdateStatus sets any whitelisted status. There is no transition table:
// the card may move from any state to any other, including back out of
// completed. Completion stamps completed_at and triggers invoice
// generation after the status commit; a billing failure is logged but
// never undoes the status change.
func (s *jobCardService) UpdateStatus(ctx context.Context, p models.Principal, jobcardID uuid.UUID, status string) (*models.JobCard, error) {
	if !models.ValidJobCardStatuses[status] {
		return nil, common.NewValidationError("status", "unknown status "+status)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	jobcard, err := s.jobcardRepo.GetByID(ctx, tx, jobcardID)
	if err != nil {
		return nil, common.MapPostgresError(err, "job card")
	}
	if err := canMutateJobCard(p, jobcard); err != nil {
		return nil, err
	}

	now := time.Now()
	var startedAt, completedAt *time.Time
	switch status {
	case models.JobCardStatusInProgress:
		startedAt = &now
	case models.JobCardStatusCompleted:
		completedAt = &now
	}

	if err := s.jobcardRepo.UpdateStatus(ctx, tx, jobcardID, status, startedAt, completedAt); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	jobcard.Status = status
	if startedAt != nil {
		jobcard.StartedAt = startedAt
	}
	if completedAt != nil {
		jobcard.CompletedAt = completedAt
	}

	if status == models.JobCardStatusCompleted {
		invoice, err := s.billing.GenerateForJobCard(ctx, jobcard)
		if err != nil {
			log.WithError(err).WithField("jobcard_id", jobcardID).Error("invoice generation failed after completion")
		} else {
			log.WithFields(log.Fields{
				"jobcard_id":  jobcardID,
				"invoice_id":  invoice.ID,
				"grand_total": invoice.GrandTotal,
			}).Info("invoice generated")
		}
	}
	return jobcard, nil
}

func (s *jobCardService) UpdateProgress(ctx context.Context, p models.Principal, jobcardID uuid.UUID, percentComplete int, progressNotes *string) (*models.JobCard, error) {
	if percentComplete < 0 || percentComplete > 100 {
		return nil, common.NewValidationError("percent_complete", "must be between 0 and 100")
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	jobcard, err := s.jobcardRepo.GetByID(ctx, tx, jobcardID)
	if err != nil {
		return nil, common.MapPostgresError(err, "job card")
	}
	if err := canMutateJobCard(p, jobcard); err != nil {
		return nil, err
	}

	if err := s.jobcardRepo.UpdateProgress(ctx, tx, jobcardID, percentComplete, progressNotes); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	jobcard.PercentComplete = percentComplete
	if progressNotes != nil {
		jobcard.ProgressNotes = progressNotes
	}
	return jobcard, nil
}

// Delete removes the card and its line items in one transaction. Consumed
// stock is not restored: the parts left the shelf when they were used.
func (s *jobCardService) Delete(ctx context.Context, jobcardID uuid.UUID) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := s.jobcardRepo.DeleteTasks(ctx, tx, jobcardID); err != nil {
		return err
	}
	if err := s.jobcardRepo.DeleteSparePartUsages(ctx, tx, jobcardID); err != nil {
		return err
	}
	rows, err := s.jobcardRepo.Delete(ctx, tx, jobcardID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return common.NotFoundf("job card")
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}

	log.WithField("jobcard_id", jobcardID).Info("job card deleted")
	return nil
}

func (s *jobCardService) checkMechanic(ctx context.Context, mechanicID uuid.UUID) error {
	mechanic, err := s.userRepo.GetByID(ctx, s.db, mechanicID)
	if err != nil {
		return common.MapPostgresError(err, "mechanic")
	}
	if mechanic.Role != models.RoleMechanic {
		return common.NewValidationError("mechanic_id", "user is not a mechanic")
	}
	return nil
}
