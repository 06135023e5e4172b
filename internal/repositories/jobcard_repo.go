package repositories

import (
	"context"
	"time"

	"garagehub/internal/models"

	"github.com/google/uuid"
)

type JobCardRepository interface {
	Create(ctx context.Context, q Querier, jobcard *models.JobCard) error
	GetByID(ctx context.Context, q Querier, id uuid.UUID) (*models.JobCard, error)
	List(ctx context.Context, limit, offset int) ([]*models.JobCard, error)
	ListByMechanic(ctx context.Context, mechanicID uuid.UUID, limit, offset int) ([]*models.JobCard, error)
	ListByStatus(ctx context.Context, status string, limit, offset int) ([]*models.JobCard, error)

	UpdateAssignment(ctx context.Context, q Querier, id, mechanicID uuid.UUID, startedAt time.Time) (int64, error)
	UpdateStatus(ctx context.Context, q Querier, id uuid.UUID, status string, startedAt, completedAt *time.Time) error
	UpdateProgress(ctx context.Context, q Querier, id uuid.UUID, percentComplete int, progressNotes *string) error
	IncrementCosts(ctx context.Context, q Querier, id uuid.UUID, laborDelta, totalDelta float64) error

	InsertTask(ctx context.Context, q Querier, task *models.JobCardTask) error
	ListTasks(ctx context.Context, jobcardID uuid.UUID) ([]*models.JobCardTask, error)

	InsertSparePartUsage(ctx context.Context, q Querier, usage *models.SparePartUsage) error
	ListSparePartUsages(ctx context.Context, jobcardID uuid.UUID) ([]*models.SparePartUsage, error)
	SumSparePartTotals(ctx context.Context, q Querier, jobcardID uuid.UUID) (float64, error)

	DeleteTasks(ctx context.Context, q Querier, jobcardID uuid.UUID) error
	DeleteSparePartUsages(ctx context.Context, q Querier, jobcardID uuid.UUID) error
	Delete(ctx context.Context, q Querier, id uuid.UUID) (int64, error)
}

type jobCardRepo struct {
	db Querier
}

func NewJobCardRepo(db Querier) JobCardRepository {
	return &jobCardRepo{db: db}
}

const jobCardColumns = `id, customer_id, vehicle_id, booking_id, mechanic_id, status, priority, notes, progress_notes, percent_complete, estimated_hours, labor_cost, total_cost, started_at, completed_at, created_at, updated_at`

func scanJobCard(row interface{ Scan(dest ...any) error }) (*models.JobCard, error) {
	jc := &models.JobCard{}
	err := row.Scan(&jc.ID, &jc.CustomerID, &jc.VehicleID, &jc.BookingID, &jc.MechanicID, &jc.Status, &jc.Priority, &jc.Notes, &jc.ProgressNotes, &jc.PercentComplete, &jc.EstimatedHours, &jc.LaborCost, &jc.TotalCost, &jc.StartedAt, &jc.CompletedAt, &jc.CreatedAt, &jc.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return jc, nil
}

func (r *jobCardRepo) Create(ctx context.Context, q Querier, jobcard *models.JobCard) error {
	query := `
		INSERT INTO jobcards (id, customer_id, vehicle_id, booking_id, mechanic_id, status, priority, notes, progress_notes, percent_complete, estimated_hours, labor_cost, total_cost, started_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW(), NOW())
	`
	_, err := q.Exec(ctx, query, jobcard.ID, jobcard.CustomerID, jobcard.VehicleID, jobcard.BookingID, jobcard.MechanicID, jobcard.Status, jobcard.Priority, jobcard.Notes, jobcard.ProgressNotes, jobcard.PercentComplete, jobcard.EstimatedHours, jobcard.LaborCost, jobcard.TotalCost, jobcard.StartedAt)
	return err
}

func (r *jobCardRepo) GetByID(ctx context.Context, q Querier, id uuid.UUID) (*models.JobCard, error) {
	query := `SELECT ` + jobCardColumns + ` FROM jobcards WHERE id = $1`
	return scanJobCard(q.QueryRow(ctx, query, id))
}

func (r *jobCardRepo) List(ctx context.Context, limit, offset int) ([]*models.JobCard, error) {
	query := `
		SELECT ` + jobCardColumns + `
		FROM jobcards
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`
	return r.queryJobCards(ctx, query, limit, offset)
}

func (r *jobCardRepo) ListByMechanic(ctx context.Context, mechanicID uuid.UUID, limit, offset int) ([]*models.JobCard, error) {
	query := `
		SELECT ` + jobCardColumns + `
		FROM jobcards
		WHERE mechanic_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	return r.queryJobCards(ctx, query, mechanicID, limit, offset)
}

func (r *jobCardRepo) ListByStatus(ctx context.Context, status string, limit, offset int) ([]*models.JobCard, error) {
	query := `
		SELECT ` + jobCardColumns + `
		FROM jobcards
		WHERE status = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	return r.queryJobCards(ctx, query, status, limit, offset)
}

func (r *jobCardRepo) queryJobCards(ctx context.Context, query string, args ...any) ([]*models.JobCard, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobcards []*models.JobCard
	for rows.Next() {
		jc, err := scanJobCard(rows)
		if err != nil {
			return nil, err
		}
		jobcards = append(jobcards, jc)
	}
	return jobcards, rows.Err()
}

func (r *jobCardRepo) UpdateAssignment(ctx context.Context, q Querier, id, mechanicID uuid.UUID, startedAt time.Time) (int64, error) {
	query := `
		UPDATE jobcards
		SET mechanic_id = $1, status = $2, started_at = $3, updated_at = NOW()
		WHERE id = $4
	`
	tag, err := q.Exec(ctx, query, mechanicID, models.JobCardStatusInProgress, startedAt, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *jobCardRepo) UpdateStatus(ctx context.Context, q Querier, id uuid.UUID, status string, startedAt, completedAt *time.Time) error {
	query := `
		UPDATE jobcards
		SET status = $1,
		    started_at = COALESCE($2, started_at),
		    completed_at = COALESCE($3, completed_at),
		    updated_at = NOW()
		WHERE id = $4
	`
	_, err := q.Exec(ctx, query, status, startedAt, completedAt, id)
	return err
}

func (r *jobCardRepo) UpdateProgress(ctx context.Context, q Querier, id uuid.UUID, percentComplete int, progressNotes *string) error {
	query := `
		UPDATE jobcards
		SET percent_complete = $1,
		    progress_notes = COALESCE($2, progress_notes),
		    updated_at = NOW()
		WHERE id = $3
	`
	_, err := q.Exec(ctx, query, percentComplete, progressNotes, id)
	return err
}

func (r *jobCardRepo) IncrementCosts(ctx context.Context, q Querier, id uuid.UUID, laborDelta, totalDelta float64) error {
	query := `
		UPDATE jobcards
		SET labor_cost = labor_cost + $1, total_cost = total_cost + $2, updated_at = NOW()
		WHERE id = $3
	`
	_, err := q.Exec(ctx, query, laborDelta, totalDelta, id)
	return err
}

func (r *jobCardRepo) InsertTask(ctx context.Context, q Querier, task *models.JobCardTask) error {
	query := `
		INSERT INTO jobcard_tasks (id, jobcard_id, task_name, task_cost, created_at)
		VALUES ($1, $2, $3, $4, NOW())
	`
	_, err := q.Exec(ctx, query, task.ID, task.JobCardID, task.TaskName, task.TaskCost)
	return err
}

func (r *jobCardRepo) ListTasks(ctx context.Context, jobcardID uuid.UUID) ([]*models.JobCardTask, error) {
	query := `
		SELECT id, jobcard_id, task_name, task_cost, created_at
		FROM jobcard_tasks
		WHERE jobcard_id = $1
		ORDER BY created_at ASC
	`
	rows, err := r.db.Query(ctx, query, jobcardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []*models.JobCardTask
	for rows.Next() {
		task := &models.JobCardTask{}
		if err := rows.Scan(&task.ID, &task.JobCardID, &task.TaskName, &task.TaskCost, &task.CreatedAt); err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

func (r *jobCardRepo) InsertSparePartUsage(ctx context.Context, q Querier, usage *models.SparePartUsage) error {
	query := `
		INSERT INTO jobcard_spareparts (id, jobcard_id, part_id, quantity, unit_price, total_price, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`
	_, err := q.Exec(ctx, query, usage.ID, usage.JobCardID, usage.PartID, usage.Quantity, usage.UnitPrice, usage.TotalPrice)
	return err
}

func (r *jobCardRepo) ListSparePartUsages(ctx context.Context, jobcardID uuid.UUID) ([]*models.SparePartUsage, error) {
	query := `
		SELECT id, jobcard_id, part_id, quantity, unit_price, total_price, created_at
		FROM jobcard_spareparts
		WHERE jobcard_id = $1
		ORDER BY created_at ASC
	`
	rows, err := r.db.Query(ctx, query, jobcardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var usages []*models.SparePartUsage
	for rows.Next() {
		usage := &models.SparePartUsage{}
		if err := rows.Scan(&usage.ID, &usage.JobCardID, &usage.PartID, &usage.Quantity, &usage.UnitPrice, &usage.TotalPrice, &usage.CreatedAt); err != nil {
			return nil, err
		}
		usages = append(usages, usage)
	}
	return usages, rows.Err()
}

func (r *jobCardRepo) SumSparePartTotals(ctx context.Context, q Querier, jobcardID uuid.UUID) (float64, error) {
	query := `SELECT COALESCE(SUM(total_price), 0) FROM jobcard_spareparts WHERE jobcard_id = $1`
	var total float64
	if err := q.QueryRow(ctx, query, jobcardID).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *jobCardRepo) DeleteTasks(ctx context.Context, q Querier, jobcardID uuid.UUID) error {
	query := `DELETE FROM jobcard_tasks WHERE jobcard_id = $1`
	_, err := q.Exec(ctx, query, jobcardID)
	return err
}

func (r *jobCardRepo) DeleteSparePartUsages(ctx context.Context, q Querier, jobcardID uuid.UUID) error {
	query := `DELETE FROM jobcard_spareparts WHERE jobcard_id = $1`
	_, err := q.Exec(ctx, query, jobcardID)
	return err
}

func (r *jobCardRepo) Delete(ctx context.Context, q Querier, id uuid.UUID) (int64, error) {
	query := `DELETE FROM jobcards WHERE id = $1`
	tag, err := q.Exec(ctx, query, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
