package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"garagehub/internal/common"
	"garagehub/internal/models"
	"garagehub/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// fakeTx is a transaction handle for service tests. The repositories are
// mocked, so no SQL ever runs against it; it only records commit/rollback.
type fakeTx struct {
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (t *fakeTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}

func (t *fakeTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}

func (t *fakeTx) Commit(ctx context.Context) error {
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(ctx context.Context) error {
	if !t.committed {
		t.rolledBack = true
	}
	return nil
}

type fakeDB struct {
	txs []*fakeTx
}

func (d *fakeDB) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (d *fakeDB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}

func (d *fakeDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}

func (d *fakeDB) Begin(ctx context.Context) (repositories.Tx, error) {
	tx := &fakeTx{}
	d.txs = append(d.txs, tx)
	return tx, nil
}

func (d *fakeDB) lastTx() *fakeTx {
	if len(d.txs) == 0 {
		return nil
	}
	return d.txs[len(d.txs)-1]
}

type MockJobCardRepository struct {
	mock.Mock
}

func (m *MockJobCardRepository) Create(ctx context.Context, q repositories.Querier, jobcard *models.JobCard) error {
	args := m.Called(ctx, q, jobcard)
	return args.Error(0)
}

func (m *MockJobCardRepository) GetByID(ctx context.Context, q repositories.Querier, id uuid.UUID) (*models.JobCard, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.JobCard), args.Error(1)
}

func (m *MockJobCardRepository) List(ctx context.Context, limit, offset int) ([]*models.JobCard, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]*models.JobCard), args.Error(1)
}

func (m *MockJobCardRepository) ListByMechanic(ctx context.Context, mechanicID uuid.UUID, limit, offset int) ([]*models.JobCard, error) {
	args := m.Called(ctx, mechanicID, limit, offset)
	return args.Get(0).([]*models.JobCard), args.Error(1)
}

func (m *MockJobCardRepository) ListByStatus(ctx context.Context, status string, limit, offset int) ([]*models.JobCard, error) {
	args := m.Called(ctx, status, limit, offset)
	return args.Get(0).([]*models.JobCard), args.Error(1)
}

func (m *MockJobCardRepository) UpdateAssignment(ctx context.Context, q repositories.Querier, id, mechanicID uuid.UUID, startedAt time.Time) (int64, error) {
	args := m.Called(ctx, q, id, mechanicID, startedAt)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockJobCardRepository) UpdateStatus(ctx context.Context, q repositories.Querier, id uuid.UUID, status string, startedAt, completedAt *time.Time) error {
	args := m.Called(ctx, q, id, status, startedAt, completedAt)
	return args.Error(0)
}

func (m *MockJobCardRepository) UpdateProgress(ctx context.Context, q repositories.Querier, id uuid.UUID, percentComplete int, progressNotes *string) error {
	args := m.Called(ctx, q, id, percentComplete, progressNotes)
	return args.Error(0)
}

func (m *MockJobCardRepository) IncrementCosts(ctx context.Context, q repositories.Querier, id uuid.UUID, laborDelta, totalDelta float64) error {
	args := m.Called(ctx, q, id, laborDelta, totalDelta)
	return args.Error(0)
}

func (m *MockJobCardRepository) InsertTask(ctx context.Context, q repositories.Querier, task *models.JobCardTask) error {
	args := m.Called(ctx, q, task)
	return args.Error(0)
}

func (m *MockJobCardRepository) ListTasks(ctx context.Context, jobcardID uuid.UUID) ([]*models.JobCardTask, error) {
	args := m.Called(ctx, jobcardID)
	return args.Get(0).([]*models.JobCardTask), args.Error(1)
}

func (m *MockJobCardRepository) InsertSparePartUsage(ctx context.Context, q repositories.Querier, usage *models.SparePartUsage) error {
	args := m.Called(ctx, q, usage)
	return args.Error(0)
}

func (m *MockJobCardRepository) ListSparePartUsages(ctx context.Context, jobcardID uuid.UUID) ([]*models.SparePartUsage, error) {
	args := m.Called(ctx, jobcardID)
	return args.Get(0).([]*models.SparePartUsage), args.Error(1)
}

func (m *MockJobCardRepository) SumSparePartTotals(ctx context.Context, q repositories.Querier, jobcardID uuid.UUID) (float64, error) {
	args := m.Called(ctx, q, jobcardID)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockJobCardRepository) DeleteTasks(ctx context.Context, q repositories.Querier, jobcardID uuid.UUID) error {
	args := m.Called(ctx, q, jobcardID)
	return args.Error(0)
}

func (m *MockJobCardRepository) DeleteSparePartUsages(ctx context.Context, q repositories.Querier, jobcardID uuid.UUID) error {
	args := m.Called(ctx, q, jobcardID)
	return args.Error(0)
}

func (m *MockJobCardRepository) Delete(ctx context.Context, q repositories.Querier, id uuid.UUID) (int64, error) {
	args := m.Called(ctx, q, id)
	return args.Get(0).(int64), args.Error(1)
}

type MockPartRepository struct {
	mock.Mock
}

func (m *MockPartRepository) Create(ctx context.Context, part *models.Part) error {
	args := m.Called(ctx, part)
	return args.Error(0)
}

func (m *MockPartRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Part, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Part), args.Error(1)
}

func (m *MockPartRepository) Update(ctx context.Context, part *models.Part) error {
	args := m.Called(ctx, part)
	return args.Error(0)
}

func (m *MockPartRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPartRepository) List(ctx context.Context, limit, offset int) ([]*models.Part, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]*models.Part), args.Error(1)
}

func (m *MockPartRepository) Search(ctx context.Context, filter *models.PartSearchFilter) ([]*models.Part, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*models.Part), args.Error(1)
}

func (m *MockPartRepository) ListBelowReorderLevel(ctx context.Context) ([]*models.Part, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*models.Part), args.Error(1)
}

func (m *MockPartRepository) GetByIDForUpdate(ctx context.Context, q repositories.Querier, id uuid.UUID) (*models.Part, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Part), args.Error(1)
}

func (m *MockPartRepository) DecrementStock(ctx context.Context, q repositories.Querier, id uuid.UUID, quantity int) (int64, error) {
	args := m.Called(ctx, q, id, quantity)
	return args.Get(0).(int64), args.Error(1)
}

type MockVehicleRepository struct {
	mock.Mock
}

func (m *MockVehicleRepository) Create(ctx context.Context, vehicle *models.Vehicle) error {
	args := m.Called(ctx, vehicle)
	return args.Error(0)
}

func (m *MockVehicleRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Vehicle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Vehicle), args.Error(1)
}

func (m *MockVehicleRepository) List(ctx context.Context, limit, offset int) ([]*models.Vehicle, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]*models.Vehicle), args.Error(1)
}

func (m *MockVehicleRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*models.Vehicle, error) {
	args := m.Called(ctx, customerID)
	return args.Get(0).([]*models.Vehicle), args.Error(1)
}

func (m *MockVehicleRepository) Update(ctx context.Context, vehicle *models.Vehicle) (int64, error) {
	args := m.Called(ctx, vehicle)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockVehicleRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}

func (m *MockBookingRepository) GetByID(ctx context.Context, q repositories.Querier, id uuid.UUID) (*models.Booking, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *MockBookingRepository) List(ctx context.Context, limit, offset int) ([]*models.Booking, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]*models.Booking), args.Error(1)
}

func (m *MockBookingRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]*models.Booking, error) {
	args := m.Called(ctx, customerID, limit, offset)
	return args.Get(0).([]*models.Booking), args.Error(1)
}

func (m *MockBookingRepository) UpdateStatus(ctx context.Context, q repositories.Querier, id uuid.UUID, status string) (int64, error) {
	args := m.Called(ctx, q, id, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBookingRepository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, q repositories.Querier, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) ListByRole(ctx context.Context, role string, limit, offset int) ([]*models.User, error) {
	args := m.Called(ctx, role, limit, offset)
	return args.Get(0).([]*models.User), args.Error(1)
}

type MockBillingService struct {
	mock.Mock
}

func (m *MockBillingService) GenerateForJobCard(ctx context.Context, jobcard *models.JobCard) (*models.Invoice, error) {
	args := m.Called(ctx, jobcard)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invoice), args.Error(1)
}

func (m *MockBillingService) GetInvoice(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invoice), args.Error(1)
}

func (m *MockBillingService) ListInvoices(ctx context.Context, limit, offset int) ([]*models.Invoice, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]*models.Invoice), args.Error(1)
}

func (m *MockBillingService) ListInvoicesByJobCard(ctx context.Context, jobcardID uuid.UUID) ([]*models.Invoice, error) {
	args := m.Called(ctx, jobcardID)
	return args.Get(0).([]*models.Invoice), args.Error(1)
}

func (m *MockBillingService) ListInvoicesByStatus(ctx context.Context, status string, limit, offset int) ([]*models.Invoice, error) {
	args := m.Called(ctx, status, limit, offset)
	return args.Get(0).([]*models.Invoice), args.Error(1)
}

func (m *MockBillingService) ListInvoicesByCustomer(ctx context.Context, customerID uuid.UUID, limit, offset int) ([]*models.Invoice, error) {
	args := m.Called(ctx, customerID, limit, offset)
	return args.Get(0).([]*models.Invoice), args.Error(1)
}

func (m *MockBillingService) UpdateInvoiceStatus(ctx context.Context, id uuid.UUID, status string) (*models.Invoice, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invoice), args.Error(1)
}

func (m *MockBillingService) MarkOverdueInvoices(ctx context.Context, olderThan time.Duration) (int64, error) {
	args := m.Called(ctx, olderThan)
	return args.Get(0).(int64), args.Error(1)
}

type JobCardServiceTestSuite struct {
	suite.Suite
	db          *fakeDB
	jobcardRepo *MockJobCardRepository
	partRepo    *MockPartRepository
	vehicleRepo *MockVehicleRepository
	bookingRepo *MockBookingRepository
	userRepo    *MockUserRepository
	billing     *MockBillingService
	service     JobCardService

	admin    models.Principal
	mechanic models.Principal
}

func (suite *JobCardServiceTestSuite) SetupTest() {
	suite.db = &fakeDB{}
	suite.jobcardRepo = &MockJobCardRepository{}
	suite.partRepo = &MockPartRepository{}
	suite.vehicleRepo = &MockVehicleRepository{}
	suite.bookingRepo = &MockBookingRepository{}
	suite.userRepo = &MockUserRepository{}
	suite.billing = &MockBillingService{}
	suite.service = NewJobCardService(suite.db, suite.jobcardRepo, suite.partRepo, suite.vehicleRepo, suite.bookingRepo, suite.userRepo, suite.billing, nil)

	suite.admin = models.Principal{ID: uuid.New(), Role: models.RoleAdmin}
	suite.mechanic = models.Principal{ID: uuid.New(), Role: models.RoleMechanic}
}

func (suite *JobCardServiceTestSuite) TearDownTest() {
	suite.jobcardRepo.AssertExpectations(suite.T())
	suite.partRepo.AssertExpectations(suite.T())
	suite.vehicleRepo.AssertExpectations(suite.T())
	suite.bookingRepo.AssertExpectations(suite.T())
	suite.userRepo.AssertExpectations(suite.T())
	suite.billing.AssertExpectations(suite.T())
}

func TestJobCardServiceTestSuite(t *testing.T) {
	suite.Run(t, new(JobCardServiceTestSuite))
}

func (suite *JobCardServiceTestSuite) ownedJobCard() *models.JobCard {
	return &models.JobCard{
		ID:         uuid.New(),
		VehicleID:  uuid.New(),
		MechanicID: &suite.mechanic.ID,
		Status:     models.JobCardStatusInProgress,
		Priority:   models.PriorityMedium,
		LaborCost:  50,
		TotalCost:  75,
	}
}

// Creation always assigns the creating principal and starts the card
// in_progress; there is no unassigned creation path.
func (suite *JobCardServiceTestSuite) TestCreate_CreatorIsAssignee() {
	vehicleID := uuid.New()
	suite.vehicleRepo.On("GetByID", mock.Anything, vehicleID).Return(&models.Vehicle{ID: vehicleID}, nil).Once()
	suite.jobcardRepo.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

	jobcard, err := suite.service.Create(context.Background(), suite.mechanic, &CreateJobCardInput{VehicleID: vehicleID})

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.JobCardStatusInProgress, jobcard.Status)
	assert.Equal(suite.T(), models.PriorityMedium, jobcard.Priority)
	assert.Equal(suite.T(), suite.mechanic.ID, *jobcard.MechanicID)
	assert.True(suite.T(), suite.db.lastTx().committed)
}

func (suite *JobCardServiceTestSuite) TestCreate_VehicleMissing() {
	vehicleID := uuid.New()
	suite.vehicleRepo.On("GetByID", mock.Anything, vehicleID).Return(nil, pgx.ErrNoRows).Once()

	_, err := suite.service.Create(context.Background(), suite.mechanic, &CreateJobCardInput{VehicleID: vehicleID})

	assert.ErrorIs(suite.T(), err, common.ErrNotFound)
}

func (suite *JobCardServiceTestSuite) TestCreate_CustomerRoleRejected() {
	vehicleID := uuid.New()
	customerID := uuid.New()
	suite.vehicleRepo.On("GetByID", mock.Anything, vehicleID).Return(&models.Vehicle{ID: vehicleID}, nil).Once()
	suite.userRepo.On("GetByID", mock.Anything, mock.Anything, customerID).Return(&models.User{ID: customerID, Role: models.RoleMechanic}, nil).Once()

	_, err := suite.service.Create(context.Background(), suite.mechanic, &CreateJobCardInput{
		VehicleID:  vehicleID,
		CustomerID: &customerID,
	})

	ve, ok := common.IsValidationError(err)
	assert.True(suite.T(), ok)
	assert.Equal(suite.T(), "customer_id", ve.Field)
}

func (suite *JobCardServiceTestSuite) TestCreate_NegativeEstimatedHours() {
	vehicleID := uuid.New()
	hours := -2.5
	suite.vehicleRepo.On("GetByID", mock.Anything, vehicleID).Return(&models.Vehicle{ID: vehicleID}, nil).Once()

	_, err := suite.service.Create(context.Background(), suite.mechanic, &CreateJobCardInput{
		VehicleID:      vehicleID,
		EstimatedHours: &hours,
	})

	ve, ok := common.IsValidationError(err)
	assert.True(suite.T(), ok)
	assert.Equal(suite.T(), "estimated_hours", ve.Field)
}

func (suite *JobCardServiceTestSuite) TestCreate_UnknownPriority() {
	vehicleID := uuid.New()
	suite.vehicleRepo.On("GetByID", mock.Anything, vehicleID).Return(&models.Vehicle{ID: vehicleID}, nil).Once()

	_, err := suite.service.Create(context.Background(), suite.mechanic, &CreateJobCardInput{
		VehicleID: vehicleID,
		Priority:  "urgent",
	})

	ve, ok := common.IsValidationError(err)
	assert.True(suite.T(), ok)
	assert.Equal(suite.T(), "priority", ve.Field)
}

func (suite *JobCardServiceTestSuite) TestAddTask_RollsCostIntoBothTotals() {
	jobcard := suite.ownedJobCard()
	suite.jobcardRepo.On("GetByID", mock.Anything, mock.Anything, jobcard.ID).Return(jobcard, nil).Once()
	suite.jobcardRepo.On("InsertTask", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
	suite.jobcardRepo.On("IncrementCosts", mock.Anything, mock.Anything, jobcard.ID, 40.0, 40.0).Return(nil).Once()

	task, err := suite.service.AddTask(context.Background(), suite.mechanic, jobcard.ID, "Replace brake pads", 40)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Replace brake pads", task.TaskName)
	assert.Equal(suite.T(), 40.0, task.TaskCost)
	assert.True(suite.T(), suite.db.lastTx().committed)
}

func (suite *JobCardServiceTestSuite) TestAddTask_ForbiddenForOtherMechanic() {
	otherMechanicID := uuid.New()
	jobcard := suite.ownedJobCard()
	jobcard.MechanicID = &otherMechanicID
	suite.jobcardRepo.On("GetByID", mock.Anything, mock.Anything, jobcard.ID).Return(jobcard, nil).Once()

	_, err := suite.service.AddTask(context.Background(), suite.mechanic, jobcard.ID, "Oil change", 20)

	assert.ErrorIs(suite.T(), err, common.ErrForbidden)
	assert.True(suite.T(), suite.db.lastTx().rolledBack)
	suite.jobcardRepo.AssertNotCalled(suite.T(), "InsertTask", mock.Anything, mock.Anything, mock.Anything)
}

// A foreign key violation on the task insert means the job card vanished
// between the read and the write; that is a not-found, not a server error.
func (suite *JobCardServiceTestSuite) TestAddTask_JobCardVanishedMidTransaction() {
	jobcard := suite.ownedJobCard()
	suite.jobcardRepo.On("GetByID", mock.Anything, mock.Anything, jobcard.ID).Return(jobcard, nil).Once()
	suite.jobcardRepo.On("InsertTask", mock.Anything, mock.Anything, mock.Anything).Return(&pgconn.PgError{Code: "23503"}).Once()

	_, err := suite.service.AddTask(context.Background(), suite.admin, jobcard.ID, "Oil change", 20)

	assert.ErrorIs(suite.T(), err, common.ErrNotFound)
	assert.True(suite.T(), suite.db.lastTx().rolledBack)
	suite.jobcardRepo.AssertNotCalled(suite.T(), "IncrementCosts", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *JobCardServiceTestSuite) TestAddTask_EmptyNameRejected() {
	_, err := suite.service.AddTask(context.Background(), suite.admin, uuid.New(), "   ", 10)

	ve, ok := common.IsValidationError(err)
	assert.True(suite.T(), ok)
	assert.Equal(suite.T(), "task_name", ve.Field)
}

func (suite *JobCardServiceTestSuite) TestAddSparePart_ConsumesStockAtomically() {
	jobcard := suite.ownedJobCard()
	part := &models.Part{ID: uuid.New(), Name: "Oil filter", Price: 12.5, Quantity: 10}
	suite.jobcardRepo.On("GetByID", mock.Anything, mock.Anything, jobcard.ID).Return(jobcard, nil).Once()
	suite.partRepo.On("GetByIDForUpdate", mock.Anything, mock.Anything, part.ID).Return(part, nil).Once()
	suite.partRepo.On("DecrementStock", mock.Anything, mock.Anything, part.ID, 2).Return(int64(1), nil).Once()
	suite.jobcardRepo.On("InsertSparePartUsage", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
	suite.jobcardRepo.On("IncrementCosts", mock.Anything, mock.Anything, jobcard.ID, 0.0, 25.0).Return(nil).Once()

	usage, err := suite.service.AddSparePart(context.Background(), suite.mechanic, jobcard.ID, part.ID, 2)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 12.5, usage.UnitPrice)
	assert.Equal(suite.T(), 25.0, usage.TotalPrice)
	assert.True(suite.T(), suite.db.lastTx().committed)
}

func (suite *JobCardServiceTestSuite) TestAddSparePart_InsufficientStock() {
	jobcard := suite.ownedJobCard()
	part := &models.Part{ID: uuid.New(), Price: 12.5, Quantity: 1}
	suite.jobcardRepo.On("GetByID", mock.Anything, mock.Anything, jobcard.ID).Return(jobcard, nil).Once()
	suite.partRepo.On("GetByIDForUpdate", mock.Anything, mock.Anything, part.ID).Return(part, nil).Once()
	suite.partRepo.On("DecrementStock", mock.Anything, mock.Anything, part.ID, 5).Return(int64(0), nil).Once()

	_, err := suite.service.AddSparePart(context.Background(), suite.admin, jobcard.ID, part.ID, 5)

	assert.ErrorIs(suite.T(), err, common.ErrInsufficientStock)
	assert.True(suite.T(), suite.db.lastTx().rolledBack)
	suite.jobcardRepo.AssertNotCalled(suite.T(), "InsertSparePartUsage", mock.Anything, mock.Anything, mock.Anything)
	suite.jobcardRepo.AssertNotCalled(suite.T(), "IncrementCosts", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *JobCardServiceTestSuite) TestAddSparePart_PartMissingLeavesTotalsUntouched() {
	jobcard := suite.ownedJobCard()
	partID := uuid.New()
	suite.jobcardRepo.On("GetByID", mock.Anything, mock.Anything, jobcard.ID).Return(jobcard, nil).Once()
	suite.partRepo.On("GetByIDForUpdate", mock.Anything, mock.Anything, partID).Return(nil, pgx.ErrNoRows).Once()

	_, err := suite.service.AddSparePart(context.Background(), suite.admin, jobcard.ID, partID, 1)

	assert.ErrorIs(suite.T(), err, common.ErrNotFound)
	assert.True(suite.T(), suite.db.lastTx().rolledBack)
	suite.jobcardRepo.AssertNotCalled(suite.T(), "IncrementCosts", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *JobCardServiceTestSuite) TestAddSparePart_JobCardVanishedMidTransaction() {
	jobcard := suite.ownedJobCard()
	part := &models.Part{ID: uuid.New(), Price: 12.5, Quantity: 10}
	suite.jobcardRepo.On("GetByID", mock.Anything, mock.Anything, jobcard.ID).Return(jobcard, nil).Once()
	suite.partRepo.On("GetByIDForUpdate", mock.Anything, mock.Anything, part.ID).Return(part, nil).Once()
	suite.partRepo.On("DecrementStock", mock.Anything, mock.Anything, part.ID, 1).Return(int64(1), nil).Once()
	suite.jobcardRepo.On("InsertSparePartUsage", mock.Anything, mock.Anything, mock.Anything).Return(&pgconn.PgError{Code: "23503"}).Once()

	_, err := suite.service.AddSparePart(context.Background(), suite.admin, jobcard.ID, part.ID, 1)

	assert.ErrorIs(suite.T(), err, common.ErrNotFound)
	assert.True(suite.T(), suite.db.lastTx().rolledBack)
	suite.jobcardRepo.AssertNotCalled(suite.T(), "IncrementCosts", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *JobCardServiceTestSuite) TestAddSparePart_ZeroQuantityRejected() {
	_, err := suite.service.AddSparePart(context.Background(), suite.admin, uuid.New(), uuid.New(), 0)

	ve, ok := common.IsValidationError(err)
	assert.True(suite.T(), ok)
	assert.Equal(suite.T(), "quantity", ve.Field)
}

func (suite *JobCardServiceTestSuite) TestAssignMechanic_NotAMechanic() {
	userID := uuid.New()
	suite.userRepo.On("GetByID", mock.Anything, mock.Anything, userID).Return(&models.User{ID: userID, Role: models.RoleCustomer}, nil).Once()

	_, err := suite.service.AssignMechanic(context.Background(), uuid.New(), userID)

	ve, ok := common.IsValidationError(err)
	assert.True(suite.T(), ok)
	assert.Equal(suite.T(), "mechanic_id", ve.Field)
}

func (suite *JobCardServiceTestSuite) TestAssignMechanic_Success() {
	jobcard := suite.ownedJobCard()
	suite.userRepo.On("GetByID", mock.Anything, mock.Anything, suite.mechanic.ID).Return(&models.User{ID: suite.mechanic.ID, Role: models.RoleMechanic}, nil).Once()
	suite.jobcardRepo.On("UpdateAssignment", mock.Anything, mock.Anything, jobcard.ID, suite.mechanic.ID, mock.Anything).Return(int64(1), nil).Once()
	suite.jobcardRepo.On("GetByID", mock.Anything, mock.Anything, jobcard.ID).Return(jobcard, nil).Once()

	_, err := suite.service.AssignMechanic(context.Background(), jobcard.ID, suite.mechanic.ID)

	assert.NoError(suite.T(), err)
	assert.True(suite.T(), suite.db.lastTx().committed)
}

func (suite *JobCardServiceTestSuite) TestUpdateStatus_UnknownStatusRejected() {
	_, err := suite.service.UpdateStatus(context.Background(), suite.admin, uuid.New(), "finished")

	ve, ok := common.IsValidationError(err)
	assert.True(suite.T(), ok)
	assert.Equal(suite.T(), "status", ve.Field)
}

func (suite *JobCardServiceTestSuite) TestUpdateStatus_AnyToAnyAllowed() {
	jobcard := suite.ownedJobCard()
	jobcard.Status = models.JobCardStatusCompleted
	suite.jobcardRepo.On("GetByID", mock.Anything, mock.Anything, jobcard.ID).Return(jobcard, nil).Once()
	suite.jobcardRepo.On("UpdateStatus", mock.Anything, mock.Anything, jobcard.ID, models.JobCardStatusPending, (*time.Time)(nil), (*time.Time)(nil)).Return(nil).Once()

	updated, err := suite.service.UpdateStatus(context.Background(), suite.admin, jobcard.ID, models.JobCardStatusPending)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.JobCardStatusPending, updated.Status)
}

// Moving to in_progress always stamps started_at, even when the card was
// started before.
func (suite *JobCardServiceTestSuite) TestUpdateStatus_InProgressRestampsStartedAt() {
	jobcard := suite.ownedJobCard()
	earlier := time.Now().Add(-2 * time.Hour)
	jobcard.StartedAt = &earlier
	jobcard.Status = models.JobCardStatusCancelled
	suite.jobcardRepo.On("GetByID", mock.Anything, mock.Anything, jobcard.ID).Return(jobcard, nil).Once()
	suite.jobcardRepo.On("UpdateStatus", mock.Anything, mock.Anything, jobcard.ID, models.JobCardStatusInProgress, mock.MatchedBy(func(ts *time.Time) bool {
		return ts != nil && ts.After(earlier)
	}), (*time.Time)(nil)).Return(nil).Once()

	updated, err := suite.service.UpdateStatus(context.Background(), suite.mechanic, jobcard.ID, models.JobCardStatusInProgress)

	assert.NoError(suite.T(), err)
	assert.NotNil(suite.T(), updated.StartedAt)
	assert.True(suite.T(), updated.StartedAt.After(earlier))
}

func (suite *JobCardServiceTestSuite) TestUpdateStatus_CompletionGeneratesInvoice() {
	jobcard := suite.ownedJobCard()
	suite.jobcardRepo.On("GetByID", mock.Anything, mock.Anything, jobcard.ID).Return(jobcard, nil).Once()
	suite.jobcardRepo.On("UpdateStatus", mock.Anything, mock.Anything, jobcard.ID, models.JobCardStatusCompleted, (*time.Time)(nil), mock.Anything).Return(nil).Once()
	suite.billing.On("GenerateForJobCard", mock.Anything, mock.Anything).Return(&models.Invoice{ID: uuid.New(), GrandTotal: 125}, nil).Once()

	updated, err := suite.service.UpdateStatus(context.Background(), suite.mechanic, jobcard.ID, models.JobCardStatusCompleted)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.JobCardStatusCompleted, updated.Status)
	assert.NotNil(suite.T(), updated.CompletedAt)
}

func (suite *JobCardServiceTestSuite) TestUpdateStatus_BillingFailureDoesNotUndoStatus() {
	jobcard := suite.ownedJobCard()
	suite.jobcardRepo.On("GetByID", mock.Anything, mock.Anything, jobcard.ID).Return(jobcard, nil).Once()
	suite.jobcardRepo.On("UpdateStatus", mock.Anything, mock.Anything, jobcard.ID, models.JobCardStatusCompleted, (*time.Time)(nil), mock.Anything).Return(nil).Once()
	suite.billing.On("GenerateForJobCard", mock.Anything, mock.Anything).Return(nil, errors.New("invoice insert failed")).Once()

	updated, err := suite.service.UpdateStatus(context.Background(), suite.admin, jobcard.ID, models.JobCardStatusCompleted)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.JobCardStatusCompleted, updated.Status)
	assert.True(suite.T(), suite.db.lastTx().committed)
}

// Completing a card twice produces a second invoice: there is no
// idempotence guard on the completion trigger.
func (suite *JobCardServiceTestSuite) TestUpdateStatus_DoubleCompletionProducesSecondInvoice() {
	jobcard := suite.ownedJobCard()
	suite.jobcardRepo.On("GetByID", mock.Anything, mock.Anything, jobcard.ID).Return(jobcard, nil).Twice()
	suite.jobcardRepo.On("UpdateStatus", mock.Anything, mock.Anything, jobcard.ID, models.JobCardStatusCompleted, (*time.Time)(nil), mock.Anything).Return(nil).Twice()
	suite.billing.On("GenerateForJobCard", mock.Anything, mock.Anything).Return(&models.Invoice{ID: uuid.New()}, nil).Twice()

	_, err := suite.service.UpdateStatus(context.Background(), suite.admin, jobcard.ID, models.JobCardStatusCompleted)
	assert.NoError(suite.T(), err)
	_, err = suite.service.UpdateStatus(context.Background(), suite.admin, jobcard.ID, models.JobCardStatusCompleted)
	assert.NoError(suite.T(), err)

	suite.billing.AssertNumberOfCalls(suite.T(), "GenerateForJobCard", 2)
}

func (suite *JobCardServiceTestSuite) TestUpdateProgress_OutOfRange() {
	_, err := suite.service.UpdateProgress(context.Background(), suite.admin, uuid.New(), 101, nil)

	ve, ok := common.IsValidationError(err)
	assert.True(suite.T(), ok)
	assert.Equal(suite.T(), "percent_complete", ve.Field)
}

func (suite *JobCardServiceTestSuite) TestUpdateProgress_KeepsExistingNotesWhenNil() {
	jobcard := suite.ownedJobCard()
	existing := "halfway there"
	jobcard.ProgressNotes = &existing
	suite.jobcardRepo.On("GetByID", mock.Anything, mock.Anything, jobcard.ID).Return(jobcard, nil).Once()
	suite.jobcardRepo.On("UpdateProgress", mock.Anything, mock.Anything, jobcard.ID, 80, (*string)(nil)).Return(nil).Once()

	updated, err := suite.service.UpdateProgress(context.Background(), suite.mechanic, jobcard.ID, 80, nil)

	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 80, updated.PercentComplete)
	assert.Equal(suite.T(), &existing, updated.ProgressNotes)
}

func (suite *JobCardServiceTestSuite) TestDelete_CascadesLineItems() {
	jobcardID := uuid.New()
	suite.jobcardRepo.On("DeleteTasks", mock.Anything, mock.Anything, jobcardID).Return(nil).Once()
	suite.jobcardRepo.On("DeleteSparePartUsages", mock.Anything, mock.Anything, jobcardID).Return(nil).Once()
	suite.jobcardRepo.On("Delete", mock.Anything, mock.Anything, jobcardID).Return(int64(1), nil).Once()

	err := suite.service.Delete(context.Background(), jobcardID)

	assert.NoError(suite.T(), err)
	assert.True(suite.T(), suite.db.lastTx().committed)
}

func (suite *JobCardServiceTestSuite) TestDelete_NotFound() {
	jobcardID := uuid.New()
	suite.jobcardRepo.On("DeleteTasks", mock.Anything, mock.Anything, jobcardID).Return(nil).Once()
	suite.jobcardRepo.On("DeleteSparePartUsages", mock.Anything, mock.Anything, jobcardID).Return(nil).Once()
	suite.jobcardRepo.On("Delete", mock.Anything, mock.Anything, jobcardID).Return(int64(0), nil).Once()

	err := suite.service.Delete(context.Background(), jobcardID)

	assert.ErrorIs(suite.T(), err, common.ErrNotFound)
	assert.True(suite.T(), suite.db.lastTx().rolledBack)
}
