package repositories

import (
	"context"
	"regexp"
	"testing"
	"time"

	"garagehub/internal/models"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPartMock(t *testing.T) (pgxmock.PgxPoolIface, PartRepository) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	return mock, NewPartRepo(mock)
}

func partRows(part *models.Part) *pgxmock.Rows {
	return pgxmock.NewRows([]string{"id", "name", "part_number", "price", "quantity", "reorder_level", "created_at", "updated_at"}).
		AddRow(part.ID, part.Name, part.PartNumber, part.Price, part.Quantity, part.ReorderLevel, part.CreatedAt, part.UpdatedAt)
}

func samplePart() *models.Part {
	return &models.Part{
		ID:           uuid.New(),
		Name:         "Oil filter",
		PartNumber:   "OF-1042",
		Price:        12.5,
		Quantity:     8,
		ReorderLevel: 3,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
}

func TestPartRepo_GetByIDForUpdate_LocksRow(t *testing.T) {
	mock, repo := newPartMock(t)
	defer mock.Close()

	part := samplePart()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, name, part_number, price, quantity, reorder_level, created_at, updated_at FROM parts WHERE id = $1 FOR UPDATE`)).
		WithArgs(part.ID).
		WillReturnRows(partRows(part))

	got, err := repo.GetByIDForUpdate(context.Background(), mock, part.ID)

	require.NoError(t, err)
	assert.Equal(t, part.ID, got.ID)
	assert.Equal(t, part.Quantity, got.Quantity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPartRepo_DecrementStock_GuardedUpdate(t *testing.T) {
	mock, repo := newPartMock(t)
	defer mock.Close()

	partID := uuid.New()
	mock.ExpectExec(`UPDATE parts`).
		WithArgs(partID, 3).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	rows, err := repo.DecrementStock(context.Background(), mock, partID, 3)

	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPartRepo_DecrementStock_InsufficientAffectsNoRows(t *testing.T) {
	mock, repo := newPartMock(t)
	defer mock.Close()

	partID := uuid.New()
	mock.ExpectExec(`UPDATE parts`).
		WithArgs(partID, 50).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	rows, err := repo.DecrementStock(context.Background(), mock, partID, 50)

	require.NoError(t, err)
	assert.Equal(t, int64(0), rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPartRepo_ListBelowReorderLevel(t *testing.T) {
	mock, repo := newPartMock(t)
	defer mock.Close()

	part := samplePart()
	part.Quantity = 2
	mock.ExpectQuery(`SELECT (.+) FROM parts`).
		WillReturnRows(partRows(part))

	parts, err := repo.ListBelowReorderLevel(context.Background())

	require.NoError(t, err)
	require.Len(t, parts, 1)
	assert.Equal(t, 2, parts[0].Quantity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPartRepo_Search_AppliesFilters(t *testing.T) {
	mock, repo := newPartMock(t)
	defer mock.Close()

	part := samplePart()
	minQty := 1
	mock.ExpectQuery(`SELECT (.+) FROM parts WHERE 1=1 AND \(name ILIKE \$1 OR part_number ILIKE \$1\) AND quantity >= \$2`).
		WithArgs("%filter%", minQty, 50).
		WillReturnRows(partRows(part))

	parts, err := repo.Search(context.Background(), &models.PartSearchFilter{
		Query:       "filter",
		MinQuantity: &minQty,
	})

	require.NoError(t, err)
	require.Len(t, parts, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}
