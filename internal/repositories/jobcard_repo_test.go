package repositories

import (
	"context"
	"testing"
	"time"

	"garagehub/internal/models"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJobCardMock(t *testing.T) (pgxmock.PgxPoolIface, JobCardRepository) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	return mock, NewJobCardRepo(mock)
}

func TestJobCardRepo_SumSparePartTotals_EmptyIsZero(t *testing.T) {
	mock, repo := newJobCardMock(t)
	defer mock.Close()

	jobcardID := uuid.New()
	mock.ExpectQuery(`SELECT COALESCE\(SUM\(total_price\), 0\) FROM jobcard_spareparts`).
		WithArgs(jobcardID).
		WillReturnRows(pgxmock.NewRows([]string{"coalesce"}).AddRow(0.0))

	total, err := repo.SumSparePartTotals(context.Background(), mock, jobcardID)

	require.NoError(t, err)
	assert.Equal(t, 0.0, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJobCardRepo_IncrementCosts(t *testing.T) {
	mock, repo := newJobCardMock(t)
	defer mock.Close()

	jobcardID := uuid.New()
	mock.ExpectExec(`UPDATE jobcards`).
		WithArgs(25.0, 25.0, jobcardID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := repo.IncrementCosts(context.Background(), mock, jobcardID, 25, 25)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJobCardRepo_UpdateStatus_StampsCompletion(t *testing.T) {
	mock, repo := newJobCardMock(t)
	defer mock.Close()

	jobcardID := uuid.New()
	now := time.Now()
	mock.ExpectExec(`UPDATE jobcards`).
		WithArgs(models.JobCardStatusCompleted, (*time.Time)(nil), &now, jobcardID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := repo.UpdateStatus(context.Background(), mock, jobcardID, models.JobCardStatusCompleted, nil, &now)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJobCardRepo_Delete_ReportsRowsAffected(t *testing.T) {
	mock, repo := newJobCardMock(t)
	defer mock.Close()

	jobcardID := uuid.New()
	mock.ExpectExec(`DELETE FROM jobcards`).
		WithArgs(jobcardID).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	rows, err := repo.Delete(context.Background(), mock, jobcardID)

	require.NoError(t, err)
	assert.Equal(t, int64(0), rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
