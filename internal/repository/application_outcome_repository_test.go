package repository

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unisel/admissions-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestOutcomeRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewApplicationOutcomeRepository(db)

	rows := sqlmock.NewRows([]string{"id", "application_id", "status", "classification_status", "average_score", "final_score", "reason"}).
		AddRow("o1", "app-1", "approved", "classifiable", 70.0, 77.0, nil)
	mock.ExpectQuery("SELECT ao.id, ao.application_id, ao.status").
		WithArgs("ps-1", "approved", 20, 0).
		WillReturnRows(rows)
	mock.ExpectQuery(`SELECT COUNT\(\*\)`).
		WithArgs("ps-1", "approved").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	outcomes, total, err := repo.List(context.Background(), models.OutcomeFilter{
		ProcessSelectionID: "ps-1",
		Status:             models.OutcomeStatusApproved,
	})
	require.NoError(t, err)
	assert.Len(t, outcomes, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, 70.0, outcomes[0].AverageScore)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutcomeRepositoryListApprovedExcludesPlaced(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewApplicationOutcomeRepository(db)

	rows := sqlmock.NewRows([]string{"id", "application_id", "status", "classification_status", "average_score", "final_score", "reason", "user_id", "form_data"}).
		AddRow("o1", "app-1", "approved", "classifiable", 80.0, 80.0, nil, "user-1", []byte(`{"name":"Applicant","position":{"id":"course-1","name":"Course"}}`))
	mock.ExpectQuery("NOT EXISTS").
		WithArgs(string(models.OutcomeStatusApproved), "ps-1", "list-1").
		WillReturnRows(rows)

	outcomes, err := repo.ListApprovedByProcess(context.Background(), "ps-1", "list-1")
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.Equal(t, "app-1", outcomes[0].ApplicationID)
	assert.Equal(t, "course-1", outcomes[0].FormData.CourseID())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutcomeRepositoryReplaceForProcess(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewApplicationOutcomeRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM application_outcomes").
		WithArgs("ps-1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("INSERT INTO application_outcomes").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO application_outcomes").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	reason := "Inscrição duplicada"
	err := repo.ReplaceForProcess(context.Background(), "ps-1", []models.ApplicationOutcome{
		{ApplicationID: "app-1", Status: models.OutcomeStatusApproved},
		{ApplicationID: "app-2", Status: models.OutcomeStatusRejected, Reason: &reason},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutcomeRepositoryReplaceForProcessRollsBackOnInsertFailure(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewApplicationOutcomeRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM application_outcomes").
		WithArgs("ps-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO application_outcomes").
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := repo.ReplaceForProcess(context.Background(), "ps-1", []models.ApplicationOutcome{
		{ApplicationID: "app-1", Status: models.OutcomeStatusApproved},
	})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
