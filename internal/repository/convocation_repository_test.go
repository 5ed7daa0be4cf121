package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unisel/admissions-api/internal/models"
)

func TestConvocationRepositoryFindListByID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewConvocationRepository(db)

	rows := sqlmock.NewRows([]string{"id", "process_selection_id", "ordinal", "name", "created_at"}).
		AddRow("list-1", "ps-1", 1, "First Call", time.Now())
	mock.ExpectQuery("FROM convocation_lists WHERE id").
		WithArgs("list-1").
		WillReturnRows(rows)

	list, err := repo.FindListByID(context.Background(), "list-1")
	require.NoError(t, err)
	assert.Equal(t, 1, list.Ordinal)
	assert.Equal(t, "First Call", list.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConvocationRepositoryListPreviousStatuses(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewConvocationRepository(db)

	rows := sqlmock.NewRows([]string{"application_id", "convocation_status"}).
		AddRow("app-1", "pending").
		AddRow("app-1", "called_out_of_quota").
		AddRow("app-2", "enrolled")
	mock.ExpectQuery("cl.ordinal <").
		WithArgs("ps-1", 3).
		WillReturnRows(rows)

	statuses, err := repo.ListPreviousStatuses(context.Background(), "ps-1", 3)
	require.NoError(t, err)
	assert.Len(t, statuses["app-1"], 2)
	assert.Equal(t, []models.ConvocationStatus{models.ConvocationStatus("enrolled")}, statuses["app-2"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConvocationRepositoryBulkInsert(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewConvocationRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO convocation_list_applications").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO convocation_list_applications").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := repo.BulkInsert(context.Background(), []models.ConvocationListApplication{
		{ConvocationListID: "list-1", ApplicationID: "app-1", CourseID: "course-1", GeneralRanking: 1, CategoryRanking: 1,
			ConvocationStatus: models.ConvocationStatusPending, ResultStatus: models.ResultStatusClassified, ResponseStatus: models.ResponseStatusPending},
		{ConvocationListID: "list-1", ApplicationID: "app-2", CourseID: "course-1", GeneralRanking: 2, CategoryRanking: 2,
			ConvocationStatus: models.ConvocationStatusPending, ResultStatus: models.ResultStatusClassifiable, ResponseStatus: models.ResponseStatusPending},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConvocationRepositoryBulkInsertEmptyIsNoop(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewConvocationRepository(db)

	require.NoError(t, repo.BulkInsert(context.Background(), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConvocationRepositoryListRowsByList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewConvocationRepository(db)

	rows := sqlmock.NewRows([]string{"id", "convocation_list_id", "application_id", "course_id", "admission_category_id",
		"general_ranking", "category_ranking", "convocation_status", "result_status", "response_status", "created_at", "updated_at"}).
		AddRow("row-1", "list-1", "app-1", "course-1", nil, 1, 1, "pending", "classified", "pending", time.Now(), time.Now())
	mock.ExpectQuery(`ORDER BY general_ranking LIMIT \$2 OFFSET \$3`).
		WithArgs("list-1", 100, 0).
		WillReturnRows(rows)
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM convocation_list_applications`).
		WithArgs("list-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	listRows, total, err := repo.ListRowsByList(context.Background(), "list-1", 0, 0)
	require.NoError(t, err)
	assert.Len(t, listRows, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
