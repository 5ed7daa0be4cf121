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

func TestApplicationRepositoryListByProcess(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	formData := []byte(`{"name":"Maria da Silva","cpf":"11122233344","birthdate":"2000-05-10","position":{"id":"course-1","name":"Engineering"}}`)
	rows := sqlmock.NewRows([]string{"id", "user_id", "process_selection_id", "form_data", "created_at"}).
		AddRow("app-1", "user-1", "ps-1", formData, time.Now())
	mock.ExpectQuery("FROM applications WHERE process_selection_id").
		WithArgs("ps-1").
		WillReturnRows(rows)

	applications, err := repo.ListByProcess(context.Background(), "ps-1")
	require.NoError(t, err)
	require.Len(t, applications, 1)
	assert.Equal(t, "Maria da Silva", applications[0].FormData.Name)
	assert.Equal(t, "course-1", applications[0].FormData.CourseID())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepositoryListWithFilters(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	rows := sqlmock.NewRows([]string{"id", "user_id", "process_selection_id", "form_data", "created_at"}).
		AddRow("app-1", "user-1", "ps-1", []byte(`{"name":"A"}`), time.Now())
	mock.ExpectQuery("SELECT a.id, a.user_id, a.process_selection_id").
		WithArgs("ps-1", "user-1", 20, 0).
		WillReturnRows(rows)
	mock.ExpectQuery(`SELECT COUNT\(\*\)`).
		WithArgs("ps-1", "user-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	applications, total, err := repo.List(context.Background(), models.ApplicationFilter{
		ProcessSelectionID: "ps-1",
		UserID:             "user-1",
	})
	require.NoError(t, err)
	assert.Len(t, applications, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepositoryFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	mock.ExpectQuery("FROM applications WHERE id").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "process_selection_id", "form_data", "created_at"}))

	_, err := repo.FindByID(context.Background(), "missing")
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
