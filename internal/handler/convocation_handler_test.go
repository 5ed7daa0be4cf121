package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/unisel/admissions-api/internal/models"
	"github.com/unisel/admissions-api/internal/service"
)

type convocationStoreMock struct {
	lists    map[string]models.ConvocationList
	inserted []models.ConvocationListApplication
}

func (m *convocationStoreMock) FindListByID(ctx context.Context, id string) (*models.ConvocationList, error) {
	list, ok := m.lists[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &list, nil
}

func (m *convocationStoreMock) ListPreviousStatuses(ctx context.Context, processSelectionID string, ordinal int) (map[string][]models.ConvocationStatus, error) {
	return nil, nil
}

func (m *convocationStoreMock) ListRowsByList(ctx context.Context, listID string, page, pageSize int) ([]models.ConvocationListApplication, int, error) {
	return m.inserted, len(m.inserted), nil
}

func (m *convocationStoreMock) BulkInsert(ctx context.Context, rows []models.ConvocationListApplication) error {
	m.inserted = append(m.inserted, rows...)
	return nil
}

type approvedReaderMock struct {
	outcomes []models.ApprovedOutcome
}

func (m *approvedReaderMock) ListApprovedByProcess(ctx context.Context, processSelectionID, excludeListID string) ([]models.ApprovedOutcome, error) {
	return m.outcomes, nil
}

type courseReaderMock struct {
	courses []models.Course
}

func (m *courseReaderMock) ListByProcess(ctx context.Context, processSelectionID string) ([]models.Course, error) {
	return m.courses, nil
}

type lockerMock struct{}

func (lockerMock) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return true, nil
}

func (lockerMock) Release(ctx context.Context, key string) error { return nil }

func newGinContext(method, path string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func newConvocationHandlerForTest(store *convocationStoreMock, approved *approvedReaderMock, courses *courseReaderMock) *ConvocationHandler {
	convocationService := service.NewConvocationService(store, approved, courses, lockerMock{}, time.Minute, nil, zap.NewNop())
	return NewConvocationHandler(convocationService, nil)
}

func TestConvocationHandlerGenerate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	classification := models.ClassificationClassifiable
	store := &convocationStoreMock{lists: map[string]models.ConvocationList{
		"list-1": {ID: "list-1", ProcessSelectionID: "ps-1", Ordinal: 1, Name: "First Call"},
	}}
	approved := &approvedReaderMock{outcomes: []models.ApprovedOutcome{
		{
			ApplicationOutcome: models.ApplicationOutcome{
				ApplicationID:        "app-1",
				Status:               models.OutcomeStatusApproved,
				ClassificationStatus: &classification,
				AverageScore:         80,
				FinalScore:           80,
			},
			UserID: "user-1",
			FormData: models.FormData{
				Position:            &models.CoursePosition{ID: "course-1", Name: "Engineering"},
				AdmissionCategories: []models.AdmissionCategory{{ID: "cat-ac", Name: "Ampla Concorrência"}},
			},
		},
	}}
	courses := &courseReaderMock{courses: []models.Course{
		{ID: "course-1", ProcessSelectionID: "ps-1", VacanciesByCategory: map[string]int{"Ampla Concorrência": 1}},
	}}
	handler := newConvocationHandlerForTest(store, approved, courses)

	c, w := newGinContext(http.MethodPost, "/convocation-lists/list-1/generate", nil)
	c.Params = gin.Params{{Key: "id", Value: "list-1"}}

	handler.Generate(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data struct {
			Inserted int `json:"inserted"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, 1, envelope.Data.Inserted)
	require.Len(t, store.inserted, 1)
	assert.Equal(t, models.ResultStatusClassified, store.inserted[0].ResultStatus)
}

func TestConvocationHandlerGenerateUnknownList(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := newConvocationHandlerForTest(&convocationStoreMock{}, &approvedReaderMock{}, &courseReaderMock{})

	c, w := newGinContext(http.MethodPost, "/convocation-lists/missing/generate", nil)
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	handler.Generate(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestConvocationHandlerListRows(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := &convocationStoreMock{
		lists: map[string]models.ConvocationList{"list-1": {ID: "list-1"}},
		inserted: []models.ConvocationListApplication{
			{ApplicationID: "app-1", GeneralRanking: 1},
		},
	}
	handler := newConvocationHandlerForTest(store, &approvedReaderMock{}, &courseReaderMock{})

	c, w := newGinContext(http.MethodGet, "/convocation-lists/list-1/applications", nil)
	c.Params = gin.Params{{Key: "id", Value: "list-1"}}

	handler.ListRows(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "app-1")
	assert.Contains(t, w.Body.String(), "pagination")
}
