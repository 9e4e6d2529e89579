package qms

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"qms-document-control/internal/domain"
	apperrors "qms-document-control/internal/errors"
	"qms-document-control/internal/middleware"
)

// mock implementation of the Service interface
type MockService struct {
	mock.Mock
}

func (m *MockService) GetState(ctx context.Context) (*domain.Snapshot, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Snapshot), args.Error(1)
}

func (m *MockService) SaveDocument(ctx context.Context, userID uint64, doc domain.Document) (*domain.Document, error) {
	args := m.Called(ctx, userID, doc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockService) DeleteDocument(ctx context.Context, userID uint64, code string) error {
	args := m.Called(ctx, userID, code)
	return args.Error(0)
}

func (m *MockService) SaveVersion(ctx context.Context, userID uint64, v domain.Version) (*domain.Version, error) {
	args := m.Called(ctx, userID, v)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Version), args.Error(1)
}

func (m *MockService) DeleteVersion(ctx context.Context, userID uint64, id string) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

func (m *MockService) SaveReview(ctx context.Context, userID uint64, s domain.ReviewSchedule) (*ReviewSaveResult, error) {
	args := m.Called(ctx, userID, s)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ReviewSaveResult), args.Error(1)
}

func (m *MockService) SaveFrequency(ctx context.Context, userID uint64, f domain.ReviewFrequency) (*domain.ReviewFrequency, error) {
	args := m.Called(ctx, userID, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReviewFrequency), args.Error(1)
}

func (m *MockService) DeleteFrequency(ctx context.Context, userID uint64, id string) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

func (m *MockService) RefreshStatuses(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockService) Notifications(ctx context.Context, user domain.User) []domain.Notification {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]domain.Notification)
}

func setupRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.ErrorHandler())
	return router
}

func withUser(userID uint64, role string, handler gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Set("user_role", role)
		handler(c)
	}
}

func TestSaveDocument_Success(t *testing.T) {
	mockService := new(MockService)
	handler := NewHandler(mockService)
	router := setupRouter()

	mockService.On("SaveDocument", mock.Anything, uint64(1), mock.MatchedBy(func(doc domain.Document) bool {
		return doc.Code == "QM-001" && doc.Title == "Quality Manual"
	})).Return(&domain.Document{Code: "QM-001", Title: "Quality Manual", Status: domain.DocumentDraft}, nil)

	router.POST("/documents", withUser(1, domain.RoleReviewer, handler.SaveDocument))

	payload := DocumentRequest{
		Code:          "QM-001",
		Title:         "Quality Manual",
		IssueDate:     "2024-01-01",
		EffectiveDate: "2024-01-15",
	}
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest("POST", "/documents", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	mockService.AssertExpectations(t)
}

func TestSaveDocument_InvalidDate(t *testing.T) {
	mockService := new(MockService)
	handler := NewHandler(mockService)
	router := setupRouter()

	router.POST("/documents", withUser(1, domain.RoleReviewer, handler.SaveDocument))

	body := []byte(`{"code":"QM-001","title":"Quality Manual","issue_date":"01/01/2024","effective_date":"2024-01-15"}`)
	req := httptest.NewRequest("POST", "/documents", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	// 422 for validation errors (bad date format)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	mockService.AssertNotCalled(t, "SaveDocument", mock.Anything, mock.Anything, mock.Anything)
}

func TestSaveVersion_Success(t *testing.T) {
	mockService := new(MockService)
	handler := NewHandler(mockService)
	router := setupRouter()

	mockService.On("SaveVersion", mock.Anything, uint64(1), mock.MatchedBy(func(v domain.Version) bool {
		return v.DocumentCode == "QM-001" && v.Label == "2.0" && v.IsLatest
	})).Return(&domain.Version{ID: "v-2", DocumentCode: "QM-001", Label: "2.0"}, nil)

	router.POST("/documents/:code/versions", withUser(1, domain.RoleReviewer, handler.SaveVersion))

	payload := VersionRequest{
		Label:       "2.0",
		ReleaseDate: "2024-05-01",
		Status:      "published",
		IsLatest:    true,
	}
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest("POST", "/documents/QM-001/versions", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	mockService.AssertExpectations(t)
}

func TestSaveVersion_UnknownStatusRejected(t *testing.T) {
	mockService := new(MockService)
	handler := NewHandler(mockService)
	router := setupRouter()

	router.POST("/documents/:code/versions", withUser(1, domain.RoleReviewer, handler.SaveVersion))

	body := []byte(`{"label":"2.0","release_date":"2024-05-01","status":"archived"}`)
	req := httptest.NewRequest("POST", "/documents/QM-001/versions", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestDeleteVersion_InvalidStateMapsToConflict(t *testing.T) {
	mockService := new(MockService)
	handler := NewHandler(mockService)
	router := setupRouter()

	mockService.On("DeleteVersion", mock.Anything, uint64(1), "v-1").
		Return(apperrors.InvalidState("cannot delete the latest version; promote another version first"))

	router.DELETE("/versions/:id", withUser(1, domain.RoleReviewer, handler.DeleteVersion))

	req := httptest.NewRequest("DELETE", "/versions/v-1", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestSaveReview_CompletionResponse(t *testing.T) {
	mockService := new(MockService)
	handler := NewHandler(mockService)
	router := setupRouter()

	next := domain.ReviewSchedule{
		ID:             "rs-2",
		DocumentCode:   "QM-001",
		NextReviewDate: time.Date(2025, time.January, 28, 0, 0, 0, 0, time.UTC),
	}
	mockService.On("SaveReview", mock.Anything, uint64(1), mock.MatchedBy(func(s domain.ReviewSchedule) bool {
		return s.Completed() && s.Result == domain.ReviewContinue
	})).Return(&ReviewSaveResult{Completed: true, NextSchedule: &next}, nil)

	router.POST("/reviews", withUser(1, domain.RoleReviewer, handler.SaveReview))

	payload := ReviewRequest{
		ID:               "rs-1",
		DocumentCode:     "QM-001",
		FrequencyID:      "freq-12",
		NextReviewDate:   "2024-01-15",
		ResponsibleID:    7,
		ActualReviewDate: "2024-01-28",
		Result:           "continue",
	}
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest("POST", "/reviews", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var result ReviewSaveResult
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.True(t, result.Completed)
	if assert.NotNil(t, result.NextSchedule) {
		assert.Equal(t, "rs-2", result.NextSchedule.ID)
	}
}

func TestSaveReview_UnknownScheduleMapsToNotFound(t *testing.T) {
	mockService := new(MockService)
	handler := NewHandler(mockService)
	router := setupRouter()

	mockService.On("SaveReview", mock.Anything, uint64(1), mock.Anything).
		Return(nil, apperrors.EntityNotFound("review_schedule", "rs-missing"))

	router.POST("/reviews", withUser(1, domain.RoleReviewer, handler.SaveReview))

	payload := ReviewRequest{
		ID:               "rs-missing",
		DocumentCode:     "QM-001",
		FrequencyID:      "freq-12",
		NextReviewDate:   "2024-01-15",
		ResponsibleID:    7,
		ActualReviewDate: "2024-01-28",
		Result:           "continue",
	}
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest("POST", "/reviews", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetState(t *testing.T) {
	mockService := new(MockService)
	handler := NewHandler(mockService)
	router := setupRouter()

	snapshot := domain.NewSnapshot()
	snapshot.Documents = append(snapshot.Documents, domain.Document{Code: "QM-001", Status: domain.DocumentPublished})
	mockService.On("GetState", mock.Anything).Return(snapshot, nil)

	router.GET("/state", withUser(1, domain.RoleViewer, handler.GetState))

	req := httptest.NewRequest("GET", "/state", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var state domain.Snapshot
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	assert.Len(t, state.Documents, 1)
}

func TestNotifications_EmptyListNotNull(t *testing.T) {
	mockService := new(MockService)
	handler := NewHandler(mockService)
	router := setupRouter()

	mockService.On("Notifications", mock.Anything, mock.Anything).Return(nil)

	router.GET("/notifications", withUser(1, domain.RoleViewer, handler.Notifications))

	req := httptest.NewRequest("GET", "/notifications", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", w.Body.String())
}
