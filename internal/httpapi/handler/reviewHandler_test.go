package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"yamdb/internal/httpapi/dto"
	"yamdb/internal/httpapi/handler"
	"yamdb/internal/httpapi/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockReviewService struct {
	mock.Mock
}

func (m *MockReviewService) Create(ctx context.Context, titleID int64, authorID string, in dto.CreateReviewDTO) (*dto.ReviewResponse, error) {
	args := m.Called(ctx, titleID, authorID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ReviewResponse), args.Error(1)
}

func (m *MockReviewService) Update(ctx context.Context, titleID, reviewID int64, callerID, callerRole string, in dto.UpdateReviewDTO) (*dto.ReviewResponse, error) {
	args := m.Called(ctx, titleID, reviewID, callerID, callerRole, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ReviewResponse), args.Error(1)
}

func (m *MockReviewService) Delete(ctx context.Context, titleID, reviewID int64, callerID, callerRole string) error {
	args := m.Called(ctx, titleID, reviewID, callerID, callerRole)
	return args.Error(0)
}

func (m *MockReviewService) GetByID(ctx context.Context, titleID, reviewID int64) (*dto.ReviewResponse, error) {
	args := m.Called(ctx, titleID, reviewID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ReviewResponse), args.Error(1)
}

func (m *MockReviewService) GetByTitle(ctx context.Context, titleID int64, page, pageSize int) (*dto.PaginatedReviewResponse, error) {
	args := m.Called(ctx, titleID, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.PaginatedReviewResponse), args.Error(1)
}

func setupReviewRouter(mockService *MockReviewService, role string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.Default()
	h := handler.NewReviewHandler(mockService)

	rg := r.Group("/api/v1")
	if role != "" {
		rg.Use(mockAuthMiddleware(role))
	}
	h.RegisterRoutes(rg)
	return r
}

func TestReviewHandler_List(t *testing.T) {
	mockService := new(MockReviewService)
	r := setupReviewRouter(mockService, "")

	expected := &dto.PaginatedReviewResponse{
		Data: []dto.ReviewResponse{
			{ID: 1, Author: "alice", Text: "loved it", Score: 9, PubDate: time.Now()},
		},
		Page: 1, PageSize: 20, Total: 1, TotalPages: 1,
	}

	t.Run("OpenForAnonymous", func(t *testing.T) {
		mockService.On("GetByTitle", mock.Anything, int64(7), 1, 20).Return(expected, nil).Once()

		req, _ := http.NewRequest(http.MethodGet, "/api/v1/titles/7/reviews", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var response dto.PaginatedReviewResponse
		json.Unmarshal(w.Body.Bytes(), &response)
		assert.Len(t, response.Data, 1)
		assert.Equal(t, "alice", response.Data[0].Author)
	})

	t.Run("MissingTitle", func(t *testing.T) {
		mockService.On("GetByTitle", mock.Anything, int64(404), 1, 20).
			Return(nil, service.ErrTitleNotFound).Once()

		req, _ := http.NewRequest(http.MethodGet, "/api/v1/titles/404/reviews", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestReviewHandler_Create(t *testing.T) {
	t.Run("AuthorFromToken", func(t *testing.T) {
		mockService := new(MockReviewService)
		r := setupReviewRouter(mockService, "user")

		in := dto.CreateReviewDTO{Text: "solid", Score: 8}
		mockService.On("Create", mock.Anything, int64(7), "test-user-id", in).
			Return(&dto.ReviewResponse{ID: 10, Author: "testuser", Text: "solid", Score: 8}, nil).Once()

		body, _ := json.Marshal(gin.H{"text": "solid", "score": 8})
		req, _ := http.NewRequest(http.MethodPost, "/api/v1/titles/7/reviews", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("AnonymousRejected", func(t *testing.T) {
		mockService := new(MockReviewService)
		r := setupReviewRouter(mockService, "")

		body, _ := json.Marshal(gin.H{"text": "solid", "score": 8})
		req, _ := http.NewRequest(http.MethodPost, "/api/v1/titles/7/reviews", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		mockService.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("ScoreOutOfRange", func(t *testing.T) {
		mockService := new(MockReviewService)
		r := setupReviewRouter(mockService, "user")

		body, _ := json.Marshal(gin.H{"text": "meh", "score": 11})
		req, _ := http.NewRequest(http.MethodPost, "/api/v1/titles/7/reviews", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("SecondReviewRejected", func(t *testing.T) {
		mockService := new(MockReviewService)
		r := setupReviewRouter(mockService, "user")

		mockService.On("Create", mock.Anything, int64(7), "test-user-id", mock.Anything).
			Return(nil, service.ErrReviewExists).Once()

		body, _ := json.Marshal(gin.H{"text": "again", "score": 5})
		req, _ := http.NewRequest(http.MethodPost, "/api/v1/titles/7/reviews", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestReviewHandler_Update(t *testing.T) {
	t.Run("OwnershipEnforcedByService", func(t *testing.T) {
		mockService := new(MockReviewService)
		r := setupReviewRouter(mockService, "user")

		mockService.On("Update", mock.Anything, int64(7), int64(10), "test-user-id", "user", mock.Anything).
			Return(nil, service.ErrNotReviewOwner).Once()

		body, _ := json.Marshal(gin.H{"text": "hijack"})
		req, _ := http.NewRequest(http.MethodPatch, "/api/v1/titles/7/reviews/10", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestReviewHandler_Delete(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockService := new(MockReviewService)
		r := setupReviewRouter(mockService, "moderator")

		mockService.On("Delete", mock.Anything, int64(7), int64(10), "test-user-id", "moderator").
			Return(nil).Once()

		req, _ := http.NewRequest(http.MethodDelete, "/api/v1/titles/7/reviews/10", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		mockService.AssertExpectations(t)
	})
}
