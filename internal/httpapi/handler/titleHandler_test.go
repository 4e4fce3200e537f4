package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"yamdb/internal/httpapi/dto"
	"yamdb/internal/httpapi/handler"
	"yamdb/internal/httpapi/repository"
	"yamdb/internal/httpapi/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// --- HELPER FUNCTIONS FOR POINTERS ---
func floatPtr(f float64) *float64 { return &f }
func intPtr(i int) *int           { return &i }

// --- MOCK SERVICE ---

type MockTitleService struct {
	mock.Mock
}

func (m *MockTitleService) Create(ctx context.Context, in dto.CreateTitleDTO) (*dto.TitleResponse, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.TitleResponse), args.Error(1)
}

func (m *MockTitleService) Update(ctx context.Context, id int64, in dto.UpdateTitleDTO) (*dto.TitleResponse, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.TitleResponse), args.Error(1)
}

func (m *MockTitleService) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTitleService) GetByID(ctx context.Context, id int64) (*dto.TitleResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.TitleResponse), args.Error(1)
}

func (m *MockTitleService) List(ctx context.Context, filter repository.TitleFilter, page, pageSize int) (*dto.PaginatedTitleResponse, error) {
	args := m.Called(ctx, filter, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.PaginatedTitleResponse), args.Error(1)
}

// --- SETUP ---

// mockAuthMiddleware injects an identity the way the real token middleware does.
func mockAuthMiddleware(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", "test-user-id")
		c.Set("username", "testuser")
		c.Set("role", role)
		c.Next()
	}
}

func setupTitleRouter(mockService *MockTitleService, role string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.Default()
	h := handler.NewTitleHandler(mockService)

	rg := r.Group("/api/v1")
	if role != "" {
		rg.Use(mockAuthMiddleware(role))
	}
	h.RegisterRoutes(rg)
	return r
}

// --- TESTS ---

func TestTitleHandler_List(t *testing.T) {
	mockService := new(MockTitleService)
	r := setupTitleRouter(mockService, "")

	expected := &dto.PaginatedTitleResponse{
		Data: []dto.TitleResponse{
			{ID: 1, Name: "Dune", Year: 1965, Rating: floatPtr(8.5),
				Genres:   []dto.GenreResponse{{Name: "Sci-Fi", Slug: "sci-fi"}},
				Category: &dto.CategoryResponse{Name: "Books", Slug: "books"}},
			{ID: 2, Name: "Alien", Year: 1979, Genres: []dto.GenreResponse{}},
		},
		Page: 1, PageSize: 20, Total: 2, TotalPages: 1,
	}

	t.Run("Success", func(t *testing.T) {
		mockService.On("List", mock.Anything, repository.TitleFilter{}, 1, 20).Return(expected, nil).Once()

		req, _ := http.NewRequest(http.MethodGet, "/api/v1/titles", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		var response dto.PaginatedTitleResponse
		json.Unmarshal(w.Body.Bytes(), &response)

		assert.Len(t, response.Data, 2)
		assert.Equal(t, "Dune", response.Data[0].Name)
		assert.Equal(t, 8.5, *response.Data[0].Rating)
		assert.Equal(t, "books", response.Data[0].Category.Slug)
		assert.Nil(t, response.Data[1].Rating)
	})

	t.Run("FiltersForwarded", func(t *testing.T) {
		filter := repository.TitleFilter{Name: "dune", Year: intPtr(1965), CategorySlug: "books", GenreSlug: "sci-fi"}
		mockService.On("List", mock.Anything, filter, 1, 20).Return(expected, nil).Once()

		req, _ := http.NewRequest(http.MethodGet, "/api/v1/titles?name=dune&year=1965&category=books&genre=sci-fi", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("BadYearFilter", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/api/v1/titles?year=ninteen", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestTitleHandler_Get(t *testing.T) {
	mockService := new(MockTitleService)
	r := setupTitleRouter(mockService, "")

	t.Run("Success", func(t *testing.T) {
		mockService.On("GetByID", mock.Anything, int64(101)).Return(&dto.TitleResponse{
			ID: 101, Name: "Solaris", Year: 1972,
			Genres: []dto.GenreResponse{{Name: "Drama", Slug: "drama"}},
		}, nil).Once()

		req, _ := http.NewRequest(http.MethodGet, "/api/v1/titles/101", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response dto.TitleResponse
		json.Unmarshal(w.Body.Bytes(), &response)
		assert.Equal(t, int64(101), response.ID)
		assert.Equal(t, "Solaris", response.Name)
		assert.Len(t, response.Genres, 1)
	})

	t.Run("NotFound", func(t *testing.T) {
		mockService.On("GetByID", mock.Anything, int64(999)).Return(nil, service.ErrTitleNotFound).Once()

		req, _ := http.NewRequest(http.MethodGet, "/api/v1/titles/999", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("BadID", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, "/api/v1/titles/abc", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestTitleHandler_Create(t *testing.T) {
	t.Run("AdminSuccess", func(t *testing.T) {
		mockService := new(MockTitleService)
		r := setupTitleRouter(mockService, "admin")

		in := dto.CreateTitleDTO{Name: "Dune", Year: intPtr(1965), Genres: []string{"sci-fi"}}
		mockService.On("Create", mock.Anything, in).Return(&dto.TitleResponse{
			ID: 1, Name: "Dune", Year: 1965,
			Genres: []dto.GenreResponse{{Name: "Sci-Fi", Slug: "sci-fi"}},
		}, nil).Once()

		body, _ := json.Marshal(gin.H{"name": "Dune", "year": 1965, "genre": []string{"sci-fi"}})
		req, _ := http.NewRequest(http.MethodPost, "/api/v1/titles", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("YearZeroAccepted", func(t *testing.T) {
		mockService := new(MockTitleService)
		r := setupTitleRouter(mockService, "admin")

		in := dto.CreateTitleDTO{Name: "Year Zero Chronicle", Year: intPtr(0)}
		mockService.On("Create", mock.Anything, in).Return(&dto.TitleResponse{
			ID: 2, Name: "Year Zero Chronicle", Year: 0,
		}, nil).Once()

		body, _ := json.Marshal(gin.H{"name": "Year Zero Chronicle", "year": 0})
		req, _ := http.NewRequest(http.MethodPost, "/api/v1/titles", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("MissingYearRejected", func(t *testing.T) {
		mockService := new(MockTitleService)
		r := setupTitleRouter(mockService, "admin")

		body, _ := json.Marshal(gin.H{"name": "Dune"})
		req, _ := http.NewRequest(http.MethodPost, "/api/v1/titles", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockService.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("ForbiddenForPlainUser", func(t *testing.T) {
		mockService := new(MockTitleService)
		r := setupTitleRouter(mockService, "user")

		body, _ := json.Marshal(gin.H{"name": "Dune", "year": 1965})
		req, _ := http.NewRequest(http.MethodPost, "/api/v1/titles", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
		mockService.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("UnknownGenreIs400", func(t *testing.T) {
		mockService := new(MockTitleService)
		r := setupTitleRouter(mockService, "admin")

		mockService.On("Create", mock.Anything, mock.Anything).Return(nil, service.ErrUnknownGenre).Once()

		body, _ := json.Marshal(gin.H{"name": "Dune", "year": 1965, "genre": []string{"nope"}})
		req, _ := http.NewRequest(http.MethodPost, "/api/v1/titles", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestTitleHandler_Delete(t *testing.T) {
	t.Run("AdminSuccess", func(t *testing.T) {
		mockService := new(MockTitleService)
		r := setupTitleRouter(mockService, "admin")

		mockService.On("Delete", mock.Anything, int64(5)).Return(nil).Once()

		req, _ := http.NewRequest(http.MethodDelete, "/api/v1/titles/5", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("ModeratorForbidden", func(t *testing.T) {
		mockService := new(MockTitleService)
		r := setupTitleRouter(mockService, "moderator")

		req, _ := http.NewRequest(http.MethodDelete, "/api/v1/titles/5", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}
