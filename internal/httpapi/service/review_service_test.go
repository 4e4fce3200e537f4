package service

import (
	"context"
	"testing"
	"time"

	"yamdb/internal/httpapi/dto"
	"yamdb/internal/httpapi/models"
	"yamdb/internal/httpapi/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

type MockReviewRepository struct {
	mock.Mock
}

func (m *MockReviewRepository) Create(ctx context.Context, review *models.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *MockReviewRepository) Update(ctx context.Context, review *models.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *MockReviewRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockReviewRepository) GetByID(ctx context.Context, id int64) (*models.Review, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Review), args.Error(1)
}

func (m *MockReviewRepository) GetByTitle(ctx context.Context, titleID int64, page, pageSize int) ([]models.Review, int64, error) {
	args := m.Called(ctx, titleID, page, pageSize)
	return args.Get(0).([]models.Review), args.Get(1).(int64), args.Error(2)
}

func (m *MockReviewRepository) ExistsByTitleAndAuthor(ctx context.Context, titleID int64, authorID string) (bool, error) {
	args := m.Called(ctx, titleID, authorID)
	return args.Bool(0), args.Error(1)
}

type MockTitleRepository struct {
	mock.Mock
}

func (m *MockTitleRepository) Create(ctx context.Context, title *models.Title) error {
	args := m.Called(ctx, title)
	return args.Error(0)
}

func (m *MockTitleRepository) Update(ctx context.Context, title *models.Title) error {
	args := m.Called(ctx, title)
	return args.Error(0)
}

func (m *MockTitleRepository) ReplaceGenres(ctx context.Context, title *models.Title, genres []models.Genre) error {
	args := m.Called(ctx, title, genres)
	return args.Error(0)
}

func (m *MockTitleRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTitleRepository) GetByID(ctx context.Context, id int64) (*models.Title, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Title), args.Error(1)
}

func (m *MockTitleRepository) List(ctx context.Context, filter repository.TitleFilter, page, pageSize int) ([]models.Title, int64, error) {
	args := m.Called(ctx, filter, page, pageSize)
	return args.Get(0).([]models.Title), args.Get(1).(int64), args.Error(2)
}

func intPtr(i int) *int       { return &i }
func strPtr(s string) *string { return &s }

func TestReviewCreate_Success(t *testing.T) {
	mockReviews := new(MockReviewRepository)
	mockTitles := new(MockTitleRepository)
	svc := NewReviewService(mockReviews, mockTitles, nil)

	mockTitles.On("GetByID", mock.Anything, int64(7)).Return(&models.Title{ID: 7, Name: "Dune"}, nil)
	mockReviews.On("ExistsByTitleAndAuthor", mock.Anything, int64(7), "u-1").Return(false, nil)
	mockReviews.On("Create", mock.Anything, mock.AnythingOfType("*models.Review")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*models.Review).ID = 55
		}).Return(nil)
	mockReviews.On("GetByID", mock.Anything, int64(55)).Return(&models.Review{
		ID:       55,
		TitleID:  7,
		AuthorID: "u-1",
		Text:     "great",
		Score:    9,
		PubDate:  time.Now(),
		Author:   models.User{Username: "reader"},
	}, nil)

	resp, err := svc.Create(context.Background(), 7, "u-1", dto.CreateReviewDTO{Text: "great", Score: 9})

	assert.NoError(t, err)
	assert.Equal(t, int64(55), resp.ID)
	assert.Equal(t, "reader", resp.Author)
	assert.Equal(t, 9, resp.Score)
	mockReviews.AssertExpectations(t)
}

func TestReviewCreate_SecondReviewRejected(t *testing.T) {
	mockReviews := new(MockReviewRepository)
	mockTitles := new(MockTitleRepository)
	svc := NewReviewService(mockReviews, mockTitles, nil)

	mockTitles.On("GetByID", mock.Anything, int64(7)).Return(&models.Title{ID: 7}, nil)
	mockReviews.On("ExistsByTitleAndAuthor", mock.Anything, int64(7), "u-1").Return(true, nil)

	_, err := svc.Create(context.Background(), 7, "u-1", dto.CreateReviewDTO{Text: "again", Score: 5})
	assert.ErrorIs(t, err, ErrReviewExists)
	mockReviews.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestReviewCreate_DuplicateKeyRace(t *testing.T) {
	mockReviews := new(MockReviewRepository)
	mockTitles := new(MockTitleRepository)
	svc := NewReviewService(mockReviews, mockTitles, nil)

	mockTitles.On("GetByID", mock.Anything, int64(7)).Return(&models.Title{ID: 7}, nil)
	mockReviews.On("ExistsByTitleAndAuthor", mock.Anything, int64(7), "u-1").Return(false, nil)
	mockReviews.On("Create", mock.Anything, mock.Anything).Return(gorm.ErrDuplicatedKey)

	_, err := svc.Create(context.Background(), 7, "u-1", dto.CreateReviewDTO{Text: "race", Score: 5})
	assert.ErrorIs(t, err, ErrReviewExists)
}

func TestReviewCreate_TitleMissing(t *testing.T) {
	mockReviews := new(MockReviewRepository)
	mockTitles := new(MockTitleRepository)
	svc := NewReviewService(mockReviews, mockTitles, nil)

	mockTitles.On("GetByID", mock.Anything, int64(404)).Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.Create(context.Background(), 404, "u-1", dto.CreateReviewDTO{Text: "void", Score: 5})
	assert.ErrorIs(t, err, ErrTitleNotFound)
}

func TestReviewUpdate_OwnerCanEdit(t *testing.T) {
	mockReviews := new(MockReviewRepository)
	mockTitles := new(MockTitleRepository)
	svc := NewReviewService(mockReviews, mockTitles, nil)

	stored := &models.Review{ID: 55, TitleID: 7, AuthorID: "u-1", Text: "ok", Score: 5}
	mockReviews.On("GetByID", mock.Anything, int64(55)).Return(stored, nil)
	mockReviews.On("Update", mock.Anything, mock.AnythingOfType("*models.Review")).Return(nil)

	resp, err := svc.Update(context.Background(), 7, 55, "u-1", models.RoleUser,
		dto.UpdateReviewDTO{Score: intPtr(10)})

	assert.NoError(t, err)
	assert.Equal(t, 10, resp.Score)
	assert.Equal(t, "ok", resp.Text)
}

func TestReviewUpdate_StrangerForbidden(t *testing.T) {
	mockReviews := new(MockReviewRepository)
	mockTitles := new(MockTitleRepository)
	svc := NewReviewService(mockReviews, mockTitles, nil)

	stored := &models.Review{ID: 55, TitleID: 7, AuthorID: "u-1"}
	mockReviews.On("GetByID", mock.Anything, int64(55)).Return(stored, nil)

	_, err := svc.Update(context.Background(), 7, 55, "u-2", models.RoleUser,
		dto.UpdateReviewDTO{Text: strPtr("hijack")})

	assert.ErrorIs(t, err, ErrNotReviewOwner)
	mockReviews.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestReviewDelete_ModeratorMayDeleteAny(t *testing.T) {
	mockReviews := new(MockReviewRepository)
	mockTitles := new(MockTitleRepository)
	svc := NewReviewService(mockReviews, mockTitles, nil)

	stored := &models.Review{ID: 55, TitleID: 7, AuthorID: "u-1"}
	mockReviews.On("GetByID", mock.Anything, int64(55)).Return(stored, nil)
	mockReviews.On("Delete", mock.Anything, int64(55)).Return(nil)

	err := svc.Delete(context.Background(), 7, 55, "mod-1", models.RoleModerator)
	assert.NoError(t, err)
	mockReviews.AssertExpectations(t)
}

func TestReviewGet_TitleMismatchIsNotFound(t *testing.T) {
	mockReviews := new(MockReviewRepository)
	mockTitles := new(MockTitleRepository)
	svc := NewReviewService(mockReviews, mockTitles, nil)

	stored := &models.Review{ID: 55, TitleID: 7, AuthorID: "u-1"}
	mockReviews.On("GetByID", mock.Anything, int64(55)).Return(stored, nil)

	_, err := svc.GetByID(context.Background(), 8, 55)
	assert.ErrorIs(t, err, ErrReviewNotFound)
}
