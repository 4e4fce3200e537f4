package service

import (
	"context"
	"errors"

	"yamdb/internal/httpapi/dto"
	"yamdb/internal/httpapi/repository"

	"gorm.io/gorm"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrCategorySlugUsed = errors.New("category slug already in use")
	ErrCategoryInUse    = errors.New("category is referenced by titles")
)

type CategoryService interface {
	Create(ctx context.Context, in dto.CreateCategoryDTO) (*dto.CategoryResponse, error)
	GetBySlug(ctx context.Context, slug string) (*dto.CategoryResponse, error)
	Delete(ctx context.Context, slug string) error
	List(ctx context.Context, search string, page, pageSize int) (*dto.PaginatedCategoryResponse, error)
}

type categoryService struct {
	categoryRepo repository.CategoryRepository
}

func NewCategoryService(categoryRepo repository.CategoryRepository) CategoryService {
	return &categoryService{categoryRepo: categoryRepo}
}

func (s *categoryService) Create(ctx context.Context, in dto.CreateCategoryDTO) (*dto.CategoryResponse, error) {
	if err := validateSlug(in.Slug); err != nil {
		return nil, err
	}

	category := in.ToModel()
	if err := s.categoryRepo.Create(ctx, &category); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrCategorySlugUsed
		}
		return nil, err
	}

	resp := dto.CategoryFromModel(category)
	return &resp, nil
}

func (s *categoryService) GetBySlug(ctx context.Context, slug string) (*dto.CategoryResponse, error) {
	category, err := s.categoryRepo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}

	resp := dto.CategoryFromModel(*category)
	return &resp, nil
}

// Delete refuses to remove a category that any title still references
// (protect semantics). The count is an early check; the RESTRICT constraint
// backs it up.
func (s *categoryService) Delete(ctx context.Context, slug string) error {
	category, err := s.categoryRepo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCategoryNotFound
		}
		return err
	}

	count, err := s.categoryRepo.CountTitles(ctx, category.ID)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrCategoryInUse
	}

	if err := s.categoryRepo.Delete(ctx, slug); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCategoryNotFound
		}
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return ErrCategoryInUse
		}
		return err
	}
	return nil
}

func (s *categoryService) List(ctx context.Context, search string, page, pageSize int) (*dto.PaginatedCategoryResponse, error) {
	categories, total, err := s.categoryRepo.List(ctx, search, page, pageSize)
	if err != nil {
		return nil, err
	}

	data := make([]dto.CategoryResponse, 0, len(categories))
	for _, c := range categories {
		data = append(data, dto.CategoryFromModel(c))
	}

	resp := dto.NewPaginatedCategoryResponse(data, page, pageSize, total)
	return &resp, nil
}
