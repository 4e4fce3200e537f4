package repository

import (
	"context"
	"fmt"

	"yamdb/internal/httpapi/models"

	"gorm.io/gorm"
)

type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	GetBySlug(ctx context.Context, slug string) (*models.Category, error)
	Delete(ctx context.Context, slug string) error
	List(ctx context.Context, search string, page, pageSize int) ([]models.Category, int64, error)
	CountTitles(ctx context.Context, categoryID int64) (int64, error)
}

type categoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

func (r *categoryRepository) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) Delete(ctx context.Context, slug string) error {
	result := r.db.WithContext(ctx).Where("slug = ?", slug).Delete(&models.Category{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// List performs a case-insensitive substring search on name with pagination.
func (r *categoryRepository) List(ctx context.Context, search string, page, pageSize int) ([]models.Category, int64, error) {
	var list []models.Category
	var total int64

	applySearch := func(query *gorm.DB) *gorm.DB {
		if search != "" {
			query = query.Where("LOWER(name) LIKE LOWER(?)", "%"+search+"%")
		}
		return query
	}

	if err := applySearch(r.db.WithContext(ctx).Model(&models.Category{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	query := applySearch(r.db.WithContext(ctx))
	if err := query.Order("name").Limit(pageSize).Offset(offset).Find(&list).Error; err != nil {
		return nil, 0, fmt.Errorf("list categories: %w", err)
	}

	return list, total, nil
}

// CountTitles reports how many titles reference the category. Used as the
// early-error path for protect-on-delete; the FK restriction is authoritative.
func (r *categoryRepository) CountTitles(ctx context.Context, categoryID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Title{}).Where("category_id = ?", categoryID).Count(&count).Error
	return count, err
}
