package service

import (
	"context"
	"errors"

	"yamdb/internal/httpapi/dto"
	"yamdb/internal/httpapi/repository"

	"gorm.io/gorm"
)

var (
	ErrGenreNotFound = errors.New("genre not found")
	ErrGenreSlugUsed = errors.New("genre slug already in use")
)

type GenreService interface {
	Create(ctx context.Context, in dto.CreateGenreDTO) (*dto.GenreResponse, error)
	GetBySlug(ctx context.Context, slug string) (*dto.GenreResponse, error)
	Delete(ctx context.Context, slug string) error
	List(ctx context.Context, search string, page, pageSize int) (*dto.PaginatedGenreResponse, error)
}

type genreService struct {
	genreRepo repository.GenreRepository
}

func NewGenreService(genreRepo repository.GenreRepository) GenreService {
	return &genreService{genreRepo: genreRepo}
}

func (s *genreService) Create(ctx context.Context, in dto.CreateGenreDTO) (*dto.GenreResponse, error) {
	if err := validateSlug(in.Slug); err != nil {
		return nil, err
	}

	genre := in.ToModel()
	if err := s.genreRepo.Create(ctx, &genre); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrGenreSlugUsed
		}
		return nil, err
	}

	resp := dto.GenreFromModel(genre)
	return &resp, nil
}

func (s *genreService) GetBySlug(ctx context.Context, slug string) (*dto.GenreResponse, error) {
	genre, err := s.genreRepo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGenreNotFound
		}
		return nil, err
	}

	resp := dto.GenreFromModel(*genre)
	return &resp, nil
}

func (s *genreService) Delete(ctx context.Context, slug string) error {
	if err := s.genreRepo.Delete(ctx, slug); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGenreNotFound
		}
		return err
	}
	return nil
}

func (s *genreService) List(ctx context.Context, search string, page, pageSize int) (*dto.PaginatedGenreResponse, error) {
	genres, total, err := s.genreRepo.List(ctx, search, page, pageSize)
	if err != nil {
		return nil, err
	}

	data := make([]dto.GenreResponse, 0, len(genres))
	for _, g := range genres {
		data = append(data, dto.GenreFromModel(g))
	}

	resp := dto.NewPaginatedGenreResponse(data, page, pageSize, total)
	return &resp, nil
}
