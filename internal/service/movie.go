package service

import (
	"context"

	"github.com/google/uuid"

	"cinematch/internal/model"
	"cinematch/internal/repository"
)

// MovieService serves the catalog read paths.
type MovieService struct {
	repo repository.MovieRepository
}

func NewMovieService(repo repository.MovieRepository) *MovieService {
	return &MovieService{repo: repo}
}

// List returns one page of the catalog, most recently released first.
func (s *MovieService) List(ctx context.Context, page, pageSize int) (*model.MovieListResponse, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = model.DefaultMoviePageSize
	}
	if pageSize > model.MaxMoviePageSize {
		pageSize = model.MaxMoviePageSize
	}

	movies, total, err := s.repo.List(ctx, page, pageSize)
	if err != nil {
		return nil, err
	}

	return &model.MovieListResponse{
		Count:    total,
		Page:     page,
		PageSize: pageSize,
		Results:  movies,
	}, nil
}

// GetByID returns one catalog record.
func (s *MovieService) GetByID(ctx context.Context, id uuid.UUID) (*model.Movie, error) {
	return s.repo.GetByID(ctx, id)
}
