package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ai-blog-writer/internal/models"
	"github.com/ai-blog-writer/internal/repository"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// seriesService is the concrete implementation of SeriesService
type seriesService struct {
	series   repository.SeriesRepository
	articles repository.ArticleRepository
	log      zerolog.Logger
}

func newSeriesService(repos *repository.Repositories, log zerolog.Logger) *seriesService {
	return &seriesService{
		series:   repos.Series,
		articles: repos.Article,
		log:      log.With().Str("service", "series").Logger(),
	}
}

// Create stores a new series
func (s *seriesService) Create(ctx context.Context, in *models.SeriesInput) (*models.Series, error) {
	series := &models.Series{ID: uuid.New().String()}
	applySeriesInput(series, in)

	if err := s.series.Create(ctx, series); err != nil {
		return nil, fmt.Errorf("create series: %w", err)
	}
	s.log.Info().Str("series_id", series.ID).Int("planned", series.PlannedArticles).Msg("Series created")
	return series, nil
}

// Get returns a series or ErrNotFound
func (s *seriesService) Get(ctx context.Context, id string) (*models.Series, error) {
	series, err := s.series.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get series: %w", err)
	}
	if series == nil {
		return nil, ErrNotFound
	}
	return series, nil
}

// List returns series, optionally by status
func (s *seriesService) List(ctx context.Context, status models.SeriesStatus, limit, offset int) ([]*models.Series, error) {
	return s.series.List(ctx, status, limit, offset)
}

// Update replaces the editable fields of a series
func (s *seriesService) Update(ctx context.Context, id string, in *models.SeriesInput) (*models.Series, error) {
	series, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	applySeriesInput(series, in)

	if err := s.series.Update(ctx, series); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update series: %w", err)
	}
	return series, nil
}

// Delete removes a series; its articles stay and lose the reference
func (s *seriesService) Delete(ctx context.Context, id string) error {
	if err := s.series.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete series: %w", err)
	}
	return nil
}

// Articles lists a series' articles in series order
func (s *seriesService) Articles(ctx context.Context, id string) ([]*models.Article, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.articles.List(ctx, models.ArticleFilter{SeriesID: id, Limit: 500})
}

func applySeriesInput(series *models.Series, in *models.SeriesInput) {
	series.Title = strings.TrimSpace(in.Title)
	series.Description = in.Description
	series.PlannedArticles = in.PlannedArticles
	series.Status = in.Status
	if series.Status == "" {
		series.Status = models.SeriesStatusPlanning
	}
	series.StructureTemplate = cleanList(in.StructureTemplate)
}
